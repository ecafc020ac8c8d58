package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/agrodepot/internal/config"
	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

func TestSendAlert(t *testing.T) {
	var received Alert
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewWebhookClient(config.AlertsConfig{
		WebhookURL:     server.URL,
		AuthToken:      "secret-token",
		TimeoutSeconds: 5,
	})

	alert := Alert{
		Kind:          "low_stock",
		WarehouseID:   "wh-1",
		WarehouseName: "Depot Nord",
		StockKg:       50,
		ThresholdKg:   100,
		Message:       "Depot Nord holds 50kg, below the 100kg alert threshold",
		OccurredAt:    time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, client.SendAlert(context.Background(), alert))

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, alert, received)
}

func TestSendAlertPropagatesReceiverError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "receiver down"})
	}))
	defer server.Close()

	client := NewWebhookClient(config.AlertsConfig{WebhookURL: server.URL, TimeoutSeconds: 5})

	err := client.SendAlert(context.Background(), Alert{Kind: "low_stock"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=502")
	assert.Contains(t, err.Error(), "receiver down")
}

type capturingClient struct {
	alerts []Alert
	err    error
}

func (c *capturingClient) SendAlert(ctx context.Context, alert Alert) error {
	c.alerts = append(c.alerts, alert)
	return c.err
}

func TestEventBridgeConvertsLowStock(t *testing.T) {
	client := &capturingClient{}
	bridge := NewEventBridge(client, nil)
	bridge.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }

	err := bridge.Dispatch(models.LowStockDetected{
		WarehouseID:   "wh-1",
		WarehouseName: "Depot Nord",
		StockKg:       50,
		ThresholdKg:   100,
	})
	require.NoError(t, err)

	require.Len(t, client.alerts, 1)
	alert := client.alerts[0]
	assert.Equal(t, "low_stock", alert.Kind)
	assert.Equal(t, "wh-1", alert.WarehouseID)
	assert.Equal(t, 50.0, alert.StockKg)
	assert.Equal(t, 100.0, alert.ThresholdKg)
	assert.Equal(t, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC), alert.OccurredAt)
}

func TestEventBridgeConvertsStockDrift(t *testing.T) {
	client := &capturingClient{}
	bridge := NewEventBridge(client, nil)

	err := bridge.Dispatch(models.StockDriftDetected{
		WarehouseID:   "wh-1",
		WarehouseName: "Depot Nord",
		CachedKg:      280,
		LedgerKg:      300,
	})
	require.NoError(t, err)

	require.Len(t, client.alerts, 1)
	assert.Equal(t, "stock_drift", client.alerts[0].Kind)
	assert.Equal(t, 280.0, client.alerts[0].StockKg)
	assert.Equal(t, 300.0, client.alerts[0].LedgerKg)
}

func TestEventBridgeIgnoresOtherEvents(t *testing.T) {
	client := &capturingClient{}
	bridge := NewEventBridge(client, nil)

	require.NoError(t, bridge.Dispatch(models.HarvestDeclared{HarvestID: "h-1"}))
	assert.Empty(t, client.alerts)
}

func TestEventBridgeSwallowsDeliveryFailure(t *testing.T) {
	client := &capturingClient{err: assert.AnError}
	bridge := NewEventBridge(client, nil)

	// A committed stock transition must never fail on webhook trouble.
	assert.NoError(t, bridge.Dispatch(models.LowStockDetected{WarehouseID: "wh-1"}))
}

func TestEventBridgeWithoutClient(t *testing.T) {
	bridge := NewEventBridge(nil, nil)
	assert.NoError(t, bridge.Dispatch(models.LowStockDetected{WarehouseID: "wh-1"}))
}
