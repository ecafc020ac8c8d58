package alerting

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/agrodepot/internal/config"
)

// Alert is the payload delivered to the operations webhook.
type Alert struct {
	Kind          string    `json:"kind"`
	WarehouseID   string    `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name"`
	StockKg       float64   `json:"stock_kg"`
	ThresholdKg   float64   `json:"threshold_kg,omitempty"`
	LedgerKg      float64   `json:"ledger_kg,omitempty"`
	Message       string    `json:"message"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Client exposes the alert delivery operation used by the application.
type Client interface {
	SendAlert(ctx context.Context, alert Alert) error
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	webhookURL string
}

// NewWebhookClient builds the alert webhook client from configuration.
func NewWebhookClient(cfg config.AlertsConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	restyClient.SetHeader("Content-Type", "application/json")
	if cfg.AuthToken != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.AuthToken))
	}

	return &WebhookClient{
		httpClient: restyClient,
		webhookURL: cfg.WebhookURL,
	}
}

// apiError represents the webhook receiver's error payload.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SendAlert posts the alert JSON to the configured webhook.
func (c *WebhookClient) SendAlert(ctx context.Context, alert Alert) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		SetError(apiErr).
		Post(c.webhookURL)
	if err != nil {
		return fmt.Errorf("send alert webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return fmt.Errorf("alert webhook error: status=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
