package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
	"github.com/mamadbah2/agrodepot/internal/repository/memory"
	"github.com/mamadbah2/agrodepot/internal/server/handlers"
	"github.com/mamadbah2/agrodepot/internal/service/inventory"
	"github.com/mamadbah2/agrodepot/internal/service/registry"
)

const adminUserID = "user-admin"

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	admin := models.User{ID: adminUserID, Username: "admin", FirstName: "Awa", LastName: "Diop", Role: models.RoleAdmin}
	require.NoError(t, store.Users().Create(context.Background(), &admin))

	inventorySvc := inventory.NewService(store, nil, nil)
	registrySvc := registry.NewService(store, inventorySvc, nil)

	cache := handlers.NewActorCache(time.Minute)
	registryHandler := handlers.NewRegistryHandler(registrySvc, cache, nil)
	inventoryHandler := handlers.NewInventoryHandler(inventorySvc, registrySvc, nil)

	return New(registryHandler, inventoryHandler, registrySvc, cache, nil), store
}

func do(t *testing.T, r *gin.Engine, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthzNeedsNoIdentity(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRejectsAnonymousRequests(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/warehouses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFullStockFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	// Admin provisions the directory.
	w := do(t, r, http.MethodPost, "/api/zones", adminUserID, gin.H{
		"commune": "Thies", "district": "Thies Nord", "village": "Fandene",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	zoneID := decode(t, w)["id"].(string)

	w = do(t, r, http.MethodPost, "/api/crop-types", adminUserID, gin.H{"name": "Maize"})
	require.Equal(t, http.StatusCreated, w.Code)
	cropID := decode(t, w)["id"].(string)

	w = do(t, r, http.MethodPost, "/api/keepers", adminUserID, gin.H{
		"username": "moussa", "first_name": "Moussa", "last_name": "Sow",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	keeperUserID := decode(t, w)["id"].(string)

	w = do(t, r, http.MethodPost, "/api/warehouses", adminUserID, gin.H{
		"name": "Depot Nord", "zone_id": zoneID, "capacity_kg": 1000,
		"alert_threshold_kg": 100, "keeper_id": keeperUserID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	warehouseID := decode(t, w)["id"].(string)

	w = do(t, r, http.MethodPost, "/api/producers", adminUserID, gin.H{
		"username": "fatou", "first_name": "Fatou", "last_name": "Ndiaye", "phone": "770000000",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	producerUserID := decode(t, w)["user_id"].(string)

	// Producer declares a harvest bound for the depot.
	w = do(t, r, http.MethodPost, "/api/harvests", producerUserID, gin.H{
		"crop_type_id": cropID, "quantity_kg": 400,
		"harvest_date": "2026-03-10", "warehouse_id": warehouseID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	harvestID := decode(t, w)["id"].(string)
	assert.Equal(t, "pending", decode(t, w)["status"])

	// Keeper confirms receipt; the counter moves.
	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/harvests/%s/receive", harvestID), keeperUserID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	warehouseBody := decode(t, w)["warehouse"].(map[string]any)
	assert.Equal(t, 400.0, warehouseBody["stock_kg"])

	// Repeating the confirmation is answered with a warning.
	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/harvests/%s/receive", harvestID), keeperUserID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w), "warning")

	// Ordering more than the ledger holds is a conflict.
	w = do(t, r, http.MethodPost, "/api/deliveries", adminUserID, gin.H{
		"warehouse_id": warehouseID, "crop_type_id": cropID,
		"quantity_kg": 500, "client": "Moulin de Thies",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w), "error")

	w = do(t, r, http.MethodPost, "/api/deliveries", adminUserID, gin.H{
		"warehouse_id": warehouseID, "crop_type_id": cropID,
		"quantity_kg": 150, "client": "Moulin de Thies",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	deliveryID := decode(t, w)["id"].(string)

	// Keeper ships it.
	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/deliveries/%s/dispatch", deliveryID), keeperUserID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	warehouseBody = decode(t, w)["warehouse"].(map[string]any)
	assert.Equal(t, 250.0, warehouseBody["stock_kg"])

	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/deliveries/%s/dispatch", deliveryID), keeperUserID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w), "warning")

	// Ledger availability and consistency agree with the counter.
	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/warehouses/%s/stock?crop_type_id=%s", warehouseID, cropID), adminUserID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 250.0, decode(t, w)["available_kg"])

	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/warehouses/%s/consistency", warehouseID), adminUserID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["consistent"])
}

func TestRoleGatingOverHTTP(t *testing.T) {
	r, store := newTestRouter(t)
	ctx := context.Background()

	keeper := models.User{ID: "user-keeper", Username: "moussa", Role: models.RoleKeeper}
	require.NoError(t, store.Users().Create(ctx, &keeper))

	producerUser := models.User{ID: "user-producer", Username: "fatou", Role: models.RoleProducer}
	require.NoError(t, store.Users().Create(ctx, &producerUser))
	require.NoError(t, store.Producers().Create(ctx, &models.Producer{ID: "p-1", UserID: producerUser.ID}))

	// Directory mutations are admin only.
	w := do(t, r, http.MethodPost, "/api/zones", keeper.ID, gin.H{
		"commune": "Thies", "district": "Thies Nord", "village": "Fandene",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Producers cannot see delivery orders.
	w = do(t, r, http.MethodGet, "/api/deliveries", producerUser.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Keepers cannot schedule deliveries.
	w = do(t, r, http.MethodPost, "/api/deliveries", keeper.ID, gin.H{
		"warehouse_id": "wh-1", "crop_type_id": "c-1", "quantity_kg": 10, "client": "x",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Stock and consistency views follow warehouse ownership: a keeper
	// without the assignment gets the same answer as on the detail view.
	w = do(t, r, http.MethodGet, "/api/warehouses/wh-1/stock?crop_type_id=c-1", keeper.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodGet, "/api/warehouses/wh-1/consistency", producerUser.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNotFoundMapping(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/warehouses/wh-ghost/consistency", adminUserID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/harvests/h-ghost/receive", adminUserID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
