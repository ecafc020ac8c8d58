package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
	"github.com/mamadbah2/agrodepot/internal/service/inventory"
	"github.com/mamadbah2/agrodepot/internal/service/registry"
)

// InventoryHandler adapts the stock core to HTTP.
type InventoryHandler struct {
	inventorySvc *inventory.Service
	registrySvc  *registry.Service
	logger       *zap.Logger
}

// NewInventoryHandler constructs the handler adapter.
func NewInventoryHandler(inventorySvc *inventory.Service, registrySvc *registry.Service, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{inventorySvc: inventorySvc, registrySvc: registrySvc, logger: logger}
}

type declareHarvestRequest struct {
	CropTypeID  string  `json:"crop_type_id" binding:"required"`
	QuantityKg  float64 `json:"quantity_kg" binding:"required"`
	HarvestDate string  `json:"harvest_date"`
	WarehouseID *string `json:"warehouse_id"`
}

// DeclareHarvest records a pending harvest for the acting producer.
func (h *InventoryHandler) DeclareHarvest(c *gin.Context) {
	var req declareHarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input := inventory.DeclareHarvestInput{
		CropTypeID:  req.CropTypeID,
		QuantityKg:  req.QuantityKg,
		WarehouseID: req.WarehouseID,
	}
	if req.HarvestDate != "" {
		date, err := time.Parse("2006-01-02", req.HarvestDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "harvest_date must be YYYY-MM-DD"})
			return
		}
		input.HarvestDate = date
	}

	record, err := h.inventorySvc.DeclareHarvest(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListHarvests returns the harvest ledger scoped to the actor.
func (h *InventoryHandler) ListHarvests(c *gin.Context) {
	records, err := h.registrySvc.HarvestsFor(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"harvests": records})
}

// ConfirmReceipt transitions a harvest to received and credits the
// destination warehouse.
func (h *InventoryHandler) ConfirmReceipt(c *gin.Context) {
	record, warehouse, err := h.inventorySvc.ConfirmReceipt(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"harvest": record, "warehouse": warehouse})
}

type createDeliveryRequest struct {
	WarehouseID string `json:"warehouse_id" binding:"required"`
	CropTypeID  string `json:"crop_type_id" binding:"required"`
	QuantityKg  int64  `json:"quantity_kg" binding:"required"`
	Client      string `json:"client" binding:"required"`
}

// CreateDelivery schedules an outbound order against ledger-derived
// available stock.
func (h *InventoryHandler) CreateDelivery(c *gin.Context) {
	var req createDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.inventorySvc.CreateDeliveryOrder(c.Request.Context(), actorFrom(c), inventory.CreateDeliveryOrderInput{
		WarehouseID: req.WarehouseID,
		CropTypeID:  req.CropTypeID,
		QuantityKg:  req.QuantityKg,
		Client:      req.Client,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListDeliveries returns the delivery ledger scoped to the actor.
func (h *InventoryHandler) ListDeliveries(c *gin.Context) {
	orders, err := h.registrySvc.DeliveriesFor(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deliveries": orders})
}

// ConfirmDispatch transitions an order to shipped and debits the
// source warehouse.
func (h *InventoryHandler) ConfirmDispatch(c *gin.Context) {
	order, warehouse, err := h.inventorySvc.ConfirmDispatch(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivery": order, "warehouse": warehouse})
}

// AvailableStock returns the ledger-derived availability for one crop
// at one warehouse.
func (h *InventoryHandler) AvailableStock(c *gin.Context) {
	if !actorFrom(c).ManagesWarehouse(c.Param("id")) {
		writeError(c, models.ErrForbidden)
		return
	}

	cropTypeID := c.Query("crop_type_id")
	if cropTypeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "crop_type_id query parameter is required"})
		return
	}

	available, err := h.inventorySvc.AvailableStock(c.Request.Context(), c.Param("id"), cropTypeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"warehouse_id": c.Param("id"),
		"crop_type_id": cropTypeID,
		"available_kg": available,
	})
}

// Consistency compares a warehouse's cached counter with its ledger.
func (h *InventoryHandler) Consistency(c *gin.Context) {
	if !actorFrom(c).ManagesWarehouse(c.Param("id")) {
		writeError(c, models.ErrForbidden)
		return
	}

	report, err := h.inventorySvc.CheckConsistency(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "consistent": report.Consistent()})
}
