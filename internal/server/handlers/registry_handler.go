package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrodepot/internal/service/registry"
)

// RegistryHandler adapts the directory operations to HTTP.
type RegistryHandler struct {
	svc    *registry.Service
	cache  *ActorCache
	logger *zap.Logger
}

// NewRegistryHandler constructs the handler adapter. The actor cache
// is invalidated on mutations that change a user's capabilities.
func NewRegistryHandler(svc *registry.Service, cache *ActorCache, logger *zap.Logger) *RegistryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistryHandler{svc: svc, cache: cache, logger: logger}
}

type createZoneRequest struct {
	Commune  string `json:"commune" binding:"required"`
	District string `json:"district" binding:"required"`
	Village  string `json:"village" binding:"required"`
}

func (h *RegistryHandler) CreateZone(c *gin.Context) {
	var req createZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	zone, err := h.svc.CreateZone(c.Request.Context(), actorFrom(c), registry.CreateZoneInput{
		Commune:  req.Commune,
		District: req.District,
		Village:  req.Village,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, zone)
}

func (h *RegistryHandler) ListZones(c *gin.Context) {
	zones, err := h.svc.ListZones(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zones": zones})
}

func (h *RegistryHandler) DeleteZone(c *gin.Context) {
	if err := h.svc.DeleteZone(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createCropTypeRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *RegistryHandler) CreateCropType(c *gin.Context) {
	var req createCropTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	crop, err := h.svc.CreateCropType(c.Request.Context(), actorFrom(c), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, crop)
}

func (h *RegistryHandler) ListCropTypes(c *gin.Context) {
	crops, err := h.svc.ListCropTypes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"crop_types": crops})
}

func (h *RegistryHandler) DeleteCropType(c *gin.Context) {
	if err := h.svc.DeleteCropType(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type registerProducerRequest struct {
	Username   string  `json:"username" binding:"required"`
	FirstName  string  `json:"first_name" binding:"required"`
	LastName   string  `json:"last_name" binding:"required"`
	Phone      string  `json:"phone" binding:"required"`
	ZoneID     *string `json:"zone_id"`
	ParcelInfo string  `json:"parcel_info"`
}

func (h *RegistryHandler) RegisterProducer(c *gin.Context) {
	var req registerProducerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	producer, err := h.svc.RegisterProducer(c.Request.Context(), actorFrom(c), registry.RegisterProducerInput{
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		ZoneID:     req.ZoneID,
		ParcelInfo: req.ParcelInfo,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, producer)
}

type registerKeeperRequest struct {
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

func (h *RegistryHandler) RegisterKeeper(c *gin.Context) {
	var req registerKeeperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.svc.RegisterKeeper(c.Request.Context(), actorFrom(c), registry.RegisterKeeperInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *RegistryHandler) ListUsers(c *gin.Context) {
	directory, err := h.svc.ListUsers(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, directory)
}

func (h *RegistryHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")
	if err := h.svc.DeleteUser(c.Request.Context(), actorFrom(c), userID); err != nil {
		writeError(c, err)
		return
	}
	h.cache.Invalidate(userID)
	c.Status(http.StatusNoContent)
}

type createWarehouseRequest struct {
	Name             string  `json:"name" binding:"required"`
	ZoneID           string  `json:"zone_id" binding:"required"`
	CapacityKg       float64 `json:"capacity_kg" binding:"required"`
	AlertThresholdKg float64 `json:"alert_threshold_kg"`
	KeeperID         *string `json:"keeper_id"`
}

func (h *RegistryHandler) CreateWarehouse(c *gin.Context) {
	var req createWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	warehouse, err := h.svc.CreateWarehouse(c.Request.Context(), actorFrom(c), registry.CreateWarehouseInput{
		Name:             req.Name,
		ZoneID:           req.ZoneID,
		CapacityKg:       req.CapacityKg,
		AlertThresholdKg: req.AlertThresholdKg,
		KeeperID:         req.KeeperID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, warehouse)
}

func (h *RegistryHandler) ListWarehouses(c *gin.Context) {
	warehouses, err := h.svc.ListWarehouses(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"warehouses": warehouses})
}

// WarehouseDetail serves the depot drill-down view with the per-crop
// ledger breakdown and recent movements.
func (h *RegistryHandler) WarehouseDetail(c *gin.Context) {
	detail, err := h.svc.WarehouseOverview(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type assignKeeperRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (h *RegistryHandler) AssignKeeper(c *gin.Context) {
	var req assignKeeperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.AssignKeeper(c.Request.Context(), actorFrom(c), c.Param("id"), req.UserID); err != nil {
		writeError(c, err)
		return
	}
	h.cache.Invalidate(req.UserID)
	c.Status(http.StatusNoContent)
}

func (h *RegistryHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.svc.Dashboard(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *RegistryHandler) KeeperDashboard(c *gin.Context) {
	dashboard, err := h.svc.KeeperOverview(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *RegistryHandler) ProducerDashboard(c *gin.Context) {
	dashboard, err := h.svc.ProducerOverview(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
