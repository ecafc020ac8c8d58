package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrodepot/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. Every
// /api route passes through the actor middleware (the access gate)
// before reaching a core operation.
func New(registryHandler *handlers.RegistryHandler, inventoryHandler *handlers.InventoryHandler, resolver handlers.ActorResolver, cache *handlers.ActorCache, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(handlers.ActorMiddleware(resolver, cache, logger))

	api.GET("/zones", registryHandler.ListZones)
	api.POST("/zones", registryHandler.CreateZone)
	api.DELETE("/zones/:id", registryHandler.DeleteZone)

	api.GET("/crop-types", registryHandler.ListCropTypes)
	api.POST("/crop-types", registryHandler.CreateCropType)
	api.DELETE("/crop-types/:id", registryHandler.DeleteCropType)

	api.GET("/users", registryHandler.ListUsers)
	api.DELETE("/users/:id", registryHandler.DeleteUser)
	api.POST("/producers", registryHandler.RegisterProducer)
	api.POST("/keepers", registryHandler.RegisterKeeper)

	api.GET("/warehouses", registryHandler.ListWarehouses)
	api.POST("/warehouses", registryHandler.CreateWarehouse)
	api.GET("/warehouses/:id", registryHandler.WarehouseDetail)
	api.PUT("/warehouses/:id/keeper", registryHandler.AssignKeeper)
	api.GET("/warehouses/:id/stock", inventoryHandler.AvailableStock)
	api.GET("/warehouses/:id/consistency", inventoryHandler.Consistency)

	api.GET("/harvests", inventoryHandler.ListHarvests)
	api.POST("/harvests", inventoryHandler.DeclareHarvest)
	api.POST("/harvests/:id/receive", inventoryHandler.ConfirmReceipt)

	api.GET("/deliveries", inventoryHandler.ListDeliveries)
	api.POST("/deliveries", inventoryHandler.CreateDelivery)
	api.POST("/deliveries/:id/dispatch", inventoryHandler.ConfirmDispatch)

	api.GET("/dashboard", registryHandler.Dashboard)
	api.GET("/dashboard/keeper", registryHandler.KeeperDashboard)
	api.GET("/dashboard/producer", registryHandler.ProducerDashboard)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
