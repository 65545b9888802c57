package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/zwhub/pkg/api/handlers"
	"github.com/urmzd/zwhub/pkg/device"
	"github.com/urmzd/zwhub/pkg/device/schema"
)

// Router holds the Gin engine and dependencies
type Router struct {
	engine     *gin.Engine
	controller device.Controller
	subscriber device.EventSubscriber
	units      handlers.UnitController
	validator  *schema.Validator
}

// NewRouter creates a new API router. units may be nil when no Z-Wave
// stick is attached; the /units routes are then not mounted.
func NewRouter(controller device.Controller, subscriber device.EventSubscriber, units handlers.UnitController, validator *schema.Validator) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	router := &Router{
		engine:     engine,
		controller: controller,
		subscriber: subscriber,
		units:      units,
		validator:  validator,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Swagger UI
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Prometheus
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check at root
	healthHandler := handlers.NewHealthHandler(r.controller, r.units)
	r.engine.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	{
		// Health
		v1.GET("/health", healthHandler.Health)

		// Discovery
		discoveryHandler := handlers.NewDiscoveryHandler(r.controller, r.subscriber)
		discovery := v1.Group("/discovery")
		{
			discovery.POST("/start", discoveryHandler.StartDiscovery)
			discovery.POST("/stop", discoveryHandler.StopDiscovery)
			discovery.GET("/events", discoveryHandler.Events)
		}

		// Devices
		devicesHandler := handlers.NewDevicesHandler(r.controller)
		controlHandler := handlers.NewControlHandler(r.controller, r.validator)
		devices := v1.Group("/devices")
		{
			devices.GET("", devicesHandler.ListDevices)
			devices.GET("/:id", devicesHandler.GetDevice)
			devices.PATCH("/:id", devicesHandler.RenameDevice)
			devices.DELETE("/:id", devicesHandler.RemoveDevice)

			// Device state control
			devices.GET("/:id/state", controlHandler.GetState)
			devices.POST("/:id/state", controlHandler.SetState)
		}

		// Units
		if r.units != nil {
			unitsHandler := handlers.NewUnitsHandler(r.units)
			units := v1.Group("/units")
			{
				units.GET("", unitsHandler.ListUnits)
				units.GET("/:id", unitsHandler.GetUnit)
				units.POST("/:id/commands", unitsHandler.SendCommand)
			}
		}
	}
}

// Handler returns the engine for use with an http.Server
func (r *Router) Handler() http.Handler {
	return r.engine
}
