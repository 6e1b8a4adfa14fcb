package handlers

import (
	"switchbot_panel/internal/logger"
	"switchbot_panel/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAPIRoutes(router)

	// countdown + log stream on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerDeviceRoutes(api)
		h.registerAirconRoutes(api)
		h.registerCountdownRoutes(api)
		h.registerPowerRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	api.GET("/devices", h.listDevices)
	api.POST("/devices/refresh", h.refreshDevices)
	api.DELETE("/selection", h.clearSelection)

	device := api.Group("/devices/:id", h.deviceMiddleware)
	{
		device.PUT("/selection", h.setSelection)
		device.POST("/selection/toggle", h.toggleSelection)
		device.GET("/power-command", h.getPowerCommand)
		// Body: {"command":"lightOff"}; "" resets, null cancels the edit
		device.PUT("/power-command", h.setPowerCommand)
		device.POST("/command", h.sendCommand)
		device.GET("/status", h.getDeviceStatus)
	}

	api.POST("/lights/first/on", h.turnOnFirstLight)
}

func (h *Handler) registerAirconRoutes(api *gin.RouterGroup) {
	aircon := api.Group("/aircon/:id", h.deviceMiddleware)
	{
		aircon.GET("", h.getAircon)
		aircon.POST("/temperature", h.adjustTemperature)
		aircon.PUT("/mode", h.setAirconMode)
		aircon.PUT("/fan", h.setAirconFan)
		aircon.POST("/power/toggle", h.toggleAirconPower)
		aircon.POST("/send", h.sendAircon)
	}
}

func (h *Handler) registerCountdownRoutes(api *gin.RouterGroup) {
	countdown := api.Group("/countdown")
	{
		countdown.GET("", h.getCountdown)
		// Body example: {"minutes":30,"action":"sleep"}
		countdown.POST("/start", h.startCountdown)
		countdown.POST("/cancel", h.cancelCountdown)
	}
}

func (h *Handler) registerPowerRoutes(api *gin.RouterGroup) {
	api.PUT("/power-action", h.setPowerAction)
	api.POST("/power/now", h.powerNow)
	api.GET("/shutdown/last-run", h.lastRun)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getSessionLog)
		logs.GET("/history", h.getLogHistory)
	}
}
