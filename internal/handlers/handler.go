package handlers

import (
	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services     *service.Service
	log          *logger.Logger
	allowOrigins []string
}

// Option customizes a Handler.
type Option func(*Handler)

// WithAllowedOrigins enables CORS for the given browser origins.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) { h.allowOrigins = origins }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if h.log != nil {
		router.Use(h.accessLog)
	}
	if len(h.allowOrigins) > 0 {
		router.Use(h.corsMiddleware())
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	// Command bridge used by the dashboard and robotctl. Unauthenticated.
	router.POST("/api/ros2", h.executeCommand)

	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Dashboard snapshot stream
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.requireOperator)
	{
		h.registerRobotRoutes(api)
		h.registerPairingRoutes(api)
		h.registerTeleopRoutes(api)
		h.registerTerminalRoutes(api)
		h.registerTopicRoutes(api)
		h.registerVideoRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerRobotRoutes(api *gin.RouterGroup) {
	robot := api.Group("/robot")
	{
		robot.GET("/state", h.getRobotState)
		robot.POST("/check", h.checkConnection)
		robot.POST("/battery", h.refreshBattery)
	}
}

func (h *Handler) registerPairingRoutes(api *gin.RouterGroup) {
	api.GET("/pairing", h.getPairing)
	pairing := api.Group("/pairing")
	{
		pairing.POST("/begin", h.beginPairing)
		// Body example: {"robot_number":"5"}
		pairing.POST("/submit", h.submitPairing)
		pairing.POST("/reset", h.resetPairing)
		pairing.POST("/disconnect", h.disconnectRobot)
	}
}

func (h *Handler) registerTeleopRoutes(api *gin.RouterGroup) {
	api.GET("/teleop", h.getTeleop)
	teleop := api.Group("/teleop")
	{
		// Body example: {"linear":0.1,"angular":-0.5}
		teleop.POST("/velocity", h.setVelocity)
		teleop.POST("/nudge", h.nudge)
		teleop.POST("/stop", h.stopRobot)
		teleop.POST("/key", h.pressKey)
	}
}

func (h *Handler) registerTerminalRoutes(api *gin.RouterGroup) {
	api.GET("/history", h.getHistory)
	api.DELETE("/history", h.clearHistory)
	api.POST("/terminal", h.runTerminal)
}

func (h *Handler) registerTopicRoutes(api *gin.RouterGroup) {
	api.GET("/topics", h.listTopics)
	api.GET("/topics/info", h.topicInfo)
	api.GET("/topics/echo", h.echoTopic)
	api.GET("/interfaces/show", h.showInterface)
}

func (h *Handler) registerVideoRoutes(api *gin.RouterGroup) {
	api.GET("/video", h.getVideo)
	video := api.Group("/video")
	{
		video.POST("/start", h.startVideo)
		video.POST("/stop", h.stopVideo)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	api.GET("/logs", h.getLogs)
}
