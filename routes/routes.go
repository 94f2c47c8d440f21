package routes

import (
	"SmartClinic/assistant"
	"SmartClinic/cache"
	"SmartClinic/config"
	"SmartClinic/controllers"
	"SmartClinic/handlers"
	"SmartClinic/metrics"
	"SmartClinic/middlewares"
	"SmartClinic/repositories"
	"SmartClinic/services"
	"SmartClinic/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the storage-backed collaborators the router is built on.
type Dependencies struct {
	Users        repositories.UserRepository
	Directory    repositories.DirectoryRepository
	Appointments repositories.AppointmentRepository
	Contacts     repositories.EmergencyContactRepository
	Ambulances   repositories.AmbulanceRepository
	Store        cache.Store
	Locker       services.Locker
	Collector    *metrics.Collector
	Tokens       *utils.TokenMaker
	// Assistant overrides the configured chat assistant when set.
	Assistant handlers.Chatter
	Log       *zap.Logger
}

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(cfg *config.AppConfig, deps Dependencies) http.Handler {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestLogger(deps.Log))
	router.Use(middlewares.Metrics(deps.Collector))
	router.Use(middlewares.SecurityHeaders())
	router.Use(middlewares.Cors(cfg.AllowedOrigins))

	// Apply rate limiter middleware
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}))

	sessions := middlewares.NewSessionAuth(deps.Tokens, deps.Store, deps.Log)
	router.Use(sessions.Authenticate())

	userService := services.NewUserService(deps.Users, deps.Log)
	directoryService := services.NewDirectoryService(deps.Users, deps.Directory, deps.Appointments, deps.Store, deps.Log)
	appointmentService := services.NewAppointmentService(deps.Appointments, deps.Directory, deps.Locker, deps.Collector, deps.Log).
		InLocation(cfg.Location())
	contactService := services.NewEmergencyContactService(deps.Contacts, deps.Log)
	ambulanceService := services.NewAmbulanceService(deps.Ambulances, deps.Collector, deps.Log)

	chat := deps.Assistant
	if chat == nil {
		chat = assistant.New(cfg.Assistant, directoryService, deps.Collector, deps.Log)
	}

	authController := controllers.NewAuthController(handlers.NewAuthHandler(userService, deps.Tokens, sessions, deps.Log))
	authController.RegisterRoutes(router)

	controllers.SetupClinicRoutes(router, controllers.ClinicHandlers{
		Directory:        handlers.NewDirectoryHandler(directoryService, deps.Log),
		Appointment:      handlers.NewAppointmentHandler(appointmentService, deps.Log),
		EmergencyContact: handlers.NewEmergencyContactHandler(contactService, deps.Log),
		Ambulance:        handlers.NewAmbulanceHandler(ambulanceService, deps.Log),
		Chat:             handlers.NewChatHandler(chat, deps.Log),
	})

	controllers.SetupRootRoute(router, deps.Collector, cfg.MetricsToken)

	return router
}
