// server/internal/api/routes/routes.go
package routes

import (
	"time"

	"port-ops-api-server/config"
	"port-ops-api-server/internal/api/handlers"
	"port-ops-api-server/internal/api/middleware"
	"port-ops-api-server/internal/auth"
	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/monitoring"
	"port-ops-api-server/internal/s3"
	"port-ops-api-server/internal/services"
	"port-ops-api-server/internal/socket"
	"port-ops-api-server/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies are the components the router wires into handlers.
type Dependencies struct {
	Config    config.Config
	Store     *store.Store
	Tokens    *auth.TokenManager
	Hub       *socket.Hub
	Photos    s3.PhotoStore // nil disables photo upload
	Collector *monitoring.Collector

	Movements *services.Movements
	Cleanup   *services.Cleanup
	Accounts  *services.Accounts
	Analytics *services.Analytics
}

// NewDependencies builds the services on top of a store. Photos stays nil.
func NewDependencies(cfg config.Config, st *store.Store, tokens *auth.TokenManager, hub *socket.Hub, collector *monitoring.Collector) Dependencies {
	return Dependencies{
		Config:    cfg,
		Store:     st,
		Tokens:    tokens,
		Hub:       hub,
		Collector: collector,
		Movements: services.NewMovements(st, hub),
		Cleanup:   services.NewCleanup(st, hub),
		Accounts:  services.NewAccounts(st, tokens, services.NewAccountsConfig(cfg)),
		Analytics: services.NewAnalytics(st),
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Maintenance-Key", monitoring.RequestIDHeader},
		ExposeHeaders: []string{monitoring.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// resource is the five CRUD endpoints of one table.
type resource struct {
	list, get, create, update, remove gin.HandlerFunc
}

func mount(g *gin.RouterGroup, path string, r resource, read, write gin.HandlerFunc) *gin.RouterGroup {
	rg := g.Group(path)
	rg.GET("", read, r.list)
	rg.GET("/:id", read, r.get)
	rg.POST("", write, r.create)
	rg.PUT("/:id", write, r.update)
	rg.DELETE("/:id", write, r.remove)
	return rg
}

// SetupRouter wires every handler behind its authentication and role checks.
func SetupRouter(d Dependencies) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(corsConfig(d.Config.CORS.AllowedOrigins)))
	router.Use(d.Collector.Middleware())

	navireHandler := &handlers.NavireHandler{Store: d.Store, Cleanup: d.Cleanup}
	escaleHandler := &handlers.EscaleHandler{Store: d.Store}
	conteneureHandler := &handlers.ConteneureHandler{Store: d.Store, Movements: d.Movements}
	typeHandler := &handlers.TypeConteneurHandler{Store: d.Store}
	operationHandler := &handlers.OperationHandler{Store: d.Store}
	lineHandler := &handlers.OperationConteneureHandler{Store: d.Store, Movements: d.Movements}
	equipeHandler := &handlers.EquipeHandler{Store: d.Store}
	personnelHandler := &handlers.PersonnelHandler{Store: d.Store}
	resourceHandler := &handlers.ResourceHandler{Store: d.Store}
	arretHandler := &handlers.ArretHandler{Store: d.Store, Photos: d.Photos}
	userHandler := &handlers.UserHandler{Store: d.Store, Accounts: d.Accounts, TokenTTL: d.Tokens.TTL()}
	adminHandler := &handlers.AdminHandler{Cleanup: d.Cleanup, Accounts: d.Accounts}
	analyticsHandler := &handlers.AnalyticsHandler{Analytics: d.Analytics}
	monitoringHandler := &handlers.MonitoringHandler{Store: d.Store, Collector: d.Collector}
	webSocketHandler := &handlers.WebSocketHandler{Hub: d.Hub, Tokens: d.Tokens, AllowedOrigins: d.Config.CORS.AllowedOrigins}

	authenticate := middleware.Authenticate(d.Tokens)
	anyRole := middleware.Authorize(models.RoleUser, models.RoleAdmin)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	api := router.Group("/api")
	{
		// === Public routes ===
		api.GET("/ws", webSocketHandler.ServeWs)
		api.GET("/monitoring/health", monitoringHandler.Health)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", userHandler.Login)
			authRoutes.POST("/forgot-password", userHandler.ForgotPassword)
			authRoutes.POST("/reset-password", userHandler.ResetPassword)
			authRoutes.GET("/me", authenticate, userHandler.Me)
			authRoutes.POST("/change-password", authenticate, userHandler.ChangePassword)
			authRoutes.POST("/register", authenticate, adminOnly, userHandler.CreateUser)
		}

		maintenance := api.Group("/maintenance", middleware.MaintenanceKey(d.Config.Maintenance.Key))
		{
			maintenance.POST("/reset-demo-passwords", adminHandler.ResetDemoPasswords)
		}

		// === Protected routes ===
		protected := api.Group("", authenticate)

		admin := protected.Group("", adminOnly)
		{
			admin.POST("/admin/cleanup", adminHandler.RunCleanup)
			admin.GET("/monitoring/metrics", monitoringHandler.Metrics)

			users := admin.Group("/users")
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.POST("/:id/unlock", userHandler.UnlockUser)
		}

		navires := mount(protected, "/navires", resource{
			navireHandler.ListNavires, navireHandler.GetNavire, navireHandler.CreateNavire,
			navireHandler.UpdateNavire, navireHandler.DeleteNavire,
		}, anyRole, adminOnly)
		navires.GET("/:id/conteneures", anyRole, navireHandler.GetNavireConteneures)
		navires.GET("/matricule/:matricule", anyRole, navireHandler.GetNavireByMatricule)

		escales := mount(protected, "/escales", resource{
			escaleHandler.ListEscales, escaleHandler.GetEscale, escaleHandler.CreateEscale,
			escaleHandler.UpdateEscale, escaleHandler.DeleteEscale,
		}, anyRole, adminOnly)
		escales.GET("/active", anyRole, escaleHandler.GetActiveEscales)

		conteneures := mount(protected, "/conteneures", resource{
			conteneureHandler.ListConteneures, conteneureHandler.GetConteneure, conteneureHandler.CreateConteneure,
			conteneureHandler.UpdateConteneure, conteneureHandler.DeleteConteneure,
		}, anyRole, adminOnly)
		conteneures.GET("/terre", anyRole, conteneureHandler.GetConteneuresOnLand)
		conteneures.GET("/:id/historique", anyRole, conteneureHandler.GetHistorique)
		conteneures.POST("/:id/assign/:navireId", adminOnly, conteneureHandler.AssignToNavire)
		conteneures.POST("/:id/unassign", adminOnly, conteneureHandler.UnassignFromNavire)

		mount(protected, "/type-conteneurs", resource{
			typeHandler.ListTypeConteneurs, typeHandler.GetTypeConteneur, typeHandler.CreateTypeConteneur,
			typeHandler.UpdateTypeConteneur, typeHandler.DeleteTypeConteneur,
		}, anyRole, adminOnly)

		// Operators record operations, their lines and stoppages themselves.
		operations := mount(protected, "/operations", resource{
			operationHandler.ListOperations, operationHandler.GetOperation, operationHandler.CreateOperation,
			operationHandler.UpdateOperation, operationHandler.DeleteOperation,
		}, anyRole, anyRole)
		operations.GET("/escale/:escaleId", anyRole, operationHandler.GetOperationsByEscale)

		lines := mount(protected, "/operation-conteneures", resource{
			lineHandler.ListOperationConteneures, lineHandler.GetOperationConteneure, lineHandler.CreateOperationConteneure,
			lineHandler.UpdateOperationConteneure, lineHandler.DeleteOperationConteneure,
		}, anyRole, anyRole)
		lines.POST("/:id/complete", anyRole, lineHandler.CompleteOperationConteneure)
		lines.POST("/:id/cancel", anyRole, lineHandler.CancelOperationConteneure)

		arrets := mount(protected, "/arrets", resource{
			arretHandler.ListArrets, arretHandler.GetArret, arretHandler.CreateArret,
			arretHandler.UpdateArret, arretHandler.DeleteArret,
		}, anyRole, anyRole)
		arrets.POST("/:id/photo", anyRole, arretHandler.UploadPhoto)

		equipes := mount(protected, "/equipes", resource{
			equipeHandler.ListEquipes, equipeHandler.GetEquipe, equipeHandler.CreateEquipe,
			equipeHandler.UpdateEquipe, equipeHandler.DeleteEquipe,
		}, anyRole, adminOnly)
		equipes.GET("/:id/personnel", anyRole, equipeHandler.ListPersonnel)
		equipes.POST("/:id/personnel", adminOnly, equipeHandler.AddPersonnel)
		equipes.POST("/:id/personnel/:matricule", adminOnly, equipeHandler.AddPersonnel)
		equipes.DELETE("/:id/personnel/:matricule", adminOnly, equipeHandler.RemovePersonnel)
		equipes.GET("/:id/soustraiteurs", anyRole, equipeHandler.ListSoustraiteurs)
		equipes.POST("/:id/soustraiteurs", adminOnly, equipeHandler.AddSoustraiteur)
		equipes.POST("/:id/soustraiteurs/:matricule", adminOnly, equipeHandler.AddSoustraiteur)
		equipes.DELETE("/:id/soustraiteurs/:matricule", adminOnly, equipeHandler.RemoveSoustraiteur)

		mount(protected, "/personnels", resource{
			personnelHandler.ListPersonnels, personnelHandler.GetPersonnel, personnelHandler.CreatePersonnel,
			personnelHandler.UpdatePersonnel, personnelHandler.DeletePersonnel,
		}, anyRole, adminOnly)

		mount(protected, "/soustraiteures", resource{
			personnelHandler.ListSoustraiteures, personnelHandler.GetSoustraiteure, personnelHandler.CreateSoustraiteure,
			personnelHandler.UpdateSoustraiteure, personnelHandler.DeleteSoustraiteure,
		}, anyRole, adminOnly)

		mount(protected, "/shifts", resource{
			resourceHandler.ListShifts, resourceHandler.GetShift, resourceHandler.CreateShift,
			resourceHandler.UpdateShift, resourceHandler.DeleteShift,
		}, anyRole, adminOnly)

		mount(protected, "/engins", resource{
			resourceHandler.ListEngins, resourceHandler.GetEngin, resourceHandler.CreateEngin,
			resourceHandler.UpdateEngin, resourceHandler.DeleteEngin,
		}, anyRole, adminOnly)

		analytics := protected.Group("/analytics", anyRole)
		{
			analytics.GET("/summary", analyticsHandler.Summary)
			analytics.GET("/operations", analyticsHandler.Operations)
			analytics.GET("/arrets", analyticsHandler.Arrets)
		}
	}

	return router
}
