package main

import (
	"log"
	"time"

	"juris_desk_go/config"
	"juris_desk_go/db"
	"juris_desk_go/handlers"
	"juris_desk_go/middleware"
	"juris_desk_go/models"
	"juris_desk_go/services"
	"juris_desk_go/services/ai"
	"juris_desk_go/services/gcalendar"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.PasswordResetToken{},
		&models.Client{},
		&models.ClientFinancials{},
		&models.Installment{},
		&models.CourtMovement{},
		&models.ActivityLog{},
		&models.UserSettings{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize file storage (R2 with local fallback)
	services.InitializeStorage(cfg)

	// External collaborators
	calendar := gcalendar.New(cfg)
	assistant := ai.NewClient(cfg)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(handlers.InjectDependencies(cfg, calendar, assistant))

	// Public routes (no authentication required)
	e.POST("/api/login", handlers.LoginHandler, middleware.LoginRateLimiter.Middleware())
	e.POST("/api/forgot-password", handlers.ForgotPasswordHandler, middleware.PasswordResetRateLimiter.Middleware())
	e.POST("/api/reset-password", handlers.ResetPasswordHandler, middleware.PasswordResetRateLimiter.Middleware())

	// Protected routes
	api := e.Group("/api")
	api.Use(middleware.RequireAuth())
	{
		api.POST("/logout", handlers.LogoutHandler)
		api.GET("/me", handlers.MeHandler)
		api.POST("/me/password", handlers.ChangePasswordHandler)

		// Dashboard
		api.GET("/dashboard", handlers.GetDashboardHandler)
		api.GET("/activity", handlers.GetRecentActivityHandler)

		// Clients
		api.GET("/clients", handlers.GetClientsHandler)
		api.POST("/clients", handlers.CreateClientHandler)
		api.GET("/clients/:id", handlers.GetClientHandler)
		api.PUT("/clients/:id", handlers.UpdateClientHandler)
		api.DELETE("/clients/:id", handlers.DeleteClientHandler)

		// Finances
		api.GET("/finances", handlers.GetFinancesHandler)
		api.POST("/finances/toggle", handlers.ToggleLineStatusHandler)

		// Court movements
		api.GET("/movements", handlers.GetMovementsHandler)
		api.POST("/movements", handlers.CreateMovementHandler)
		api.GET("/movements/:id", handlers.GetMovementHandler)
		api.PUT("/movements/:id", handlers.UpdateMovementHandler)
		api.DELETE("/movements/:id", handlers.DeleteMovementHandler)

		// Agenda
		api.GET("/agenda", handlers.GetAgendaHandler)
		api.GET("/agenda/critical", handlers.GetCriticalDatesHandler)

		// Settings
		api.GET("/settings", handlers.GetSettingsHandler)
		api.PUT("/settings", handlers.SaveSettingsHandler)
		api.POST("/settings/logo", handlers.UploadLogoHandler)
		api.GET("/settings/logo", handlers.GetLogoHandler)
		api.GET("/settings/calendar/connect", handlers.ConnectCalendarHandler)
		api.GET("/settings/calendar/callback", handlers.CalendarCallbackHandler)
		api.DELETE("/settings/calendar", handlers.DisconnectCalendarHandler)

		// Documents and reports
		api.GET("/clients/:id/documents/procuration", handlers.GenerateProcurationHandler)
		api.GET("/clients/:id/documents/contract", handlers.GenerateContractHandler)
		api.GET("/clients/:id/documents/income-declaration", handlers.GenerateIncomeDeclarationHandler)
		api.GET("/reports/financial.pdf", handlers.GenerateFinancialReportHandler)
		api.GET("/reports/financial.xlsx", handlers.ExportFinancialReportHandler)

		// AI assistant
		assistantRoutes := api.Group("/assistant")
		assistantRoutes.Use(middleware.AssistantRateLimiter.Middleware())
		{
			assistantRoutes.POST("/chat", handlers.AssistantChatHandler)
			assistantRoutes.POST("/search", handlers.AssistantSearchHandler)
			assistantRoutes.POST("/triage", handlers.TriageEmailHandler)
		}
	}

	// Start background cleanup jobs (runs every hour)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			// Clean up expired sessions
			if err := services.CleanupExpiredSessions(db.DB); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}

			// Clean up expired password reset tokens
			if err := services.CleanupExpiredTokens(db.DB); err != nil {
				log.Printf("Error cleaning up expired tokens: %v", err)
			}
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
