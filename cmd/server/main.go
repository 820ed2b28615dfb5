package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/syncspace-dev/syncspace/internal/auth"
	"github.com/syncspace-dev/syncspace/internal/config"
	"github.com/syncspace-dev/syncspace/internal/constants"
	"github.com/syncspace-dev/syncspace/internal/database"
	"github.com/syncspace-dev/syncspace/internal/handlers"
	"github.com/syncspace-dev/syncspace/internal/middleware"
	"github.com/syncspace-dev/syncspace/internal/repository"
	"github.com/syncspace-dev/syncspace/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()
	if err := database.AddIndexes(db); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Token codec signs both session cookies and invitation links
	codec := auth.NewCodec(cfg.JWTSecret, constants.SessionTTL, cfg.InvitationTTL)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// AI task generation is optional; without an API key the endpoint
	// reports it as unconfigured
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Services
	mailer := services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	authService := services.NewAuthService(userRepo)
	orgService := services.NewOrganizationService(orgRepo)
	invitationService := services.NewInvitationService(invitationRepo, orgRepo, userRepo, codec, mailer, cfg.ClientURL, cfg.InvitationTTL)
	projectService := services.NewProjectService(projectRepo, orgRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, orgRepo, aiService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, codec)
	orgHandler := handlers.NewOrganizationHandler(orgService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "SyncSpace API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/me", middleware.RequireAuth(codec), authHandler.Me)
		}

		// Organization routes (protected)
		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth(codec))
		{
			orgs.POST("", orgHandler.Create)
			orgs.GET("", orgHandler.List)
			orgs.GET("/:id", middleware.RequireOrganizationAccess(), orgHandler.Get)
			orgs.PUT("/:id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationAdmin(), orgHandler.Update)
			orgs.DELETE("/:id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationAdmin(), orgHandler.Delete)
			orgs.DELETE("/:id/members/:user_id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationAdmin(), orgHandler.RemoveMember)
		}

		// Invitation routes. Verify and accept are public: the invited
		// person may not have an account yet.
		invitations := api.Group("/organizationMember")
		{
			invitations.POST("/invite", middleware.RequireAuth(codec), invitationHandler.Invite)
			invitations.GET("/verify/:token", invitationHandler.Verify)
			invitations.POST("/accept-invite/:token", invitationHandler.Accept)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth(codec))
		{
			projects.POST("", projectHandler.Create)
			projects.GET("", projectHandler.List)
			projects.GET("/:id", middleware.RequireProjectAccess(), projectHandler.Get)
			projects.PATCH("/:id", middleware.RequireProjectAccess(), projectHandler.Update)
			projects.DELETE("/:id", middleware.RequireProjectAccess(), projectHandler.Delete)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(codec))
		{
			tasks.GET("", taskHandler.List)
			tasks.POST("", taskHandler.Create)
			tasks.POST("/generate", taskHandler.Generate)
			tasks.GET("/:id", taskHandler.Get)
			tasks.PATCH("/:id", taskHandler.Update)
			tasks.PATCH("/:id/comments", taskHandler.AddComment)
			tasks.DELETE("/:id", taskHandler.Delete)
		}
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
