package main

import (
	"log"

	"github.com/campusqa/peerboard/internal/config"
	"github.com/campusqa/peerboard/internal/database"
	"github.com/campusqa/peerboard/internal/events"
	"github.com/campusqa/peerboard/internal/handler"
	"github.com/campusqa/peerboard/internal/journal"
	"github.com/campusqa/peerboard/internal/middleware"
	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/repository"
	"github.com/campusqa/peerboard/internal/service"
	"github.com/campusqa/peerboard/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Environment != "production"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Cascade journal: mute/unmute intents survive a crash mid-cascade.
	cascadeJournal, err := journal.New(cfg.JournalPath)
	if err != nil {
		log.Fatalf("Failed to open cascade journal: %v", err)
	}
	defer cascadeJournal.Close()

	// Moderation event fan-out for role dashboards.
	publisher, err := events.NewRedisPublisher(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}
	defer publisher.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	questionRepo := repository.NewQuestionRepository(database.DB)
	answerRepo := repository.NewAnswerRepository(database.DB)
	reviewRepo := repository.NewReviewRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.Environment)
	moderationService := service.NewModerationService(questionRepo, answerRepo, reviewRepo, messageRepo, publisher)
	muteService := service.NewMuteService(database.DB, userRepo, questionRepo, answerRepo, reviewRepo, cascadeJournal, publisher)
	resolutionService := service.NewResolutionService(database.DB, questionRepo, answerRepo)
	reviewService := service.NewReviewService(reviewRepo, answerRepo)
	messageService := service.NewMessageService(messageRepo, publisher)
	contentService := service.NewContentService(database.DB, questionRepo, answerRepo)

	// Re-apply cascades whose transaction never committed.
	if err := muteService.ReplayPending(); err != nil {
		log.Fatalf("Failed to replay pending cascades: %v", err)
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	moderationHandler := handler.NewModerationHandler(moderationService)
	muteHandler := handler.NewMuteHandler(muteService)
	contentHandler := handler.NewContentHandler(contentService, resolutionService, authService)
	reviewHandler := handler.NewReviewHandler(reviewService, authService)
	messageHandler := handler.NewMessageHandler(messageService, authService)

	// Rate limiter (redis-backed, IP keyed)
	rateLimiter := middleware.NewRateLimiter(publisher.Client(), middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
		BlockTime:   cfg.RateLimitBlockTime,
	})

	// Setup Gin router
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.Environment == "production"))
	router.Use(rateLimiter.Middleware())

	// Public routes
	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/login", authHandler.Login)

	// Protected routes (require JWT)
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		// Content
		api.GET("/questions", contentHandler.ListQuestions)
		api.POST("/questions", contentHandler.SubmitQuestion)
		api.PUT("/questions/:id", contentHandler.EditQuestion)
		api.DELETE("/questions/:id", contentHandler.DeleteQuestion)
		api.GET("/questions/:id/replies", contentHandler.ListReplies)
		api.POST("/questions/:id/replies", contentHandler.SubmitReply)
		api.GET("/questions/:id/answers", contentHandler.ListAnswers)
		api.POST("/questions/:id/answers", contentHandler.SubmitAnswer)
		api.GET("/questions/:id/unread-count", contentHandler.UnreadCount)

		// Resolution
		api.POST("/answers/:id/resolve", contentHandler.ResolveAnswer)
		api.POST("/answers/:id/read", contentHandler.MarkAnswerRead)
		api.PUT("/answers/:id", contentHandler.EditAnswer)

		// Reviews
		api.GET("/answers/:id/reviews", reviewHandler.ListReviews)
		api.POST("/answers/:id/reviews", reviewHandler.CreateReview)
		api.POST("/reviews/:id/revise", reviewHandler.CreateFromPrevious)
		api.PUT("/reviews/:id", reviewHandler.EditReview)

		// Private messages
		api.GET("/messages/student", messageHandler.StudentInbox)
		api.POST("/messages/student", messageHandler.SendStudent)
		api.GET("/messages/reviewer", messageHandler.ReviewerInbox)
		api.POST("/messages/reviewer", messageHandler.SendReviewer)
		api.GET("/messages/staff", messageHandler.StaffInbox)
		api.POST("/messages/staff", messageHandler.SendStaff)
		api.POST("/messages/staff/:id/read", messageHandler.MarkStaffRead)
		api.POST("/messages/staff/:id/replied", messageHandler.MarkStaffRepliedTo)
		api.DELETE("/messages/staff/:id", messageHandler.DeleteStaffInbox)
		api.POST("/messages/read", messageHandler.MarkRenderedRead)
	}

	// Moderation routes (role checks repeat inside the services; the
	// middleware just keeps students off the endpoints entirely)
	moderation := router.Group("/api/moderation")
	moderation.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	moderation.Use(middleware.RequireRoles(models.RoleStaff, models.RoleInstructor))
	{
		moderation.POST("/:entity/:id/flag", moderationHandler.Flag)
		moderation.POST("/:entity/:id/unflag", moderationHandler.Unflag)
		moderation.POST("/:entity/:id/hide", moderationHandler.Hide)
		moderation.POST("/:entity/:id/unhide", moderationHandler.Unhide)
	}

	// Mute cascades live under /api/users so the :entity wildcard above
	// stays unambiguous.
	users := router.Group("/api/users")
	users.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	users.Use(middleware.RequireRoles(models.RoleStaff, models.RoleInstructor))
	{
		users.GET("", authHandler.ListUsers)
		users.POST("/:username/mute", muteHandler.Mute)
		users.POST("/:username/unmute", muteHandler.Unmute)
	}

	// Rendered-text message flagging is Staff only.
	staffOnly := router.Group("/api")
	staffOnly.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	staffOnly.Use(middleware.RequireRoles(models.RoleStaff))
	{
		staffOnly.POST("/messages/flag", messageHandler.FlagRendered)
	}

	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
