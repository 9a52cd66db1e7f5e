package routes

import (
	"time"

	"thorbis-backend/handlers"
	"thorbis-backend/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	searchHandler := &handlers.SearchHandler{DB: db}
	businessHandler := &handlers.BusinessHandler{DB: db}
	categoryHandler := &handlers.CategoryHandler{DB: db}
	reviewHandler := &handlers.ReviewHandler{DB: db}

	searchLimiter := middleware.NewRateLimiter(120, time.Minute).Middleware()

	// Public routes
	api := r.Group("/api")
	{
		// Auth routes
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/verify", authHandler.VerifyEmail)

		// Directory reads. Optional auth widens visibility for owners and
		// admins without requiring a token.
		search := api.Group("")
		search.Use(middleware.OptionalAuthMiddleware(), searchLimiter)
		{
			search.GET("/businesses", searchHandler.GetBusinesses)
			search.GET("/businesses/:id", businessHandler.GetBusiness)
			search.GET("/business/search", searchHandler.SimpleSearch)
			search.POST("/business/search", searchHandler.SimpleSearch)
		}

		api.GET("/businesses/:id/reviews", reviewHandler.GetReviews)
		api.POST("/businesses/:id/track", businessHandler.TrackInteraction)
		api.POST("/reviews/:reviewId/helpful", reviewHandler.MarkHelpful)

		// Public category routes
		api.GET("/categories", categoryHandler.ListCategories)
		api.GET("/categories/:slug", categoryHandler.GetCategory)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		// User profile
		protected.GET("/auth/profile", authHandler.GetProfile)

		// Listing management
		protected.POST("/businesses", middleware.VerifiedEmailMiddleware(), businessHandler.CreateBusiness)
		protected.PUT("/businesses/:id", businessHandler.UpdateBusiness)

		// Reviews
		protected.POST("/businesses/:id/reviews", reviewHandler.CreateReview)
		protected.POST("/reviews/:reviewId/respond", reviewHandler.RespondToReview)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// Business moderation
		admin.GET("/businesses", businessHandler.ListAllBusinesses)
		admin.POST("/businesses/:id/approve", businessHandler.ApproveBusiness)
		admin.DELETE("/businesses/:id", businessHandler.DeleteBusiness)

		// Category management
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:slug", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:slug", categoryHandler.DeleteCategory)

		// Review moderation
		admin.POST("/reviews/:reviewId/approve", reviewHandler.ApproveReview)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
