package routes

import (
	"github.com/gin-gonic/gin"

	"task-review-api/controllers"
	"task-review-api/middleware"
	"task-review-api/models"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/signup", controllers.Signup)
			public.POST("/login", controllers.Login)
			public.POST("/forgot-password", controllers.ForgotPassword)
			public.POST("/reset-password", controllers.ResetPassword)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Task Review API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/profile", controllers.UpdateProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Visible to every authenticated user
			protected.GET("/leaderboard", controllers.GetLeaderboard)

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.ListSubmissions)
				submissions.GET("/:id/download", controllers.DownloadSubmission)

				// Only contributors upload; contributors and admins delete
				submissions.POST("", middleware.RequireRole(models.RoleContributor), controllers.CreateSubmission)
				submissions.DELETE("/:id", middleware.RequireRole(models.RoleContributor, models.RoleAdmin), controllers.DeleteSubmission)

				// Review workflow
				submissions.POST("/:id/claim", middleware.RequireRole(models.RoleReviewer), controllers.ClaimSubmission)
				submissions.POST("/:id/feedback", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), controllers.SubmitFeedback)
				submissions.POST("/:id/approve", middleware.RequireRole(models.RoleAdmin), controllers.ApproveSubmission)
			}

			// Task queue helpers (kept off /submissions so they don't clash
			// with the :id wildcard)
			tasks := protected.Group("/tasks")
			{
				tasks.GET("/next", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), controllers.NextTask)
				tasks.GET("/workload", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), controllers.MyWorkload)
				tasks.POST("/auto-assign", middleware.RequireRole(models.RoleAdmin), controllers.AutoAssign)
			}

			// Admin
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/stats", controllers.GetAdminStats)
				admin.GET("/logs", controllers.GetActivityLogs)
				admin.GET("/pending-reviewers", controllers.ListPendingReviewers)
				admin.POST("/approve-reviewer", controllers.ApproveReviewer)
			}
		}
	}
}
