package api

import (
	"net/http"

	"rehabtrack/rehab-app/internal/domain"
	"rehabtrack/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the full REST surface on the given engine.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	exerciseService service.ExerciseService,
	assignmentService service.AssignmentService,
	progressService service.ProgressService,
	notificationService service.NotificationService,
) {
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService, assignmentService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	assignmentHandler := NewAssignmentHandler(assignmentService)
	progressHandler := NewProgressHandler(progressService)
	notificationHandler := NewNotificationHandler(notificationService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- User Routes ---
		userGroup := protected.Group("/users")
		{
			userGroup.GET("/athletes", userHandler.ListAthletes)
			userGroup.GET("/trainers", userHandler.ListTrainers)
			userGroup.GET("/:id", userHandler.GetUser)
			userGroup.PUT("/:id", userHandler.UpdateProfile)
			userGroup.GET("/:id/assignments", userHandler.GetUserAssignments)
		}

		// --- Exercise Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/meta/categories", exerciseHandler.GetCategories)
			exerciseGroup.GET("/meta/body-parts", exerciseHandler.GetBodyParts)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)

			exerciseGroup.POST("", RoleMiddleware(domain.RoleTrainer), exerciseHandler.CreateExercise)
			exerciseGroup.PUT("/:id", RoleMiddleware(domain.RoleTrainer), exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", RoleMiddleware(domain.RoleTrainer), exerciseHandler.DeleteExercise)
			exerciseGroup.POST("/:id/video-upload-url", RoleMiddleware(domain.RoleTrainer), exerciseHandler.RequestVideoUploadURL)
			exerciseGroup.PUT("/:id/video", RoleMiddleware(domain.RoleTrainer), exerciseHandler.ConfirmVideoUpload)
		}

		// --- Assignment Routes ---
		assignmentGroup := protected.Group("/assignments")
		{
			assignmentGroup.POST("", RoleMiddleware(domain.RoleTrainer), assignmentHandler.CreateAssignment)
			assignmentGroup.PUT("/:id", RoleMiddleware(domain.RoleTrainer), assignmentHandler.UpdateAssignment)
			assignmentGroup.DELETE("/:id", RoleMiddleware(domain.RoleTrainer), assignmentHandler.DeleteAssignment)
			assignmentGroup.GET("/trainer/:trainerId", RoleMiddleware(domain.RoleTrainer), assignmentHandler.GetTrainerAssignments)
			assignmentGroup.GET("/stats/:trainerId", RoleMiddleware(domain.RoleTrainer), assignmentHandler.GetTrainerStats)
		}

		// --- Progress Routes ---
		progressGroup := protected.Group("/progress")
		{
			progressGroup.POST("", progressHandler.LogProgress)
			progressGroup.PUT("/:id", progressHandler.UpdateProgress)
			progressGroup.GET("/assignment/:assignmentId", progressHandler.GetAssignmentProgress)
			progressGroup.GET("/athlete/:athleteId", progressHandler.GetAthleteProgress)
			progressGroup.GET("/compliance/:athleteId", progressHandler.GetComplianceReport)
		}

		// --- Notification Routes ---
		notificationGroup := protected.Group("/notifications")
		{
			// The first segment is a user ID for list/read-all and a
			// notification ID for read; gin needs one wildcard name here.
			notificationGroup.GET("/:id", notificationHandler.ListNotifications)
			notificationGroup.PUT("/:id/read", notificationHandler.MarkNotificationRead)
			notificationGroup.PUT("/:id/read-all", notificationHandler.MarkAllNotificationsRead)
		}
	}
}
