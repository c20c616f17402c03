package api

import (
	"net/http"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/service"
	"alcyxob/fitness-tracker/internal/telemetry/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Services are the handlers' dependencies. A nil PhotoService leaves the
// photo routes unregistered.
type Services struct {
	Auth     service.AuthService
	Exercise service.ExerciseService
	Workout  service.WorkoutService
	Record   service.WorkoutRecordService
	Photo    service.PhotoService
}

type RouterOptions struct {
	MetricsPath    string // empty disables /metrics
	TracingEnabled bool
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(services Services, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())
	if opts.TracingEnabled {
		router.Use(otelgin.Middleware(tracing.ServiceName))
	}
	SetupRoutes(router, services)

	if opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}
	return router
}

func SetupRoutes(router *gin.Engine, services Services) {
	authHandler := NewAuthHandler(services.Auth)
	exerciseHandler := NewExerciseHandler(services.Exercise)
	workoutHandler := NewWorkoutHandler(services.Workout, services.Record)
	recordHandler := NewRecordHandler(services.Record)

	authMiddleware := AuthMiddleware(services.Auth)

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
		protected.GET("/me", authHandler.Me)

		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:id", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", exerciseHandler.DeleteExercise)
		}

		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PATCH("/:id", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
			workoutGroup.PUT("/:id/groups", workoutHandler.UpdateComposition)
			workoutGroup.POST("/:id/complete", workoutHandler.CompleteWorkout)
		}

		recordGroup := protected.Group("/records")
		{
			recordGroup.POST("", recordHandler.LogRecord)
			recordGroup.GET("", recordHandler.ListRecords)
			recordGroup.GET("/:id", recordHandler.GetRecord)
			recordGroup.PUT("/:id", recordHandler.UpdateRecord)
			recordGroup.DELETE("/:id", recordHandler.DeleteRecord)

			if services.Photo != nil {
				photoHandler := NewPhotoHandler(services.Photo)
				recordGroup.POST("/:id/photos/upload-url", photoHandler.RequestUploadURL)
				recordGroup.POST("/:id/photos", photoHandler.ConfirmUpload)
				recordGroup.GET("/:id/photos", photoHandler.ListPhotos)
			}
		}

		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.POST("/users/:id/resync", recordHandler.ResyncUser)
		}
	}
}
