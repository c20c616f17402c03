package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/fitness-tracker/internal/api"
	"alcyxob/fitness-tracker/internal/config"
	"alcyxob/fitness-tracker/internal/logging"
	"alcyxob/fitness-tracker/internal/repository/memory"
	"alcyxob/fitness-tracker/internal/repository/mongo"
	"alcyxob/fitness-tracker/internal/repository/postgres"
	"alcyxob/fitness-tracker/internal/service"
	"alcyxob/fitness-tracker/internal/storage"
	"alcyxob/fitness-tracker/internal/telemetry/tracing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// @title Fitness Tracker API
// @version 1.0
// @description Workout plans, completed workout records and progress photos.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.WithField("driver", cfg.Database.Driver).Info("starting fitness tracker server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.Setup(ctx, tracing.SetupParams{
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			log.Fatalf("could not set up tracing: %v", err)
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.WithError(err).Error("tracing shutdown")
			}
		}()
	}

	deps, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("could not open %s store: %v", cfg.Database.Driver, err)
	}
	defer closeStore()

	// --- Initialize Storage ---
	var photoService service.PhotoService
	if cfg.S3.BucketName != "" {
		fileStorage, err := storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("could not initialize s3 storage: %v", err)
		}
		deps.FileStorage = fileStorage
		photoService = service.NewPhotoService(deps.Records, deps.Photos, fileStorage)
	} else {
		log.Warn("s3.bucket_name not set, progress photos disabled")
	}

	// --- Initialize Services ---
	services := api.Services{
		Auth:     service.NewAuthService(deps.Users, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.Auth.AdminEmails),
		Exercise: service.NewExerciseService(deps.Exercises),
		Workout:  service.NewWorkoutService(deps),
		Record:   service.NewWorkoutRecordService(deps),
		Photo:    photoService,
	}

	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	routerOpts := api.RouterOptions{TracingEnabled: cfg.Tracing.Enabled}
	if cfg.Metrics.Enabled {
		routerOpts.MetricsPath = cfg.Metrics.Path
	}

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(services, routerOpts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("listen and serve: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("server forced to shut down")
	}
	log.Info("server exited")
}

// openStore connects the configured database and returns the repositories
// together with a func releasing the connection.
func openStore(ctx context.Context, cfg config.Config) (service.Dependencies, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, postgres.NewPoolParams{
			DSN:            cfg.Database.PostgresDSN,
			TracingEnabled: cfg.Tracing.Enabled,
		})
		if err != nil {
			return service.Dependencies{}, nil, err
		}
		migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := postgres.Migrate(migrateCtx, pool); err != nil {
			pool.Close()
			return service.Dependencies{}, nil, err
		}
		return service.Dependencies{
			Transactor: postgres.NewTransactor(pool),
			Users:      postgres.NewUserRepository(pool),
			Exercises:  postgres.NewExerciseRepository(pool),
			Workouts:   postgres.NewWorkoutRepository(pool),
			Records:    postgres.NewWorkoutRecordRepository(pool),
			Photos:     postgres.NewPhotoRepository(pool),
		}, pool.Close, nil

	case config.DriverMemory:
		log.Warn("using the in-memory store, data is lost on exit")
		store := memory.NewStore()
		return service.Dependencies{
			Transactor: store,
			Users:      memory.NewUserRepository(store),
			Exercises:  memory.NewExerciseRepository(store),
			Workouts:   memory.NewWorkoutRepository(store),
			Records:    memory.NewWorkoutRecordRepository(store),
			Photos:     memory.NewPhotoRepository(store),
		}, func() {}, nil

	default:
		client, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			return service.Dependencies{}, nil, err
		}
		db := client.Database(cfg.Database.Name)

		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(indexCtx, db); err != nil {
			if derr := mongo.DisconnectDB(client); derr != nil {
				log.WithError(derr).Error("disconnect mongo")
			}
			return service.Dependencies{}, nil, err
		}
		if !cfg.Database.Transactions {
			log.Warn("mongo transactions disabled, failed workflows may leave partial writes")
		}

		closeFn := func() {
			if err := mongo.DisconnectDB(client); err != nil {
				log.WithError(err).Error("disconnect mongo")
			}
		}
		return service.Dependencies{
			Transactor: mongo.NewTransactor(client, cfg.Database.Transactions),
			Users:      mongo.NewMongoUserRepository(db),
			Exercises:  mongo.NewMongoExerciseRepository(db),
			Workouts:   mongo.NewMongoWorkoutRepository(db),
			Records:    mongo.NewMongoWorkoutRecordRepository(db),
			Photos:     mongo.NewMongoPhotoRepository(db),
		}, closeFn, nil
	}
}
