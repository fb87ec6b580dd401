package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-reservation-store/config"
	"go-reservation-store/internal/infrastructure/cache"
	"go-reservation-store/internal/infrastructure/database"
	"go-reservation-store/internal/queue"
	"go-reservation-store/internal/repository"
	"go-reservation-store/internal/service"
	"go-reservation-store/internal/usecase"
	"go-reservation-store/pkg/jwt"
	"go-reservation-store/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Publisher   service.ReservationPublisher
	Log         *logrus.Logger

	Roles        usecase.RoleUsecase
	Users        usecase.UserUsecase
	Schedules    usecase.ScheduleUsecase
	Reservations usecase.ReservationUsecase
	Tokens       usecase.TokenUsecase
}

// LoadConfig sets up logging and reads configuration without touching any
// backing service.
func LoadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	setupLogger(cfg.App.Env)
	logrus.Info("Configuration loaded successfully")
	return cfg, nil
}

// New creates a new App instance with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg, Log: logrus.StandardLogger()}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Redis only accelerates revocation checks; run without it if unreachable
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logrus.Warnf("Redis unavailable, revocation checks go to the database: %v", err)
	} else {
		app.RedisClient = redisClient
		logrus.Info("Redis connected successfully")
	}

	// Initialize broker
	app.Publisher = service.NoopReservationPublisher{}
	if cfg.Broker.URL != "" {
		queueName := cfg.Broker.Queue
		if queueName == "" {
			queueName = queue.ReservationCreatedQueue
		}
		publisher, err := service.NewAMQPReservationPublisher(cfg.Broker.URL, queueName, app.Log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		app.Publisher = publisher
	}

	app.initializeUsecases()
	return app, nil
}

func (app *App) initializeUsecases() {
	tx := database.NewTransactor(app.DB)
	jwtService := jwt.NewJWTService(app.Config.JWT)
	customValidator := validator.NewValidator()

	// Initialize repositories
	roleRepo := repository.NewRoleRepository()
	userRepo := repository.NewUserRepository()
	scheduleRepo := repository.NewScheduleRepository()
	availabilityRepo := repository.NewAvailabilityRepository()
	reservationRepo := repository.NewReservationRepository()
	blockedTokenRepo := repository.NewBlockedTokenRepository()

	var revocationCache service.RevocationCache
	if app.RedisClient != nil {
		revocationCache = service.NewRedisRevocationCache(app.RedisClient)
	}

	// Initialize usecases
	app.Roles = usecase.NewRoleUsecase(tx, app.Log, customValidator, roleRepo)
	app.Users = usecase.NewUserUsecase(tx, app.Log, customValidator, userRepo, roleRepo, app.Config.App.BcryptCost)
	app.Schedules = usecase.NewScheduleUsecase(tx, app.Log, scheduleRepo, availabilityRepo, reservationRepo)
	app.Reservations = usecase.NewReservationUsecase(tx, app.Log, userRepo, scheduleRepo, availabilityRepo, reservationRepo, app.Publisher)
	app.Tokens = usecase.NewTokenUsecase(tx, app.Log, customValidator, blockedTokenRepo, userRepo, revocationCache, jwtService)
}

// NewMigrator opens a schema migrator on its own connection.
func NewMigrator(cfg *config.Config) (*database.Migrator, error) {
	return database.NewMigrator(cfg.DB.MigrationURL(), logrus.StandardLogger())
}

// RunWorker runs the token purge worker until SIGINT or SIGTERM.
func (app *App) RunWorker() {
	worker := service.NewTokenPurgeWorker(app.Tokens, app.Config.Revocation.PurgeInterval, app.Log)
	worker.Start()
	logrus.Infof("Environment: %s", app.Config.App.Env)

	app.waitForShutdown()

	worker.Stop()
	app.Close()
	logrus.Info("Worker shutdown complete")
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down worker...")
}

// Close closes all connections (database, redis, broker)
func (app *App) Close() {
	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			logrus.Warnf("Failed to close broker connection: %v", err)
		}
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

// setupLogger configures the logger
func setupLogger(env string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	if env == "development" {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
