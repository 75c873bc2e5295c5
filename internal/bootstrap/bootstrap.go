package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/coursegpa/internal/app/controllers"
	appMigrations "github.com/yigit/coursegpa/internal/app/migrations"
	appModels "github.com/yigit/coursegpa/internal/app/models"
	appRepos "github.com/yigit/coursegpa/internal/app/repositories"
	appRoutes "github.com/yigit/coursegpa/internal/app/routes"
	appServices "github.com/yigit/coursegpa/internal/app/services"
	"github.com/yigit/coursegpa/internal/config"
	"github.com/yigit/coursegpa/internal/db"
	appMiddleware "github.com/yigit/coursegpa/internal/middleware"
	"github.com/yigit/coursegpa/internal/pkg/apperrors"
	"github.com/yigit/coursegpa/internal/pkg/logger"
	"github.com/yigit/coursegpa/internal/pkg/websocket"
	"github.com/yigit/coursegpa/internal/seed"
)

// ConfigPathEnv overrides the default config file location
const ConfigPathEnv = "COURSEGPA_CONFIG"

// Database is the open store for whichever driver is configured
type Database struct {
	Driver   string
	sqlite   *db.SQLiteDB
	postgres *db.PostgresDB
}

// SQL returns a database/sql handle for the migrator
func (d *Database) SQL() *sql.DB {
	if d.postgres != nil {
		return d.postgres.SQL()
	}
	return d.sqlite.DB
}

// Repositories builds the repository set for the configured driver
func (d *Database) Repositories() *appRepos.Repositories {
	if d.postgres != nil {
		return appRepos.NewPostgresRepositories(d.postgres.Pool)
	}
	return appRepos.NewSQLiteRepositories(d.sqlite.DB)
}

// Close closes the underlying connection or pool
func (d *Database) Close() error {
	if d.postgres != nil {
		d.postgres.Close()
		return nil
	}
	if d.sqlite != nil {
		return d.sqlite.Close()
	}
	return nil
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos            *appRepos.Repositories
	CourseService    appServices.CourseService // Interface type
	CourseController *appControllers.CourseController
	Hub              *websocket.Hub
	CourseStream     *websocket.Handler[*appModels.CourseSnapshot]
	Logger           zerolog.Logger
}

// Close stops the stream hub and ends all course subscriptions
func (d *Dependencies) Close() {
	d.Hub.Stop()
	d.CourseService.Close()
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv(ConfigPathEnv); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().
		Str("config", configPath).
		Str("logLevel", string(logLevel)).
		Str("logFormat", cfg.Logging.Format).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the configured store and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*Database, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")

	database := &Database{Driver: cfg.Database.Driver}
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pg, err := db.NewPostgresDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}
		database.postgres = pg
	case config.DriverSQLite:
		lite, err := db.NewSQLiteDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to open database")
			return nil, err
		}
		database.sqlite = lite
		lgr.Info().Str("path", lite.Path).Msg("Using embedded SQLite store")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator, err := appMigrations.NewMigrator(database.SQL(), cfg.Database.Driver, lgr)
	if err != nil {
		database.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *Database, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = database.Repositories()
	deps.CourseService = appServices.NewCourseService(deps.Repos.CourseRepository, lgr)

	if cfg.Seed.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		_, err := seed.CreateDefaultData(ctx, deps.CourseService, cfg.Seed.File, lgr)
		cancel()
		switch {
		case errors.Is(err, apperrors.ErrValidationFailed) && !apperrors.IsStorageFault(err):
			// Invalid entries are logged by the seeder, proceed anyway
			lgr.Warn().Err(err).Msg("Seed file contained invalid courses")
		case err != nil:
			deps.CourseService.Close()
			return nil, fmt.Errorf("failed to seed default courses: %w", err)
		}
	}

	deps.CourseController = appControllers.NewCourseController(deps.CourseService, database.Driver, lgr)

	deps.Hub = websocket.NewHub(lgr.With().Str("component", "ws_hub").Logger())
	go deps.Hub.Run()
	deps.CourseStream = websocket.NewHandler[*appModels.CourseSnapshot](deps.Hub, deps.CourseService.WatchCourses, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	appMiddleware.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router, deps.CourseController, deps.CourseStream.HandleConnection)
	appRoutes.SetupSwagger(router)

	return router
}
