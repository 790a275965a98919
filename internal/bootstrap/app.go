// Package bootstrap wires shared dependencies into a runnable application.
package bootstrap

import (
	"context"
	"database/sql"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/account"
	googleauth "github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/auth"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/extract"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/labreport"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/reports"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/services/health"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/config"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/server"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/storage/db"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/storage/object"
	localstore "github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/storage/object/local"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Store          object.ObjectStore
	OCR            extract.OCR
	ReportsRepo    reports.Repo
	UsersRepo      users.Repo
	ReportsService *reports.Service
	UsersService   *users.Service
	AccountService *account.Service
	ReportsHandler *reports.Handler
	UsersHandler   *users.Handler
	AccountHandler *account.Handler
	Health         *health.Service
	GoogleAuth     *googleauth.GoogleService
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  localstore.New(cfg.LocalStoreDir),
	}
	if strings.TrimSpace(cfg.OCREndpoint) != "" {
		app.OCR = extract.NewHTTPOCR(cfg.OCREndpoint)
	}

	if sqlDB != nil {
		app.ReportsRepo = &reports.PGRepo{DB: sqlDB}
		app.UsersRepo = &users.PGRepo{DB: sqlDB}
	} else {
		app.ReportsRepo = reports.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
	}

	app.ReportsService = &reports.Service{
		Store:     app.Store,
		Repo:      app.ReportsRepo,
		Extractor: &labreport.Extractor{OCR: app.OCR},
	}
	app.UsersService = users.NewService(app.UsersRepo)
	app.AccountService = account.NewService(app.ReportsRepo, app.UsersRepo)
	app.Health = health.NewService(sqlDB)

	app.ReportsHandler = reports.NewHandler(app.ReportsService)
	app.UsersHandler = users.NewHandler(app.UsersService)
	app.AccountHandler = account.NewHandler(app.AccountService)
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		app.UsersService,
	)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		Health:         app.Health,
		ReportsHandler: app.ReportsHandler,
		UsersHandler:   app.UsersHandler,
		AccountHandler: app.AccountHandler,
		GoogleAuth:     app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, errDatabaseRequired
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return sqlDB, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
