package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/admin-access/internal"
	"github.com/frahmantamala/admin-access/internal/app"
	apppg "github.com/frahmantamala/admin-access/internal/app/postgres"
	"github.com/frahmantamala/admin-access/internal/auth"
	authpg "github.com/frahmantamala/admin-access/internal/auth/postgres"
	"github.com/frahmantamala/admin-access/internal/permission"
	permissionpg "github.com/frahmantamala/admin-access/internal/permission/postgres"
	"github.com/frahmantamala/admin-access/internal/transport"
	"github.com/frahmantamala/admin-access/internal/transport/rest"
	"github.com/frahmantamala/admin-access/internal/user"
	userpg "github.com/frahmantamala/admin-access/internal/user/postgres"
	"github.com/frahmantamala/admin-access/internal/usergroup"
	usergrouppg "github.com/frahmantamala/admin-access/internal/usergroup/postgres"
	"github.com/frahmantamala/admin-access/internal/view"
	viewpg "github.com/frahmantamala/admin-access/internal/view/postgres"
	"github.com/frahmantamala/admin-access/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router chi.Router
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm rides on the already-pooled pgx connection
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	codec := auth.NewTokenCodec(config.Security.JWTSecret, config.Security.AccessTokenTTL)
	authSvc := auth.NewService(authpg.NewRepository(gormDB), codec, config.Security.BCryptCost, lg)

	userSvc := user.NewService(userpg.NewRepository(gormDB),
		config.Security.BCryptCost, config.Security.TempPasswordLength, lg)
	groupSvc := usergroup.NewService(usergrouppg.NewRepository(gormDB), lg)
	permissionSvc := permission.NewService(permissionpg.NewRepository(gormDB), lg)
	appSvc := app.NewService(apppg.NewRepository(gormDB), lg)
	viewSvc := view.NewService(viewpg.NewRepository(gormDB), lg)

	base := transport.NewBaseHandler(lg)
	handlers := rest.Handlers{
		Auth:       auth.NewHandler(authSvc),
		User:       user.NewHandler(base, userSvc),
		UserGroup:  usergroup.NewHandler(base, groupSvc),
		Permission: permission.NewHandler(base, permissionSvc),
		App:        app.NewHandler(base, appSvc),
		View:       view.NewHandler(base, viewSvc),
	}

	router := rest.NewRouter(db.DB, authSvc, handlers, "api/openapi.yml")

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
