package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/sbilibin2017/gw-user-management/docs"
	"github.com/sbilibin2017/gw-user-management/internal/config"
	"github.com/sbilibin2017/gw-user-management/internal/handlers"
	"github.com/sbilibin2017/gw-user-management/internal/jwt"
	"github.com/sbilibin2017/gw-user-management/internal/logger"
	"github.com/sbilibin2017/gw-user-management/internal/middlewares"
	"github.com/sbilibin2017/gw-user-management/internal/migrations"
	"github.com/sbilibin2017/gw-user-management/internal/repositories"
	"github.com/sbilibin2017/gw-user-management/internal/services"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title gw-user-management API
// @version 1.0.0
// @description Registration, login and administration of user accounts
// @host localhost:5000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Build version: %s\nBuild date: %s\nBuild commit: %s\n", buildVersion, buildDate, buildCommit)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// routes collects what newRouter mounts.
type routes struct {
	home     http.HandlerFunc
	register http.HandlerFunc
	login    http.HandlerFunc
	users    http.HandlerFunc
	block    http.HandlerFunc
	unblock  http.HandlerFunc
	delete   http.HandlerFunc

	auth func(http.Handler) http.Handler
	tx   func(http.Handler) http.Handler

	corsOrigins []string
	swaggerURL  string
}

// newRouter builds the chi router: public routes, then the authenticated group.
func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)
	r.Use(middlewares.SecureHeadersMiddleware())
	r.Use(middlewares.CORSMiddleware(rt.corsOrigins))

	r.Get("/", rt.home)
	r.Post("/register", rt.register)
	r.With(rt.tx).Post("/login", rt.login)

	if rt.swaggerURL != "" {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(rt.swaggerURL)))
	}

	r.Group(func(r chi.Router) {
		r.Use(rt.auth)
		r.Get("/users", rt.users)
		r.Post("/block", rt.block)
		r.Post("/unblock", rt.unblock)
		r.Post("/delete", rt.delete)
	})

	return r
}

// run initializes the logger, database, services and HTTP server.
// It blocks until ctx is cancelled or a shutdown signal arrives.
func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infow("logger initialized", "level", cfg.LogLevel)

	logger.Log.Infow("connecting to database",
		"driver", cfg.DBDriver,
		"host", cfg.DBHost,
		"port", cfg.DBPort,
		"name", cfg.DBName,
	)
	db, err := sqlx.ConnectContext(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return fmt.Errorf("database connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)

	if cfg.Migrate {
		if err := migrations.Apply(ctx, db, cfg.DBDriver); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
	}

	tokens := jwt.New(
		jwt.WithSecretKey(cfg.JWTSecret),
		jwt.WithExpiration(cfg.JWTExp),
	)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db, middlewares.GetTxFromContext)
	userWriteRepo := repositories.NewUserWriteRepository(db, middlewares.GetTxFromContext)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, tokens)
	userService := services.NewUserService(userReadRepo, userWriteRepo)

	docs.SwaggerInfo.Host = cfg.Addr()

	r := newRouter(routes{
		home:        handlers.NewHomeHandler(),
		register:    handlers.NewRegisterHandler(authService),
		login:       handlers.NewLoginHandler(authService),
		users:       handlers.NewListUsersHandler(userService),
		block:       handlers.NewBlockHandler(userService, middlewares.GetUserFromContext),
		unblock:     handlers.NewUnblockHandler(userService, middlewares.GetUserFromContext),
		delete:      handlers.NewDeleteHandler(userService, middlewares.GetUserFromContext),
		auth:        middlewares.AuthMiddleware(tokens, userReadRepo),
		tx:          middlewares.TxMiddleware(db),
		corsOrigins: cfg.CORSOrigins,
		swaggerURL:  fmt.Sprintf("http://%s/swagger/doc.json", cfg.Addr()),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infow("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
