package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/frahmantamala/certification-management/internal"
	"github.com/frahmantamala/certification-management/internal/auth"
	authPG "github.com/frahmantamala/certification-management/internal/auth/postgres"
	"github.com/frahmantamala/certification-management/internal/certification"
	certPG "github.com/frahmantamala/certification-management/internal/certification/postgres"
	"github.com/frahmantamala/certification-management/internal/core/events"
	"github.com/frahmantamala/certification-management/internal/eligibility"
	eligPG "github.com/frahmantamala/certification-management/internal/eligibility/postgres"
	"github.com/frahmantamala/certification-management/internal/employee"
	employeePG "github.com/frahmantamala/certification-management/internal/employee/postgres"
	"github.com/frahmantamala/certification-management/internal/rule"
	rulePG "github.com/frahmantamala/certification-management/internal/rule/postgres"
	"github.com/frahmantamala/certification-management/internal/transport/rest"
	"github.com/frahmantamala/certification-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
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
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	registerRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func registerRoutes(deps *Dependencies) {
	gdb := deps.GormDB
	lg := deps.Logger
	bus := deps.EventBus
	cfg := deps.Config

	employeeRepo := employeePG.NewEmployeeRepository(gdb)
	ruleRepo := rulePG.NewRuleRepository(gdb)
	certRepo := certPG.NewCertificationRepository(gdb)
	eligRepo := eligPG.NewEligibilityRepository(gdb)
	authRepo := authPG.NewRepository(gdb)

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, cfg.Security.BCryptCost)

	employeeService := employee.NewService(employeeRepo, bus, lg)
	ruleService := rule.NewService(ruleRepo, employeeRepo, bus, lg)
	certService := certification.NewService(certRepo, ruleService, employeeRepo, bus, lg)
	eligService := eligibility.NewService(
		eligRepo, employeeRepo, ruleRepo, certRepo, lg,
		cfg.Eligibility.ChunkSize(), cfg.Eligibility.BatchSize(),
	)

	eligibility.NewEventHandler(eligService, lg).RegisterEventHandlers(bus)
	certification.NewEventHandler(certService, lg).RegisterEventHandlers(bus)

	handlers := rest.Handlers{
		Auth:          auth.NewHandler(authService),
		Employee:      employee.NewHandler(employeeService),
		Rule:          rule.NewHandler(ruleService),
		Certification: certification.NewHandler(certService),
		Eligibility:   eligibility.NewHandler(eligService),
	}

	var origins []string
	if cfg.Server.AllowedOrigins != "" {
		origins = strings.Split(cfg.Server.AllowedOrigins, ",")
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, lg, origins)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	lg := logger.L()

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		GormDB:   gdb,
		Router:   chi.NewRouter(),
		EventBus: events.NewEventBus(lg),
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

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm wraps the shared connection pool for the repositories.
// TranslateError maps driver unique-violation errors onto
// gorm.ErrDuplicatedKey, which the eligibility repository depends on.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{
		TranslateError: true,
	})
}
