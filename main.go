package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/book-discovery/internal/api"
	"github.com/jonesrussell/book-discovery/internal/config"
	"github.com/jonesrussell/book-discovery/internal/handler"
	"github.com/jonesrussell/book-discovery/internal/logger"
	"github.com/jonesrussell/book-discovery/internal/recommend"
	"github.com/jonesrussell/book-discovery/internal/storage"
	"github.com/jonesrussell/book-discovery/internal/telemetry"

	_ "github.com/lib/pq"
)

// Database connection timeout.
const dbPingTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// Initialize logger
	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	// Connect to database
	db, err := connectDatabase(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	// Run server
	return runServer(cfg, log, db)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	configPath := config.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", "book-discovery")), nil
}

// connectDatabase opens and verifies a database connection.
func connectDatabase(cfg *config.Config, log logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	log.Info("Database connected",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Database),
	)

	return db, nil
}

// runServer creates all dependencies and starts the HTTP server.
func runServer(cfg *config.Config, log logger.Logger, db *sql.DB) int {
	metrics := telemetry.NewMetrics()

	// Read side: store + discovery service
	store := storage.NewStore(db, log)
	svc := recommend.NewService(store, recommend.Options{
		MinScore:     cfg.Discovery.MinScore,
		MaxPeers:     cfg.Discovery.MaxPeers,
		DefaultLimit: cfg.Discovery.DefaultLimit,
		MaxLimit:     cfg.Discovery.MaxLimit,
		FallbackSize: cfg.Discovery.FallbackSize,
	}, log)

	// Write side: loan buffer and batch store
	buf := storage.NewBuffer(cfg.Service.LoanBufferSize)
	loanStore := storage.NewLoanStore(db, buf, log,
		cfg.Service.LoanFlushInterval, cfg.Service.LoanFlushThreshold)
	loanStore.Start()
	defer loanStore.Stop()

	// Handlers
	discoveryHandler := handler.NewDiscoveryHandler(svc, metrics, log)
	loanHandler := handler.NewLoanHandler(buf, metrics, log)
	healthHandler := handler.NewHealthHandler(cfg.Service.Version, store.Ping)

	// done channel signals background goroutines (rate limiter) on shutdown
	done := make(chan struct{})
	defer close(done)

	rateLimitWindow := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	server := api.NewServer(cfg.Service.Port, cfg.Service.Debug, log, func(router *gin.Engine) {
		api.SetupRoutes(router, discoveryHandler, loanHandler, healthHandler,
			cfg.RateLimit.MaxRequestsPerMinute, rateLimitWindow, done)
	})

	log.Info("Book-discovery starting",
		logger.Int("port", cfg.Service.Port),
	)

	if err := server.Run(); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("Book-discovery exited cleanly")
	return 0
}
