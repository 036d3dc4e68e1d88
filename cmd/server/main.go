package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"vendor-compliance/backend/internal/api"
	"vendor-compliance/backend/internal/auth"
	"vendor-compliance/backend/internal/cache"
	"vendor-compliance/backend/internal/compliance"
	"vendor-compliance/backend/internal/config"
	"vendor-compliance/backend/internal/engine"
	"vendor-compliance/backend/internal/logging"
	"vendor-compliance/backend/internal/repository"
	"vendor-compliance/backend/internal/tls"
	"vendor-compliance/backend/internal/workflow"
)

func main() {
	ctx := context.Background()

	// Initialize logging
	logger := logging.NewLogger()

	// Parse command line flags
	envFile := flag.String("env", "", "Path to .env file")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("Failed to load env file: %v", err)
		}
	} else {
		_ = godotenv.Load()
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		log.Fatalf("Configuration loading failed: %v", err)
	}

	logger.Info("Starting Vendor Compliance Review Service")

	// Initialize database connection
	dbPool, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer dbPool.Close()

	logger.Info("Database connected")

	// Initialize repository layer
	repo := repository.NewPostgresRepository(dbPool)
	blobs := repository.NewFileBlobStore(cfg.Storage.DocumentsDir)

	// Workflow schema and engine capability
	schemas := workflow.NewLoader(cfg.Workflow.SchemaPaths...)
	resolver := engine.NewCapabilityResolver(cfg.Engine.DocsPath, cfg.Engine.BaseURL, cfg.Engine.ServiceKey)

	capability := resolver.Resolve()
	if capability.Enabled {
		logger.Info("Review engine integration is live", "base_url", capability.BaseURL)
	} else {
		logger.Warn("Review engine integration disabled; manual mode", "reason", capability.Reason)
	}

	// Optional Redis-backed status cache
	var statuses compliance.StatusCache
	if cfg.Redis.Enable {
		statusCache, err := cache.NewStatusCache(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.StatusTTL,
		})
		if err != nil {
			logger.Error("Failed to initialize status cache", "error", err)
			log.Fatalf("Status cache initialization failed: %v", err)
		}
		statuses = statusCache
		logger.Info("Status cache connected", "addr", cfg.Redis.Addr)
	}

	// Initialize service layer
	clients := func(capability engine.Capability) compliance.EngineClient {
		return engine.NewClient(capability, cfg.Engine.ServiceKey)
	}
	reviews := compliance.NewService(repo, blobs, schemas, resolver, clients, statuses, cfg.Engine.WorkflowID, logger)

	logger.Info("Service layer initialized")

	// Create Echo server
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("vendor-compliance"))

	// Initialize authentication
	authz, err := auth.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize auth", "error", err)
		log.Fatalf("auth initialization failed: %v", err)
	}

	// Register auth handlers
	e.GET("/login", echo.WrapHandler(http.HandlerFunc(authz.LoginHandler)))
	e.GET("/auth/callback", echo.WrapHandler(http.HandlerFunc(authz.CallbackHandler)))
	e.GET("/logout", echo.WrapHandler(http.HandlerFunc(authz.LogoutHandler)))

	// Mount REST API handlers
	server := api.NewServer(reviews, repo, schemas, resolver, logger)
	e.GET("/health", server.HandleHealth)

	apiGroup := e.Group("/api/v1")
	apiGroup.Use(echo.WrapMiddleware(authz.RequireAuth))
	api.RegisterRoutes(apiGroup, server)

	logger.Info("REST API handlers mounted")

	// Create HTTP server
	addr := ":8080"
	if cfg.TLS.Enable {
		addr = ":8443"
	}
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", addr, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
				logger.Error("TLS enabled but cert/key file not provided")
				serverErrors <- httpServer.ListenAndServe()
				return
			}
			if _, err := os.Stat(cfg.TLS.CertFile); os.IsNotExist(err) {
				if len(cfg.TLS.Hostnames) > 0 {
					if err := tls.GenerateSelfSignedCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
						logger.Error("failed to generate self-signed cert", "error", err)
					}
				}
			}
			serverErrors <- httpServer.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- httpServer.ListenAndServe()
		}
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			if err := httpServer.Close(); err != nil {
				logger.Error("Server close error", "error", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	logger.Debug("Initializing database connection")

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
