package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/g37/meeting-manager/internal/adapter/handler"
	"github.com/g37/meeting-manager/internal/adapter/repository"
	"github.com/g37/meeting-manager/internal/infrastructure/cache"
	"github.com/g37/meeting-manager/internal/infrastructure/database"
	"github.com/g37/meeting-manager/internal/infrastructure/external/automation"
	"github.com/g37/meeting-manager/internal/infrastructure/external/primarystore"
	httpmw "github.com/g37/meeting-manager/internal/infrastructure/http/middleware"
	"github.com/g37/meeting-manager/internal/infrastructure/metrics"
	"github.com/g37/meeting-manager/internal/usecase/meetings"
	"github.com/g37/meeting-manager/internal/usecase/reconcile"
	syncusecase "github.com/g37/meeting-manager/internal/usecase/sync"
	"github.com/g37/meeting-manager/internal/usecase/workflow"
	"github.com/g37/meeting-manager/pkg/config"
	"github.com/g37/meeting-manager/pkg/eventbus"
	"github.com/g37/meeting-manager/pkg/jwt"
	pkgvalidator "github.com/g37/meeting-manager/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Set-Cookie", "Cookie"},
		AllowCredentials: true,
	}))

	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running GORM AutoMigrate (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping GORM AutoMigrate; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	snapshot := cache.NewSnapshotStore(redisClient, 5*time.Minute)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	appMetrics := metrics.New(registry)

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	actionRepo := repository.NewPendingActionRepository(db)

	// Initialize source clients
	log.Println("🔌 Initializing meeting source clients...")
	primaryClient := primarystore.NewClient(cfg.Sources.PrimaryBaseURL, cfg.Sources.FetchTimeout)

	automationURL := ""
	if cfg.Automation.Enabled {
		automationURL = cfg.Automation.WebhookURL
	}
	automationClient := automation.NewClient(automationURL, cfg.Automation.APIKey, cfg.Automation.Timeout)
	if automationClient.Available() {
		log.Println("✅ Automation webhook configured")
	} else {
		log.Println("⚠️  Automation webhook not configured; external sync reports unavailable")
	}

	// Initialize reconciliation engine
	log.Println("🔀 Initializing reconciliation engine...")
	bus := eventbus.New()
	sources := []reconcile.Source{
		reconcile.NewPrimarySource(primaryClient, logger),
		reconcile.NewRecordingSource(primaryClient, logger),
		reconcile.NewAutomationSource(automationClient, logger),
	}
	engine := reconcile.NewEngine(sources, reconcile.Options{
		FetchTimeout:  cfg.Sources.FetchTimeout,
		RetryDegraded: cfg.Sources.RetryDegraded,
	}, logger, bus, appMetrics)

	// Initialize services
	log.Println("✨ Initializing services...")
	meetingService := meetings.NewMeetingService(engine, primaryClient, snapshot, logger)
	workflowService := workflow.NewWorkflowService(actionRepo, meetingService, automationClient, logger, appMetrics)
	syncService := syncusecase.NewSyncService(automationClient, actionRepo, logger, appMetrics)

	// Initialize JWT manager and auth middleware
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)
	authMW := httpmw.EchoAuth(jwtManager)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	overlay := handler.NewEditOverlay()
	meetingHandler := handler.NewMeeting(meetingService, logger)
	pendingActionHandler := handler.NewPendingAction(workflowService, syncService, overlay, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, meetingHandler, pendingActionHandler, authMW, registry)
	router.Setup(e)

	// Background sync ticker, enabled by SYNC_INTERVAL
	syncCtx, stopSync := context.WithCancel(context.Background())
	defer stopSync()
	if cfg.Sync.Interval > 0 && automationClient.Available() {
		log.Printf("⏱️  Background external sync every %s", cfg.Sync.Interval)
		go runBackgroundSync(syncCtx, cfg.Sync.Interval, engine, syncService, logger)
	}

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	stopSync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped")
}

// runBackgroundSync periodically imports external operations for every
// meeting the reconciliation currently knows. Each run is best effort.
func runBackgroundSync(ctx context.Context, interval time.Duration, engine *reconcile.Engine, syncService syncusecase.Service, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := engine.Load(ctx)
			if err != nil {
				logger.Warn("background sync skipped, reconciliation failed", zap.Error(err))
				continue
			}
			for _, m := range result.Meetings {
				if _, err := syncService.Sync(ctx, m.ID); err != nil {
					logger.Warn("background sync failed for meeting",
						zap.String("meeting_id", m.ID),
						zap.Error(err),
					)
				}
			}
		}
	}
}
