package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ledgerapp "github.com/edutrack/backend/internal/application/ledger"
	"github.com/edutrack/backend/internal/infrastructure/config"
	"github.com/edutrack/backend/internal/infrastructure/event"
	"github.com/edutrack/backend/internal/infrastructure/logger"
	"github.com/edutrack/backend/internal/infrastructure/persistence"
	"github.com/edutrack/backend/internal/interfaces/http/handler"
	"github.com/edutrack/backend/internal/interfaces/http/middleware"
	"github.com/edutrack/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(&cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting fee ledger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database ready", zap.String("driver", cfg.Database.Driver))

	store := persistence.NewGormStore(db.DB)

	// seed the settings aggregate on first start
	settings, err := ledgerapp.EnsureSettings(context.Background(), store,
		cfg.School.Name, cfg.School.Currency, cfg.School.AcademicYear, cfg.School.Grades)
	if err != nil {
		log.Fatal("Failed to initialize school settings", zap.Error(err))
	}
	log.Info("School settings loaded",
		zap.String("school", settings.SchoolName),
		zap.String("academic_year", settings.AcademicYear),
	)

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))

	paymentService := ledgerapp.NewPaymentService(store, eventBus)
	studentService := ledgerapp.NewStudentService(store, eventBus)
	settingsService := ledgerapp.NewSettingsService(store, eventBus)
	archiveService := ledgerapp.NewArchiveService(store, eventBus)
	backupService := ledgerapp.NewBackupService(store)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithOrigins(cfg.HTTP.CORSAllowOrigins))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewSystemHandler(db)).
		Register(handler.NewStudentHandler(studentService, paymentService)).
		Register(handler.NewPaymentHandler(paymentService)).
		Register(handler.NewSettingsHandler(settingsService)).
		Register(handler.NewArchiveHandler(archiveService)).
		Register(handler.NewBackupHandler(backupService)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
