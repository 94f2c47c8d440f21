package main

import (
	"SmartClinic/cache"
	"SmartClinic/config"
	"SmartClinic/database"
	"SmartClinic/logger"
	"SmartClinic/metrics"
	"SmartClinic/repositories"
	"SmartClinic/routes"
	"SmartClinic/tracer"
	"SmartClinic/utils"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	// Load configuration from config package
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			zlog.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	// Initialize the database
	db, err := database.InitDB(ctx, cfg.DBURL, cfg.IsDevelopment(), zlog)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	// Initialize Redis
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis, zlog)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	// Initialize the cache utility
	store, err := cache.NewCache(redisClient)
	if err != nil {
		return err
	}

	tokens, err := utils.NewTokenMaker(cfg.GetSymmetricKey(), cfg.SessionTTL)
	if err != nil {
		return err
	}

	handler := routes.SetupRoutes(cfg, routes.Dependencies{
		Users:        repositories.NewUserRepository(db, store, zlog),
		Directory:    repositories.NewDirectoryRepository(db, store, zlog),
		Appointments: repositories.NewAppointmentRepository(db),
		Contacts:     repositories.NewEmergencyContactRepository(db),
		Ambulances:   repositories.NewAmbulanceRepository(db),
		Store:        store,
		Locker:       database.NewRedisLocker(redisClient, zlog),
		Collector:    metrics.NewCollector("smartclinic"),
		Tokens:       tokens,
		Log:          zlog,
	})

	// Configure and start the server
	srv := &http.Server{
		Addr:           cfg.ServerAddr,
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(2)

	serveErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		zlog.Info("starting server", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				database.MonitorRedisPool(redisClient, zlog)
			}
		}
	}()

	<-ctx.Done()

	// Create a context with a timeout for shutdown
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	zlog.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	wg.Wait() // Wait for all goroutines to finish before exiting
	zlog.Info("server exited gracefully")

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}
