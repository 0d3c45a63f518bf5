package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"checkout-service/internal/config"
	"checkout-service/internal/db"
	"checkout-service/internal/events"
	"checkout-service/internal/httpapi"
	"checkout-service/internal/order"
	"checkout-service/internal/rabbit"
)

func main() {
	cfg, err := config.LoadOrder()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := newLogger(cfg.Environment)
	defer func() { _ = logger.Sync() }()

	if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	database, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer database.Close()

	repo := order.NewRepository(database)
	pipeline := order.NewService(repo, logger)

	manager := rabbit.NewConnectionManager(cfg.RabbitURL, logger)
	defer func() { _ = manager.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := events.NewConsumer(manager, events.BasketCheckedOutHandler(pipeline, logger), logger)
	if err := consumer.Start(ctx); err != nil {
		logger.Fatal("start consumer", zap.Error(err))
	}

	router := httpapi.NewOrderRouter(httpapi.NewOrderHandler(pipeline, repo))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("order-service listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Fatal("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
	// Let the in-flight delivery finish or requeue before the connection
	// drops.
	if err := consumer.Stop(shutdownCtx); err != nil {
		logger.Warn("consumer stop error", zap.Error(err))
	}
}

func newLogger(environment string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	return logger
}
