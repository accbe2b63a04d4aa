package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finflow/internal/amqp"
	"finflow/internal/bot"
	"finflow/internal/config"
	apphttp "finflow/internal/http"
	applog "finflow/internal/log"
	"finflow/internal/services"
	"finflow/internal/storage"
	"finflow/internal/store"
	"finflow/internal/store/memory"
)

func main() {
	// Load .env for local development; in containers the variables come
	// from the environment directly.
	_ = godotenv.Load()

	logger := applog.Setup("finflow")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var (
		transactions store.TransactionStore
		bindings     store.BindingStore
	)
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		transactions, bindings = repo, repo
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		st := memory.New()
		transactions, bindings = st, st
		logger.Info("Initialized memory backend")
	}

	var amqpClient *amqp.Client
	if cfg.SyncEnabled() {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		logger.Info("Sheet sync enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Sheet sync disabled - no AMQP_URL provided")
	}

	service := services.NewTransactionService(transactions, amqpClient)
	engine := bot.NewEngine(service, transactions, bindings)

	srv := apphttp.NewServer(":"+cfg.Port, service, transactions, bindings, engine, cfg.CacheSize, cfg.CacheTTL)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting finflow server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
