package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-trade-bot-go/internal/config"
	"solana-trade-bot-go/internal/database"
	"solana-trade-bot-go/internal/jupiter"
	"solana-trade-bot-go/internal/logger"
	"solana-trade-bot-go/internal/server"
	"solana-trade-bot-go/internal/swap"
	"solana-trade-bot-go/internal/trade"

	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Initialize the Jupiter client and the swap gateway
	jupClient := jupiter.NewClient(&cfg.Jupiter, log)
	gateway, err := swap.NewGateway(jupClient, cfg.Solana.RPCURL, cfg.Solana.SignerKey, log)
	if err != nil {
		log.Fatal("Failed to initialize swap gateway", zap.Error(err))
	}

	// Initialize the trade service and the HTTP API
	service := trade.NewService(gateway, trade.NewRepository(db), &cfg.Trading, log)
	srv := server.New(&cfg.Server, service, log)
	srv.Start()

	// Wait for shutdown signal
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	log.Info("Shutdown signal received, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Error("Failed to stop API server cleanly", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
