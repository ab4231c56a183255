package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shubham-shewale/trade-sim/cmd/datasync/internal/syncer"
	"github.com/shubham-shewale/trade-sim/internal/quotes"
	"github.com/shubham-shewale/trade-sim/internal/store"
	"github.com/shubham-shewale/trade-sim/pkg/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := config.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	repo := store.NewRedisStore(rdb)
	if err := repo.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	since, err := time.Parse("2006-01-02", cfg.Sync.StartDate)
	if err != nil {
		logger.Fatal("Invalid sync start date", zap.String("start_date", cfg.Sync.StartDate), zap.Error(err))
	}

	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.UTC
	}

	quoteClient := quotes.NewClient(cfg.Quotes.BaseURL, cfg.Quotes.Suffix, cfg.Quotes.Timeout)
	job := syncer.New(quoteClient, repo, logger, cfg.Sync.Symbols, since)

	ctx, cancel := context.WithCancel(context.Background())
	go job.RunDaily(ctx, cfg.Sync.At, loc)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutdown signal received")
	cancel()
	repo.Close()
	logger.Info("Datasync exited cleanly")
}
