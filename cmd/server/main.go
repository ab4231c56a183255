package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/gobwas/ws"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shubham-shewale/trade-sim/internal/api"
	"github.com/shubham-shewale/trade-sim/internal/auth"
	"github.com/shubham-shewale/trade-sim/internal/gateway"
	"github.com/shubham-shewale/trade-sim/internal/hub"
	"github.com/shubham-shewale/trade-sim/internal/quotes"
	"github.com/shubham-shewale/trade-sim/internal/store"
	"github.com/shubham-shewale/trade-sim/internal/ticker"
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

	quoteClient := quotes.NewClient(cfg.Quotes.BaseURL, cfg.Quotes.Suffix, cfg.Quotes.Timeout)
	cache := quotes.NewCache(quoteClient, logger)
	prices := quotes.NewPriceSource(cache, quoteClient)

	// Dependency Injection: Hub warms the cache on first subscription
	wsHub := hub.NewHub(cache, logger)

	broadcaster := ticker.NewBroadcaster(cache, wsHub, quoteClient, logger,
		cfg.WS.TickInterval, cfg.WS.RefreshInterval, cfg.WS.JitterBound)

	google := auth.NewGoogle(
		cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret, cfg.Auth.GoogleRedirectURL,
		cfg.Auth.GoogleAuthURL, cfg.Auth.GoogleTokenURL, cfg.Auth.GoogleUserInfoURL)

	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	handlers := api.NewHandlers(repo, repo, prices, quoteClient, google, cfg, logger)
	handlers.Register(router)

	router.GET("/ws", func(c *gin.Context) {
		conn, _, _, err := ws.UpgradeHTTP(c.Request, c.Writer)
		if err != nil {
			logger.Warn("WebSocket upgrade failed", zap.Error(err))
			return
		}
		client := gateway.NewClient(conn, wsHub, logger)
		client.Start()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go broadcaster.Run(ctx)

	srv := &http.Server{Addr: cfg.App.Port, Handler: router}

	go func() {
		logger.Info("Server Started", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("HTTP Error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutdown signal received")
	cancel()
	srv.Shutdown(context.Background())
	repo.Close()
	logger.Info("Shutdown Complete")
}
