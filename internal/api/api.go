package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shubham-shewale/trade-sim/internal/auth"
	"github.com/shubham-shewale/trade-sim/internal/store"
	"github.com/shubham-shewale/trade-sim/pkg/config"
	"github.com/shubham-shewale/trade-sim/pkg/models"
)

// PriceSource answers "what is this symbol worth right now" without the
// handler waiting on a live fetch when the quote cache is warm.
type PriceSource interface {
	Price(ctx context.Context, symbol string) (float64, error)
}

// MarketData is the quote-adapter surface the market endpoints use.
type MarketData interface {
	Daily(ctx context.Context, ticker string, from, to time.Time) ([]models.OHLCBar, error)
	Suffix(symbol string) string
}

// Handlers carries the REST dependencies. All state lives behind the store
// and price-source boundaries.
type Handlers struct {
	users  store.UserStore
	trades store.TradeStore
	prices PriceSource
	market MarketData
	google *auth.Google
	cfg    *config.Config
	logger *zap.Logger
}

func NewHandlers(
	users store.UserStore,
	trades store.TradeStore,
	prices PriceSource,
	market MarketData,
	google *auth.Google,
	cfg *config.Config,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		users:  users,
		trades: trades,
		prices: prices,
		market: market,
		google: google,
		cfg:    cfg,
		logger: logger,
	}
}

// Register mounts all REST routes on the engine.
func (h *Handlers) Register(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{h.cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/", h.root)
	r.GET("/leaderboard", h.leaderboard)

	ag := r.Group("/auth")
	ag.GET("/google", h.googleLogin)
	ag.GET("/google/callback", h.googleCallback)
	ag.GET("/logout", h.logout)

	mw := auth.Middleware(h.cfg.Auth.JWTSecret)
	r.GET("/profile", mw, h.profile)

	protected := r.Group("", mw)
	protected.GET("/market/ohlc/:symbol", h.marketOHLC)
	protected.GET("/watchlist", h.getWatchlist)
	protected.POST("/watchlist", h.addToWatchlist)
	protected.DELETE("/watchlist/:symbol", h.removeFromWatchlist)
	protected.GET("/portfolio", h.portfolio)
	protected.POST("/portfolio/buy", h.buy)
	protected.POST("/portfolio/sell", h.sell)
	protected.GET("/orders", h.orders)
}

func (h *Handlers) root(c *gin.Context) {
	c.String(http.StatusOK, "Simulated Trading API is running")
}

func (h *Handlers) profile(c *gin.Context) {
	claims, ok := auth.UserFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":  claims.Name,
		"email": claims.Email,
	})
}
