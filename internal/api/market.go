package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shubham-shewale/trade-sim/internal/auth"
)

// marketOHLC returns the last day's bars for a symbol straight from the
// quote source.
func (h *Handlers) marketOHLC(c *gin.Context) {
	ticker := h.market.Suffix(c.Param("symbol"))

	now := time.Now()
	bars, err := h.market.Daily(c.Request.Context(), ticker, now.Add(-24*time.Hour), now)
	if err != nil {
		h.logger.Warn("OHLC fetch failed", zap.String("ticker", ticker), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"message": "Invalid symbol or no data available."})
		return
	}
	if len(bars) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No data found for the given symbol"})
		return
	}
	c.JSON(http.StatusOK, bars)
}

func (h *Handlers) getWatchlist(c *gin.Context) {
	claims, _ := auth.UserFrom(c)
	user, err := h.users.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching watchlist."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"watchlist": user.Watchlist})
}

func (h *Handlers) addToWatchlist(c *gin.Context) {
	claims, _ := auth.UserFrom(c)

	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Symbol is required."})
		return
	}

	ticker := h.market.Suffix(req.Symbol)
	watchlist, err := h.users.AddToWatchlist(c.Request.Context(), claims.UserID, ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while adding to watchlist."})
		return
	}
	c.JSON(http.StatusOK, watchlist)
}

func (h *Handlers) removeFromWatchlist(c *gin.Context) {
	claims, _ := auth.UserFrom(c)

	ticker := h.market.Suffix(c.Param("symbol"))
	watchlist, err := h.users.RemoveFromWatchlist(c.Request.Context(), claims.UserID, ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while removing from watchlist."})
		return
	}
	c.JSON(http.StatusOK, watchlist)
}
