package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shubham-shewale/trade-sim/internal/auth"
	"github.com/shubham-shewale/trade-sim/pkg/models"
)

type orderRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

func (h *Handlers) portfolio(c *gin.Context) {
	claims, _ := auth.UserFrom(c)
	ctx := c.Request.Context()

	positions, err := h.trades.ListPositions(ctx, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching portfolio."})
		return
	}
	user, err := h.users.GetUser(ctx, claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": positions, "cash": user.Cash})
}

// buy executes a simulated market buy: debit cash, append a FILLED order,
// fold the fill into the position's average price.
func (h *Handlers) buy(c *gin.Context) {
	claims, _ := auth.UserFrom(c)
	ctx := c.Request.Context()

	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Symbol == "" || req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Valid symbol and quantity are required."})
		return
	}

	ticker := h.market.Suffix(req.Symbol)
	marketPrice, err := h.prices.Price(ctx, ticker)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Could not fetch market price for symbol."})
		return
	}

	totalCost := marketPrice * float64(req.Quantity)
	user, err := h.users.GetUser(ctx, claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if user.Cash < totalCost {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient funds."})
		return
	}

	if err := h.users.UpdateUserCash(ctx, user.ID, user.Cash-totalCost); err != nil {
		h.logger.Error("Failed to debit cash", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while processing buy order."})
		return
	}

	order := models.Order{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Symbol:    ticker,
		Side:      models.SideBuy,
		Type:      models.OrderTypeMarket,
		Quantity:  req.Quantity,
		Price:     marketPrice,
		Status:    models.OrderStatusFilled,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.trades.AppendOrder(ctx, order); err != nil {
		h.logger.Error("Failed to append order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while processing buy order."})
		return
	}

	position, err := h.trades.GetPosition(ctx, user.ID, ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while processing buy order."})
		return
	}
	if position != nil {
		newQuantity := position.Quantity + req.Quantity
		position.AveragePrice = (position.AveragePrice*float64(position.Quantity) + totalCost) / float64(newQuantity)
		position.Quantity = newQuantity
	} else {
		position = &models.Position{
			UserID:       user.ID,
			Symbol:       ticker,
			Quantity:     req.Quantity,
			AveragePrice: marketPrice,
		}
	}
	if err := h.trades.UpsertPosition(ctx, *position); err != nil {
		h.logger.Error("Failed to upsert position", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while processing buy order."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Buy order executed successfully.",
		"order":    order,
		"position": position,
	})
}

// sell executes a simulated market sell; selling the whole position removes
// its document.
func (h *Handlers) sell(c *gin.Context) {
	claims, _ := auth.UserFrom(c)
	ctx := c.Request.Context()

	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Symbol == "" || req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Valid symbol and quantity are required."})
		return
	}

	ticker := h.market.Suffix(req.Symbol)
	position, err := h.trades.GetPosition(ctx, claims.UserID, ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while processing sell order."})
		return
	}
	if position == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Position not found. You do not own this stock."})
		return
	}
	if position.Quantity < req.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": fmt.Sprintf("Insufficient shares. You only own %d.", position.Quantity),
		})
		return
	}

	marketPrice, err := h.prices.Price(ctx, ticker)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Could not fetch market price for symbol."})
		return
	}

	user, err := h.users.GetUser(ctx, claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	proceeds := marketPrice * float64(req.Quantity)
	if err := h.users.UpdateUserCash(ctx, user.ID, user.Cash+proceeds); err != nil {
		h.logger.Error("Failed to credit cash", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while processing sell order."})
		return
	}

	order := models.Order{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Symbol:    ticker,
		Side:      models.SideSell,
		Type:      models.OrderTypeMarket,
		Quantity:  req.Quantity,
		Price:     marketPrice,
		Status:    models.OrderStatusFilled,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.trades.AppendOrder(ctx, order); err != nil {
		h.logger.Error("Failed to append order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while processing sell order."})
		return
	}

	position.Quantity -= req.Quantity
	if position.Quantity == 0 {
		err = h.trades.DeletePosition(ctx, user.ID, ticker)
	} else {
		err = h.trades.UpsertPosition(ctx, *position)
	}
	if err != nil {
		h.logger.Error("Failed to update position", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while processing sell order."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sell order executed successfully.",
		"order":   order,
	})
}

func (h *Handlers) orders(c *gin.Context) {
	claims, _ := auth.UserFrom(c)
	orders, err := h.trades.ListOrders(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching orders."})
		return
	}
	c.JSON(http.StatusOK, orders)
}
