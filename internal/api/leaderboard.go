package api

import (
	"math"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shubham-shewale/trade-sim/pkg/models"
)

// leaderboard ranks every user by percentage gain over starting cash.
// Holdings are valued at the current price; when a price cannot be fetched
// the position's average cost stands in so one dead symbol cannot sink the
// whole board.
func (h *Handlers) leaderboard(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching leaderboard."})
		return
	}
	positions, err := h.trades.AllPositions(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching leaderboard."})
		return
	}

	positionsByUser := make(map[string][]models.Position)
	for _, pos := range positions {
		positionsByUser[pos.UserID] = append(positionsByUser[pos.UserID], pos)
	}

	board := make([]models.LeaderboardEntry, 0, len(users))
	for _, user := range users {
		holdingsValue := 0.0
		for _, pos := range positionsByUser[user.ID] {
			price, err := h.prices.Price(ctx, pos.Symbol)
			if err != nil {
				h.logger.Debug("Falling back to average price",
					zap.String("symbol", pos.Symbol), zap.Error(err))
				price = pos.AveragePrice
			}
			holdingsValue += price * float64(pos.Quantity)
		}

		total := user.Cash + holdingsValue
		gain := (total - models.StartingCash) / models.StartingCash * 100
		board = append(board, models.LeaderboardEntry{
			Name:           user.Name,
			PortfolioValue: total,
			PercentageGain: math.Round(gain*100) / 100,
		})
	}

	sort.Slice(board, func(i, j int) bool {
		return board[i].PercentageGain > board[j].PercentageGain
	})
	c.JSON(http.StatusOK, board)
}
