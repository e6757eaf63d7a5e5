package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/hockey-gm/pkg/utils"
)

// HistoryHandler serves the SQLite archive: box scores and the
// transaction wire.
type HistoryHandler struct {
	*Deps
}

func NewHistoryHandler(deps *Deps) *HistoryHandler {
	return &HistoryHandler{Deps: deps}
}

func (h *HistoryHandler) querySeason(c *gin.Context) int {
	if v := c.Query("season"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	h.Mu.RLock()
	defer h.Mu.RUnlock()
	return h.state().Season
}

func queryLimit(c *gin.Context) int {
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// GetGames lists archived games for a season, optionally one team's.
func (h *HistoryHandler) GetGames(c *gin.Context) {
	season := h.querySeason(c)
	games, err := h.GameLog.GamesFor(season, c.Query("team"), queryLimit(c))
	if err != nil {
		h.Log.WithError(err).Error("Failed to read game archive")
		utils.SendInternalError(c, "Could not read the game archive")
		return
	}
	utils.SendSuccess(c, games)
}

// GetTransactions lists the league wire.
func (h *HistoryHandler) GetTransactions(c *gin.Context) {
	season := h.querySeason(c)
	txs, err := h.GameLog.TransactionsFor(season, c.Query("team"), queryLimit(c))
	if err != nil {
		h.Log.WithError(err).Error("Failed to read transaction archive")
		utils.SendInternalError(c, "Could not read the transaction archive")
		return
	}
	utils.SendSuccess(c, txs)
}

// GetSeriesGames returns a playoff series' box scores in order.
func (h *HistoryHandler) GetSeriesGames(c *gin.Context) {
	games, err := h.GameLog.SeriesGames(c.Param("id"))
	if err != nil {
		h.Log.WithError(err).Error("Failed to read series games")
		utils.SendInternalError(c, "Could not read the series archive")
		return
	}
	if len(games) == 0 {
		utils.SendNotFound(c, "Series not found")
		return
	}
	utils.SendSuccess(c, games)
}
