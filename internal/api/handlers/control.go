package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/hockey-gm/internal/league"
	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/pkg/utils"
)

// ControlHandler owns the endpoints that move the franchise clock or
// rebuild the world.
type ControlHandler struct {
	*Deps
}

func NewControlHandler(deps *Deps) *ControlHandler {
	return &ControlHandler{Deps: deps}
}

type advanceRequest struct {
	// Day makes the advance idempotent: resubmitting the same day is a
	// replay, not a second simulation.
	Day int `json:"day"`
}

// Advance simulates the next league day and persists everything it
// produced. The simulation only sticks once the save lands; a failed
// persist rolls the league back to the last saved day.
func (h *ControlHandler) Advance(c *gin.Context) {
	var req advanceRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	h.Mu.Lock()
	prevState, prevArchive, err := h.Driver.Checkpoint()
	if err != nil {
		h.Mu.Unlock()
		h.Log.WithError(err).Error("Checkpoint failed")
		utils.SendInternalError(c, "Failed to advance the league day")
		return
	}
	outcome, err := h.Driver.AdvanceDay(req.Day)
	if err != nil {
		h.Mu.Unlock()
		h.Log.WithError(err).Error("Day advance failed")
		utils.SendInternalError(c, "Failed to advance the league day")
		return
	}

	if !outcome.Replayed {
		if err := h.persist(); err != nil {
			h.Driver.Restore(prevState, prevArchive)
			h.Mu.Unlock()
			h.Log.WithError(err).Error("Failed to save league state")
			utils.SendInternalError(c, "Could not save the simulated day; nothing advanced")
			return
		}
		if err := h.GameLog.RecordResults(outcome.Results); err != nil {
			h.Log.WithError(err).Error("Failed to archive game results")
		}
		if err := h.GameLog.RecordTransactions(outcome.Transactions); err != nil {
			h.Log.WithError(err).Error("Failed to archive transactions")
		}
	}
	phase := string(outcome.Phase)
	h.Mu.Unlock()

	if !outcome.Replayed {
		h.Hub.BroadcastDayResults(outcome)
		h.Hub.BroadcastNews(outcome.News)
		if outcome.Phase != models.PhaseRegular {
			h.Hub.BroadcastPhaseChange(phase)
		}
	}
	utils.SendSuccess(c, outcome)
}

// Reset abandons the franchise and boots a fresh league.
func (h *ControlHandler) Reset(c *gin.Context) {
	h.Mu.Lock()
	defer h.Mu.Unlock()

	if err := h.Snaps.Reset(); err != nil {
		h.Log.WithError(err).Error("Failed to remove save files")
		utils.SendInternalError(c, "Failed to reset the franchise")
		return
	}
	if err := h.GameLog.Wipe(); err != nil {
		h.Log.WithError(err).Error("Failed to wipe game archive")
		utils.SendInternalError(c, "Failed to reset the franchise")
		return
	}

	h.Driver.State = league.NewState(h.Cfg, h.Driver.Rand())
	h.Driver.Archive = &league.Archive{}
	if err := h.persist(); err != nil {
		h.Log.WithError(err).Error("Failed to save fresh league")
		utils.SendInternalError(c, "Reset but could not save the new league")
		return
	}

	h.Log.Info("Franchise reset, new league generated")
	utils.SendSuccess(c, gin.H{"user_team_id": h.Driver.State.UserTeamID})
}

type selectTeamRequest struct {
	TeamID string `json:"team_id" binding:"required"`
}

// SelectTeam reassigns which club the user runs.
func (h *ControlHandler) SelectTeam(c *gin.Context) {
	var req selectTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "team_id is required", err.Error())
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	s := h.state()
	if s.Team(req.TeamID) == nil {
		utils.SendNotFound(c, "Team not found")
		return
	}
	s.UserTeamID = req.TeamID
	if err := h.persist(); err != nil {
		utils.SendInternalError(c, "Could not save team selection")
		return
	}
	utils.SendSuccess(c, gin.H{"user_team_id": s.UserTeamID})
}

type strategyRequest struct {
	Strategy models.CoachStyle `json:"strategy" binding:"required"`
}

// SetStrategy changes the user team's deployed style.
func (h *ControlHandler) SetStrategy(c *gin.Context) {
	var req strategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "strategy is required", err.Error())
		return
	}
	if !models.ValidCoachStyle(req.Strategy) {
		utils.SendValidationError(c, "strategy must be balanced, aggressive or defensive", string(req.Strategy))
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	user := h.state().UserTeam()
	if user == nil {
		utils.SendNotFound(c, "No user team selected")
		return
	}
	user.Strategy = req.Strategy
	h.state().Strategy = req.Strategy
	if err := h.persist(); err != nil {
		utils.SendInternalError(c, "Could not save strategy")
		return
	}
	utils.SendSuccess(c, gin.H{"strategy": req.Strategy})
}

// Health is the load balancer probe.
func (h *ControlHandler) Health(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()
	utils.SendSuccess(c, gin.H{
		"status": "ok",
		"season": h.state().Season,
		"day":    h.state().Day,
		"phase":  h.state().Phase,
		"feeds":  h.Hub.ConnectionCount(),
	})
}
