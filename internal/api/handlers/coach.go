package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jstittsworth/hockey-gm/internal/league"
	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/pkg/utils"
)

// CoachHandler manages firing the bench boss and hiring from the
// candidate list that firing produces.
type CoachHandler struct {
	*Deps
}

func NewCoachHandler(deps *Deps) *CoachHandler {
	return &CoachHandler{Deps: deps}
}

// FireCoach dismisses the user's coach and seeds candidate events in
// the inbox. The interim bench drops team performance until a hire.
func (h *CoachHandler) FireCoach(c *gin.Context) {
	h.Mu.Lock()
	defer h.Mu.Unlock()

	s := h.state()
	t := s.UserTeam()
	if t == nil {
		utils.SendNotFound(c, "No user team selected")
		return
	}

	fired := t.Coach
	// An interim placeholder runs the bench until a candidate is hired.
	interim := models.Coach{
		ID:             uuid.NewString(),
		Name:           "Interim bench",
		Age:            50,
		Rating:         1.6,
		PreferredStyle: models.StyleBalanced,
	}
	t.Coach = interim
	t.FanSentiment -= 4
	if t.FanSentiment < 0 {
		t.FanSentiment = 0
	}

	expiry := s.Day + h.Cfg.InboxExpiryDays*2
	candidates := league.GenerateCoachCandidates(h.Driver.Rand(), expiry)
	for i := range candidates {
		cand := candidates[i]
		s.Inbox = append(s.Inbox, &models.InboxEvent{
			ID:        uuid.NewString(),
			Type:      models.InboxCoachCandidate,
			Season:    s.Season,
			Day:       s.Day,
			ExpiryDay: expiry,
			Title:     fmt.Sprintf("Coaching candidate: %s", cand.Coach.Name),
			Body:      cand.Pitch,
			Candidate: &cand,
		})
	}

	tx := &models.Transaction{
		ID: uuid.NewString(), Season: s.Season, Day: s.Day,
		Type: models.TxCoachChange, TeamID: t.ID,
		Summary:   fmt.Sprintf("%s fired head coach %s.", t.Name, fired.Name),
		CreatedAt: time.Now(),
	}
	if err := h.GameLog.RecordTransactions([]*models.Transaction{tx}); err != nil {
		h.Log.WithError(err).Error("Failed to archive coach firing")
	}
	if err := h.persist(); err != nil {
		utils.SendInternalError(c, "Fired the coach but could not save")
		return
	}
	utils.SendSuccess(c, gin.H{
		"fired":      fired,
		"candidates": candidates,
	})
}

// GetCandidates lists unexpired coaching candidates from the inbox.
func (h *CoachHandler) GetCandidates(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	s := h.state()
	var out []*models.CoachCandidate
	for _, ev := range s.UnresolvedInbox() {
		if ev.Type == models.InboxCoachCandidate && ev.Candidate != nil {
			out = append(out, ev.Candidate)
		}
	}
	utils.SendSuccess(c, out)
}

type hireRequest struct {
	CoachID string `json:"coach_id" binding:"required"`
}

// HireCoach installs a candidate behind the bench and resolves all
// outstanding candidate events.
func (h *CoachHandler) HireCoach(c *gin.Context) {
	var req hireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "coach_id is required", err.Error())
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	s := h.state()
	t := s.UserTeam()
	if t == nil {
		utils.SendNotFound(c, "No user team selected")
		return
	}

	var hired *models.Coach
	for _, ev := range s.Inbox {
		if ev.Type != models.InboxCoachCandidate || ev.Resolved || ev.Candidate == nil {
			continue
		}
		if ev.Candidate.Coach.ID == req.CoachID {
			coach := ev.Candidate.Coach
			hired = &coach
		}
		ev.Resolved = true
	}
	if hired == nil {
		utils.SendNotFound(c, "Candidate not found or expired")
		return
	}

	hired.GamesWithTeam = 0
	t.Coach = *hired
	t.Strategy = hired.PreferredStyle
	t.FanSentiment += 3

	tx := &models.Transaction{
		ID: uuid.NewString(), Season: s.Season, Day: s.Day,
		Type: models.TxCoachChange, TeamID: t.ID,
		Summary:   fmt.Sprintf("%s hired %s as head coach.", t.Name, hired.Name),
		CreatedAt: time.Now(),
	}
	if err := h.GameLog.RecordTransactions([]*models.Transaction{tx}); err != nil {
		h.Log.WithError(err).Error("Failed to archive coach hire")
	}
	if err := h.persist(); err != nil {
		utils.SendInternalError(c, "Hired the coach but could not save")
		return
	}
	utils.SendSuccess(c, gin.H{"coach": t.Coach})
}
