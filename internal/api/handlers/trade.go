package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/internal/trade"
	"github.com/jstittsworth/hockey-gm/pkg/utils"
)

// TradeHandler evaluates and executes trades, and works the inbox.
type TradeHandler struct {
	*Deps
}

func NewTradeHandler(deps *Deps) *TradeHandler {
	return &TradeHandler{Deps: deps}
}

type proposeRequest struct {
	ToTeamID      string   `json:"to_team_id" binding:"required"`
	OfferedIDs    []string `json:"offered_player_ids" binding:"required"`
	RequestedIDs  []string `json:"requested_player_ids" binding:"required"`
}

func (h *TradeHandler) buildOffer(c *gin.Context, req *proposeRequest) (*models.TradeOffer, *models.Team, *models.Team) {
	s := h.state()
	user := s.UserTeam()
	if user == nil {
		utils.SendNotFound(c, "No user team selected")
		return nil, nil, nil
	}
	other := s.Team(req.ToTeamID)
	if other == nil {
		utils.SendNotFound(c, "Trade partner not found")
		return nil, nil, nil
	}
	if other.ID == user.ID {
		utils.SendValidationError(c, "Cannot trade with yourself", "")
		return nil, nil, nil
	}
	offer := &models.TradeOffer{
		ID:            uuid.NewString(),
		FromTeamID:    user.ID,
		ToTeamID:      other.ID,
		FromPlayerIDs: req.OfferedIDs,
		ToPlayerIDs:   req.RequestedIDs,
		CreatedDay:    s.Day,
		CreatedSeason: s.Season,
	}
	return offer, user, other
}

// Evaluate prices a hypothetical offer without executing anything.
// The verdict is the counterparty's.
func (h *TradeHandler) Evaluate(c *gin.Context) {
	var req proposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "to_team_id, offered and requested players are required", err.Error())
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	offer, _, other := h.buildOffer(c, &req)
	if offer == nil {
		return
	}
	user := h.state().UserTeam()
	trade.RecomputeNeeds(other)
	eval, err := trade.Evaluate(offer, other, user, h.Cfg)
	if err != nil {
		utils.SendValidationError(c, "Offer cannot be evaluated", err.Error())
		return
	}
	utils.SendSuccess(c, eval)
}

// Propose submits the offer for real. The counterparty rolls against
// its accept probability; an accepted deal executes immediately.
func (h *TradeHandler) Propose(c *gin.Context) {
	var req proposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "to_team_id, offered and requested players are required", err.Error())
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	offer, user, other := h.buildOffer(c, &req)
	if offer == nil {
		return
	}
	trade.RecomputeNeeds(other)
	eval, err := trade.Evaluate(offer, other, user, h.Cfg)
	if err != nil {
		utils.SendValidationError(c, "Offer cannot be evaluated", err.Error())
		return
	}

	accepted := eval.Verdict == models.VerdictAccept ||
		(eval.Verdict == models.VerdictConsider && h.Driver.Rand().Float64() < eval.AcceptProb)
	if !accepted {
		utils.SendSuccess(c, gin.H{"accepted": false, "evaluation": eval})
		return
	}

	// The user's front office vets its own side of the deal too; a
	// lopsided giveaway dies here even when the counterparty loves it.
	userEval, err := trade.Evaluate(offer, user, other, h.Cfg)
	if err != nil {
		utils.SendValidationError(c, "Offer cannot be evaluated", err.Error())
		return
	}
	if userEval.Verdict == models.VerdictReject {
		utils.SendSuccess(c, gin.H{
			"accepted":        false,
			"evaluation":      eval,
			"user_evaluation": userEval,
		})
		return
	}

	s := h.state()
	if err := trade.Execute(offer, user, other, s.Season, h.Cfg); err != nil {
		utils.SendConflict(c, err.Error())
		return
	}
	h.recordTrade(offer, user, other)
	if err := h.persist(); err != nil {
		utils.SendInternalError(c, "Trade executed but could not save")
		return
	}
	utils.SendSuccess(c, gin.H{
		"accepted":        true,
		"evaluation":      eval,
		"user_evaluation": userEval,
	})
}

func (h *TradeHandler) recordTrade(offer *models.TradeOffer, from, to *models.Team) {
	s := h.state()
	summary := fmt.Sprintf("Trade between %s and %s.", from.Name, to.Name)
	tx := &models.Transaction{
		ID: uuid.NewString(), Season: s.Season, Day: s.Day,
		Type: models.TxTrade, TeamID: from.ID,
		Summary:   summary,
		CreatedAt: time.Now(),
	}
	if err := h.GameLog.RecordTransactions([]*models.Transaction{tx}); err != nil {
		h.Log.WithError(err).Error("Failed to archive trade")
	}
	from.FanSentiment = shake(from.FanSentiment, h.Driver.Rand().Float64())
	to.FanSentiment = shake(to.FanSentiment, h.Driver.Rand().Float64())
}

// shake nudges sentiment either way; fans never agree about a trade.
func shake(sentiment, roll float64) float64 {
	delta := (roll - 0.45) * 6
	v := sentiment + delta
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// GetInbox lists unresolved front-office events.
func (h *TradeHandler) GetInbox(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()
	utils.SendSuccess(c, h.state().UnresolvedInbox())
}

type inboxActionRequest struct {
	EventID string `json:"event_id" binding:"required"`
	Accept  bool   `json:"accept"`
}

// ResolveInbox accepts or declines an inbox event. Accepting a trade
// offer executes it at the original terms if both rosters still hold
// the named players.
func (h *TradeHandler) ResolveInbox(c *gin.Context) {
	var req inboxActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "event_id is required", err.Error())
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	s := h.state()
	var event *models.InboxEvent
	for _, ev := range s.Inbox {
		if ev.ID == req.EventID {
			event = ev
			break
		}
	}
	if event == nil || event.Resolved {
		utils.SendNotFound(c, "Inbox event not found")
		return
	}
	if event.Expired(s.Day) {
		utils.SendConflict(c, "This event has expired")
		return
	}

	if !req.Accept || event.Type != models.InboxTradeOffer || event.Offer == nil {
		event.Resolved = true
		if err := h.persist(); err != nil {
			utils.SendInternalError(c, "Could not save inbox")
			return
		}
		utils.SendSuccess(c, gin.H{"resolved": true, "accepted": false})
		return
	}

	offer := event.Offer
	from := s.Team(offer.FromTeamID)
	to := s.Team(offer.ToTeamID)
	if from == nil || to == nil {
		utils.SendConflict(c, "A team in this offer no longer exists")
		return
	}
	// The event stays open until the swap lands, so a failed trade can
	// be retried or declined instead of vanishing.
	if err := trade.Execute(offer, from, to, s.Season, h.Cfg); err != nil {
		utils.SendConflict(c, err.Error())
		return
	}
	event.Resolved = true
	h.recordTrade(offer, from, to)
	if err := h.persist(); err != nil {
		utils.SendInternalError(c, "Trade executed but could not save")
		return
	}
	utils.SendSuccess(c, gin.H{"resolved": true, "accepted": true})
}
