package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/internal/roster"
	"github.com/jstittsworth/hockey-gm/internal/trade"
	"github.com/jstittsworth/hockey-gm/pkg/utils"
)

// RosterHandler covers everything the user does to their own club:
// lines, call-ups, contracts, the trade block and the bench boss.
type RosterHandler struct {
	*Deps
}

func NewRosterHandler(deps *Deps) *RosterHandler {
	return &RosterHandler{Deps: deps}
}

// userTeam resolves the user's club; callers hold the lock.
func (h *RosterHandler) userTeam(c *gin.Context) *models.Team {
	t := h.state().UserTeam()
	if t == nil {
		utils.SendNotFound(c, "No user team selected")
	}
	return t
}

func (h *RosterHandler) sendComplianceError(c *gin.Context, err error) {
	var ce *roster.ComplianceError
	if errors.As(err, &ce) {
		switch ce.Constraint {
		case roster.ConstraintNotFound:
			utils.SendNotFound(c, ce.Message)
		case roster.ConstraintCap, roster.ConstraintHeadcount:
			utils.SendConflict(c, ce.Message)
		default:
			utils.SendValidationError(c, ce.Message, string(ce.Constraint))
		}
		return
	}
	utils.SendError(c, http.StatusConflict, utils.NewAppError(utils.ErrCodeConflict, err.Error()))
}

// GetLines returns the user's line assignments.
func (h *RosterHandler) GetLines(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	t := h.userTeam(c)
	if t == nil {
		return
	}
	utils.SendSuccess(c, gin.H{
		"lines":           t.Lines,
		"starting_goalie": t.StartingGoalieID,
	})
}

type setLinesRequest struct {
	Lines           models.Lines `json:"lines"`
	StartingGoalie  string       `json:"starting_goalie"`
}

// SetLines stores the user's preferred deployment. Slots referencing
// unknown or injured players are rejected.
func (h *RosterHandler) SetLines(c *gin.Context) {
	var req setLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid lines payload", err.Error())
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	t := h.userTeam(c)
	if t == nil {
		return
	}

	check := func(id string, wantGoalie bool) error {
		if id == "" {
			return nil
		}
		p := t.FindPlayer(id)
		if p == nil {
			return fmt.Errorf("player %s is not on this team", id)
		}
		if !t.OnActiveRoster(id) {
			return fmt.Errorf("%s is in the minors", p.Name)
		}
		if p.IsGoalie() != wantGoalie {
			return fmt.Errorf("%s plays the wrong position for that slot", p.Name)
		}
		return nil
	}
	for _, line := range req.Lines.Forwards {
		for _, id := range line {
			if err := check(id, false); err != nil {
				utils.SendValidationError(c, "Invalid line assignment", err.Error())
				return
			}
		}
	}
	for _, pair := range req.Lines.Defense {
		for _, id := range pair {
			if err := check(id, false); err != nil {
				utils.SendValidationError(c, "Invalid pairing assignment", err.Error())
				return
			}
		}
	}
	if err := check(req.StartingGoalie, true); err != nil {
		utils.SendValidationError(c, "Invalid starting goalie", err.Error())
		return
	}

	t.Lines = req.Lines
	if req.StartingGoalie != "" {
		t.StartingGoalieID = req.StartingGoalie
	}
	if err := h.persist(); err != nil {
		utils.SendInternalError(c, "Could not save lines")
		return
	}
	utils.SendSuccess(c, gin.H{"lines": t.Lines, "starting_goalie": t.StartingGoalieID})
}

type playerIDRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

// CallUp promotes a minor leaguer to the active roster.
func (h *RosterHandler) CallUp(c *gin.Context) {
	h.rosterMove(c, models.TxCallUp, func(t *models.Team, playerID string) (string, error) {
		if err := roster.Promote(t, playerID, h.Cfg); err != nil {
			return "", err
		}
		p := t.FindPlayer(playerID)
		return fmt.Sprintf("%s called up %s.", t.Name, p.Name), nil
	})
}

// SendDown assigns a player to the minors.
func (h *RosterHandler) SendDown(c *gin.Context) {
	h.rosterMove(c, models.TxSendDown, func(t *models.Team, playerID string) (string, error) {
		p := t.FindPlayer(playerID)
		if err := roster.Demote(t, playerID, h.Cfg); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s sent %s to the minors.", t.Name, p.Name), nil
	})
}

func (h *RosterHandler) rosterMove(c *gin.Context, txType models.TransactionType, apply func(*models.Team, string) (string, error)) {
	var req playerIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "player_id is required", err.Error())
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	t := h.userTeam(c)
	if t == nil {
		return
	}
	summary, err := apply(t, req.PlayerID)
	if err != nil {
		h.sendComplianceError(c, err)
		return
	}
	trade.RecomputeNeeds(t)

	s := h.state()
	tx := &models.Transaction{
		ID:        uuid.NewString(),
		Season:    s.Season,
		Day:       s.Day,
		Type:      txType,
		TeamID:    t.ID,
		PlayerID:  req.PlayerID,
		Summary:   summary,
		CreatedAt: time.Now(),
	}
	if err := h.GameLog.RecordTransactions([]*models.Transaction{tx}); err != nil {
		h.Log.WithError(err).Error("Failed to archive roster move")
	}
	if err := h.persist(); err != nil {
		utils.SendInternalError(c, "Moved the player but could not save")
		return
	}
	utils.SendSuccess(c, gin.H{"summary": summary, "cap_used": t.CapUsed()})
}

// SignFreeAgent adds a market player to the user's roster.
func (h *RosterHandler) SignFreeAgent(c *gin.Context) {
	var req playerIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "player_id is required", err.Error())
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	t := h.userTeam(c)
	if t == nil {
		return
	}
	s := h.state()
	var target *models.Player
	idx := -1
	for i, p := range s.FreeAgents {
		if p.ID == req.PlayerID {
			target, idx = p, i
			break
		}
	}
	if target == nil {
		utils.SendNotFound(c, "Free agent not found")
		return
	}
	if err := roster.SignFreeAgent(t, target, h.Cfg); err != nil {
		h.sendComplianceError(c, err)
		return
	}
	s.FreeAgents = append(s.FreeAgents[:idx], s.FreeAgents[idx+1:]...)
	trade.RecomputeNeeds(t)

	summary := fmt.Sprintf("%s signed free agent %s.", t.Name, target.Name)
	tx := &models.Transaction{
		ID: uuid.NewString(), Season: s.Season, Day: s.Day,
		Type: models.TxSigning, TeamID: t.ID, PlayerID: target.ID,
		Summary: summary, CreatedAt: time.Now(),
	}
	if err := h.GameLog.RecordTransactions([]*models.Transaction{tx}); err != nil {
		h.Log.WithError(err).Error("Failed to archive signing")
	}
	if err := h.persist(); err != nil {
		utils.SendInternalError(c, "Signed the player but could not save")
		return
	}
	utils.SendSuccess(c, gin.H{"summary": summary, "cap_used": t.CapUsed()})
}

type extendRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	Years    int    `json:"years" binding:"required"`
	CapHit   int64  `json:"cap_hit" binding:"required"`
}

// ExtendContract re-signs one of the user's players.
func (h *RosterHandler) ExtendContract(c *gin.Context) {
	var req extendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "player_id, years and cap_hit are required", err.Error())
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	t := h.userTeam(c)
	if t == nil {
		return
	}
	if err := roster.ExtendContract(t, req.PlayerID, req.Years, req.CapHit, h.Cfg); err != nil {
		h.sendComplianceError(c, err)
		return
	}
	p := t.FindPlayer(req.PlayerID)
	if err := h.persist(); err != nil {
		utils.SendInternalError(c, "Extended the contract but could not save")
		return
	}
	utils.SendSuccess(c, gin.H{"player": p, "cap_used": t.CapUsed()})
}

type blockRequest struct {
	PlayerID string             `json:"player_id" binding:"required"`
	Status   models.BlockStatus `json:"status"`
}

// SetTradeBlock marks a player available or untouchable; an empty
// status clears the mark.
func (h *RosterHandler) SetTradeBlock(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "player_id is required", err.Error())
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	t := h.userTeam(c)
	if t == nil {
		return
	}
	if t.FindPlayer(req.PlayerID) == nil {
		utils.SendNotFound(c, "Player is not on your team")
		return
	}
	switch req.Status {
	case models.BlockAvailable, models.BlockUntouchable:
		t.TradeBlock[req.PlayerID] = req.Status
	case "":
		delete(t.TradeBlock, req.PlayerID)
	default:
		utils.SendValidationError(c, "status must be available, untouchable or empty", string(req.Status))
		return
	}
	if err := h.persist(); err != nil {
		utils.SendInternalError(c, "Could not save trade block")
		return
	}
	utils.SendSuccess(c, t.TradeBlock)
}

// GetNeeds returns the user's needs profile, recomputing first when in
// auto mode.
func (h *RosterHandler) GetNeeds(c *gin.Context) {
	h.Mu.Lock()
	defer h.Mu.Unlock()

	t := h.userTeam(c)
	if t == nil {
		return
	}
	trade.RecomputeNeeds(t)
	utils.SendSuccess(c, t.Needs)
}

type needsRequest struct {
	Mode   models.NeedsMode                `json:"mode" binding:"required"`
	Scores map[models.NeedCategory]float64 `json:"scores"`
}

// SetNeeds switches between auto and manual targeting.
func (h *RosterHandler) SetNeeds(c *gin.Context) {
	var req needsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "mode is required", err.Error())
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	t := h.userTeam(c)
	if t == nil {
		return
	}
	switch req.Mode {
	case models.NeedsAuto:
		t.Needs = models.NeedsProfile{Mode: models.NeedsAuto}
		trade.RecomputeNeeds(t)
	case models.NeedsManual:
		for cat, score := range req.Scores {
			valid := false
			for _, known := range models.AllNeedCategories() {
				if cat == known {
					valid = true
					break
				}
			}
			if !valid || score < 0 || score > 1 {
				utils.SendValidationError(c, "scores must map known categories to values in [0,1]", string(cat))
				return
			}
		}
		t.Needs = models.NeedsProfile{Mode: models.NeedsManual, Scores: req.Scores}
	default:
		utils.SendValidationError(c, "mode must be auto or manual", string(req.Mode))
		return
	}
	if err := h.persist(); err != nil {
		utils.SendInternalError(c, "Could not save needs profile")
		return
	}
	utils.SendSuccess(c, t.Needs)
}
