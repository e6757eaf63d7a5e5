package roster

import (
	"fmt"
	"sort"

	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/pkg/config"
)

// Constraint names the roster rule a rejected move violated.
type Constraint string

const (
	ConstraintCap       Constraint = "salary_cap"
	ConstraintHeadcount Constraint = "headcount"
	ConstraintPosition  Constraint = "position"
	ConstraintInjury    Constraint = "injury"
	ConstraintNotFound  Constraint = "not_found"
)

// ComplianceError explains why a roster move was refused.
type ComplianceError struct {
	Constraint Constraint
	Message    string
}

func (e *ComplianceError) Error() string {
	return fmt.Sprintf("roster rule %s: %s", e.Constraint, e.Message)
}

func violation(c Constraint, format string, args ...interface{}) *ComplianceError {
	return &ComplianceError{Constraint: c, Message: fmt.Sprintf(format, args...)}
}

// Move records one automatic roster change for the transaction log.
type Move struct {
	Player  *models.Player
	Summary string
}

// effectiveHeadcount counts roster spots burned by healthy and
// short-term injured players. Long-term injuries free their spot.
func effectiveHeadcount(t *models.Team) int {
	n := 0
	for _, p := range t.Roster {
		if p.Injury.Status == models.InjuryLTIR || p.Injury.Status == models.InjurySeasonEnding {
			continue
		}
		n++
	}
	return n
}

// capRelief is the cap space freed by long-term injured salaries.
func capRelief(t *models.Team) int64 {
	var relief int64
	for _, p := range t.Roster {
		if p.Injury.Status == models.InjuryLTIR || p.Injury.Status == models.InjurySeasonEnding {
			relief += p.Contract.CapHit
		}
	}
	return relief
}

func checkCapAfterAdd(t *models.Team, add int64, cfg *config.Config) error {
	if t.CapUsed()+add > cfg.SalaryCap+capRelief(t) {
		return violation(ConstraintCap, "move would exceed the salary cap (%d over)",
			t.CapUsed()+add-cfg.SalaryCap-capRelief(t))
	}
	return nil
}

// Promote calls a player up from the minors to the active roster.
func Promote(t *models.Team, playerID string, cfg *config.Config) error {
	var target *models.Player
	for _, p := range t.Minors {
		if p.ID == playerID {
			target = p
			break
		}
	}
	if target == nil {
		return violation(ConstraintNotFound, "player %s is not in the minors", playerID)
	}
	if target.Injury.Status == models.InjuryLTIR || target.Injury.Status == models.InjurySeasonEnding {
		return violation(ConstraintInjury, "%s cannot be recalled on a long-term injury", target.Name)
	}
	if effectiveHeadcount(t) >= cfg.MaxRosterSize {
		return violation(ConstraintHeadcount, "active roster is full (%d)", cfg.MaxRosterSize)
	}
	if err := checkCapAfterAdd(t, target.Contract.CapHit, cfg); err != nil {
		return err
	}

	for i, p := range t.Minors {
		if p.ID == playerID {
			t.Minors = append(t.Minors[:i], t.Minors[i+1:]...)
			break
		}
	}
	t.Roster = append(t.Roster, target)
	return nil
}

// Demote sends a player down. Injured players cannot be assigned to
// the minors while they recover.
func Demote(t *models.Team, playerID string, cfg *config.Config) error {
	var target *models.Player
	for _, p := range t.Roster {
		if p.ID == playerID {
			target = p
			break
		}
	}
	if target == nil {
		return violation(ConstraintNotFound, "player %s is not on the active roster", playerID)
	}
	if target.IsInjured() {
		return violation(ConstraintInjury, "%s cannot be sent down while injured", target.Name)
	}
	if wouldBreakMinimums(t, target, cfg) {
		return violation(ConstraintPosition, "sending %s down leaves too few %s on the roster",
			target.Name, positionGroup(target))
	}

	for i, p := range t.Roster {
		if p.ID == playerID {
			t.Roster = append(t.Roster[:i], t.Roster[i+1:]...)
			delete(t.Dressed, playerID)
			break
		}
	}
	t.Minors = append(t.Minors, target)
	t.EnsureLeadership()
	return nil
}

// ResolveOverflow trims the active roster back under the headcount
// limit after injured players come off long-term relief. The weakest
// healthy player who is not holding up a lineup minimum goes down.
func ResolveOverflow(t *models.Team, cfg *config.Config) []Move {
	var moves []Move
	for effectiveHeadcount(t) > cfg.MaxRosterSize {
		var weakest *models.Player
		for _, p := range t.Roster {
			if p.IsInjured() || wouldBreakMinimums(t, p, cfg) {
				continue
			}
			if weakest == nil || p.Overall() < weakest.Overall() {
				weakest = p
			}
		}
		if weakest == nil {
			return moves
		}
		if err := Demote(t, weakest.ID, cfg); err != nil {
			return moves
		}
		moves = append(moves, Move{
			Player:  weakest,
			Summary: fmt.Sprintf("%s send %s down to clear a roster spot.", t.Name, weakest.Name),
		})
	}
	return moves
}

func positionGroup(p *models.Player) string {
	switch {
	case p.IsGoalie():
		return "goalies"
	case p.IsDefense():
		return "defensemen"
	default:
		return "forwards"
	}
}

// wouldBreakMinimums checks the dressed-lineup minimums survive the
// departure of one player.
func wouldBreakMinimums(t *models.Team, leaving *models.Player, cfg *config.Config) bool {
	forwards, defense, goalies := 0, 0, 0
	for _, p := range t.Roster {
		if p.ID == leaving.ID || p.IsInjured() {
			continue
		}
		switch {
		case p.IsGoalie():
			goalies++
		case p.IsDefense():
			defense++
		default:
			forwards++
		}
	}
	return forwards < cfg.DressedForwards || defense < cfg.DressedDefense || goalies < cfg.DressedGoalies
}

// SignFreeAgent adds an unattached player to the active roster. The
// caller removes them from the market pool once this succeeds.
func SignFreeAgent(t *models.Team, p *models.Player, cfg *config.Config) error {
	if effectiveHeadcount(t) >= cfg.MaxRosterSize {
		return violation(ConstraintHeadcount, "active roster is full (%d)", cfg.MaxRosterSize)
	}
	if err := checkCapAfterAdd(t, p.Contract.CapHit, cfg); err != nil {
		return err
	}
	p.TeamID = t.ID
	t.Roster = append(t.Roster, p)
	return nil
}

// ExtendContract re-papers a player under a new term. The new cap hit
// must fit under the ceiling with the old hit removed.
func ExtendContract(t *models.Team, playerID string, years int, capHit int64, cfg *config.Config) error {
	p := t.FindPlayer(playerID)
	if p == nil {
		return violation(ConstraintNotFound, "player %s is not on this team", playerID)
	}
	if years < 1 || years > 8 {
		return violation(ConstraintPosition, "contract term must be between 1 and 8 years")
	}
	if t.OnActiveRoster(playerID) {
		if err := checkCapAfterAdd(t, capHit-p.Contract.CapHit, cfg); err != nil {
			return err
		}
	}
	p.Contract = models.Contract{
		YearsLeft: years,
		CapHit:    capHit,
		Type:      contractTypeFor(p),
		RFA:       p.Age <= 25,
	}
	return nil
}

func contractTypeFor(p *models.Player) models.ContractType {
	switch {
	case p.Age <= 23:
		return models.ContractEntry
	case p.Age >= 31:
		return models.ContractVeteran
	default:
		return models.ContractStandard
	}
}

// AutoReplaceInjured patches holes an injury tore in the lineup by
// promoting the best minor leaguer at the short position. Ties go to
// the cheaper contract.
func AutoReplaceInjured(t *models.Team, cfg *config.Config) []Move {
	var moves []Move
	for {
		short := shortPosition(t, cfg)
		if short == "" {
			return moves
		}
		candidate := bestMinorAt(t, short)
		if candidate == nil {
			return moves
		}
		if err := Promote(t, candidate.ID, cfg); err != nil {
			return moves
		}
		moves = append(moves, Move{
			Player: candidate,
			Summary: fmt.Sprintf("%s called up %s to cover for injuries.",
				t.Name, candidate.Name),
		})
	}
}

// FillFromMarket signs unattached players until the lineup minimums
// are met, taking the best available fit at each short position. It
// returns the moves made and the market with the signed players
// removed.
func FillFromMarket(t *models.Team, market []*models.Player, cfg *config.Config) ([]Move, []*models.Player) {
	var moves []Move
	for {
		short := shortPosition(t, cfg)
		if short == "" {
			return moves, market
		}
		best := -1
		for i, p := range market {
			if !matchesGroup(p, short) || p.IsInjured() {
				continue
			}
			if best < 0 || p.Overall() > market[best].Overall() {
				best = i
			}
		}
		if best < 0 {
			return moves, market
		}
		p := market[best]
		if err := SignFreeAgent(t, p, cfg); err != nil {
			return moves, market
		}
		market = append(market[:best], market[best+1:]...)
		moves = append(moves, Move{
			Player:  p,
			Summary: fmt.Sprintf("%s sign free agent %s.", t.Name, p.Name),
		})
	}
}

func matchesGroup(p *models.Player, position string) bool {
	switch position {
	case models.PositionGoalie:
		return p.IsGoalie()
	case models.PositionDefense:
		return p.IsDefense()
	default:
		return p.IsForward()
	}
}

// shortPosition reports which lineup group is below its dressed
// minimum, checking goalies first since a missing netminder is the
// emergency.
func shortPosition(t *models.Team, cfg *config.Config) string {
	forwards, defense := t.HealthySkaters()
	goalies := 0
	for _, p := range t.Goalies() {
		if !p.IsInjured() {
			goalies++
		}
	}
	switch {
	case goalies < cfg.DressedGoalies:
		return models.PositionGoalie
	case len(defense) < cfg.DressedDefense:
		return models.PositionDefense
	case len(forwards) < cfg.DressedForwards:
		return models.PositionCenter
	}
	return ""
}

func bestMinorAt(t *models.Team, position string) *models.Player {
	var pool []*models.Player
	for _, p := range t.Minors {
		if p.IsInjured() || !matchesGroup(p, position) {
			continue
		}
		pool = append(pool, p)
	}
	if len(pool) == 0 {
		return nil
	}
	sort.SliceStable(pool, func(i, j int) bool {
		oi, oj := pool[i].Overall(), pool[j].Overall()
		if oi != oj {
			return oi > oj
		}
		return pool[i].Contract.CapHit < pool[j].Contract.CapHit
	})
	return pool[0]
}
