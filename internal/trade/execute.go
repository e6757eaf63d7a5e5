package trade

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/pkg/config"
)

// Execute swaps the players in an agreed offer. Both rosters are cap
// and headcount checked before anything moves; a failed check leaves
// both teams untouched. Mid-season movers have their stat stints
// closed so career rows stay partitioned by team.
func Execute(offer *models.TradeOffer, from, to *models.Team, season int, cfg *config.Config) error {
	fromPlayers, err := collect(from, offer.FromPlayerIDs)
	if err != nil {
		return err
	}
	toPlayers, err := collect(to, offer.ToPlayerIDs)
	if err != nil {
		return err
	}

	if err := capAfterSwap(from, fromPlayers, toPlayers, cfg); err != nil {
		return fmt.Errorf("%s: %w", from.Name, err)
	}
	if err := capAfterSwap(to, toPlayers, fromPlayers, cfg); err != nil {
		return fmt.Errorf("%s: %w", to.Name, err)
	}

	move := func(players []*models.Player, src, dst *models.Team) {
		for _, p := range players {
			src.RemovePlayer(p.ID)
			delete(src.TradeBlock, p.ID)
			p.CloseStint(season, src.Name)
			p.TeamID = dst.ID
			dst.Roster = append(dst.Roster, p)
		}
	}
	move(fromPlayers, from, to)
	move(toPlayers, to, from)

	from.EnsureLeadership()
	to.EnsureLeadership()
	RecomputeNeeds(from)
	RecomputeNeeds(to)
	return nil
}

func collect(t *models.Team, ids []string) ([]*models.Player, error) {
	out := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		p := t.FindPlayer(id)
		if p == nil {
			return nil, fmt.Errorf("player %s is not on %s", id, t.Name)
		}
		out = append(out, p)
	}
	return out, nil
}

func capAfterSwap(t *models.Team, leaving, arriving []*models.Player, cfg *config.Config) error {
	used := t.CapUsed()
	for _, p := range leaving {
		if t.OnActiveRoster(p.ID) {
			used -= p.Contract.CapHit
		}
	}
	for _, p := range arriving {
		used += p.Contract.CapHit
	}
	if used > cfg.SalaryCap {
		return fmt.Errorf("trade busts the salary cap by %d", used-cfg.SalaryCap)
	}

	count := headcountAfterSwap(t, leaving, arriving)
	if count > cfg.MaxRosterSize {
		return fmt.Errorf("trade leaves the active roster at %d, over the %d-man limit",
			count, cfg.MaxRosterSize)
	}
	return nil
}

// spotBurned reports whether a player occupies an active roster spot.
// Long-term injuries come off the count just as they do for cap relief.
func spotBurned(p *models.Player) bool {
	return p.Injury.Status != models.InjuryLTIR && p.Injury.Status != models.InjurySeasonEnding
}

func headcountAfterSwap(t *models.Team, leaving, arriving []*models.Player) int {
	count := 0
	for _, p := range t.Roster {
		if spotBurned(p) {
			count++
		}
	}
	for _, p := range leaving {
		if t.OnActiveRoster(p.ID) && spotBurned(p) {
			count--
		}
	}
	return count + len(arriving)
}

// GenerateCPUOffer has a rival build a pitch at the user's roster: a
// target that fills the rival's biggest need, paid for with a piece
// of comparable value the user might want.
func GenerateCPUOffer(from, to *models.Team, cfg *config.Config, rng *rand.Rand) *models.TradeOffer {
	RecomputeNeeds(from)
	RecomputeNeeds(to)

	topNeed := biggestNeed(from)
	if topNeed == "" {
		return nil
	}

	// The rival shops the user's middle tier at their need position.
	var targets []*models.Player
	for _, p := range to.Roster {
		if to.TradeBlock[p.ID] == models.BlockUntouchable {
			continue
		}
		if CategoryFor(p) != topNeed || p.IsInjured() {
			continue
		}
		if o := p.Overall(); o >= 2.2 && o <= 4.3 {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		return nil
	}
	target := targets[rng.Intn(len(targets))]
	targetValue := Value(target, from, cfg).Total

	// Pay with the closest-value piece that is not filling the same
	// hole the rival is trying to plug.
	var best *models.Player
	bestGap := 999.0
	for _, p := range from.Roster {
		if from.TradeBlock[p.ID] == models.BlockUntouchable || p.IsInjured() {
			continue
		}
		if CategoryFor(p) == topNeed {
			continue
		}
		gap := Value(p, to, cfg).Total - targetValue
		if gap < 0 {
			gap = -gap
		}
		if gap < bestGap {
			bestGap, best = gap, p
		}
	}
	if best == nil || bestGap > 1.4 {
		return nil
	}

	return &models.TradeOffer{
		ID:            uuid.NewString(),
		FromTeamID:    from.ID,
		ToTeamID:      to.ID,
		FromPlayerIDs: []string{best.ID},
		ToPlayerIDs:   []string{target.ID},
	}
}

func biggestNeed(t *models.Team) models.NeedCategory {
	var top models.NeedCategory
	topScore := 0.35 // below this nothing is worth shopping for
	for cat, score := range t.Needs.Scores {
		if score > topScore {
			top, topScore = cat, score
		}
	}
	return top
}

// OfferSummary renders a one-line description using a resolver that
// maps player IDs to their current player and team.
func OfferSummary(offer *models.TradeOffer, resolve func(string) (*models.Player, *models.Team)) string {
	side := func(ids []string) string {
		out := ""
		for i, id := range ids {
			p, _ := resolve(id)
			if p == nil {
				continue
			}
			if i > 0 {
				out += ", "
			}
			out += fmt.Sprintf("%s (%s)", p.Name, p.Position)
		}
		if out == "" {
			out = "nothing"
		}
		return out
	}
	return fmt.Sprintf("They send %s for %s.", side(offer.FromPlayerIDs), side(offer.ToPlayerIDs))
}
