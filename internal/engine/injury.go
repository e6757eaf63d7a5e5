package engine

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/jstittsworth/hockey-gm/internal/models"
)

const (
	maxGamesMissed  = 30
	goalieInjuryMod = 0.65
)

// durabilityMod scales injury exposure by the player's durability
// rating. Fragile players run well above the base rate.
func durabilityMod(p *models.Player) float64 {
	return math.Max(0.55, 1.35-p.Ratings.Durability/10.0)
}

// rollGamesMissed samples a geometric-style duration around the
// configured mean, capped so nobody sits out more than a season's
// worth of games from one event.
func (e *Engine) rollGamesMissed(rng *rand.Rand) int {
	p := 1.0 / e.cfg.InjuryMeanGamesMissed
	u := rng.Float64()
	if u <= 0 {
		u = math.SmallestNonzeroFloat64
	}
	games := 1 + int(math.Log(u)/math.Log(1.0-p))
	if games < 1 {
		games = 1
	}
	if games > maxGamesMissed {
		games = maxGamesMissed
	}
	return games
}

// SeverityFor maps a duration to its roster designation.
func SeverityFor(gamesOut int) models.InjuryStatus {
	switch {
	case gamesOut >= maxGamesMissed:
		return models.InjurySeasonEnding
	case gamesOut >= 20:
		return models.InjuryLTIR
	case gamesOut >= 6:
		return models.InjuryIR
	default:
		return models.InjuryDTD
	}
}

// rollInjuries checks every dressed player on the team for an injury
// event and applies the resulting status in place.
func (e *Engine) rollInjuries(t *models.Team, rng *rand.Rand) []models.InjuryEvent {
	eff := effectFor(t.Strategy)
	var events []models.InjuryEvent

	for id := range t.Dressed {
		p := t.FindPlayer(id)
		if p == nil || p.IsInjured() {
			continue
		}
		rate := e.cfg.InjuryEventRate * eff.InjuryRisk * durabilityMod(p)
		if p.IsGoalie() {
			rate *= goalieInjuryMod
		}
		if rng.Float64() >= rate {
			continue
		}

		gamesOut := e.rollGamesMissed(rng)
		status := SeverityFor(gamesOut)
		p.Injury = models.InjuryState{Status: status, GamesRemaining: gamesOut}
		p.Stats.Injuries++

		events = append(events, models.InjuryEvent{
			PlayerID:  p.ID,
			Name:      p.Name,
			TeamID:    t.ID,
			Status:    status,
			GamesOut:  gamesOut,
			Narrative: injuryNarrative(p, gamesOut),
		})
	}
	return events
}

func injuryNarrative(p *models.Player, gamesOut int) string {
	switch SeverityFor(gamesOut) {
	case models.InjurySeasonEnding:
		return fmt.Sprintf("%s is done for the year.", p.Name)
	case models.InjuryLTIR:
		return fmt.Sprintf("%s lands on long-term injured reserve, out %d games.", p.Name, gamesOut)
	case models.InjuryIR:
		return fmt.Sprintf("%s goes on injured reserve, out %d games.", p.Name, gamesOut)
	default:
		return fmt.Sprintf("%s is day-to-day, expected to miss %d games.", p.Name, gamesOut)
	}
}

// TickInjuries decrements recovery clocks for players who sat out a
// game day and activates anyone who has served their time.
func TickInjuries(t *models.Team) []*models.Player {
	var recovered []*models.Player
	for _, p := range t.AllPlayers() {
		if !p.Injury.Active() {
			continue
		}
		p.Injury.GamesRemaining--
		p.Stats.GamesMissed++
		if p.Injury.GamesRemaining <= 0 {
			p.Injury = models.InjuryState{Status: models.InjuryNone}
			recovered = append(recovered, p)
		}
	}
	return recovered
}
