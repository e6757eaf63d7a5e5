package engine

import (
	"math/rand"
	"sort"

	"github.com/jstittsworth/hockey-gm/internal/models"
)

// Line weights reflect ice time: the top six carry most of the offense,
// depth lines grind.
var (
	forwardLineWeights = [4]float64{0.38, 0.30, 0.20, 0.12}
	defensePairWeights = [3]float64{0.45, 0.35, 0.20}
)

// Crease management: once the starter's share of the team's games
// climbs past the workload threshold, the fatigue weight starts
// handing nights to the backup.
const (
	goalieWorkloadShare = 0.65
	goalieFatigueWeight = 3.0
	goalieFormMinShots  = 60
)

// skaterScore ranks a skater for deployment under the given style.
func skaterScore(p *models.Player, style models.CoachStyle) float64 {
	r := p.Ratings
	switch style {
	case models.StyleAggressive:
		return r.Shooting*0.42 + r.Playmaking*0.30 + r.Physical*0.16 + r.Defense*0.12
	case models.StyleDefensive:
		return r.Defense*0.40 + r.Physical*0.20 + r.Playmaking*0.22 + r.Shooting*0.18
	default:
		return r.Shooting*0.30 + r.Playmaking*0.28 + r.Defense*0.26 + r.Physical*0.16
	}
}

// SelectLineup fills the team's dressed set and line slots from the
// healthy roster. Weaker coaches evaluate players with more noise, so
// they occasionally dress the wrong man.
func SelectLineup(t *models.Team, rng *rand.Rand, playoff bool) {
	forwards, defense := t.HealthySkaters()

	noise := (5.0 - t.Coach.Rating) * 0.10

	rank := func(players []*models.Player) {
		scores := make(map[string]float64, len(players))
		for _, p := range players {
			scores[p.ID] = skaterScore(p, t.Strategy) + rng.NormFloat64()*noise
		}
		sort.SliceStable(players, func(i, j int) bool {
			return scores[players[i].ID] > scores[players[j].ID]
		})
	}
	rank(forwards)
	rank(defense)

	if t.Dressed == nil {
		t.Dressed = make(map[string]bool)
	}
	for id := range t.Dressed {
		delete(t.Dressed, id)
	}

	t.Lines = models.Lines{}
	for i := 0; i < 12 && i < len(forwards); i++ {
		t.Lines.Forwards[i/3][i%3] = forwards[i].ID
		t.Dressed[forwards[i].ID] = true
	}
	for i := 0; i < 6 && i < len(defense); i++ {
		t.Lines.Defense[i/2][i%2] = defense[i].ID
		t.Dressed[defense[i].ID] = true
	}

	goalies := healthyGoalies(t)
	if len(goalies) > 0 {
		starter := goalies[0]
		best := goalieStartScore(starter, t, playoff)
		for _, g := range goalies[1:] {
			if score := goalieStartScore(g, t, playoff); score > best {
				starter, best = g, score
			}
		}
		t.StartingGoalieID = starter.ID
		for _, g := range goalies {
			t.Dressed[g.ID] = true
		}
	} else {
		t.StartingGoalieID = ""
	}
}

// goalieStartScore blends raw talent, season form and workload. In the
// playoffs the workload term is dropped and the best option starts
// every night.
func goalieStartScore(g *models.Player, t *models.Team, playoff bool) float64 {
	score := g.Ratings.Goaltending
	if g.Stats.ShotsAgainst >= goalieFormMinShots {
		score += (g.Stats.SavePct() - 0.900) * 2.0
	}
	if playoff {
		return score
	}
	if gp := t.Record.GamesPlayed(); gp > 0 {
		share := float64(g.Stats.GoalieGames) / float64(gp)
		if share > goalieWorkloadShare {
			score -= (share - goalieWorkloadShare) * goalieFatigueWeight
		}
	}
	return score
}

func healthyGoalies(t *models.Team) []*models.Player {
	var out []*models.Player
	for _, p := range t.Goalies() {
		if !p.IsInjured() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Ratings.Goaltending > out[j].Ratings.Goaltending
	})
	return out
}

// lineupStrength returns line-weighted offense and defense values for
// the dressed skaters.
func lineupStrength(t *models.Team) (offense, defense float64) {
	find := func(id string) *models.Player {
		if id == "" {
			return nil
		}
		return t.FindPlayer(id)
	}

	for li, line := range t.Lines.Forwards {
		var off, def float64
		n := 0
		for _, id := range line {
			p := find(id)
			if p == nil {
				continue
			}
			off += p.Ratings.Shooting*0.55 + p.Ratings.Playmaking*0.45
			def += p.Ratings.Defense
			n++
		}
		if n > 0 {
			offense += forwardLineWeights[li] * off / float64(n)
			defense += forwardLineWeights[li] * 0.5 * def / float64(n)
		}
	}

	for pi, pair := range t.Lines.Defense {
		var off, def float64
		n := 0
		for _, id := range pair {
			p := find(id)
			if p == nil {
				continue
			}
			off += p.Ratings.Playmaking*0.6 + p.Ratings.Shooting*0.4
			def += p.Ratings.Defense*0.8 + p.Ratings.Physical*0.2
			n++
		}
		if n > 0 {
			offense += defensePairWeights[pi] * 0.35 * off / float64(n)
			defense += defensePairWeights[pi] * def / float64(n)
		}
	}

	return offense, defense
}

// StartingGoalie resolves the starter, falling back to the best healthy
// goalie or any goalie at all when the crease is thin.
func StartingGoalie(t *models.Team) *models.Player {
	if t.StartingGoalieID != "" {
		if g := t.FindPlayer(t.StartingGoalieID); g != nil && !g.IsInjured() {
			return g
		}
	}
	if goalies := healthyGoalies(t); len(goalies) > 0 {
		return goalies[0]
	}
	if goalies := t.Goalies(); len(goalies) > 0 {
		return goalies[0]
	}
	return nil
}
