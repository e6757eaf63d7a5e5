package trade

import (
	"sort"

	"github.com/jstittsworth/hockey-gm/internal/models"
)

// CategoryFor buckets a player by what they would address on a roster.
func CategoryFor(p *models.Player) models.NeedCategory {
	if p.IsGoalie() {
		return models.NeedGoaltending
	}
	if p.IsDefense() {
		return models.NeedDefense
	}
	if p.Ratings.Playmaking > p.Ratings.Shooting+0.25 {
		return models.NeedPlaymaking
	}
	if p.Overall() < 2.4 {
		return models.NeedDepth
	}
	return models.NeedScoring
}

// RecomputeNeeds rebuilds the profile from roster weaknesses. Scores
// run 0 to 1, higher meaning a bigger hole. Manual profiles are left
// untouched.
func RecomputeNeeds(t *models.Team) {
	if t.Needs.Mode == models.NeedsManual {
		return
	}
	scores := make(map[models.NeedCategory]float64, 5)

	forwards, defense := byGroup(t)
	goalies := t.Goalies()

	scores[models.NeedScoring] = gap(topAvg(forwards, 6, func(p *models.Player) float64 { return p.Ratings.Shooting }))
	scores[models.NeedPlaymaking] = gap(topAvg(forwards, 6, func(p *models.Player) float64 { return p.Ratings.Playmaking }))
	scores[models.NeedDefense] = gap(topAvg(defense, 4, func(p *models.Player) float64 { return p.Ratings.Defense }))
	scores[models.NeedGoaltending] = gap(topAvg(goalies, 1, func(p *models.Player) float64 { return p.Ratings.Goaltending }))

	// Depth is thin bottom-half talent or a short bench.
	depthPool := append(append([]*models.Player{}, forwards...), defense...)
	sort.SliceStable(depthPool, func(i, j int) bool { return depthPool[i].Overall() > depthPool[j].Overall() })
	if len(depthPool) > 9 {
		depthPool = depthPool[9:]
	}
	depth := gap(avg(depthPool, func(p *models.Player) float64 { return p.Overall() }))
	if len(t.Roster) < 20 {
		depth += 0.25
	}
	if depth > 1 {
		depth = 1
	}
	scores[models.NeedDepth] = depth

	t.Needs = models.NeedsProfile{Mode: models.NeedsAuto, Scores: scores}
}

func byGroup(t *models.Team) (forwards, defense []*models.Player) {
	for _, p := range t.Roster {
		switch {
		case p.IsGoalie():
		case p.IsDefense():
			defense = append(defense, p)
		default:
			forwards = append(forwards, p)
		}
	}
	return forwards, defense
}

func topAvg(players []*models.Player, n int, value func(*models.Player) float64) float64 {
	sorted := append([]*models.Player{}, players...)
	sort.SliceStable(sorted, func(i, j int) bool { return value(sorted[i]) > value(sorted[j]) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return avg(sorted, value)
}

func avg(players []*models.Player, value func(*models.Player) float64) float64 {
	if len(players) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range players {
		total += value(p)
	}
	return total / float64(len(players))
}

// gap maps a group's average rating to a need score: a 4.2+ group has
// no hole, a 2.0 group is desperate.
func gap(rating float64) float64 {
	g := (4.2 - rating) / 2.2
	if g < 0 {
		return 0
	}
	if g > 1 {
		return 1
	}
	return g
}
