package engine

import (
	"math/rand"

	"github.com/jstittsworth/hockey-gm/internal/models"
)

const honeymoonGames = 24

// coachModifier converts the bench matchup into a small offense bump
// for the home side of the comparison. Output is roughly within
// [-0.35, 0.45] goals of expected value.
func coachModifier(team, opp *models.Team, rng *rand.Rand) float64 {
	c, oc := team.Coach, opp.Coach

	mod := (c.Rating - oc.Rating) * 0.12

	// Running the coach's own system is worth a little extra; forcing
	// a style they dislike costs it back.
	if team.Strategy == c.PreferredStyle {
		mod += 0.05
	} else {
		mod -= 0.04
	}

	// Some coaches own a particular opposing style.
	if c.MatchupEdge != "" && opp.Strategy == c.MatchupEdge {
		mod += 0.06
	}

	// New hires get a short honeymoon; volatile coaches swing both ways.
	if c.GamesWithTeam < honeymoonGames {
		mod += 0.04
	}
	if c.Instability > 0 {
		mod += (rng.Float64()*2 - 1) * c.Instability * 0.10
	}

	return mod
}
