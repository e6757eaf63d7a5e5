package engine

import "github.com/jstittsworth/hockey-gm/internal/models"

// strategyEffect shifts a team's output and injury exposure based on
// the deployed style.
type strategyEffect struct {
	Offense    float64
	Defense    float64
	InjuryRisk float64
	Discipline float64
}

var strategyEffects = map[models.CoachStyle]strategyEffect{
	models.StyleBalanced:   {Offense: 0.0, Defense: 0.0, InjuryRisk: 1.0, Discipline: 0.0},
	models.StyleAggressive: {Offense: 0.40, Defense: -0.20, InjuryRisk: 1.35, Discipline: 0.35},
	models.StyleDefensive:  {Offense: -0.15, Defense: 0.30, InjuryRisk: 0.82, Discipline: -0.20},
}

func effectFor(style models.CoachStyle) strategyEffect {
	if e, ok := strategyEffects[style]; ok {
		return e
	}
	return strategyEffects[models.StyleBalanced]
}
