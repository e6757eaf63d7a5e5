package models

type CoachStyle string

const (
	StyleBalanced   CoachStyle = "balanced"
	StyleAggressive CoachStyle = "aggressive"
	StyleDefensive  CoachStyle = "defensive"
)

func ValidCoachStyle(s CoachStyle) bool {
	switch s {
	case StyleBalanced, StyleAggressive, StyleDefensive:
		return true
	}
	return false
}

// Coach ratings are on the same 0.3-5.0 scale as players. PreferredStyle
// is what the coach runs best; a team strategy that mismatches it costs
// a small performance penalty.
type Coach struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Age            int        `json:"age"`
	Rating         float64    `json:"rating"`
	PreferredStyle CoachStyle `json:"preferred_style"`
	// MatchupEdge biases results against coaches of the named style.
	MatchupEdge CoachStyle `json:"matchup_edge"`
	Instability float64    `json:"instability"`
	// GamesWithTeam feeds the honeymoon window after a hire.
	GamesWithTeam int `json:"games_with_team"`
	SeasonsCoached int `json:"seasons_coached"`
}

// CoachCandidate is an unhired coach shown when the user fires theirs.
type CoachCandidate struct {
	Coach     Coach  `json:"coach"`
	Pitch     string `json:"pitch"`
	ExpiryDay int    `json:"expiry_day"`
}
