package models

type TradeVerdict string

const (
	VerdictAccept  TradeVerdict = "accept"
	VerdictConsider TradeVerdict = "consider"
	VerdictReject  TradeVerdict = "reject"
)

// TradeOffer is a two-sided player swap. FromTeamID is the proposing
// side; valuation is always computed from the receiving team's view.
type TradeOffer struct {
	ID         string   `json:"id"`
	FromTeamID string   `json:"from_team_id"`
	ToTeamID   string   `json:"to_team_id"`
	// FromPlayerIDs leave the proposing team; ToPlayerIDs come back.
	FromPlayerIDs []string `json:"from_player_ids"`
	ToPlayerIDs   []string `json:"to_player_ids"`
	CreatedDay    int      `json:"created_day"`
	CreatedSeason int      `json:"created_season"`
}

// PlayerValuation is the per-player breakdown behind an evaluation.
type PlayerValuation struct {
	PlayerID  string  `json:"player_id"`
	Name      string  `json:"name"`
	Base      float64 `json:"base"`
	AgeCurve  float64 `json:"age_curve"`
	NeedBonus float64 `json:"need_bonus"`
	Contract  float64 `json:"contract"`
	Injury    float64 `json:"injury"`
	Total     float64 `json:"total"`
}

// TradeEvaluation is the counterparty's judgment of an offer. Net is
// incoming minus outgoing value from the evaluating team's view.
type TradeEvaluation struct {
	OfferID    string            `json:"offer_id"`
	TeamID     string            `json:"team_id"`
	Incoming   []PlayerValuation `json:"incoming"`
	Outgoing   []PlayerValuation `json:"outgoing"`
	Net        float64           `json:"net"`
	Verdict    TradeVerdict      `json:"verdict"`
	AcceptProb float64           `json:"accept_prob"`
	Reasons    []string          `json:"reasons"`
}
