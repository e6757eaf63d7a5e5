package models

type InboxEventType string

const (
	InboxTradeOffer     InboxEventType = "trade_offer"
	InboxInjuryReport   InboxEventType = "injury_report"
	InboxCoachCandidate InboxEventType = "coach_candidate"
	InboxMilestone      InboxEventType = "milestone"
	InboxLeagueNews     InboxEventType = "league_news"
)

// InboxEvent is a front-office item awaiting the user. Events carry an
// expiry day; unresolved events past expiry are swept on day advance.
type InboxEvent struct {
	ID        string         `json:"id"`
	Type      InboxEventType `json:"type"`
	Season    int            `json:"season"`
	Day       int            `json:"day"`
	ExpiryDay int            `json:"expiry_day"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Resolved  bool           `json:"resolved"`

	// Offer is set for trade_offer events.
	Offer *TradeOffer `json:"offer,omitempty"`
	// Candidate is set for coach_candidate events.
	Candidate *CoachCandidate `json:"candidate,omitempty"`
}

func (e *InboxEvent) Expired(day int) bool {
	return !e.Resolved && e.ExpiryDay > 0 && day > e.ExpiryDay
}
