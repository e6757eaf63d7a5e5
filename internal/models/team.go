package models

import "fmt"

// NeedCategory buckets used for trade valuation and roster planning.
type NeedCategory string

const (
	NeedScoring     NeedCategory = "scoring"
	NeedPlaymaking  NeedCategory = "playmaking"
	NeedDefense     NeedCategory = "defense"
	NeedGoaltending NeedCategory = "goaltending"
	NeedDepth       NeedCategory = "depth"
)

func AllNeedCategories() []NeedCategory {
	return []NeedCategory{NeedScoring, NeedPlaymaking, NeedDefense, NeedGoaltending, NeedDepth}
}

type NeedsMode string

const (
	NeedsAuto   NeedsMode = "auto"
	NeedsManual NeedsMode = "manual"
)

// NeedsProfile weights trade targets. Auto mode is recomputed from the
// roster after every roster move; manual mode is set by the user and
// left alone until they switch back.
type NeedsProfile struct {
	Mode   NeedsMode                `json:"mode"`
	Scores map[NeedCategory]float64 `json:"scores"`
}

type BlockStatus string

const (
	BlockAvailable   BlockStatus = "available"
	BlockUntouchable BlockStatus = "untouchable"
)

type TeamRecord struct {
	Wins           int `json:"wins"`
	Losses         int `json:"losses"`
	OTLosses       int `json:"ot_losses"`
	RegulationWins int `json:"regulation_wins"`
	GoalsFor       int `json:"goals_for"`
	GoalsAgainst   int `json:"goals_against"`

	// Results holds one code per game in order: W, L or O (overtime
	// loss). Last10 and Streak read off the tail.
	Results []string `json:"results,omitempty"`

	PowerPlayGoals     int `json:"pp_goals"`
	PowerPlayChances   int `json:"pp_chances"`
	PenaltyKillGoals   int `json:"pk_goals_against"`
	PenaltyKillChances int `json:"pk_chances"`
}

func (r TeamRecord) Points() int {
	return r.Wins*2 + r.OTLosses
}

func (r TeamRecord) GamesPlayed() int {
	return r.Wins + r.Losses + r.OTLosses
}

func (r TeamRecord) GoalDiff() int {
	return r.GoalsFor - r.GoalsAgainst
}

// RegisterGame applies one final score to the record.
func (r *TeamRecord) RegisterGame(goalsFor, goalsAgainst int, won, overtime bool) {
	r.GoalsFor += goalsFor
	r.GoalsAgainst += goalsAgainst
	switch {
	case won:
		r.Wins++
		if !overtime {
			r.RegulationWins++
		}
		r.Results = append(r.Results, "W")
	case overtime:
		r.OTLosses++
		r.Results = append(r.Results, "O")
	default:
		r.Losses++
		r.Results = append(r.Results, "L")
	}
}

// RegisterSpecialTeams books one game's power play and penalty kill
// totals.
func (r *TeamRecord) RegisterSpecialTeams(ppGoals, ppChances, pkGoalsAgainst, pkChances int) {
	r.PowerPlayGoals += ppGoals
	r.PowerPlayChances += ppChances
	r.PenaltyKillGoals += pkGoalsAgainst
	r.PenaltyKillChances += pkChances
}

// Last10 summarizes the most recent ten games as W-L-OTL.
func (r TeamRecord) Last10() string {
	start := len(r.Results) - 10
	if start < 0 {
		start = 0
	}
	w, l, o := 0, 0, 0
	for _, code := range r.Results[start:] {
		switch code {
		case "W":
			w++
		case "O":
			o++
		default:
			l++
		}
	}
	return fmt.Sprintf("%d-%d-%d", w, l, o)
}

// Streak reports the running result streak, like W4 or O2.
func (r TeamRecord) Streak() string {
	if len(r.Results) == 0 {
		return "-"
	}
	last := r.Results[len(r.Results)-1]
	n := 0
	for i := len(r.Results) - 1; i >= 0 && r.Results[i] == last; i-- {
		n++
	}
	return fmt.Sprintf("%s%d", last, n)
}

func (r TeamRecord) PowerPlayPct() float64 {
	if r.PowerPlayChances == 0 {
		return 0
	}
	return float64(r.PowerPlayGoals) / float64(r.PowerPlayChances) * 100
}

func (r TeamRecord) PenaltyKillPct() float64 {
	if r.PenaltyKillChances == 0 {
		return 0
	}
	return (1 - float64(r.PenaltyKillGoals)/float64(r.PenaltyKillChances)) * 100
}

// Lines capture the deployed forward trios and defense pairs by player
// ID. Slots left empty are filled automatically at game time.
type Lines struct {
	Forwards [4][3]string `json:"forwards"`
	Defense  [3][2]string `json:"defense"`
}

type Team struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Logo          string `json:"logo"`
	Color         string `json:"color"`
	Division      string `json:"division"`
	Conference    string `json:"conference"`
	Arena         string `json:"arena"`
	ArenaCapacity int    `json:"arena_capacity"`

	Roster []*Player `json:"roster"`
	Minors []*Player `json:"minors"`

	// Dressed holds the player IDs iced for the next game.
	Dressed          map[string]bool `json:"dressed"`
	Lines            Lines           `json:"lines"`
	StartingGoalieID string          `json:"starting_goalie_id"`
	CaptainID        string          `json:"captain_id"`
	AssistantIDs     []string        `json:"assistant_ids"`

	Coach    Coach      `json:"coach"`
	Strategy CoachStyle `json:"strategy"`

	Record TeamRecord `json:"record"`

	TradeBlock map[string]BlockStatus `json:"trade_block"`
	Needs      NeedsProfile           `json:"needs"`

	// FanSentiment runs 0-100 and moves with results and trades.
	FanSentiment float64 `json:"fan_sentiment"`

	ClinchedPlayoffs   bool `json:"clinched_playoffs"`
	ClinchedDivision   bool `json:"clinched_division"`
	ClinchedConference bool `json:"clinched_conference"`
	ClinchedPresidents bool `json:"clinched_presidents"`
	Eliminated         bool `json:"eliminated"`
}

// AllPlayers returns active roster then minors. The returned slice is
// freshly allocated; the players are shared.
func (t *Team) AllPlayers() []*Player {
	out := make([]*Player, 0, len(t.Roster)+len(t.Minors))
	out = append(out, t.Roster...)
	out = append(out, t.Minors...)
	return out
}

func (t *Team) FindPlayer(id string) *Player {
	for _, p := range t.AllPlayers() {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (t *Team) OnActiveRoster(id string) bool {
	for _, p := range t.Roster {
		if p.ID == id {
			return true
		}
	}
	return false
}

// CapUsed sums active-roster cap hits. Minor leaguers are buried and do
// not count against the cap.
func (t *Team) CapUsed() int64 {
	var total int64
	for _, p := range t.Roster {
		total += p.Contract.CapHit
	}
	return total
}

func (t *Team) Goalies() []*Player {
	var out []*Player
	for _, p := range t.Roster {
		if p.IsGoalie() {
			out = append(out, p)
		}
	}
	return out
}

func (t *Team) HealthySkaters() (forwards, defense []*Player) {
	for _, p := range t.Roster {
		if p.IsInjured() || p.IsGoalie() {
			continue
		}
		if p.IsDefense() {
			defense = append(defense, p)
		} else {
			forwards = append(forwards, p)
		}
	}
	return forwards, defense
}

// leadershipScore favors established veterans for the letters.
func leadershipScore(p *Player) float64 {
	return p.Overall() + float64(p.Age)*0.03
}

// EnsureLeadership re-awards any letter whose holder is no longer on
// the active roster. Trades, demotions and retirements call this so
// the C never points at a player who left the room.
func (t *Team) EnsureLeadership() {
	if t.CaptainID != "" && t.OnActiveRoster(t.CaptainID) {
		intact := len(t.AssistantIDs) > 0
		for _, id := range t.AssistantIDs {
			if !t.OnActiveRoster(id) {
				intact = false
				break
			}
		}
		if intact {
			return
		}
	}
	t.assignLetters()
}

// assignLetters hands the C to the most established skater and the A's
// to the next two.
func (t *Team) assignLetters() {
	var best, second, third *Player
	for _, p := range t.Roster {
		if p.IsGoalie() {
			continue
		}
		switch {
		case best == nil || leadershipScore(p) > leadershipScore(best):
			best, second, third = p, best, second
		case second == nil || leadershipScore(p) > leadershipScore(second):
			second, third = p, second
		case third == nil || leadershipScore(p) > leadershipScore(third):
			third = p
		}
	}
	t.CaptainID = ""
	if best != nil {
		t.CaptainID = best.ID
	}
	t.AssistantIDs = nil
	for _, p := range []*Player{second, third} {
		if p != nil {
			t.AssistantIDs = append(t.AssistantIDs, p.ID)
		}
	}
}

// RemovePlayer detaches the player from whichever list holds them and
// reports which list that was.
func (t *Team) RemovePlayer(id string) (*Player, bool) {
	for i, p := range t.Roster {
		if p.ID == id {
			t.Roster = append(t.Roster[:i], t.Roster[i+1:]...)
			delete(t.Dressed, id)
			return p, true
		}
	}
	for i, p := range t.Minors {
		if p.ID == id {
			t.Minors = append(t.Minors[:i], t.Minors[i+1:]...)
			return p, false
		}
	}
	return nil, false
}
