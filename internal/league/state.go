package league

import (
	"math/rand"

	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/pkg/config"
)

// State is the complete in-memory league. All mutation goes through
// the Driver under the server's single write lock; State itself does
// no locking.
type State struct {
	Season int          `json:"season"`
	Day    int          `json:"day"`
	Phase  models.Phase `json:"phase"`

	Teams      []*models.Team `json:"teams"`
	UserTeamID string         `json:"user_team_id"`

	Schedule []*models.ScheduledGame `json:"schedule"`
	// LastResults holds the most recent simulated day for the board.
	LastResults []*models.GameResult `json:"last_results"`
	// LastSimmedDay is the advance watermark: a request to advance to a
	// day at or below it is a no-op, which makes retries idempotent.
	LastSimmedDay int `json:"last_simmed_day"`

	Bracket    *models.Bracket       `json:"bracket,omitempty"`
	Inbox      []*models.InboxEvent  `json:"inbox"`
	FreeAgents []*models.Player      `json:"free_agents"`
	Retired    []*models.Player      `json:"retired"`

	Strategy models.CoachStyle `json:"strategy"`
}

// NewState builds a fresh season-one league and assigns the user a
// franchise.
func NewState(cfg *config.Config, rng *rand.Rand) *State {
	teams := BuildDefaultTeams(rng)
	s := &State{
		Season:     1,
		Day:        1,
		Phase:      models.PhaseRegular,
		Teams:      teams,
		UserTeamID: teams[rng.Intn(len(teams))].ID,
		FreeAgents: FreeAgentPool(rng, 18),
	}
	s.Schedule = BuildSchedule(teams, cfg.GamesPerMatchup, rng)
	s.Strategy = models.StyleBalanced
	return s
}

func (s *State) Team(id string) *models.Team {
	for _, t := range s.Teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *State) UserTeam() *models.Team {
	return s.Team(s.UserTeamID)
}

// PlayerTeam finds a player anywhere in the league along with the team
// holding their rights.
func (s *State) PlayerTeam(playerID string) (*models.Player, *models.Team) {
	for _, t := range s.Teams {
		if p := t.FindPlayer(playerID); p != nil {
			return p, t
		}
	}
	return nil, nil
}

func (s *State) TeamsInConference(conference string) []*models.Team {
	var out []*models.Team
	for _, t := range s.Teams {
		if t.Conference == conference {
			out = append(out, t)
		}
	}
	return out
}

func (s *State) TeamsInDivision(division string) []*models.Team {
	var out []*models.Team
	for _, t := range s.Teams {
		if t.Division == division {
			out = append(out, t)
		}
	}
	return out
}

func (s *State) Conferences() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range s.Teams {
		if !seen[t.Conference] {
			seen[t.Conference] = true
			out = append(out, t.Conference)
		}
	}
	return out
}

func (s *State) DivisionsInConference(conference string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range s.Teams {
		if t.Conference != conference || seen[t.Division] {
			continue
		}
		seen[t.Division] = true
		out = append(out, t.Division)
	}
	return out
}

// RemainingRegularGames counts unplayed schedule slots.
func (s *State) RemainingRegularGames() int {
	n := 0
	for _, g := range s.Schedule {
		if !g.Played {
			n++
		}
	}
	return n
}

// UnresolvedInbox returns live events, newest first.
func (s *State) UnresolvedInbox() []*models.InboxEvent {
	var out []*models.InboxEvent
	for i := len(s.Inbox) - 1; i >= 0; i-- {
		if !s.Inbox[i].Resolved && !s.Inbox[i].Expired(s.Day) {
			out = append(out, s.Inbox[i])
		}
	}
	return out
}

// SweepInbox drops expired unresolved events and returns how many were
// removed.
func (s *State) SweepInbox() int {
	kept := s.Inbox[:0]
	removed := 0
	for _, ev := range s.Inbox {
		if ev.Expired(s.Day) {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	s.Inbox = kept
	return removed
}
