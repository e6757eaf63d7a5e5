package league

import (
	"github.com/jstittsworth/hockey-gm/internal/models"
)

// Standings returns the full league table, sorted.
func (s *State) Standings() []models.StandingsRow {
	rows := make([]models.StandingsRow, 0, len(s.Teams))
	for _, t := range s.Teams {
		rows = append(rows, models.StandingsRowFor(t))
	}
	models.SortStandings(rows)
	return rows
}

func (s *State) ConferenceStandings(conference string) []models.StandingsRow {
	var rows []models.StandingsRow
	for _, t := range s.TeamsInConference(conference) {
		rows = append(rows, models.StandingsRowFor(t))
	}
	models.SortStandings(rows)
	return rows
}

func (s *State) DivisionStandings(division string) []models.StandingsRow {
	var rows []models.StandingsRow
	for _, t := range s.TeamsInDivision(division) {
		rows = append(rows, models.StandingsRowFor(t))
	}
	models.SortStandings(rows)
	return rows
}

// StandingsFromGames rebuilds the table as it stood after a set of
// completed regular season games, replaying each result onto a fresh
// record. Clinch markers are live-state facts and are left off.
func StandingsFromGames(teams []*models.Team, games []models.Game) []models.StandingsRow {
	records := make(map[string]*models.TeamRecord, len(teams))
	for _, t := range teams {
		records[t.ID] = &models.TeamRecord{}
	}
	for _, g := range games {
		if g.Playoff {
			continue
		}
		home, away := records[g.HomeTeamID], records[g.AwayTeamID]
		if home == nil || away == nil {
			continue
		}
		homeWon := g.HomeGoals > g.AwayGoals
		home.RegisterGame(g.HomeGoals, g.AwayGoals, homeWon, g.Overtime)
		away.RegisterGame(g.AwayGoals, g.HomeGoals, !homeWon, g.Overtime)
	}

	rows := make([]models.StandingsRow, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, models.StandingsRowFrom(t, *records[t.ID]))
	}
	models.SortStandings(rows)
	return rows
}

// WildCardRace is a conference table split the way the bracket seeds
// it: the division podiums qualify outright, everyone else fights for
// the remaining wild card berths.
type WildCardRace struct {
	Conference    string                          `json:"conference"`
	Divisions     map[string][]models.StandingsRow `json:"divisions"`
	WildCards     []models.StandingsRow           `json:"wild_cards"`
	WildCardSpots int                             `json:"wild_card_spots"`
}

func (s *State) WildCardStandings(conference string) WildCardRace {
	divs := s.DivisionsInConference(conference)
	race := WildCardRace{
		Conference: conference,
		Divisions:  make(map[string][]models.StandingsRow, len(divs)),
	}

	qualified := make(map[string]bool)
	for _, div := range divs {
		rows := s.DivisionStandings(div)
		top := 3
		if top > len(rows) {
			top = len(rows)
		}
		race.Divisions[div] = rows[:top]
		for _, r := range rows[:top] {
			qualified[r.TeamID] = true
		}
	}

	for _, r := range s.ConferenceStandings(conference) {
		if !qualified[r.TeamID] {
			race.WildCards = append(race.WildCards, r)
		}
	}

	spots := playoffSpotsFor(len(s.TeamsInConference(conference))) - 3*len(divs)
	if spots < 0 {
		spots = 0
	}
	race.WildCardSpots = spots
	return race
}

// maxRemainingPoints is the ceiling a team can still reach.
func (s *State) maxRemainingPoints(teamID string) int {
	t := s.Team(teamID)
	if t == nil {
		return 0
	}
	remaining := 0
	for _, g := range s.Schedule {
		if g.Played {
			continue
		}
		if g.HomeTeamID == teamID || g.AwayTeamID == teamID {
			remaining++
		}
	}
	return t.Record.Points() + remaining*2
}

// UpdateClinches marks teams that can no longer miss, or no longer
// make, their conference's playoff cut. The comparison is optimistic
// on both sides so a mark is never wrong, only late.
func (s *State) UpdateClinches() {
	for _, conference := range s.Conferences() {
		teams := s.TeamsInConference(conference)
		spots := playoffSpotsFor(len(teams))
		if spots <= 0 || spots >= len(teams) {
			continue
		}

		rows := s.ConferenceStandings(conference)
		for _, t := range teams {
			var myRank int
			for i, r := range rows {
				if r.TeamID == t.ID {
					myRank = i
					break
				}
			}
			myMax := s.maxRemainingPoints(t.ID)
			myPts := t.Record.Points()

			// Eliminated: even winning out cannot catch the current
			// holder of the last spot.
			cutoff := rows[spots-1].Points
			if myRank >= spots && myMax < cutoff {
				t.Eliminated = true
			}

			// Clinched: the first team outside the cut cannot reach us
			// even winning out.
			chaserMax := 0
			for i := spots; i < len(rows); i++ {
				if m := s.maxRemainingPoints(rows[i].TeamID); m > chaserMax {
					chaserMax = m
				}
			}
			if myRank < spots && myPts > chaserMax {
				t.ClinchedPlayoffs = true
			}
		}
	}

	s.updateTitleClinches()
}

// updateTitleClinches marks the locks above the playoff cut: division
// and conference titles, and the league's best overall record. A group
// leader has clinched when nobody else in the group can pass them even
// winning out.
func (s *State) updateTitleClinches() {
	lockTitle := func(teams []*models.Team, mark func(*models.Team)) {
		var leader *models.Team
		for _, t := range teams {
			if leader == nil || t.Record.Points() > leader.Record.Points() {
				leader = t
			}
		}
		if leader == nil {
			return
		}
		for _, t := range teams {
			if t.ID == leader.ID {
				continue
			}
			if s.maxRemainingPoints(t.ID) >= leader.Record.Points() {
				return
			}
		}
		mark(leader)
	}

	for _, conference := range s.Conferences() {
		for _, division := range s.DivisionsInConference(conference) {
			lockTitle(s.TeamsInDivision(division), func(t *models.Team) {
				t.ClinchedDivision = true
				t.ClinchedPlayoffs = true
			})
		}
		lockTitle(s.TeamsInConference(conference), func(t *models.Team) {
			t.ClinchedConference = true
			t.ClinchedPlayoffs = true
		})
	}
	lockTitle(s.Teams, func(t *models.Team) {
		t.ClinchedPresidents = true
		t.ClinchedPlayoffs = true
	})
}

// playoffSpotsFor is the per-conference berth count: eight when the
// conference can field a full bracket, otherwise half the field.
func playoffSpotsFor(conferenceSize int) int {
	if conferenceSize >= 8 {
		return 8
	}
	return conferenceSize / 2
}

// PointLeaders returns the top skaters by current-season points.
func (s *State) PointLeaders(limit int) []models.LeaderRow {
	return s.leaders(limit, func(p *models.Player) (float64, bool) {
		if p.IsGoalie() {
			return 0, false
		}
		return float64(p.Stats.Points()), true
	})
}

func (s *State) GoalLeaders(limit int) []models.LeaderRow {
	return s.leaders(limit, func(p *models.Player) (float64, bool) {
		if p.IsGoalie() {
			return 0, false
		}
		return float64(p.Stats.Goals), true
	})
}

// GoalieLeaders ranks by save percentage with a modest starts floor.
func (s *State) GoalieLeaders(limit int) []models.LeaderRow {
	minGames := 5
	return s.leaders(limit, func(p *models.Player) (float64, bool) {
		if !p.IsGoalie() || p.Stats.GoalieGames < minGames {
			return 0, false
		}
		return p.Stats.SavePct(), true
	})
}

func (s *State) leaders(limit int, value func(*models.Player) (float64, bool)) []models.LeaderRow {
	var rows []models.LeaderRow
	for _, t := range s.Teams {
		for _, p := range t.AllPlayers() {
			v, ok := value(p)
			if !ok {
				continue
			}
			rows = append(rows, models.LeaderRow{
				PlayerID: p.ID,
				Name:     p.Name,
				Team:     t.Name,
				Position: p.Position,
				Value:    v,
			})
		}
	}
	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			if rows[j].Value > rows[i].Value ||
				(rows[j].Value == rows[i].Value && rows[j].Name < rows[i].Name) {
				rows[i], rows[j] = rows[j], rows[i]
			}
		}
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
