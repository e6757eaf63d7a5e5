package models

import "sort"

// StandingsRow is the read model served to the standings table.
type StandingsRow struct {
	TeamID         string  `json:"team_id"`
	Team           string  `json:"team"`
	Logo           string  `json:"logo"`
	Division       string  `json:"division"`
	Conference     string  `json:"conference"`
	GamesPlayed    int     `json:"gp"`
	Wins           int     `json:"w"`
	Losses         int     `json:"l"`
	OTLosses       int     `json:"otl"`
	RegulationWins int     `json:"rw"`
	Points         int     `json:"pts"`
	GoalsFor       int     `json:"gf"`
	GoalsAgainst   int     `json:"ga"`
	GoalDiff       int     `json:"diff"`
	Last10         string  `json:"last10"`
	Streak         string  `json:"streak"`
	PowerPlayPct   float64 `json:"pp_pct"`
	PenaltyKillPct float64 `json:"pk_pct"`

	Clinched           bool `json:"clinched"`
	ClinchedDivision   bool `json:"clinched_division"`
	ClinchedConference bool `json:"clinched_conference"`
	ClinchedPresidents bool `json:"clinched_presidents"`
	Eliminated         bool `json:"eliminated"`
}

// StandingsRowFrom builds a row for the team's identity over an
// arbitrary record, so historical tables rebuilt from the game archive
// share the live table's shape. Clinch marks are left unset.
func StandingsRowFrom(t *Team, rec TeamRecord) StandingsRow {
	return StandingsRow{
		TeamID:         t.ID,
		Team:           t.Name,
		Logo:           t.Logo,
		Division:       t.Division,
		Conference:     t.Conference,
		GamesPlayed:    rec.GamesPlayed(),
		Wins:           rec.Wins,
		Losses:         rec.Losses,
		OTLosses:       rec.OTLosses,
		RegulationWins: rec.RegulationWins,
		Points:         rec.Points(),
		GoalsFor:       rec.GoalsFor,
		GoalsAgainst:   rec.GoalsAgainst,
		GoalDiff:       rec.GoalDiff(),
		Last10:         rec.Last10(),
		Streak:         rec.Streak(),
		PowerPlayPct:   rec.PowerPlayPct(),
		PenaltyKillPct: rec.PenaltyKillPct(),
	}
}

func StandingsRowFor(t *Team) StandingsRow {
	row := StandingsRowFrom(t, t.Record)
	row.Clinched = t.ClinchedPlayoffs
	row.ClinchedDivision = t.ClinchedDivision
	row.ClinchedConference = t.ClinchedConference
	row.ClinchedPresidents = t.ClinchedPresidents
	row.Eliminated = t.Eliminated
	return row
}

// SortStandings orders rows by points, then regulation wins, then
// total wins, then goal differential, then goals for, then name for a
// stable final order.
func SortStandings(rows []StandingsRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.RegulationWins != b.RegulationWins {
			return a.RegulationWins > b.RegulationWins
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.Team < b.Team
	})
}
