package models

type SeriesStatus string

const (
	SeriesPending  SeriesStatus = "pending"
	SeriesActive   SeriesStatus = "active"
	SeriesFinished SeriesStatus = "finished"
)

// Seed identifies a bracket slot. WildCard seeds carry the conference
// rather than a division.
type Seed struct {
	TeamID     string `json:"team_id"`
	Team       string `json:"team"`
	Division   string `json:"division,omitempty"`
	Conference string `json:"conference"`
	Rank       int    `json:"rank"`
	WildCard   bool   `json:"wild_card"`
	Points     int    `json:"points"`
}

// PlayoffSeries is a best-of-N matchup. Home ice follows the
// H H A A H A H pattern from the higher seed's building.
type PlayoffSeries struct {
	ID         string       `json:"id"`
	Round      int          `json:"round"`
	Conference string       `json:"conference,omitempty"`
	Higher     Seed         `json:"higher"`
	Lower      Seed         `json:"lower"`
	HigherWins int          `json:"higher_wins"`
	LowerWins  int          `json:"lower_wins"`
	BestOf     int          `json:"best_of"`
	Status     SeriesStatus `json:"status"`
	WinnerID   string       `json:"winner_id,omitempty"`
	GameIDs    []string     `json:"game_ids"`
}

func (s *PlayoffSeries) winsNeeded() int {
	return s.BestOf/2 + 1
}

func (s *PlayoffSeries) Decided() bool {
	need := s.winsNeeded()
	return s.HigherWins >= need || s.LowerWins >= need
}

// NextGameNumber is 1-based; returns 0 when the series is over.
func (s *PlayoffSeries) NextGameNumber() int {
	if s.Decided() {
		return 0
	}
	return s.HigherWins + s.LowerWins + 1
}

// HigherHostsGame reports whether the higher seed hosts the given
// 1-based game number.
func HigherHostsGame(n int) bool {
	switch n {
	case 1, 2, 5, 7:
		return true
	}
	return false
}

// RecordWin applies one game result and closes the series when a side
// reaches the required wins.
func (s *PlayoffSeries) RecordWin(teamID string) {
	if s.Status == SeriesFinished {
		return
	}
	if teamID == s.Higher.TeamID {
		s.HigherWins++
	} else if teamID == s.Lower.TeamID {
		s.LowerWins++
	}
	s.Status = SeriesActive
	if s.Decided() {
		s.Status = SeriesFinished
		if s.HigherWins > s.LowerWins {
			s.WinnerID = s.Higher.TeamID
		} else {
			s.WinnerID = s.Lower.TeamID
		}
	}
}

// Bracket holds every series keyed by round. Rounds are 1-based; the
// final round has a single series.
type Bracket struct {
	Season     int              `json:"season"`
	BestOf     int              `json:"best_of"`
	Rounds     int              `json:"rounds"`
	Current    int              `json:"current_round"`
	Series     []*PlayoffSeries `json:"series"`
	ChampionID string           `json:"champion_id,omitempty"`
	Champion   string           `json:"champion,omitempty"`
}

func (b *Bracket) SeriesInRound(round int) []*PlayoffSeries {
	var out []*PlayoffSeries
	for _, s := range b.Series {
		if s.Round == round {
			out = append(out, s)
		}
	}
	return out
}

func (b *Bracket) RoundComplete(round int) bool {
	series := b.SeriesInRound(round)
	if len(series) == 0 {
		return false
	}
	for _, s := range series {
		if s.Status != SeriesFinished {
			return false
		}
	}
	return true
}

func (b *Bracket) FindSeries(id string) *PlayoffSeries {
	for _, s := range b.Series {
		if s.ID == id {
			return s
		}
	}
	return nil
}
