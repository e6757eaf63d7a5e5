package league

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jstittsworth/hockey-gm/internal/models"
)

// BuildBracket seeds the postseason from the final standings. A
// conference with exactly two divisions gets the division-based
// format: top three per division plus two wild cards, with each
// division winner drawing a wild card. Anything else falls back to a
// straight top-eight, one-versus-eight bracket.
func (s *State) BuildBracket(bestOf int) *models.Bracket {
	b := &models.Bracket{
		Season:  s.Season,
		BestOf:  bestOf,
		Current: 1,
	}

	conferences := s.Conferences()
	for _, conference := range conferences {
		series := s.seedConference(conference, bestOf)
		b.Series = append(b.Series, series...)
	}

	// Rounds inside a conference plus the final between champions.
	perConf := 0
	for _, sr := range b.Series {
		if sr.Conference == conferences[0] {
			perConf++
		}
	}
	rounds := 1
	for n := perConf; n > 1; n /= 2 {
		rounds++
	}
	if len(conferences) > 1 {
		rounds++
	}
	b.Rounds = rounds
	return b
}

func (s *State) seedConference(conference string, bestOf int) []*models.PlayoffSeries {
	divisions := s.DivisionsInConference(conference)
	rows := s.ConferenceStandings(conference)

	seedFor := func(r models.StandingsRow, rank int, wild bool) models.Seed {
		return models.Seed{
			TeamID:     r.TeamID,
			Team:       r.Team,
			Division:   r.Division,
			Conference: conference,
			Rank:       rank,
			WildCard:   wild,
			Points:     r.Points,
		}
	}

	newSeries := func(higher, lower models.Seed) *models.PlayoffSeries {
		return &models.PlayoffSeries{
			ID:         uuid.NewString(),
			Round:      1,
			Conference: conference,
			Higher:     higher,
			Lower:      lower,
			BestOf:     bestOf,
			Status:     models.SeriesPending,
		}
	}

	if len(divisions) == 2 {
		byDiv := make(map[string][]models.StandingsRow)
		for _, r := range rows {
			byDiv[r.Division] = append(byDiv[r.Division], r)
		}
		haveDepth := true
		for _, d := range divisions {
			if len(byDiv[d]) < 3 {
				haveDepth = false
			}
		}
		if haveDepth {
			qualified := make(map[string]bool)
			for _, d := range divisions {
				for i := 0; i < 3; i++ {
					qualified[byDiv[d][i].TeamID] = true
				}
			}
			var wilds []models.StandingsRow
			for _, r := range rows {
				if !qualified[r.TeamID] {
					wilds = append(wilds, r)
					if len(wilds) == 2 {
						break
					}
				}
			}
			if len(wilds) == 2 {
				// The stronger division winner draws the second wild
				// card; second plays third inside each division.
				d0, d1 := byDiv[divisions[0]], byDiv[divisions[1]]
				topDiv, otherDiv := d0, d1
				if d1[0].Points > d0[0].Points {
					topDiv, otherDiv = d1, d0
				}
				return []*models.PlayoffSeries{
					newSeries(seedFor(topDiv[0], 1, false), seedFor(wilds[1], 8, true)),
					newSeries(seedFor(topDiv[1], 2, false), seedFor(topDiv[2], 3, false)),
					newSeries(seedFor(otherDiv[0], 1, false), seedFor(wilds[0], 7, true)),
					newSeries(seedFor(otherDiv[1], 2, false), seedFor(otherDiv[2], 3, false)),
				}
			}
		}
	}

	// Fallback: straight top-eight.
	spots := playoffSpotsFor(len(rows))
	if spots > len(rows) {
		spots = len(rows)
	}
	if spots%2 == 1 {
		spots--
	}
	var out []*models.PlayoffSeries
	for i := 0; i < spots/2; i++ {
		out = append(out, newSeries(
			seedFor(rows[i], i+1, false),
			seedFor(rows[spots-1-i], spots-i, false),
		))
	}
	return out
}

// advanceBracket pairs the winners of a finished round into the next
// one. Pairing follows bracket order within each conference; the last
// round crosses conferences for the championship.
func (s *State) advanceBracket(b *models.Bracket) {
	if !b.RoundComplete(b.Current) {
		return
	}
	finished := b.SeriesInRound(b.Current)

	if len(finished) == 1 {
		winner := finished[0].WinnerID
		b.ChampionID = winner
		if t := s.Team(winner); t != nil {
			b.Champion = t.Name
		}
		return
	}

	winnerSeed := func(sr *models.PlayoffSeries) models.Seed {
		if sr.WinnerID == sr.Higher.TeamID {
			return sr.Higher
		}
		return sr.Lower
	}

	pair := func(a, z *models.PlayoffSeries, conference string) *models.PlayoffSeries {
		wa, wz := winnerSeed(a), winnerSeed(z)
		higher, lower := wa, wz
		if wz.Points > wa.Points || (wz.Points == wa.Points && wz.Rank < wa.Rank) {
			higher, lower = wz, wa
		}
		return &models.PlayoffSeries{
			ID:         uuid.NewString(),
			Round:      b.Current + 1,
			Conference: conference,
			Higher:     higher,
			Lower:      lower,
			BestOf:     b.BestOf,
			Status:     models.SeriesPending,
		}
	}

	byConf := make(map[string][]*models.PlayoffSeries)
	var order []string
	for _, sr := range finished {
		if _, ok := byConf[sr.Conference]; !ok {
			order = append(order, sr.Conference)
		}
		byConf[sr.Conference] = append(byConf[sr.Conference], sr)
	}

	if len(order) == 2 && len(byConf[order[0]]) == 1 && len(byConf[order[1]]) == 1 {
		// Conference finals are done; build the championship.
		final := pair(byConf[order[0]][0], byConf[order[1]][0], "")
		b.Series = append(b.Series, final)
		b.Current++
		return
	}

	for _, conference := range order {
		group := byConf[conference]
		for i := 0; i+1 < len(group); i += 2 {
			b.Series = append(b.Series, pair(group[i], group[i+1], conference))
		}
	}
	b.Current++
}

// SeriesLabel is a short display string for the franchise page.
func SeriesLabel(sr *models.PlayoffSeries) string {
	lead, trail := sr.Higher, sr.Lower
	lw, tw := sr.HigherWins, sr.LowerWins
	if tw > lw {
		lead, trail = trail, lead
		lw, tw = tw, lw
	}
	if sr.Status == models.SeriesFinished {
		return fmt.Sprintf("%s win series %d-%d over %s", lead.Team, lw, tw, trail.Team)
	}
	if lw == tw {
		return fmt.Sprintf("%s and %s tied %d-%d", sr.Higher.Team, sr.Lower.Team, lw, tw)
	}
	return fmt.Sprintf("%s lead %s %d-%d", lead.Team, trail.Team, lw, tw)
}
