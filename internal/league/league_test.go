package league

import (
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/pkg/config"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestState(seed int64) (*State, *rand.Rand, *config.Config) {
	cfg := config.Default()
	rng := rand.New(rand.NewSource(seed))
	return NewState(cfg, rng), rng, cfg
}

func TestBuildDefaultTeamsShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	teams := BuildDefaultTeams(rng)

	require.Len(t, teams, 24)

	divisions := make(map[string]int)
	conferences := make(map[string]int)
	for _, tm := range teams {
		divisions[tm.Division]++
		conferences[tm.Conference]++

		forwards, defense, goalies := 0, 0, 0
		for _, p := range tm.Roster {
			switch {
			case p.IsGoalie():
				goalies++
			case p.IsDefense():
				defense++
			default:
				forwards++
			}
		}
		assert.Equal(t, 13, forwards, tm.Name)
		assert.Equal(t, 7, defense, tm.Name)
		assert.Equal(t, 2, goalies, tm.Name)
		assert.Len(t, tm.Minors, 10, tm.Name)

		assert.NotEmpty(t, tm.CaptainID, tm.Name)
		assert.Len(t, tm.AssistantIDs, 2, tm.Name)
		assert.NotEmpty(t, tm.Coach.Name, tm.Name)
		assert.NotEmpty(t, tm.StartingGoalieID, tm.Name)

		for _, p := range tm.AllPlayers() {
			assert.GreaterOrEqual(t, p.Contract.CapHit, int64(1), p.Name)
			assert.GreaterOrEqual(t, p.Contract.YearsLeft, 1, p.Name)
		}
	}

	assert.Len(t, divisions, 4)
	assert.Len(t, conferences, 2)
	for div, n := range divisions {
		assert.Equal(t, 6, n, div)
	}
	for conf, n := range conferences {
		assert.Equal(t, 12, n, conf)
	}
}

func TestBuildDefaultTeamsJerseyNumbersUnique(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	teams := BuildDefaultTeams(rng)

	for _, tm := range teams {
		seen := make(map[int]bool)
		for _, p := range tm.AllPlayers() {
			assert.GreaterOrEqual(t, p.JerseyNumber, 2)
			assert.LessOrEqual(t, p.JerseyNumber, 98)
			assert.False(t, seen[p.JerseyNumber], "%s duplicates #%d", tm.Name, p.JerseyNumber)
			seen[p.JerseyNumber] = true
		}
	}
}

func TestBuildScheduleBalanced(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	teams := BuildDefaultTeams(rng)
	cfg := config.Default()

	schedule := BuildSchedule(teams, cfg.GamesPerMatchup, rng)

	wantPerTeam := (len(teams) - 1) * cfg.GamesPerMatchup
	_, perTeam := ScheduleSummary(schedule)
	require.Len(t, perTeam, len(teams))
	for id, n := range perTeam {
		assert.Equal(t, wantPerTeam, n, id)
	}

	// Nobody plays twice on the same day.
	byDay := make(map[int]map[string]bool)
	for _, g := range schedule {
		if byDay[g.Day] == nil {
			byDay[g.Day] = make(map[string]bool)
		}
		for _, id := range []string{g.HomeTeamID, g.AwayTeamID} {
			assert.False(t, byDay[g.Day][id], "team %s doubled up on day %d", id, g.Day)
			byDay[g.Day][id] = true
		}
	}
}

func TestBuildScheduleOddTeamCount(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	teams := BuildDefaultTeams(rng)[:5]

	schedule := BuildSchedule(teams, 2, rng)

	_, perTeam := ScheduleSummary(schedule)
	for id, n := range perTeam {
		assert.Equal(t, 8, n, id)
	}
}

func TestNewStateStartsDayOne(t *testing.T) {
	s, _, _ := newTestState(5)

	assert.Equal(t, 1, s.Season)
	assert.Equal(t, 1, s.Day)
	assert.Equal(t, models.PhaseRegular, s.Phase)
	assert.NotNil(t, s.UserTeam())
	assert.Len(t, s.FreeAgents, 18)
	assert.NotEmpty(t, s.Schedule)
	assert.Zero(t, s.LastSimmedDay)
}

func TestPlayoffSpotsFor(t *testing.T) {
	assert.Equal(t, 8, playoffSpotsFor(12))
	assert.Equal(t, 8, playoffSpotsFor(8))
	assert.Equal(t, 3, playoffSpotsFor(6))
	assert.Equal(t, 2, playoffSpotsFor(4))
}

// seedRecords gives every team a distinct record so seeding order is
// fully determined.
func seedRecords(s *State) {
	rows := s.Standings()
	for i, row := range rows {
		t := s.Team(row.TeamID)
		t.Record = models.TeamRecord{}
		for w := 0; w < 40-i; w++ {
			t.Record.RegisterGame(3, 1, true, false)
		}
		for l := 0; l < i; l++ {
			t.Record.RegisterGame(1, 3, false, false)
		}
	}
}

func TestBuildBracketSeedsSixteenTeams(t *testing.T) {
	s, _, cfg := newTestState(6)
	seedRecords(s)

	b := s.BuildBracket(cfg.PlayoffBestOf)
	require.NotNil(t, b)

	assert.Equal(t, 4, b.Rounds)
	assert.Equal(t, 1, b.Current)
	require.Len(t, b.SeriesInRound(1), 8)

	perConf := make(map[string]int)
	teams := make(map[string]bool)
	wildCards := make(map[string]int)
	for _, sr := range b.SeriesInRound(1) {
		perConf[sr.Conference]++
		for _, seed := range []models.Seed{sr.Higher, sr.Lower} {
			assert.False(t, teams[seed.TeamID], "team seeded twice")
			teams[seed.TeamID] = true
			if seed.WildCard {
				wildCards[sr.Conference]++
			}
			tm := s.Team(seed.TeamID)
			require.NotNil(t, tm)
			assert.Equal(t, sr.Conference, tm.Conference)
		}
		assert.Equal(t, cfg.PlayoffBestOf, sr.BestOf)
	}
	assert.Len(t, teams, 16)
	for conf, n := range perConf {
		assert.Equal(t, 4, n, conf)
		assert.Equal(t, 2, wildCards[conf], conf)
	}
}

func TestAdvanceBracketCrownsChampion(t *testing.T) {
	s, _, cfg := newTestState(7)
	seedRecords(s)

	b := s.BuildBracket(cfg.PlayoffBestOf)
	for b.ChampionID == "" {
		for _, sr := range b.SeriesInRound(b.Current) {
			for sr.Status != models.SeriesFinished {
				sr.RecordWin(sr.Higher.TeamID)
			}
		}
		require.True(t, b.RoundComplete(b.Current))
		s.advanceBracket(b)
	}

	champ := s.Team(b.ChampionID)
	require.NotNil(t, champ)
	assert.Equal(t, champ.Name, b.Champion)

	// The final crossed conferences.
	final := b.SeriesInRound(b.Rounds)
	require.Len(t, final, 1)
	higher := s.Team(final[0].Higher.TeamID)
	lower := s.Team(final[0].Lower.TeamID)
	assert.NotEqual(t, higher.Conference, lower.Conference)
}

func TestAdvanceDayReplaysBelowWatermark(t *testing.T) {
	s, rng, cfg := newTestState(8)
	d := NewDriver(cfg, testLogger(), s, nil, rng)

	first, err := d.AdvanceDay(1)
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.NotEmpty(t, first.Results)
	assert.Equal(t, 2, s.Day)
	assert.Equal(t, 1, s.LastSimmedDay)

	replay, err := d.AdvanceDay(1)
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, first.Results, replay.Results)
	assert.Equal(t, 2, s.Day, "replay never moves the clock")

	next, err := d.AdvanceDay(2)
	require.NoError(t, err)
	assert.False(t, next.Replayed)
	assert.Equal(t, 3, s.Day)
}

func TestAdvanceDayReplaysPlayoffDays(t *testing.T) {
	s, rng, cfg := newTestState(14)
	d := NewDriver(cfg, testLogger(), s, nil, rng)

	for i := 0; i < 400 && s.Phase == models.PhaseRegular; i++ {
		_, err := d.AdvanceDay(0)
		require.NoError(t, err)
	}
	require.Equal(t, models.PhasePlayoffs, s.Phase)

	first, err := d.AdvanceDay(0)
	require.NoError(t, err)
	require.False(t, first.Replayed)
	require.NotEmpty(t, first.Results)

	wins := func() int {
		total := 0
		for _, sr := range s.Bracket.Series {
			total += sr.HigherWins + sr.LowerWins
		}
		return total
	}
	dayAfter, winsAfter := s.Day, wins()

	replay, err := d.AdvanceDay(s.LastSimmedDay)
	require.NoError(t, err)
	assert.True(t, replay.Replayed, "a settled playoff day is never re-simulated")
	assert.Equal(t, first.Results, replay.Results)
	assert.Equal(t, dayAfter, s.Day, "replay never moves the clock")
	assert.Equal(t, winsAfter, wins(), "replay never re-scores a series")
}

func TestCheckpointRestoreRollsBack(t *testing.T) {
	s, rng, cfg := newTestState(15)
	d := NewDriver(cfg, testLogger(), s, nil, rng)

	prevState, prevArchive, err := d.Checkpoint()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := d.AdvanceDay(0)
		require.NoError(t, err)
	}
	require.Equal(t, 4, d.State.Day)

	d.Restore(prevState, prevArchive)

	assert.Equal(t, 1, d.State.Day)
	assert.Zero(t, d.State.LastSimmedDay)
	for _, tm := range d.State.Teams {
		assert.Zero(t, tm.Record.GamesPlayed(), tm.Name)
	}
}

func TestAdvanceDayZeroAlwaysSims(t *testing.T) {
	s, rng, cfg := newTestState(9)
	d := NewDriver(cfg, testLogger(), s, nil, rng)

	_, err := d.AdvanceDay(0)
	require.NoError(t, err)
	_, err = d.AdvanceDay(0)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Day)
}

func TestFullSeasonReachesNextSeason(t *testing.T) {
	s, rng, cfg := newTestState(10)
	d := NewDriver(cfg, testLogger(), s, nil, rng)

	for i := 0; i < 400 && s.Phase == models.PhaseRegular; i++ {
		_, err := d.AdvanceDay(0)
		require.NoError(t, err)
	}
	require.Equal(t, models.PhasePlayoffs, s.Phase, "regular season should finish")
	require.NotNil(t, s.Bracket)

	for i := 0; i < 200 && s.Phase == models.PhasePlayoffs; i++ {
		_, err := d.AdvanceDay(0)
		require.NoError(t, err)
	}
	require.Equal(t, models.PhaseOffseason, s.Phase, "playoffs should crown a champion")
	assert.NotEmpty(t, s.Bracket.ChampionID)

	out, err := d.AdvanceDay(0)
	require.NoError(t, err)

	assert.Equal(t, models.PhaseRegular, out.Phase)
	assert.Equal(t, 2, s.Season)
	assert.Equal(t, 1, s.Day)
	assert.Nil(t, s.Bracket)
	require.Len(t, d.Archive.Seasons, 1)

	summary := d.Archive.Seasons[0]
	assert.Equal(t, 1, summary.Season)
	assert.NotEmpty(t, summary.ChampionID)
	assert.NotEmpty(t, summary.Awards)

	for _, tm := range s.Teams {
		assert.Zero(t, tm.Record.GamesPlayed(), tm.Name)
		assert.False(t, tm.ClinchedPlayoffs, tm.Name)
		assert.False(t, tm.Eliminated, tm.Name)
		assert.GreaterOrEqual(t, len(tm.Roster), 18, tm.Name)
	}
}

func TestUpdateClinchesEndOfSeason(t *testing.T) {
	s, _, _ := newTestState(11)
	seedRecords(s)
	// Mark every game played so no points remain on the table.
	for _, g := range s.Schedule {
		g.Played = true
	}

	s.UpdateClinches()

	for _, conf := range s.Conferences() {
		rows := s.ConferenceStandings(conf)
		require.GreaterOrEqual(t, len(rows), 9)
		for i, row := range rows {
			tm := s.Team(row.TeamID)
			if i < 8 {
				assert.True(t, tm.ClinchedPlayoffs, "%s sits %d in %s", tm.Name, i+1, conf)
				assert.False(t, tm.Eliminated, tm.Name)
			} else {
				assert.True(t, tm.Eliminated, "%s sits %d in %s", tm.Name, i+1, conf)
				assert.False(t, tm.ClinchedPlayoffs, tm.Name)
			}
		}
	}
}

func TestUpdateClinchesMarksTitles(t *testing.T) {
	s, _, _ := newTestState(16)
	seedRecords(s)
	for _, g := range s.Schedule {
		g.Played = true
	}

	s.UpdateClinches()

	presidents := 0
	for _, tm := range s.Teams {
		if tm.ClinchedPresidents {
			presidents++
			assert.True(t, tm.ClinchedPlayoffs, tm.Name)
		}
	}
	assert.Equal(t, 1, presidents, "one club owns the best overall record")

	for _, conf := range s.Conferences() {
		confWinners := 0
		for _, tm := range s.TeamsInConference(conf) {
			if tm.ClinchedConference {
				confWinners++
			}
		}
		assert.Equal(t, 1, confWinners, conf)

		for _, div := range s.DivisionsInConference(conf) {
			teams := s.TeamsInDivision(div)
			var leader *models.Team
			divWinners := 0
			for _, tm := range teams {
				if tm.ClinchedDivision {
					divWinners++
				}
				if leader == nil || tm.Record.Points() > leader.Record.Points() {
					leader = tm
				}
			}
			require.Equal(t, 1, divWinners, div)
			assert.True(t, leader.ClinchedDivision, "%s lead %s", leader.Name, div)
		}
	}
}

func TestStandingsFromGamesRebuildsTable(t *testing.T) {
	s, rng, cfg := newTestState(17)
	d := NewDriver(cfg, testLogger(), s, nil, rng)

	var games []models.Game
	for day := 1; day <= 5; day++ {
		out, err := d.AdvanceDay(day)
		require.NoError(t, err)
		for _, res := range out.Results {
			games = append(games, models.Game{
				ID:         res.GameID,
				Season:     res.Season,
				Day:        res.Day,
				HomeTeamID: res.HomeTeamID,
				AwayTeamID: res.AwayTeamID,
				HomeGoals:  res.HomeGoals,
				AwayGoals:  res.AwayGoals,
				Overtime:   res.Overtime,
				Playoff:    res.Playoff,
			})
		}
	}

	rebuilt := StandingsFromGames(s.Teams, games)
	live := s.Standings()
	require.Len(t, rebuilt, len(live))
	for i := range live {
		assert.Equal(t, live[i].TeamID, rebuilt[i].TeamID, "row %d", i)
		assert.Equal(t, live[i].Points, rebuilt[i].Points)
		assert.Equal(t, live[i].RegulationWins, rebuilt[i].RegulationWins)
		assert.Equal(t, live[i].GoalDiff, rebuilt[i].GoalDiff)
	}

	// A shorter horizon rebuilds an earlier table.
	asOfOne := StandingsFromGames(s.Teams, games[:0])
	for _, row := range asOfOne {
		assert.Zero(t, row.GamesPlayed)
	}
}

func TestWildCardStandingsSplitsTheRace(t *testing.T) {
	s, _, _ := newTestState(18)
	seedRecords(s)

	conf := s.Conferences()[0]
	race := s.WildCardStandings(conf)

	assert.Equal(t, conf, race.Conference)
	assert.Equal(t, 2, race.WildCardSpots)
	require.Len(t, race.Divisions, 2)

	qualified := make(map[string]bool)
	for div, rows := range race.Divisions {
		require.Len(t, rows, 3, div)
		for _, r := range rows {
			qualified[r.TeamID] = true
		}
	}
	require.Len(t, race.WildCards, 6, "the rest of the conference chases the wild cards")
	for i, r := range race.WildCards {
		assert.False(t, qualified[r.TeamID], "division qualifiers stay out of the race")
		if i > 0 {
			assert.GreaterOrEqual(t, race.WildCards[i-1].Points, r.Points)
		}
	}
}

func TestLeadersRequireActivity(t *testing.T) {
	s, _, _ := newTestState(12)
	top := s.Teams[0].Roster[0]
	top.Stats.Goals = 30
	top.Stats.Assists = 40
	top.Stats.GamesPlayed = 40

	points := s.PointLeaders(5)
	require.NotEmpty(t, points)
	assert.Equal(t, top.ID, points[0].PlayerID)
	assert.Equal(t, 70.0, points[0].Value)

	// No goalie has faced five games yet.
	assert.Empty(t, s.GoalieLeaders(5))
}

func TestSweepInboxDropsExpired(t *testing.T) {
	s, _, _ := newTestState(13)
	s.Day = 10
	s.Inbox = []*models.InboxEvent{
		{ID: "a", Type: models.InboxLeagueNews, ExpiryDay: 5},
		{ID: "b", Type: models.InboxLeagueNews, ExpiryDay: 15},
		{ID: "c", Type: models.InboxTradeOffer, ExpiryDay: 5, Resolved: true},
	}

	swept := s.SweepInbox()

	assert.Equal(t, 1, swept)
	require.Len(t, s.Inbox, 2)
	assert.Equal(t, "b", s.Inbox[0].ID)
}
