package store

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/hockey-gm/internal/league"
	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/pkg/config"
	"github.com/jstittsworth/hockey-gm/pkg/utils"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func freshLeague(t *testing.T) (*league.State, *league.Archive) {
	t.Helper()
	state := league.NewState(config.Default(), rand.New(rand.NewSource(1)))
	archive := &league.Archive{
		Seasons: []models.SeasonSummary{{Season: 1, Champion: "Testers"}},
		HallOfFame: []models.HallOfFamer{
			{PlayerID: "hof-1", Name: "Old Great", Position: models.PositionCenter},
		},
	}
	return state, archive
}

func TestSnapshotsRoundTrip(t *testing.T) {
	snaps, err := NewSnapshots(t.TempDir(), testLogger())
	require.NoError(t, err)

	state, archive := freshLeague(t)
	state.Day = 14
	state.LastSimmedDay = 13

	require.NoError(t, snaps.SaveAll(state, archive))

	loaded, loadedArchive, found, err := snaps.LoadAll()
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, state.Season, loaded.Season)
	assert.Equal(t, 14, loaded.Day)
	assert.Equal(t, 13, loaded.LastSimmedDay)
	assert.Equal(t, state.UserTeamID, loaded.UserTeamID)
	assert.Len(t, loaded.Teams, len(state.Teams))
	assert.Len(t, loaded.Schedule, len(state.Schedule))

	require.Len(t, loadedArchive.Seasons, 1)
	assert.Equal(t, "Testers", loadedArchive.Seasons[0].Champion)
	require.Len(t, loadedArchive.HallOfFame, 1)
	assert.Equal(t, "Old Great", loadedArchive.HallOfFame[0].Name)
}

func TestSnapshotsMissingSaveIsNotAnError(t *testing.T) {
	snaps, err := NewSnapshots(t.TempDir(), testLogger())
	require.NoError(t, err)

	state, archive, found, err := snaps.LoadAll()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, state)
	assert.Nil(t, archive)
}

func TestSnapshotsRotateBackupAndFallBack(t *testing.T) {
	dir := t.TempDir()
	snaps, err := NewSnapshots(dir, testLogger())
	require.NoError(t, err)

	state, archive := freshLeague(t)
	require.NoError(t, snaps.SaveAll(state, archive))
	state.Day = 9
	require.NoError(t, snaps.SaveAll(state, archive))

	main := filepath.Join(dir, FileLeagueState)
	assert.FileExists(t, main)
	assert.FileExists(t, main+".bak")

	// Trash the main file; the backup carries the previous day.
	require.NoError(t, os.WriteFile(main, []byte("not json"), 0o644))

	loaded, _, found, err := snaps.LoadAll()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, loaded.Day)
}

func TestSnapshotsCorruptedSaveSurfaces(t *testing.T) {
	dir := t.TempDir()
	snaps, err := NewSnapshots(dir, testLogger())
	require.NoError(t, err)

	state, archive := freshLeague(t)
	require.NoError(t, snaps.SaveAll(state, archive))
	require.NoError(t, snaps.SaveAll(state, archive))

	main := filepath.Join(dir, FileLeagueState)
	require.NoError(t, os.WriteFile(main, []byte("not json"), 0o644))
	require.NoError(t, os.WriteFile(main+".bak", []byte("also not json"), 0o644))

	_, _, _, err = snaps.LoadAll()
	require.Error(t, err)
	appErr, ok := err.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrCodeCorruptedSave, appErr.Code)
}

func TestSnapshotsRefuseNewerSaves(t *testing.T) {
	dir := t.TempDir()
	snaps, err := NewSnapshots(dir, testLogger())
	require.NoError(t, err)

	env := envelope{SaveVersion: SaveVersion + 1, SavedAt: time.Now(), Data: []byte(`{}`)}
	blob, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileLeagueState), blob, 0o644))

	_, _, _, err = snaps.LoadAll()
	require.Error(t, err)
}

func TestMigrationChainFromV1(t *testing.T) {
	dir := t.TempDir()
	snaps, err := NewSnapshots(dir, testLogger())
	require.NoError(t, err)

	doc := `{"season":2,"day":7,"simmed_through":6,"teams":[{"id":"t1","name":"Olds"}]}`
	env := envelope{SaveVersion: 1, SavedAt: time.Now(), Data: []byte(doc)}
	blob, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileLeagueState), blob, 0o644))

	var state league.State
	found, err := snaps.read(FileLeagueState, &state)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, 6, state.LastSimmedDay, "watermark rename applied")
	require.Len(t, state.Teams, 1)
	assert.Equal(t, 50.0, state.Teams[0].FanSentiment, "neutral sentiment seeded")
}

func TestSnapshotsReset(t *testing.T) {
	dir := t.TempDir()
	snaps, err := NewSnapshots(dir, testLogger())
	require.NoError(t, err)

	state, archive := freshLeague(t)
	require.NoError(t, snaps.SaveAll(state, archive))
	require.NoError(t, snaps.Reset())

	_, _, found, err := snaps.LoadAll()
	require.NoError(t, err)
	assert.False(t, found)
}

func openTestGameLog(t *testing.T) *GameLog {
	t.Helper()
	gl, err := OpenGameLog(t.TempDir(), testLogger())
	require.NoError(t, err)
	return gl
}

func TestGameLogRecordAndQuery(t *testing.T) {
	gl := openTestGameLog(t)

	results := []*models.GameResult{
		{
			GameID: "g1", Season: 1, Day: 3,
			HomeTeamID: "a", AwayTeamID: "b",
			HomeGoals: 4, AwayGoals: 2,
		},
		{
			GameID: "g2", Season: 1, Day: 4,
			HomeTeamID: "c", AwayTeamID: "a",
			HomeGoals: 1, AwayGoals: 2, Overtime: true,
		},
		{
			GameID: "g3", Season: 2, Day: 1,
			HomeTeamID: "a", AwayTeamID: "b",
			HomeGoals: 5, AwayGoals: 0,
		},
	}
	require.NoError(t, gl.RecordResults(results))

	games, err := gl.GamesFor(1, "a", 0)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "g2", games[0].ID, "newest first")
	assert.True(t, games[0].Overtime)

	games, err = gl.GamesFor(1, "c", 0)
	require.NoError(t, err)
	require.Len(t, games, 1)

	games, err = gl.GamesFor(2, "", 0)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "g3", games[0].ID)

	// The full result survives in the detail column.
	var detail models.GameResult
	require.NoError(t, json.Unmarshal(games[0].Detail, &detail))
	assert.Equal(t, 5, detail.HomeGoals)
}

func TestGameLogSeriesGamesInOrder(t *testing.T) {
	gl := openTestGameLog(t)

	require.NoError(t, gl.RecordResults([]*models.GameResult{
		{GameID: "p2", Season: 1, Day: 95, HomeTeamID: "b", AwayTeamID: "a", Playoff: true, SeriesID: "s1"},
		{GameID: "p1", Season: 1, Day: 93, HomeTeamID: "a", AwayTeamID: "b", Playoff: true, SeriesID: "s1"},
		{GameID: "x1", Season: 1, Day: 94, HomeTeamID: "c", AwayTeamID: "d", Playoff: true, SeriesID: "s2"},
	}))

	games, err := gl.SeriesGames("s1")
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "p1", games[0].ID)
	assert.Equal(t, "p2", games[1].ID)
}

func TestGameLogTransactionsAndWipe(t *testing.T) {
	gl := openTestGameLog(t)

	txs := []*models.Transaction{
		{ID: "tx1", Season: 1, Day: 2, Type: models.TxInjury, TeamID: "a", PlayerID: "p1", Summary: "hurt", CreatedAt: time.Now()},
		{ID: "tx2", Season: 1, Day: 3, Type: models.TxCallUp, TeamID: "b", PlayerID: "p2", Summary: "up", CreatedAt: time.Now()},
	}
	require.NoError(t, gl.RecordTransactions(txs))

	rows, err := gl.TransactionsFor(1, "", 0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = gl.TransactionsFor(1, "a", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.TxInjury, rows[0].Type)

	require.NoError(t, gl.Wipe())
	rows, err = gl.TransactionsFor(1, "", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
