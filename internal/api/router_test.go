package api

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/hockey-gm/internal/api/handlers"
	"github.com/jstittsworth/hockey-gm/internal/league"
	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/internal/services"
	"github.com/jstittsworth/hockey-gm/internal/store"
	"github.com/jstittsworth/hockey-gm/pkg/config"
	"github.com/jstittsworth/hockey-gm/pkg/utils"
)

func newTestServer(t *testing.T) (*gin.Engine, *handlers.Deps) {
	t.Helper()
	return newTestServerIn(t, t.TempDir())
}

func newTestServerIn(t *testing.T, dir string) (*gin.Engine, *handlers.Deps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	cfg := config.Default()

	snaps, err := store.NewSnapshots(dir, log)
	require.NoError(t, err)
	gameLog, err := store.OpenGameLog(dir, log)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	state := league.NewState(cfg, rng)
	driver := league.NewDriver(cfg, log, state, nil, rng)

	deps := &handlers.Deps{
		Cfg:     cfg,
		Log:     log,
		Mu:      &sync.RWMutex{},
		Driver:  driver,
		Snaps:   snaps,
		GameLog: gameLog,
		Hub:     services.NewHub(log),
	}

	router := gin.New()
	SetupRoutes(router.Group("/api/v1"), deps)
	return router, deps
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, utils.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestGetMeta(t *testing.T) {
	router, deps := newTestServer(t)

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/meta", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	meta := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), meta["season"])
	assert.Equal(t, float64(1), meta["day"])
	assert.Equal(t, "regular", meta["phase"])
	assert.Equal(t, float64(24), meta["team_count"])

	user := meta["user_team"].(map[string]interface{})
	assert.Equal(t, deps.Driver.State.UserTeamID, user["id"])
}

func TestStandingsFilters(t *testing.T) {
	router, _ := newTestServer(t)

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/standings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data.([]interface{}), 24)

	w, resp = doJSON(t, router, http.MethodGet, "/api/v1/standings?conference=Eastern", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data.([]interface{}), 12)

	w, resp = doJSON(t, router, http.MethodGet, "/api/v1/standings?division=North", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data.([]interface{}), 6)

	w, resp = doJSON(t, router, http.MethodGet, "/api/v1/standings?division=Atlantis", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
}

func TestAdvanceIsIdempotentPerDay(t *testing.T) {
	router, deps := newTestServer(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/advance", gin.H{"day": 1})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	first := resp.Data.(map[string]interface{})
	assert.Equal(t, false, first["replayed"])
	assert.NotEmpty(t, first["results"])

	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/advance", gin.H{"day": 1})
	require.Equal(t, http.StatusOK, w.Code)
	replay := resp.Data.(map[string]interface{})
	assert.Equal(t, true, replay["replayed"])

	assert.Equal(t, 2, deps.Driver.State.Day, "the clock moved once")

	// The day's games landed in the archive exactly once.
	games, err := deps.GameLog.GamesFor(1, "", 200)
	require.NoError(t, err)
	assert.Len(t, games, len(first["results"].([]interface{})))
}

func TestAdvanceLeavesStateUntouchedWhenSaveFails(t *testing.T) {
	dir := t.TempDir()
	router, deps := newTestServerIn(t, dir)

	// Pull the save directory out from under the server.
	require.NoError(t, os.RemoveAll(dir))

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/advance", gin.H{"day": 1})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, resp.Success)

	assert.Equal(t, 1, deps.Driver.State.Day, "a day that could not be saved never happened")
	assert.Zero(t, deps.Driver.State.LastSimmedDay)
	for _, tm := range deps.Driver.State.Teams {
		assert.Zero(t, tm.Record.GamesPlayed(), tm.Name)
	}
}

func TestHomePanelShape(t *testing.T) {
	router, deps := newTestServer(t)

	_, resp := doJSON(t, router, http.MethodPost, "/api/v1/advance", gin.H{"day": 1})
	require.True(t, resp.Success)

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/home", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	panel := resp.Data.(map[string]interface{})
	team := panel["team"].(map[string]interface{})
	assert.Equal(t, deps.Driver.State.UserTeamID, team["id"])
	assert.Contains(t, panel, "record")
	assert.Contains(t, panel, "streak")
	assert.Contains(t, panel, "last_10")
	assert.Contains(t, panel, "conference_rank")
	assert.Contains(t, panel, "coach")
	assert.Contains(t, panel, "fan_sentiment")
	assert.Contains(t, panel, "inbox_count")
	assert.Contains(t, panel, "latest_game", "the user played on day one")
}

func TestStandingsHistoricalAndWildcardViews(t *testing.T) {
	router, _ := newTestServer(t)

	for day := 1; day <= 2; day++ {
		_, resp := doJSON(t, router, http.MethodPost, "/api/v1/advance", gin.H{"day": day})
		require.True(t, resp.Success)
	}

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/standings?day=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	rows := data["rows"].([]interface{})
	require.Len(t, rows, 24)
	gamesPlayed := 0.0
	for _, raw := range rows {
		gamesPlayed += raw.(map[string]interface{})["gp"].(float64)
	}
	assert.Equal(t, 24.0, gamesPlayed, "the day-one table ignores day two")

	w, resp = doJSON(t, router, http.MethodGet, "/api/v1/standings?view=wildcard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	races := resp.Data.(map[string]interface{})
	require.Len(t, races, 2)
	for conf, raw := range races {
		race := raw.(map[string]interface{})
		assert.Equal(t, 2.0, race["wild_card_spots"], conf)
		assert.Len(t, race["divisions"].(map[string]interface{}), 2, conf)
		assert.Len(t, race["wild_cards"].([]interface{}), 6, conf)
	}

	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/standings?day=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProposeRejectsWhenOwnSideLoses(t *testing.T) {
	router, deps := newTestServer(t)

	s := deps.Driver.State
	user := s.UserTeam()
	var star *models.Player
	for _, p := range user.Roster {
		if !p.IsGoalie() {
			star = p
			break
		}
	}
	require.NotNil(t, star)
	star.Ratings = models.Ratings{
		Shooting: 5.0, Playmaking: 5.0, Defense: 5.0,
		Physical: 5.0, Durability: 5.0, Goaltending: 0.3,
	}

	var rival *models.Team
	for _, tm := range s.Teams {
		if tm.ID != user.ID {
			rival = tm
			break
		}
	}
	var scrub *models.Player
	for _, p := range rival.Roster {
		if !p.IsGoalie() {
			scrub = p
			break
		}
	}
	require.NotNil(t, scrub)
	scrub.Ratings = models.Ratings{
		Shooting: 0.3, Playmaking: 0.3, Defense: 0.3,
		Physical: 0.3, Durability: 0.3, Goaltending: 0.3,
	}

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/trades/propose", gin.H{
		"to_team_id":           rival.ID,
		"offered_player_ids":   []string{star.ID},
		"requested_player_ids": []string{scrub.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, false, data["accepted"], "a giveaway dies at the user's own desk")
	require.Contains(t, data, "user_evaluation")
	userEval := data["user_evaluation"].(map[string]interface{})
	assert.Equal(t, "reject", userEval["verdict"])

	assert.NotNil(t, user.FindPlayer(star.ID), "nothing moved")
	assert.NotNil(t, rival.FindPlayer(scrub.ID))
}

func TestInboxOfferStaysOpenWhenTradeFails(t *testing.T) {
	router, deps := newTestServer(t)

	s := deps.Driver.State
	user := s.UserTeam()
	var rival *models.Team
	for _, tm := range s.Teams {
		if tm.ID != user.ID {
			rival = tm
			break
		}
	}

	event := &models.InboxEvent{
		ID:        "ev-1",
		Type:      models.InboxTradeOffer,
		Season:    s.Season,
		Day:       s.Day,
		ExpiryDay: s.Day + 3,
		Title:     "Trade offer",
		Offer: &models.TradeOffer{
			ID:            "off-1",
			FromTeamID:    rival.ID,
			ToTeamID:      user.ID,
			FromPlayerIDs: []string{"long-gone"},
			ToPlayerIDs:   []string{user.Roster[0].ID},
		},
	}
	s.Inbox = append(s.Inbox, event)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/my/inbox/resolve", gin.H{
		"event_id": "ev-1",
		"accept":   true,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, resp.Success)
	assert.False(t, event.Resolved, "a failed trade leaves the offer open")

	// Declining still closes it.
	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/my/inbox/resolve", gin.H{
		"event_id": "ev-1",
		"accept":   false,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
	assert.True(t, event.Resolved)
}

func TestSelectTeamValidation(t *testing.T) {
	router, deps := newTestServer(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/my/team", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/my/team", gin.H{"team_id": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	target := deps.Driver.State.Teams[3].ID
	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/my/team", gin.H{"team_id": target})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
	assert.Equal(t, target, deps.Driver.State.UserTeamID)
}

func TestSetStrategy(t *testing.T) {
	router, deps := newTestServer(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/my/strategy", gin.H{"strategy": "reckless"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/my/strategy", gin.H{"strategy": "aggressive"})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
	assert.Equal(t, "aggressive", string(deps.Driver.State.UserTeam().Strategy))
}

func TestCallUpComplianceMapsToStatus(t *testing.T) {
	router, deps := newTestServer(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/my/call-up", gin.H{"player_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, utils.ErrCodeNotFound, resp.Error.Code)

	// Default rosters are full, so a real minor leaguer bounces off the
	// headcount limit.
	minor := deps.Driver.State.UserTeam().Minors[0]
	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/my/call-up", gin.H{"player_id": minor.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, utils.ErrCodeConflict, resp.Error.Code)
}

func TestTradeEvaluateRejectsBadBody(t *testing.T) {
	router, _ := newTestServer(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/trades/evaluate", gin.H{"to_team_id": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetBuildsAFreshLeague(t *testing.T) {
	router, deps := newTestServer(t)

	_, resp := doJSON(t, router, http.MethodPost, "/api/v1/advance", gin.H{"day": 1})
	require.True(t, resp.Success)
	require.Equal(t, 2, deps.Driver.State.Day)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	assert.Equal(t, 1, deps.Driver.State.Day)
	assert.Equal(t, 1, deps.Driver.State.Season)
	assert.Empty(t, deps.Driver.Archive.Seasons)

	games, err := deps.GameLog.GamesFor(1, "", 200)
	require.NoError(t, err)
	assert.Empty(t, games, "archive wiped with the franchise")
}

func TestFreeAgentsListed(t *testing.T) {
	router, _ := newTestServer(t)

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/free-agents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data.([]interface{}), 18)
}

func TestHealthEndpointShape(t *testing.T) {
	_, deps := newTestServer(t)

	router := gin.New()
	router.GET("/health", handlers.NewControlHandler(deps).Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, float64(1), data["season"])
	assert.Equal(t, float64(0), data["feeds"])
}
