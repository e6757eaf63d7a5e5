package handlers

import (
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/hockey-gm/internal/league"
	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/pkg/utils"
)

// LeagueHandler serves read-only league views.
type LeagueHandler struct {
	*Deps
}

func NewLeagueHandler(deps *Deps) *LeagueHandler {
	return &LeagueHandler{Deps: deps}
}

// GetMeta returns the franchise clock and identity block the dashboard
// polls on every page.
func (h *LeagueHandler) GetMeta(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	s := h.state()
	user := s.UserTeam()
	meta := gin.H{
		"season":          s.Season,
		"day":             s.Day,
		"phase":           s.Phase,
		"last_simmed_day": s.LastSimmedDay,
		"team_count":      len(s.Teams),
		"remaining_games": s.RemainingRegularGames(),
		"strategy":        s.Strategy,
	}
	if user != nil {
		meta["user_team"] = gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"logo":  user.Logo,
			"color": user.Color,
		}
	}
	utils.SendSuccess(c, meta)
}

// GetStandings returns league, conference or division tables. The
// wildcard view splits each conference into division podiums and the
// wild card race, and a day parameter rebuilds the table as it stood
// after that day from the game archive.
func (h *LeagueHandler) GetStandings(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	s := h.state()
	if dayParam := c.Query("day"); dayParam != "" {
		day, err := strconv.Atoi(dayParam)
		if err != nil || day < 1 {
			utils.SendValidationError(c, "day must be a positive integer", "")
			return
		}
		games, err := h.GameLog.RegularSeasonThrough(s.Season, day)
		if err != nil {
			utils.SendInternalError(c, "Could not load the game archive")
			return
		}
		utils.SendSuccess(c, gin.H{
			"day":  day,
			"rows": league.StandingsFromGames(s.Teams, games),
		})
		return
	}
	if c.Query("view") == "wildcard" {
		if conference := c.Query("conference"); conference != "" {
			race := s.WildCardStandings(conference)
			if len(race.Divisions) == 0 {
				utils.SendNotFound(c, "Unknown conference")
				return
			}
			utils.SendSuccess(c, race)
			return
		}
		races := make(map[string]league.WildCardRace)
		for _, conf := range s.Conferences() {
			races[conf] = s.WildCardStandings(conf)
		}
		utils.SendSuccess(c, races)
		return
	}
	if division := c.Query("division"); division != "" {
		rows := s.DivisionStandings(division)
		if len(rows) == 0 {
			utils.SendNotFound(c, "Unknown division")
			return
		}
		utils.SendSuccess(c, rows)
		return
	}
	if conference := c.Query("conference"); conference != "" {
		rows := s.ConferenceStandings(conference)
		if len(rows) == 0 {
			utils.SendNotFound(c, "Unknown conference")
			return
		}
		utils.SendSuccess(c, rows)
		return
	}
	utils.SendSuccess(c, s.Standings())
}

// GetHome returns the front-page panel for the user's club: record,
// coach, mood, the latest and next game, and the recent wire.
func (h *LeagueHandler) GetHome(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	s := h.state()
	user := s.UserTeam()
	if user == nil {
		utils.SendNotFound(c, "No team selected")
		return
	}

	rank := 0
	for i, r := range s.ConferenceStandings(user.Conference) {
		if r.TeamID == user.ID {
			rank = i + 1
			break
		}
	}

	panel := gin.H{
		"season":          s.Season,
		"day":             s.Day,
		"phase":           s.Phase,
		"team":            gin.H{"id": user.ID, "name": user.Name, "logo": user.Logo, "color": user.Color},
		"record":          user.Record,
		"points":          user.Record.Points(),
		"streak":          user.Record.Streak(),
		"last_10":         user.Record.Last10(),
		"conference_rank": rank,
		"coach":           user.Coach,
		"strategy":        user.Strategy,
		"fan_sentiment":   user.FanSentiment,
		"inbox_count":     len(s.UnresolvedInbox()),
	}

	for _, res := range s.LastResults {
		if res.HomeTeamID == user.ID || res.AwayTeamID == user.ID {
			panel["latest_game"] = res
			break
		}
	}
	for _, g := range s.Schedule {
		if g.Played || g.Day < s.Day {
			continue
		}
		if g.HomeTeamID == user.ID || g.AwayTeamID == user.ID {
			panel["next_game"] = g
			break
		}
	}
	if news, err := h.GameLog.TransactionsFor(s.Season, user.ID, 5); err == nil {
		panel["news"] = news
	}

	utils.SendSuccess(c, panel)
}

// GetLeaders returns skater and goalie leaderboards together.
func (h *LeagueHandler) GetLeaders(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	s := h.state()
	utils.SendSuccess(c, gin.H{
		"points":  s.PointLeaders(20),
		"goals":   s.GoalLeaders(20),
		"goalies": s.GoalieLeaders(10),
	})
}

// GetTeams lists every club with its record.
func (h *LeagueHandler) GetTeams(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	type teamRow struct {
		ID           string            `json:"id"`
		Name         string            `json:"name"`
		Logo         string            `json:"logo"`
		Color        string            `json:"color"`
		Division     string            `json:"division"`
		Conference   string            `json:"conference"`
		Record       models.TeamRecord `json:"record"`
		Points       int               `json:"points"`
		FanSentiment float64           `json:"fan_sentiment"`
	}
	s := h.state()
	rows := make([]teamRow, 0, len(s.Teams))
	for _, t := range s.Teams {
		rows = append(rows, teamRow{
			ID: t.ID, Name: t.Name, Logo: t.Logo, Color: t.Color,
			Division: t.Division, Conference: t.Conference,
			Record: t.Record, Points: t.Record.Points(),
			FanSentiment: t.FanSentiment,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Points > rows[j].Points })
	utils.SendSuccess(c, rows)
}

// GetTeam returns one club's full page: rosters, lines, coach, cap.
func (h *LeagueHandler) GetTeam(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	t := h.state().Team(c.Param("id"))
	if t == nil {
		utils.SendNotFound(c, "Team not found")
		return
	}
	utils.SendSuccess(c, gin.H{
		"team":      t,
		"cap_used":  t.CapUsed(),
		"cap_limit": h.Cfg.SalaryCap,
	})
}

// GetPlayer returns a player with their career rows.
func (h *LeagueHandler) GetPlayer(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	p, t := h.state().PlayerTeam(c.Param("id"))
	if p == nil {
		// Retired players still have careers worth showing.
		for _, r := range h.Driver.Archive.Careers {
			if r.ID == c.Param("id") {
				utils.SendSuccess(c, gin.H{"player": r, "retired": true})
				return
			}
		}
		utils.SendNotFound(c, "Player not found")
		return
	}
	utils.SendSuccess(c, gin.H{
		"player":    p,
		"team":      gin.H{"id": t.ID, "name": t.Name, "logo": t.Logo},
		"on_roster": t.OnActiveRoster(p.ID),
	})
}

// GetDayBoard returns the latest simulated slate.
func (h *LeagueHandler) GetDayBoard(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	s := h.state()
	utils.SendSuccess(c, gin.H{
		"day":     s.LastSimmedDay,
		"phase":   s.Phase,
		"results": s.LastResults,
	})
}

// GetSchedule returns upcoming games, optionally for one team.
func (h *LeagueHandler) GetSchedule(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	s := h.state()
	teamID := c.Query("team")
	var out []*models.ScheduledGame
	for _, g := range s.Schedule {
		if g.Played || g.Day < s.Day {
			continue
		}
		if teamID != "" && g.HomeTeamID != teamID && g.AwayTeamID != teamID {
			continue
		}
		out = append(out, g)
		if len(out) >= 40 {
			break
		}
	}
	utils.SendSuccess(c, out)
}

// GetPlayoffs returns the bracket, or the current seeding picture
// during the regular season.
func (h *LeagueHandler) GetPlayoffs(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	s := h.state()
	if s.Bracket != nil {
		labels := make(map[string]string, len(s.Bracket.Series))
		for _, sr := range s.Bracket.Series {
			labels[sr.ID] = league.SeriesLabel(sr)
		}
		utils.SendSuccess(c, gin.H{"bracket": s.Bracket, "labels": labels})
		return
	}

	picture := make(map[string][]models.StandingsRow)
	for _, conf := range s.Conferences() {
		picture[conf] = s.ConferenceStandings(conf)
	}
	utils.SendSuccess(c, gin.H{"seeding": picture})
}

// GetFranchiseHistory returns archived seasons and the hall of fame.
func (h *LeagueHandler) GetFranchiseHistory(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	utils.SendSuccess(c, gin.H{
		"seasons":      h.Driver.Archive.Seasons,
		"hall_of_fame": h.Driver.Archive.HallOfFame,
	})
}

// GetHallOfFame returns the enshrined players alone.
func (h *LeagueHandler) GetHallOfFame(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()
	utils.SendSuccess(c, h.Driver.Archive.HallOfFame)
}

// GetFreeAgents lists the open market.
func (h *LeagueHandler) GetFreeAgents(c *gin.Context) {
	h.Mu.RLock()
	defer h.Mu.RUnlock()
	utils.SendSuccess(c, h.state().FreeAgents)
}
