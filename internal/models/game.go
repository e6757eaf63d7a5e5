package models

import (
	"time"

	"gorm.io/datatypes"
)

// GoalEvent is one goal inside a simulated game.
type GoalEvent struct {
	Period    int    `json:"period"`
	TeamID    string `json:"team_id"`
	ScorerID  string `json:"scorer_id"`
	Scorer    string `json:"scorer"`
	AssistID  string `json:"assist_id,omitempty"`
	Assist    string `json:"assist,omitempty"`
	PowerPlay bool   `json:"power_play"`
}

type StarLine struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	Line     string `json:"line"`
}

type InjuryEvent struct {
	PlayerID   string       `json:"player_id"`
	Name       string       `json:"name"`
	TeamID     string       `json:"team_id"`
	Status     InjuryStatus `json:"status"`
	GamesOut   int          `json:"games_out"`
	Narrative  string       `json:"narrative"`
}

// GameResult is the in-memory outcome of one simulated game. It feeds
// the day board and websocket feed directly and is flattened into a
// Game row for the archive.
type GameResult struct {
	GameID     string        `json:"game_id"`
	Season     int           `json:"season"`
	Day        int           `json:"day"`
	HomeTeamID string        `json:"home_team_id"`
	AwayTeamID string        `json:"away_team_id"`
	HomeTeam   string        `json:"home_team"`
	AwayTeam   string        `json:"away_team"`
	HomeGoals  int           `json:"home_goals"`
	AwayGoals  int           `json:"away_goals"`
	Overtime   bool          `json:"overtime"`
	Playoff    bool          `json:"playoff"`
	SeriesID   string        `json:"series_id,omitempty"`
	Periods    []int         `json:"periods"` // home,away per period, interleaved
	Goals      []GoalEvent   `json:"goals"`
	ThreeStars []StarLine    `json:"three_stars"`
	Injuries   []InjuryEvent `json:"injuries"`
	Attendance int           `json:"attendance"`
	HomeShots  int           `json:"home_shots"`
	AwayShots  int           `json:"away_shots"`
	Narrative  string        `json:"narrative"`
}

func (g *GameResult) WinnerID() string {
	if g.HomeGoals > g.AwayGoals {
		return g.HomeTeamID
	}
	return g.AwayTeamID
}

// Game is the persisted archive row for one completed game.
type Game struct {
	ID         string         `gorm:"primaryKey" json:"id"`
	Season     int            `gorm:"index:idx_games_season_day" json:"season"`
	Day        int            `gorm:"index:idx_games_season_day" json:"day"`
	HomeTeamID string         `gorm:"index" json:"home_team_id"`
	AwayTeamID string         `gorm:"index" json:"away_team_id"`
	HomeGoals  int            `json:"home_goals"`
	AwayGoals  int            `json:"away_goals"`
	Overtime   bool           `json:"overtime"`
	Playoff    bool           `json:"playoff"`
	SeriesID   string         `json:"series_id"`
	Detail     datatypes.JSON `json:"detail"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (Game) TableName() string {
	return "games"
}
