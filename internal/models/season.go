package models

type Phase string

const (
	PhaseRegular   Phase = "regular"
	PhasePlayoffs  Phase = "playoffs"
	PhaseOffseason Phase = "offseason"
)

// ScheduledGame is one unplayed slot on the calendar.
type ScheduledGame struct {
	ID         string `json:"id"`
	Day        int    `json:"day"`
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	Played     bool   `json:"played"`
}

// AwardRow names a season award winner.
type AwardRow struct {
	Award    string `json:"award"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	Note     string `json:"note"`
}

// LeaderRow is one line of a stat leaderboard.
type LeaderRow struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Team     string  `json:"team"`
	Position string  `json:"position"`
	Value    float64 `json:"value"`
}

// SeasonSummary is the archived record of one completed season.
type SeasonSummary struct {
	Season         int            `json:"season"`
	ChampionID     string         `json:"champion_id"`
	Champion       string         `json:"champion"`
	PresidentsID   string         `json:"presidents_id"`
	Presidents     string         `json:"presidents"`
	FinalStandings []StandingsRow `json:"final_standings"`
	Awards         []AwardRow     `json:"awards"`
	PointLeaders   []LeaderRow    `json:"point_leaders"`
	GoalLeaders    []LeaderRow    `json:"goal_leaders"`
	UserTeamID     string         `json:"user_team_id"`
	UserFinish     string         `json:"user_finish"`
}

// DraftPick is one selection in an entry draft.
type DraftPick struct {
	Season   int    `json:"season"`
	Round    int    `json:"round"`
	Overall  int    `json:"overall"`
	TeamID   string `json:"team_id"`
	Team     string `json:"team"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

// HallOfFamer is a retired player enshrined on career merit.
type HallOfFamer struct {
	PlayerID      string            `json:"player_id"`
	Name          string            `json:"name"`
	Position      string            `json:"position"`
	RetiredSeason int               `json:"retired_season"`
	RetiredAge    int               `json:"retired_age"`
	CareerGames   int               `json:"career_games"`
	CareerGoals   int               `json:"career_goals"`
	CareerAssists int               `json:"career_assists"`
	CareerPoints  int               `json:"career_points"`
	GoalieWins    int               `json:"goalie_wins"`
	Shutouts      int               `json:"shutouts"`
	Teams         []string          `json:"teams"`
	Seasons       []CareerSeasonRow `json:"seasons"`
}
