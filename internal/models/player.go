package models

// Skater/goalie positions use their standard abbreviations.
const (
	PositionCenter    = "C"
	PositionLeftWing  = "LW"
	PositionRightWing = "RW"
	PositionDefense   = "D"
	PositionGoalie    = "G"
)

func IsForwardPosition(pos string) bool {
	return pos == PositionCenter || pos == PositionLeftWing || pos == PositionRightWing
}

func IsDefensePosition(pos string) bool {
	return pos == PositionDefense
}

func IsGoaliePosition(pos string) bool {
	return pos == PositionGoalie
}

// Ratings are on a 0.3-5.0 scale, matching the scouting report shown in
// the dashboard.
type Ratings struct {
	Shooting    float64 `json:"shooting"`
	Playmaking  float64 `json:"playmaking"`
	Defense     float64 `json:"defense"`
	Goaltending float64 `json:"goaltending"`
	Physical    float64 `json:"physical"`
	Durability  float64 `json:"durability"`
}

type ContractType string

const (
	ContractEntry    ContractType = "entry"
	ContractStandard ContractType = "standard"
	ContractVeteran  ContractType = "veteran"
)

// Contract cap hits are in thousands of dollars so the league cap fits
// in an int64 without float drift.
type Contract struct {
	YearsLeft int          `json:"years_left"`
	CapHit    int64        `json:"cap_hit"`
	Type      ContractType `json:"type"`
	RFA       bool         `json:"rfa"`
}

// IsExpiring reports whether this is the contract's final year, which
// makes it attractive to a team shopping for cap relief.
func (c Contract) IsExpiring() bool {
	return c.YearsLeft <= 1
}

type InjuryStatus string

const (
	InjuryNone         InjuryStatus = "none"
	InjuryDTD          InjuryStatus = "dtd"
	InjuryIR           InjuryStatus = "ir"
	InjuryLTIR         InjuryStatus = "ltir"
	InjurySeasonEnding InjuryStatus = "season_ending"
)

type InjuryState struct {
	Status         InjuryStatus `json:"status"`
	GamesRemaining int          `json:"games_remaining"`
}

func (i InjuryState) Active() bool {
	return i.Status != InjuryNone && i.Status != "" && i.GamesRemaining > 0
}

// SeasonStats is the current-stint stat line. A mid-season trade closes
// the stint into a CareerSeasonRow and resets these counters so career
// rows are partitioned by the team held during each stint.
type SeasonStats struct {
	GamesPlayed    int `json:"games_played"`
	Goals          int `json:"goals"`
	Assists        int `json:"assists"`
	PlusMinus      int `json:"plus_minus"`
	PIM            int `json:"pim"`
	Injuries       int `json:"injuries"`
	GamesMissed    int `json:"games_missed"`
	GoalieGames    int `json:"goalie_games"`
	GoalieWins     int `json:"goalie_wins"`
	GoalieLosses   int `json:"goalie_losses"`
	GoalieOTLosses int `json:"goalie_ot_losses"`
	GoalieShutouts int `json:"goalie_shutouts"`
	ShotsAgainst   int `json:"shots_against"`
	Saves          int `json:"saves"`
	GoalsAgainst   int `json:"goals_against"`
}

func (s SeasonStats) Points() int {
	return s.Goals + s.Assists
}

func (s SeasonStats) SavePct() float64 {
	if s.ShotsAgainst <= 0 {
		return 0
	}
	return float64(s.Saves) / float64(s.ShotsAgainst)
}

func (s SeasonStats) GAA() float64 {
	if s.GoalieGames <= 0 {
		return 0
	}
	return float64(s.GoalsAgainst) / float64(s.GoalieGames)
}

// CareerSeasonRow is one stint of one season. A season with no trade
// produces a single row; a trade produces one row per team held.
type CareerSeasonRow struct {
	Season         int     `json:"season"`
	Team           string  `json:"team"`
	Age            int     `json:"age"`
	Position       string  `json:"position"`
	GamesPlayed    int     `json:"gp"`
	Goals          int     `json:"g"`
	Assists        int     `json:"a"`
	Points         int     `json:"p"`
	PlusMinus      int     `json:"plus_minus"`
	PIM            int     `json:"pim"`
	Injuries       int     `json:"injuries"`
	GamesMissed    int     `json:"games_missed"`
	GoalieGames    int     `json:"goalie_gp"`
	GoalieWins     int     `json:"goalie_w"`
	GoalieLosses   int     `json:"goalie_l"`
	GoalieOTLosses int     `json:"goalie_otl"`
	GoalieShutouts int     `json:"goalie_so"`
	GAA            float64 `json:"gaa"`
	SavePct        float64 `json:"sv_pct"`
}

type ProspectTier string

const (
	TierNHL    ProspectTier = "NHL"
	TierAHL    ProspectTier = "AHL"
	TierJunior ProspectTier = "Junior"
)

type DraftInfo struct {
	Season  int    `json:"season,omitempty"`
	Round   int    `json:"round,omitempty"`
	Overall int    `json:"overall,omitempty"`
	Team    string `json:"team,omitempty"`
}

type ProspectInfo struct {
	Tier         ProspectTier `json:"tier"`
	SeasonsToNHL int          `json:"seasons_to_nhl"`
	Potential    float64      `json:"potential"`
	BoomChance   float64      `json:"boom_chance"`
	BustChance   float64      `json:"bust_chance"`
	Resolved     bool         `json:"resolved"`
}

type Player struct {
	ID           string       `json:"id"`
	TeamID       string       `json:"team_id"`
	Name         string       `json:"name"`
	Position     string       `json:"position"`
	JerseyNumber int          `json:"jersey_number"`
	Age          int          `json:"age"`
	PrimeAge     int          `json:"prime_age"`
	Country      string       `json:"country"`
	CountryCode  string       `json:"country_code"`
	Ratings      Ratings      `json:"ratings"`
	Contract     Contract     `json:"contract"`
	Injury       InjuryState  `json:"injury"`
	Stats        SeasonStats  `json:"stats"`
	Draft        DraftInfo    `json:"draft"`
	Prospect     ProspectInfo `json:"prospect"`

	CareerSeasons []CareerSeasonRow `json:"career_seasons"`
}

func (p *Player) IsInjured() bool {
	return p.Injury.Active()
}

func (p *Player) IsForward() bool { return IsForwardPosition(p.Position) }
func (p *Player) IsDefense() bool { return IsDefensePosition(p.Position) }
func (p *Player) IsGoalie() bool  { return IsGoaliePosition(p.Position) }

// ScoringWeight drives scorer selection during game simulation.
func (p *Player) ScoringWeight() float64 {
	w := p.Ratings.Shooting*0.62 + p.Ratings.Playmaking*0.38
	if w < 0.1 {
		return 0.1
	}
	return w
}

// Overall is a position-weighted composite used by trade valuation and
// roster comparisons.
func (p *Player) Overall() float64 {
	r := p.Ratings
	if p.IsGoalie() {
		return r.Goaltending*0.72 + r.Durability*0.18 + r.Defense*0.10
	}
	if p.IsDefense() {
		return r.Defense*0.42 + r.Playmaking*0.24 + r.Shooting*0.14 + r.Physical*0.12 + r.Durability*0.08
	}
	return r.Shooting*0.34 + r.Playmaking*0.30 + r.Defense*0.18 + r.Physical*0.10 + r.Durability*0.08
}

// CloseStint folds the current season stats into a career row credited
// to teamName and resets the stint counters. Called on trades and at
// the season boundary so no season is double-counted across teams.
func (p *Player) CloseStint(season int, teamName string) CareerSeasonRow {
	row := CareerSeasonRow{
		Season:         season,
		Team:           teamName,
		Age:            p.Age,
		Position:       p.Position,
		GamesPlayed:    p.Stats.GamesPlayed,
		Goals:          p.Stats.Goals,
		Assists:        p.Stats.Assists,
		Points:         p.Stats.Points(),
		PlusMinus:      p.Stats.PlusMinus,
		PIM:            p.Stats.PIM,
		Injuries:       p.Stats.Injuries,
		GamesMissed:    p.Stats.GamesMissed,
		GoalieGames:    p.Stats.GoalieGames,
		GoalieWins:     p.Stats.GoalieWins,
		GoalieLosses:   p.Stats.GoalieLosses,
		GoalieOTLosses: p.Stats.GoalieOTLosses,
		GoalieShutouts: p.Stats.GoalieShutouts,
		GAA:            p.Stats.GAA(),
		SavePct:        p.Stats.SavePct(),
	}
	p.CareerSeasons = append(p.CareerSeasons, row)
	p.Stats = SeasonStats{}
	return row
}
