package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jstittsworth/hockey-gm/internal/models"
)

// GameLog is the append-only archive of played games and roster
// transactions, kept in SQLite next to the snapshots so box scores and
// the transaction wire survive without bloating the save files.
type GameLog struct {
	db  *gorm.DB
	log *logrus.Logger
}

func OpenGameLog(dataDir string, log *logrus.Logger) (*GameLog, error) {
	path := filepath.Join(dataDir, "gamelog.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open game log: %w", err)
	}
	if err := db.AutoMigrate(&models.Game{}, &models.Transaction{}); err != nil {
		return nil, fmt.Errorf("migrate game log: %w", err)
	}
	return &GameLog{db: db, log: log}, nil
}

// RecordResults flattens simulated games into archive rows. The full
// result (goals, stars, injuries) rides along as a JSON detail column.
func (g *GameLog) RecordResults(results []*models.GameResult) error {
	if len(results) == 0 {
		return nil
	}
	rows := make([]models.Game, 0, len(results))
	for _, r := range results {
		detail, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal game detail: %w", err)
		}
		rows = append(rows, models.Game{
			ID:         r.GameID,
			Season:     r.Season,
			Day:        r.Day,
			HomeTeamID: r.HomeTeamID,
			AwayTeamID: r.AwayTeamID,
			HomeGoals:  r.HomeGoals,
			AwayGoals:  r.AwayGoals,
			Overtime:   r.Overtime,
			Playoff:    r.Playoff,
			SeriesID:   r.SeriesID,
			Detail:     detail,
			CreatedAt:  time.Now(),
		})
	}
	return g.db.Create(&rows).Error
}

func (g *GameLog) RecordTransactions(txs []*models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return g.db.Create(&txs).Error
}

// GamesFor lists a team's archived games, newest first.
func (g *GameLog) GamesFor(season int, teamID string, limit int) ([]models.Game, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.Game
	q := g.db.Where("season = ?", season).
		Order("day DESC, created_at DESC").
		Limit(limit)
	if teamID != "" {
		q = q.Where("home_team_id = ? OR away_team_id = ?", teamID, teamID)
	}
	err := q.Find(&out).Error
	return out, err
}

// TransactionsFor lists the league wire, optionally filtered to one
// team.
func (g *GameLog) TransactionsFor(season int, teamID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.Transaction
	q := g.db.Where("season = ?", season).
		Order("day DESC, created_at DESC").
		Limit(limit)
	if teamID != "" {
		q = q.Where("team_id = ?", teamID)
	}
	err := q.Find(&out).Error
	return out, err
}

// RegularSeasonThrough returns every regular season game played on or
// before the given day, oldest first, for standings-as-of rebuilds.
func (g *GameLog) RegularSeasonThrough(season, day int) ([]models.Game, error) {
	var out []models.Game
	err := g.db.Where("season = ? AND day <= ? AND playoff = ?", season, day, false).
		Order("day ASC, created_at ASC").
		Find(&out).Error
	return out, err
}

// SeriesGames returns a playoff series' games in order.
func (g *GameLog) SeriesGames(seriesID string) ([]models.Game, error) {
	var out []models.Game
	err := g.db.Where("series_id = ?", seriesID).
		Order("day ASC").
		Find(&out).Error
	return out, err
}

// Wipe clears the archive when the franchise is reset.
func (g *GameLog) Wipe() error {
	if err := g.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Game{}).Error; err != nil {
		return err
	}
	return g.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Transaction{}).Error
}
