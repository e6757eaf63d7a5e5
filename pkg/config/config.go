package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Persistence
	DataDir string `mapstructure:"DATA_DIR"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// League shape
	GamesPerMatchup    int `mapstructure:"GAMES_PER_MATCHUP"`
	MaxRosterSize      int `mapstructure:"MAX_ROSTER_SIZE"`
	MinMinorRosterSize int `mapstructure:"MIN_MINOR_ROSTER_SIZE"`
	DressedSkaters     int `mapstructure:"DRESSED_SKATERS"`
	DressedForwards    int `mapstructure:"DRESSED_FORWARDS"`
	DressedDefense     int `mapstructure:"DRESSED_DEFENSE"`
	DressedGoalies     int `mapstructure:"DRESSED_GOALIES"`
	PlayoffBestOf      int `mapstructure:"PLAYOFF_BEST_OF"`

	// Salary cap (thousands, so 85500 == $85.5M)
	SalaryCap int64 `mapstructure:"SALARY_CAP"`

	// Simulation seed; zero means non-deterministic
	Seed int64 `mapstructure:"SIM_SEED"`

	// Injury calibration. Baseline derived from 2024-25 team-level NHL
	// man-games-lost data: ~0.01357 injury events per player-game and
	// ~8.04 games missed per injury.
	InjuryEventRate       float64 `mapstructure:"INJURY_EVENT_RATE"`
	InjuryMeanGamesMissed float64 `mapstructure:"INJURY_MEAN_GAMES_MISSED"`

	// Player development
	PrimeAgeMin int `mapstructure:"PRIME_AGE_MIN"`
	PrimeAgeMax int `mapstructure:"PRIME_AGE_MAX"`

	// Trade engine
	TradeMinNet      float64 `mapstructure:"TRADE_MIN_NET"`
	TradeCPUMinNet   float64 `mapstructure:"TRADE_CPU_MIN_NET"`
	TradeOfferChance float64 `mapstructure:"TRADE_OFFER_CHANCE"`

	// Inbox
	InboxExpiryDays int `mapstructure:"INBOX_EXPIRY_DAYS"`

	// Background auto-sim
	AutoSimEnabled bool   `mapstructure:"AUTO_SIM_ENABLED"`
	AutoSimCron    string `mapstructure:"AUTO_SIM_CRON"`

	// Rate limiting on mutating endpoints
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")

	viper.SetDefault("GAMES_PER_MATCHUP", 2)
	viper.SetDefault("MAX_ROSTER_SIZE", 22)
	viper.SetDefault("MIN_MINOR_ROSTER_SIZE", 10)
	viper.SetDefault("DRESSED_SKATERS", 20)
	viper.SetDefault("DRESSED_FORWARDS", 12)
	viper.SetDefault("DRESSED_DEFENSE", 6)
	viper.SetDefault("DRESSED_GOALIES", 2)
	viper.SetDefault("PLAYOFF_BEST_OF", 7)

	viper.SetDefault("SALARY_CAP", 85500)
	viper.SetDefault("SIM_SEED", 0)

	viper.SetDefault("INJURY_EVENT_RATE", 0.01357)
	viper.SetDefault("INJURY_MEAN_GAMES_MISSED", 8.04)

	viper.SetDefault("PRIME_AGE_MIN", 27)
	viper.SetDefault("PRIME_AGE_MAX", 28)

	viper.SetDefault("TRADE_MIN_NET", -1.5)
	viper.SetDefault("TRADE_CPU_MIN_NET", 0.5)
	viper.SetDefault("TRADE_OFFER_CHANCE", 0.06)

	viper.SetDefault("INBOX_EXPIRY_DAYS", 3)

	viper.SetDefault("AUTO_SIM_ENABLED", false)
	viper.SetDefault("AUTO_SIM_CRON", "@every 30s")

	viper.SetDefault("RATE_LIMIT_RPS", 5.0)
	viper.SetDefault("RATE_LIMIT_BURST", 10)

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

// Default returns a config with all defaults applied and no file/env
// lookups. Tests use this to build isolated league states.
func Default() *Config {
	return &Config{
		Port:                  "8080",
		Env:                   "development",
		DataDir:               "./data",
		GamesPerMatchup:       2,
		MaxRosterSize:         22,
		MinMinorRosterSize:    10,
		DressedSkaters:        20,
		DressedForwards:       12,
		DressedDefense:        6,
		DressedGoalies:        2,
		PlayoffBestOf:         7,
		SalaryCap:             85500,
		InjuryEventRate:       0.01357,
		InjuryMeanGamesMissed: 8.04,
		PrimeAgeMin:           27,
		PrimeAgeMax:           28,
		TradeMinNet:           -1.5,
		TradeCPUMinNet:        0.5,
		TradeOfferChance:      0.06,
		InboxExpiryDays:       3,
		AutoSimCron:           "@every 30s",
		RateLimitRPS:          5.0,
		RateLimitBurst:        10,
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
