package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/hockey-gm/internal/api"
	"github.com/jstittsworth/hockey-gm/internal/api/handlers"
	"github.com/jstittsworth/hockey-gm/internal/api/middleware"
	"github.com/jstittsworth/hockey-gm/internal/league"
	"github.com/jstittsworth/hockey-gm/internal/services"
	"github.com/jstittsworth/hockey-gm/internal/store"
	"github.com/jstittsworth/hockey-gm/pkg/config"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.IsDevelopment() {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	snaps, err := store.NewSnapshots(cfg.DataDir, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open snapshot store")
	}
	gameLog, err := store.OpenGameLog(cfg.DataDir, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open game log")
	}

	state, archive, found, err := snaps.LoadAll()
	if err != nil {
		logger.WithError(err).Fatal("Save files are corrupted; refusing to start")
	}
	if !found {
		logger.Info("No save found, generating a new league")
		state = league.NewState(cfg, rng)
		archive = &league.Archive{}
	} else {
		logger.WithFields(logrus.Fields{
			"season": state.Season,
			"day":    state.Day,
			"phase":  state.Phase,
		}).Info("Loaded saved franchise")
	}

	driver := league.NewDriver(cfg, logger, state, archive, rng)
	if !found {
		if err := snaps.SaveAll(state, archive); err != nil {
			logger.WithError(err).Fatal("Failed to write initial save")
		}
	}

	hub := services.NewHub(logger)
	go hub.Run()

	var mu sync.RWMutex
	deps := &handlers.Deps{
		Cfg:     cfg,
		Log:     logger,
		Mu:      &mu,
		Driver:  driver,
		Snaps:   snaps,
		GameLog: gameLog,
		Hub:     hub,
	}

	autoSim := services.NewAutoSim(cfg, logger, func() error {
		mu.Lock()
		defer mu.Unlock()
		prevState, prevArchive, err := driver.Checkpoint()
		if err != nil {
			return err
		}
		outcome, err := driver.AdvanceDay(0)
		if err != nil {
			return err
		}
		if err := snaps.SaveAll(driver.State, driver.Archive); err != nil {
			driver.Restore(prevState, prevArchive)
			return err
		}
		if err := gameLog.RecordResults(outcome.Results); err != nil {
			logger.WithError(err).Error("Auto-sim failed to archive results")
		}
		if err := gameLog.RecordTransactions(outcome.Transactions); err != nil {
			logger.WithError(err).Error("Auto-sim failed to archive transactions")
		}
		hub.BroadcastDayResults(outcome)
		hub.BroadcastNews(outcome.News)
		return nil
	})
	if err := autoSim.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start auto-sim")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.CorsOrigins))

	control := handlers.NewControlHandler(deps)
	router.GET("/health", control.Health)
	router.GET("/ws", hub.HandleWebSocket)

	apiGroup := router.Group("/api/v1")
	api.SetupRoutes(apiGroup, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	autoSim.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}

	mu.Lock()
	if err := snaps.SaveAll(driver.State, driver.Archive); err != nil {
		logger.WithError(err).Error("Final save failed")
	}
	mu.Unlock()

	logger.Info("Server stopped")
}
