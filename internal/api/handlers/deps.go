package handlers

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/hockey-gm/internal/league"
	"github.com/jstittsworth/hockey-gm/internal/services"
	"github.com/jstittsworth/hockey-gm/internal/store"
	"github.com/jstittsworth/hockey-gm/pkg/config"
)

// Deps is the shared wiring every handler gets. Mu is the single
// league lock: reads take RLock, anything that mutates state or
// advances the clock takes the write lock.
type Deps struct {
	Cfg     *config.Config
	Log     *logrus.Logger
	Mu      *sync.RWMutex
	Driver  *league.Driver
	Snaps   *store.Snapshots
	GameLog *store.GameLog
	Hub     *services.Hub
}

func (d *Deps) state() *league.State {
	return d.Driver.State
}

// persist writes all snapshots; callers hold the write lock.
func (d *Deps) persist() error {
	return d.Snaps.SaveAll(d.Driver.State, d.Driver.Archive)
}
