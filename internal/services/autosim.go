package services

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/hockey-gm/pkg/config"
)

// AutoSim ticks the league forward on a schedule so a franchise keeps
// moving while nobody is watching. The advance function is the same
// locked path the HTTP handler uses.
type AutoSim struct {
	cfg     *config.Config
	logger  *logrus.Logger
	cron    *cron.Cron
	advance func() error
}

func NewAutoSim(cfg *config.Config, logger *logrus.Logger, advance func() error) *AutoSim {
	return &AutoSim{
		cfg:     cfg,
		logger:  logger,
		cron:    cron.New(),
		advance: advance,
	}
}

// Start registers the cron entry and begins ticking. A bad expression
// is returned rather than silently running nothing.
func (a *AutoSim) Start() error {
	if !a.cfg.AutoSimEnabled {
		a.logger.Info("Auto-sim disabled")
		return nil
	}
	_, err := a.cron.AddFunc(a.cfg.AutoSimCron, func() {
		if err := a.advance(); err != nil {
			a.logger.WithError(err).Error("Auto-sim advance failed")
			return
		}
		a.logger.Debug("Auto-sim advanced the league day")
	})
	if err != nil {
		return err
	}
	a.cron.Start()
	a.logger.WithField("schedule", a.cfg.AutoSimCron).Info("Auto-sim started")
	return nil
}

// Stop halts the scheduler and waits for a running tick to finish.
func (a *AutoSim) Stop() {
	ctx := a.cron.Stop()
	<-ctx.Done()
}
