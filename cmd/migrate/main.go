// Command migrate upgrades save files in place to the current snapshot
// version. The server migrates on load anyway; this tool exists so a
// backup rotation can be forced before an upgrade.
package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/hockey-gm/internal/store"
)

func main() {
	dataDir := flag.String("data", "./data", "directory holding the save files")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	snaps, err := store.NewSnapshots(*dataDir, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open snapshot store")
	}

	state, archive, found, err := snaps.LoadAll()
	if err != nil {
		logger.WithError(err).Fatal("Save files are unreadable")
	}
	if !found {
		logger.Info("No save files found, nothing to migrate")
		os.Exit(0)
	}

	// Rewriting stamps the current version and rotates the backups.
	if err := snaps.SaveAll(state, archive); err != nil {
		logger.WithError(err).Fatal("Failed to rewrite save files")
	}
	logger.WithFields(logrus.Fields{
		"season":  state.Season,
		"day":     state.Day,
		"version": store.SaveVersion,
	}).Info("Save files migrated")
}
