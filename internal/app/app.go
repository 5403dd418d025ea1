package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dori/dragboard/internal/config"
	"github.com/dori/dragboard/internal/db"
	"github.com/gofrs/flock"
)

// App holds the application state and dependencies
type App struct {
	DB     *db.DB
	Config *config.Config
	Logger *log.Logger

	logFile  *os.File
	lockFile *flock.Flock
}

// New creates a new application instance: logger, in-memory store and the
// seeded board
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	app := &App{Config: cfg}

	if err := app.openLog(); err != nil {
		return nil, err
	}

	database, err := db.Open("")
	if err != nil {
		app.closeLog()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database

	if err := database.Seed(cfg.Seed()); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to seed board: %w", err)
	}

	app.Logger.Info("board ready", "store", database.Name(), "columns", len(cfg.Seed()))
	return app, nil
}

// openLog builds the logger. Without a log file output is discarded since
// the TUI owns the terminal.
func (a *App) openLog() error {
	level, err := log.ParseLevel(a.Config.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	var w io.Writer = io.Discard
	if path := a.Config.Log.File; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		// Acquire lock to keep a second instance off the same file
		a.lockFile = flock.New(path + ".lock")
		locked, err := a.lockFile.TryLock()
		if err != nil {
			return fmt.Errorf("failed to acquire log lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("log file %s is in use by another dragboard instance", path)
		}

		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			a.releaseLock()
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		w = f
	}

	a.Logger = log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "dragboard",
	})
	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

func (a *App) closeLog() error {
	var err error
	if a.logFile != nil {
		err = a.logFile.Close()
		a.logFile = nil
	}
	a.releaseLock()
	return err
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if err := a.closeLog(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
	}

	return errors.Join(errs...)
}
