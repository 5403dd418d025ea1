package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/dragboard/internal/app"
	"github.com/dori/dragboard/internal/config"
	"github.com/dori/dragboard/internal/ui"
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "0.1.0"

// Global flags.
var (
	flagConfig  string
	flagTheme   string
	flagColumn  string
	flagHitTest string
	flagLogFile string
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "dragboard",
	Short: "A kanban board you reorder by dragging cards",
	Long: `dragboard shows a kanban board in the terminal. Press and hold a card
with the mouse, then drag it up or down to reorder its column.
The board lives in memory and is discarded on exit.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	Args:          cobra.NoArgs,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagTheme, "theme", "", "theme (nord, dracula, gruvbox, catppuccin)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log at debug level")
	rootCmd.Flags().StringVar(&flagColumn, "column", "", "column to show first")
	rootCmd.Flags().StringVar(&flagHitTest, "hit-test", "", "drag hit testing (uniform, measured)")
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig() (*config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flagTheme != "" {
		cfg.Theme = flagTheme
	}
	if flagHitTest != "" {
		cfg.Drag.HitTest = flagHitTest
	}
	if flagLogFile != "" {
		cfg.Log.File = flagLogFile
	}
	if flagDebug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Close()

	p := tea.NewProgram(
		ui.NewRootModel(application, flagColumn),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
