package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dori/dragboard/internal/app"
	"github.com/dori/dragboard/internal/model"
	"github.com/spf13/cobra"
)

var flagJSON bool

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the board the TUI would start with",
	Long:  `Seeds the board from the config file, prints every column with its cards and exits.`,
	Args:  cobra.NoArgs,
	RunE:  runBoard,
}

func init() {
	boardCmd.Flags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Close()

	columns, err := application.DB.GetBoard()
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}

	if flagJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(columns)
	}
	printBoard(cmd.OutOrStdout(), columns)
	return nil
}

func printBoard(w io.Writer, columns []model.Column) {
	for i, col := range columns {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", col.Title, len(col.Cards))
		for j, card := range col.Cards {
			fmt.Fprintf(w, "  %2d. %s\n", j+1, card.Title)
		}
	}
}
