package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dori/dragboard/internal/model"
	"github.com/google/uuid"
)

// GetColumns returns all columns in board order, without cards
func (db *DB) GetColumns() ([]model.Column, error) {
	rows, err := db.Query(`
		SELECT id, title, position, revision, created_at
		FROM columns
		ORDER BY position, created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []model.Column
	for rows.Next() {
		var c model.Column
		if err := rows.Scan(&c.ID, &c.Title, &c.Position, &c.Revision, &c.CreatedAt); err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}

	return columns, rows.Err()
}

// GetBoard returns every column with its cards loaded
func (db *DB) GetBoard() ([]model.Column, error) {
	columns, err := db.GetColumns()
	if err != nil {
		return nil, err
	}

	// Columns rows are closed by now; with a single connection a nested
	// query during iteration would deadlock
	for i := range columns {
		cards, err := db.GetCards(columns[i].ID)
		if err != nil {
			return nil, err
		}
		columns[i].Cards = cards
	}

	return columns, nil
}

// Seed inserts the given columns and cards in order
func (db *DB) Seed(seeds []model.ColumnSeed) error {
	now := time.Now()
	return db.Transaction(func(tx *sql.Tx) error {
		for ci, s := range seeds {
			colID := uuid.New().String()
			if _, err := tx.Exec(`
				INSERT INTO columns (id, title, position, created_at)
				VALUES (?, ?, ?, ?)
			`, colID, s.Title, ci, now); err != nil {
				return fmt.Errorf("failed to seed column %q: %w", s.Title, err)
			}

			for pi, title := range s.Cards {
				if _, err := tx.Exec(`
					INSERT INTO cards (id, column_id, title, position, created_at)
					VALUES (?, ?, ?, ?, ?)
				`, uuid.New().String(), colID, title, pi, now); err != nil {
					return fmt.Errorf("failed to seed card %q: %w", title, err)
				}
			}
		}
		return nil
	})
}
