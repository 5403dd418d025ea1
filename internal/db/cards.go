package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dori/dragboard/internal/model"
	"github.com/google/uuid"
)

// ErrStaleRevision is returned by SaveOrder when a newer order has already
// been saved for the column
var ErrStaleRevision = errors.New("stale column revision")

// GetCards returns the cards of a column in order
func (db *DB) GetCards(columnID string) ([]model.Card, error) {
	rows, err := db.Query(`
		SELECT id, column_id, title, position, created_at
		FROM cards
		WHERE column_id = ?
		ORDER BY position, created_at
	`, columnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []model.Card
	for rows.Next() {
		var c model.Card
		if err := rows.Scan(&c.ID, &c.ColumnID, &c.Title, &c.Position, &c.CreatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}

	return cards, rows.Err()
}

// CreateCard appends a card to the end of a column
func (db *DB) CreateCard(columnID, title string) (*model.Card, error) {
	id := uuid.New().String()
	now := time.Now()

	var maxPos sql.NullInt64
	db.QueryRow("SELECT MAX(position) FROM cards WHERE column_id = ?", columnID).Scan(&maxPos)
	position := 0
	if maxPos.Valid {
		position = int(maxPos.Int64) + 1
	}

	_, err := db.Exec(`
		INSERT INTO cards (id, column_id, title, position, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, columnID, title, position, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	return &model.Card{
		ID:        id,
		ColumnID:  columnID,
		Title:     title,
		Position:  position,
		CreatedAt: now,
	}, nil
}

// RenameCard changes a card's title
func (db *DB) RenameCard(id, title string) error {
	_, err := db.Exec(`UPDATE cards SET title = ? WHERE id = ?`, title, id)
	return err
}

// DeleteCard removes a card and closes the gap it leaves in its column
func (db *DB) DeleteCard(id string) error {
	return db.Transaction(func(tx *sql.Tx) error {
		var columnID string
		var position int
		err := tx.QueryRow(`SELECT column_id, position FROM cards WHERE id = ?`, id).Scan(&columnID, &position)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM cards WHERE id = ?`, id); err != nil {
			return err
		}
		_, err = tx.Exec(`
			UPDATE cards SET position = position - 1
			WHERE column_id = ? AND position > ?
		`, columnID, position)
		return err
	})
}

// SaveOrder stores the order of a column's cards as given by ids, tagged
// with revision. A revision not greater than the stored one is rejected
// with ErrStaleRevision so an older order saved late cannot overwrite a
// newer one.
func (db *DB) SaveOrder(columnID string, revision int64, ids []string) error {
	return db.Transaction(func(tx *sql.Tx) error {
		var current int64
		err := tx.QueryRow(`SELECT revision FROM columns WHERE id = ?`, columnID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("column %s not found", columnID)
		}
		if err != nil {
			return err
		}
		if revision <= current {
			return fmt.Errorf("save order for column %s at revision %d (stored %d): %w",
				columnID, revision, current, ErrStaleRevision)
		}

		for pos, id := range ids {
			if _, err := tx.Exec(`
				UPDATE cards SET position = ? WHERE id = ? AND column_id = ?
			`, pos, id, columnID); err != nil {
				return err
			}
		}

		_, err = tx.Exec(`UPDATE columns SET revision = ? WHERE id = ?`, revision, columnID)
		return err
	})
}

// MoveCard moves a card to the end of another column, closing the gap in
// the column it leaves
func (db *DB) MoveCard(id, columnID string) error {
	return db.Transaction(func(tx *sql.Tx) error {
		var fromColumn string
		var position int
		err := tx.QueryRow(`SELECT column_id, position FROM cards WHERE id = ?`, id).Scan(&fromColumn, &position)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("card %s not found", id)
		}
		if err != nil {
			return err
		}
		if fromColumn == columnID {
			return nil
		}

		var maxPos sql.NullInt64
		if err := tx.QueryRow("SELECT MAX(position) FROM cards WHERE column_id = ?", columnID).Scan(&maxPos); err != nil {
			return err
		}
		target := 0
		if maxPos.Valid {
			target = int(maxPos.Int64) + 1
		}

		if _, err := tx.Exec(`
			UPDATE cards SET column_id = ?, position = ? WHERE id = ?
		`, columnID, target, id); err != nil {
			return fmt.Errorf("failed to move card: %w", err)
		}
		_, err = tx.Exec(`
			UPDATE cards SET position = position - 1
			WHERE column_id = ? AND position > ?
		`, fromColumn, position)
		return err
	})
}
