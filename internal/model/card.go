package model

import (
	"time"
)

// Card is one item on the board
type Card struct {
	ID        string    `json:"id"`
	ColumnID  string    `json:"column_id"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// CardIDs returns the IDs of cards in order
func CardIDs(cards []Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
