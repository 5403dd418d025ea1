package model

import (
	"strconv"
	"time"
)

// Column is a titled, ordered list of cards
type Column struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`

	// Revision increases with every saved reorder. Writes carrying an older
	// revision than the stored one are stale.
	Revision int64 `json:"revision"`

	// Loaded relationship (not stored in columns table)
	Cards []Card `json:"cards,omitempty"`
}

// ColumnSeed describes a column and its card titles for seeding a board
type ColumnSeed struct {
	Title string
	Cards []string
}

// DefaultSeed is the board shown when no configuration overrides it
func DefaultSeed() []ColumnSeed {
	return []ColumnSeed{
		{Title: "TO DO", Cards: numbered("A", 16)},
		{Title: "IN PROGRESS", Cards: numbered("B", 6)},
		{Title: "DONE", Cards: numbered("C", 8)},
	}
}

func numbered(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + strconv.Itoa(i+1)
	}
	return out
}
