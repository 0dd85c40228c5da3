package domain

import "time"

// Link is a saved URL waiting to be read. Title and Summary are filled
// in asynchronously after creation and may transiently be empty.
type Link struct {
	ID        int64      `json:"id"`
	OwnerID   int64      `json:"owner_id"`
	URL       string     `json:"url"`
	Title     string     `json:"title,omitempty"`
	Summary   string     `json:"summary,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}
