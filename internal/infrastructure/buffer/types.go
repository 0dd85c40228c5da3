package buffer

import (
	"time"

	"github.com/google/uuid"
)

// Job represents one pending link-enrichment pass: fetch the page
// title when missing and generate an AI summary. Jobs are persisted so
// enrichment survives restarts; they are best-effort and dropped after
// the retry budget is exhausted.
type Job struct {
	ID        string    `json:"id"`
	LinkID    int64     `json:"link_id"`
	URL       string    `json:"url"`
	WantTitle bool      `json:"want_title"`
	Retries   int       `json:"retries"`
	Timestamp time.Time `json:"timestamp"`

	bucketKey []byte
}

func (j *Job) normalize() {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Timestamp.IsZero() {
		j.Timestamp = time.Now()
	}
}
