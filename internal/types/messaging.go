package types

import "time"

// GoNowAlert is the SQS payload published when a beach has a go-now window.
// Downstream consumers (push/email fan-out) key on BeachID + WindowID to
// deduplicate repeated scans of the same window.
type GoNowAlert struct {
	BeachID     string    `json:"beach_id"`
	BeachName   string    `json:"beach_name"`
	WindowID    string    `json:"window_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Score       int       `json:"score"`
	Badges      []Badge   `json:"badges"`
	GeneratedAt time.Time `json:"generated_at"`

	// Observability
	TraceID string `json:"trace_id"`
}
