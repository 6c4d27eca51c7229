package agent

import "time"

// Snapshot captures the visible state of the simulated terminal.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Lines     []string  `json:"lines,omitempty"`
	Text      string    `json:"text,omitempty"`
}
