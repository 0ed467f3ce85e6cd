package hermes

import "time"

type RunCompletedEvent struct {
	RunID        string    `json:"run_id"`
	Source       string    `json:"source"`
	Alternatives int       `json:"alternatives"`
	Criteria     int       `json:"criteria"`
	Best         string    `json:"best"`
	Queued       bool      `json:"queued_for_delivery"`
	Timestamp    time.Time `json:"timestamp"`
}

type RunDeliveredEvent struct {
	RunID     string    `json:"run_id"`
	Attempts  int       `json:"attempts"`
	Timestamp time.Time `json:"timestamp"`
}

type RunFailedEvent struct {
	RunID     string    `json:"run_id"`
	Error     string    `json:"error"`
	Attempts  int       `json:"attempts"`
	Timestamp time.Time `json:"timestamp"`
}
