package event

import "time"

// StartedData is the data for command.started events.
type StartedData struct {
	RunID   string   `json:"runID"`
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// StoppingData is the data for command.stopping events.
type StoppingData struct {
	RunID   string `json:"runID"`
	Command string `json:"command"`
}

// FinishedData is the data for command.finished events.
type FinishedData struct {
	RunID    string        `json:"runID"`
	Command  string        `json:"command"`
	Status   string        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}
