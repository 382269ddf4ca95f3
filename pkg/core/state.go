package core

import "time"

// Store defines the interface for run history operations.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	CreateRun(derivations []string, filter *Filter) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, rowCounts map[string]int, errMsg string) error
	GetLatestRun() (*Run, error)
	ListRuns(limit int) ([]*Run, error)
}

// RunStatus represents the status of a derivation run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded execution of the derivation pipeline.
type Run struct {
	ID          string         `json:"id"`
	Derivations []string       `json:"derivations"`
	Filter      *Filter        `json:"filter,omitempty"`
	Status      RunStatus      `json:"status"`
	RowCounts   map[string]int `json:"row_counts,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Error       string         `json:"error,omitempty"`
}
