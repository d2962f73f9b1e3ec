package models

import (
	"time"
)

// RunStatus is the outcome of one pipeline run as recorded in the database.
type RunStatus string

const (
	RunStarted   RunStatus = "STARTED"
	RunCompleted RunStatus = "COMPLETED"
	RunDegraded  RunStatus = "DEGRADED"
	RunFailed    RunStatus = "FAILED"
)

// Run is one pipeline execution for one source.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Status    RunStatus `json:"status"`
	JobCount  int       `json:"job_count"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoredJob is a Job row as persisted by the database sink.
type StoredJob struct {
	Job
	Source    string    `json:"source"`
	RunID     string    `json:"run_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
