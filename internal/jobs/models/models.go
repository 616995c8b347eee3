package models

import (
	"encoding/json"
	"strings"
	"time"

	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
)

// Status follows a job through the queue.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusDone, StatusFailed:
		return true
	}
	return false
}

// Known job kinds. The runner only executes kinds it has a handler for;
// anything else fails fast.
const (
	KindLeadMatchSweep = "lead.match_sweep"
	KindDeadlineSweep  = "deadline.sweep"
)

// Job is one queued unit of background work. Payload is an opaque JSON blob
// interpreted by the kind's handler.
type Job struct {
	ID         id.JobID        `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	Status     Status          `json:"status"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

func NewJob(jobID id.JobID, kind string, payload json.RawMessage, now time.Time) (*Job, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "kind is required")
	}
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	return &Job{
		ID:        jobID,
		Kind:      kind,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: now,
	}, nil
}
