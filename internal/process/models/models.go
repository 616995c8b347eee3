package models

import (
	"strings"
	"time"

	"brokerdesk/internal/pipeline"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
)

// Type distinguishes the two pipelines the office runs over the same board.
type Type string

const (
	TypeCredit     Type = "credit"
	TypeRealEstate Type = "realestate"
)

func (t Type) IsValid() bool {
	return t == TypeCredit || t == TypeRealEstate
}

// Status tracks whether the process is still being worked.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// HistoryEntry is one free-text line in the process change log.
type HistoryEntry struct {
	At     time.Time `json:"at"`
	UserID id.UserID `json:"user_id"`
	Note   string    `json:"note"`
}

// Process is the central record tracking one client's request through the
// Kanban board.
//
// Invariants:
//   - Column is always a known pipeline column
//   - ClientID and AgentID are set at creation (soft foreign keys)
//   - History is append-only; entries are never edited or removed
//
// There is no transition matrix: any column can follow any other, and the
// history log is the only trace of how a process travelled.
type Process struct {
	ID        id.ProcessID   `json:"id"`
	ClientID  id.ClientID    `json:"client_id"`
	AgentID   id.UserID      `json:"agent_id"`
	Type      Type           `json:"type"`
	Column    string         `json:"column"`
	Status    Status         `json:"status"`
	History   []HistoryEntry `json:"history"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func NewProcess(processID id.ProcessID, clientID id.ClientID, agentID id.UserID, processType Type, createdBy id.UserID, now time.Time) (*Process, error) {
	if clientID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "client_id is required")
	}
	if agentID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "agent_id is required")
	}
	if !processType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "type must be credit or realestate")
	}
	return &Process{
		ID:       processID,
		ClientID: clientID,
		AgentID:  agentID,
		Type:     processType,
		Column:   pipeline.First(),
		Status:   StatusOpen,
		History: []HistoryEntry{{
			At:     now,
			UserID: createdBy,
			Note:   "process created",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AppendHistory records one free-text change description.
func (p *Process) AppendHistory(now time.Time, userID id.UserID, note string) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "note is required")
	}
	p.History = append(p.History, HistoryEntry{At: now, UserID: userID, Note: note})
	p.UpdatedAt = now
	return nil
}

// MoveTo places the process in the target column. The only check is that the
// column exists on the board.
func (p *Process) MoveTo(column string, userID id.UserID, now time.Time) error {
	if !pipeline.IsValid(column) {
		return dErrors.New(dErrors.CodeBadRequest, "unknown pipeline column")
	}
	if p.Status == StatusClosed {
		return dErrors.New(dErrors.CodeConflict, "process is closed")
	}
	from := p.Column
	p.Column = column
	return p.AppendHistory(now, userID, "moved from "+from+" to "+column)
}

// Assign hands the process to another agent.
func (p *Process) Assign(agentID id.UserID, byUserID id.UserID, now time.Time) error {
	if agentID.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "agent_id is required")
	}
	if p.Status == StatusClosed {
		return dErrors.New(dErrors.CodeConflict, "process is closed")
	}
	p.AgentID = agentID
	return p.AppendHistory(now, byUserID, "assigned to agent "+agentID.String())
}

// Close ends the process; closed processes reject moves and assignments.
func (p *Process) Close(userID id.UserID, now time.Time) error {
	if p.Status == StatusClosed {
		return dErrors.New(dErrors.CodeConflict, "process is already closed")
	}
	p.Status = StatusClosed
	return p.AppendHistory(now, userID, "process closed")
}
