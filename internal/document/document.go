// Package document tracks the paperwork checklist attached to each process.
// Files themselves live elsewhere; this package records what was requested,
// what arrived and what is still missing.
package document

import (
	"strings"
	"time"

	"brokerdesk/internal/process/models"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
)

// Status follows the life of one document slot.
type Status string

const (
	StatusRequested Status = "requested"
	StatusReceived  Status = "received"
	StatusVerified  Status = "verified"
	StatusRejected  Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusReceived, StatusVerified, StatusRejected:
		return true
	}
	return false
}

// Document is one checklist slot on a process.
type Document struct {
	ID         id.DocumentID `json:"id"`
	ProcessID  id.ProcessID  `json:"process_id"`
	Kind       string        `json:"kind"`
	FileName   string        `json:"file_name"`
	Status     Status        `json:"status"`
	Note       string        `json:"note"`
	UploadedBy id.UserID     `json:"uploaded_by"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func NewDocument(documentID id.DocumentID, processID id.ProcessID, kind, fileName string, uploadedBy id.UserID, now time.Time) (*Document, error) {
	kind = strings.TrimSpace(strings.ToLower(kind))
	if kind == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "kind is required")
	}
	if processID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "process_id is required")
	}
	status := StatusRequested
	if fileName != "" {
		status = StatusReceived
	}
	return &Document{
		ID:         documentID,
		ProcessID:  processID,
		Kind:       kind,
		FileName:   fileName,
		Status:     status,
		UploadedBy: uploadedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// received reports whether the slot counts as fulfilled for checklist
// purposes. Rejected documents have to be re-collected.
func (d *Document) received() bool {
	return d.Status == StatusReceived || d.Status == StatusVerified
}

// requiredKinds is the fixed checklist per process type. Kinds registered
// outside the list are allowed and simply do not count toward completeness.
var requiredKinds = map[models.Type][]string{
	models.TypeCredit: {
		"identification",
		"income_proof",
		"bank_statements",
		"employment_contract",
		"property_documents",
	},
	models.TypeRealEstate: {
		"identification",
		"property_documents",
		"energy_certificate",
	},
}

// RequiredKinds returns the checklist for a process type, in a fixed order.
func RequiredKinds(processType models.Type) []string {
	return append([]string(nil), requiredKinds[processType]...)
}

// Checklist is the per-process completeness report.
type Checklist struct {
	ProcessID id.ProcessID `json:"process_id"`
	Required  []string     `json:"required"`
	Received  []string     `json:"received"`
	Missing   []string     `json:"missing"`
	Complete  bool         `json:"complete"`
}

// BuildChecklist folds the registered documents against the required kinds
// for the process type.
func BuildChecklist(processID id.ProcessID, processType models.Type, documents []*Document) Checklist {
	got := make(map[string]bool, len(documents))
	for _, document := range documents {
		if document.received() {
			got[document.Kind] = true
		}
	}

	checklist := Checklist{ProcessID: processID, Required: RequiredKinds(processType)}
	for _, kind := range checklist.Required {
		if got[kind] {
			checklist.Received = append(checklist.Received, kind)
		} else {
			checklist.Missing = append(checklist.Missing, kind)
		}
	}
	checklist.Complete = len(checklist.Missing) == 0
	return checklist
}
