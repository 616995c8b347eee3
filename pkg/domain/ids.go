// Package domain defines the typed identifiers shared across modules.
//
// Every aggregate gets its own ID type over uuid.UUID so cross-entity
// assignment fails at compile time. Parse helpers enforce the trust-boundary
// invariant: IDs arriving over HTTP must be valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "brokerdesk/pkg/domain-errors"
)

type (
	UserID         uuid.UUID
	ClientID       uuid.UUID
	ProcessID      uuid.UUID
	LeadID         uuid.UUID
	PropertyID     uuid.UUID
	DocumentID     uuid.UUID
	DeadlineID     uuid.UUID
	NotificationID uuid.UUID
	JobID          uuid.UUID
)

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id ClientID) String() string       { return uuid.UUID(id).String() }
func (id ProcessID) String() string      { return uuid.UUID(id).String() }
func (id LeadID) String() string         { return uuid.UUID(id).String() }
func (id PropertyID) String() string     { return uuid.UUID(id).String() }
func (id DocumentID) String() string     { return uuid.UUID(id).String() }
func (id DeadlineID) String() string     { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }
func (id JobID) String() string          { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ClientID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ProcessID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id LeadID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id PropertyID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText keeps typed IDs JSON-friendly as their canonical string form.
func (id UserID) MarshalText() ([]byte, error)         { return marshalID(uuid.UUID(id)) }
func (id ClientID) MarshalText() ([]byte, error)       { return marshalID(uuid.UUID(id)) }
func (id ProcessID) MarshalText() ([]byte, error)      { return marshalID(uuid.UUID(id)) }
func (id LeadID) MarshalText() ([]byte, error)         { return marshalID(uuid.UUID(id)) }
func (id PropertyID) MarshalText() ([]byte, error)     { return marshalID(uuid.UUID(id)) }
func (id DocumentID) MarshalText() ([]byte, error)     { return marshalID(uuid.UUID(id)) }
func (id DeadlineID) MarshalText() ([]byte, error)     { return marshalID(uuid.UUID(id)) }
func (id NotificationID) MarshalText() ([]byte, error) { return marshalID(uuid.UUID(id)) }
func (id JobID) MarshalText() ([]byte, error)          { return marshalID(uuid.UUID(id)) }

func (id *UserID) UnmarshalText(b []byte) error         { return unmarshalID((*uuid.UUID)(id), b) }
func (id *ClientID) UnmarshalText(b []byte) error       { return unmarshalID((*uuid.UUID)(id), b) }
func (id *ProcessID) UnmarshalText(b []byte) error      { return unmarshalID((*uuid.UUID)(id), b) }
func (id *LeadID) UnmarshalText(b []byte) error         { return unmarshalID((*uuid.UUID)(id), b) }
func (id *PropertyID) UnmarshalText(b []byte) error     { return unmarshalID((*uuid.UUID)(id), b) }
func (id *DocumentID) UnmarshalText(b []byte) error     { return unmarshalID((*uuid.UUID)(id), b) }
func (id *DeadlineID) UnmarshalText(b []byte) error     { return unmarshalID((*uuid.UUID)(id), b) }
func (id *NotificationID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }
func (id *JobID) UnmarshalText(b []byte) error          { return unmarshalID((*uuid.UUID)(id), b) }

func marshalID(u uuid.UUID) ([]byte, error) {
	return []byte(u.String()), nil
}

func unmarshalID(dst *uuid.UUID, b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*dst = u
	return nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	return UserID(u), err
}

func ParseClientID(s string) (ClientID, error) {
	u, err := parseUUID(s)
	return ClientID(u), err
}

func ParseProcessID(s string) (ProcessID, error) {
	u, err := parseUUID(s)
	return ProcessID(u), err
}

func ParseLeadID(s string) (LeadID, error) {
	u, err := parseUUID(s)
	return LeadID(u), err
}

func ParsePropertyID(s string) (PropertyID, error) {
	u, err := parseUUID(s)
	return PropertyID(u), err
}

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s)
	return DocumentID(u), err
}

func ParseDeadlineID(s string) (DeadlineID, error) {
	u, err := parseUUID(s)
	return DeadlineID(u), err
}

func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID(s)
	return NotificationID(u), err
}

func ParseJobID(s string) (JobID, error) {
	u, err := parseUUID(s)
	return JobID(u), err
}

// parseUUID rejects empty strings, malformed UUIDs, and the nil UUID. All
// Parse helpers funnel through here so every trust boundary gets the same
// treatment.
func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is too long")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid uuid")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil uuid")
	}
	return u, nil
}
