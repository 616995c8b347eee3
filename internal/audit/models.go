// Package audit captures the who-did-what trail emitted by domain services.
// Events flow through a Publisher (Kafka when configured, slog otherwise);
// the worker consumes and persists them.
package audit

import (
	"time"

	id "brokerdesk/pkg/domain"
)

// Category classifies events for retention and routing.
type Category string

const (
	// CategoryOperations covers routine actions useful for debugging.
	CategoryOperations Category = "operations"
	// CategoryCompliance covers actions with regulatory significance
	// (client data changes, logins, document verdicts).
	CategoryCompliance Category = "compliance"
)

// Action names follow entity.verb.
type Action string

const (
	ActionUserLogin       Action = "user.login"
	ActionUserCreated     Action = "user.created"
	ActionUserDeactivated Action = "user.deactivated"

	ActionClientCreated Action = "client.created"
	ActionClientUpdated Action = "client.updated"

	ActionProcessCreated  Action = "process.created"
	ActionProcessMoved    Action = "process.moved"
	ActionProcessAssigned Action = "process.assigned"
	ActionProcessClosed   Action = "process.closed"

	ActionLeadConverted  Action = "lead.converted"
	ActionDocumentStatus Action = "document.status"

	ActionJobCompleted Action = "job.completed"
	ActionJobFailed    Action = "job.failed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so publishers and stores can fan out.
type Event struct {
	Category  Category     `json:"category"`
	Action    Action       `json:"action"`
	ActorID   id.UserID    `json:"actor_id,omitempty"`
	Subject   string       `json:"subject,omitempty"`
	ProcessID id.ProcessID `json:"process_id,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	// Device is a short browser/OS summary parsed from the User-Agent,
	// recorded on login events only.
	Device string    `json:"device,omitempty"`
	At     time.Time `json:"at"`
}
