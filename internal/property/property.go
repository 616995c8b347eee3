// Package property manages the office's own listing inventory. Leads that
// pan out are converted into properties here.
package property

import (
	"strings"
	"time"

	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusSold      Status = "sold"
)

func (s Status) IsValid() bool {
	return s == StatusAvailable || s == StatusReserved || s == StatusSold
}

// Property is one listing. Reference is the human-facing unique code agents
// quote to clients.
type Property struct {
	ID           id.PropertyID `json:"id"`
	Reference    string        `json:"reference"`
	Address      string        `json:"address"`
	Municipality string        `json:"municipality"`
	Typology     string        `json:"typology"`
	Price        float64       `json:"price"`
	Area         float64       `json:"area"`
	Status       Status        `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func NewProperty(propertyID id.PropertyID, reference string, price float64, now time.Time) (*Property, error) {
	reference = strings.ToUpper(strings.TrimSpace(reference))
	if reference == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "reference is required")
	}
	if price < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "price cannot be negative")
	}
	return &Property{
		ID:        propertyID,
		Reference: reference,
		Price:     price,
		Status:    StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
