package models

import (
	"strings"
	"time"

	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	platstrings "brokerdesk/pkg/platform/strings"
	"brokerdesk/pkg/validate"
)

// Status enumerates client lifecycle states.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusArchived
}

// PersonalData is the optional nested personal sub-object.
type PersonalData struct {
	BirthDate     string `json:"birth_date,omitempty"`
	MaritalStatus string `json:"marital_status,omitempty"`
	Dependents    int    `json:"dependents,omitempty"`
	Nationality   string `json:"nationality,omitempty"`
}

// FinancialData is the optional nested financial sub-object.
type FinancialData struct {
	MonthlyIncome  float64 `json:"monthly_income,omitempty"`
	MonthlyCharges float64 `json:"monthly_charges,omitempty"`
	EmploymentType string  `json:"employment_type,omitempty"`
	Employer       string  `json:"employer,omitempty"`
}

// RealEstateData captures the client's property search preferences; the lead
// matcher scores active leads against these fields.
type RealEstateData struct {
	Budget    float64  `json:"budget,omitempty"`
	Locations []string `json:"locations,omitempty"`
	Typology  string   `json:"typology,omitempty"`
	Purpose   string   `json:"purpose,omitempty"`
}

// HasPreferences reports whether there is anything to match leads against.
func (r RealEstateData) HasPreferences() bool {
	return r.Budget > 0 || len(r.Locations) > 0 || r.Typology != ""
}

// Client is the intake record for a person seeking credit or a property.
//
// Invariants:
//   - NIF is exactly nine digits, unique across clients (store-enforced)
//   - Email is a well-formed address
//   - Status is active or archived
//
// Sub-objects are mutated field-by-field by later calls; there is no
// versioning beyond UpdatedAt (last write wins).
type Client struct {
	ID         id.ClientID    `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone,omitempty"`
	NIF        string         `json:"nif"`
	Personal   PersonalData   `json:"personal"`
	Financial  FinancialData  `json:"financial"`
	RealEstate RealEstateData `json:"realestate"`
	Status     Status         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func NewClient(clientID id.ClientID, name, emailAddr, phone, nif string, now time.Time) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if !validate.Email(emailAddr) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email is not valid")
	}
	nif = strings.TrimSpace(nif)
	if !validate.NIF(nif) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "nif must be exactly 9 digits")
	}
	return &Client{
		ID:        clientID,
		Name:      name,
		Email:     emailAddr,
		Phone:     strings.TrimSpace(phone),
		NIF:       nif,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Normalize cleans list fields before persisting.
func (c *Client) Normalize() {
	c.RealEstate.Locations = platstrings.DedupeAndTrim(c.RealEstate.Locations)
}
