package models

import (
	"strings"
	"time"

	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
)

// Source records where a lead came from.
type Source string

const (
	SourceManual  Source = "manual"
	SourceScraped Source = "scraped"
)

func (s Source) IsValid() bool {
	return s == SourceManual || s == SourceScraped
}

// Status follows a lead from capture to conversion or the bin.
type Status string

const (
	StatusActive    Status = "active"
	StatusDiscarded Status = "discarded"
	StatusConverted Status = "converted"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusDiscarded || s == StatusConverted
}

// Lead is a raw property sighting, typically pasted in from a portal
// listing. Leads carry just enough fields to score against client
// preferences.
type Lead struct {
	ID           id.LeadID `json:"id"`
	Source       Source    `json:"source"`
	URL          string    `json:"url,omitempty"`
	Title        string    `json:"title"`
	Municipality string    `json:"municipality"`
	Typology     string    `json:"typology"`
	Price        float64   `json:"price"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewLead(leadID id.LeadID, source Source, title string, price float64, now time.Time) (*Lead, error) {
	if !source.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "source must be manual or scraped")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	if price < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "price cannot be negative")
	}
	return &Lead{
		ID:        leadID,
		Source:    source,
		Title:     title,
		Price:     price,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
