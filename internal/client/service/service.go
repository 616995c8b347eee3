// Package service orchestrates client intake and maintenance.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"brokerdesk/internal/audit"
	"brokerdesk/internal/client/models"
	"brokerdesk/internal/client/store"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/platform/sentinel"
	"brokerdesk/pkg/requestcontext"
	"brokerdesk/pkg/validate"
)

// Service handles the client aggregate.
type Service struct {
	clients store.Store
	auditor audit.Publisher
	logger  *slog.Logger
}

func New(clients store.Store, auditor audit.Publisher, logger *slog.Logger) *Service {
	return &Service{clients: clients, auditor: auditor, logger: logger}
}

// CreateParams carries the intake fields; sub-objects are optional.
type CreateParams struct {
	Name       string                `json:"name"`
	Email      string                `json:"email"`
	Phone      string                `json:"phone"`
	NIF        string                `json:"nif"`
	Personal   models.PersonalData   `json:"personal"`
	Financial  models.FinancialData  `json:"financial"`
	RealEstate models.RealEstateData `json:"realestate"`
}

func (s *Service) CreateClient(ctx context.Context, params CreateParams) (*models.Client, error) {
	client, err := models.NewClient(id.ClientID(uuid.New()),
		params.Name, params.Email, params.Phone, params.NIF, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	client.Personal = params.Personal
	client.Financial = params.Financial
	client.RealEstate = params.RealEstate
	client.Normalize()

	if err := s.clients.Create(ctx, client); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "nif is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client")
	}

	audit.Emit(ctx, s.auditor, s.logger, audit.Event{
		Category:  audit.CategoryCompliance,
		Action:    audit.ActionClientCreated,
		ActorID:   requestcontext.UserID(ctx),
		Subject:   client.NIF,
		RequestID: requestcontext.RequestID(ctx),
		At:        requestcontext.Now(ctx),
	})
	return client, nil
}

func (s *Service) GetClient(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
	}
	return client, nil
}

func (s *Service) ListClients(ctx context.Context, status string) ([]*models.Client, error) {
	filter := store.Filter{}
	if status != "" {
		st := models.Status(status)
		if !st.IsValid() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "status must be active or archived")
		}
		filter.Status = st
	}
	clients, err := s.clients.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clients")
	}
	return clients, nil
}

// Exists reports whether a client record is present, without the not-found
// error translation other modules do not want.
func (s *Service) Exists(ctx context.Context, clientID id.ClientID) (bool, error) {
	_, err := s.clients.FindByID(ctx, clientID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateParams applies field-by-field mutation: nil pointers leave fields
// untouched, matching the document-store update model.
type UpdateParams struct {
	Name       *string                `json:"name"`
	Email      *string                `json:"email"`
	Phone      *string                `json:"phone"`
	Personal   *models.PersonalData   `json:"personal"`
	Financial  *models.FinancialData  `json:"financial"`
	RealEstate *models.RealEstateData `json:"realestate"`
	Status     *string                `json:"status"`
}

func (s *Service) UpdateClient(ctx context.Context, clientID id.ClientID, params UpdateParams) (*models.Client, error) {
	client, err := s.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "name is required")
		}
		client.Name = name
	}
	if params.Email != nil {
		emailAddr := strings.ToLower(strings.TrimSpace(*params.Email))
		if !validate.Email(emailAddr) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "email is not valid")
		}
		client.Email = emailAddr
	}
	if params.Phone != nil {
		client.Phone = strings.TrimSpace(*params.Phone)
	}
	if params.Personal != nil {
		client.Personal = *params.Personal
	}
	if params.Financial != nil {
		client.Financial = *params.Financial
	}
	if params.RealEstate != nil {
		client.RealEstate = *params.RealEstate
	}
	if params.Status != nil {
		st := models.Status(*params.Status)
		if !st.IsValid() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "status must be active or archived")
		}
		client.Status = st
	}
	client.Normalize()
	client.UpdatedAt = requestcontext.Now(ctx)

	if err := s.clients.Update(ctx, client); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update client")
	}

	audit.Emit(ctx, s.auditor, s.logger, audit.Event{
		Category:  audit.CategoryCompliance,
		Action:    audit.ActionClientUpdated,
		ActorID:   requestcontext.UserID(ctx),
		Subject:   client.NIF,
		RequestID: requestcontext.RequestID(ctx),
		At:        requestcontext.Now(ctx),
	})
	return client, nil
}
