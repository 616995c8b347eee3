package property

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/platform/sentinel"
	"brokerdesk/pkg/requestcontext"
)

// Service handles the listing inventory.
type Service struct {
	properties Store
	logger     *slog.Logger
}

func NewService(properties Store, logger *slog.Logger) *Service {
	return &Service{properties: properties, logger: logger}
}

type CreateParams struct {
	Reference    string  `json:"reference"`
	Address      string  `json:"address"`
	Municipality string  `json:"municipality"`
	Typology     string  `json:"typology"`
	Price        float64 `json:"price"`
	Area         float64 `json:"area"`
}

func (s *Service) CreateProperty(ctx context.Context, params CreateParams) (*Property, error) {
	property, err := NewProperty(id.PropertyID(uuid.New()), params.Reference, params.Price, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	property.Address = strings.TrimSpace(params.Address)
	property.Municipality = strings.TrimSpace(params.Municipality)
	property.Typology = strings.ToUpper(strings.TrimSpace(params.Typology))
	property.Area = params.Area

	if err := s.properties.Create(ctx, property); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "reference is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create property")
	}
	return property, nil
}

func (s *Service) GetProperty(ctx context.Context, propertyID id.PropertyID) (*Property, error) {
	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load property")
	}
	return property, nil
}

func (s *Service) ListProperties(ctx context.Context, filter Filter) ([]*Property, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "status must be available, reserved or sold")
	}
	properties, err := s.properties.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list properties")
	}
	return properties, nil
}

type UpdateParams struct {
	Address      *string  `json:"address"`
	Municipality *string  `json:"municipality"`
	Typology     *string  `json:"typology"`
	Price        *float64 `json:"price"`
	Area         *float64 `json:"area"`
	Status       *string  `json:"status"`
}

func (s *Service) UpdateProperty(ctx context.Context, propertyID id.PropertyID, params UpdateParams) (*Property, error) {
	property, err := s.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	if params.Address != nil {
		property.Address = strings.TrimSpace(*params.Address)
	}
	if params.Municipality != nil {
		property.Municipality = strings.TrimSpace(*params.Municipality)
	}
	if params.Typology != nil {
		property.Typology = strings.ToUpper(strings.TrimSpace(*params.Typology))
	}
	if params.Price != nil {
		if *params.Price < 0 {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "price cannot be negative")
		}
		property.Price = *params.Price
	}
	if params.Area != nil {
		property.Area = *params.Area
	}
	if params.Status != nil {
		status := Status(*params.Status)
		if !status.IsValid() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "status must be available, reserved or sold")
		}
		property.Status = status
	}
	property.UpdatedAt = requestcontext.Now(ctx)

	if err := s.properties.Update(ctx, property); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update property")
	}
	return property, nil
}
