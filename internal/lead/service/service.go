// Package service orchestrates lead capture, matching and conversion.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"brokerdesk/internal/audit"
	clientmodels "brokerdesk/internal/client/models"
	"brokerdesk/internal/lead/matcher"
	"brokerdesk/internal/lead/metrics"
	"brokerdesk/internal/lead/models"
	"brokerdesk/internal/lead/store"
	notifmodels "brokerdesk/internal/notification/models"
	"brokerdesk/internal/property"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/platform/sentinel"
	"brokerdesk/pkg/requestcontext"
)

// ClientSource is the slice of the client service the matcher needs.
type ClientSource interface {
	GetClient(ctx context.Context, clientID id.ClientID) (*clientmodels.Client, error)
	ListClients(ctx context.Context, status string) ([]*clientmodels.Client, error)
}

// PropertyCreator lists a converted lead in the property inventory.
type PropertyCreator interface {
	CreateProperty(ctx context.Context, params property.CreateParams) (*property.Property, error)
}

// AgentFinder resolves which agent should hear about a match for a client.
type AgentFinder interface {
	AgentForClient(ctx context.Context, clientID id.ClientID) (id.UserID, bool, error)
}

// Notifier delivers in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, userID id.UserID, kind notifmodels.Kind, message string, processID id.ProcessID) error
}

// Service handles the lead aggregate.
type Service struct {
	leads      store.Store
	clients    ClientSource
	properties PropertyCreator
	agents     AgentFinder
	notifier   Notifier
	auditor    audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func New(leads store.Store, clients ClientSource, properties PropertyCreator, agents AgentFinder, notifier Notifier, auditor audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		leads:      leads,
		clients:    clients,
		properties: properties,
		agents:     agents,
		notifier:   notifier,
		auditor:    auditor,
		metrics:    m,
		logger:     logger,
	}
}

type CreateParams struct {
	Source       models.Source `json:"source"`
	URL          string        `json:"url"`
	Title        string        `json:"title"`
	Municipality string        `json:"municipality"`
	Typology     string        `json:"typology"`
	Price        float64       `json:"price"`
}

func (s *Service) CreateLead(ctx context.Context, params CreateParams) (*models.Lead, error) {
	source := params.Source
	if source == "" {
		source = models.SourceManual
	}
	lead, err := models.NewLead(id.LeadID(uuid.New()), source, params.Title, params.Price, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	lead.URL = strings.TrimSpace(params.URL)
	lead.Municipality = strings.TrimSpace(params.Municipality)
	lead.Typology = strings.ToUpper(strings.TrimSpace(params.Typology))

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create lead")
	}
	s.metrics.Created.WithLabelValues(string(lead.Source)).Inc()
	return lead, nil
}

func (s *Service) GetLead(ctx context.Context, leadID id.LeadID) (*models.Lead, error) {
	lead, err := s.leads.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "lead not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load lead")
	}
	return lead, nil
}

func (s *Service) ListLeads(ctx context.Context, status, source string) ([]*models.Lead, error) {
	filter := store.Filter{}
	if status != "" {
		st := models.Status(status)
		if !st.IsValid() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "status must be active, discarded or converted")
		}
		filter.Status = st
	}
	if source != "" {
		src := models.Source(source)
		if !src.IsValid() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "source must be manual or scraped")
		}
		filter.Source = src
	}
	leads, err := s.leads.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list leads")
	}
	return leads, nil
}

// DiscardLead bins a lead; converted leads stay converted.
func (s *Service) DiscardLead(ctx context.Context, leadID id.LeadID) (*models.Lead, error) {
	lead, err := s.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Status == models.StatusConverted {
		return nil, dErrors.New(dErrors.CodeConflict, "lead is already converted")
	}
	lead.Status = models.StatusDiscarded
	lead.UpdatedAt = requestcontext.Now(ctx)
	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update lead")
	}
	return lead, nil
}

// MatchesForClient ranks active leads against one client's preferences.
func (s *Service) MatchesForClient(ctx context.Context, clientID id.ClientID) ([]matcher.Match, error) {
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	leads, err := s.leads.List(ctx, store.Filter{Status: models.StatusActive})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list leads")
	}
	return matcher.Rank(client.RealEstate, leads), nil
}

// ConvertToProperty lists a lead in the inventory under the given reference
// and marks the lead converted.
func (s *Service) ConvertToProperty(ctx context.Context, leadID id.LeadID, reference string) (*property.Property, error) {
	lead, err := s.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Status == models.StatusConverted {
		return nil, dErrors.New(dErrors.CodeConflict, "lead is already converted")
	}

	listed, err := s.properties.CreateProperty(ctx, property.CreateParams{
		Reference:    reference,
		Address:      lead.Title,
		Municipality: lead.Municipality,
		Typology:     lead.Typology,
		Price:        lead.Price,
	})
	if err != nil {
		return nil, err
	}

	lead.Status = models.StatusConverted
	lead.UpdatedAt = requestcontext.Now(ctx)
	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update lead")
	}
	s.metrics.Converted.Inc()

	audit.Emit(ctx, s.auditor, s.logger, audit.Event{
		Category:  audit.CategoryOperations,
		Action:    audit.ActionLeadConverted,
		ActorID:   requestcontext.UserID(ctx),
		Subject:   listed.Reference,
		RequestID: requestcontext.RequestID(ctx),
		At:        requestcontext.Now(ctx),
	})
	return listed, nil
}

// SweepMatches scores leads captured after the cutoff against every active
// client and notifies the client's agent of each hit. Returns the number of
// notifications sent. Run from the background worker, not a request.
func (s *Service) SweepMatches(ctx context.Context, since time.Time) (int, error) {
	leads, err := s.leads.List(ctx, store.Filter{Status: models.StatusActive, CreatedAfter: since})
	if err != nil {
		return 0, fmt.Errorf("list leads: %w", err)
	}
	if len(leads) == 0 {
		return 0, nil
	}
	clients, err := s.clients.ListClients(ctx, string(clientmodels.StatusActive))
	if err != nil {
		return 0, fmt.Errorf("list clients: %w", err)
	}

	notified := 0
	for _, client := range clients {
		matches := matcher.Rank(client.RealEstate, leads)
		if len(matches) == 0 {
			continue
		}
		s.metrics.Matches.Add(float64(len(matches)))

		agentID, ok, err := s.agents.AgentForClient(ctx, client.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "agent lookup failed during match sweep",
				slog.String("client_id", client.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if !ok {
			continue
		}
		for _, match := range matches {
			message := fmt.Sprintf("lead %q matches %s (score %.2f)",
				match.Lead.Title, client.Name, match.Score)
			if err := s.notifier.Notify(ctx, agentID, notifmodels.KindLeadMatch, message, id.ProcessID{}); err != nil {
				s.logger.WarnContext(ctx, "match notification failed",
					slog.String("lead_id", match.Lead.ID.String()),
					slog.String("error", err.Error()))
				continue
			}
			notified++
		}
	}
	return notified, nil
}
