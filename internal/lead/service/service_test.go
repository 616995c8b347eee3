package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"brokerdesk/internal/audit"
	clientmodels "brokerdesk/internal/client/models"
	"brokerdesk/internal/lead/metrics"
	"brokerdesk/internal/lead/models"
	"brokerdesk/internal/lead/store"
	"brokerdesk/internal/lead/store/mock"
	notifmodels "brokerdesk/internal/notification/models"
	"brokerdesk/internal/property"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/platform/sentinel"
)

type stubClientSource struct {
	clients []*clientmodels.Client
}

func (c *stubClientSource) GetClient(_ context.Context, clientID id.ClientID) (*clientmodels.Client, error) {
	for _, client := range c.clients {
		if client.ID == clientID {
			return client, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
}

func (c *stubClientSource) ListClients(context.Context, string) ([]*clientmodels.Client, error) {
	return c.clients, nil
}

type stubPropertyCreator struct {
	created []property.CreateParams
}

func (p *stubPropertyCreator) CreateProperty(_ context.Context, params property.CreateParams) (*property.Property, error) {
	p.created = append(p.created, params)
	return &property.Property{
		ID:           id.PropertyID(uuid.New()),
		Reference:    params.Reference,
		Address:      params.Address,
		Municipality: params.Municipality,
		Typology:     params.Typology,
		Price:        params.Price,
		Status:       property.StatusAvailable,
	}, nil
}

type stubAgentFinder struct {
	agents map[id.ClientID]id.UserID
}

func (f *stubAgentFinder) AgentForClient(_ context.Context, clientID id.ClientID) (id.UserID, bool, error) {
	agentID, ok := f.agents[clientID]
	return agentID, ok, nil
}

type sentNotification struct {
	userID  id.UserID
	kind    notifmodels.Kind
	message string
}

type stubNotifier struct {
	sent []sentNotification
}

func (n *stubNotifier) Notify(_ context.Context, userID id.UserID, kind notifmodels.Kind, message string, _ id.ProcessID) error {
	n.sent = append(n.sent, sentNotification{userID: userID, kind: kind, message: message})
	return nil
}

type LeadServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	leads      *mock.MockStore
	clients    *stubClientSource
	properties *stubPropertyCreator
	agents     *stubAgentFinder
	notifier   *stubNotifier
	service    *Service
}

func TestLeadServiceSuite(t *testing.T) {
	suite.Run(t, new(LeadServiceSuite))
}

func (s *LeadServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.ctrl = gomock.NewController(s.T())
	s.leads = mock.NewMockStore(s.ctrl)
	s.clients = &stubClientSource{}
	s.properties = &stubPropertyCreator{}
	s.agents = &stubAgentFinder{agents: map[id.ClientID]id.UserID{}}
	s.notifier = &stubNotifier{}
	s.service = New(s.leads, s.clients, s.properties, s.agents, s.notifier,
		audit.NewLogPublisher(logger), metrics.NewNop(), logger)
}

func activeLead(title, municipality, typology string, price float64) *models.Lead {
	return &models.Lead{
		ID:           id.LeadID(uuid.New()),
		Source:       models.SourceScraped,
		Title:        title,
		Municipality: municipality,
		Typology:     typology,
		Price:        price,
		Status:       models.StatusActive,
	}
}

func (s *LeadServiceSuite) TestCreateLead() {
	s.Run("defaults to manual source and uppercases typology", func() {
		s.leads.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		lead, err := s.service.CreateLead(context.Background(), CreateParams{
			Title:        "T2 near the river",
			Municipality: " Almada ",
			Typology:     "t2",
			Price:        210000,
		})
		s.Require().NoError(err)
		s.Equal(models.SourceManual, lead.Source)
		s.Equal("Almada", lead.Municipality)
		s.Equal("T2", lead.Typology)
	})

	s.Run("rejects an unknown source", func() {
		_, err := s.service.CreateLead(context.Background(), CreateParams{
			Source: "carrier_pigeon",
			Title:  "T1",
			Price:  100000,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects an empty title", func() {
		_, err := s.service.CreateLead(context.Background(), CreateParams{Price: 100000})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *LeadServiceSuite) TestGetLead() {
	leadID := id.LeadID(uuid.New())
	s.leads.EXPECT().FindByID(gomock.Any(), leadID).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.GetLead(context.Background(), leadID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *LeadServiceSuite) TestListLeads() {
	s.Run("rejects an unknown status filter", func() {
		_, err := s.service.ListLeads(context.Background(), "binned", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("passes filters through", func() {
		s.leads.EXPECT().
			List(gomock.Any(), store.Filter{Status: models.StatusActive, Source: models.SourceScraped}).
			Return([]*models.Lead{activeLead("T3 Cascais", "Cascais", "T3", 450000)}, nil)

		leads, err := s.service.ListLeads(context.Background(), "active", "scraped")
		s.Require().NoError(err)
		s.Len(leads, 1)
	})
}

func (s *LeadServiceSuite) TestDiscardLead() {
	s.Run("discards an active lead", func() {
		lead := activeLead("T2", "Lisboa", "T2", 200000)
		s.leads.EXPECT().FindByID(gomock.Any(), lead.ID).Return(lead, nil)
		s.leads.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		discarded, err := s.service.DiscardLead(context.Background(), lead.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusDiscarded, discarded.Status)
	})

	s.Run("converted leads stay converted", func() {
		lead := activeLead("T2", "Lisboa", "T2", 200000)
		lead.Status = models.StatusConverted
		s.leads.EXPECT().FindByID(gomock.Any(), lead.ID).Return(lead, nil)

		_, err := s.service.DiscardLead(context.Background(), lead.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *LeadServiceSuite) TestConvertToProperty() {
	lead := activeLead("Moradia em Sintra", "Sintra", "T4", 520000)
	s.leads.EXPECT().FindByID(gomock.Any(), lead.ID).Return(lead, nil)
	s.leads.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	listed, err := s.service.ConvertToProperty(context.Background(), lead.ID, "ref-042")
	s.Require().NoError(err)
	s.Equal("REF-042", listed.Reference)
	s.Equal(models.StatusConverted, lead.Status)

	s.Require().Len(s.properties.created, 1)
	s.Equal("Moradia em Sintra", s.properties.created[0].Address)
	s.Equal("Sintra", s.properties.created[0].Municipality)
	s.Equal(520000.0, s.properties.created[0].Price)
}

func (s *LeadServiceSuite) TestMatchesForClient() {
	client := &clientmodels.Client{
		ID:   id.ClientID(uuid.New()),
		Name: "Rita Gomes",
		RealEstate: clientmodels.RealEstateData{
			Budget:    300000,
			Locations: []string{"Lisboa"},
			Typology:  "T2",
		},
	}
	s.clients.clients = []*clientmodels.Client{client}

	hit := activeLead("T2 Arroios", "Lisboa", "T2", 280000)
	miss := activeLead("T5 Quinta", "Braga", "T5", 900000)
	s.leads.EXPECT().
		List(gomock.Any(), store.Filter{Status: models.StatusActive}).
		Return([]*models.Lead{miss, hit}, nil)

	matches, err := s.service.MatchesForClient(context.Background(), client.ID)
	s.Require().NoError(err)
	s.Require().Len(matches, 1)
	s.Equal(hit.ID, matches[0].Lead.ID)
}

func (s *LeadServiceSuite) TestSweepMatches() {
	agentID := id.UserID(uuid.New())
	matched := &clientmodels.Client{
		ID:   id.ClientID(uuid.New()),
		Name: "Rita Gomes",
		RealEstate: clientmodels.RealEstateData{
			Budget:    300000,
			Locations: []string{"Lisboa"},
			Typology:  "T2",
		},
	}
	noPreferences := &clientmodels.Client{
		ID:   id.ClientID(uuid.New()),
		Name: "Nuno Costa",
	}
	orphan := &clientmodels.Client{
		ID:   id.ClientID(uuid.New()),
		Name: "Sem Agente",
		RealEstate: clientmodels.RealEstateData{
			Budget:    300000,
			Locations: []string{"Lisboa"},
			Typology:  "T2",
		},
	}
	s.clients.clients = []*clientmodels.Client{matched, noPreferences, orphan}
	s.agents.agents[matched.ID] = agentID

	since := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	s.leads.EXPECT().
		List(gomock.Any(), store.Filter{Status: models.StatusActive, CreatedAfter: since}).
		Return([]*models.Lead{activeLead("T2 Arroios", "Lisboa", "T2", 280000)}, nil)

	notified, err := s.service.SweepMatches(context.Background(), since)
	s.Require().NoError(err)
	s.Equal(1, notified)

	s.Require().Len(s.notifier.sent, 1)
	s.Equal(agentID, s.notifier.sent[0].userID)
	s.Equal(notifmodels.KindLeadMatch, s.notifier.sent[0].kind)
	s.Contains(s.notifier.sent[0].message, "T2 Arroios")
	s.Contains(s.notifier.sent[0].message, "Rita Gomes")
}

func (s *LeadServiceSuite) TestSweepMatchesWithNoNewLeads() {
	since := time.Now()
	s.leads.EXPECT().
		List(gomock.Any(), store.Filter{Status: models.StatusActive, CreatedAfter: since}).
		Return(nil, nil)

	notified, err := s.service.SweepMatches(context.Background(), since)
	s.Require().NoError(err)
	s.Zero(notified)
}
