package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"brokerdesk/internal/audit"
	"brokerdesk/internal/client/models"
	clientsvc "brokerdesk/internal/client/service"
	"brokerdesk/internal/client/store"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/testutil"
)

type ClientHandlerSuite struct {
	suite.Suite
	router    chi.Router
	validator *testutil.StaticValidator
	now       time.Time
}

func TestClientHandlerSuite(t *testing.T) {
	suite.Run(t, new(ClientHandlerSuite))
}

func (s *ClientHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := clientsvc.New(store.NewMemory(), audit.NewLogPublisher(logger), logger)
	s.validator = &testutil.StaticValidator{
		UserID: id.UserID(uuid.New()),
		Role:   "manager",
		Email:  "manager@office.pt",
	}
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.router = chi.NewRouter()
	New(service, s.validator, logger).Register(s.router)
}

func (s *ClientHandlerSuite) do(method, target string, body any) *httptest.ResponseRecorder {
	req := testutil.Authorize(testutil.NewJSONRequest(s.T(), method, target, body))
	req = testutil.WithFixedTime(req, s.now)
	return testutil.DoRequest(s.router, req)
}

func (s *ClientHandlerSuite) createClient(nif string) models.Client {
	rec := s.do(http.MethodPost, "/clients", map[string]any{
		"name":  "Maria Santos",
		"email": "maria@example.pt",
		"nif":   nif,
	})
	testutil.AssertStatus(s.T(), rec, http.StatusCreated)
	return *testutil.UnmarshalResponse[models.Client](s.T(), rec)
}

func (s *ClientHandlerSuite) TestCreate() {
	s.Run("valid intake returns the record", func() {
		client := s.createClient("123456789")
		s.Equal("Maria Santos", client.Name)
		s.Equal(models.StatusActive, client.Status)
		s.True(client.CreatedAt.Equal(s.now))
		s.False(client.ID.IsZero())
	})

	s.Run("bad nif is rejected", func() {
		rec := s.do(http.MethodPost, "/clients", map[string]any{
			"name":  "Maria Santos",
			"email": "maria@example.pt",
			"nif":   "12345",
		})
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	s.Run("duplicate nif conflicts", func() {
		s.createClient("987654321")
		rec := s.do(http.MethodPost, "/clients", map[string]any{
			"name":  "Outro Cliente",
			"email": "outro@example.pt",
			"nif":   "987654321",
		})
		testutil.AssertStatusAndError(s.T(), rec, http.StatusConflict, string(dErrors.CodeConflict))
	})

	s.Run("malformed body is a bad request", func() {
		req := testutil.Authorize(testutil.NewRequestWithBody(s.T(), http.MethodPost, "/clients", "{"))
		rec := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rec, http.StatusBadRequest)
	})
}

func (s *ClientHandlerSuite) TestGet() {
	client := s.createClient("123456789")

	s.Run("found", func() {
		rec := s.do(http.MethodGet, "/clients/"+client.ID.String(), nil)
		testutil.AssertStatus(s.T(), rec, http.StatusOK)
		found := testutil.UnmarshalResponse[models.Client](s.T(), rec)
		s.Equal(client.ID, found.ID)
	})

	s.Run("unknown id is not found", func() {
		rec := s.do(http.MethodGet, "/clients/"+uuid.NewString(), nil)
		testutil.AssertStatusAndError(s.T(), rec, http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("malformed id is rejected", func() {
		rec := s.do(http.MethodGet, "/clients/not-a-uuid", nil)
		testutil.AssertStatus(s.T(), rec, http.StatusBadRequest)
	})
}

func (s *ClientHandlerSuite) TestList() {
	s.createClient("123456789")
	s.createClient("987654321")

	rec := s.do(http.MethodGet, "/clients?status=active", nil)
	testutil.AssertStatus(s.T(), rec, http.StatusOK)

	body := testutil.UnmarshalResponse[struct {
		Clients []models.Client `json:"clients"`
	}](s.T(), rec)
	s.Len(body.Clients, 2)

	rec = s.do(http.MethodGet, "/clients?status=frozen", nil)
	testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *ClientHandlerSuite) TestUpdate() {
	client := s.createClient("123456789")

	rec := s.do(http.MethodPatch, "/clients/"+client.ID.String(), map[string]any{
		"phone": "+351 912 345 678",
		"realestate": map[string]any{
			"budget":    250000,
			"locations": []string{"Lisboa", " Lisboa ", "Almada"},
			"typology":  "T2",
		},
	})
	testutil.AssertStatus(s.T(), rec, http.StatusOK)

	updated := testutil.UnmarshalResponse[models.Client](s.T(), rec)
	s.Equal("+351 912 345 678", updated.Phone)
	s.Equal("Maria Santos", updated.Name, "untouched fields survive")
	s.Equal([]string{"Lisboa", "Almada"}, updated.RealEstate.Locations, "locations are deduped")
}

func (s *ClientHandlerSuite) TestAuthRequired() {
	s.Run("missing token", func() {
		rec := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/clients"))
		testutil.AssertStatus(s.T(), rec, http.StatusUnauthorized)
	})

	s.Run("rejected token", func() {
		s.validator.Fail = true
		defer func() { s.validator.Fail = false }()

		rec := s.do(http.MethodGet, "/clients", nil)
		testutil.AssertStatus(s.T(), rec, http.StatusUnauthorized)
	})
}
