//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"brokerdesk/internal/pipeline"
	"brokerdesk/internal/process/models"
	"brokerdesk/internal/process/store"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
	"brokerdesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "processes"))
}

func newTestProcess(agentID id.UserID) *models.Process {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Process{
		ID:       id.ProcessID(uuid.New()),
		ClientID: id.ClientID(uuid.New()),
		AgentID:  agentID,
		Type:     models.TypeCredit,
		Column:   pipeline.First(),
		Status:   models.StatusOpen,
		History: []models.HistoryEntry{
			{At: now, UserID: agentID, Note: "process created"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()
	process := newTestProcess(id.UserID(uuid.New()))
	s.Require().NoError(s.store.Create(ctx, process))

	found, err := s.store.FindByID(ctx, process.ID)
	s.Require().NoError(err)
	s.Equal(process.ClientID, found.ClientID)
	s.Equal(process.AgentID, found.AgentID)
	s.Equal(pipeline.First(), found.Column)
	s.Require().Len(found.History, 1)
	s.Equal("process created", found.History[0].Note)
}

func (s *PostgresStoreSuite) TestDuplicateIDConflicts() {
	ctx := context.Background()
	process := newTestProcess(id.UserID(uuid.New()))
	s.Require().NoError(s.store.Create(ctx, process))

	err := s.store.Create(ctx, process)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestFindMissingIsNotFound() {
	_, err := s.store.FindByID(context.Background(), id.ProcessID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdatePersistsHistory() {
	ctx := context.Background()
	agentID := id.UserID(uuid.New())
	process := newTestProcess(agentID)
	s.Require().NoError(s.store.Create(ctx, process))

	now := time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(process.MoveTo(pipeline.ColumnQualification, agentID, now))
	s.Require().NoError(s.store.Update(ctx, process))

	found, err := s.store.FindByID(ctx, process.ID)
	s.Require().NoError(err)
	s.Equal(pipeline.ColumnQualification, found.Column)
	s.Require().Len(found.History, 2)
	s.Contains(found.History[1].Note, "moved from intake to qualification")
}

func (s *PostgresStoreSuite) TestUpdateMissingIsNotFound() {
	err := s.store.Update(context.Background(), newTestProcess(id.UserID(uuid.New())))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListFilters() {
	ctx := context.Background()
	agentID := id.UserID(uuid.New())

	mine := newTestProcess(agentID)
	other := newTestProcess(id.UserID(uuid.New()))
	closed := newTestProcess(agentID)
	closed.Status = models.StatusClosed
	for _, process := range []*models.Process{mine, other, closed} {
		s.Require().NoError(s.store.Create(ctx, process))
	}

	s.Run("by agent", func() {
		found, err := s.store.List(ctx, store.Filter{AgentID: agentID})
		s.Require().NoError(err)
		s.Len(found, 2)
	})

	s.Run("by agent and status", func() {
		found, err := s.store.List(ctx, store.Filter{AgentID: agentID, Status: models.StatusOpen})
		s.Require().NoError(err)
		s.Require().Len(found, 1)
		s.Equal(mine.ID, found[0].ID)
	})

	s.Run("by column", func() {
		found, err := s.store.List(ctx, store.Filter{Column: pipeline.First()})
		s.Require().NoError(err)
		s.Len(found, 3)
	})

	s.Run("by client", func() {
		found, err := s.store.List(ctx, store.Filter{ClientID: other.ClientID})
		s.Require().NoError(err)
		s.Require().Len(found, 1)
		s.Equal(other.ID, found[0].ID)
	})
}
