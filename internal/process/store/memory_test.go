package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"brokerdesk/internal/pipeline"
	"brokerdesk/internal/process/models"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

type ProcessStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func TestProcessStoreSuite(t *testing.T) {
	suite.Run(t, new(ProcessStoreSuite))
}

func (s *ProcessStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func (s *ProcessStoreSuite) newProcess(agentID id.UserID, createdAt time.Time) *models.Process {
	return &models.Process{
		ID:        id.ProcessID(uuid.New()),
		ClientID:  id.ClientID(uuid.New()),
		AgentID:   agentID,
		Type:      models.TypeCredit,
		Column:    pipeline.First(),
		Status:    models.StatusOpen,
		History:   []models.HistoryEntry{{At: createdAt, Note: "process created"}},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func (s *ProcessStoreSuite) TestCreateAndFind() {
	s.Run("round trips a process", func() {
		process := s.newProcess(id.UserID(uuid.New()), time.Now())
		s.Require().NoError(s.store.Create(s.ctx, process))

		found, err := s.store.FindByID(s.ctx, process.ID)
		s.Require().NoError(err)
		s.Equal(process.Column, found.Column)
		s.Len(found.History, 1)
	})

	s.Run("rejects duplicate IDs", func() {
		process := s.newProcess(id.UserID(uuid.New()), time.Now())
		s.Require().NoError(s.store.Create(s.ctx, process))
		s.Require().ErrorIs(s.store.Create(s.ctx, process), sentinel.ErrConflict)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.ProcessID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ProcessStoreSuite) TestFindReturnsCopies() {
	process := s.newProcess(id.UserID(uuid.New()), time.Now())
	s.Require().NoError(s.store.Create(s.ctx, process))

	found, err := s.store.FindByID(s.ctx, process.ID)
	s.Require().NoError(err)
	found.Column = pipeline.ColumnArchived
	found.History = append(found.History, models.HistoryEntry{Note: "tampered"})

	again, err := s.store.FindByID(s.ctx, process.ID)
	s.Require().NoError(err)
	s.Equal(pipeline.First(), again.Column)
	s.Len(again.History, 1)
}

func (s *ProcessStoreSuite) TestListFilters() {
	agentA := id.UserID(uuid.New())
	agentB := id.UserID(uuid.New())
	base := time.Now()

	first := s.newProcess(agentA, base)
	second := s.newProcess(agentA, base.Add(time.Minute))
	second.Column = pipeline.ColumnQualification
	third := s.newProcess(agentB, base.Add(2*time.Minute))
	third.Status = models.StatusClosed

	for _, process := range []*models.Process{first, second, third} {
		s.Require().NoError(s.store.Create(s.ctx, process))
	}

	s.Run("no filter returns everything in creation order", func() {
		all, err := s.store.List(s.ctx, Filter{})
		s.Require().NoError(err)
		s.Require().Len(all, 3)
		s.Equal(first.ID, all[0].ID)
		s.Equal(third.ID, all[2].ID)
	})

	s.Run("filters by agent", func() {
		mine, err := s.store.List(s.ctx, Filter{AgentID: agentA})
		s.Require().NoError(err)
		s.Len(mine, 2)
	})

	s.Run("filters by column", func() {
		qualified, err := s.store.List(s.ctx, Filter{Column: pipeline.ColumnQualification})
		s.Require().NoError(err)
		s.Require().Len(qualified, 1)
		s.Equal(second.ID, qualified[0].ID)
	})

	s.Run("filters by status", func() {
		open, err := s.store.List(s.ctx, Filter{Status: models.StatusOpen})
		s.Require().NoError(err)
		s.Len(open, 2)
	})

	s.Run("filters by client", func() {
		scoped, err := s.store.List(s.ctx, Filter{ClientID: first.ClientID})
		s.Require().NoError(err)
		s.Require().Len(scoped, 1)
		s.Equal(first.ID, scoped[0].ID)
	})
}

func (s *ProcessStoreSuite) TestUpdate() {
	s.Run("persists changes", func() {
		process := s.newProcess(id.UserID(uuid.New()), time.Now())
		s.Require().NoError(s.store.Create(s.ctx, process))

		process.Column = pipeline.ColumnBankSubmission
		s.Require().NoError(s.store.Update(s.ctx, process))

		found, err := s.store.FindByID(s.ctx, process.ID)
		s.Require().NoError(err)
		s.Equal(pipeline.ColumnBankSubmission, found.Column)
	})

	s.Run("unknown process returns ErrNotFound", func() {
		ghost := s.newProcess(id.UserID(uuid.New()), time.Now())
		s.Require().ErrorIs(s.store.Update(s.ctx, ghost), sentinel.ErrNotFound)
	})
}
