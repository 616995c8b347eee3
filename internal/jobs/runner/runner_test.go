package runner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"brokerdesk/internal/audit"
	"brokerdesk/internal/jobs/models"
	"brokerdesk/internal/jobs/store"
	id "brokerdesk/pkg/domain"
)

type RunnerSuite struct {
	suite.Suite
	store    *store.Memory
	runner   *Runner
	enqueued int
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}

func (s *RunnerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.NewMemory()
	s.runner = New(s.store, time.Minute, audit.NewLogPublisher(logger), logger)
}

func (s *RunnerSuite) enqueue(kind string, payload json.RawMessage) *models.Job {
	// Distinct creation times keep the claim order deterministic.
	s.enqueued++
	at := time.Date(2025, 3, 10, 9, 0, s.enqueued, 0, time.UTC)
	job, err := models.NewJob(id.JobID(uuid.New()), kind, payload, at)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), job))
	return job
}

func (s *RunnerSuite) finished(jobID id.JobID) *models.Job {
	job, err := s.store.FindByID(context.Background(), jobID)
	s.Require().NoError(err)
	return job
}

func (s *RunnerSuite) TestDrainRunsHandlers() {
	var payloads []string
	s.runner.Register("echo", func(_ context.Context, payload json.RawMessage) error {
		payloads = append(payloads, string(payload))
		return nil
	})

	first := s.enqueue("echo", json.RawMessage(`{"n":1}`))
	second := s.enqueue("echo", nil)

	s.runner.drain(context.Background())

	s.Equal([]string{`{"n":1}`, `{}`}, payloads)
	s.Equal(models.StatusDone, s.finished(first.ID).Status)

	job := s.finished(second.ID)
	s.Equal(models.StatusDone, job.Status)
	s.NotNil(job.StartedAt)
	s.NotNil(job.FinishedAt)
	s.Empty(job.Error)
}

func (s *RunnerSuite) TestHandlerErrorFailsTheJob() {
	s.runner.Register("flaky", func(context.Context, json.RawMessage) error {
		return errors.New("upstream unavailable")
	})
	job := s.enqueue("flaky", nil)

	s.runner.drain(context.Background())

	failed := s.finished(job.ID)
	s.Equal(models.StatusFailed, failed.Status)
	s.Equal("upstream unavailable", failed.Error)
	s.NotNil(failed.FinishedAt)
}

func (s *RunnerSuite) TestHandlerPanicFailsTheJob() {
	s.runner.Register("boom", func(context.Context, json.RawMessage) error {
		panic("out of cheese")
	})
	boom := s.enqueue("boom", nil)

	var ran bool
	s.runner.Register("after", func(context.Context, json.RawMessage) error {
		ran = true
		return nil
	})
	after := s.enqueue("after", nil)

	s.runner.drain(context.Background())

	failed := s.finished(boom.ID)
	s.Equal(models.StatusFailed, failed.Status)
	s.Contains(failed.Error, "handler panic")
	s.Contains(failed.Error, "out of cheese")

	s.True(ran, "a panic must not stop the drain")
	s.Equal(models.StatusDone, s.finished(after.ID).Status)
}

func (s *RunnerSuite) TestUnknownKindFailsTheJob() {
	job := s.enqueue("nobody.home", nil)

	s.runner.drain(context.Background())

	failed := s.finished(job.ID)
	s.Equal(models.StatusFailed, failed.Status)
	s.Contains(failed.Error, `no handler for kind "nobody.home"`)
}

func (s *RunnerSuite) TestRunStopsWithTheContext() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.runner.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		s.Fail("runner did not stop after cancellation")
	}
}
