// Package handler exposes the job queue to admins.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	jobsvc "brokerdesk/internal/jobs/service"
	"brokerdesk/internal/platform/middleware"
	"brokerdesk/internal/transport/http/shared"
	usermodels "brokerdesk/internal/user/models"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/requestcontext"
)

type Handler struct {
	logger    *slog.Logger
	jobs      *jobsvc.Service
	validator middleware.TokenValidator
}

func New(jobs *jobsvc.Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, jobs: jobs, validator: validator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Use(middleware.RequireRole(string(usermodels.RoleAdmin)))
		r.Get("/", h.handleList)
		r.Post("/", h.handleEnqueue)
		r.Get("/{jobID}", h.handleGet)
	})
}

func (h *Handler) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body struct {
		Kind    string          `json:"kind"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	job, err := h.jobs.Enqueue(ctx, body.Kind, body.Payload)
	if err != nil {
		h.logger.WarnContext(ctx, "enqueue job failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusAccepted, job)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListJobs(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	jobID, err := id.ParseJobID(chi.URLParam(r, "jobID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	job, err := h.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, job)
}
