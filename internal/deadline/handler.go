package deadline

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brokerdesk/internal/platform/middleware"
	"brokerdesk/internal/transport/http/shared"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/requestcontext"
)

// Handler exposes deadline routes nested under a process.
type Handler struct {
	logger    *slog.Logger
	deadlines *Service
	validator middleware.TokenValidator
}

func NewHandler(deadlines *Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, deadlines: deadlines, validator: validator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/processes/{processID}/deadlines", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Post("/{deadlineID}/done", h.handleMarkDone)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var params CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	deadline, err := h.deadlines.CreateDeadline(ctx, processID, params)
	if err != nil {
		h.logger.WarnContext(ctx, "create deadline failed",
			"error", err.Error(),
			"process_id", processID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, deadline)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	deadlines, err := h.deadlines.ListForProcess(r.Context(), processID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"deadlines": deadlines})
}

func (h *Handler) handleMarkDone(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	deadlineID, err := id.ParseDeadlineID(chi.URLParam(r, "deadlineID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	deadline, err := h.deadlines.MarkDone(r.Context(), processID, deadlineID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, deadline)
}
