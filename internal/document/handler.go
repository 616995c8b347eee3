package document

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

// Handler exposes document routes nested under a process.
type Handler struct {
	logger    *slog.Logger
	documents *Service
	validator middleware.TokenValidator
}

func NewHandler(documents *Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, documents: documents, validator: validator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/processes/{processID}/documents", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/", h.handleList)
		r.Post("/", h.handleRegister)
		r.Get("/checklist", h.handleChecklist)
		r.Patch("/{documentID}", h.handleSetStatus)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var params RegisterParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	document, err := h.documents.Register(ctx, processID, params)
	if err != nil {
		h.logger.WarnContext(ctx, "register document failed",
			"error", err.Error(),
			"process_id", processID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, document)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	documents, err := h.documents.ListForProcess(r.Context(), processID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"documents": documents})
}

func (h *Handler) handleChecklist(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	checklist, err := h.documents.ChecklistForProcess(r.Context(), processID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, checklist)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var params SetStatusParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	document, err := h.documents.SetStatus(ctx, processID, documentID, params)
	if err != nil {
		h.logger.WarnContext(ctx, "set document status failed",
			"error", err.Error(),
			"process_id", processID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, document)
}
