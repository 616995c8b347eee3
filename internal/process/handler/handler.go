// Package handler exposes the Kanban pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brokerdesk/internal/platform/middleware"
	"brokerdesk/internal/process/models"
	processsvc "brokerdesk/internal/process/service"
	"brokerdesk/internal/transport/http/shared"
	usermodels "brokerdesk/internal/user/models"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/requestcontext"
)

// Service is the slice of the process service the handler needs.
type Service interface {
	CreateProcess(ctx context.Context, params processsvc.CreateParams) (*models.Process, error)
	GetProcess(ctx context.Context, processID id.ProcessID) (*models.Process, error)
	ListProcesses(ctx context.Context, params processsvc.ListParams) ([]*models.Process, error)
	Board(ctx context.Context) (map[string][]*models.Process, error)
	MoveProcess(ctx context.Context, processID id.ProcessID, column string) (*models.Process, error)
	AssignProcess(ctx context.Context, processID id.ProcessID, agentID id.UserID) (*models.Process, error)
	AddNote(ctx context.Context, processID id.ProcessID, note string) (*models.Process, error)
	CloseProcess(ctx context.Context, processID id.ProcessID) (*models.Process, error)
}

type Handler struct {
	logger    *slog.Logger
	processes Service
	validator middleware.TokenValidator
}

func New(processes Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, processes: processes, validator: validator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/processes", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/board", h.handleBoard)
		r.Get("/{processID}", h.handleGet)
		r.Post("/{processID}/move", h.handleMove)
		r.With(middleware.RequireRole(string(usermodels.RoleAdmin), string(usermodels.RoleManager))).
			Post("/{processID}/assign", h.handleAssign)
		r.Post("/{processID}/notes", h.handleAddNote)
		r.Post("/{processID}/close", h.handleClose)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var params processsvc.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	process, err := h.processes.CreateProcess(ctx, params)
	if err != nil {
		h.logger.WarnContext(ctx, "create process failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, process)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := processsvc.ListParams{
		Column: query.Get("column"),
		Status: query.Get("status"),
	}
	if raw := query.Get("agent_id"); raw != "" {
		agentID, err := id.ParseUserID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		params.AgentID = agentID
	}
	if raw := query.Get("client_id"); raw != "" {
		clientID, err := id.ParseClientID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		params.ClientID = clientID
	}

	processes, err := h.processes.ListProcesses(r.Context(), params)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"processes": processes})
}

func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.processes.Board(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"board": board})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	process, err := h.processes.GetProcess(r.Context(), processID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, process)
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var body struct {
		Column string `json:"column"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	process, err := h.processes.MoveProcess(ctx, processID, body.Column)
	if err != nil {
		h.logger.WarnContext(ctx, "move process failed",
			"error", err.Error(),
			"process_id", processID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, process)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var body struct {
		AgentID id.UserID `json:"agent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	process, err := h.processes.AssignProcess(ctx, processID, body.AgentID)
	if err != nil {
		h.logger.WarnContext(ctx, "assign process failed",
			"error", err.Error(),
			"process_id", processID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, process)
}

func (h *Handler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	process, err := h.processes.AddNote(r.Context(), processID, body.Note)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, process)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	process, err := h.processes.CloseProcess(r.Context(), processID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, process)
}
