// Package handler exposes client intake and maintenance over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brokerdesk/internal/client/models"
	clientsvc "brokerdesk/internal/client/service"
	"brokerdesk/internal/platform/middleware"
	"brokerdesk/internal/transport/http/shared"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/requestcontext"
)

// Service is the slice of the client service the handler needs.
type Service interface {
	CreateClient(ctx context.Context, params clientsvc.CreateParams) (*models.Client, error)
	GetClient(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	ListClients(ctx context.Context, status string) ([]*models.Client, error)
	UpdateClient(ctx context.Context, clientID id.ClientID, params clientsvc.UpdateParams) (*models.Client, error)
}

type Handler struct {
	logger    *slog.Logger
	clients   Service
	validator middleware.TokenValidator
}

func New(clients Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, clients: clients, validator: validator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{clientID}", h.handleGet)
		r.Patch("/{clientID}", h.handleUpdate)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var params clientsvc.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	client, err := h.clients.CreateClient(ctx, params)
	if err != nil {
		h.logger.WarnContext(ctx, "create client failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, client)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.ListClients(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	client, err := h.clients.GetClient(r.Context(), clientID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var params clientsvc.UpdateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	client, err := h.clients.UpdateClient(ctx, clientID, params)
	if err != nil {
		h.logger.WarnContext(ctx, "update client failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, client)
}
