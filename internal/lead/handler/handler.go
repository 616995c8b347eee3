// Package handler exposes lead capture and matching over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brokerdesk/internal/lead/matcher"
	"brokerdesk/internal/lead/models"
	leadsvc "brokerdesk/internal/lead/service"
	"brokerdesk/internal/platform/middleware"
	"brokerdesk/internal/property"
	"brokerdesk/internal/transport/http/shared"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/requestcontext"
)

// Service is the slice of the lead service the handler needs.
type Service interface {
	CreateLead(ctx context.Context, params leadsvc.CreateParams) (*models.Lead, error)
	GetLead(ctx context.Context, leadID id.LeadID) (*models.Lead, error)
	ListLeads(ctx context.Context, status, source string) ([]*models.Lead, error)
	DiscardLead(ctx context.Context, leadID id.LeadID) (*models.Lead, error)
	MatchesForClient(ctx context.Context, clientID id.ClientID) ([]matcher.Match, error)
	ConvertToProperty(ctx context.Context, leadID id.LeadID, reference string) (*property.Property, error)
}

type Handler struct {
	logger    *slog.Logger
	leads     Service
	validator middleware.TokenValidator
}

func New(leads Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, leads: leads, validator: validator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/leads", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{leadID}", h.handleGet)
		r.Post("/{leadID}/discard", h.handleDiscard)
		r.Post("/{leadID}/convert", h.handleConvert)
	})
	r.With(middleware.RequireAuth(h.validator, h.logger)).
		Get("/clients/{clientID}/matches", h.handleMatches)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var params leadsvc.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	lead, err := h.leads.CreateLead(ctx, params)
	if err != nil {
		h.logger.WarnContext(ctx, "create lead failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, lead)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	leads, err := h.leads.ListLeads(r.Context(), query.Get("status"), query.Get("source"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	leadID, err := id.ParseLeadID(chi.URLParam(r, "leadID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	lead, err := h.leads.GetLead(r.Context(), leadID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, lead)
}

func (h *Handler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	leadID, err := id.ParseLeadID(chi.URLParam(r, "leadID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	lead, err := h.leads.DiscardLead(r.Context(), leadID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, lead)
}

func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	leadID, err := id.ParseLeadID(chi.URLParam(r, "leadID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var body struct {
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	listed, err := h.leads.ConvertToProperty(ctx, leadID, body.Reference)
	if err != nil {
		h.logger.WarnContext(ctx, "convert lead failed",
			"error", err.Error(),
			"lead_id", leadID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, listed)
}

func (h *Handler) handleMatches(w http.ResponseWriter, r *http.Request) {
	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	matches, err := h.leads.MatchesForClient(r.Context(), clientID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"matches": matches})
}
