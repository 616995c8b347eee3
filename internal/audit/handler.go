package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"brokerdesk/internal/platform/middleware"
	"brokerdesk/internal/transport/http/shared"
	dErrors "brokerdesk/pkg/domain-errors"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// adminRole duplicates the user model constant to keep this package free of
// a user import; the consumer side has no user package either.
const adminRole = "admin"

// Handler exposes the persisted trail to admins.
type Handler struct {
	logger    *slog.Logger
	events    Store
	validator middleware.TokenValidator
}

func NewHandler(events Store, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, events: events, validator: validator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Use(middleware.RequireRole(adminRole))
		r.Get("/", h.handleList)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxListLimit {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and 1000"))
			return
		}
		limit = parsed
	}

	events, err := h.events.ListRecent(r.Context(), limit)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
