// Package handler exposes the notification listing, read receipts, and the
// WebSocket push channel.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brokerdesk/internal/notification/models"
	"brokerdesk/internal/platform/middleware"
	"brokerdesk/internal/transport/http/shared"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/requestcontext"
)

// Service is the slice of the notification service the handler needs.
type Service interface {
	ListForUser(ctx context.Context, userID id.UserID, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error
	MarkAllRead(ctx context.Context, userID id.UserID) error
}

type Handler struct {
	logger        *slog.Logger
	notifications Service
	validator     middleware.TokenValidator
}

func New(notifications Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, notifications: notifications, validator: validator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/", h.handleList)
		r.Post("/{notificationID}/read", h.handleMarkRead)
		r.Post("/read-all", h.handleMarkAllRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	unreadOnly := r.URL.Query().Get("unread") == "true"
	out, err := h.notifications.ListForUser(ctx, requestcontext.UserID(ctx), unreadOnly)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"notifications": out})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.notifications.MarkRead(ctx, requestcontext.UserID(ctx), notificationID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.notifications.MarkAllRead(ctx, requestcontext.UserID(ctx)); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
