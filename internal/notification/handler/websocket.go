package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"brokerdesk/internal/notification/hub"
	id "brokerdesk/pkg/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is served to the back-office SPA from another origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades /ws connections and bridges them to the hub.
type WSHandler struct {
	inner *Handler
	hub   *hub.Hub
}

func NewWS(inner *Handler, h *hub.Hub) *WSHandler {
	return &WSHandler{inner: inner, hub: h}
}

func (h *WSHandler) Register(r chi.Router) {
	r.Get("/ws", h.handleWS)
}

// inboundMessage is what clients may send: keepalive pings and read receipts.
type inboundMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// handleWS authenticates via the token query parameter (browsers cannot set
// headers on WebSocket dials), upgrades, and runs the read/write pumps.
func (h *WSHandler) handleWS(w http.ResponseWriter, r *http.Request) {
	claims, err := h.inner.validator.ValidateToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.inner.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	session := h.hub.Register(claims.UserID)
	// All writes go through the write pump; the read pump only queues pongs.
	pongs := make(chan struct{}, 1)
	go h.writePump(conn, session, pongs)
	h.readPump(r, conn, session, claims.UserID, pongs)
}

func (h *WSHandler) readPump(r *http.Request, conn *websocket.Conn, session *hub.Session, userID id.UserID, pongs chan<- struct{}) {
	defer func() {
		h.hub.Unregister(session)
		conn.Close()
	}()

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg inboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "ping":
			select {
			case pongs <- struct{}{}:
			default:
			}
		case "mark_read":
			notificationID, err := id.ParseNotificationID(msg.ID)
			if err != nil {
				continue
			}
			if err := h.inner.notifications.MarkRead(r.Context(), userID, notificationID); err != nil {
				h.inner.logger.Warn("websocket mark_read failed",
					"user_id", userID.String(),
					"error", err,
				)
			}
		}
	}
}

func (h *WSHandler) writePump(conn *websocket.Conn, session *hub.Session, pongs <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-pongs:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(map[string]string{"type": "pong"}); err != nil {
				return
			}
		case payload, ok := <-session.Outbox():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
