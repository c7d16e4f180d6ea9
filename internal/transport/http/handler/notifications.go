package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-notify-api/internal/application/delivery"
	"github.com/go-notify-api/internal/application/notification"
	"github.com/go-notify-api/internal/domain"
)

// NotificationHandler handles the REST half of the dual-path gateway. It calls
// the same delivery and store services as the websocket channel, so the two
// paths are equivalent views of one system.
type NotificationHandler struct {
	svc      notification.Service
	delivery delivery.Service
}

func NewNotificationHandler(svc notification.Service, deliverySvc delivery.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc, delivery: deliverySvc}
}

// List returns a user's notifications, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}
	notifications, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		httpError(w, err)
		return
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// Send persists a notification and pushes it to the address's live connections.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	n, err := h.delivery.Send(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NotificationEnvelope{Success: true, Notification: n})
}

// MarkRead flips the read flag. Re-marking an already-read notification is a
// silent no-op that returns the record unchanged.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NotificationEnvelope{Success: true, Notification: n})
}

// Delete permanently removes a notification (no soft delete).
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeletedEnvelope{Success: true, Message: "notification deleted successfully"})
}
