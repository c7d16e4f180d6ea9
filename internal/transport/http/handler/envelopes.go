package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-notify-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// NotificationEnvelope wraps send/mark-read responses.
type NotificationEnvelope struct {
	Success      bool                 `json:"success"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

// DeletedEnvelope wraps delete confirmations.
type DeletedEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
