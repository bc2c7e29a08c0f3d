package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rmoraes/leadflow/internal/orchestrator"
)

// maxMessageBytes bounds the request body of a message post.
const maxMessageBytes = 64 * 1024

// SessionHandler exposes the conversation loop over HTTP.
type SessionHandler struct {
	orch *orchestrator.Orchestrator
}

// NewSessionHandler creates a handler over the given orchestrator.
func NewSessionHandler(orch *orchestrator.Orchestrator) *SessionHandler {
	return &SessionHandler{orch: orch}
}

// RegisterRoutes mounts the session endpoints on the router.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Post("/messages", h.PostMessage)
		r.Post("/reset", h.Reset)
		r.Get("/status", h.Status)
	})
}

type messageRequest struct {
	Message string `json:"message"`
}

// PostMessage processes one user message and returns the assistant reply with
// the resulting stage.
func (h *SessionHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req messageRequest
	body := http.MaxBytesReader(w, r.Body, maxMessageBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := h.orch.ProcessTurn(r.Context(), sessionID, req.Message)
	if err != nil {
		slog.Error("failed to process message", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	JSON(w, http.StatusOK, result)
}

// Reset discards all state for the session.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	if err := h.orch.Reset(r.Context(), sessionID); err != nil {
		slog.Error("failed to reset session", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to reset session")
		return
	}

	JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Status reports the session's stage and collected-field summary. A session
// with no state yet reports a fresh one rather than an error.
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	status, err := h.orch.Status(r.Context(), sessionID)
	if err != nil {
		slog.Error("failed to load session status", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load session status")
		return
	}

	JSON(w, http.StatusOK, status)
}
