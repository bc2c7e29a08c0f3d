// Package channels adapts external conversation channels (web chat over
// WebSocket, Telegram webhooks) to the orchestrator. Each adapter owns its
// session-key scheme so different channels never collide.
package channels

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rmoraes/leadflow/internal/orchestrator"
)

// ChatHandler serves the interactive web chat over WebSocket.
type ChatHandler struct {
	orch          *orchestrator.Orchestrator
	allowedOrigin string
	isDev         bool
}

// NewChatHandler creates a WebSocket chat handler.
func NewChatHandler(orch *orchestrator.Orchestrator, allowedOrigin string, isDev bool) *ChatHandler {
	return &ChatHandler{
		orch:          orch,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// chatRequest is one inbound frame from the browser.
type chatRequest struct {
	Text string `json:"text"`
}

// chatResponse is one outbound frame to the browser.
type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Stage     string `json:"stage"`
	TurnCount int    `json:"turn_count"`
	Error     string `json:"error,omitempty"`
}

// ServeHTTP upgrades the connection and runs the chat loop. A session_id query
// parameter resumes an existing session; without one a fresh id is assigned
// and echoed back on every frame.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "chat ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "session_id", sessionID)
		}
	}()

	slog.Info("Chat connected", "session_id", sessionID, "ip", r.RemoteAddr)

	ctx := r.Context()

	// First frame announces the session id so a fresh client can store it
	// and resume later.
	if err := writeJSON(ctx, ws, chatResponse{SessionID: sessionID}); err != nil {
		slog.Debug("Chat greeting failed", "session_id", sessionID, "error", err)
		return
	}
	for {
		var req chatRequest
		if err := readJSON(ctx, ws, &req); err != nil {
			if isExpectedClose(err) {
				slog.Debug("Chat disconnected", "session_id", sessionID)
			} else {
				slog.Warn("Chat read failed", "session_id", sessionID, "error", err)
			}
			return
		}

		text := strings.TrimSpace(req.Text)
		if text == "" {
			continue
		}

		result, err := h.orch.ProcessTurn(ctx, sessionID, text)
		if err != nil {
			slog.Error("Chat turn failed", "session_id", sessionID, "error", err)
			_ = writeJSON(ctx, ws, chatResponse{SessionID: sessionID, Error: "internal error"})
			continue
		}

		resp := chatResponse{
			SessionID: sessionID,
			Reply:     result.Reply,
			Stage:     string(result.Stage),
			TurnCount: result.TurnCount,
		}
		if err := writeJSON(ctx, ws, resp); err != nil {
			slog.Debug("Chat write failed", "session_id", sessionID, "error", err)
			return
		}
	}
}

func (h *ChatHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || h.allowedOrigin == "" || strings.HasPrefix(origin, h.allowedOrigin)
}

func readJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	_, data, err := ws.Read(ctx)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}

func isExpectedClose(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	status := websocket.CloseStatus(err)
	return status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway
}
