package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rmoraes/leadflow/internal/orchestrator"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramHandler receives Telegram webhook updates and replies through the
// bot API. Sessions are keyed by chat id so every chat is its own
// conversation. The webhook always answers 200: Telegram retries non-2xx
// responses forever, and a retried update would double-process the turn.
type TelegramHandler struct {
	orch       *orchestrator.Orchestrator
	botToken   string
	apiBase    string
	httpClient *http.Client
}

// NewTelegramHandler creates a webhook handler for the given bot token.
func NewTelegramHandler(orch *orchestrator.Orchestrator, botToken string) *TelegramHandler {
	return &TelegramHandler{
		orch:     orch,
		botToken: botToken,
		apiBase:  telegramAPIBase,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether a bot token is configured.
func (h *TelegramHandler) Enabled() bool {
	return h.botToken != ""
}

type telegramUpdate struct {
	Message *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
}

// ServeHTTP handles one webhook update. The bot token doubles as the webhook
// secret in the query string.
func (h *TelegramHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("token") != h.botToken {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var update telegramUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		slog.Warn("Telegram update decode failed", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	if update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	sessionID := fmt.Sprintf("telegram:%d", chatID)

	reply := h.handleMessage(r.Context(), sessionID, text)
	if reply != "" {
		h.sendMessage(r.Context(), chatID, reply)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *TelegramHandler) handleMessage(ctx context.Context, sessionID, text string) string {
	switch strings.ToLower(text) {
	case "/start":
		return "Olá! Sou o assistente de abertura de empresas. Me conte: você quer abrir sua primeira empresa?"
	case "/help":
		return "Envie mensagens normalmente e eu conduzo o processo de abertura da sua empresa. Use /reset para recomeçar do zero."
	case "/reset":
		if err := h.orch.Reset(ctx, sessionID); err != nil {
			slog.Error("Telegram reset failed", "session_id", sessionID, "error", err)
			return "Não consegui reiniciar agora. Tente novamente em instantes."
		}
		return "Conversa reiniciada. Vamos começar de novo: qual é o seu nome?"
	}

	result, err := h.orch.ProcessTurn(ctx, sessionID, text)
	if err != nil {
		slog.Error("Telegram turn failed", "session_id", sessionID, "error", err)
		return orchestrator.FallbackReply
	}
	return result.Reply
}

func (h *TelegramHandler) sendMessage(ctx context.Context, chatID int64, text string) {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Telegram payload encode failed", "error", err)
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", h.apiBase, h.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.Error("Telegram request build failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		slog.Error("Telegram send failed", "chat_id", chatID, "error", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Telegram send returned non-200", "chat_id", chatID, "status", resp.StatusCode)
	}
}
