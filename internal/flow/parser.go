package flow

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/rmoraes/leadflow/internal/domain"
)

// DataMarker separates the user-facing reply from the structured payload in a
// model response. It must appear on its own line.
const DataMarker = "---DATA---"

// structuredPayload is the expected shape of the JSON segment. Some model
// revisions emit "stage" instead of "next_stage"; both are honored.
type structuredPayload struct {
	Extracted map[string]any `json:"extracted"`
	NextStage string         `json:"next_stage"`
	Stage     string         `json:"stage"`
}

// ParseResponse splits a raw model response into the reply text, the extracted
// field map and the suggested next stage. It never fails: a missing marker,
// malformed JSON or an unrecognized stage token degrade the affected piece and
// the rest is still returned. suggested is "" when the model offered no valid
// stage.
func ParseResponse(raw string) (reply string, extracted map[string]any, suggested domain.Stage) {
	reply = strings.TrimSpace(raw)
	extracted = map[string]any{}

	idx := strings.Index(raw, DataMarker)
	if idx < 0 {
		return reply, extracted, ""
	}

	reply = strings.TrimSpace(raw[:idx])
	jsonText := strings.TrimSpace(raw[idx+len(DataMarker):])
	jsonText = strings.ReplaceAll(jsonText, "```json", "")
	jsonText = strings.ReplaceAll(jsonText, "```", "")
	jsonText = strings.TrimSpace(jsonText)
	if jsonText == "" {
		return reply, extracted, ""
	}

	var payload structuredPayload
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		slog.Warn("failed to parse structured model payload", "error", err)
		return reply, extracted, ""
	}

	if payload.Extracted != nil {
		extracted = payload.Extracted
	}

	token := payload.NextStage
	if token == "" {
		token = payload.Stage
	}
	if token != "" {
		stage, ok := domain.ParseStage(token)
		if !ok {
			slog.Warn("ignoring invalid suggested stage", "token", token)
			return reply, extracted, ""
		}
		suggested = stage
	}

	return reply, extracted, suggested
}
