// Package orchestrator runs the stage-driven conversation loop: it determines
// the canonical stage from collected data, builds the stage prompt, calls the
// model, folds the structured payload back into the context and persists the
// result. Every turn is self-healing: the stage is recomputed from data before
// any model suggestion is considered.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/rmoraes/leadflow/internal/domain"
	"github.com/rmoraes/leadflow/internal/flow"
	"github.com/rmoraes/leadflow/internal/llm"
	"github.com/rmoraes/leadflow/internal/registry"
	"github.com/rmoraes/leadflow/internal/shared"
	"github.com/rmoraes/leadflow/internal/store"
)

// FallbackReply is returned when the model call fails. The turn still
// completes and persists so the user can simply try again.
const FallbackReply = "Desculpe, enfrentei uma instabilidade. Pode repetir ou tentar novamente em instantes?"

// Options carries the tunables for the turn loop.
type Options struct {
	// HistoryLimit caps the number of messages kept in the context.
	HistoryLimit int
	// PromptHistory is how many recent messages the prompt includes.
	PromptHistory int
	// QualificationThreshold is the minimum monthly revenue that qualifies a lead.
	QualificationThreshold float64
}

// TurnResult is the outcome of one processed user message.
type TurnResult struct {
	SessionID     string       `json:"session_id"`
	Reply         string       `json:"reply"`
	Stage         domain.Stage `json:"stage"`
	TurnCount     int          `json:"turn_count"`
	FieldsApplied []string     `json:"fields_applied,omitempty"`
}

// SessionStatus summarizes a session without advancing it.
type SessionStatus struct {
	SessionID            string       `json:"session_id"`
	Stage                domain.Stage `json:"stage"`
	TurnCount            int          `json:"turn_count"`
	FieldsCollected      []string     `json:"fields_collected"`
	CompletionPercentage int          `json:"completion_percentage"`
	Qualified            bool         `json:"qualified"`
	LastInteractionAt    time.Time    `json:"last_interaction_at"`
}

// Orchestrator coordinates one conversation turn end to end.
type Orchestrator struct {
	store store.Repository
	model llm.Client
	opts  Options
	locks *shared.KeyedMutex
}

// New creates an orchestrator over the given repository and model client.
func New(repo store.Repository, model llm.Client, opts Options) *Orchestrator {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	if opts.PromptHistory <= 0 {
		opts.PromptHistory = 6
	}
	return &Orchestrator{
		store: repo,
		model: model,
		opts:  opts,
		locks: shared.NewKeyedMutex(),
	}
}

// ProcessTurn handles one user message for a session. Turns for the same
// session are serialized; concurrent sessions proceed independently.
//
// Persistence is best-effort: a load failure starts a fresh context and a save
// failure is logged, with the turn's reply returned either way. Durability is
// not guaranteed past process lifetime when the backend is unavailable.
func (o *Orchestrator) ProcessTurn(ctx context.Context, sessionID, userText string) (*TurnResult, error) {
	o.locks.Lock(sessionID)
	defer o.locks.Unlock(sessionID)

	conv := o.loadOrCreate(ctx, sessionID)

	conv.AppendMessage(domain.RoleUser, userText, o.opts.HistoryLimit)

	canonical := flow.Determine(conv)
	conv.Stage = canonical

	prompt := flow.BuildPrompt(canonical, conv, userText, o.opts.PromptHistory)

	var reply string
	var extracted map[string]any
	suggested := domain.Stage("")

	raw, genErr := o.model.Generate(ctx, prompt)
	if genErr != nil {
		slog.Error("model call failed, using fallback reply",
			"session_id", sessionID,
			"stage", canonical,
			"error", genErr)
		reply = FallbackReply
	} else {
		reply, extracted, suggested = flow.ParseResponse(raw)
	}

	conv.AppendMessage(domain.RoleAssistant, reply, o.opts.HistoryLimit)

	applied := registry.Merge(conv, extracted)
	flow.SyncContractData(conv)
	flow.ApplyFallbackInferences(conv)
	conv.RecomputeQualification(o.opts.QualificationThreshold)

	canonical = flow.Determine(conv)
	next := flow.Transition(canonical, suggested, userText)
	conv.Stage = next

	conv.TurnCount++
	conv.LastInteractionAt = time.Now().UTC()
	conv.TrimHistory(o.opts.HistoryLimit)

	if err := o.store.SaveConversation(ctx, sessionID, conv); err != nil {
		slog.Error("failed to persist turn, state may be lost on restart",
			"session_id", sessionID,
			"error", err)
	}

	return &TurnResult{
		SessionID:     sessionID,
		Reply:         reply,
		Stage:         next,
		TurnCount:     conv.TurnCount,
		FieldsApplied: applied,
	}, nil
}

// Status reports the current state of a session without advancing it. A
// session with no persisted state reports a fresh one: initial stage, zero
// turns, nothing collected.
func (o *Orchestrator) Status(ctx context.Context, sessionID string) (*SessionStatus, error) {
	conv := o.loadOrCreate(ctx, sessionID)

	fields := conv.FieldsCollected
	if fields == nil {
		fields = []string{}
	}

	return &SessionStatus{
		SessionID:            sessionID,
		Stage:                conv.Stage,
		TurnCount:            conv.TurnCount,
		FieldsCollected:      fields,
		CompletionPercentage: flow.Progress(conv),
		Qualified:            conv.Qualified,
		LastInteractionAt:    conv.LastInteractionAt,
	}, nil
}

// Reset discards all state for a session. The next message starts over.
func (o *Orchestrator) Reset(ctx context.Context, sessionID string) error {
	o.locks.Lock(sessionID)
	defer o.locks.Unlock(sessionID)

	if err := o.store.DeleteConversation(ctx, sessionID); err != nil {
		slog.Error("failed to reset session", "session_id", sessionID, "error", err)
		return err
	}
	return nil
}

// loadOrCreate never fails: an absent record or a load error both yield a
// fresh context, so a corrupted row cannot wedge a session.
func (o *Orchestrator) loadOrCreate(ctx context.Context, sessionID string) *domain.ConversationContext {
	conv, err := o.store.GetConversation(ctx, sessionID)
	if err != nil {
		slog.Warn("failed to load conversation, starting fresh", "session_id", sessionID, "error", err)
		return domain.NewContext()
	}
	if conv == nil {
		return domain.NewContext()
	}
	return conv
}
