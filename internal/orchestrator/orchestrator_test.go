package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rmoraes/leadflow/internal/domain"
	"github.com/rmoraes/leadflow/internal/flow"
	"github.com/rmoraes/leadflow/internal/llm"
	"github.com/rmoraes/leadflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrchestrator(model llm.Client) (*Orchestrator, *store.MemoryStore) {
	repo := store.NewMemory()
	orch := New(repo, model, Options{
		HistoryLimit:           50,
		PromptHistory:          6,
		QualificationThreshold: 5000,
	})
	return orch, repo
}

func scripted(reply, payload string) string {
	return reply + "\n" + flow.DataMarker + "\n" + payload
}

// flakyStore injects load/save failures over a working memory store.
type flakyStore struct {
	*store.MemoryStore
	loadErr error
	saveErr error
}

func (f *flakyStore) GetConversation(ctx context.Context, sessionID string) (*domain.ConversationContext, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.MemoryStore.GetConversation(ctx, sessionID)
}

func (f *flakyStore) SaveConversation(ctx context.Context, sessionID string, conv *domain.ConversationContext) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryStore.SaveConversation(ctx, sessionID, conv)
}

func TestProcessTurnBookkeeping(t *testing.T) {
	model := llm.NewMockClient(scripted(
		"Olá Maria! Você quer abrir sua primeira empresa?",
		`{"extracted": {"nome": "Maria Silva"}, "next_stage": "inicial"}`,
	))
	orch, repo := newOrchestrator(model)

	result, err := orch.ProcessTurn(context.Background(), "s1", "Oi, sou a Maria Silva")
	require.NoError(t, err)

	assert.Equal(t, "s1", result.SessionID)
	assert.Equal(t, "Olá Maria! Você quer abrir sua primeira empresa?", result.Reply)
	assert.Equal(t, 1, result.TurnCount)
	assert.Contains(t, result.FieldsApplied, "lead_data.nome_completo")

	saved, err := repo.GetConversation(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, saved, "turn must persist write-through")
	assert.Equal(t, "Maria Silva", saved.LeadData.GetString("nome_completo"))
	require.Len(t, saved.Messages, 2)
	assert.Equal(t, domain.RoleUser, saved.Messages[0].Role)
	assert.Equal(t, domain.RoleAssistant, saved.Messages[1].Role)
}

func TestProcessTurnAdvancesWithData(t *testing.T) {
	model := llm.NewMockClient(scripted(
		"Perfeito! Seu negócio será de comércio, serviços ou indústria?",
		`{"extracted": {"nome": "Maria Silva", "tipo_interesse": "primeira"}, "next_stage": "qualificacao"}`,
	))
	orch, _ := newOrchestrator(model)

	result, err := orch.ProcessTurn(context.Background(), "s1", "Maria Silva, primeira empresa")
	require.NoError(t, err)

	assert.Equal(t, domain.StageQualificacao, result.Stage)
}

func TestProcessTurnRejectsRegression(t *testing.T) {
	model := llm.NewMockClient(
		scripted("Certo!", `{"extracted": {"nome": "Maria", "tipo_interesse": "primeira"}, "next_stage": "qualificacao"}`),
		scripted("Voltando...", `{"extracted": {}, "next_stage": "inicial"}`),
	)
	orch, _ := newOrchestrator(model)

	_, err := orch.ProcessTurn(context.Background(), "s1", "Maria, primeira empresa")
	require.NoError(t, err)

	result, err := orch.ProcessTurn(context.Background(), "s1", "sigo aqui")
	require.NoError(t, err)
	assert.Equal(t, domain.StageQualificacao, result.Stage,
		"a backward suggestion must not regress the session")
}

func TestProcessTurnModelFailureFallsBack(t *testing.T) {
	model := llm.NewMockClient()
	model.Err = errors.New("provider unavailable")
	orch, repo := newOrchestrator(model)

	result, err := orch.ProcessTurn(context.Background(), "s1", "Oi")
	require.NoError(t, err, "a model failure is not a turn failure")

	assert.Equal(t, FallbackReply, result.Reply)
	assert.Equal(t, 1, result.TurnCount)
	assert.Equal(t, domain.StageInicial, result.Stage)

	saved, err := repo.GetConversation(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, saved, "failed turns still persist")
	assert.Len(t, saved.Messages, 2)
}

func TestProcessTurnPauseKeyword(t *testing.T) {
	model := llm.NewMockClient(scripted("Sem problemas!", `{"extracted": {}}`))
	orch, _ := newOrchestrator(model)

	result, err := orch.ProcessTurn(context.Background(), "s1", "vou pensar, volto mais tarde")
	require.NoError(t, err)
	assert.Equal(t, domain.StagePausado, result.Stage)
}

func TestProcessTurnResumesFromSideState(t *testing.T) {
	model := llm.NewMockClient(
		scripted("Sem problemas!", `{"extracted": {}, "next_stage": "pausado"}`),
		scripted("Que bom te ver de volta!", `{"extracted": {}, "next_stage": "inicial"}`),
	)
	orch, _ := newOrchestrator(model)

	paused, err := orch.ProcessTurn(context.Background(), "s1", "prefiro ver isso outra hora")
	require.NoError(t, err)
	require.Equal(t, domain.StagePausado, paused.Stage)

	resumed, err := orch.ProcessTurn(context.Background(), "s1", "pronto, podemos continuar")
	require.NoError(t, err)
	assert.Equal(t, domain.StageInicial, resumed.Stage,
		"an accepted primary suggestion moves the session out of pausado")
}

func TestProcessTurnBoundedHistory(t *testing.T) {
	model := llm.NewMockClient(scripted("Entendi, pode me contar mais?", `{"extracted": {}}`))
	orch, repo := newOrchestrator(model)

	for i := 0; i < 40; i++ {
		_, err := orch.ProcessTurn(context.Background(), "s1", fmt.Sprintf("mensagem %d", i))
		require.NoError(t, err)
	}

	saved, err := repo.GetConversation(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, saved.Messages, 50, "history must stay at the cap")
	assert.Equal(t, 40, saved.TurnCount)
	for _, m := range saved.Messages {
		assert.NotEqual(t, "mensagem 0", m.Text, "the oldest entries must be evicted first")
	}
}

func TestProcessTurnSurvivesLoadFailure(t *testing.T) {
	model := llm.NewMockClient(scripted("Olá!", `{"extracted": {"nome": "Maria"}}`))
	repo := &flakyStore{MemoryStore: store.NewMemory(), loadErr: errors.New("disk gone")}
	orch := New(repo, model, Options{HistoryLimit: 50, PromptHistory: 6, QualificationThreshold: 5000})

	result, err := orch.ProcessTurn(context.Background(), "s1", "Oi")
	require.NoError(t, err, "a load failure starts a fresh context, it does not fail the turn")
	assert.Equal(t, 1, result.TurnCount)
}

func TestProcessTurnSurvivesSaveFailure(t *testing.T) {
	model := llm.NewMockClient(scripted("Olá!", `{"extracted": {"nome": "Maria"}}`))
	repo := &flakyStore{MemoryStore: store.NewMemory(), saveErr: errors.New("disk full")}
	orch := New(repo, model, Options{HistoryLimit: 50, PromptHistory: 6, QualificationThreshold: 5000})

	result, err := orch.ProcessTurn(context.Background(), "s1", "Oi")
	require.NoError(t, err, "persistence is best-effort; the reply is returned regardless")
	assert.Equal(t, "Olá!", result.Reply)
}

func TestProcessTurnQualification(t *testing.T) {
	model := llm.NewMockClient(scripted(
		"Ótima renda!",
		`{"extracted": {"renda_mensal": "R$ 8.000,00"}}`,
	))
	orch, repo := newOrchestrator(model)

	_, err := orch.ProcessTurn(context.Background(), "s1", "ganho uns 8 mil por mês")
	require.NoError(t, err)

	saved, err := repo.GetConversation(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, saved.Qualified)
}

func TestProcessTurnSerializesSameSession(t *testing.T) {
	model := llm.NewMockClient(scripted("Certo!", `{"extracted": {}}`))
	orch, repo := newOrchestrator(model)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, err := orch.ProcessTurn(context.Background(), "s1", "oi")
			assert.NoError(t, err)
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	saved, err := repo.GetConversation(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 10, saved.TurnCount, "concurrent turns must not lose updates")
}

func TestStatus(t *testing.T) {
	model := llm.NewMockClient(scripted(
		"Olá!",
		`{"extracted": {"nome": "Maria", "tipo_interesse": "primeira"}, "next_stage": "qualificacao"}`,
	))
	orch, _ := newOrchestrator(model)

	_, err := orch.ProcessTurn(context.Background(), "s1", "Maria, primeira empresa")
	require.NoError(t, err)

	status, err := orch.Status(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, status)

	assert.Equal(t, "s1", status.SessionID)
	assert.Equal(t, domain.StageQualificacao, status.Stage)
	assert.Equal(t, 1, status.TurnCount)
	assert.Contains(t, status.FieldsCollected, "lead_data.nome_completo")
	assert.Equal(t, 10, status.CompletionPercentage)
}

func TestStatusUnknownSessionIsFresh(t *testing.T) {
	orch, _ := newOrchestrator(llm.NewMockClient())

	status, err := orch.Status(context.Background(), "ghost")
	require.NoError(t, err)
	require.NotNil(t, status)

	assert.Equal(t, domain.StageInicial, status.Stage)
	assert.Zero(t, status.TurnCount)
	assert.Empty(t, status.FieldsCollected)
	assert.Zero(t, status.CompletionPercentage)
}

func TestReset(t *testing.T) {
	model := llm.NewMockClient(scripted("Olá!", `{"extracted": {"nome": "Maria"}}`))
	orch, _ := newOrchestrator(model)

	_, err := orch.ProcessTurn(context.Background(), "s1", "Oi, sou a Maria")
	require.NoError(t, err)

	require.NoError(t, orch.Reset(context.Background(), "s1"))

	status, err := orch.Status(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, domain.StageInicial, status.Stage, "a reset session starts over")
	assert.Zero(t, status.TurnCount)
	assert.Empty(t, status.FieldsCollected)
}
