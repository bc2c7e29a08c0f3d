package flow

import (
	"testing"

	"github.com/rmoraes/leadflow/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTransitionAcceptsForwardSuggestion(t *testing.T) {
	got := Transition(domain.StageQualificacao, domain.StageProposta, "quero avançar")
	assert.Equal(t, domain.StageProposta, got)
}

func TestTransitionAcceptsSameStage(t *testing.T) {
	got := Transition(domain.StageProposta, domain.StageProposta, "ok")
	assert.Equal(t, domain.StageProposta, got)
}

func TestTransitionRejectsRegression(t *testing.T) {
	got := Transition(domain.StageContratacao, domain.StageInicial, "certo")
	assert.Equal(t, domain.StageContratacao, got, "a suggestion behind the canonical stage must be rejected")
}

func TestTransitionFallsBackToCanonical(t *testing.T) {
	got := Transition(domain.StageQualificacao, "", "segue")
	assert.Equal(t, domain.StageQualificacao, got)

	got = Transition(domain.StageQualificacao, domain.Stage("estagio_inventado"), "segue")
	assert.Equal(t, domain.StageQualificacao, got)
}

func TestTransitionAcceptsSideStates(t *testing.T) {
	got := Transition(domain.StageInicial, domain.StagePausado, "tudo bem")
	assert.Equal(t, domain.StagePausado, got)

	got = Transition(domain.StageRevisaoFinal, domain.StageAbandonado, "tudo bem")
	assert.Equal(t, domain.StageAbandonado, got)
}

func TestTransitionPauseKeywordWins(t *testing.T) {
	got := Transition(domain.StageProposta, domain.StageContratacao, "vou pensar, volto mais tarde")
	assert.Equal(t, domain.StagePausado, got, "pause detection outranks the model suggestion")
}

func TestTransitionPauseIgnoredPastPointOfNoReturn(t *testing.T) {
	got := Transition(domain.StageProcessamento, "", "pode pausar")
	assert.Equal(t, domain.StageProcessamento, got)

	got = Transition(domain.StageConcluido, "", "encerrar")
	assert.Equal(t, domain.StageConcluido, got)
}

func TestDetectPauseIntent(t *testing.T) {
	assert.True(t, DetectPauseIntent("Prefiro continuar DEPOIS"))
	assert.True(t, DetectPauseIntent("não agora, obrigado"))
	assert.False(t, DetectPauseIntent("quero abrir minha empresa"))
	assert.False(t, DetectPauseIntent(""))
}
