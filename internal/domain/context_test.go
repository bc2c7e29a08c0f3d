package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextStartsAtInicial(t *testing.T) {
	ctx := NewContext()

	assert.Equal(t, StageInicial, ctx.Stage)
	assert.NotNil(t, ctx.LeadData)
	assert.NotNil(t, ctx.ProcessStatus)
	assert.Zero(t, ctx.TurnCount)
	assert.False(t, ctx.StartedAt.IsZero())
}

func TestAppendMessageEnforcesCap(t *testing.T) {
	ctx := NewContext()
	for i := 0; i < 60; i++ {
		ctx.AppendMessage(RoleUser, "msg", 50)
	}

	assert.Len(t, ctx.Messages, 50)
}

func TestTrimHistoryKeepsNewest(t *testing.T) {
	ctx := NewContext()
	ctx.AppendMessage(RoleUser, "velha", 50)
	ctx.AppendMessage(RoleAssistant, "meio", 50)
	ctx.AppendMessage(RoleUser, "nova", 50)

	ctx.TrimHistory(2)

	require.Len(t, ctx.Messages, 2)
	assert.Equal(t, "meio", ctx.Messages[0].Text)
	assert.Equal(t, "nova", ctx.Messages[1].Text)
}

func TestTrackFieldDeduplicates(t *testing.T) {
	ctx := NewContext()
	ctx.TrackField("lead_data.nome_completo")
	ctx.TrackField("lead_data.nome_completo")
	ctx.TrackField("lead_data.email")

	assert.Equal(t, []string{"lead_data.nome_completo", "lead_data.email"}, ctx.FieldsCollected)
}

func TestLatestUserText(t *testing.T) {
	ctx := NewContext()
	assert.Empty(t, ctx.LatestUserText())

	ctx.AppendMessage(RoleUser, "primeira", 50)
	ctx.AppendMessage(RoleAssistant, "resposta", 50)
	ctx.AppendMessage(RoleUser, "segunda", 50)
	ctx.AppendMessage(RoleAssistant, "outra resposta", 50)

	assert.Equal(t, "segunda", ctx.LatestUserText())
}

func TestRecomputeQualification(t *testing.T) {
	ctx := NewContext()

	ctx.RecomputeQualification(5000)
	assert.False(t, ctx.Qualified)
	assert.Empty(t, ctx.QualificationReason)

	ctx.LeadData["renda_mensal"] = 8000.0
	ctx.RecomputeQualification(5000)
	assert.True(t, ctx.Qualified)
	assert.Contains(t, ctx.QualificationReason, "Qualificado")

	ctx.LeadData["renda_mensal"] = 3000.0
	ctx.RecomputeQualification(5000)
	assert.False(t, ctx.Qualified)
	assert.Contains(t, ctx.QualificationReason, "Não qualificado")
}

func TestEnsureSectionsAfterReload(t *testing.T) {
	data := []byte(`{"stage": "inicial", "lead_data": {"nome_completo": "Ana"}}`)

	var ctx ConversationContext
	require.NoError(t, json.Unmarshal(data, &ctx))
	ctx.EnsureSections()

	assert.Equal(t, "Ana", ctx.LeadData.GetString("nome_completo"))
	assert.NotNil(t, ctx.CompanyProfile)
	ctx.CompanyProfile["cep"] = "01310-100"
	assert.True(t, ctx.CompanyProfile.Has("cep"))
}

func TestSectionNumberToleratesJSONFloat(t *testing.T) {
	s := Section{"numero_socios": float64(2)}
	n, ok := s.Number("numero_socios")
	require.True(t, ok)
	assert.InDelta(t, 2, n, 0.001)
}

func TestStageHelpers(t *testing.T) {
	assert.True(t, StagePausado.IsSideState())
	assert.True(t, StageAbandonado.IsSideState())
	assert.False(t, StageProposta.IsSideState())

	assert.Equal(t, 0, StageInicial.Index())
	assert.Equal(t, -1, StagePausado.Index())

	stage, ok := ParseStage("qualificacao")
	require.True(t, ok)
	assert.Equal(t, StageQualificacao, stage)

	_, ok = ParseStage("inexistente")
	assert.False(t, ok)
}
