package flow

import (
	"testing"

	"github.com/rmoraes/leadflow/internal/domain"
	"github.com/stretchr/testify/assert"
)

// contextAt builds a context with enough data to satisfy every primary stage
// strictly before the target, leaving the target unsatisfied.
func contextAt(target domain.Stage) *domain.ConversationContext {
	ctx := domain.NewContext()
	for _, stage := range domain.PrimaryStages {
		if stage == target {
			break
		}
		satisfy(ctx, stage)
	}
	return ctx
}

func satisfy(ctx *domain.ConversationContext, stage domain.Stage) {
	switch stage {
	case domain.StageInicial:
		ctx.LeadData["nome_completo"] = "Maria Silva"
		ctx.LeadData["tipo_interesse"] = "primeira_empresa"
	case domain.StageQualificacao:
		ctx.BusinessProfile["tipo_negocio"] = "servicos"
		ctx.BusinessProfile["estrutura_societaria"] = "mei"
		ctx.BusinessProfile["faturamento_mei_ok"] = true
	case domain.StageProposta:
		ctx.ProposalStatus["aceite_proposta"] = true
	case domain.StageContratacao:
		ctx.LeadData["cpf"] = "123.456.789-09"
		ctx.LeadData["email"] = "maria@example.com"
		ctx.LeadData["telefone"] = "11999990000"
		ctx.LeadData["data_nascimento"] = "01/01/1990"
		ctx.ContractData["metodo_assinatura"] = "whatsapp"
		ctx.ContractData["contrato_assinado"] = true
	case domain.StageColetaDocumentos:
		ctx.DocumentStatus["rg_frente"] = "recebido"
		ctx.DocumentStatus["rg_verso"] = "recebido"
		ctx.DocumentStatus["comprovante_residencia"] = "recebido"
	case domain.StageDefinicaoEmpresa:
		ctx.CompanyProfile["nome_fantasia"] = "Estúdio Maria"
		ctx.CompanyProfile["razao_social"] = "Maria Silva Serviços LTDA"
		ctx.CompanyProfile["capital_social"] = 10000.0
	case domain.StageEscolhaCNAE:
		ctx.CompanyProfile["cnae_principal"] = "6201-5"
		ctx.CompanyProfile["cnaes_confirmados"] = true
	case domain.StageEnderecoComercial:
		ctx.CompanyProfile["endereco_tipo"] = "virtual"
		ctx.CompanyProfile["cidade_escritorio_virtual"] = "São Paulo"
		ctx.CompanyProfile["aceite_escritorio_virtual"] = true
	case domain.StageRevisaoFinal:
		ctx.ReviewStatus["confirmado"] = true
	case domain.StageProcessamento:
		ctx.ProcessStatus["finalizado"] = true
	}
}

func TestDetermineWalksToFirstIncompleteStage(t *testing.T) {
	targets := []domain.Stage{
		domain.StageInicial,
		domain.StageQualificacao,
		domain.StageProposta,
		domain.StageContratacao,
		domain.StageColetaDocumentos,
		domain.StageDefinicaoEmpresa,
		domain.StageEscolhaCNAE,
		domain.StageEnderecoComercial,
		domain.StageRevisaoFinal,
		domain.StageProcessamento,
	}
	for _, target := range targets {
		ctx := contextAt(target)
		assert.Equal(t, target, Determine(ctx), "expected walk to stop at %s", target)
	}
}

func TestDetermineCompletedJourney(t *testing.T) {
	ctx := domain.NewContext()
	for _, stage := range domain.PrimaryStages {
		satisfy(ctx, stage)
	}
	assert.Equal(t, domain.StageConcluido, Determine(ctx))
}

func TestDetermineProcessingNotFinished(t *testing.T) {
	ctx := contextAt(domain.StageProcessamento)
	assert.Equal(t, domain.StageProcessamento, Determine(ctx))
}

func TestDetermineSideStatesAreAbsorbing(t *testing.T) {
	ctx := contextAt(domain.StageProposta)
	ctx.Stage = domain.StagePausado
	assert.Equal(t, domain.StagePausado, Determine(ctx))

	ctx.Stage = domain.StageAbandonado
	assert.Equal(t, domain.StageAbandonado, Determine(ctx))
}

func TestDetermineAbandonedProcessStatus(t *testing.T) {
	ctx := contextAt(domain.StageProposta)
	ctx.ProcessStatus["status"] = "abandonado"
	assert.Equal(t, domain.StageAbandonado, Determine(ctx))
}

func TestDetermineSelfHealsStaleStage(t *testing.T) {
	ctx := contextAt(domain.StageQualificacao)
	// A stale persisted primary stage must not survive recomputation.
	ctx.Stage = domain.StageRevisaoFinal
	assert.Equal(t, domain.StageQualificacao, Determine(ctx))
}

func TestDetermineQualificacaoBranches(t *testing.T) {
	ctx := contextAt(domain.StageQualificacao)
	ctx.BusinessProfile["tipo_negocio"] = "servicos"
	ctx.BusinessProfile["estrutura_societaria"] = "socios"
	assert.Equal(t, domain.StageQualificacao, Determine(ctx), "partner count still missing")

	ctx.BusinessProfile["numero_socios"] = 2
	assert.Equal(t, domain.StageProposta, Determine(ctx))
}

func TestDetermineEnderecoBranches(t *testing.T) {
	ctx := contextAt(domain.StageEnderecoComercial)

	ctx.CompanyProfile["endereco_tipo"] = "residencial"
	missing := MissingFields(domain.StageEnderecoComercial, ctx)
	assert.Len(t, missing, 3, "physical address needs CEP, number and confirmation")

	ctx.CompanyProfile["cep"] = "01310-100"
	ctx.CompanyProfile["numero"] = "1000"
	ctx.CompanyProfile["endereco_confirmado"] = true
	assert.Equal(t, domain.StageRevisaoFinal, Determine(ctx))
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, Progress(domain.NewContext()))

	mid := contextAt(domain.StageColetaDocumentos)
	assert.Equal(t, 40, Progress(mid))

	done := domain.NewContext()
	for _, stage := range domain.PrimaryStages {
		satisfy(done, stage)
	}
	assert.Equal(t, 100, Progress(done))
}

func TestProgressInSideState(t *testing.T) {
	ctx := contextAt(domain.StageProposta)
	ctx.Stage = domain.StagePausado
	assert.Equal(t, 20, Progress(ctx), "paused sessions report underlying data progress")
}
