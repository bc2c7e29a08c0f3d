// Package domain defines the core domain models for the intake orchestrator.
package domain

// Stage is one discrete step of the onboarding journey. Primary stages are
// ordered; pausado and abandonado are absorbing side-states outside the order.
type Stage string

const (
	StageInicial           Stage = "inicial"
	StageQualificacao      Stage = "qualificacao"
	StageProposta          Stage = "proposta"
	StageContratacao       Stage = "contratacao"
	StageColetaDocumentos  Stage = "coleta_documentos"
	StageDefinicaoEmpresa  Stage = "definicao_empresa"
	StageEscolhaCNAE       Stage = "escolha_cnae"
	StageEnderecoComercial Stage = "endereco_comercial"
	StageRevisaoFinal      Stage = "revisao_final"
	StageProcessamento     Stage = "processamento"
	StageConcluido         Stage = "concluido"
	StagePausado           Stage = "pausado"
	StageAbandonado        Stage = "abandonado"
)

// PrimaryStages is the canonical ordering of the journey. Side-states are
// intentionally excluded.
var PrimaryStages = []Stage{
	StageInicial,
	StageQualificacao,
	StageProposta,
	StageContratacao,
	StageColetaDocumentos,
	StageDefinicaoEmpresa,
	StageEscolhaCNAE,
	StageEnderecoComercial,
	StageRevisaoFinal,
	StageProcessamento,
	StageConcluido,
}

// ParseStage converts a raw token into a Stage. The boolean reports whether the
// token is a member of the closed enum.
func ParseStage(token string) (Stage, bool) {
	s := Stage(token)
	if s.IsValid() {
		return s, true
	}
	return "", false
}

// IsValid reports whether s is a member of the closed stage enum.
func (s Stage) IsValid() bool {
	if s.IsSideState() {
		return true
	}
	return s.Index() >= 0
}

// IsSideState reports whether s is one of the absorbing side-states.
func (s Stage) IsSideState() bool {
	return s == StagePausado || s == StageAbandonado
}

// Index returns the position of s in the primary ordering, or -1 for
// side-states and unknown tokens.
func (s Stage) Index() int {
	for i, stage := range PrimaryStages {
		if stage == s {
			return i
		}
	}
	return -1
}
