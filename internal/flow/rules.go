// Package flow implements the deterministic conversation engine: per-stage
// completeness rules, the canonical stage computation, the transition policy,
// the prompt builder and the structured-response parser.
package flow

import "github.com/rmoraes/leadflow/internal/domain"

// MissingFields returns human-readable descriptors for the data a stage still
// needs from the given context. An empty result means the stage is satisfied.
// The predicates are pure: they read the context and nothing else.
func MissingFields(stage domain.Stage, ctx *domain.ConversationContext) []string {
	lead := ctx.LeadData
	business := ctx.BusinessProfile
	proposal := ctx.ProposalStatus
	contract := ctx.ContractData
	documents := ctx.DocumentStatus
	company := ctx.CompanyProfile
	review := ctx.ReviewStatus
	process := ctx.ProcessStatus

	var missing []string

	switch stage {
	case domain.StageInicial:
		if !lead.Has("nome_completo") {
			missing = append(missing, "nome do cliente")
		}
		if !lead.Has("tipo_interesse") {
			missing = append(missing, "tipo de interesse")
		}

	case domain.StageQualificacao:
		if !business.Has("tipo_negocio") {
			missing = append(missing, "tipo de negócio")
		}
		estrutura := business.GetString("estrutura_societaria")
		if estrutura == "" {
			missing = append(missing, "estrutura societária")
		}
		if estrutura == "mei" {
			if _, ok := business.GetBool("faturamento_mei_ok"); !ok {
				missing = append(missing, "confirmação de faturamento MEI")
			}
		}
		if estrutura == "socios" {
			if n, ok := business.Number("numero_socios"); !ok || n == 0 {
				missing = append(missing, "número de sócios")
			}
		}

	case domain.StageProposta:
		if !proposal.IsTrue("aceite_proposta") {
			missing = append(missing, "aceite da proposta")
		}

	case domain.StageContratacao:
		// Contract data may live in either section; the lead profile backs
		// the contract when a dedicated value was never collected.
		if !contract.Has("nome_completo") && !lead.Has("nome_completo") {
			missing = append(missing, "nome completo para contrato")
		}
		if !contract.Has("cpf") && !lead.Has("cpf") {
			missing = append(missing, "CPF")
		}
		if !contract.Has("email") && !lead.Has("email") {
			missing = append(missing, "email para contrato")
		}
		if !contract.Has("telefone") && !lead.Has("telefone") {
			missing = append(missing, "telefone para contrato")
		}
		if !contract.Has("data_nascimento") && !lead.Has("data_nascimento") {
			missing = append(missing, "data de nascimento")
		}
		if !contract.Has("metodo_assinatura") {
			missing = append(missing, "método de assinatura")
		}
		if !contract.IsTrue("contrato_assinado") {
			missing = append(missing, "confirmação de assinatura")
		}

	case domain.StageColetaDocumentos:
		if !documents.Has("rg_frente") {
			missing = append(missing, "foto frente RG/CNH")
		}
		if !documents.Has("rg_verso") {
			missing = append(missing, "foto verso RG/CNH")
		}
		if !documents.Has("comprovante_residencia") {
			missing = append(missing, "comprovante de residência")
		}

	case domain.StageDefinicaoEmpresa:
		if !company.Has("nome_fantasia") {
			missing = append(missing, "nome fantasia")
		}
		if !company.Has("razao_social") {
			missing = append(missing, "razão social")
		}
		if _, ok := company.Number("capital_social"); !ok {
			missing = append(missing, "capital social")
		}
		if n, ok := business.Number("numero_socios"); ok && n > 0 && !company.IsTrue("participacoes_definidas") {
			missing = append(missing, "divisão das participações")
		}

	case domain.StageEscolhaCNAE:
		if !company.Has("cnae_principal") {
			missing = append(missing, "CNAE principal")
		}
		if !company.IsTrue("cnaes_confirmados") {
			missing = append(missing, "confirmação de CNAEs")
		}

	case domain.StageEnderecoComercial:
		switch company.GetString("endereco_tipo") {
		case "":
			missing = append(missing, "escolha do tipo de endereço")
		case "virtual":
			if !company.Has("cidade_escritorio_virtual") {
				missing = append(missing, "cidade do escritório virtual")
			}
			if !company.IsTrue("aceite_escritorio_virtual") {
				missing = append(missing, "aceite do escritório virtual")
			}
		default:
			if !company.Has("cep") {
				missing = append(missing, "CEP")
			}
			if !company.Has("numero") {
				missing = append(missing, "número do endereço")
			}
			if !company.IsTrue("endereco_confirmado") {
				missing = append(missing, "confirmação do endereço")
			}
		}

	case domain.StageRevisaoFinal:
		if !review.IsTrue("confirmado") {
			missing = append(missing, "confirmação final")
		}

	case domain.StageProcessamento:
		if !process.IsTrue("finalizado") {
			missing = append(missing, "finalização do processamento")
		}
	}

	return missing
}

// Objective returns the short natural-language goal of a stage, rendered into
// the prompt every turn.
func Objective(stage domain.Stage) string {
	switch stage {
	case domain.StageInicial:
		return "acolher o cliente, coletar nome e entender o interesse"
	case domain.StageQualificacao:
		return "mapear necessidades e confirmar elegibilidade"
	case domain.StageProposta:
		return "apresentar proposta personalizada e obter aceite"
	case domain.StageContratacao:
		return "formalizar dados contratuais e coletar assinatura"
	case domain.StageColetaDocumentos:
		return "receber documentos pessoais com qualidade"
	case domain.StageDefinicaoEmpresa:
		return "definir identidade corporativa (nome, capital, participação)"
	case domain.StageEscolhaCNAE:
		return "selecionar CNAE principal e atividades secundárias"
	case domain.StageEnderecoComercial:
		return "definir endereço comercial mais vantajoso"
	case domain.StageRevisaoFinal:
		return "validar todos os dados antes da abertura"
	case domain.StageProcessamento:
		return "acompanhar etapas internas e informar progresso"
	case domain.StageConcluido:
		return "celebrar abertura e orientar primeiros passos"
	case domain.StagePausado:
		return "reengajar cliente com mensagens personalizadas"
	case domain.StageAbandonado:
		return "encerrar cordialmente e oferecer retorno futuro"
	}
	return "manter a conversa em andamento"
}
