package flow

import (
	"fmt"
	"strings"

	"github.com/rmoraes/leadflow/internal/domain"
)

const pendingMarker = "[pendente]"

// BuildPrompt renders the complete per-turn prompt for the text-generation
// call: behavioral instructions for the stage, recent history, a full snapshot
// of every section attribute (missing ones shown as pending, never omitted),
// the gaps of the current stage only, the stage objective, the raw latest
// utterance and a fixed closing directive.
func BuildPrompt(stage domain.Stage, ctx *domain.ConversationContext, userInput string, historyLimit int) string {
	var b strings.Builder

	if stage == domain.StageConcluido {
		b.WriteString("REGRA ESPECIAL PARA ESTÁGIO CONCLUÍDO\n")
		b.WriteString("Este é o ÚNICO estágio onde você NÃO faz perguntas.\n")
		b.WriteString("Celebre, informe que está concluído, e ENCERRE definitivamente.\n\n")
	} else {
		b.WriteString("REGRA ABSOLUTA E INVIOLÁVEL\n")
		b.WriteString("VOCÊ É OBRIGADO A TERMINAR SUA RESPOSTA COM UMA PERGUNTA DIRETA.\n")
		b.WriteString("A conversa PARA se você não fizer uma pergunta.\n\n")
	}

	b.WriteString("Instruções do estágio:\n")
	for _, line := range Instructions(stage) {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString("\nResumo das últimas mensagens:\n")
	b.WriteString(renderHistory(ctx, historyLimit))

	b.WriteString("\n\nVisão geral dos dados coletados até agora:\n")
	b.WriteString(renderSnapshot(ctx))

	missing := MissingFields(stage, ctx)
	descriptor := strings.Join(missing, ", ")
	if descriptor == "" {
		descriptor = "nenhum campo pendente"
	}
	fmt.Fprintf(&b, "\n\nCampos pendentes para este estágio: %s\n", descriptor)
	fmt.Fprintf(&b, "Estágio atual: %s\n", stage)
	fmt.Fprintf(&b, "Mensagem do cliente: %q\n\n", userInput)
	fmt.Fprintf(&b, "Objetivo imediato: %s\n", Objective(stage))
	b.WriteString("AVANÇO OBRIGATÓRIO: conduza o cliente ao próximo passo, mantendo tom acolhedor e celebrando cada progresso.")
	b.WriteString(" Respeite as instruções do estágio atual e atualize o JSON de dados conforme necessário.")

	return b.String()
}

// renderHistory renders the most recent history entries as "role: text" lines.
func renderHistory(ctx *domain.ConversationContext, limit int) string {
	msgs := ctx.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	if len(msgs) == 0 {
		return "(sem histórico relevante)"
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, m.Role+": "+m.Text)
	}
	return strings.Join(lines, "\n")
}

// renderSnapshot renders every tracked section attribute, using the pending
// marker for values not yet collected so the model always sees the full shape.
func renderSnapshot(ctx *domain.ConversationContext) string {
	lead := ctx.LeadData
	business := ctx.BusinessProfile
	proposal := ctx.ProposalStatus
	contract := ctx.ContractData
	documents := ctx.DocumentStatus
	company := ctx.CompanyProfile
	review := ctx.ReviewStatus
	process := ctx.ProcessStatus

	lines := []string{
		"Cliente",
		"- Nome: " + orPending(lead.GetString("nome_completo")),
		"- Interesse: " + orPending(lead.GetString("tipo_interesse")),
		"- Email: " + orPending(lead.GetString("email")) + " | Telefone: " + orPending(lead.GetString("telefone")),
		"- CPF: " + orPending(lead.GetString("cpf")) + " | Nascimento: " + orPending(lead.GetString("data_nascimento")),
		"",
		"Perfil do Negócio",
		"- Tipo de negócio: " + orPending(business.GetString("tipo_negocio")),
		"- Estrutura societária: " + orPending(business.GetString("estrutura_societaria")),
		"- Nº de sócios: " + orPendingNumber(business, "numero_socios"),
		"",
		"Proposta",
		"- Aceite: " + orPendingBool(proposal, "aceite_proposta"),
		"- Objeção: " + orDefault(proposal.GetString("motivo_objecao"), "nenhuma"),
		"",
		"Contrato",
		"- Nome: " + orPending(contract.GetString("nome_completo")),
		"- CPF: " + orPending(contract.GetString("cpf")),
		"- Método de assinatura: " + orPending(contract.GetString("metodo_assinatura")),
		"- Assinado: " + orPendingBool(contract, "contrato_assinado"),
		"",
		"Documentos",
		"- RG/CNH frente: " + yesNo(documents.Has("rg_frente")),
		"- RG/CNH verso: " + yesNo(documents.Has("rg_verso")),
		"- Comprovante: " + yesNo(documents.Has("comprovante_residencia")),
		"",
		"Empresa",
		"- Nome fantasia: " + orPending(company.GetString("nome_fantasia")),
		"- Razão social: " + orPending(company.GetString("razao_social")),
		"- Capital social: " + orPendingNumber(company, "capital_social"),
		"- CNAE principal: " + orPending(company.GetString("cnae_principal")),
		"- Tipo de endereço: " + orPending(company.GetString("endereco_tipo")),
		"- Endereço: " + orPending(company.GetString("endereco_completo")),
		"",
		"Revisão",
		"- Revisão confirmada: " + orPendingBool(review, "confirmado"),
		"",
		"Processo",
		"- Status: " + orDefault(process.GetString("status"), "[aguardando]") +
			" | CNPJ: " + orDefault(process.GetString("cnpj"), "---"),
	}
	return strings.Join(lines, "\n")
}

func orPending(v string) string {
	if v == "" {
		return pendingMarker
	}
	return v
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func orPendingNumber(s domain.Section, attr string) string {
	if n, ok := s.Number(attr); ok {
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", n), "0"), ".")
	}
	return pendingMarker
}

func orPendingBool(s domain.Section, attr string) string {
	if v, ok := s.GetBool(attr); ok {
		if v {
			return "sim"
		}
		return "não"
	}
	return pendingMarker
}

func yesNo(v bool) string {
	if v {
		return "sim"
	}
	return "não"
}
