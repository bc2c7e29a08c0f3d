package flow

import (
	"strings"

	"github.com/rmoraes/leadflow/internal/domain"
)

// SyncContractData mirrors the shared identity attributes between the lead
// profile and the contract section, in both directions, so a value collected
// in one place satisfies the other. Existing values are never overwritten.
func SyncContractData(ctx *domain.ConversationContext) {
	attrs := []string{"nome_completo", "cpf", "email", "telefone", "data_nascimento"}
	for _, attr := range attrs {
		leadVal := ctx.LeadData.GetString(attr)
		contractVal := ctx.ContractData.GetString(attr)
		if contractVal != "" && leadVal == "" {
			ctx.LeadData[attr] = contractVal
		}
		if leadVal != "" && contractVal == "" {
			ctx.ContractData[attr] = leadVal
		}
	}
}

// ApplyFallbackInferences fills structured choices the model failed to emit by
// scanning the latest user message. These defaults are product policy carried
// over from the intake scripts, not verified business rules.
func ApplyFallbackInferences(ctx *domain.ConversationContext) {
	latest := strings.ToLower(ctx.LatestUserText())
	if latest == "" {
		return
	}

	if !ctx.LeadData.Has("tipo_interesse") {
		if inferred := inferTipoInteresse(latest); inferred != "" {
			ctx.LeadData["tipo_interesse"] = inferred
			ctx.TrackField(domain.SectionLeadData + ".tipo_interesse")
		}
	}

	if !ctx.BusinessProfile.Has("estrutura_societaria") {
		if inferred := inferEstruturaSocietaria(latest); inferred != "" {
			ctx.BusinessProfile["estrutura_societaria"] = inferred
			ctx.TrackField(domain.SectionBusinessProfile + ".estrutura_societaria")
		}
	}

	if !ctx.BusinessProfile.Has("tipo_negocio") {
		if inferred := inferTipoNegocio(latest); inferred != "" {
			ctx.BusinessProfile["tipo_negocio"] = inferred
			ctx.TrackField(domain.SectionBusinessProfile + ".tipo_negocio")
		}
	}
}

func inferTipoInteresse(text string) string {
	switch {
	case containsAny(text, "primeira"):
		return "primeira_empresa"
	case containsAny(text, "nova", "outra", "outras"):
		return "nova_empresa"
	case containsAny(text, "conhecendo", "curios", "avaliando"):
		return "conhecendo"
	}
	return ""
}

func inferEstruturaSocietaria(text string) string {
	switch {
	case containsAny(text, "sozinho", "mei", "individual"):
		return "mei"
	case containsAny(text, "socio", "sócio", "socios", "sócios"):
		return "socios"
	case containsAny(text, "nao sei", "não sei", "duvida", "dúvida"):
		return "indefinido"
	}
	return ""
}

// inferTipoNegocio defaults a generic "I want to open a company" intent to
// servicos, the most common category for new entrants.
func inferTipoNegocio(text string) string {
	intent := containsAny(text,
		"abrir empresa", "primeira empresa", "nova empresa", "meu negocio",
		"minha empresa", "empreender", "negocio proprio", "trabalhar por conta")
	if !intent {
		return ""
	}
	switch {
	case containsAny(text, "vender", "produto", "loja", "comercio", "comércio"):
		return "comercio"
	case containsAny(text, "fabrica", "fábrica", "producao", "produção", "industria", "indústria", "manufatura"):
		return "industria"
	default:
		return "servicos"
	}
}

func containsAny(text string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}
