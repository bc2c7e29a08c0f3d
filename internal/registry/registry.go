// Package registry holds the closed table of recognized extraction fields and
// the coercion rules that turn raw model-provided values into typed section
// attributes. Unknown field names are dropped at this boundary; nothing
// outside the table is ever written to a conversation context.
package registry

import "github.com/rmoraes/leadflow/internal/domain"

// Kind is the coercion rule class applied to a field's raw value.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
	KindEnum
	KindTaxID
	KindList
)

// Field describes where a recognized extraction field lands and how its value
// is coerced before storage.
type Field struct {
	Section   string
	Attribute string
	Kind      Kind
}

// fields maps every recognized extraction field name (including aliases the
// model is known to emit) to its destination and coercion rule.
var fields = map[string]Field{
	// Lead profile
	"nome":            {domain.SectionLeadData, "nome_completo", KindString},
	"nome_cliente":    {domain.SectionLeadData, "nome_completo", KindString},
	"nome_completo":   {domain.SectionLeadData, "nome_completo", KindString},
	"email":           {domain.SectionLeadData, "email", KindString},
	"telefone":        {domain.SectionLeadData, "telefone", KindString},
	"tipo_interesse":  {domain.SectionLeadData, "tipo_interesse", KindEnum},
	"cpf":             {domain.SectionLeadData, "cpf", KindTaxID},
	"data_nascimento": {domain.SectionLeadData, "data_nascimento", KindString},
	"renda_mensal":    {domain.SectionLeadData, "renda_mensal", KindFloat},

	// Business profile
	"tipo_negocio":            {domain.SectionBusinessProfile, "tipo_negocio", KindEnum},
	"estrutura_societaria":    {domain.SectionBusinessProfile, "estrutura_societaria", KindEnum},
	"numero_socios":           {domain.SectionBusinessProfile, "numero_socios", KindInt},
	"faturamento_mei_ok":      {domain.SectionBusinessProfile, "faturamento_mei_ok", KindBool},
	"observacao_qualificacao": {domain.SectionBusinessProfile, "observacao", KindString},

	// Proposal
	"aceite_proposta":   {domain.SectionProposalStatus, "aceite_proposta", KindBool},
	"aceite":            {domain.SectionProposalStatus, "aceite_proposta", KindBool},
	"motivo_objecao":    {domain.SectionProposalStatus, "motivo_objecao", KindString},
	"objecao_resolvida": {domain.SectionProposalStatus, "objecao_resolvida", KindBool},

	// Contract
	"nome_contrato":            {domain.SectionContractData, "nome_completo", KindString},
	"cpf_contrato":             {domain.SectionContractData, "cpf", KindTaxID},
	"email_contrato":           {domain.SectionContractData, "email", KindString},
	"telefone_contrato":        {domain.SectionContractData, "telefone", KindString},
	"data_nascimento_contrato": {domain.SectionContractData, "data_nascimento", KindString},
	"metodo_assinatura":        {domain.SectionContractData, "metodo_assinatura", KindEnum},
	"contrato_assinado":        {domain.SectionContractData, "contrato_assinado", KindBool},

	// Documents
	"rg_frente":              {domain.SectionDocumentStatus, "rg_frente", KindString},
	"rg_verso":               {domain.SectionDocumentStatus, "rg_verso", KindString},
	"cnh_frente":             {domain.SectionDocumentStatus, "rg_frente", KindString},
	"cnh_verso":              {domain.SectionDocumentStatus, "rg_verso", KindString},
	"comprovante_residencia": {domain.SectionDocumentStatus, "comprovante_residencia", KindString},
	"titulo_eleitor":         {domain.SectionDocumentStatus, "titulo_eleitor", KindString},
	"documento_valido":       {domain.SectionDocumentStatus, "documento_valido", KindBool},

	// Company definition
	"nome_fantasia":           {domain.SectionCompanyProfile, "nome_fantasia", KindString},
	"razao_social":            {domain.SectionCompanyProfile, "razao_social", KindString},
	"razao_social_sugerida":   {domain.SectionCompanyProfile, "razao_social", KindString},
	"capital_social":          {domain.SectionCompanyProfile, "capital_social", KindFloat},
	"participacoes":           {domain.SectionCompanyProfile, "participacoes", KindList},
	"participacoes_definidas": {domain.SectionCompanyProfile, "participacoes_definidas", KindBool},

	// CNAE selection
	"descricao_atividade":      {domain.SectionCompanyProfile, "descricao_atividade", KindString},
	"cnae_principal":           {domain.SectionCompanyProfile, "cnae_principal", KindString},
	"cnae_principal_codigo":    {domain.SectionCompanyProfile, "cnae_principal_codigo", KindString},
	"cnae_principal_descricao": {domain.SectionCompanyProfile, "cnae_principal_descricao", KindString},
	"cnaes_secundarios":        {domain.SectionCompanyProfile, "cnaes_secundarios", KindList},
	"cnaes_confirmados":        {domain.SectionCompanyProfile, "cnaes_confirmados", KindBool},

	// Commercial address
	"endereco_tipo":             {domain.SectionCompanyProfile, "endereco_tipo", KindEnum},
	"cidade_escritorio_virtual": {domain.SectionCompanyProfile, "cidade_escritorio_virtual", KindString},
	"aceite_escritorio_virtual": {domain.SectionCompanyProfile, "aceite_escritorio_virtual", KindBool},
	"cep":                       {domain.SectionCompanyProfile, "cep", KindString},
	"numero":                    {domain.SectionCompanyProfile, "numero", KindString},
	"complemento":               {domain.SectionCompanyProfile, "complemento", KindString},
	"endereco_completo":         {domain.SectionCompanyProfile, "endereco_completo", KindString},
	"endereco_confirmado":       {domain.SectionCompanyProfile, "endereco_confirmado", KindBool},

	// Final review
	"revisao_confirmada": {domain.SectionReviewStatus, "confirmado", KindBool},
	"precisa_editar":     {domain.SectionReviewStatus, "precisa_editar", KindBool},
	"campo_para_editar":  {domain.SectionReviewStatus, "campo_para_editar", KindString},

	// Processing
	"processo_status":     {domain.SectionProcessStatus, "status", KindString},
	"processo_etapa":      {domain.SectionProcessStatus, "etapa_atual", KindString},
	"processo_mensagem":   {domain.SectionProcessStatus, "mensagem", KindString},
	"processo_finalizado": {domain.SectionProcessStatus, "finalizado", KindBool},
	"cnpj":                {domain.SectionProcessStatus, "cnpj", KindString},
	"tempo_estimado":      {domain.SectionProcessStatus, "tempo_estimado", KindString},
}

// Lookup returns the registry entry for a field name. The boolean reports
// whether the field is recognized.
func Lookup(name string) (Field, bool) {
	f, ok := fields[name]
	return f, ok
}

// KnownFields returns the number of registered field names.
func KnownFields() int {
	return len(fields)
}
