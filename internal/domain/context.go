package domain

import (
	"fmt"
	"time"
)

// Section names of the conversation context. Keys inside each section are
// drawn only from the field registry; nothing else is ever persisted.
const (
	SectionLeadData        = "lead_data"
	SectionBusinessProfile = "business_profile"
	SectionProposalStatus  = "proposal_status"
	SectionContractData    = "contract_data"
	SectionDocumentStatus  = "document_status"
	SectionCompanyProfile  = "company_profile"
	SectionReviewStatus    = "review_status"
	SectionProcessStatus   = "process_status"
)

// Section is a mapping from attribute name to a typed value: string, float64,
// int, bool or []string. Values reloaded from JSON may arrive as float64 for
// any numeric attribute, so numeric reads go through Number.
type Section map[string]any

// GetString returns the attribute as a string, or "" when absent or non-string.
func (s Section) GetString(attr string) string {
	if v, ok := s[attr].(string); ok {
		return v
	}
	return ""
}

// GetBool returns the attribute as a bool. The second result reports whether
// the attribute is present and boolean.
func (s Section) GetBool(attr string) (bool, bool) {
	v, ok := s[attr].(bool)
	return v, ok
}

// IsTrue reports whether the attribute is present and exactly true.
func (s Section) IsTrue(attr string) bool {
	v, ok := s.GetBool(attr)
	return ok && v
}

// Number returns the attribute as a float64, tolerating int and int64 values
// written before a JSON round-trip. The second result reports presence.
func (s Section) Number(attr string) (float64, bool) {
	switch v := s[attr].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Has reports whether the attribute is present with a non-empty value.
func (s Section) Has(attr string) bool {
	switch v := s[attr].(type) {
	case nil:
		return false
	case string:
		return v != ""
	default:
		return true
	}
}

// Roles of history entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn record in the conversation history.
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationContext is the aggregate session record. It is mutated exactly
// once per turn by the orchestrator and persisted write-through.
type ConversationContext struct {
	Stage Stage `json:"stage"`

	LeadData        Section `json:"lead_data"`
	BusinessProfile Section `json:"business_profile"`
	ProposalStatus  Section `json:"proposal_status"`
	ContractData    Section `json:"contract_data"`
	DocumentStatus  Section `json:"document_status"`
	CompanyProfile  Section `json:"company_profile"`
	ReviewStatus    Section `json:"review_status"`
	ProcessStatus   Section `json:"process_status"`

	Messages        []Message `json:"messages"`
	FieldsCollected []string  `json:"fields_collected"`
	TurnCount       int       `json:"turn_count"`

	Qualified           bool   `json:"qualified"`
	QualificationReason string `json:"qualification_reason,omitempty"`

	StartedAt         time.Time `json:"started_at"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
}

// NewContext creates a fresh context positioned at the first primary stage.
func NewContext() *ConversationContext {
	now := time.Now().UTC()
	return &ConversationContext{
		Stage:             StageInicial,
		LeadData:          Section{},
		BusinessProfile:   Section{},
		ProposalStatus:    Section{},
		ContractData:      Section{},
		DocumentStatus:    Section{},
		CompanyProfile:    Section{},
		ReviewStatus:      Section{},
		ProcessStatus:     Section{},
		StartedAt:         now,
		LastInteractionAt: now,
	}
}

// EnsureSections backfills nil section maps after a JSON reload so callers can
// index into them without nil checks.
func (c *ConversationContext) EnsureSections() {
	for _, s := range []*Section{
		&c.LeadData, &c.BusinessProfile, &c.ProposalStatus, &c.ContractData,
		&c.DocumentStatus, &c.CompanyProfile, &c.ReviewStatus, &c.ProcessStatus,
	} {
		if *s == nil {
			*s = Section{}
		}
	}
}

// SectionByName returns the named section, or nil for unknown names.
func (c *ConversationContext) SectionByName(name string) Section {
	switch name {
	case SectionLeadData:
		return c.LeadData
	case SectionBusinessProfile:
		return c.BusinessProfile
	case SectionProposalStatus:
		return c.ProposalStatus
	case SectionContractData:
		return c.ContractData
	case SectionDocumentStatus:
		return c.DocumentStatus
	case SectionCompanyProfile:
		return c.CompanyProfile
	case SectionReviewStatus:
		return c.ReviewStatus
	case SectionProcessStatus:
		return c.ProcessStatus
	}
	return nil
}

// AppendMessage appends a turn record and trims history to the cap, dropping
// the oldest entries first.
func (c *ConversationContext) AppendMessage(role, text string, limit int) {
	c.Messages = append(c.Messages, Message{
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
	c.TrimHistory(limit)
}

// TrimHistory enforces the history cap (FIFO eviction).
func (c *ConversationContext) TrimHistory(limit int) {
	if limit > 0 && len(c.Messages) > limit {
		c.Messages = append([]Message(nil), c.Messages[len(c.Messages)-limit:]...)
	}
}

// TrackField records a qualified attribute name in the collected set. The set
// is append-only and deduplicated.
func (c *ConversationContext) TrackField(name string) {
	for _, f := range c.FieldsCollected {
		if f == name {
			return
		}
	}
	c.FieldsCollected = append(c.FieldsCollected, name)
}

// LatestUserText returns the text of the most recent user message, or "".
func (c *ConversationContext) LatestUserText() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i].Text
		}
	}
	return ""
}

// RecomputeQualification re-derives the qualification flag from the monthly
// income field against the configured threshold.
func (c *ConversationContext) RecomputeQualification(threshold float64) {
	renda, ok := c.LeadData.Number("renda_mensal")
	if !ok {
		c.Qualified = false
		c.QualificationReason = ""
		return
	}
	if renda >= threshold {
		c.Qualified = true
		c.QualificationReason = fmt.Sprintf("Qualificado: renda mensal de R$%.2f", renda)
		return
	}
	c.Qualified = false
	c.QualificationReason = fmt.Sprintf("Não qualificado: renda mensal de R$%.2f (mínimo R$%.2f)", renda, threshold)
}
