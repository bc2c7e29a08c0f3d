package registry

import "github.com/rmoraes/leadflow/internal/domain"

// Merge applies an extracted payload to the context through the coercer.
// Unknown fields and values that fail coercion are dropped; a value equal to
// the one already stored produces no mutation and no duplicate collected-field
// entry, making the merge idempotent. The returned slice lists the qualified
// attribute names that actually changed.
func Merge(ctx *domain.ConversationContext, extracted map[string]any) []string {
	if len(extracted) == 0 {
		return nil
	}

	var applied []string
	for name, raw := range extracted {
		field, value, ok := Coerce(name, raw)
		if !ok {
			continue
		}
		section := ctx.SectionByName(field.Section)
		if section == nil {
			continue
		}
		if current, exists := section[field.Attribute]; exists && ValuesEqual(current, value) {
			continue
		}
		section[field.Attribute] = value
		qualified := field.Section + "." + field.Attribute
		ctx.TrackField(qualified)
		applied = append(applied, qualified)
	}
	return applied
}
