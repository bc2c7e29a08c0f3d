package registry

import (
	"reflect"
	"strconv"
	"strings"
)

// affirmative/negative token lists for boolean coercion (pt-BR).
var (
	affirmativeTokens = map[string]bool{
		"sim": true, "yes": true, "y": true, "true": true,
		"verdade": true, "confirmo": true, "ok": true,
	}
	negativeTokens = map[string]bool{
		"não": true, "nao": true, "no": true, "false": true, "n": true,
	}
)

// enum synonym tables keyed by destination attribute. Unmapped input passes
// through as a lowercase token rather than being discarded, so plausible but
// unforeseen values are not silently lost.
var enumSynonyms = map[string]map[string]string{
	"tipo_interesse": {
		"1": "primeira_empresa", "primeira": "primeira_empresa",
		"primeira empresa": "primeira_empresa", "abrindo primeira empresa": "primeira_empresa",
		"primeira_empresa": "primeira_empresa",
		"2":                "nova_empresa", "nova": "nova_empresa", "nova empresa": "nova_empresa",
		"abrindo nova empresa": "nova_empresa", "tenho outras": "nova_empresa",
		"tenho outra": "nova_empresa", "nova_empresa": "nova_empresa",
		"3": "conhecendo", "conhecendo": "conhecendo", "apenas conhecendo": "conhecendo",
		"somente conhecendo": "conhecendo", "curioso": "conhecendo",
	},
	"tipo_negocio": {
		"comercio": "comercio", "venda": "comercio", "produtos": "comercio", "loja": "comercio",
		"servicos": "servicos", "servico": "servicos", "consultoria": "servicos",
		"industria": "industria", "industrial": "industria", "fabricacao": "industria",
		"misto": "misto", "comercio servicos": "misto", "comercio e servicos": "misto",
	},
	"estrutura_societaria": {
		"mei": "mei", "sozinho": "mei", "individual": "mei", "sem socios": "mei",
		"socios": "socios", "com socios": "socios", "sociedade": "socios", "ltda": "socios",
		"indefinido": "indefinido", "ainda nao sei": "indefinido", "nao sei": "indefinido",
	},
	"metodo_assinatura": {
		"sms": "sms", "celular": "sms", "telefone": "sms", "mensagem": "sms",
		"email": "email", "e mail": "email",
		"whatsapp": "whatsapp", "zap": "whatsapp",
	},
	"endereco_tipo": {
		"virtual": "virtual", "escritorio virtual": "virtual",
		"residencial": "residencial", "casa": "residencial",
		"comercial": "comercial", "escritorio proprio": "comercial",
	},
}

// cpfLength is the digit count of a Brazilian CPF.
const cpfLength = 11

// Coerce validates and converts a raw extracted value according to the field's
// registered rule. The boolean reports whether the value survived coercion; a
// false result means the field is discarded, never an error.
func Coerce(name string, raw any) (Field, any, bool) {
	field, ok := Lookup(name)
	if !ok || raw == nil {
		return Field{}, nil, false
	}

	switch field.Kind {
	case KindBool:
		v, ok := coerceBool(raw)
		return field, v, ok
	case KindInt:
		v, ok := coerceInt(raw)
		return field, v, ok
	case KindFloat:
		v, ok := coerceFloat(raw)
		return field, v, ok
	case KindEnum:
		v, ok := coerceEnum(field.Attribute, raw)
		return field, v, ok
	case KindTaxID:
		v, ok := coerceTaxID(raw)
		return field, v, ok
	case KindList:
		v, ok := coerceList(raw)
		return field, v, ok
	default:
		v, ok := coerceString(raw)
		return field, v, ok
	}
}

func coerceBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case float64:
		return v != 0, true
	case int:
		return v != 0, true
	case string:
		lowered := strings.ToLower(strings.TrimSpace(v))
		if affirmativeTokens[lowered] {
			return true, true
		}
		if negativeTokens[lowered] {
			return false, true
		}
	}
	return false, false
}

func coerceInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// coerceFloat parses currency-bearing numbers: "R$ 1.234,56" -> 1234.56 and
// "R$ 81 mil" -> 81000. Thousands dots are stripped and the decimal comma is
// normalized before parsing.
func coerceFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		cleaned := strings.ToLower(strings.TrimSpace(v))
		cleaned = strings.ReplaceAll(cleaned, "r$", "")
		multiplier := 1.0
		if idx := strings.Index(cleaned, "mil"); idx >= 0 && strings.TrimSpace(cleaned[idx+3:]) == "" {
			cleaned = cleaned[:idx]
			multiplier = 1000
		}
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
		cleaned = strings.TrimSpace(cleaned)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f * multiplier, true
	}
	return 0, false
}

func coerceEnum(attribute string, raw any) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	normalized := normalizeToken(s)
	if normalized == "" {
		return "", false
	}
	if canonical, ok := enumSynonyms[attribute][normalized]; ok {
		return canonical, true
	}
	return normalized, true
}

func coerceTaxID(raw any) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) != cpfLength {
		return "", false
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:], true
}

func coerceList(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out, true
	case string:
		parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' })
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, true
	}
	return nil, false
}

func coerceString(raw any) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// accentFold maps common pt-BR accented runes to their ASCII base so synonym
// lookup works regardless of how the model spells a token.
var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a',
	'é': 'e', 'ê': 'e',
	'í': 'i',
	'ó': 'o', 'ô': 'o', 'õ': 'o',
	'ú': 'u', 'ü': 'u',
	'ç': 'c',
}

// normalizeToken lowercases, folds accents and strips punctuation, keeping
// letters, digits and single spaces.
func normalizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '_':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ValuesEqual compares a stored section value with a freshly coerced one,
// tolerating the type drift a JSON round-trip introduces (int vs float64,
// []string vs []any).
func ValuesEqual(stored, coerced any) bool {
	switch s := stored.(type) {
	case float64:
		switch c := coerced.(type) {
		case float64:
			return s == c
		case int:
			return s == float64(c)
		}
	case int:
		switch c := coerced.(type) {
		case int:
			return s == c
		case float64:
			return float64(s) == c
		}
	case []any:
		c, ok := coerced.([]string)
		if !ok || len(s) != len(c) {
			return false
		}
		for i, item := range s {
			if str, ok := item.(string); !ok || str != c[i] {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(stored, coerced)
}
