// Package merchant normalizes raw statement descriptions into the lookup
// keys used by the category mapping.
package merchant

import "strings"

// Key returns the normalized merchant key for a raw statement description.
// It is a pure function: the same description always yields the same key, so
// re-importing a statement resolves to the same category mappings.
//
// Normalization: take the merchant segment of the description (some banks
// prefix a transaction type before a comma, e.g. "VISA PURCHASE, TESCO
// STORES 1234"), case-fold it, collapse runs of whitespace, and strip
// trailing reference numbers and store codes.
func Key(description string) string {
	s := description
	if parts := strings.SplitN(s, ",", 3); len(parts) >= 2 {
		s = parts[1]
	}

	tokens := strings.Fields(strings.ToLower(s))
	for len(tokens) > 1 && isReferenceToken(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// isReferenceToken reports whether a trailing token looks like a store code
// or transaction reference rather than part of the merchant name: all digits,
// optionally prefixed by '#' or '*'.
func isReferenceToken(tok string) bool {
	tok = strings.TrimLeft(tok, "#*")
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
