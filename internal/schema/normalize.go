// Package schema implements the form/normalization layer: it reconciles
// an endpoint's ordered field list against a possibly inconsistent
// stored item payload, producing a stable, schema-complete working set
// for editing, and serializes edits back into the storage shape.
package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTitle canonicalizes a field title (or stored data key) for
// matching: NFD decomposition, combining marks stripped, internal
// whitespace collapsed to single spaces, lowercased and trimmed.
// "Preço" and "preco " normalize to the same string.
func NormalizeTitle(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.ToLower(strings.Join(strings.Fields(stripped), " "))
}
