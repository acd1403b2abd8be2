package schema

import (
	"strconv"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
)

// WorkingSet is the schema-complete editing view of an item: its key set
// is always exactly the endpoint's field titles, in field order,
// regardless of what the stored data contained.
type WorkingSet struct {
	Fields []domain.EndpointField
	Values map[string]any // keyed by the exact field title

	// Matched counts values resolved from the stored data (as opposed
	// to substituted empties). Zero in edit mode triggers the one-shot
	// rehydration fallback.
	Matched int

	// Collisions lists field titles whose normalized lookup matched
	// more than one stored key. Resolution order is undefined; callers
	// should log these.
	Collisions []string
}

// ExtractData pulls the candidate data object out of an item value:
// an enclosed "data" property when present, otherwise the value itself,
// otherwise an empty mapping.
func ExtractData(v map[string]any) map[string]any {
	if v == nil {
		return map[string]any{}
	}
	if inner, ok := v["data"].(map[string]any); ok {
		return inner
	}
	return v
}

// Reconcile maps stored item data onto the endpoint's current field
// list. Each field resolves via a two-stage lookup: exact title match
// first, then a normalized match (case, diacritics and whitespace
// insensitive). Unmatched fields get an empty string for every tipo;
// extra stored keys are dropped from the view (not from storage).
func Reconcile(campos []domain.EndpointField, stored map[string]any) *WorkingSet {
	ws := &WorkingSet{
		Fields: campos,
		Values: make(map[string]any, len(campos)),
	}
	for _, campo := range campos {
		v, ok, ambiguous := resolveValue(stored, campo.Title)
		if !ok {
			ws.Values[campo.Title] = ""
			continue
		}
		if ambiguous {
			ws.Collisions = append(ws.Collisions, campo.Title)
		}
		ws.Values[campo.Title] = v
		ws.Matched++
	}
	return ws
}

// Serialize returns the full payload for submission. Partial updates are
// not supported: every submit overwrites all fields the schema defines.
func (ws *WorkingSet) Serialize() map[string]any {
	out := make(map[string]any, len(ws.Values))
	for k, v := range ws.Values {
		out[k] = v
	}
	return out
}

// Empty reports whether nothing at all was resolved from storage.
func (ws *WorkingSet) Empty() bool {
	return ws.Matched == 0
}

// Coerce applies the per-type change contract to raw text input:
// strings and images are stored verbatim, numbers keep "" as "" and
// parse everything else as floating point. Invalid numeric text is not
// rejected here; it passes through unchanged.
func Coerce(campo domain.EndpointField, raw string) any {
	if campo.Tipo != domain.FieldNumber || raw == "" {
		return raw
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// CoerceValues applies Coerce to every string value that lands on a
// typed field, so "42" posted against a number field is stored as 42.
// Keys that match no field pass through untouched.
func CoerceValues(campos []domain.EndpointField, values map[string]any) map[string]any {
	byTitle := make(map[string]domain.EndpointField, len(campos))
	for _, campo := range campos {
		byTitle[NormalizeTitle(campo.Title)] = campo
	}

	out := make(map[string]any, len(values))
	for k, v := range values {
		if raw, isString := v.(string); isString {
			if campo, ok := byTitle[NormalizeTitle(k)]; ok {
				out[k] = Coerce(campo, raw)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func resolveValue(stored map[string]any, title string) (v any, ok bool, ambiguous bool) {
	if v, ok = stored[title]; ok {
		return v, true, false
	}
	want := NormalizeTitle(title)
	matches := 0
	for k, kv := range stored {
		if NormalizeTitle(k) == want {
			if matches == 0 {
				v, ok = kv, true
			}
			matches++
		}
	}
	return v, ok, matches > 1
}
