package domain

import "encoding/json"

// FieldType is the closed set of data types a field can carry.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
	FieldImage  FieldType = "image"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldString, FieldNumber, FieldImage:
		return true
	}
	return false
}

// EndpointField is one typed column of a user-defined schema.
// The order of fields inside Endpoint.Campos is significant: it defines
// the display and traversal order for forms and previews.
type EndpointField struct {
	Title string    `json:"title"`
	Tipo  FieldType `json:"tipo"`
	Mult  bool      `json:"mult"` // string fields only: multi-line vs single-line input
}

// Endpoint is a user-defined named schema. The upstream MakeAPI service
// is the system of record; this application never stores endpoints.
type Endpoint struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Campos    []EndpointField `json:"campos"`
	Items     []EndpointItem  `json:"items,omitempty"`
	CreatedAt string          `json:"createdAt,omitempty"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
}

// EndpointItem is a record loosely conforming to its endpoint's schema.
// Data keys SHOULD match the endpoint's field titles, but the upstream
// may hold extra, missing or renamed keys (schema edits after items
// exist are not migrated).
type EndpointItem struct {
	ID         string         `json:"id"`
	EndpointID string         `json:"endpointId"`
	Data       map[string]any `json:"data"`
	CreatedAt  string         `json:"createdAt,omitempty"`
	UpdatedAt  string         `json:"updatedAt,omitempty"`
}

// UnmarshalJSON tolerates the three payload shapes the upstream is known
// to produce: {"data": {...}}, {"values": {...}} and field values spread
// directly on the item object. In the last case the whole object is kept
// as Data; reconciliation drops keys that match no schema field, so the
// meta keys (id, endpointId, ...) are harmless there.
func (it *EndpointItem) UnmarshalJSON(b []byte) error {
	type alias EndpointItem
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if a.Data == nil {
		var raw map[string]any
		if err := json.Unmarshal(b, &raw); err == nil {
			if values, ok := raw["values"].(map[string]any); ok {
				a.Data = values
			} else {
				a.Data = raw
			}
		}
	}
	*it = EndpointItem(a)
	return nil
}
