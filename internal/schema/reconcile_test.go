package schema

import (
	"testing"

	"github.com/makeapi/makeapi-bff-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Preço", "preco"},
		{"preco ", "preco"},
		{"  Nome   Completo  ", "nome completo"},
		{"DESCRIÇÃO", "descricao"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTitle(tt.in), tt.in)
	}
}

func produtosCampos() []domain.EndpointField {
	return []domain.EndpointField{
		{Title: "nome", Tipo: domain.FieldString},
		{Title: "descricao", Tipo: domain.FieldString, Mult: true},
		{Title: "preco", Tipo: domain.FieldNumber},
		{Title: "imagem", Tipo: domain.FieldImage},
	}
}

func TestReconcile_KeySetIsExactlyTheSchema(t *testing.T) {
	ws := Reconcile(produtosCampos(), map[string]any{
		"nome":        "iPhone 15",
		"preco":       float64(4999),
		"legacyField": "ignored",
	})

	require.Len(t, ws.Values, 4)
	assert.Equal(t, "iPhone 15", ws.Values["nome"])
	assert.Equal(t, float64(4999), ws.Values["preco"])
	assert.Equal(t, "", ws.Values["descricao"])
	assert.Equal(t, "", ws.Values["imagem"])
	assert.NotContains(t, ws.Values, "legacyField")
	assert.Equal(t, 2, ws.Matched)
}

func TestReconcile_ExactMatchWinsOverNormalized(t *testing.T) {
	campos := []domain.EndpointField{{Title: "Preço", Tipo: domain.FieldNumber}}
	ws := Reconcile(campos, map[string]any{
		"Preço": float64(1),
		"preco": float64(2),
	})
	assert.Equal(t, float64(1), ws.Values["Preço"])
}

func TestReconcile_NormalizedFallback(t *testing.T) {
	campos := []domain.EndpointField{{Title: "Preço", Tipo: domain.FieldNumber}}
	ws := Reconcile(campos, map[string]any{"preco ": float64(2)})
	assert.Equal(t, float64(2), ws.Values["Preço"])
	assert.Equal(t, 1, ws.Matched)
}

func TestReconcile_ReportsCollisions(t *testing.T) {
	campos := []domain.EndpointField{{Title: "Preço", Tipo: domain.FieldNumber}}
	ws := Reconcile(campos, map[string]any{
		"preco":  float64(1),
		"PRECO ": float64(2),
	})
	assert.Contains(t, ws.Collisions, "Preço")
	assert.Equal(t, 1, ws.Matched, "one field resolved, however ambiguously")
}

func TestReconcile_EmptyStorage(t *testing.T) {
	ws := Reconcile(produtosCampos(), nil)
	assert.True(t, ws.Empty())
	require.Len(t, ws.Values, 4)
	for _, campo := range produtosCampos() {
		assert.Equal(t, "", ws.Values[campo.Title])
	}
}

func TestSerialize_RoundTripIsStable(t *testing.T) {
	stored := map[string]any{
		"nome":      "MacBook Pro",
		"descricao": "Notebook profissional",
		"preco":     float64(12999),
		"imagem":    "/macbook.png",
	}
	first := Reconcile(produtosCampos(), stored).Serialize()
	second := Reconcile(produtosCampos(), first).Serialize()
	assert.Equal(t, first, second)
}

func TestExtractData(t *testing.T) {
	assert.Equal(t, map[string]any{"a": "b"}, ExtractData(map[string]any{"a": "b"}))
	assert.Equal(t, map[string]any{"a": "b"}, ExtractData(map[string]any{"data": map[string]any{"a": "b"}}))
	assert.Empty(t, ExtractData(nil))
}

func TestCoerce(t *testing.T) {
	num := domain.EndpointField{Title: "preco", Tipo: domain.FieldNumber}
	str := domain.EndpointField{Title: "nome", Tipo: domain.FieldString}

	assert.Equal(t, float64(42), Coerce(num, "42"))
	assert.Equal(t, "", Coerce(num, ""))
	assert.Equal(t, "abc", Coerce(num, "abc"), "invalid numeric text passes through")
	assert.Equal(t, "42", Coerce(str, "42"))
}
