package schema

import (
	"fmt"
	"strings"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
)

// ValidateCampos enforces the create-endpoint rules on a candidate field
// list: at least one field with a non-empty title, no two titles equal
// case-insensitively, and only known field types. It returns the fields
// that survive (blank-titled rows are dropped, mirroring the console's
// pre-submit filtering).
func ValidateCampos(campos []domain.EndpointField) ([]domain.EndpointField, error) {
	valid := make([]domain.EndpointField, 0, len(campos))
	seen := make(map[string]string, len(campos))

	for _, campo := range campos {
		title := strings.TrimSpace(campo.Title)
		if title == "" {
			continue
		}
		if !campo.Tipo.Valid() {
			return nil, &domain.ErrValidation{
				Field:   campo.Title,
				Message: fmt.Sprintf("tipo de campo desconhecido: %q", campo.Tipo),
			}
		}
		lower := strings.ToLower(title)
		if prev, dup := seen[lower]; dup {
			return nil, &domain.ErrValidation{
				Field:   campo.Title,
				Message: fmt.Sprintf("nomes de campos não podem ser duplicados (%q e %q)", prev, campo.Title),
			}
		}
		seen[lower] = campo.Title
		valid = append(valid, campo)
	}

	if len(valid) == 0 {
		return nil, &domain.ErrValidation{Field: "campos", Message: "pelo menos um campo é obrigatório"}
	}
	return valid, nil
}
