package core

import (
	"strings"

	"github.com/google/uuid"
)

// FromCandidates converts extractor output into validated products.
//
// Quantity and unit value accept JSON numbers or strings. An absent or unknown
// category becomes Merchandise and a blank unit becomes UN. The extractor's
// own note is kept as the suggestion unless a validation rule supplies one.
func FromCandidates(cands []Candidate) []Product {
	products := make([]Product, 0, len(cands))
	for _, c := range cands {
		unit := strings.TrimSpace(c.Unit)
		if unit == "" {
			unit = DefaultUnit
		}

		p := Product{
			ID:          uuid.NewString(),
			Code:        strings.TrimSpace(c.Code),
			Description: strings.TrimSpace(c.Description),
			Category:    ParseCategory(c.Category),
			Unit:        unit,
			Quantity:    ParseNumber(c.Quantity),
			UnitValue:   ParseNumber(c.UnitValue),
			Suggestion:  strings.TrimSpace(c.Suggestions),
		}
		products = append(products, withValidationHint(p))
	}
	return products
}
