package core

import (
	"strings"

	"github.com/google/uuid"
)

// NormalizeRow converts one data row into candidate product fields using m.
// Missing code and description become sentinels so the validator flags them;
// unmapped numeric columns read as zero. Returns false for blank rows, which
// are skipped without producing an error.
//
// The returned product has no ID and has not been validated.
func NormalizeRow(row []string, m ColumnMapping) (Product, bool) {
	if isEmptyRow(row) {
		return Product{}, false
	}

	p := Product{
		Code:        cellAt(row, m.Code),
		Description: cellAt(row, m.Description),
		Category:    DefaultCategory,
		Unit:        DefaultUnit,
		Quantity:    ParseNumber(cellAt(row, m.Quantity)),
		UnitValue:   ParseNumber(cellAt(row, m.UnitValue)),
	}
	if p.Code == "" {
		p.Code = NoCodeSentinel
	}
	if p.Description == "" {
		p.Description = MissingDescriptionSentinel
	}

	return p, true
}

// NormalizeRows converts data rows into validated products with fresh IDs.
// Blank rows are dropped; the second return value counts them.
func NormalizeRows(rows [][]string, m ColumnMapping) ([]Product, int) {
	products := make([]Product, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		p, ok := NormalizeRow(row, m)
		if !ok {
			skipped++
			continue
		}
		p.ID = uuid.NewString()
		products = append(products, withValidation(p))
	}

	return products, skipped
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
