package core

// header.go detects which spreadsheet columns carry the four product fields.
//
// Real-world inventory exports rarely agree on header names, so matching is
// keyword based and case-insensitive. The result is only a proposal: imports
// are staged and the user confirms or corrects the mapping before commit.

import (
	"fmt"
	"regexp"
	"strings"
)

// Unmapped marks a field with no source column.
const Unmapped = -1

// MaxHeaderSearchRows bounds how far down the sheet the header row is looked for.
const MaxHeaderSearchRows = 20

// ColumnMapping holds the zero-based column index of each product field, or
// Unmapped.
type ColumnMapping struct {
	Code        int `json:"code"`
	Description int `json:"description"`
	Quantity    int `json:"quantity"`
	UnitValue   int `json:"unitValue"`
}

// UnmappedColumns returns a mapping with every field unmapped.
func UnmappedColumns() ColumnMapping {
	return ColumnMapping{
		Code:        Unmapped,
		Description: Unmapped,
		Quantity:    Unmapped,
		UnitValue:   Unmapped,
	}
}

// Validate checks that every mapped index falls within a row of width columns.
func (m ColumnMapping) Validate(width int) error {
	fields := []struct {
		name string
		idx  int
	}{
		{"code", m.Code},
		{"description", m.Description},
		{"quantity", m.Quantity},
		{"unitValue", m.UnitValue},
	}
	for _, f := range fields {
		if f.idx == Unmapped {
			continue
		}
		if f.idx < 0 || f.idx >= width {
			return fmt.Errorf("%w: %s column %d out of range (0-%d)", ErrInvalidMapping, f.name, f.idx, width-1)
		}
	}
	return nil
}

// fieldPattern pairs a mapping slot with the keywords that identify it.
type fieldPattern struct {
	re   *regexp.Regexp
	slot func(*ColumnMapping) *int
}

// fieldPatterns is ordered: when one header could serve several fields the
// earlier field claims it.
var fieldPatterns = []fieldPattern{
	{regexp.MustCompile(`c[óo]d|ref|artigo|sku|id|part`), func(m *ColumnMapping) *int { return &m.Code }},
	{regexp.MustCompile(`desc|designa|nome|produto|texto`), func(m *ColumnMapping) *int { return &m.Description }},
	{regexp.MustCompile(`qtd|quant|stock|saldo|exist|qty`), func(m *ColumnMapping) *int { return &m.Quantity }},
	{regexp.MustCompile(`pre[çc]o|valor|unit|custo|p\.v\.p`), func(m *ColumnMapping) *int { return &m.UnitValue }},
}

// MatchColumns proposes a mapping from header text. Headers are scanned in
// column order; each header is claimed by at most one field and each field
// keeps the first header that matches it.
func MatchColumns(headers []string) ColumnMapping {
	m := UnmappedColumns()

	for i, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		if lower == "" {
			continue
		}
		for _, fp := range fieldPatterns {
			slot := fp.slot(&m)
			if *slot != Unmapped || !fp.re.MatchString(lower) {
				continue
			}
			*slot = i
			break
		}
	}

	return m
}

// FindHeaderRow returns the index of the row with the most non-empty cells
// among the first MaxHeaderSearchRows rows. Ties keep the earliest row.
// Returns -1 when every candidate row is empty.
func FindHeaderRow(rows [][]string) int {
	best, bestCount := -1, 0
	for i, row := range rows {
		if i >= MaxHeaderSearchRows {
			break
		}
		n := 0
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				n++
			}
		}
		if n > bestCount {
			best, bestCount = i, n
		}
	}
	return best
}

// HeaderLabels returns display labels for a header row, naming blank cells
// "Column N" (1-based).
func HeaderLabels(row []string) []string {
	labels := make([]string, len(row))
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			cell = fmt.Sprintf("Column %d", i+1)
		}
		labels[i] = cell
	}
	return labels
}
