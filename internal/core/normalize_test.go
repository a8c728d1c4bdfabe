package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

var testMapping = ColumnMapping{Code: 0, Description: 1, Quantity: 2, UnitValue: 3}

func TestNormalizeRow(t *testing.T) {
	tests := []struct {
		name     string
		row      []string
		wantOK   bool
		wantCode string
		wantDesc string
		wantQty  string
		wantVal  string
	}{
		{
			name:     "complete row",
			row:      []string{"A1", "Parafuso M6", "10", "0,25"},
			wantOK:   true,
			wantCode: "A1",
			wantDesc: "Parafuso M6",
			wantQty:  "10",
			wantVal:  "0.25",
		},
		{
			name:     "missing code and description become sentinels",
			row:      []string{"", " ", "3", "1"},
			wantOK:   true,
			wantCode: NoCodeSentinel,
			wantDesc: MissingDescriptionSentinel,
			wantQty:  "3",
			wantVal:  "1",
		},
		{
			name:     "short row reads missing cells as empty",
			row:      []string{"B2"},
			wantOK:   true,
			wantCode: "B2",
			wantDesc: MissingDescriptionSentinel,
			wantQty:  "0",
			wantVal:  "0",
		},
		{
			name:     "excel formula prefix",
			row:      []string{`="007"`, "Anilha", "abc", "2.5"},
			wantOK:   true,
			wantCode: "007",
			wantDesc: "Anilha",
			wantQty:  "0",
			wantVal:  "2.5",
		},
		{
			name:   "blank row is skipped",
			row:    []string{"", "  ", ""},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := NormalizeRow(tt.row, testMapping)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeRow() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if p.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", p.Code, tt.wantCode)
			}
			if p.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", p.Description, tt.wantDesc)
			}
			if !p.Quantity.Equal(decimal.RequireFromString(tt.wantQty)) {
				t.Errorf("Quantity = %s, want %s", p.Quantity, tt.wantQty)
			}
			if !p.UnitValue.Equal(decimal.RequireFromString(tt.wantVal)) {
				t.Errorf("UnitValue = %s, want %s", p.UnitValue, tt.wantVal)
			}
			if p.Category != CategoryMerchandise || p.Unit != DefaultUnit {
				t.Errorf("Category/Unit = %s/%s, want M/UN", p.Category, p.Unit)
			}
		})
	}
}

func TestNormalizeRow_UnmappedFields(t *testing.T) {
	m := UnmappedColumns()
	m.Description = 0

	p, ok := NormalizeRow([]string{"Porca", "99"}, m)
	if !ok {
		t.Fatal("NormalizeRow() ok = false, want true")
	}
	if p.Code != NoCodeSentinel {
		t.Errorf("Code = %q, want %q", p.Code, NoCodeSentinel)
	}
	if !p.Quantity.IsZero() || !p.UnitValue.IsZero() {
		t.Errorf("Quantity/UnitValue = %s/%s, want 0/0", p.Quantity, p.UnitValue)
	}
}

func TestNormalizeRows(t *testing.T) {
	rows := [][]string{
		{"A1", "Parafuso", "10", "0,25"},
		{"", "", "", ""},
		{"", "Sem código", "1", "1"},
	}

	products, skipped := NormalizeRows(rows, testMapping)

	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(products) != 2 {
		t.Fatalf("len(products) = %d, want 2", len(products))
	}
	if products[0].ID == "" || products[0].ID == products[1].ID {
		t.Errorf("IDs = %q, %q, want distinct non-empty", products[0].ID, products[1].ID)
	}
	if products[0].HasErrors() {
		t.Errorf("products[0].Errors = %v, want none", products[0].Errors)
	}
	if products[0].Errors == nil {
		t.Error("products[0].Errors = nil, want empty slice")
	}
	if !products[1].HasErrors() {
		t.Error("products[1] should fail validation for its missing code")
	}
}
