package core

import (
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func validProduct() Product {
	return Product{
		ID:          "p1",
		Code:        "A1",
		Description: "Parafuso M6",
		Category:    CategoryMerchandise,
		Unit:        "UN",
		Quantity:    decimal.NewFromInt(10),
		UnitValue:   decimal.RequireFromString("0.25"),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name           string
		modify         func(p *Product)
		wantErrors     []string
		wantSuggestion string
	}{
		{
			name:       "valid product",
			modify:     func(p *Product) {},
			wantErrors: nil,
		},
		{
			name:           "blank code",
			modify:         func(p *Product) { p.Code = "  " },
			wantErrors:     []string{"product code is required"},
			wantSuggestion: "missing item reference.",
		},
		{
			name:           "code sentinel",
			modify:         func(p *Product) { p.Code = NoCodeSentinel },
			wantErrors:     []string{"product code is required"},
			wantSuggestion: "missing item reference.",
		},
		{
			name:           "description sentinel",
			modify:         func(p *Product) { p.Description = MissingDescriptionSentinel },
			wantErrors:     []string{"product description is required"},
			wantSuggestion: "missing commercial designation.",
		},
		{
			name:       "code at limit",
			modify:     func(p *Product) { p.Code = strings.Repeat("x", 60) },
			wantErrors: nil,
		},
		{
			name:           "code over limit",
			modify:         func(p *Product) { p.Code = strings.Repeat("x", 61) },
			wantErrors:     []string{"product code exceeds 60 characters (current: 61)"},
			wantSuggestion: "abbreviate the item code.",
		},
		{
			name:       "description at limit",
			modify:     func(p *Product) { p.Description = strings.Repeat("d", 200) },
			wantErrors: nil,
		},
		{
			name:           "description over limit",
			modify:         func(p *Product) { p.Description = strings.Repeat("d", 201) },
			wantErrors:     []string{"product description exceeds 200 characters (current: 201)"},
			wantSuggestion: "shorten the designation text.",
		},
		{
			name:       "multibyte code counts characters",
			modify:     func(p *Product) { p.Code = strings.Repeat("ç", 60) },
			wantErrors: nil,
		},
		{
			name:       "unit at limit",
			modify:     func(p *Product) { p.Unit = strings.Repeat("u", 20) },
			wantErrors: nil,
		},
		{
			name:           "unit over limit",
			modify:         func(p *Product) { p.Unit = strings.Repeat("u", 21) },
			wantErrors:     []string{"unit of measure exceeds 20 characters (current: 21)"},
			wantSuggestion: "use an abbreviation (e.g. UN, KG).",
		},
		{
			name:       "invalid category",
			modify:     func(p *Product) { p.Category = "X" },
			wantErrors: []string{"invalid category; must be M, P, A, S, or T"},
		},
		{
			name:       "negative quantity",
			modify:     func(p *Product) { p.Quantity = decimal.NewFromInt(-1) },
			wantErrors: []string{"negative quantity"},
		},
		{
			name: "all rules evaluated, last suggestion wins",
			modify: func(p *Product) {
				p.Code = ""
				p.Description = ""
				p.Unit = strings.Repeat("u", 21)
			},
			wantErrors: []string{
				"product code is required",
				"product description is required",
				"unit of measure exceeds 20 characters (current: 21)",
			},
			wantSuggestion: "use an abbreviation (e.g. UN, KG).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.modify(&p)

			got := Validate(p)
			if !reflect.DeepEqual(got.Errors, tt.wantErrors) {
				t.Errorf("Errors = %q, want %q", got.Errors, tt.wantErrors)
			}
			if got.Suggestion != tt.wantSuggestion {
				t.Errorf("Suggestion = %q, want %q", got.Suggestion, tt.wantSuggestion)
			}
			if got.Valid() != (len(tt.wantErrors) == 0) {
				t.Errorf("Valid() = %v with errors %q", got.Valid(), got.Errors)
			}
		})
	}
}

func TestValidate_EveryCategoryAccepted(t *testing.T) {
	for _, c := range Categories {
		p := validProduct()
		p.Category = c
		if r := Validate(p); !r.Valid() {
			t.Errorf("category %s rejected: %q", c, r.Errors)
		}
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"P", CategoryRawMaterial},
		{" t ", CategoryWorkInProgress},
		{"", CategoryMerchandise},
		{"Z", CategoryMerchandise},
	}
	for _, tt := range tests {
		if got := ParseCategory(tt.in); got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWithValidationHint(t *testing.T) {
	p := validProduct()
	p.Suggestion = "check supplier invoice"

	if got := withValidationHint(p); got.Suggestion != "check supplier invoice" {
		t.Errorf("hint dropped on valid product: %q", got.Suggestion)
	}

	p.Code = ""
	if got := withValidationHint(p); got.Suggestion != "missing item reference." {
		t.Errorf("Suggestion = %q, want rule suggestion to override hint", got.Suggestion)
	}

	if got := withValidation(validProduct()); got.Suggestion != "" || got.Errors == nil {
		t.Errorf("withValidation() = %+v, want empty suggestion and non-nil errors", got)
	}
}
