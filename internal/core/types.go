package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the AT regulatory product category (ProductCategory).
type Category string

const (
	CategoryMerchandise    Category = "M" // Mercadorias
	CategoryRawMaterial    Category = "P" // Matérias-primas, subsidiárias e de consumo
	CategoryFinishedGood   Category = "A" // Produtos acabados e intermédios
	CategoryByProduct      Category = "S" // Subprodutos, desperdícios e refugos
	CategoryWorkInProgress Category = "T" // Produtos e trabalhos em curso
)

// Categories lists the closed set of valid categories in export order.
var Categories = []Category{
	CategoryMerchandise,
	CategoryRawMaterial,
	CategoryFinishedGood,
	CategoryByProduct,
	CategoryWorkInProgress,
}

// categoryLabels holds the Portuguese display labels used by the UI.
var categoryLabels = map[Category]string{
	CategoryMerchandise:    "Mercadorias",
	CategoryRawMaterial:    "Matérias-primas",
	CategoryFinishedGood:   "Produtos Acabados",
	CategoryByProduct:      "Subprodutos",
	CategoryWorkInProgress: "Produtos em Curso",
}

// Valid reports whether c is one of M, P, A, S or T.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display label, or the raw code for unknown categories.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// ParseCategory normalizes s to a Category, defaulting to Merchandise when
// s is empty or not a known code.
func ParseCategory(s string) Category {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return CategoryMerchandise
}

// Placeholders written by the normalizer when a mapped cell is missing.
const (
	NoCodeSentinel             = "NO-CODE"
	MissingDescriptionSentinel = "DESCRIPTION MISSING"
)

// Defaults applied to spreadsheet rows, which carry no category or unit column.
const (
	DefaultCategory = CategoryMerchandise
	DefaultUnit     = "UN"
)

// Product is a stock line as reported in the AT inventory file.
type Product struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitValue   decimal.Decimal `json:"unitValue"`
	Errors      []string        `json:"errors"`
	Suggestion  string          `json:"suggestion,omitempty"`
}

// HasErrors reports whether the product would be rejected by the AT.
func (p Product) HasErrors() bool {
	return len(p.Errors) > 0
}

// TotalValue returns quantity × unit value.
func (p Product) TotalValue() decimal.Decimal {
	return p.Quantity.Mul(p.UnitValue)
}

// clone returns a copy that shares no slices with p.
func (p Product) clone() Product {
	if p.Errors != nil {
		p.Errors = append([]string(nil), p.Errors...)
	}
	return p
}

// ProductUpdate carries a partial field update. Nil fields are left unchanged.
type ProductUpdate struct {
	Code        *string          `json:"code,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *Category        `json:"category,omitempty"`
	Unit        *string          `json:"unit,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	UnitValue   *decimal.Decimal `json:"unitValue,omitempty"`
}

// Empty reports whether the update sets no field.
func (u ProductUpdate) Empty() bool {
	return u.Code == nil && u.Description == nil && u.Category == nil &&
		u.Unit == nil && u.Quantity == nil && u.UnitValue == nil
}

// apply merges the set fields of u into p.
func (u ProductUpdate) apply(p *Product) {
	if u.Code != nil {
		p.Code = *u.Code
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Unit != nil {
		p.Unit = *u.Unit
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
	if u.UnitValue != nil {
		p.UnitValue = *u.UnitValue
	}
}

// Candidate is a product-like record returned by the document extractor.
// Numeric fields stay raw so they can go through ParseNumber.
type Candidate struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Category    string `json:"type"`
	Unit        string `json:"unit"`
	Quantity    any    `json:"quantity"`
	UnitValue   any    `json:"unitValue"`
	Suggestions string `json:"suggestions,omitempty"`
}

// Stats are the aggregates shown above the inventory table.
type Stats struct {
	Count       int             `json:"count"`
	SumQuantity decimal.Decimal `json:"sumQuantity"`
	SumValue    decimal.Decimal `json:"sumValue"`
	ErrorCount  int             `json:"errorCount"`
}

// Filter selects products for listing.
type Filter struct {
	Search     string // Case-insensitive substring of code or description
	OnlyErrors bool
}

// PageSize is the fixed number of products per page.
const PageSize = 50

// Page is one page of a filtered product listing.
type Page struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalItems int       `json:"totalItems"`
	TotalPages int       `json:"totalPages"`
}

// ImportPhase indicates the current stage of an import.
type ImportPhase string

const (
	PhaseStaged    ImportPhase = "staged"
	PhaseCommitted ImportPhase = "committed"
	PhaseFailed    ImportPhase = "failed"
)

// ImportResult contains the outcome of a committed import.
type ImportResult struct {
	SessionID  string      `json:"sessionId"`
	FileName   string      `json:"fileName"`
	Phase      ImportPhase `json:"phase"`
	Imported   int         `json:"imported"`
	Skipped    int         `json:"skipped"`
	WithErrors int         `json:"withErrors"`
	Products   []Product   `json:"products"`
	Stats      Stats       `json:"stats"`
}
