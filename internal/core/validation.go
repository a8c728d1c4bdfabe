package core

// validation.go applies the AT stock-file rules to a single product.
//
// Every rule is evaluated on every call (no short-circuit) so the error list
// always reflects all current problems. Rules run in a fixed order and each
// triggered rule may overwrite the suggestion, so the last one wins.

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Field limits imposed by the AT stock file format.
const (
	MaxCodeLength        = 60
	MaxDescriptionLength = 200
	MaxUnitLength        = 20
)

// ValidationResult is the outcome of validating one product.
type ValidationResult struct {
	Errors     []string
	Suggestion string
}

// Valid reports whether no rule was violated.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// rule inspects p and, when violated, records an error and optionally a
// suggestion on r.
type rule func(p Product, r *ValidationResult)

var rules = []rule{
	func(p Product, r *ValidationResult) {
		if isBlankOr(p.Code, NoCodeSentinel) {
			r.add("product code is required", "missing item reference.")
		}
	},
	func(p Product, r *ValidationResult) {
		if isBlankOr(p.Description, MissingDescriptionSentinel) {
			r.add("product description is required", "missing commercial designation.")
		}
	},
	func(p Product, r *ValidationResult) {
		if n := utf8.RuneCountInString(p.Code); n > MaxCodeLength {
			r.add(fmt.Sprintf("product code exceeds %d characters (current: %d)", MaxCodeLength, n),
				"abbreviate the item code.")
		}
	},
	func(p Product, r *ValidationResult) {
		if n := utf8.RuneCountInString(p.Description); n > MaxDescriptionLength {
			r.add(fmt.Sprintf("product description exceeds %d characters (current: %d)", MaxDescriptionLength, n),
				"shorten the designation text.")
		}
	},
	func(p Product, r *ValidationResult) {
		if n := utf8.RuneCountInString(p.Unit); n > MaxUnitLength {
			r.add(fmt.Sprintf("unit of measure exceeds %d characters (current: %d)", MaxUnitLength, n),
				"use an abbreviation (e.g. UN, KG).")
		}
	},
	func(p Product, r *ValidationResult) {
		if !p.Category.Valid() {
			r.add("invalid category; must be M, P, A, S, or T", "")
		}
	},
	func(p Product, r *ValidationResult) {
		if p.Quantity.IsNegative() {
			r.add("negative quantity", "")
		}
	},
}

func (r *ValidationResult) add(msg, suggestion string) {
	r.Errors = append(r.Errors, msg)
	if suggestion != "" {
		r.Suggestion = suggestion
	}
}

// Validate runs every rule against p.
func Validate(p Product) ValidationResult {
	var r ValidationResult
	for _, check := range rules {
		check(p, &r)
	}
	return r
}

// withValidation returns p with Errors and Suggestion replaced by a fresh
// validation run.
func withValidation(p Product) Product {
	r := Validate(p)
	p.Errors = r.Errors
	if p.Errors == nil {
		p.Errors = []string{}
	}
	p.Suggestion = r.Suggestion
	return p
}

// withValidationHint is withValidation for newly ingested products: a hint
// supplied by the source is kept when no rule produces a suggestion.
func withValidationHint(p Product) Product {
	hint := p.Suggestion
	p = withValidation(p)
	if p.Suggestion == "" {
		p.Suggestion = hint
	}
	return p
}

func isBlankOr(s, sentinel string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == sentinel
}
