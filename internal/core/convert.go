package core

// convert.go provides coercion of spreadsheet cells into domain values.
//
// These functions handle the messy reality of user-provided spreadsheets:
//   - Portuguese decimal commas ("19,99")
//   - Stray whitespace and non-breaking spaces inside numbers ("1 250")
//   - Excel formula prefixes (="value")
//   - Units glued to the number ("10UN")
//
// Numeric coercion never fails: a cell that cannot be read as a number
// becomes zero so a single bad cell does not abort the import.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// numericPrefix matches the leading number of a cleaned cell.
// Matches integers, decimals, and scientific notation.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber coerces a raw cell or JSON value into a decimal.
//
// Numeric Go values are taken as-is. Strings have all whitespace removed and
// the first comma replaced by a period before parsing the leading number, so
// "19,99" and " 1 250 " both parse. Anything unparseable yields zero.
func ParseNumber(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero
		}
		return *v
	case float64:
		return fromFloat(v)
	case float32:
		return fromFloat(float64(v))
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint32:
		return decimal.NewFromInt(int64(v))
	case uint:
		return parseNumberString(strconv.FormatUint(uint64(v), 10))
	case uint64:
		return parseNumberString(strconv.FormatUint(v, 10))
	case string:
		return parseNumberString(v)
	case []byte:
		return parseNumberString(string(v))
	default:
		return decimal.Zero
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// maxExponent bounds the exponent of a decimal parsed from text. Rendering
// expands the exponent in full, so "1e50000000" must not survive as written.
const maxExponent = 30

func parseNumberString(s string) decimal.Decimal {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.Replace(s, ",", ".", 1)

	m := numericPrefix.FindString(s)
	if m == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(strings.TrimSuffix(m, "."))
	if err != nil || d.Exponent() > maxExponent || d.Exponent() < -maxExponent {
		// Shapes like "5.e3" are valid floats but not valid decimal literals.
		// Huge exponents are capped by float64 range; overflow becomes zero.
		f, ferr := strconv.ParseFloat(m, 64)
		if ferr != nil {
			return decimal.Zero
		}
		return fromFloat(f)
	}
	return d
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}

	return strings.TrimSpace(s)
}

// FormatAmount formats d with exactly two decimal places using sep as the
// decimal separator.
func FormatAmount(d decimal.Decimal, sep string) string {
	s := d.StringFixed(2)
	if sep != "." {
		s = strings.Replace(s, ".", sep, 1)
	}
	return s
}

// cellAt returns the cleaned cell at idx, or "" if idx is unmapped or past
// the end of a short row.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return CleanCell(row[idx])
}
