package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// delimiters are tried in this order; the first wins on equal counts.
var delimiters = []rune{';', ',', '\t'}

// sniffLines is how many leading lines are inspected to pick a delimiter.
const sniffLines = 10

// decodeCSV reads delimited text. Files that are not valid UTF-8 are assumed
// to be Windows-1252, the default of Portuguese Excel and most local ERPs.
func decodeCSV(data []byte) (Grid, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("%w: decode windows-1252: %v", ErrInvalidSpreadsheet, err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
	}
	return Grid(records), nil
}

// sniffDelimiter picks the candidate that occurs most often in the first
// lines. Quoted sections are ignored so decimal commas inside quotes do not
// count. Falls back to ';' when no candidate appears.
func sniffDelimiter(data []byte) rune {
	counts := make(map[rune]int, len(delimiters))

	lines, inQuotes := 0, false
	for _, r := range string(data) {
		if lines >= sniffLines {
			break
		}
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == '\n' && !inQuotes:
			lines++
		case !inQuotes:
			counts[r]++
		}
	}

	best, bestCount := delimiters[0], 0
	for _, d := range delimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}
