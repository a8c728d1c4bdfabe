// Package sheet decodes uploaded spreadsheet files into a plain cell grid.
//
// Decoders are registered per file extension. The grid carries raw cell text
// only; header detection and column mapping happen in core.
package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyFile is returned when a file has no non-blank cells.
	ErrEmptyFile = errors.New("empty file")

	// ErrUnsupportedType is returned for extensions with no registered decoder.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrInvalidSpreadsheet wraps decoder failures on malformed input.
	ErrInvalidSpreadsheet = errors.New("invalid spreadsheet")
)

// Grid is a decoded sheet: rows of cell text, possibly ragged.
type Grid [][]string

// Decode picks the decoder registered for name's extension and returns the
// resulting grid. A grid with no non-blank cell yields ErrEmptyFile.
func Decode(name string, data []byte) (Grid, error) {
	ext := Ext(name)
	dec, ok := Lookup(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	g, err := dec(data)
	if err != nil {
		return nil, err
	}
	if g.blank() {
		return nil, ErrEmptyFile
	}
	return g, nil
}

// IsSpreadsheet reports whether name has a registered decoder.
func IsSpreadsheet(name string) bool {
	_, ok := Lookup(Ext(name))
	return ok
}

// Ext returns the lowercased extension of name including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

func (g Grid) blank() bool {
	for _, row := range g {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return false
			}
		}
	}
	return true
}
