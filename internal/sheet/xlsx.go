package sheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// decodeXLSX returns the rows of the first worksheet that has any.
// Cells are read raw: a "#,##0.00" format would otherwise turn 1250 into
// "1,250.00", which the comma-decimal number parser reads as 1.25.
func decodeXLSX(data []byte) (Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet %q: %v", ErrInvalidSpreadsheet, name, err)
		}
		if g := Grid(rows); !g.blank() {
			return g, nil
		}
	}

	return nil, ErrEmptyFile
}
