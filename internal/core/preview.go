package core

// preview.go stages decoded spreadsheets until the user confirms a mapping.
//
// Header matching is a heuristic, so nothing from a spreadsheet reaches the
// store until CommitSpreadsheet is called with an explicit ColumnMapping.
// The preview shows the detected headers, the proposed mapping and a handful
// of sample rows to review it against.

import (
	"time"
)

// PreviewSampleRows is how many data rows an ImportPreview carries.
const PreviewSampleRows = 5

// ImportPreview is returned by StageSpreadsheet.
type ImportPreview struct {
	SessionID  string        `json:"sessionId"`
	StagingID  string        `json:"stagingId"`
	FileName   string        `json:"fileName"`
	Phase      ImportPhase   `json:"phase"`
	HeaderRow  int           `json:"headerRow"` // 0-based row index in the sheet
	Headers    []string      `json:"headers"`
	Mapping    ColumnMapping `json:"mapping"`
	SampleRows [][]string    `json:"sampleRows"`
	DataRows   int           `json:"dataRows"`
}

// stagedImport is a decoded spreadsheet waiting for mapping confirmation.
type stagedImport struct {
	id        string
	fileName  string
	headerRow int
	headers   []string
	mapping   ColumnMapping
	rows      [][]string
	width     int
	created   time.Time
}

// newStagedImport splits grid at the detected header row. Returns
// ErrNoHeaderRow when every inspected row is blank.
func newStagedImport(id, fileName string, grid [][]string, now time.Time) (*stagedImport, error) {
	hdr := FindHeaderRow(grid)
	if hdr < 0 {
		return nil, ErrNoHeaderRow
	}

	rows := grid[hdr+1:]
	width := len(grid[hdr])
	for _, row := range rows {
		width = max(width, len(row))
	}

	// Data rows wider than the header get "Column N" labels too
	padded := make([]string, width)
	copy(padded, grid[hdr])
	headers := HeaderLabels(padded)

	return &stagedImport{
		id:        id,
		fileName:  fileName,
		headerRow: hdr,
		headers:   headers,
		mapping:   MatchColumns(grid[hdr]),
		rows:      rows,
		width:     width,
		created:   now,
	}, nil
}

// preview renders the staged import for the mapping UI.
func (st *stagedImport) preview(sessionID string) *ImportPreview {
	samples := make([][]string, 0, PreviewSampleRows)
	for _, row := range st.rows {
		if len(samples) == PreviewSampleRows {
			break
		}
		if isEmptyRow(row) {
			continue
		}
		samples = append(samples, append([]string(nil), row...))
	}

	return &ImportPreview{
		SessionID:  sessionID,
		StagingID:  st.id,
		FileName:   st.fileName,
		Phase:      PhaseStaged,
		HeaderRow:  st.headerRow,
		Headers:    append([]string(nil), st.headers...),
		Mapping:    st.mapping,
		SampleRows: samples,
		DataRows:   len(st.rows),
	}
}
