package export

import (
	"fmt"
	"strings"

	"github.com/fadilmartias/skillwise/internal/roadmap"
	"github.com/xuri/excelize/v2"
)

const progressSheet = "Progress"

var progressColumns = []struct {
	header string
	width  float64
}{
	{"Section", 28},
	{"Item", 60},
	{"Tags", 32},
	{"Done", 8},
}

// ProgressXLSX writes one row per roadmap bullet with its completion state.
func ProgressXLSX(text string, p roadmap.Progress) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", progressSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	headers := make([]any, len(progressColumns))
	for i, c := range progressColumns {
		headers[i] = c.header
	}
	if err := writeRow(f, progressSheet, 1, headers...); err != nil {
		return nil, err
	}

	row := 2
	done := 0
	for _, s := range roadmap.Group(roadmap.Classify(text)) {
		for _, b := range s.Bullets() {
			checked := p[roadmap.KeyFor(s, b)]
			if checked {
				done++
			}
			if err := writeRow(f, progressSheet, row, s.Title, b.Text, strings.Join(b.Tags, ", "), checked); err != nil {
				return nil, err
			}
			row++
		}
	}

	total := row - 2
	if err := writeRow(f, progressSheet, row, fmt.Sprintf("Completed %d of %d", done, total)); err != nil {
		return nil, err
	}

	for i, c := range progressColumns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("xlsx column: %w", err)
		}
		if err := f.SetColWidth(progressSheet, col, col, c.width); err != nil {
			return nil, fmt.Errorf("xlsx column width %s: %w", col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// writeRow sets values from column A onwards and stops at the first failure.
func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("xlsx cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("xlsx cell %s: %w", cell, err)
		}
	}
	return nil
}
