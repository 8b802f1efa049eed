// Package records abstracts the tabular record store the pipeline reads
// names from and writes resolved URLs back to. Backends: a Google Sheets
// worksheet and a local XLSX file, selected by configuration.
package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// CellWrite sets one cell's value.
type CellWrite struct {
	Row   int
	Col   string
	Value string
}

// RGB is a background color with channels in [0,1].
type RGB struct {
	R, G, B float64
}

// CellStyle sets one cell's background color.
type CellStyle struct {
	Row   int
	Col   string
	Color RGB
}

// Store is the record-store collaborator contract. Reads are length-padded;
// write errors must propagate since a failed flush risks silent data loss.
type Store interface {
	// ReadColumn returns the values of col between startRow and endRow
	// inclusive, padded with "" to the full range length.
	ReadColumn(ctx context.Context, col string, startRow, endRow int) ([]string, error)

	// WriteCells applies the given cell values.
	WriteCells(ctx context.Context, writes []CellWrite) error

	// SetCellStyles applies the given background colors.
	SetCellStyles(ctx context.Context, styles []CellStyle) error
}

// ColumnIndex converts a spreadsheet column letter to its 1-based index:
// A=1, Z=26, AA=27.
func ColumnIndex(col string) (int, error) {
	col = strings.ToUpper(strings.TrimSpace(col))
	if col == "" {
		return 0, eris.New("records: empty column")
	}
	n := 0
	for _, ch := range col {
		if ch < 'A' || ch > 'Z' {
			return 0, eris.Errorf("records: invalid column %q", col)
		}
		n = n*26 + int(ch-'A') + 1
	}
	return n, nil
}

// A1 renders a column letter and row as an A1 cell reference.
func A1(col string, row int) string {
	return fmt.Sprintf("%s%d", strings.ToUpper(strings.TrimSpace(col)), row)
}
