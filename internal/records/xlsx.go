package records

import (
	"context"
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXStore backs the record store with a local XLSX file, for offline runs
// against exported sheets. Writes are saved back to the same file.
type XLSXStore struct {
	path  string
	file  *xlsx.File
	sheet *xlsx.Sheet
}

// OpenXLSX opens the workbook at path and binds to the named sheet (the
// first sheet when sheetName is empty).
func OpenXLSX(path, sheetName string) (*XLSXStore, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "records: open xlsx %s", path)
	}

	var sheet *xlsx.Sheet
	if sheetName == "" {
		if len(file.Sheets) == 0 {
			return nil, eris.Errorf("records: %s has no sheets", path)
		}
		sheet = file.Sheets[0]
	} else {
		var ok bool
		sheet, ok = file.Sheet[sheetName]
		if !ok {
			return nil, eris.Errorf("records: sheet %q not found in %s", sheetName, path)
		}
	}

	return &XLSXStore{path: path, file: file, sheet: sheet}, nil
}

func (s *XLSXStore) ReadColumn(_ context.Context, col string, startRow, endRow int) ([]string, error) {
	if endRow < startRow {
		return nil, eris.Errorf("records: invalid row range %d-%d", startRow, endRow)
	}
	colIdx, err := ColumnIndex(col)
	if err != nil {
		return nil, err
	}

	values := make([]string, endRow-startRow+1)
	for i := range values {
		rowIdx := startRow + i - 1 // rows are 1-based in cell references
		if rowIdx >= len(s.sheet.Rows) {
			break
		}
		row := s.sheet.Rows[rowIdx]
		if colIdx-1 < len(row.Cells) {
			values[i] = row.Cells[colIdx-1].String()
		}
	}
	return values, nil
}

func (s *XLSXStore) WriteCells(_ context.Context, writes []CellWrite) error {
	if len(writes) == 0 {
		return nil
	}
	for _, w := range writes {
		cell, err := s.cell(w.Col, w.Row)
		if err != nil {
			return err
		}
		cell.SetString(w.Value)
	}
	return eris.Wrapf(s.file.Save(s.path), "records: save %s", s.path)
}

func (s *XLSXStore) SetCellStyles(_ context.Context, styles []CellStyle) error {
	if len(styles) == 0 {
		return nil
	}
	for _, st := range styles {
		cell, err := s.cell(st.Col, st.Row)
		if err != nil {
			return err
		}
		style := xlsx.NewStyle()
		style.Fill = *xlsx.NewFill("solid", argbHex(st.Color), "FF000000")
		style.ApplyFill = true
		cell.SetStyle(style)
	}
	return eris.Wrapf(s.file.Save(s.path), "records: save %s", s.path)
}

// cell returns the cell at (col, row), growing the sheet as needed.
func (s *XLSXStore) cell(col string, row int) (*xlsx.Cell, error) {
	colIdx, err := ColumnIndex(col)
	if err != nil {
		return nil, err
	}
	for len(s.sheet.Rows) < row {
		s.sheet.AddRow()
	}
	r := s.sheet.Rows[row-1]
	for len(r.Cells) < colIdx {
		r.AddCell()
	}
	return r.Cells[colIdx-1], nil
}

func argbHex(c RGB) string {
	to255 := func(v float64) int {
		return int(math.Round(math.Min(math.Max(v, 0), 1) * 255))
	}
	return fmt.Sprintf("FF%02X%02X%02X", to255(c.R), to255(c.G), to255(c.B))
}
