package records

import (
	"context"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/linker-cli/pkg/sheets"
)

// SheetsStore backs the record store with a Google Sheets worksheet.
type SheetsStore struct {
	client    sheets.Client
	worksheet string

	sheetID       int64
	sheetIDCached bool
}

// NewSheets creates a SheetsStore over one worksheet of the client's
// spreadsheet.
func NewSheets(client sheets.Client, worksheet string) *SheetsStore {
	return &SheetsStore{client: client, worksheet: worksheet}
}

func (s *SheetsStore) ReadColumn(ctx context.Context, col string, startRow, endRow int) ([]string, error) {
	if endRow < startRow {
		return nil, eris.Errorf("records: invalid row range %d-%d", startRow, endRow)
	}

	rng := fmt.Sprintf("%s!%s%d:%s%d", s.worksheet, col, startRow, col, endRow)
	got, err := s.client.BatchGet(ctx, []string{rng})
	if err != nil {
		return nil, eris.Wrapf(err, "records: read column %s", col)
	}

	need := endRow - startRow + 1
	values := make([]string, need)
	if len(got) == 0 {
		return values, nil
	}
	for i, row := range got[0].Values {
		if i >= need {
			break
		}
		if len(row) > 0 {
			values[i] = row[0]
		}
	}
	return values, nil
}

func (s *SheetsStore) WriteCells(ctx context.Context, writes []CellWrite) error {
	if len(writes) == 0 {
		return nil
	}

	sorted := make([]CellWrite, len(writes))
	copy(sorted, writes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		return sorted[i].Col < sorted[j].Col
	})

	data := make([]sheets.ValueRange, 0, len(sorted))
	for _, w := range sorted {
		data = append(data, sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s", s.worksheet, A1(w.Col, w.Row)),
			Values: [][]string{{w.Value}},
		})
	}
	return eris.Wrap(s.client.BatchUpdateValues(ctx, data), "records: write cells")
}

func (s *SheetsStore) SetCellStyles(ctx context.Context, styles []CellStyle) error {
	if len(styles) == 0 {
		return nil
	}

	if !s.sheetIDCached {
		id, err := s.client.SheetID(ctx, s.worksheet)
		if err != nil {
			return eris.Wrap(err, "records: resolve sheet id")
		}
		s.sheetID = id
		s.sheetIDCached = true
	}

	requests := make([]sheets.Request, 0, len(styles))
	for _, st := range styles {
		colIdx, err := ColumnIndex(st.Col)
		if err != nil {
			return err
		}
		requests = append(requests, sheets.Request{RepeatCell: &sheets.RepeatCellRequest{
			Range: sheets.GridRange{
				SheetID:          s.sheetID,
				StartRowIndex:    st.Row - 1,
				EndRowIndex:      st.Row,
				StartColumnIndex: colIdx - 1,
				EndColumnIndex:   colIdx,
			},
			Cell: sheets.CellData{UserEnteredFormat: sheets.CellFormat{
				BackgroundColor: &sheets.Color{Red: st.Color.R, Green: st.Color.G, Blue: st.Color.B},
			}},
			Fields: "userEnteredFormat.backgroundColor",
		}})
	}
	return eris.Wrap(s.client.BatchUpdateFormat(ctx, requests), "records: set cell styles")
}
