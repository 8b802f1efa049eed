package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/linker-cli/pkg/sheets"
)

// fakeSheets records calls and serves canned value ranges.
type fakeSheets struct {
	values       []sheets.ValueRange
	gotRanges    []string
	gotData      []sheets.ValueRange
	gotRequests  []sheets.Request
	sheetIDCalls int
}

func (f *fakeSheets) BatchGet(_ context.Context, ranges []string) ([]sheets.ValueRange, error) {
	f.gotRanges = append(f.gotRanges, ranges...)
	return f.values, nil
}

func (f *fakeSheets) BatchUpdateValues(_ context.Context, data []sheets.ValueRange) error {
	f.gotData = append(f.gotData, data...)
	return nil
}

func (f *fakeSheets) BatchUpdateFormat(_ context.Context, requests []sheets.Request) error {
	f.gotRequests = append(f.gotRequests, requests...)
	return nil
}

func (f *fakeSheets) SheetID(_ context.Context, _ string) (int64, error) {
	f.sheetIDCalls++
	return 42, nil
}

func TestSheetsStore_ReadColumn_Padded(t *testing.T) {
	fake := &fakeSheets{values: []sheets.ValueRange{
		{Range: "Roster!F2:F5", Values: [][]string{{"SHAHEEN, Nigara"}, {}, {"Name"}}},
	}}
	st := NewSheets(fake, "Roster")

	got, err := st.ReadColumn(context.Background(), "F", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"SHAHEEN, Nigara", "", "Name", ""}, got)
	assert.Equal(t, []string{"Roster!F2:F5"}, fake.gotRanges)
}

func TestSheetsStore_ReadColumn_EmptyRange(t *testing.T) {
	fake := &fakeSheets{}
	st := NewSheets(fake, "Roster")

	got, err := st.ReadColumn(context.Background(), "Q", 2, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "", ""}, got)

	_, err = st.ReadColumn(context.Background(), "Q", 5, 4)
	require.Error(t, err)
}

func TestSheetsStore_WriteCells_SortedPerCellRanges(t *testing.T) {
	fake := &fakeSheets{}
	st := NewSheets(fake, "Roster")

	err := st.WriteCells(context.Background(), []CellWrite{
		{Row: 9, Col: "Q", Value: "https://www.ijf.org/judoka/2"},
		{Row: 2, Col: "Q", Value: "https://www.ijf.org/judoka/1"},
	})
	require.NoError(t, err)
	require.Len(t, fake.gotData, 2)
	assert.Equal(t, "Roster!Q2", fake.gotData[0].Range)
	assert.Equal(t, [][]string{{"https://www.ijf.org/judoka/1"}}, fake.gotData[0].Values)
	assert.Equal(t, "Roster!Q9", fake.gotData[1].Range)
}

func TestSheetsStore_SetCellStyles(t *testing.T) {
	fake := &fakeSheets{}
	st := NewSheets(fake, "Roster")

	err := st.SetCellStyles(context.Background(), []CellStyle{
		{Row: 10, Col: "Q", Color: RGB{R: 1, G: 0.85, B: 0.85}},
	})
	require.NoError(t, err)
	require.Len(t, fake.gotRequests, 1)

	rc := fake.gotRequests[0].RepeatCell
	require.NotNil(t, rc)
	assert.Equal(t, int64(42), rc.Range.SheetID)
	assert.Equal(t, 9, rc.Range.StartRowIndex)
	assert.Equal(t, 10, rc.Range.EndRowIndex)
	assert.Equal(t, 16, rc.Range.StartColumnIndex) // Q is the 17th column
	assert.Equal(t, 17, rc.Range.EndColumnIndex)
	assert.Equal(t, "userEnteredFormat.backgroundColor", rc.Fields)
	assert.InDelta(t, 0.85, rc.Cell.UserEnteredFormat.BackgroundColor.Green, 1e-9)

	// Sheet id lookup happens once, then is cached.
	require.NoError(t, st.SetCellStyles(context.Background(), []CellStyle{{Row: 3, Col: "P", Color: RGB{R: 1, G: 0.92, B: 0.80}}}))
	assert.Equal(t, 1, fake.sheetIDCalls)
}
