package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/linker-cli/internal/model"
	"github.com/sells-group/linker-cli/internal/records"
)

// outcomeColors maps audit outcomes to flag fills. Outcomes without an
// entry (ok) are not flagged.
var outcomeColors = map[model.AuditOutcome]records.RGB{
	model.OutcomeFetchFailed:     {R: 1, G: 0.85, B: 0.85},
	model.OutcomeNameUnavailable: {R: 1, G: 0.92, B: 0.80},
	model.OutcomeLowConfidence:   {R: 1, G: 0.98, B: 0.75},
}

// Writer accumulates cell writes and outcome flags, flushing them to the
// record store in batches so a crash mid-run loses at most one batch.
type Writer struct {
	store     records.Store
	batchSize int

	cells  []records.CellWrite
	styles []records.CellStyle
	filled map[cellKey]struct{}
}

type cellKey struct {
	row int
	col string
}

// NewWriter returns a Writer flushing every batchSize accumulated cells.
func NewWriter(store records.Store, batchSize int) *Writer {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Writer{
		store:     store,
		batchSize: batchSize,
		filled:    make(map[cellKey]struct{}),
	}
}

// MarkFilled records that a cell already holds a value, so later Put calls
// for it are dropped. Existing values are never overwritten.
func (w *Writer) MarkFilled(row int, col string) {
	w.filled[cellKey{row: row, col: col}] = struct{}{}
}

// Filled reports whether a cell holds a value, either pre-existing or
// written earlier in this run.
func (w *Writer) Filled(row int, col string) bool {
	_, ok := w.filled[cellKey{row: row, col: col}]
	return ok
}

// Put queues a value for an empty cell. Returns true if the write was
// accepted, false if the cell is already filled.
func (w *Writer) Put(ctx context.Context, row int, col, value string) (bool, error) {
	key := cellKey{row: row, col: col}
	if _, ok := w.filled[key]; ok {
		return false, nil
	}
	w.filled[key] = struct{}{}
	w.cells = append(w.cells, records.CellWrite{Row: row, Col: col, Value: value})
	if err := w.maybeFlush(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// Flag queues a background-color flag for a cell according to its audit
// outcome. OK outcomes leave the cell untouched.
func (w *Writer) Flag(ctx context.Context, row int, col string, outcome model.AuditOutcome) error {
	color, ok := outcomeColors[outcome]
	if !ok {
		return nil
	}
	w.styles = append(w.styles, records.CellStyle{Row: row, Col: col, Color: color})
	return w.maybeFlush(ctx)
}

func (w *Writer) maybeFlush(ctx context.Context) error {
	if len(w.cells)+len(w.styles) < w.batchSize {
		return nil
	}
	return w.Flush(ctx)
}

// Flush pushes all queued writes and flags to the record store. On failure
// the batch contents are logged before the error is propagated, so no
// resolved value is silently lost.
func (w *Writer) Flush(ctx context.Context) error {
	if len(w.cells) > 0 {
		if err := w.store.WriteCells(ctx, w.cells); err != nil {
			logBatch(w.cells)
			return eris.Wrap(err, "pipeline: flush cell writes")
		}
		w.cells = w.cells[:0]
	}
	if len(w.styles) > 0 {
		if err := w.store.SetCellStyles(ctx, w.styles); err != nil {
			logStyles(w.styles)
			return eris.Wrap(err, "pipeline: flush cell styles")
		}
		w.styles = w.styles[:0]
	}
	return nil
}

// Pending returns the number of queued, unflushed writes and flags.
func (w *Writer) Pending() int {
	return len(w.cells) + len(w.styles)
}

func logBatch(cells []records.CellWrite) {
	for _, c := range cells {
		zap.L().Error("unflushed cell write",
			zap.Int("row", c.Row),
			zap.String("col", c.Col),
			zap.String("value", c.Value))
	}
}

func logStyles(styles []records.CellStyle) {
	for _, s := range styles {
		zap.L().Error("unflushed cell flag",
			zap.Int("row", s.Row),
			zap.String("col", s.Col))
	}
}
