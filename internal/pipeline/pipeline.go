package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/linker-cli/internal/audit"
	"github.com/sells-group/linker-cli/internal/directory"
	"github.com/sells-group/linker-cli/internal/model"
	"github.com/sells-group/linker-cli/internal/normalize"
	"github.com/sells-group/linker-cli/internal/records"
	"github.com/sells-group/linker-cli/internal/resolve"
	"github.com/sells-group/linker-cli/internal/store"
)

const progressEvery = 25

// Target pairs a directory with the column its profile URLs live in and a
// resolver configured for it.
type Target struct {
	Column   string
	Resolver *resolve.Resolver
}

// Config assembles a Pipeline.
type Config struct {
	Records    records.Store
	Targets    []Target
	Registry   *directory.Registry
	Classifier *audit.Classifier // nil disables the audit pass
	Runs       store.Store       // nil disables run history
	NameCol    string
	StartRow   int
	EndRow     int
	BatchSize  int

	// AuditOnly skips resolution: existing URLs are re-checked and
	// flagged, empty cells stay empty.
	AuditOnly bool
}

// Pipeline walks a row range, fills empty profile-URL cells and audits the
// filled ones.
type Pipeline struct {
	cfg    Config
	writer *Writer
}

// New returns a Pipeline for the given configuration.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		writer: NewWriter(cfg.Records, cfg.BatchSize),
	}
}

// Run executes the pipeline over the configured row range and returns the
// run summary. Queued writes are flushed before returning even when a row
// fails, so completed work is never lost.
func (p *Pipeline) Run(ctx context.Context) (*model.RunSummary, error) {
	var run *model.Run
	if p.cfg.Runs != nil {
		var err error
		run, err = p.cfg.Runs.CreateRun(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
		zap.L().Info("run started", zap.String("run_id", run.ID))
	}

	summary, err := p.run(ctx)

	if run != nil {
		status := model.RunStatusComplete
		if err != nil {
			status = model.RunStatusFailed
		}
		if cerr := p.cfg.Runs.CompleteRun(context.WithoutCancel(ctx), run.ID, status, summary); cerr != nil {
			zap.L().Error("complete run", zap.String("run_id", run.ID), zap.Error(cerr))
		}
	}

	return &summary, err
}

func (p *Pipeline) run(ctx context.Context) (model.RunSummary, error) {
	var summary model.RunSummary

	names, urlCols, err := p.load(ctx)
	if err != nil {
		return summary, err
	}

	for i, raw := range names {
		row := p.cfg.StartRow + i

		if err := ctx.Err(); err != nil {
			return summary, eris.Wrap(err, "pipeline: canceled")
		}

		queries := normalize.Queries(raw)
		if queries == nil {
			continue
		}
		summary.Checked++

		if err := p.processRow(ctx, row, i, queries, urlCols, &summary); err != nil {
			ferr := p.writer.Flush(context.WithoutCancel(ctx))
			if ferr != nil {
				zap.L().Error("flush after failure", zap.Error(ferr))
			}
			return summary, err
		}

		if summary.Checked%progressEvery == 0 {
			zap.L().Info("progress",
				zap.Int("row", row),
				zap.Int("checked", summary.Checked),
				zap.Int("found", summary.Found),
				zap.Int("flagged", summary.Flagged))
		}
	}

	if err := p.writer.Flush(ctx); err != nil {
		return summary, err
	}

	zap.L().Info("run finished",
		zap.Int("checked", summary.Checked),
		zap.Int("found", summary.Found),
		zap.Int("flagged", summary.Flagged))
	return summary, nil
}

func (p *Pipeline) processRow(ctx context.Context, row, i int, queries []string, urlCols [][]string, summary *model.RunSummary) error {
	urls := make([]string, len(p.cfg.Targets))

	for j, target := range p.cfg.Targets {
		url := urlCols[j][i]
		if url != "" {
			p.writer.MarkFilled(row, target.Column)
		} else if p.cfg.AuditOnly {
			continue
		} else {
			result, err := target.Resolver.Resolve(ctx, queries)
			if err != nil {
				return err
			}
			if result == nil {
				continue
			}
			url = result.URL
			wrote, err := p.writer.Put(ctx, row, target.Column, url)
			if err != nil {
				return err
			}
			if wrote {
				summary.Found++
				zap.L().Info("resolved",
					zap.Int("row", row),
					zap.String("directory", target.Resolver.Directory().Name()),
					zap.String("url", url),
					zap.Float64("score", result.Score))
			}
		}
		urls[j] = url
	}

	if p.cfg.Classifier == nil {
		return nil
	}

	// Audit exactly one slot per record: the first target whose URL is
	// present and recognized. Secondary columns are left alone.
	for j, target := range p.cfg.Targets {
		url := urls[j]
		if url == "" {
			continue
		}
		dir, ok := p.cfg.Registry.ForURL(url)
		if !ok {
			zap.L().Debug("unrecognized profile url", zap.Int("row", row), zap.String("url", url))
			continue
		}
		outcome := p.cfg.Classifier.Classify(ctx, dir, url, queries)
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "pipeline: canceled")
		}
		if outcome != model.OutcomeOK {
			summary.Flagged++
			zap.L().Warn("flagged",
				zap.Int("row", row),
				zap.String("url", url),
				zap.String("outcome", string(outcome)))
		}
		if err := p.writer.Flag(ctx, row, target.Column, outcome); err != nil {
			return err
		}
		break
	}

	return nil
}

// load reads the name column and every target URL column concurrently. All
// columns come back padded to the full row range, so they index together.
func (p *Pipeline) load(ctx context.Context) ([]string, [][]string, error) {
	var names []string
	urlCols := make([][]string, len(p.cfg.Targets))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		names, err = p.cfg.Records.ReadColumn(gctx, p.cfg.NameCol, p.cfg.StartRow, p.cfg.EndRow)
		return eris.Wrap(err, "pipeline: read name column")
	})
	for j, target := range p.cfg.Targets {
		g.Go(func() error {
			var err error
			urlCols[j], err = p.cfg.Records.ReadColumn(gctx, target.Column, p.cfg.StartRow, p.cfg.EndRow)
			return eris.Wrapf(err, "pipeline: read column %s", target.Column)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return names, urlCols, nil
}
