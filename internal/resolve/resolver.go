// Package resolve orchestrates the per-record search loop: query variants
// against directory search pages, candidate scoring, and threshold-based
// acceptance.
package resolve

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/linker-cli/internal/directory"
	"github.com/sells-group/linker-cli/internal/fetch"
	"github.com/sells-group/linker-cli/internal/match"
	"github.com/sells-group/linker-cli/internal/model"
)

// Config tunes the resolution loop.
type Config struct {
	MaxPages  int     // search pages tried per query
	TopN      int     // candidates considered per page
	Threshold float64 // acceptance score
}

// Resolver resolves one record's queries against a single directory.
type Resolver struct {
	dir     directory.Directory
	fetcher fetch.Fetcher
	scorer  match.Scorer
	cfg     Config
}

// New creates a Resolver.
func New(dir directory.Directory, fetcher fetch.Fetcher, scorer match.Scorer, cfg Config) *Resolver {
	if cfg.MaxPages < 1 {
		cfg.MaxPages = 1
	}
	if cfg.TopN < 1 {
		cfg.TopN = 5
	}
	return &Resolver{dir: dir, fetcher: fetcher, scorer: scorer, cfg: cfg}
}

// Directory returns the directory this resolver targets.
func (r *Resolver) Directory() directory.Directory { return r.dir }

// Resolve tries each query across search pages and returns the accepted
// best candidate, or nil when nothing reaches the threshold. The running
// best survives across queries and pages; acceptance terminates the attempt
// early. Transport and parse failures count as zero candidates. The only
// returned error is context cancellation.
func (r *Resolver) Resolve(ctx context.Context, queries []string) (*model.MatchResult, error) {
	if len(queries) == 0 {
		return nil, nil
	}

	log := zap.L().With(zap.String("directory", r.dir.Name()))
	var best *model.MatchResult
	seen := make(map[string]struct{})

	for _, query := range queries {
		for page := 1; page <= r.cfg.MaxPages; page++ {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "resolve: cancelled")
			}

			body, err := r.fetcher.Get(ctx, r.dir.SearchURL(query, page))
			if err != nil {
				if ctx.Err() != nil {
					return nil, eris.Wrap(ctx.Err(), "resolve: cancelled")
				}
				log.Debug("resolve: search fetch failed",
					zap.String("query", query),
					zap.Int("page", page),
					zap.Error(err),
				)
				break // next query
			}

			candidates := r.dir.Candidates(body)
			if len(candidates) == 0 {
				log.Debug("resolve: no candidates",
					zap.String("query", query),
					zap.Int("page", page),
				)
				break // deeper pages won't have more
			}

			considered := 0
			for _, c := range candidates {
				if considered >= r.cfg.TopN {
					break
				}
				if c.Name == "" {
					continue // unscoreable, never becomes the best
				}
				if _, dup := seen[c.URL]; dup {
					continue // already scored, must not shrink the window
				}
				seen[c.URL] = struct{}{}
				considered++

				score := r.scorer.Score(query, c.Name)
				if best == nil || score > best.Score {
					best = &model.MatchResult{URL: c.URL, Name: c.Name, Score: score}
				}
			}

			if best != nil && best.Score >= r.cfg.Threshold {
				log.Debug("resolve: accepted",
					zap.String("query", query),
					zap.Int("page", page),
					zap.String("url", best.URL),
					zap.Float64("score", best.Score),
				)
				return best, nil
			}
		}
	}

	// Exhausted without reaching the threshold: prefer a blank cell over a
	// low-confidence guess.
	return nil, nil
}
