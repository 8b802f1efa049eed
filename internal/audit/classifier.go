// Package audit re-checks already-resolved profile URLs against the record's
// queries and classifies each into an outcome taxonomy. It never mutates the
// URL; outcomes feed the writer's flag channel.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/linker-cli/internal/directory"
	"github.com/sells-group/linker-cli/internal/fetch"
	"github.com/sells-group/linker-cli/internal/match"
	"github.com/sells-group/linker-cli/internal/model"
)

// NameCache persists fetched display names across runs. Optional: a nil
// cache means every URL is fetched once per run.
type NameCache interface {
	GetCachedName(ctx context.Context, url string) (string, bool, error)
	SetCachedName(ctx context.Context, url, name string, ttl time.Duration) error
}

// nameCacheTTL bounds how long a persisted display name is trusted.
// Directory profiles rarely change names; a week keeps re-audits cheap.
const nameCacheTTL = 7 * 24 * time.Hour

// Classifier audits resolved URLs. Outcomes are cached by URL for the run's
// lifetime since distinct records may share a resolved URL.
type Classifier struct {
	fetcher   fetch.Fetcher
	scorer    match.Scorer
	threshold float64
	names     NameCache // optional
	outcomes  map[string]model.AuditOutcome
}

// New creates a Classifier. names may be nil.
func New(fetcher fetch.Fetcher, scorer match.Scorer, threshold float64, names NameCache) *Classifier {
	return &Classifier{
		fetcher:   fetcher,
		scorer:    scorer,
		threshold: threshold,
		names:     names,
		outcomes:  make(map[string]model.AuditOutcome),
	}
}

// Classify fetches the profile's display name through dir and scores it
// against the record's queries. Fetch failures and missing names map to
// their own outcomes rather than errors; the audit channel always produces
// a classification.
func (c *Classifier) Classify(ctx context.Context, dir directory.Directory, url string, queries []string) model.AuditOutcome {
	if outcome, ok := c.outcomes[url]; ok {
		return outcome
	}

	outcome := c.classify(ctx, dir, url, queries)
	c.outcomes[url] = outcome
	return outcome
}

func (c *Classifier) classify(ctx context.Context, dir directory.Directory, url string, queries []string) model.AuditOutcome {
	log := zap.L().With(zap.String("directory", dir.Name()), zap.String("url", url))

	name, ok := c.displayName(ctx, dir, url)
	if !ok {
		return model.OutcomeFetchFailed
	}
	if name == "" {
		return model.OutcomeNameUnavailable
	}

	best := 0.0
	for _, q := range queries {
		if s := c.scorer.Score(q, name); s > best {
			best = s
		}
	}
	if best < c.threshold {
		log.Debug("audit: low confidence",
			zap.String("display_name", name),
			zap.Float64("score", best),
		)
		return model.OutcomeLowConfidence
	}
	return model.OutcomeOK
}

// displayName returns the profile's display name, consulting the persisted
// cache first. ok is false only on fetch failure.
func (c *Classifier) displayName(ctx context.Context, dir directory.Directory, url string) (string, bool) {
	if c.names != nil {
		name, hit, err := c.names.GetCachedName(ctx, url)
		if err != nil {
			zap.L().Debug("audit: name cache lookup failed", zap.Error(err))
		}
		if hit {
			return name, true
		}
	}

	body, err := c.fetcher.Get(ctx, url)
	if err != nil {
		zap.L().Debug("audit: profile fetch failed", zap.String("url", url), zap.Error(err))
		return "", false
	}

	name := dir.DisplayName(body)
	if name != "" && c.names != nil {
		if err := c.names.SetCachedName(ctx, url, name, nameCacheTTL); err != nil {
			zap.L().Debug("audit: name cache store failed", zap.Error(err))
		}
	}
	return name, true
}
