// Package store persists run history and the profile display-name cache.
// The pipeline runs fine without one; when configured it makes re-audits
// cheap and leaves an execution trail.
package store

import (
	"context"
	"time"

	"github.com/sells-group/linker-cli/internal/model"
)

// Store defines the persistence interface for the resolution pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, summary model.RunSummary) error

	// Display-name cache
	GetCachedName(ctx context.Context, url string) (string, bool, error)
	SetCachedName(ctx context.Context, url, name string, ttl time.Duration) error
	DeleteExpiredNames(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
