package main

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/linker-cli/internal/audit"
	"github.com/sells-group/linker-cli/internal/config"
	"github.com/sells-group/linker-cli/internal/directory"
	"github.com/sells-group/linker-cli/internal/fetch"
	"github.com/sells-group/linker-cli/internal/match"
	"github.com/sells-group/linker-cli/internal/pipeline"
	"github.com/sells-group/linker-cli/internal/records"
	"github.com/sells-group/linker-cli/internal/resolve"
	"github.com/sells-group/linker-cli/internal/store"
	"github.com/sells-group/linker-cli/pkg/sheets"
)

func initRecords(_ context.Context) (records.Store, error) {
	switch cfg.Records.Backend {
	case "sheets":
		tokens, err := sheets.NewServiceAccountTokenSource(cfg.Sheet.CredentialsFile, sheets.ScopeSpreadsheets)
		if err != nil {
			return nil, eris.Wrap(err, "load sheets credentials")
		}
		client := sheets.NewClient(cfg.Sheet.SpreadsheetID, tokens)
		return records.NewSheets(client, cfg.Sheet.Worksheet), nil
	case "xlsx":
		return records.OpenXLSX(cfg.Records.XLSXPath, cfg.Sheet.Worksheet)
	default:
		return nil, eris.Errorf("unsupported records backend: %s", cfg.Records.Backend)
	}
}

// initStore opens the optional run-history store. A blank driver means no
// store; callers must handle the nil return.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "":
		return nil, nil
	case "sqlite":
		dsn := cfg.Store.Path
		if dsn == "" {
			dsn = "linker.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func newFetcher() fetch.Fetcher {
	return fetch.NewHTTP(fetch.Config{
		Timeout: time.Duration(cfg.Search.TimeoutSecs) * time.Second,
		Delay:   time.Duration(cfg.Pacing.DelayMillis) * time.Millisecond,
	})
}

func newScorer() (match.Scorer, error) {
	return match.New(cfg.Match.Mode, cfg.Match.MinTokens)
}

func newDirectory(name string, dc config.DirectoryConfig) (directory.Directory, error) {
	switch name {
	case "ijf":
		return directory.NewIJF(dc.BaseURL), nil
	case "judoinside":
		return directory.NewJudoInside(dc.BaseURL), nil
	default:
		return nil, eris.Errorf("unknown directory: %s", name)
	}
}

// buildTargets assembles the registry of all configured directories and the
// resolution targets for the enabled ones, ordered by name so runs are
// deterministic.
func buildTargets(fetcher fetch.Fetcher, scorer match.Scorer) (*directory.Registry, []pipeline.Target, error) {
	reg := directory.NewRegistry()

	names := make([]string, 0, len(cfg.Directories))
	for name := range cfg.Directories {
		names = append(names, name)
	}
	sort.Strings(names)

	var targets []pipeline.Target
	for _, name := range names {
		dc := cfg.Directories[name]
		dir, err := newDirectory(name, dc)
		if err != nil {
			return nil, nil, err
		}
		reg.Register(dir)
		if !dc.Enabled {
			continue
		}
		targets = append(targets, pipeline.Target{
			Column: dc.Column,
			Resolver: resolve.New(dir, fetcher, scorer, resolve.Config{
				MaxPages:  cfg.Search.MaxPages,
				TopN:      cfg.Search.TopN,
				Threshold: cfg.Match.Threshold,
			}),
		})
	}

	return reg, targets, nil
}

func newClassifier(fetcher fetch.Fetcher, scorer match.Scorer, names audit.NameCache) *audit.Classifier {
	return audit.New(fetcher, scorer, cfg.Match.AuditThreshold, names)
}
