package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/linker-cli/internal/audit"
	"github.com/sells-group/linker-cli/internal/pipeline"
	"github.com/sells-group/linker-cli/internal/store"
)

var (
	resolveStartRow int
	resolveEndRow   int
	resolveNoAudit  bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Fill empty profile-URL cells and audit the filled ones",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPipeline(cmd, false)
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Re-check existing profile URLs without filling empty cells",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPipeline(cmd, true)
	},
}

func runPipeline(cmd *cobra.Command, auditOnly bool) error {
	ctx := cmd.Context()

	if err := cfg.Validate(); err != nil {
		return err
	}
	if resolveStartRow > 0 {
		cfg.Sheet.StartRow = resolveStartRow
	}
	if resolveEndRow > 0 {
		cfg.Sheet.EndRow = resolveEndRow
	}

	rec, err := initRecords(ctx)
	if err != nil {
		return err
	}

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}
	}

	fetcher := newFetcher()
	scorer, err := newScorer()
	if err != nil {
		return err
	}
	reg, targets, err := buildTargets(fetcher, scorer)
	if err != nil {
		return err
	}
	if auditOnly && len(targets) == 0 {
		return eris.New("no directories enabled")
	}

	var classifier *audit.Classifier
	if (cfg.Audit.Enabled && !resolveNoAudit) || auditOnly {
		var names audit.NameCache
		if st != nil {
			names = st
		}
		classifier = newClassifier(fetcher, scorer, names)
	}

	var runs store.Store
	if st != nil {
		runs = st
	}

	p := pipeline.New(pipeline.Config{
		Records:    rec,
		Targets:    targets,
		Registry:   reg,
		Classifier: classifier,
		Runs:       runs,
		NameCol:    cfg.Sheet.NameCol,
		StartRow:   cfg.Sheet.StartRow,
		EndRow:     cfg.Sheet.EndRow,
		BatchSize:  cfg.Batch.Size,
		AuditOnly:  auditOnly,
	})

	summary, err := p.Run(ctx)
	if summary != nil {
		zap.L().Info("summary",
			zap.Int("checked", summary.Checked),
			zap.Int("found", summary.Found),
			zap.Int("flagged", summary.Flagged))
	}
	return err
}

func init() {
	for _, c := range []*cobra.Command{resolveCmd, auditCmd} {
		c.Flags().IntVar(&resolveStartRow, "start-row", 0, "first data row (overrides config)")
		c.Flags().IntVar(&resolveEndRow, "end-row", 0, "last data row (overrides config)")
	}
	resolveCmd.Flags().BoolVar(&resolveNoAudit, "no-audit", false, "skip the audit pass for this run")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(auditCmd)
}
