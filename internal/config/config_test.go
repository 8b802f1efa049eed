package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sheets", cfg.Records.Backend)
	assert.Equal(t, 2, cfg.Sheet.StartRow)
	assert.Equal(t, "F", cfg.Sheet.NameCol)
	assert.Equal(t, 3, cfg.Search.MaxPages)
	assert.Equal(t, 5, cfg.Search.TopN)
	assert.Equal(t, "weighted", cfg.Match.Mode)
	assert.InDelta(t, 0.65, cfg.Match.Threshold, 1e-9)
	assert.InDelta(t, 0.78, cfg.Match.AuditThreshold, 1e-9)
	assert.Equal(t, 2, cfg.Match.MinTokens)
	assert.Equal(t, 800, cfg.Pacing.DelayMillis)
	assert.Equal(t, 100, cfg.Batch.Size)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)

	require.Contains(t, cfg.Directories, "ijf")
	assert.True(t, cfg.Directories["ijf"].Enabled)
	assert.Equal(t, "Q", cfg.Directories["ijf"].Column)
	require.Contains(t, cfg.Directories, "judoinside")
	assert.False(t, cfg.Directories["judoinside"].Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LINKER_MATCH_THRESHOLD", "0.8")
	t.Setenv("LINKER_SEARCH_MAX_PAGES", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.8, cfg.Match.Threshold, 1e-9)
	assert.Equal(t, 1, cfg.Search.MaxPages)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Records: RecordsConfig{Backend: "sheets"},
			Sheet: SheetConfig{
				SpreadsheetID:   "sheet-id",
				CredentialsFile: "credentials.json",
				StartRow:        2,
				EndRow:          100,
			},
			Directories: map[string]DirectoryConfig{
				"ijf": {Enabled: true, Column: "Q"},
			},
			Audit: AuditConfig{Enabled: true},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing spreadsheet id", func(t *testing.T) {
		cfg := base()
		cfg.Sheet.SpreadsheetID = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("xlsx requires path", func(t *testing.T) {
		cfg := base()
		cfg.Records.Backend = "xlsx"
		assert.Error(t, cfg.Validate())
		cfg.Records.XLSXPath = "roster.xlsx"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := base()
		cfg.Records.Backend = "csv"
		assert.Error(t, cfg.Validate())
	})

	t.Run("enabled directory needs column", func(t *testing.T) {
		cfg := base()
		cfg.Directories["ijf"] = DirectoryConfig{Enabled: true}
		assert.Error(t, cfg.Validate())
	})

	t.Run("inverted row range", func(t *testing.T) {
		cfg := base()
		cfg.Sheet.EndRow = 1
		assert.Error(t, cfg.Validate())
	})

	t.Run("nothing enabled", func(t *testing.T) {
		cfg := base()
		cfg.Directories = nil
		cfg.Audit.Enabled = false
		assert.Error(t, cfg.Validate())
	})
}
