package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Records     RecordsConfig              `yaml:"records" mapstructure:"records"`
	Sheet       SheetConfig                `yaml:"sheet" mapstructure:"sheet"`
	Directories map[string]DirectoryConfig `yaml:"directories" mapstructure:"directories"`
	Search      SearchConfig               `yaml:"search" mapstructure:"search"`
	Match       MatchConfig                `yaml:"match" mapstructure:"match"`
	Audit       AuditConfig                `yaml:"audit" mapstructure:"audit"`
	Pacing      PacingConfig               `yaml:"pacing" mapstructure:"pacing"`
	Batch       BatchConfig                `yaml:"batch" mapstructure:"batch"`
	Store       StoreConfig                `yaml:"store" mapstructure:"store"`
	Log         LogConfig                  `yaml:"log" mapstructure:"log"`
}

// RecordsConfig selects and configures the record-store backend.
type RecordsConfig struct {
	Backend  string `yaml:"backend" mapstructure:"backend"` // "sheets" or "xlsx"
	XLSXPath string `yaml:"xlsx_path" mapstructure:"xlsx_path"`
}

// SheetConfig locates the Google Sheets worksheet.
type SheetConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	Worksheet       string `yaml:"worksheet" mapstructure:"worksheet"`
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	NameCol         string `yaml:"name_col" mapstructure:"name_col"`
	StartRow        int    `yaml:"start_row" mapstructure:"start_row"`
	EndRow          int    `yaml:"end_row" mapstructure:"end_row"`
}

// DirectoryConfig configures one target directory.
type DirectoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Column  string `yaml:"column" mapstructure:"column"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SearchConfig tunes candidate retrieval.
type SearchConfig struct {
	MaxPages    int `yaml:"max_pages" mapstructure:"max_pages"`
	TopN        int `yaml:"top_n" mapstructure:"top_n"`
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// MatchConfig tunes confidence scoring.
type MatchConfig struct {
	Mode           string  `yaml:"mode" mapstructure:"mode"` // "weighted" or "jaccard"
	Threshold      float64 `yaml:"threshold" mapstructure:"threshold"`
	AuditThreshold float64 `yaml:"audit_threshold" mapstructure:"audit_threshold"`
	MinTokens      int     `yaml:"min_tokens" mapstructure:"min_tokens"`
}

// AuditConfig configures the post-hoc audit pass.
type AuditConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	Color   bool `yaml:"color" mapstructure:"color"`
}

// PacingConfig spaces network-bound calls.
type PacingConfig struct {
	DelayMillis int `yaml:"delay_ms" mapstructure:"delay_ms"`
}

// BatchConfig configures write flushing.
type BatchConfig struct {
	Size int `yaml:"size" mapstructure:"size"`
}

// StoreConfig configures the optional run-history/name-cache database.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "", "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LINKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("records.backend", "sheets")
	v.SetDefault("sheet.worksheet", "Roster")
	v.SetDefault("sheet.credentials_file", "credentials.json")
	v.SetDefault("sheet.name_col", "F")
	v.SetDefault("sheet.start_row", 2)
	v.SetDefault("sheet.end_row", 1000)
	v.SetDefault("directories.ijf.enabled", true)
	v.SetDefault("directories.ijf.column", "Q")
	v.SetDefault("directories.judoinside.enabled", false)
	v.SetDefault("directories.judoinside.column", "P")
	v.SetDefault("search.max_pages", 3)
	v.SetDefault("search.top_n", 5)
	v.SetDefault("search.timeout_secs", 25)
	v.SetDefault("match.mode", "weighted")
	v.SetDefault("match.threshold", 0.65)
	v.SetDefault("match.audit_threshold", 0.78)
	v.SetDefault("match.min_tokens", 2)
	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.color", true)
	v.SetDefault("pacing.delay_ms", 800)
	v.SetDefault("batch.size", 100)
	v.SetDefault("store.driver", "")
	v.SetDefault("store.path", "linker.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings that must be present before any record is
// touched. Failures here are setup errors and abort the process.
func (c *Config) Validate() error {
	switch c.Records.Backend {
	case "sheets":
		if c.Sheet.SpreadsheetID == "" {
			return eris.New("config: sheet.spreadsheet_id is required for the sheets backend")
		}
		if c.Sheet.CredentialsFile == "" {
			return eris.New("config: sheet.credentials_file is required for the sheets backend")
		}
	case "xlsx":
		if c.Records.XLSXPath == "" {
			return eris.New("config: records.xlsx_path is required for the xlsx backend")
		}
	default:
		return eris.Errorf("config: unknown records backend %q (valid: sheets, xlsx)", c.Records.Backend)
	}

	if c.Sheet.StartRow < 1 || c.Sheet.EndRow < c.Sheet.StartRow {
		return eris.Errorf("config: invalid row range %d-%d", c.Sheet.StartRow, c.Sheet.EndRow)
	}

	enabled := 0
	for name, dir := range c.Directories {
		if !dir.Enabled {
			continue
		}
		enabled++
		if dir.Column == "" {
			return eris.Errorf("config: directories.%s.column is required when enabled", name)
		}
	}
	if enabled == 0 && !c.Audit.Enabled {
		return eris.New("config: no directories enabled and audit disabled; nothing to do")
	}

	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
