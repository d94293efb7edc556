package config

import (
	"os"
	"strings"

	"borelog/domain/borehole"
	"borelog/internal/errors"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string `mapstructure:"port" yaml:"port"`
	GinMode     string `mapstructure:"gin_mode" yaml:"gin_mode"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// DatabaseConfig holds the upload ledger connection settings
type DatabaseConfig struct {
	URL      string `mapstructure:"url" yaml:"url"`
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Disabled bool   `mapstructure:"disabled" yaml:"disabled"`
}

// AnalysisConfig holds the analysis defaults shown in the dashboard
type AnalysisConfig struct {
	Properties       []string `mapstructure:"properties" yaml:"properties"`
	MissingThreshold float64  `mapstructure:"missing_threshold" yaml:"missing_threshold"`
	COVThreshold     float64  `mapstructure:"cov_threshold" yaml:"cov_threshold"`
}

// ReportConfig holds report generation settings
type ReportConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":                "PORT",
	"server.gin_mode":            "GIN_MODE",
	"server.max_upload_mb":       "MAX_UPLOAD_MB",
	"database.url":               "DATABASE_URL",
	"database.driver":            "DATABASE_DRIVER",
	"database.disabled":          "LEDGER_DISABLED",
	"analysis.properties":        "ANALYSIS_PROPERTIES",
	"analysis.missing_threshold": "MISSING_THRESHOLD",
	"analysis.cov_threshold":     "COV_THRESHOLD",
	"report.concurrency":         "REPORT_CONCURRENCY",
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			GinMode:     "debug",
			MaxUploadMB: 50,
		},
		Database: DatabaseConfig{
			URL:    "file:borelog.db?_pragma=busy_timeout(5000)",
			Driver: "",
		},
		Analysis: AnalysisConfig{
			Properties:       append([]string(nil), borehole.DefaultProperties...),
			MissingThreshold: 20,
			COVThreshold:     100,
		},
		Report: ReportConfig{
			Concurrency: 4,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence. An empty path
// falls back to BORELOG_CONFIG.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.gin_mode", def.Server.GinMode)
	v.SetDefault("server.max_upload_mb", def.Server.MaxUploadMB)
	v.SetDefault("database.url", def.Database.URL)
	v.SetDefault("database.driver", def.Database.Driver)
	v.SetDefault("database.disabled", def.Database.Disabled)
	v.SetDefault("analysis.properties", def.Analysis.Properties)
	v.SetDefault("analysis.missing_threshold", def.Analysis.MissingThreshold)
	v.SetDefault("analysis.cov_threshold", def.Analysis.COVThreshold)
	v.SetDefault("report.concurrency", def.Report.Concurrency)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "failed to bind %s", env)
		}
	}

	if path == "" {
		path = os.Getenv("BORELOG_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to read config file %s", path))
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to decode configuration"))
	}
	config.Analysis.Properties = cleanList(config.Analysis.Properties)
	if config.Database.Driver == "" {
		config.Database.Driver = DriverFor(config.Database.URL)
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// DriverFor picks the SQL driver for a ledger URL.
func DriverFor(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal configuration")
	}
	return b, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("max upload size must be positive")
	}
	if config.Database.Driver != "postgres" && config.Database.Driver != "sqlite" {
		return errors.ConfigInvalid("database driver must be postgres or sqlite")
	}
	if config.Analysis.MissingThreshold < 0 || config.Analysis.MissingThreshold > 100 {
		return errors.ConfigInvalid("missing threshold must be within [0, 100]")
	}
	if config.Analysis.COVThreshold < 0 {
		return errors.ConfigInvalid("COV threshold must not be negative")
	}
	if len(config.Analysis.Properties) == 0 {
		return errors.ConfigInvalid("at least one profile property is required")
	}
	if config.Report.Concurrency < 1 {
		config.Report.Concurrency = 1
	}
	return nil
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
