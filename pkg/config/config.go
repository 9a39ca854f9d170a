// Package config loads run settings from defaults, an optional YAML file and
// LEGACYMIG_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	configFileName = "legacymig"
	configFileType = "yaml"
	envPrefix      = "LEGACYMIG"
)

// Config keys.
const (
	KeyLogLevel            = "log.level"
	KeyLogFormat           = "log.format"
	KeyOptionScanMaxBytes  = "extract.option_scan_max_bytes"
	KeyMaxDocumentBytes    = "extract.max_document_bytes"
	KeyBareOptionUsernames = "extract.bare_option_usernames"
	KeyVocabularyFile      = "extract.vocabulary_file"
	KeyEmailDomain         = "transform.email_domain"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full legacymig configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Transform TransformConfig `mapstructure:"transform"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExtractConfig tunes snapshot extraction. Zero byte limits mean no limit.
type ExtractConfig struct {
	OptionScanMaxBytes  int    `mapstructure:"option_scan_max_bytes"`
	MaxDocumentBytes    int64  `mapstructure:"max_document_bytes"`
	BareOptionUsernames bool   `mapstructure:"bare_option_usernames"`
	VocabularyFile      string `mapstructure:"vocabulary_file"`
}

// TransformConfig holds settings for the export transform.
type TransformConfig struct {
	EmailDomain string `mapstructure:"email_domain"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyOptionScanMaxBytes, 500000)
	v.SetDefault(KeyMaxDocumentBytes, 1000000)
	v.SetDefault(KeyBareOptionUsernames, false)
	v.SetDefault(KeyVocabularyFile, "")
	v.SetDefault(KeyEmailDomain, "lafamilia.local")
}

// Load reads the configuration. An explicit path must exist; with an empty
// path, legacymig.yaml in searchDirs is used when present.
func Load(path string, searchDirs ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if len(searchDirs) > 0 {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		for _, dir := range searchDirs {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section and joins their errors under ErrInvalid.
func (c *Config) Validate() error {
	var errs []string

	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("log config: %v", err))
	}
	if err := c.Extract.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("extract config: %v", err))
	}
	if err := c.Transform.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("transform config: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// Validate accepts the levels and formats logging.New understands.
func (c *LogConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level %q must be one of debug, info, warn, error", c.Level)
	}
	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("format %q must be json or console", c.Format)
	}
	return nil
}

// Validate rejects negative size limits.
func (c *ExtractConfig) Validate() error {
	if c.OptionScanMaxBytes < 0 {
		return errors.New("option_scan_max_bytes cannot be negative")
	}
	if c.MaxDocumentBytes < 0 {
		return errors.New("max_document_bytes cannot be negative")
	}
	return nil
}

// Validate requires a bare email domain.
func (c *TransformConfig) Validate() error {
	domain := strings.TrimSpace(c.EmailDomain)
	if domain == "" {
		return errors.New("email_domain is required")
	}
	if strings.ContainsAny(domain, "@ ") {
		return fmt.Errorf("email_domain %q must be a bare domain", c.EmailDomain)
	}
	return nil
}
