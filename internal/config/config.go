package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/paycapture/internal/common"
	"github.com/spf13/viper"
)

// Well-known payment app package identifiers.
const (
	AlipaySourceID = "com.eg.android.AlipayGphone"
	WeChatSourceID = "com.tencent.mm"
)

// Config is the complete runtime configuration.
type Config struct {
	Database     DatabaseConfig     `yaml:"database" mapstructure:"database"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	Presentation PresentationConfig `yaml:"presentation" mapstructure:"presentation"`
	Sources      []Source           `yaml:"sources" mapstructure:"sources"`
	Keywords     []string           `yaml:"keywords" mapstructure:"keywords"`
	Currency     CurrencyConfig     `yaml:"currency" mapstructure:"currency"`
	Amount       AmountConfig       `yaml:"amount" mapstructure:"amount"`
	Throttle     ThrottleConfig     `yaml:"throttle" mapstructure:"throttle"`
	Dedup        DedupConfig        `yaml:"dedup" mapstructure:"dedup"`
	Note         NoteConfig         `yaml:"note" mapstructure:"note"`
}

// Source is an allow-listed notification source and its display label.
// Sources are a list rather than a map because viper lowercases map keys
// and package identifiers are case sensitive.
type Source struct {
	ID    string `yaml:"id" mapstructure:"id"`
	Label string `yaml:"label" mapstructure:"label"`
}

// CurrencyConfig lists the currency markers the amount patterns accept.
type CurrencyConfig struct {
	Symbols []string `yaml:"symbols" mapstructure:"symbols"` // Prefix markers, e.g. ¥
	Units   []string `yaml:"units" mapstructure:"units"`     // Suffix words, e.g. 元
}

// AmountConfig bounds accepted amounts: Min < amount <= Max.
type AmountConfig struct {
	Min float64 `yaml:"min" mapstructure:"min"`
	Max float64 `yaml:"max" mapstructure:"max"`
}

// DedupConfig configures the duplicate suppression window.
type DedupConfig struct {
	Window time.Duration `yaml:"window" mapstructure:"window"`
}

// NoteConfig configures note construction.
type NoteConfig struct {
	MaxLength int `yaml:"max_length" mapstructure:"max_length"`
}

// PresentationConfig configures the tap-to-record prompt.
type PresentationConfig struct {
	Title          string `yaml:"title" mapstructure:"title"`
	TapText        string `yaml:"tap_text" mapstructure:"tap_text"`
	CurrencyPrefix string `yaml:"currency_prefix" mapstructure:"currency_prefix"`
	Enabled        bool   `yaml:"enabled" mapstructure:"enabled"`
}

// ThrottleConfig limits how many notifications per source are classified.
// A zero PerSecond disables throttling.
type ThrottleConfig struct {
	PerSecond float64 `yaml:"per_second" mapstructure:"per_second"`
	Burst     int     `yaml:"burst" mapstructure:"burst"`
}

// DatabaseConfig locates the inbox database.
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sources: []Source{
			{ID: AlipaySourceID, Label: "Alipay"},
			{ID: WeChatSourceID, Label: "WeChat"},
		},
		Keywords: []string{"支付", "付款", "消费", "扣款", "支出", "已付款", "支付成功"},
		Currency: CurrencyConfig{
			Symbols: []string{"￥", "¥"},
			Units:   []string{"元"},
		},
		Amount: AmountConfig{
			Min: 0,
			Max: 100000,
		},
		Dedup: DedupConfig{
			Window: 8 * time.Second,
		},
		Note: NoteConfig{
			MaxLength: 60,
		},
		Presentation: PresentationConfig{
			Enabled:        true,
			Title:          "Payment detected",
			TapText:        "tap to record",
			CurrencyPrefix: "￥",
		},
		Throttle: ThrottleConfig{
			PerSecond: 0,
			Burst:     5,
		},
		Database: DatabaseConfig{
			Path: "$HOME/.local/share/paycapture/paycapture.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// SetDefaults registers the built-in configuration as viper defaults.
func SetDefaults(v *viper.Viper) {
	d := Default()

	sources := make([]map[string]any, len(d.Sources))
	for i, s := range d.Sources {
		sources[i] = map[string]any{"id": s.ID, "label": s.Label}
	}

	v.SetDefault("sources", sources)
	v.SetDefault("keywords", d.Keywords)
	v.SetDefault("currency.symbols", d.Currency.Symbols)
	v.SetDefault("currency.units", d.Currency.Units)
	v.SetDefault("amount.min", d.Amount.Min)
	v.SetDefault("amount.max", d.Amount.Max)
	v.SetDefault("dedup.window", d.Dedup.Window)
	v.SetDefault("note.max_length", d.Note.MaxLength)
	v.SetDefault("presentation.enabled", d.Presentation.Enabled)
	v.SetDefault("presentation.title", d.Presentation.Title)
	v.SetDefault("presentation.tap_text", d.Presentation.TapText)
	v.SetDefault("presentation.currency_prefix", d.Presentation.CurrencyPrefix)
	v.SetDefault("throttle.per_second", d.Throttle.PerSecond)
	v.SetDefault("throttle.burst", d.Throttle.Burst)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Load registers defaults on v, then decodes and validates its configuration.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values the pipeline cannot work with.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("%w: at least one source is required", common.ErrMissingConfig)
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("%w: source %d has no id", common.ErrInvalidConfig, i)
		}
		if strings.TrimSpace(s.Label) == "" {
			return fmt.Errorf("%w: source %q has no label", common.ErrInvalidConfig, s.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate source %q", common.ErrInvalidConfig, s.ID)
		}
		seen[s.ID] = true
	}

	if len(nonEmpty(c.Keywords)) == 0 {
		return fmt.Errorf("%w: at least one keyword is required", common.ErrMissingConfig)
	}

	if len(nonEmpty(c.Currency.Symbols)) == 0 && len(nonEmpty(c.Currency.Units)) == 0 {
		return fmt.Errorf("%w: at least one currency symbol or unit is required", common.ErrMissingConfig)
	}

	if c.Amount.Min < 0 {
		return fmt.Errorf("%w: amount.min must not be negative", common.ErrInvalidConfig)
	}
	if c.Amount.Max <= c.Amount.Min {
		return fmt.Errorf("%w: amount.max must be greater than amount.min", common.ErrInvalidConfig)
	}

	if c.Dedup.Window <= 0 {
		return fmt.Errorf("%w: dedup.window must be positive", common.ErrInvalidConfig)
	}

	if c.Note.MaxLength <= 0 {
		return fmt.Errorf("%w: note.max_length must be positive", common.ErrInvalidConfig)
	}

	if c.Throttle.PerSecond < 0 || c.Throttle.Burst < 0 {
		return fmt.Errorf("%w: throttle values must not be negative", common.ErrInvalidConfig)
	}

	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", common.ErrInvalidConfig, c.Logging.Format)
	}

	return nil
}

// Labels returns the allow-list as a source id to label map.
func (c *Config) Labels() map[string]string {
	labels := make(map[string]string, len(c.Sources))
	for _, s := range c.Sources {
		labels[s.ID] = s.Label
	}
	return labels
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
