package entities

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the complete application configuration
type Config struct {
	Parse   ParseConfig   `toml:"parse"`
	Theme   ThemeSettings `toml:"theme"`
	Export  ExportConfig  `toml:"export"`
	Server  ServerConfig  `toml:"server"`
	Watcher WatcherConfig `toml:"watcher"`
	Logging LoggingConfig `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Parse.Validate(); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if err := c.Theme.Validate(); err != nil {
		return fmt.Errorf("theme config: %w", err)
	}

	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Watcher.Validate(); err != nil {
		return fmt.Errorf("watcher config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ID strategies understood by the parser
const (
	IDStrategySlug = "slug"
	IDStrategyUUID = "uuid"
)

// Markdown extensions that can be toggled from configuration
const (
	ExtensionTable         = "table"
	ExtensionStrikethrough = "strikethrough"
	ExtensionTaskList      = "tasklist"
	ExtensionLinkify       = "linkify"
)

// AllExtensions lists every extension enabled by default
var AllExtensions = []string{
	ExtensionTable,
	ExtensionStrikethrough,
	ExtensionTaskList,
	ExtensionLinkify,
}

// ParseConfig controls slide segmentation and strictness.
//
// Booleans and the split depth are pointers: TOML cannot tell "false" from
// "unset", and a local file must be able to turn a global setting off.
type ParseConfig struct {
	ThematicBreakSplits *bool    `toml:"thematic_break_splits"`
	HeadingSplitDepth   *int     `toml:"heading_split_depth"`
	TitleMaxDepth       int      `toml:"title_max_depth"`
	Strict              *bool    `toml:"strict"`
	StrictLayout        *bool    `toml:"strict_layout"`
	Extensions          []string `toml:"extensions"`
	IDStrategy          string   `toml:"id_strategy"`
}

// Validate validates parse configuration
func (p ParseConfig) Validate() error {
	return validation.ValidateStruct(&p,
		// 0 is empty and therefore accepted: it disables heading splits
		validation.Field(&p.HeadingSplitDepth, validation.In(1, 2).Error("must be 0, 1 or 2")),
		validation.Field(&p.TitleMaxDepth, validation.Min(0), validation.Max(6)),
		validation.Field(&p.IDStrategy, validation.In(IDStrategySlug, IDStrategyUUID)),
		validation.Field(&p.Extensions, validation.Each(
			validation.In(ExtensionTable, ExtensionStrikethrough, ExtensionTaskList, ExtensionLinkify),
		)),
	)
}

// BreakSplits reports whether thematic breaks separate slides (default true)
func (p ParseConfig) BreakSplits() bool {
	if p.ThematicBreakSplits == nil {
		return true
	}
	return *p.ThematicBreakSplits
}

// SplitDepth returns the heading depth that separates slides, 0 for none
func (p ParseConfig) SplitDepth() int {
	if p.HeadingSplitDepth == nil {
		return 0
	}
	return *p.HeadingSplitDepth
}

// GetTitleMaxDepth returns the deepest heading promoted to slide title (default 2)
func (p ParseConfig) GetTitleMaxDepth() int {
	if p.TitleMaxDepth <= 0 {
		return 2
	}
	return p.TitleMaxDepth
}

// IsStrict reports whether unrecognized content and violations are fatal
func (p ParseConfig) IsStrict() bool {
	return p.Strict != nil && *p.Strict
}

// IsStrictLayout reports whether layout/content agreement is checked
func (p ParseConfig) IsStrictLayout() bool {
	return p.StrictLayout != nil && *p.StrictLayout
}

// GetExtensions returns the enabled extensions with default
func (p ParseConfig) GetExtensions() []string {
	if len(p.Extensions) == 0 {
		return AllExtensions
	}
	return p.Extensions
}

// GetIDStrategy returns the ID strategy with default
func (p ParseConfig) GetIDStrategy() string {
	if p.IDStrategy == "" {
		return IDStrategySlug
	}
	return p.IDStrategy
}

// ThemeSettings is the textual form of ThemeConfig used in configuration
// files and frontmatter. Empty fields fall back to the default theme.
type ThemeSettings struct {
	PrimaryColor   string  `toml:"primary_color" yaml:"primary_color"`
	SecondaryColor string  `toml:"secondary_color" yaml:"secondary_color"`
	FontFamily     string  `toml:"font_family" yaml:"font_family"`
	FontSize       float64 `toml:"font_size" yaml:"font_size"`
}

// IsZero reports whether no theme field is set
func (t ThemeSettings) IsZero() bool {
	return t == ThemeSettings{}
}

// Validate validates theme settings
func (t ThemeSettings) Validate() error {
	_, err := t.Resolve()
	return err
}

// Resolve converts the settings into a ThemeConfig on top of the default theme
func (t ThemeSettings) Resolve() (ThemeConfig, error) {
	return t.ApplyTo(DefaultTheme())
}

// ApplyTo overrides the fields of base that are set and validates the result
func (t ThemeSettings) ApplyTo(base ThemeConfig) (ThemeConfig, error) {
	theme := base

	if t.PrimaryColor != "" {
		c, err := ParseRGB(t.PrimaryColor)
		if err != nil {
			return ThemeConfig{}, fmt.Errorf("primary_color: %w", err)
		}
		theme.PrimaryColor = c
	}
	if t.SecondaryColor != "" {
		c, err := ParseRGB(t.SecondaryColor)
		if err != nil {
			return ThemeConfig{}, fmt.Errorf("secondary_color: %w", err)
		}
		theme.SecondaryColor = c
	}
	if t.FontFamily != "" {
		theme.FontFamily = canonicalFont(t.FontFamily)
	}
	if t.FontSize != 0 {
		theme.FontSize = t.FontSize
	}

	if err := theme.Validate(); err != nil {
		return ThemeConfig{}, err
	}
	return theme, nil
}

func canonicalFont(name string) string {
	for _, f := range WebSafeFonts {
		if strings.EqualFold(f, strings.TrimSpace(name)) {
			return f
		}
	}
	return name
}

// ExportConfig contains generator and publisher settings
type ExportConfig struct {
	Formats         []string `toml:"formats"`
	OutputDir       string   `toml:"output_dir"`
	IncludeNotes    *bool    `toml:"include_notes"`
	BatchSize       int      `toml:"batch_size"`
	WritesPerMinute int      `toml:"writes_per_minute"`
	MaxRetries      int      `toml:"max_retries"`
}

// Validate validates export configuration
func (e ExportConfig) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Formats, validation.Each(validation.Required)),
		validation.Field(&e.BatchSize, validation.Min(0), validation.Max(1000)),
		validation.Field(&e.WritesPerMinute, validation.Min(0), validation.Max(600)),
		validation.Field(&e.MaxRetries, validation.Min(0), validation.Max(10)),
	)
}

// GetFormats returns the configured formats with default
func (e ExportConfig) GetFormats() []string {
	if len(e.Formats) == 0 {
		return []string{"json"}
	}
	return e.Formats
}

// GetOutputDir returns the output directory with default
func (e ExportConfig) GetOutputDir() string {
	if e.OutputDir == "" {
		return "."
	}
	return e.OutputDir
}

// NotesIncluded reports whether generators emit speaker notes (default true)
func (e ExportConfig) NotesIncluded() bool {
	if e.IncludeNotes == nil {
		return true
	}
	return *e.IncludeNotes
}

// GetBatchSize returns the number of requests per batch with default
func (e ExportConfig) GetBatchSize() int {
	if e.BatchSize <= 0 {
		return 50
	}
	return e.BatchSize
}

// GetWritesPerMinute returns the publisher write quota with default
func (e ExportConfig) GetWritesPerMinute() int {
	if e.WritesPerMinute <= 0 {
		return 60
	}
	return e.WritesPerMinute
}

// GetMaxRetries returns the publisher retry budget with default
func (e ExportConfig) GetMaxRetries() int {
	if e.MaxRetries <= 0 {
		return 3
	}
	return e.MaxRetries
}

// ServerConfig contains preview server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" && s.Host != "localhost" {
		if ip := net.ParseIP(s.Host); ip == nil && strings.ContainsAny(s.Host, " /:") {
			return fmt.Errorf("invalid host: %s", s.Host)
		}
	}

	if s.ReadTimeout < 0 {
		return errors.New("read timeout must be non-negative")
	}

	if s.WriteTimeout < 0 {
		return errors.New("write timeout must be non-negative")
	}

	if s.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout must be non-negative")
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// Address returns host:port
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, fmt.Sprint(s.Port))
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetCORSOrigins returns CORS origins with defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}
	}
	return s.CORSOrigins
}

// WatcherConfig contains file watcher configuration
type WatcherConfig struct {
	IntervalMs int `toml:"interval_ms"`
	DebounceMs int `toml:"debounce_ms"`
}

// Validate validates watcher configuration
func (w WatcherConfig) Validate() error {
	if w.IntervalMs != 0 && w.IntervalMs < 50 {
		return errors.New("watcher interval must be at least 50ms")
	}

	if w.DebounceMs < 0 {
		return errors.New("debounce time must be non-negative")
	}

	return nil
}

// GetInterval returns the watcher interval as a duration
func (w WatcherConfig) GetInterval() time.Duration {
	if w.IntervalMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(w.IntervalMs) * time.Millisecond
}

// GetDebounce returns the debounce time as a duration
func (w WatcherConfig) GetDebounce() time.Duration {
	if w.DebounceMs <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	JSONFormat bool   `toml:"json_format"` // Output logs in JSON format
	File       string `toml:"file"`        // Log to file (optional)
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(strings.ToLower(l.Level)) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, "":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}

	if l.File != "" && !filepath.IsAbs(l.File) {
		return errors.New("log file path must be absolute")
	}

	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(strings.ToLower(l.Level))
}

// BoolPtr returns a pointer to v
func BoolPtr(v bool) *bool {
	return &v
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
