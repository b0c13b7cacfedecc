package config

import (
	"os"
	"strconv"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := deepCopy(configs[0])
	if result == nil {
		result = &entities.Config{}
	}

	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	// Server
	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	// Parse
	if strict, ok := flags["strict"].(bool); ok {
		result.Parse.Strict = entities.BoolPtr(strict)
	}

	if strictLayout, ok := flags["strict-layout"].(bool); ok {
		result.Parse.StrictLayout = entities.BoolPtr(strictLayout)
	}

	if depth, ok := flags["split-depth"].(int); ok && depth >= 0 {
		result.Parse.HeadingSplitDepth = entities.IntPtr(depth)
	}

	if noBreaks, ok := flags["no-break-splits"].(bool); ok && noBreaks {
		result.Parse.ThematicBreakSplits = entities.BoolPtr(false)
	}

	if strategy, ok := flags["id-strategy"].(string); ok && strategy != "" {
		result.Parse.IDStrategy = strategy
	}

	// Export
	if formats, ok := flags["formats"].([]string); ok && len(formats) > 0 {
		result.Export.Formats = append([]string(nil), formats...)
	}

	if outputDir, ok := flags["output-dir"].(string); ok && outputDir != "" {
		result.Export.OutputDir = outputDir
	}

	if noNotes, ok := flags["no-notes"].(bool); ok && noNotes {
		result.Export.IncludeNotes = entities.BoolPtr(false)
	}

	// Logging
	if level, ok := flags["log-level"].(string); ok && level != "" {
		result.Logging.Level = level
	}

	if jsonLogs, ok := flags["log-json"].(bool); ok && jsonLogs {
		result.Logging.JSONFormat = true
	}

	return result
}

// ApplyEnvVars applies environment variable overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	// Server configuration from environment
	if host := os.Getenv("SLIDEMARK_HOST"); host != "" {
		result.Server.Host = host
	}

	if portStr := os.Getenv("SLIDEMARK_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			result.Server.Port = port
		}
	}

	// Parse configuration from environment
	if strictStr := os.Getenv("SLIDEMARK_STRICT"); strictStr != "" {
		if strict, err := strconv.ParseBool(strictStr); err == nil {
			result.Parse.Strict = entities.BoolPtr(strict)
		}
	}

	if splitsStr := os.Getenv("SLIDEMARK_BREAK_SPLITS"); splitsStr != "" {
		if splits, err := strconv.ParseBool(splitsStr); err == nil {
			result.Parse.ThematicBreakSplits = entities.BoolPtr(splits)
		}
	}

	if depthStr := os.Getenv("SLIDEMARK_SPLIT_DEPTH"); depthStr != "" {
		if depth, err := strconv.Atoi(depthStr); err == nil && depth >= 0 {
			result.Parse.HeadingSplitDepth = entities.IntPtr(depth)
		}
	}

	if strategy := os.Getenv("SLIDEMARK_ID_STRATEGY"); strategy != "" {
		result.Parse.IDStrategy = strategy
	}

	// Theme configuration from environment
	if font := os.Getenv("SLIDEMARK_THEME_FONT"); font != "" {
		result.Theme.FontFamily = font
	}

	if primary := os.Getenv("SLIDEMARK_THEME_PRIMARY"); primary != "" {
		result.Theme.PrimaryColor = primary
	}

	// Export configuration from environment
	if formats := os.Getenv("SLIDEMARK_FORMATS"); formats != "" {
		if list := splitList(formats); len(list) > 0 {
			result.Export.Formats = list
		}
	}

	if outputDir := os.Getenv("SLIDEMARK_OUTPUT_DIR"); outputDir != "" {
		result.Export.OutputDir = outputDir
	}

	// Watcher configuration from environment
	if intervalStr := os.Getenv("SLIDEMARK_WATCH_INTERVAL"); intervalStr != "" {
		if interval, err := strconv.Atoi(intervalStr); err == nil && interval > 0 {
			result.Watcher.IntervalMs = interval
		}
	}

	if debounceStr := os.Getenv("SLIDEMARK_WATCH_DEBOUNCE"); debounceStr != "" {
		if debounce, err := strconv.Atoi(debounceStr); err == nil && debounce >= 0 {
			result.Watcher.DebounceMs = debounce
		}
	}

	// Logging configuration from environment
	if level := os.Getenv("SLIDEMARK_LOG_LEVEL"); level != "" {
		result.Logging.Level = level
	}

	return result
}

// mergeInto merges source configuration into target configuration. Pointer
// fields distinguish "unset" from false/0, so a later file can switch a
// setting off.
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Parse config
	if source.Parse.ThematicBreakSplits != nil {
		target.Parse.ThematicBreakSplits = entities.BoolPtr(*source.Parse.ThematicBreakSplits)
	}
	if source.Parse.HeadingSplitDepth != nil {
		target.Parse.HeadingSplitDepth = entities.IntPtr(*source.Parse.HeadingSplitDepth)
	}
	if source.Parse.TitleMaxDepth != 0 {
		target.Parse.TitleMaxDepth = source.Parse.TitleMaxDepth
	}
	if source.Parse.Strict != nil {
		target.Parse.Strict = entities.BoolPtr(*source.Parse.Strict)
	}
	if source.Parse.StrictLayout != nil {
		target.Parse.StrictLayout = entities.BoolPtr(*source.Parse.StrictLayout)
	}
	if len(source.Parse.Extensions) > 0 {
		target.Parse.Extensions = copyStrings(source.Parse.Extensions)
	}
	if source.Parse.IDStrategy != "" {
		target.Parse.IDStrategy = source.Parse.IDStrategy
	}

	// Theme config, field by field so a local file can change one color
	if source.Theme.PrimaryColor != "" {
		target.Theme.PrimaryColor = source.Theme.PrimaryColor
	}
	if source.Theme.SecondaryColor != "" {
		target.Theme.SecondaryColor = source.Theme.SecondaryColor
	}
	if source.Theme.FontFamily != "" {
		target.Theme.FontFamily = source.Theme.FontFamily
	}
	if source.Theme.FontSize != 0 {
		target.Theme.FontSize = source.Theme.FontSize
	}

	// Export config
	if len(source.Export.Formats) > 0 {
		target.Export.Formats = copyStrings(source.Export.Formats)
	}
	if source.Export.OutputDir != "" {
		target.Export.OutputDir = source.Export.OutputDir
	}
	if source.Export.IncludeNotes != nil {
		target.Export.IncludeNotes = entities.BoolPtr(*source.Export.IncludeNotes)
	}
	if source.Export.BatchSize != 0 {
		target.Export.BatchSize = source.Export.BatchSize
	}
	if source.Export.WritesPerMinute != 0 {
		target.Export.WritesPerMinute = source.Export.WritesPerMinute
	}
	if source.Export.MaxRetries != 0 {
		target.Export.MaxRetries = source.Export.MaxRetries
	}

	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = copyStrings(source.Server.CORSOrigins)
	}

	// Watcher config
	if source.Watcher.IntervalMs != 0 {
		target.Watcher.IntervalMs = source.Watcher.IntervalMs
	}
	if source.Watcher.DebounceMs != 0 {
		target.Watcher.DebounceMs = source.Watcher.DebounceMs
	}

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.JSONFormat {
		target.Logging.JSONFormat = true
	}
	if source.Logging.File != "" {
		target.Logging.File = source.Logging.File
	}
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	// Value copy first, then detach every pointer and slice
	dst := *src

	dst.Parse.ThematicBreakSplits = copyBool(src.Parse.ThematicBreakSplits)
	dst.Parse.HeadingSplitDepth = copyInt(src.Parse.HeadingSplitDepth)
	dst.Parse.Strict = copyBool(src.Parse.Strict)
	dst.Parse.StrictLayout = copyBool(src.Parse.StrictLayout)
	dst.Parse.Extensions = copyStrings(src.Parse.Extensions)

	dst.Export.Formats = copyStrings(src.Export.Formats)
	dst.Export.IncludeNotes = copyBool(src.Export.IncludeNotes)

	dst.Server.CORSOrigins = copyStrings(src.Server.CORSOrigins)

	return &dst
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	return entities.BoolPtr(*b)
}

func copyInt(i *int) *int {
	if i == nil {
		return nil
	}
	return entities.IntPtr(*i)
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	dst := make([]string, len(s))
	copy(dst, s)
	return dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
