package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	config := &entities.Config{
		Parse: entities.ParseConfig{
			ThematicBreakSplits: entities.BoolPtr(getEnvBoolOrDefault("SLIDEMARK_BREAK_SPLITS", true)),
			HeadingSplitDepth:   entities.IntPtr(getEnvIntOrDefault("SLIDEMARK_SPLIT_DEPTH", 0)),
			TitleMaxDepth:       2,
			Strict:              entities.BoolPtr(getEnvBoolOrDefault("SLIDEMARK_STRICT", false)),
			StrictLayout:        entities.BoolPtr(false),
			Extensions:          getEnvSliceOrDefault("SLIDEMARK_EXTENSIONS", entities.AllExtensions),
			IDStrategy:          getEnvOrDefault("SLIDEMARK_ID_STRATEGY", entities.IDStrategySlug),
		},
		// An empty theme leaves presentations without one unless frontmatter sets it
		Theme: entities.ThemeSettings{},
		Export: entities.ExportConfig{
			Formats:         getEnvSliceOrDefault("SLIDEMARK_FORMATS", []string{"json"}),
			OutputDir:       getEnvOrDefault("SLIDEMARK_OUTPUT_DIR", "."),
			IncludeNotes:    entities.BoolPtr(true),
			BatchSize:       50,
			WritesPerMinute: 60,
			MaxRetries:      3,
		},
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("SLIDEMARK_HOST", "localhost"),
			Port:            getEnvIntOrDefault("SLIDEMARK_PORT", 1000),
			ReadTimeout:     getEnvIntOrDefault("SLIDEMARK_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("SLIDEMARK_WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvIntOrDefault("SLIDEMARK_SHUTDOWN_TIMEOUT", 5),
			CORSOrigins: getEnvSliceOrDefault("SLIDEMARK_CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:8080",
				"http://127.0.0.1:8080",
			}),
		},
		Watcher: entities.WatcherConfig{
			IntervalMs: 200,
			DebounceMs: 300,
		},
		Logging: entities.LoggingConfig{
			Level:      getEnvOrDefault("SLIDEMARK_LOG_LEVEL", "info"),
			JSONFormat: getEnvBoolOrDefault("SLIDEMARK_LOG_JSON", false),
			File:       getEnvOrDefault("SLIDEMARK_LOG_FILE", ""),
		},
	}

	// Apply additional environment-based overrides
	applyEnvironmentOverrides(config)

	return config
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault returns environment variable as slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		if result := splitList(value); len(result) > 0 {
			return result
		}
	}
	return append([]string(nil), defaultValue...)
}

// splitList splits a comma separated value and trims whitespace
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// applyEnvironmentOverrides applies additional environment-based configuration
func applyEnvironmentOverrides(config *entities.Config) {
	if layout := os.Getenv("SLIDEMARK_STRICT_LAYOUT"); layout != "" {
		if boolValue, err := strconv.ParseBool(layout); err == nil {
			config.Parse.StrictLayout = entities.BoolPtr(boolValue)
		}
	}

	if notes := os.Getenv("SLIDEMARK_INCLUDE_NOTES"); notes != "" {
		if boolValue, err := strconv.ParseBool(notes); err == nil {
			config.Export.IncludeNotes = entities.BoolPtr(boolValue)
		}
	}

	// Theme settings
	if font := os.Getenv("SLIDEMARK_THEME_FONT"); font != "" {
		config.Theme.FontFamily = font
	}

	if primary := os.Getenv("SLIDEMARK_THEME_PRIMARY"); primary != "" {
		config.Theme.PrimaryColor = primary
	}
}
