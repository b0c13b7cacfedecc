package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

func TestConfigMerger_Merge(t *testing.T) {
	merger := NewConfigMerger()

	t.Run("merge with no configs returns defaults", func(t *testing.T) {
		result := merger.Merge()
		require.NotNil(t, result)
		assert.Equal(t, "localhost", result.Server.Host)
		assert.Equal(t, 1000, result.Server.Port)
		assert.True(t, result.Parse.BreakSplits())
		assert.Equal(t, 0, result.Parse.SplitDepth())
		assert.False(t, result.Parse.IsStrict())
		assert.Equal(t, entities.IDStrategySlug, result.Parse.IDStrategy)
		assert.True(t, result.Theme.IsZero())
		assert.Equal(t, []string{"json"}, result.Export.Formats)
		assert.True(t, result.Export.NotesIncluded())
		assert.NoError(t, result.Validate())
	})

	t.Run("merge single config", func(t *testing.T) {
		config := &entities.Config{
			Server: entities.ServerConfig{
				Host: "example.com",
				Port: 8080,
			},
			Theme: entities.ThemeSettings{
				FontFamily: "Georgia",
			},
		}

		result := merger.Merge(config)
		assert.Equal(t, "example.com", result.Server.Host)
		assert.Equal(t, 8080, result.Server.Port)
		assert.Equal(t, "Georgia", result.Theme.FontFamily)
	})

	t.Run("merge multiple configs with precedence", func(t *testing.T) {
		base := &entities.Config{
			Server: entities.ServerConfig{
				Host: "localhost",
				Port: 1000,
			},
			Theme: entities.ThemeSettings{
				PrimaryColor: "#112233",
				FontFamily:   "Arial",
			},
			Export: entities.ExportConfig{
				Formats:   []string{"json"},
				OutputDir: "out",
			},
		}

		override := &entities.Config{
			Server: entities.ServerConfig{
				Host: "0.0.0.0",
				// Port not specified, should keep base value
			},
			Theme: entities.ThemeSettings{
				FontFamily: "Verdana",
			},
			Export: entities.ExportConfig{
				Formats: []string{"pptx", "html"},
			},
		}

		result := merger.Merge(base, override)
		assert.Equal(t, "0.0.0.0", result.Server.Host)
		assert.Equal(t, 1000, result.Server.Port)
		assert.Equal(t, "#112233", result.Theme.PrimaryColor)
		assert.Equal(t, "Verdana", result.Theme.FontFamily)
		assert.Equal(t, []string{"pptx", "html"}, result.Export.Formats)
		assert.Equal(t, "out", result.Export.OutputDir)
	})

	t.Run("explicit false overrides true", func(t *testing.T) {
		base := &entities.Config{
			Parse: entities.ParseConfig{
				ThematicBreakSplits: entities.BoolPtr(true),
				Strict:              entities.BoolPtr(true),
				HeadingSplitDepth:   entities.IntPtr(2),
			},
			Export: entities.ExportConfig{IncludeNotes: entities.BoolPtr(true)},
		}
		override := &entities.Config{
			Parse: entities.ParseConfig{
				ThematicBreakSplits: entities.BoolPtr(false),
				HeadingSplitDepth:   entities.IntPtr(0),
			},
			Export: entities.ExportConfig{IncludeNotes: entities.BoolPtr(false)},
		}

		result := merger.Merge(base, override)
		assert.False(t, result.Parse.BreakSplits())
		assert.Equal(t, 0, result.Parse.SplitDepth())
		assert.True(t, result.Parse.IsStrict(), "unset pointer keeps the base value")
		assert.False(t, result.Export.NotesIncluded())
	})

	t.Run("merge handles nil configs", func(t *testing.T) {
		base := &entities.Config{
			Server: entities.ServerConfig{
				Host: "localhost",
				Port: 1000,
			},
		}

		result := merger.Merge(base, nil)
		assert.Equal(t, "localhost", result.Server.Host)
		assert.Equal(t, 1000, result.Server.Port)
	})

	t.Run("merge does not alias inputs", func(t *testing.T) {
		base := &entities.Config{
			Parse:  entities.ParseConfig{Strict: entities.BoolPtr(false)},
			Export: entities.ExportConfig{Formats: []string{"json"}},
		}
		override := &entities.Config{
			Parse: entities.ParseConfig{Extensions: []string{entities.ExtensionTable}},
		}

		result := merger.Merge(base, override)
		*result.Parse.Strict = true
		result.Export.Formats[0] = "svg"
		result.Parse.Extensions[0] = entities.ExtensionLinkify

		assert.False(t, *base.Parse.Strict)
		assert.Equal(t, "json", base.Export.Formats[0])
		assert.Equal(t, entities.ExtensionTable, override.Parse.Extensions[0])
	})
}

func TestConfigMerger_ApplyFlags(t *testing.T) {
	merger := NewConfigMerger()
	base := GetDefaultConfig()

	tests := []struct {
		name   string
		flags  map[string]interface{}
		verify func(t *testing.T, c *entities.Config)
	}{
		{
			name:  "server flags",
			flags: map[string]interface{}{"port": 9090, "host": "0.0.0.0"},
			verify: func(t *testing.T, c *entities.Config) {
				assert.Equal(t, 9090, c.Server.Port)
				assert.Equal(t, "0.0.0.0", c.Server.Host)
			},
		},
		{
			name:  "zero port is ignored",
			flags: map[string]interface{}{"port": 0},
			verify: func(t *testing.T, c *entities.Config) {
				assert.Equal(t, base.Server.Port, c.Server.Port)
			},
		},
		{
			name: "parse flags",
			flags: map[string]interface{}{
				"strict":          true,
				"strict-layout":   true,
				"split-depth":     2,
				"no-break-splits": true,
				"id-strategy":     "uuid",
			},
			verify: func(t *testing.T, c *entities.Config) {
				assert.True(t, c.Parse.IsStrict())
				assert.True(t, c.Parse.IsStrictLayout())
				assert.Equal(t, 2, c.Parse.SplitDepth())
				assert.False(t, c.Parse.BreakSplits())
				assert.Equal(t, entities.IDStrategyUUID, c.Parse.IDStrategy)
			},
		},
		{
			name: "export flags",
			flags: map[string]interface{}{
				"formats":    []string{"pptx", "svg"},
				"output-dir": "dist",
				"no-notes":   true,
			},
			verify: func(t *testing.T, c *entities.Config) {
				assert.Equal(t, []string{"pptx", "svg"}, c.Export.Formats)
				assert.Equal(t, "dist", c.Export.OutputDir)
				assert.False(t, c.Export.NotesIncluded())
			},
		},
		{
			name:  "logging flags",
			flags: map[string]interface{}{"log-level": "debug", "log-json": true},
			verify: func(t *testing.T, c *entities.Config) {
				assert.Equal(t, "debug", c.Logging.Level)
				assert.True(t, c.Logging.JSONFormat)
			},
		},
		{
			name:  "wrongly typed flags are ignored",
			flags: map[string]interface{}{"port": "9090", "strict": "yes"},
			verify: func(t *testing.T, c *entities.Config) {
				assert.Equal(t, base.Server.Port, c.Server.Port)
				assert.False(t, c.Parse.IsStrict())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := merger.ApplyFlags(base, tt.flags)
			tt.verify(t, result)
		})
	}

	t.Run("base is not modified", func(t *testing.T) {
		_ = merger.ApplyFlags(base, map[string]interface{}{"strict": true, "port": 9999})
		assert.False(t, base.Parse.IsStrict())
		assert.Equal(t, 1000, base.Server.Port)
	})
}

func TestConfigMerger_ApplyEnvVars(t *testing.T) {
	merger := NewConfigMerger()

	t.Run("applies SLIDEMARK variables", func(t *testing.T) {
		t.Setenv("SLIDEMARK_HOST", "10.0.0.1")
		t.Setenv("SLIDEMARK_PORT", "4000")
		t.Setenv("SLIDEMARK_STRICT", "true")
		t.Setenv("SLIDEMARK_SPLIT_DEPTH", "1")
		t.Setenv("SLIDEMARK_FORMATS", "pptx, html ,")
		t.Setenv("SLIDEMARK_THEME_FONT", "Georgia")
		t.Setenv("SLIDEMARK_WATCH_DEBOUNCE", "0")

		result := merger.ApplyEnvVars(&entities.Config{})
		assert.Equal(t, "10.0.0.1", result.Server.Host)
		assert.Equal(t, 4000, result.Server.Port)
		assert.True(t, result.Parse.IsStrict())
		assert.Equal(t, 1, result.Parse.SplitDepth())
		assert.Equal(t, []string{"pptx", "html"}, result.Export.Formats)
		assert.Equal(t, "Georgia", result.Theme.FontFamily)
		assert.Equal(t, 0, result.Watcher.DebounceMs)
	})

	t.Run("invalid values are ignored", func(t *testing.T) {
		t.Setenv("SLIDEMARK_PORT", "not-a-number")
		t.Setenv("SLIDEMARK_STRICT", "maybe")

		base := &entities.Config{Server: entities.ServerConfig{Port: 1000}}
		result := merger.ApplyEnvVars(base)
		assert.Equal(t, 1000, result.Server.Port)
		assert.Nil(t, result.Parse.Strict)
	})
}

func TestGetDefaultConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SLIDEMARK_LOG_LEVEL", "debug")
	t.Setenv("SLIDEMARK_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SLIDEMARK_INCLUDE_NOTES", "false")

	config := GetDefaultConfig()
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, config.Server.CORSOrigins)
	assert.False(t, config.Export.NotesIncluded())
}

func TestGetDefaultConfig_DoesNotShareExtensions(t *testing.T) {
	config := GetDefaultConfig()
	config.Parse.Extensions[0] = "changed"

	assert.Equal(t, entities.ExtensionTable, entities.AllExtensions[0])
}
