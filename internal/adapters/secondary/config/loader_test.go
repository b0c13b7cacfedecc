package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

func TestTOMLLoader_LoadGlobal(t *testing.T) {
	ctx := context.Background()

	t.Run("creates config on first run", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "nested", "config.toml")
		loader := NewTOMLLoaderWithPath(globalPath)

		config, err := loader.LoadGlobal(ctx)
		require.NoError(t, err)
		require.NotNil(t, config)

		_, err = os.Stat(globalPath)
		assert.NoError(t, err)

		assert.Equal(t, "localhost", config.Server.Host)
		assert.Equal(t, 1000, config.Server.Port)
		assert.True(t, config.Parse.BreakSplits())
		assert.Equal(t, entities.AllExtensions, config.Parse.Extensions)
		assert.True(t, config.Theme.IsZero())
		assert.Equal(t, 200, config.Watcher.IntervalMs)
	})

	t.Run("loads existing config", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "config.toml")

		configContent := `
[parse]
thematic_break_splits = false
heading_split_depth = 1
strict = true
id_strategy = "uuid"

[theme]
primary_color = "#336699"
font_family = "Georgia"

[export]
formats = ["pptx", "gslides"]
include_notes = false

[server]
host = "0.0.0.0"
port = 8080

[watcher]
interval_ms = 250
`
		require.NoError(t, os.WriteFile(globalPath, []byte(configContent), 0644))

		config, err := NewTOMLLoaderWithPath(globalPath).LoadGlobal(ctx)
		require.NoError(t, err)

		assert.False(t, config.Parse.BreakSplits())
		assert.Equal(t, 1, config.Parse.SplitDepth())
		assert.True(t, config.Parse.IsStrict())
		assert.Nil(t, config.Parse.StrictLayout)
		assert.Equal(t, entities.IDStrategyUUID, config.Parse.IDStrategy)
		assert.Equal(t, "#336699", config.Theme.PrimaryColor)
		assert.Equal(t, []string{"pptx", "gslides"}, config.Export.Formats)
		assert.False(t, config.Export.NotesIncluded())
		assert.Equal(t, "0.0.0.0", config.Server.Host)
		assert.Equal(t, 8080, config.Server.Port)
		assert.Equal(t, 250, config.Watcher.IntervalMs)
	})

	t.Run("round trips the written defaults", func(t *testing.T) {
		globalPath := filepath.Join(t.TempDir(), "config.toml")
		loader := NewTOMLLoaderWithPath(globalPath)

		require.NoError(t, loader.WriteDefaults(ctx, globalPath, false))
		config, err := loader.LoadGlobal(ctx)
		require.NoError(t, err)

		defaults := GetDefaultConfig()
		assert.Equal(t, defaults.Parse, config.Parse)
		assert.Equal(t, defaults.Export, config.Export)
		assert.Equal(t, defaults.Server, config.Server)
	})

	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "invalid TOML",
			content: "[server\nport = 80",
			errMsg:  "parsing TOML",
		},
		{
			name:    "invalid port",
			content: "[server]\nport = 70000",
			errMsg:  "invalid config",
		},
		{
			name:    "invalid split depth",
			content: "[parse]\nheading_split_depth = 3",
			errMsg:  "invalid config",
		},
		{
			name:    "invalid theme color",
			content: "[theme]\nprimary_color = \"blue\"",
			errMsg:  "invalid config",
		},
		{
			name:    "unknown key",
			content: "[parse]\nsplit_on_headings = true",
			errMsg:  "unknown key \"parse.split_on_headings\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			globalPath := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(globalPath, []byte(tt.content), 0644))

			_, err := NewTOMLLoaderWithPath(globalPath).LoadGlobal(ctx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestTOMLLoader_LoadLocal(t *testing.T) {
	ctx := context.Background()
	loader := NewTOMLLoaderWithPath(filepath.Join(t.TempDir(), "config.toml"))

	t.Run("missing local config is not an error", func(t *testing.T) {
		config, err := loader.LoadLocal(ctx, t.TempDir())
		assert.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("loads slidemark.toml from the directory", func(t *testing.T) {
		dir := t.TempDir()
		content := "[parse]\nstrict_layout = true\n\n[export]\noutput_dir = \"build\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, LocalConfigName), []byte(content), 0644))

		config, err := loader.LoadLocal(ctx, dir)
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.True(t, config.Parse.IsStrictLayout())
		assert.Equal(t, "build", config.Export.OutputDir)
	})
}

func TestTOMLLoader_WriteDefaults(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "talks", LocalConfigName)
	loader := NewTOMLLoaderWithPath(filepath.Join(t.TempDir(), "config.toml"))

	require.NoError(t, loader.WriteDefaults(ctx, path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# slidemark configuration"))
	assert.Contains(t, string(data), "[parse]")

	t.Run("existing file is kept", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("[export]\nformats = [\"pdf\"]\n"), 0600))

		err := loader.WriteDefaults(ctx, path, false)
		require.ErrorIs(t, err, ports.ErrConfigExists)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"pdf"`)
	})

	t.Run("overwrite replaces it", func(t *testing.T) {
		require.NoError(t, loader.WriteDefaults(ctx, path, true))

		config, err := loader.LoadLocal(ctx, filepath.Dir(path))
		require.NoError(t, err)
		assert.Equal(t, GetDefaultConfig().Export.Formats, config.Export.Formats)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, loader.WriteDefaults(cancelled, path, true), context.Canceled)
	})
}

func TestTOMLLoader_Path(t *testing.T) {
	loader := NewTOMLLoader()

	global := loader.Path(ports.GlobalScope, "ignored")
	assert.Equal(t, "config.toml", filepath.Base(global))
	assert.Equal(t, "slidemark", filepath.Base(filepath.Dir(global)))
	assert.Equal(t, filepath.Join("deck", "slidemark.toml"), loader.Path(ports.LocalScope, "deck"))
}
