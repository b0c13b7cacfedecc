package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// LocalConfigName is the per-deck configuration file looked up next to the input
const LocalConfigName = "slidemark.toml"

const defaultsHeader = `# slidemark configuration
#
# Settings apply in this order, later ones winning: built-in defaults,
# the global file, slidemark.toml next to the deck, SLIDEMARK_* variables
# and command line flags.

`

// TOMLLoader reads the global and local TOML configuration files
type TOMLLoader struct {
	globalPath string
}

// NewTOMLLoader reads the global file from the user config directory
func NewTOMLLoader() *TOMLLoader {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return NewTOMLLoaderWithPath(filepath.Join(dir, "slidemark", "config.toml"))
}

// NewTOMLLoaderWithPath reads the global file from globalPath
func NewTOMLLoaderWithPath(globalPath string) *TOMLLoader {
	return &TOMLLoader{globalPath: globalPath}
}

// LoadGlobal loads the global file, writing the defaults there first when
// it does not exist yet
func (l *TOMLLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(l.globalPath); errors.Is(err, fs.ErrNotExist) {
		// Another process may win the race; its file is as good as ours
		if err := l.WriteDefaults(ctx, l.globalPath, false); err != nil && !errors.Is(err, ports.ErrConfigExists) {
			return nil, fmt.Errorf("creating defaults: %w", err)
		}
	}

	return decodeFile(l.globalPath)
}

// LoadLocal loads slidemark.toml from dir if there is one
func (l *TOMLLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := l.Path(ports.LocalScope, dir)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	return decodeFile(path)
}

// WriteDefaults writes the commented default settings to path
func (l *TOMLLoader) WriteDefaults(ctx context.Context, path string, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	// 0750 = owner and group only
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flag |= os.O_EXCL
	}

	file, err := os.OpenFile(path, flag, 0600) // #nosec G304 - path is the global or local config path
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s: %w", path, ports.ErrConfigExists)
	}
	if err != nil {
		return fmt.Errorf("creating config file %s: %w", path, err)
	}

	if _, err := file.WriteString(defaultsHeader); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}

	encoder := toml.NewEncoder(file)
	encoder.Indent = "  "
	if err := encoder.Encode(GetDefaultConfig()); err != nil {
		_ = file.Close()
		return fmt.Errorf("encoding config to %s: %w", path, err)
	}

	return file.Close()
}

// Path returns the global file, or slidemark.toml in dir for LocalScope
func (l *TOMLLoader) Path(scope ports.ConfigScope, dir string) string {
	if scope == ports.LocalScope {
		return filepath.Join(dir, LocalConfigName)
	}
	return l.globalPath
}

// decodeFile parses one layer. Unknown keys are rejected so a misspelt
// setting is not silently ignored.
func decodeFile(path string) (*entities.Config, error) {
	var cfg entities.Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing TOML from %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return &cfg, nil
}

var _ ports.ConfigLoader = (*TOMLLoader)(nil)
