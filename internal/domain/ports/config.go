package ports

import (
	"context"
	"errors"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

// ErrConfigExists is returned when defaults would overwrite a config file
var ErrConfigExists = errors.New("configuration file already exists")

// ConfigScope selects one of the configuration files
type ConfigScope int

const (
	// GlobalScope is the per-user file, created with defaults on first run
	GlobalScope ConfigScope = iota
	// LocalScope is the slidemark.toml next to a deck
	LocalScope
)

func (s ConfigScope) String() string {
	if s == LocalScope {
		return "local"
	}
	return "global"
}

// ConfigLoader reads and writes the TOML configuration layers
type ConfigLoader interface {
	LoadGlobal(ctx context.Context) (*entities.Config, error)

	// LoadLocal returns nil and no error when dir has no local file
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)

	// WriteDefaults writes the default settings to path. An existing file
	// is only replaced when overwrite is set; otherwise ErrConfigExists.
	WriteDefaults(ctx context.Context, path string, overwrite bool) error

	// Path returns the file for scope; dir is only used by LocalScope
	Path(scope ConfigScope, dir string) string
}

// ConfigMerger layers configurations; later values win
type ConfigMerger interface {
	// Merge with no arguments returns the defaults
	Merge(configs ...*entities.Config) *entities.Config

	// ApplyFlags overrides fields from explicitly set CLI flags, keyed by flag name
	ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config

	// ApplyEnvVars overrides fields from SLIDEMARK_* variables
	ApplyEnvVars(config *entities.Config) *entities.Config
}

// ConfigService resolves the settings a command runs with
type ConfigService interface {
	LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error)
	ResolveTheme(config *entities.Config) (*entities.ThemeConfig, error)
	InitConfig(ctx context.Context, scope ConfigScope, dir string, overwrite bool) (string, error)
}
