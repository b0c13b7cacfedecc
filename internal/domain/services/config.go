package services

import (
	"context"
	"fmt"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// ConfigService resolves the effective configuration from defaults, the
// global and local TOML files, SLIDEMARK_* variables and CLI flags
type ConfigService struct {
	loader ports.ConfigLoader
	merger ports.ConfigMerger
}

// NewConfigService creates a new configuration service
func NewConfigService(loader ports.ConfigLoader, merger ports.ConfigMerger) *ConfigService {
	return &ConfigService{
		loader: loader,
		merger: merger,
	}
}

// LoadConfig loads the configuration for a deck in workingDir. Layers apply
// in order: defaults, global, local, environment, flags.
func (s *ConfigService) LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error) {
	layers := []*entities.Config{s.merger.Merge()}

	global, err := s.loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	if global != nil {
		layers = append(layers, global)
	}

	local, err := s.loader.LoadLocal(ctx, workingDir)
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}
	if local != nil {
		layers = append(layers, local)
	}

	cfg := s.merger.ApplyFlags(s.merger.ApplyEnvVars(s.merger.Merge(layers...)), flags)

	// Flags and variables bypass the per-file checks in the loader
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("final config validation: %w", err)
	}
	return cfg, nil
}

// ResolveTheme turns the [theme] section into the theme attached to parsed
// presentations. An empty section yields nil so the IR carries no theme.
func (s *ConfigService) ResolveTheme(config *entities.Config) (*entities.ThemeConfig, error) {
	if config == nil || config.Theme.IsZero() {
		return nil, nil
	}

	theme, err := config.Theme.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolving theme: %w", err)
	}
	return &theme, nil
}

// InitConfig writes the defaults to the file for scope and returns its path.
// The path is returned with ErrConfigExists too, so callers can name it.
func (s *ConfigService) InitConfig(ctx context.Context, scope ports.ConfigScope, dir string, overwrite bool) (string, error) {
	path := s.loader.Path(scope, dir)
	if err := s.loader.WriteDefaults(ctx, path, overwrite); err != nil {
		return path, fmt.Errorf("writing %s config: %w", scope, err)
	}
	return path, nil
}

var _ ports.ConfigService = (*ConfigService)(nil)
