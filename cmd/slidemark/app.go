package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fredcamaral/slidemark/internal/adapters/secondary/config"
	"github.com/fredcamaral/slidemark/internal/adapters/secondary/parser"
	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/services"
)

// stdinPath makes commands read the deck from standard input
const stdinPath = "-"

// app carries what every command needs once flags are parsed
type app struct {
	config   *entities.Config
	theme    *entities.ThemeConfig
	logger   *slog.Logger
	closeLog func() error
}

// newConfigLoader honours --config for the global file
func newConfigLoader(cmd *cobra.Command) *config.TOMLLoader {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.NewTOMLLoaderWithPath(path)
	}
	return config.NewTOMLLoader()
}

// changedFlags collects the flags set on the command line, keyed by name,
// in the shape ConfigMerger.ApplyFlags expects
func changedFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Value.Type() {
		case "bool":
			v, _ := cmd.Flags().GetBool(f.Name)
			flags[f.Name] = v
		case "int":
			v, _ := cmd.Flags().GetInt(f.Name)
			flags[f.Name] = v
		case "stringSlice":
			v, _ := cmd.Flags().GetStringSlice(f.Name)
			flags[f.Name] = v
		default:
			flags[f.Name] = f.Value.String()
		}
	})
	return flags
}

// workingDir is where the local slidemark.toml is looked up
func workingDir(inputPath string) string {
	if inputPath == "" || inputPath == stdinPath {
		return "."
	}
	return filepath.Dir(inputPath)
}

// setup loads the effective configuration for inputPath and builds the logger
func setup(cmd *cobra.Command, inputPath string) (*app, error) {
	configService := services.NewConfigService(newConfigLoader(cmd), config.NewConfigMerger())

	cfg, err := configService.LoadConfig(cmd.Context(), workingDir(inputPath), changedFlags(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	theme, err := configService.ResolveTheme(cfg)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	return &app{
		config:   cfg,
		theme:    theme,
		logger:   logger,
		closeLog: closeLog,
	}, nil
}

func (a *app) close() {
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}

// presentations builds the parse pipeline from the [parse] section
func (a *app) presentations() *services.PresentationService {
	opts := parser.OptionsFromConfig(a.config.Parse, a.theme, a.logger)
	return services.NewPresentationService(
		parser.NewPresentationParser(opts),
		services.NewValidator(a.config.Parse.IsStrictLayout()),
		a.config.Parse.IsStrict(),
		a.logger,
	)
}

// newLogger builds the slog logger described by the [logging] section. Logs
// go to w unless a file is configured.
func newLogger(cfg entities.LoggingConfig, w io.Writer) (*slog.Logger, func() error, error) {
	closeLog := func() error { return nil }

	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 - path comes from config
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = file
		closeLog = file.Close
	}

	opts := &slog.HandlerOptions{Level: slogLevel(cfg.GetLevel())}

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler), closeLog, nil
}

func slogLevel(level entities.LogLevel) slog.Level {
	switch level {
	case entities.LogLevelDebug:
		return slog.LevelDebug
	case entities.LogLevelWarn:
		return slog.LevelWarn
	case entities.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// readInput reads the deck from path, or from stdin for "-"
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == stdinPath {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading standard input: %w", err)
		}
		return content, nil
	}

	content, err := os.ReadFile(path) // #nosec G304 - user supplied input file
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("presentation file not found: %s", path)
		}
		return nil, fmt.Errorf("reading presentation file: %w", err)
	}
	return content, nil
}

// addParseFlags registers the [parse] overrides shared by every command
// that reads a deck
func addParseFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("strict", false, "Fail on the first set of violations instead of reporting them")
	cmd.Flags().Bool("strict-layout", false, "Report layouts that do not match slide content")
	cmd.Flags().Int("split-depth", 0, "Also split slides on headings of exactly this depth (1 or 2)")
	cmd.Flags().Bool("no-break-splits", false, "Do not split slides on thematic breaks")
	cmd.Flags().String("id-strategy", "", "Slide ID strategy: slug or uuid")
}
