package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidemark/internal/adapters/secondary/export"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a markdown deck and print its slide model as JSON",
		Long: `Parse a markdown deck and print the resulting slide model as JSON.
Violations are logged as warnings; use --strict to fail on them.
Pass "-" to read the deck from standard input.

Example:
  slidemark parse deck.md
  slidemark parse deck.md -o deck.json --no-notes`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}

	addParseFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Write the JSON to a file instead of stdout")
	cmd.Flags().Bool("no-notes", false, "Drop speaker notes from the output")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	a, err := setup(cmd, inputPath)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := loadDeck(cmd, a, inputPath)
	if err != nil {
		return err
	}
	logViolations(a.logger, result)

	options := ports.ExportOptions{IncludeNotes: a.config.Export.NotesIncluded()}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		return export.NewJSONGenerator().Generate(cmd.Context(), result.Presentation, cmd.OutOrStdout(), options)
	}

	return writeFile(output, func(w io.Writer) error {
		return export.NewJSONGenerator().Generate(cmd.Context(), result.Presentation, w, options)
	})
}

// loadDeck runs the pipeline on the input file or stdin
func loadDeck(cmd *cobra.Command, a *app, inputPath string) (*ports.ParseResult, error) {
	content, err := readInput(cmd, inputPath)
	if err != nil {
		return nil, err
	}

	result, err := a.presentations().ParsePresentation(cmd.Context(), content)
	if err != nil {
		if inputPath != stdinPath {
			return nil, fmt.Errorf("%s: %w", inputPath, err)
		}
		return nil, err
	}
	return result, nil
}

func logViolations(logger *slog.Logger, result *ports.ParseResult) {
	for _, v := range result.Violations {
		logger.Warn("Presentation violation",
			slog.String("kind", string(v.Kind)),
			slog.String("slide", v.SlideID),
			slog.Int("element", v.Element),
			slog.String("message", v.Message),
		)
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path) // #nosec G304 - user supplied output path
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := write(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
