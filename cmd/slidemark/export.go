package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidemark/internal/adapters/secondary/export"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Generate decks from a markdown file",
		Long: `Parse a markdown deck and write it in one or more formats. Formats
are generated concurrently; a failing format does not stop the others.

Formats: ` + strings.Join(export.NewService("", nil).GetSupportedFormats(), ", ") + `

Example:
  slidemark export deck.md -f pptx,pdf
  slidemark export deck.md -f gslides -o build --batch-size 25`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}

	addParseFlags(cmd)
	cmd.Flags().StringSliceP("formats", "f", nil, "Formats to generate (overrides config)")
	cmd.Flags().StringP("output-dir", "o", "", "Directory for generated files (overrides config)")
	cmd.Flags().Bool("no-notes", false, "Leave speaker notes out of every format")
	cmd.Flags().String("title", "", "Document title (defaults to the deck title)")
	cmd.Flags().String("base-name", "", "File name without extension (defaults to a slug of the title)")
	cmd.Flags().Int("batch-size", 0, "Requests per batch for request based formats (overrides config)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
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

	options, err := exportOptions(cmd, a)
	if err != nil {
		return err
	}

	service := export.NewService(a.config.Export.GetOutputDir(), a.logger)
	formats := a.config.Export.GetFormats()

	a.logger.Debug("Exporting presentation",
		slog.String("input", inputPath),
		slog.String("formats", strings.Join(formats, ",")),
		slog.String("output_dir", a.config.Export.GetOutputDir()),
	)

	results, err := service.ExportAll(cmd.Context(), result.Presentation, formats, options)
	for _, r := range results {
		if r == nil {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-9s %s (%s, %d slides)\n", r.Format, r.OutputPath, humanSize(r.Size), r.SlideCount)
	}
	return err
}

func exportOptions(cmd *cobra.Command, a *app) (ports.ExportOptions, error) {
	title, _ := cmd.Flags().GetString("title")
	baseName, _ := cmd.Flags().GetString("base-name")

	batchSize := a.config.Export.GetBatchSize()
	if cmd.Flags().Changed("batch-size") {
		batchSize, _ = cmd.Flags().GetInt("batch-size")
		if batchSize <= 0 {
			return ports.ExportOptions{}, errors.New("batch size must be positive")
		}
	}

	return ports.ExportOptions{
		IncludeNotes: a.config.Export.NotesIncluded(),
		BatchSize:    batchSize,
		Title:        title,
		BaseName:     baseName,
	}, nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
