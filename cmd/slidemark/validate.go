package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

// ErrViolationsFound makes validate exit non-zero
var ErrViolationsFound = errors.New("violations found")

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a markdown deck and list every violation",
		Long: `Parse a markdown deck, run the content model checks and print every
violation found. The command exits with a non-zero status when there is
at least one.

Example:
  slidemark validate deck.md
  slidemark validate deck.md --strict-layout --json`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}

	addParseFlags(cmd)
	cmd.Flags().Bool("json", false, "Print violations as a JSON array")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	a, err := setup(cmd, inputPath)
	if err != nil {
		return err
	}
	defer a.close()

	var (
		violations []entities.Violation
		slides     int
	)

	result, err := loadDeck(cmd, a, inputPath)
	var validationErr *entities.ValidationError
	switch {
	case errors.As(err, &validationErr):
		// Strict runs return no presentation, only the findings
		violations = validationErr.Violations
	case err != nil:
		return err
	default:
		violations = result.Violations
		slides = result.Presentation.SlideCount()
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		if violations == nil {
			violations = []entities.Violation{}
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(violations); err != nil {
			return fmt.Errorf("encoding violations: %w", err)
		}
	} else {
		printViolations(cmd, inputPath, slides, violations)
	}

	if len(violations) > 0 {
		return fmt.Errorf("%s: %d %w", inputPath, len(violations), ErrViolationsFound)
	}
	return nil
}

func printViolations(cmd *cobra.Command, inputPath string, slides int, violations []entities.Violation) {
	out := cmd.OutOrStdout()
	if len(violations) == 0 {
		fmt.Fprintf(out, "%s: %d slides, no violations\n", inputPath, slides)
		return
	}

	for _, v := range violations {
		fmt.Fprintf(out, "%s: %s\n", inputPath, v.String())
	}
}
