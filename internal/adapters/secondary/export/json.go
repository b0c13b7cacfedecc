package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// JSONGenerator writes the IR interchange document
type JSONGenerator struct{}

var _ ports.Generator = (*JSONGenerator)(nil)

// NewJSONGenerator creates a new JSON generator
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

func (g *JSONGenerator) Format() string    { return "json" }
func (g *JSONGenerator) Extension() string { return ".json" }
func (g *JSONGenerator) MimeType() string  { return "application/json" }

// Generate encodes the presentation. Without IncludeNotes the notes are
// dropped from a copy, never from the caller's value.
func (g *JSONGenerator) Generate(ctx context.Context, presentation *entities.Presentation, w io.Writer, options ports.ExportOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := presentation
	if !options.IncludeNotes || options.Title != "" {
		out = presentation.Clone()
		out.Metadata.Title = documentTitle(presentation, options)
		if !options.IncludeNotes {
			for i := range out.Slides {
				out.Slides[i].Notes = nil
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding presentation: %w", err)
	}
	return nil
}
