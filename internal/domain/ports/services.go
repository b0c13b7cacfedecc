package ports

import (
	"context"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

// ParseResult is the outcome of a parse: the presentation plus every
// non-fatal finding collected on the way
type ParseResult struct {
	Presentation *entities.Presentation
	Violations   []entities.Violation
}

// HasViolations returns true if any finding was recorded
func (r *ParseResult) HasViolations() bool {
	return r != nil && len(r.Violations) > 0
}

// PresentationParser defines the interface for turning Markdown into the IR
type PresentationParser interface {
	// Parse converts markdown content into a presentation. Fatal problems are
	// returned as *entities.ParseError.
	Parse(ctx context.Context, content []byte) (*ParseResult, error)
}

// PresentationService defines the main service interface for presentations
type PresentationService interface {
	// LoadPresentation reads and parses a presentation file
	LoadPresentation(ctx context.Context, path string) (*ParseResult, error)

	// ParsePresentation parses markdown content into a presentation
	ParsePresentation(ctx context.Context, content []byte) (*ParseResult, error)
}

// ExportService defines the interface for presentation export functionality
type ExportService interface {
	// Export writes the presentation in one format
	Export(ctx context.Context, presentation *entities.Presentation, format string, options ExportOptions) (*ExportResult, error)

	// GetSupportedFormats returns a list of supported export formats
	GetSupportedFormats() []string
}
