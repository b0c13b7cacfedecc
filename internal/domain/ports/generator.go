package ports

import (
	"context"
	"io"
	"time"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

// Generator translates the IR into one output format. Generators only read
// the presentation; one value may be shared by several generators at once.
type Generator interface {
	// Format returns the short format name used on the command line
	Format() string
	// Extension returns the file extension including the dot
	Extension() string
	// MimeType returns the media type of the output
	MimeType() string
	// Generate writes the rendered presentation to w
	Generate(ctx context.Context, presentation *entities.Presentation, w io.Writer, options ExportOptions) error
}

// ExportOptions tunes generator output
type ExportOptions struct {
	IncludeNotes bool
	// BatchSize caps requests per batch for request-based formats
	BatchSize int
	// Title overrides the document title where the format has one
	Title string
	// BaseName names exported files; defaults to a slug of the title
	BaseName string
}

// ExportResult describes one generated artifact
type ExportResult struct {
	Format      string        `json:"format"`
	OutputPath  string        `json:"outputPath,omitempty"`
	MimeType    string        `json:"mimeType"`
	Size        int64         `json:"size"`
	SlideCount  int           `json:"slideCount"`
	Duration    time.Duration `json:"duration"`
	GeneratedAt time.Time     `json:"generatedAt"`
}
