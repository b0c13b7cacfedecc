package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fredcamaral/slidemark/internal/adapters/secondary/parser"
	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// ErrUnsupportedFormat is returned when no generator is registered for a format
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ExportErrorType categorizes export failures
type ExportErrorType string

const (
	ErrorTypeValidation    ExportErrorType = "validation"
	ErrorTypeGenerator     ExportErrorType = "generator"
	ErrorTypeFilesystem    ExportErrorType = "filesystem"
	ErrorTypeTimeout       ExportErrorType = "timeout"
	ErrorTypeNetwork       ExportErrorType = "network"
	ErrorTypeRateLimit     ExportErrorType = "rate_limit"
	ErrorTypeConfiguration ExportErrorType = "configuration"
)

// ExportError provides structured error information for export operations
type ExportError struct {
	Type      ExportErrorType `json:"type"`
	Message   string          `json:"message"`
	Details   string          `json:"details,omitempty"`
	Retryable bool            `json:"retryable"`
	Cause     error           `json:"-"`
}

// Error implements the error interface
func (e *ExportError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s error: %s - %s", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether err is an ExportError marked retryable
func IsRetryable(err error) bool {
	var exportErr *ExportError
	return errors.As(err, &exportErr) && exportErr.Retryable
}

// Service keeps the generator registry and writes generated artifacts to
// the output directory. Generators only read the presentation, so one IR
// can be exported to several formats at once.
type Service struct {
	mu         sync.RWMutex
	generators map[string]ports.Generator
	outputDir  string
	logger     *slog.Logger
}

// Ensure Service implements ports.ExportService
var _ ports.ExportService = (*Service)(nil)

// NewService creates an export service writing into outputDir with every
// built-in generator registered
func NewService(outputDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if outputDir == "" {
		outputDir = "."
	}

	s := &Service{
		generators: make(map[string]ports.Generator),
		outputDir:  outputDir,
		logger:     logger.With("component", "export"),
	}

	s.Register(NewJSONGenerator())
	s.Register(NewMarkdownGenerator())
	s.Register(NewHTMLGenerator())
	s.Register(NewSVGGenerator())
	s.Register(NewPDFGenerator())
	s.Register(NewPNGGenerator())
	s.Register(NewPPTXGenerator())
	s.Register(NewSlidesGenerator())

	return s
}

// Register adds or replaces the generator for its format
func (s *Service) Register(g ports.Generator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generators[strings.ToLower(g.Format())] = g
}

// Generator returns the generator registered for format
func (s *Service) Generator(format string) (ports.Generator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.generators[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return g, nil
}

// GetSupportedFormats returns the registered formats in sorted order
func (s *Service) GetSupportedFormats() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	formats := make([]string, 0, len(s.generators))
	for format := range s.generators {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// OutputPath returns where Export writes format for the given options
func (s *Service) OutputPath(presentation *entities.Presentation, g ports.Generator, options ports.ExportOptions) string {
	return filepath.Join(s.outputDir, baseName(presentation, options)+g.Extension())
}

// Export renders presentation in one format. The artifact is written to a
// temporary file first and renamed into place, so a failed export never
// leaves a truncated file behind.
func (s *Service) Export(ctx context.Context, presentation *entities.Presentation, format string, options ports.ExportOptions) (*ports.ExportResult, error) {
	if presentation == nil {
		return nil, &ExportError{
			Type:    ErrorTypeValidation,
			Message: "presentation cannot be nil",
		}
	}

	g, err := s.Generator(format)
	if err != nil {
		return nil, &ExportError{
			Type:    ErrorTypeConfiguration,
			Message: "unsupported export format",
			Details: format,
			Cause:   err,
		}
	}

	start := time.Now()
	if err := validateBaseName(options.BaseName); err != nil {
		return nil, &ExportError{
			Type:    ErrorTypeValidation,
			Message: "invalid output name",
			Details: options.BaseName,
			Cause:   err,
		}
	}
	path := s.OutputPath(presentation, g, options)

	size, err := s.writeAtomically(path, func(w io.Writer) error {
		return g.Generate(ctx, presentation, w, options)
	})
	if err != nil {
		return nil, categorizeError(err)
	}

	result := &ports.ExportResult{
		Format:      g.Format(),
		OutputPath:  path,
		MimeType:    g.MimeType(),
		Size:        size,
		SlideCount:  presentation.SlideCount(),
		Duration:    time.Since(start),
		GeneratedAt: time.Now(),
	}

	s.logger.Info("Exported presentation",
		slog.String("format", result.Format),
		slog.String("path", result.OutputPath),
		slog.Int64("bytes", result.Size),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}

// ExportAll renders every format concurrently. Results keep the order of
// formats; a failed format leaves a nil entry and its error is joined into
// the returned error.
func (s *Service) ExportAll(ctx context.Context, presentation *entities.Presentation, formats []string, options ports.ExportOptions) ([]*ports.ExportResult, error) {
	results := make([]*ports.ExportResult, len(formats))
	errs := make([]error, len(formats))

	var wg sync.WaitGroup
	for i, format := range formats {
		wg.Add(1)
		go func(i int, format string) {
			defer wg.Done()
			result, err := s.Export(ctx, presentation, format, options)
			if err != nil {
				errs[i] = fmt.Errorf("exporting %s: %w", format, err)
				return
			}
			results[i] = result
		}(i, format)
	}
	wg.Wait()

	return results, errors.Join(errs...)
}

const exportFileMode os.FileMode = 0644

func (s *Service) writeAtomically(path string, generate func(io.Writer) error) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return 0, &ExportError{
			Type:    ErrorTypeFilesystem,
			Message: "failed to create output directory",
			Details: dir,
			Cause:   err,
		}
	}

	tmp, err := os.CreateTemp(dir, ".slidemark-export-*")
	if err != nil {
		return 0, &ExportError{
			Type:    ErrorTypeFilesystem,
			Message: "failed to create temporary file",
			Details: dir,
			Cause:   err,
		}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	// CreateTemp uses 0600; exports are ordinary documents
	if err := tmp.Chmod(exportFileMode); err != nil {
		_ = tmp.Close()
		return 0, &ExportError{
			Type:    ErrorTypeFilesystem,
			Message: "failed to set export permissions",
			Details: tmp.Name(),
			Cause:   err,
		}
	}

	counter := &countingWriter{w: tmp}
	if err := generate(counter); err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, &ExportError{
			Type:    ErrorTypeFilesystem,
			Message: "failed to move export into place",
			Details: path,
			Cause:   err,
		}
	}
	return counter.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// categorizeError wraps plain generator errors in an ExportError
func categorizeError(err error) *ExportError {
	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return exportErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &ExportError{
			Type:    ErrorTypeTimeout,
			Message: "export cancelled",
			Details: err.Error(),
			Cause:   err,
		}
	case errors.Is(err, os.ErrPermission):
		return &ExportError{
			Type:    ErrorTypeFilesystem,
			Message: "file access denied",
			Details: err.Error(),
			Cause:   err,
		}
	default:
		return &ExportError{
			Type:    ErrorTypeGenerator,
			Message: "generator error",
			Details: err.Error(),
			Cause:   err,
		}
	}
}

// baseName picks the file name stem for an export
func baseName(presentation *entities.Presentation, options ports.ExportOptions) string {
	if name := strings.TrimSpace(options.BaseName); name != "" {
		return name
	}
	if slug := parser.NewIDAssigner(entities.IDStrategySlug).Slug(documentTitle(presentation, options)); slug != "" {
		return slug
	}
	return "presentation"
}

// validateBaseName keeps explicit file names inside the output directory
func validateBaseName(name string) error {
	if name == "" {
		return nil
	}
	if strings.ContainsAny(name, `/\`) {
		return errors.New("name contains a path separator")
	}
	if name == "." || name == ".." {
		return errors.New("name contains directory traversal")
	}
	return nil
}
