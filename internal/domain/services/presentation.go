package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// PresentationService runs the full pipeline: parse, transform, extract
// notes, then validate. Non-strict callers always get a presentation along
// with whatever was found; strict callers get a presentation or every
// violation, never both.
type PresentationService struct {
	parser    ports.PresentationParser
	validator *Validator
	strict    bool
	logger    *slog.Logger
}

// NewPresentationService creates a new presentation service instance
func NewPresentationService(
	parser ports.PresentationParser,
	validator *Validator,
	strict bool,
	logger *slog.Logger,
) *PresentationService {
	if validator == nil {
		validator = NewValidator(false)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PresentationService{
		parser:    parser,
		validator: validator,
		strict:    strict,
		logger:    logger.With("service", "presentation"),
	}
}

// LoadPresentation reads and parses a Markdown file
func (s *PresentationService) LoadPresentation(ctx context.Context, path string) (*ports.ParseResult, error) {
	if path == "" {
		return nil, errors.New("presentation path cannot be empty")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("presentation file not found: %s", path)
		}
		return nil, fmt.Errorf("reading presentation file: %w", err)
	}

	result, err := s.ParsePresentation(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// ParsePresentation parses markdown content into a validated presentation
func (s *PresentationService) ParsePresentation(ctx context.Context, content []byte) (*ports.ParseResult, error) {
	parsed, err := s.parser.Parse(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("parsing presentation: %w", err)
	}

	violations := append([]entities.Violation(nil), parsed.Violations...)
	violations = append(violations, s.validator.Validate(parsed.Presentation)...)
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].SlideIndex != violations[j].SlideIndex {
			return violations[i].SlideIndex < violations[j].SlideIndex
		}
		return violations[i].Element < violations[j].Element
	})

	if len(violations) > 0 {
		s.logger.Debug("Presentation has violations",
			slog.Int("count", len(violations)),
			slog.Bool("strict", s.strict),
		)
	}

	if s.strict && len(violations) > 0 {
		return nil, &entities.ValidationError{Violations: violations}
	}

	return &ports.ParseResult{
		Presentation: parsed.Presentation,
		Violations:   violations,
	}, nil
}

// Ensure PresentationService implements ports.PresentationService
var _ ports.PresentationService = (*PresentationService)(nil)
