package parser

import (
	"context"
	"log/slog"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// Options configures the Markdown to IR pipeline
type Options struct {
	Segment    SegmentConfig
	Strict     bool
	Extensions []string
	IDStrategy string
	// Theme is attached to every presentation; frontmatter overrides fields
	Theme  *entities.ThemeConfig
	Logger *slog.Logger
}

// DefaultOptions returns the options used when no configuration is given
func DefaultOptions() Options {
	return Options{
		Segment:    DefaultSegmentConfig(),
		Extensions: entities.AllExtensions,
		IDStrategy: entities.IDStrategySlug,
	}
}

// OptionsFromConfig maps the [parse] section onto parser options
func OptionsFromConfig(cfg entities.ParseConfig, theme *entities.ThemeConfig, logger *slog.Logger) Options {
	return Options{
		Segment: SegmentConfig{
			ThematicBreakSplits: cfg.BreakSplits(),
			HeadingSplitDepth:   cfg.SplitDepth(),
			TitleMaxDepth:       cfg.GetTitleMaxDepth(),
		},
		Strict:     cfg.IsStrict(),
		Extensions: cfg.GetExtensions(),
		IDStrategy: cfg.GetIDStrategy(),
		Theme:      theme,
		Logger:     logger,
	}
}

// PresentationParser runs AST build, segmentation, notes extraction and
// transformation. It holds no mutable state and is safe for concurrent use.
type PresentationParser struct {
	builder     *GoldmarkBuilder
	segmenter   *Segmenter
	notes       *NotesExtractor
	transformer *Transformer
	ids         *IDAssigner
	theme       *entities.ThemeConfig
	logger      *slog.Logger
}

// NewPresentationParser creates a new presentation parser
func NewPresentationParser(opts Options) *PresentationParser {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "parser")

	return &PresentationParser{
		builder:     NewGoldmarkBuilder(opts.Extensions),
		segmenter:   NewSegmenter(opts.Segment),
		notes:       NewNotesExtractor(),
		transformer: NewTransformer(opts.Strict, logger),
		ids:         NewIDAssigner(opts.IDStrategy),
		theme:       opts.Theme,
		logger:      logger,
	}
}

// Parse implements the PresentationParser interface
func (p *PresentationParser) Parse(ctx context.Context, content []byte) (*ports.ParseResult, error) {
	doc, err := p.builder.Build(ctx, content)
	if err != nil {
		return nil, err
	}

	segments := p.segmenter.Segment(doc.Root)
	slides := make([]entities.Slide, 0, len(segments))
	var violations []entities.Violation

	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		notes, visible := p.notes.Extract(seg.Nodes, doc.Source)
		draft, found := p.transformer.Transform(seg, visible, doc.Source)

		id := draft.ExplicitID
		if id == "" {
			id = p.ids.Assign(seg.Index, derefString(draft.Title))
		}

		for i := range found {
			found[i].SlideID = id
		}
		violations = append(violations, found...)

		slides = append(slides, entities.Slide{
			ID:         id,
			Layout:     draft.Layout,
			Title:      draft.Title,
			Subtitle:   draft.Subtitle,
			Notes:      notes,
			Background: draft.Background,
			Elements:   draft.Elements,
		})
	}

	presentation := &entities.Presentation{Slides: slides}
	if err := p.applyFrontmatter(presentation, doc.Frontmatter); err != nil {
		return nil, err
	}

	p.logger.Debug("Parsed presentation",
		slog.Int("slides", len(slides)),
		slog.Int("violations", len(violations)),
		slog.Int("bytes", len(content)),
	)

	return &ports.ParseResult{
		Presentation: presentation,
		Violations:   violations,
	}, nil
}

func (p *PresentationParser) applyFrontmatter(presentation *entities.Presentation, fm *Frontmatter) error {
	if p.theme != nil {
		theme := *p.theme
		presentation.Theme = &theme
	}

	if fm != nil {
		presentation.Metadata = entities.Metadata{
			Title:  fm.Title,
			Author: fm.Author,
			Date:   fm.DateString(),
		}

		if !fm.Theme.IsZero() {
			theme, err := fm.Theme.ApplyTo(presentation.EffectiveTheme())
			if err != nil {
				return &entities.ParseError{
					Kind:     entities.KindParseSyntax,
					Position: fm.ThemePosition(),
					Message:  "frontmatter theme is invalid",
					Cause:    err,
				}
			}
			presentation.Theme = &theme
		}
	}

	if presentation.Metadata.Title == "" {
		presentation.Metadata.Title = "Untitled"
		for _, s := range presentation.Slides {
			if s.Title != nil && *s.Title != "" {
				presentation.Metadata.Title = *s.Title
				break
			}
		}
	}

	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ensure PresentationParser implements ports.PresentationParser
var _ ports.PresentationParser = (*PresentationParser)(nil)
