package builders

import (
	"strconv"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

// PresentationBuilder helps build Presentation values for testing
type PresentationBuilder struct {
	presentation entities.Presentation
}

// NewPresentationBuilder creates a new presentation builder with sensible defaults
func NewPresentationBuilder() *PresentationBuilder {
	return &PresentationBuilder{
		presentation: entities.Presentation{
			Metadata: entities.Metadata{
				Title:  "Test Presentation",
				Author: "Test Author",
			},
			Slides: []entities.Slide{},
		},
	}
}

// WithTitle sets the presentation title
func (b *PresentationBuilder) WithTitle(title string) *PresentationBuilder {
	b.presentation.Metadata.Title = title
	return b
}

// WithAuthor sets the presentation author
func (b *PresentationBuilder) WithAuthor(author string) *PresentationBuilder {
	b.presentation.Metadata.Author = author
	return b
}

// WithDate sets the presentation date (YYYY-MM-DD)
func (b *PresentationBuilder) WithDate(date string) *PresentationBuilder {
	b.presentation.Metadata.Date = date
	return b
}

// WithTheme attaches a theme
func (b *PresentationBuilder) WithTheme(theme entities.ThemeConfig) *PresentationBuilder {
	b.presentation.Theme = &theme
	return b
}

// WithSlide adds a single slide to the presentation
func (b *PresentationBuilder) WithSlide(slide entities.Slide) *PresentationBuilder {
	b.presentation.Slides = append(b.presentation.Slides, slide)
	return b
}

// WithSlideCount adds the specified number of default slides
func (b *PresentationBuilder) WithSlideCount(count int) *PresentationBuilder {
	for i := 0; i < count; i++ {
		n := len(b.presentation.Slides) + 1
		slide := NewSlideBuilder().
			WithID("slide-" + strconv.Itoa(n)).
			WithTitle("Slide " + strconv.Itoa(n)).
			WithText("Body of slide " + strconv.Itoa(n)).
			Build()
		b.presentation.Slides = append(b.presentation.Slides, slide)
	}
	return b
}

// Build returns a deep copy so the builder can be reused
func (b *PresentationBuilder) Build() *entities.Presentation {
	return b.presentation.Clone()
}

// SlideBuilder helps build Slide values for testing
type SlideBuilder struct {
	slide entities.Slide
}

// NewSlideBuilder creates a new slide builder with sensible defaults
func NewSlideBuilder() *SlideBuilder {
	return &SlideBuilder{
		slide: entities.Slide{
			ID:     "slide-1",
			Layout: entities.LayoutTitleAndBody,
			Title:  entities.StringPtr("Test Slide"),
		},
	}
}

// WithID sets the slide ID
func (b *SlideBuilder) WithID(id string) *SlideBuilder {
	b.slide.ID = id
	return b
}

// WithLayout sets the slide layout
func (b *SlideBuilder) WithLayout(layout entities.Layout) *SlideBuilder {
	b.slide.Layout = layout
	return b
}

// WithTitle sets the slide title
func (b *SlideBuilder) WithTitle(title string) *SlideBuilder {
	b.slide.Title = entities.StringPtr(title)
	return b
}

// WithoutTitle removes the slide title
func (b *SlideBuilder) WithoutTitle() *SlideBuilder {
	b.slide.Title = nil
	return b
}

// WithSubtitle sets the slide subtitle
func (b *SlideBuilder) WithSubtitle(subtitle string) *SlideBuilder {
	b.slide.Subtitle = entities.StringPtr(subtitle)
	return b
}

// WithNotes sets the slide speaker notes
func (b *SlideBuilder) WithNotes(notes string) *SlideBuilder {
	b.slide.Notes = entities.StringPtr(notes)
	return b
}

// WithBackground sets a solid background color
func (b *SlideBuilder) WithBackground(hex string) *SlideBuilder {
	c := entities.MustParseRGB(hex)
	b.slide.Background = &entities.Background{Color: &c}
	return b
}

// WithElement appends any element
func (b *SlideBuilder) WithElement(e entities.SlideElement) *SlideBuilder {
	b.slide.Elements = append(b.slide.Elements, e)
	return b
}

// WithText appends a body paragraph
func (b *SlideBuilder) WithText(content string, spans ...entities.StyleSpan) *SlideBuilder {
	return b.WithElement(&entities.Text{Content: content, Spans: spans})
}

// WithBullets appends a flat bullet list
func (b *SlideBuilder) WithBullets(items ...string) *SlideBuilder {
	return b.WithElement(&entities.BulletList{Items: Items(items...)})
}

// WithNumbered appends a flat numbered list
func (b *SlideBuilder) WithNumbered(start int, items ...string) *SlideBuilder {
	return b.WithElement(&entities.NumberedList{Start: start, Items: Items(items...)})
}

// WithImage appends an image; width 0 leaves sizing to the renderer
func (b *SlideBuilder) WithImage(url, alt string, width float64) *SlideBuilder {
	img := &entities.Image{URL: url, Alt: alt}
	if width > 0 {
		img.Width = &width
	}
	return b.WithElement(img)
}

// WithTable appends a table
func (b *SlideBuilder) WithTable(header []string, rows ...[]string) *SlideBuilder {
	if rows == nil {
		rows = [][]string{}
	}
	return b.WithElement(&entities.Table{Header: header, Rows: rows})
}

// WithCode appends a code block
func (b *SlideBuilder) WithCode(language, content string, highlight ...int) *SlideBuilder {
	return b.WithElement(&entities.Code{Content: content, Language: language, Highlight: highlight})
}

// Build returns a deep copy of the slide
func (b *SlideBuilder) Build() entities.Slide {
	return b.slide.Clone()
}

// Items turns plain strings into list items
func Items(texts ...string) []entities.ListItem {
	items := make([]entities.ListItem, len(texts))
	for i, t := range texts {
		items[i] = entities.ListItem{Text: t}
	}
	return items
}

// Common presentation types for testing

// MinimalPresentation creates a minimal presentation for basic tests
func MinimalPresentation() *entities.Presentation {
	return NewPresentationBuilder().
		WithTitle("Minimal").
		WithSlideCount(1).
		Build()
}

// LargePresentation creates a presentation with many slides for performance tests
func LargePresentation() *entities.Presentation {
	return NewPresentationBuilder().
		WithTitle("Large Presentation").
		WithSlideCount(50).
		Build()
}

// RichPresentation exercises every element kind, notes and a background
func RichPresentation() *entities.Presentation {
	return NewPresentationBuilder().
		WithTitle("Rich Deck").
		WithDate("2024-05-01").
		WithTheme(entities.DefaultTheme()).
		WithSlide(NewSlideBuilder().
			WithID("intro").
			WithLayout(entities.LayoutTitle).
			WithTitle("Rich Deck").
			WithSubtitle("Every element kind").
			WithNotes("Welcome everyone").
			Build()).
		WithSlide(NewSlideBuilder().
			WithID("body").
			WithTitle("Content").
			WithText("Hello bold world", entities.StyleSpan{Start: 6, End: 10, Bold: true}).
			WithElement(&entities.BulletList{Items: []entities.ListItem{
				{Text: "first"},
				{Text: "second", Sublists: entities.Elements{
					&entities.NumberedList{Start: 1, Items: Items("nested")},
				}},
			}}).
			Build()).
		WithSlide(NewSlideBuilder().
			WithID("media").
			WithLayout(entities.LayoutTwoColumn).
			WithTitle("Media").
			WithImage("https://example.com/logo.png", "logo", 300).
			WithTable([]string{"Name", "Value"}, []string{"a", "1"}, []string{"b", "2"}).
			Build()).
		WithSlide(NewSlideBuilder().
			WithID("code").
			WithTitle("Code").
			WithBackground("#202020").
			WithCode("go", "package main\n\nfunc main() {}", 3).
			WithNotes("Walk through main").
			Build()).
		Build()
}
