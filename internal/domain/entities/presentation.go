package entities

import (
	"errors"
	"fmt"
)

// ErrSlideNotFound is returned when a slide identifier is not present
var ErrSlideNotFound = errors.New("slide not found")

// Metadata describes the presentation as a whole
type Metadata struct {
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	// Date is kept as written, normalized to YYYY-MM-DD when recognizable
	Date string `json:"date,omitempty"`
}

// Presentation is the root of the content model.
//
// A Presentation is built once per parse and then treated as read-only:
// generators may read one value from many goroutines. Edits go through
// ReplaceSlide and WithSlides, which return a new value.
type Presentation struct {
	Metadata Metadata     `json:"metadata"`
	Theme    *ThemeConfig `json:"theme,omitempty"`
	Slides   []Slide      `json:"slides"`
}

// SlideCount returns the total number of slides
func (p *Presentation) SlideCount() int {
	return len(p.Slides)
}

// SlideByID returns the slide with the given identifier
func (p *Presentation) SlideByID(id string) (*Slide, error) {
	for i := range p.Slides {
		if p.Slides[i].ID == id {
			return &p.Slides[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSlideNotFound, id)
}

// SlideIndex returns the position of the slide with the given identifier, or -1
func (p *Presentation) SlideIndex(id string) int {
	for i := range p.Slides {
		if p.Slides[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the presentation
func (p *Presentation) Clone() *Presentation {
	c := &Presentation{Metadata: p.Metadata}
	if p.Theme != nil {
		theme := *p.Theme
		c.Theme = &theme
	}
	if p.Slides != nil {
		c.Slides = make([]Slide, len(p.Slides))
		for i, s := range p.Slides {
			c.Slides[i] = s.Clone()
		}
	}
	return c
}

// ReplaceSlide returns a new presentation in which the slide identified by
// id is replaced by slide. The replacement keeps the identifier of the slide
// it replaces. The receiver is left untouched.
func (p *Presentation) ReplaceSlide(id string, slide Slide) (*Presentation, error) {
	idx := p.SlideIndex(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSlideNotFound, id)
	}

	next := p.Clone()
	replacement := slide.Clone()
	replacement.ID = id
	next.Slides[idx] = replacement
	return next, nil
}

// WithSlides returns a new presentation sharing this one's metadata and
// theme but carrying copies of the given slides
func (p *Presentation) WithSlides(slides []Slide) *Presentation {
	next := p.Clone()
	next.Slides = make([]Slide, len(slides))
	for i, s := range slides {
		next.Slides[i] = s.Clone()
	}
	return next
}

// WithTheme returns a new presentation using the given theme
func (p *Presentation) WithTheme(theme ThemeConfig) *Presentation {
	next := p.Clone()
	next.Theme = &theme
	return next
}

// EffectiveTheme returns the attached theme or the default one
func (p *Presentation) EffectiveTheme() ThemeConfig {
	if p.Theme != nil {
		return *p.Theme
	}
	return DefaultTheme()
}
