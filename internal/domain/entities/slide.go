package entities

import (
	"fmt"
	"strings"
)

// Layout classifies how a slide arranges its content
type Layout string

const (
	LayoutTitle         Layout = "title"
	LayoutTitleAndBody  Layout = "title-and-body"
	LayoutTwoColumn     Layout = "two-column"
	LayoutBlank         Layout = "blank"
	LayoutSectionHeader Layout = "section-header"
)

// Layouts lists every layout in declaration order
var Layouts = []Layout{
	LayoutTitle,
	LayoutTitleAndBody,
	LayoutTwoColumn,
	LayoutBlank,
	LayoutSectionHeader,
}

// ParseLayout resolves a layout name, ignoring case and accepting
// underscores in place of hyphens
func ParseLayout(name string) (Layout, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, l := range Layouts {
		if string(l) == normalized {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown layout %q", name)
}

// Slide is one slide of a presentation.
//
// Title, Subtitle and Notes are pointers so "absent" stays distinguishable
// from "present but empty".
type Slide struct {
	// ID is unique within the presentation and never reused
	ID         string      `json:"id"`
	Layout     Layout      `json:"layout"`
	Title      *string     `json:"title,omitempty"`
	Subtitle   *string     `json:"subtitle,omitempty"`
	Notes      *string     `json:"notes,omitempty"`
	Background *Background `json:"background,omitempty"`
	Elements   Elements    `json:"elements"`
}

// TitleText returns the title or "" when absent
func (s *Slide) TitleText() string {
	if s.Title == nil {
		return ""
	}
	return *s.Title
}

// SubtitleText returns the subtitle or "" when absent
func (s *Slide) SubtitleText() string {
	if s.Subtitle == nil {
		return ""
	}
	return *s.Subtitle
}

// NotesText returns the speaker notes or "" when absent
func (s *Slide) NotesText() string {
	if s.Notes == nil {
		return ""
	}
	return *s.Notes
}

// HasNotes returns true if notes were recorded for this slide
func (s *Slide) HasNotes() bool {
	return s.Notes != nil
}

// IsEmpty reports whether the slide carries neither title nor elements
func (s *Slide) IsEmpty() bool {
	return s.Title == nil && s.Subtitle == nil && len(s.Elements) == 0
}

// Clone returns a deep copy of the slide
func (s Slide) Clone() Slide {
	return Slide{
		ID:         s.ID,
		Layout:     s.Layout,
		Title:      cloneString(s.Title),
		Subtitle:   cloneString(s.Subtitle),
		Notes:      cloneString(s.Notes),
		Background: s.Background.clone(),
		Elements:   s.Elements.Clone(),
	}
}

// StringPtr returns a pointer to a copy of v
func StringPtr(v string) *string {
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	return StringPtr(*s)
}
