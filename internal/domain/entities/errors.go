package entities

import (
	"fmt"
	"strings"
)

// ErrorKind names a failure category of the parse pipeline
type ErrorKind string

const (
	KindParseSyntax           ErrorKind = "ParseSyntaxError"
	KindUnrecognizedNode      ErrorKind = "UnrecognizedNodeKind"
	KindMalformedTable        ErrorKind = "MalformedTable"
	KindDuplicateIdentifier   ErrorKind = "DuplicateIdentifier"
	KindLayoutContentMismatch ErrorKind = "LayoutContentMismatch"
	KindInvalidReference      ErrorKind = "InvalidReference"
)

// Position is a 1-based line and column in the Markdown source
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// IsZero reports whether the position is unknown
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ParseError is a fatal error that aborts the pipeline
type ParseError struct {
	Kind     ErrorKind
	Position Position
	Message  string
	Cause    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s at %s: %s", e.Kind, e.Position, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Violation is a non-fatal finding. Violations accumulate and are returned
// together so a caller sees every problem in one pass.
type Violation struct {
	Kind    ErrorKind `json:"kind"`
	SlideID string    `json:"slideId,omitempty"`
	// SlideIndex is the 0-based slide position, -1 when not tied to a slide
	SlideIndex int `json:"slideIndex"`
	// Element is the 0-based element position within the slide, -1 when the
	// finding concerns the slide itself
	Element  int       `json:"element"`
	NodeKind string    `json:"nodeKind,omitempty"`
	Position *Position `json:"position,omitempty"`
	Message  string    `json:"message"`
}

func (v Violation) String() string {
	var b strings.Builder
	b.WriteString(string(v.Kind))
	if v.SlideID != "" {
		fmt.Fprintf(&b, " [slide %s", v.SlideID)
		if v.Element >= 0 {
			fmt.Fprintf(&b, ", element %d", v.Element)
		}
		b.WriteString("]")
	}
	if v.Position != nil {
		fmt.Fprintf(&b, " at %s", v.Position)
	}
	b.WriteString(": ")
	b.WriteString(v.Message)
	return b.String()
}

// ValidationError carries every violation found by a strict run
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	switch len(e.Violations) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + e.Violations[0].String()
	}

	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = "  - " + v.String()
	}
	return fmt.Sprintf("validation failed with %d violations:\n%s", len(e.Violations), strings.Join(lines, "\n"))
}

// Has reports whether any violation is of the given kind
func (e *ValidationError) Has(kind ErrorKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}
