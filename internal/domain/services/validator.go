package services

import (
	"fmt"
	"strings"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

// Validator checks structural invariants of a finished Presentation.
// It never mutates or repairs the tree it is given.
type Validator struct {
	// StrictLayout enables the layout/content consistency check
	StrictLayout bool
}

// NewValidator creates a new content model validator
func NewValidator(strictLayout bool) *Validator {
	return &Validator{StrictLayout: strictLayout}
}

// Validate returns every violation found, ordered by slide and then by
// element. A nil result means the presentation is valid.
func (v *Validator) Validate(p *entities.Presentation) []entities.Violation {
	if p == nil {
		return nil
	}

	var violations []entities.Violation
	firstSeen := make(map[string]int, len(p.Slides))

	for i := range p.Slides {
		slide := &p.Slides[i]

		if first, ok := firstSeen[slide.ID]; ok {
			violations = append(violations, entities.Violation{
				Kind:       entities.KindDuplicateIdentifier,
				SlideID:    slide.ID,
				SlideIndex: i,
				Element:    -1,
				Message:    fmt.Sprintf("slide id %q is already used by slide %d", slide.ID, first+1),
			})
		} else {
			firstSeen[slide.ID] = i
		}

		if v.StrictLayout {
			if msg, ok := layoutMismatch(slide); !ok {
				violations = append(violations, entities.Violation{
					Kind:       entities.KindLayoutContentMismatch,
					SlideID:    slide.ID,
					SlideIndex: i,
					Element:    -1,
					Message:    msg,
				})
			}
		}

		for j, element := range slide.Elements {
			violations = append(violations, elementViolations(slide, i, j, element)...)
		}
	}

	return violations
}

func elementViolations(slide *entities.Slide, index, element int, e entities.SlideElement) []entities.Violation {
	violation := func(kind entities.ErrorKind, msg string) entities.Violation {
		return entities.Violation{
			Kind:       kind,
			SlideID:    slide.ID,
			SlideIndex: index,
			Element:    element,
			NodeKind:   string(e.Kind()),
			Message:    msg,
		}
	}

	switch el := e.(type) {
	case *entities.Table:
		if !el.IsRectangular() {
			return []entities.Violation{violation(entities.KindMalformedTable,
				fmt.Sprintf("rows do not all have %d columns", el.Columns()))}
		}
	case *entities.Image:
		if strings.TrimSpace(el.URL) == "" {
			return []entities.Violation{violation(entities.KindInvalidReference, "image has an empty url")}
		}
	}
	return nil
}

// layoutMismatch checks that a title slide carries no more than a title and
// subtitle. A single body element may stand in for a missing subtitle.
func layoutMismatch(slide *entities.Slide) (string, bool) {
	if slide.Layout != entities.LayoutTitle {
		return "", true
	}

	allowed := 1
	if slide.Subtitle != nil {
		allowed = 0
	}
	if len(slide.Elements) > allowed {
		return fmt.Sprintf("title layout carries %d body elements", len(slide.Elements)), false
	}
	return "", true
}
