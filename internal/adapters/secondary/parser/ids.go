package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

const maxSlugLength = 40

// slideNamespace seeds name-based slide UUIDs so equal input yields equal IDs
var slideNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/fredcamaral/slidemark/slide"))

// IDAssigner hands out slide identifiers. Both strategies are deterministic
// and include the slide position, so generated IDs never collide.
type IDAssigner struct {
	strategy string
}

// NewIDAssigner creates an assigner for the "slug" or "uuid" strategy
func NewIDAssigner(strategy string) *IDAssigner {
	if strategy != entities.IDStrategyUUID {
		strategy = entities.IDStrategySlug
	}
	return &IDAssigner{strategy: strategy}
}

// Assign returns the identifier for the slide at 0-based index
func (a *IDAssigner) Assign(index int, title string) string {
	if a.strategy == entities.IDStrategyUUID {
		return uuid.NewSHA1(slideNamespace, []byte(fmt.Sprintf("%d:%s", index, title))).String()
	}

	id := fmt.Sprintf("s%d", index+1)
	if slug := a.Slug(title); slug != "" {
		id += "-" + slug
	}
	return id
}

// Slug folds text to lowercase ASCII words joined by hyphens
func (a *IDAssigner) Slug(text string) string {
	// Transformers and casers keep state; build fresh ones per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	folded = cases.Lower(language.Und).String(folded)

	var b strings.Builder
	dash := false
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
		if b.Len() > maxSlugLength {
			break
		}
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	return strings.TrimSuffix(slug, "-")
}
