package parser

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

func TestPresentationParser_Scenarios(t *testing.T) {
	t.Run("break separated slides", func(t *testing.T) {
		result := parse(t, "# Title\n\nHello\n\n---\n\n# Next\n\n- a\n- b")
		slides := result.Presentation.Slides
		require.Len(t, slides, 2)

		assert.Equal(t, "Title", slides[0].TitleText())
		assert.Equal(t, entities.Elements{&entities.Text{Content: "Hello"}}, slides[0].Elements)

		assert.Equal(t, "Next", slides[1].TitleText())
		assert.Equal(t, entities.Elements{&entities.BulletList{Items: []entities.ListItem{{Text: "a"}, {Text: "b"}}}}, slides[1].Elements)

		assert.Equal(t, "s1-title", slides[0].ID)
		assert.Equal(t, "s2-next", slides[1].ID)
		assert.Equal(t, "Title", result.Presentation.Metadata.Title)
	})

	t.Run("notes only", func(t *testing.T) {
		result := parse(t, "<!-- notes: remember to smile -->")
		slides := result.Presentation.Slides
		require.Len(t, slides, 1)

		assert.Nil(t, slides[0].Title)
		assert.Empty(t, slides[0].Elements)
		require.NotNil(t, slides[0].Notes)
		assert.Equal(t, "remember to smile", *slides[0].Notes)
		assert.Equal(t, entities.LayoutBlank, slides[0].Layout)
	})

	t.Run("notes precedence", func(t *testing.T) {
		slide := firstSlide(t, "# T\n\n<!-- notes: Key point A -->\n\nbody\n\n<!-- Key point B -->")
		require.NotNil(t, slide.Notes)
		assert.Equal(t, "Key point A\nKey point B", *slide.Notes)
		assert.Len(t, slide.Elements, 1)
	})

	t.Run("sized image", func(t *testing.T) {
		slide := firstSlide(t, "![logo](logo.png){width=300}")
		width := 300.0
		assert.Equal(t, entities.Elements{&entities.Image{URL: "logo.png", Alt: "logo", Width: &width}}, slide.Elements)
	})
}

func TestPresentationParser_Totality(t *testing.T) {
	inputs := []string{"", "\n", "   ", "---", "---\n---\n---", "<!-- -->", "#", "|", "```", "- ", "> "}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			result := parse(t, input)
			assert.GreaterOrEqual(t, len(result.Presentation.Slides), 1)
			assert.NotEmpty(t, result.Presentation.Metadata.Title)

			seen := map[string]bool{}
			for _, s := range result.Presentation.Slides {
				assert.NotEmpty(t, s.ID)
				assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
				seen[s.ID] = true
			}
		})
	}
}

func TestPresentationParser_SlideCount(t *testing.T) {
	body := strings.Repeat("# A\n\ntext\n\n---\n\n", 9) + "# Last"
	result := parse(t, body)
	assert.Len(t, result.Presentation.Slides, 10)
}

func TestPresentationParser_Empty(t *testing.T) {
	result := parse(t, "")
	require.Len(t, result.Presentation.Slides, 1)

	slide := result.Presentation.Slides[0]
	assert.Equal(t, "s1", slide.ID)
	assert.Equal(t, entities.LayoutBlank, slide.Layout)
	assert.Nil(t, slide.Notes)
	assert.Equal(t, "Untitled", result.Presentation.Metadata.Title)
	assert.Nil(t, result.Presentation.Theme)
}

func TestPresentationParser_HeadingSplits(t *testing.T) {
	opts := DefaultOptions()
	opts.Segment.HeadingSplitDepth = 1

	result := parseWith(t, opts, "# One\n\na\n\n# Two\n\nb\n\n---\n\n# Three")
	slides := result.Presentation.Slides
	require.Len(t, slides, 3)
	assert.Equal(t, []string{"One", "Two", "Three"}, []string{
		slides[0].TitleText(), slides[1].TitleText(), slides[2].TitleText(),
	})
}

func TestPresentationParser_UUIDs(t *testing.T) {
	opts := DefaultOptions()
	opts.IDStrategy = entities.IDStrategyUUID

	first := parseWith(t, opts, "# A\n\n---\n\n# B")
	second := parseWith(t, opts, "# A\n\n---\n\n# B")

	require.Len(t, first.Presentation.Slides, 2)
	assert.Len(t, first.Presentation.Slides[0].ID, 36)
	assert.Equal(t, first.Presentation.Slides[0].ID, second.Presentation.Slides[0].ID)
	assert.NotEqual(t, first.Presentation.Slides[0].ID, first.Presentation.Slides[1].ID)
}

func TestPresentationParser_Frontmatter(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		src := "---\ntitle: Deck\nauthor: Ana\ndate: 2024-01-15\ntheme:\n  primary_color: \"#ff0000\"\n  font_family: georgia\n---\n\n# A\n\n> q"

		opts := DefaultOptions()
		opts.Strict = true
		result := parseWith(t, opts, src)
		p := result.Presentation

		assert.Equal(t, entities.Metadata{Title: "Deck", Author: "Ana", Date: "2024-01-15"}, p.Metadata)
		require.NotNil(t, p.Theme)
		assert.Equal(t, "#ff0000", p.Theme.PrimaryColor.Hex())
		assert.Equal(t, "Georgia", p.Theme.FontFamily)
		assert.Equal(t, entities.DefaultTheme().FontSize, p.Theme.FontSize)

		require.Len(t, p.Slides, 1)
		assert.Equal(t, "A", p.Slides[0].TitleText())

		// Positions still refer to the original input
		require.Len(t, result.Violations, 1)
		assert.Equal(t, 12, result.Violations[0].Position.Line)
	})

	t.Run("toml", func(t *testing.T) {
		result := parse(t, "+++\ntitle = \"Deck\"\ndate = 2024-03-01\n+++\n\n# A")
		assert.Equal(t, "Deck", result.Presentation.Metadata.Title)
		assert.Equal(t, "2024-03-01", result.Presentation.Metadata.Date)
		assert.Len(t, result.Presentation.Slides, 1)
	})

	t.Run("leading break is not frontmatter", func(t *testing.T) {
		result := parse(t, "---\n\n# A\n\n---\n\n# B")
		require.Len(t, result.Presentation.Slides, 3)
		assert.Equal(t, entities.LayoutBlank, result.Presentation.Slides[0].Layout)
		assert.Equal(t, "A", result.Presentation.Metadata.Title)
	})

	t.Run("configured theme is overridden per field", func(t *testing.T) {
		base := entities.DefaultTheme()
		base.FontSize = 24

		opts := DefaultOptions()
		opts.Theme = &base
		result := parseWith(t, opts, "---\ntitle: Deck\ntheme:\n  font_family: Verdana\n---\n\n# A")

		require.NotNil(t, result.Presentation.Theme)
		assert.Equal(t, "Verdana", result.Presentation.Theme.FontFamily)
		assert.Equal(t, 24.0, result.Presentation.Theme.FontSize)
		assert.Equal(t, "Arial", base.FontFamily, "option theme must not be modified")
	})

	t.Run("undecodable block", func(t *testing.T) {
		_, err := NewPresentationParser(DefaultOptions()).Parse(context.Background(), []byte("---\ntitle: [oops\n---\n\n# A"))
		require.Error(t, err)

		var perr *entities.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, entities.KindParseSyntax, perr.Kind)
	})

	t.Run("decode error reports the offending line", func(t *testing.T) {
		_, err := NewPresentationParser(DefaultOptions()).Parse(context.Background(), []byte("---\nauthor: Ana\ntitle: [a, b]\n---\n\n# A"))
		require.Error(t, err)

		var perr *entities.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, entities.KindParseSyntax, perr.Kind)
		assert.Equal(t, 3, perr.Position.Line)
	})

	t.Run("toml decode error reports the offending line", func(t *testing.T) {
		_, err := NewPresentationParser(DefaultOptions()).Parse(context.Background(), []byte("+++\ntitle = \"Deck\"\nauthor = = \"x\"\n+++\n\n# A"))
		require.Error(t, err)

		var perr *entities.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, entities.KindParseSyntax, perr.Kind)
		assert.Equal(t, 3, perr.Position.Line)
	})

	t.Run("theme outside the allow-list", func(t *testing.T) {
		_, err := NewPresentationParser(DefaultOptions()).Parse(context.Background(), []byte("---\ntheme:\n  font_family: Comic Sans\n---\n"))
		require.Error(t, err)

		var perr *entities.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, entities.KindParseSyntax, perr.Kind)
		assert.Equal(t, entities.Position{Line: 2, Column: 1}, perr.Position)
	})

	t.Run("theme error points at the theme key", func(t *testing.T) {
		_, err := NewPresentationParser(DefaultOptions()).Parse(context.Background(), []byte("---\ntitle: Deck\nauthor: Ana\ntheme:\n  font_family: Comic Sans\n---\n"))
		require.Error(t, err)

		var perr *entities.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, entities.Position{Line: 4, Column: 1}, perr.Position)
	})
}

func TestPresentationParser_InvalidUTF8(t *testing.T) {
	_, err := NewPresentationParser(DefaultOptions()).Parse(context.Background(), []byte("ok\nab\xffcd"))
	require.Error(t, err)

	var perr *entities.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, entities.KindParseSyntax, perr.Kind)
	assert.Equal(t, entities.Position{Line: 2, Column: 3}, perr.Position)
}

func TestPresentationParser_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPresentationParser(DefaultOptions()).Parse(ctx, []byte("# A"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPresentationParser_Concurrent(t *testing.T) {
	parser := NewPresentationParser(DefaultOptions())
	src := []byte("# A\n\n- x\n- y\n\n---\n\n# B\n\n| a |\n|---|\n| 1 |")

	want, err := parser.Parse(context.Background(), src)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := parser.Parse(context.Background(), src)
			if assert.NoError(t, err) {
				assert.Equal(t, want.Presentation, got.Presentation)
			}
		}()
	}
	wg.Wait()
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := entities.ParseConfig{
		ThematicBreakSplits: entities.BoolPtr(false),
		HeadingSplitDepth:   entities.IntPtr(2),
		Strict:              entities.BoolPtr(true),
		IDStrategy:          entities.IDStrategyUUID,
	}

	opts := OptionsFromConfig(cfg, nil, nil)
	assert.False(t, opts.Segment.ThematicBreakSplits)
	assert.Equal(t, 2, opts.Segment.HeadingSplitDepth)
	assert.Equal(t, 2, opts.Segment.TitleMaxDepth)
	assert.True(t, opts.Strict)
	assert.Equal(t, entities.IDStrategyUUID, opts.IDStrategy)
	assert.Equal(t, entities.AllExtensions, opts.Extensions)
}
