package entities

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePresentation() *Presentation {
	width := 300.0
	return &Presentation{
		Metadata: Metadata{Title: "Deck", Author: "Ana"},
		Slides: []Slide{
			{
				ID:     "s1-intro",
				Layout: LayoutTitle,
				Title:  StringPtr("Intro"),
			},
			{
				ID:     "s2-body",
				Layout: LayoutTitleAndBody,
				Title:  StringPtr("Body"),
				Notes:  StringPtr("say hi"),
				Elements: Elements{
					&Text{Content: "Hello", Spans: []StyleSpan{{Start: 0, End: 5, Bold: true}}},
					&BulletList{Items: []ListItem{{Text: "a"}, {Text: "b", Sublists: Elements{&BulletList{Items: []ListItem{{Text: "c"}}}}}}},
					&Image{URL: "logo.png", Alt: "logo", Width: &width},
				},
			},
		},
	}
}

func TestPresentation_SlideLookup(t *testing.T) {
	p := samplePresentation()

	assert.Equal(t, 2, p.SlideCount())
	assert.Equal(t, 1, p.SlideIndex("s2-body"))
	assert.Equal(t, -1, p.SlideIndex("missing"))

	slide, err := p.SlideByID("s1-intro")
	require.NoError(t, err)
	assert.Equal(t, "Intro", slide.TitleText())

	_, err = p.SlideByID("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSlideNotFound))
}

func TestPresentation_ReplaceSlide(t *testing.T) {
	p := samplePresentation()

	next, err := p.ReplaceSlide("s2-body", Slide{
		ID:       "ignored",
		Layout:   LayoutBlank,
		Elements: Elements{&Text{Content: "replaced"}},
	})
	require.NoError(t, err)

	t.Run("replacement keeps identifier", func(t *testing.T) {
		assert.Equal(t, "s2-body", next.Slides[1].ID)
		assert.Equal(t, LayoutBlank, next.Slides[1].Layout)
	})

	t.Run("receiver untouched", func(t *testing.T) {
		assert.Equal(t, LayoutTitleAndBody, p.Slides[1].Layout)
		assert.Len(t, p.Slides[1].Elements, 3)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := p.ReplaceSlide("nope", Slide{})
		assert.ErrorIs(t, err, ErrSlideNotFound)
	})
}

func TestPresentation_CloneIsDeep(t *testing.T) {
	p := samplePresentation()
	c := p.Clone()

	*c.Slides[1].Title = "changed"
	*c.Slides[1].Notes = "changed"
	c.Slides[1].Elements[0].(*Text).Spans[0].Bold = false
	list := c.Slides[1].Elements[1].(*BulletList)
	list.Items[1].Sublists[0].(*BulletList).Items[0].Text = "changed"
	*c.Slides[1].Elements[2].(*Image).Width = 10

	assert.Equal(t, "Body", p.Slides[1].TitleText())
	assert.Equal(t, "say hi", p.Slides[1].NotesText())
	assert.True(t, p.Slides[1].Elements[0].(*Text).Spans[0].Bold)
	orig := p.Slides[1].Elements[1].(*BulletList)
	assert.Equal(t, "c", orig.Items[1].Sublists[0].(*BulletList).Items[0].Text)
	assert.Equal(t, 300.0, *p.Slides[1].Elements[2].(*Image).Width)
}

func TestPresentation_WithSlidesAndTheme(t *testing.T) {
	p := samplePresentation()

	themed := p.WithTheme(ThemeConfig{FontFamily: "Georgia", FontSize: 20})
	assert.Nil(t, p.Theme)
	assert.Equal(t, "Georgia", themed.EffectiveTheme().FontFamily)
	assert.Equal(t, DefaultTheme(), p.EffectiveTheme())

	trimmed := p.WithSlides(p.Slides[:1])
	assert.Equal(t, 1, trimmed.SlideCount())
	assert.Equal(t, 2, p.SlideCount())
	assert.Equal(t, p.Metadata, trimmed.Metadata)
}

func TestPresentation_ConcurrentReads(t *testing.T) {
	p := samplePresentation()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.SlideByID("s2-body")
			assert.NoError(t, err)
			_ = p.Clone()
		}()
	}
	wg.Wait()
}
