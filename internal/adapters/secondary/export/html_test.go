package export

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
	"github.com/fredcamaral/slidemark/internal/test/builders"
)

func renderHTML(t *testing.T, g *HTMLGenerator, p *entities.Presentation, options ports.ExportOptions) (string, *html.Node) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, g.Generate(context.Background(), p, &buf, options))
	doc, err := html.Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)
	return buf.String(), doc
}

// findAll returns every element node for which match is true
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if n.Type == html.ElementNode && match(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, match)...)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}

func TestHTMLGenerator_Structure(t *testing.T) {
	_, doc := renderHTML(t, NewHTMLGenerator(), builders.RichPresentation(), ports.ExportOptions{IncludeNotes: true})

	sections := findAll(doc, func(n *html.Node) bool { return n.Data == "section" })
	require.Len(t, sections, 4)

	ids := make([]string, len(sections))
	for i, s := range sections {
		ids[i] = attr(s, "id")
		assert.Equal(t, []string{"0", "1", "2", "3"}[i], attr(s, "data-index"))
	}
	assert.Equal(t, []string{"intro", "body", "media", "code"}, ids)
	assert.Contains(t, attr(sections[0], "class"), "layout-title")
	assert.Contains(t, attr(sections[2], "class"), "layout-two-column")
	assert.Contains(t, attr(sections[3], "style"), "background-color: #202020")

	titles := findAll(doc, hasClass("slide-title"))
	require.Len(t, titles, 4)
	assert.Equal(t, "Rich Deck", textOf(titles[0]))

	subtitles := findAll(sections[0], hasClass("slide-subtitle"))
	require.Len(t, subtitles, 1)
	assert.Equal(t, "Every element kind", textOf(subtitles[0]))

	strong := findAll(sections[1], func(n *html.Node) bool { return n.Data == "strong" })
	require.Len(t, strong, 1)
	assert.Equal(t, "bold", textOf(strong[0]))

	assert.Len(t, findAll(sections[1], hasClass("element-bulletlist")), 1)
	assert.Len(t, findAll(sections[1], func(n *html.Node) bool { return n.Data == "ol" }), 1)

	imgs := findAll(sections[2], func(n *html.Node) bool { return n.Data == "img" })
	require.Len(t, imgs, 1)
	assert.Equal(t, "https://example.com/logo.png", attr(imgs[0], "src"))
	assert.Equal(t, "300", attr(imgs[0], "width"))
	assert.Len(t, findAll(sections[2], func(n *html.Node) bool { return n.Data == "td" }), 4)

	codes := findAll(sections[3], func(n *html.Node) bool { return n.Data == "code" })
	require.Len(t, codes, 1)
	assert.Equal(t, "language-go", attr(codes[0], "class"))
	highlighted := findAll(sections[3], hasClass("highlighted"))
	require.Len(t, highlighted, 1)
	assert.Equal(t, "3", attr(highlighted[0], "data-line"))
}

func TestHTMLGenerator_Notes(t *testing.T) {
	presentation := builders.NewPresentationBuilder().
		WithTitle("Notes").
		WithSlide(builders.NewSlideBuilder().WithNotes("line one\nline <two>").Build()).
		Build()

	t.Run("included", func(t *testing.T) {
		out, doc := renderHTML(t, NewHTMLGenerator(), presentation, ports.ExportOptions{IncludeNotes: true})
		notes := findAll(doc, hasClass("speaker-notes"))
		require.Len(t, notes, 1)
		assert.Equal(t, "line oneline <two>", textOf(notes[0]))
		assert.Contains(t, out, "line one<br>line &lt;two&gt;")
	})

	t.Run("excluded", func(t *testing.T) {
		_, doc := renderHTML(t, NewHTMLGenerator(), presentation, ports.ExportOptions{})
		assert.Empty(t, findAll(doc, hasClass("speaker-notes")))
	})
}

func TestHTMLGenerator_Sanitizes(t *testing.T) {
	tests := []struct {
		name  string
		slide entities.Slide
		check func(t *testing.T, out string, doc *html.Node)
	}{
		{
			name: "javascript link",
			slide: builders.NewSlideBuilder().
				WithText("click me", entities.StyleSpan{Start: 0, End: 5, Link: "javascript:alert(1)"}).
				Build(),
			check: func(t *testing.T, out string, doc *html.Node) {
				assert.NotContains(t, out, "javascript:")
			},
		},
		{
			name: "safe link gets nofollow",
			slide: builders.NewSlideBuilder().
				WithText("docs", entities.StyleSpan{Start: 0, End: 4, Link: "https://example.com"}).
				Build(),
			check: func(t *testing.T, out string, doc *html.Node) {
				links := findAll(doc, func(n *html.Node) bool { return n.Data == "a" })
				require.Len(t, links, 1)
				assert.Equal(t, "https://example.com", attr(links[0], "href"))
				assert.Contains(t, attr(links[0], "rel"), "nofollow")
			},
		},
		{
			name:  "markup in text",
			slide: builders.NewSlideBuilder().WithTitle("<script>x</script>").WithText("<img src=x onerror=alert(1)>").Build(),
			check: func(t *testing.T, out string, doc *html.Node) {
				titles := findAll(doc, hasClass("slide-title"))
				require.Len(t, titles, 1)
				assert.Equal(t, "<script>x</script>", textOf(titles[0]))
				assert.Empty(t, findAll(doc, func(n *html.Node) bool { return n.Data == "img" }))
			},
		},
		{
			name: "background image cannot break out of css",
			slide: withBackgroundImage(builders.NewSlideBuilder().WithText("bg").Build(),
				`bg.png");alert(1)`),
			check: func(t *testing.T, out string, doc *html.Node) {
				sections := findAll(doc, func(n *html.Node) bool { return n.Data == "section" })
				require.Len(t, sections, 1)
				assert.Contains(t, attr(sections[0], "style"), `url("bg.pngalert1")`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presentation := builders.NewPresentationBuilder().WithTitle("Safe").WithSlide(tt.slide).Build()
			out, doc := renderHTML(t, NewHTMLGenerator(), presentation, ports.ExportOptions{})
			tt.check(t, out, doc)
		})
	}
}

func withBackgroundImage(slide entities.Slide, url string) entities.Slide {
	slide.Background = &entities.Background{Image: url}
	return slide
}

func TestHTMLGenerator_LiveReload(t *testing.T) {
	presentation := builders.MinimalPresentation()

	plain, _ := renderHTML(t, NewHTMLGenerator(), presentation, ports.ExportOptions{})
	assert.NotContains(t, plain, "new WebSocket(")

	live, _ := renderHTML(t, NewHTMLGenerator(WithLiveReload("/ws")), presentation, ports.ExportOptions{})
	assert.Contains(t, live, "new WebSocket(")
	assert.Contains(t, live, "'reload'")
}

func TestHTMLGenerator_NumberedStart(t *testing.T) {
	presentation := builders.NewPresentationBuilder().
		WithTitle("Lists").
		WithSlide(builders.NewSlideBuilder().WithNumbered(4, "four", "five").WithNumbered(1, "one").Build()).
		Build()

	_, doc := renderHTML(t, NewHTMLGenerator(), presentation, ports.ExportOptions{})
	lists := findAll(doc, func(n *html.Node) bool { return n.Data == "ol" })
	require.Len(t, lists, 2)
	assert.Equal(t, "4", attr(lists[0], "start"))
	assert.Empty(t, attr(lists[1], "start"))
}
