package export

import (
	"context"
	"fmt"
	"html"
	"html/template"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// HTMLGenerator renders a standalone HTML deck with keyboard navigation.
// Slide bodies are built as HTML fragments and passed through a bluemonday
// policy before they reach the template, so link and image URLs taken from
// Markdown cannot inject script.
type HTMLGenerator struct {
	template   *template.Template
	policy     *bluemonday.Policy
	liveReload string
}

var _ ports.Generator = (*HTMLGenerator)(nil)

// HTMLOption configures an HTMLGenerator
type HTMLOption func(*HTMLGenerator)

// WithLiveReload embeds a client that reloads the page when the websocket
// at path broadcasts a reload event
func WithLiveReload(path string) HTMLOption {
	return func(g *HTMLGenerator) {
		g.liveReload = path
	}
}

var (
	classPattern    = regexp.MustCompile(`^[a-z0-9 _-]+$`)
	languagePattern = regexp.MustCompile(`[^a-z0-9+#_-]`)
)

// NewHTMLGenerator creates a new HTML generator
func NewHTMLGenerator(opts ...HTMLOption) *HTMLGenerator {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(classPattern).Globally()
	policy.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	policy.AllowAttrs("data-line").Matching(bluemonday.Integer).OnElements("span")

	g := &HTMLGenerator{
		template: template.Must(template.New("deck").Parse(deckTemplate)),
		policy:   policy,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *HTMLGenerator) Format() string    { return "html" }
func (g *HTMLGenerator) Extension() string { return ".html" }
func (g *HTMLGenerator) MimeType() string  { return "text/html; charset=utf-8" }

type htmlTheme struct {
	Primary   string
	Secondary string
	Font      string
	FontSize  float64
}

type htmlSlide struct {
	ID     string
	Index  int
	Layout string
	Style  template.CSS
	Body   template.HTML
	Notes  template.HTML
}

type htmlDeck struct {
	Title      string
	Author     string
	Date       string
	Theme      htmlTheme
	Slides     []htmlSlide
	LiveReload string
}

// Generate executes the deck template
func (g *HTMLGenerator) Generate(ctx context.Context, presentation *entities.Presentation, w io.Writer, options ports.ExportOptions) error {
	theme := presentation.EffectiveTheme()
	deck := htmlDeck{
		Title:  documentTitle(presentation, options),
		Author: presentation.Metadata.Author,
		Date:   presentation.Metadata.Date,
		Theme: htmlTheme{
			Primary:   theme.PrimaryColor.Hex(),
			Secondary: theme.SecondaryColor.Hex(),
			Font:      theme.FontFamily,
			FontSize:  theme.FontSize,
		},
		Slides:     make([]htmlSlide, 0, len(presentation.Slides)),
		LiveReload: g.liveReload,
	}

	for i := range presentation.Slides {
		if err := ctx.Err(); err != nil {
			return err
		}
		deck.Slides = append(deck.Slides, g.renderSlide(i, &presentation.Slides[i], options))
	}

	if err := g.template.Execute(w, deck); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}

func (g *HTMLGenerator) renderSlide(index int, slide *entities.Slide, options ports.ExportOptions) htmlSlide {
	var b strings.Builder

	if slide.Title != nil {
		b.WriteString(`<h1 class="slide-title">` + html.EscapeString(*slide.Title) + "</h1>\n")
	}
	if slide.Subtitle != nil {
		b.WriteString(`<h2 class="slide-subtitle">` + html.EscapeString(*slide.Subtitle) + "</h2>\n")
	}

	b.WriteString(`<div class="slide-body">` + "\n")
	for _, e := range slide.Elements {
		b.WriteString(`<div class="element element-` + strings.ToLower(string(e.Kind())) + `">`)
		writeHTMLElement(&b, e)
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n")

	out := htmlSlide{
		ID:     slide.ID,
		Index:  index,
		Layout: string(slide.Layout),
		Style:  backgroundCSS(slide.Background),
		// #nosec G203 - sanitized by the bluemonday policy
		Body: template.HTML(g.policy.Sanitize(b.String())),
	}

	if notes, ok := slideNotes(slide, options); ok {
		escaped := strings.ReplaceAll(html.EscapeString(notes), "\n", "<br>")
		// #nosec G203 - escaped above
		out.Notes = template.HTML(escaped)
	}
	return out
}

func writeHTMLElement(b *strings.Builder, e entities.SlideElement) {
	switch el := e.(type) {
	case *entities.Text:
		if el.Level > 0 {
			tag := "h" + strconv.Itoa(min(el.Level+1, 6))
			b.WriteString("<" + tag + ">" + inlineHTML(el.Content, el.Spans) + "</" + tag + ">")
			return
		}
		b.WriteString("<p>" + inlineHTML(el.Content, el.Spans) + "</p>")

	case *entities.BulletList:
		writeHTMLList(b, "ul", "", el.Items)

	case *entities.NumberedList:
		attr := ""
		if el.Start != 1 {
			attr = fmt.Sprintf(` start="%d"`, el.Start)
		}
		writeHTMLList(b, "ol", attr, el.Items)

	case *entities.Image:
		b.WriteString(`<img src="` + html.EscapeString(el.URL) + `" alt="` + html.EscapeString(el.Alt) + `"`)
		if el.Title != "" {
			b.WriteString(` title="` + html.EscapeString(el.Title) + `"`)
		}
		if el.Width != nil {
			fmt.Fprintf(b, ` width="%d"`, int(math.Round(*el.Width)))
		}
		if el.Height != nil {
			fmt.Fprintf(b, ` height="%d"`, int(math.Round(*el.Height)))
		}
		b.WriteString(">")

	case *entities.Table:
		writeHTMLTable(b, el)

	case *entities.Code:
		b.WriteString(`<pre class="code"><code`)
		if lang := languagePattern.ReplaceAllString(strings.ToLower(el.Language), ""); lang != "" {
			b.WriteString(` class="language-` + lang + `"`)
		}
		b.WriteString(">")
		for i, line := range codeLines(el.Content) {
			class := "line"
			if el.IsHighlighted(i + 1) {
				class += " highlighted"
			}
			fmt.Fprintf(b, `<span class="%s" data-line="%d">%s</span>`+"\n", class, i+1, html.EscapeString(line))
		}
		b.WriteString("</code></pre>")
	}
}

func writeHTMLList(b *strings.Builder, tag, attr string, items []entities.ListItem) {
	b.WriteString("<" + tag + attr + ">")
	for _, item := range items {
		b.WriteString("<li>")
		if item.Checked != nil {
			if *item.Checked {
				b.WriteString(`<span class="task done">☑</span> `)
			} else {
				b.WriteString(`<span class="task">☐</span> `)
			}
		}
		b.WriteString(inlineHTML(item.Text, item.Spans))
		for _, sub := range item.Sublists {
			writeHTMLElement(b, sub)
		}
		b.WriteString("</li>")
	}
	b.WriteString("</" + tag + ">")
}

func writeHTMLTable(b *strings.Builder, t *entities.Table) {
	cell := func(tag string, col int, text string) {
		b.WriteString("<" + tag)
		if col < len(t.Align) && t.Align[col] != "" {
			b.WriteString(` class="align-` + html.EscapeString(t.Align[col]) + `"`)
		}
		b.WriteString(">" + html.EscapeString(text) + "</" + tag + ">")
	}

	b.WriteString("<table>")
	if t.Header != nil {
		b.WriteString("<thead><tr>")
		for i, h := range t.Header {
			cell("th", i, h)
		}
		b.WriteString("</tr></thead>")
	}
	b.WriteString("<tbody>")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for i, c := range row {
			cell("td", i, c)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
}

// inlineHTML renders text runs with nested formatting tags
func inlineHTML(content string, spans []entities.StyleSpan) string {
	var b strings.Builder
	for _, run := range styledRuns(content, spans) {
		text := strings.ReplaceAll(html.EscapeString(run.Text), "\n", "<br>")
		s := run.Style
		if s.Code {
			text = "<code>" + text + "</code>"
		}
		if s.Strikethrough {
			text = "<del>" + text + "</del>"
		}
		if s.Italic {
			text = "<em>" + text + "</em>"
		}
		if s.Bold {
			text = "<strong>" + text + "</strong>"
		}
		if s.Link != "" {
			text = `<a href="` + html.EscapeString(s.Link) + `">` + text + "</a>"
		}
		b.WriteString(text)
	}
	return b.String()
}

// backgroundCSS builds the inline style for a slide background. Image
// references are quoted with every character that could end the string
// removed.
func backgroundCSS(bg *entities.Background) template.CSS {
	if bg == nil {
		return ""
	}
	var parts []string
	if bg.Color != nil {
		parts = append(parts, "background-color: "+bg.Color.Hex())
	}
	if bg.Image != "" {
		url := strings.Map(func(r rune) rune {
			if strings.ContainsRune("\"'\\()<>;\n\r", r) {
				return -1
			}
			return r
		}, bg.Image)
		parts = append(parts, `background-image: url("`+url+`")`, "background-size: cover")
	}
	// #nosec G203 - built from a parsed color and a filtered url
	return template.CSS(strings.Join(parts, "; "))
}

const deckTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    {{if .Author}}<meta name="author" content="{{.Author}}">{{end}}
    <meta name="generator" content="slidemark">
    <style>
        :root {
            --primary: {{.Theme.Primary}};
            --secondary: {{.Theme.Secondary}};
            --font-family: "{{.Theme.Font}}", sans-serif;
            --font-size: {{.Theme.FontSize}}px;
        }

        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: var(--font-family);
            font-size: var(--font-size);
            line-height: 1.5;
            color: var(--primary);
            background: #f5f5f5;
            overflow: hidden;
        }

        .deck { position: relative; height: 100vh; max-width: 1280px; margin: 0 auto; }

        .slide {
            position: absolute;
            inset: 20px;
            padding: 48px 60px;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
            display: none;
            overflow: auto;
        }
        .slide.active { display: block; }

        .slide-title { font-size: 2.4em; margin-bottom: 0.4em; color: var(--primary); }
        .slide-subtitle { font-size: 1.6em; color: var(--secondary); font-weight: normal; }

        .layout-title, .layout-section-header {
            display: none;
            flex-direction: column;
            justify-content: center;
            text-align: center;
        }
        .layout-title.active, .layout-section-header.active { display: flex; }
        .layout-section-header .slide-title { border-bottom: 4px solid var(--secondary); padding-bottom: 0.2em; }

        .layout-two-column .slide-body { display: grid; grid-template-columns: 1fr 1fr; gap: 32px; align-items: start; }

        .element { margin-bottom: 0.8em; }
        .element img { max-width: 100%; height: auto; }
        .element ul, .element ol { margin-left: 1.5em; }
        .element li { margin-bottom: 0.3em; }
        .element a { color: var(--secondary); }

        pre.code {
            background: #1e1e1e;
            color: #d4d4d4;
            padding: 1em;
            border-radius: 4px;
            overflow-x: auto;
            font-family: "Courier New", monospace;
            font-size: 0.8em;
        }
        pre.code .line { display: block; }
        pre.code .line.highlighted { background: rgba(255, 255, 255, 0.15); border-left: 3px solid var(--secondary); }
        code { font-family: "Courier New", monospace; }

        table { border-collapse: collapse; width: 100%; }
        th, td { border: 1px solid #ddd; padding: 0.4em 0.6em; text-align: left; }
        th { background: #f4f4f4; }
        .align-center { text-align: center; }
        .align-right { text-align: right; }

        .speaker-notes {
            display: none;
            margin-top: 2em;
            padding-top: 1em;
            border-top: 2px dashed #ddd;
            font-size: 0.8em;
            color: #666;
            font-style: italic;
        }
        body.show-notes .speaker-notes { display: block; }

        .progress-bar { position: fixed; top: 0; left: 0; right: 0; height: 4px; background: rgba(0,0,0,0.1); }
        .progress-bar-fill { height: 100%; width: 0%; background: var(--secondary); transition: width 0.3s ease; }

        .slide-number { position: fixed; bottom: 20px; right: 30px; font-size: 14px; color: #666; }

        @media print {
            body { overflow: visible; }
            .progress-bar, .slide-number { display: none; }
            .slide { display: block !important; position: relative; inset: auto; page-break-after: always; box-shadow: none; }
            .speaker-notes { display: block; }
        }
    </style>
</head>
<body>
    <div class="progress-bar"><div class="progress-bar-fill"></div></div>
    <main class="deck" data-title="{{.Title}}"{{if .Date}} data-date="{{.Date}}"{{end}}>
        {{- range .Slides}}
        <section class="slide layout-{{.Layout}}" id="{{.ID}}" data-index="{{.Index}}"{{if .Style}} style="{{.Style}}"{{end}}>
            {{.Body}}
            {{- if .Notes}}
            <div class="speaker-notes">{{.Notes}}</div>
            {{- end}}
        </section>
        {{- end}}
    </main>
    <div class="slide-number"><span id="current-slide">1</span> / <span id="total-slides">{{len .Slides}}</span></div>

    <script>
        (function() {
            'use strict';

            const slides = document.querySelectorAll('.slide');
            const total = slides.length;
            let current = 0;

            function fromHash() {
                const id = decodeURIComponent(location.hash.slice(1));
                for (let i = 0; i < total; i++) {
                    if (slides[i].id === id) return i;
                }
                return 0;
            }

            function show(n) {
                if (total === 0) return;
                current = Math.max(0, Math.min(n, total - 1));
                slides.forEach(function(slide, i) {
                    slide.classList.toggle('active', i === current);
                });
                document.getElementById('current-slide').textContent = current + 1;
                const progress = total > 1 ? (current / (total - 1)) * 100 : 100;
                document.querySelector('.progress-bar-fill').style.width = progress + '%';
                history.replaceState(null, '', '#' + slides[current].id);
            }

            document.addEventListener('keydown', function(e) {
                switch (e.key) {
                    case 'ArrowRight':
                    case 'PageDown':
                    case ' ':
                        e.preventDefault();
                        show(current + 1);
                        break;
                    case 'ArrowLeft':
                    case 'PageUp':
                        e.preventDefault();
                        show(current - 1);
                        break;
                    case 'Home':
                        show(0);
                        break;
                    case 'End':
                        show(total - 1);
                        break;
                    case 'n':
                    case 'N':
                        document.body.classList.toggle('show-notes');
                        break;
                }
            });

            show(fromHash());
        })();
    </script>
    {{- if .LiveReload}}
    <script>
        (function() {
            'use strict';
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            const ws = new WebSocket(scheme + location.host + {{.LiveReload}});
            ws.onmessage = function(msg) {
                try {
                    if (JSON.parse(msg.data).type === 'reload') location.reload();
                } catch (err) {
                    console.warn('live reload:', err);
                }
            };
        })();
    </script>
    {{- end}}
</body>
</html>
`
