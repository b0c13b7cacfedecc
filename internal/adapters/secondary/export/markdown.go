package export

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// MarkdownGenerator re-emits the presentation as Markdown that parses back
// to an equivalent IR with the default parse settings. Slides are separated
// by thematic breaks and every titled slide carries its id and layout as
// heading attributes.
type MarkdownGenerator struct{}

var _ ports.Generator = (*MarkdownGenerator)(nil)

// NewMarkdownGenerator creates a new markdown generator
func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (g *MarkdownGenerator) Format() string    { return "markdown" }
func (g *MarkdownGenerator) Extension() string { return ".md" }
func (g *MarkdownGenerator) MimeType() string  { return "text/markdown; charset=utf-8" }

type markdownFrontmatter struct {
	Title  string                  `yaml:"title"`
	Author string                  `yaml:"author,omitempty"`
	Date   string                  `yaml:"date,omitempty"`
	Theme  *entities.ThemeSettings `yaml:"theme,omitempty"`
}

// Generate writes the Markdown document
func (g *MarkdownGenerator) Generate(ctx context.Context, presentation *entities.Presentation, w io.Writer, options ports.ExportOptions) error {
	var b strings.Builder

	fm := markdownFrontmatter{
		Title:  documentTitle(presentation, options),
		Author: presentation.Metadata.Author,
		Date:   presentation.Metadata.Date,
	}
	if t := presentation.Theme; t != nil {
		fm.Theme = &entities.ThemeSettings{
			PrimaryColor:   t.PrimaryColor.Hex(),
			SecondaryColor: t.SecondaryColor.Hex(),
			FontFamily:     t.FontFamily,
			FontSize:       t.FontSize,
		}
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("encoding frontmatter: %w", err)
	}
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n")

	for i := range presentation.Slides {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			b.WriteString("\n---\n")
		}
		writeMarkdownSlide(&b, &presentation.Slides[i], options)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}
	return nil
}

func writeMarkdownSlide(b *strings.Builder, slide *entities.Slide, options ports.ExportOptions) {
	if slide.Title != nil {
		b.WriteString("\n# ")
		b.WriteString(escapeMarkdown(*slide.Title, true))
		b.WriteString(" {")
		b.WriteString("#" + slide.ID)
		fmt.Fprintf(b, " layout=%q", string(slide.Layout))
		if bg := slide.Background; bg != nil {
			switch {
			case bg.Color != nil:
				fmt.Fprintf(b, " background=%q", bg.Color.Hex())
			case bg.Image != "":
				fmt.Fprintf(b, " background=%q", bg.Image)
			}
		}
		b.WriteString("}\n")

		if slide.Subtitle != nil {
			b.WriteString("\n## ")
			b.WriteString(escapeMarkdown(*slide.Subtitle, true))
			b.WriteString("\n")
		}
	}

	lists := &listMarkers{}
	for _, e := range slide.Elements {
		block := markdownBlock(e, lists)
		if block == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(block)
		b.WriteString("\n")
	}

	if notes, ok := slideNotes(slide, options); ok {
		b.WriteString("\n<!-- notes: ")
		b.WriteString(strings.ReplaceAll(notes, "-->", "--&gt;"))
		b.WriteString(" -->\n")
	}
}

// listMarkers alternates bullet characters so adjacent lists stay separate
type listMarkers struct {
	bullet   int
	numbered int
}

func (m *listMarkers) next(ordered bool) string {
	if ordered {
		m.numbered++
		return [...]string{".", ")"}[(m.numbered-1)%2]
	}
	m.bullet++
	return [...]string{"-", "*"}[(m.bullet-1)%2]
}

func markdownBlock(e entities.SlideElement, lists *listMarkers) string {
	switch el := e.(type) {
	case *entities.Text:
		if el.Content == "" {
			return ""
		}
		text := renderMarkdownInline(el.Content, el.Spans)
		if el.Level > 0 {
			return strings.Repeat("#", min(el.Level, 6)) + " " + text
		}
		return text

	case *entities.BulletList, *entities.NumberedList:
		var b strings.Builder
		writeMarkdownList(&b, el, "", lists)
		return strings.TrimSuffix(b.String(), "\n")

	case *entities.Image:
		return markdownImage(el)

	case *entities.Table:
		return markdownTable(el)

	case *entities.Code:
		return markdownCode(el)
	}
	return ""
}

func writeMarkdownList(b *strings.Builder, e entities.SlideElement, indent string, lists *listMarkers) {
	var (
		items   []entities.ListItem
		ordered bool
		start   int
	)
	switch list := e.(type) {
	case *entities.BulletList:
		items = list.Items
	case *entities.NumberedList:
		items, ordered, start = list.Items, true, list.Start
	default:
		return
	}

	delim := lists.next(ordered)
	nested := &listMarkers{}
	for i, item := range items {
		marker := delim
		if ordered {
			marker = strconv.Itoa(start+i) + delim
		}
		childIndent := indent + strings.Repeat(" ", len(marker)+1)

		b.WriteString(indent)
		b.WriteString(marker)
		b.WriteString(" ")
		if item.Checked != nil {
			if *item.Checked {
				b.WriteString("[x] ")
			} else {
				b.WriteString("[ ] ")
			}
		}
		text := renderMarkdownInline(item.Text, item.Spans)
		b.WriteString(strings.ReplaceAll(text, "\n", "\n"+childIndent))
		b.WriteString("\n")

		for _, sub := range item.Sublists {
			writeMarkdownList(b, sub, childIndent, nested)
		}
	}
}

func markdownImage(img *entities.Image) string {
	var b strings.Builder
	b.WriteString("![")
	b.WriteString(escapeMarkdown(img.Alt, false))
	b.WriteString("](")
	b.WriteString(markdownDestination(img.URL))
	if img.Title != "" {
		b.WriteString(` "`)
		b.WriteString(strings.ReplaceAll(img.Title, `"`, `\"`))
		b.WriteString(`"`)
	}
	b.WriteString(")")

	var dims []string
	if img.Width != nil {
		dims = append(dims, "width="+strconv.FormatFloat(*img.Width, 'f', -1, 64))
	}
	if img.Height != nil {
		dims = append(dims, "height="+strconv.FormatFloat(*img.Height, 'f', -1, 64))
	}
	if len(dims) > 0 {
		b.WriteString("{" + strings.Join(dims, " ") + "}")
	}
	return b.String()
}

func markdownTable(t *entities.Table) string {
	width := t.Columns()
	if width == 0 {
		return ""
	}

	row := func(cells []string) string {
		out := make([]string, width)
		for i := range out {
			if i < len(cells) {
				out[i] = escapeMarkdown(cells[i], false)
			}
		}
		return "| " + strings.Join(out, " | ") + " |"
	}

	rules := make([]string, width)
	for i := range rules {
		align := ""
		if i < len(t.Align) {
			align = t.Align[i]
		}
		switch align {
		case "left":
			rules[i] = ":---"
		case "center":
			rules[i] = ":---:"
		case "right":
			rules[i] = "---:"
		default:
			rules[i] = "---"
		}
	}

	lines := []string{row(t.Header), "| " + strings.Join(rules, " | ") + " |"}
	for _, r := range t.Rows {
		lines = append(lines, row(r))
	}
	return strings.Join(lines, "\n")
}

func markdownCode(c *entities.Code) string {
	fence := strings.Repeat("`", max(3, longestRun(c.Content, '`')+1))

	info := c.Language
	if len(c.Highlight) > 0 {
		if info != "" {
			info += " "
		}
		info += "{" + compressLines(c.Highlight) + "}"
	}

	var b strings.Builder
	b.WriteString(fence + info + "\n")
	if c.Content != "" {
		b.WriteString(c.Content + "\n")
	}
	b.WriteString(fence)
	return b.String()
}

// compressLines turns sorted line numbers into "2-3,5"
func compressLines(lines []int) string {
	var parts []string
	for i := 0; i < len(lines); {
		j := i
		for j+1 < len(lines) && lines[j+1] == lines[j]+1 {
			j++
		}
		if i == j {
			parts = append(parts, strconv.Itoa(lines[i]))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", lines[i], lines[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}

func longestRun(s string, r rune) int {
	best, run := 0, 0
	for _, c := range s {
		if c == r {
			run++
			best = max(best, run)
			continue
		}
		run = 0
	}
	return best
}

func markdownDestination(url string) string {
	if strings.ContainsAny(url, " ()<>") {
		return "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(url) + ">"
	}
	return url
}

// renderMarkdownInline writes text with its style spans as inline markup.
// Spans are opened outermost first and closed innermost first; a span that
// ends inside another is closed early and the others reopened around it.
func renderMarkdownInline(content string, spans []entities.StyleSpan) string {
	runes := []rune(content)
	ordered := make([]entities.StyleSpan, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].End > ordered[j].End
	})

	var (
		b     strings.Builder
		stack []entities.StyleSpan
		next  int
		code  bool
	)

	closeAt := func(pos int) {
		for {
			idx := -1
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].End <= pos {
					idx = i
					break
				}
			}
			if idx < 0 {
				return
			}
			reopen := make([]entities.StyleSpan, 0, len(stack)-idx-1)
			for len(stack) > idx {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				b.WriteString(closeMarker(top, runes, pos))
				if top.End > pos {
					reopen = append(reopen, top)
				}
			}
			for i := len(reopen) - 1; i >= 0; i-- {
				s := reopen[i]
				s.Start = pos
				b.WriteString(openMarker(s, runes))
				stack = append(stack, s)
			}
		}
	}

	for pos := 0; pos <= len(runes); pos++ {
		closeAt(pos)
		for next < len(ordered) && ordered[next].Start <= pos {
			s := ordered[next]
			next++
			if s.Start < pos || s.End <= s.Start || s.End > len(runes) {
				continue
			}
			b.WriteString(openMarker(s, runes))
			stack = append(stack, s)
		}
		if pos == len(runes) {
			break
		}

		code = false
		for _, s := range stack {
			if s.Code {
				code = true
			}
		}
		r := runes[pos]
		switch {
		case r == '\n':
			b.WriteString("\\\n")
		case code:
			b.WriteRune(r)
		default:
			b.WriteString(escapeRune(r, runes, pos))
		}
	}
	return b.String()
}

func openMarker(s entities.StyleSpan, runes []rune) string {
	var m string
	if s.Link != "" {
		m += "["
	}
	if s.Strikethrough {
		m += "~~"
	}
	if s.Bold {
		m += "**"
	}
	if s.Italic {
		m += emphasisMarker(runes, s.Start-1)
	}
	if s.Code {
		m += codeFence(s, runes)
	}
	return m
}

func closeMarker(s entities.StyleSpan, runes []rune, pos int) string {
	end := min(s.End, pos)
	var m string
	if s.Code {
		m += reverseString(codeFence(entities.StyleSpan{Start: s.Start, End: end, Code: true}, runes))
	}
	if s.Italic {
		m += emphasisMarker(runes, end)
	}
	if s.Bold {
		m += "**"
	}
	if s.Strikethrough {
		m += "~~"
	}
	if s.Link != "" {
		m += "](" + markdownDestination(s.Link) + ")"
	}
	return m
}

// emphasisMarker uses "_" unless it would touch a word character, where
// only "*" works
func emphasisMarker(runes []rune, neighbor int) string {
	if neighbor >= 0 && neighbor < len(runes) {
		r := runes[neighbor]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return "*"
		}
	}
	return "_"
}

// codeFence returns the opening backticks for a code span, padded when the
// code itself starts or ends with a backtick
func codeFence(s entities.StyleSpan, runes []rune) string {
	body := string(runes[s.Start:s.End])
	fence := strings.Repeat("`", longestRun(body, '`')+1)
	if strings.HasPrefix(body, "`") || strings.HasSuffix(body, "`") {
		return fence + " "
	}
	return fence
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

const markdownPunctuation = "\\`*_[]<>~&|!"

// escapeRune backslash-escapes characters Markdown would interpret,
// including block markers at the start of a line
func escapeRune(r rune, runes []rune, pos int) string {
	if strings.ContainsRune(markdownPunctuation, r) {
		return "\\" + string(r)
	}

	lineStart := pos == 0 || runes[pos-1] == '\n'
	if lineStart && strings.ContainsRune("#>-+=", r) {
		return "\\" + string(r)
	}
	if (r == '.' || r == ')') && precededByLineNumber(runes, pos) {
		return "\\" + string(r)
	}
	return string(r)
}

func precededByLineNumber(runes []rune, pos int) bool {
	i := pos - 1
	for i >= 0 && unicode.IsDigit(runes[i]) {
		i--
	}
	return i < pos-1 && (i < 0 || runes[i] == '\n')
}

// escapeMarkdown escapes plain text; headings also protect a trailing "{"
func escapeMarkdown(s string, heading bool) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if heading && (r == '{' || r == '}') {
			b.WriteString("\\" + string(r))
			continue
		}
		b.WriteString(escapeRune(r, runes, i))
	}
	return b.String()
}
