package parser

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

// SlideDraft is a transformed slide before identifiers are assigned
type SlideDraft struct {
	Layout     entities.Layout
	Title      *string
	Subtitle   *string
	Background *entities.Background
	Elements   entities.Elements
	// ExplicitID is an identifier the author put on the title heading
	ExplicitID string
}

// Transformer maps the nodes of one segment to slide elements. It never
// fails: content it does not support degrades to text or is dropped. In
// strict mode every unsupported top-level node is also reported.
type Transformer struct {
	strict bool
	logger *slog.Logger
}

// NewTransformer creates a new transformer
func NewTransformer(strict bool, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{
		strict: strict,
		logger: logger,
	}
}

// Transform builds the draft for seg from its visible nodes (notes removed)
func (t *Transformer) Transform(seg Segment, nodes []ast.Node, source []byte) (SlideDraft, []entities.Violation) {
	var (
		draft      SlideDraft
		violations []entities.Violation
		attrs      = Attributes{}
	)

	if seg.Title != nil {
		title, titleAttrs := headingText(seg.Title, source)
		draft.Title = &title
		attrs = titleAttrs

		if sub, ok := subtitleHeading(seg.Title, nodes); ok {
			subtitle, _ := headingText(sub, source)
			draft.Subtitle = &subtitle
			nodes = nil
		}
	}

	for _, n := range nodes {
		elements, recognized := t.transformNode(n, source)
		if !recognized {
			violations = append(violations, t.unrecognized(seg, n, source)...)
		}
		draft.Elements = append(draft.Elements, elements...)
	}

	draft.ExplicitID = attrs["id"]
	draft.Background = t.background(seg, attrs)
	draft.Layout = t.chooseLayout(seg, &draft, attrs)

	return draft, violations
}

// transformNode returns the elements for n and whether its kind is supported
func (t *Transformer) transformNode(n ast.Node, source []byte) (entities.Elements, bool) {
	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		if images, ok := imageParagraph(node, source); ok {
			elements := make(entities.Elements, len(images))
			for i, img := range images {
				elements[i] = img
			}
			return elements, true
		}
		content, spans := trimSpans(flattenInline(node, source))
		return entities.Elements{&entities.Text{Content: content, Spans: spans}}, true

	case *ast.Heading:
		content, spans := flattenInline(node, source)
		if stripped, _, ok := SplitTrailingAnnotation(content); ok {
			content, spans = clampSpans(stripped, spans)
		}
		content, spans = trimSpans(content, spans)
		return entities.Elements{&entities.Text{Content: content, Level: node.Level, Spans: spans}}, true

	case *ast.List:
		return entities.Elements{listElement(node, source)}, true

	case *extast.Table:
		return entities.Elements{tableElement(node, source)}, true

	case *ast.FencedCodeBlock:
		return entities.Elements{fencedCodeElement(node, source)}, true

	case *ast.CodeBlock:
		return entities.Elements{&entities.Code{Content: codeContent(node, source)}}, true

	case *ast.ThematicBreak:
		return nil, true

	case *ast.Blockquote:
		content, spans := trimSpans(blockText(node, source))
		if content == "" {
			return nil, false
		}
		return entities.Elements{&entities.Text{Content: content, Spans: spans}}, false

	default:
		return nil, false
	}
}

func (t *Transformer) unrecognized(seg Segment, n ast.Node, source []byte) []entities.Violation {
	kind := n.Kind().String()
	pos := blockPosition(n, source)

	attrs := []any{
		slog.String("kind", kind),
		slog.Int("slide", seg.Index),
	}
	if pos != nil {
		attrs = append(attrs, slog.String("position", pos.String()))
	}
	t.logger.Debug("Unsupported node degraded", attrs...)

	if !t.strict {
		return nil
	}

	return []entities.Violation{{
		Kind:       entities.KindUnrecognizedNode,
		SlideIndex: seg.Index,
		Element:    -1,
		NodeKind:   kind,
		Position:   pos,
		Message:    fmt.Sprintf("unsupported %s node", kind),
	}}
}

func (t *Transformer) background(seg Segment, attrs Attributes) *entities.Background {
	value, ok := attrs["background"]
	if !ok {
		return nil
	}

	bg, err := entities.ParseBackground(value)
	if err != nil {
		t.logger.Warn("Ignoring slide background",
			slog.Int("slide", seg.Index),
			slog.String("value", value),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return bg
}

func (t *Transformer) chooseLayout(seg Segment, draft *SlideDraft, attrs Attributes) entities.Layout {
	if name, ok := attrs["layout"]; ok {
		if layout, err := entities.ParseLayout(name); err == nil {
			return layout
		}
		t.logger.Warn("Ignoring unknown layout",
			slog.Int("slide", seg.Index),
			slog.String("layout", name),
		)
	}
	for _, class := range attrs.Classes() {
		if layout, err := entities.ParseLayout(class); err == nil {
			return layout
		}
	}

	if draft.Subtitle != nil {
		return entities.LayoutTitle
	}

	switch {
	case len(draft.Elements) == 0 && draft.Title == nil:
		return entities.LayoutBlank
	case len(draft.Elements) == 0 && seg.Index == 0:
		return entities.LayoutTitle
	case len(draft.Elements) == 0:
		return entities.LayoutSectionHeader
	case len(draft.Elements) == 2 && (isImage(draft.Elements[0]) || isImage(draft.Elements[1])):
		return entities.LayoutTwoColumn
	default:
		return entities.LayoutTitleAndBody
	}
}

func isImage(e entities.SlideElement) bool {
	return e.Kind() == entities.KindImage
}

// subtitleHeading reports whether the only visible node is a heading deeper
// than the title
func subtitleHeading(title *ast.Heading, nodes []ast.Node) (*ast.Heading, bool) {
	if len(nodes) != 1 {
		return nil, false
	}
	h, ok := nodes[0].(*ast.Heading)
	if !ok || h.Level <= title.Level {
		return nil, false
	}
	return h, true
}

// headingText returns the heading's plain text and its attributes, taken
// from goldmark's attribute syntax or, failing that, a trailing "{...}"
func headingText(h *ast.Heading, source []byte) (string, Attributes) {
	attrs := nodeAttributes(h)
	text := plainText(h, source)
	if stripped, extra, ok := SplitTrailingAnnotation(text); ok {
		text = stripped
		attrs.Merge(extra)
	}
	return strings.TrimSpace(text), attrs
}

// imageParagraph returns one Image per image when the paragraph holds
// nothing but images and their "{width=N}" annotations
func imageParagraph(p ast.Node, source []byte) ([]*entities.Image, bool) {
	var (
		images  []*entities.Image
		pending strings.Builder
	)

	flush := func() bool {
		text := strings.TrimSpace(pending.String())
		pending.Reset()
		if text == "" {
			return true
		}
		if len(images) == 0 || !IsAnnotation(text) {
			return false
		}
		applyDimensions(images[len(images)-1], ParseAnnotation(text))
		return true
	}

	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Image:
			if !flush() {
				return nil, false
			}
			images = append(images, &entities.Image{
				URL:   string(node.Destination),
				Alt:   plainText(node, source),
				Title: string(node.Title),
			})
		case *ast.Text:
			pending.Write(node.Segment.Value(source))
			pending.WriteByte(' ')
		case *ast.String:
			pending.Write(node.Value)
		default:
			return nil, false
		}
	}

	if !flush() || len(images) == 0 {
		return nil, false
	}
	return images, true
}

func applyDimensions(img *entities.Image, attrs Attributes) {
	if w, ok := attrs.Dimension("width"); ok {
		img.Width = w
	}
	if h, ok := attrs.Dimension("height"); ok {
		img.Height = h
	}
}

func listElement(l *ast.List, source []byte) entities.SlideElement {
	items := make([]entities.ListItem, 0, l.ChildCount())
	for c := l.FirstChild(); c != nil; c = c.NextSibling() {
		items = append(items, listItem(c, source))
	}

	if l.IsOrdered() {
		return &entities.NumberedList{Start: l.Start, Items: items}
	}
	return &entities.BulletList{Items: items}
}

func listItem(li ast.Node, source []byte) entities.ListItem {
	var (
		item entities.ListItem
		text textBuilder
	)

	for c := li.FirstChild(); c != nil; c = c.NextSibling() {
		if sub, ok := c.(*ast.List); ok {
			item.Sublists = append(item.Sublists, listElement(sub, source))
			continue
		}
		if cb, ok := c.FirstChild().(*extast.TaskCheckBox); ok && item.Checked == nil {
			checked := cb.IsChecked
			item.Checked = &checked
		}
		text.append(blockText(c, source))
	}

	item.Text, item.Spans = trimSpans(text.String(), text.spans)
	return item
}

func tableElement(tbl *extast.Table, source []byte) *entities.Table {
	out := &entities.Table{Rows: [][]string{}}

	for row := tbl.FirstChild(); row != nil; row = row.NextSibling() {
		cells := make([]string, 0, row.ChildCount())
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(plainText(cell, source)))
		}
		if _, ok := row.(*extast.TableHeader); ok {
			out.Header = cells
			continue
		}
		out.Rows = append(out.Rows, cells)
	}

	width := out.Columns()
	if len(tbl.Alignments) > width {
		width = len(tbl.Alignments)
	}

	if out.Header != nil {
		out.Header = padRow(out.Header, width)
	}
	for i := range out.Rows {
		out.Rows[i] = padRow(out.Rows[i], width)
	}

	aligned := false
	align := make([]string, width)
	for i, a := range tbl.Alignments {
		if a != extast.AlignNone {
			align[i] = a.String()
			aligned = true
		}
	}
	if aligned {
		out.Align = align
	}

	return out
}

// padRow right-pads a ragged row with empty cells
func padRow(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}

func fencedCodeElement(n *ast.FencedCodeBlock, source []byte) *entities.Code {
	code := &entities.Code{Content: codeContent(n, source)}
	if n.Info == nil {
		return code
	}

	info := strings.TrimSpace(string(n.Info.Segment.Value(source)))
	if open := strings.IndexByte(info, '{'); open >= 0 {
		if length := strings.IndexByte(info[open:], '}'); length > 0 {
			code.Highlight = parseHighlight(info[open+1:open+length], lineCount(code.Content))
			info = info[:open] + " " + info[open+length+1:]
		}
	}
	if fields := strings.Fields(info); len(fields) > 0 {
		code.Language = fields[0]
	}
	return code
}

// parseHighlight reads "2-3,5". Anything malformed discards the whole set;
// line numbers past the end of the block are dropped.
func parseHighlight(ranges string, lines int) []int {
	seen := map[int]bool{}
	for _, part := range strings.Split(ranges, ",") {
		part = strings.TrimSpace(part)
		from, to, ok := parseLineRange(part)
		if !ok {
			return nil
		}
		for n := from; n <= to && n <= lines; n++ {
			seen[n] = true
		}
	}

	if len(seen) == 0 {
		return nil
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func parseLineRange(part string) (int, int, bool) {
	lo, hi, isRange := strings.Cut(part, "-")
	from, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil || from < 1 {
		return 0, 0, false
	}
	if !isRange {
		return from, from, true
	}
	to, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil || to < from {
		return 0, 0, false
	}
	return from, to, true
}

func codeContent(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		b.Write(segment.Value(source))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

// blockText flattens any block to text, joining child blocks with "\n"
func blockText(n ast.Node, source []byte) (string, []entities.StyleSpan) {
	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
		return flattenInline(node, source)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return codeContent(node, source), nil
	case *ast.HTMLBlock, *ast.ThematicBreak:
		return "", nil
	}

	var text textBuilder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		text.append(blockText(c, source))
	}
	return text.String(), text.spans
}

// textBuilder joins text fragments with newlines and keeps their spans
type textBuilder struct {
	strings.Builder
	runes int
	spans []entities.StyleSpan
}

func (b *textBuilder) append(text string, spans []entities.StyleSpan) {
	text, spans = trimSpans(text, spans)
	if text == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
		b.runes++
	}
	for _, s := range spans {
		s.Start += b.runes
		s.End += b.runes
		b.spans = append(b.spans, s)
	}
	b.WriteString(text)
	b.runes += utf8.RuneCountInString(text)
}

// trimSpans trims surrounding whitespace and shifts spans to match
func trimSpans(text string, spans []entities.StyleSpan) (string, []entities.StyleSpan) {
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	lead := utf8.RuneCountInString(text) - utf8.RuneCountInString(trimmed)
	trimmed = strings.TrimRightFunc(trimmed, unicode.IsSpace)

	if lead == 0 && len(trimmed) == len(text) {
		return text, spans
	}

	shifted := make([]entities.StyleSpan, 0, len(spans))
	for _, s := range spans {
		s.Start -= lead
		s.End -= lead
		shifted = append(shifted, s)
	}
	return clampSpans(trimmed, shifted)
}

// clampSpans cuts spans to the rune length of text and drops empty ones
func clampSpans(text string, spans []entities.StyleSpan) (string, []entities.StyleSpan) {
	if spans == nil {
		return text, nil
	}

	n := utf8.RuneCountInString(text)
	out := make([]entities.StyleSpan, 0, len(spans))
	for _, s := range spans {
		s.Start = max(s.Start, 0)
		s.End = min(s.End, n)
		if s.Start < s.End {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return text, nil
	}
	return text, out
}
