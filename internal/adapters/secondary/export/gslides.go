package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// DefaultBatchSize caps requests per batchUpdate call when options leave
// it unset
const DefaultBatchSize = 50

// SlidesGenerator emits Google Slides batchUpdate requests. It never talks
// to the API; Publisher submits the batches.
type SlidesGenerator struct{}

var _ ports.Generator = (*SlidesGenerator)(nil)

// NewSlidesGenerator creates a new Google Slides request generator
func NewSlidesGenerator() *SlidesGenerator {
	return &SlidesGenerator{}
}

func (g *SlidesGenerator) Format() string    { return "gslides" }
func (g *SlidesGenerator) Extension() string { return ".gslides.json" }
func (g *SlidesGenerator) MimeType() string  { return "application/json" }

// Generate writes the request document as JSON
func (g *SlidesGenerator) Generate(ctx context.Context, presentation *entities.Presentation, w io.Writer, options ports.ExportOptions) error {
	doc, err := g.Build(ctx, presentation, options)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding requests: %w", err)
	}
	return nil
}

// Build translates the presentation into batched requests. Requests keep
// document order, so a batch never refers to an object created by a later
// batch.
func (g *SlidesGenerator) Build(ctx context.Context, presentation *entities.Presentation, options ports.ExportOptions) (*SlidesDocument, error) {
	theme := presentation.EffectiveTheme()
	doc := &SlidesDocument{Title: documentTitle(presentation, options)}

	var requests []SlidesRequest
	for i := range presentation.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slide := &presentation.Slides[i]
		b := &slidesBuilder{
			pageID:    slideObjectID(i),
			theme:     theme,
			textColor: theme.PrimaryColor,
		}
		b.slide(slide, i)
		requests = append(requests, b.requests...)

		if notes, ok := slideNotes(slide, options); ok && notes != "" {
			doc.PendingNotes = append(doc.PendingNotes, PendingNote{
				SlideObjectID: b.pageID,
				SlideID:       slide.ID,
				Text:          notes,
			})
		}
	}

	size := options.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < len(requests); start += size {
		end := min(start+size, len(requests))
		doc.Batches = append(doc.Batches, SlidesBatch{Requests: requests[start:end]})
	}
	if doc.Batches == nil {
		doc.Batches = []SlidesBatch{}
	}
	return doc, nil
}

// slideObjectID is a valid Slides object ID: 5 to 50 characters of
// [a-zA-Z0-9_-:] starting with a word character
func slideObjectID(index int) string {
	return fmt.Sprintf("slide_%03d", index+1)
}

// slidesBuilder collects the requests for one slide
type slidesBuilder struct {
	pageID    string
	theme     entities.ThemeConfig
	textColor entities.RGB
	elements  int
	requests  []SlidesRequest
}

func (b *slidesBuilder) add(r SlidesRequest) {
	b.requests = append(b.requests, r)
}

func (b *slidesBuilder) nextID() string {
	b.elements++
	return fmt.Sprintf("%s_e%02d", b.pageID, b.elements)
}

// predefinedLayout picks the Slides layout and the placeholders that take
// the title and subtitle; body content always goes into explicit shapes
func predefinedLayout(slide *entities.Slide) (layout, titlePh, subtitlePh string) {
	switch slide.Layout {
	case entities.LayoutTitle:
		return "TITLE", "CENTERED_TITLE", "SUBTITLE"
	case entities.LayoutSectionHeader:
		return "SECTION_HEADER", "TITLE", ""
	case entities.LayoutBlank:
		return "BLANK", "", ""
	}
	if slide.Title == nil {
		return "BLANK", "", ""
	}
	return "TITLE_ONLY", "TITLE", ""
}

func (b *slidesBuilder) slide(slide *entities.Slide, index int) {
	layout, titlePh, subtitlePh := predefinedLayout(slide)
	create := &CreateSlideRequest{
		ObjectID:             b.pageID,
		InsertionIndex:       index,
		SlideLayoutReference: LayoutReference{PredefinedLayout: layout},
	}
	titleID, subtitleID := "", ""
	if slide.Title != nil && titlePh != "" {
		titleID = b.pageID + "_title"
		create.PlaceholderIDMappings = append(create.PlaceholderIDMappings, LayoutPlaceholderIDMapping{
			LayoutPlaceholder: Placeholder{Type: titlePh},
			ObjectID:          titleID,
		})
	}
	if slide.Subtitle != nil && subtitlePh != "" {
		subtitleID = b.pageID + "_subtitle"
		create.PlaceholderIDMappings = append(create.PlaceholderIDMappings, LayoutPlaceholderIDMapping{
			LayoutPlaceholder: Placeholder{Type: subtitlePh},
			ObjectID:          subtitleID,
		})
	}
	b.add(SlidesRequest{CreateSlide: create})

	if bg := slide.Background; bg != nil {
		switch {
		case bg.Color != nil:
			b.add(SlidesRequest{UpdatePageProperties: &UpdatePagePropertiesRequest{
				ObjectID:       b.pageID,
				PageProperties: PageProperties{PageBackgroundFill: BackgroundFill{SolidFill: &SolidFill{Color: opaque(*bg.Color)}}},
				Fields:         "pageBackgroundFill.solidFill.color",
			}})
			b.textColor = contrastColor(*bg.Color)
		case bg.Image != "":
			b.add(SlidesRequest{UpdatePageProperties: &UpdatePagePropertiesRequest{
				ObjectID:       b.pageID,
				PageProperties: PageProperties{PageBackgroundFill: BackgroundFill{StretchedPictureFill: &StretchedPictureFill{ContentURL: bg.Image}}},
				Fields:         "pageBackgroundFill.stretchedPictureFill.contentUrl",
			}})
		}
	}

	frames := titleFrames(slide)
	if slide.Title != nil {
		base := TextStyle{Bold: true, ForegroundColor: optional(b.textColor)}
		if titleID != "" {
			b.fillText(titleID, *slide.Title, nil, base, "bold,foregroundColor")
		} else {
			b.textBox(frames.title, *slide.Title, nil, b.baseStyle(frames.titleSize, b.textColor, true))
		}
	}
	if slide.Subtitle != nil {
		if subtitleID != "" {
			b.fillText(subtitleID, *slide.Subtitle, nil, TextStyle{ForegroundColor: optional(b.theme.SecondaryColor)}, "foregroundColor")
		} else {
			b.textBox(frames.subtitle, *slide.Subtitle, nil, b.baseStyle(frames.subtitleSize, b.theme.SecondaryColor, false))
		}
	}

	size := bodyFontSize(b.theme)
	for _, p := range placeElements(slide, frames.bodyTop, size) {
		b.element(p.element, p.frame, size)
	}
}

func (b *slidesBuilder) baseStyle(size float64, color entities.RGB, bold bool) TextStyle {
	return TextStyle{
		Bold:            bold,
		FontFamily:      b.theme.FontFamily,
		FontSize:        &Dimension{Magnitude: size, Unit: "PT"},
		ForegroundColor: optional(color),
	}
}

const baseStyleFields = "bold,fontFamily,fontSize,foregroundColor"

// textBox creates a text box and fills it; it returns the shape ID
func (b *slidesBuilder) textBox(frame box, text string, spans []entities.StyleSpan, base TextStyle) string {
	id := b.nextID()
	b.add(SlidesRequest{CreateShape: &CreateShapeRequest{
		ObjectID:          id,
		ShapeType:         "TEXT_BOX",
		ElementProperties: b.placement(frame),
	}})
	b.fillText(id, text, spans, base, baseStyleFields)
	return id
}

// fillText inserts text, applies the base style to all of it, then one
// style request per formatted run
func (b *slidesBuilder) fillText(id, text string, spans []entities.StyleSpan, base TextStyle, fields string) {
	if text == "" {
		return
	}
	b.add(SlidesRequest{InsertText: &InsertTextRequest{ObjectID: id, Text: text}})
	b.add(SlidesRequest{UpdateTextStyle: &UpdateTextStyleRequest{
		ObjectID:  id,
		TextRange: TextRange{Type: "ALL"},
		Style:     base,
		Fields:    fields,
	}})

	offsets := utf16Offsets(text)
	runeStart := 0
	for _, run := range styledRuns(text, spans) {
		n := len([]rune(run.Text))
		style, fields := runStyle(run.Style)
		if fields != "" {
			b.add(SlidesRequest{UpdateTextStyle: &UpdateTextStyleRequest{
				ObjectID:  id,
				TextRange: fixedRange(offsets[runeStart], offsets[runeStart+n]),
				Style:     style,
				Fields:    fields,
			}})
		}
		runeStart += n
	}
}

// runStyle converts inline formatting into a style and its field mask
func runStyle(s entities.StyleSpan) (TextStyle, string) {
	var (
		style  TextStyle
		fields []string
	)
	if s.Bold {
		style.Bold = true
		fields = append(fields, "bold")
	}
	if s.Italic {
		style.Italic = true
		fields = append(fields, "italic")
	}
	if s.Strikethrough {
		style.Strikethrough = true
		fields = append(fields, "strikethrough")
	}
	if s.Code {
		style.FontFamily = "Courier New"
		fields = append(fields, "fontFamily")
	}
	if s.Link != "" {
		style.Link = &Link{URL: s.Link}
		fields = append(fields, "link")
	}
	return style, strings.Join(fields, ",")
}

func (b *slidesBuilder) element(e entities.SlideElement, frame box, size float64) {
	switch el := e.(type) {
	case *entities.Text:
		s, bold := size, false
		if el.Level > 0 {
			s, bold = headingSize(size, el.Level), true
		}
		b.textBox(frame, el.Content, el.Spans, b.baseStyle(s, b.textColor, bold))

	case *entities.BulletList, *entities.NumberedList:
		text, spans := listText(el)
		id := b.textBox(frame, text, spans, b.baseStyle(size, b.textColor, false))
		preset := "BULLET_DISC_CIRCLE_SQUARE"
		if _, ok := el.(*entities.NumberedList); ok {
			preset = "NUMBERED_DIGIT_ALPHA_ROMAN"
		}
		if text != "" {
			b.add(SlidesRequest{CreateParagraphBullets: &CreateParagraphBulletsRequest{
				ObjectID:     id,
				TextRange:    TextRange{Type: "ALL"},
				BulletPreset: preset,
			}})
		}

	case *entities.Code:
		id := b.nextID()
		b.add(SlidesRequest{CreateShape: &CreateShapeRequest{
			ObjectID:          id,
			ShapeType:         "TEXT_BOX",
			ElementProperties: b.placement(frame),
		}})
		b.add(SlidesRequest{UpdateShapeProperties: &UpdateShapePropertiesRequest{
			ObjectID: id,
			ShapeProperties: ShapeProperties{ShapeBackgroundFill: BackgroundFill{
				SolidFill: &SolidFill{Color: opaque(entities.RGB{R: 0xf4, G: 0xf4, B: 0xf4})},
			}},
			Fields: "shapeBackgroundFill.solidFill.color",
		}})
		style := TextStyle{
			FontFamily:      "Courier New",
			FontSize:        &Dimension{Magnitude: size * 0.8, Unit: "PT"},
			ForegroundColor: optional(entities.RGB{R: 0x22, G: 0x22, B: 0x22}),
		}
		b.fillText(id, el.Content, nil, style, "fontFamily,fontSize,foregroundColor")
		b.highlightLines(id, el)

	case *entities.Image:
		b.add(SlidesRequest{CreateImage: &CreateImageRequest{
			ObjectID:          b.nextID(),
			URL:               el.URL,
			ElementProperties: b.placement(imageFrame(el, frame)),
		}})

	case *entities.Table:
		b.table(el, frame, size*0.8)
	}
}

// highlightLines shades the highlighted lines of a code box
func (b *slidesBuilder) highlightLines(id string, code *entities.Code) {
	if len(code.Highlight) == 0 || code.Content == "" {
		return
	}
	offsets := utf16Offsets(code.Content)
	runeStart := 0
	for i, line := range codeLines(code.Content) {
		n := len([]rune(line))
		if code.IsHighlighted(i+1) && n > 0 {
			b.add(SlidesRequest{UpdateTextStyle: &UpdateTextStyleRequest{
				ObjectID:  id,
				TextRange: fixedRange(offsets[runeStart], offsets[runeStart+n]),
				Style:     TextStyle{BackgroundColor: optional(entities.RGB{R: 0xff, G: 0xf3, B: 0xb0})},
				Fields:    "backgroundColor",
			}})
		}
		runeStart += n + 1
	}
}

func (b *slidesBuilder) table(t *entities.Table, frame box, size float64) {
	cols := t.Columns()
	if cols == 0 {
		return
	}
	rows := t.Rows
	if t.Header != nil {
		rows = append([][]string{t.Header}, rows...)
	}
	if len(rows) == 0 {
		return
	}

	id := b.nextID()
	b.add(SlidesRequest{CreateTable: &CreateTableRequest{
		ObjectID:          id,
		ElementProperties: b.placement(frame),
		Rows:              len(rows),
		Columns:           cols,
	}})

	for r, row := range rows {
		for c := 0; c < cols && c < len(row); c++ {
			if row[c] == "" {
				continue
			}
			loc := &TableCellLocation{RowIndex: r, ColumnIndex: c}
			b.add(SlidesRequest{InsertText: &InsertTextRequest{ObjectID: id, CellLocation: loc, Text: row[c]}})

			style := b.baseStyle(size, b.textColor, r == 0 && t.Header != nil)
			b.add(SlidesRequest{UpdateTextStyle: &UpdateTextStyleRequest{
				ObjectID:     id,
				CellLocation: loc,
				TextRange:    TextRange{Type: "ALL"},
				Style:        style,
				Fields:       baseStyleFields,
			}})
			if align := slidesAlignment(t, c); align != "" {
				b.add(SlidesRequest{UpdateParagraphStyle: &UpdateParagraphStyleRequest{
					ObjectID:     id,
					CellLocation: loc,
					TextRange:    TextRange{Type: "ALL"},
					Style:        ParagraphStyle{Alignment: align},
					Fields:       "alignment",
				}})
			}
		}
	}
}

func slidesAlignment(t *entities.Table, col int) string {
	if col >= len(t.Align) {
		return ""
	}
	switch t.Align[col] {
	case "left":
		return "START"
	case "center":
		return "CENTER"
	case "right":
		return "END"
	}
	return ""
}

func (b *slidesBuilder) placement(frame box) PageElementProperties {
	return PageElementProperties{
		PageObjectID: b.pageID,
		Size: &Size{
			Width:  Dimension{Magnitude: frame.w, Unit: "PT"},
			Height: Dimension{Magnitude: frame.h, Unit: "PT"},
		},
		Transform: &AffineTransform{ScaleX: 1, ScaleY: 1, TranslateX: frame.x, TranslateY: frame.y, Unit: "PT"},
	}
}

// listText lays a list out as one paragraph per item. Leading tabs set the
// nesting level; createParagraphBullets consumes them.
func listText(e entities.SlideElement) (string, []entities.StyleSpan) {
	var (
		sb    strings.Builder
		spans []entities.StyleSpan
		pos   int
	)
	for i, line := range flattenList(e, 0) {
		if i > 0 {
			sb.WriteByte('\n')
			pos++
		}
		prefix := strings.Repeat("\t", line.Depth)
		if line.Checked != nil {
			if *line.Checked {
				prefix += "☑ "
			} else {
				prefix += "☐ "
			}
		}
		sb.WriteString(prefix)
		pos += len([]rune(prefix))
		spans = append(spans, shiftSpans(line.Spans, pos)...)
		sb.WriteString(line.Text)
		pos += len([]rune(line.Text))
	}
	return sb.String(), spans
}

// utf16Offsets maps each rune index of s, plus the end, to its UTF-16
// code unit offset
func utf16Offsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	n := 0
	for _, r := range s {
		offsets = append(offsets, n)
		n += utf16.RuneLen(r)
	}
	return append(offsets, n)
}

func fixedRange(start, end int) TextRange {
	return TextRange{Type: "FIXED_RANGE", StartIndex: &start, EndIndex: &end}
}

func opaque(c entities.RGB) OpaqueColor {
	r, g, bl := c.Fractions()
	return OpaqueColor{RGBColor: RGBColor{Red: r, Green: g, Blue: bl}}
}

func optional(c entities.RGB) *OptionalColor {
	return &OptionalColor{OpaqueColor: opaque(c)}
}
