package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

const emuPerPoint = 12700

// pptxLayout maps an IR layout onto the slide layout part that carries it
type pptxLayout struct {
	layout entities.Layout
	typ    string
	name   string
}

var pptxLayouts = []pptxLayout{
	{entities.LayoutTitle, "title", "Title Slide"},
	{entities.LayoutTitleAndBody, "obj", "Title and Content"},
	{entities.LayoutTwoColumn, "twoObj", "Two Content"},
	{entities.LayoutBlank, "blank", "Blank"},
	{entities.LayoutSectionHeader, "secHead", "Section Header"},
}

// layoutIndex returns the 1-based slide layout part for l
func layoutIndex(l entities.Layout) int {
	for i, pl := range pptxLayouts {
		if pl.layout == l {
			return i + 1
		}
	}
	return 2
}

// PPTXGenerator writes a PresentationML package. Pictures and backgrounds
// stay external links; nothing is downloaded.
type PPTXGenerator struct{}

var _ ports.Generator = (*PPTXGenerator)(nil)

// NewPPTXGenerator creates a new PPTX generator
func NewPPTXGenerator() *PPTXGenerator {
	return &PPTXGenerator{}
}

func (g *PPTXGenerator) Format() string    { return "pptx" }
func (g *PPTXGenerator) Extension() string { return ".pptx" }
func (g *PPTXGenerator) MimeType() string {
	return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
}

// pptxPart is one named member of the package
type pptxPart struct {
	name string
	body any
}

// Generate builds every part in memory and then streams the zip
func (g *PPTXGenerator) Generate(ctx context.Context, presentation *entities.Presentation, w io.Writer, options ports.ExportOptions) error {
	theme := presentation.EffectiveTheme()

	types := contentTypes{
		Defaults: []ctDefault{
			{Extension: "rels", ContentType: ctRelationships},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Overrides: []ctOverride{
			{PartName: "/ppt/presentation.xml", ContentType: ctPresentation},
			{PartName: "/ppt/slideMasters/slideMaster1.xml", ContentType: ctSlideMaster},
			{PartName: "/ppt/notesMasters/notesMaster1.xml", ContentType: ctNotesMaster},
			{PartName: "/ppt/theme/theme1.xml", ContentType: ctTheme},
			{PartName: "/ppt/theme/theme2.xml", ContentType: ctTheme},
			{PartName: "/docProps/core.xml", ContentType: ctCoreProps},
		},
	}
	parts := []pptxPart{
		{"_rels/.rels", relationships{Rels: []relationship{
			{ID: "rId1", Type: relOfficeDoc, Target: "ppt/presentation.xml"},
			{ID: "rId2", Type: relCoreProps, Target: "docProps/core.xml"},
		}}},
		{"docProps/core.xml", coreProperties{
			CP:      "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
			DC:      "http://purl.org/dc/elements/1.1/",
			Title:   documentTitle(presentation, options),
			Creator: presentation.Metadata.Author,
		}},
		{"ppt/theme/theme1.xml", themePart(theme)},
		{"ppt/theme/theme2.xml", themePart(theme)},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterPart()},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRels()},
		{"ppt/notesMasters/notesMaster1.xml", notesMasterPart()},
		{"ppt/notesMasters/_rels/notesMaster1.xml.rels", relationships{Rels: []relationship{
			{ID: "rId1", Type: relTheme, Target: "../theme/theme2.xml"},
		}}},
	}
	for i, pl := range pptxLayouts {
		name := fmt.Sprintf("slideLayout%d.xml", i+1)
		types.Overrides = append(types.Overrides, ctOverride{PartName: "/ppt/slideLayouts/" + name, ContentType: ctSlideLayout})
		parts = append(parts,
			pptxPart{"ppt/slideLayouts/" + name, slideLayoutPart(pl)},
			pptxPart{"ppt/slideLayouts/_rels/" + name + ".rels", relationships{Rels: []relationship{
				{ID: "rId1", Type: relSlideMaster, Target: "../slideMasters/slideMaster1.xml"},
			}}},
		)
	}

	pres := presentationXML{
		pmlNamespaces: newPMLNamespaces(),
		Masters:       []idRef{{ID: 2147483648, RID: "rId1"}},
		NotesMaster:   []idRef{{RID: "rId3"}},
		SlideSize:     extent{CX: emu(slideWidthPt), CY: emu(slideHeightPt)},
		NotesSize:     extent{CX: 6858000, CY: 9144000},
	}
	presRels := relationships{Rels: []relationship{
		{ID: "rId1", Type: relSlideMaster, Target: "slideMasters/slideMaster1.xml"},
		{ID: "rId2", Type: relTheme, Target: "theme/theme1.xml"},
		{ID: "rId3", Type: relNotesMaster, Target: "notesMasters/notesMaster1.xml"},
	}}

	for i := range presentation.Slides {
		if err := ctx.Err(); err != nil {
			return err
		}
		slide := &presentation.Slides[i]
		n := i + 1
		rid := "rId" + strconv.Itoa(len(presRels.Rels)+1)
		presRels.Rels = append(presRels.Rels, relationship{ID: rid, Type: relSlide, Target: fmt.Sprintf("slides/slide%d.xml", n)})
		pres.Slides = append(pres.Slides, idRef{ID: uint32(256 + i), RID: rid})

		b := newSlideBuilder(theme)
		b.rel(relSlideLayout, fmt.Sprintf("../slideLayouts/slideLayout%d.xml", layoutIndex(slide.Layout)), false)
		doc := b.build(slide)

		types.Overrides = append(types.Overrides, ctOverride{PartName: fmt.Sprintf("/ppt/slides/slide%d.xml", n), ContentType: ctSlide})
		if notes, ok := slideNotes(slide, options); ok {
			b.rel(relNotesSlide, fmt.Sprintf("../notesSlides/notesSlide%d.xml", n), false)
			types.Overrides = append(types.Overrides, ctOverride{PartName: fmt.Sprintf("/ppt/notesSlides/notesSlide%d.xml", n), ContentType: ctNotesSlide})
			parts = append(parts,
				pptxPart{fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), notesPart(notes, theme)},
				pptxPart{fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", n), relationships{Rels: []relationship{
					{ID: "rId1", Type: relNotesMaster, Target: "../notesMasters/notesMaster1.xml"},
					{ID: "rId2", Type: relSlide, Target: fmt.Sprintf("../slides/slide%d.xml", n)},
				}}},
			)
		}
		parts = append(parts,
			pptxPart{fmt.Sprintf("ppt/slides/slide%d.xml", n), doc},
			pptxPart{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), relationships{Rels: b.rels}},
		)
	}
	parts = append(parts,
		pptxPart{"ppt/presentation.xml", pres},
		pptxPart{"ppt/_rels/presentation.xml.rels", presRels},
	)

	zw := zip.NewWriter(w)
	if err := writePart(zw, "[Content_Types].xml", types); err != nil {
		return err
	}
	for _, p := range parts {
		if err := writePart(zw, p.name, p.body); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing package: %w", err)
	}
	return nil
}

// writePart adds one part; strings are written verbatim, anything else is
// marshalled as XML
func writePart(zw *zip.Writer, name string, body any) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating part %s: %w", name, err)
	}
	if _, err := io.WriteString(f, xml.Header); err != nil {
		return fmt.Errorf("writing part %s: %w", name, err)
	}
	if s, ok := body.(string); ok {
		_, err = io.WriteString(f, s)
	} else {
		err = xml.NewEncoder(f).Encode(body)
	}
	if err != nil {
		return fmt.Errorf("writing part %s: %w", name, err)
	}
	return nil
}

func emu(pt float64) int64 {
	return int64(math.Round(pt * emuPerPoint))
}

func (b box) transform() *transform {
	return &transform{
		Off: point{X: emu(b.x), Y: emu(b.y)},
		Ext: extent{CX: emu(b.w), CY: emu(b.h)},
	}
}

func hexVal(c entities.RGB) string {
	return strings.ToUpper(strings.TrimPrefix(c.Hex(), "#"))
}

func fillOf(c entities.RGB) *solidFill {
	return &solidFill{Color: srgbColor{Val: hexVal(c)}}
}

// slideBuilder accumulates one slide's shape tree and relationships
type slideBuilder struct {
	theme     entities.ThemeConfig
	textColor entities.RGB
	rels      []relationship
	links     map[string]string
	nextShape int
	shapes    []any
}

func newSlideBuilder(theme entities.ThemeConfig) *slideBuilder {
	return &slideBuilder{
		theme:     theme,
		textColor: theme.PrimaryColor,
		links:     make(map[string]string),
		nextShape: 1,
	}
}

func (b *slideBuilder) rel(typ, target string, external bool) string {
	r := relationship{ID: "rId" + strconv.Itoa(len(b.rels)+1), Type: typ, Target: target}
	if external {
		r.TargetMode = "External"
	}
	b.rels = append(b.rels, r)
	return r.ID
}

func (b *slideBuilder) linkRel(url string) string {
	if id, ok := b.links[url]; ok {
		return id
	}
	id := b.rel(relHyperlink, url, true)
	b.links[url] = id
	return id
}

func (b *slideBuilder) shapeID() int {
	b.nextShape++
	return b.nextShape
}

func (b *slideBuilder) baseRun(size float64, color entities.RGB) runProps {
	return runProps{
		Lang:  "en-US",
		Sz:    int(math.Round(size * 100)),
		Fill:  fillOf(color),
		Latin: &typeface{Typeface: b.theme.FontFamily},
	}
}

// paragraphs turns styled text into DrawingML paragraphs, one per line
func (b *slideBuilder) paragraphs(content string, spans []entities.StyleSpan, base runProps, ppr *paraProps) []paragraph {
	paras := []paragraph{{PPr: ppr}}
	for _, r := range styledRuns(content, spans) {
		for i, piece := range strings.Split(r.Text, "\n") {
			if i > 0 {
				paras = append(paras, paragraph{PPr: ppr})
			}
			if piece == "" {
				continue
			}
			props := base
			if r.Style.Bold {
				props.B = "1"
			}
			if r.Style.Italic {
				props.I = "1"
			}
			if r.Style.Strikethrough {
				props.Strike = "sngStrike"
			}
			if r.Style.Code {
				props.Latin = &typeface{Typeface: "Courier New"}
			}
			if r.Style.Link != "" {
				props.Link = &hyperlink{RID: b.linkRel(r.Style.Link)}
			}
			last := &paras[len(paras)-1]
			last.Runs = append(last.Runs, textRun{RPr: props, T: piece})
		}
	}
	return paras
}

func (b *slideBuilder) textShape(name string, frame box, body *txBody, fill *solidFill) {
	id := b.shapeID()
	b.shapes = append(b.shapes, &spShape{
		NvSpPr: nvSpPr{
			CNvPr:   cNvPr{ID: id, Name: fmt.Sprintf("%s %d", name, id)},
			CNvSpPr: cNvSpPr{TxBox: "1"},
		},
		SpPr: spPr{
			Xfrm: frame.transform(),
			Geom: &prstGeom{Prst: "rect"},
			Fill: fill,
		},
		TxBody: body,
	})
}

func (b *slideBuilder) build(slide *entities.Slide) *slideXML {
	doc := &slideXML{pmlNamespaces: newPMLNamespaces()}
	if bg := slide.Background; bg != nil {
		switch {
		case bg.Color != nil:
			doc.CSld.Bg = &background{Fill: fillOf(*bg.Color)}
			b.textColor = contrastColor(*bg.Color)
		case bg.Image != "":
			doc.CSld.Bg = &background{Blip: &blipFill{Blip: blipRef{Link: b.rel(relImage, bg.Image, true)}}}
		}
	}

	size := bodyFontSize(b.theme)
	frames := titleFrames(slide)
	align := ""
	if frames.centered {
		align = "ctr"
	}
	if slide.Title != nil {
		b.heading("Title", *slide.Title, frames.title, frames.titleSize, b.textColor, "b", align)
	}
	if slide.Subtitle != nil {
		b.heading("Subtitle", *slide.Subtitle, frames.subtitle, frames.subtitleSize, b.theme.SecondaryColor, "t", align)
	}
	for _, p := range placeElements(slide, frames.bodyTop, size) {
		b.element(p.element, p.frame, size)
	}

	doc.CSld.SpTree = shapeTree{
		NvGrpSpPr: nvGrpSpPr{CNvPr: cNvPr{ID: 1, Name: ""}},
		Shapes:    b.shapes,
	}
	return doc
}

func (b *slideBuilder) heading(name, text string, frame box, size float64, color entities.RGB, anchor, align string) {
	base := b.baseRun(size, color)
	if name == "Title" {
		base.B = "1"
	}
	var ppr *paraProps
	if align != "" {
		ppr = &paraProps{Algn: align}
	}
	b.textShape(name, frame, &txBody{
		BodyPr: bodyPr{Anchor: anchor, AutoFit: &struct{}{}},
		Paras:  b.paragraphs(text, nil, base, ppr),
	}, nil)
}

func (b *slideBuilder) element(e entities.SlideElement, frame box, size float64) {
	switch el := e.(type) {
	case *entities.Text:
		base := b.baseRun(size, b.textColor)
		if el.Level > 0 {
			base.Sz = int(math.Round(headingSize(size, el.Level) * 100))
			base.B = "1"
		}
		b.textShape("Text", frame, &txBody{
			BodyPr: bodyPr{AutoFit: &struct{}{}},
			Paras:  b.paragraphs(el.Content, el.Spans, base, nil),
		}, nil)

	case *entities.BulletList, *entities.NumberedList:
		body := &txBody{BodyPr: bodyPr{AutoFit: &struct{}{}}}
		for _, line := range flattenList(el, 0) {
			ppr := &paraProps{
				Lvl:    line.Depth,
				MarL:   emu(27 * float64(line.Depth+1)),
				Indent: -emu(27),
			}
			text, spans := line.Text, line.Spans
			switch {
			case line.Checked != nil:
				ppr.BuNone = &struct{}{}
				check := "☐ "
				if *line.Checked {
					check = "☑ "
				}
				text, spans = check+text, shiftSpans(spans, 2)
			case line.Number > 0:
				ppr.BuAutoNum = &autoNum{Type: "arabicPeriod"}
				if line.Number != 1 {
					ppr.BuAutoNum.StartAt = line.Number
				}
			default:
				ppr.BuChar = &bulletChr{Char: "•"}
			}
			body.Paras = append(body.Paras, b.paragraphs(text, spans, b.baseRun(size, b.textColor), ppr)...)
		}
		b.textShape("List", frame, body, nil)

	case *entities.Code:
		codeSize := size * 0.8
		body := &txBody{BodyPr: bodyPr{Wrap: "none"}}
		for i, line := range codeLines(el.Content) {
			p := paragraph{}
			if line != "" {
				props := b.baseRun(codeSize, entities.RGB{R: 0x22, G: 0x22, B: 0x22})
				props.Latin = &typeface{Typeface: "Courier New"}
				if el.IsHighlighted(i + 1) {
					props.Highlight = &solidFill{Color: srgbColor{Val: "FFF3B0"}}
				}
				p.Runs = []textRun{{RPr: props, T: strings.ReplaceAll(line, "\t", "    ")}}
			}
			body.Paras = append(body.Paras, p)
		}
		b.textShape("Code", frame, body, &solidFill{Color: srgbColor{Val: "F4F4F4"}})

	case *entities.Image:
		id := b.shapeID()
		pic := &picShape{
			NvPicPr: nvPicPr{CNvPr: cNvPr{ID: id, Name: fmt.Sprintf("Picture %d", id), Descr: el.Alt}},
			BlipFill: blipFill{
				Blip: blipRef{Link: b.rel(relImage, el.URL, true)},
			},
			SpPr: spPr{Xfrm: imageFrame(el, frame).transform(), Geom: &prstGeom{Prst: "rect"}},
		}
		pic.NvPicPr.CNvPicPr.Locks.NoChangeAspect = "1"
		b.shapes = append(b.shapes, pic)

	case *entities.Table:
		b.table(el, frame, size*0.8)
	}
}

func (b *slideBuilder) table(t *entities.Table, frame box, size float64) {
	cols := t.Columns()
	if cols == 0 {
		return
	}
	colW := emu(frame.w / float64(cols))
	rowH := emu(size * 1.8)

	tbl := tableXML{Pr: tableProps{BandRow: "1"}}
	for i := 0; i < cols; i++ {
		tbl.Grid = append(tbl.Grid, gridCol{W: colW})
	}
	row := func(cells []string, header bool) tableRow {
		r := tableRow{H: rowH}
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			base := b.baseRun(size, b.textColor)
			if header {
				base.B = "1"
			}
			var ppr *paraProps
			if i < len(t.Align) {
				switch t.Align[i] {
				case "center":
					ppr = &paraProps{Algn: "ctr"}
				case "right":
					ppr = &paraProps{Algn: "r"}
				case "left":
					ppr = &paraProps{Algn: "l"}
				}
			}
			r.Cells = append(r.Cells, tableCell{TxBody: txBody{Paras: b.paragraphs(cell, nil, base, ppr)}})
		}
		return r
	}
	if t.Header != nil {
		tbl.Pr.FirstRow = "1"
		tbl.Rows = append(tbl.Rows, row(t.Header, true))
	}
	for _, r := range t.Rows {
		tbl.Rows = append(tbl.Rows, row(r, false))
	}

	id := b.shapeID()
	frameShp := &frameShape{
		NvPr:    nvGraphicFrameP{CNvPr: cNvPr{ID: id, Name: fmt.Sprintf("Table %d", id)}},
		Xfrm:    *frame.transform(),
		Graphic: graphicData{URI: uriTable, Table: tbl},
	}
	frameShp.NvPr.CNvGFP.Locks.NoGrp = "1"
	b.shapes = append(b.shapes, frameShp)
}

func notesPart(notes string, theme entities.ThemeConfig) *notesXML {
	b := newSlideBuilder(theme)
	base := b.baseRun(12, entities.RGB{})
	id := b.shapeID()
	sp := &spShape{
		NvSpPr: nvSpPr{
			CNvPr:   cNvPr{ID: id, Name: "Notes Placeholder 1"},
			CNvSpPr: cNvSpPr{Locks: &noGrpLock{NoGrp: "1"}},
			NvPr:    nvPr{Ph: &placeholder{Type: "body", Idx: "1"}},
		},
		TxBody: &txBody{Paras: b.paragraphs(notes, nil, base, nil)},
	}
	return &notesXML{
		pmlNamespaces: newPMLNamespaces(),
		CSld: commonSlide{SpTree: shapeTree{
			NvGrpSpPr: nvGrpSpPr{CNvPr: cNvPr{ID: 1, Name: ""}},
			Shapes:    []any{sp},
		}},
	}
}

// Static parts. They only carry what the slides reference.

const pmlRootAttrs = `xmlns:a="` + nsDrawingML + `" xmlns:r="` + nsRelationships + `" xmlns:p="` + nsPresentation + `"`

const emptyShapeTree = `<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree>`

const colorMap = `<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" ` +
	`accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`

func slideMasterPart() string {
	var ids strings.Builder
	for i := range pptxLayouts {
		fmt.Fprintf(&ids, `<p:sldLayoutId id="%d" r:id="rId%d"/>`, 2147483649+i, i+1)
	}
	return `<p:sldMaster ` + pmlRootAttrs + `><p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg>` +
		emptyShapeTree + `</p:cSld>` + colorMap + `<p:sldLayoutIdLst>` + ids.String() + `</p:sldLayoutIdLst></p:sldMaster>`
}

func slideMasterRels() relationships {
	var rels relationships
	for i := range pptxLayouts {
		rels.Rels = append(rels.Rels, relationship{
			ID:     "rId" + strconv.Itoa(i+1),
			Type:   relSlideLayout,
			Target: fmt.Sprintf("../slideLayouts/slideLayout%d.xml", i+1),
		})
	}
	rels.Rels = append(rels.Rels, relationship{
		ID:     "rId" + strconv.Itoa(len(pptxLayouts)+1),
		Type:   relTheme,
		Target: "../theme/theme1.xml",
	})
	return rels
}

func slideLayoutPart(l pptxLayout) string {
	return fmt.Sprintf(`<p:sldLayout %s type="%s" preserve="1"><p:cSld name="%s">%s</p:cSld>`+
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`, pmlRootAttrs, l.typ, l.name, emptyShapeTree)
}

func notesMasterPart() string {
	return `<p:notesMaster ` + pmlRootAttrs + `><p:cSld>` + emptyShapeTree + `</p:cSld>` + colorMap + `</p:notesMaster>`
}

func themePart(theme entities.ThemeConfig) string {
	var font bytes.Buffer
	_ = xml.EscapeText(&font, []byte(theme.FontFamily))

	clr := func(name, val string) string {
		return fmt.Sprintf(`<a:%s><a:srgbClr val="%s"/></a:%s>`, name, val, name)
	}
	fonts := fmt.Sprintf(`<a:latin typeface="%s"/><a:ea typeface=""/><a:cs typeface=""/>`, font.String())
	phFill := `<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`
	line := func(w int) string { return fmt.Sprintf(`<a:ln w="%d">%s</a:ln>`, w, phFill) }
	effect := `<a:effectStyle><a:effectLst/></a:effectStyle>`

	return `<a:theme xmlns:a="` + nsDrawingML + `" name="slidemark"><a:themeElements>` +
		`<a:clrScheme name="slidemark">` +
		clr("dk1", "000000") + clr("lt1", "FFFFFF") +
		clr("dk2", hexVal(theme.PrimaryColor)) + clr("lt2", "EEEEEE") +
		clr("accent1", hexVal(theme.SecondaryColor)) + clr("accent2", "ED7D31") + clr("accent3", "A5A5A5") +
		clr("accent4", "FFC000") + clr("accent5", "5B9BD5") + clr("accent6", "70AD47") +
		clr("hlink", "0563C1") + clr("folHlink", "954F72") +
		`</a:clrScheme>` +
		`<a:fontScheme name="slidemark"><a:majorFont>` + fonts + `</a:majorFont><a:minorFont>` + fonts + `</a:minorFont></a:fontScheme>` +
		`<a:fmtScheme name="slidemark">` +
		`<a:fillStyleLst>` + phFill + phFill + phFill + `</a:fillStyleLst>` +
		`<a:lnStyleLst>` + line(6350) + line(12700) + line(19050) + `</a:lnStyleLst>` +
		`<a:effectStyleLst>` + effect + effect + effect + `</a:effectStyleLst>` +
		`<a:bgFillStyleLst>` + phFill + phFill + phFill + `</a:bgFillStyleLst>` +
		`</a:fmtScheme></a:themeElements></a:theme>`
}
