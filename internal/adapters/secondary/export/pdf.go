package export

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// Handout page geometry in millimetres (A4 landscape)
const (
	pdfMargin      = 15.0
	pdfTitleSize   = 24.0
	pdfBodySize    = 13.0
	pdfCodeSize    = 10.0
	pdfNotesSize   = 10.0
	pdfLineHeight  = 6.5
	pdfCodeLine    = 4.6
	pdfIndentWidth = 7.0
)

// PDFGenerator writes a handout with one landscape page per slide. Text is
// drawn with the core Helvetica and Courier fonts, so characters outside
// Windows-1252 degrade.
type PDFGenerator struct{}

var _ ports.Generator = (*PDFGenerator)(nil)

// NewPDFGenerator creates a new PDF generator
func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{}
}

func (g *PDFGenerator) Format() string    { return "pdf" }
func (g *PDFGenerator) Extension() string { return ".pdf" }
func (g *PDFGenerator) MimeType() string  { return "application/pdf" }

// Generate lays out every slide and writes the document
func (g *PDFGenerator) Generate(ctx context.Context, presentation *entities.Presentation, w io.Writer, options ports.ExportOptions) error {
	theme := presentation.EffectiveTheme()

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(documentTitle(presentation, options), true)
	if presentation.Metadata.Author != "" {
		pdf.SetAuthor(presentation.Metadata.Author, true)
	}
	pdf.SetCreator("slidemark", true)

	h := &handout{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		theme: theme,
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 5, strconv.Itoa(pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	for i := range presentation.Slides {
		if err := ctx.Err(); err != nil {
			return err
		}
		h.slide(&presentation.Slides[i], options)
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("rendering slide %d: %w", i+1, err)
		}
	}
	if len(presentation.Slides) == 0 {
		pdf.AddPage()
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// handout carries the document being built
type handout struct {
	pdf   *gofpdf.Fpdf
	tr    func(string) string
	theme entities.ThemeConfig
}

func (h *handout) slide(slide *entities.Slide, options ports.ExportOptions) {
	pdf := h.pdf
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()

	if bg := slide.Background; bg != nil && bg.Color != nil {
		pdf.SetFillColor(int(bg.Color.R), int(bg.Color.G), int(bg.Color.B))
		pdf.Rect(0, 0, pageW, pageH, "F")
	}
	pdf.SetFillColor(int(h.theme.SecondaryColor.R), int(h.theme.SecondaryColor.G), int(h.theme.SecondaryColor.B))
	pdf.Rect(0, 0, 4, pageH, "F")

	textColor := h.theme.PrimaryColor
	if bg := slide.Background; bg != nil && bg.Color != nil {
		textColor = contrastColor(*bg.Color)
	}

	if slide.Title != nil {
		pdf.SetFont("Helvetica", "B", pdfTitleSize)
		pdf.SetTextColor(int(textColor.R), int(textColor.G), int(textColor.B))
		pdf.MultiCell(0, pdfTitleSize*0.45, h.tr(*slide.Title), "", "L", false)
	}
	if slide.Subtitle != nil {
		pdf.SetFont("Helvetica", "", pdfBodySize+3)
		pdf.SetTextColor(int(h.theme.SecondaryColor.R), int(h.theme.SecondaryColor.G), int(h.theme.SecondaryColor.B))
		pdf.MultiCell(0, pdfLineHeight+1, h.tr(*slide.Subtitle), "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetTextColor(int(textColor.R), int(textColor.G), int(textColor.B))
	for _, e := range slide.Elements {
		h.element(e)
		pdf.Ln(2)
	}

	if notes, ok := slideNotes(slide, options); ok {
		h.notes(notes)
	}
}

func (h *handout) element(e entities.SlideElement) {
	pdf := h.pdf
	switch el := e.(type) {
	case *entities.Text:
		style, size := "", pdfBodySize
		if el.Level > 0 {
			style, size = "B", pdfBodySize+max(0, 6-float64(el.Level))
		}
		pdf.SetFont("Helvetica", style, size)
		pdf.MultiCell(0, pdfLineHeight, h.tr(el.Content), "", "L", false)

	case *entities.BulletList, *entities.NumberedList:
		pdf.SetFont("Helvetica", "", pdfBodySize)
		left, _, _, _ := pdf.GetMargins()
		for _, line := range flattenList(el, 0) {
			indent := left + float64(line.Depth)*pdfIndentWidth
			pdf.SetX(indent)
			markerW := pdf.GetStringWidth(h.tr(line.Marker)) + 2
			pdf.CellFormat(markerW, pdfLineHeight, h.tr(line.Marker), "", 0, "L", false, 0, "")
			pdf.MultiCell(0, pdfLineHeight, h.tr(line.Text), "", "L", false)
		}

	case *entities.Image:
		h.imagePlaceholder(el)

	case *entities.Table:
		h.table(el)

	case *entities.Code:
		h.code(el)
	}
}

func (h *handout) imagePlaceholder(img *entities.Image) {
	pdf := h.pdf
	w, ht := 80.0, 45.0
	if img.Width != nil && *img.Width > 0 {
		w = min(*img.Width*0.3528, 180)
	}
	if img.Height != nil && *img.Height > 0 {
		ht = min(*img.Height*0.3528, 100)
	}
	x, y := pdf.GetX(), pdf.GetY()
	pdf.SetDrawColor(int(h.theme.SecondaryColor.R), int(h.theme.SecondaryColor.G), int(h.theme.SecondaryColor.B))
	pdf.SetDashPattern([]float64{2, 1}, 0)
	pdf.Rect(x, y, w, ht, "D")
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetFont("Helvetica", "I", pdfNotesSize)
	pdf.SetXY(x, y+ht/2-2)
	pdf.CellFormat(w, 4, h.tr(truncateRunes(imageLabel(img), 60)), "", 0, "C", false, 0, "")
	pdf.SetXY(x, y+ht)
	pdf.Ln(2)
}

func (h *handout) table(t *entities.Table) {
	pdf := h.pdf
	cols := t.Columns()
	if cols == 0 {
		return
	}
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	colW := (pageW - left - right) / float64(cols)

	align := func(i int) string {
		if i < len(t.Align) {
			switch t.Align[i] {
			case "center":
				return "C"
			case "right":
				return "R"
			}
		}
		return "L"
	}
	row := func(cells []string, header bool) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pdf.CellFormat(colW, pdfLineHeight+1, h.tr(truncateRunes(cell, 48)), "1", 0, align(i), header, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetDrawColor(180, 180, 180)
	if t.Header != nil {
		pdf.SetFont("Helvetica", "B", pdfBodySize-1)
		pdf.SetFillColor(235, 235, 240)
		row(t.Header, true)
	}
	pdf.SetFont("Helvetica", "", pdfBodySize-1)
	for _, r := range t.Rows {
		row(r, false)
	}
}

func (h *handout) code(c *entities.Code) {
	pdf := h.pdf
	pdf.SetFont("Courier", "", pdfCodeSize)
	for i, line := range codeLines(c.Content) {
		fill := c.IsHighlighted(i + 1)
		if fill {
			pdf.SetFillColor(255, 243, 176)
		}
		line = strings.ReplaceAll(line, "\t", "    ")
		pdf.CellFormat(0, pdfCodeLine, h.tr(line), "", 1, "L", fill, 0, "")
	}
}

func (h *handout) notes(notes string) {
	pdf := h.pdf
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()

	pdf.Ln(4)
	y := pdf.GetY()
	pdf.SetDrawColor(160, 160, 160)
	pdf.Line(left, y, pageW-right, y)
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", pdfNotesSize)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, pdfLineHeight-1.5, h.tr(notes), "", "L", false)
}
