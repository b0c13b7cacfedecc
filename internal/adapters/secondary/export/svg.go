package export

import (
	"context"
	"fmt"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo/float"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// Contact sheet geometry in SVG user units
const (
	sheetColumns   = 3
	thumbWidth     = 320.0
	thumbHeight    = 180.0
	thumbGap       = 24.0
	sheetHeader    = 72.0
	thumbPadding   = 14.0
	thumbTitleSize = 16.0
	thumbBodySize  = 10.0
	thumbMaxLines  = 9
	thumbLineChars = 52
)

// SVGGenerator draws a contact sheet: one thumbnail per slide laid out in
// a grid under the presentation title
type SVGGenerator struct{}

var _ ports.Generator = (*SVGGenerator)(nil)

// NewSVGGenerator creates a new SVG generator
func NewSVGGenerator() *SVGGenerator {
	return &SVGGenerator{}
}

func (g *SVGGenerator) Format() string    { return "svg" }
func (g *SVGGenerator) Extension() string { return ".svg" }
func (g *SVGGenerator) MimeType() string  { return "image/svg+xml" }

// Generate writes the sheet
func (g *SVGGenerator) Generate(ctx context.Context, presentation *entities.Presentation, w io.Writer, options ports.ExportOptions) error {
	theme := presentation.EffectiveTheme()
	count := len(presentation.Slides)
	rows := (count + sheetColumns - 1) / sheetColumns
	width := thumbGap + sheetColumns*(thumbWidth+thumbGap)
	height := sheetHeader + float64(rows)*(thumbHeight+thumbGap) + thumbGap

	doc := svg.New(w)
	doc.Start(width, height)
	doc.Title(documentTitle(presentation, options))
	doc.Rect(0, 0, width, height, "fill:#f5f5f5")
	doc.Text(thumbGap, sheetHeader/2+10, documentTitle(presentation, options),
		fmt.Sprintf("fill:%s;font-size:26px;font-weight:bold;font-family:%s", theme.PrimaryColor.Hex(), svgFont(theme)))

	for i := range presentation.Slides {
		if err := ctx.Err(); err != nil {
			return err
		}
		x := thumbGap + float64(i%sheetColumns)*(thumbWidth+thumbGap)
		y := sheetHeader + float64(i/sheetColumns)*(thumbHeight+thumbGap)
		drawThumbnail(doc, x, y, i, &presentation.Slides[i], theme)
	}

	doc.End()
	return nil
}

func drawThumbnail(doc *svg.SVG, x, y float64, index int, slide *entities.Slide, theme entities.ThemeConfig) {
	fill := "#ffffff"
	textColor := theme.PrimaryColor.Hex()
	if bg := slide.Background; bg != nil && bg.Color != nil {
		fill = bg.Color.Hex()
		textColor = contrastColor(*bg.Color).Hex()
	}

	doc.Gid("slide-" + slide.ID)
	doc.Rect(x, y, thumbWidth, thumbHeight, fmt.Sprintf("fill:%s;stroke:#cccccc;stroke-width:1", fill))
	doc.Rect(x, y, 6, thumbHeight, "fill:"+theme.SecondaryColor.Hex())

	cursor := y + thumbPadding + thumbTitleSize
	if slide.Title != nil {
		doc.Text(x+thumbPadding, cursor, truncateRunes(*slide.Title, thumbLineChars/2+6),
			fmt.Sprintf("fill:%s;font-size:%.0fpx;font-weight:bold;font-family:%s", textColor, thumbTitleSize, svgFont(theme)))
		cursor += thumbTitleSize
	}
	if slide.Subtitle != nil {
		doc.Text(x+thumbPadding, cursor, truncateRunes(*slide.Subtitle, thumbLineChars),
			fmt.Sprintf("fill:%s;font-size:12px;font-family:%s", theme.SecondaryColor.Hex(), svgFont(theme)))
		cursor += 16
	}

	lines := 0
	for _, e := range slide.Elements {
		style := fmt.Sprintf("fill:%s;font-size:%.0fpx;font-family:%s", textColor, thumbBodySize, svgFont(theme))
		if e.Kind() == entities.KindCode {
			style = fmt.Sprintf("fill:%s;font-size:%.0fpx;font-family:'Courier New',monospace", textColor, thumbBodySize)
		}
		if img, ok := e.(*entities.Image); ok {
			doc.Rect(x+thumbWidth-thumbPadding-80, y+thumbPadding, 80, 50,
				"fill:none;stroke:"+theme.SecondaryColor.Hex()+";stroke-dasharray:4,2")
			doc.Text(x+thumbWidth-thumbPadding-40, y+thumbPadding+29, truncateRunes(imageLabel(img), 14),
				"fill:#888888;font-size:8px;text-anchor:middle;font-family:sans-serif")
			continue
		}
		for _, line := range plainLines(e) {
			if lines == thumbMaxLines {
				break
			}
			doc.Text(x+thumbPadding, cursor, truncateRunes(line, thumbLineChars), `xml:space="preserve"`, style)
			cursor += thumbBodySize + 3
			lines++
		}
	}

	doc.Text(x+thumbWidth-8, y+thumbHeight-8, strconv.Itoa(index+1),
		"fill:#999999;font-size:10px;text-anchor:end;font-family:sans-serif")
	doc.Gend()
}

func imageLabel(img *entities.Image) string {
	if img.Alt != "" {
		return img.Alt
	}
	return img.URL
}

func svgFont(theme entities.ThemeConfig) string {
	return "'" + theme.FontFamily + "',sans-serif"
}

// contrastColor picks black or white text for a background
func contrastColor(bg entities.RGB) entities.RGB {
	r, g, b := bg.Fractions()
	if 0.299*r+0.587*g+0.114*b > 0.5 {
		return entities.RGB{}
	}
	return entities.RGB{R: 0xff, G: 0xff, B: 0xff}
}
