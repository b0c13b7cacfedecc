package export

import (
	"archive/zip"
	"context"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

const (
	defaultPNGWidth  = 1280
	defaultPNGHeight = 720
)

// goFonts holds the parsed embedded Go fonts
type goFonts struct {
	regular, bold, mono *truetype.Font
}

var loadGoFonts = sync.OnceValues(func() (*goFonts, error) {
	var fonts goFonts
	for _, f := range []struct {
		dst **truetype.Font
		ttf []byte
		nam string
	}{
		{&fonts.regular, goregular.TTF, "regular"},
		{&fonts.bold, gobold.TTF, "bold"},
		{&fonts.mono, gomono.TTF, "mono"},
	} {
		parsed, err := truetype.Parse(f.ttf)
		if err != nil {
			return nil, fmt.Errorf("parsing embedded %s font: %w", f.nam, err)
		}
		*f.dst = parsed
	}
	return &fonts, nil
})

// PNGGenerator renders every slide to a PNG and writes them as a zip
// archive of slide-NNN.png entries
type PNGGenerator struct {
	width  int
	height int
}

var _ ports.Generator = (*PNGGenerator)(nil)

// PNGOption configures a PNGGenerator
type PNGOption func(*PNGGenerator)

// WithPNGSize sets the pixel size of each slide image
func WithPNGSize(width, height int) PNGOption {
	return func(g *PNGGenerator) {
		if width > 0 && height > 0 {
			g.width, g.height = width, height
		}
	}
}

// NewPNGGenerator creates a new PNG generator
func NewPNGGenerator(opts ...PNGOption) *PNGGenerator {
	g := &PNGGenerator{width: defaultPNGWidth, height: defaultPNGHeight}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *PNGGenerator) Format() string    { return "png" }
func (g *PNGGenerator) Extension() string { return ".zip" }
func (g *PNGGenerator) MimeType() string  { return "application/zip" }

// Generate draws each slide and streams the archive to w
func (g *PNGGenerator) Generate(ctx context.Context, presentation *entities.Presentation, w io.Writer, options ports.ExportOptions) error {
	fonts, err := loadGoFonts()
	if err != nil {
		return err
	}
	theme := presentation.EffectiveTheme()

	zw := zip.NewWriter(w)
	for i := range presentation.Slides {
		if err := ctx.Err(); err != nil {
			return err
		}
		dc := g.draw(&presentation.Slides[i], i, theme, fonts)

		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:   fmt.Sprintf("slide-%03d.png", i+1),
			Method: zip.Store,
		})
		if err != nil {
			return fmt.Errorf("adding slide %d to archive: %w", i+1, err)
		}
		if err := png.Encode(entry, dc.Image()); err != nil {
			return fmt.Errorf("encoding slide %d: %w", i+1, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

// scale converts design points to pixels
func (g *PNGGenerator) scale(v float64) float64 {
	return v * float64(g.width) / slideWidthPt
}

func (g *PNGGenerator) draw(slide *entities.Slide, index int, theme entities.ThemeConfig, fonts *goFonts) *gg.Context {
	dc := gg.NewContext(g.width, g.height)
	width, height := float64(g.width), float64(g.height)

	textColor := theme.PrimaryColor
	dc.SetColor(color.White)
	if bg := slide.Background; bg != nil && bg.Color != nil {
		dc.SetColor(rgba(*bg.Color))
		textColor = contrastColor(*bg.Color)
	}
	dc.Clear()

	dc.SetColor(rgba(theme.SecondaryColor))
	dc.DrawRectangle(0, 0, g.scale(8), height)
	dc.Fill()

	margin := g.scale(48)
	maxWidth := width - 2*margin
	y := margin
	face := func(f *truetype.Font, size float64) font.Face {
		return truetype.NewFace(f, &truetype.Options{Size: g.scale(size)})
	}

	if slide.Title != nil {
		size := 40.0
		if slide.Layout == entities.LayoutTitle || slide.Layout == entities.LayoutSectionHeader {
			size = 52
		}
		dc.SetFontFace(face(fonts.bold, size))
		dc.SetColor(rgba(textColor))
		for _, line := range wrapText(dc, *slide.Title, maxWidth) {
			y += g.scale(size)
			dc.DrawString(line, margin, y)
		}
		y += g.scale(12)
	}
	if slide.Subtitle != nil {
		dc.SetFontFace(face(fonts.regular, 26))
		dc.SetColor(rgba(theme.SecondaryColor))
		for _, line := range wrapText(dc, *slide.Subtitle, maxWidth) {
			y += g.scale(26)
			dc.DrawString(line, margin, y)
		}
		y += g.scale(12)
	}

	body := bodyFontSize(theme)
	for _, e := range slide.Elements {
		if y > height-margin {
			break
		}
		y = g.drawElement(dc, e, margin, y, maxWidth, body, textColor, theme, fonts, face)
		y += g.scale(body * 0.5)
	}

	dc.SetFontFace(face(fonts.regular, 12))
	dc.SetColor(color.Gray{Y: 150})
	dc.DrawStringAnchored(strconv.Itoa(index+1), width-g.scale(16), height-g.scale(16), 1, 0)
	return dc
}

func (g *PNGGenerator) drawElement(dc *gg.Context, e entities.SlideElement, x, y, maxWidth, size float64,
	textColor entities.RGB, theme entities.ThemeConfig, fonts *goFonts, face func(*truetype.Font, float64) font.Face) float64 {
	lineHeight := g.scale(size * 1.4)
	dc.SetColor(rgba(textColor))

	switch el := e.(type) {
	case *entities.Text:
		f, s := fonts.regular, size
		if el.Level > 0 {
			f, s = fonts.bold, headingSize(size, el.Level)
			lineHeight = g.scale(s * 1.4)
		}
		dc.SetFontFace(face(f, s))
		for _, para := range strings.Split(el.Content, "\n") {
			for _, line := range wrapText(dc, para, maxWidth) {
				y += lineHeight
				dc.DrawString(line, x, y)
			}
		}

	case *entities.BulletList, *entities.NumberedList:
		dc.SetFontFace(face(fonts.regular, size))
		for _, l := range flattenList(el, 0) {
			indent := x + g.scale(float64(l.Depth)*28)
			markerW, _ := dc.MeasureString(l.Marker + " ")
			for i, line := range wrapText(dc, l.Text, maxWidth-(indent-x)-markerW) {
				y += lineHeight
				if i == 0 {
					dc.DrawString(l.Marker, indent, y)
				}
				dc.DrawString(line, indent+markerW, y)
			}
		}

	case *entities.Image:
		w, h := g.scale(240), g.scale(135)
		if el.Width != nil && *el.Width > 0 {
			w = min(g.scale(*el.Width), maxWidth)
		}
		if el.Height != nil && *el.Height > 0 {
			h = g.scale(*el.Height)
		}
		dc.SetColor(rgba(theme.SecondaryColor))
		dc.SetDash(g.scale(6), g.scale(4))
		dc.SetLineWidth(g.scale(2))
		dc.DrawRectangle(x, y+g.scale(8), w, h)
		dc.Stroke()
		dc.SetDash()
		dc.SetFontFace(face(fonts.regular, size*0.7))
		dc.DrawStringAnchored(truncateRunes(imageLabel(el), 40), x+w/2, y+g.scale(8)+h/2, 0.5, 0.5)
		y += h + g.scale(8)

	case *entities.Table:
		dc.SetFontFace(face(fonts.regular, size*0.8))
		cols := el.Columns()
		if cols == 0 {
			break
		}
		colW := maxWidth / float64(cols)
		rowH := g.scale(size * 0.8 * 1.6)
		rows := el.Rows
		if el.Header != nil {
			rows = append([][]string{el.Header}, rows...)
		}
		for r, row := range rows {
			if r == 0 && el.Header != nil {
				dc.SetColor(color.Gray{Y: 235})
				dc.DrawRectangle(x, y, maxWidth, rowH)
				dc.Fill()
			}
			dc.SetColor(color.Gray{Y: 190})
			dc.SetLineWidth(1)
			dc.DrawRectangle(x, y, maxWidth, rowH)
			dc.Stroke()
			dc.SetColor(rgba(textColor))
			for c := 0; c < cols && c < len(row); c++ {
				dc.DrawStringAnchored(truncateRunes(row[c], 32), x+float64(c)*colW+g.scale(6), y+rowH/2, 0, 0.35)
			}
			y += rowH
		}

	case *entities.Code:
		s := size * 0.75
		dc.SetFontFace(face(fonts.mono, s))
		lh := g.scale(s * 1.35)
		lines := codeLines(el.Content)
		dc.SetColor(color.Gray{Y: 245})
		dc.DrawRectangle(x, y+g.scale(4), maxWidth, float64(len(lines))*lh+g.scale(8))
		dc.Fill()
		y += g.scale(4)
		for i, line := range lines {
			if el.IsHighlighted(i + 1) {
				dc.SetColor(color.RGBA{R: 255, G: 243, B: 176, A: 255})
				dc.DrawRectangle(x, y+g.scale(4), maxWidth, lh)
				dc.Fill()
			}
			y += lh
			dc.SetColor(color.Gray{Y: 40})
			dc.DrawString(strings.ReplaceAll(line, "\t", "    "), x+g.scale(8), y)
		}
		y += g.scale(8)
	}
	return y
}

// wrapText breaks text into lines no wider than maxWidth in the current face
func wrapText(dc *gg.Context, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var (
		lines   []string
		current strings.Builder
	)
	for _, word := range words {
		candidate := current.String()
		if candidate != "" {
			candidate += " "
		}
		candidate += word

		if width, _ := dc.MeasureString(candidate); width > maxWidth && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
			continue
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

func rgba(c entities.RGB) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
