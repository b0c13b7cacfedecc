package export

import (
	"strings"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

// Slide geometry in points on a 16:9 canvas, shared by the shape-based
// generators
const (
	slideWidthPt  = 960.0
	slideHeightPt = 540.0
	slideMargin   = 48.0
	slideBottom   = slideHeightPt - 36
	columnGap     = 24.0
	elementGap    = 12.0
	contentWidth  = slideWidthPt - 2*slideMargin
)

// box is a shape frame in points
type box struct {
	x, y, w, h float64
}

// headingFrames positions the title block of a slide
type headingFrames struct {
	title        box
	titleSize    float64
	subtitle     box
	subtitleSize float64
	centered     bool
	// bodyTop is where the first element goes
	bodyTop float64
}

// titleFrames centers the title block on title and section slides and
// pins it to the top everywhere else
func titleFrames(slide *entities.Slide) headingFrames {
	if slide.Layout == entities.LayoutTitle || slide.Layout == entities.LayoutSectionHeader {
		return headingFrames{
			title:        box{slideMargin, 170, contentWidth, 110},
			titleSize:    44,
			subtitle:     box{slideMargin, 290, contentWidth, 60},
			subtitleSize: 24,
			centered:     true,
			bodyTop:      360,
		}
	}

	f := headingFrames{titleSize: 36, subtitleSize: 20, bodyTop: slideMargin}
	if slide.Title != nil {
		f.title = box{slideMargin, 28, contentWidth, 64}
		f.bodyTop = 100
	}
	f.subtitle = box{slideMargin, f.bodyTop, contentWidth, 36}
	if slide.Subtitle != nil {
		f.bodyTop += 40
	}
	return f
}

// placedElement is an element with its frame on the slide
type placedElement struct {
	element entities.SlideElement
	frame   box
}

// placeElements stacks elements top to bottom. Two-column slides put the
// first half of the elements on the left. Frames never run past the
// bottom margin; overflowing elements are squeezed to a minimum height.
func placeElements(slide *entities.Slide, top, size float64) []placedElement {
	columns := [][]entities.SlideElement{slide.Elements}
	if slide.Layout == entities.LayoutTwoColumn && len(slide.Elements) > 1 {
		split := (len(slide.Elements) + 1) / 2
		columns = [][]entities.SlideElement{slide.Elements[:split], slide.Elements[split:]}
	}
	colWidth := (contentWidth - columnGap*float64(len(columns)-1)) / float64(len(columns))

	var out []placedElement
	for c, elements := range columns {
		x := slideMargin + float64(c)*(colWidth+columnGap)
		y := top
		for _, e := range elements {
			h := estimateHeight(e, colWidth, size)
			if remaining := slideBottom - y; h > remaining {
				h = max(remaining, 20)
			}
			out = append(out, placedElement{element: e, frame: box{x, y, colWidth, h}})
			y += h + elementGap
		}
	}
	return out
}

// bodyFontSize returns the theme body size in points
func bodyFontSize(theme entities.ThemeConfig) float64 {
	if theme.FontSize <= 0 {
		return entities.DefaultTheme().FontSize
	}
	return theme.FontSize
}

// headingSize scales body text up for sub-headings
func headingSize(size float64, level int) float64 {
	return size + max(0, 12-2*float64(level))
}

// estimateHeight guesses the points an element needs in a column of the
// given width; proportional fonts average about half an em per rune
func estimateHeight(e entities.SlideElement, width, size float64) float64 {
	wrapped := func(text string, fontSize float64) int {
		perLine := max(1, int(width/(fontSize*0.5)))
		n := 0
		for _, para := range strings.Split(text, "\n") {
			n += max(1, (len([]rune(para))+perLine-1)/perLine)
		}
		return n
	}

	switch el := e.(type) {
	case *entities.Text:
		s := size
		if el.Level > 0 {
			s = headingSize(size, el.Level)
		}
		return float64(wrapped(el.Content, s))*s*1.2 + 8
	case *entities.BulletList, *entities.NumberedList:
		n := 0
		for _, l := range flattenList(el, 0) {
			n += wrapped(l.Text, size)
		}
		return float64(n)*size*1.3 + 8
	case *entities.Code:
		return float64(max(1, len(codeLines(el.Content))))*size*0.8*1.2 + 16
	case *entities.Table:
		rows := len(el.Rows)
		if el.Header != nil {
			rows++
		}
		return float64(rows) * size * 0.8 * 1.8
	case *entities.Image:
		w, h := 320.0, 180.0
		if el.Width != nil && *el.Width > 0 {
			w = *el.Width
			h = w * 9 / 16
		}
		if el.Height != nil && *el.Height > 0 {
			h = *el.Height
		}
		if w > width {
			h *= width / w
		}
		return h
	}
	return size * 1.2
}

// imageFrame narrows a placed frame to the image's own width when it has one
func imageFrame(img *entities.Image, frame box) box {
	if img.Width != nil && *img.Width > 0 && *img.Width < frame.w {
		frame.w = *img.Width
	}
	return frame
}
