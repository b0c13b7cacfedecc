package export

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// documentTitle returns the title a generator should print
func documentTitle(p *entities.Presentation, options ports.ExportOptions) string {
	if options.Title != "" {
		return options.Title
	}
	if p.Metadata.Title != "" {
		return p.Metadata.Title
	}
	return "Untitled"
}

// slideNotes returns the notes to render and whether there are any
func slideNotes(s *entities.Slide, options ports.ExportOptions) (string, bool) {
	if !options.IncludeNotes || s.Notes == nil {
		return "", false
	}
	return *s.Notes, true
}

// styledRun is a maximal stretch of text sharing one combined style.
// Start and End are rune offsets into the owning text.
type styledRun struct {
	Text  string
	Style entities.StyleSpan
}

// styledRuns cuts content at every span boundary and merges the styles of
// the spans covering each piece. Overlapping links resolve to the last one.
func styledRuns(content string, spans []entities.StyleSpan) []styledRun {
	runes := []rune(content)
	if len(spans) == 0 {
		if len(runes) == 0 {
			return nil
		}
		return []styledRun{{Text: content, Style: entities.StyleSpan{End: len(runes)}}}
	}

	cuts := map[int]bool{0: true, len(runes): true}
	for _, s := range spans {
		cuts[clampOffset(s.Start, len(runes))] = true
		cuts[clampOffset(s.End, len(runes))] = true
	}
	bounds := make([]int, 0, len(cuts))
	for c := range cuts {
		bounds = append(bounds, c)
	}
	sort.Ints(bounds)

	var runs []styledRun
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		if start == end {
			continue
		}
		style := entities.StyleSpan{Start: start, End: end}
		for _, s := range spans {
			if s.Start <= start && end <= s.End {
				style.Bold = style.Bold || s.Bold
				style.Italic = style.Italic || s.Italic
				style.Code = style.Code || s.Code
				style.Strikethrough = style.Strikethrough || s.Strikethrough
				if s.Link != "" {
					style.Link = s.Link
				}
			}
		}
		runs = append(runs, styledRun{Text: string(runes[start:end]), Style: style})
	}
	return runs
}

func clampOffset(v, n int) int {
	return max(0, min(v, n))
}

// listLine is one list item flattened for renderers without native lists
type listLine struct {
	Depth int
	// Number is the ordinal of a numbered item, 0 for bullets
	Number  int
	Checked *bool
	Marker  string
	Text    string
	Spans   []entities.StyleSpan
}

// flattenList walks a list element depth first
func flattenList(e entities.SlideElement, depth int) []listLine {
	var (
		items []entities.ListItem
		start int
	)
	switch list := e.(type) {
	case *entities.BulletList:
		items = list.Items
	case *entities.NumberedList:
		items, start = list.Items, list.Start
		if start == 0 {
			start = 1
		}
	default:
		return nil
	}

	var lines []listLine
	for i, item := range items {
		marker, number := "•", 0
		if start > 0 {
			number = start + i
			marker = strconv.Itoa(number) + "."
		}
		if item.Checked != nil {
			if *item.Checked {
				marker += " [x]"
			} else {
				marker += " [ ]"
			}
		}
		lines = append(lines, listLine{
			Depth:   depth,
			Number:  number,
			Checked: item.Checked,
			Marker:  marker,
			Text:    item.Text,
			Spans:   item.Spans,
		})
		for _, sub := range item.Sublists {
			lines = append(lines, flattenList(sub, depth+1)...)
		}
	}
	return lines
}

// codeLines splits code content into lines; empty content has no lines
func codeLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// plainLines renders an element as plain text lines for raster and
// vector generators
func plainLines(e entities.SlideElement) []string {
	switch el := e.(type) {
	case *entities.Text:
		return strings.Split(el.Content, "\n")
	case *entities.BulletList, *entities.NumberedList:
		var out []string
		for _, l := range flattenList(el, 0) {
			out = append(out, strings.Repeat("  ", l.Depth)+l.Marker+" "+l.Text)
		}
		return out
	case *entities.Image:
		label := el.Alt
		if label == "" {
			label = el.URL
		}
		return []string{"[image: " + label + "]"}
	case *entities.Table:
		var out []string
		if el.Header != nil {
			out = append(out, strings.Join(el.Header, " | "))
		}
		for _, row := range el.Rows {
			out = append(out, strings.Join(row, " | "))
		}
		return out
	case *entities.Code:
		return codeLines(el.Content)
	default:
		return nil
	}
}

// truncateRunes shortens s to at most n runes, marking the cut with "…"
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// shiftSpans moves spans right by n runes
func shiftSpans(spans []entities.StyleSpan, n int) []entities.StyleSpan {
	out := make([]entities.StyleSpan, len(spans))
	for i, s := range spans {
		s.Start += n
		s.End += n
		out[i] = s
	}
	return out
}
