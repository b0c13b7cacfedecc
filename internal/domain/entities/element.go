package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ElementKind is the discriminator of the SlideElement union
type ElementKind string

const (
	KindText         ElementKind = "text"
	KindBulletList   ElementKind = "bulletList"
	KindNumberedList ElementKind = "numberedList"
	KindImage        ElementKind = "image"
	KindTable        ElementKind = "table"
	KindCode         ElementKind = "code"
)

// SlideElement is one piece of visible slide content.
//
// The variant set is closed: Text, BulletList, NumberedList, Image, Table and
// Code are the only implementations. Adding a kind means touching the JSON
// codec and every generator.
type SlideElement interface {
	Kind() ElementKind
	clone() SlideElement
	slideElement()
}

// StyleSpan describes inline formatting over a half-open range of rune
// offsets into the owning text.
type StyleSpan struct {
	Start         int    `json:"start"`
	End           int    `json:"end"`
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Code          bool   `json:"code,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Link          string `json:"link,omitempty"`
}

// Text is a paragraph or a sub-heading flattened to plain text
type Text struct {
	Content string `json:"content"`
	// Level is 0 for body text, otherwise the heading depth
	Level int         `json:"level,omitempty"`
	Spans []StyleSpan `json:"spans,omitempty"`
}

// ListItem is one entry of a bullet or numbered list
type ListItem struct {
	Text    string      `json:"text"`
	Spans   []StyleSpan `json:"spans,omitempty"`
	Checked *bool       `json:"checked,omitempty"`
	// Sublists only ever holds *BulletList and *NumberedList values
	Sublists Elements `json:"sublists,omitempty"`
}

// BulletList is an unordered list
type BulletList struct {
	Items []ListItem `json:"items"`
}

// NumberedList is an ordered list
type NumberedList struct {
	Start int        `json:"start,omitempty"`
	Items []ListItem `json:"items"`
}

// Image references an external picture. Width and Height are in points; nil
// leaves sizing to the renderer.
type Image struct {
	URL    string   `json:"url"`
	Alt    string   `json:"alt,omitempty"`
	Title  string   `json:"title,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// Table is a rectangular grid of plain-text cells
type Table struct {
	Header []string   `json:"header,omitempty"`
	Rows   [][]string `json:"rows"`
	// Align holds one of "left", "center", "right" or "" per column
	Align []string `json:"align,omitempty"`
}

// Code is a code block. Highlight holds sorted 1-based line numbers.
type Code struct {
	Content   string `json:"content"`
	Language  string `json:"language,omitempty"`
	Highlight []int  `json:"highlight,omitempty"`
}

func (*Text) Kind() ElementKind         { return KindText }
func (*BulletList) Kind() ElementKind   { return KindBulletList }
func (*NumberedList) Kind() ElementKind { return KindNumberedList }
func (*Image) Kind() ElementKind        { return KindImage }
func (*Table) Kind() ElementKind        { return KindTable }
func (*Code) Kind() ElementKind         { return KindCode }

func (*Text) slideElement()         {}
func (*BulletList) slideElement()   {}
func (*NumberedList) slideElement() {}
func (*Image) slideElement()        {}
func (*Table) slideElement()        {}
func (*Code) slideElement()         {}

// Columns returns the column count of the widest row, header included
func (t *Table) Columns() int {
	width := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// IsRectangular reports whether every row (and the header, when present)
// has the same number of cells
func (t *Table) IsRectangular() bool {
	width := t.Columns()
	if t.Header != nil && len(t.Header) != width {
		return false
	}
	for _, row := range t.Rows {
		if len(row) != width {
			return false
		}
	}
	return true
}

// IsHighlighted reports whether the 1-based line is in the highlight set
func (c *Code) IsHighlighted(line int) bool {
	for _, n := range c.Highlight {
		if n == line {
			return true
		}
	}
	return false
}

func (e *Text) clone() SlideElement {
	c := *e
	c.Spans = cloneSpans(e.Spans)
	return &c
}

func (e *BulletList) clone() SlideElement {
	return &BulletList{Items: cloneItems(e.Items)}
}

func (e *NumberedList) clone() SlideElement {
	return &NumberedList{Start: e.Start, Items: cloneItems(e.Items)}
}

func (e *Image) clone() SlideElement {
	c := *e
	c.Width = cloneFloat(e.Width)
	c.Height = cloneFloat(e.Height)
	return &c
}

func (e *Table) clone() SlideElement {
	c := &Table{
		Header: cloneStrings(e.Header),
		Align:  cloneStrings(e.Align),
	}
	if e.Rows != nil {
		c.Rows = make([][]string, len(e.Rows))
		for i, row := range e.Rows {
			c.Rows[i] = cloneStrings(row)
		}
	}
	return c
}

func (e *Code) clone() SlideElement {
	c := *e
	if e.Highlight != nil {
		c.Highlight = append([]int(nil), e.Highlight...)
	}
	return &c
}

func cloneItems(items []ListItem) []ListItem {
	if items == nil {
		return nil
	}
	out := make([]ListItem, len(items))
	for i, item := range items {
		out[i] = ListItem{
			Text:     item.Text,
			Spans:    cloneSpans(item.Spans),
			Sublists: item.Sublists.Clone(),
		}
		if item.Checked != nil {
			checked := *item.Checked
			out[i].Checked = &checked
		}
	}
	return out
}

func cloneSpans(spans []StyleSpan) []StyleSpan {
	if spans == nil {
		return nil
	}
	return append([]StyleSpan(nil), spans...)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Elements is an ordered element sequence with a tagged JSON encoding
type Elements []SlideElement

// Clone returns a deep copy of the sequence
func (es Elements) Clone() Elements {
	if es == nil {
		return nil
	}
	out := make(Elements, len(es))
	for i, e := range es {
		out[i] = e.clone()
	}
	return out
}

// MarshalJSON encodes each element as an object carrying a "type" field
func (es Elements) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range es {
		if i > 0 {
			buf.WriteByte(',')
		}
		body, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encoding %s element: %w", e.Kind(), err)
		}
		fmt.Fprintf(&buf, `{"type":%q`, e.Kind())
		if len(body) > 2 {
			buf.WriteByte(',')
			buf.Write(body[1 : len(body)-1])
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the tagged encoding produced by MarshalJSON
func (es *Elements) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		*es = nil
		return nil
	}

	out := make(Elements, 0, len(raw))
	for i, msg := range raw {
		var tag struct {
			Type ElementKind `json:"type"`
		}
		if err := json.Unmarshal(msg, &tag); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}

		e, err := newElement(tag.Type)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		if err := json.Unmarshal(msg, e); err != nil {
			return fmt.Errorf("element %d (%s): %w", i, tag.Type, err)
		}
		out = append(out, e)
	}
	*es = out
	return nil
}

func newElement(kind ElementKind) (SlideElement, error) {
	switch kind {
	case KindText:
		return &Text{}, nil
	case KindBulletList:
		return &BulletList{}, nil
	case KindNumberedList:
		return &NumberedList{}, nil
	case KindImage:
		return &Image{}, nil
	case KindTable:
		return &Table{}, nil
	case KindCode:
		return &Code{}, nil
	default:
		return nil, fmt.Errorf("unknown element type %q", kind)
	}
}
