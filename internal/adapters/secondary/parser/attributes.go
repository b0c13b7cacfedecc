package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
)

// Attributes are the key/value pairs of a "{...}" annotation. Classes
// (".name") are collected under "class", ids ("#name") under "id".
type Attributes map[string]string

var (
	trailingAnnotation = regexp.MustCompile(`\s*\{([^{}]*)\}\s*$`)
	annotationToken    = regexp.MustCompile(`([.#][\w:-]+)|([A-Za-z_][\w-]*)\s*[=:]\s*("[^"]*"|'[^']*'|[^\s,}]+)`)
)

// ParseAnnotation reads a "{...}" annotation body such as
// `width=300 height:200 .wide`. Tokens it does not understand are skipped.
func ParseAnnotation(body string) Attributes {
	body = strings.TrimSpace(body)
	body = strings.TrimPrefix(body, "{")
	body = strings.TrimSuffix(body, "}")

	attrs := Attributes{}
	for _, m := range annotationToken.FindAllStringSubmatch(body, -1) {
		switch {
		case strings.HasPrefix(m[1], "."):
			attrs.addClass(m[1][1:])
		case strings.HasPrefix(m[1], "#"):
			attrs["id"] = m[1][1:]
		case m[2] != "":
			attrs[strings.ToLower(m[2])] = strings.Trim(m[3], `"'`)
		}
	}
	return attrs
}

// SplitTrailingAnnotation separates a trailing "{...}" from text. Braces
// holding no recognisable attribute are part of the text and stay.
func SplitTrailingAnnotation(text string) (string, Attributes, bool) {
	loc := trailingAnnotation.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, nil, false
	}
	attrs := ParseAnnotation(text[loc[2]:loc[3]])
	if len(attrs) == 0 {
		return text, nil, false
	}
	return text[:loc[0]], attrs, true
}

// IsAnnotation reports whether text is nothing but a "{...}" annotation
func IsAnnotation(text string) bool {
	text = strings.TrimSpace(text)
	return len(text) >= 2 && text[0] == '{' && text[len(text)-1] == '}' &&
		!strings.ContainsAny(text[1:len(text)-1], "{}")
}

// nodeAttributes converts goldmark's parsed heading attributes
func nodeAttributes(n ast.Node) Attributes {
	attrs := Attributes{}
	for _, a := range n.Attributes() {
		name := strings.ToLower(string(a.Name))
		switch v := a.Value.(type) {
		case []byte:
			if name == "class" {
				for _, c := range strings.Fields(string(v)) {
					attrs.addClass(c)
				}
				continue
			}
			attrs[name] = string(v)
		case string:
			attrs[name] = v
		case float64:
			attrs[name] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			attrs[name] = strconv.FormatBool(v)
		case nil:
		default:
			attrs[name] = fmt.Sprint(v)
		}
	}
	return attrs
}

// Merge copies other into a; classes accumulate
func (a Attributes) Merge(other Attributes) {
	for k, v := range other {
		if k == "class" {
			for _, c := range strings.Fields(v) {
				a.addClass(c)
			}
			continue
		}
		a[k] = v
	}
}

// Classes returns the class names in order of appearance
func (a Attributes) Classes() []string {
	return strings.Fields(a["class"])
}

// Dimension reads a positive size in points; "px" and "pt" suffixes are
// accepted and treated alike
func (a Attributes) Dimension(key string) (*float64, bool) {
	raw, ok := a[key]
	if !ok {
		return nil, false
	}
	raw = strings.TrimSpace(strings.ToLower(raw))
	raw = strings.TrimSuffix(strings.TrimSuffix(raw, "px"), "pt")

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return nil, false
	}
	return &v, true
}

func (a Attributes) addClass(name string) {
	if name == "" {
		return
	}
	if existing := a["class"]; existing != "" {
		a["class"] = existing + " " + name
		return
	}
	a["class"] = name
}
