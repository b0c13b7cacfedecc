package parser

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
)

// Frontmatter is the presentation metadata block ahead of the first slide
type Frontmatter struct {
	Title  string                 `yaml:"title" toml:"title"`
	Author string                 `yaml:"author" toml:"author"`
	Date   interface{}            `yaml:"date" toml:"date"`
	Theme  entities.ThemeSettings `yaml:"theme" toml:"theme"`

	// themeLine is the document line of the theme key, 0 when absent
	themeLine int
}

// ThemePosition is where theme errors are reported: the theme key, or
// the first line of the block when it cannot be found
func (f *Frontmatter) ThemePosition() entities.Position {
	if f == nil || f.themeLine == 0 {
		return entities.Position{Line: 2, Column: 1}
	}
	return entities.Position{Line: f.themeLine, Column: 1}
}

// DateString returns the date normalized to YYYY-MM-DD when recognizable,
// otherwise as written
func (f *Frontmatter) DateString() string {
	if f == nil || f.Date == nil {
		return ""
	}

	switch v := f.Date.(type) {
	case time.Time:
		return v.Format("2006-01-02")
	case string:
		return normalizeDate(v)
	default:
		return fmt.Sprint(v)
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
}

func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

var (
	// A frontmatter block must open with a key so a leading "---" slide
	// break is never taken for metadata.
	frontmatterKeyLine = regexp.MustCompile(`^\s*[A-Za-z_][\w-]*\s*(:|=)`)

	// theme: (YAML), theme = or [theme] (TOML)
	themeKeyLine = regexp.MustCompile(`^(theme\s*[:=]|\[theme\])`)

	// yaml.v3 reports "line N" in both syntax and unmarshal errors
	decoderLine = regexp.MustCompile(`\bline (\d+)\b`)

	frontmatterFormats = []*frontmatter.Format{
		frontmatter.NewFormat("---", "---", yaml.Unmarshal),
		frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
	}
)

// ExtractFrontmatter splits a YAML (---) or TOML (+++) block off the head of
// content. The returned body keeps one blank line per consumed line so
// positions reported against it match the original input.
func ExtractFrontmatter(content []byte) (*Frontmatter, []byte, error) {
	if !looksLikeFrontmatter(content) {
		return nil, content, nil
	}

	var fm Frontmatter
	rest, err := frontmatter.Parse(bytes.NewReader(content), &fm, frontmatterFormats...)
	if err != nil {
		return nil, nil, &entities.ParseError{
			Kind:     entities.KindParseSyntax,
			Position: decodeErrorPosition(content, err),
			Message:  "frontmatter could not be decoded",
			Cause:    err,
		}
	}

	consumed := len(content) - len(rest)
	if consumed <= 0 {
		// No closing delimiter: the block is ordinary Markdown
		return nil, content, nil
	}

	fm.themeLine = themeKeyLineIn(content[:consumed])

	body := make([]byte, 0, len(content))
	body = append(body, bytes.Repeat([]byte{'\n'}, bytes.Count(content[:consumed], []byte{'\n'}))...)
	body = append(body, rest...)

	return &fm, body, nil
}

func looksLikeFrontmatter(content []byte) bool {
	lines := strings.SplitN(string(content), "\n", 3)
	if len(lines) < 2 {
		return false
	}

	delim := strings.TrimSpace(lines[0])
	if delim != "---" && delim != "+++" {
		return false
	}
	return frontmatterKeyLine.MatchString(lines[1])
}

// decodeErrorPosition maps a decoder error inside the block back to the
// document. The block starts on line 2, after the opening delimiter.
func decodeErrorPosition(content []byte, err error) entities.Position {
	pos := entities.Position{Line: 2, Column: 1}

	block := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		block = content[i+1:]
	}

	var tomlErr toml.ParseError
	if errors.As(err, &tomlErr) && tomlErr.Position.Line > 0 {
		pos.Line = tomlErr.Position.Line + 1
		if start := tomlErr.Position.Start; start >= 0 && start <= len(block) {
			lineStart := bytes.LastIndexByte(block[:start], '\n') + 1
			pos.Column = utf8.RuneCount(block[lineStart:start]) + 1
		}
		return pos
	}

	if m := decoderLine.FindStringSubmatch(err.Error()); m != nil {
		if n, convErr := strconv.Atoi(m[1]); convErr == nil && n > 0 {
			pos.Line = n + 1
		}
	}
	return pos
}

func themeKeyLineIn(block []byte) int {
	for i, line := range strings.Split(string(block), "\n") {
		if i > 0 && themeKeyLine.MatchString(line) {
			return i + 1
		}
	}
	return 0
}
