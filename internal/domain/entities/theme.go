package entities

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// WebSafeFonts is the allow-list of font families a theme may name
var WebSafeFonts = []string{
	"Arial",
	"Helvetica",
	"Verdana",
	"Tahoma",
	"Trebuchet MS",
	"Georgia",
	"Times New Roman",
	"Courier New",
	"Garamond",
	"Palatino",
}

// RGB is an explicit 8-bit-per-channel color
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// ParseRGB parses "#rrggbb" or "#rgb" (leading '#' optional)
func ParseRGB(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q: expected #rrggbb", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustParseRGB is ParseRGB for constants; it panics on malformed input
func MustParseRGB(s string) RGB {
	c, err := ParseRGB(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the color as "#rrggbb"
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Fractions returns the channels scaled to [0,1]
func (c RGB) Fractions() (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// MarshalText implements encoding.TextMarshaler
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *RGB) UnmarshalText(text []byte) error {
	parsed, err := ParseRGB(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ThemeConfig carries the visual settings generators apply to every slide.
// Colors stay explicit RGB so no platform theme token leaks into the IR.
type ThemeConfig struct {
	PrimaryColor   RGB     `json:"primaryColor" toml:"primary_color"`
	SecondaryColor RGB     `json:"secondaryColor" toml:"secondary_color"`
	FontFamily     string  `json:"fontFamily" toml:"font_family"`
	FontSize       float64 `json:"fontSize" toml:"font_size"`
}

// DefaultTheme returns the theme used when nothing else is configured
func DefaultTheme() ThemeConfig {
	return ThemeConfig{
		PrimaryColor:   RGB{R: 0x1a, G: 0x1a, B: 0x2e},
		SecondaryColor: RGB{R: 0x3d, G: 0x5a, B: 0xfe},
		FontFamily:     "Arial",
		FontSize:       18,
	}
}

// Validate checks the font allow-list and size bounds
func (t ThemeConfig) Validate() error {
	fonts := make([]interface{}, len(WebSafeFonts))
	for i, f := range WebSafeFonts {
		fonts[i] = f
	}

	return validation.ValidateStruct(&t,
		validation.Field(&t.FontFamily,
			validation.Required,
			validation.In(fonts...).Error("must be a web-safe font"),
		),
		validation.Field(&t.FontSize,
			validation.Required,
			validation.Min(6.0),
			validation.Max(96.0),
		),
	)
}

// IsWebSafeFont reports whether name is on the allow-list (case-insensitive)
func IsWebSafeFont(name string) bool {
	for _, f := range WebSafeFonts {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// Background is an optional slide background: a solid color, an image, or both
type Background struct {
	Color *RGB   `json:"color,omitempty"`
	Image string `json:"image,omitempty"`
}

// ParseBackground interprets a background attribute value: colors start
// with '#', anything else is taken as an image reference
func ParseBackground(value string) (*Background, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("empty background")
	}
	if strings.HasPrefix(value, "#") {
		c, err := ParseRGB(value)
		if err != nil {
			return nil, err
		}
		return &Background{Color: &c}, nil
	}
	return &Background{Image: value}, nil
}

func (b *Background) clone() *Background {
	if b == nil {
		return nil
	}
	c := &Background{Image: b.Image}
	if b.Color != nil {
		color := *b.Color
		c.Color = &color
	}
	return c
}
