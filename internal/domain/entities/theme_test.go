package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRGB(t *testing.T) {
	tests := []struct {
		input   string
		want    RGB
		wantErr bool
	}{
		{input: "#1a2b3c", want: RGB{R: 0x1a, G: 0x2b, B: 0x3c}},
		{input: "FFFFFF", want: RGB{R: 255, G: 255, B: 255}},
		{input: "#abc", want: RGB{R: 0xaa, G: 0xbb, B: 0xcc}},
		{input: "#12345", wantErr: true},
		{input: "#zzzzzz", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRGB(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRGB_TextForms(t *testing.T) {
	c := RGB{R: 1, G: 2, B: 255}
	assert.Equal(t, "#0102ff", c.Hex())

	text, err := c.MarshalText()
	require.NoError(t, err)

	var back RGB
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, c, back)

	r, g, b := RGB{R: 255}.Fractions()
	assert.Equal(t, 1.0, r)
	assert.Equal(t, 0.0, g)
	assert.Equal(t, 0.0, b)

	assert.Panics(t, func() { MustParseRGB("nope") })
}

func TestThemeConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		theme   ThemeConfig
		wantErr bool
	}{
		{name: "default", theme: DefaultTheme()},
		{name: "unknown font", theme: ThemeConfig{FontFamily: "Papyrus", FontSize: 18}, wantErr: true},
		{name: "missing font", theme: ThemeConfig{FontSize: 18}, wantErr: true},
		{name: "too small", theme: ThemeConfig{FontFamily: "Arial", FontSize: 2}, wantErr: true},
		{name: "too large", theme: ThemeConfig{FontFamily: "Arial", FontSize: 120}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.theme.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.True(t, IsWebSafeFont("courier new"))
	assert.False(t, IsWebSafeFont("Fira Code"))
}

func TestParseBackground(t *testing.T) {
	bg, err := ParseBackground("#000000")
	require.NoError(t, err)
	require.NotNil(t, bg.Color)
	assert.Equal(t, RGB{}, *bg.Color)
	assert.Empty(t, bg.Image)

	bg, err = ParseBackground("images/bg.png")
	require.NoError(t, err)
	assert.Nil(t, bg.Color)
	assert.Equal(t, "images/bg.png", bg.Image)

	_, err = ParseBackground("  ")
	assert.Error(t, err)

	_, err = ParseBackground("#nothex")
	assert.Error(t, err)
}
