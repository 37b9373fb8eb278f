// Package colors parses and formats the color notations accepted on the
// command line, in config files and in themes.
package colors

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Parse accepts #RGB, #RRGGBB, #RRGGBBAA, rgb(r,g,b), rgba(r,g,b,a) with a
// in [0,1], and SVG color names.
func Parse(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return color.NRGBA{}, fmt.Errorf("empty color")
	case strings.HasPrefix(v, "#"):
		return parseHex(v[1:])
	case strings.HasPrefix(v, "rgba(") || strings.HasPrefix(v, "rgb("):
		return parseFunc(v)
	}
	if c, ok := colornames.Map[v]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
}

// MustParse is Parse for constants known to be valid.
func MustParse(s string) color.NRGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(hex string) (color.NRGBA, error) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex length %d", len(hex))
	}
	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color: %w", err)
	}
	return color.NRGBA{
		R: uint8(val >> 24),
		G: uint8(val >> 16),
		B: uint8(val >> 8),
		A: uint8(val),
	}, nil
}

func parseFunc(v string) (color.NRGBA, error) {
	open := strings.IndexByte(v, '(')
	if !strings.HasSuffix(v, ")") {
		return color.NRGBA{}, fmt.Errorf("unterminated %q", v)
	}
	name := v[:open]
	args := strings.Split(v[open+1:len(v)-1], ",")
	want := 3
	if name == "rgba" {
		want = 4
	}
	if len(args) != want {
		return color.NRGBA{}, fmt.Errorf("%s: want %d components, got %d", name, want, len(args))
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(args[i]))
		if err != nil || n < 0 || n > 255 {
			return color.NRGBA{}, fmt.Errorf("%s: component %q out of range", name, strings.TrimSpace(args[i]))
		}
		ch[i] = uint8(n)
	}
	a := uint8(255)
	if want == 4 {
		f, err := strconv.ParseFloat(strings.TrimSpace(args[3]), 64)
		if err != nil || f < 0 || f > 1 {
			return color.NRGBA{}, fmt.Errorf("rgba: alpha %q out of range", strings.TrimSpace(args[3]))
		}
		a = uint8(math.Round(f * 255))
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, nil
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func Hex(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// NRGBA converts any color to its non-premultiplied form.
func NRGBA(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// RGBA converts c to premultiplied 8-bit form for drawing.
func RGBA(c color.NRGBA) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// Palette is the swatch row offered for text color in the editor.
var Palette = []color.NRGBA{
	{A: 255},
	{R: 255, G: 255, B: 255, A: 255},
	{R: 220, G: 38, B: 38, A: 255},
	{R: 234, G: 88, B: 12, A: 255},
	{R: 250, G: 204, B: 21, A: 255},
	{R: 22, G: 163, B: 74, A: 255},
	{R: 37, G: 99, B: 235, A: 255},
	{R: 147, G: 51, B: 234, A: 255},
}
