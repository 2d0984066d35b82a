package tokens

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// RGBA is a color resolved to 8-bit channels plus a 0..1 alpha.
type RGBA struct {
	R, G, B uint8
	A       float64
}

// String renders the canonical form: "#rrggbb" when opaque, otherwise
// "rgba(r, g, b, a)" with the alpha in its shortest decimal form.
func (c RGBA) String() string {
	if c.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B,
		strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Transparent reports whether the color has zero alpha.
func (c RGBA) Transparent() bool {
	return c.A <= 0
}

// ParseColor parses a CSS color: named colors, "transparent", #rgb, #rgba,
// #rrggbb, #rrggbbaa, rgb()/rgba() in comma or space syntax (with "/ alpha"
// and percentages) and hsl()/hsla(). Anything else reports false.
func ParseColor(s string) (RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RGBA{}, false
	}

	switch {
	case s == "transparent":
		return RGBA{}, true
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasSuffix(s, ")"):
		open := strings.IndexByte(s, '(')
		if open < 0 {
			return RGBA{}, false
		}
		name := strings.TrimSpace(s[:open])
		args, ok := splitColorArgs(s[open+1 : len(s)-1])
		if !ok {
			return RGBA{}, false
		}
		switch name {
		case "rgb", "rgba":
			return parseRGBArgs(args)
		case "hsl", "hsla":
			return parseHSLArgs(args)
		}
		return RGBA{}, false
	}

	if s == "rebeccapurple" {
		return RGBA{R: 0x66, G: 0x33, B: 0x99, A: 1}, true
	}
	if c, ok := colornames.Map[s]; ok {
		return RGBA{R: c.R, G: c.G, B: c.B, A: 1}, true
	}
	return RGBA{}, false
}

func parseHex(h string) (RGBA, bool) {
	expand := func(s string) string {
		var b strings.Builder
		for _, r := range s {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		return b.String()
	}
	switch len(h) {
	case 3, 4:
		h = expand(h)
	case 6, 8:
	default:
		return RGBA{}, false
	}

	v, err := strconv.ParseUint(h, 16, 64)
	if err != nil {
		return RGBA{}, false
	}
	if len(h) == 6 {
		return RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, true
	}
	a := float64(uint8(v)) / 255
	return RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: math.Round(a*1000) / 1000,
	}, true
}

// splitColorArgs splits "r, g, b, a", "r g b / a" and "r g b" into 3 or 4 parts.
func splitColorArgs(inner string) ([]string, bool) {
	var parts []string
	if strings.Contains(inner, ",") {
		for _, p := range strings.Split(inner, ",") {
			parts = append(parts, strings.TrimSpace(p))
		}
	} else {
		main, alpha, hasAlpha := strings.Cut(inner, "/")
		parts = strings.Fields(main)
		if hasAlpha {
			parts = append(parts, strings.TrimSpace(alpha))
		}
	}
	if len(parts) != 3 && len(parts) != 4 {
		return nil, false
	}
	for _, p := range parts {
		if p == "" {
			return nil, false
		}
	}
	return parts, true
}

func parseRGBArgs(args []string) (RGBA, bool) {
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(args[i])
		if !ok {
			return RGBA{}, false
		}
		ch[i] = v
	}
	a := 1.0
	if len(args) == 4 {
		var ok bool
		if a, ok = parseAlpha(args[3]); !ok {
			return RGBA{}, false
		}
	}
	return RGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, true
}

func parseHSLArgs(args []string) (RGBA, bool) {
	h, ok := parseHue(args[0])
	if !ok {
		return RGBA{}, false
	}
	s, ok := parsePercent(args[1])
	if !ok {
		return RGBA{}, false
	}
	l, ok := parsePercent(args[2])
	if !ok {
		return RGBA{}, false
	}
	a := 1.0
	if len(args) == 4 {
		if a, ok = parseAlpha(args[3]); !ok {
			return RGBA{}, false
		}
	}
	r, g, b := hslToRGB(h, s, l)
	return RGBA{R: r, G: g, B: b, A: a}, true
}

// parseChannel reads a 0..255 number or a percentage.
func parseChannel(s string) (uint8, bool) {
	if s == "none" {
		return 0, true
	}
	var v float64
	if p, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		v = f * 255 / 100
	} else {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		v = f
	}
	return uint8(math.Round(clamp(v, 0, 255))), true
}

// parseAlpha reads a 0..1 number or a percentage. The parsed value is kept
// as-is so the source precision survives formatting.
func parseAlpha(s string) (float64, bool) {
	if s == "none" {
		return 0, true
	}
	if p, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return clamp(f/100, 0, 1), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp(f, 0, 1), true
}

// parsePercent reads a saturation/lightness value as a 0..1 fraction.
func parsePercent(s string) (float64, bool) {
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp(f/100, 0, 1), true
}

// parseHue reads an angle in degrees, accepting deg, rad, grad and turn units.
func parseHue(s string) (float64, bool) {
	if s == "none" {
		return 0, true
	}
	scale := 1.0
	for _, u := range []struct {
		suffix string
		scale  float64
	}{
		{"deg", 1},
		{"grad", 0.9},
		{"rad", 180 / math.Pi},
		{"turn", 360},
	} {
		if v, ok := strings.CutSuffix(s, u.suffix); ok {
			s, scale = v, u.scale
			break
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	h := math.Mod(f*scale, 360)
	if h < 0 {
		h += 360
	}
	return h, true
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	f := func(n float64) uint8 {
		k := math.Mod(n+h/30, 12)
		a := s * math.Min(l, 1-l)
		v := l - a*math.Max(-1, math.Min(k-3, math.Min(9-k, 1)))
		return uint8(math.Round(clamp(v*255, 0, 255)))
	}
	return f(0), f(8), f(4)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
