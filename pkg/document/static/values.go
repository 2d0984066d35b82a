package static

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// cssWideKeywords are accepted by every property.
var cssWideKeywords = map[string]bool{
	"inherit":      true,
	"initial":      true,
	"unset":        true,
	"revert":       true,
	"revert-layer": true,
}

// fields splits a value on whitespace outside parentheses and quotes, so
// "1px solid rgb(0, 0, 0)" yields three parts.
func fields(v string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	var quote rune

	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}

	for _, r := range v {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			cur.WriteRune(r)
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// collapse normalizes runs of whitespace to single spaces.
func collapse(v string) string {
	return strings.Join(fields(v), " ")
}

var dimensionRe = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+)(?:e[+-]?\d+)?)([a-z%]*)$`)

// parseDimension splits "1.5em" into 1.5 and "em".
func parseDimension(v string) (float64, string, bool) {
	m := dimensionRe.FindStringSubmatch(strings.ToLower(v))
	if m == nil {
		return 0, "", false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	return f, m[2], true
}

// isLength reports whether v is a length, a percentage, a unitless zero or
// a math function.
func isLength(v string) bool {
	if strings.HasPrefix(v, "calc(") || strings.HasPrefix(v, "clamp(") ||
		strings.HasPrefix(v, "min(") || strings.HasPrefix(v, "max(") {
		return true
	}
	f, unit, ok := parseDimension(v)
	if !ok {
		return false
	}
	return unit != "" || f == 0
}

// absoluteUnits maps absolute length units to pixels.
var absoluteUnits = map[string]float64{
	"px": 1,
	"pt": 4.0 / 3.0,
	"pc": 16,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
	"q":  96 / 101.6,
}

// lengthPx resolves one length component to pixels relative to the
// element's and the root's font size. Percentages, viewport units and
// math functions are not resolved.
func lengthPx(v string, fontPx, rootPx float64) (float64, bool) {
	f, unit, ok := parseDimension(v)
	if !ok {
		return 0, false
	}
	switch unit {
	case "":
		if f == 0 {
			return 0, true
		}
		return 0, false
	case "em":
		return f * fontPx, true
	case "rem":
		return f * rootPx, true
	case "ex", "ch":
		return f * fontPx / 2, true
	}
	if scale, ok := absoluteUnits[unit]; ok {
		return f * scale, true
	}
	return 0, false
}

// resolveLengths converts every resolvable component of a space-separated
// value to pixels, leaving the rest as written.
func resolveLengths(v string, fontPx, rootPx float64) string {
	parts := fields(v)
	for i, p := range parts {
		if px, ok := lengthPx(p, fontPx, rootPx); ok {
			parts[i] = formatPx(px)
		}
	}
	return strings.Join(parts, " ")
}

// formatPx renders a pixel value the way computed styles do: "16px",
// "21.3333px".
func formatPx(f float64) string {
	r := math.Round(f*10000) / 10000
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64) + "px"
}

// boxValues expands the 1 to 4 value box syntax into top, right, bottom, left
// (or top-left, top-right, bottom-right, bottom-left for radii).
func boxValues(parts []string) ([4]string, bool) {
	switch len(parts) {
	case 1:
		return [4]string{parts[0], parts[0], parts[0], parts[0]}, true
	case 2:
		return [4]string{parts[0], parts[1], parts[0], parts[1]}, true
	case 3:
		return [4]string{parts[0], parts[1], parts[2], parts[1]}, true
	case 4:
		return [4]string{parts[0], parts[1], parts[2], parts[3]}, true
	}
	return [4]string{}, false
}

// substituteVars replaces every var(--name[, fallback]) in v using custom.
// It reports false when a reference cannot be resolved and has no
// fallback, or when references nest deeper than maxVarDepth.
func substituteVars(v string, custom map[string]string) (string, bool) {
	return substitute(v, custom, 0)
}

const maxVarDepth = 16

func substitute(v string, custom map[string]string, depth int) (string, bool) {
	if depth > maxVarDepth {
		return "", false
	}
	for {
		start := strings.Index(v, "var(")
		if start < 0 {
			return v, true
		}
		end := matchParen(v, start+3)
		if end < 0 {
			return "", false
		}

		inner := v[start+4 : end]
		name, fallback, hasFallback := strings.Cut(inner, ",")
		name = strings.TrimSpace(name)

		var repl string
		if val, ok := custom[name]; ok {
			r, ok := substitute(val, custom, depth+1)
			if !ok {
				return "", false
			}
			repl = r
		} else if hasFallback {
			r, ok := substitute(strings.TrimSpace(fallback), custom, depth+1)
			if !ok {
				return "", false
			}
			repl = r
		} else {
			return "", false
		}

		v = v[:start] + repl + v[end+1:]
	}
}

// matchParen returns the index of the parenthesis closing the one at open.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
