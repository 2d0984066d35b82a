package static

import (
	"strings"

	"github.com/gnana997/uitokens/pkg/tokens"
)

var (
	sides   = [4]string{"top", "right", "bottom", "left"}
	corners = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}
)

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

var borderWidthKeywords = map[string]string{
	"thin":   "1px",
	"medium": "3px",
	"thick":  "5px",
}

// longhand is one property/value pair produced by shorthand expansion.
type longhand struct {
	property string
	value    string
}

// aliases maps legacy property names onto the ones the cascade tracks.
var aliases = map[string]string{
	"grid-gap":        "gap",
	"grid-row-gap":    "row-gap",
	"grid-column-gap": "column-gap",
}

// expand rewrites a shorthand declaration into its longhands. It reports
// false when prop is not a shorthand. An invalid shorthand value expands
// to nothing, which drops the declaration.
func expand(prop, value string) ([]longhand, bool) {
	if a, ok := aliases[prop]; ok {
		prop = a
	}

	names := shorthandLonghands(prop)
	if names == nil {
		return nil, false
	}
	if cssWideKeywords[strings.ToLower(value)] {
		out := make([]longhand, len(names))
		for i, n := range names {
			out[i] = longhand{n, strings.ToLower(value)}
		}
		return out, true
	}

	parts := fields(value)
	switch prop {
	case "margin", "padding":
		return boxLonghands(prop+"-%s", parts, sides), true
	case "border-width", "border-style", "border-color":
		suffix := strings.TrimPrefix(prop, "border-")
		return boxLonghands("border-%s-"+suffix, parts, sides), true
	case "border-radius":
		// Elliptical radii ("10px / 20px") keep only the horizontal part.
		if i := indexOf(parts, "/"); i >= 0 {
			parts = parts[:i]
		}
		return boxLonghands("border-%s-radius", parts, corners), true
	case "border":
		width, style, color, ok := borderParts(parts)
		if !ok {
			return nil, true
		}
		var out []longhand
		for _, s := range sides {
			out = append(out,
				longhand{"border-" + s + "-width", width},
				longhand{"border-" + s + "-style", style},
				longhand{"border-" + s + "-color", color},
			)
		}
		return out, true
	case "border-top", "border-right", "border-bottom", "border-left":
		width, style, color, ok := borderParts(parts)
		if !ok {
			return nil, true
		}
		return []longhand{
			{prop + "-width", width},
			{prop + "-style", style},
			{prop + "-color", color},
		}, true
	case "background":
		return []longhand{{"background-color", backgroundColor(parts)}}, true
	case "font":
		return fontLonghands(parts), true
	case "gap":
		switch len(parts) {
		case 1:
			return []longhand{{"row-gap", parts[0]}, {"column-gap", parts[0]}}, true
		case 2:
			return []longhand{{"row-gap", parts[0]}, {"column-gap", parts[1]}}, true
		}
		return nil, true
	}
	return nil, false
}

// shorthandLonghands lists the longhands a shorthand sets, or nil.
func shorthandLonghands(prop string) []string {
	switch prop {
	case "margin", "padding":
		return boxNames(prop+"-%s", sides)
	case "border-width", "border-style", "border-color":
		return boxNames("border-%s-"+strings.TrimPrefix(prop, "border-"), sides)
	case "border-radius":
		return boxNames("border-%s-radius", corners)
	case "border":
		var names []string
		for _, s := range sides {
			names = append(names, "border-"+s+"-width", "border-"+s+"-style", "border-"+s+"-color")
		}
		return names
	case "border-top", "border-right", "border-bottom", "border-left":
		return []string{prop + "-width", prop + "-style", prop + "-color"}
	case "background":
		return []string{"background-color"}
	case "font":
		return []string{"font-weight", "font-size", "line-height", "font-family"}
	case "gap":
		return []string{"row-gap", "column-gap"}
	}
	return nil
}

func boxNames(pattern string, edges [4]string) []string {
	names := make([]string, 4)
	for i, e := range edges {
		names[i] = strings.Replace(pattern, "%s", e, 1)
	}
	return names
}

func boxLonghands(pattern string, parts []string, edges [4]string) []longhand {
	vals, ok := boxValues(parts)
	if !ok {
		return nil
	}
	out := make([]longhand, 4)
	for i, n := range boxNames(pattern, edges) {
		out[i] = longhand{n, vals[i]}
	}
	return out
}

// borderParts sorts the components of a border shorthand into width, style
// and color, defaulting the ones left out.
func borderParts(parts []string) (width, style, color string, ok bool) {
	width, style, color = "medium", "none", "currentcolor"
	if len(parts) == 0 || len(parts) > 3 {
		return "", "", "", false
	}
	for _, p := range parts {
		lp := strings.ToLower(p)
		switch {
		case borderStyles[lp]:
			style = lp
		case borderWidthKeywords[lp] != "" || isLength(lp):
			width = lp
		default:
			color = p
		}
	}
	return width, style, color, true
}

// backgroundColor picks the color layer out of a background shorthand.
func backgroundColor(parts []string) string {
	for _, p := range parts {
		if strings.EqualFold(p, "currentcolor") {
			return "currentcolor"
		}
		if _, ok := tokens.ParseColor(p); ok {
			return p
		}
	}
	return "transparent"
}

var fontPrefixKeywords = map[string]bool{
	"normal": true, "italic": true, "oblique": true, "small-caps": true,
	"ultra-condensed": true, "extra-condensed": true, "condensed": true, "semi-condensed": true,
	"semi-expanded": true, "expanded": true, "extra-expanded": true, "ultra-expanded": true,
}

var fontSizeKeywords = map[string]float64{
	"xx-small":  9,
	"x-small":   10,
	"small":     13,
	"medium":    16,
	"large":     18,
	"x-large":   24,
	"xx-large":  32,
	"xxx-large": 48,
}

// fontLonghands parses "[style] [variant] [weight] size[/line-height] family".
func fontLonghands(parts []string) []longhand {
	weight, lineHeight := "normal", "normal"

	i := 0
	for ; i < len(parts); i++ {
		lp := strings.ToLower(parts[i])
		if lp == "bold" || lp == "bolder" || lp == "lighter" {
			weight = lp
			continue
		}
		if f, unit, ok := parseDimension(lp); ok && unit == "" && f >= 1 && f <= 1000 {
			weight = lp
			continue
		}
		if fontPrefixKeywords[lp] {
			continue
		}
		break
	}
	if i >= len(parts) {
		return nil
	}

	size := parts[i]
	i++
	if s, lh, found := strings.Cut(size, "/"); found {
		size = s
		if lh != "" {
			lineHeight = lh
		} else if i < len(parts) {
			lineHeight = parts[i]
			i++
		}
	} else if i < len(parts) && strings.HasPrefix(parts[i], "/") {
		if lh := strings.TrimPrefix(parts[i], "/"); lh != "" {
			lineHeight = lh
			i++
		} else if i+1 < len(parts) {
			lineHeight = parts[i+1]
			i += 2
		}
	}

	if _, ok := fontSizeKeywords[strings.ToLower(size)]; !ok && !isLength(size) &&
		!strings.EqualFold(size, "smaller") && !strings.EqualFold(size, "larger") {
		return nil
	}
	if i >= len(parts) {
		return nil
	}

	return []longhand{
		{"font-weight", weight},
		{"font-size", size},
		{"line-height", lineHeight},
		{"font-family", strings.Join(parts[i:], " ")},
	}
}

func indexOf(parts []string, s string) int {
	for i, p := range parts {
		if p == s {
			return i
		}
	}
	return -1
}
