package static

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/gnana997/uitokens/pkg/tokens"
)

// inherited properties take the parent's computed value when unset.
var inherited = map[string]bool{
	"color":          true,
	"font-family":    true,
	"font-size":      true,
	"font-weight":    true,
	"line-height":    true,
	"letter-spacing": true,
	"text-shadow":    true,
}

// initialValues are the CSS initial values of every property the cascade
// computes. Colors are rendered in computed form later.
var initialValues = map[string]string{
	"color":            "rgb(0, 0, 0)",
	"background-color": "transparent",
	"font-family":      `"Times New Roman"`,
	"font-size":        "16px",
	"font-weight":      "400",
	"line-height":      "normal",
	"letter-spacing":   "normal",
	"row-gap":          "normal",
	"column-gap":       "normal",
	"box-shadow":       "none",
	"text-shadow":      "none",
	"transition":       "all 0s ease 0s",
}

func init() {
	for _, s := range sides {
		initialValues["margin-"+s] = "0px"
		initialValues["padding-"+s] = "0px"
		initialValues["border-"+s+"-width"] = "medium"
		initialValues["border-"+s+"-style"] = "none"
		initialValues["border-"+s+"-color"] = "currentcolor"
	}
	for _, c := range corners {
		initialValues["border-"+c+"-radius"] = "0px"
	}
}

// computeOrder lists properties so that every dependency (font-size for
// em units, color for currentcolor, border style for border width) is
// computed before its dependents.
var computeOrder = func() []string {
	order := []string{"font-size", "color", "font-family", "font-weight", "line-height", "letter-spacing", "background-color"}
	for _, part := range []string{"style", "width", "color"} {
		for _, s := range sides {
			order = append(order, "border-"+s+"-"+part)
		}
	}
	for _, c := range corners {
		order = append(order, "border-"+c+"-radius")
	}
	for _, p := range []string{"margin", "padding"} {
		for _, s := range sides {
			order = append(order, p+"-"+s)
		}
	}
	return append(order, "row-gap", "column-gap", "box-shadow", "text-shadow", "transition")
}()

// computedStyle is an element's computed values, used both as the parent
// for inheritance and to produce the resolved snapshot.
type computedStyle struct {
	values map[string]string
	custom map[string]string
	fontPx float64
}

// initialStyle stands in as the parent of the root element.
func initialStyle() *computedStyle {
	cs := &computedStyle{
		values: make(map[string]string, len(initialValues)),
		custom: map[string]string{},
		fontPx: 16,
	}
	for k, v := range initialValues {
		cs.values[k] = v
	}
	cs.values["background-color"] = computeColor("transparent")
	return cs
}

type weight struct {
	level       int
	inline      bool
	specificity [3]int
	order       int
}

func (a weight) less(b weight) bool {
	if a.level != b.level {
		return a.level < b.level
	}
	if a.inline != b.inline {
		return !a.inline
	}
	if a.specificity != b.specificity {
		for i := range a.specificity {
			if a.specificity[i] != b.specificity[i] {
				return a.specificity[i] < b.specificity[i]
			}
		}
	}
	return a.order < b.order
}

func cascadeLevel(o origin, important bool) int {
	switch {
	case o == originUserAgent && !important:
		return 0
	case o == originAuthor && !important:
		return 1
	case o == originAuthor:
		return 2
	}
	return 3
}

type winner struct {
	decl declaration
	w    weight
}

// cascade picks the winning declaration per property for one element.
func cascade(n *html.Node, rules []styleRule, inline []declaration) map[string]winner {
	won := make(map[string]winner)
	consider := func(d declaration, w weight) {
		if cur, ok := won[d.property]; ok && !cur.w.less(w) {
			return
		}
		won[d.property] = winner{decl: d, w: w}
	}

	for _, r := range rules {
		if !r.sel.Match(n) {
			continue
		}
		for _, d := range r.decls {
			consider(d, weight{
				level:       cascadeLevel(r.origin, d.important),
				specificity: [3]int(r.specificity),
				order:       d.order,
			})
		}
	}
	for _, d := range inline {
		consider(d, weight{
			level:  cascadeLevel(originAuthor, d.important),
			inline: true,
			order:  d.order,
		})
	}
	return won
}

// computeElement derives an element's computed style from its cascaded
// declarations and its parent. rootPx is the root element's font size, or
// zero while computing the root itself.
func computeElement(won map[string]winner, parent *computedStyle, rootPx float64) *computedStyle {
	cs := &computedStyle{
		values: make(map[string]string, len(computeOrder)),
		custom: make(map[string]string, len(parent.custom)),
	}
	for k, v := range parent.custom {
		cs.custom[k] = v
	}

	var declared []string
	for prop, w := range won {
		if !strings.HasPrefix(prop, tokens.CustomPropertyPrefix) {
			continue
		}
		switch strings.ToLower(w.decl.value) {
		case "inherit", "unset", "revert", "revert-layer":
		case "initial":
			delete(cs.custom, prop)
		default:
			cs.custom[prop] = w.decl.value
			declared = append(declared, prop)
		}
	}
	resolved := make(map[string]string, len(declared))
	for _, name := range declared {
		if v, ok := substituteVars(cs.custom[name], cs.custom); ok {
			resolved[name] = v
		} else if pv, ok := parent.custom[name]; ok {
			resolved[name] = pv
		} else {
			resolved[name] = ""
		}
	}
	for name, v := range resolved {
		if v == "" {
			delete(cs.custom, name)
		} else {
			cs.custom[name] = v
		}
	}

	if rootPx == 0 {
		rootPx = 16
	}

	for _, prop := range computeOrder {
		v := specifiedValue(prop, won, cs.custom)
		switch strings.ToLower(v) {
		case "", "unset", "revert", "revert-layer":
			if inherited[prop] {
				v = "inherit"
			} else {
				v = "initial"
			}
		}
		switch strings.ToLower(v) {
		case "inherit":
			cs.values[prop] = parent.values[prop]
			if prop == "font-size" {
				cs.fontPx = parent.fontPx
			}
			continue
		case "initial":
			v = initialValues[prop]
		}

		cv, ok := computeValue(prop, v, cs, parent, rootPx)
		if !ok {
			// Invalid at computed-value time behaves as unset.
			if inherited[prop] {
				cv = parent.values[prop]
				if prop == "font-size" {
					cs.fontPx = parent.fontPx
				}
			} else {
				cv, _ = computeValue(prop, initialValues[prop], cs, parent, rootPx)
			}
		}
		cs.values[prop] = cv
	}
	return cs
}

// specifiedValue returns the cascaded value of prop with var() references
// substituted, or "unset" when substitution fails.
func specifiedValue(prop string, won map[string]winner, custom map[string]string) string {
	w, ok := won[prop]
	if !ok {
		return ""
	}
	v := w.decl.value
	if !strings.Contains(v, "var(") {
		return v
	}
	sub, ok := substituteVars(v, custom)
	if !ok {
		return "unset"
	}
	if w.decl.shorthand == "" {
		return sub
	}
	longhands, _ := expand(w.decl.shorthand, sub)
	for _, l := range longhands {
		if l.property == prop {
			return l.value
		}
	}
	return "unset"
}

func computeValue(prop, v string, cs, parent *computedStyle, rootPx float64) (string, bool) {
	v = strings.TrimSpace(v)
	switch {
	case prop == "font-size":
		px, ok := fontSizePx(v, parent.fontPx, rootPx)
		if !ok {
			return "", false
		}
		cs.fontPx = px
		return formatPx(px), true

	case prop == "color":
		if strings.EqualFold(v, "currentcolor") {
			return parent.values["color"], true
		}
		return computeColor(v), true

	case prop == "background-color" || strings.HasSuffix(prop, "-color"):
		if strings.EqualFold(v, "currentcolor") {
			return cs.values["color"], true
		}
		return computeColor(v), true

	case prop == "font-weight":
		return fontWeight(v, parent.values["font-weight"])

	case prop == "line-height":
		if strings.EqualFold(v, "normal") {
			return "normal", true
		}
		f, unit, ok := parseDimension(v)
		if ok && unit == "" {
			// Unitless line heights inherit as numbers.
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
		if ok && unit == "%" {
			return formatPx(cs.fontPx * f / 100), true
		}
		if px, ok := lengthPx(v, cs.fontPx, rootPx); ok {
			return formatPx(px), true
		}
		return "", false

	case prop == "letter-spacing":
		if strings.EqualFold(v, "normal") {
			return "normal", true
		}
		if px, ok := lengthPx(v, cs.fontPx, rootPx); ok {
			return formatPx(px), true
		}
		return "", false

	case strings.HasSuffix(prop, "-style"):
		lv := strings.ToLower(v)
		if !borderStyles[lv] {
			return "", false
		}
		return lv, true

	case strings.HasSuffix(prop, "-width"):
		side := strings.TrimSuffix(strings.TrimPrefix(prop, "border-"), "-width")
		if style := cs.values["border-"+side+"-style"]; style == "none" || style == "hidden" {
			return "0px", true
		}
		if kw, ok := borderWidthKeywords[strings.ToLower(v)]; ok {
			return kw, true
		}
		if px, ok := lengthPx(v, cs.fontPx, rootPx); ok {
			return formatPx(px), true
		}
		return "", false

	case strings.HasSuffix(prop, "-radius") || strings.HasPrefix(prop, "margin-") ||
		strings.HasPrefix(prop, "padding-") || strings.HasSuffix(prop, "-gap"):
		return resolveLengths(v, cs.fontPx, rootPx), true

	default:
		return collapse(v), true
	}
}

// computeColor renders a color in the rgb()/rgba() form computed styles
// use. Values that do not parse (system colors, color-mix()) are kept.
func computeColor(v string) string {
	c, ok := tokens.ParseColor(v)
	if !ok {
		return collapse(v)
	}
	if c.A >= 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

func fontSizePx(v string, parentPx, rootPx float64) (float64, bool) {
	lv := strings.ToLower(v)
	if px, ok := fontSizeKeywords[lv]; ok {
		return px, true
	}
	switch lv {
	case "smaller":
		return parentPx / 1.2, true
	case "larger":
		return parentPx * 1.2, true
	}
	f, unit, ok := parseDimension(lv)
	if !ok {
		return 0, false
	}
	if unit == "%" {
		return parentPx * f / 100, true
	}
	// em in font-size is relative to the parent's font size.
	return lengthPx(lv, parentPx, rootPx)
}

// fontWeight resolves keywords to numeric weights, including the relative
// bolder and lighter against the parent's weight.
func fontWeight(v, parent string) (string, bool) {
	lv := strings.ToLower(v)
	switch lv {
	case "normal":
		return "400", true
	case "bold":
		return "700", true
	}

	pw, err := strconv.ParseFloat(parent, 64)
	if err != nil {
		pw = 400
	}
	switch lv {
	case "bolder":
		switch {
		case pw < 350:
			return "400", true
		case pw < 550:
			return "700", true
		default:
			return "900", true
		}
	case "lighter":
		switch {
		case pw < 100:
			return parent, true
		case pw < 550:
			return "100", true
		case pw < 750:
			return "400", true
		default:
			return "700", true
		}
	}

	f, unit, ok := parseDimension(lv)
	if !ok || unit != "" || f < 1 || f > 1000 {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// resolvedSnapshot produces the resolved values reported for the tracked
// properties. Unitless line heights become pixels and the two gap
// longhands fold back into gap.
func resolvedSnapshot(cs *computedStyle) tokens.StyleSnapshot {
	props := tokens.TrackedProperties()
	snap := make(tokens.StyleSnapshot, len(props))
	for _, p := range props {
		switch p {
		case "gap":
			row, col := cs.values["row-gap"], cs.values["column-gap"]
			if row == col {
				snap[p] = row
			} else {
				snap[p] = row + " " + col
			}
		case "line-height":
			lh := cs.values[p]
			if f, unit, ok := parseDimension(lh); ok && unit == "" {
				lh = formatPx(f * cs.fontPx)
			}
			snap[p] = lh
		default:
			snap[p] = cs.values[p]
		}
	}
	return snap
}
