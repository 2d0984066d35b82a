package static

import (
	_ "embed"
	"log/slog"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

//go:embed ua.css
var userAgentCSS string

type origin int

const (
	originUserAgent origin = iota
	originAuthor
)

// declaration is a longhand declaration ready for the cascade. When the
// authored shorthand referenced custom properties, value holds the raw
// shorthand text and shorthand names it; the longhand is extracted after
// var() substitution.
type declaration struct {
	property  string
	value     string
	important bool
	shorthand string
	order     int
}

type styleRule struct {
	sel         cascadia.Sel
	specificity cascadia.Specificity
	origin      origin
	decls       []declaration
}

// compiler turns stylesheets into matchable rules, numbering declarations
// in source order across all sheets.
type compiler struct {
	rules []styleRule
	order int
	log   *slog.Logger
}

func (c *compiler) addSheet(text, name string, o origin) {
	sheet, err := parser.Parse(text)
	if err != nil {
		c.log.Warn("skipping unparseable stylesheet", "source", name, "error", err)
		return
	}
	c.addRules(sheet.Rules, o)
}

func (c *compiler) addRules(rules []*css.Rule, o origin) {
	for _, r := range rules {
		if r.Kind == css.AtRule {
			if descendAtRule(r) {
				c.addRules(r.Rules, o)
			}
			continue
		}

		decls := c.declarations(r.Declarations)
		if len(decls) == 0 {
			continue
		}
		for _, s := range r.Selectors {
			sel, err := cascadia.Parse(strings.TrimSpace(s))
			if err != nil {
				// :hover, :focus and friends never match a static page.
				c.log.Debug("skipping selector", "selector", s, "error", err)
				continue
			}
			if sel.PseudoElement() != "" {
				continue
			}
			c.rules = append(c.rules, styleRule{
				sel:         sel,
				specificity: sel.Specificity(),
				origin:      o,
				decls:       decls,
			})
		}
	}
}

// descendAtRule reports whether the rules nested in an at-rule apply to a
// screen rendering of the page.
func descendAtRule(r *css.Rule) bool {
	switch strings.ToLower(strings.TrimPrefix(r.Name, "@")) {
	case "media":
		prelude := strings.ToLower(strings.TrimSpace(r.Prelude))
		return !strings.HasPrefix(prelude, "print") && !strings.HasPrefix(prelude, "only print")
	case "supports", "layer", "container", "document", "scope":
		return true
	}
	return false
}

// declarations expands a declaration block into ordered longhands.
func (c *compiler) declarations(in []*css.Declaration) []declaration {
	var out []declaration
	for _, d := range in {
		prop := strings.TrimSpace(d.Property)
		if !strings.HasPrefix(prop, "--") {
			prop = strings.ToLower(prop)
		}
		value := strings.TrimSpace(d.Value)
		if prop == "" {
			continue
		}

		if strings.HasPrefix(prop, "--") {
			out = append(out, c.next(declaration{property: prop, value: value, important: d.Important}))
			continue
		}

		if strings.Contains(value, "var(") {
			if a, ok := aliases[prop]; ok {
				prop = a
			}
			if names := shorthandLonghands(prop); names != nil {
				for _, n := range names {
					out = append(out, c.next(declaration{property: n, value: value, important: d.Important, shorthand: prop}))
				}
				continue
			}
		}

		if longhands, ok := expand(prop, value); ok {
			for _, l := range longhands {
				out = append(out, c.next(declaration{property: l.property, value: l.value, important: d.Important}))
			}
			continue
		}
		if a, ok := aliases[prop]; ok {
			prop = a
		}
		out = append(out, c.next(declaration{property: prop, value: value, important: d.Important}))
	}
	return out
}

func (c *compiler) next(d declaration) declaration {
	d.order = c.order
	c.order++
	return d
}

// inline parses a style attribute.
func (c *compiler) inline(style string) []declaration {
	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		c.log.Debug("skipping unparseable style attribute", "style", style, "error", err)
		return nil
	}
	return c.declarations(decls)
}
