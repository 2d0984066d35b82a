package export

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/gnana997/uitokens/pkg/tokens"
)

const defaultBarWidth = 20

// ListOptions controls text rendering.
type ListOptions struct {
	// Limit caps the number of entries per list. 0 shows everything.
	Limit int

	// BarWidth is the width of the usage bar in cells. Defaults to 20.
	BarWidth int
}

// Usage is a ranked token with its share of the most-used value in its list.
type Usage struct {
	tokens.Token
	Ratio float64 `json:"ratio"`
}

// Usages computes count / maxCount for every entry of a ranked list.
func Usages(list []tokens.Token) []Usage {
	maxCount := 0
	for _, tok := range list {
		if tok.Count > maxCount {
			maxCount = tok.Count
		}
	}
	out := make([]Usage, len(list))
	for i, tok := range list {
		out[i] = Usage{Token: tok}
		if maxCount > 0 {
			out[i].Ratio = float64(tok.Count) / float64(maxCount)
		}
	}
	return out
}

// Stats are the headline counts of a report.
type Stats struct {
	Colors    int `json:"colors"`
	FontSizes int `json:"fontSizes"`
	Spacing   int `json:"spacing"`
}

// Summarize counts distinct colors, font sizes and spacing values
// (margins, paddings and gaps together).
func Summarize(report *tokens.TokenReport) Stats {
	return Stats{
		Colors:    len(report.Colors.All),
		FontSizes: len(report.Typography.FontSizes),
		Spacing: len(report.Spacing.Margins) +
			len(report.Spacing.Paddings) +
			len(report.Spacing.Gaps),
	}
}

// sectionTitles labels every category for text output.
var sectionTitles = map[tokens.Category]string{
	tokens.AllColors:       "Colors / All",
	tokens.TextColor:       "Colors / Text",
	tokens.BackgroundColor: "Colors / Background",
	tokens.BorderColor:     "Colors / Border",
	tokens.FontFamily:      "Typography / Font families",
	tokens.FontSize:        "Typography / Font sizes",
	tokens.FontWeight:      "Typography / Font weights",
	tokens.LineHeight:      "Typography / Line heights",
	tokens.LetterSpacing:   "Typography / Letter spacings",
	tokens.Margin:          "Spacing / Margins",
	tokens.Padding:         "Spacing / Paddings",
	tokens.Gap:             "Spacing / Gaps",
	tokens.BorderWidth:     "Borders / Widths",
	tokens.BorderRadius:    "Borders / Radii",
	tokens.BorderStyle:     "Borders / Styles",
	tokens.Shadow:          "Effects / Shadows",
	tokens.Transition:      "Effects / Transitions",
}

// Title returns the display title of a category.
func Title(c tokens.Category) string {
	if t, ok := sectionTitles[c]; ok {
		return t
	}
	return string(c)
}

// WriteList renders one ranked list: value, usage count and a bar scaled to
// the most-used value.
func WriteList(w io.Writer, c tokens.Category, list []tokens.Token, opts ListOptions) error {
	if opts.BarWidth <= 0 {
		opts.BarWidth = defaultBarWidth
	}

	if _, err := fmt.Fprintf(w, "%s (%d)\n", Title(c), len(list)); err != nil {
		return err
	}
	if len(list) == 0 {
		empty := "No tokens found"
		if c.IsColor() {
			empty = "No colors found"
		}
		_, err := fmt.Fprintf(w, "  %s\n", empty)
		return err
	}

	usages := Usages(list)
	if opts.Limit > 0 && len(usages) > opts.Limit {
		usages = usages[:opts.Limit]
	}

	valueW, countW := 0, 0
	for _, u := range usages {
		valueW = max(valueW, len(u.Value))
		countW = max(countW, len(humanize.Comma(int64(u.Count))))
	}

	for _, u := range usages {
		filled := int(math.Round(u.Ratio * float64(opts.BarWidth)))
		bar := strings.Repeat("█", filled) + strings.Repeat("░", opts.BarWidth-filled)
		if _, err := fmt.Fprintf(w, "  %-*s  %*s×  %s %3.0f%%\n",
			valueW, u.Value, countW, humanize.Comma(int64(u.Count)), bar, u.Ratio*100); err != nil {
			return err
		}
	}
	if hidden := len(list) - len(usages); hidden > 0 {
		if _, err := fmt.Fprintf(w, "  … %d more\n", hidden); err != nil {
			return err
		}
	}
	return nil
}

// WriteCustomProperties renders the custom-property snapshot sorted by name,
// each with the var() reference to copy.
func WriteCustomProperties(w io.Writer, props map[string]string) error {
	if _, err := fmt.Fprintf(w, "CSS variables (%d)\n", len(props)); err != nil {
		return err
	}
	if len(props) == 0 {
		_, err := fmt.Fprintln(w, "  No CSS variables found")
		return err
	}

	names := make([]string, 0, len(props))
	nameW := 0
	for name := range props {
		names = append(names, name)
		nameW = max(nameW, len(name))
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(w, "  %-*s  %s  var(%s)\n", nameW, name, props[name], name); err != nil {
			return err
		}
	}
	return nil
}

// WriteReport renders the page header, the headline stats, every category
// list and the custom properties.
func WriteReport(w io.Writer, report *tokens.TokenReport, opts ListOptions) error {
	stats := Summarize(report)
	header := fmt.Sprintf("%s\n%s\nGenerated %s\n\nColors: %d  Font sizes: %d  Spacing: %d\n",
		report.Meta.Title, report.Meta.URL,
		report.Meta.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		stats.Colors, stats.FontSizes, stats.Spacing)
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	for _, c := range tokens.Categories() {
		list, err := report.Tokens(c)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := WriteList(w, c, list, opts); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return WriteCustomProperties(w, report.CustomProperties)
}
