package tokens

import (
	"fmt"
	"time"
)

// ColorTokens groups the color inventories.
type ColorTokens struct {
	All        []Token `json:"all"`
	Text       []Token `json:"text"`
	Background []Token `json:"background"`
	Border     []Token `json:"border"`
}

// TypographyTokens groups the font inventories.
type TypographyTokens struct {
	FontFamilies   []Token `json:"fontFamilies"`
	FontSizes      []Token `json:"fontSizes"`
	FontWeights    []Token `json:"fontWeights"`
	LineHeights    []Token `json:"lineHeights"`
	LetterSpacings []Token `json:"letterSpacings"`
}

// SpacingTokens groups the box spacing inventories.
type SpacingTokens struct {
	Margins  []Token `json:"margins"`
	Paddings []Token `json:"paddings"`
	Gaps     []Token `json:"gaps"`
}

// BorderTokens groups the border inventories.
type BorderTokens struct {
	Widths []Token `json:"widths"`
	Radii  []Token `json:"radii"`
	Styles []Token `json:"styles"`
}

// Meta describes the page a report was built from.
type Meta struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// TokenReport is the result of one extraction pass. It is handed to the
// caller and never touched by the engine afterwards.
type TokenReport struct {
	Colors           ColorTokens       `json:"colors"`
	Typography       TypographyTokens  `json:"typography"`
	Spacing          SpacingTokens     `json:"spacing"`
	Borders          BorderTokens      `json:"borders"`
	Shadows          []Token           `json:"shadows"`
	Transitions      []Token           `json:"transitions"`
	CustomProperties map[string]string `json:"cssVariables"`
	Meta             Meta              `json:"meta"`
}

// slot returns a pointer to the ranked list backing category.
func (r *TokenReport) slot(c Category) *[]Token {
	switch c {
	case AllColors:
		return &r.Colors.All
	case TextColor:
		return &r.Colors.Text
	case BackgroundColor:
		return &r.Colors.Background
	case BorderColor:
		return &r.Colors.Border
	case FontFamily:
		return &r.Typography.FontFamilies
	case FontSize:
		return &r.Typography.FontSizes
	case FontWeight:
		return &r.Typography.FontWeights
	case LineHeight:
		return &r.Typography.LineHeights
	case LetterSpacing:
		return &r.Typography.LetterSpacings
	case Margin:
		return &r.Spacing.Margins
	case Padding:
		return &r.Spacing.Paddings
	case Gap:
		return &r.Spacing.Gaps
	case BorderWidth:
		return &r.Borders.Widths
	case BorderRadius:
		return &r.Borders.Radii
	case BorderStyle:
		return &r.Borders.Styles
	case Shadow:
		return &r.Shadows
	case Transition:
		return &r.Transitions
	}
	return nil
}

// Tokens returns the ranked list for category.
func (r *TokenReport) Tokens(c Category) ([]Token, error) {
	s := r.slot(c)
	if s == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}
	return *s, nil
}

// Clone returns a deep copy of the report.
func (r *TokenReport) Clone() *TokenReport {
	out := &TokenReport{Meta: r.Meta}
	for _, c := range categories {
		src := *r.slot(c)
		dst := make([]Token, len(src))
		copy(dst, src)
		*out.slot(c) = dst
	}
	out.CustomProperties = make(map[string]string, len(r.CustomProperties))
	for k, v := range r.CustomProperties {
		out.CustomProperties[k] = v
	}
	return out
}

// Shape turns the aggregated tables into a report. Every category list is
// ranked by count descending with ties in first-seen order, and is never
// nil. Meta is taken as given.
func Shape(agg *Aggregator, custom map[string]string, meta Meta) *TokenReport {
	r := &TokenReport{Meta: meta}
	for _, c := range categories {
		*r.slot(c) = agg.Table(c).Ranked()
	}
	if custom == nil {
		custom = make(map[string]string)
	}
	r.CustomProperties = custom
	return r
}
