package tokens

import (
	"errors"
	"fmt"
)

// Category is one of the fixed token kinds. Each category owns an
// independent frequency table during an extraction pass.
type Category string

const (
	TextColor       Category = "text-color"
	BackgroundColor Category = "background-color"
	BorderColor     Category = "border-color"
	AllColors       Category = "all-colors"
	FontFamily      Category = "font-family"
	FontSize        Category = "font-size"
	FontWeight      Category = "font-weight"
	LineHeight      Category = "line-height"
	LetterSpacing   Category = "letter-spacing"
	Margin          Category = "margin"
	Padding         Category = "padding"
	Gap             Category = "gap"
	BorderWidth     Category = "border-width"
	BorderRadius    Category = "border-radius"
	BorderStyle     Category = "border-style"
	Shadow          Category = "shadow"
	Transition      Category = "transition"
)

// ErrUnknownCategory is returned when a category name is not one of the fixed kinds.
var ErrUnknownCategory = errors.New("unknown token category")

// categories lists every category in report order.
var categories = []Category{
	AllColors, TextColor, BackgroundColor, BorderColor,
	FontFamily, FontSize, FontWeight, LineHeight, LetterSpacing,
	Margin, Padding, Gap,
	BorderWidth, BorderRadius, BorderStyle,
	Shadow, Transition,
}

// Categories returns all categories in report order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory resolves a category name.
func ParseCategory(name string) (Category, error) {
	for _, c := range categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// IsColor reports whether the category holds color values.
func (c Category) IsColor() bool {
	switch c {
	case TextColor, BackgroundColor, BorderColor, AllColors:
		return true
	}
	return false
}

// foldsIntoAllColors reports whether observations of c are also counted in AllColors.
func (c Category) foldsIntoAllColors() bool {
	return c == TextColor || c == BackgroundColor || c == BorderColor
}

// property binds one resolved style property to the category it feeds.
type property struct {
	Name     string
	Category Category
}

// trackedProperties is the fixed list of properties requested for every element.
var trackedProperties = []property{
	{"color", TextColor},
	{"background-color", BackgroundColor},
	{"border-top-color", BorderColor},
	{"border-right-color", BorderColor},
	{"border-bottom-color", BorderColor},
	{"border-left-color", BorderColor},
	{"font-family", FontFamily},
	{"font-size", FontSize},
	{"font-weight", FontWeight},
	{"line-height", LineHeight},
	{"letter-spacing", LetterSpacing},
	{"margin-top", Margin},
	{"margin-right", Margin},
	{"margin-bottom", Margin},
	{"margin-left", Margin},
	{"padding-top", Padding},
	{"padding-right", Padding},
	{"padding-bottom", Padding},
	{"padding-left", Padding},
	{"gap", Gap},
	{"border-top-width", BorderWidth},
	{"border-right-width", BorderWidth},
	{"border-bottom-width", BorderWidth},
	{"border-left-width", BorderWidth},
	{"border-top-left-radius", BorderRadius},
	{"border-top-right-radius", BorderRadius},
	{"border-bottom-right-radius", BorderRadius},
	{"border-bottom-left-radius", BorderRadius},
	{"border-top-style", BorderStyle},
	{"border-right-style", BorderStyle},
	{"border-bottom-style", BorderStyle},
	{"border-left-style", BorderStyle},
	{"box-shadow", Shadow},
	{"text-shadow", Shadow},
	{"transition", Transition},
}

// TrackedProperties returns the names of the resolved style properties the
// sampler reads for every element, in sampling order. Sources that prefetch
// styles use it to limit what they collect.
func TrackedProperties() []string {
	names := make([]string, len(trackedProperties))
	for i, p := range trackedProperties {
		names[i] = p.Name
	}
	return names
}
