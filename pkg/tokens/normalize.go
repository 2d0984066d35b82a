package tokens

import "strings"

// transitionDefaults are the serializations of an unset transition.
var transitionDefaults = map[string]bool{
	"all 0s ease 0s": true,
	"all":            true,
}

// Normalize converts a resolved style value into its canonical token form.
// It reports false when the value is a sentinel that must not be counted
// (transparent colors, "none", "auto", zero lengths for box metrics, the
// default transition). It never fails: values it cannot interpret are
// returned unchanged.
func Normalize(raw string, category Category) (string, bool) {
	if raw == "" {
		return "", false
	}

	switch category {
	case TextColor, BackgroundColor, BorderColor, AllColors:
		return normalizeColor(raw)

	case FontSize:
		return normalizeLength(raw, false, false)
	case LineHeight, LetterSpacing:
		return normalizeLength(raw, false, true)
	case Margin, Padding, BorderWidth, BorderRadius:
		return normalizeLength(raw, true, false)
	case Gap:
		return normalizeLength(raw, true, true)

	case BorderStyle, Shadow:
		v := strings.TrimSpace(raw)
		if v == "" || v == "none" {
			return "", false
		}
		return v, true
	case Transition:
		if transitionDefaults[strings.TrimSpace(raw)] {
			return "", false
		}
		return raw, true
	}

	// FontFamily, FontWeight
	return raw, true
}

func normalizeColor(raw string) (string, bool) {
	c, ok := ParseColor(raw)
	if !ok {
		if strings.TrimSpace(raw) == "" {
			return "", false
		}
		return raw, true
	}
	if c.Transparent() {
		return "", false
	}
	return c.String(), true
}

// normalizeLength trims a length-like value and drops the "none" and "auto"
// sentinels, plus "0px" and "normal" where the category asks for it.
func normalizeLength(raw string, dropZero, dropNormal bool) (string, bool) {
	v := strings.TrimSpace(raw)
	switch {
	case v == "", v == "none", v == "auto":
		return "", false
	case dropZero && v == "0px":
		return "", false
	case dropNormal && v == "normal":
		return "", false
	}
	return v, true
}
