// Package tokens extracts design tokens from the resolved styles of a page.
//
// An extraction pass walks every element of a Source, normalizes each
// tracked style property (colors to hex or rgba, length sentinels dropped),
// counts canonical values per Category and shapes the counts into a
// TokenReport whose lists are ranked by usage.
//
//	ex := tokens.NewExtractor(tokens.ExtractorConfig{Logger: logger})
//	report, err := ex.Extract(src)
//	if errors.Is(err, tokens.ErrUnreachableTarget) {
//	    // the page could not be analyzed
//	}
package tokens
