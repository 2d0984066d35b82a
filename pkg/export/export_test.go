package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uitokens/pkg/tokens"
)

func sampleReport() *tokens.TokenReport {
	agg := tokens.NewAggregator()
	for i := 0; i < 5; i++ {
		agg.Record(tokens.TextColor, "#ff0000")
	}
	agg.Record(tokens.BackgroundColor, "#00ff00")
	agg.Record(tokens.BorderColor, "#00ff00")
	agg.Record(tokens.Margin, "8px")
	agg.Record(tokens.Margin, "16px")
	agg.Record(tokens.Margin, "16px")
	agg.Record(tokens.FontSize, "16px")
	agg.Record(tokens.BorderRadius, "4px")
	agg.Record(tokens.BackgroundColor, "rgba(0, 0, 0, 0.5)")

	return tokens.Shape(agg, map[string]string{"--brand": "#ff0000", "--gap": "4px"}, tokens.Meta{
		URL:       "https://example.com/",
		Title:     "Example",
		Timestamp: time.Date(2026, 10, 19, 8, 0, 0, 250_000_000, time.UTC),
	})
}

func TestCSS_Order(t *testing.T) {
	report := sampleReport()
	require.Equal(t, []tokens.Token{{Value: "#ff0000", Count: 5}, {Value: "#00ff00", Count: 2}, {Value: "rgba(0, 0, 0, 0.5)", Count: 1}}, report.Colors.All)

	want := ":root {\n" +
		"  --color-1: #ff0000;\n" +
		"  --color-2: #00ff00;\n" +
		"  --color-3: rgba(0, 0, 0, 0.5);\n" +
		"  --spacing-1: 16px;\n" +
		"  --spacing-2: 8px;\n" +
		"  --font-size-1: 16px;\n" +
		"  --radius-1: 4px;\n" +
		"}\n"
	assert.Equal(t, want, CSS(report))
}

func TestCSS_Empty(t *testing.T) {
	report := tokens.Shape(tokens.NewAggregator(), nil, tokens.Meta{})
	assert.Equal(t, ":root {\n}\n", CSS(report))
}

func TestJSON_RoundTrip(t *testing.T) {
	report := sampleReport()

	data, err := JSON(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"colors\": {")
	assert.Contains(t, string(data), `"cssVariables"`)
	assert.Contains(t, string(data), `"timestamp": "2026-10-19T08:00:00.25Z"`)

	back, err := ParseJSON(data)
	require.NoError(t, err)
	assert.True(t, report.Meta.Timestamp.Equal(back.Meta.Timestamp))
	back.Meta.Timestamp = report.Meta.Timestamp
	assert.Equal(t, report, back)
}

func TestJSON_EmptyListsAreArrays(t *testing.T) {
	report := tokens.Shape(tokens.NewAggregator(), nil, tokens.Meta{})
	data, err := JSON(report)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "null")
	assert.Contains(t, string(data), `"shadows": []`)
	assert.Contains(t, string(data), `"cssVariables": {}`)
}

func TestParseJSON_Invalid(t *testing.T) {
	_, err := ParseJSON([]byte("{"))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "JSON": FormatJSON, "css": FormatCSS, "text": FormatSummary, "summary": FormatSummary} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("yaml")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	ts := time.UnixMilli(1760000000123)
	assert.Equal(t, "design-tokens-1760000000123.json", Filename(FormatJSON, ts))
	assert.Equal(t, "design-tokens-1760000000123.css", Filename(FormatCSS, ts))
}

func TestUsages(t *testing.T) {
	u := Usages([]tokens.Token{{Value: "a", Count: 4}, {Value: "b", Count: 1}})
	require.Len(t, u, 2)
	assert.Equal(t, 1.0, u[0].Ratio)
	assert.Equal(t, 0.25, u[1].Ratio)
	assert.Empty(t, Usages(nil))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Stats{Colors: 3, FontSizes: 1, Spacing: 2}, Summarize(sampleReport()))
}

func TestWriteList(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteList(&b, tokens.Margin, []tokens.Token{
		{Value: "16px", Count: 1200},
		{Value: "8px", Count: 300},
		{Value: "4px", Count: 1},
	}, ListOptions{Limit: 2, BarWidth: 4}))

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Spacing / Margins (3)", lines[0])
	assert.Equal(t, "  16px  1,200×  ████ 100%", lines[1])
	assert.Equal(t, "  8px     300×  █░░░  25%", lines[2])
	assert.Equal(t, "  … 1 more", lines[3])
}

func TestWriteList_Empty(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteList(&b, tokens.TextColor, nil, ListOptions{}))
	assert.Equal(t, "Colors / Text (0)\n  No colors found\n", b.String())
}

func TestWriteReport(t *testing.T) {
	out, err := Render(sampleReport(), FormatSummary)
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, "Example\nhttps://example.com/\n"))
	assert.Contains(t, s, "Colors: 3  Font sizes: 1  Spacing: 2")
	assert.Contains(t, s, "Effects / Transitions (0)\n  No tokens found")
	assert.Contains(t, s, "  --brand  #ff0000  var(--brand)")
	assert.Less(t, strings.Index(s, "--brand"), strings.Index(s, "--gap"))
}
