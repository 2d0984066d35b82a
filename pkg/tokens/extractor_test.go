package tokens

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

var fixedNow = time.Date(2026, 10, 19, 12, 30, 0, 123456789, time.UTC)

func testExtractor() *Extractor {
	return NewExtractor(ExtractorConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return fixedNow },
	})
}

func fixtureSnapshot() *Snapshot {
	return &Snapshot{
		PageURL:   "https://example.com/",
		PageTitle: "Example",
		Nodes: []StyleSnapshot{
			{
				"color":            "rgb(0, 0, 0)",
				"background-color": "rgba(0, 0, 0, 0)",
				"font-family":      "Inter, sans-serif",
				"font-size":        "16px",
				"font-weight":      "400",
				"line-height":      "normal",
				"margin-top":       "8px",
				"margin-right":     "8px",
				"margin-bottom":    "8px",
				"margin-left":      "8px",
				"padding-top":      "0px",
				"box-shadow":       "none",
				"transition":       "all 0s ease 0s",
			},
			{
				"color":                  "rgb(255, 0, 0)",
				"background-color":       "rgb(255, 255, 255)",
				"border-top-color":       "rgb(255, 255, 255)",
				"border-top-width":       "1px",
				"border-top-style":       "solid",
				"border-left-style":      "none",
				"font-family":            "Inter, sans-serif",
				"font-size":              "24px",
				"font-weight":            "700",
				"padding-top":            "12px",
				"padding-bottom":         "12px",
				"gap":                    "normal",
				"border-top-left-radius": "4px",
				"box-shadow":             "rgba(0, 0, 0, 0.1) 0px 1px 2px 0px",
				"transition":             "opacity 0.2s ease 0s",
			},
			{
				"color":            "rgba(10, 20, 30, 0.5)",
				"background-color": "transparent",
				"font-size":        "16px",
				"gap":              "16px",
				"text-shadow":      "none",
			},
		},
		Root: StyleSnapshot{
			"--brand":   "  #ff0000 ",
			"--spacing": "8px",
			"--empty":   "   ",
			"color":     "rgb(0, 0, 0)",
		},
	}
}

type duplicateSource struct {
	*Snapshot
}

func (d duplicateSource) Elements() ([]NodeID, error) {
	ids, _ := d.Snapshot.Elements()
	return append(ids, ids...), nil
}

type brokenSource struct {
	*Snapshot
	elementsErr error
	rootErr     error
}

func (b brokenSource) Elements() ([]NodeID, error) {
	if b.elementsErr != nil {
		return nil, b.elementsErr
	}
	return b.Snapshot.Elements()
}

func (b brokenSource) RootStyle() (StyleSnapshot, error) {
	if b.rootErr != nil {
		return nil, b.rootErr
	}
	return b.Snapshot.RootStyle()
}

func sumCounts(list []Token) int {
	n := 0
	for _, tok := range list {
		n += tok.Count
	}
	return n
}

// --- tests ---

func TestExtract_Fixture(t *testing.T) {
	report, err := testExtractor().Extract(fixtureSnapshot())
	require.NoError(t, err)

	assert.Equal(t, []Token{
		{Value: "#000000", Count: 1},
		{Value: "#ff0000", Count: 1},
		{Value: "rgba(10, 20, 30, 0.5)", Count: 1},
	}, report.Colors.Text)
	assert.Equal(t, []Token{{Value: "#ffffff", Count: 1}}, report.Colors.Background)
	assert.Equal(t, []Token{{Value: "#ffffff", Count: 1}}, report.Colors.Border)
	assert.Equal(t, []Token{
		{Value: "#ffffff", Count: 2},
		{Value: "#000000", Count: 1},
		{Value: "#ff0000", Count: 1},
		{Value: "rgba(10, 20, 30, 0.5)", Count: 1},
	}, report.Colors.All)

	assert.Equal(t, []Token{{Value: "Inter, sans-serif", Count: 2}}, report.Typography.FontFamilies)
	assert.Equal(t, []Token{{Value: "16px", Count: 2}, {Value: "24px", Count: 1}}, report.Typography.FontSizes)
	assert.Equal(t, []Token{{Value: "400", Count: 1}, {Value: "700", Count: 1}}, report.Typography.FontWeights)
	assert.Empty(t, report.Typography.LineHeights)

	assert.Equal(t, []Token{{Value: "8px", Count: 4}}, report.Spacing.Margins)
	assert.Equal(t, []Token{{Value: "12px", Count: 2}}, report.Spacing.Paddings)
	assert.Equal(t, []Token{{Value: "16px", Count: 1}}, report.Spacing.Gaps)

	assert.Equal(t, []Token{{Value: "1px", Count: 1}}, report.Borders.Widths)
	assert.Equal(t, []Token{{Value: "4px", Count: 1}}, report.Borders.Radii)
	assert.Equal(t, []Token{{Value: "solid", Count: 1}}, report.Borders.Styles)

	assert.Equal(t, []Token{{Value: "rgba(0, 0, 0, 0.1) 0px 1px 2px 0px", Count: 1}}, report.Shadows)
	assert.Equal(t, []Token{{Value: "opacity 0.2s ease 0s", Count: 1}}, report.Transitions)

	assert.Equal(t, map[string]string{"--brand": "#ff0000", "--spacing": "8px"}, report.CustomProperties)

	assert.Equal(t, "https://example.com/", report.Meta.URL)
	assert.Equal(t, "Example", report.Meta.Title)
	assert.True(t, report.Meta.Timestamp.Equal(fixedNow.Truncate(time.Millisecond)))
}

func TestExtract_Idempotent(t *testing.T) {
	ex := testExtractor()
	doc := fixtureSnapshot()

	first, err := ex.Extract(doc)
	require.NoError(t, err)
	second, err := ex.Extract(doc)
	require.NoError(t, err)

	first.Meta.Timestamp = time.Time{}
	second.Meta.Timestamp = time.Time{}
	assert.Equal(t, first, second)
}

func TestExtract_AllColorsIsSumOfColorTables(t *testing.T) {
	report, err := testExtractor().Extract(fixtureSnapshot())
	require.NoError(t, err)

	assert.Equal(t,
		sumCounts(report.Colors.Text)+sumCounts(report.Colors.Background)+sumCounts(report.Colors.Border),
		sumCounts(report.Colors.All))
}

func TestExtract_RankedDescending(t *testing.T) {
	report, err := testExtractor().Extract(fixtureSnapshot())
	require.NoError(t, err)

	for _, c := range Categories() {
		list, err := report.Tokens(c)
		require.NoError(t, err)
		for i := 1; i < len(list); i++ {
			assert.GreaterOrEqual(t, list[i-1].Count, list[i].Count, "category %s", c)
		}
	}
}

func TestExtract_RevisitIsNoop(t *testing.T) {
	ex := testExtractor()
	once, err := ex.Extract(fixtureSnapshot())
	require.NoError(t, err)
	twice, err := ex.Extract(duplicateSource{fixtureSnapshot()})
	require.NoError(t, err)

	assert.Equal(t, once.Colors, twice.Colors)
	assert.Equal(t, once.Spacing, twice.Spacing)
}

func TestExtract_EmptyDocument(t *testing.T) {
	report, err := testExtractor().Extract(&Snapshot{})
	require.NoError(t, err)

	for _, c := range Categories() {
		list, err := report.Tokens(c)
		require.NoError(t, err)
		assert.NotNil(t, list, "category %s", c)
		assert.Empty(t, list, "category %s", c)
	}
	require.NotNil(t, report.CustomProperties)
	assert.Empty(t, report.CustomProperties)
}

func TestExtract_UnreachableTarget(t *testing.T) {
	ex := testExtractor()

	_, err := ex.Extract(brokenSource{Snapshot: &Snapshot{}, elementsErr: errors.New("no document")})
	assert.ErrorIs(t, err, ErrUnreachableTarget)

	_, err = ex.Extract(brokenSource{Snapshot: &Snapshot{}, rootErr: errors.New("detached")})
	assert.ErrorIs(t, err, ErrUnreachableTarget)
}

func TestExtract_ConcurrentCallsGetIndependentReports(t *testing.T) {
	ex := testExtractor()
	doc := fixtureSnapshot()

	const n = 8
	reports := make([]*TokenReport, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := ex.Extract(doc)
			assert.NoError(t, err)
			reports[i] = r
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		require.NotNil(t, reports[i])
		assert.Equal(t, reports[0].Colors, reports[i].Colors)
	}

	// Mutating one caller's report never leaks into another's.
	reports[0].Colors.All[0].Count = 999
	for i := 1; i < n; i++ {
		assert.NotEqual(t, 999, reports[i].Colors.All[0].Count)
	}
}

func TestReport_TokensUnknownCategory(t *testing.T) {
	report, err := testExtractor().Extract(&Snapshot{})
	require.NoError(t, err)

	_, err = report.Tokens(Category("nope"))
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

// gatedSnapshot holds Elements until release is closed.
type gatedSnapshot struct {
	*Snapshot
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSnapshot) Elements() ([]NodeID, error) {
	close(g.entered)
	<-g.release
	return g.Snapshot.Elements()
}

func TestExtract_DistinctDocumentsWithSameURL(t *testing.T) {
	ex := testExtractor()
	before := &gatedSnapshot{
		Snapshot: &Snapshot{
			PageURL: "https://example.com/",
			Nodes:   []StyleSnapshot{{"color": "rgb(255, 0, 0)"}},
		},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	after := &Snapshot{
		PageURL: "https://example.com/",
		Nodes:   []StyleSnapshot{{"color": "rgb(0, 0, 255)"}},
	}

	done := make(chan *TokenReport)
	go func() {
		r, err := ex.Extract(before)
		assert.NoError(t, err)
		done <- r
	}()
	<-before.entered

	got, err := ex.Extract(after)
	require.NoError(t, err)
	assert.Equal(t, []Token{{Value: "#0000ff", Count: 1}}, got.Colors.Text)

	close(before.release)
	first := <-done
	require.NotNil(t, first)
	assert.Equal(t, []Token{{Value: "#ff0000", Count: 1}}, first.Colors.Text)
}

func TestExtract_StaticDocumentsWithoutURL(t *testing.T) {
	ex := testExtractor()
	a := &Snapshot{Nodes: []StyleSnapshot{{"font-size": "12px"}}}
	b := &Snapshot{Nodes: []StyleSnapshot{{"font-size": "14px"}}}

	var wg sync.WaitGroup
	var ra, rb *TokenReport
	wg.Add(2)
	go func() { defer wg.Done(); ra, _ = ex.Extract(a) }()
	go func() { defer wg.Done(); rb, _ = ex.Extract(b) }()
	wg.Wait()

	require.NotNil(t, ra)
	require.NotNil(t, rb)
	assert.Equal(t, []Token{{Value: "12px", Count: 1}}, ra.Typography.FontSizes)
	assert.Equal(t, []Token{{Value: "14px", Count: 1}}, rb.Typography.FontSizes)
}

func TestExtract_LogsAggregatorObservations(t *testing.T) {
	var buf bytes.Buffer
	ex := NewExtractor(ExtractorConfig{
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
		Now:    func() time.Time { return fixedNow },
	})

	_, err := ex.Extract(&Snapshot{Nodes: []StyleSnapshot{
		{"color": "rgb(0, 0, 0)", "font-size": "16px", "box-shadow": "none"},
		{"border-top-color": "rgb(0, 0, 0)"},
	}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "elements=2")
	assert.Contains(t, buf.String(), "observations=3")
}

func TestDocumentKey(t *testing.T) {
	a := &Snapshot{PageURL: "https://example.com/"}
	b := &Snapshot{PageURL: "https://example.com/"}

	ka, ok := documentKey(a)
	require.True(t, ok)
	kb, ok := documentKey(b)
	require.True(t, ok)
	assert.NotEqual(t, ka, kb)

	again, _ := documentKey(a)
	assert.Equal(t, ka, again)

	_, ok = documentKey(brokenSource{Snapshot: a})
	assert.False(t, ok)
}
