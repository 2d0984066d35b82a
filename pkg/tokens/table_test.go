package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyTable_RankedStableTies(t *testing.T) {
	tbl := NewFrequencyTable()
	for _, v := range []string{"b", "a", "c", "a", "d", "c", ""} {
		tbl.Add(v)
	}

	assert.Equal(t, 4, tbl.Len())
	assert.Equal(t, 6, tbl.Total())
	assert.Equal(t, 2, tbl.Count("a"))
	assert.Equal(t, 0, tbl.Count("zzz"))

	// a and c tie at 2: a was seen first. b and d tie at 1: b was seen first.
	assert.Equal(t, []Token{
		{Value: "a", Count: 2},
		{Value: "c", Count: 2},
		{Value: "b", Count: 1},
		{Value: "d", Count: 1},
	}, tbl.Ranked())
}

func TestFrequencyTable_EmptyRankedNotNil(t *testing.T) {
	ranked := NewFrequencyTable().Ranked()
	require.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestAggregator_FoldsColors(t *testing.T) {
	agg := NewAggregator()
	agg.Record(BackgroundColor, "#ffffff")
	agg.Record(BorderColor, "#ffffff")
	agg.Record(TextColor, "#000000")
	agg.Record(Margin, "8px")
	agg.Record(Margin, "")

	assert.Equal(t, 1, agg.Table(BackgroundColor).Count("#ffffff"))
	assert.Equal(t, 1, agg.Table(BorderColor).Count("#ffffff"))
	assert.Equal(t, 2, agg.Table(AllColors).Count("#ffffff"))
	assert.Equal(t, 1, agg.Table(AllColors).Count("#000000"))
	assert.Equal(t, 0, agg.Table(AllColors).Count("8px"))
	assert.Equal(t, 4, agg.Observations())
}

func TestAggregator_UnknownCategoryIgnored(t *testing.T) {
	agg := NewAggregator()
	agg.Record(Category("nope"), "x")
	assert.Nil(t, agg.Table(Category("nope")))
	assert.Equal(t, 0, agg.Observations())
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("border-radius")
	require.NoError(t, err)
	assert.Equal(t, BorderRadius, c)

	_, err = ParseCategory("spacing")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestTrackedProperties(t *testing.T) {
	props := TrackedProperties()
	assert.Len(t, props, 35)
	assert.Equal(t, "color", props[0])
	assert.Equal(t, "transition", props[len(props)-1])
}
