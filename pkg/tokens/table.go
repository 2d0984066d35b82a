package tokens

import "sort"

// Token is one ranked entry of a category: a canonical value and the number
// of observations that normalized to it.
type Token struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FrequencyTable counts occurrences of canonical values. It remembers the
// order in which each distinct value was first seen so ranking can break
// ties by first appearance.
type FrequencyTable struct {
	index   map[string]int
	entries []Token
	total   int
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{index: make(map[string]int)}
}

// Add records one observation of value. Empty values are ignored.
func (t *FrequencyTable) Add(value string) {
	if value == "" {
		return
	}
	t.total++
	if i, ok := t.index[value]; ok {
		t.entries[i].Count++
		return
	}
	t.index[value] = len(t.entries)
	t.entries = append(t.entries, Token{Value: value, Count: 1})
}

// Count returns the number of observations of value.
func (t *FrequencyTable) Count(value string) int {
	if i, ok := t.index[value]; ok {
		return t.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct values.
func (t *FrequencyTable) Len() int {
	return len(t.entries)
}

// Total returns the number of observations recorded.
func (t *FrequencyTable) Total() int {
	return t.total
}

// Entries returns a copy of the entries in first-insertion order.
func (t *FrequencyTable) Entries() []Token {
	out := make([]Token, len(t.entries))
	copy(out, t.entries)
	return out
}

// Ranked returns the entries sorted by count descending. Equal counts keep
// their first-insertion order. The result is never nil.
func (t *FrequencyTable) Ranked() []Token {
	out := t.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
