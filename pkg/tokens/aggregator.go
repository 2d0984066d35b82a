package tokens

// Aggregator owns one frequency table per category for the duration of a
// single extraction pass.
type Aggregator struct {
	tables map[Category]*FrequencyTable
}

// NewAggregator returns an aggregator with an empty table for every category.
func NewAggregator() *Aggregator {
	a := &Aggregator{tables: make(map[Category]*FrequencyTable, len(categories))}
	for _, c := range categories {
		a.tables[c] = NewFrequencyTable()
	}
	return a
}

// Record counts one observation of value in category. Text, background and
// border colors are also counted in AllColors as independent observations.
func (a *Aggregator) Record(category Category, value string) {
	if value == "" {
		return
	}
	t, ok := a.tables[category]
	if !ok {
		return
	}
	t.Add(value)
	if category.foldsIntoAllColors() {
		a.tables[AllColors].Add(value)
	}
}

// Table returns the table for category, or nil for an unknown category.
func (a *Aggregator) Table(category Category) *FrequencyTable {
	return a.tables[category]
}

// Observations returns the number of observations recorded across all
// categories, not counting the AllColors fold.
func (a *Aggregator) Observations() int {
	n := 0
	for c, t := range a.tables {
		if c != AllColors {
			n += t.Total()
		}
	}
	return n
}
