package tokens

import "fmt"

// sampleStats summarizes one traversal.
type sampleStats struct {
	Elements int
}

// sample walks every element of doc once and records each tracked property
// into agg. The visited set is scratch state for this call only.
func sample(src Source, agg *Aggregator) (sampleStats, error) {
	var stats sampleStats

	ids, err := src.Elements()
	if err != nil {
		return stats, fmt.Errorf("%w: enumerate elements: %v", ErrUnreachableTarget, err)
	}

	visited := make(map[NodeID]struct{}, len(ids))
	for _, id := range ids {
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		stats.Elements++

		style := src.ResolvedStyle(id)
		for _, p := range trackedProperties {
			raw := style.Get(p.Name)
			if raw == "" {
				continue
			}
			if v, ok := Normalize(raw, p.Category); ok {
				agg.Record(p.Category, v)
			}
		}
	}

	return stats, nil
}
