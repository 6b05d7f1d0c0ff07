package search

import (
	"sort"

	"github.com/fleetscope/shipdex/internal/domain/search/result"
	"github.com/fleetscope/shipdex/internal/domain/vessel"
)

// candidate is one scored record entering aggregation.
type candidate struct {
	record *vessel.Record
	score  float64
	match  result.MatchType
}

// groupAccumulator collects the records of one group key while
// candidates stream through in descending score order.
type groupAccumulator struct {
	group result.Group
	names map[string]struct{}
	hulls map[string]struct{}
}

// aggregate merges candidates into vessel groups, applies the similarity
// threshold, truncates to topK and assigns ranks. Candidates must be in
// descending score order: the first record seen for a key becomes the
// group's representative. Grouping happens before truncation so topK
// counts vessels, not corpus rows. Keys in exclude are skipped entirely.
func aggregate(cands []candidate, topK int, threshold float64, exclude map[string]struct{}) []result.Group {
	accs := make(map[string]*groupAccumulator)
	var order []string

	for _, c := range cands {
		key := c.record.GroupKey()
		if _, skip := exclude[key]; skip {
			continue
		}
		acc, ok := accs[key]
		if !ok {
			acc = newAccumulator(key, c)
			accs[key] = acc
			order = append(order, key)
		}
		acc.add(c.record)
	}

	groups := make([]result.Group, 0, len(order))
	for _, key := range order {
		acc := accs[key]
		// Similarity groups below the threshold are dropped; groups that
		// matched explicit filters always survive.
		if acc.group.MatchType != result.Filter && acc.group.Score < threshold {
			continue
		}
		groups = append(groups, acc.finish())
		if len(groups) == topK {
			break
		}
	}
	for i := range groups {
		groups[i].Rank = i + 1
	}
	return groups
}

func newAccumulator(key string, c candidate) *groupAccumulator {
	r := c.record
	return &groupAccumulator{
		group: result.Group{
			Score:       c.score,
			MatchType:   c.match,
			GroupKey:    key,
			Country:     r.Country,
			ShipClass:   r.ShipClass,
			ShipType:    r.ShipType,
			ShipRole:    r.ShipRole,
			Length:      r.Numeric["length_metres"],
			Beam:        r.Numeric["beam_metres"],
			Draught:     r.Numeric["draught_metres"],
			PageRange:   r.PageRange(),
			RecordIndex: r.RecordIndex,
		},
		names: make(map[string]struct{}),
		hulls: make(map[string]struct{}),
	}
}

func (a *groupAccumulator) add(r *vessel.Record) {
	a.group.RecordCount++
	if r.ShipName != "" {
		a.names[r.ShipName] = struct{}{}
	}
	if r.HullNumber != "" {
		a.hulls[r.HullNumber] = struct{}{}
	}
}

func (a *groupAccumulator) finish() result.Group {
	a.group.Names = sortedKeys(a.names)
	a.group.HullNumbers = sortedKeys(a.hulls)
	return a.group
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
