// Package result defines the aggregated search result unit: a group of
// corpus records describing the same vessel.
package result

// MatchType tags how a group entered the result set.
type MatchType string

// Match types.
const (
	// Filter marks groups produced by exact/range predicates. They are
	// never threshold-filtered.
	Filter MatchType = "filter"
	// Similarity marks groups produced by similarity scoring.
	Similarity MatchType = "similarity"
)

// Group aggregates the records sharing one group key. Created fresh per
// request; never persisted.
type Group struct {
	// Rank is the dense 1-based position assigned after truncation.
	Rank int
	// Score is the representative similarity in [0,1]: the highest score
	// among the grouped records.
	Score float64
	// MatchType records whether the group matched filters or similarity.
	MatchType MatchType

	// GroupKey is the aggregation key (group id or fallback tuple).
	GroupKey string
	// Names is the sorted, de-duplicated union of ship names.
	Names []string
	// HullNumbers is the sorted, de-duplicated union of hull identifiers.
	HullNumbers []string
	// RecordCount is how many corpus records were merged into the group.
	RecordCount int

	// Representative metadata, taken from the highest-scoring record.
	Country   string
	ShipClass string
	ShipType  string
	ShipRole  string
	Length    float64
	Beam      float64
	Draught   float64
	PageRange string

	// RecordIndex is the highest-scoring record's corpus position.
	RecordIndex int
}

// CombinedName renders the group's display name: names joined by commas
// with the hull numbers parenthesized, "Unknown" when no name survived.
func (g *Group) CombinedName() string {
	if len(g.Names) == 0 {
		return "Unknown"
	}
	name := join(g.Names)
	if len(g.HullNumbers) > 0 {
		name += " (" + join(g.HullNumbers) + ")"
	}
	return name
}

func join(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}
