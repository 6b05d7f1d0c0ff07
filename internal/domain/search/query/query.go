// Package query models normalized similarity queries. Caller-supplied
// key/value payloads are loosely typed; normalization parses each field
// once into a tagged Value and projects the result onto the typed
// channel inputs, so nothing downstream re-inspects raw payloads.
package query

// Kind discriminates the Value variants.
type Kind int

// Value variants.
const (
	Absent Kind = iota
	Exact
	Bounds
	FuzzyText
)

// Value is one parsed query field.
type Value struct {
	kind Kind
	str  string
	num  float64
	rng  Range
}

// AbsentValue is the zero Value.
var AbsentValue = Value{}

// ExactString creates an exact string value.
func ExactString(s string) Value { return Value{kind: Exact, str: s} }

// ExactNumber creates an exact numeric value.
func ExactNumber(f float64) Value { return Value{kind: Exact, num: f} }

// NewBounds creates a range value. Either bound may be nil.
func NewBounds(r Range) Value { return Value{kind: Bounds, rng: r} }

// NewFuzzy creates a fuzzy text value for name-like fields.
func NewFuzzy(s string) Value { return Value{kind: FuzzyText, str: s} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload (Exact and FuzzyText).
func (v Value) Str() string { return v.str }

// Num returns the numeric payload (Exact).
func (v Value) Num() float64 { return v.num }

// Range returns the bounds payload (Bounds).
func (v Value) Range() Range { return v.rng }

// Range is a numeric interval with optional bounds.
type Range struct {
	Min *float64
	Max *float64
}

// IsEmpty reports whether neither bound is set.
func (r Range) IsEmpty() bool { return r.Min == nil && r.Max == nil }

// Midpoint collapses the range to a single representative value for
// similarity fill: the midpoint when both bounds exist, otherwise the
// one bound that does.
func (r Range) Midpoint() (float64, bool) {
	switch {
	case r.Min != nil && r.Max != nil:
		return (*r.Min + *r.Max) / 2, true
	case r.Min != nil:
		return *r.Min, true
	case r.Max != nil:
		return *r.Max, true
	default:
		return 0, false
	}
}

// Normalized is a query projected onto the typed feature channels. Maps
// hold only the fields the caller actually populated; an empty map means
// the channel is inactive for this query.
type Normalized struct {
	// NumericRanges holds per-field bounds for range scoring.
	NumericRanges map[string]Range
	// Categorical holds per-field encoded ordinals. Values unknown to the
	// fitted encoder are dropped before this point.
	Categorical map[string]int
	// Text is the combined lexical query, built like a record text blob.
	Text string
	// Binary holds per-field 0/1 values.
	Binary map[string]int
	// Names holds lower-cased, trimmed name-like strings for the fuzzy
	// channel, keyed by field.
	Names map[string]string
	// HardCountry, when non-empty, excludes every record of any other
	// country regardless of blended score.
	HardCountry string
}

// NewNormalized creates an empty normalized query.
func NewNormalized() *Normalized {
	return &Normalized{
		NumericRanges: make(map[string]Range),
		Categorical:   make(map[string]int),
		Binary:        make(map[string]int),
		Names:         make(map[string]string),
	}
}

// IsEmpty reports whether no channel ended up populated. Such queries are
// rejected before scoring.
func (n *Normalized) IsEmpty() bool {
	return len(n.NumericRanges) == 0 &&
		len(n.Categorical) == 0 &&
		n.Text == "" &&
		len(n.Binary) == 0 &&
		len(n.Names) == 0
}
