package vessel

import (
	"fmt"
	"strings"
)

// Record is one corpus row. Immutable after load.
type Record struct {
	// RecordIndex is the 0-based row position assigned at load. It is the
	// stable join key between the corpus and every feature matrix row.
	RecordIndex int

	// GroupID is the logical entity key shared by records describing the
	// same vessel. Empty when the source has no group column.
	GroupID string

	Country    string
	ShipName   string
	HullNumber string
	ShipClass  string
	ShipType   string
	ShipRole   string

	StartPage int
	EndPage   int

	// Numeric, Categorical and Binary hold the channel field values keyed
	// by column name, fully defaulted at load time.
	Numeric     map[string]float64
	Categorical map[string]string
	Binary      map[string]int

	// TextBlob is the categorical values joined in schema order, used by
	// the lexical channel.
	TextBlob string
}

// GroupKey returns the aggregation key for this record: the group id when
// present, otherwise the class|country|type tuple. The tuple fallback can
// merge unrelated records sharing those three values; that matches the
// documented behavior of the source data.
func (r *Record) GroupKey() string {
	if r.GroupID != "" {
		return r.GroupID
	}
	return r.ShipClass + "|" + r.Country + "|" + r.ShipType
}

// PageRange formats the start/end page citation, "N/A" when unknown.
func (r *Record) PageRange() string {
	if r.StartPage <= 0 || r.EndPage <= 0 {
		return "N/A"
	}
	if r.StartPage == r.EndPage {
		return fmt.Sprintf("%d", r.StartPage)
	}
	return fmt.Sprintf("%d-%d", r.StartPage, r.EndPage)
}

// Corpus is the immutable record set a feature index is built over.
type Corpus struct {
	records []Record
}

// NewCorpus wraps loaded records. The slice is owned by the corpus and
// must not be mutated afterwards.
func NewCorpus(records []Record) *Corpus {
	return &Corpus{records: records}
}

// Len returns the number of records.
func (c *Corpus) Len() int { return len(c.records) }

// Record returns the record at index i.
func (c *Corpus) Record(i int) *Record { return &c.records[i] }

// Records returns the full record slice, ordered by RecordIndex.
func (c *Corpus) Records() []Record { return c.records }

// BuildTextBlob joins categorical values in schema order. Exposed so the
// query side composes its text exactly like the corpus side.
func BuildTextBlob(categorical map[string]string) string {
	parts := make([]string, 0, len(CategoricalFields))
	for _, f := range CategoricalFields {
		if v, ok := categorical[f]; ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
