// Package index builds the per-corpus feature index: four parallel
// per-record representations (numeric, categorical, text, binary) plus
// the fitted parameters (scaling statistics, ordinal encoders, text
// vocabulary) reused at query time. Built exactly once per corpus load
// and immutable afterwards; concurrent readers need no locking.
package index

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/fleetscope/shipdex/internal/domain/search/weights"
	"github.com/fleetscope/shipdex/internal/domain/vessel"
)

// FieldStats holds the population statistics fitted for one numeric field.
type FieldStats struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Range returns the fitted value span, floored at 1 to keep the range
// penalty well-defined on constant fields.
func (s FieldStats) Range() float64 {
	if r := s.Max - s.Min; r > 1 {
		return r
	}
	return 1
}

// Index is the fitted feature index. Row i of every matrix corresponds to
// corpus record i; the row count is fixed at build time.
type Index struct {
	corpus *vessel.Corpus

	numericCols []string
	numericIdx  map[string]int
	stats       map[string]FieldStats
	numericRaw  [][]float64
	numericZ    [][]float64

	categoricalCols []string
	categoricalIdx  map[string]int
	encoders        map[string]map[string]int
	categorical     [][]int

	binaryCols []string
	binaryIdx  map[string]int
	binary     [][]int

	vectorizer *Vectorizer
	text       [][]float64

	available map[weights.Channel]bool
}

// Build fits the feature index over a loaded corpus.
func Build(corpus *vessel.Corpus) (*Index, error) {
	if corpus == nil || corpus.Len() == 0 {
		return nil, fmt.Errorf("empty corpus")
	}

	idx := &Index{
		corpus:    corpus,
		available: make(map[weights.Channel]bool),
	}
	idx.buildNumeric()
	idx.buildCategorical()
	idx.buildBinary()
	idx.buildText()

	// The name channel reads record fields directly; it is available as
	// long as the corpus exists.
	idx.available[weights.Name] = true
	return idx, nil
}

func (x *Index) buildNumeric() {
	x.numericCols = vessel.NumericFields
	x.numericIdx = columnIndex(x.numericCols)
	x.stats = make(map[string]FieldStats, len(x.numericCols))
	n := x.corpus.Len()

	x.numericRaw = make([][]float64, n)
	x.numericZ = make([][]float64, n)
	for i := 0; i < n; i++ {
		x.numericRaw[i] = make([]float64, len(x.numericCols))
		x.numericZ[i] = make([]float64, len(x.numericCols))
	}

	col := make([]float64, n)
	for c, field := range x.numericCols {
		for i := 0; i < n; i++ {
			v := x.corpus.Record(i).Numeric[field]
			col[i] = v
			x.numericRaw[i][c] = v
		}
		s := FieldStats{
			Mean: stat.Mean(col, nil),
			Std:  stat.PopStdDev(col, nil),
			Min:  col[0],
			Max:  col[0],
		}
		for _, v := range col {
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
		}
		x.stats[field] = s

		std := s.Std
		if std == 0 {
			std = 1
		}
		for i := 0; i < n; i++ {
			x.numericZ[i][c] = (col[i] - s.Mean) / std
		}
	}
	x.available[weights.Numerical] = len(x.numericCols) > 0
}

func (x *Index) buildCategorical() {
	x.categoricalCols = vessel.CategoricalFields
	x.categoricalIdx = columnIndex(x.categoricalCols)
	x.encoders = make(map[string]map[string]int, len(x.categoricalCols))
	n := x.corpus.Len()

	x.categorical = make([][]int, n)
	for i := 0; i < n; i++ {
		x.categorical[i] = make([]int, len(x.categoricalCols))
	}

	for c, field := range x.categoricalCols {
		seen := map[string]struct{}{vessel.UnknownValue: {}}
		for i := 0; i < n; i++ {
			seen[x.corpus.Record(i).Categorical[field]] = struct{}{}
		}
		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)

		enc := make(map[string]int, len(values))
		for ord, v := range values {
			enc[v] = ord
		}
		x.encoders[field] = enc

		for i := 0; i < n; i++ {
			x.categorical[i][c] = enc[x.corpus.Record(i).Categorical[field]]
		}
	}
	x.available[weights.Categorical] = len(x.categoricalCols) > 0
}

func (x *Index) buildBinary() {
	x.binaryCols = vessel.BinaryFields
	x.binaryIdx = columnIndex(x.binaryCols)
	n := x.corpus.Len()

	x.binary = make([][]int, n)
	for i := 0; i < n; i++ {
		row := make([]int, len(x.binaryCols))
		for c, field := range x.binaryCols {
			row[c] = x.corpus.Record(i).Binary[field]
		}
		x.binary[i] = row
	}
	x.available[weights.Binary] = len(x.binaryCols) > 0
}

func (x *Index) buildText() {
	n := x.corpus.Len()
	docs := make([]string, n)
	for i := 0; i < n; i++ {
		docs[i] = x.corpus.Record(i).TextBlob
	}
	x.vectorizer, x.text = fitVectorizer(docs)
	x.available[weights.Text] = x.vectorizer.VocabularySize() > 0
}

// Corpus returns the indexed corpus.
func (x *Index) Corpus() *vessel.Corpus { return x.corpus }

// Len returns the record count (fixed after build).
func (x *Index) Len() int { return x.corpus.Len() }

// Available reports whether a channel has at least one usable field.
func (x *Index) Available(ch weights.Channel) bool { return x.available[ch] }

// Stats returns the fitted statistics for a numeric field.
func (x *Index) Stats(field string) (FieldStats, bool) {
	s, ok := x.stats[field]
	return s, ok
}

// RawNumeric returns the unscaled value of a numeric field for a record.
func (x *Index) RawNumeric(row int, field string) (float64, bool) {
	c, ok := x.numericIdx[field]
	if !ok {
		return 0, false
	}
	return x.numericRaw[row][c], true
}

// ScaledNumeric returns the z-scored numeric vector for a record.
func (x *Index) ScaledNumeric(row int) []float64 { return x.numericZ[row] }

// Encode maps a categorical value through the field's fitted encoder.
// ok is false for fields or values the encoder has never seen; such
// values can never match and are dropped at normalization.
func (x *Index) Encode(field, value string) (int, bool) {
	enc, ok := x.encoders[field]
	if !ok {
		return 0, false
	}
	ord, ok := enc[value]
	return ord, ok
}

// EncodedCategorical returns the ordinal of a categorical field for a record.
func (x *Index) EncodedCategorical(row int, field string) (int, bool) {
	c, ok := x.categoricalIdx[field]
	if !ok {
		return 0, false
	}
	return x.categorical[row][c], true
}

// BinaryValue returns the 0/1 value of a binary field for a record.
func (x *Index) BinaryValue(row int, field string) (int, bool) {
	c, ok := x.binaryIdx[field]
	if !ok {
		return 0, false
	}
	return x.binary[row][c], true
}

// TextVector returns the fitted term-weight vector for a record.
func (x *Index) TextVector(row int) []float64 { return x.text[row] }

// TransformText projects query text into the fitted vocabulary. ok is
// false when nothing in the text is in-vocabulary.
func (x *Index) TransformText(text string) ([]float64, bool) {
	return x.vectorizer.Transform(text)
}

// DistinctValues returns the sorted distinct values of a categorical
// field observed at build time (including the "Unknown" default).
func (x *Index) DistinctValues(field string) []string {
	enc, ok := x.encoders[field]
	if !ok {
		return nil
	}
	values := make([]string, 0, len(enc))
	for v := range enc {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func columnIndex(cols []string) map[string]int {
	m := make(map[string]int, len(cols))
	for i, c := range cols {
		m[c] = i
	}
	return m
}
