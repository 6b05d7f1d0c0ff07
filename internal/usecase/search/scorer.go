package search

import (
	"math"
	"strings"

	"github.com/fleetscope/shipdex/internal/domain/search/query"
	"github.com/fleetscope/shipdex/internal/domain/search/weights"
	"github.com/fleetscope/shipdex/internal/domain/vessel"
	"github.com/fleetscope/shipdex/internal/index"
)

// scorer computes the blended per-record similarity vector for one query.
type scorer struct {
	idx *index.Index
}

// score returns one blended score per corpus record plus the channels
// that contributed. Scores are in [0,1] except for records excluded by
// the hard country filter, which are forced to -1.
func (sc scorer) score(q *query.Normalized, w weights.Weights) ([]float64, []weights.Channel) {
	n := sc.idx.Len()
	channels := make(map[weights.Channel][]float64)
	var active []weights.Channel

	add := func(ch weights.Channel, vec []float64) {
		if vec != nil {
			channels[ch] = vec
			active = append(active, ch)
		}
	}
	add(weights.Numerical, sc.numericChannel(q))
	add(weights.Categorical, sc.categoricalChannel(q))
	add(weights.Text, sc.textChannel(q))
	add(weights.Binary, sc.binaryChannel(q))
	add(weights.Name, sc.nameChannel(q))

	blended := make([]float64, n)
	if norm := w.Renormalize(active); norm != nil {
		for ch, weight := range norm {
			vec := channels[ch]
			for i := range blended {
				blended[i] += weight * vec[i]
			}
		}
	}

	if q.HardCountry != "" {
		for i := 0; i < n; i++ {
			if !strings.EqualFold(sc.idx.Corpus().Record(i).Country, q.HardCountry) {
				blended[i] = -1
			}
		}
	}
	return blended, active
}

// numericChannel scores each record by how far it falls outside every
// queried field's bounds. Per-field scores decay linearly with distance
// relative to the field's fitted value span and are combined with a
// geometric mean, so one badly-off field sinks the whole channel.
func (sc scorer) numericChannel(q *query.Normalized) []float64 {
	type fieldRange struct {
		rng  query.Range
		span float64
	}
	fields := make(map[string]fieldRange, len(q.NumericRanges))
	for field, rng := range q.NumericRanges {
		if s, ok := sc.idx.Stats(field); ok {
			fields[field] = fieldRange{rng: rng, span: s.Range()}
		}
	}
	if len(fields) == 0 {
		return nil
	}

	n := sc.idx.Len()
	out := make([]float64, n)
	exp := 1 / float64(len(fields))
	for i := 0; i < n; i++ {
		product := 1.0
		for field, fr := range fields {
			v, _ := sc.idx.RawNumeric(i, field)
			var dist float64
			switch {
			case fr.rng.Min != nil && v < *fr.rng.Min:
				dist = *fr.rng.Min - v
			case fr.rng.Max != nil && v > *fr.rng.Max:
				dist = v - *fr.rng.Max
			}
			s := 1 - 2*dist/fr.span
			if s <= 0 {
				product = 0
				break
			}
			product *= s
		}
		if product > 0 {
			out[i] = math.Pow(product, exp)
		}
	}
	return out
}

// categoricalChannel is the fraction of queried categorical fields whose
// encoded value matches the record's.
func (sc scorer) categoricalChannel(q *query.Normalized) []float64 {
	if len(q.Categorical) == 0 {
		return nil
	}
	n := sc.idx.Len()
	total := float64(len(q.Categorical))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		matches := 0
		for field, ord := range q.Categorical {
			if rec, ok := sc.idx.EncodedCategorical(i, field); ok && rec == ord {
				matches++
			}
		}
		out[i] = float64(matches) / total
	}
	return out
}

// binaryChannel is the fraction of queried presence flags the record
// agrees with.
func (sc scorer) binaryChannel(q *query.Normalized) []float64 {
	if len(q.Binary) == 0 {
		return nil
	}
	n := sc.idx.Len()
	total := float64(len(q.Binary))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		matches := 0
		for field, want := range q.Binary {
			if rec, ok := sc.idx.BinaryValue(i, field); ok && rec == want {
				matches++
			}
		}
		out[i] = float64(matches) / total
	}
	return out
}

// textChannel is the cosine similarity of the query text against each
// record's term-weight vector. Inactive when the query text has no
// in-vocabulary token.
func (sc scorer) textChannel(q *query.Normalized) []float64 {
	if q.Text == "" {
		return nil
	}
	qv, ok := sc.idx.TransformText(q.Text)
	if !ok {
		return nil
	}
	n := sc.idx.Len()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = index.Cosine(qv, sc.idx.TextVector(i))
	}
	return out
}

// nameChannel averages the fuzzy similarity of every queried name field
// against the record's corresponding value.
func (sc scorer) nameChannel(q *query.Normalized) []float64 {
	if len(q.Names) == 0 {
		return nil
	}
	n := sc.idx.Len()
	total := float64(len(q.Names))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		rec := sc.idx.Corpus().Record(i)
		sum := 0.0
		for field, queried := range q.Names {
			var value string
			switch field {
			case vessel.FieldShipName:
				value = rec.ShipName
			case vessel.FieldHullNumber:
				value = rec.HullNumber
			}
			sum += nameSimilarity(queried, strings.ToLower(value))
		}
		out[i] = sum / total
	}
	return out
}

// scoreRecord blends channel similarities of every record against an
// existing corpus record: numeric cosine over the z-scored vectors,
// categorical and binary agreement ratios, and text cosine. The name
// channel does not apply here.
func (sc scorer) scoreRecord(row int, w weights.Weights) []float64 {
	n := sc.idx.Len()
	channels := make(map[weights.Channel][]float64)
	var active []weights.Channel

	if sc.idx.Available(weights.Numerical) {
		qv := sc.idx.ScaledNumeric(row)
		vec := make([]float64, n)
		for i := 0; i < n; i++ {
			// Cosine spans [-1,1]; shift into [0,1] to blend with the
			// ratio channels.
			vec[i] = (index.Cosine(qv, sc.idx.ScaledNumeric(i)) + 1) / 2
		}
		channels[weights.Numerical] = vec
		active = append(active, weights.Numerical)
	}

	rec := sc.idx.Corpus().Record(row)
	if sc.idx.Available(weights.Categorical) {
		total := float64(len(vessel.CategoricalFields))
		vec := make([]float64, n)
		for i := 0; i < n; i++ {
			other := sc.idx.Corpus().Record(i)
			matches := 0
			for _, field := range vessel.CategoricalFields {
				if rec.Categorical[field] == other.Categorical[field] {
					matches++
				}
			}
			vec[i] = float64(matches) / total
		}
		channels[weights.Categorical] = vec
		active = append(active, weights.Categorical)
	}

	if sc.idx.Available(weights.Binary) {
		total := float64(len(vessel.BinaryFields))
		vec := make([]float64, n)
		for i := 0; i < n; i++ {
			other := sc.idx.Corpus().Record(i)
			matches := 0
			for _, field := range vessel.BinaryFields {
				if rec.Binary[field] == other.Binary[field] {
					matches++
				}
			}
			vec[i] = float64(matches) / total
		}
		channels[weights.Binary] = vec
		active = append(active, weights.Binary)
	}

	if sc.idx.Available(weights.Text) {
		qv := sc.idx.TextVector(row)
		vec := make([]float64, n)
		for i := 0; i < n; i++ {
			vec[i] = index.Cosine(qv, sc.idx.TextVector(i))
		}
		channels[weights.Text] = vec
		active = append(active, weights.Text)
	}

	blended := make([]float64, n)
	if norm := w.Renormalize(active); norm != nil {
		for ch, weight := range norm {
			vec := channels[ch]
			for i := range blended {
				blended[i] += weight * vec[i]
			}
		}
	}
	return blended
}
