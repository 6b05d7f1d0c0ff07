package search

import (
	"strconv"
	"strings"

	"github.com/fleetscope/shipdex/internal/domain"
	"github.com/fleetscope/shipdex/internal/domain/search/query"
	"github.com/fleetscope/shipdex/internal/domain/vessel"
	"github.com/fleetscope/shipdex/internal/index"
)

// pointTolerance widens a single numeric query value into a range: five
// percent of its magnitude, floored at 1 for zero values.
const pointTolerance = 0.05

// normalize projects a raw feature map onto the typed query channels.
// Unknown keys, empty values and categorical values outside the fitted
// encoders are dropped silently; a query with nothing left afterwards is
// rejected with ErrEmptyQuery.
func normalize(idx *index.Index, raw map[string]any) (*query.Normalized, error) {
	q := query.NewNormalized()
	bounds := make(map[string]query.Range)
	textValues := make(map[string]string)
	var extraText []string

	for key, value := range raw {
		if base, isMin := strings.CutSuffix(key, "_min"); isMin && vessel.IsNumericField(base) {
			if f, ok := asFloat(value); ok {
				r := bounds[base]
				r.Min = &f
				bounds[base] = r
			}
			continue
		}
		if base, isMax := strings.CutSuffix(key, "_max"); isMax && vessel.IsNumericField(base) {
			if f, ok := asFloat(value); ok {
				r := bounds[base]
				r.Max = &f
				bounds[base] = r
			}
			continue
		}

		v := parseValue(key, value)
		if v.Kind() == query.Absent {
			continue
		}
		switch {
		case vessel.IsNumericField(key):
			q.NumericRanges[key] = v.Range()
		case vessel.IsCategoricalField(key):
			textValues[key] = v.Str()
			if ord, known := idx.Encode(key, v.Str()); known {
				q.Categorical[key] = ord
			}
		case vessel.IsBinaryField(key):
			q.Binary[key] = int(v.Num())
		case vessel.IsNameField(key):
			q.Names[key] = v.Str()
		case key == vessel.FieldCountry:
			q.HardCountry = v.Str()
		case key == vessel.FieldShipClass || key == vessel.FieldShipType || key == vessel.FieldShipRole:
			// Not channel fields, but still useful lexical evidence.
			extraText = append(extraText, v.Str())
		}
	}

	// Explicit min/max pairs override a point value for the same field.
	for field, r := range bounds {
		if !r.IsEmpty() {
			q.NumericRanges[field] = r
		}
	}

	parts := make([]string, 0, 1+len(extraText))
	if blob := vessel.BuildTextBlob(textValues); blob != "" {
		parts = append(parts, blob)
	}
	parts = append(parts, extraText...)
	q.Text = strings.Join(parts, " ")

	if q.IsEmpty() {
		return nil, domain.ErrEmptyQuery
	}
	return q, nil
}

// parseValue parses one raw feature into its tagged variant. The field's
// schema class decides the variant: numeric fields become bounds, binary
// fields an exact 0/1, name-like fields fuzzy text, everything else an
// exact string. Values that cannot be coerced parse as Absent and are
// dropped.
func parseValue(key string, value any) query.Value {
	switch {
	case vessel.IsNumericField(key):
		if r, ok := numericRange(value); ok {
			return query.NewBounds(r)
		}
	case vessel.IsBinaryField(key):
		if b, ok := asBinary(value); ok {
			return query.ExactNumber(float64(b))
		}
	case vessel.IsNameField(key):
		if s, ok := asString(value); ok {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				return query.NewFuzzy(s)
			}
		}
	default:
		if s, ok := asString(value); ok {
			if s = strings.TrimSpace(s); s != "" {
				return query.ExactString(s)
			}
		}
	}
	return query.AbsentValue
}

// numericRange interprets one numeric query value: a two-element list is
// taken as [min, max], a scalar becomes a range of +-5% around itself.
func numericRange(value any) (query.Range, bool) {
	if list, ok := value.([]any); ok {
		if len(list) != 2 {
			return query.Range{}, false
		}
		lo, okLo := asFloat(list[0])
		hi, okHi := asFloat(list[1])
		if !okLo || !okHi {
			return query.Range{}, false
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		return query.Range{Min: &lo, Max: &hi}, true
	}

	v, ok := asFloat(value)
	if !ok {
		return query.Range{}, false
	}
	tol := v * pointTolerance
	if tol < 0 {
		tol = -tol
	}
	if tol == 0 {
		tol = 1
	}
	lo, hi := v-tol, v+tol
	return query.Range{Min: &lo, Max: &hi}, true
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asString(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

// asBinary coerces the accepted truthy spellings of a presence flag.
func asBinary(value any) (int, bool) {
	switch v := value.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case float64:
		if v != 0 {
			return 1, true
		}
		return 0, true
	case int:
		if v != 0 {
			return 1, true
		}
		return 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "y", "yes", "true", "1":
			return 1, true
		case "n", "no", "false", "0":
			return 0, true
		}
	}
	return 0, false
}
