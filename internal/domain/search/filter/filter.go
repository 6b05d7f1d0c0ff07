// Package filter models the exact-match and range predicates of filter
// search. The wire protocol encodes the operator as a key suffix
// ("length_metres__gte"); it is parsed once here into a typed Predicate
// rather than string-matched downstream.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fleetscope/shipdex/internal/domain"
	"github.com/fleetscope/shipdex/internal/domain/vessel"
)

// Op is a predicate operator.
type Op string

// Recognized operators. Eq is the unsuffixed default.
const (
	Eq       Op = "eq"
	Gte      Op = "gte"
	Lte      Op = "lte"
	Gt       Op = "gt"
	Lt       Op = "lt"
	Contains Op = "contains"
)

// keySuffixes maps wire suffixes to operators. Order matters only for
// documentation; suffixes are mutually exclusive.
var keySuffixes = []struct {
	suffix string
	op     Op
}{
	{"__gte", Gte},
	{"__lte", Lte},
	{"__gt", Gt},
	{"__lt", Lt},
	{"__contains", Contains},
}

// Predicate is a single typed filter clause.
type Predicate struct {
	key     string
	op      Op
	str     string
	num     float64
	numeric bool
}

// New validates and creates a predicate.
func New(key string, op Op, value any) (Predicate, error) {
	if key == "" {
		return Predicate{}, fmt.Errorf("filter key is required: %w", domain.ErrInvalidQuery)
	}
	p := Predicate{key: key, op: op}
	switch v := value.(type) {
	case float64:
		p.num, p.numeric = v, true
	case float32:
		p.num, p.numeric = float64(v), true
	case int:
		p.num, p.numeric = float64(v), true
	case int64:
		p.num, p.numeric = float64(v), true
	case bool:
		// Boolean filters target binary presence flags.
		p.numeric = true
		if v {
			p.num = 1
		}
	case string:
		p.str = v
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			p.num, p.numeric = f, true
		}
	default:
		return Predicate{}, fmt.Errorf("filter %q: unsupported value type %T: %w", key, value, domain.ErrInvalidQuery)
	}
	if p.op != Eq && p.op != Contains && !p.numeric {
		return Predicate{}, fmt.Errorf("filter %q: %s requires a numeric value: %w", key, op, domain.ErrInvalidQuery)
	}
	if p.op == Contains && p.str == "" {
		return Predicate{}, fmt.Errorf("filter %q: contains requires a string value: %w", key, domain.ErrInvalidQuery)
	}
	return p, nil
}

// ParseKey splits a wire key into the field name and operator.
func ParseKey(key string) (field string, op Op) {
	for _, s := range keySuffixes {
		if f, ok := strings.CutSuffix(key, s.suffix); ok && f != "" {
			return f, s.op
		}
	}
	return key, Eq
}

// Parse converts a wire filter map (suffix-encoded keys) into predicates.
func Parse(filters map[string]any) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(filters))
	for key, value := range filters {
		field, op := ParseKey(key)
		p, err := New(field, op, value)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

// Key returns the field name.
func (p Predicate) Key() string { return p.key }

// Op returns the operator.
func (p Predicate) Op() Op { return p.op }

// Num returns the numeric value and whether one is present.
func (p Predicate) Num() (float64, bool) { return p.num, p.numeric }

// Str returns the string value ("" for purely numeric predicates).
func (p Predicate) Str() string { return p.str }

// IsRange reports whether the predicate is a bound comparison.
func (p Predicate) IsRange() bool {
	return p.op == Gte || p.op == Lte || p.op == Gt || p.op == Lt
}

// Matches evaluates the predicate against a record. Predicates on fields
// the record does not carry never match.
func (p Predicate) Matches(r *vessel.Record) bool {
	if p.IsRange() {
		v, ok := recordNumber(r, p.key)
		if !ok || !p.numeric {
			return false
		}
		switch p.op {
		case Gte:
			return v >= p.num
		case Lte:
			return v <= p.num
		case Gt:
			return v > p.num
		default:
			return v < p.num
		}
	}

	if p.op == Contains {
		s, ok := recordString(r, p.key)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(p.str))
	}

	// Eq: numeric fields compare numerically, everything else exactly.
	if v, ok := recordNumber(r, p.key); ok {
		return p.numeric && v == p.num
	}
	s, ok := recordString(r, p.key)
	return ok && s == p.str
}

// MatchesAll evaluates predicates conjunctively.
func MatchesAll(preds []Predicate, r *vessel.Record) bool {
	for _, p := range preds {
		if !p.Matches(r) {
			return false
		}
	}
	return true
}

func recordNumber(r *vessel.Record, key string) (float64, bool) {
	if v, ok := r.Numeric[key]; ok {
		return v, true
	}
	if v, ok := r.Binary[key]; ok {
		return float64(v), true
	}
	switch key {
	case vessel.FieldStartPage:
		return float64(r.StartPage), true
	case vessel.FieldEndPage:
		return float64(r.EndPage), true
	}
	return 0, false
}

func recordString(r *vessel.Record, key string) (string, bool) {
	if v, ok := r.Categorical[key]; ok {
		return v, true
	}
	switch key {
	case vessel.FieldCountry:
		return r.Country, true
	case vessel.FieldShipName:
		return r.ShipName, true
	case vessel.FieldHullNumber:
		return r.HullNumber, true
	case vessel.FieldShipClass:
		return r.ShipClass, true
	case vessel.FieldShipType:
		return r.ShipType, true
	case vessel.FieldShipRole:
		return r.ShipRole, true
	}
	return "", false
}
