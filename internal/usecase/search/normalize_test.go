package search

import (
	"testing"

	"github.com/fleetscope/shipdex/internal/domain/search/query"
	"github.com/fleetscope/shipdex/internal/domain/vessel"
	"github.com/fleetscope/shipdex/internal/index"
)

func TestParseValue_VariantPerFieldClass(t *testing.T) {
	cases := []struct {
		key   string
		value any
		want  query.Kind
	}{
		{"length_metres", 118.0, query.Bounds},
		{"length_metres", []any{110.0, 120.0}, query.Bounds},
		{"length_metres", "not a number", query.Absent},
		{"flight_deck", "yes", query.Exact},
		{"flight_deck", "maybe", query.Absent},
		{"ship_name", "  HMAS Sydney  ", query.FuzzyText},
		{"ship_name", "   ", query.Absent},
		{"hull_form", "monohull", query.Exact},
		{"hull_form", "", query.Absent},
		{vessel.FieldCountry, "Australia", query.Exact},
	}
	for _, c := range cases {
		if got := parseValue(c.key, c.value).Kind(); got != c.want {
			t.Errorf("parseValue(%q, %v) kind = %v, want %v", c.key, c.value, got, c.want)
		}
	}
}

func TestParseValue_Payloads(t *testing.T) {
	v := parseValue("ship_name", "  HMAS Sydney ")
	if v.Str() != "hmas sydney" {
		t.Errorf("fuzzy payload = %q, want lower-cased and trimmed", v.Str())
	}

	v = parseValue("flight_deck", "y")
	if v.Num() != 1 {
		t.Errorf("binary payload = %v, want 1", v.Num())
	}

	v = parseValue("length_metres", []any{120.0, 110.0})
	r := v.Range()
	if r.Min == nil || r.Max == nil || *r.Min != 110 || *r.Max != 120 {
		t.Errorf("bounds = %+v, want swapped into [110,120]", r)
	}
}

func TestNormalize_ProjectsParsedValues(t *testing.T) {
	idx, err := index.Build(vessel.NewCorpus(testFleet()))
	if err != nil {
		t.Fatalf("build index: %v", err)
	}

	q, err := normalize(idx, map[string]any{
		"length_metres": []any{110.0, 120.0},
		"hull_form":     "monohull flared",
		"flight_deck":   "yes",
		"ship_name":     "Sydney",
		"country":       " Australia ",
		"ship_type":     "Frigate",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if _, ok := q.NumericRanges["length_metres"]; !ok {
		t.Error("numeric bounds missing")
	}
	if _, ok := q.Categorical["hull_form"]; !ok {
		t.Error("encoded categorical missing")
	}
	if q.Binary["flight_deck"] != 1 {
		t.Errorf("binary = %d, want 1", q.Binary["flight_deck"])
	}
	if q.Names["ship_name"] != "sydney" {
		t.Errorf("name = %q, want sydney", q.Names["ship_name"])
	}
	if q.HardCountry != "Australia" {
		t.Errorf("hard country = %q", q.HardCountry)
	}
	if q.Text == "" {
		t.Error("lexical evidence missing from the text query")
	}
}
