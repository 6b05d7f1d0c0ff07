package query

import "testing"

func f(v float64) *float64 { return &v }

func TestRange_Midpoint(t *testing.T) {
	cases := []struct {
		name string
		r    Range
		want float64
		ok   bool
	}{
		{"both bounds", Range{Min: f(100), Max: f(200)}, 150, true},
		{"min only", Range{Min: f(100)}, 100, true},
		{"max only", Range{Max: f(200)}, 200, true},
		{"empty", Range{}, 0, false},
	}
	for _, tc := range cases {
		got, ok := tc.r.Midpoint()
		if got != tc.want || ok != tc.ok {
			t.Errorf("%s: midpoint = %v/%v, want %v/%v", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRange_IsEmpty(t *testing.T) {
	if !(Range{}).IsEmpty() {
		t.Error("zero range must be empty")
	}
	if (Range{Min: f(1)}).IsEmpty() {
		t.Error("bounded range must not be empty")
	}
}

func TestValue_Variants(t *testing.T) {
	if v := ExactString("Frigate"); v.Kind() != Exact || v.Str() != "Frigate" {
		t.Errorf("exact string = %+v", v)
	}
	if v := ExactNumber(118); v.Kind() != Exact || v.Num() != 118 {
		t.Errorf("exact number = %+v", v)
	}
	if v := NewFuzzy("sydny"); v.Kind() != FuzzyText || v.Str() != "sydny" {
		t.Errorf("fuzzy = %+v", v)
	}
	r := Range{Min: f(1), Max: f(2)}
	if v := NewBounds(r); v.Kind() != Bounds || v.Range().Min == nil {
		t.Errorf("bounds = %+v", v)
	}
	if AbsentValue.Kind() != Absent {
		t.Error("zero value must be Absent")
	}
}

func TestNormalized_IsEmpty(t *testing.T) {
	n := NewNormalized()
	if !n.IsEmpty() {
		t.Error("fresh query must be empty")
	}

	populate := []func(*Normalized){
		func(n *Normalized) { n.NumericRanges["length_metres"] = Range{Min: f(1)} },
		func(n *Normalized) { n.Categorical["hull_form"] = 2 },
		func(n *Normalized) { n.Text = "monohull" },
		func(n *Normalized) { n.Binary["flight_deck"] = 1 },
		func(n *Normalized) { n.Names["ship_name"] = "sydney" },
	}
	for i, fill := range populate {
		n := NewNormalized()
		fill(n)
		if n.IsEmpty() {
			t.Errorf("case %d: populated query reported empty", i)
		}
	}

	// A hard country alone does not make a scorable query.
	n = NewNormalized()
	n.HardCountry = "Australia"
	if !n.IsEmpty() {
		t.Error("hard country only must stay empty")
	}
}
