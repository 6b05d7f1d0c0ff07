package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/fleetscope/shipdex/internal/domain"
	"github.com/fleetscope/shipdex/internal/domain/vessel"
	"github.com/fleetscope/shipdex/internal/index"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	records := []vessel.Record{
		testRecord(0, "Australia", "Anzac", "Frigate", "monohull flared"),
		testRecord(1, "Australia", "Anzac", "Frigate", "monohull flared"),
		testRecord(2, "USA", "Ticonderoga", "Cruiser", "monohull"),
		testRecord(3, "Japan", "Atago", "Destroyer", vessel.UnknownValue),
	}
	idx, err := index.Build(vessel.NewCorpus(records))
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	return New(idx)
}

func testRecord(i int, country, class, shipType, hullForm string) vessel.Record {
	r := vessel.Record{
		RecordIndex: i,
		Country:     country,
		ShipClass:   class,
		ShipType:    shipType,
		ShipRole:    vessel.UnknownValue,
		Numeric:     make(map[string]float64),
		Categorical: make(map[string]string),
		Binary:      make(map[string]int),
	}
	for _, f := range vessel.NumericFields {
		r.Numeric[f] = 0
	}
	for _, f := range vessel.CategoricalFields {
		r.Categorical[f] = vessel.UnknownValue
	}
	for _, f := range vessel.BinaryFields {
		r.Binary[f] = 0
	}
	r.Categorical["hull_form"] = hullForm
	r.TextBlob = vessel.BuildTextBlob(r.Categorical)
	return r
}

func TestVessel(t *testing.T) {
	s := newTestService(t)

	r, err := s.Vessel(context.Background(), 2)
	if err != nil {
		t.Fatalf("vessel: %v", err)
	}
	if r.Country != "USA" || r.ShipClass != "Ticonderoga" {
		t.Errorf("record = %+v", r)
	}

	for _, idx := range []int{-1, 4} {
		if _, err := s.Vessel(context.Background(), idx); !errors.Is(err, domain.ErrRecordNotFound) {
			t.Errorf("index %d: err = %v, want ErrRecordNotFound", idx, err)
		}
	}
}

func TestStatistics(t *testing.T) {
	s := newTestService(t)

	stats := s.Statistics(context.Background())
	if stats.TotalShips != 4 {
		t.Errorf("total = %d", stats.TotalShips)
	}
	if stats.UniqueCountries != 3 {
		t.Errorf("countries = %d", stats.UniqueCountries)
	}
	if stats.UniqueClasses != 3 {
		t.Errorf("classes = %d", stats.UniqueClasses)
	}
	if stats.UniqueTypes != 3 {
		t.Errorf("types = %d", stats.UniqueTypes)
	}
	wantCountries := []string{"Australia", "Japan", "USA"}
	if len(stats.Countries) != len(wantCountries) {
		t.Fatalf("countries = %v", stats.Countries)
	}
	for i, c := range wantCountries {
		if stats.Countries[i] != c {
			t.Errorf("countries[%d] = %q, want %q", i, stats.Countries[i], c)
		}
	}
}

func TestCategories(t *testing.T) {
	s := newTestService(t)

	cats := s.Categories(context.Background())

	hullForms := cats["hull_form"]
	want := map[string]bool{"monohull": true, "monohull flared": true, vessel.UnknownValue: true}
	if len(hullForms) != len(want) {
		t.Fatalf("hull_form values = %v", hullForms)
	}
	for _, v := range hullForms {
		if !want[v] {
			t.Errorf("unexpected hull_form value %q", v)
		}
	}

	types := cats[vessel.FieldShipType]
	if len(types) != 3 {
		t.Errorf("ship_type values = %v", types)
	}
}
