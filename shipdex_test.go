package shipdex

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fleetscope/shipdex/internal/domain"
)

const fleetCSV = `ship_name,hull_number,country,ship_class,ship_type,ship_role,length_metres,beam_metres,speed_knots,hull_form,flight_deck,start_page,end_page
HMAS Sydney,FFH 111,Australia,Anzac,Frigate,ASW,118,14.8,27,monohull flared,Y,12,14
HMAS Perth,FFH 157,Australia,Anzac,Frigate,ASW,118,14.8,27,monohull flared,Y,,
USS Ticonderoga,CG 47,USA,Ticonderoga,Cruiser,AAW,173,16.8,32,monohull,Y,,
JS Atago,DDG 177,Japan,Atago,Destroyer,AAW,165,21,30,,N,,
Admiral Gorshkov,,Russia,Gorshkov,Frigate,Multi-role,135,15.2,29,,N,,
`

func writeFleet(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fleet.csv")
	if err := os.WriteFile(path, []byte(fleetCSV), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.csv"))
	if !errors.Is(err, domain.ErrDataSource) {
		t.Fatalf("err = %v, want ErrDataSource", err)
	}
}

func TestOpen_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.xlsx")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Open(path); !errors.Is(err, domain.ErrDataSource) {
		t.Fatalf("err = %v, want ErrDataSource", err)
	}
}

func TestClient_Similarity(t *testing.T) {
	c, err := Open(writeFleet(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if c.Len() != 5 {
		t.Fatalf("len = %d, want 5", c.Len())
	}

	groups, err := c.Similarity(context.Background(), map[string]any{
		"length_metres": []any{110.0, 120.0},
	}, 0)
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if len(groups) == 0 {
		t.Fatal("expected results")
	}
	if groups[0].GroupKey != "Anzac|Australia|Frigate" {
		t.Errorf("top group = %q", groups[0].GroupKey)
	}
	if groups[0].RecordCount != 2 {
		t.Errorf("record count = %d, want 2", groups[0].RecordCount)
	}
}

func TestClient_Filter(t *testing.T) {
	c, err := Open(writeFleet(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	groups, err := c.Filter(context.Background(), map[string]any{
		"ship_type": "Frigate",
	}, 0)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected the Anzac and Gorshkov groups, got %d", len(groups))
	}
}

func TestClient_SimilarTo(t *testing.T) {
	c, err := Open(writeFleet(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	groups, err := c.SimilarTo(context.Background(), 0, 3)
	if err != nil {
		t.Fatalf("similar to: %v", err)
	}
	for _, g := range groups {
		if g.GroupKey == "Anzac|Australia|Frigate" {
			t.Error("own group must be excluded")
		}
	}
}

func TestClient_Classify(t *testing.T) {
	c, err := Open(writeFleet(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	resp, err := c.Classify(context.Background(), map[string]any{
		"length_metres": 118,
		"flight_deck":   "yes",
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if resp.Classification.ID == "" {
		t.Error("expected a classification id")
	}
	if len(resp.Classification.Matches) == 0 {
		t.Error("expected matches")
	}
}

func TestClient_Statistics(t *testing.T) {
	c, err := Open(writeFleet(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	stats := c.Statistics(context.Background())
	if stats.TotalShips != 5 {
		t.Errorf("total = %d, want 5", stats.TotalShips)
	}
	if stats.UniqueCountries != 4 {
		t.Errorf("countries = %d, want 4", stats.UniqueCountries)
	}
}

func TestClient_Vessel(t *testing.T) {
	c, err := Open(writeFleet(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	rec, err := c.Vessel(context.Background(), 0)
	if err != nil {
		t.Fatalf("vessel: %v", err)
	}
	if rec.ShipName != "HMAS Sydney" {
		t.Errorf("ship name = %q", rec.ShipName)
	}

	if _, err := c.Vessel(context.Background(), 99); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestClient_Health(t *testing.T) {
	c, err := Open(writeFleet(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	report := c.Health(context.Background())
	if report.Status != "ok" {
		t.Errorf("status = %q, want ok", report.Status)
	}
	if report.Ships != 5 {
		t.Errorf("ships = %d, want 5", report.Ships)
	}
}
