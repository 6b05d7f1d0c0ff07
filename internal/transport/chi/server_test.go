package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fleetscope/shipdex/internal/domain"
	"github.com/fleetscope/shipdex/internal/domain/classification"
	"github.com/fleetscope/shipdex/internal/domain/vessel"
	"github.com/fleetscope/shipdex/internal/index"
	cataloguc "github.com/fleetscope/shipdex/internal/usecase/catalog"
	classifyuc "github.com/fleetscope/shipdex/internal/usecase/classify"
	healthuc "github.com/fleetscope/shipdex/internal/usecase/health"
	searchuc "github.com/fleetscope/shipdex/internal/usecase/search"
)

// memStore keeps classifications in a map, standing in for the Redis store.
type memStore struct {
	data map[string]classification.Classification
}

func (m *memStore) Save(_ context.Context, c classification.Classification) error {
	m.data[c.ID] = c
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (classification.Classification, error) {
	c, ok := m.data[id]
	if !ok {
		return classification.Classification{}, domain.ErrClassificationNotFound
	}
	return c, nil
}

func testRecord(i int, over func(r *vessel.Record)) vessel.Record {
	r := vessel.Record{
		RecordIndex: i,
		Country:     vessel.UnknownValue,
		ShipClass:   vessel.UnknownValue,
		ShipType:    vessel.UnknownValue,
		ShipRole:    vessel.UnknownValue,
		Numeric:     make(map[string]float64, len(vessel.NumericFields)),
		Categorical: make(map[string]string, len(vessel.CategoricalFields)),
		Binary:      make(map[string]int, len(vessel.BinaryFields)),
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
	over(&r)
	r.TextBlob = vessel.BuildTextBlob(r.Categorical)
	return r
}

func testCorpus() *vessel.Corpus {
	return vessel.NewCorpus([]vessel.Record{
		testRecord(0, func(r *vessel.Record) {
			r.Country, r.ShipName, r.HullNumber = "Australia", "HMAS Sydney", "FFH 111"
			r.ShipClass, r.ShipType = "Anzac", "Frigate"
			r.Numeric["length_metres"] = 118
			r.Numeric["beam_metres"] = 14.8
			r.Numeric["speed_knots"] = 27
			r.StartPage, r.EndPage = 12, 14
		}),
		testRecord(1, func(r *vessel.Record) {
			r.Country, r.ShipName, r.HullNumber = "Australia", "HMAS Perth", "FFH 157"
			r.ShipClass, r.ShipType = "Anzac", "Frigate"
			r.Numeric["length_metres"] = 118
			r.Numeric["beam_metres"] = 14.8
			r.Numeric["speed_knots"] = 27
		}),
		testRecord(2, func(r *vessel.Record) {
			r.Country, r.ShipName, r.HullNumber = "USA", "USS Ticonderoga", "CG 47"
			r.ShipClass, r.ShipType = "Ticonderoga", "Cruiser"
			r.Numeric["length_metres"] = 173
			r.Numeric["beam_metres"] = 16.8
			r.Numeric["speed_knots"] = 32
		}),
		testRecord(3, func(r *vessel.Record) {
			r.Country, r.ShipName, r.HullNumber = "Japan", "JS Atago", "DDG 177"
			r.ShipClass, r.ShipType = "Atago", "Destroyer"
			r.Numeric["length_metres"] = 165
			r.Numeric["beam_metres"] = 21
			r.Numeric["speed_knots"] = 30
		}),
		testRecord(4, func(r *vessel.Record) {
			r.Country, r.ShipName = "Russia", "Admiral Gorshkov"
			r.ShipClass, r.ShipType = "Gorshkov", "Frigate"
			r.Numeric["length_metres"] = 135
			r.Numeric["beam_metres"] = 15.2
			r.Numeric["speed_knots"] = 29
		}),
		testRecord(5, func(r *vessel.Record) {
			r.Country, r.ShipName, r.HullNumber = "USA", "USS Zumwalt", "DDG 1000"
			r.ShipClass, r.ShipType = "Zumwalt", "Destroyer"
			r.Numeric["length_metres"] = 190
			r.Numeric["beam_metres"] = 24.6
			r.Numeric["speed_knots"] = 30
		}),
	})
}

func newTestHandler(t *testing.T) (http.Handler, *memStore) {
	t.Helper()
	idx, err := index.Build(testCorpus())
	if err != nil {
		t.Fatalf("build index: %v", err)
	}

	store := &memStore{data: make(map[string]classification.Classification)}
	searchSvc := searchuc.New(idx, searchuc.Config{})
	classifySvc := classifyuc.New(searchSvc, store, 10, 0)
	catalogSvc := cataloguc.New(idx)
	healthSvc := healthuc.New(idx, nil)

	s := NewServer(searchSvc, classifySvc, catalogSvc, healthSvc, zap.NewNop())
	r := gochi.NewRouter()
	s.Register(r)
	return r, store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth_OK(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	resp := decode[healthPayload](t, rr)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.ShipsLoaded != 6 {
		t.Errorf("ships_loaded = %d, want 6", resp.ShipsLoaded)
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth_DegradedCache_503(t *testing.T) {
	idx, err := index.Build(testCorpus())
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	searchSvc := searchuc.New(idx, searchuc.Config{})
	classifySvc := classifyuc.New(searchSvc, nil, 10, 0)
	s := NewServer(searchSvc, classifySvc, cataloguc.New(idx), healthuc.New(idx, failingPinger{}), zap.NewNop())
	r := gochi.NewRouter()
	s.Register(r)

	rr := doJSON(t, r, "GET", "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	resp := decode[healthPayload](t, rr)
	if resp.Status != "degraded" {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
}

func TestSimilaritySearch(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "POST", "/api/search/similarity", map[string]any{
		"features": map[string]any{"length_metres": []float64{110, 120}},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decode[searchPayload](t, rr)
	if resp.Count == 0 || len(resp.Results) == 0 {
		t.Fatal("expected results")
	}
	top := resp.Results[0]
	if top.GroupKey != "Anzac|Australia|Frigate" {
		t.Errorf("top group = %q", top.GroupKey)
	}
	if top.SimilarityScore != 100 {
		t.Errorf("score = %v, want 100", top.SimilarityScore)
	}
	if top.Name != "HMAS Perth, HMAS Sydney (FFH 111, FFH 157)" {
		t.Errorf("name = %q", top.Name)
	}
}

func TestSimilaritySearch_EmptyQuery_400(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "POST", "/api/search/similarity", map[string]any{
		"features": map[string]any{},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	resp := decode[errorResponse](t, rr)
	if resp.Code != codeEmptyQuery {
		t.Errorf("code = %q, want %q", resp.Code, codeEmptyQuery)
	}
}

func TestSimilaritySearch_MalformedBody_400(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/api/search/similarity", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSimilaritySearch_NegativeWeight_400(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "POST", "/api/search/similarity", map[string]any{
		"features": map[string]any{"length_metres": 118},
		"weights":  map[string]float64{"numerical": -1},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	resp := decode[errorResponse](t, rr)
	if resp.Code != codeBadRequest {
		t.Errorf("code = %q, want %q", resp.Code, codeBadRequest)
	}
}

func TestFilterSearch(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "POST", "/api/search/filter", map[string]any{
		"filters": map[string]any{"ship_type": "Destroyer"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decode[searchPayload](t, rr)
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	for i, g := range resp.Results {
		if g.MatchType != "filter" {
			t.Errorf("result %d match_type = %q", i, g.MatchType)
		}
		if g.Rank != i+1 {
			t.Errorf("result %d rank = %d", i, g.Rank)
		}
	}
}

func TestFilterSearch_MissingFilters_400(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "POST", "/api/search/filter", map[string]any{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestClassify_RoundTrip(t *testing.T) {
	handler, store := newTestHandler(t)

	rr := doJSON(t, handler, "POST", "/api/classify", map[string]any{
		"ship_type":     "Frigate",
		"length_metres": 118,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decode[classifyResponse](t, rr)
	if resp.ID == "" {
		t.Fatal("expected a classification id")
	}
	if len(resp.Matches) == 0 {
		t.Fatal("expected matches")
	}
	if resp.ReportText == "" {
		t.Error("expected report text")
	}
	if _, ok := store.data[resp.ID]; !ok {
		t.Error("classification not persisted")
	}

	get := doJSON(t, handler, "GET", "/api/classifications/"+resp.ID, nil)
	if get.Code != http.StatusOK {
		t.Fatalf("get status = %d", get.Code)
	}
	stored := decode[classification.Classification](t, get)
	if stored.ID != resp.ID {
		t.Errorf("stored id = %q, want %q", stored.ID, resp.ID)
	}
}

func TestClassify_NoCriteria_400(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "POST", "/api/classify", map[string]any{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	resp := decode[errorResponse](t, rr)
	if resp.Code != codeEmptyQuery {
		t.Errorf("code = %q, want %q", resp.Code, codeEmptyQuery)
	}
}

func TestGetClassification_Unknown_404(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "GET", "/api/classifications/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	resp := decode[errorResponse](t, rr)
	if resp.Code != codeClassificationNotFound {
		t.Errorf("code = %q, want %q", resp.Code, codeClassificationNotFound)
	}
}

func TestGetVessel(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "GET", "/api/vessels/0", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[vesselPayload](t, rr)
	if resp.ShipName != "HMAS Sydney" {
		t.Errorf("ship_name = %q", resp.ShipName)
	}
	if resp.Pages != "12-14" {
		t.Errorf("pages = %q, want 12-14", resp.Pages)
	}
}

func TestGetVessel_Unknown_404(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "GET", "/api/vessels/99", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	resp := decode[errorResponse](t, rr)
	if resp.Code != codeRecordNotFound {
		t.Errorf("code = %q, want %q", resp.Code, codeRecordNotFound)
	}
}

func TestGetVessel_NonNumericID_400(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "GET", "/api/vessels/anzac", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSimilarVessels(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "GET", "/api/vessels/0/similar?top_k=3", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decode[searchPayload](t, rr)
	for _, g := range resp.Results {
		if g.GroupKey == "Anzac|Australia|Frigate" {
			t.Error("query vessel's own group must be excluded")
		}
	}
}

func TestSimilarVessels_BadTopK_400(t *testing.T) {
	handler, _ := newTestHandler(t)

	for _, q := range []string{"top_k=abc", "top_k=-1", "top_k=0"} {
		rr := doJSON(t, handler, "GET", "/api/vessels/0/similar?"+q, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rr.Code)
		}
	}
}

func TestStatistics(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "GET", "/api/statistics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[cataloguc.Statistics](t, rr)
	if resp.TotalShips != 6 {
		t.Errorf("total_ships = %d, want 6", resp.TotalShips)
	}
	if resp.UniqueCountries != 4 {
		t.Errorf("unique_countries = %d, want 4", resp.UniqueCountries)
	}
}

func TestCategories(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "GET", "/api/categories", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[map[string][]string](t, rr)
	countries, ok := resp[vessel.FieldCountry]
	if !ok {
		t.Fatal("expected a country category")
	}
	found := false
	for _, c := range countries {
		if c == "Australia" {
			found = true
		}
	}
	if !found {
		t.Errorf("countries = %v, missing Australia", countries)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, "GET", "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("expected prometheus exposition output")
	}
}
