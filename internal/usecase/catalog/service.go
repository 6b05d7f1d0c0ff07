// Package catalog serves corpus lookups that need no scoring: single
// vessel records, dataset statistics, and the category values used to
// populate query forms.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/fleetscope/shipdex/internal/domain"
	"github.com/fleetscope/shipdex/internal/domain/vessel"
	"github.com/fleetscope/shipdex/internal/index"
)

// Service answers catalog queries against one fitted index.
type Service struct {
	idx *index.Index
}

// New creates a catalog service.
func New(idx *index.Index) *Service {
	return &Service{idx: idx}
}

// Statistics summarizes the loaded corpus.
type Statistics struct {
	TotalShips      int      `json:"total_ships"`
	UniqueCountries int      `json:"unique_countries"`
	UniqueClasses   int      `json:"unique_classes"`
	UniqueTypes     int      `json:"unique_types"`
	Countries       []string `json:"countries"`
	ShipTypes       []string `json:"ship_types"`
}

// Vessel returns the record at the given corpus index.
func (s *Service) Vessel(_ context.Context, recordIndex int) (*vessel.Record, error) {
	if recordIndex < 0 || recordIndex >= s.idx.Len() {
		return nil, fmt.Errorf("vessel %d: %w", recordIndex, domain.ErrRecordNotFound)
	}
	return s.idx.Corpus().Record(recordIndex), nil
}

// Statistics computes corpus-wide counts and the distinct country and
// type lists.
func (s *Service) Statistics(_ context.Context) Statistics {
	countries := make(map[string]struct{})
	classes := make(map[string]struct{})
	types := make(map[string]struct{})
	for _, r := range s.idx.Corpus().Records() {
		countries[r.Country] = struct{}{}
		classes[r.ShipClass] = struct{}{}
		types[r.ShipType] = struct{}{}
	}
	return Statistics{
		TotalShips:      s.idx.Len(),
		UniqueCountries: len(countries),
		UniqueClasses:   len(classes),
		UniqueTypes:     len(types),
		Countries:       sortedSet(countries),
		ShipTypes:       sortedSet(types),
	}
}

// Categories returns the distinct values of every categorical query
// field, for form dropdowns. Metadata fields (country, class, type,
// role) are read from the corpus; channel fields come from the fitted
// encoders.
func (s *Service) Categories(_ context.Context) map[string][]string {
	out := make(map[string][]string, len(vessel.CategoricalFields)+4)
	for _, field := range vessel.CategoricalFields {
		out[field] = s.idx.DistinctValues(field)
	}

	meta := map[string]map[string]struct{}{
		vessel.FieldCountry:   {},
		vessel.FieldShipClass: {},
		vessel.FieldShipType:  {},
		vessel.FieldShipRole:  {},
	}
	for _, r := range s.idx.Corpus().Records() {
		meta[vessel.FieldCountry][r.Country] = struct{}{}
		meta[vessel.FieldShipClass][r.ShipClass] = struct{}{}
		meta[vessel.FieldShipType][r.ShipType] = struct{}{}
		meta[vessel.FieldShipRole][r.ShipRole] = struct{}{}
	}
	for field, values := range meta {
		out[field] = sortedSet(values)
	}
	return out
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
