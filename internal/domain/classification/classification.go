// Package classification models a stored classification: the cleaned
// query, the formatted matches, and the generated report text.
package classification

import "time"

// Match is one formatted result group, ready for presentation. Scores
// are percentages rounded to two decimals.
type Match struct {
	Rank            int      `json:"rank"`
	SimilarityScore float64  `json:"similarity_score"`
	ShipCount       int      `json:"ship_count"`
	MatchType       string   `json:"match_type"`
	Name            string   `json:"name"`
	ShipNames       []string `json:"ship_names"`
	HullNumbers     []string `json:"hull_numbers"`
	Country         string   `json:"country"`
	ShipClass       string   `json:"ship_class"`
	ShipType        string   `json:"ship_type"`
	ShipRole        string   `json:"ship_role"`
	LengthMetres    float64  `json:"length_metres"`
	BeamMetres      float64  `json:"beam_metres"`
	DraughtMetres   float64  `json:"draught_metres"`
	Pages           string   `json:"pages"`
}

// Classification is the stored outcome of one classify request.
type Classification struct {
	ID                 string         `json:"id"`
	QueryFeatures      map[string]any `json:"query_features"`
	Filters            map[string]any `json:"filters_used"`
	SimilarityFeatures map[string]any `json:"similarity_features_used"`
	SearchMethod       string         `json:"search_method"`
	Matches            []Match        `json:"results"`
	ReportText         string         `json:"report_text"`
	CreatedAt          time.Time      `json:"created_at"`
}
