package corpus

import (
	"math"
	"strconv"
	"strings"

	"github.com/fleetscope/shipdex/internal/domain/vessel"
)

// normalizeRow coerces one source row into a fully-defaulted record.
// Every defaulting decision happens here, once, so downstream code never
// re-checks for missing values.
func normalizeRow(row map[string]string, index int, groupColumn string) vessel.Record {
	r := vessel.Record{
		RecordIndex: index,
		Country:     categoricalValue(row[vessel.FieldCountry]),
		ShipName:    strings.TrimSpace(row[vessel.FieldShipName]),
		HullNumber:  strings.TrimSpace(row[vessel.FieldHullNumber]),
		ShipClass:   categoricalValue(row[vessel.FieldShipClass]),
		ShipType:    categoricalValue(row[vessel.FieldShipType]),
		ShipRole:    categoricalValue(row[vessel.FieldShipRole]),
		StartPage:   intValue(row[vessel.FieldStartPage]),
		EndPage:     intValue(row[vessel.FieldEndPage]),
		Numeric:     make(map[string]float64, len(vessel.NumericFields)),
		Categorical: make(map[string]string, len(vessel.CategoricalFields)),
		Binary:      make(map[string]int, len(vessel.BinaryFields)),
	}

	if groupColumn != "" {
		r.GroupID = strings.TrimSpace(row[groupColumn])
	}

	for _, f := range vessel.NumericFields {
		r.Numeric[f] = numericValue(row[f])
	}
	for _, f := range vessel.CategoricalFields {
		r.Categorical[f] = categoricalValue(row[f])
	}
	for _, f := range vessel.BinaryFields {
		r.Binary[f] = binaryValue(row[f])
	}

	r.TextBlob = vessel.BuildTextBlob(r.Categorical)
	return r
}

// numericValue parses a float; unparseable, missing and NaN cells become 0.
func numericValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// categoricalValue maps missing and NaN-like cells to "Unknown".
func categoricalValue(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return vessel.UnknownValue
	}
	return s
}

// binaryValue maps source flags through the fixed value table,
// case-insensitively; anything unmapped becomes 0.
func binaryValue(s string) int {
	return vessel.BinaryValue[strings.ToLower(strings.TrimSpace(s))]
}

func intValue(s string) int {
	f := numericValue(s)
	return int(f)
}
