// Package vessel defines the corpus record model and the fixed field
// schema the feature channels are built from.
package vessel

// Well-known metadata field names.
const (
	FieldCountry    = "country"
	FieldShipName   = "ship_name"
	FieldHullNumber = "hull_number"
	FieldShipClass  = "ship_class"
	FieldShipType   = "ship_type"
	FieldShipRole   = "ship_role"
	FieldGroupID    = "group_id"
	FieldStartPage  = "start_page"
	FieldEndPage    = "end_page"
)

// NumericFields are the numeric channel columns, coerced to float at load.
var NumericFields = []string{
	"length_metres",
	"beam_metres",
	"draught_metres",
	"speed_knots",
	"distinct_superstructure_blocks_number",
	"funnels_total",
	"smokestacks_total",
	"main_gun_turrets_total",
	"gunmounts_number",
	"torpedo_tubes_visible_number",
	"ciws_count",
}

// CategoricalFields are the categorical channel columns. Their values,
// joined in this order, also form each record's text blob.
var CategoricalFields = []string{
	"hull_form",
	"hull_shape",
	"bow_shape",
	"superstructure_layout",
	"funnel_arrangement",
	"funnel_shape",
	"spacing_between_funnels",
	"mast_configuration",
	"gunmounts_position",
	"gunmounts_size",
	"radar_configuration",
	"approximate_size_category",
	"length_to_beam_ratio",
	"freeboard_height",
	"ciws_positions",
}

// BinaryFields are the 0/1 presence flag columns.
var BinaryFields = []string{
	"flight_deck",
	"helicopter_platform",
	"hangar",
}

// NameFields are free-string fields matched with the fuzzy name channel
// rather than any vector channel.
var NameFields = []string{
	FieldShipName,
	FieldHullNumber,
}

// FilterFields are the exact-match columns the classify flow routes to
// filter search instead of similarity features.
var FilterFields = []string{
	FieldShipType,
	FieldShipRole,
	FieldCountry,
	FieldShipClass,
	"hull_form",
	"approximate_size_category",
	"superstructure_layout",
	"funnel_arrangement",
	"mast_configuration",
	"radar_configuration",
	"flight_deck",
	"hangar",
	"helicopter_platform",
}

// UnknownValue fills missing categorical cells.
const UnknownValue = "Unknown"

// BinaryValue maps source cell values to 0/1. Lookup is case-insensitive;
// unmapped values default to 0.
var BinaryValue = map[string]int{
	"y": 1,
	"n": 0,
}

// IsNumericField reports whether name is a declared numeric column.
func IsNumericField(name string) bool { return contains(NumericFields, name) }

// IsCategoricalField reports whether name is a declared categorical column.
func IsCategoricalField(name string) bool { return contains(CategoricalFields, name) }

// IsBinaryField reports whether name is a declared binary column.
func IsBinaryField(name string) bool { return contains(BinaryFields, name) }

// IsNameField reports whether name is matched via the fuzzy name channel.
func IsNameField(name string) bool { return contains(NameFields, name) }

func contains(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
