package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/fleetscope/shipdex/internal/domain/classification"
)

const (
	reportDivider      = "================================================================================"
	reportMinorDivider = "--------------------------------------------------------------------------------"
	reportMatchLimit   = 10
)

// reportSection is one block of query parameters: a heading and the
// fields it renders, in order.
type reportSection struct {
	heading string
	fields  []reportField
}

type reportField struct {
	key   string
	label string
}

var reportSections = []reportSection{
	{
		heading: "Basic Identification:",
		fields: []reportField{
			{"ship_name", "Ship Name:"},
			{"hull_number", "Hull Number:"},
			{"country", "Country:"},
			{"ship_type", "Ship Type:"},
			{"ship_role", "Ship Role:"},
			{"ship_class", "Ship Class:"},
		},
	},
	{
		heading: "Physical Dimensions:",
		fields: []reportField{
			{"length_metres", "Length (m):"},
			{"length_metres__gte", "Length Min (m):"},
			{"length_metres__lte", "Length Max (m):"},
			{"beam_metres", "Beam (m):"},
			{"beam_metres__gte", "Beam Min (m):"},
			{"beam_metres__lte", "Beam Max (m):"},
			{"draught_metres", "Draught (m):"},
			{"draught_metres__gte", "Draught Min (m):"},
			{"draught_metres__lte", "Draught Max (m):"},
			{"speed_knots", "Speed (kn):"},
			{"speed_knots__gte", "Speed Min (kn):"},
			{"speed_knots__lte", "Speed Max (kn):"},
			{"approximate_size_category", "Size Category:"},
			{"length_to_beam_ratio", "L/B Ratio:"},
		},
	},
	{
		heading: "Hull Characteristics:",
		fields: []reportField{
			{"hull_form", "Hull Form:"},
			{"hull_shape", "Hull Shape:"},
			{"bow_shape", "Bow Shape:"},
			{"freeboard_height", "Freeboard:"},
		},
	},
	{
		heading: "Superstructure:",
		fields: []reportField{
			{"superstructure_layout", "Layout:"},
			{"distinct_superstructure_blocks_number", "Blocks:"},
			{"funnel_arrangement", "Funnel Arrange:"},
			{"funnel_shape", "Funnel Shape:"},
			{"spacing_between_funnels", "Funnel Spacing:"},
			{"mast_configuration", "Mast Config:"},
			{"radar_configuration", "Radar Config:"},
		},
	},
	{
		heading: "Weapons Systems:",
		fields: []reportField{
			{"main_gun_turrets_total", "Gun Turrets:"},
			{"gunmounts_number", "Gun Mounts:"},
			{"gunmounts_position", "Gun Mount Pos:"},
			{"gunmounts_size", "Gun Mount Size:"},
			{"torpedo_tubes_visible_number", "Torpedo Tubes:"},
			{"ciws_count", "CIWS Count:"},
			{"ciws_positions", "CIWS Positions:"},
		},
	},
	{
		heading: "Aviation Facilities:",
		fields: []reportField{
			{"flight_deck", "Flight Deck:"},
			{"helicopter_platform", "Helo Platform:"},
			{"hangar", "Hangar:"},
		},
	},
}

// buildReport renders the classification report: the query parameters
// grouped by section, then the top matching vessels.
func buildReport(features map[string]any, matches []classification.Match, threshold float64, topK int) string {
	var b strings.Builder

	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line(reportDivider)
	line("WARSHIP CLASSIFICATION REPORT")
	line(reportDivider)
	line("")
	line("Generated: %s", time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
	line("Classification System: Shipdex Similarity Search")
	line("")
	line(reportDivider)
	line("SECTION 1: QUERY PARAMETERS")
	line(reportDivider)
	line("")

	for _, section := range reportSections {
		if !sectionPresent(section, features) {
			continue
		}
		line(section.heading)
		for _, f := range section.fields {
			if v, ok := features[f.key]; ok {
				line("  %-18s %v", f.label, v)
			}
		}
		line("")
	}

	line("Search Parameters:")
	line("  %-18s %d", "Requested Matches:", topK)
	line("")
	line(reportDivider)
	line("SECTION 2: CLASSIFICATION RESULTS")
	line(reportDivider)
	line("")
	line("Total Matches Found: %d", len(matches))
	line("Confidence Threshold: %g%%", threshold*100)
	line("Search Method: Multi-parameter similarity matching")
	line("")
	line(reportMinorDivider)
	line("TOP MATCHING VESSELS")
	line(reportMinorDivider)
	line("")

	shown := matches
	if len(shown) > reportMatchLimit {
		shown = shown[:reportMatchLimit]
	}
	for i, m := range shown {
		line("Match #%d: %s", i+1, m.Name)
		line(strings.Repeat("-", 40))
		line("  %-15s %s", "Class:", m.ShipClass)
		line("  %-15s %s", "Country:", m.Country)
		line("  %-15s %s", "Type:", m.ShipType)
		line("  %-15s %s", "Pages:", m.Pages)
		line("  %-15s %.1f%%", "Similarity:", m.SimilarityScore)
		line("")
	}
	if len(matches) > reportMatchLimit {
		line("... and %d more matches", len(matches)-reportMatchLimit)
		line("")
	}

	line(reportDivider)
	line("END OF REPORT")
	line(reportDivider)
	return b.String()
}

func sectionPresent(section reportSection, features map[string]any) bool {
	for _, f := range section.fields {
		if _, ok := features[f.key]; ok {
			return true
		}
	}
	return false
}
