package recommend

import (
	"log/slog"
	"strings"

	"github.com/zipte-app/zipte-server/internal/api/property"
	"github.com/zipte-app/zipte-server/internal/types"
)

// Sentinel tokens substituted for missing facility text. They keep the text
// representation deterministic and let "has none" carry its own signal
// instead of vanishing from the vocabulary.
const (
	amenitySentinel   = "no-amenity"
	educationSentinel = "no-education-facility"
	welfareSentinel   = "no-welfare-facility"
)

// missingTransitMinutes is the penalty filled in for complexes with no
// transit bucket at all. Larger than any bucket midpoint, so "no data" never
// looks like fast access.
const missingTransitMinutes = 20.0

// transitMinutes maps the store's ordinal transit buckets to their midpoint
// in minutes. Unmapped labels propagate as missing.
var transitMinutes = map[string]float64{
	"5분이내":    2.5,
	"5~10분이내":  7.5,
	"10~15분이내": 12.5,
	"15~20분이내": 17.5,
}

// BuildFeatures derives one pre-scaling feature row per property. All fill
// policies live here; downstream consumers see either a value or an explicit
// nil, never a NaN.
func BuildFeatures(properties []types.PropertyRecord, logger *slog.Logger) []types.FeatureRow {
	rows := make([]types.FeatureRow, 0, len(properties))
	for _, p := range properties {
		amenities := fillText(p.Amenities, amenitySentinel)
		education := fillText(p.EducationFacilities, educationSentinel)
		welfare := fillText(p.WelfareFacilities, welfareSentinel)

		rows = append(rows, types.FeatureRow{
			ComplexCode:     p.ComplexCode,
			Name:            p.Name,
			Address:         p.Address,
			FacilityText:    education + " " + amenities + " " + welfare,
			AmenityCount:    countFacilities(p.Amenities),
			EducationCount:  countFacilities(p.EducationFacilities),
			WelfareCount:    countFacilities(p.WelfareFacilities),
			TotalHouseholds: p.Households60 + p.Households85 + p.Households135 + p.Households136,
			AvgPrice:        p.AvgPrice,
			TotalParking:    p.GroundParking + p.UndergroundParking,
			BusMinutes:      transit(p.BusTime, "bus", p.Name, logger),
			SubwayMinutes:   transit(p.SubwayTime, "subway", p.Name, logger),
			SubwayLine:      p.SubwayLine,
			SubwayStation:   p.SubwayStation,
		})
	}
	return rows
}

// BuildScoringRows derives the table the scoring model and blender consume,
// one row per joined transaction. Transit minutes are filled with the
// missing-data penalty here.
func BuildScoringRows(joined []types.JoinedRecord, logger *slog.Logger) []types.ScoringRow {
	features := make([]types.PropertyRecord, 0, len(joined))
	for _, j := range joined {
		features = append(features, j.Property)
	}
	featureRows := BuildFeatures(features, logger)

	rows := make([]types.ScoringRow, 0, len(joined))
	for i, j := range joined {
		row := types.ScoringRow{
			FeatureRow: featureRows[i],
			District:   property.Dong(j.Property.Address),
			DealAmount: float64(j.Transaction.Amount),
			Area:       j.Transaction.Area,
			Floor:      j.Transaction.Floor,
		}
		row.BusFilled = fillTransit(row.BusMinutes)
		row.SubwayFilled = fillTransit(row.SubwayMinutes)
		rows = append(rows, row)
	}
	return rows
}

func fillText(text, sentinel string) string {
	if strings.TrimSpace(text) == "" {
		return sentinel
	}
	return text
}

// countFacilities counts comma-separated entries in a facility blob.
func countFacilities(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	count := 0
	for _, entry := range strings.Split(text, ",") {
		if strings.TrimSpace(entry) != "" {
			count++
		}
	}
	return count
}

func transit(label, kind, name string, logger *slog.Logger) *float64 {
	if strings.TrimSpace(label) == "" {
		return nil
	}
	minutes, ok := transitMinutes[label]
	if !ok {
		if logger != nil {
			logger.Warn("Unmapped transit bucket treated as missing",
				slog.String("kind", kind), slog.String("label", label), slog.String("name", name))
		}
		return nil
	}
	return &minutes
}

func fillTransit(minutes *float64) float64 {
	if minutes == nil {
		return missingTransitMinutes
	}
	return *minutes
}
