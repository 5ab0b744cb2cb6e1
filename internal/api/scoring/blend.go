package scoring

import (
	"fmt"
	"math"

	"github.com/zipte-app/zipte-server/internal/types"
)

// Blend combines base model scores with user-preference similarity terms.
// With an all-zero schedule the adjusted scores equal the base scores.
func Blend(base []float64, rows []types.ScoringRow, prefs types.UserPreferences, w types.WeightSchedule) ([]float64, error) {
	if prefs.PriceTolerance <= 0 {
		return nil, fmt.Errorf("%w: price tolerance must be positive", types.ErrInvalidPreference)
	}
	if prefs.AreaTolerance <= 0 {
		return nil, fmt.Errorf("%w: area tolerance must be positive", types.ErrInvalidPreference)
	}

	adjusted := make([]float64, len(rows))
	for i, row := range rows {
		location := 0.0
		if row.District == prefs.District {
			location = 1
		}
		price := boundedSimilarity(row.DealAmount, prefs.TargetPrice, prefs.PriceTolerance)
		area := boundedSimilarity(row.Area, prefs.TargetArea, prefs.AreaTolerance)

		adjusted[i] = base[i] +
			float64(row.AmenityCount)*w.Amenity +
			float64(row.WelfareCount)*w.Welfare +
			float64(row.EducationCount)*w.Education +
			row.BusFilled*w.Bus +
			row.SubwayFilled*w.Subway +
			location*w.Location +
			price*w.Price +
			area*w.Area
	}
	return adjusted, nil
}

// boundedSimilarity is 1 at the target, decays linearly with distance and is
// floored at 0, so the result always lies in [0, 1].
func boundedSimilarity(value, target, tolerance float64) float64 {
	return math.Max(0, 1-math.Abs(value-target)/tolerance)
}
