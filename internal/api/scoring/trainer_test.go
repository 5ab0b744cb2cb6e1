package scoring

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zipte-app/zipte-server/internal/types"
)

func trainingRows(n int) []types.ScoringRow {
	rows := make([]types.ScoringRow, 0, n)
	for i := 0; i < n; i++ {
		row := types.ScoringRow{
			FeatureRow: types.FeatureRow{
				ComplexCode:     fmt.Sprintf("A%04d", i),
				Name:            fmt.Sprintf("단지%d", i),
				AmenityCount:    i % 5,
				WelfareCount:    i % 3,
				EducationCount:  i % 4,
				TotalHouseholds: 100 + i*17,
				AvgPrice:        1000 + float64(i)*130,
				TotalParking:    50 + i*3,
			},
			District:     []string{"개포동", "역삼동", "우동"}[i%3],
			DealAmount:   50000 + float64(i)*2100,
			Area:         59.9 + float64(i%4)*25,
			Floor:        1 + i%15,
			BusFilled:    []float64{2.5, 7.5, 12.5, 17.5, 20}[i%5],
			SubwayFilled: []float64{2.5, 7.5, 12.5, 17.5, 20}[(i+2)%5],
		}
		rows = append(rows, row)
	}
	return rows
}

func TestTrainDeterministicWithFixedSeed(t *testing.T) {
	rows := trainingRows(40)

	first, err := Train(rows, types.DefaultWeights, DefaultSeed, slog.Default())
	assert.NoError(t, err)
	second, err := Train(rows, types.DefaultWeights, DefaultSeed, slog.Default())
	assert.NoError(t, err)

	assert.Equal(t, first.RMSE, second.RMSE)
	assert.Equal(t, first.TrainRows, second.TrainRows)
	assert.Equal(t, 32, first.TrainRows)
	assert.Equal(t, 8, first.TestRows)
	// Versions are fresh per run even when the fit is identical
	assert.NotEqual(t, first.Artifact.Version, second.Artifact.Version)
}

func TestTrainEmptySet(t *testing.T) {
	_, err := Train(nil, types.DefaultWeights, DefaultSeed, slog.Default())
	assert.Error(t, err)
}

func TestTrainTinySetFallsBackToTrainRMSE(t *testing.T) {
	result, err := Train(trainingRows(3), types.DefaultWeights, DefaultSeed, slog.Default())

	assert.NoError(t, err)
	assert.Equal(t, 3, result.TrainRows)
	assert.Equal(t, 0, result.TestRows)
	assert.False(t, result.RMSE != result.RMSE, "RMSE must not be NaN")
}

func TestDistrictCategoriesSorted(t *testing.T) {
	rows := []types.ScoringRow{
		{District: "역삼동"},
		{District: "개포동"},
		{District: "역삼동"},
		{District: ""},
	}

	assert.Equal(t, []string{"", "개포동", "역삼동"}, districtCategories(rows))
}

func TestDesignMatrixUnseenDistrict(t *testing.T) {
	rows := []types.ScoringRow{{District: "모르는동", Area: 84.99, Floor: 12}}

	x := designMatrix(rows, []string{"개포동", "역삼동"})

	assert.Len(t, x[0], len(featureColumns)+2)
	assert.Equal(t, 84.99, x[0][9])
	assert.Equal(t, 12.0, x[0][10])
	// Unseen district contributes an all-zero indicator block
	assert.Equal(t, 0.0, x[0][11])
	assert.Equal(t, 0.0, x[0][12])
}

func TestSyntheticTarget(t *testing.T) {
	rows := []types.ScoringRow{
		{
			FeatureRow:   types.FeatureRow{AmenityCount: 2, WelfareCount: 1, EducationCount: 3},
			SubwayFilled: 7.5,
			BusFilled:    2.5,
		},
	}
	w := types.WeightSchedule{Amenity: 0.2, Welfare: 0.3, Education: 0.3, Subway: 1, Bus: 2}

	y := syntheticTarget(rows, w)

	assert.InDelta(t, 2*0.2+1*0.3+3*0.3+7.5*1+2.5*2, y[0], 1e-9)
}
