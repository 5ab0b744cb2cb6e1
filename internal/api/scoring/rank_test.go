package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zipte-app/zipte-server/internal/types"
)

func TestRankOrdersByAdjustedScore(t *testing.T) {
	rows := []types.ScoringRow{
		{FeatureRow: types.FeatureRow{Name: "꼴찌"}},
		{FeatureRow: types.FeatureRow{Name: "일등"}},
		{FeatureRow: types.FeatureRow{Name: "이등"}},
	}
	base := []float64{1, 3, 2}
	adjusted := []float64{5, 30, 20}

	ranked := Rank(rows, base, adjusted, 3)

	assert.Len(t, ranked, 3)
	assert.Equal(t, "일등", ranked[0].Name)
	assert.Equal(t, "이등", ranked[1].Name)
	assert.Equal(t, "꼴찌", ranked[2].Name)
	assert.Equal(t, 3.0, ranked[0].BaseScore)
	assert.Equal(t, 30.0, ranked[0].AdjustedScore)
}

func TestRankStableTieBreak(t *testing.T) {
	rows := []types.ScoringRow{
		{FeatureRow: types.FeatureRow{Name: "먼저"}},
		{FeatureRow: types.FeatureRow{Name: "나중"}},
	}

	ranked := Rank(rows, []float64{1, 1}, []float64{10, 10}, 2)

	assert.Equal(t, "먼저", ranked[0].Name)
	assert.Equal(t, "나중", ranked[1].Name)
}

func TestRankClampsTopN(t *testing.T) {
	rows := make([]types.ScoringRow, 12)
	base := make([]float64, 12)
	adjusted := make([]float64, 12)
	for i := range rows {
		adjusted[i] = float64(i)
	}

	assert.Len(t, Rank(rows, base, adjusted, 99), 10)
	assert.Len(t, Rank(rows, base, adjusted, 0), 5)
	assert.Len(t, Rank(rows[:2], base[:2], adjusted[:2], 7), 2)
}
