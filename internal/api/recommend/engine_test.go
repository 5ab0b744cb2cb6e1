package recommend

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zipte-app/zipte-server/internal/types"
)

func featureRow(name, text string, households int, price float64) types.FeatureRow {
	return types.FeatureRow{
		Name:            name,
		Address:         "서울특별시 강남구 개포동 " + name,
		FacilityText:    text,
		TotalHouseholds: households,
		AvgPrice:        price,
		TotalParking:    100,
		SubwayLine:      "3호선",
		SubwayStation:   "대청역",
	}
}

func TestClampTopN(t *testing.T) {
	assert.Equal(t, 5, ClampTopN(0))
	assert.Equal(t, 1, ClampTopN(-3))
	assert.Equal(t, 1, ClampTopN(1))
	assert.Equal(t, 7, ClampTopN(7))
	assert.Equal(t, 10, ClampTopN(99))
}

func TestSimilarityRankIdenticalRowScoresOne(t *testing.T) {
	rows := []types.FeatureRow{
		featureRow("타겟", "초등학교 편의점", 500, 3000),
		featureRow("쌍둥이", "초등학교 편의점", 500, 3000),
		featureRow("다른곳", "no-education-facility no-amenity", 50, 900),
	}

	recs, err := SimilarityRank(rows, "타겟", 3)

	assert.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, "쌍둥이", recs[0].Name)
	assert.InDelta(t, 1.0, recs[0].Score, 1e-6)
	assert.GreaterOrEqual(t, recs[0].Score, recs[1].Score)
}

func TestSimilarityRankExcludesTarget(t *testing.T) {
	rows := []types.FeatureRow{
		featureRow("타겟", "초등학교", 500, 3000),
		featureRow("이웃", "초등학교", 480, 2900),
	}

	recs, err := SimilarityRank(rows, "타겟", 5)

	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	for _, r := range recs {
		assert.NotEqual(t, "타겟", r.Name)
	}
}

func TestSimilarityRankOrderNonIncreasing(t *testing.T) {
	rows := make([]types.FeatureRow, 0, 12)
	rows = append(rows, featureRow("타겟", "초등학교 편의점 피트니스", 500, 3000))
	for i := 0; i < 11; i++ {
		rows = append(rows, featureRow(
			fmt.Sprintf("후보%d", i),
			"초등학교 편의점",
			100+i*50,
			1000+float64(i)*200,
		))
	}

	recs, err := SimilarityRank(rows, "타겟", 99)

	assert.NoError(t, err)
	assert.Len(t, recs, 10)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score)
	}
}

func TestSimilarityRankUnknownTarget(t *testing.T) {
	rows := []types.FeatureRow{featureRow("래미안", "초등학교", 500, 3000)}

	_, err := SimilarityRank(rows, "없는단지", 5)

	assert.ErrorIs(t, err, types.ErrPropertyNotFound)
}

func TestSimilarityRankEmptyCorpusFallsBackToNumerics(t *testing.T) {
	rows := []types.FeatureRow{
		featureRow("타겟", "", 500, 3000),
		featureRow("비슷", "", 490, 2950),
		featureRow("다름", "", 10, 100),
	}

	recs, err := SimilarityRank(rows, "타겟", 2)

	assert.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, "비슷", recs[0].Name)
}

func TestMinMaxScale(t *testing.T) {
	col := []float64{10, 20, 30}
	minMaxScale(col)
	assert.Equal(t, []float64{0, 0.5, 1}, col)

	constant := []float64{7, 7, 7}
	minMaxScale(constant)
	assert.Equal(t, []float64{0, 0, 0}, constant)
}

func TestOneHot(t *testing.T) {
	block := oneHot([]string{"3호선", "", "3호선", "9호선"})

	assert.Len(t, block, 4)
	assert.Len(t, block[0], 3)
	// Sorted categories: "", "3호선", "9호선"
	assert.Equal(t, []float64{0, 1, 0}, block[0])
	assert.Equal(t, []float64{1, 0, 0}, block[1])
	assert.Equal(t, block[0], block[2])
	assert.Equal(t, []float64{0, 0, 1}, block[3])
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosine([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, cosine(nil, nil))
}
