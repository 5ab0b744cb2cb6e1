package scoring

import (
	"sort"

	"github.com/zipte-app/zipte-server/internal/api/recommend"
	"github.com/zipte-app/zipte-server/internal/types"
)

// Rank orders candidates by descending adjusted score and returns the top N.
// The sort is stable, so ties keep original row order.
func Rank(rows []types.ScoringRow, base, adjusted []float64, topN int) []types.ScoredRow {
	scored := make([]types.ScoredRow, len(rows))
	for i, row := range rows {
		scored[i] = types.ScoredRow{
			ComplexCode:   row.ComplexCode,
			Name:          row.Name,
			Address:       row.Address,
			District:      row.District,
			DealAmount:    row.DealAmount,
			Area:          row.Area,
			BaseScore:     base[i],
			AdjustedScore: adjusted[i],
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].AdjustedScore > scored[b].AdjustedScore
	})

	topN = recommend.ClampTopN(topN)
	if topN > len(scored) {
		topN = len(scored)
	}
	return scored[:topN]
}
