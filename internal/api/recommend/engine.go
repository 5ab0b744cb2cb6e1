package recommend

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/zipte-app/zipte-server/internal/types"
)

const (
	minTopN     = 1
	maxTopN     = 10
	defaultTopN = 5
)

// ClampTopN bounds a caller-supplied result size to [1, 10]. Zero means the
// caller did not ask for a size and falls back to the default; anything else
// is clamped into the range.
func ClampTopN(n int) int {
	if n == 0 {
		return defaultTopN
	}
	if n < minTopN {
		return minTopN
	}
	if n > maxTopN {
		return maxTopN
	}
	return n
}

// SimilarityRank orders every other property by cosine similarity to the
// named target and returns the top N, target excluded. Ties keep original
// row order so rankings are deterministic.
func SimilarityRank(rows []types.FeatureRow, targetName string, topN int) ([]types.Recommendation, error) {
	targetIdx := -1
	for i, row := range rows {
		if row.Name == targetName {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return nil, fmt.Errorf("%w: %q", types.ErrPropertyNotFound, targetName)
	}

	matrix := buildMatrix(rows)

	type candidate struct {
		idx   int
		score float64
	}
	candidates := make([]candidate, 0, len(rows)-1)
	for i := range rows {
		if i == targetIdx {
			continue
		}
		candidates = append(candidates, candidate{idx: i, score: cosine(matrix[targetIdx], matrix[i])})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	topN = ClampTopN(topN)
	if topN > len(candidates) {
		topN = len(candidates)
	}

	recommendations := make([]types.Recommendation, 0, topN)
	for _, c := range candidates[:topN] {
		recommendations = append(recommendations, types.Recommendation{
			Name:    rows[c.idx].Name,
			Address: rows[c.idx].Address,
			Score:   c.score,
		})
	}
	return recommendations, nil
}

// buildMatrix concatenates text weights, min-max scaled numerics and one-hot
// subway categories into a single representation per row. One combined
// matrix, not additive blending: cosine distance reflects all signals
// jointly.
func buildMatrix(rows []types.FeatureRow) [][]float64 {
	docs := make([]string, len(rows))
	for i, row := range rows {
		docs[i] = row.FacilityText
	}
	text := fitTFIDF(docs)

	numeric := [][]float64{
		make([]float64, len(rows)), // total households
		make([]float64, len(rows)), // average price
		make([]float64, len(rows)), // total parking
		make([]float64, len(rows)), // subway minutes
		make([]float64, len(rows)), // bus minutes
	}
	lines := make([]string, len(rows))
	stations := make([]string, len(rows))
	for i, row := range rows {
		numeric[0][i] = float64(row.TotalHouseholds)
		numeric[1][i] = row.AvgPrice
		numeric[2][i] = float64(row.TotalParking)
		numeric[3][i] = fillTransit(row.SubwayMinutes)
		numeric[4][i] = fillTransit(row.BusMinutes)
		lines[i] = row.SubwayLine
		stations[i] = row.SubwayStation
	}
	for _, col := range numeric {
		minMaxScale(col)
	}

	lineBlock := oneHot(lines)
	stationBlock := oneHot(stations)

	matrix := make([][]float64, len(rows))
	for i := range rows {
		vector := make([]float64, 0, len(text[i])+len(numeric)+len(lineBlock[i])+len(stationBlock[i]))
		vector = append(vector, text[i]...)
		for _, col := range numeric {
			vector = append(vector, col[i])
		}
		vector = append(vector, lineBlock[i]...)
		vector = append(vector, stationBlock[i]...)
		matrix[i] = vector
	}
	return matrix
}

// minMaxScale rescales a column to [0, 1] in place over the current
// candidate set. A constant column becomes all zeros instead of dividing by
// zero.
func minMaxScale(col []float64) {
	if len(col) == 0 {
		return
	}
	lo, hi := floats.Min(col), floats.Max(col)
	span := hi - lo
	for i, v := range col {
		if span == 0 {
			col[i] = 0
			continue
		}
		col[i] = (v - lo) / span
	}
}

// oneHot expands a categorical column into indicator vectors, one column per
// observed value. The empty string is its own category, so "no subway line"
// still matches other lineless complexes.
func oneHot(values []string) [][]float64 {
	categories := make(map[string]int)
	for _, v := range values {
		if _, ok := categories[v]; !ok {
			categories[v] = 0
		}
	}
	ordered := make([]string, 0, len(categories))
	for v := range categories {
		ordered = append(ordered, v)
	}
	sort.Strings(ordered)
	for i, v := range ordered {
		categories[v] = i
	}

	block := make([][]float64, len(values))
	for i, v := range values {
		row := make([]float64, len(ordered))
		row[categories[v]] = 1
		block[i] = row
	}
	return block
}

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
