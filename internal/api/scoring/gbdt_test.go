package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitGBDTLearnsStepFunction(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}, {10}, {11}, {12}, {13}}
	y := []float64{5, 5, 5, 5, 50, 50, 50, 50}

	base, trees := fitGBDT(x, y, DefaultParams)
	model := &Model{Base: base, LearningRate: DefaultParams.LearningRate, Trees: trees}

	assert.Len(t, trees, DefaultParams.Rounds)
	for i, row := range x {
		assert.InDelta(t, y[i], model.predictVector(row), 0.5)
	}
}

func TestFitGBDTConstantTarget(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []float64{7, 7, 7}

	base, trees := fitGBDT(x, y, DefaultParams)
	model := &Model{Base: base, LearningRate: DefaultParams.LearningRate, Trees: trees}

	assert.Equal(t, 7.0, base)
	assert.InDelta(t, 7.0, model.predictVector([]float64{2}), 1e-9)
}

func TestBestSplitSeparatesGroups(t *testing.T) {
	x := [][]float64{{1}, {2}, {10}, {11}}
	residual := []float64{-5, -5, 5, 5}

	feature, threshold, ok := bestSplit(x, residual, []int{0, 1, 2, 3}, 1)

	assert.True(t, ok)
	assert.Equal(t, 0, feature)
	assert.Equal(t, 6.0, threshold)
}

func TestBestSplitNoGain(t *testing.T) {
	x := [][]float64{{1}, {1}, {1}}
	residual := []float64{0, 0, 0}

	_, _, ok := bestSplit(x, residual, []int{0, 1, 2}, 1)

	assert.False(t, ok)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.Equal(t, 2.0, mean([]float64{1, 2, 3}))
}
