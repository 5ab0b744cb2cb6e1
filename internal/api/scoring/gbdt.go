package scoring

import "sort"

// Params are the boosting hyperparameters. Defaults match the base model
// the service has always shipped with.
type Params struct {
	Rounds       int
	MaxDepth     int
	MinLeaf      int
	LearningRate float64
}

var DefaultParams = Params{
	Rounds:       100,
	MaxDepth:     7,
	MinLeaf:      1,
	LearningRate: 0.05,
}

// TreeNode is one node of a regression tree. Leaves have nil children and
// carry the predicted residual in Value. Fields are exported for gob.
type TreeNode struct {
	Feature   int
	Threshold float64
	Value     float64
	Left      *TreeNode
	Right     *TreeNode
}

func (n *TreeNode) predict(x []float64) float64 {
	for n.Left != nil {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// Model is a gradient-boosted ensemble of squared-error regression trees
// over a fixed column schema. Districts records the one-hot category order
// so inference rebuilds the exact training matrix.
type Model struct {
	Base         float64
	LearningRate float64
	Trees        []*TreeNode
	Columns      []string
	Districts    []string
}

func (m *Model) predictVector(x []float64) float64 {
	score := m.Base
	for _, tree := range m.Trees {
		score += m.LearningRate * tree.predict(x)
	}
	return score
}

// fitGBDT fits boosted trees to the residuals of a running prediction,
// starting from the target mean.
func fitGBDT(x [][]float64, y []float64, p Params) (float64, []*TreeNode) {
	base := mean(y)

	prediction := make([]float64, len(y))
	for i := range prediction {
		prediction[i] = base
	}

	indices := make([]int, len(y))
	for i := range indices {
		indices[i] = i
	}

	residual := make([]float64, len(y))
	trees := make([]*TreeNode, 0, p.Rounds)
	for round := 0; round < p.Rounds; round++ {
		for i := range residual {
			residual[i] = y[i] - prediction[i]
		}
		tree := buildTree(x, residual, indices, 0, p)
		trees = append(trees, tree)
		for i := range prediction {
			prediction[i] += p.LearningRate * tree.predict(x[i])
		}
	}
	return base, trees
}

func buildTree(x [][]float64, residual []float64, indices []int, depth int, p Params) *TreeNode {
	if depth >= p.MaxDepth || len(indices) <= p.MinLeaf {
		return leaf(residual, indices)
	}

	feature, threshold, ok := bestSplit(x, residual, indices, p.MinLeaf)
	if !ok {
		return leaf(residual, indices)
	}

	var left, right []int
	for _, idx := range indices {
		if x[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(x, residual, left, depth+1, p),
		Right:     buildTree(x, residual, right, depth+1, p),
	}
}

func leaf(residual []float64, indices []int) *TreeNode {
	sum := 0.0
	for _, idx := range indices {
		sum += residual[idx]
	}
	return &TreeNode{Value: sum / float64(len(indices))}
}

// bestSplit scans every feature for the threshold maximizing the squared-sum
// gain over keeping the node whole. Thresholds sit between adjacent distinct
// values so equal values always land on the same side.
func bestSplit(x [][]float64, residual []float64, indices []int, minLeaf int) (int, float64, bool) {
	n := len(indices)
	if n < 2*minLeaf {
		return 0, 0, false
	}

	total := 0.0
	for _, idx := range indices {
		total += residual[idx]
	}
	parentScore := total * total / float64(n)

	type pair struct {
		value  float64
		target float64
	}
	pairs := make([]pair, n)

	bestGain := 0.0
	bestFeature, bestThreshold := -1, 0.0
	features := len(x[indices[0]])

	for f := 0; f < features; f++ {
		for i, idx := range indices {
			pairs[i] = pair{value: x[idx][f], target: residual[idx]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].value < pairs[b].value })

		leftSum := 0.0
		for i := 0; i < n-1; i++ {
			leftSum += pairs[i].target
			if pairs[i].value == pairs[i+1].value {
				continue
			}
			nl := i + 1
			nr := n - nl
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			rightSum := total - leftSum
			gain := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(nr) - parentScore
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (pairs[i].value + pairs[i+1].value) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
