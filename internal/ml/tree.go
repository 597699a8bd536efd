// internal/ml/tree.go
package ml

import (
	"math"
	"math/rand"
	"sort"
)

// TreeNode is one node of a fitted CART tree. Leaves carry the majority
// class; internal nodes route on Feature <= Threshold.
type TreeNode struct {
	Leaf      bool      `json:"leaf"`
	Class     int       `json:"class,omitempty"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
}

// TreeParams are the CART stopping and splitting controls.
type TreeParams struct {
	MaxDepth        int `json:"max_depth"`
	MinSamplesSplit int `json:"min_samples_split"`
	MinSamplesLeaf  int `json:"min_samples_leaf"`
	// MaxFeatures is the per-split feature subsample size; 0 means sqrt.
	MaxFeatures int `json:"max_features"`
}

// DecisionTree is a binary CART classifier split on Gini impurity.
type DecisionTree struct {
	Root   *TreeNode  `json:"root"`
	Params TreeParams `json:"params"`
}

// FitTree grows a tree on the given sample indices. The rng drives the
// per-split feature subsampling.
func FitTree(features [][]float64, labels []int, indices []int, params TreeParams, rng *rand.Rand) *DecisionTree {
	t := &DecisionTree{Params: params}
	t.Root = t.grow(features, labels, indices, 0, rng)
	return t
}

// Predict routes a row down the tree to a leaf class.
func (t *DecisionTree) Predict(row []float64) int {
	node := t.Root
	for !node.Leaf {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Class
}

func (t *DecisionTree) grow(features [][]float64, labels []int, indices []int, depth int, rng *rand.Rand) *TreeNode {
	majority, pure := majorityClass(labels, indices)

	if pure || len(indices) < t.Params.MinSamplesSplit || (t.Params.MaxDepth > 0 && depth >= t.Params.MaxDepth) {
		return &TreeNode{Leaf: true, Class: majority}
	}

	feature, threshold, ok := t.bestSplit(features, labels, indices, rng)
	if !ok {
		return &TreeNode{Leaf: true, Class: majority}
	}

	var left, right []int
	for _, i := range indices {
		if features[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < t.Params.MinSamplesLeaf || len(right) < t.Params.MinSamplesLeaf {
		return &TreeNode{Leaf: true, Class: majority}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      t.grow(features, labels, left, depth+1, rng),
		Right:     t.grow(features, labels, right, depth+1, rng),
	}
}

// bestSplit scans a random feature subset for the threshold minimizing the
// weighted Gini impurity of the two children.
func (t *DecisionTree) bestSplit(features [][]float64, labels []int, indices []int, rng *rand.Rand) (int, float64, bool) {
	numFeatures := len(features[indices[0]])

	mtry := t.Params.MaxFeatures
	if mtry <= 0 || mtry > numFeatures {
		mtry = int(math.Sqrt(float64(numFeatures)))
		if mtry < 1 {
			mtry = 1
		}
	}

	candidates := rng.Perm(numFeatures)[:mtry]

	bestGini := math.Inf(1)
	bestFeature := -1
	bestThreshold := 0.0

	sorted := make([]int, len(indices))
	for _, feature := range candidates {
		copy(sorted, indices)
		f := feature
		sort.Slice(sorted, func(a, b int) bool {
			return features[sorted[a]][f] < features[sorted[b]][f]
		})

		// Running class counts on each side of the candidate split.
		var leftPos, leftTotal int
		rightPos := 0
		for _, i := range sorted {
			rightPos += labels[i]
		}
		rightTotal := len(sorted)

		for k := 0; k < len(sorted)-1; k++ {
			i := sorted[k]
			leftPos += labels[i]
			leftTotal++
			rightPos -= labels[i]
			rightTotal--

			cur := features[i][f]
			next := features[sorted[k+1]][f]
			if cur == next {
				continue
			}
			if leftTotal < t.Params.MinSamplesLeaf || rightTotal < t.Params.MinSamplesLeaf {
				continue
			}

			g := weightedGini(leftPos, leftTotal, rightPos, rightTotal)
			if g < bestGini {
				bestGini = g
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func weightedGini(leftPos, leftTotal, rightPos, rightTotal int) float64 {
	total := float64(leftTotal + rightTotal)
	return float64(leftTotal)/total*gini(leftPos, leftTotal) +
		float64(rightTotal)/total*gini(rightPos, rightTotal)
}

func gini(pos, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(pos) / float64(total)
	return 2 * p * (1 - p)
}

func majorityClass(labels []int, indices []int) (class int, pure bool) {
	var pos int
	for _, i := range indices {
		pos += labels[i]
	}
	neg := len(indices) - pos

	if pos > neg {
		class = 1
	}
	pure = pos == 0 || neg == 0
	return class, pure
}
