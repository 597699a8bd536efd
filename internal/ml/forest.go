// internal/ml/forest.go
package ml

import (
	"fmt"
	"math/rand"
)

// ForestParams are the random-forest hyperparameters.
type ForestParams struct {
	Estimators      int   `json:"estimators"`
	MaxDepth        int   `json:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split"`
	MinSamplesLeaf  int   `json:"min_samples_leaf"`
	Seed            int64 `json:"seed"`
}

// RandomForest is a bagged ensemble of CART trees with majority voting.
type RandomForest struct {
	Params ForestParams    `json:"params"`
	Trees  []*DecisionTree `json:"trees"`
}

// FitForest trains the ensemble. Each tree sees a bootstrap sample of the
// training rows; splits subsample features. A fixed seed gives a fixed model.
func FitForest(features [][]float64, labels []int, params ForestParams) (*RandomForest, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("cannot train forest on empty dataset")
	}
	if len(features) != len(labels) {
		return nil, fmt.Errorf("feature/label length mismatch: %d vs %d", len(features), len(labels))
	}
	if params.Estimators <= 0 {
		return nil, fmt.Errorf("estimators must be positive, got %d", params.Estimators)
	}

	rng := rand.New(rand.NewSource(params.Seed))
	treeParams := TreeParams{
		MaxDepth:        params.MaxDepth,
		MinSamplesSplit: params.MinSamplesSplit,
		MinSamplesLeaf:  params.MinSamplesLeaf,
	}

	n := len(features)
	forest := &RandomForest{
		Params: params,
		Trees:  make([]*DecisionTree, 0, params.Estimators),
	}

	for t := 0; t < params.Estimators; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		treeRNG := rand.New(rand.NewSource(rng.Int63()))
		forest.Trees = append(forest.Trees, FitTree(features, labels, sample, treeParams, treeRNG))
	}

	return forest, nil
}

// Predict returns the majority vote over all trees.
func (f *RandomForest) Predict(row []float64) int {
	var votes int
	for _, t := range f.Trees {
		votes += t.Predict(row)
	}
	if votes*2 > len(f.Trees) {
		return 1
	}
	return 0
}

// PredictBatch classifies every row.
func (f *RandomForest) PredictBatch(rows [][]float64) []int {
	out := make([]int, len(rows))
	for i, row := range rows {
		out[i] = f.Predict(row)
	}
	return out
}
