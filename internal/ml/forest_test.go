// internal/ml/forest_test.go
package ml

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ====== Test Helper Functions ======

// separableDataset builds a dataset where the label is fully determined by
// the first feature.
func separableDataset(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	features := make([][]float64, n)
	labels := make([]int, n)
	for i := range features {
		x := rng.Float64()
		features[i] = []float64{x, rng.Float64(), rng.Float64()}
		if x > 0.5 {
			labels[i] = 1
		}
	}
	return features, labels
}

// ====== Core Functionality Tests ======

func TestFitForest_LearnsSeparableData(t *testing.T) {
	features, labels := separableDataset(300, 7)

	forest, err := FitForest(features, labels, ForestParams{
		Estimators: 25, MaxDepth: 6, MinSamplesSplit: 2, MinSamplesLeaf: 1, Seed: 42,
	})
	require.NoError(t, err)
	require.Len(t, forest.Trees, 25)

	predicted := forest.PredictBatch(features)
	m := EvaluateBinary(predicted, labels)
	assert.GreaterOrEqual(t, m.Accuracy, 0.95)
}

func TestFitForest_Deterministic(t *testing.T) {
	features, labels := separableDataset(120, 3)
	params := ForestParams{Estimators: 10, MaxDepth: 5, MinSamplesSplit: 2, MinSamplesLeaf: 1, Seed: 42}

	a, err := FitForest(features, labels, params)
	require.NoError(t, err)
	b, err := FitForest(features, labels, params)
	require.NoError(t, err)

	probe, _ := separableDataset(50, 99)
	assert.Equal(t, a.PredictBatch(probe), b.PredictBatch(probe))
}

func TestFitForest_InvalidInput(t *testing.T) {
	_, err := FitForest(nil, nil, ForestParams{Estimators: 10})
	assert.Error(t, err)

	_, err = FitForest([][]float64{{1}}, []int{0, 1}, ForestParams{Estimators: 10})
	assert.Error(t, err)

	_, err = FitForest([][]float64{{1}}, []int{0}, ForestParams{Estimators: 0})
	assert.Error(t, err)
}

func TestEvaluateBinary(t *testing.T) {
	predicted := []int{1, 1, 0, 0, 1}
	actual := []int{1, 0, 0, 1, 1}

	m := EvaluateBinary(predicted, actual)
	assert.InDelta(t, 0.6, m.Accuracy, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.F1, 1e-9)
}

func TestEvaluateBinary_NoPositives(t *testing.T) {
	m := EvaluateBinary([]int{0, 0}, []int{0, 0})
	assert.Equal(t, 1.0, m.Accuracy)
	assert.Equal(t, 0.0, m.Precision)
	assert.Equal(t, 0.0, m.Recall)
	assert.Equal(t, 0.0, m.F1)
}
