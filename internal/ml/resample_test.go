// internal/ml/resample_test.go
package ml

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// imbalancedDataset puts the minority class in a tight cluster away from the
// majority so resampling does not erase it.
func imbalancedDataset(majority, minority int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	features := make([][]float64, 0, majority+minority)
	labels := make([]int, 0, majority+minority)

	for i := 0; i < majority; i++ {
		features = append(features, []float64{rng.Float64(), rng.Float64()})
		labels = append(labels, 0)
	}
	for i := 0; i < minority; i++ {
		features = append(features, []float64{5 + rng.Float64(), 5 + rng.Float64()})
		labels = append(labels, 1)
	}
	return features, labels
}

func countClass(labels []int, class int) int {
	var n int
	for _, y := range labels {
		if y == class {
			n++
		}
	}
	return n
}

func TestResampleSMOTEENN_RebalancesClasses(t *testing.T) {
	features, labels := imbalancedDataset(80, 10, 1)

	outF, outL := ResampleSMOTEENN(features, labels, 42)
	require.Equal(t, len(outF), len(outL))

	minorityBefore := float64(countClass(labels, 1)) / float64(len(labels))
	minorityAfter := float64(countClass(outL, 1)) / float64(len(outL))
	assert.Greater(t, minorityAfter, minorityBefore)
	assert.Greater(t, countClass(outL, 0), 0)
	assert.Greater(t, countClass(outL, 1), 0)
}

func TestResampleSMOTEENN_SyntheticSamplesStayInRange(t *testing.T) {
	features, labels := imbalancedDataset(40, 6, 2)

	outF, outL := ResampleSMOTEENN(features, labels, 42)
	for i, row := range outF {
		if outL[i] != 1 {
			continue
		}
		// Interpolation cannot leave the minority cluster bounding box.
		assert.GreaterOrEqual(t, row[0], 5.0)
		assert.LessOrEqual(t, row[0], 6.0)
		assert.GreaterOrEqual(t, row[1], 5.0)
		assert.LessOrEqual(t, row[1], 6.0)
	}
}

func TestResampleSMOTEENN_BalancedInputUnchangedBySMOTE(t *testing.T) {
	features, labels := imbalancedDataset(20, 20, 3)

	outF, outL := ResampleSMOTEENN(features, labels, 42)
	// No synthesis needed; ENN may still drop noisy points.
	assert.LessOrEqual(t, len(outF), len(features))
	assert.Equal(t, len(outF), len(outL))
}

func TestResampleSMOTEENN_Deterministic(t *testing.T) {
	features, labels := imbalancedDataset(50, 8, 4)

	aF, aL := ResampleSMOTEENN(features, labels, 42)
	bF, bL := ResampleSMOTEENN(features, labels, 42)

	assert.Equal(t, aF, bF)
	assert.Equal(t, aL, bL)
}
