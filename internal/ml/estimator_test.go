// internal/ml/estimator_test.go
package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fittedPreprocessor(t *testing.T) (*Preprocessor, [][]float64) {
	matrix := [][]float64{
		{20, 1000, 0},
		{40, 2000, 1},
		{60, 3000, 0},
	}
	p := NewPreprocessor([]string{"age", "premium", "flag"}, []string{"age"}, []string{"premium"})
	require.NoError(t, p.Fit(matrix))
	return p, matrix
}

func TestPreprocessor_Transform(t *testing.T) {
	p, matrix := fittedPreprocessor(t)

	out, err := p.Transform(matrix[1])
	require.NoError(t, err)

	assert.InDelta(t, 0, out[0], 1e-9)   // mean row, standard scaled
	assert.InDelta(t, 0.5, out[1], 1e-9) // midpoint, min-max scaled
	assert.Equal(t, 1.0, out[2])         // untouched passthrough
}

func TestPreprocessor_WidthMismatch(t *testing.T) {
	p, _ := fittedPreprocessor(t)

	_, err := p.Transform([]float64{1, 2})
	assert.Error(t, err)
}

func TestPreprocessor_UnknownColumn(t *testing.T) {
	p := NewPreprocessor([]string{"a"}, []string{"missing"}, nil)
	err := p.Fit([][]float64{{1}})
	assert.Error(t, err)
}

func TestModel_MarshalRoundTrip(t *testing.T) {
	p, matrix := fittedPreprocessor(t)
	labels := []int{0, 1, 0}

	scaled, err := p.TransformMatrix(matrix)
	require.NoError(t, err)
	forest, err := FitForest(scaled, labels, ForestParams{
		Estimators: 5, MaxDepth: 3, MinSamplesSplit: 2, MinSamplesLeaf: 1, Seed: 42,
	})
	require.NoError(t, err)

	model := NewModel(p, forest)
	data, err := model.Marshal()
	require.NoError(t, err)

	loaded, err := UnmarshalModel(data)
	require.NoError(t, err)
	assert.Equal(t, ModelEnvelopeVersion, loaded.Version)

	for _, row := range matrix {
		want, err := model.Predict(row)
		require.NoError(t, err)
		got, err := loaded.Predict(row)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestUnmarshalModel_RejectsBadEnvelopes(t *testing.T) {
	_, err := UnmarshalModel([]byte("{not json"))
	assert.Error(t, err)

	_, err = UnmarshalModel([]byte(`{"version": 99}`))
	assert.Error(t, err)

	_, err = UnmarshalModel([]byte(`{"version": 1}`))
	assert.Error(t, err)
}
