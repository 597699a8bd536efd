// internal/ml/scaler_test.go
package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardScaler_FitTransform(t *testing.T) {
	s := &StandardScaler{}
	require.NoError(t, s.Fit([]float64{2, 4, 6, 8}))

	assert.InDelta(t, 5.0, s.Mean, 1e-9)
	assert.InDelta(t, 2.2360679, s.Std, 1e-6)

	assert.InDelta(t, 0, s.Transform(5), 1e-9)
	assert.InDelta(t, 1.3416407, s.Transform(8), 1e-6)
}

func TestStandardScaler_ConstantColumn(t *testing.T) {
	s := &StandardScaler{}
	require.NoError(t, s.Fit([]float64{3, 3, 3}))

	assert.Equal(t, 1.0, s.Std)
	assert.Equal(t, 0.0, s.Transform(3))
}

func TestStandardScaler_EmptyColumn(t *testing.T) {
	s := &StandardScaler{}
	assert.Error(t, s.Fit(nil))
}

func TestMinMaxScaler_FitTransform(t *testing.T) {
	s := &MinMaxScaler{}
	require.NoError(t, s.Fit([]float64{10, 30, 20}))

	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 30.0, s.Max)

	assert.InDelta(t, 0, s.Transform(10), 1e-9)
	assert.InDelta(t, 0.5, s.Transform(20), 1e-9)
	assert.InDelta(t, 1, s.Transform(30), 1e-9)
}

func TestMinMaxScaler_ConstantColumn(t *testing.T) {
	s := &MinMaxScaler{}
	require.NoError(t, s.Fit([]float64{7, 7}))

	assert.Equal(t, 0.0, s.Transform(7))
}
