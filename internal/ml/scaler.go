// Package ml implements the learning primitives used by the training
// pipeline: column scalers, class rebalancing, CART trees, and a bagged
// random-forest classifier. All fitted state is JSON-serializable so a
// trained model can travel through the registry.
package ml

import (
	"fmt"
	"math"
)

// StandardScaler centers a column to zero mean and unit variance.
type StandardScaler struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Fit computes mean and population standard deviation of the values.
func (s *StandardScaler) Fit(values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("cannot fit standard scaler on empty column")
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	s.Mean = sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - s.Mean
		sq += d * d
	}
	s.Std = math.Sqrt(sq / float64(len(values)))
	if s.Std == 0 {
		s.Std = 1
	}

	return nil
}

func (s *StandardScaler) Transform(v float64) float64 {
	return (v - s.Mean) / s.Std
}

// MinMaxScaler rescales a column into [0, 1].
type MinMaxScaler struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (s *MinMaxScaler) Fit(values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("cannot fit min-max scaler on empty column")
	}

	s.Min = values[0]
	s.Max = values[0]
	for _, v := range values[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}

	return nil
}

func (s *MinMaxScaler) Transform(v float64) float64 {
	if s.Max == s.Min {
		return 0
	}
	return (v - s.Min) / (s.Max - s.Min)
}
