// internal/ml/estimator.go
package ml

import (
	"encoding/json"
	"fmt"
	"time"
)

// Preprocessor applies per-column scaling to engineered feature rows. Columns
// not listed in Standard or MinMax pass through unchanged.
type Preprocessor struct {
	Columns  []string                   `json:"columns"`
	Standard map[string]*StandardScaler `json:"standard"`
	MinMax   map[string]*MinMaxScaler   `json:"min_max"`
}

// NewPreprocessor declares which columns get which scaler. Fitting happens
// later against the training matrix.
func NewPreprocessor(columns, standardCols, minMaxCols []string) *Preprocessor {
	p := &Preprocessor{
		Columns:  columns,
		Standard: make(map[string]*StandardScaler, len(standardCols)),
		MinMax:   make(map[string]*MinMaxScaler, len(minMaxCols)),
	}
	for _, c := range standardCols {
		p.Standard[c] = &StandardScaler{}
	}
	for _, c := range minMaxCols {
		p.MinMax[c] = &MinMaxScaler{}
	}
	return p
}

func (p *Preprocessor) columnIndex(name string) (int, error) {
	for i, c := range p.Columns {
		if c == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown column %q", name)
}

// Fit learns scaler parameters from the training matrix. Rows must align
// with p.Columns.
func (p *Preprocessor) Fit(matrix [][]float64) error {
	if len(matrix) == 0 {
		return fmt.Errorf("cannot fit preprocessor on empty matrix")
	}

	column := func(idx int) []float64 {
		col := make([]float64, len(matrix))
		for i, row := range matrix {
			col[i] = row[idx]
		}
		return col
	}

	for name, scaler := range p.Standard {
		idx, err := p.columnIndex(name)
		if err != nil {
			return err
		}
		if err := scaler.Fit(column(idx)); err != nil {
			return fmt.Errorf("column %s: %w", name, err)
		}
	}
	for name, scaler := range p.MinMax {
		idx, err := p.columnIndex(name)
		if err != nil {
			return err
		}
		if err := scaler.Fit(column(idx)); err != nil {
			return fmt.Errorf("column %s: %w", name, err)
		}
	}

	return nil
}

// Transform scales one row in place-order, returning a new slice.
func (p *Preprocessor) Transform(row []float64) ([]float64, error) {
	if len(row) != len(p.Columns) {
		return nil, fmt.Errorf("row width %d does not match %d columns", len(row), len(p.Columns))
	}

	out := make([]float64, len(row))
	copy(out, row)

	for name, scaler := range p.Standard {
		idx, err := p.columnIndex(name)
		if err != nil {
			return nil, err
		}
		out[idx] = scaler.Transform(out[idx])
	}
	for name, scaler := range p.MinMax {
		idx, err := p.columnIndex(name)
		if err != nil {
			return nil, err
		}
		out[idx] = scaler.Transform(out[idx])
	}

	return out, nil
}

// TransformMatrix scales every row.
func (p *Preprocessor) TransformMatrix(matrix [][]float64) ([][]float64, error) {
	out := make([][]float64, len(matrix))
	for i, row := range matrix {
		t, err := p.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}

// ModelEnvelopeVersion identifies the serialized model format.
const ModelEnvelopeVersion = 1

// Model bundles the fitted preprocessor with the trained forest so that
// inference takes a raw engineered feature row.
type Model struct {
	Version      int           `json:"version"`
	CreatedAt    time.Time     `json:"created_at"`
	Preprocessor *Preprocessor `json:"preprocessor"`
	Forest       *RandomForest `json:"forest"`
}

// NewModel wraps a fitted preprocessor and a trained forest.
func NewModel(p *Preprocessor, f *RandomForest) *Model {
	return &Model{
		Version:      ModelEnvelopeVersion,
		CreatedAt:    time.Now().UTC(),
		Preprocessor: p,
		Forest:       f,
	}
}

// Predict scales a raw engineered feature row and classifies it.
func (m *Model) Predict(row []float64) (int, error) {
	scaled, err := m.Preprocessor.Transform(row)
	if err != nil {
		return 0, err
	}
	return m.Forest.Predict(scaled), nil
}

// PredictScaled classifies an already-scaled row, as produced by the
// transformation stage.
func (m *Model) PredictScaled(row []float64) int {
	return m.Forest.Predict(row)
}

// Marshal serializes the model envelope.
func (m *Model) Marshal() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal model: %w", err)
	}
	return data, nil
}

// UnmarshalModel deserializes a model envelope and checks the version.
func UnmarshalModel(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model: %w", err)
	}
	if m.Version != ModelEnvelopeVersion {
		return nil, fmt.Errorf("unsupported model version %d", m.Version)
	}
	if m.Preprocessor == nil || m.Forest == nil {
		return nil, fmt.Errorf("model envelope is incomplete")
	}
	return &m, nil
}
