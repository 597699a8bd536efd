// internal/models/dataset.go
package models

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

// WriteRecordsCSV writes raw records using the RawColumns header.
func WriteRecordsCSV(path string, records []VehicleRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dir for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(RawColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Gender,
			strconv.Itoa(r.Age),
			strconv.Itoa(r.DrivingLicense),
			strconv.FormatFloat(r.RegionCode, 'g', -1, 64),
			strconv.Itoa(r.PreviouslyInsured),
			r.VehicleAge,
			r.VehicleDamage,
			strconv.FormatFloat(r.AnnualPremium, 'g', -1, 64),
			strconv.FormatFloat(r.PolicySalesChannel, 'g', -1, 64),
			strconv.Itoa(r.Vintage),
			strconv.Itoa(r.Response),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// ReadRecordsCSV reads a raw-record CSV written by WriteRecordsCSV. The
// header must match RawColumns.
func ReadRecordsCSV(path string) ([]VehicleRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty csv %s", path)
	}

	header := rows[0]
	if len(header) != len(RawColumns) {
		return nil, fmt.Errorf("unexpected column count in %s: got %d, want %d", path, len(header), len(RawColumns))
	}

	records := make([]VehicleRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		doc := make(map[string]interface{}, len(header))
		for j, col := range header {
			doc[col] = row[j]
		}
		rec, err := RecordFromMap(doc)
		if err != nil {
			return nil, fmt.Errorf("row %d in %s: %w", i+2, path, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// ReadCSVColumns returns just the header of a raw-record CSV.
func ReadCSVColumns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	return header, nil
}

// TrainTestSplit shuffles records with a seeded RNG and splits off the given
// test ratio. The same seed always produces the same membership.
func TrainTestSplit(records []VehicleRecord, testRatio float64, seed int64) (train, test []VehicleRecord) {
	shuffled := make([]VehicleRecord, len(records))
	copy(shuffled, records)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	testSize := int(float64(len(shuffled)) * testRatio)
	return shuffled[testSize:], shuffled[:testSize]
}

// WriteMatrixCSV writes a float matrix, no header. Used for the transformed
// train/test arrays where the label sits in the last column.
func WriteMatrixCSV(path string, matrix [][]float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dir for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range matrix {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(cells); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// ReadMatrixCSV reads a float matrix written by WriteMatrixCSV.
func ReadMatrixCSV(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	matrix := make([][]float64, 0, len(rows))
	for i, row := range rows {
		vals := make([]float64, len(row))
		for j, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d in %s: %w", i+1, j+1, path, err)
			}
			vals[j] = v
		}
		matrix = append(matrix, vals)
	}

	return matrix, nil
}

// SplitFeaturesLabels separates a matrix into feature rows and the label held
// in the last column.
func SplitFeaturesLabels(matrix [][]float64) (features [][]float64, labels []int) {
	features = make([][]float64, len(matrix))
	labels = make([]int, len(matrix))
	for i, row := range matrix {
		features[i] = row[:len(row)-1]
		labels[i] = int(row[len(row)-1])
	}
	return features, labels
}
