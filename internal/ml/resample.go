// internal/ml/resample.go
package ml

import (
	"math"
	"math/rand"
	"sort"
)

// ResampleSMOTEENN rebalances a binary dataset: SMOTE synthesizes minority
// samples up to parity, then edited nearest neighbours removes samples whose
// neighbourhood disagrees with their label. Returns new slices.
func ResampleSMOTEENN(features [][]float64, labels []int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	f, l := smote(features, labels, 5, rng)
	return editedNearestNeighbours(f, l, 3)
}

// smote oversamples the minority class by interpolating between each minority
// sample and one of its k nearest minority neighbours.
func smote(features [][]float64, labels []int, k int, rng *rand.Rand) ([][]float64, []int) {
	var minority, majority []int
	for i, y := range labels {
		if y == 1 {
			minority = append(minority, i)
		} else {
			majority = append(majority, i)
		}
	}
	if len(minority) > len(majority) {
		minority, majority = majority, minority
	}
	need := len(majority) - len(minority)
	if need == 0 || len(minority) < 2 {
		return features, labels
	}

	minorityClass := labels[minority[0]]

	outF := make([][]float64, len(features), len(features)+need)
	copy(outF, features)
	outL := make([]int, len(labels), len(labels)+need)
	copy(outL, labels)

	kk := k
	if kk > len(minority)-1 {
		kk = len(minority) - 1
	}

	for s := 0; s < need; s++ {
		i := minority[rng.Intn(len(minority))]
		neighbours := nearestWithin(features, minority, i, kk)
		j := neighbours[rng.Intn(len(neighbours))]

		gap := rng.Float64()
		synthetic := make([]float64, len(features[i]))
		for d := range synthetic {
			synthetic[d] = features[i][d] + gap*(features[j][d]-features[i][d])
		}

		outF = append(outF, synthetic)
		outL = append(outL, minorityClass)
	}

	return outF, outL
}

// editedNearestNeighbours drops every sample whose k nearest neighbours
// disagree with its label by majority.
func editedNearestNeighbours(features [][]float64, labels []int, k int) ([][]float64, []int) {
	if len(features) <= k+1 {
		return features, labels
	}

	all := make([]int, len(features))
	for i := range all {
		all[i] = i
	}

	var keepF [][]float64
	var keepL []int
	for i := range features {
		neighbours := nearestWithin(features, all, i, k)
		var agree int
		for _, j := range neighbours {
			if labels[j] == labels[i] {
				agree++
			}
		}
		if agree*2 >= len(neighbours) {
			keepF = append(keepF, features[i])
			keepL = append(keepL, labels[i])
		}
	}

	if len(keepF) == 0 {
		return features, labels
	}
	return keepF, keepL
}

// nearestWithin returns the k candidates (excluding self) closest to row i
// by Euclidean distance.
func nearestWithin(features [][]float64, candidates []int, i, k int) []int {
	type distIdx struct {
		d   float64
		idx int
	}

	ds := make([]distIdx, 0, len(candidates))
	for _, j := range candidates {
		if j == i {
			continue
		}
		ds = append(ds, distIdx{d: euclidean(features[i], features[j]), idx: j})
	}
	sort.Slice(ds, func(a, b int) bool { return ds[a].d < ds[b].d })

	if k > len(ds) {
		k = len(ds)
	}
	out := make([]int, k)
	for n := 0; n < k; n++ {
		out[n] = ds[n].idx
	}
	return out
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
