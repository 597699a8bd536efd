// internal/ml/metrics.go
package ml

import "vehicle-insurance-pipeline/internal/models"

// EvaluateBinary computes accuracy, precision, recall and F1 for a binary
// classifier, with class 1 as positive.
func EvaluateBinary(predicted, actual []int) models.ClassificationMetrics {
	var tp, fp, tn, fn int
	for i := range predicted {
		switch {
		case predicted[i] == 1 && actual[i] == 1:
			tp++
		case predicted[i] == 1 && actual[i] == 0:
			fp++
		case predicted[i] == 0 && actual[i] == 0:
			tn++
		default:
			fn++
		}
	}

	var m models.ClassificationMetrics
	total := tp + fp + tn + fn
	if total > 0 {
		m.Accuracy = float64(tp+tn) / float64(total)
	}
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}
