// Package metrics computes the evaluation measures reported per fold:
// confusion matrix, balanced accuracy and the ROC curve with its AUC.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Confusion is a 2x2 confusion matrix for boolean labels, churn = positive.
type Confusion struct {
	TN, FP, FN, TP int
}

// NewConfusion tallies predictions against the truth. Slices must be the
// same length.
func NewConfusion(truth, pred []bool) Confusion {
	var c Confusion
	for i := range truth {
		switch {
		case truth[i] && pred[i]:
			c.TP++
		case truth[i] && !pred[i]:
			c.FN++
		case !truth[i] && pred[i]:
			c.FP++
		default:
			c.TN++
		}
	}
	return c
}

// BalancedAccuracy is the mean of the per-class recalls. A class absent
// from the truth contributes nothing to the mean.
func (c Confusion) BalancedAccuracy() float64 {
	var recalls []float64
	if c.TP+c.FN > 0 {
		recalls = append(recalls, float64(c.TP)/float64(c.TP+c.FN))
	}
	if c.TN+c.FP > 0 {
		recalls = append(recalls, float64(c.TN)/float64(c.TN+c.FP))
	}
	if len(recalls) == 0 {
		return 0
	}
	return stat.Mean(recalls, nil)
}

// BalancedAccuracy scores boolean predictions against the truth.
func BalancedAccuracy(truth, pred []bool) float64 {
	return NewConfusion(truth, pred).BalancedAccuracy()
}

// ROC returns the ROC curve of the scores against the truth, as paired
// false/true positive rates sorted by ascending false positive rate.
func ROC(truth []bool, scores []float64) (fpr, tpr []float64) {
	if len(scores) == 0 {
		return nil, nil
	}
	y := make([]float64, len(scores))
	copy(y, scores)
	classes := make([]bool, len(truth))
	copy(classes, truth)

	// stat.ROC wants the scores ascending with classes aligned.
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return y[idx[a]] < y[idx[b]] })
	ys := make([]float64, len(y))
	cs := make([]bool, len(classes))
	for i, j := range idx {
		ys[i] = y[j]
		cs[i] = classes[j]
	}

	tpr, fpr, _ = stat.ROC(nil, ys, cs, nil)
	// stat.ROC emits the curve from the lowest cutoff (everything positive)
	// down to zero rates; reverse so the rates ascend for integration.
	floats.Reverse(tpr)
	floats.Reverse(fpr)
	return fpr, tpr
}

// AUC integrates the ROC curve with the trapezoidal rule.
func AUC(fpr, tpr []float64) float64 {
	if len(fpr) < 2 {
		return 0
	}
	return integrate.Trapezoidal(fpr, tpr)
}
