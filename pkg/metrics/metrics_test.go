package metrics

import (
	"math"
	"testing"
)

func TestNewConfusion(t *testing.T) {
	truth := []bool{true, true, false, false, false}
	pred := []bool{true, false, false, false, true}
	cm := NewConfusion(truth, pred)
	if cm.TP != 1 || cm.FN != 1 || cm.TN != 2 || cm.FP != 1 {
		t.Fatalf("unexpected confusion matrix: %+v", cm)
	}
}

func TestBalancedAccuracy(t *testing.T) {
	truth := []bool{true, true, false, false}
	pred := []bool{true, false, false, false}
	// recalls: churn 1/2, retained 2/2
	if got, want := BalancedAccuracy(truth, pred), 0.75; got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBalancedAccuracy_SingleClass(t *testing.T) {
	truth := []bool{true, true}
	pred := []bool{true, false}
	if got := BalancedAccuracy(truth, pred); got != 0.5 {
		t.Fatalf("single-class bacc: got %v, want 0.5", got)
	}
}

func TestROC_PerfectClassifier(t *testing.T) {
	truth := []bool{true, true, false, false}
	scores := []float64{0.9, 0.8, 0.2, 0.1}
	fpr, tpr := ROC(truth, scores)
	if len(fpr) == 0 || len(fpr) != len(tpr) {
		t.Fatalf("malformed curve: %d fpr, %d tpr", len(fpr), len(tpr))
	}
	for i := 1; i < len(fpr); i++ {
		if fpr[i] < fpr[i-1] {
			t.Fatalf("fpr not ascending: %v", fpr)
		}
	}
	if got := AUC(fpr, tpr); math.Abs(got-1.0) > 1e-12 {
		t.Fatalf("perfect classifier AUC: got %v, want 1", got)
	}
}

func TestROC_WorstClassifier(t *testing.T) {
	truth := []bool{true, true, false, false}
	scores := []float64{0.1, 0.2, 0.8, 0.9}
	fpr, tpr := ROC(truth, scores)
	if got := AUC(fpr, tpr); math.Abs(got) > 1e-12 {
		t.Fatalf("inverted classifier AUC: got %v, want 0", got)
	}
}

func TestROC_Empty(t *testing.T) {
	fpr, tpr := ROC(nil, nil)
	if fpr != nil || tpr != nil {
		t.Fatalf("expected nil curve for no scores")
	}
	if got := AUC(fpr, tpr); got != 0 {
		t.Fatalf("AUC of empty curve: got %v, want 0", got)
	}
}
