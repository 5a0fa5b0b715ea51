package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"churn-backtest/pkg/metrics"
)

func TestWriteConfusionMatrix(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results") // created on demand
	cm := metrics.Confusion{TN: 10, FP: 2, FN: 3, TP: 5}
	if err := WriteConfusionMatrix(dir, cm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "confusion_matrix.csv"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, "true_churned,3,5") {
		t.Fatalf("unexpected content:\n%s", content)
	}
}

func TestWriteROCCurve(t *testing.T) {
	dir := t.TempDir()
	if err := WriteROCCurve(dir, []float64{0, 0.5, 1}, []float64{0, 0.9, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "roc_curve.csv"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 4 || lines[0] != "fpr,tpr" {
		t.Fatalf("unexpected content:\n%s", raw)
	}
}

func TestWriteROCCurve_MismatchedLengths(t *testing.T) {
	if err := WriteROCCurve(t.TempDir(), []float64{0}, nil); err == nil {
		t.Fatal("expected error for mismatched curve slices")
	}
}
