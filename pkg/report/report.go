// Package report writes the run artifacts consumed by an external
// renderer: the last-trained fold's confusion matrix and ROC curve, as CSV
// tables in the results directory.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"churn-backtest/pkg/metrics"
)

// WriteConfusionMatrix writes confusion_matrix.csv into dir, creating dir
// on demand. Rows are the truth, columns the prediction.
func WriteConfusionMatrix(dir string, cm metrics.Confusion) error {
	records := [][]string{
		{"", "pred_retained", "pred_churned"},
		{"true_retained", strconv.Itoa(cm.TN), strconv.Itoa(cm.FP)},
		{"true_churned", strconv.Itoa(cm.FN), strconv.Itoa(cm.TP)},
	}
	return writeCSV(dir, "confusion_matrix.csv", records)
}

// WriteROCCurve writes roc_curve.csv into dir, one (fpr, tpr) pair per row.
func WriteROCCurve(dir string, fpr, tpr []float64) error {
	if len(fpr) != len(tpr) {
		return fmt.Errorf("report: %d fpr values vs %d tpr values", len(fpr), len(tpr))
	}
	records := [][]string{{"fpr", "tpr"}}
	for i := range fpr {
		records = append(records, []string{
			strconv.FormatFloat(fpr[i], 'f', -1, 64),
			strconv.FormatFloat(tpr[i], 'f', -1, 64),
		})
	}
	return writeCSV(dir, "roc_curve.csv", records)
}

func writeCSV(dir, name string, records [][]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	err = csv.NewWriter(f).WriteAll(records)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
