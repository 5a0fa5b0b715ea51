// Package model defines the classifier interface consumed by the
// evaluation loop and a deterministic logistic-regression baseline.
package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Classifier is a generic binary classifier: fit on a feature matrix and
// boolean labels, then score rows with a churn probability in [0, 1].
type Classifier interface {
	Fit(x [][]float64, y []bool) error
	PredictProbability(x [][]float64) []float64
}

// Logistic is a logistic-regression baseline trained with batch gradient
// descent. Training is deterministic: zero-initialized weights and a fixed
// iteration count. NaN feature values (ratio features without history) are
// imputed with the column mean observed during Fit, and every column is
// standardized before the descent.
type Logistic struct {
	LearningRate float64
	Iterations   int

	weights []float64
	bias    float64
	means   []float64 // per-column mean over non-NaN values
	stds    []float64
}

func NewLogistic() *Logistic {
	return &Logistic{LearningRate: 0.1, Iterations: 300}
}

func (l *Logistic) Fit(x [][]float64, y []bool) error {
	if len(x) == 0 {
		return errors.New("model: empty training set")
	}
	if len(x) != len(y) {
		return fmt.Errorf("model: %d feature rows vs %d labels", len(x), len(y))
	}
	cols := len(x[0])
	for i, row := range x {
		if len(row) != cols {
			return fmt.Errorf("model: ragged row %d: %d columns, want %d", i, len(row), cols)
		}
	}

	l.means, l.stds = columnStats(x)
	z := l.transform(x)

	l.weights = make([]float64, cols)
	l.bias = 0
	grad := make([]float64, cols)
	n := float64(len(z))

	for it := 0; it < l.Iterations; it++ {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0
		for i, row := range z {
			p := sigmoid(floats.Dot(row, l.weights) + l.bias)
			t := 0.0
			if y[i] {
				t = 1
			}
			d := p - t
			floats.AddScaled(grad, d, row)
			gradBias += d
		}
		floats.AddScaled(l.weights, -l.LearningRate/n, grad)
		l.bias -= l.LearningRate / n * gradBias
	}
	return nil
}

// PredictProbability scores each row; rows must have the column count seen
// during Fit. Calling before Fit yields 0.5 for every row.
func (l *Logistic) PredictProbability(x [][]float64) []float64 {
	probs := make([]float64, len(x))
	if l.weights == nil {
		for i := range probs {
			probs[i] = 0.5
		}
		return probs
	}
	for i, row := range l.transform(x) {
		probs[i] = sigmoid(floats.Dot(row, l.weights) + l.bias)
	}
	return probs
}

// columnStats computes per-column mean and standard deviation over the
// non-NaN values. Columns with no finite values or zero spread get std 1 so
// standardization is a no-op there.
func columnStats(x [][]float64) (means, stds []float64) {
	cols := len(x[0])
	means = make([]float64, cols)
	stds = make([]float64, cols)
	col := make([]float64, 0, len(x))
	for j := 0; j < cols; j++ {
		col = col[:0]
		for _, row := range x {
			if v := row[j]; !math.IsNaN(v) && !math.IsInf(v, 0) {
				col = append(col, v)
			}
		}
		if len(col) == 0 {
			means[j] = 0
			stds[j] = 1
			continue
		}
		means[j] = stat.Mean(col, nil)
		sd := stat.StdDev(col, nil)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		stds[j] = sd
	}
	return means, stds
}

// transform imputes NaN/Inf cells with the fitted column mean and applies
// z-score standardization, producing a new matrix.
func (l *Logistic) transform(x [][]float64) [][]float64 {
	z := make([][]float64, len(x))
	for i, row := range x {
		zr := make([]float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = l.means[j]
			}
			zr[j] = (v - l.means[j]) / l.stds[j]
		}
		z[i] = zr
	}
	return z
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
