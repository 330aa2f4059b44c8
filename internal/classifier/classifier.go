// Package classifier provides a binary logistic-regression model for hire outcomes.
package classifier

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientData is returned by Train when the labels contain fewer than
// two distinct classes; a binary model cannot be fit on a single class.
var ErrInsufficientData = errors.New("insufficient data: need both positive and negative labels")

// Defaults for full-batch gradient descent. Fixed so training is deterministic
// for a given dataset.
const (
	defaultEpochs       = 200
	defaultLearningRate = 0.5
)

// Model is a trained binary predictor over a fixed feature space. Immutable
// after training; safe to share across concurrent callers.
type Model struct {
	weights     []float64
	bias        float64
	fingerprint string
}

// Options tune training. Zero values fall back to the defaults.
type Options struct {
	Epochs       int
	LearningRate float64
}

// Train fits a logistic-regression model on the feature matrix and 0/1 labels
// using full-batch gradient descent with a fixed epoch count. Returns
// ErrInsufficientData unless both classes are present, and an error when the
// inputs are malformed (length mismatch, ragged rows).
func Train(features [][]float64, labels []int, opts *Options) (*Model, error) {
	if len(features) != len(labels) {
		return nil, fmt.Errorf("features/labels length mismatch: %d vs %d", len(features), len(labels))
	}
	var positives, negatives int
	for _, y := range labels {
		if y == 1 {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return nil, ErrInsufficientData
	}

	dims := len(features[0])
	for i, row := range features {
		if len(row) != dims {
			return nil, fmt.Errorf("ragged feature matrix: row %d has %d columns, want %d", i, len(row), dims)
		}
	}

	epochs := defaultEpochs
	rate := defaultLearningRate
	if opts != nil {
		if opts.Epochs > 0 {
			epochs = opts.Epochs
		}
		if opts.LearningRate > 0 {
			rate = opts.LearningRate
		}
	}

	m := &Model{weights: make([]float64, dims)}
	n := float64(len(features))
	gradW := make([]float64, dims)
	for epoch := 0; epoch < epochs; epoch++ {
		for i := range gradW {
			gradW[i] = 0
		}
		var gradB float64
		for i, row := range features {
			err := m.decision(row) - float64(labels[i])
			for j, x := range row {
				gradW[j] += err * x
			}
			gradB += err
		}
		for j := range m.weights {
			m.weights[j] -= rate * gradW[j] / n
		}
		m.bias -= rate * gradB / n
	}
	return m, nil
}

// Predict returns the probability of the positive (hired) class for one
// feature vector. The vector must match the model's dimensionality.
func (m *Model) Predict(features []float64) (float64, error) {
	if len(features) != len(m.weights) {
		return 0, fmt.Errorf("feature dimension mismatch: got %d, expected %d", len(features), len(m.weights))
	}
	return m.decision(features), nil
}

func (m *Model) decision(features []float64) float64 {
	z := m.bias
	for j, w := range m.weights {
		z += w * features[j]
	}
	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Dimensions returns the expected feature-vector length.
func (m *Model) Dimensions() int {
	return len(m.weights)
}

// Fingerprint returns the training-run fingerprint, or "" when unset.
func (m *Model) Fingerprint() string {
	return m.fingerprint
}

// SetFingerprint stamps the model with the training run that produced it.
// A fingerprint can only be set once.
func (m *Model) SetFingerprint(fp string) error {
	if m.fingerprint != "" {
		return fmt.Errorf("fingerprint already set to %s", m.fingerprint)
	}
	m.fingerprint = fp
	return nil
}

// Weights returns a copy of the weight vector.
func (m *Model) Weights() []float64 {
	out := make([]float64, len(m.weights))
	copy(out, m.weights)
	return out
}

// Bias returns the intercept term.
func (m *Model) Bias() float64 {
	return m.bias
}

// Restore rebuilds a trained model from persisted weights, bias, and fingerprint.
func Restore(weights []float64, bias float64, fingerprint string) *Model {
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Model{weights: w, bias: bias, fingerprint: fingerprint}
}
