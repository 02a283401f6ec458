// Package classifiers provides the trainable sentiment classifiers and a
// registry that builds them by name.
package classifiers

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mikey/tweet-sentiment/internal/core"
	"gonum.org/v1/gonum/floats"
)

// Registered classifier kinds
const (
	KindLogisticRegression = "logistic_regression"
	KindSVM                = "svm"
	KindRandomForest       = "random_forest"
	KindNaiveBayes         = "naive_bayes"
	KindNeuralNetwork      = "neural_network"
)

// Params holds numeric hyperparameters keyed by name
type Params map[string]float64

// Get returns the value for key or def when unset
func (p Params) Get(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Int returns the value for key as an int or def when unset
func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		return int(v)
	}
	return def
}

// String renders params deterministically, e.g. "c=1,epochs=20"
func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + strconv.FormatFloat(p[k], 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Merge returns a copy of p overlaid with other
func (p Params) Merge(other Params) Params {
	out := make(Params, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Constructor builds an unfitted classifier
type Constructor func(params Params) core.Classifier

var registry = map[string]Constructor{
	KindLogisticRegression: func(p Params) core.Classifier { return NewLogisticRegression(p) },
	KindSVM:                func(p Params) core.Classifier { return NewLinearSVM(p) },
	KindRandomForest:       func(p Params) core.Classifier { return NewRandomForest(p) },
	KindNaiveBayes:         func(p Params) core.Classifier { return NewNaiveBayes(p) },
	KindNeuralNetwork:      func(p Params) core.Classifier { return NewMLP(p) },
}

// New builds an unfitted classifier of the given kind
func New(kind string, params Params) (core.Classifier, error) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownModel, kind)
	}
	return ctor(params), nil
}

// Kinds lists every registered classifier kind in sorted order
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func validate(samples []core.Sample, labels []core.Label) error {
	if len(samples) == 0 {
		return core.ErrEmptyTrainingSet
	}
	if len(samples) != len(labels) {
		return fmt.Errorf("%w: %d samples, %d labels", core.ErrLengthMismatch, len(samples), len(labels))
	}
	for i, l := range labels {
		if !l.Valid() {
			return fmt.Errorf("sample %d has invalid label %d", i, l)
		}
	}
	return nil
}

// numFeatures returns one past the largest feature index present
func numFeatures(samples []core.Sample) int {
	n := 0
	for _, s := range samples {
		if k := s.Features.Len(); k > 0 && s.Features.Indices[k-1]+1 > n {
			n = s.Features.Indices[k-1] + 1
		}
	}
	return n
}

// softmax converts scores into probabilities in place.
// Scores with no finite maximum become a uniform distribution.
func softmax(scores []float64) []float64 {
	lse := floats.LogSumExp(scores)
	if math.IsInf(lse, 0) || math.IsNaN(lse) {
		for i := range scores {
			scores[i] = 1 / float64(len(scores))
		}
		return scores
	}
	for i, s := range scores {
		scores[i] = math.Exp(s - lse)
	}
	return scores
}

// sparseDot returns row · x for the indices of x that fall inside row
func sparseDot(row []float64, x core.SparseVector) float64 {
	sum := 0.0
	for k, idx := range x.Indices {
		if idx < len(row) {
			sum += row[idx] * x.Values[k]
		}
	}
	return sum
}
