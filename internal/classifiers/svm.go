package classifiers

import (
	"context"
	"io"
	"math/rand"

	"github.com/mikey/tweet-sentiment/internal/core"
)

// LinearSVM is a one-vs-rest linear support vector machine trained with
// stochastic subgradient descent on the hinge loss.
//
// Probabilities are a softmax over the per-class decision values, which keeps
// the ordering of the margins but is not calibrated.
type LinearSVM struct {
	params Params
	model  linearModel
}

// NewLinearSVM creates an unfitted model.
// Params: c (1.0), epochs (10), learning_rate (0.1), seed (42).
func NewLinearSVM(params Params) *LinearSVM {
	return &LinearSVM{params: params}
}

// Kind returns the registry name
func (m *LinearSVM) Kind() string { return KindSVM }

// Fit trains one binary hinge-loss classifier per class
func (m *LinearSVM) Fit(ctx context.Context, samples []core.Sample, labels []core.Label) error {
	if err := validate(samples, labels); err != nil {
		return err
	}

	c := m.params.Get("c", 1.0)
	epochs := m.params.Int("epochs", 10)
	lr0 := m.params.Get("learning_rate", 0.1)
	rng := rand.New(rand.NewSource(int64(m.params.Int("seed", 42))))

	model := newLinearModel(numFeatures(samples))
	lambda := 1.0 / (c * float64(len(samples)))

	// w_k = scale[k] * row_k so the L2 shrink is O(1) per step
	scale := make([]float64, core.NumClasses)
	for k := range scale {
		scale[k] = 1
	}
	fold := func() {
		for k := range scale {
			row := model.weights.RawRowView(k)
			for j := range row {
				row[j] *= scale[k]
			}
			scale[k] = 1
		}
	}

	t := 0.0
	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, i := range rng.Perm(len(samples)) {
			x := samples[i].Features
			eta := min(lr0/(1+lr0*lambda*t), 0.5/lambda)
			t++
			for k := 0; k < core.NumClasses; k++ {
				y := -1.0
				if core.Label(k) == labels[i] {
					y = 1
				}
				margin := y * (scale[k]*sparseDot(model.weights.RawRowView(k), x) + model.bias[k])
				scale[k] *= 1 - eta*lambda
				if scale[k] < 1e-9 {
					fold()
				}
				if margin < 1 {
					row := model.weights.RawRowView(k)
					for j, idx := range x.Indices {
						row[idx] += eta * y * x.Values[j] / scale[k]
					}
					model.bias[k] += eta * y
				}
			}
		}
		fold()
	}

	m.model = model
	return nil
}

// Decision returns the raw one-vs-rest margins
func (m *LinearSVM) Decision(sample core.Sample) ([]float64, error) {
	if !m.model.fitted() {
		return nil, core.ErrNotFitted
	}
	return m.model.scores(sample.Features), nil
}

// PredictProba returns a softmax over the decision values
func (m *LinearSVM) PredictProba(sample core.Sample) ([]float64, error) {
	scores, err := m.Decision(sample)
	if err != nil {
		return nil, err
	}
	return softmax(scores), nil
}

// Save writes the fitted weights
func (m *LinearSVM) Save(w io.Writer) error {
	return m.model.save(w, m.Kind(), m.params)
}

// Load restores weights written by Save
func (m *LinearSVM) Load(r io.Reader) error {
	params, err := m.model.load(r, m.Kind())
	if err != nil {
		return err
	}
	m.params = params
	return nil
}
