package classifiers

import (
	"context"
	"io"
	"math/rand"

	"github.com/mikey/tweet-sentiment/internal/core"
)

// LogisticRegression is a multinomial logistic regression trained with
// mini-batch gradient descent and L2 regularization of strength 1/C
type LogisticRegression struct {
	params Params
	model  linearModel
}

// NewLogisticRegression creates an unfitted model.
// Params: c (1.0), epochs (20), learning_rate (0.5), batch_size (32), seed (42).
func NewLogisticRegression(params Params) *LogisticRegression {
	return &LogisticRegression{params: params}
}

// Kind returns the registry name
func (m *LogisticRegression) Kind() string { return KindLogisticRegression }

// Fit trains the model
func (m *LogisticRegression) Fit(ctx context.Context, samples []core.Sample, labels []core.Label) error {
	if err := validate(samples, labels); err != nil {
		return err
	}

	c := m.params.Get("c", 1.0)
	epochs := m.params.Int("epochs", 20)
	lr0 := m.params.Get("learning_rate", 0.5)
	batch := max(m.params.Int("batch_size", 32), 1)
	rng := rand.New(rand.NewSource(int64(m.params.Int("seed", 42))))

	model := newLinearModel(numFeatures(samples))
	lambda := 1.0 / (c * float64(len(samples)))

	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lr := lr0 / (1 + 0.1*float64(epoch))
		order := rng.Perm(len(samples))
		for start := 0; start < len(order); start += batch {
			end := min(start+batch, len(order))
			step := lr / float64(end-start)
			for _, i := range order[start:end] {
				x := samples[i].Features
				probs := softmax(model.scores(x))
				for k := range probs {
					g := probs[k]
					if core.Label(k) == labels[i] {
						g -= 1
					}
					model.update(k, x, -step*g)
				}
			}
			// weight decay, bias left unregularized
			model.weights.Scale(max(1-lr*lambda*float64(end-start), 0), model.weights)
		}
	}

	m.model = model
	return nil
}

// PredictProba returns class probabilities
func (m *LogisticRegression) PredictProba(sample core.Sample) ([]float64, error) {
	if !m.model.fitted() {
		return nil, core.ErrNotFitted
	}
	return softmax(m.model.scores(sample.Features)), nil
}

// Save writes the fitted weights
func (m *LogisticRegression) Save(w io.Writer) error {
	return m.model.save(w, m.Kind(), m.params)
}

// Load restores weights written by Save
func (m *LogisticRegression) Load(r io.Reader) error {
	params, err := m.model.load(r, m.Kind())
	if err != nil {
		return err
	}
	m.params = params
	return nil
}
