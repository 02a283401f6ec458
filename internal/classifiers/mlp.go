package classifiers

import (
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/mikey/tweet-sentiment/internal/core"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MLP is a feed-forward network with one ReLU hidden layer and a softmax
// output, trained with stochastic gradient descent
type MLP struct {
	params Params
	w1     *mat.Dense // features x hidden
	b1     []float64
	w2     *mat.Dense // hidden x classes
	b2     []float64
}

// NewMLP creates an unfitted network.
// Params: hidden (64), epochs (10), learning_rate (0.1), alpha (1e-4), seed (42).
func NewMLP(params Params) *MLP {
	return &MLP{params: params}
}

// Kind returns the registry name
func (m *MLP) Kind() string { return KindNeuralNetwork }

// Fit trains the network
func (m *MLP) Fit(ctx context.Context, samples []core.Sample, labels []core.Label) error {
	if err := validate(samples, labels); err != nil {
		return err
	}

	hidden := max(m.params.Int("hidden", 64), 1)
	epochs := m.params.Int("epochs", 10)
	lr0 := m.params.Get("learning_rate", 0.1)
	alpha := m.params.Get("alpha", 1e-4)
	rng := rand.New(rand.NewSource(int64(m.params.Int("seed", 42))))
	nFeatures := max(numFeatures(samples), 1)

	glorot := func(rows, cols int) *mat.Dense {
		limit := math.Sqrt(6 / float64(rows+cols))
		data := make([]float64, rows*cols)
		for i := range data {
			data[i] = (rng.Float64()*2 - 1) * limit
		}
		return mat.NewDense(rows, cols, data)
	}
	m.w1 = glorot(nFeatures, hidden)
	m.b1 = make([]float64, hidden)
	m.w2 = glorot(hidden, core.NumClasses)
	m.b2 = make([]float64, core.NumClasses)

	dh := make([]float64, hidden)
	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			m.w1 = nil
			return err
		}
		lr := lr0 / (1 + 0.1*float64(epoch))
		for _, i := range rng.Perm(len(samples)) {
			x := samples[i].Features
			h, probs := m.forward(x)

			// output error
			d2 := probs
			d2[labels[i]] -= 1

			// hidden error, computed before w2 changes
			for j := range dh {
				dh[j] = 0
				if h[j] > 0 {
					dh[j] = floats.Dot(m.w2.RawRowView(j), d2)
				}
			}

			for j := 0; j < hidden; j++ {
				row := m.w2.RawRowView(j)
				floats.Scale(1-lr*alpha, row)
				floats.AddScaled(row, -lr*h[j], d2)
			}
			floats.AddScaled(m.b2, -lr, d2)

			for k, idx := range x.Indices {
				row := m.w1.RawRowView(idx)
				floats.Scale(1-lr*alpha, row)
				floats.AddScaled(row, -lr*x.Values[k], dh)
			}
			floats.AddScaled(m.b1, -lr, dh)
		}
	}
	return nil
}

// forward returns the hidden activations and output probabilities
func (m *MLP) forward(x core.SparseVector) ([]float64, []float64) {
	rows, hidden := m.w1.Dims()
	h := make([]float64, hidden)
	copy(h, m.b1)
	for k, idx := range x.Indices {
		if idx < rows {
			floats.AddScaled(h, x.Values[k], m.w1.RawRowView(idx))
		}
	}
	for j, v := range h {
		if v < 0 {
			h[j] = 0
		}
	}

	var logits mat.VecDense
	logits.MulVec(m.w2.T(), mat.NewVecDense(hidden, h))
	out := make([]float64, core.NumClasses)
	for k := range out {
		out[k] = logits.AtVec(k) + m.b2[k]
	}
	return h, softmax(out)
}

// PredictProba returns class probabilities
func (m *MLP) PredictProba(sample core.Sample) ([]float64, error) {
	if m.w1 == nil {
		return nil, core.ErrNotFitted
	}
	_, probs := m.forward(sample.Features)
	return probs, nil
}

type mlpState struct {
	Kind     string
	Params   Params
	Features int
	Hidden   int
	W1       []float64
	B1       []float64
	W2       []float64
	B2       []float64
}

// Save writes the fitted weights
func (m *MLP) Save(w io.Writer) error {
	if m.w1 == nil {
		return core.ErrNotFitted
	}
	features, hidden := m.w1.Dims()
	state := mlpState{
		Kind:     m.Kind(),
		Params:   m.params,
		Features: features,
		Hidden:   hidden,
		W1:       m.w1.RawMatrix().Data,
		B1:       m.b1,
		W2:       m.w2.RawMatrix().Data,
		B2:       m.b2,
	}
	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return fmt.Errorf("failed to encode neural network: %w", err)
	}
	return nil
}

// Load restores weights written by Save
func (m *MLP) Load(r io.Reader) error {
	var state mlpState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("failed to decode neural network: %w", err)
	}
	if state.Kind != m.Kind() {
		return fmt.Errorf("model blob holds %s, not %s", state.Kind, m.Kind())
	}
	if state.Features < 1 || state.Hidden < 1 ||
		len(state.W1) != state.Features*state.Hidden || len(state.B1) != state.Hidden ||
		len(state.W2) != state.Hidden*core.NumClasses || len(state.B2) != core.NumClasses {
		return fmt.Errorf("corrupt neural network weights")
	}
	m.params = state.Params
	m.w1 = mat.NewDense(state.Features, state.Hidden, state.W1)
	m.b1 = state.B1
	m.w2 = mat.NewDense(state.Hidden, core.NumClasses, state.W2)
	m.b2 = state.B2
	return nil
}
