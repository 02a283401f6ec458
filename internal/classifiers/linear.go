package classifiers

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/mikey/tweet-sentiment/internal/core"
	"gonum.org/v1/gonum/mat"
)

// linearModel holds one weight row and bias per class
type linearModel struct {
	weights *mat.Dense
	bias    []float64
}

func newLinearModel(nFeatures int) linearModel {
	return linearModel{
		weights: mat.NewDense(core.NumClasses, max(nFeatures, 1), nil),
		bias:    make([]float64, core.NumClasses),
	}
}

func (m *linearModel) fitted() bool {
	return m.weights != nil
}

// scores returns the raw per-class decision values
func (m *linearModel) scores(x core.SparseVector) []float64 {
	out := make([]float64, core.NumClasses)
	for k := range out {
		out[k] = sparseDot(m.weights.RawRowView(k), x) + m.bias[k]
	}
	return out
}

// update adds step*x to the weights of class k and step to its bias
func (m *linearModel) update(k int, x core.SparseVector, step float64) {
	row := m.weights.RawRowView(k)
	for j, idx := range x.Indices {
		if idx < len(row) {
			row[idx] += step * x.Values[j]
		}
	}
	m.bias[k] += step
}

type linearState struct {
	Kind    string
	Params  Params
	Cols    int
	Weights []float64
	Bias    []float64
}

func (m *linearModel) save(w io.Writer, kind string, params Params) error {
	if !m.fitted() {
		return core.ErrNotFitted
	}
	_, cols := m.weights.Dims()
	state := linearState{
		Kind:    kind,
		Params:  params,
		Cols:    cols,
		Weights: mat.DenseCopyOf(m.weights).RawMatrix().Data,
		Bias:    m.bias,
	}
	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	return nil
}

func (m *linearModel) load(r io.Reader, kind string) (Params, error) {
	var state linearState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", kind, err)
	}
	if state.Kind != kind {
		return nil, fmt.Errorf("model blob holds %s, not %s", state.Kind, kind)
	}
	if state.Cols < 1 || len(state.Weights) != core.NumClasses*state.Cols || len(state.Bias) != core.NumClasses {
		return nil, fmt.Errorf("corrupt %s weights", kind)
	}
	m.weights = mat.NewDense(core.NumClasses, state.Cols, state.Weights)
	m.bias = state.Bias
	return state.Params, nil
}
