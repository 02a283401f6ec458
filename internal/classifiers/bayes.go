package classifiers

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/jbrukh/bayesian"
	"github.com/mikey/tweet-sentiment/internal/core"
)

// NaiveBayes is a multinomial naive Bayes classifier over cleaned tokens.
// With param tfidf=1 the term counts are reweighted by TF-IDF after learning.
type NaiveBayes struct {
	params     Params
	classifier *bayesian.Classifier
}

// NewNaiveBayes creates an unfitted classifier. Params: tfidf (0).
func NewNaiveBayes(params Params) *NaiveBayes {
	return &NaiveBayes{params: params}
}

// Kind returns the registry name
func (m *NaiveBayes) Kind() string { return KindNaiveBayes }

func bayesClasses() []bayesian.Class {
	classes := make([]bayesian.Class, core.NumClasses)
	for i, name := range core.LabelNames() {
		classes[i] = bayesian.Class(name)
	}
	return classes
}

// Fit learns word frequencies per class
func (m *NaiveBayes) Fit(ctx context.Context, samples []core.Sample, labels []core.Label) error {
	if err := validate(samples, labels); err != nil {
		return err
	}

	classes := bayesClasses()
	tfidf := m.params.Int("tfidf", 0) == 1
	var c *bayesian.Classifier
	if tfidf {
		c = bayesian.NewClassifierTfIdf(classes...)
	} else {
		c = bayesian.NewClassifier(classes...)
	}

	for i, s := range samples {
		if i%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		c.Learn(s.Tokens, classes[labels[i]])
	}
	if tfidf {
		c.ConvertTermsFreqToTfIdf()
	}

	m.classifier = c
	return nil
}

// PredictProba normalizes the per-class log scores
func (m *NaiveBayes) PredictProba(sample core.Sample) ([]float64, error) {
	if m.classifier == nil {
		return nil, core.ErrNotFitted
	}
	scores, _, _ := m.classifier.LogScores(sample.Tokens)
	return softmax(append([]float64(nil), scores...)), nil
}

type bayesState struct {
	Kind   string
	Params Params
	Blob   []byte
}

// Save writes the learned frequencies
func (m *NaiveBayes) Save(w io.Writer) error {
	if m.classifier == nil {
		return core.ErrNotFitted
	}
	var buf bytes.Buffer
	if err := m.classifier.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to serialize naive bayes: %w", err)
	}
	if err := gob.NewEncoder(w).Encode(bayesState{Kind: m.Kind(), Params: m.params, Blob: buf.Bytes()}); err != nil {
		return fmt.Errorf("failed to encode naive bayes: %w", err)
	}
	return nil
}

// Load restores frequencies written by Save
func (m *NaiveBayes) Load(r io.Reader) error {
	var state bayesState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("failed to decode naive bayes: %w", err)
	}
	if state.Kind != m.Kind() {
		return fmt.Errorf("model blob holds %s, not %s", state.Kind, m.Kind())
	}
	c, err := bayesian.NewClassifierFromReader(bytes.NewReader(state.Blob))
	if err != nil {
		return fmt.Errorf("failed to deserialize naive bayes: %w", err)
	}
	m.params = state.Params
	m.classifier = c
	return nil
}
