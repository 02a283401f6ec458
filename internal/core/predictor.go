package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TextPreprocessor cleans raw text before vectorization
type TextPreprocessor interface {
	Preprocess(text string) string
}

// ModelPredictor serves a trained classifier and its vectorizer
type ModelPredictor struct {
	name         string
	version      string
	preprocessor TextPreprocessor
	vectorizer   Vectorizer
	classifier   Classifier
}

// NewModelPredictor creates a predictor over a fitted vectorizer and classifier
func NewModelPredictor(name string, preprocessor TextPreprocessor, vectorizer Vectorizer, classifier Classifier) *ModelPredictor {
	return &ModelPredictor{
		name:         name,
		preprocessor: preprocessor,
		vectorizer:   vectorizer,
		classifier:   classifier,
	}
}

// Name returns the saved model name
func (p *ModelPredictor) Name() string {
	return p.name
}

// WithVersion records the fingerprint of the saved model
func (p *ModelPredictor) WithVersion(version string) *ModelPredictor {
	p.version = version
	return p
}

// Version returns the saved model fingerprint, empty when unknown
func (p *ModelPredictor) Version() string {
	return p.version
}

// Predict cleans, vectorizes and classifies the text
func (p *ModelPredictor) Predict(ctx context.Context, text string) (*Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sample := p.vectorizer.Sample(p.preprocessor.Preprocess(text))
	probs, err := p.classifier.PredictProba(sample)
	if err != nil {
		return nil, fmt.Errorf("failed to predict with %s: %w", p.name, err)
	}
	return NewPrediction(probs, p.name), nil
}

// NewPrediction builds a prediction from a class probability slice
func NewPrediction(probs []float64, modelUsed string) *Prediction {
	pred := &Prediction{
		Label:        ArgMax(probs),
		ModelUsed:    modelUsed,
		ProcessingID: uuid.NewString(),
		AnalyzedAt:   time.Now(),
	}
	copy(pred.Probabilities[:], probs)
	return pred
}
