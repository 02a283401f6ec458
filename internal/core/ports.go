package core

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrModelNotFound is returned when a persisted model or vectorizer is missing
	ErrModelNotFound = errors.New("model not found")
	// ErrEmptyText is returned when a prediction is requested for blank input
	ErrEmptyText = errors.New("text is empty")
	// ErrEmptyTrainingSet is returned when a classifier is fitted without samples
	ErrEmptyTrainingSet = errors.New("training set is empty")
	// ErrLengthMismatch is returned when samples and labels differ in length
	ErrLengthMismatch = errors.New("samples and labels differ in length")
	// ErrUnknownModel is returned for an unregistered classifier kind
	ErrUnknownModel = errors.New("unknown model kind")
	// ErrNotFitted is returned when predicting with an untrained model
	ErrNotFitted = errors.New("model is not fitted")
	// ErrCacheMiss is returned when a cache entry is absent or expired
	ErrCacheMiss = errors.New("cache entry not found")
)

// Classifier is a trainable multi-class text classifier
type Classifier interface {
	// Kind returns the registry name of the classifier
	Kind() string

	// Fit trains the classifier
	Fit(ctx context.Context, samples []Sample, labels []Label) error

	// PredictProba returns one probability per class, summing to one
	PredictProba(sample Sample) ([]float64, error)

	// Save writes the fitted parameters
	Save(w io.Writer) error

	// Load restores parameters written by Save
	Load(r io.Reader) error
}

// Vectorizer turns cleaned text into classifier samples
type Vectorizer interface {
	Sample(doc string) Sample
}

// Predictor classifies raw text
type Predictor interface {
	// Name identifies the predictor in logs and cache keys
	Name() string

	// Predict classifies a single piece of text
	Predict(ctx context.Context, text string) (*Prediction, error)
}

// Versioned is implemented by predictors backed by a saved artifact.
// A non-empty version becomes part of every cache key.
type Versioned interface {
	Version() string
}

// CacheRepository defines the interface for caching predictions
type CacheRepository interface {
	// Get retrieves a cached entry by key
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// Predict returns the most probable class for a sample
func Predict(c Classifier, sample Sample) (Label, error) {
	probs, err := c.PredictProba(sample)
	if err != nil {
		return 0, err
	}
	return ArgMax(probs), nil
}
