package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Label is a sentiment class
type Label int

const (
	Negative Label = iota
	Neutral
	Positive
)

// NumClasses is the number of sentiment classes
const NumClasses = 3

// Labels lists every class in index order
var Labels = []Label{Negative, Neutral, Positive}

var labelNames = [NumClasses]string{"negative", "neutral", "positive"}

// String returns the lowercase class name
func (l Label) String() string {
	if l < 0 || int(l) >= NumClasses {
		return fmt.Sprintf("label(%d)", int(l))
	}
	return labelNames[l]
}

// Valid reports whether the label is one of the known classes
func (l Label) Valid() bool {
	return l >= 0 && int(l) < NumClasses
}

// ParseLabel converts a class name such as "positive" into a Label
func ParseLabel(name string) (Label, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range labelNames {
		if n == name {
			return Label(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sentiment label: %q", name)
}

// LabelNames returns the class names in index order
func LabelNames() []string {
	names := make([]string, NumClasses)
	copy(names, labelNames[:])
	return names
}

// Record is a labeled tweet
type Record struct {
	Text  string
	Label Label
}

// SparseVector holds the non-zero entries of a feature vector.
// Indices are strictly increasing.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of stored entries
func (v SparseVector) Len() int {
	return len(v.Indices)
}

// Get returns the value at index i, or zero when absent
func (v SparseVector) Get(i int) float64 {
	k := sort.SearchInts(v.Indices, i)
	if k < len(v.Indices) && v.Indices[k] == i {
		return v.Values[k]
	}
	return 0
}

// Sample is a vectorized document as seen by a classifier
type Sample struct {
	Tokens   []string
	Features SparseVector
}

// Prediction is the outcome of classifying one piece of text
type Prediction struct {
	Label         Label
	Probabilities [NumClasses]float64
	ModelUsed     string
	ProcessingID  string
	AnalyzedAt    time.Time
}

// Confidence returns the probability of the predicted class
func (p *Prediction) Confidence() float64 {
	return p.Probabilities[p.Label]
}

// CacheEntry is a cached prediction
type CacheEntry struct {
	Key           string
	ModelUsed     string
	Label         Label
	Probabilities [NumClasses]float64
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// ArgMax returns the index of the largest probability, preferring the lowest index on ties
func ArgMax(probs []float64) Label {
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return Label(best)
}
