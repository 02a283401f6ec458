// Package vectorizer implements TF-IDF text vectorization.
package vectorizer

import (
	"encoding/gob"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/mikey/tweet-sentiment/internal/utils"
	"gonum.org/v1/gonum/floats"
)

// Options controls vocabulary selection and weighting
type Options struct {
	MaxFeatures int
	MinDF       int
	SublinearTF bool
}

// TfidfVectorizer maps documents onto L2-normalized TF-IDF vectors
type TfidfVectorizer struct {
	opts       Options
	vocabulary map[string]int
	idf        []float64
}

// New creates an unfitted vectorizer
func New(opts Options) *TfidfVectorizer {
	if opts.MinDF < 1 {
		opts.MinDF = 1
	}
	return &TfidfVectorizer{opts: opts}
}

// Fit learns the vocabulary and inverse document frequencies from docs
func (v *TfidfVectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return core.ErrEmptyTrainingSet
	}

	termFreq := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range utils.Tokenize(doc) {
			termFreq[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}

	terms := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df >= v.opts.MinDF {
			terms = append(terms, term)
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if termFreq[terms[i]] != termFreq[terms[j]] {
			return termFreq[terms[i]] > termFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.opts.MaxFeatures > 0 && len(terms) > v.opts.MaxFeatures {
		terms = terms[:v.opts.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return nil
}

// Fitted reports whether Fit or Load has populated the vocabulary
func (v *TfidfVectorizer) Fitted() bool {
	return v.vocabulary != nil
}

// NumFeatures returns the vocabulary size
func (v *TfidfVectorizer) NumFeatures() int {
	return len(v.idf)
}

// Vocabulary returns the term to feature index mapping
func (v *TfidfVectorizer) Vocabulary() map[string]int {
	return v.vocabulary
}

// Transform converts a document into a TF-IDF vector
func (v *TfidfVectorizer) Transform(doc string) core.SparseVector {
	return v.transformTokens(utils.Tokenize(doc))
}

func (v *TfidfVectorizer) transformTokens(tokens []string) core.SparseVector {
	counts := make(map[int]float64)
	for _, tok := range tokens {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return core.SparseVector{}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for i, idx := range indices {
		tf := counts[idx]
		if v.opts.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		values[i] = tf * v.idf[idx]
	}
	if norm := floats.Norm(values, 2); norm > 0 {
		floats.Scale(1/norm, values)
	}
	return core.SparseVector{Indices: indices, Values: values}
}

// Sample tokenizes and vectorizes a cleaned document
func (v *TfidfVectorizer) Sample(doc string) core.Sample {
	tokens := utils.Tokenize(doc)
	return core.Sample{Tokens: tokens, Features: v.transformTokens(tokens)}
}

// Samples vectorizes every document
func (v *TfidfVectorizer) Samples(docs []string) []core.Sample {
	out := make([]core.Sample, len(docs))
	for i, doc := range docs {
		out[i] = v.Sample(doc)
	}
	return out
}

type tfidfState struct {
	Options    Options
	Vocabulary map[string]int
	IDF        []float64
}

// Save writes the fitted vectorizer as gob
func (v *TfidfVectorizer) Save(w io.Writer) error {
	if !v.Fitted() {
		return core.ErrNotFitted
	}
	state := tfidfState{Options: v.opts, Vocabulary: v.vocabulary, IDF: v.idf}
	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return fmt.Errorf("failed to encode vectorizer: %w", err)
	}
	return nil
}

// Load restores a vectorizer written by Save
func (v *TfidfVectorizer) Load(r io.Reader) error {
	var state tfidfState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("failed to decode vectorizer: %w", err)
	}
	if len(state.Vocabulary) != len(state.IDF) {
		return fmt.Errorf("corrupt vectorizer: %d terms but %d idf weights", len(state.Vocabulary), len(state.IDF))
	}
	v.opts = state.Options
	v.vocabulary = state.Vocabulary
	if v.vocabulary == nil {
		v.vocabulary = map[string]int{}
	}
	v.idf = state.IDF
	return nil
}
