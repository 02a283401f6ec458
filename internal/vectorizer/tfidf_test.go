package vectorizer

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

var corpus = []string{
	"love this phone",
	"hate this phone",
	"love love love",
	"meh",
}

func TestFitBuildsSortedVocabulary(t *testing.T) {
	v := New(Options{})
	require.NoError(t, v.Fit(corpus))

	assert.Equal(t, map[string]int{"hate": 0, "love": 1, "meh": 2, "phone": 3, "this": 4}, v.Vocabulary())
	assert.Equal(t, 5, v.NumFeatures())
}

func TestFitMaxFeaturesKeepsMostFrequent(t *testing.T) {
	v := New(Options{MaxFeatures: 2})
	require.NoError(t, v.Fit(corpus))

	// love:4, phone:2, this:2 -> tie broken alphabetically
	assert.Equal(t, map[string]int{"love": 0, "phone": 1}, v.Vocabulary())
}

func TestTransformIsUnitNorm(t *testing.T) {
	v := New(Options{})
	require.NoError(t, v.Fit(corpus))

	vec := v.Transform("love this phone phone")
	require.Equal(t, []int{1, 3, 4}, vec.Indices)
	assert.InDelta(t, 1.0, floats.Norm(vec.Values, 2), 1e-12)

	// smooth idf: ln((1+n)/(1+df)) + 1
	idfLove := math.Log(5.0/3.0) + 1
	idfPhone := math.Log(5.0/3.0) + 1
	assert.InDelta(t, vec.Values[1]/vec.Values[0], 2*idfPhone/idfLove, 1e-12)
}

func TestTransformUnknownAndEmpty(t *testing.T) {
	v := New(Options{})
	require.NoError(t, v.Fit(corpus))

	assert.Equal(t, 0, v.Transform("completely unseen words").Len())
	assert.Equal(t, 0, v.Transform("").Len())
}

func TestFitEmpty(t *testing.T) {
	assert.Error(t, New(Options{}).Fit(nil))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	v := New(Options{MaxFeatures: 10, SublinearTF: true})
	require.NoError(t, v.Fit(corpus))

	var buf bytes.Buffer
	require.NoError(t, v.Save(&buf))

	loaded := New(Options{})
	require.NoError(t, loaded.Load(&buf))
	assert.Equal(t, v.Vocabulary(), loaded.Vocabulary())
	assert.Equal(t, v.Transform("love love phone"), loaded.Transform("love love phone"))
}

func TestSaveUnfitted(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, New(Options{}).Save(&buf))
}
