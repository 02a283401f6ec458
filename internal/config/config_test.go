package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	data := cfg.GetData()
	assert.Equal(t, "sentiment140", data.Format)
	assert.Equal(t, 0.2, data.TestSize)
	assert.Equal(t, int64(42), data.Seed)

	assert.Equal(t, 5000, cfg.GetVectorizer().MaxFeatures)
	assert.Equal(t, []string{"logistic_regression"}, cfg.GetTraining().Models)
	assert.Equal(t, "english", cfg.GetStopwordsLanguage())

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cache.TTL)
	assert.Equal(t, "localhost:6379", cache.Valkey.Address)

	llm, err := cfg.GetLLM()
	require.NoError(t, err)
	assert.Equal(t, 3, llm.RetryAttempts)
	assert.Equal(t, time.Second, llm.RetryDelay)
}

func TestModelParamsAndGrid(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, map[string]float64{"c": 1, "epochs": 20}, cfg.GetModelParams("logistic_regression"))
	assert.Empty(t, cfg.GetModelParams("unknown"))

	grid, err := cfg.GetGrid("random_forest")
	require.NoError(t, err)
	assert.Equal(t, map[string][]float64{
		"max_depth":    {10, 20},
		"n_estimators": {50, 100},
	}, grid)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  format: tweet_eval
  limit: 100
training:
  models: [svm, naive_bayes]
params:
  svm:
    c: 0.5
grid:
  svm:
    c: [0.01, 0.1]
cache:
  ttl: 10m
`), 0644))

	cfg, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, "tweet_eval", cfg.GetData().Format)
	assert.Equal(t, 100, cfg.GetData().Limit)
	assert.Equal(t, []string{"svm", "naive_bayes"}, cfg.GetTraining().Models)
	assert.Equal(t, map[string]float64{"c": 0.5, "epochs": 10}, cfg.GetModelParams("svm"))

	grid, err := cfg.GetGrid("svm")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.01, 0.1}, grid["c"])

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cache.TTL)
}

func TestInvalidDuration(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())
	cfg.Set("cache.ttl", "soon")
	_, err := cfg.GetCache()
	assert.Error(t, err)
}
