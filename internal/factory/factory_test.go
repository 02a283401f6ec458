package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/tweet-sentiment/internal/adapters/cache"
	"github.com/mikey/tweet-sentiment/internal/classifiers"
	"github.com/mikey/tweet-sentiment/internal/config"
	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/mikey/tweet-sentiment/internal/store"
	"github.com/mikey/tweet-sentiment/internal/utils"
	"github.com/mikey/tweet-sentiment/internal/vectorizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newConfig() *config.Config {
	return config.NewFromViper(config.NewEmptyViper())
}

func newPredictorFactory(t *testing.T, cfg *config.Config, s *store.ModelStore) *PredictorFactory {
	t.Helper()
	logger := zap.NewNop()
	tp, err := NewTextProcessorFactory(cfg, logger).CreateTextProcessor()
	require.NoError(t, err)
	return NewPredictorFactory(cfg, logger, tp, s, NewLLMFactory(cfg, logger, tp))
}

func TestCreatePredictorFromSavedModel(t *testing.T) {
	cfg := newConfig()
	cfg.Set("predictor.model", classifiers.KindNaiveBayes)
	s := store.NewModelStore(t.TempDir(), zap.NewNop())

	tp, err := utils.NewTextProcessor(zap.NewNop(), "english")
	require.NoError(t, err)
	docs := []string{
		tp.Preprocess("I love this"), tp.Preprocess("I hate this"), tp.Preprocess("meeting on monday"),
	}
	vec := vectorizer.New(vectorizer.Options{MaxFeatures: 10})
	require.NoError(t, vec.Fit(docs))
	clf, err := classifiers.New(classifiers.KindNaiveBayes, nil)
	require.NoError(t, err)
	require.NoError(t, clf.Fit(context.Background(), vec.Samples(docs), []core.Label{core.Positive, core.Negative, core.Neutral}))
	require.NoError(t, s.Save(classifiers.KindNaiveBayes, clf, vec))

	p, err := newPredictorFactory(t, cfg, s).CreatePredictor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, classifiers.KindNaiveBayes, p.Name())
	version, err := s.Fingerprint(classifiers.KindNaiveBayes)
	require.NoError(t, err)
	versioned, ok := p.(core.Versioned)
	require.True(t, ok)
	assert.Equal(t, version, versioned.Version())

	pred, err := p.Predict(context.Background(), "LOVE it!")
	require.NoError(t, err)
	assert.Equal(t, core.Positive, pred.Label)
}

func TestCreatePredictorMissingModel(t *testing.T) {
	s := store.NewModelStore(t.TempDir(), zap.NewNop())
	_, err := newPredictorFactory(t, newConfig(), s).CreatePredictor(context.Background())
	assert.ErrorIs(t, err, core.ErrModelNotFound)
}

func TestCreatePredictorRejectsPathEscape(t *testing.T) {
	cfg := newConfig()
	cfg.Set("predictor.model", "../outside")
	s := store.NewModelStore(t.TempDir(), zap.NewNop())
	_, err := newPredictorFactory(t, cfg, s).CreatePredictor(context.Background())
	assert.ErrorContains(t, err, "invalid model name")
}

func TestCreatePredictorBackends(t *testing.T) {
	cfg := newConfig()
	s := store.NewModelStore(t.TempDir(), zap.NewNop())

	cfg.Set("predictor.backend", "vader")
	p, err := newPredictorFactory(t, cfg, s).CreatePredictor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "vader", p.Name())

	cfg.Set("predictor.backend", "llm")
	cfg.Set("llm.provider", "openai")
	_, err = newPredictorFactory(t, cfg, s).CreatePredictor(context.Background())
	assert.ErrorContains(t, err, "API key")

	cfg.Set("openai.api_key", "sk-test")
	p, err = newPredictorFactory(t, cfg, s).CreatePredictor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4o-mini", p.Name())

	cfg.Set("llm.provider", "watson")
	_, err = newPredictorFactory(t, cfg, s).CreatePredictor(context.Background())
	assert.ErrorContains(t, err, "unsupported LLM provider")

	cfg.Set("predictor.backend", "oracle")
	_, err = newPredictorFactory(t, cfg, s).CreatePredictor(context.Background())
	assert.ErrorContains(t, err, "unsupported predictor backend")
}

func TestCreateCacheRepository(t *testing.T) {
	cfg := newConfig()
	f := NewCacheFactory(cfg, zap.NewNop())

	cfg.Set("cache.enabled", false)
	repo, err := f.CreateCacheRepository()
	require.NoError(t, err)
	assert.Nil(t, repo)
	assert.False(t, f.IsCacheEnabled())

	cfg.Set("cache.enabled", true)
	repo, err = f.CreateCacheRepository()
	require.NoError(t, err)
	mem, ok := repo.(*cache.MemoryCache)
	require.True(t, ok)
	mem.Stop()

	cfg.Set("cache.type", "sqlite")
	cfg.Set("cache.sqlite_path", filepath.Join(t.TempDir(), "nested", "cache.db"))
	repo, err = f.CreateCacheRepository()
	require.NoError(t, err)
	sqlite, ok := repo.(*cache.SQLiteCache)
	require.True(t, ok)
	sqlite.Stop()

	ttl, err := f.GetCacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)

	cfg.Set("cache.type", "memcached")
	_, err = f.CreateCacheRepository()
	assert.ErrorContains(t, err, "unsupported cache type")
}
