package di

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mikey/tweet-sentiment/internal/adapters/repl"
	"github.com/mikey/tweet-sentiment/internal/config"
	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/mikey/tweet-sentiment/internal/factory"
	"github.com/mikey/tweet-sentiment/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("sentiment-repl", flag.ContinueOnError)
	flags := parseFlags(fs, []string{"-model", "svm", "-backend", "model", "-no-cache", "-verbose"})

	assert.Equal(t, "svm", flags.Model)
	assert.Equal(t, "model", flags.Backend)
	assert.True(t, flags.NoCache)
	assert.True(t, flags.Verbose)
	assert.False(t, flags.JSONLog)
	assert.Empty(t, flags.ConfigFile)
}

func TestApplyFlags(t *testing.T) {
	cfg := config.NewFromViper(config.NewEmptyViper())
	applyFlags(cfg, &CLIFlags{Model: "naive_bayes", Backend: "llm", Provider: "gemini", NoCache: true})

	assert.Equal(t, "naive_bayes", cfg.GetPredictor().Model)
	assert.Equal(t, "llm", cfg.GetPredictor().Backend)
	assert.Equal(t, "gemini", cfg.GetString("llm.provider"))
	assert.False(t, cfg.GetBool("cache.enabled"))

	untouched := config.NewFromViper(config.NewEmptyViper())
	applyFlags(untouched, &CLIFlags{})
	assert.Equal(t, "logistic_regression", untouched.GetPredictor().Model)
	assert.True(t, untouched.GetBool("cache.enabled"))
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestBuildCLIContainerWithVader(t *testing.T) {
	path := writeConfig(t, "cache:\n  type: memory\n  ttl: 1m\n")
	container, err := BuildCLIContainer(&CLIFlags{ConfigFile: path, Backend: "vader"})
	require.NoError(t, err)

	err = container.Invoke(func(service *core.SentimentService, r *repl.REPL, cacheRepo core.CacheRepository) {
		assert.Equal(t, "vader", service.PredictorName())
		assert.NotNil(t, r)
		require.NotNil(t, cacheRepo)
		if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
			defer stopper.Stop()
		}

		pred, err := service.Predict(context.Background(), "I love this wonderful day")
		require.NoError(t, err)
		assert.Equal(t, core.Positive, pred.Label)

		cached, err := service.Predict(context.Background(), "I love this wonderful day")
		require.NoError(t, err)
		assert.Equal(t, "cache", cached.ProcessingID)
	})
	require.NoError(t, err)
}

func TestBuildCLIContainerMissingModel(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "models:\n  dir: "+dir+"\n")
	container, err := BuildCLIContainer(&CLIFlags{ConfigFile: path, NoCache: true})
	require.NoError(t, err)

	err = container.Invoke(func(service *core.SentimentService) {})
	require.Error(t, err)
	assert.ErrorIs(t, dig.RootCause(err), core.ErrModelNotFound)
}

func TestBuildContainer(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, strings.Join([]string{
		"models:",
		"  dir: " + filepath.Join(dir, "models"),
		"training:",
		"  models: [naive_bayes, svm]",
		"  cv_folds: 3",
		"grid:",
		"  svm:",
		"    epochs: [5, 10]",
		"logging:",
		"  level: error",
	}, "\n"))

	container, err := BuildContainer(path)
	require.NoError(t, err)

	err = container.Invoke(func(f *factory.TrainerFactory, s *store.ModelStore, logger *zap.Logger) {
		assert.Equal(t, filepath.Join(dir, "models"), s.Dir())

		opts, err := f.Options()
		require.NoError(t, err)
		assert.Equal(t, []string{"naive_bayes", "svm"}, opts.Models)
		assert.Equal(t, 3, opts.CVFolds)
		assert.Equal(t, []float64{5, 10}, opts.Grids["svm"]["epochs"])
		assert.Equal(t, []float64{0.1, 1, 10}, opts.Grids["svm"]["c"])
		assert.Equal(t, 1.0, opts.Params["svm"]["c"])

		trainer, err := f.CreateTrainer(context.Background(), &bytes.Buffer{})
		require.NoError(t, err)
		assert.NotNil(t, trainer)
	})
	require.NoError(t, err)
}
