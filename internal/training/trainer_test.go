package training

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/mikey/tweet-sentiment/internal/adapters/lexicon"
	"github.com/mikey/tweet-sentiment/internal/classifiers"
	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/mikey/tweet-sentiment/internal/dataset"
	"github.com/mikey/tweet-sentiment/internal/evaluation"
	"github.com/mikey/tweet-sentiment/internal/store"
	"github.com/mikey/tweet-sentiment/internal/utils"
	"github.com/mikey/tweet-sentiment/internal/vectorizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var corpus = map[core.Label][]string{
	core.Negative: {
		"I hate this awful terrible day",
		"horrible sad bad movie @critic",
	},
	core.Neutral: {
		"the meeting is on tuesday at noon",
		"the bus goes to the station http://maps.example.com",
	},
	core.Positive: {
		"I love this wonderful happy day",
		"great amazing fantastic movie!!",
	},
}

// writeDataset writes a tweet_eval style CSV with reps copies of the corpus
func writeDataset(t *testing.T, reps int) string {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write([]string{"text", "label"}))
	for r := 0; r < reps; r++ {
		for _, label := range core.Labels {
			for _, text := range corpus[label] {
				require.NoError(t, w.Write([]string{text, strconv.Itoa(int(label))}))
			}
		}
	}
	w.Flush()
	require.NoError(t, w.Error())

	path := filepath.Join(t.TempDir(), "tweets.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

type failingPredictor struct{}

func (failingPredictor) Name() string { return "broken/model" }

func (failingPredictor) Predict(context.Context, string) (*core.Prediction, error) {
	return nil, errors.New("unavailable")
}

func newTrainer(t *testing.T, opts Options, baselines []Baseline) (*Trainer, *store.ModelStore, string, *bytes.Buffer) {
	t.Helper()
	logger := zap.NewNop()

	loader, err := dataset.NewLoader(dataset.FormatTweetEval, "utf8", 0, logger)
	require.NoError(t, err)
	tp, err := utils.NewTextProcessor(logger, "english")
	require.NoError(t, err)

	root := t.TempDir()
	s := store.NewModelStore(filepath.Join(root, "models"), logger)
	resultsDir := filepath.Join(root, "results")
	require.NoError(t, os.MkdirAll(resultsDir, 0755))

	var out bytes.Buffer
	evaluator := evaluation.NewEvaluator(resultsDir, &out, false, logger)
	return NewTrainer(opts, loader, tp, s, evaluator, baselines, &out, logger), s, resultsDir, &out
}

func TestTrainerRun(t *testing.T) {
	opts := Options{
		DataPath:   writeDataset(t, 5),
		TestSize:   0.2,
		Seed:       42,
		Vectorizer: vectorizer.Options{MaxFeatures: 100},
		Models:     []string{classifiers.KindNaiveBayes, classifiers.KindLogisticRegression},
		Params: map[string]classifiers.Params{
			classifiers.KindLogisticRegression: {"learning_rate": 0.5},
		},
		Grids: map[string]evaluation.Grid{
			classifiers.KindLogisticRegression: {"epochs": {5, 30}},
		},
		GridSearch:    true,
		CrossValidate: true,
		CVFolds:       3,
		Workers:       2,
		Examples:      true,
	}
	baselines := []Baseline{
		{Predictor: lexicon.NewVaderPredictor(0)},
		{Predictor: failingPredictor{}, Sample: 2},
	}
	trainer, s, resultsDir, out := newTrainer(t, opts, baselines)

	summary, err := trainer.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 30, summary.Records)
	assert.Equal(t, 24, summary.TrainSize)
	assert.Equal(t, 6, summary.TestSize)
	assert.Positive(t, summary.Features)

	require.Len(t, summary.Models, 2)
	nb := summary.Models[0]
	assert.Equal(t, classifiers.KindNaiveBayes, nb.Name)
	assert.Equal(t, 1.0, nb.Accuracy)
	require.NotNil(t, nb.CV)
	assert.Len(t, nb.CV.Scores, 3)
	assert.Nil(t, nb.Grid)

	lr := summary.Models[1]
	require.NotNil(t, lr.Grid)
	assert.Len(t, lr.Grid.Scores, 2)
	assert.Equal(t, 0.5, lr.Params["learning_rate"])
	assert.Contains(t, []float64{5, 30}, lr.Params["epochs"])

	// the failing baseline is skipped, VADER is kept
	require.Len(t, summary.Comparison, 3)
	assert.Equal(t, "vader", summary.Comparison[2].Model)

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{classifiers.KindLogisticRegression, classifiers.KindNaiveBayes}, names)

	for _, name := range []string{
		"performance_metrics_naive_bayes.json",
		"performance_metrics_logistic_regression.json",
		"performance_metrics_vader.json",
		"model_comparison.csv",
	} {
		assert.FileExists(t, filepath.Join(resultsDir, name))
	}
	assert.NoFileExists(t, filepath.Join(resultsDir, "performance_metrics_broken_model.json"))

	text := out.String()
	assert.Contains(t, text, "Cross-validation (3-fold) accuracy for naive_bayes:")
	assert.Contains(t, text, "Best parameters for logistic_regression:")
	assert.Contains(t, text, "Example predictions (naive_bayes):")
	for _, example := range ExampleTexts {
		assert.Equal(t, 2, strings.Count(text, "Text: "+example))
	}
}

func TestTrainerRunMissingDataset(t *testing.T) {
	trainer, _, _, _ := newTrainer(t, Options{
		DataPath: filepath.Join(t.TempDir(), "missing.csv"),
		Models:   []string{classifiers.KindNaiveBayes},
	}, nil)

	_, err := trainer.Run(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTrainerRunCancelled(t *testing.T) {
	trainer, _, _, _ := newTrainer(t, Options{
		DataPath: writeDataset(t, 2),
		TestSize: 0.2,
		Models:   []string{classifiers.KindNaiveBayes},
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := trainer.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrainerRunUnknownModel(t *testing.T) {
	trainer, _, _, _ := newTrainer(t, Options{
		DataPath: writeDataset(t, 2),
		TestSize: 0.2,
		Models:   []string{"boosting"},
	}, nil)

	_, err := trainer.Run(context.Background())
	assert.ErrorIs(t, err, core.ErrUnknownModel)
}

func TestResultName(t *testing.T) {
	assert.Equal(t, "openai_gpt-4o-mini", resultName("openai/gpt-4o-mini"))
	assert.Equal(t, "vader", resultName("vader"))
}
