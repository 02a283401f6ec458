// Package training runs the end-to-end pipeline: load, clean, vectorize,
// fit, evaluate, persist and compare.
package training

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/tweet-sentiment/internal/classifiers"
	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/mikey/tweet-sentiment/internal/dataset"
	"github.com/mikey/tweet-sentiment/internal/evaluation"
	"github.com/mikey/tweet-sentiment/internal/store"
	"github.com/mikey/tweet-sentiment/internal/vectorizer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ExampleTexts are classified by every trained model at the end of its run
var ExampleTexts = []string{
	"I love this product! It's amazing!",
	"This is okay, nothing special.",
	"I hate this product, it's terrible!",
}

// Options controls a training run
type Options struct {
	DataPath      string
	TestSize      float64
	Seed          int64
	Vectorizer    vectorizer.Options
	Models        []string
	Params        map[string]classifiers.Params
	Grids         map[string]evaluation.Grid
	GridSearch    bool
	CrossValidate bool
	CVFolds       int
	Workers       int
	Examples      bool
}

// Baseline is a predictor scored on the raw test texts next to the trained models.
// Sample limits how many test texts it sees; zero means all of them.
type Baseline struct {
	Predictor core.Predictor
	Sample    int
}

// ModelResult summarises one trained model
type ModelResult struct {
	Name     string
	Params   classifiers.Params
	Accuracy float64
	CV       *evaluation.CVResult
	Grid     *evaluation.GridResult
}

// RunSummary describes a completed training run
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	Duration   time.Duration
	Records    int
	TrainSize  int
	TestSize   int
	Features   int
	Models     []ModelResult
	Comparison []evaluation.ComparisonRow
}

// Trainer orchestrates a training run
type Trainer struct {
	opts      Options
	loader    *dataset.Loader
	processor core.TextPreprocessor
	store     *store.ModelStore
	evaluator *evaluation.Evaluator
	baselines []Baseline
	out       io.Writer
	logger    *zap.Logger
}

// NewTrainer creates a new trainer
func NewTrainer(
	opts Options,
	loader *dataset.Loader,
	processor core.TextPreprocessor,
	store *store.ModelStore,
	evaluator *evaluation.Evaluator,
	baselines []Baseline,
	out io.Writer,
	logger *zap.Logger,
) *Trainer {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Trainer{
		opts:      opts,
		loader:    loader,
		processor: processor,
		store:     store,
		evaluator: evaluator,
		baselines: baselines,
		out:       out,
		logger:    logger,
	}
}

// split holds the cleaned and raw texts of one side of the train/test split
type split struct {
	raw    []string
	docs   []string
	labels []core.Label
}

func newSplit(records []core.Record, docs []string, idx []int) split {
	s := split{
		raw:    make([]string, len(idx)),
		docs:   make([]string, len(idx)),
		labels: make([]core.Label, len(idx)),
	}
	for i, j := range idx {
		s.raw[i] = records[j].Text
		s.docs[i] = docs[j]
		s.labels[i] = records[j].Label
	}
	return s
}

// Run executes the pipeline
func (t *Trainer) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	logger := t.logger.With(zap.String("run_id", summary.RunID))

	records, err := t.loader.LoadFile(t.opts.DataPath)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, core.ErrEmptyTrainingSet
	}
	summary.Records = len(records)
	counts := dataset.LabelCounts(records)
	logger.Info("Class distribution",
		zap.Int("negative", counts[core.Negative]),
		zap.Int("neutral", counts[core.Neutral]),
		zap.Int("positive", counts[core.Positive]))

	docs, err := t.preprocess(ctx, records)
	if err != nil {
		return nil, err
	}

	trainIdx, testIdx := dataset.SplitIndices(len(records), t.opts.TestSize, t.opts.Seed)
	train := newSplit(records, docs, trainIdx)
	test := newSplit(records, docs, testIdx)
	summary.TrainSize, summary.TestSize = len(trainIdx), len(testIdx)
	if len(trainIdx) == 0 {
		return nil, core.ErrEmptyTrainingSet
	}

	vec := vectorizer.New(t.opts.Vectorizer)
	if err := vec.Fit(train.docs); err != nil {
		return nil, fmt.Errorf("failed to fit vectorizer: %w", err)
	}
	summary.Features = vec.NumFeatures()
	trainX := vec.Samples(train.docs)
	testX := vec.Samples(test.docs)
	logger.Info("Vectorized dataset",
		zap.Int("train", len(trainX)),
		zap.Int("test", len(testX)),
		zap.Int("features", summary.Features))

	var reports []evaluation.NamedReport
	for _, kind := range t.opts.Models {
		result, report, err := t.trainModel(ctx, logger, kind, vec, trainX, train.labels, testX, test.labels)
		if err != nil {
			return nil, err
		}
		summary.Models = append(summary.Models, *result)
		reports = append(reports, evaluation.NamedReport{Name: kind, Report: report})
	}

	for _, b := range t.baselines {
		report, err := t.evaluateBaseline(ctx, logger, b, test)
		if err != nil {
			logger.Error("Baseline failed", zap.String("predictor", b.Predictor.Name()), zap.Error(err))
			continue
		}
		reports = append(reports, evaluation.NamedReport{Name: resultName(b.Predictor.Name()), Report: report})
	}

	if len(reports) > 0 {
		rows, err := t.evaluator.Compare(reports)
		if err != nil {
			return nil, err
		}
		summary.Comparison = rows
	}

	summary.Duration = time.Since(summary.StartedAt)
	logger.Info("Training run complete",
		zap.Int("models", len(summary.Models)),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

// preprocess cleans every record in parallel chunks
func (t *Trainer) preprocess(ctx context.Context, records []core.Record) ([]string, error) {
	docs := make([]string, len(records))
	chunk := (len(records) + t.opts.Workers - 1) / t.opts.Workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(records); start += chunk {
		end := min(start+chunk, len(records))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%1000 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				docs[i] = t.processor.Preprocess(records[i].Text)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to preprocess dataset: %w", err)
	}
	return docs, nil
}

func (t *Trainer) trainModel(
	ctx context.Context,
	logger *zap.Logger,
	kind string,
	vec *vectorizer.TfidfVectorizer,
	trainX []core.Sample,
	trainY []core.Label,
	testX []core.Sample,
	testY []core.Label,
) (*ModelResult, *evaluation.Report, error) {
	params := classifiers.Params{}.Merge(t.opts.Params[kind])
	result := &ModelResult{Name: kind}

	if grid := t.opts.Grids[kind]; t.opts.GridSearch && len(grid) > 0 {
		logger.Info("Running grid search", zap.String("model", kind), zap.Int("candidates", len(grid.Combinations())))
		gs, err := evaluation.GridSearch(ctx, kind, params, grid, trainX, trainY, t.opts.CVFolds, t.opts.Workers)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to grid search %s: %w", kind, err)
		}
		fmt.Fprintf(t.out, "Best parameters for %s: %s (cv accuracy %.3f)\n", kind, gs.Best, gs.BestScore)
		params = gs.Best
		result.Grid = gs
	}
	result.Params = params

	clf, err := classifiers.New(kind, params)
	if err != nil {
		return nil, nil, err
	}
	started := time.Now()
	if err := clf.Fit(ctx, trainX, trainY); err != nil {
		return nil, nil, fmt.Errorf("failed to train %s: %w", kind, err)
	}
	logger.Info("Trained model",
		zap.String("model", kind),
		zap.Stringer("params", params),
		zap.Duration("elapsed", time.Since(started)))

	yPred := make([]core.Label, len(testX))
	for i, s := range testX {
		if yPred[i], err = core.Predict(clf, s); err != nil {
			return nil, nil, fmt.Errorf("failed to predict with %s: %w", kind, err)
		}
	}
	report, err := t.evaluator.Evaluate(kind, testY, yPred)
	if err != nil {
		return nil, nil, err
	}
	result.Accuracy = report.Accuracy

	if err := t.store.Save(kind, clf, vec); err != nil {
		return nil, nil, err
	}

	if t.opts.CrossValidate {
		cv, err := evaluation.CrossValidate(ctx, func() (core.Classifier, error) {
			return classifiers.New(kind, params)
		}, trainX, trainY, t.opts.CVFolds)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to cross-validate %s: %w", kind, err)
		}
		fmt.Fprintf(t.out, "Cross-validation (%d-fold) accuracy for %s: %s\n", t.opts.CVFolds, kind, cv)
		result.CV = cv
	}

	if t.opts.Examples {
		if err := t.printExamples(ctx, core.NewModelPredictor(kind, t.processor, vec, clf)); err != nil {
			return nil, nil, err
		}
	}
	return result, report, nil
}

func (t *Trainer) printExamples(ctx context.Context, p core.Predictor) error {
	fmt.Fprintf(t.out, "\nExample predictions (%s):\n", p.Name())
	for _, text := range ExampleTexts {
		pred, err := p.Predict(ctx, text)
		if err != nil {
			return err
		}
		fmt.Fprintf(t.out, "Text: %s\nPrediction: %s\nConfidence: %.2f\n\n", text, pred.Label, pred.Confidence())
	}
	return nil
}

// evaluateBaseline scores a predictor on the raw test texts
func (t *Trainer) evaluateBaseline(ctx context.Context, logger *zap.Logger, b Baseline, test split) (*evaluation.Report, error) {
	n := len(test.raw)
	if b.Sample > 0 && b.Sample < n {
		n = b.Sample
	}
	logger.Info("Evaluating baseline", zap.String("predictor", b.Predictor.Name()), zap.Int("texts", n))

	yPred := make([]core.Label, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Workers)
	for i := range n {
		g.Go(func() error {
			pred, err := b.Predictor.Predict(gctx, test.raw[i])
			if err != nil {
				return err
			}
			yPred[i] = pred.Label
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t.evaluator.Evaluate(resultName(b.Predictor.Name()), test.labels[:n], yPred)
}

// resultName turns a predictor name such as "openai/gpt-4o-mini" into a file-safe name
func resultName(name string) string {
	return strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(name)
}
