package factory

import (
	"context"
	"fmt"
	"io"

	"github.com/mikey/tweet-sentiment/internal/adapters/lexicon"
	"github.com/mikey/tweet-sentiment/internal/classifiers"
	"github.com/mikey/tweet-sentiment/internal/config"
	"github.com/mikey/tweet-sentiment/internal/dataset"
	"github.com/mikey/tweet-sentiment/internal/evaluation"
	"github.com/mikey/tweet-sentiment/internal/store"
	"github.com/mikey/tweet-sentiment/internal/training"
	"github.com/mikey/tweet-sentiment/internal/utils"
	"github.com/mikey/tweet-sentiment/internal/vectorizer"
	"go.uber.org/zap"
)

// TrainerFactory creates training runs from configuration
type TrainerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	store         *store.ModelStore
	llmFactory    *LLMFactory
}

// NewTrainerFactory creates a new trainer factory
func NewTrainerFactory(
	cfg *config.Config,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	store *store.ModelStore,
	llmFactory *LLMFactory,
) *TrainerFactory {
	return &TrainerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
		store:         store,
		llmFactory:    llmFactory,
	}
}

// Options assembles the training options from configuration
func (f *TrainerFactory) Options() (training.Options, error) {
	dataCfg := f.cfg.GetData()
	vecCfg := f.cfg.GetVectorizer()
	trainCfg := f.cfg.GetTraining()

	opts := training.Options{
		DataPath: dataCfg.Path,
		TestSize: dataCfg.TestSize,
		Seed:     dataCfg.Seed,
		Vectorizer: vectorizer.Options{
			MaxFeatures: vecCfg.MaxFeatures,
			MinDF:       vecCfg.MinDF,
			SublinearTF: vecCfg.SublinearTF,
		},
		Models:        trainCfg.Models,
		Params:        make(map[string]classifiers.Params),
		Grids:         make(map[string]evaluation.Grid),
		GridSearch:    trainCfg.GridSearch,
		CrossValidate: trainCfg.CrossValidate,
		CVFolds:       trainCfg.CVFolds,
		Workers:       trainCfg.Workers,
		Examples:      trainCfg.Examples,
	}

	for _, kind := range trainCfg.Models {
		if _, err := classifiers.New(kind, nil); err != nil {
			return training.Options{}, err
		}
		opts.Params[kind] = f.cfg.GetModelParams(kind)
		grid, err := f.cfg.GetGrid(kind)
		if err != nil {
			return training.Options{}, fmt.Errorf("invalid grid for %s: %w", kind, err)
		}
		opts.Grids[kind] = grid
	}
	return opts, nil
}

// CreateTrainer creates a trainer writing reports to out
func (f *TrainerFactory) CreateTrainer(ctx context.Context, out io.Writer) (*training.Trainer, error) {
	opts, err := f.Options()
	if err != nil {
		return nil, err
	}

	dataCfg := f.cfg.GetData()
	loader, err := dataset.NewLoader(dataCfg.Format, dataCfg.Encoding, dataCfg.Limit, f.logger)
	if err != nil {
		return nil, err
	}

	resultsCfg := f.cfg.GetResults()
	evaluator := evaluation.NewEvaluator(resultsCfg.Dir, out, resultsCfg.Plots, f.logger)

	var baselines []training.Baseline
	baselineCfg := f.cfg.GetBaselines()
	if baselineCfg.Vader {
		baselines = append(baselines, training.Baseline{
			Predictor: lexicon.NewVaderPredictor(baselineCfg.VaderThreshold),
		})
	}
	if baselineCfg.LLM {
		p, err := f.llmFactory.CreatePredictor(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM baseline: %w", err)
		}
		baselines = append(baselines, training.Baseline{Predictor: p, Sample: baselineCfg.LLMSample})
	}

	return training.NewTrainer(opts, loader, f.textProcessor, f.store, evaluator, baselines, out, f.logger), nil
}
