package factory

import (
	"context"
	"fmt"

	"github.com/mikey/tweet-sentiment/internal/adapters/lexicon"
	"github.com/mikey/tweet-sentiment/internal/config"
	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/mikey/tweet-sentiment/internal/store"
	"github.com/mikey/tweet-sentiment/internal/utils"
	"go.uber.org/zap"
)

// PredictorFactory creates the predictor behind the interactive service
type PredictorFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	store         *store.ModelStore
	llmFactory    *LLMFactory
}

// NewPredictorFactory creates a new predictor factory
func NewPredictorFactory(
	cfg *config.Config,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	store *store.ModelStore,
	llmFactory *LLMFactory,
) *PredictorFactory {
	return &PredictorFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
		store:         store,
		llmFactory:    llmFactory,
	}
}

// CreatePredictor creates a predictor for the configured backend
func (f *PredictorFactory) CreatePredictor(ctx context.Context) (core.Predictor, error) {
	predictorCfg := f.cfg.GetPredictor()

	switch predictorCfg.Backend {
	case "model":
		clf, vec, err := f.store.Load(predictorCfg.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to load model %s: %w", predictorCfg.Model, err)
		}
		version, err := f.store.Fingerprint(predictorCfg.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to fingerprint model %s: %w", predictorCfg.Model, err)
		}
		f.logger.Info("Using trained model",
			zap.String("model", predictorCfg.Model),
			zap.String("kind", clf.Kind()),
			zap.String("version", version),
			zap.Int("features", vec.NumFeatures()))
		return core.NewModelPredictor(predictorCfg.Model, f.textProcessor, vec, clf).WithVersion(version), nil
	case "vader":
		threshold := f.cfg.GetBaselines().VaderThreshold
		f.logger.Info("Using VADER lexicon", zap.Float64("threshold", threshold))
		return lexicon.NewVaderPredictor(threshold), nil
	case "llm":
		p, err := f.llmFactory.CreatePredictor(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM predictor: %w", err)
		}
		f.logger.Info("Using LLM", zap.String("predictor", p.Name()))
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported predictor backend: %s", predictorCfg.Backend)
	}
}
