package factory

import (
	"context"
	"fmt"

	"github.com/mikey/tweet-sentiment/internal/adapters/bedrock"
	"github.com/mikey/tweet-sentiment/internal/adapters/gemini"
	"github.com/mikey/tweet-sentiment/internal/adapters/llm"
	"github.com/mikey/tweet-sentiment/internal/adapters/openai"
	"github.com/mikey/tweet-sentiment/internal/config"
	"github.com/mikey/tweet-sentiment/internal/utils"
	"go.uber.org/zap"
)

// LLMFactory creates zero-shot LLM predictors
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreatePredictor creates an LLM predictor for the configured provider
func (f *LLMFactory) CreatePredictor(ctx context.Context) (*llm.Predictor, error) {
	llmCfg, err := f.cfg.GetLLM()
	if err != nil {
		return nil, err
	}

	var completer llm.Completer
	var maxTextSize int
	switch llmCfg.Provider {
	case "bedrock":
		client, err := bedrock.NewFactory(f.cfg, f.logger).CreateClient(ctx)
		if err != nil {
			return nil, err
		}
		completer, maxTextSize = client, f.cfg.GetBedrock().MaxTextSize
	case "gemini":
		client, err := gemini.NewFactory(f.cfg, f.logger).CreateClient(ctx)
		if err != nil {
			return nil, err
		}
		completer, maxTextSize = client, f.cfg.GetGemini().MaxTextSize
	case "openai":
		client, err := openai.NewFactory(f.cfg, f.logger).CreateClient()
		if err != nil {
			return nil, err
		}
		completer, maxTextSize = client, f.cfg.GetOpenAI().MaxTextSize
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmCfg.Provider)
	}

	return llm.NewPredictor(
		llmCfg.Provider,
		completer,
		f.textProcessor,
		maxTextSize,
		llmCfg.RetryAttempts,
		llmCfg.RetryDelay,
		f.logger,
	), nil
}
