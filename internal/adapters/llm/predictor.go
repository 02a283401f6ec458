package llm

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/avast/retry-go"
	"github.com/mikey/tweet-sentiment/internal/core"
	"go.uber.org/zap"
)

// Completer sends a prompt to a model and returns its text reply
type Completer interface {
	// Complete returns the model reply for prompt
	Complete(ctx context.Context, prompt string) (string, error)

	// ModelName identifies the remote model
	ModelName() string
}

// TextProcessor prepares tweet text for the prompt
type TextProcessor interface {
	ProcessText(text string, maxSize int) string
}

// Predictor is a zero-shot sentiment predictor backed by an LLM
type Predictor struct {
	provider    string
	completer   Completer
	processor   TextProcessor
	maxTextSize int
	attempts    uint
	delay       time.Duration
	logger      *zap.Logger
}

// NewPredictor creates an LLM predictor. Failed calls and unparsable replies
// are retried up to attempts times in total.
func NewPredictor(
	provider string,
	completer Completer,
	processor TextProcessor,
	maxTextSize int,
	attempts int,
	delay time.Duration,
	logger *zap.Logger,
) *Predictor {
	return &Predictor{
		provider:    provider,
		completer:   completer,
		processor:   processor,
		maxTextSize: maxTextSize,
		attempts:    uint(max(attempts, 1)),
		delay:       delay,
		logger:      logger,
	}
}

// Name returns provider/model
func (p *Predictor) Name() string {
	return p.provider + "/" + p.completer.ModelName()
}

// Predict asks the model for the tweet's sentiment
func (p *Predictor) Predict(ctx context.Context, text string) (*core.Prediction, error) {
	prompt := BuildPrompt(p.processor.ProcessText(text, p.maxTextSize))

	var probs []float64
	var label core.Label
	err := retry.Do(
		func() error {
			reply, err := p.completer.Complete(ctx, prompt)
			if err != nil {
				return err
			}
			probs, label, err = ParseResponse(reply)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(p.attempts),
		retry.Delay(p.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Warn("LLM request failed, retrying",
				zap.String("predictor", p.Name()),
				zap.Uint("attempt", n+1),
				zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to classify with %s: %w", p.Name(), err)
	}

	pred := core.NewPrediction(probs, p.Name())
	pred.Label = label
	return pred, nil
}

// Close releases the underlying client when it holds resources
func (p *Predictor) Close() error {
	if closer, ok := p.completer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
