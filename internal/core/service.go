package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SentimentService is the core service for sentiment prediction
type SentimentService struct {
	predictor    Predictor
	cache        CacheRepository
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	cacheScope   string
}

// NewSentimentService creates a new sentiment service
func NewSentimentService(
	predictor Predictor,
	cache CacheRepository,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *SentimentService {
	return &SentimentService{
		predictor:    predictor,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
		cacheScope:   cacheScope(predictor),
	}
}

// cacheScope names the predictor in cache keys, including its version when it has one
func cacheScope(predictor Predictor) string {
	if v, ok := predictor.(Versioned); ok && v.Version() != "" {
		return predictor.Name() + "@" + v.Version()
	}
	return predictor.Name()
}

// PredictorName returns the name of the underlying predictor
func (s *SentimentService) PredictorName() string {
	return s.predictor.Name()
}

// CacheKey derives the cache key for a predictor and input text
func CacheKey(predictor, text string) string {
	sum := sha256.Sum256([]byte(predictor + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Predict classifies text, consulting the cache first when enabled
func (s *SentimentService) Predict(ctx context.Context, text string) (*Prediction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	key := CacheKey(s.cacheScope, text)
	if s.cacheEnabled {
		entry, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			s.logger.Debug("Cache hit", zap.String("key", key))
			return &Prediction{
				Label:         entry.Label,
				Probabilities: entry.Probabilities,
				ModelUsed:     entry.ModelUsed,
				ProcessingID:  "cache",
				AnalyzedAt:    time.Now(),
			}, nil
		case !errors.Is(err, ErrCacheMiss):
			s.logger.Warn("Failed to read cache", zap.Error(err))
		}
	}

	prediction, err := s.predictor.Predict(ctx, text)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled {
		now := time.Now()
		entry := &CacheEntry{
			Key:           key,
			ModelUsed:     prediction.ModelUsed,
			Label:         prediction.Label,
			Probabilities: prediction.Probabilities,
			CreatedAt:     now,
			ExpiresAt:     now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return prediction, nil
}
