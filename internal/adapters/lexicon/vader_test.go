package lexicon

import (
	"context"
	"testing"

	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaderPredictor(t *testing.T) {
	p := NewVaderPredictor(0)
	assert.Equal(t, "vader", p.Name())

	tests := []struct {
		text string
		want core.Label
	}{
		{"I love this product! It's amazing!", core.Positive},
		{"I hate this product, it's terrible!", core.Negative},
		{"The table is in the kitchen.", core.Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			pred, err := p.Predict(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pred.Label)
			assert.Equal(t, "vader", pred.ModelUsed)
			assert.NotEmpty(t, pred.ProcessingID)

			sum := 0.0
			for _, v := range pred.Probabilities {
				sum += v
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		})
	}
}

func TestVaderLabelThreshold(t *testing.T) {
	p := NewVaderPredictor(0.2)
	assert.Equal(t, core.Neutral, p.Label(0.1))
	assert.Equal(t, core.Positive, p.Label(0.2))
	assert.Equal(t, core.Negative, p.Label(-0.5))
}

func TestVaderIgnoresLinksAndMentions(t *testing.T) {
	p := NewVaderPredictor(0)
	pred, err := p.Predict(context.Background(), "@happy https://great.example.com/love the table")
	require.NoError(t, err)
	assert.Equal(t, core.Neutral, pred.Label)
}

func TestVaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewVaderPredictor(0).Predict(ctx, "good")
	assert.ErrorIs(t, err, context.Canceled)
}
