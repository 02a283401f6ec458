// Package lexicon provides a rule-based VADER sentiment baseline
package lexicon

import (
	"context"
	"regexp"

	"github.com/jonreiter/govader"
	"github.com/mikey/tweet-sentiment/internal/core"
)

// Name is the predictor name used in reports and cache keys
const Name = "vader"

// DefaultThreshold is the compound score beyond which text is polar
const DefaultThreshold = 0.05

var (
	urlPattern     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
)

// VaderPredictor labels text from its VADER compound score and reports the
// negative, neutral and positive proportions as probabilities
type VaderPredictor struct {
	analyzer  *govader.SentimentIntensityAnalyzer
	threshold float64
}

// NewVaderPredictor creates a VADER predictor. A non-positive threshold uses DefaultThreshold.
func NewVaderPredictor(threshold float64) *VaderPredictor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &VaderPredictor{
		analyzer:  govader.NewSentimentIntensityAnalyzer(),
		threshold: threshold,
	}
}

// Name returns the predictor name
func (p *VaderPredictor) Name() string {
	return Name
}

// Predict scores the raw text. Links and mentions are stripped first, the
// lexicon relies on case and punctuation so no further cleaning is applied.
func (p *VaderPredictor) Predict(ctx context.Context, text string) (*core.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text = mentionPattern.ReplaceAllString(urlPattern.ReplaceAllString(text, ""), "")
	scores := p.analyzer.PolarityScores(text)

	probs := []float64{scores.Negative, scores.Neutral, scores.Positive}
	if sum := probs[0] + probs[1] + probs[2]; sum > 0 {
		for i := range probs {
			probs[i] /= sum
		}
	} else {
		probs = []float64{0, 1, 0}
	}

	pred := core.NewPrediction(probs, Name)
	pred.Label = p.Label(scores.Compound)
	return pred, nil
}

// Label maps a compound score to a class
func (p *VaderPredictor) Label(compound float64) core.Label {
	switch {
	case compound >= p.threshold:
		return core.Positive
	case compound <= -p.threshold:
		return core.Negative
	default:
		return core.Neutral
	}
}
