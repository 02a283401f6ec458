// Package llm classifies tweets by prompting a large language model
package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mikey/tweet-sentiment/internal/core"
)

const promptFormat = `You are a sentiment classification system. Classify the sentiment of the following tweet as negative, neutral or positive.
Respond with a JSON object containing:
- label: string ("negative", "neutral" or "positive")
- negative: number between 0 and 1 (probability the tweet is negative)
- neutral: number between 0 and 1 (probability the tweet is neutral)
- positive: number between 0 and 1 (probability the tweet is positive)

Tweet:
%s

Respond only with the JSON object and nothing else.`

// SystemPrompt is sent as the system message where the provider supports one
const SystemPrompt = "You are a sentiment classification system. Respond only with JSON."

// BuildPrompt formats the classification prompt for a tweet
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptFormat, text)
}

// Response is the JSON answer expected from the model
type Response struct {
	Label    string  `json:"label"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Positive float64 `json:"positive"`
}

// ParseResponse extracts the JSON answer from a model reply and returns
// normalized class probabilities. The stated label wins over the argmax when
// they disagree; without usable probabilities the label gets all the mass.
func ParseResponse(text string) ([]float64, core.Label, error) {
	var resp Response
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		start := strings.IndexByte(text, '{')
		end := strings.LastIndexByte(text, '}')
		if start < 0 || end <= start {
			return nil, 0, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
			return nil, 0, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}

	probs := []float64{resp.Negative, resp.Neutral, resp.Positive}
	sum := 0.0
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 {
			probs[i] = 0
		}
		sum += probs[i]
	}

	label, err := core.ParseLabel(resp.Label)
	switch {
	case err != nil && sum == 0:
		return nil, 0, fmt.Errorf("LLM response has neither a label nor probabilities: %w", err)
	case err != nil:
		label = core.ArgMax(probs)
	case sum == 0:
		probs[label] = 1
		sum = 1
	}

	for i := range probs {
		probs[i] /= sum
	}
	return probs, label, nil
}
