package bedrock

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPayload(t *testing.T) {
	tests := []struct {
		modelID string
		key     string
	}{
		{"anthropic.claude-3-haiku-20240307-v1:0", "messages"},
		{"us.anthropic.claude-3-5-sonnet-20240620-v1:0", "messages"},
		{"amazon.titan-text-express-v1", "inputText"},
		{"meta.llama3-8b-instruct-v1:0", "prompt"},
	}

	for _, tt := range tests {
		t.Run(tt.modelID, func(t *testing.T) {
			payload, err := buildPayload(tt.modelID, "classify me", 100, 0, 0.9)
			require.NoError(t, err)

			var body map[string]any
			require.NoError(t, json.Unmarshal(payload, &body))
			assert.Contains(t, body, tt.key)
		})
	}
}

func TestExtractText(t *testing.T) {
	text, err := extractText("anthropic.claude-3-haiku", []byte(`{"content":[{"type":"text","text":"{\"label\":\"positive\"}"}]}`))
	require.NoError(t, err)
	assert.Equal(t, `{"label":"positive"}`, text)

	text, err = extractText("amazon.titan-text-lite-v1", []byte(`{"results":[{"outputText":"hello"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	text, err = extractText("meta.llama3", []byte(`{"generation":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "hi", text)

	_, err = extractText("amazon.titan-text-lite-v1", []byte(`{"results":[]}`))
	assert.Error(t, err)

	_, err = extractText("anthropic.claude-v2", []byte(`{"content":[]}`))
	assert.Error(t, err)
}
