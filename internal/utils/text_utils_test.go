package utils

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var cleanShape = regexp.MustCompile(`^([a-z]+( [a-z]+)*)?$`)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "I LOVE This", "i love this"},
		{"strips urls", "check http://t.co/abc and https://x.y/z?q=1 now", "check and now"},
		{"strips mentions", "@user_1 hello @Ayşe", "hello"},
		{"strips digits and punctuation", "Great!!! 10/10 :) #win", "great win"},
		{"folds turkish letters", "Çok güzel bir gün", "cok guzel bir gun"},
		{"collapses whitespace", "  too \t many\n\nspaces  ", "too many spaces"},
		{"no-break space", "great\u00a0day", "great day"},
		{"em space", "great\u2003day", "great day"},
		{"ideographic space", "great\u3000day", "great day"},
		{"vertical tab", "great\vday", "great day"},
		{"url ends at no-break space", "see http://t.co/x\u00a0now", "see now"},
		{"empty", "", ""},
		{"only noise", "@a http://b 123 !!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestCleanTextShape(t *testing.T) {
	inputs := []string{
		"RT @someone: Check THIS out → https://example.com/path #awesome 😀😀",
		"İstanbul'da hava çok güzel!!! ŞİMDİ gel",
		"naïve café résumé ﬁnance",
		"tabs\tand non-breaking spaces",
		"日本語のテキスト mixed with english",
		"@@@ ### $$$",
		"\xff\xfe invalid bytes",
	}
	for _, in := range inputs {
		out := CleanText(in)
		assert.Regexp(t, cleanShape, out, "input %q", in)
		assert.NotContains(t, out, "http")
		assert.NotContains(t, out, "@")
	}
}

func TestRemoveStopwords(t *testing.T) {
	tp, err := NewTextProcessor(zap.NewNop(), "english")
	require.NoError(t, err)

	assert.Equal(t, "love product amazing", tp.RemoveStopwords("i love this product it is amazing"))
	assert.Equal(t, "", tp.RemoveStopwords("the and of"))
	assert.Equal(t, "", tp.RemoveStopwords(""))
}

func TestRemoveStopwordsTurkishFolded(t *testing.T) {
	tp, err := NewTextProcessor(zap.NewNop(), "turkish")
	require.NoError(t, err)

	assert.Equal(t, "film guzel", tp.Preprocess("Bu film çok güzel ve için"))
}

func TestNewTextProcessorUnknownLanguage(t *testing.T) {
	_, err := NewTextProcessor(zap.NewNop(), "klingon")
	assert.Error(t, err)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"love", "it", "so", "much"}, Tokenize("I love it so much"))
	assert.Empty(t, Tokenize("a b c"))
}

func TestProcessText(t *testing.T) {
	tp, err := NewTextProcessor(zap.NewNop(), "english")
	require.NoError(t, err)

	long := strings.Repeat("ğ", 10)
	out := tp.ProcessText(long, 5)
	assert.True(t, strings.HasPrefix(out, "ğğ"))
	assert.True(t, strings.HasSuffix(out, "[...]"))
	assert.Equal(t, "short", tp.ProcessText("short", 100))
	assert.Equal(t, "ab", tp.SanitizeUTF8("a\xffb"))
}
