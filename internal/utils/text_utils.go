package utils

import (
	"embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

//go:embed stopwords/*.txt
var stopwordFiles embed.FS

var (
	urlPattern        = regexp.MustCompile(`http\S+`)
	mentionPattern    = regexp.MustCompile(`@[\p{L}\p{N}_]+`)
	nonLetterPattern  = regexp.MustCompile(`[^a-zA-ZçğıöşüÇĞİÖŞÜ\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	tokenPattern      = regexp.MustCompile(`\b\w\w+\b`)
)

// TextProcessor provides utilities for processing text
type TextProcessor struct {
	logger    *zap.Logger
	language  string
	stopwords map[string]struct{}
}

// NewTextProcessor creates a new TextProcessor using the stopword list for language
func NewTextProcessor(logger *zap.Logger, language string) (*TextProcessor, error) {
	stopwords, err := LoadStopwords(language)
	if err != nil {
		return nil, err
	}
	return &TextProcessor{
		logger:    logger,
		language:  language,
		stopwords: stopwords,
	}, nil
}

// LoadStopwords reads the embedded stopword list for a language.
// Entries are folded the same way CleanText folds input so they match cleaned words.
func LoadStopwords(language string) (map[string]struct{}, error) {
	data, err := stopwordFiles.ReadFile("stopwords/" + strings.ToLower(language) + ".txt")
	if err != nil {
		return nil, fmt.Errorf("unsupported stopword language %q: %w", language, err)
	}
	words := make(map[string]struct{})
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		words[line] = struct{}{}
		if folded := CleanText(line); folded != "" {
			words[folded] = struct{}{}
		}
	}
	return words, nil
}

// Language returns the stopword language
func (tp *TextProcessor) Language() string {
	return tp.language
}

// CleanText lowercases text, strips URLs, mentions and non-letters, folds
// accented letters to ASCII and collapses whitespace.
// Any Unicode space separates words, not only ASCII whitespace.
func CleanText(text string) string {
	text = strings.Map(normalizeSpace, strings.ToLower(text))
	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = nonLetterPattern.ReplaceAllString(text, "")
	text = foldToASCII(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func normalizeSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	return r
}

func foldToASCII(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// CleanText is the method form of CleanText
func (tp *TextProcessor) CleanText(text string) string {
	return CleanText(text)
}

// RemoveStopwords drops every whitespace-separated word found in the stopword list
func (tp *TextProcessor) RemoveStopwords(text string) string {
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if _, stop := tp.stopwords[w]; !stop {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// Preprocess cleans text and removes stopwords
func (tp *TextProcessor) Preprocess(text string) string {
	return tp.RemoveStopwords(CleanText(text))
}

// Tokenize splits text into lowercase tokens of at least two word characters
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + " [...]"
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	sanitized := strings.ToValidUTF8(text, "")

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// ProcessText truncates and sanitizes text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.SanitizeUTF8(tp.TruncateText(text, maxSize))
}
