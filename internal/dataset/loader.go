package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mikey/tweet-sentiment/internal/core"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// Supported dataset formats
const (
	FormatSentiment140 = "sentiment140"
	FormatTweetEval    = "tweet_eval"
)

// sentiment140Labels maps the 0/2/4 polarity scheme onto sentiment classes
var sentiment140Labels = map[int]core.Label{
	0: core.Negative,
	2: core.Neutral,
	4: core.Positive,
}

// tweetEvalLabels maps the 0/1/2 scheme onto sentiment classes
var tweetEvalLabels = map[int]core.Label{
	0: core.Negative,
	1: core.Neutral,
	2: core.Positive,
}

// Loader reads labeled tweets from CSV files
type Loader struct {
	format   string
	encoding string
	limit    int
	logger   *zap.Logger
}

// NewLoader creates a new dataset loader.
// encoding is "latin1" or "utf8"; limit <= 0 reads every row.
func NewLoader(format, encoding string, limit int, logger *zap.Logger) (*Loader, error) {
	switch format {
	case FormatSentiment140, FormatTweetEval:
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", format)
	}
	switch encoding {
	case "latin1", "utf8":
	default:
		return nil, fmt.Errorf("unsupported dataset encoding: %s", encoding)
	}
	return &Loader{
		format:   format,
		encoding: encoding,
		limit:    limit,
		logger:   logger,
	}, nil
}

// LoadFile reads records from the CSV file at path
func (l *Loader) LoadFile(path string) ([]core.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	records, err := l.Load(f)
	if err != nil {
		return nil, err
	}
	l.logger.Info("Loaded dataset",
		zap.String("path", path),
		zap.String("format", l.format),
		zap.Int("records", len(records)))
	return records, nil
}

// Load reads records from r
func (l *Loader) Load(r io.Reader) ([]core.Record, error) {
	if l.encoding == "latin1" {
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	textCol, labelCol, labels := 5, 0, sentiment140Labels
	if l.format == FormatTweetEval {
		header, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset header: %w", err)
		}
		textCol, labelCol = -1, -1
		for i, name := range header {
			switch strings.ToLower(strings.TrimSpace(name)) {
			case "text":
				textCol = i
			case "label":
				labelCol = i
			}
		}
		if textCol < 0 || labelCol < 0 {
			return nil, fmt.Errorf("dataset header must contain text and label columns, got %v", header)
		}
		labels = tweetEvalLabels
	}

	var records []core.Record
	skipped := 0
	for l.limit <= 0 || len(records) < l.limit {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if len(row) <= textCol || len(row) <= labelCol {
			return nil, fmt.Errorf("line %d: expected at least %d columns, got %d", line, max(textCol, labelCol)+1, len(row))
		}
		raw, err := strconv.Atoi(strings.TrimSpace(row[labelCol]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid label %q: %w", line, row[labelCol], err)
		}
		label, ok := labels[raw]
		if !ok {
			skipped++
			l.logger.Debug("Skipping row with unknown label", zap.Int("line", line), zap.Int("label", raw))
			continue
		}
		records = append(records, core.Record{Text: row[textCol], Label: label})
	}

	if skipped > 0 {
		l.logger.Warn("Skipped rows with unknown labels", zap.Int("skipped", skipped))
	}
	return records, nil
}

// LabelCounts returns the number of records per class
func LabelCounts(records []core.Record) [core.NumClasses]int {
	var counts [core.NumClasses]int
	for _, r := range records {
		counts[r.Label]++
	}
	return counts
}
