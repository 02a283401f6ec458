// Package repl provides the interactive command-line front-end for sentiment prediction
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mikey/tweet-sentiment/internal/core"
	"go.uber.org/zap"
)

// Prompt is printed before every line of input
const Prompt = "Enter text for tweet sentiment analysis (type 'q' to quit):"

// Service classifies text
type Service interface {
	Predict(ctx context.Context, text string) (*core.Prediction, error)
}

// REPL reads lines of text and prints their predicted sentiment
type REPL struct {
	service Service
	in      io.Reader
	out     io.Writer
	logger  *zap.Logger
	verbose bool
}

// NewREPL creates a new REPL reading from in and writing to out
func NewREPL(service Service, in io.Reader, out io.Writer, logger *zap.Logger, verbose bool) *REPL {
	return &REPL{
		service: service,
		in:      in,
		out:     out,
		logger:  logger,
		verbose: verbose,
	}
}

// Run loops until the user quits, input ends or ctx is cancelled
func (r *REPL) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(r.out, "\n%s\n> ", Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		text := scanner.Text()

		if strings.EqualFold(strings.TrimSpace(text), "q") {
			fmt.Fprintln(r.out, "\nExiting...")
			return nil
		}

		r.process(ctx, text)
	}
}

// process classifies one line and prints the result
func (r *REPL) process(ctx context.Context, text string) {
	startTime := time.Now()
	prediction, err := r.service.Predict(ctx, text)
	if errors.Is(err, core.ErrEmptyText) {
		fmt.Fprintln(r.out, "Please enter some text!")
		return
	}
	if err != nil {
		r.logger.Error("Failed to predict sentiment", zap.Error(err))
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(r.out, "\nResults:\n")
	fmt.Fprintf(r.out, "Text: %s\n", text)
	fmt.Fprintf(r.out, "Prediction: %s\n", prediction.Label)
	fmt.Fprintf(r.out, "Probabilities:\n")
	fmt.Fprintf(r.out, "- Negative: %.2f%%\n", prediction.Probabilities[core.Negative]*100)
	fmt.Fprintf(r.out, "- Neutral: %.2f%%\n", prediction.Probabilities[core.Neutral]*100)
	fmt.Fprintf(r.out, "- Positive: %.2f%%\n", prediction.Probabilities[core.Positive]*100)

	if r.verbose {
		fmt.Fprintf(r.out, "Model used: %s\n", prediction.ModelUsed)
		fmt.Fprintf(r.out, "Processing time: %v\n", time.Since(startTime))
	}
}
