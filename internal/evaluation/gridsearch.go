package evaluation

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/mikey/tweet-sentiment/internal/classifiers"
	"github.com/mikey/tweet-sentiment/internal/core"
	"golang.org/x/sync/errgroup"
)

// Grid maps a hyperparameter name to the values to try
type Grid map[string][]float64

// Combinations expands the grid into every parameter set.
// Keys are iterated in sorted order with the last key varying fastest.
func (g Grid) Combinations() []classifiers.Params {
	keys := make([]string, 0, len(g))
	for k, values := range g {
		if len(values) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	combos := []classifiers.Params{{}}
	for _, k := range keys {
		next := make([]classifiers.Params, 0, len(combos)*len(g[k]))
		for _, base := range combos {
			for _, v := range g[k] {
				next = append(next, base.Merge(classifiers.Params{k: v}))
			}
		}
		combos = next
	}
	return combos
}

// GridScore is the cross-validated accuracy of one parameter set
type GridScore struct {
	Params classifiers.Params
	CV     *CVResult
}

// GridResult holds every evaluated combination and the winner
type GridResult struct {
	Best      classifiers.Params
	BestScore float64
	Scores    []GridScore
}

// GridSearch cross-validates every combination of grid on top of base and
// returns the parameters with the best mean accuracy. Ties go to the
// combination that comes first in grid order.
func GridSearch(
	ctx context.Context,
	kind string,
	base classifiers.Params,
	grid Grid,
	samples []core.Sample,
	labels []core.Label,
	k int,
	workers int,
) (*GridResult, error) {
	if _, err := classifiers.New(kind, base); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	combos := grid.Combinations()
	scores := make([]GridScore, len(combos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, combo := range combos {
		params := base.Merge(combo)
		g.Go(func() error {
			cv, err := CrossValidate(gctx, func() (core.Classifier, error) {
				return classifiers.New(kind, params)
			}, samples, labels, k)
			if err != nil {
				return fmt.Errorf("failed to evaluate %s with %s: %w", kind, params, err)
			}
			scores[i] = GridScore{Params: params, CV: cv}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].CV.Mean > scores[best].CV.Mean {
			best = i
		}
	}
	return &GridResult{
		Best:      scores[best].Params,
		BestScore: scores[best].CV.Mean,
		Scores:    scores,
	}, nil
}
