package evaluation

import (
	"context"
	"fmt"

	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/mikey/tweet-sentiment/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// ClassifierFactory builds a fresh, unfitted classifier
type ClassifierFactory func() (core.Classifier, error)

// CVResult holds per-fold accuracies and their summary
type CVResult struct {
	Scores []float64
	Mean   float64
	Std    float64
}

// String formats the result as "mean (+/- 2*std)"
func (r *CVResult) String() string {
	return fmt.Sprintf("%.3f (+/- %.3f)", r.Mean, r.Std*2)
}

// CrossValidate scores a classifier by accuracy over k stratified folds
func CrossValidate(ctx context.Context, newClassifier ClassifierFactory, samples []core.Sample, labels []core.Label, k int) (*CVResult, error) {
	if len(samples) == 0 {
		return nil, core.ErrEmptyTrainingSet
	}
	if len(samples) != len(labels) {
		return nil, fmt.Errorf("%w: %d samples, %d labels", core.ErrLengthMismatch, len(samples), len(labels))
	}
	if k < 2 || k > len(samples) {
		return nil, fmt.Errorf("cannot run %d-fold cross-validation over %d samples", k, len(samples))
	}

	folds := dataset.StratifiedKFold(labels, k)
	scores := make([]float64, 0, len(folds))
	for i, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score, err := scoreFold(ctx, newClassifier, samples, labels, fold)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i+1, err)
		}
		scores = append(scores, score)
	}

	mean, std := stat.PopMeanStdDev(scores, nil)
	return &CVResult{Scores: scores, Mean: mean, Std: std}, nil
}

func scoreFold(ctx context.Context, newClassifier ClassifierFactory, samples []core.Sample, labels []core.Label, fold dataset.Fold) (float64, error) {
	clf, err := newClassifier()
	if err != nil {
		return 0, err
	}

	trainX := make([]core.Sample, len(fold.Train))
	trainY := make([]core.Label, len(fold.Train))
	for j, i := range fold.Train {
		trainX[j] = samples[i]
		trainY[j] = labels[i]
	}
	if err := clf.Fit(ctx, trainX, trainY); err != nil {
		return 0, err
	}

	correct := 0
	for _, i := range fold.Test {
		pred, err := core.Predict(clf, samples[i])
		if err != nil {
			return 0, err
		}
		if pred == labels[i] {
			correct++
		}
	}
	return ratio(correct, len(fold.Test)), nil
}
