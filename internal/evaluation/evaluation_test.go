package evaluation

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/mikey/tweet-sentiment/internal/classifiers"
	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	neg = core.Negative
	neu = core.Neutral
	pos = core.Positive
)

func TestConfusionMatrix(t *testing.T) {
	cm, err := ConfusionMatrix(
		[]core.Label{neg, neg, neu, pos, pos, pos},
		[]core.Label{neg, pos, neu, pos, pos, neu},
	)
	require.NoError(t, err)
	assert.Equal(t, [3][3]int{
		{1, 0, 1},
		{0, 1, 0},
		{0, 1, 2},
	}, cm)

	_, err = ConfusionMatrix([]core.Label{neg}, nil)
	assert.ErrorIs(t, err, core.ErrLengthMismatch)

	_, err = ConfusionMatrix([]core.Label{neg}, []core.Label{core.Label(7)})
	assert.Error(t, err)
}

func TestNewReport(t *testing.T) {
	yTrue := []core.Label{neg, neg, neu, pos, pos, pos}
	yPred := []core.Label{neg, pos, neu, pos, pos, neu}

	r, err := NewReport(yTrue, yPred)
	require.NoError(t, err)

	assert.InDelta(t, 4.0/6.0, r.Accuracy, 1e-12)

	assert.InDelta(t, 1.0, r.Classes[neg].Precision, 1e-12)
	assert.InDelta(t, 0.5, r.Classes[neg].Recall, 1e-12)
	assert.InDelta(t, 2.0/3.0, r.Classes[neg].F1, 1e-12)
	assert.Equal(t, 2, r.Classes[neg].Support)

	assert.InDelta(t, 0.5, r.Classes[neu].Precision, 1e-12)
	assert.InDelta(t, 1.0, r.Classes[neu].Recall, 1e-12)

	assert.InDelta(t, 2.0/3.0, r.Classes[pos].Precision, 1e-12)
	assert.InDelta(t, 2.0/3.0, r.Classes[pos].Recall, 1e-12)
	assert.Equal(t, 3, r.Classes[pos].Support)

	assert.InDelta(t, (1.0+0.5+2.0/3.0)/3, r.MacroAvg.Precision, 1e-12)
	assert.InDelta(t, (2*1.0+1*0.5+3*2.0/3.0)/6, r.WeightedAvg.Precision, 1e-12)
	assert.Equal(t, 6, r.WeightedAvg.Support)
}

func TestNewReportZeroDivision(t *testing.T) {
	r, err := NewReport([]core.Label{neg, neg}, []core.Label{neg, neg})
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Accuracy)
	assert.Zero(t, r.Classes[pos].Precision)
	assert.Zero(t, r.Classes[pos].Recall)
	assert.Zero(t, r.Classes[pos].F1)

	empty, err := NewReport(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Accuracy)
}

func TestReportString(t *testing.T) {
	r, err := NewReport([]core.Label{neg, neu, pos}, []core.Label{neg, neu, pos})
	require.NoError(t, err)
	s := r.String()
	for _, want := range []string{"precision", "negative", "neutral", "positive", "accuracy", "macro avg", "weighted avg", "1.00"} {
		assert.Contains(t, s, want)
	}
}

func TestEvaluatorWritesResults(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	e := NewEvaluator(dir, &out, true, zap.NewNop())

	yTrue := []core.Label{neg, neg, neu, pos, pos, pos}
	yPred := []core.Label{neg, pos, neu, pos, pos, neu}
	report, err := e.Evaluate("logistic_regression", yTrue, yPred)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "logistic_regression classification report")

	loaded, err := ReadReport(filepath.Join(dir, "performance_metrics_logistic_regression.json"))
	require.NoError(t, err)
	assert.InDelta(t, report.Accuracy, loaded.Accuracy, 1e-12)
	assert.Equal(t, report.Classes, loaded.Classes)

	raw, err := os.ReadFile(filepath.Join(dir, "performance_metrics_logistic_regression.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"weighted avg"`)
	assert.Contains(t, string(raw), `"f1-score"`)

	assert.FileExists(t, filepath.Join(dir, "confusion_matrix_logistic_regression.png"))

	other, err := e.Evaluate("svm", yTrue, yTrue)
	require.NoError(t, err)

	rows, err := e.Compare([]NamedReport{{"logistic_regression", report}, {"svm", other}})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "svm", rows[1].Model)
	assert.Equal(t, 1.0, rows[1].Accuracy)

	f, err := os.Open(filepath.Join(dir, "model_comparison.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Model", "Accuracy", "F1-Score", "Precision", "Recall"}, records[0])
	assert.Equal(t, []string{"svm", "1", "1", "1", "1"}, records[2])

	assert.FileExists(t, filepath.Join(dir, "model_comparison.png"))
}

func TestGridCombinations(t *testing.T) {
	combos := Grid{"epochs": {5, 10}, "c": {0.1, 1}, "unused": nil}.Combinations()
	assert.Equal(t, []classifiers.Params{
		{"c": 0.1, "epochs": 5},
		{"c": 0.1, "epochs": 10},
		{"c": 1, "epochs": 5},
		{"c": 1, "epochs": 10},
	}, combos)

	assert.Equal(t, []classifiers.Params{{}}, Grid{}.Combinations())
}

// separable builds samples whose single active feature equals the label
func separable(n int) ([]core.Sample, []core.Label) {
	samples := make([]core.Sample, n)
	labels := make([]core.Label, n)
	for i := range samples {
		l := core.Labels[i%core.NumClasses]
		samples[i] = core.Sample{
			Tokens:   []string{l.String()},
			Features: core.SparseVector{Indices: []int{int(l)}, Values: []float64{1}},
		}
		labels[i] = l
	}
	return samples, labels
}

func TestCrossValidate(t *testing.T) {
	samples, labels := separable(30)
	res, err := CrossValidate(context.Background(), func() (core.Classifier, error) {
		return classifiers.New(classifiers.KindNaiveBayes, nil)
	}, samples, labels, 5)
	require.NoError(t, err)
	assert.Len(t, res.Scores, 5)
	assert.Equal(t, 1.0, res.Mean)
	assert.Zero(t, res.Std)
	assert.Equal(t, "1.000 (+/- 0.000)", res.String())

	_, err = CrossValidate(context.Background(), nil, samples[:1], labels[:1], 5)
	assert.Error(t, err)
	_, err = CrossValidate(context.Background(), nil, nil, nil, 5)
	assert.ErrorIs(t, err, core.ErrEmptyTrainingSet)
}

func TestGridSearch(t *testing.T) {
	samples, labels := separable(30)
	grid := Grid{"epochs": {0, 30}}

	res, err := GridSearch(context.Background(), classifiers.KindLogisticRegression,
		classifiers.Params{"learning_rate": 0.5}, grid, samples, labels, 3, 2)
	require.NoError(t, err)
	require.Len(t, res.Scores, 2)
	assert.Equal(t, 30.0, res.Best["epochs"])
	assert.Equal(t, 0.5, res.Best["learning_rate"])
	assert.Equal(t, 1.0, res.BestScore)

	_, err = GridSearch(context.Background(), "boosting", nil, grid, samples, labels, 3, 2)
	assert.ErrorIs(t, err, core.ErrUnknownModel)
}
