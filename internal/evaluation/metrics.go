// Package evaluation scores classifiers and writes their results to disk
package evaluation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mikey/tweet-sentiment/internal/core"
)

// ClassMetrics holds the scores of a single class or an average
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

// Report is a per-class classification report
type Report struct {
	Classes     [core.NumClasses]ClassMetrics
	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
}

// ConfusionMatrix counts predictions with rows as true labels and columns as predicted labels
func ConfusionMatrix(yTrue, yPred []core.Label) ([core.NumClasses][core.NumClasses]int, error) {
	var cm [core.NumClasses][core.NumClasses]int
	if len(yTrue) != len(yPred) {
		return cm, fmt.Errorf("%w: %d true labels, %d predictions", core.ErrLengthMismatch, len(yTrue), len(yPred))
	}
	for i, t := range yTrue {
		p := yPred[i]
		if !t.Valid() || !p.Valid() {
			return cm, fmt.Errorf("invalid label at position %d", i)
		}
		cm[t][p]++
	}
	return cm, nil
}

// NewReport computes precision, recall and F1 per class plus their averages.
// Undefined ratios are reported as zero.
func NewReport(yTrue, yPred []core.Label) (*Report, error) {
	cm, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	r := &Report{}
	total, correct := 0, 0
	for c := 0; c < core.NumClasses; c++ {
		tp := cm[c][c]
		predicted, support := 0, 0
		for k := 0; k < core.NumClasses; k++ {
			predicted += cm[k][c]
			support += cm[c][k]
		}
		m := ClassMetrics{
			Precision: ratio(tp, predicted),
			Recall:    ratio(tp, support),
			Support:   support,
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes[c] = m
		total += support
		correct += tp
	}
	r.Accuracy = ratio(correct, total)

	for _, m := range r.Classes {
		r.MacroAvg.Precision += m.Precision / core.NumClasses
		r.MacroAvg.Recall += m.Recall / core.NumClasses
		r.MacroAvg.F1 += m.F1 / core.NumClasses
		if total > 0 {
			w := float64(m.Support) / float64(total)
			r.WeightedAvg.Precision += m.Precision * w
			r.WeightedAvg.Recall += m.Recall * w
			r.WeightedAvg.F1 += m.F1 * w
		}
	}
	r.MacroAvg.Support = total
	r.WeightedAvg.Support = total
	return r, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// MarshalJSON writes the report keyed the way scikit-learn's classification_report does
func (r *Report) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, core.NumClasses+3)
	for i, name := range core.LabelNames() {
		out[name] = r.Classes[i]
	}
	out["accuracy"] = r.Accuracy
	out["macro avg"] = r.MacroAvg
	out["weighted avg"] = r.WeightedAvg
	return json.Marshal(out)
}

// UnmarshalJSON reads a report written by MarshalJSON
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for i, name := range core.LabelNames() {
		if err := json.Unmarshal(raw[name], &r.Classes[i]); err != nil {
			return fmt.Errorf("failed to decode %s metrics: %w", name, err)
		}
	}
	if err := json.Unmarshal(raw["accuracy"], &r.Accuracy); err != nil {
		return fmt.Errorf("failed to decode accuracy: %w", err)
	}
	if err := json.Unmarshal(raw["macro avg"], &r.MacroAvg); err != nil {
		return fmt.Errorf("failed to decode macro avg: %w", err)
	}
	if err := json.Unmarshal(raw["weighted avg"], &r.WeightedAvg); err != nil {
		return fmt.Errorf("failed to decode weighted avg: %w", err)
	}
	return nil
}

// String renders the report as a text table
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%12s %10s %10s %10s %10s\n\n", "", "precision", "recall", "f1-score", "support")
	for i, name := range core.LabelNames() {
		m := r.Classes[i]
		fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", name, m.Precision, m.Recall, m.F1, m.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%12s %10s %10s %10.2f %10d\n", "accuracy", "", "", r.Accuracy, r.MacroAvg.Support)
	for _, row := range []struct {
		name string
		m    ClassMetrics
	}{{"macro avg", r.MacroAvg}, {"weighted avg", r.WeightedAvg}} {
		fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", row.name, row.m.Precision, row.m.Recall, row.m.F1, row.m.Support)
	}
	return b.String()
}
