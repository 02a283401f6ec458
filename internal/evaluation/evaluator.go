package evaluation

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mikey/tweet-sentiment/internal/core"
	"go.uber.org/zap"
)

// NamedReport pairs a model name with its report
type NamedReport struct {
	Name   string
	Report *Report
}

// ComparisonRow is one line of the model comparison table.
// Precision, recall and F1 are weighted averages.
type ComparisonRow struct {
	Model     string
	Accuracy  float64
	F1        float64
	Precision float64
	Recall    float64
}

// Evaluator prints reports and writes result files under a directory
type Evaluator struct {
	dir    string
	out    io.Writer
	plots  bool
	logger *zap.Logger
}

// NewEvaluator creates an evaluator writing to dir and printing reports to out
func NewEvaluator(dir string, out io.Writer, plots bool, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		dir:    dir,
		out:    out,
		plots:  plots,
		logger: logger,
	}
}

// Dir returns the results directory
func (e *Evaluator) Dir() string {
	return e.dir
}

// Evaluate scores predictions, prints the report and saves the metrics and confusion matrix
func (e *Evaluator) Evaluate(name string, yTrue, yPred []core.Label) (*Report, error) {
	report, err := NewReport(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	cm, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(e.out, "\n%s classification report:\n%s", name, report)

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	metricsPath := filepath.Join(e.dir, "performance_metrics_"+name+".json")
	data, err := json.MarshalIndent(report, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode metrics: %w", err)
	}
	if err := os.WriteFile(metricsPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metrics: %w", err)
	}
	e.logger.Info("Saved performance metrics", zap.String("path", metricsPath))

	if e.plots {
		cmPath := filepath.Join(e.dir, "confusion_matrix_"+name+".png")
		if err := SaveConfusionMatrixPlot(cm, "Confusion Matrix - "+name, cmPath); err != nil {
			return nil, err
		}
		e.logger.Info("Saved confusion matrix", zap.String("path", cmPath))
	}

	return report, nil
}

// Compare tabulates the reports, writing model_comparison.csv and its chart
func (e *Evaluator) Compare(results []NamedReport) ([]ComparisonRow, error) {
	rows := make([]ComparisonRow, len(results))
	for i, r := range results {
		rows[i] = ComparisonRow{
			Model:     r.Name,
			Accuracy:  r.Report.Accuracy,
			F1:        r.Report.WeightedAvg.F1,
			Precision: r.Report.WeightedAvg.Precision,
			Recall:    r.Report.WeightedAvg.Recall,
		}
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	csvPath := filepath.Join(e.dir, "model_comparison.csv")
	if err := writeComparisonCSV(csvPath, rows); err != nil {
		return nil, err
	}
	e.logger.Info("Saved model comparison table", zap.String("path", csvPath))

	if e.plots && len(rows) > 0 {
		chartPath := filepath.Join(e.dir, "model_comparison.png")
		if err := SaveComparisonPlot(rows, chartPath); err != nil {
			return nil, err
		}
		e.logger.Info("Saved model comparison chart", zap.String("path", chartPath))
	}

	return rows, nil
}

func writeComparisonCSV(path string, rows []ComparisonRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create comparison table: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	records := [][]string{{"Model", "Accuracy", "F1-Score", "Precision", "Recall"}}
	for _, r := range rows {
		records = append(records, []string{
			r.Model,
			formatScore(r.Accuracy),
			formatScore(r.F1),
			formatScore(r.Precision),
			formatScore(r.Recall),
		})
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write comparison table: %w", err)
	}
	return f.Close()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ReadReport loads a report saved by Evaluate
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics: %w", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode metrics: %w", err)
	}
	return &report, nil
}
