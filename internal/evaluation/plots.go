package evaluation

import (
	"fmt"
	"strconv"

	"github.com/mikey/tweet-sentiment/internal/core"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// confusionGrid adapts a confusion matrix to plotter.GridXYZ.
// Row 0 of the plot is the last class so that the first class is drawn on top.
type confusionGrid [core.NumClasses][core.NumClasses]int

func (g *confusionGrid) Dims() (c, r int)   { return core.NumClasses, core.NumClasses }
func (g *confusionGrid) Z(c, r int) float64 { return float64(g[core.NumClasses-1-r][c]) }
func (g *confusionGrid) X(c int) float64    { return float64(c) }
func (g *confusionGrid) Y(r int) float64    { return float64(r) }

// SaveConfusionMatrixPlot renders an annotated heat map of cm to path.
// The image format follows the file extension.
func SaveConfusionMatrixPlot(cm [core.NumClasses][core.NumClasses]int, title, path string) error {
	grid := confusionGrid(cm)
	heat := plotter.NewHeatMap(&grid, palette.Heat(12, 1))
	if heat.Max == heat.Min {
		heat.Max = heat.Min + 1
	}

	names := core.LabelNames()
	var xy plotter.XYLabels
	xTicks := make([]plot.Tick, core.NumClasses)
	yTicks := make([]plot.Tick, core.NumClasses)
	for i := 0; i < core.NumClasses; i++ {
		xTicks[i] = plot.Tick{Value: float64(i), Label: names[i]}
		yTicks[i] = plot.Tick{Value: float64(i), Label: names[core.NumClasses-1-i]}
		for r := 0; r < core.NumClasses; r++ {
			xy.XYs = append(xy.XYs, plotter.XY{X: float64(i), Y: float64(r)})
			xy.Labels = append(xy.Labels, strconv.Itoa(cm[core.NumClasses-1-r][i]))
		}
	}
	annotations, err := plotter.NewLabels(xy)
	if err != nil {
		return fmt.Errorf("failed to create heat map labels: %w", err)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Predicted Label"
	p.Y.Label.Text = "True Label"
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.Add(heat, annotations)

	if err := p.Save(6*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save confusion matrix plot: %w", err)
	}
	return nil
}

// SaveComparisonPlot renders a grouped bar chart of the comparison rows to path
func SaveComparisonPlot(rows []ComparisonRow, path string) error {
	if len(rows) == 0 {
		return fmt.Errorf("no models to compare")
	}

	metrics := []struct {
		name  string
		value func(ComparisonRow) float64
	}{
		{"Accuracy", func(r ComparisonRow) float64 { return r.Accuracy }},
		{"F1-Score", func(r ComparisonRow) float64 { return r.F1 }},
		{"Precision", func(r ComparisonRow) float64 { return r.Precision }},
		{"Recall", func(r ComparisonRow) float64 { return r.Recall }},
	}

	p := plot.New()
	p.Title.Text = "Model Performance Comparison"
	p.Y.Label.Text = "Score"
	p.Y.Min, p.Y.Max = 0, 1
	p.Legend.Top = true

	width := vg.Points(12)
	models := make([]string, len(rows))
	for i, r := range rows {
		models[i] = r.Model
	}

	for m, metric := range metrics {
		values := make(plotter.Values, len(rows))
		for i, r := range rows {
			values[i] = metric.value(r)
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return fmt.Errorf("failed to create %s bars: %w", metric.name, err)
		}
		bars.LineStyle.Width = 0
		bars.Color = plotutil.Color(m)
		bars.Offset = width * vg.Length(2*m-len(metrics)+1) / 2
		p.Add(bars)
		p.Legend.Add(metric.name, bars)
	}
	p.NominalX(models...)

	if err := p.Save(vg.Length(3+len(rows))*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save comparison plot: %w", err)
	}
	return nil
}
