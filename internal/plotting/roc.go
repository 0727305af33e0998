package plotting

import (
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/tensorplex-labs/evalkit/internal/metrics"
)

var (
	rocCurveColor  = drawing.ColorFromHex("ff8c00")
	rocChanceColor = drawing.ColorFromHex("000080")
)

// PlotROC computes the ROC curve and its area. When an output path is set
// the curve is drawn against the no-skill diagonal and saved as PNG or SVG.
// The area is returned either way.
func PlotROC(labels []int, scores []float64, opts ...Option) (float64, error) {
	curve, err := metrics.ROCCurve(labels, scores)
	if err != nil {
		return 0, err
	}
	return PlotROCCurve(curve, opts...)
}

// PlotROCCurve is PlotROC for a curve that was already computed.
func PlotROCCurve(curve metrics.ROC, opts ...Option) (float64, error) {
	o := applyOptions(opts)

	auc, err := curve.AUC()
	if err != nil {
		return 0, err
	}

	if o.Output == "" {
		return auc, nil
	}

	graph := rocChart(curve, auc, o)
	if err := renderChart(graph, o.Output); err != nil {
		return auc, err
	}
	return auc, nil
}

func rocChart(curve metrics.ROC, auc float64, o Options) *chart.Chart {
	graph := &chart.Chart{
		Title:  strings.TrimSpace("Receiver operating characteristic " + o.ModelName),
		Width:  o.Width,
		Height: o.Height,
		XAxis: chart.XAxis{
			Name:  "False Positive Rate",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		YAxis: chart.YAxis{
			Name:  "True Positive Rate",
			Range: &chart.ContinuousRange{Min: 0, Max: 1.05},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("ROC curve (area = %0.2f)", auc),
				XValues: curve.FPR,
				YValues: curve.TPR,
				Style: chart.Style{
					StrokeColor: rocCurveColor,
					StrokeWidth: 2,
				},
			},
			chart.ContinuousSeries{
				Name:    "Chance",
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style: chart.Style{
					StrokeColor:     rocChanceColor,
					StrokeWidth:     2,
					StrokeDashArray: []float64{5, 5},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	return graph
}
