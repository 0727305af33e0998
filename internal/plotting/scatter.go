package plotting

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/evalkit/internal/array"
	"github.com/tensorplex-labs/evalkit/internal/tsne"
)

// Palette colors points by integer label: blue, red, cyan, yellow.
var Palette = []drawing.Color{
	{R: 0, G: 0, B: 255, A: 255},
	{R: 255, G: 0, B: 0, A: 255},
	{R: 0, G: 191, B: 191, A: 255},
	{R: 191, G: 191, B: 0, A: 255},
}

// PlotTSNE shuffles the samples, keeping labels aligned, projects the
// embeddings to two dimensions and saves a scatter colored by label.
func PlotTSNE(labels []int, embeds *mat.Dense, path string, opts ...Option) error {
	o := applyOptions(opts)
	if path == "" {
		return ErrNoOutput
	}
	if _, err := rendererFor(path); err != nil {
		return err
	}

	n, dims := embeds.Dims()
	if len(labels) != n {
		return fmt.Errorf("%w: %d labels for %d embeddings", ErrShapeMismatch, len(labels), n)
	}
	for i, l := range labels {
		if l < 0 || l >= len(Palette) {
			return fmt.Errorf("%w: label %d at index %d", ErrUnknownColor, l, i)
		}
	}

	rows := make([][]float64, n)
	shuffled := append([]int(nil), labels...)
	for i := range rows {
		rows[i] = mat.Row(nil, i, embeds)
	}
	array.ShuffleAligned(n, func(i, j int) {
		rows[i], rows[j] = rows[j], rows[i]
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	x := mat.NewDense(n, dims, nil)
	for i, row := range rows {
		x.SetRow(i, row)
	}

	model := o.TSNE
	if model == nil {
		model = tsne.New(tsne.WithVerbose(true))
	}
	if model.Components != 2 {
		return fmt.Errorf("%w: scatter needs 2 components, got %d", tsne.ErrParams, model.Components)
	}
	projected, err := model.FitTransform(x)
	if err != nil {
		return err
	}

	graph := scatterChart(mat.Col(nil, 0, projected), mat.Col(nil, 1, projected), shuffled, o)
	return renderChart(graph, path)
}

func scatterChart(xs, ys []float64, labels []int, o Options) *chart.Chart {
	return &chart.Chart{
		Width:  o.Width,
		Height: o.Height,
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    3,
					DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
						return Palette[labels[index]]
					},
				},
			},
		},
	}
}
