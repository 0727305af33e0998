package plotting

import (
	"bytes"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/evalkit/internal/array"
	"github.com/tensorplex-labs/evalkit/internal/metrics"
	"github.com/tensorplex-labs/evalkit/internal/tsne"
)

func chwImage(t *testing.T, c, h, w int) *array.Array {
	t.Helper()
	data := make([]float64, c*h*w)
	for i := range data {
		data[i] = float64(i%17) / 16
	}
	a, err := array.New([]int{c, h, w}, data)
	require.NoError(t, err)
	return a
}

func nrgbaAt(img interface{ At(x, y int) color.Color }, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func assertFileNotEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestColormaps(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, Hot(1))
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, Hot(0.365079))
	assert.Equal(t, Hot(0), Hot(-3), "values below range are clipped")
	assert.Equal(t, color.NRGBA{A: 255}, Gray(0))

	top := Viridis(1)
	assert.InDelta(t, 0xfd, top.R, 1)
	assert.InDelta(t, 0xe7, top.G, 1)
	assert.InDelta(t, 0x25, top.B, 1)
}

func TestImshow_TransposesToHWC(t *testing.T) {
	img := chwImage(t, 3, 2, 4)

	out, err := Imshow(img)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Bounds().Dx())
	assert.Equal(t, 2, out.Bounds().Dy())

	px := nrgbaAt(out, 3, 1)
	assert.Equal(t, to8(img.At(0, 1, 3)), px.R)
	assert.Equal(t, to8(img.At(1, 1, 3)), px.G)
	assert.Equal(t, to8(img.At(2, 1, 3)), px.B)
}

func TestImshow_AcceptsBatchOfOne(t *testing.T) {
	img := chwImage(t, 1, 5, 6)
	batched, err := img.Reshape(1, 1, 5, 6)
	require.NoError(t, err)

	out, err := Imshow(batched)
	require.NoError(t, err)
	assert.Equal(t, 6, out.Bounds().Dx())
	assert.Equal(t, 5, out.Bounds().Dy())
}

func TestImshow_Errors(t *testing.T) {
	_, err := Imshow(array.Zeros(2, 3, 4, 4))
	assert.ErrorIs(t, err, ErrImageRank)

	_, err = Imshow(array.Zeros(4, 4))
	assert.ErrorIs(t, err, ErrImageRank)

	_, err = Imshow(array.Zeros(2, 4, 4))
	assert.ErrorIs(t, err, ErrChannels)

	_, err = Imshow(chwImage(t, 3, 2, 2), WithAxes(0, 1))
	assert.ErrorIs(t, err, array.ErrAxes)
}

func TestImshow_SavesPDF(t *testing.T) {
	base := filepath.Join(t.TempDir(), "sample")

	_, err := Imshow(chwImage(t, 3, 8, 8), WithOutput(base), WithSizeMM(60))
	require.NoError(t, err)
	assertFileNotEmpty(t, base+".pdf")
}

func TestPlotSegmap_OverlayAndLegend(t *testing.T) {
	target := chwImage(t, 3, 8, 8)
	predData := make([]float64, 64)
	for i := range predData {
		predData[i] = float64(i)
	}
	preds, err := array.New([]int{1, 8, 8}, predData)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "segmap.png")
	out, err := PlotSegmap(target, preds, WithAlpha(1), WithOutput(path))
	require.NoError(t, err)

	assert.Equal(t, 8+legendGap+legendBar+legendLabel, out.Bounds().Dx())
	assert.Equal(t, 8, out.Bounds().Dy())

	// fully opaque overlay shows the heat map: lowest value top-left,
	// highest bottom-right
	assert.InDelta(t, Hot(0).R, nrgbaAt(out, 0, 0).R, 1)
	assert.InDelta(t, 255, nrgbaAt(out, 7, 7).B, 1)
	assertFileNotEmpty(t, path)
}

func TestPlotSegmap_ConstantPredictionUsesBottomColor(t *testing.T) {
	target := chwImage(t, 3, 4, 4)
	preds, err := array.New([]int{4, 4}, []float64{
		0.7, 0.7, 0.7, 0.7,
		0.7, 0.7, 0.7, 0.7,
		0.7, 0.7, 0.7, 0.7,
		0.7, 0.7, 0.7, 0.7,
	})
	require.NoError(t, err)

	out, err := PlotSegmap(target, preds, WithAlpha(1))
	require.NoError(t, err)

	want := Hot(0)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got := nrgbaAt(out, x, y)
			assert.InDelta(t, want.R, got.R, 1)
			assert.InDelta(t, want.G, got.G, 1)
			assert.InDelta(t, want.B, got.B, 1)
		}
	}
}

func TestPlotSegmap_Errors(t *testing.T) {
	target := chwImage(t, 3, 4, 4)

	_, err := PlotSegmap(target, array.Zeros(5, 4))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = PlotSegmap(target, array.Zeros(2, 4, 4))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = PlotSegmap(target, array.Zeros(4, 4), WithOutput(filepath.Join(t.TempDir(), "missing", "out.png")))
	assert.Error(t, err)
}

func TestPlotROC(t *testing.T) {
	labels := []int{0, 0, 1, 1}
	scores := []float64{0.1, 0.4, 0.35, 0.8}

	auc, err := PlotROC(labels, scores)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, auc, 1e-12)

	dir := t.TempDir()
	for _, name := range []string{"roc.png", "roc.svg"} {
		path := filepath.Join(dir, name)
		auc, err := PlotROC(labels, scores, WithOutput(path), WithModelName("baseline"))
		require.NoError(t, err, name)
		assert.InDelta(t, 0.75, auc, 1e-12)
		assertFileNotEmpty(t, path)
	}

	_, err = PlotROC(labels, scores, WithOutput(filepath.Join(dir, "roc.bmp")))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = PlotROC([]int{1, 1}, []float64{0.2, 0.4})
	assert.ErrorIs(t, err, metrics.ErrSingleClass)
}

func TestPlotROCCurve_MatchesPlotROC(t *testing.T) {
	labels := []int{1, 0, 1, 0, 1}
	scores := []float64{0.9, 0.8, 0.7, 0.2, 0.6}
	curve, err := metrics.ROCCurve(labels, scores)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "curve.svg")
	got, err := PlotROCCurve(curve, WithOutput(path))
	require.NoError(t, err)
	assertFileNotEmpty(t, path)

	want, err := PlotROC(labels, scores)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)

	_, err = PlotROCCurve(metrics.ROC{FPR: []float64{0}, TPR: []float64{0}})
	assert.Error(t, err)
}

func TestRocChart_Annotations(t *testing.T) {
	curve, err := metrics.ROCCurve([]int{0, 1}, []float64{0.2, 0.9})
	require.NoError(t, err)

	graph := rocChart(curve, 1, applyOptions([]Option{WithModelName("resnet")}))
	assert.Equal(t, "Receiver operating characteristic resnet", graph.Title)
	require.Len(t, graph.Series, 2)
	assert.Equal(t, "ROC curve (area = 1.00)", graph.Series[0].GetName())
}

func TestPlotTSNE(t *testing.T) {
	array.Seed(42)
	n, dims := 24, 5
	data := array.Randn(n, dims).Data()
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i % len(Palette)
		for d := 0; d < dims; d++ {
			data[i*dims+d] += float64(labels[i]) * 10
		}
	}
	embeds := mat.NewDense(n, dims, data)
	model := tsne.New(tsne.WithPerplexity(5), tsne.WithIterations(50))

	path := filepath.Join(t.TempDir(), "tsne.png")
	require.NoError(t, PlotTSNE(labels, embeds, path, WithTSNE(model)))
	assertFileNotEmpty(t, path)

	// the caller's slices are left in place
	assert.Equal(t, 0, labels[0])
	assert.Equal(t, data[0], embeds.At(0, 0))
}

func TestPlotTSNE_Errors(t *testing.T) {
	embeds := mat.NewDense(3, 2, []float64{0, 0, 1, 1, 2, 2})

	err := PlotTSNE([]int{0, 1, 4}, embeds, filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorIs(t, err, ErrUnknownColor)

	err = PlotTSNE([]int{0, 1}, embeds, filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	err = PlotTSNE([]int{0, 1, 2}, embeds, "")
	assert.ErrorIs(t, err, ErrNoOutput)

	err = PlotTSNE([]int{0, 1, 2}, embeds, filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorIs(t, err, tsne.ErrPerplexity)
}

func terminalRows(out string) []string {
	var rows []string
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, "|") && strings.HasSuffix(l, ")") {
			rows = append(rows, l)
		}
	}
	return rows
}

func TestPlotScoresTerminal(t *testing.T) {
	fullBar := strings.Repeat("█", maxBarWidth)

	tests := []struct {
		name      string
		scores    []float64
		labels    []int
		wantScale string
		wantFirst string
		wantLast  string
	}{
		{
			name:      "finite scores",
			scores:    []float64{0.9, 0.1, 0.5},
			labels:    []int{1, 0, 1},
			wantScale: "Scale: Min=0.100000, Max=0.900000",
			wantFirst: "▏ (0.1000)",
			wantLast:  fullBar + " (0.9000)",
		},
		{
			name:      "positive infinity",
			scores:    []float64{0.1, math.Inf(1), 0.3, 0.9},
			labels:    []int{0, 1, 0, 1},
			wantScale: "Scale: Min=0.100000, Max=0.900000",
			wantFirst: "▏ (0.1000)",
			wantLast:  fullBar + " (+Inf)",
		},
		{
			name:      "negative infinity with equal finite scores",
			scores:    []float64{0.2, math.Inf(-1), 0.2},
			wantScale: "Scale: Min=0.200000, Max=0.200000",
			wantFirst: "▏ (-Inf)",
			wantLast:  strings.Repeat("█", maxBarWidth/2) + " (0.2000)",
		},
		{
			name:      "no finite score",
			scores:    []float64{math.Inf(1), math.Inf(-1)},
			wantScale: "Scale: Min=NaN, Max=NaN",
			wantFirst: "▏ (-Inf)",
			wantLast:  fullBar + " (+Inf)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NotPanics(t, func() {
				PlotScoresTerminal(&buf, tt.scores, tt.labels, "Validation scores")
			})

			out := buf.String()
			assert.Contains(t, out, "Validation scores (Terminal Plot - Ascending Order)")
			assert.Contains(t, out, tt.wantScale)

			rows := terminalRows(out)
			require.Len(t, rows, len(tt.scores))
			assert.True(t, strings.HasSuffix(rows[0], tt.wantFirst), rows[0])
			assert.True(t, strings.HasSuffix(rows[len(rows)-1], tt.wantLast), rows[len(rows)-1])
		})
	}
}

func TestPlotScoresTerminal_Empty(t *testing.T) {
	var buf bytes.Buffer
	PlotScoresTerminal(&buf, nil, nil, "empty")
	assert.Contains(t, buf.String(), "no scores")
}

func TestBarWidths_StayInRange(t *testing.T) {
	widths := barWidths([]float64{-2, math.Inf(1), 0, math.NaN(), 6, math.Inf(-1)})
	assert.Equal(t, []int{0, maxBarWidth, 12, 0, maxBarWidth, 0}, widths)
}
