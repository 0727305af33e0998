package evaluation

import (
	"fmt"
	"math"

	"github.com/tensorplex-labs/evalkit/internal/array"
	"github.com/tensorplex-labs/evalkit/internal/plotting"
	"github.com/tensorplex-labs/evalkit/internal/report"
	"github.com/tensorplex-labs/evalkit/internal/tensor"
)

const (
	clusterSpread   = 6.0
	scoreSeparation = 1.5
	syntheticImage  = 32
)

// SyntheticInput draws a labelled dataset from the seeded generators: n binary
// labels with overlapping logistic scores, n embeddings in dims dimensions
// clustered by class, and one segmentation sample whose prediction peaks at
// a blob in the image. The draws are reproducible after seeding.
func SyntheticInput(n, dims, classes int) (*report.EvalInput, error) {
	if n < 2 || dims < 1 {
		return nil, fmt.Errorf("synthetic input: need at least 2 samples and 1 dimension, got %d and %d", n, dims)
	}
	if classes < 1 || classes > len(plotting.Palette) {
		return nil, fmt.Errorf("synthetic input: classes must be between 1 and %d, got %d", len(plotting.Palette), classes)
	}

	in := &report.EvalInput{
		Labels:          make([]int, n),
		Scores:          make([]float64, n),
		Embeddings:      make([][]float64, n),
		EmbeddingLabels: make([]int, n),
	}

	// scores are drawn like model outputs, from the tensor generator
	noise, err := tensor.Randn(n).Values()
	if err != nil {
		return nil, err
	}
	for i := range in.Labels {
		label := i % 2
		shift := -scoreSeparation
		if label == 1 {
			shift = scoreSeparation
		}
		in.Labels[i] = label
		in.Scores[i] = 1 / (1 + math.Exp(-(noise[i] + shift)))
	}

	points := array.Randn(n, dims).Raw()
	for i := range in.Embeddings {
		class := i % classes
		row := points[i*dims : (i+1)*dims]
		row[class%dims] += clusterSpread * float64(class)
		in.Embeddings[i] = row
		in.EmbeddingLabels[i] = class
	}

	in.Segmentations = []report.SegmentationSample{syntheticSegmentation(syntheticImage)}
	return in, nil
}

func syntheticSegmentation(size int) report.SegmentationSample {
	img := array.Rand(3, size, size).Raw()
	pred := make([]float64, size*size)

	center := float64(size) / 2
	sigma := float64(size) / 6
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			v := math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
			pred[y*size+x] = v
			// brighten the red channel under the blob
			img[y*size+x] = math.Min(1, img[y*size+x]*0.5+v*0.5)
		}
	}

	return report.SegmentationSample{
		Image:      report.Tensor{Shape: []int{3, size, size}, Data: img},
		Prediction: report.Tensor{Shape: []int{1, size, size}, Data: pred},
	}
}
