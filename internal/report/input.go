package report

import (
	"fmt"

	"github.com/bytedance/sonic"
	"gonum.org/v1/gonum/mat"
)

// EvalInput is what a model produced on an evaluation set: binary labels
// with scores for the ROC stage and, optionally, embeddings with class
// labels for the t-SNE stage.
type EvalInput struct {
	ModelName       string      `json:"model_name,omitempty"`
	Labels          []int       `json:"labels"`
	Scores          []float64   `json:"scores"`
	Embeddings      [][]float64 `json:"embeddings,omitempty"`
	EmbeddingLabels []int       `json:"embedding_labels,omitempty"`

	Segmentations []SegmentationSample `json:"segmentations,omitempty"`
}

// Tensor is a raw model output: a shape and row-major values.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// SegmentationSample pairs a (C, H, W) image with the model's prediction
// map for it.
type SegmentationSample struct {
	Image      Tensor `json:"image"`
	Prediction Tensor `json:"prediction"`
}

func (t Tensor) validate() error {
	n := 1
	for _, d := range t.Shape {
		if d < 0 {
			return fmt.Errorf("%w: negative dimension in %v", ErrInvalidInput, t.Shape)
		}
		n *= d
	}
	if len(t.Shape) == 0 || n != len(t.Data) {
		return fmt.Errorf("%w: shape %v holds %d values, got %d", ErrInvalidInput, t.Shape, n, len(t.Data))
	}
	return nil
}

func ReadInput(path string) (*EvalInput, error) {
	var in EvalInput
	if err := readJSON(path, &in); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

func WriteInput(path string, in *EvalInput) error {
	data, err := sonic.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	return writeFile(path, data)
}

// Validate checks that the slices line up. Label values themselves are
// checked by the stages that consume them.
func (in *EvalInput) Validate() error {
	if len(in.Labels) == 0 {
		return fmt.Errorf("%w: no labels", ErrInvalidInput)
	}
	if len(in.Labels) != len(in.Scores) {
		return fmt.Errorf("%w: %d labels, %d scores", ErrInvalidInput, len(in.Labels), len(in.Scores))
	}
	for i, s := range in.Segmentations {
		if err := s.Image.validate(); err != nil {
			return fmt.Errorf("segmentation %d image: %w", i, err)
		}
		if err := s.Prediction.validate(); err != nil {
			return fmt.Errorf("segmentation %d prediction: %w", i, err)
		}
	}
	if !in.HasEmbeddings() {
		if len(in.EmbeddingLabels) > 0 {
			return fmt.Errorf("%w: embedding labels without embeddings", ErrInvalidInput)
		}
		return nil
	}
	if len(in.Embeddings) != len(in.EmbeddingLabels) {
		return fmt.Errorf("%w: %d embeddings, %d embedding labels", ErrInvalidInput, len(in.Embeddings), len(in.EmbeddingLabels))
	}
	dims := len(in.Embeddings[0])
	if dims == 0 {
		return fmt.Errorf("%w: empty embedding", ErrInvalidInput)
	}
	for i, row := range in.Embeddings {
		if len(row) != dims {
			return fmt.Errorf("%w: embedding %d has %d values, want %d", ErrInvalidInput, i, len(row), dims)
		}
	}
	return nil
}

func (in *EvalInput) HasEmbeddings() bool { return len(in.Embeddings) > 0 }

// EmbeddingMatrix copies the embeddings into a samples by dims matrix.
func (in *EvalInput) EmbeddingMatrix() *mat.Dense {
	if !in.HasEmbeddings() {
		return nil
	}
	n, dims := len(in.Embeddings), len(in.Embeddings[0])
	m := mat.NewDense(n, dims, nil)
	for i, row := range in.Embeddings {
		m.SetRow(i, row)
	}
	return m
}
