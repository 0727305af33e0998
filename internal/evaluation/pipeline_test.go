package evaluation

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/tensorplex-labs/evalkit/internal/array"
	"github.com/tensorplex-labs/evalkit/internal/config"
	"github.com/tensorplex-labs/evalkit/internal/metrics"
	"github.com/tensorplex-labs/evalkit/internal/report"
	"github.com/tensorplex-labs/evalkit/internal/seed"
	"github.com/tensorplex-labs/evalkit/internal/tensor"
	"github.com/tensorplex-labs/evalkit/internal/tsne"
)

type PipelineTestSuite struct {
	suite.Suite
	dir string
}

func (s *PipelineTestSuite) SetupTest() {
	seed.Set(seed.DefaultConfig())
	s.dir = s.T().TempDir()
}

func (s *PipelineTestSuite) pipeline(opts ...PipelineOption) *Pipeline {
	base := []PipelineOption{
		WithOutputDir(s.dir),
		WithModelName("synthetic"),
		WithPlotSize(320, 240),
		WithTSNE(tsne.New(tsne.WithPerplexity(5), tsne.WithIterations(60))),
	}
	return NewPipeline(append(base, opts...)...)
}

func (s *PipelineTestSuite) TestRun_AllStages() {
	in, err := SyntheticInput(40, 4, 3)
	s.Require().NoError(err)

	var term bytes.Buffer
	r, err := s.pipeline(WithTerminal(&term)).Run(context.Background(), in)
	s.Require().NoError(err)

	want, err := metrics.ROCAUC(in.Labels, in.Scores)
	s.Require().NoError(err)
	s.InDelta(want, r.AUC, 1e-12)
	s.Equal(40, r.NumSamples)
	s.Equal(20, r.Positives)
	s.Equal(20, r.Negatives)
	s.Require().NotEmpty(r.Curve)
	s.Nil(r.Curve[0].Threshold)
	s.Require().NotNil(r.KLDivergence)
	s.Contains(term.String(), "synthetic scores")

	for _, key := range []string{"roc", "tsne", "sample_0", "segmap_0", "report"} {
		path, ok := r.Artifacts[key]
		s.Require().True(ok, key)
		info, err := os.Stat(path)
		s.Require().NoError(err, key)
		s.Positive(info.Size(), key)
	}

	saved, err := report.Read(r.Artifacts["report"])
	s.Require().NoError(err)
	s.Equal(r.AUC, saved.AUC)
	s.Equal(r.Artifacts, saved.Artifacts)
}

func (s *PipelineTestSuite) TestRun_WithoutEmbeddingsSkipsTSNE() {
	in := &report.EvalInput{
		ModelName: "scores-only",
		Labels:    []int{0, 0, 1, 1},
		Scores:    []float64{0.1, 0.4, 0.35, 0.8},
	}

	r, err := s.pipeline(WithCompression(true)).Run(context.Background(), in)
	s.Require().NoError(err)

	s.Equal("scores-only", r.ModelName)
	s.InDelta(0.75, r.AUC, 1e-12)
	s.Nil(r.KLDivergence)
	s.NotContains(r.Artifacts, "tsne")
	s.Equal(filepath.Join(s.dir, "report.json.zst"), r.Artifacts["report"])

	saved, err := report.Read(r.Artifacts["report"])
	s.Require().NoError(err)
	s.Equal("scores-only", saved.ModelName)
}

func (s *PipelineTestSuite) TestRun_Errors() {
	_, err := s.pipeline().Run(context.Background(), nil)
	s.ErrorIs(err, ErrNoInput)

	_, err = s.pipeline().Run(context.Background(), &report.EvalInput{
		Labels: []int{1, 1},
		Scores: []float64{0.3, 0.6},
	})
	s.ErrorIs(err, metrics.ErrSingleClass)

	_, err = s.pipeline().Run(context.Background(), &report.EvalInput{Labels: []int{1}})
	s.ErrorIs(err, report.ErrInvalidInput)
}

func (s *PipelineTestSuite) TestRun_CancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in, err := SyntheticInput(10, 2, 2)
	s.Require().NoError(err)

	_, err = s.pipeline().Run(ctx, in)
	s.ErrorIs(err, context.Canceled)
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func TestSyntheticInput_Reproducible(t *testing.T) {
	seed.Set(seed.DefaultConfig())
	first, err := SyntheticInput(12, 3, 4)
	require.NoError(t, err)

	seed.Set(seed.DefaultConfig())
	second, err := SyntheticInput(12, 3, 4)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NoError(t, first.Validate())
	assert.Equal(t, []int{0, 1, 2, 3}, first.EmbeddingLabels[:4])
}

func TestSyntheticInput_ScoresFollowTensorGenerator(t *testing.T) {
	seed.Set(seed.DefaultConfig())
	base, err := SyntheticInput(12, 3, 2)
	require.NoError(t, err)

	seed.Set(seed.DefaultConfig())
	tensor.ManualSeed(99)
	reseeded, err := SyntheticInput(12, 3, 2)
	require.NoError(t, err)

	assert.NotEqual(t, base.Scores, reseeded.Scores)
	assert.Equal(t, base.Embeddings, reseeded.Embeddings)
	assert.Equal(t, base.Labels, reseeded.Labels)
}

func TestBridged(t *testing.T) {
	img, err := bridged(report.Tensor{Shape: []int{3, 2, 2}, Data: make([]float64, 12)})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 2, 2}, img.Shape())

	_, err = bridged(report.Tensor{Shape: []int{2, 2}, Data: make([]float64, 4)})
	assert.ErrorIs(t, err, tensor.ErrRank)

	_, err = bridged(report.Tensor{Shape: []int{3, 2, 2}, Data: make([]float64, 5)})
	assert.ErrorIs(t, err, array.ErrShape)
}

func TestSyntheticInput_Bounds(t *testing.T) {
	_, err := SyntheticInput(1, 2, 2)
	assert.Error(t, err)

	_, err = SyntheticInput(10, 2, 5)
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.AppConfig{
		SeedEnvConfig:   config.SeedEnvConfig{Seed: 7},
		PlotEnvConfig:   config.PlotEnvConfig{OutputDir: "out", OverlayAlpha: 0.3, PlotWidth: 640, PlotHeight: 480, ImageSizeMM: 100},
		TSNEEnvConfig:   config.TSNEEnvConfig{Perplexity: 12, Iterations: 300},
		ReportEnvConfig: config.ReportEnvConfig{Compress: true},
	}

	p := NewPipeline(FromConfig(cfg)...)
	assert.Equal(t, "out", p.OutputDir)
	assert.Equal(t, int64(7), p.Seed)
	assert.True(t, p.Compress)
	assert.Equal(t, 0.3, p.OverlayAlpha)
	assert.Equal(t, 640, p.Width)
	assert.Equal(t, 480, p.Height)
	assert.Equal(t, 100.0, p.ImageSizeMM)
	require.NotNil(t, p.TSNE)
	assert.Equal(t, 12.0, p.TSNE.Perplexity)
	assert.Equal(t, 300, p.TSNE.Iterations)
}
