// Package evaluation runs a model's evaluation outputs through the metric
// and plotting stages and writes a report of the results.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tensorplex-labs/evalkit/internal/array"
	"github.com/tensorplex-labs/evalkit/internal/config"
	"github.com/tensorplex-labs/evalkit/internal/metrics"
	"github.com/tensorplex-labs/evalkit/internal/plotting"
	"github.com/tensorplex-labs/evalkit/internal/report"
	"github.com/tensorplex-labs/evalkit/internal/seed"
	"github.com/tensorplex-labs/evalkit/internal/tensor"
	"github.com/tensorplex-labs/evalkit/internal/tsne"
	"github.com/tensorplex-labs/evalkit/internal/utils/logger"
)

const (
	rocFile    = "roc.png"
	tsneFile   = "tsne.png"
	reportFile = "report.json"
)

var ErrNoInput = errors.New("evaluation: nil input")

type Pipeline struct {
	ModelName    string
	OutputDir    string
	Seed         int64
	Compress     bool
	OverlayAlpha float64
	Width        int
	Height       int
	ImageSizeMM  float64
	TSNE         *tsne.TSNE
	Terminal     io.Writer
}

type PipelineOption func(*Pipeline)

func WithModelName(name string) PipelineOption {
	return func(p *Pipeline) {
		p.ModelName = name
	}
}

func WithOutputDir(dir string) PipelineOption {
	return func(p *Pipeline) {
		p.OutputDir = dir
	}
}

// WithSeed only records the seed in the report; seeding is done by seed.Set.
func WithSeed(s int64) PipelineOption {
	return func(p *Pipeline) {
		p.Seed = s
	}
}

func WithCompression(compress bool) PipelineOption {
	return func(p *Pipeline) {
		p.Compress = compress
	}
}

func WithOverlayAlpha(alpha float64) PipelineOption {
	return func(p *Pipeline) {
		p.OverlayAlpha = alpha
	}
}

func WithPlotSize(width, height int) PipelineOption {
	return func(p *Pipeline) {
		p.Width = width
		p.Height = height
	}
}

func WithImageSizeMM(mm float64) PipelineOption {
	return func(p *Pipeline) {
		p.ImageSizeMM = mm
	}
}

func WithTSNE(t *tsne.TSNE) PipelineOption {
	return func(p *Pipeline) {
		p.TSNE = t
	}
}

// WithTerminal prints the score chart to w.
func WithTerminal(w io.Writer) PipelineOption {
	return func(p *Pipeline) {
		p.Terminal = w
	}
}

// FromConfig turns the environment configuration into pipeline options.
func FromConfig(cfg *config.AppConfig) []PipelineOption {
	return []PipelineOption{
		WithOutputDir(cfg.OutputDir),
		WithSeed(cfg.Seed),
		WithCompression(cfg.Compress),
		WithOverlayAlpha(cfg.OverlayAlpha),
		WithPlotSize(cfg.PlotWidth, cfg.PlotHeight),
		WithImageSizeMM(cfg.ImageSizeMM),
		WithTSNE(tsne.New(
			tsne.WithPerplexity(cfg.Perplexity),
			tsne.WithIterations(cfg.Iterations),
			tsne.WithLearningRate(cfg.LearningRate),
			tsne.WithVerbose(true),
		)),
	}
}

func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		ModelName:    "model",
		OutputDir:    "plots",
		Seed:         seed.DefaultSeed,
		OverlayAlpha: 0.5,
		Width:        800,
		Height:       600,
		ImageSizeMM:  152,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run evaluates in and returns the written report. The context is checked
// between stages; a cancelled run leaves the artifacts of finished stages.
func (p *Pipeline) Run(ctx context.Context, in *report.EvalInput) (*report.EvalReport, error) {
	if in == nil {
		return nil, ErrNoInput
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	modelName := p.ModelName
	if in.ModelName != "" {
		modelName = in.ModelName
	}

	r := &report.EvalReport{
		ModelName:  modelName,
		Seed:       p.Seed,
		CreatedAt:  time.Now().UTC(),
		NumSamples: len(in.Labels),
		Artifacts:  make(map[string]string),
	}

	stages := []Stage{p.rocStage, p.terminalStage, p.tsneStage, p.segmentationStage, p.reportStage}
	if err := runStages(ctx, in, r, stages...); err != nil {
		return nil, err
	}

	return r, nil
}

func (p *Pipeline) rocStage(_ context.Context, in *report.EvalInput, r *report.EvalReport) error {
	curve, err := metrics.ROCCurve(in.Labels, in.Scores)
	if err != nil {
		return err
	}

	path := filepath.Join(p.OutputDir, rocFile)
	auc, err := plotting.PlotROCCurve(curve,
		plotting.WithOutput(path),
		plotting.WithModelName(r.ModelName),
		plotting.WithSize(p.Width, p.Height),
	)
	if err != nil {
		return err
	}

	r.AUC = auc
	r.Positives = curve.Positives
	r.Negatives = curve.Negatives
	r.Curve = report.NewCurve(curve.Points())
	r.Artifacts["roc"] = path

	logger.Sugar().Infow("ROC stage done",
		"auc", auc,
		"positives", curve.Positives,
		"negatives", curve.Negatives,
		"points", len(curve.FPR),
	)
	return nil
}

func (p *Pipeline) terminalStage(_ context.Context, in *report.EvalInput, r *report.EvalReport) error {
	if p.Terminal != nil {
		plotting.PlotScoresTerminal(p.Terminal, in.Scores, in.Labels, r.ModelName+" scores")
	}
	return nil
}

func (p *Pipeline) tsneStage(_ context.Context, in *report.EvalInput, r *report.EvalReport) error {
	if !in.HasEmbeddings() {
		logger.Sugar().Infow("Skipping t-SNE stage", "reason", "no embeddings")
		return nil
	}

	model := p.TSNE
	if model == nil {
		model = tsne.New(tsne.WithVerbose(true))
	}

	path := filepath.Join(p.OutputDir, tsneFile)
	err := plotting.PlotTSNE(in.EmbeddingLabels, in.EmbeddingMatrix(), path,
		plotting.WithTSNE(model),
		plotting.WithSize(p.Width, p.Height),
	)
	if err != nil {
		return err
	}

	kl := model.KLDivergence()
	r.KLDivergence = &kl
	r.Artifacts["tsne"] = path

	logger.Sugar().Infow("t-SNE stage done", "samples", len(in.Embeddings), "kl_divergence", kl)
	return nil
}

func (p *Pipeline) segmentationStage(ctx context.Context, in *report.EvalInput, r *report.EvalReport) error {
	for i, sample := range in.Segmentations {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.renderSegmentation(i, sample, r); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
	}
	return nil
}

// renderSegmentation renders the image as a PDF and the prediction overlay
// as a PNG. Both payloads pass through the tensor bridge like live model
// outputs would.
func (p *Pipeline) renderSegmentation(i int, s report.SegmentationSample, r *report.EvalReport) error {
	img, err := bridged(s.Image)
	if err != nil {
		return fmt.Errorf("image: %w", err)
	}
	pred, err := array.New(s.Prediction.Shape, s.Prediction.Data)
	if err != nil {
		return fmt.Errorf("prediction: %w", err)
	}

	imagePath := filepath.Join(p.OutputDir, fmt.Sprintf("sample_%d", i))
	if _, err := plotting.Imshow(img,
		plotting.WithOutput(imagePath),
		plotting.WithSizeMM(p.ImageSizeMM),
	); err != nil {
		return err
	}

	segmapPath := filepath.Join(p.OutputDir, fmt.Sprintf("segmap_%d.png", i))
	if _, err := plotting.PlotSegmap(img, pred,
		plotting.WithAlpha(p.OverlayAlpha),
		plotting.WithOutput(segmapPath),
	); err != nil {
		return err
	}

	r.Artifacts[fmt.Sprintf("sample_%d", i)] = imagePath + ".pdf"
	r.Artifacts[fmt.Sprintf("segmap_%d", i)] = segmapPath

	logger.Sugar().Infow("Segmentation sample rendered", "index", i, "image", imagePath+".pdf", "segmap", segmapPath)
	return nil
}

func (p *Pipeline) reportStage(_ context.Context, _ *report.EvalInput, r *report.EvalReport) error {
	path := filepath.Join(p.OutputDir, reportFile)
	if p.Compress {
		path += report.CompressedExt
	}
	r.Artifacts["report"] = path
	if err := report.Write(path, r); err != nil {
		return err
	}
	logger.Sugar().Infow("Evaluation report written", "path", path, "auc", r.AUC)
	return nil
}

func bridged(t report.Tensor) (*array.Array, error) {
	raw, err := array.New(t.Shape, t.Data)
	if err != nil {
		return nil, err
	}
	x, err := tensor.FromArray(raw)
	if err != nil {
		return nil, err
	}
	return tensor.ToArray(x)
}
