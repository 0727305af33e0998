// Package plotting renders evaluation figures: images, segmentation
// overlays, ROC curves, t-SNE scatters, and a terminal score chart.
package plotting

import (
	"errors"

	"github.com/tensorplex-labs/evalkit/internal/tsne"
)

var (
	ErrImageRank     = errors.New("plotting: image must be rank 3 (C, H, W) or a rank 4 batch of one")
	ErrChannels      = errors.New("plotting: image must have 1, 3 or 4 channels")
	ErrShapeMismatch = errors.New("plotting: prediction map does not match the image size")
	ErrFormat        = errors.New("plotting: unsupported output format")
	ErrUnknownColor  = errors.New("plotting: label has no palette color")
	ErrNoOutput      = errors.New("plotting: output path is required")
)

// Options is shared by every adapter; each one reads the fields it needs.
type Options struct {
	Axes      []int
	Output    string
	Alpha     float64
	ModelName string
	Width     int
	Height    int
	SizeMM    float64
	Colormap  Colormap
	TSNE      *tsne.TSNE
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Axes:     []int{1, 2, 0},
		Alpha:    0.5,
		Width:    800,
		Height:   600,
		SizeMM:   152,
		Colormap: Hot,
	}
}

func applyOptions(opts []Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithAxes sets the permutation that brings an image into (H, W, C) order.
func WithAxes(axes ...int) Option {
	return func(o *Options) { o.Axes = axes }
}

// WithOutput saves the figure at path. Without it nothing is written.
func WithOutput(path string) Option {
	return func(o *Options) { o.Output = path }
}

// WithAlpha sets the opacity of the overlay layer, from 0 to 1.
func WithAlpha(alpha float64) Option {
	return func(o *Options) { o.Alpha = alpha }
}

func WithModelName(name string) Option {
	return func(o *Options) { o.ModelName = name }
}

// WithSize sets the chart size in pixels.
func WithSize(width, height int) Option {
	return func(o *Options) { o.Width, o.Height = width, height }
}

// WithSizeMM sets the width of exported PDF figures in millimeters.
func WithSizeMM(mm float64) Option {
	return func(o *Options) { o.SizeMM = mm }
}

func WithColormap(cm Colormap) Option {
	return func(o *Options) { o.Colormap = cm }
}

// WithTSNE replaces the default projection used by PlotTSNE.
func WithTSNE(t *tsne.TSNE) Option {
	return func(o *Options) { o.TSNE = t }
}
