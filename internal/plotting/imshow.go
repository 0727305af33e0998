package plotting

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"

	"github.com/tensorplex-labs/evalkit/internal/array"
)

// Imshow turns a (C, H, W) array, or a batch of one, into an image. The
// axes are permuted with Options.Axes into (H, W, C) order; values are
// clipped to [0, 1]. With WithOutput the image is also written as a PDF.
func Imshow(img *array.Array, opts ...Option) (image.Image, error) {
	o := applyOptions(opts)

	hwc, err := toHWC(img, o.Axes)
	if err != nil {
		return nil, err
	}
	out, err := hwcToImage(hwc)
	if err != nil {
		return nil, err
	}

	if o.Output != "" {
		if err := savePDF(out, pdfPath(o.Output), o.SizeMM); err != nil {
			return nil, fmt.Errorf("save %s: %w", o.Output, err)
		}
	}
	return out, nil
}

// toHWC drops a leading batch of one and permutes the axes.
func toHWC(img *array.Array, axes []int) (*array.Array, error) {
	switch img.Rank() {
	case 3:
	case 4:
		squeezed, err := img.Squeeze(0)
		if err != nil {
			return nil, fmt.Errorf("%w: shape %v", ErrImageRank, img.Shape())
		}
		img = squeezed
	default:
		return nil, fmt.Errorf("%w: shape %v", ErrImageRank, img.Shape())
	}
	return img.Transpose(axes...)
}

func hwcToImage(hwc *array.Array) (*image.NRGBA, error) {
	shape := hwc.Shape()
	h, w, c := shape[0], shape[1], shape[2]
	if c != 1 && c != 3 && c != 4 {
		return nil, fmt.Errorf("%w: got %d", ErrChannels, c)
	}
	if h == 0 || w == 0 {
		return nil, fmt.Errorf("%w: empty image %v", ErrImageRank, shape)
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	values := hwc.Raw()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := values[(y*w+x)*c : (y*w+x+1)*c]
			var col color.NRGBA
			switch c {
			case 1:
				g := to8(px[0])
				col = color.NRGBA{R: g, G: g, B: g, A: 255}
			case 3:
				col = color.NRGBA{R: to8(px[0]), G: to8(px[1]), B: to8(px[2]), A: 255}
			case 4:
				col = color.NRGBA{R: to8(px[0]), G: to8(px[1]), B: to8(px[2]), A: to8(px[3])}
			}
			out.SetNRGBA(x, y, col)
		}
	}
	return out, nil
}

func to8(v float64) uint8 {
	return uint8(clip01(v)*255 + 0.5)
}

func pdfPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return path
	}
	return path + ".pdf"
}

// savePDF places img on a page widthMM wide, keeping its aspect ratio.
func savePDF(img image.Image, path string, widthMM float64) error {
	b := img.Bounds()
	heightMM := widthMM * float64(b.Dy()) / float64(b.Dx())

	c := canvas.New(widthMM, heightMM)
	ctx := canvas.NewContext(c)
	ctx.DrawImage(0, 0, img, canvas.DPMM(float64(b.Dx())/widthMM))

	return renderers.Write(path, c)
}
