package plotting

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/tensorplex-labs/evalkit/internal/array"
	"github.com/tensorplex-labs/evalkit/internal/scaling"
)

const (
	legendGap   = 10
	legendBar   = 16
	legendLabel = 56
)

// PlotSegmap draws target and lays preds over it as a semi-transparent heat
// map, with a color scale on the right labelled with the prediction range.
// preds may be (H, W) or carry leading dimensions of size one. Its values are
// normalized to their own minimum and maximum; a constant map sits at the
// bottom of the color scale.
func PlotSegmap(target, preds *array.Array, opts ...Option) (image.Image, error) {
	o := applyOptions(opts)

	hwc, err := toHWC(target, o.Axes)
	if err != nil {
		return nil, err
	}
	base, err := hwcToImage(hwc)
	if err != nil {
		return nil, err
	}

	pred, err := squeezeToMap(preds)
	if err != nil {
		return nil, err
	}
	w, h := base.Bounds().Dx(), base.Bounds().Dy()
	if shape := pred.Shape(); shape[0] != h || shape[1] != w {
		return nil, fmt.Errorf("%w: image %dx%d, prediction %v", ErrShapeMismatch, h, w, shape)
	}

	vmin, vmax := pred.Min(), pred.Max()
	norm, err := scaling.ScaleArray(pred)
	if err != nil {
		return nil, err
	}

	heat := image.NewNRGBA(base.Bounds())
	values := norm.Raw()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			heat.SetNRGBA(x, y, o.Colormap(values[y*w+x]))
		}
	}

	blended := imaging.Overlay(base, heat, image.Pt(0, 0), clip01(o.Alpha))
	out := withColorScale(blended, o.Colormap, vmin, vmax)

	if o.Output != "" {
		if err := imaging.Save(out, o.Output); err != nil {
			return nil, fmt.Errorf("save %s: %w", o.Output, err)
		}
	}
	return out, nil
}

func squeezeToMap(a *array.Array) (*array.Array, error) {
	for a.Rank() > 2 {
		squeezed, err := a.Squeeze(0)
		if err != nil {
			return nil, fmt.Errorf("%w: prediction shape %v", ErrShapeMismatch, a.Shape())
		}
		a = squeezed
	}
	if a.Rank() != 2 || a.Size() == 0 {
		return nil, fmt.Errorf("%w: prediction shape %v", ErrShapeMismatch, a.Shape())
	}
	return a, nil
}

// withColorScale widens img with a vertical color bar, vmax on top.
func withColorScale(img image.Image, cm Colormap, vmin, vmax float64) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	dc := gg.NewContext(w+legendGap+legendBar+legendLabel, h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(img, 0, 0)

	barX := w + legendGap
	for y := 0; y < h; y++ {
		v := 1.0
		if h > 1 {
			v = 1 - float64(y)/float64(h-1)
		}
		dc.SetColor(cm(v))
		dc.DrawRectangle(float64(barX), float64(y), legendBar, 1)
		dc.Fill()
	}

	dc.SetColor(color.Black)
	dc.SetLineWidth(1)
	dc.DrawRectangle(float64(barX), 0, legendBar, float64(h))
	dc.Stroke()

	dc.SetFontFace(basicfont.Face7x13)
	labelX := float64(barX + legendBar + 4)
	dc.DrawStringAnchored(fmt.Sprintf("%.3g", vmax), labelX, 0, 0, 1)
	dc.DrawStringAnchored(fmt.Sprintf("%.3g", vmin), labelX, float64(h), 0, 0)

	return dc.Image()
}
