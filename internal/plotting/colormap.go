package plotting

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Colormap maps a value in [0, 1] to a color. Values outside are clipped.
type Colormap func(v float64) color.NRGBA

type anchor struct {
	at float64
	c  colorful.Color
}

func segmented(blend func(a, b colorful.Color, t float64) colorful.Color, anchors ...anchor) Colormap {
	return func(v float64) color.NRGBA {
		v = clip01(v)
		for i := 1; i < len(anchors); i++ {
			lo, hi := anchors[i-1], anchors[i]
			if v <= hi.at {
				t := 0.0
				if hi.at > lo.at {
					t = (v - lo.at) / (hi.at - lo.at)
				}
				return toNRGBA(blend(lo.c, hi.c, t))
			}
		}
		return toNRGBA(anchors[len(anchors)-1].c)
	}
}

func blendRgb(a, b colorful.Color, t float64) colorful.Color { return a.BlendRgb(b, t) }

func blendLab(a, b colorful.Color, t float64) colorful.Color { return a.BlendLab(b, t) }

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Hot runs black, red, yellow, white with the breakpoints of the usual
// "hot" heat map.
var Hot = segmented(blendRgb,
	anchor{0, colorful.Color{R: 0.0416, G: 0, B: 0}},
	anchor{0.365079, colorful.Color{R: 1, G: 0, B: 0}},
	anchor{0.746032, colorful.Color{R: 1, G: 1, B: 0}},
	anchor{1, colorful.Color{R: 1, G: 1, B: 1}},
)

var Viridis = segmented(blendLab,
	anchor{0, mustHex("#440154")},
	anchor{0.25, mustHex("#3b528b")},
	anchor{0.5, mustHex("#21918c")},
	anchor{0.75, mustHex("#5ec962")},
	anchor{1, mustHex("#fde725")},
)

var Gray = segmented(blendRgb,
	anchor{0, colorful.Color{}},
	anchor{1, colorful.Color{R: 1, G: 1, B: 1}},
)

// mustHex parses a colormap anchor literal.
func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func clip01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
