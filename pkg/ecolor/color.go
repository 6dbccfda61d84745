package ecolor

// All of this stuff expects to operate on color channel values in the range [0, 1.0]

import(
	"fmt"

	"github.com/abworrall/ninlab/pkg/emath"
)

// An HSV color. Hue is in degrees [0,360), saturation and value in [0,1].
type HSV struct {
	H, S, V float64
}

func (c HSV)String() string {
	return fmt.Sprintf("hsv[%7.3f, %12.10f, %12.10f]", c.H, c.S, c.V)
}

// Luminance uses the ITU-R BT.709 weights. It is what the tone regions,
// dehaze, defringe and grain stages key off; saturation uses a plain mean.
func Luminance(rgb emath.Vec3) float64 {
	return 0.2126*rgb[0] + 0.7152*rgb[1] + 0.0722*rgb[2]
}

// RGBToHSV is the standard hexcone conversion. Achromatic colors (max
// == min, or within 1e-6 of it) get a hue of zero.
func RGBToHSV(rgb emath.Vec3) HSV {
	r, g, b := rgb[0], rgb[1], rgb[2]
	max := r
	if g > max { max = g }
	if b > max { max = b }
	min := r
	if g < min { min = g }
	if b < min { min = b }
	d := max - min

	ret := HSV{V: max}
	if max != 0.0 {
		ret.S = d / max
	}

	if d > 1e-6 {
		var h float64
		switch max {
		case r:
			h = (g - b) / d
			if g < b { h += 6.0 }
		case g:
			h = (b - r) / d + 2.0
		default:
			h = (r - g) / d + 4.0
		}
		ret.H = emath.WrapDegrees(h * 60.0)
	}

	return ret
}

// HSVToRGB is the inverse of RGBToHSV. Hue is wrapped into [0,360)
// first, so callers may pass shifted hues without normalizing them.
func HSVToRGB(c HSV) emath.Vec3 {
	h := emath.WrapDegrees(c.H)
	chroma := c.V * c.S
	hp := h / 60.0
	x := chroma * (1.0 - abs(mod2(hp) - 1.0))
	m := c.V - chroma

	var r, g, b float64
	switch {
	case hp < 1.0: r, g, b = chroma, x, 0
	case hp < 2.0: r, g, b = x, chroma, 0
	case hp < 3.0: r, g, b = 0, chroma, x
	case hp < 4.0: r, g, b = 0, x, chroma
	case hp < 5.0: r, g, b = x, 0, chroma
	default:       r, g, b = chroma, 0, x
	}

	return emath.Vec3{r + m, g + m, b + m}
}

func abs(f float64) float64 {
	if f < 0 { return -f }
	return f
}

// mod2 is f mod 2 for non-negative f
func mod2(f float64) float64 {
	return f - 2.0*float64(int(f/2.0))
}
