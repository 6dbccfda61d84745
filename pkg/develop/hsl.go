package develop

import(
	"math"

	"github.com/abworrall/ninlab/pkg/ecolor"
	"github.com/abworrall/ninlab/pkg/emath"
)

// A band affects hues within this many degrees of its center, fading out smoothly.
const bandHalfWidth = 50.0

// bandWeight is 1.0 at the band's center, falling to zero at bandHalfWidth away.
func bandWeight(hue, center float64) float64 {
	d := math.Mod(math.Abs(hue - center), 360.0)
	d = math.Min(d, 360.0 - d)
	return emath.Smoothstep(emath.Clamp01(1.0 - d/bandHalfWidth))
}

// applyBand adjusts the color by one band's deltas. The weight always
// comes from origHue, the hue before any band touched the pixel, so a
// hue shift by an earlier band can't pull the pixel into (or out of) a
// later one.
func applyBand(c ecolor.HSV, origHue float64, b Band) ecolor.HSV {
	w := bandWeight(origHue, b.Center)

	if active(b.DH) {
		c.H = emath.WrapDegrees(c.H + b.DH*w)
	}
	if active(b.DS) {
		c.S = emath.Clamp01(c.S * (1.0 + b.DS*w))
	}
	if active(b.DL) {
		c.V = emath.Clamp01(c.V + b.DL*w*0.5)
	}
	return c
}

func mixBands(rgb emath.Vec3, bands []Band) emath.Vec3 {
	c := ecolor.RGBToHSV(rgb)
	origHue := c.H
	for _, b := range bands {
		c = applyBand(c, origHue, b)
	}
	return ecolor.HSVToRGB(c)
}
