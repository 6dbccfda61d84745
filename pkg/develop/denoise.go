package develop

import(
	"math"

	"github.com/abworrall/ninlab/pkg/ecolor"
	"github.com/abworrall/ninlab/pkg/emath"
)

// A 5x5 gaussian, radius 2, already normalized to sum to 1.0
var denoiseKernel = [5][5]float64{
	{0.0037, 0.0146, 0.0256, 0.0146, 0.0037},
	{0.0146, 0.0586, 0.0952, 0.0586, 0.0146},
	{0.0256, 0.0952, 0.1508, 0.0952, 0.0256},
	{0.0146, 0.0586, 0.0952, 0.0586, 0.0146},
	{0.0037, 0.0146, 0.0256, 0.0146, 0.0037},
}

// How quickly a neighbour's weight falls off as its luminance departs from the center's
const edgeFalloff = 10.0

// denoise returns the buffer the adjustment stages should read from. If
// denoising is off, that is the input itself. Otherwise it's a new
// buffer, fully written before this returns; neighbours are always read
// from the original.
func (d *Developer)denoise(src []byte, w, h int, amount float64) []byte {
	if !(amount > epsilon) || w == 0 || h == 0 {
		return src
	}

	lum := emath.NewFloatGrid(w, h)
	d.parallelRows(h, func(y0, y1 int) {
		for y:=y0; y<y1; y++ {
			for x:=0; x<w; x++ {
				lum.Set(x, y, ecolor.Luminance(ecolor.FetchClamped(src, w, h, x, y)))
			}
		}
	})

	if d.LuminanceDump != "" {
		Logger().Debug("luminance dump", "file", d.LuminanceDump, "grid", lum.Stats())
		if err := lum.ToImg("denoise luminance", d.LuminanceDump); err != nil {
			Logger().Warn("luminance dump failed", "file", d.LuminanceDump, "err", err)
		}
	}

	out := make([]byte, len(src))
	d.parallelRows(h, func(y0, y1 int) {
		for y:=y0; y<y1; y++ {
			for x:=0; x<w; x++ {
				rgb := denoisePixel(src, &lum, w, h, x, y, amount)
				i := (y*w + x) * 3
				out[i]   = emath.Quantize(rgb[0])
				out[i+1] = emath.Quantize(rgb[1])
				out[i+2] = emath.Quantize(rgb[2])
			}
		}
	})

	return out
}

// denoisePixel is a bilateral filter: the gaussian kernel weight of
// each tap is scaled down by how different its luminance is from the
// center's, so edges don't get smeared. Those combined weights no longer
// sum to one, so we divide by their total.
func denoisePixel(src []byte, lum *emath.FloatGrid, w, h, x, y int, amount float64) emath.Vec3 {
	center := ecolor.FetchClamped(src, w, h, x, y)
	centerLum := lum.Get(x, y)

	blur := emath.Vec3{}
	total := 0.0
	for dy:=-2; dy<=2; dy++ {
		for dx:=-2; dx<=2; dx++ {
			n := ecolor.FetchClamped(src, w, h, x+dx, y+dy)
			wt := denoiseKernel[dy+2][dx+2] * math.Exp(-edgeFalloff * math.Abs(lum.GetClamped(x+dx, y+dy) - centerLum))
			blur[0] += n[0] * wt
			blur[1] += n[1] * wt
			blur[2] += n[2] * wt
			total += wt
		}
	}
	blur.Scale(1.0 / total)

	center.Lerp(blur, amount)
	return center
}
