package develop

import(
	"math"

	"github.com/samber/lo"

	"github.com/abworrall/ninlab/pkg/ecolor"
	"github.com/abworrall/ninlab/pkg/emath"
)

const(
	// Controls whose magnitude is at or below this are skipped outright,
	// rather than applied with no effect (which can still drift by an ulp).
	epsilon = 1e-6

	grainSeed = 12345
)

func active(v float64) bool { return math.Abs(v) > epsilon }

// A pixelFunc mutates the working value of one pixel. Each stage of the
// pipeline is one of these; they only look at the pixel itself and the
// per-call constants in the frame.
type pixelFunc func(*frame, *Pixel)

type stage struct {
	name string
	fn   pixelFunc
}

// frame holds everything that is constant across one Process call.
type frame struct {
	Settings
	Options

	width, height int
	lut           []byte     // nil unless we were given exactly 256 entries

	exposureMult  float64
	wbGains       emath.Vec3
	bands         []Band     // active HSL bands only, still in the fixed order
	center        emath.Vec3 // vignette center (x,y), and ...
	halfExtent    emath.Vec3 // ... the radii it is normalized by
	grainScale    float64
}

func newFrame(s Settings, opts Options, width, height int, lut []byte) *frame {
	f := &frame{
		Settings:     s,
		Options:      opts,
		width:        width,
		height:       height,
		exposureMult: math.Pow(2.0, s.Exposure),
		wbGains: emath.Vec3{
			1.0 + 0.8*s.Temperature - 0.2*s.Tint,
			1.0 - 0.1*s.Temperature + 0.4*s.Tint,
			1.0 - 0.8*s.Temperature - 0.2*s.Tint,
		},
		grainScale:   1.0 + 4.0*s.GrainSize,
	}

	if len(lut) == 256 {
		f.lut = lut
	}

	for _, b := range s.Bands() {
		if b.IsActive() {
			f.bands = append(f.bands, b)
		}
	}

	cx := (float64(width) - 1.0) / 2.0
	cy := (float64(height) - 1.0) / 2.0
	f.center = emath.Vec3{cx, cy, 0}
	f.halfExtent = emath.Vec3{math.Max(cx, 1.0), math.Max(cy, 1.0), 0}

	return f
}

// stages returns the stages that are switched on by the settings, in
// pipeline order. Anything not in this list is an exact no-op.
func (f *frame)stages() []stage {
	ret := []stage{}
	add := func(on bool, name string, fn pixelFunc) {
		if on {
			ret = append(ret, stage{name, fn})
		}
	}

	add(active(f.Exposure),                            "exposure",     exposure)
	add(active(f.Temperature) || active(f.Tint),       "whitebalance", whiteBalance)
	add(active(f.Shadows) || active(f.Highlights) ||
		active(f.Whites) || active(f.Blacks),            "toneregions",  toneRegions)
	add(active(f.Dehaze),                              "dehaze",       dehaze)
	add(f.Defringe > epsilon,                          "defringe",     defringe)
	add(active(f.Saturation) || active(f.Vibrance),    "saturation",   saturationVibrance)
	add(active(f.Contrast),                            "contrast",     contrast)
	add(active(f.Gamma - 1.0),                         "gamma",        gamma)
	add(f.lut != nil,                                  "curve",        curve)
	add(active(f.MidContrast),                         "midcontrast",  midContrast)
	add(len(f.bands) > 0,                              "hsl",          hslMixer)
	add(active(f.Vignette),                            "vignette",     vignette)
	add(f.GrainAmount > epsilon,                       "grain",        filmGrain)

	return ret
}

func stageNames(stages []stage) []string {
	return lo.Map(stages, func(st stage, _ int) string { return st.name })
}

// pivot stretches each channel away from (or towards) 0.5
func pivot(v *emath.Vec3, factor float64) {
	v[0] = 0.5 + (v[0] - 0.5)*factor
	v[1] = 0.5 + (v[1] - 0.5)*factor
	v[2] = 0.5 + (v[2] - 0.5)*factor
}

// stretchFromGray is pivot, but around the pixel's own gray value
func stretchFromGray(v *emath.Vec3, gray, factor float64) {
	v[0] = gray + (v[0] - gray)*factor
	v[1] = gray + (v[1] - gray)*factor
	v[2] = gray + (v[2] - gray)*factor
}

func exposure(f *frame, p *Pixel) {
	p.RGB.Scale(f.exposureMult)
	p.RGB.Clamp01()
}

func whiteBalance(f *frame, p *Pixel) {
	p.RGB.Mult(f.wbGains)
	p.RGB.Clamp01()
}

// toneRegions does shadows, highlights, whites and blacks. The
// luminance used to pick out shadows and highlights is taken once, at
// the start.
func toneRegions(f *frame, p *Pixel) {
	lum := ecolor.Luminance(p.RGB)

	if active(f.Shadows) {
		w := emath.Clamp01(1.0 - 2.0*lum)
		lifted := p.RGB
		lifted.Scale(1.0 + 0.8*f.Shadows)
		p.RGB.Lerp(lifted, w)
	}

	if active(f.Highlights) {
		w := emath.Smoothstep(emath.Clamp01(2.0*lum - 1.0))
		dimmed := p.RGB
		dimmed.Scale(1.0 - 0.8*f.Highlights)
		p.RGB.Lerp(dimmed, w)
	}

	// Whites only caps, blacks only floors.
	if active(f.Whites) {
		p.RGB.Scale(1.0 + 0.6*f.Whites)
		p.RGB.CeilingAt(1.0)
	}

	if active(f.Blacks) {
		p.RGB.Add(0.4 * f.Blacks)
		p.RGB.FloorAt(0.0)
	}
}

// dehaze subtracts a veil proportional to the (current) luminance.
func dehaze(f *frame, p *Pixel) {
	veil := ecolor.Luminance(p.RGB) * 0.6 * f.Dehaze
	p.RGB.Add(-veil)
	p.RGB.Clamp01()

	if f.DehazeContrast {
		pivot(&p.RGB, 1.0 + 0.4*f.Dehaze)
		p.RGB.Clamp01()
	}
}

// defringe desaturates purple fringes (where red and blue both beat
// green) towards their luminance.
func defringe(f *frame, p *Pixel) {
	r, g, b := p.RGB[0], p.RGB[1], p.RGB[2]
	purple := emath.Clamp01(3.0 * math.Max(0.0, math.Min(r, b) - g))

	lum := ecolor.Luminance(p.RGB)
	p.RGB.Lerp(emath.Vec3{lum, lum, lum}, purple * f.Defringe)
}

// saturationVibrance uses the mean of the channels as the gray base,
// not luminance. Vibrance is held back on pixels that are already
// saturated.
func saturationVibrance(f *frame, p *Pixel) {
	gray := p.RGB.Mean()

	if active(f.Saturation) {
		stretchFromGray(&p.RGB, gray, 1.0 + f.Saturation)
	}

	if active(f.Vibrance) {
		satNow := (math.Abs(p.RGB[0] - gray) + math.Abs(p.RGB[1] - gray) + math.Abs(p.RGB[2] - gray)) / 3.0
		weight := emath.Clamp01(1.0 - 2.0*satNow)
		stretchFromGray(&p.RGB, gray, 1.0 + f.Vibrance*weight)
	}
}

// contrast doesn't clamp; values outside [0,1] are carried forward.
func contrast(f *frame, p *Pixel) {
	pivot(&p.RGB, 1.0 + f.Contrast)
}

func gamma(f *frame, p *Pixel) {
	inv := 1.0 / f.Settings.Gamma
	p.RGB.Clamp01()
	p.RGB[0] = math.Pow(p.RGB[0], inv)
	p.RGB[1] = math.Pow(p.RGB[1], inv)
	p.RGB[2] = math.Pow(p.RGB[2], inv)
}

// curve maps each channel through the 256 entry lookup table.
func curve(f *frame, p *Pixel) {
	for c := 0; c < 3; c++ {
		p.RGB[c] = float64(f.lut[emath.Quantize(p.RGB[c])]) / 255.0
	}
}

func midContrast(f *frame, p *Pixel) {
	pivot(&p.RGB, 1.0 + 1.6*f.MidContrast)
	p.RGB.Clamp01()
}

func hslMixer(f *frame, p *Pixel) {
	p.RGB = mixBands(p.RGB, f.bands)
}

// vignette darkens towards the corners with an elliptical falloff. It
// never takes a pixel below 20% of its value.
func vignette(f *frame, p *Pixel) {
	dx := (float64(p.Pos.X) - f.center[0]) / f.halfExtent[0]
	dy := (float64(p.Pos.Y) - f.center[1]) / f.halfExtent[1]
	r2 := dx*dx + dy*dy

	mask := math.Max(0.2, emath.Clamp01(1.0 - f.Vignette*r2))
	p.RGB.Scale(mask)
}

// filmGrain adds the same (signed) amount of noise to all three
// channels. The result isn't clamped until the final quantize.
func filmGrain(f *frame, p *Pixel) {
	nx := float64(p.Pos.X) / f.grainScale
	ny := float64(p.Pos.Y) / f.grainScale
	noise := ecolor.Noise2D(nx, ny, grainSeed)

	if f.GrainRoughness > 0.5 {
		// Rougher grain pushes values out towards +/-1
		power := 1.0 - (f.GrainRoughness - 0.5)*0.8
		if noise != 0.0 {
			noise = math.Copysign(math.Pow(math.Abs(noise), power), noise)
		}
	} else {
		noise *= 0.5 + f.GrainRoughness
	}

	// Grain shows most in the midtones
	lum := ecolor.Luminance(p.RGB)
	mask := math.Min(1.0, math.Max(0.3, 1.0 - 2.0*math.Abs(lum - 0.5)))

	p.RGB.Add(noise * f.GrainAmount * 0.12 * mask)
}
