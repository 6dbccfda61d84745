package emath

import "math"

// Some functions that only operate on basic types, that are useful

// Clamp01 saturates into [0,1]. NaN maps to 0.
func Clamp01(f float64) float64 {
	if !(f >= 0.0) { return 0.0 }
	if f > 1.0 { return 1.0 }
	return f
}

// Smoothstep is the cubic 3t^2 - 2t^3, for t already in [0,1]
func Smoothstep(t float64) float64 {
	return t * t * (3.0 - 2.0*t)
}

// Quantize maps [0,1] to a byte, rounding to nearest. Out of range
// values saturate.
func Quantize(f float64) uint8 {
	return uint8(Clamp01(f)*255.0 + 0.5)
}

// WrapDegrees maps any angle into [0,360)
func WrapDegrees(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	if d >= 360.0 { // -tiny + 360 can round up
		d = 0.0
	}
	return d
}

// https://www.sjbrown.co.uk/posts/gamma-correct-rendering/ - "linear RGB to sRGB"
// `f` is assumed to be in the range [0,1]
func GammaExpand_F64(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055 * math.Pow(f, 1.0/2.4) - 0.055
}

// GammaLinearize_F64 is the inverse of GammaExpand_F64, mapping an
// sRGB encoded value back to linear light.
func GammaLinearize_F64(f float64) float64 {
	if f <= 0.04045 {
		return f / 12.92
	}
	return math.Pow((f + 0.055) / 1.055, 2.4)
}
