package emath

// A tiny bit of vector math, used for the working pixel in the develop pipeline

import(
	"fmt"

	"golang.org/x/image/math/f64" // Will be "image/math/f64" at some point, hopefully make this file redundant
)

// Use a local type so we can hang methods off it. The three values are
// always R, G, B.
type Vec3 f64.Vec3

func (v Vec3)String() string {
	return fmt.Sprintf("[%12.10f, %12.10f, %12.10f]", v[0], v[1], v[2])
}

// FloorAt and CeilingAt both replace a NaN channel with the bound.
func (v *Vec3)FloorAt(min float64) {
	if !(v[0] >= min) { v[0] = min }
	if !(v[1] >= min) { v[1] = min }
	if !(v[2] >= min) { v[2] = min }
}

func (v *Vec3)CeilingAt(max float64) {
	if !(v[0] <= max) { v[0] = max }
	if !(v[1] <= max) { v[1] = max }
	if !(v[2] <= max) { v[2] = max }
}

// Clamp01 clamps all three channels into [0,1], with NaN going to 0
func (v *Vec3)Clamp01() {
	v[0] = Clamp01(v[0])
	v[1] = Clamp01(v[1])
	v[2] = Clamp01(v[2])
}

func (v *Vec3)Scale(f float64) {
	v[0] *= f
	v[1] *= f
	v[2] *= f
}

// Mult is a per-channel multiply
func (v *Vec3)Mult(m Vec3) {
	v[0] *= m[0]
	v[1] *= m[1]
	v[2] *= m[2]
}

func (v *Vec3)Add(f float64) {
	v[0] += f
	v[1] += f
	v[2] += f
}

// Lerp moves each channel a fraction `t` of the way towards `to`
func (v *Vec3)Lerp(to Vec3, t float64) {
	v[0] = v[0]*(1.0-t) + to[0]*t
	v[1] = v[1]*(1.0-t) + to[1]*t
	v[2] = v[2]*(1.0-t) + to[2]*t
}

// Mean is the plain arithmetic mean of the channels, not a luminance
func (v Vec3)Mean() float64 { return (v[0] + v[1] + v[2]) / 3.0 }
