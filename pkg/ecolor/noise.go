package ecolor

import "math"

// The constants for the spatial hash (from Teschner et al., "Optimized
// Spatial Hashing for Collision Detection of Deformable Objects") and
// the murmur3 finalizer.
const(
	hashPrimeX   int32  = 73856093
	hashPrimeY   int32  = 19349663
	hashPrimeS   int32  = 83492791
	avalanche1   uint32 = 0x85ebca6b
	avalanche2   uint32 = 0xc2b2ae35
)

// avalanche scrambles the bits of n
func avalanche(n uint32) uint32 {
	x := n * avalanche1
	x ^= x >> 13
	x *= avalanche2
	x ^= x >> 16
	return x
}

// cell is floor(f) as an int32, saturating at the int32 limits. NaN is
// cell 0. A plain conversion of an out of range float is platform
// dependent in Go.
func cell(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(math.Floor(f))
}

// Noise2D is blocky value noise in [-1,1]: every point inside the same
// unit cell gets the same value. It depends only on floor(x), floor(y)
// and the seed, and all the integer math wraps, so it gives the same
// answer on every platform.
func Noise2D(x, y float64, seed uint32) float64 {
	ix := cell(x)
	iy := cell(y)

	h := uint32(ix*hashPrimeX ^ iy*hashPrimeY ^ int32(seed)*hashPrimeS)
	r := avalanche(h)

	return float64(r) / float64(math.MaxUint32) * 2.0 - 1.0
}
