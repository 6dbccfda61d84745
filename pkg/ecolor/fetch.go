package ecolor

import "github.com/abworrall/ninlab/pkg/emath"

// FetchClamped reads the pixel at (x,y) from a packed 8-bit RGB buffer
// of the given dimensions. Coords outside the image are clamped
// (independently) to the nearest edge, i.e. edge pixels are replicated.
func FetchClamped(buf []byte, w, h, x, y int) emath.Vec3 {
	if x < 0 { x = 0 }
	if y < 0 { y = 0 }
	if x > w-1 { x = w-1 }
	if y > h-1 { y = h-1 }

	i := (y*w + x) * 3
	return emath.Vec3{
		float64(buf[i])   / 255.0,
		float64(buf[i+1]) / 255.0,
		float64(buf[i+2]) / 255.0,
	}
}
