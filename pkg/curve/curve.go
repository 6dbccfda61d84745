package curve

// Builds the 256 entry lookup table used by the develop pipeline's
// curve stage, from a handful of control points.

import(
	"errors"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/interp"
	"gopkg.in/yaml.v2"
)

var ErrTooFewPoints = errors.New("curve needs at least two points")

/* Example curve file (a gentle S curve) ...

points:
  - [0.0,  0.0]
  - [0.25, 0.2]
  - [0.75, 0.8]
  - [1.0,  1.0]

*/

// A Point is a control point, both coords normalized to [0,1]. X is the
// input level, Y the output level.
type Point struct {
	X, Y float64
}

func (p Point)String() string { return fmt.Sprintf("(%.3f,%.3f)", p.X, p.Y) }

type curveFile struct {
	Points [][2]float64 `yaml:"points"`
}

// Identity returns the LUT that maps every level to itself.
func Identity() []byte {
	lut := make([]byte, 256)
	for i := range lut {
		lut[i] = byte(i)
	}
	return lut
}

// LUT evaluates the curve through the points at 256 evenly spaced
// inputs. With two points the curve is a straight line; with more it's
// a cubic spline whose slope is zero at the end points. Outside the
// first and last point the curve holds the end point's value; it is not
// extrapolated. Outputs are clamped to
// [0,1], then scaled to [0,255] and truncated.
func LUT(points []Point) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%d points: %w", len(points), ErrTooFewPoints)
	}

	sorted := append([]Point{}, points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, p := range sorted {
		if i > 0 && p.X == sorted[i-1].X {
			return nil, fmt.Errorf("curve has two points at x=%v", p.X)
		}
		xs[i], ys[i] = p.X, p.Y
	}

	var pred interp.FittablePredictor
	if len(sorted) == 2 {
		pred = &interp.PiecewiseLinear{}
	} else {
		pred = &interp.ClampedCubic{}
	}
	if err := pred.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("curve fit %v: %v", sorted, err)
	}

	lut := make([]byte, 256)
	for i := range lut {
		y := pred.Predict(float64(i) / 255.0)
		if !(y >= 0.0) { y = 0.0 }   // NaN too
		if y > 1.0 { y = 1.0 }
		lut[i] = byte(y * 255.0)
	}
	return lut, nil
}

// Load reads control points from a YAML file, and builds the LUT.
func Load(filename string) ([]byte, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("curve read '%s': %v", filename, err)
	}

	cf := curveFile{}
	if err := yaml.Unmarshal(contents, &cf); err != nil {
		return nil, fmt.Errorf("curve parse '%s': %v", filename, err)
	}

	points := []Point{}
	for _, xy := range cf.Points {
		points = append(points, Point{xy[0], xy[1]})
	}

	lut, err := LUT(points)
	if err != nil {
		return nil, fmt.Errorf("curve '%s': %w", filename, err)
	}
	return lut, nil
}
