package photo

import(
	"fmt"
	"math"

	"github.com/abworrall/ninlab/pkg/ecolor"
	"github.com/abworrall/ninlab/pkg/emath"
)

// Diff compares two photos of the same size, and returns how different
// they are: the mean absolute difference in luminance per pixel, scaled
// so that 255 means black versus white everywhere. If dumpFile is
// given, the per-pixel differences are written out as a PNG, which is
// handy for seeing where an edit actually landed.
func Diff(a, b *Photo, dumpFile string) (float64, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return 0, fmt.Errorf("diff %dx%d against %dx%d: sizes differ", a.Width, a.Height, b.Width, b.Height)
	}
	if a.Width == 0 || a.Height == 0 {
		return 0, nil
	}

	diff := emath.NewFloatGrid(a.Width, a.Height)
	tot := 0.0
	for y:=0; y<a.Height; y++ {
		for x:=0; x<a.Width; x++ {
			ya := ecolor.Luminance(ecolor.FetchClamped(a.RGB, a.Width, a.Height, x, y))
			yb := ecolor.Luminance(ecolor.FetchClamped(b.RGB, b.Width, b.Height, x, y))
			d := math.Abs(ya - yb)
			diff.Set(x, y, d)
			tot += d
		}
	}

	metric := tot * 255.0 / float64(a.Width*a.Height)

	if dumpFile != "" {
		title := fmt.Sprintf("%s: mean luminance diff %.2f/255", b.Filename, metric)
		if err := diff.ToImg(title, dumpFile); err != nil {
			return metric, fmt.Errorf("diff dump '%s': %v", dumpFile, err)
		}
	}

	return metric, nil
}
