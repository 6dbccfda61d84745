package develop

import(
	"fmt"
	"image"

	"github.com/abworrall/ninlab/pkg/emath"
)

// If any points are listed here, Process logs the stage-by-stage values
// of those pixels. It must not be modified while Process is running.
var DebugPixels = []image.Point{}

// A Pixel is the working value as it moves through the stages. It only
// lives for the duration of one pixel's trip down the pipeline.
type Pixel struct {
	Pos     image.Point
	In      [3]uint8     // the value handed to the pipeline (i.e. post-denoise)
	RGB     emath.Vec3   // working value, nominally [0,1], but stages may push it outside
	Out     [3]uint8

	trace []string       // only populated for DebugPixels
}

func newPixel(x, y int, src []byte, i int) Pixel {
	return Pixel{
		Pos: image.Point{x, y},
		In:  [3]uint8{src[i], src[i+1], src[i+2]},
		RGB: emath.Vec3{
			float64(src[i])   / 255.0,
			float64(src[i+1]) / 255.0,
			float64(src[i+2]) / 255.0,
		},
	}
}

func (p *Pixel)note(stage string) {
	if p.trace != nil {
		p.trace = append(p.trace, fmt.Sprintf("%-16s: %s", stage, p.RGB))
	}
}

func (p Pixel)String() string {
	str := fmt.Sprintf("----- Pixel @(%d,%d)-----\n", p.Pos.X, p.Pos.Y)
	str += fmt.Sprintf("Input(RGB24)    : [%12d, %12d, %12d]\n", p.In[0], p.In[1], p.In[2])
	for _, line := range p.trace {
		str += line + "\n"
	}
	str += fmt.Sprintf("Output(RGB24)   : [%12d, %12d, %12d]\n", p.Out[0], p.Out[1], p.Out[2])
	return str
}
