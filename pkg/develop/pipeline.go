package develop

import(
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abworrall/ninlab/pkg/emath"
)

// ErrShape is returned when the buffer isn't width*height packed RGB triples.
var ErrShape = errors.New("buffer size does not match dimensions")

// Options control how the work is done, rather than what is done to the
// pixels; the exception is DehazeContrast.
type Options struct {
	Workers        int      // Max goroutines per pass; zero means GOMAXPROCS
	DehazeContrast bool     // After removing the veil, also push contrast by 0.4*dehaze around 0.5
	LuminanceDump  string   // If set, the denoise pass writes its luminance grid out as a PNG
}

// A Developer runs the denoise pass and adjustment pipeline over 8-bit
// RGB buffers. It holds no per-image state, so one can be shared.
type Developer struct {
	Options
}

func NewDeveloper(opts Options) *Developer {
	return &Developer{Options: opts}
}

var defaultDeveloper = NewDeveloper(Options{})

// Process develops a packed 8-bit RGB buffer, using the default Options.
func Process(img []byte, width, height int, s Settings, lut []byte) ([]byte, error) {
	return defaultDeveloper.Process(img, width, height, s, lut)
}

// Process returns a new buffer of the same shape as img; img is not
// modified. The lut is only used if it has exactly 256 entries, and is
// applied identically to all three channels.
func (d *Developer)Process(img []byte, width, height int, s Settings, lut []byte) ([]byte, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("develop %dx%d: %w", width, height, ErrShape)
	}
	if len(img) != width*height*3 || (width > 0 && len(img)/3/width != height) {
		return nil, fmt.Errorf("develop %dx%d with %d bytes: %w", width, height, len(img), ErrShape)
	}

	tStart := time.Now()
	f := newFrame(s, d.Options, width, height, lut)
	stages := f.stages()

	src := d.denoise(img, width, height, s.Denoise)
	tDenoised := time.Now()

	out := make([]byte, len(img))
	d.parallelRows(height, func(y0, y1 int) {
		for y:=y0; y<y1; y++ {
			for x:=0; x<width; x++ {
				i := (y*width + x) * 3
				p := newPixel(x, y, src, i)
				f.develop(stages, &p)
				out[i], out[i+1], out[i+2] = p.Out[0], p.Out[1], p.Out[2]
			}
		}
	})

	Logger().Debug("developed",
		"width", width, "height", height,
		"stages", stageNames(stages),
		"denoise", tDenoised.Sub(tStart),
		"pipeline", time.Since(tDenoised))

	d.tracePixels(f, stages, src)

	return out, nil
}

// develop runs one pixel all the way down the pipeline
func (f *frame)develop(stages []stage, p *Pixel) {
	for _, st := range stages {
		st.fn(f, p)
		p.note(st.name)
	}
	p.Out = [3]uint8{emath.Quantize(p.RGB[0]), emath.Quantize(p.RGB[1]), emath.Quantize(p.RGB[2])}
}

// tracePixels re-runs the DebugPixels with tracing turned on, and logs
// the stage-by-stage values.
func (d *Developer)tracePixels(f *frame, stages []stage, src []byte) {
	for _, pt := range DebugPixels {
		if pt.X < 0 || pt.Y < 0 || pt.X >= f.width || pt.Y >= f.height {
			continue
		}
		p := newPixel(pt.X, pt.Y, src, (pt.Y*f.width + pt.X) * 3)
		p.trace = []string{}
		f.develop(stages, &p)
		Logger().Debug("debug pixel", "x", pt.X, "y", pt.Y, "trace", p.String())
	}
}

func (d *Developer)workers() int {
	if d.Workers > 0 {
		return d.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// parallelRows splits [0,height) into bands of rows and runs fn over
// them, at most d.workers() at a time. Each band is owned by exactly one
// goroutine, so fn may write to its rows without locking.
func (d *Developer)parallelRows(height int, fn func(y0, y1 int)) {
	workers := d.workers()
	if workers <= 1 || height < 2 {
		fn(0, height)
		return
	}

	// A few bands per worker, so one slow band doesn't hold everyone up
	bandRows := (height + 4*workers - 1) / (4*workers)

	g := errgroup.Group{}
	g.SetLimit(workers)
	for y0:=0; y0<height; y0+=bandRows {
		y0, y1 := y0, y0+bandRows
		if y1 > height {
			y1 = height
		}
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	g.Wait()
}
