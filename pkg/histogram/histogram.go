package histogram

import(
	"fmt"
	"math"
	"runtime"

	"github.com/fogleman/gg"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Histogram holds 256-bin counts for each channel of a packed 8-bit RGB
// buffer, plus the (BT.601) luma.
type Histogram struct {
	R, G, B, Luma [256]uint64
	Pixels        uint64
}

// Normalized is a Histogram scaled for display: log1p(count) over
// log1p(max). The three color channels share a max, so they can be
// drawn over each other; luma has its own.
type Normalized struct {
	R, G, B, Luma [256]float64
}

// Smallest number of pixels worth handing to a goroutine
const minChunk = 64*1024

func (h Histogram)String() string {
	return fmt.Sprintf("histogram{%d pixels, peak R=%d G=%d B=%d L=%d}", h.Pixels,
		lo.Max(h.R[:]), lo.Max(h.G[:]), lo.Max(h.B[:]), lo.Max(h.Luma[:]))
}

// luma is the BT.601 weighting, truncated (not rounded) to a bin.
func luma(r, g, b byte) int {
	l := int(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
	if l > 255 {
		l = 255
	}
	return l
}

func (h *Histogram)add(buf []byte) {
	for i:=0; i+2<len(buf); i+=3 {
		h.R[buf[i]]++
		h.G[buf[i+1]]++
		h.B[buf[i+2]]++
		h.Luma[luma(buf[i], buf[i+1], buf[i+2])]++
		h.Pixels++
	}
}

func (h *Histogram)merge(other *Histogram) {
	for i:=0; i<256; i++ {
		h.R[i] += other.R[i]
		h.G[i] += other.G[i]
		h.B[i] += other.B[i]
		h.Luma[i] += other.Luma[i]
	}
	h.Pixels += other.Pixels
}

// Compute counts the buffer, in parallel; each goroutine fills its own
// Histogram, and they're summed at the end.
func Compute(buf []byte) (Histogram, error) {
	if len(buf) % 3 != 0 {
		return Histogram{}, fmt.Errorf("histogram: %d bytes is not a whole number of RGB pixels", len(buf))
	}

	nPix := len(buf) / 3
	nChunks := runtime.GOMAXPROCS(0)
	if max := (nPix + minChunk - 1) / minChunk; nChunks > max {
		nChunks = max
	}
	if nChunks <= 1 {
		h := Histogram{}
		h.add(buf)
		return h, nil
	}

	partials := make([]Histogram, nChunks)
	chunk := (nPix + nChunks - 1) / nChunks
	g := errgroup.Group{}
	for i:=0; i<nChunks; i++ {
		i := i
		start, end := i*chunk*3, (i+1)*chunk*3
		if end > len(buf) {
			end = len(buf)
		}
		if start >= end {
			break
		}
		g.Go(func() error {
			partials[i].add(buf[start:end])
			return nil
		})
	}
	g.Wait()

	h := Histogram{}
	for i := range partials {
		h.merge(&partials[i])
	}
	return h, nil
}

func logScale(dst *[256]float64, src [256]uint64, max uint64) {
	if max == 0 {
		return
	}
	denom := math.Log1p(float64(max))
	for i, v := range src {
		dst[i] = math.Log1p(float64(v)) / denom
	}
}

func (h Histogram)Normalized() Normalized {
	n := Normalized{}
	maxRGB := lo.Max([]uint64{lo.Max(h.R[:]), lo.Max(h.G[:]), lo.Max(h.B[:])})
	logScale(&n.R, h.R, maxRGB)
	logScale(&n.G, h.G, maxRGB)
	logScale(&n.B, h.B, maxRGB)
	logScale(&n.Luma, h.Luma, lo.Max(h.Luma[:]))
	return n
}

// Plot draws the normalized histogram as a PNG: the three channels as
// translucent filled areas, and luma as a white line over the top.
func (h Histogram)Plot(filename string, width, height int) error {
	if width < 2 || height < 2 {
		return fmt.Errorf("histogram plot %dx%d: too small", width, height)
	}

	n := h.Normalized()
	w, ht := float64(width), float64(height)
	xAt := func(i int) float64 { return float64(i) / 255.0 * (w - 1) }
	yAt := func(v float64) float64 { return (ht - 1) * (1.0 - v) }

	dc := gg.NewContext(width, height)
	dc.SetRGB(0.09, 0.09, 0.11)
	dc.Clear()

	channels := []struct{
		vals    [256]float64
		r, g, b float64
	}{
		{n.R, 1, 0.2, 0.2},
		{n.G, 0.2, 1, 0.2},
		{n.B, 0.3, 0.4, 1},
	}
	for _, c := range channels {
		dc.MoveTo(0, ht)
		for i, v := range c.vals {
			dc.LineTo(xAt(i), yAt(v))
		}
		dc.LineTo(w, ht)
		dc.ClosePath()
		dc.SetRGBA(c.r, c.g, c.b, 0.4)
		dc.Fill()
	}

	for i, v := range n.Luma {
		if i == 0 {
			dc.MoveTo(xAt(i), yAt(v))
		} else {
			dc.LineTo(xAt(i), yAt(v))
		}
	}
	dc.SetRGBA(1, 1, 1, 0.8)
	dc.SetLineWidth(1.0)
	dc.Stroke()

	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("histogram plot '%s': %v", filename, err)
	}
	return nil
}
