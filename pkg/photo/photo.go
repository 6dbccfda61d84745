package photo

import(
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/abworrall/ninlab/pkg/develop"
)

// A Photo is a decoded image as a packed 8-bit RGB buffer (row major,
// three bytes per pixel, no padding), which is what develop.Process
// works on.
type Photo struct {
	Filename      string
	Width, Height int
	RGB           []byte

	Settings      develop.Settings // from a sidecar, if one was found
	SettingsFile  string
}

func (p Photo)String() string {
	str := fmt.Sprintf("%s: %dx%d", p.Filename, p.Width, p.Height)
	if p.SettingsFile != "" {
		str += fmt.Sprintf(" (settings: %s)", p.SettingsFile)
	}
	return str
}

// FromImage packs any image into a Photo. Alpha is dropped.
func FromImage(filename string, img image.Image) *Photo {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()

	p := &Photo{
		Filename: filename,
		Width:    w,
		Height:   h,
		RGB:      make([]byte, w*h*3),
		Settings: develop.DefaultSettings(),
	}

	for y:=0; y<h; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x:=0; x<w; x++ {
			copy(p.RGB[(y*w+x)*3:], row[x*4:x*4+3])
		}
	}

	return p
}

// Image unpacks the buffer into an opaque NRGBA.
func (p *Photo)Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for i:=0; i<p.Width*p.Height; i++ {
		copy(img.Pix[i*4:], p.RGB[i*3:i*3+3])
		img.Pix[i*4+3] = 0xff
	}
	return img
}

// longEdgeFit returns the dimensions scaled so the longer side is
// maxEdge, truncating, but never below 1.
func longEdgeFit(w, h, maxEdge int) (int, int) {
	long := w
	if h > long {
		long = h
	}
	scale := float64(maxEdge) / float64(long)
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)
	if nw < 1 { nw = 1 }
	if nh < 1 { nh = 1 }
	return nw, nh
}

// Preview returns a copy resized (Lanczos) so that the long edge is at
// most maxEdge. If the photo is already small enough, or maxEdge isn't
// positive, it returns the photo itself.
func (p *Photo)Preview(maxEdge int) *Photo {
	if maxEdge <= 0 || (p.Width <= maxEdge && p.Height <= maxEdge) {
		return p
	}

	nw, nh := longEdgeFit(p.Width, p.Height, maxEdge)
	small := FromImage(p.Filename, imaging.Resize(p.Image(), nw, nh, imaging.Lanczos))
	small.Settings = p.Settings
	small.SettingsFile = p.SettingsFile
	return small
}

// Develop runs the photo's settings (and the lut, if any) through the
// developer, and returns the result as a new Photo.
func (p *Photo)Develop(d *develop.Developer, lut []byte) (*Photo, error) {
	out, err := d.Process(p.RGB, p.Width, p.Height, p.Settings, lut)
	if err != nil {
		return nil, fmt.Errorf("develop '%s': %w", p.Filename, err)
	}

	developed := *p
	developed.RGB = out
	return &developed, nil
}
