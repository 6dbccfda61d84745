package photo

import(
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
	"golang.org/x/image/tiff"

	"github.com/abworrall/ninlab/pkg/emath"
)

type Format string

const(
	JPEG Format = "jpeg"
	PNG  Format = "png"
	TIFF Format = "tiff"
	HDR  Format = "hdr"      // Radiance RGBE, in linear light
)

var formatExts = map[Format]string{JPEG: ".jpg", PNG: ".png", TIFF: ".tif", HDR: ".hdr"}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "jpeg", "jpg": return JPEG, nil
	case "png":         return PNG, nil
	case "tiff", "tif": return TIFF, nil
	case "hdr":         return HDR, nil
	}
	return "", fmt.Errorf("format '%s': %w", s, ErrUnsupportedFormat)
}

type ExportOptions struct {
	Format   Format `yaml:"format"`
	Quality  int    `yaml:"quality"`      // JPEG only, clamped to [1,100]
	LongEdge int    `yaml:"long_edge"`    // If >0, downsize so the long edge is this many pixels
	Suffix   string `yaml:"suffix"`       // Appended to the base filename; empty means "_edit"
}

func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:   JPEG,
		Quality:  90,
		Suffix:   "_edit",
	}
}

// ExportFilename is where Export would write the photo.
func ExportFilename(p *Photo, dir string, opts ExportOptions) string {
	suffix := opts.Suffix
	if suffix == "" {
		suffix = "_edit"
	}
	base := stem(filepath.Base(p.Filename))
	return filepath.Join(dir, base + suffix + formatExts[opts.Format])
}

// Export writes the photo into dir, returning the filename it used.
func Export(p *Photo, dir string, opts ExportOptions) (string, error) {
	if _, exists := formatExts[opts.Format]; !exists {
		return "", fmt.Errorf("export '%s' as '%s': %w", p.Filename, opts.Format, ErrUnsupportedFormat)
	}

	var img image.Image = p.Image()
	if opts.LongEdge > 0 && (p.Width > opts.LongEdge || p.Height > opts.LongEdge) {
		nw, nh := longEdgeFit(p.Width, p.Height, opts.LongEdge)
		img = imaging.Resize(img, nw, nh, imaging.Lanczos)
	}

	filename := ExportFilename(p, dir, opts)

	var err error
	switch opts.Format {
	case JPEG:
		q := opts.Quality
		if q < 1 { q = 1 }
		if q > 100 { q = 100 }
		err = imaging.Save(img, filename, imaging.JPEGQuality(q))
	case PNG:
		err = imaging.Save(img, filename, imaging.PNGCompressionLevel(png.DefaultCompression))
	case TIFF:
		err = writeFile(filename, func(f *os.File) error {
			return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
		})
	case HDR:
		err = writeFile(filename, func(f *os.File) error {
			return rgbe.Encode(f, linearImage{img})
		})
	}

	if err != nil {
		return "", fmt.Errorf("export '%s': %v", filename, err)
	}
	return filename, nil
}

func writeFile(filename string, encode func(*os.File) error) error {
	writer, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	}
	if err := encode(writer); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

// linearImage presents an 8-bit sRGB image as a HDR image, undoing the
// sRGB gamma so the floats are in linear light.
type linearImage struct {
	image.Image
}

func (li linearImage)ColorModel() color.Model       { return hdrcolor.RGBModel }
func (li linearImage)At(x, y int) color.Color       { return li.HDRAt(x,y) }
func (li linearImage)Size() int                     { return li.Bounds().Dx() * li.Bounds().Dy() }

func (li linearImage)HDRAt(x, y int) hdrcolor.Color {
	r, g, b, _ := li.Image.At(x, y).RGBA()
	return hdrcolor.RGB{
		R: emath.GammaLinearize_F64(float64(r) / 65535.0),
		G: emath.GammaLinearize_F64(float64(g) / 65535.0),
		B: emath.GammaLinearize_F64(float64(b) / 65535.0),
	}
}
