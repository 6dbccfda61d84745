package main

import(
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abworrall/ninlab/pkg/curve"
	"github.com/abworrall/ninlab/pkg/develop"
	"github.com/abworrall/ninlab/pkg/histogram"
	"github.com/abworrall/ninlab/pkg/photo"
)

// settingFlags collects repeated `-set name=value` args
type settingFlags map[string]float64

func (sf settingFlags)String() string { return fmt.Sprintf("%v", map[string]float64(sf)) }

func (sf settingFlags)Set(str string) error {
	name, val, found := strings.Cut(str, "=")
	if !found {
		return fmt.Errorf("'%s' is not name=value", str)
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("'%s': %v", str, err)
	}
	if _, exists := develop.DefaultSettings().AsMap()[name]; !exists {
		return fmt.Errorf("'%s' is not a setting; try one of %s", name, strings.Join(develop.SettingNames(), ","))
	}
	sf[name] = f
	return nil
}

// pixelFlags collects repeated `-pixel x,y` args
type pixelFlags []image.Point

func (pf *pixelFlags)String() string { return fmt.Sprintf("%v", []image.Point(*pf)) }

func (pf *pixelFlags)Set(str string) error {
	var pt image.Point
	if _, err := fmt.Sscanf(str, "%d,%d", &pt.X, &pt.Y); err != nil {
		return fmt.Errorf("'%s' is not x,y: %v", str, err)
	}
	*pf = append(*pf, pt)
	return nil
}

var(
	fVerbosity int
	fOutputDir string
	fFormat string
	fQuality int
	fLongEdge int
	fSuffix string
	fCurveFile string
	fHistogram bool
	fMetadata bool
	fDiff bool
	fDehazeContrast bool
	fWorkers int
	fSettings = settingFlags{}
	fPixels pixelFlags
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fOutputDir, "o", ".", "directory to write developed images into")
	flag.StringVar(&fFormat, "format", "jpeg", "output format: jpeg, png, tiff, hdr")
	flag.IntVar(&fQuality, "quality", 90, "JPEG quality (1-100)")
	flag.IntVar(&fLongEdge, "longedge", 0, "if >0, downsize output so its long edge is this many pixels")
	flag.StringVar(&fSuffix, "suffix", "_edit", "appended to the output filename")
	flag.StringVar(&fCurveFile, "curve", "", "yaml file of tone curve control points")
	flag.BoolVar(&fHistogram, "hist", false, "also write a histogram PNG for each output")
	flag.BoolVar(&fMetadata, "meta", false, "print the EXIF metadata of each input")
	flag.BoolVar(&fDiff, "diff", false, "report how much each photo changed, and write a PNG map of where")
	flag.BoolVar(&fDehazeContrast, "dehazecontrast", false, "dehaze also boosts contrast around the midpoint")
	flag.IntVar(&fWorkers, "workers", 0, "max goroutines per pass (0 means one per CPU)")
	flag.Var(fSettings, "set", "override a setting, name=value (repeatable)")
	flag.Var(&fPixels, "pixel", "log the stage-by-stage values of pixel x,y (repeatable, needs -v)")
	flag.Parse()

	log.Printf("ninlab starting\n")
}

func main() {
	c, err := photo.LoadFilesAndDirs(flag.Args()...)
	if err != nil {
		log.Fatal(err)
	}
	if len(c.Photos) == 0 {
		log.Fatal("no photos to develop")
	}

	opts := photo.DefaultExportOptions()
	if opts.Format, err = photo.ParseFormat(fFormat); err != nil {
		log.Fatal(err)
	}
	opts.Quality = fQuality
	opts.LongEdge = fLongEdge
	opts.Suffix = fSuffix

	var lut []byte
	if fCurveFile != "" {
		if lut, err = curve.Load(fCurveFile); err != nil {
			log.Fatal(err)
		}
	}

	devOpts := develop.Options{Workers: fWorkers, DehazeContrast: fDehazeContrast}
	if fVerbosity > 0 {
		develop.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		develop.DebugPixels = fPixels
	}
	if fVerbosity > 1 {
		devOpts.LuminanceDump = filepath.Join(fOutputDir, "denoise-luminance.png")
	}
	d := develop.NewDeveloper(devOpts)

	for _, p := range c.Photos {
		// Command line args override the settings file
		for name, val := range fSettings {
			p.Settings.Set(name, val)
		}

		if fMetadata {
			log.Printf("%s metadata:-\n%s", p.Filename, photo.MetadataString(photo.ReadMetadata(p.Filename)))
		}
		if fVerbosity > 0 {
			log.Printf("%s, final settings:-\n\n%s\n", p, p.Settings.AsYaml())
		}

		developed, err := p.Develop(d, lut)
		if err != nil {
			log.Fatal(err)
		}

		filename, err := photo.Export(developed, fOutputDir, opts)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s\n", filename)

		if fDiff {
			diffFilename := strings.TrimSuffix(filename, filepath.Ext(filename)) + "-diff.png"
			metric, err := photo.Diff(p, developed, diffFilename)
			if err != nil {
				log.Fatal(err)
			}
			log.Printf("wrote %s, mean luminance change %.2f/255\n", diffFilename, metric)
		}

		if fHistogram {
			h, err := histogram.Compute(developed.RGB)
			if err != nil {
				log.Fatal(err)
			}
			histFilename := strings.TrimSuffix(filename, filepath.Ext(filename)) + "-hist.png"
			if err := h.Plot(histFilename, 512, 200); err != nil {
				log.Fatal(err)
			}
			log.Printf("wrote %s, %s\n", histFilename, h)
		}
	}
}
