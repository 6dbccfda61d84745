package main

import(
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/codahale/hdrhistogram"

	"github.com/abworrall/ninlab/pkg/develop"
	"github.com/abworrall/ninlab/pkg/photo"
)

var(
	fRuns int
	fWidth int
	fHeight int
	fWorkers int
	fDenoise bool
)

func init() {
	flag.IntVar(&fRuns, "n", 20, "how many times to run the pipeline")
	flag.IntVar(&fWidth, "w", 1600, "width of the synthetic image (ignored if a file is given)")
	flag.IntVar(&fHeight, "h", 1067, "height of the synthetic image (ignored if a file is given)")
	flag.IntVar(&fWorkers, "workers", 0, "max goroutines per pass (0 means one per CPU)")
	flag.BoolVar(&fDenoise, "denoise", false, "include the denoise pass")
	flag.Parse()

	log.Printf("ninbench starting\n")
}

// A typical edit: a bit of everything, like a real preview refresh
func benchSettings() develop.Settings {
	s := develop.NewSettings(map[string]float64{
		"exposure":        0.35,
		"contrast":        0.15,
		"highlights":     -0.3,
		"shadows":         0.4,
		"vibrance":        0.25,
		"temperature":     0.05,
		"dehaze":          0.1,
		"mid_contrast":    0.1,
		"h_orange":       -8,
		"s_blue":          0.2,
		"vignette":        0.3,
		"grain_amount":    0.2,
		"grain_size":      0.5,
		"grain_roughness": 0.5,
	})
	if fDenoise {
		s.Denoise = 0.4
	}
	return s
}

func loadImage() *photo.Photo {
	if flag.NArg() > 0 {
		p, err := photo.Load(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		return p
	}

	p := &photo.Photo{Filename: "synthetic", Width: fWidth, Height: fHeight, RGB: make([]byte, fWidth*fHeight*3)}
	rand.New(rand.NewSource(1)).Read(p.RGB)
	return p
}

func main() {
	p := loadImage()
	s := benchSettings()
	d := develop.NewDeveloper(develop.Options{Workers: fWorkers})

	log.Printf("benchmarking %dx%d, %d runs\n", p.Width, p.Height, fRuns)

	// Microseconds, up to a minute
	hist := hdrhistogram.New(1, 60*1000*1000, 3)
	for i:=0; i<fRuns; i++ {
		tStart := time.Now()
		if _, err := d.Process(p.RGB, p.Width, p.Height, s, nil); err != nil {
			log.Fatal(err)
		}
		if err := hist.RecordValue(time.Since(tStart).Microseconds()); err != nil {
			log.Printf("run %d: %v\n", i, err)
		}
	}

	ms := func(us int64) float64 { return float64(us) / 1000.0 }
	mpix := float64(p.Width * p.Height) / 1e6

	log.Printf("runs=%d min=%.1fms mean=%.1fms p50=%.1fms p90=%.1fms p99=%.1fms max=%.1fms\n",
		hist.TotalCount(),
		ms(hist.Min()),
		hist.Mean() / 1000.0,
		ms(hist.ValueAtQuantile(50)),
		ms(hist.ValueAtQuantile(90)),
		ms(hist.ValueAtQuantile(99)),
		ms(hist.Max()))
	log.Printf("throughput at p50: %.1f Mpix/s\n", mpix / (ms(hist.ValueAtQuantile(50)) / 1000.0))
}
