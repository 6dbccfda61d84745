package develop

import(
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDenoiseOffReturnsInput(t *testing.T) {
	img := randomImage(6, 4, 10)
	d := NewDeveloper(Options{})

	for _, amount := range []float64{0, 1e-7, -0.5} {
		out := d.denoise(img, 6, 4, amount)
		if &out[0] != &img[0] {
			t.Errorf("denoise(%v) copied the buffer", amount)
		}
	}
}

func TestDenoiseFlatImage(t *testing.T) {
	img := flatImage(7, 5, [3]byte{90, 140, 30})
	out := NewDeveloper(Options{}).denoise(img, 7, 5, 1.0)
	if diff := cmp.Diff(img, out); diff != "" {
		t.Errorf("denoising a flat image changed it (-want +got):\n%s", diff)
	}
}

func TestDenoiseSmoothsSmallDetail(t *testing.T) {
	img := flatImage(5, 5, [3]byte{100, 100, 100})
	center := (2*5 + 2) * 3
	img[center], img[center+1], img[center+2] = 110, 110, 110

	out := NewDeveloper(Options{}).denoise(img, 5, 5, 1.0)
	if out[center] >= 110 || out[center] < 100 {
		t.Errorf("center = %d, want in [100,110)", out[center])
	}
	if img[center] != 110 {
		t.Errorf("input was modified")
	}
}

func TestDenoiseKeepsStrongEdges(t *testing.T) {
	// Black left half, white right half; the bilateral weighting should
	// keep the edge pretty much where it is.
	w, h := 8, 4
	img := make([]byte, w*h*3)
	for y:=0; y<h; y++ {
		for x:=w/2; x<w; x++ {
			i := (y*w + x) * 3
			img[i], img[i+1], img[i+2] = 255, 255, 255
		}
	}

	out := NewDeveloper(Options{}).denoise(img, w, h, 1.0)
	for i := range img {
		d := int(img[i]) - int(out[i])
		if d < -2 || d > 2 {
			t.Fatalf("byte %d moved from %d to %d", i, img[i], out[i])
		}
	}
}

func TestDenoiseKernelSumsToOne(t *testing.T) {
	sum := 0.0
	for _, row := range denoiseKernel {
		for _, v := range row {
			sum += v
		}
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("kernel sums to %v", sum)
	}
}

func TestDenoiseLuminanceDump(t *testing.T) {
	buf := captureLog(t)
	file := filepath.Join(t.TempDir(), "lum.png")

	img := flatImage(3, 2, [3]byte{100, 100, 100})
	NewDeveloper(Options{LuminanceDump: file}).denoise(img, 3, 2, 1.0)

	if _, err := os.Stat(file); err != nil {
		t.Errorf("no dump written: %v", err)
	}
	if !strings.Contains(buf.String(), "fg[3x2, vals{0.39") {
		t.Errorf("grid stats not logged, got:\n%s", buf.String())
	}
}
