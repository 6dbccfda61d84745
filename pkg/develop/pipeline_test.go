package develop

import(
	"errors"
	"image"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func randomImage(w, h int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	buf := make([]byte, w*h*3)
	r.Read(buf)
	return buf
}

func flatImage(w, h int, rgb [3]byte) []byte {
	buf := make([]byte, 0, w*h*3)
	for i:=0; i<w*h; i++ {
		buf = append(buf, rgb[0], rgb[1], rgb[2])
	}
	return buf
}

func mustProcess(t *testing.T, img []byte, w, h int, s Settings, lut []byte) []byte {
	t.Helper()
	out, err := Process(img, w, h, s, lut)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != len(img) {
		t.Fatalf("output has %d bytes, want %d", len(out), len(img))
	}
	return out
}

func TestProcessShape(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		w, h  int
	}{
		{"short", 11, 2, 2},
		{"long", 13, 2, 2},
		{"negative", 0, -1, 0},
		{"negative product", 6, -1, -2},
	}

	for _, tc := range tests {
		_, err := Process(make([]byte, tc.n), tc.w, tc.h, DefaultSettings(), nil)
		if !errors.Is(err, ErrShape) {
			t.Errorf("%s: err = %v, want ErrShape", tc.name, err)
		}
	}

	out, err := Process([]byte{}, 0, 7, DefaultSettings(), nil)
	if err != nil || len(out) != 0 {
		t.Errorf("empty image: %v, %d bytes", err, len(out))
	}
}

func TestProcessNeutralIsIdentity(t *testing.T) {
	img := randomImage(17, 11, 1)
	orig := append([]byte{}, img...)

	identityLUT := make([]byte, 256)
	for i := range identityLUT {
		identityLUT[i] = byte(i)
	}

	for name, lut := range map[string][]byte{
		"no lut":       nil,
		"short lut":    make([]byte, 255),
		"identity lut": identityLUT,
	} {
		out := mustProcess(t, img, 17, 11, DefaultSettings(), lut)
		if diff := cmp.Diff(orig, out); diff != "" {
			t.Errorf("%s: neutral settings changed pixels (-want +got):\n%s", name, diff)
		}
	}

	if diff := cmp.Diff(orig, img); diff != "" {
		t.Errorf("input was modified")
	}
}

func TestProcessNearZeroControlsAreSkipped(t *testing.T) {
	s := NewSettings(map[string]float64{
		"exposure":    1e-7,
		"contrast":   -1e-7,
		"gamma":       1.0 + 1e-7,
		"defringe":   -0.5,  // one-sided
		"grain_amount": -1.0, // one-sided
		"h_red":       1e-7,
	})

	f := newFrame(s, Options{}, 4, 4, nil)
	if names := stageNames(f.stages()); len(names) != 0 {
		t.Errorf("expected no stages, got %v", names)
	}

	img := randomImage(4, 4, 2)
	if diff := cmp.Diff(img, mustProcess(t, img, 4, 4, s, nil)); diff != "" {
		t.Errorf("near-zero settings changed pixels (-want +got):\n%s", diff)
	}
}

func TestStageOrder(t *testing.T) {
	s := DefaultSettings()
	for _, name := range SettingNames() {
		s.Set(name, 0.5)
	}
	lut := make([]byte, 256)

	want := []string{"exposure", "whitebalance", "toneregions", "dehaze", "defringe", "saturation",
		"contrast", "gamma", "curve", "midcontrast", "hsl", "vignette", "grain"}
	got := stageNames(newFrame(s, Options{}, 4, 4, lut).stages())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stage order (-want +got):\n%s", diff)
	}
}

func TestProcessExposureSaturates(t *testing.T) {
	img := flatImage(2, 2, [3]byte{128, 128, 128})
	out := mustProcess(t, img, 2, 2, NewSettings(map[string]float64{"exposure": 1.0}), nil)
	if diff := cmp.Diff(flatImage(2, 2, [3]byte{255, 255, 255}), out); diff != "" {
		t.Errorf("exposure +1 (-want +got):\n%s", diff)
	}
}

func TestProcessFullDesaturate(t *testing.T) {
	out := mustProcess(t, []byte{200, 50, 50}, 1, 1, NewSettings(map[string]float64{"saturation": -1.0}), nil)
	if diff := cmp.Diff([]byte{100, 100, 100}, out); diff != "" {
		t.Errorf("saturation -1 (-want +got):\n%s", diff)
	}
}

func TestProcessInvertingLUT(t *testing.T) {
	lut := make([]byte, 256)
	for i := range lut {
		lut[i] = byte(255 - i)
	}

	img := randomImage(5, 3, 3)
	want := make([]byte, len(img))
	for i, v := range img {
		want[i] = 255 - v
	}

	out := mustProcess(t, img, 5, 3, DefaultSettings(), lut)
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("inverting lut (-want +got):\n%s", diff)
	}
}

func TestProcessExtremeSettings(t *testing.T) {
	img := randomImage(9, 7, 4)

	for _, v := range []float64{-20, -5, -1, 1, 5, 20} {
		s := DefaultSettings()
		for _, name := range SettingNames() {
			s.Set(name, v)
		}
		mustProcess(t, img, 9, 7, s, nil)
	}

	s := NewSettings(map[string]float64{"exposure": 20, "saturation": -5, "gamma": 0.01, "grain_amount": 50, "grain_roughness": 10})
	mustProcess(t, img, 9, 7, s, nil)

	// A huge exposure overflows the multiplier to +Inf, so a zero channel
	// becomes NaN; that has to clamp to 0 rather than poison the gray
	// value used by saturation.
	s = NewSettings(map[string]float64{"exposure": 2000, "saturation": 0.5})
	out := mustProcess(t, []byte{0, 128, 128}, 1, 1, s, nil)
	if diff := cmp.Diff([]byte{0, 255, 255}, out); diff != "" {
		t.Errorf("overflowed exposure (-want +got):\n%s", diff)
	}
}

func TestProcessStagesSinglePixel(t *testing.T) {
	tests := []struct {
		name string
		in   [3]byte
		set  map[string]float64
		want []byte
	}{
		{"whitebalance", [3]byte{100, 140, 200}, map[string]float64{"temperature": 0.5, "tint": 0.1}, []byte{138, 139, 116}},
		{"shadows", [3]byte{40, 60, 80}, map[string]float64{"shadows": 0.5}, []byte{49, 73, 98}},
		{"highlights", [3]byte{220, 230, 240}, map[string]float64{"highlights": 0.5}, []byte{142, 148, 155}},
		{"whites cap", [3]byte{200, 100, 50}, map[string]float64{"whites": 0.5}, []byte{255, 130, 65}},
		// Negative whites go below zero, and blacks lifts them back up without a floor in between
		{"whites no floor", [3]byte{255, 102, 51}, map[string]float64{"whites": -2, "blacks": 1}, []byte{51, 82, 92}},
		// Blacks pushes red to 1.2, and saturation averages that, not 1.0
		{"blacks no cap", [3]byte{255, 102, 51}, map[string]float64{"blacks": 0.5, "saturation": -1}, []byte{187, 187, 187}},
		{"dehaze", [3]byte{150, 160, 170}, map[string]float64{"dehaze": 0.5}, []byte{102, 112, 122}},
		{"defringe", [3]byte{180, 60, 200}, map[string]float64{"defringe": 1}, []byte{96, 96, 96}},
		{"vibrance", [3]byte{150, 100, 100}, map[string]float64{"vibrance": 0.5}, []byte{164, 93, 93}},
		// Contrast leaves (1.30, 0.50, -0.30) for midcontrast to pull back in
		{"contrast no clamp", [3]byte{230, 128, 25}, map[string]float64{"contrast": 1, "mid_contrast": -0.4}, []byte{201, 128, 54}},
		{"gamma clamps first", [3]byte{230, 128, 25}, map[string]float64{"contrast": 1, "gamma": 2.2}, []byte{255, 187, 0}},
		{"midcontrast", [3]byte{64, 128, 230}, map[string]float64{"mid_contrast": 0.5}, []byte{13, 128, 255}},
		{"grain smooth", [3]byte{128, 128, 128}, map[string]float64{"grain_amount": 1, "grain_roughness": 0.25}, []byte{115, 115, 115}},
		{"grain rough", [3]byte{128, 128, 128}, map[string]float64{"grain_amount": 1, "grain_roughness": 0.9}, []byte{108, 108, 108}},
		{"grain shadows", [3]byte{10, 10, 10}, map[string]float64{"grain_amount": 1, "grain_roughness": 0.5}, []byte{5, 5, 5}},
	}

	for _, test := range tests {
		out := mustProcess(t, test.in[:], 1, 1, NewSettings(test.set), nil)
		if diff := cmp.Diff(test.want, out); diff != "" {
			t.Errorf("%s: (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestProcessGrainNonPositiveSize(t *testing.T) {
	// grain_size -0.25 scales the coords by 1/0; this must still be
	// deterministic, and the origin (0/0) lands in cell zero.
	img := flatImage(4, 3, [3]byte{128, 128, 128})
	s := NewSettings(map[string]float64{"grain_amount": 1, "grain_size": -0.25})

	out := mustProcess(t, img, 4, 3, s, nil)
	if diff := cmp.Diff([]byte{120, 120, 120}, out[:3]); diff != "" {
		t.Errorf("origin pixel (-want +got):\n%s", diff)
	}

	for _, workers := range []int{1, 3} {
		got, err := NewDeveloper(Options{Workers: workers}).Process(img, 4, 3, s, nil)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if diff := cmp.Diff(out, got); diff != "" {
			t.Errorf("workers=%d (-want +got):\n%s", workers, diff)
		}
	}
}

func TestProcessHSLUsesOriginalHue(t *testing.T) {
	// The red band pushes pure red round to yellow. The yellow band is
	// keyed off the hue before that shift, so it mustn't touch the pixel.
	s := NewSettings(map[string]float64{"h_red": 60, "s_yellow": -1})
	out := mustProcess(t, []byte{255, 0, 0}, 1, 1, s, nil)
	if diff := cmp.Diff([]byte{255, 255, 0}, out); diff != "" {
		t.Errorf("hsl (-want +got):\n%s", diff)
	}
}

func TestProcessVignetteFloor(t *testing.T) {
	img := flatImage(9, 9, [3]byte{200, 200, 200})
	out := mustProcess(t, img, 9, 9, NewSettings(map[string]float64{"vignette": 1.0}), nil)

	for i, v := range out {
		if v < 40 || v > 200 {
			t.Fatalf("byte %d = %d, outside [40,200]", i, v)
		}
	}
	if out[0] != 40 {
		t.Errorf("corner = %d, want 40", out[0])
	}
	if c := (4*9 + 4) * 3; out[c] != 200 {
		t.Errorf("center = %d, want 200", out[c])
	}
}

func TestProcessDehazeContrastOption(t *testing.T) {
	img := randomImage(8, 8, 5)
	s := NewSettings(map[string]float64{"dehaze": 0.5})

	plain, err := NewDeveloper(Options{}).Process(img, 8, 8, s, nil)
	if err != nil {
		t.Fatal(err)
	}
	boosted, err := NewDeveloper(Options{DehazeContrast: true}).Process(img, 8, 8, s, nil)
	if err != nil {
		t.Fatal(err)
	}

	if cmp.Equal(plain, boosted) {
		t.Errorf("DehazeContrast made no difference")
	}
}

func TestProcessWorkerCountIndependent(t *testing.T) {
	img := randomImage(31, 23, 6)
	s := NewSettings(map[string]float64{
		"denoise":         0.6,
		"exposure":        0.3,
		"shadows":         0.4,
		"vibrance":        0.3,
		"h_orange":       -10,
		"vignette":        0.5,
		"grain_amount":    0.4,
		"grain_size":      0.5,
		"grain_roughness": 0.8,
	})

	want, err := NewDeveloper(Options{Workers: 1}).Process(img, 31, 23, s, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []int{2, 3, 7, 64} {
		got, err := NewDeveloper(Options{Workers: n}).Process(img, 31, 23, s, nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%d workers differs from 1 (-want +got):\n%s", n, diff)
		}
	}
}

func TestProcessDebugPixels(t *testing.T) {
	defer func(old []image.Point) { DebugPixels = old }(DebugPixels)
	DebugPixels = []image.Point{{1, 1}, {50, 50}}

	buf := captureLog(t)
	img := randomImage(3, 3, 7)
	mustProcess(t, img, 3, 3, NewSettings(map[string]float64{"contrast": 0.3}), nil)

	logged := buf.String()
	for _, want := range []string{"debug pixel", "x=1 y=1", "Pixel @(1,1)", "contrast"} {
		if !strings.Contains(logged, want) {
			t.Errorf("log is missing %q:\n%s", want, logged)
		}
	}
	if strings.Contains(logged, "x=50") {
		t.Errorf("logged a pixel outside the image:\n%s", logged)
	}
}

func BenchmarkProcess(b *testing.B) {
	img := randomImage(640, 480, 8)
	s := NewSettings(map[string]float64{
		"exposure":     0.35,
		"contrast":     0.1,
		"shadows":      0.4,
		"vibrance":     0.25,
		"h_orange":    -8,
		"vignette":     0.3,
		"grain_amount": 0.2,
	})

	b.SetBytes(int64(len(img)))
	b.ResetTimer()
	for i:=0; i<b.N; i++ {
		Process(img, 640, 480, s, nil)
	}
}

func BenchmarkProcessWithDenoise(b *testing.B) {
	img := randomImage(640, 480, 9)
	s := NewSettings(map[string]float64{"denoise": 0.5, "exposure": 0.2})

	b.SetBytes(int64(len(img)))
	b.ResetTimer()
	for i:=0; i<b.N; i++ {
		Process(img, 640, 480, s, nil)
	}
}
