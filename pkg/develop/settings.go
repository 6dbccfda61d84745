package develop

import(
	"fmt"
	"log"
	"os"
	"sort"

	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v2"
)

/* Example settings sidecar ...

exposure: 0.35
contrast: 0.1
shadows: 0.4
vibrance: 0.25
gamma: 1.0
h_orange: -8
s_blue: 0.3
grain_amount: 0.2
grain_size: 0.5
grain_roughness: 0.5

*/

// Settings holds every control the editor knows about. A missing key
// in the source mapping means "no effect", so every field defaults to
// 0.0, except Gamma which defaults to 1.0.
type Settings struct {
	Exposure       float64 `yaml:"exposure"`     // stops
	Contrast       float64 `yaml:"contrast"`
	Highlights     float64 `yaml:"highlights"`
	Shadows        float64 `yaml:"shadows"`
	Whites         float64 `yaml:"whites"`
	Blacks         float64 `yaml:"blacks"`
	Saturation     float64 `yaml:"saturation"`
	Vibrance       float64 `yaml:"vibrance"`
	Temperature    float64 `yaml:"temperature"`
	Tint           float64 `yaml:"tint"`
	Gamma          float64 `yaml:"gamma"`
	MidContrast    float64 `yaml:"mid_contrast"`
	Dehaze         float64 `yaml:"dehaze"`
	Denoise        float64 `yaml:"denoise"`
	Vignette       float64 `yaml:"vignette"`
	Defringe       float64 `yaml:"defringe"`

	GrainAmount    float64 `yaml:"grain_amount"`
	GrainSize      float64 `yaml:"grain_size"`
	GrainRoughness float64 `yaml:"grain_roughness"`

	// These are set by the editor and kept so sidecars round-trip, but
	// nothing in the pipeline reads them.
	Clarity        float64 `yaml:"clarity"`
	Texture        float64 `yaml:"texture"`
	ExportSharpen  float64 `yaml:"export_sharpen"`
	ToneCurve      float64 `yaml:"tone_curve"`

	// HSL mixer. H is a hue shift in degrees, S scales saturation, L shifts value.
	HRed     float64 `yaml:"h_red"`
	SRed     float64 `yaml:"s_red"`
	LRed     float64 `yaml:"l_red"`
	HOrange  float64 `yaml:"h_orange"`
	SOrange  float64 `yaml:"s_orange"`
	LOrange  float64 `yaml:"l_orange"`
	HYellow  float64 `yaml:"h_yellow"`
	SYellow  float64 `yaml:"s_yellow"`
	LYellow  float64 `yaml:"l_yellow"`
	HGreen   float64 `yaml:"h_green"`
	SGreen   float64 `yaml:"s_green"`
	LGreen   float64 `yaml:"l_green"`
	HAqua    float64 `yaml:"h_aqua"`
	SAqua    float64 `yaml:"s_aqua"`
	LAqua    float64 `yaml:"l_aqua"`
	HBlue    float64 `yaml:"h_blue"`
	SBlue    float64 `yaml:"s_blue"`
	LBlue    float64 `yaml:"l_blue"`
	HPurple  float64 `yaml:"h_purple"`
	SPurple  float64 `yaml:"s_purple"`
	LPurple  float64 `yaml:"l_purple"`
	HMagenta float64 `yaml:"h_magenta"`
	SMagenta float64 `yaml:"s_magenta"`
	LMagenta float64 `yaml:"l_magenta"`
}

// A Band is one hue range of the HSL mixer.
type Band struct {
	Name   string
	Center float64 // degrees

	DH     float64 // hue shift, degrees
	DS     float64 // saturation scale
	DL     float64 // value shift
}

func (b Band)IsActive() bool {
	return active(b.DH) || active(b.DS) || active(b.DL)
}

// DefaultSettings is the neutral settings record; developing with it
// returns the input unchanged.
func DefaultSettings() Settings {
	return Settings{Gamma: 1.0}
}

// NewSettings builds a Settings from a sparse mapping. Keys we don't
// recognize are ignored, and no range checking is done.
func NewSettings(m map[string]float64) Settings {
	s := DefaultSettings()
	for k, v := range m {
		s.Set(k, v)
	}
	return s
}

// Set updates the named control, returning false if the name isn't one we know.
func (s *Settings)Set(name string, val float64) bool {
	p, exists := s.fields()[name]
	if !exists {
		return false
	}
	*p = val
	return true
}

// AsMap returns the full (non-sparse) mapping of control names to values.
func (s Settings)AsMap() map[string]float64 {
	m := map[string]float64{}
	for k, p := range s.fields() {
		m[k] = *p
	}
	return m
}

// SettingNames lists all the recognized control names, sorted.
func SettingNames() []string {
	s := Settings{}
	names := maps.Keys(s.fields())
	sort.Strings(names)
	return names
}

// Bands returns the HSL mixer bands, in the fixed order they get applied.
func (s Settings)Bands() [8]Band {
	return [8]Band{
		{"red",       0.0, s.HRed,     s.SRed,     s.LRed},
		{"orange",   30.0, s.HOrange,  s.SOrange,  s.LOrange},
		{"yellow",   60.0, s.HYellow,  s.SYellow,  s.LYellow},
		{"green",   120.0, s.HGreen,   s.SGreen,   s.LGreen},
		{"aqua",    180.0, s.HAqua,    s.SAqua,    s.LAqua},
		{"blue",    240.0, s.HBlue,    s.SBlue,    s.LBlue},
		{"purple",  280.0, s.HPurple,  s.SPurple,  s.LPurple},
		{"magenta", 320.0, s.HMagenta, s.SMagenta, s.LMagenta},
	}
}

func (s Settings)HasHSL() bool {
	for _, b := range s.Bands() {
		if b.IsActive() {
			return true
		}
	}
	return false
}

func (s Settings)AsYaml() string {
	b, err := yaml.Marshal(s)
	if err != nil {
		log.Fatalf("Can't marshal settings yaml: %v\n", err)
	}
	return string(b)
}

func newSettingsFromYaml(b []byte) (Settings, error) {
	m := map[string]float64{}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return DefaultSettings(), err
	}
	return NewSettings(m), nil
}

// LoadSettings reads a YAML sidecar. Like NewSettings, it is sparse:
// controls missing from the file get their defaults.
func LoadSettings(filename string) (Settings, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return DefaultSettings(), fmt.Errorf("settings read %s: %v", filename, err)
	}

	s, err := newSettingsFromYaml(contents)
	if err != nil {
		return s, fmt.Errorf("settings parse %s: %v", filename, err)
	}
	return s, nil
}

func (s *Settings)fields() map[string]*float64 {
	return map[string]*float64{
		"exposure":        &s.Exposure,
		"contrast":        &s.Contrast,
		"highlights":      &s.Highlights,
		"shadows":         &s.Shadows,
		"whites":          &s.Whites,
		"blacks":          &s.Blacks,
		"saturation":      &s.Saturation,
		"vibrance":        &s.Vibrance,
		"temperature":     &s.Temperature,
		"tint":            &s.Tint,
		"gamma":           &s.Gamma,
		"mid_contrast":    &s.MidContrast,
		"dehaze":          &s.Dehaze,
		"denoise":         &s.Denoise,
		"vignette":        &s.Vignette,
		"defringe":        &s.Defringe,
		"grain_amount":    &s.GrainAmount,
		"grain_size":      &s.GrainSize,
		"grain_roughness": &s.GrainRoughness,
		"clarity":         &s.Clarity,
		"texture":         &s.Texture,
		"export_sharpen":  &s.ExportSharpen,
		"tone_curve":      &s.ToneCurve,

		"h_red":     &s.HRed,     "s_red":     &s.SRed,     "l_red":     &s.LRed,
		"h_orange":  &s.HOrange,  "s_orange":  &s.SOrange,  "l_orange":  &s.LOrange,
		"h_yellow":  &s.HYellow,  "s_yellow":  &s.SYellow,  "l_yellow":  &s.LYellow,
		"h_green":   &s.HGreen,   "s_green":   &s.SGreen,   "l_green":   &s.LGreen,
		"h_aqua":    &s.HAqua,    "s_aqua":    &s.SAqua,    "l_aqua":    &s.LAqua,
		"h_blue":    &s.HBlue,    "s_blue":    &s.SBlue,    "l_blue":    &s.LBlue,
		"h_purple":  &s.HPurple,  "s_purple":  &s.SPurple,  "l_purple":  &s.LPurple,
		"h_magenta": &s.HMagenta, "s_magenta": &s.SMagenta, "l_magenta": &s.LMagenta,
	}
}
