package photo

import(
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/abworrall/ninlab/pkg/develop"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".gif":  true,
}

// Load decodes an image file, applying any EXIF orientation so the
// buffer is upright.
func Load(filename string) (*Photo, error) {
	if !imageExts[strings.ToLower(filepath.Ext(filename))] {
		return nil, fmt.Errorf("load '%s': %w", filename, ErrUnsupportedFormat)
	}

	img, err := imaging.Open(filename, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode '%s': %v", filename, err)
	}

	return FromImage(filename, img), nil
}

// A Collection is what a command line full of files and dirs turns into.
type Collection struct {
	Photos       []*Photo
	Settings     develop.Settings // Base settings, for photos without their own sidecar
	SettingsFile string

	sidecars     map[string]string // base filename (no ext) -> yaml file
}

func NewCollection() *Collection {
	return &Collection{
		Settings: develop.DefaultSettings(),
		sidecars: map[string]string{},
	}
}

// LoadFilesAndDirs loads images, and picks up settings from any .yaml
// files. A yaml file next to an image with the same base name
// (IMG_0042.jpg, IMG_0042.yaml) is that image's sidecar; any other yaml
// file becomes the base settings for the photos without one.
func LoadFilesAndDirs(args ...string) (*Collection, error) {
	c := NewCollection()
	if err := c.LoadFilesAndDirs(args...); err != nil {
		return c, err
	}
	if err := c.applySidecars(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Collection)LoadFilesAndDirs(args ...string) error {
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return fmt.Errorf("load %s: %v", arg, err)

		case item.IsDir():
			// Is a dir, recurse into contents
			contents, err := os.ReadDir(arg)
			if err != nil {
				return fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				if err := c.LoadFilesAndDirs(filepath.Join(arg, content.Name())); err != nil {
					return fmt.Errorf("load %s: %v", arg, err)
				}
			}

		default: // is a file, load it
			if err := c.loadFile(arg); err != nil {
				return fmt.Errorf("loadfile %s: %v", arg, err)
			}
		}
	}

	return nil
}

func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

func (c *Collection)loadFile(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	switch {

	case ext == ".yaml" || ext == ".yml":
		c.sidecars[stem(filename)] = filename

	case imageExts[ext]:
		p, err := Load(filename)
		if err != nil {
			return err
		}
		c.Photos = append(c.Photos, p)

	default:
		log.Printf("Skipping %s\n", filename)
	}

	return nil
}

// applySidecars runs once everything is loaded, since a directory
// listing may put the yaml before or after its image.
func (c *Collection)applySidecars() error {
	claimed := map[string]bool{}
	for _, p := range c.Photos {
		if yamlFile, exists := c.sidecars[stem(p.Filename)]; exists {
			claimed[yamlFile] = true
			p.SettingsFile = yamlFile
		}
	}

	// Unclaimed files are base settings; if there are several, the last (by name) wins
	base := []string{}
	for _, yamlFile := range c.sidecars {
		if !claimed[yamlFile] {
			base = append(base, yamlFile)
		}
	}
	sort.Strings(base)
	for _, yamlFile := range base {
		s, err := develop.LoadSettings(yamlFile)
		if err != nil {
			return err
		}
		c.Settings, c.SettingsFile = s, yamlFile
		log.Printf("Loaded base settings from %s\n", yamlFile)
	}

	for _, p := range c.Photos {
		if p.SettingsFile == "" {
			p.Settings, p.SettingsFile = c.Settings, c.SettingsFile
			continue
		}
		s, err := develop.LoadSettings(p.SettingsFile)
		if err != nil {
			return err
		}
		p.Settings = s
	}

	return nil
}
