package photo

import(
	"fmt"
	"os"
	"sort"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"golang.org/x/exp/maps"
)

// metadataWalker collects every EXIF field it is shown. String values
// are unquoted; everything else uses the tag's own formatting
// (e.g. "56/10" for rationals).
type metadataWalker map[string]string

func (mw metadataWalker)Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag.Format() == tiff.StringVal {
		if s, err := tag.StringVal(); err == nil {
			mw[string(name)] = s
			return nil
		}
	}
	mw[string(name)] = tag.String()
	return nil
}

// ReadMetadata returns the EXIF fields of the file. It never fails: if
// the file can't be read, or has no EXIF, you get an empty map.
func ReadMetadata(filename string) (m map[string]string) {
	m = map[string]string{}

	// goexif can panic on some truncated or corrupt files
	defer func() {
		if r := recover(); r != nil {
			m = map[string]string{}
		}
	}()

	reader, err := os.Open(filename)
	if err != nil {
		return m
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return m
	}

	if err := ex.Walk(metadataWalker(m)); err != nil {
		return map[string]string{}
	}
	return m
}

// MetadataString formats the fields one per line, sorted by name.
func MetadataString(m map[string]string) string {
	keys := maps.Keys(m)
	sort.Strings(keys)

	str := ""
	for _, k := range keys {
		str += fmt.Sprintf("%s: %s\n", k, m[k])
	}
	return str
}
