package imagepkg

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
)

// Bundled bold faces. Requested families are mapped onto these; anything
// unknown falls back to Go Bold.
// TODO: accept a fonts directory so real serif families can be loaded.
var familyFonts = map[string][]byte{
	"arial":           gobold.TTF,
	"verdana":         gobold.TTF,
	"helvetica":       gobold.TTF,
	"impact":          gobold.TTF,
	"sans-serif":      gobold.TTF,
	"georgia":         gobold.TTF,
	"times new roman": gobold.TTF,
	"serif":           gobold.TTF,
	"courier new":     gomonobold.TTF,
	"courier":         gomonobold.TTF,
	"monospace":       gomonobold.TTF,
}

var (
	fontMu    sync.Mutex
	fontCache = map[string]*opentype.Font{}
)

func parsedFont(family string) (*opentype.Font, error) {
	key := strings.ToLower(strings.TrimSpace(family))
	data, ok := familyFonts[key]
	if !ok {
		key, data = "", gobold.TTF
	}

	fontMu.Lock()
	defer fontMu.Unlock()
	if f, ok := fontCache[key]; ok {
		return f, nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse font %q", family)
	}
	fontCache[key] = f
	return f, nil
}

// NewFace returns a face of the requested family at size pixels.
// Faces are not safe for concurrent use; each run makes its own.
func NewFace(family string, size float64) (font.Face, error) {
	f, err := parsedFont(family)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "face %q at %gpx", family, size)
	}
	return face, nil
}
