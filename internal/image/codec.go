package imagepkg

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/youruser/imgcomp/internal/util"
)

// MaxSourcePixels bounds the decoded size of a source image. A few bytes of
// header can declare a raster of many gigabytes.
const MaxSourcePixels = 64 << 20

// Decode turns uploaded file bytes into a raster, honoring EXIF orientation.
// Images declaring more than MaxSourcePixels fail with InvalidDimensions
// before any pixel is decoded.
func Decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, newError(DecodeFailure, errors.Wrap(err, "decode image header"))
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, invalidDimensions("source %dx%d exceeds %d pixels", cfg.Width, cfg.Height, MaxSourcePixels)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, newError(DecodeFailure, errors.Wrap(err, "decode image"))
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, invalidDimensions("source %dx%d", b.Dx(), b.Dy())
	}
	return img, nil
}

// DownloadImage fetches and decodes an auxiliary image such as a background.
func DownloadImage(url string) (image.Image, error) {
	body, err := util.GetBytes(url)
	if err != nil {
		return nil, newError(DecodeFailure, errors.Wrapf(err, "fetch %s", url))
	}
	return Decode(body)
}

// Encode writes img in the given format. Quality (1-100) applies to JPEG
// and WebP.
func Encode(w io.Writer, img image.Image, format OutputFormat, quality int) error {
	var err error
	switch format {
	case FormatJPEG:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	case FormatPNG, "":
		err = imaging.Encode(w, img, imaging.PNG)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return newError(EncodeFailure, errors.Wrapf(err, "encode %s", format))
	}
	return nil
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(img image.Image, format OutputFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OutputFilename names a result after its source: photo.jpg becomes
// photo_832x832.png.
func OutputFilename(name string, cfg StyleConfig) string {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "image"
	}
	format := cfg.OutputFormat
	if format == "" {
		format = FormatPNG
	}
	return fmt.Sprintf("%s_%dx%d.%s", stem, cfg.OutputWidth, cfg.OutputHeight, format)
}

// ContentType returns the MIME type of an output format.
func ContentType(format OutputFormat) string {
	switch format {
	case FormatJPEG:
		return "image/jpeg"
	case FormatWebP:
		return "image/webp"
	}
	return "image/png"
}
