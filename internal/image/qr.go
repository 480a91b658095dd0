package imagepkg

import (
	"image"

	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// SampleSource renders text as a QR code of size x size pixels. Previews use
// it when no image was uploaded; the white quiet zone makes a clean
// background-removal demo.
func SampleSource(text string, size int) (image.Image, error) {
	if size <= 0 {
		return nil, invalidDimensions("sample size %d", size)
	}
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, errors.Wrap(err, "qr code")
	}
	return q.Image(size), nil
}

// SamplePNG is SampleSource encoded as PNG.
func SamplePNG(text string, size int) ([]byte, error) {
	if size <= 0 {
		return nil, invalidDimensions("sample size %d", size)
	}
	b, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrap(err, "qr code")
	}
	return b, nil
}
