package imagepkg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	src := solidImage(32, 24, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	for _, format := range []OutputFormat{FormatPNG, FormatJPEG, FormatWebP} {
		t.Run(string(format), func(t *testing.T) {
			data, err := EncodeBytes(src, format, 90)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			img, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 32, 24), img.Bounds())

			r, g, _, _ := img.At(16, 12).RGBA()
			assert.InDelta(t, 200, int(r>>8), 12)
			assert.InDelta(t, 40, int(g>>8), 12)
		})
	}
}

func TestEncode_PNGKeepsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(1, 1, red)
	data, err := EncodeBytes(src, FormatPNG, 0)
	require.NoError(t, err)

	img, err := Decode(data)
	require.NoError(t, err)
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a)
	_, _, _, a = img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecodeFailure))
	assert.Equal(t, DecodeFailure, KindOf(err))
}

// hugePNG is a valid one-pixel PNG whose header claims w x h.
func hugePNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	b := buf.Bytes()
	// IHDR data follows the signature, chunk length and chunk type.
	binary.BigEndian.PutUint32(b[16:], w)
	binary.BigEndian.PutUint32(b[20:], h)
	binary.BigEndian.PutUint32(b[29:], crc32.ChecksumIEEE(b[12:29]))
	return b
}

func TestDecode_PixelBudget(t *testing.T) {
	_, err := Decode(hugePNG(t, 50000, 50000))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDimensions))
	assert.Contains(t, err.Error(), "50000x50000")

	// the header alone decides; the bogus body is never read
	_, err = Decode(hugePNG(t, 8192, 8193))
	assert.True(t, errors.Is(err, ErrInvalidDimensions))

	img, err := Decode(hugePNG(t, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, img.Bounds().Dx())
}

func TestEncode_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, solidImage(2, 2, red), OutputFormat("gif"), 90)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEncodeFailure))
	assert.Zero(t, buf.Len())
}

func TestOutputFilename(t *testing.T) {
	cfg := DefaultStyleConfig()
	tests := []struct {
		name   string
		format OutputFormat
		want   string
	}{
		{"photo.jpg", FormatPNG, "photo_832x832.png"},
		{"dir/photo.final.jpg", FormatPNG, "photo.final_832x832.png"},
		{"scan.tiff", FormatWebP, "scan_832x832.webp"},
		{"noext", FormatJPEG, "noext_832x832.jpeg"},
		{"", FormatPNG, "image_832x832.png"},
	}
	for _, tt := range tests {
		cfg.OutputFormat = tt.format
		assert.Equal(t, tt.want, OutputFilename(tt.name, cfg), tt.name)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType(FormatPNG))
	assert.Equal(t, "image/jpeg", ContentType(FormatJPEG))
	assert.Equal(t, "image/webp", ContentType(FormatWebP))
}

func TestSampleSource(t *testing.T) {
	img, err := SampleSource("hello", 256)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 256, 256), img.Bounds())

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b}, "quiet zone is white")

	cut := RemoveBackground(img, BackgroundTolerance)
	require.NotNil(t, cut)
	assert.Equal(t, uint8(0), cut.NRGBAAt(0, 0).A)

	_, err = SampleSource("hello", 0)
	assert.True(t, errors.Is(err, ErrInvalidDimensions))
}

func TestSamplePNG(t *testing.T) {
	data, err := SamplePNG("hello", 128)
	require.NoError(t, err)
	img, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}
