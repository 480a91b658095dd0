package imagepkg

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// borderedImage is a w x h image with a 1px border of edge and a solid fill
// of inner.
func borderedImage(w, h int, edge, inner color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				img.SetNRGBA(x, y, edge)
			} else {
				img.SetNRGBA(x, y, inner)
			}
		}
	}
	return img
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

var (
	black = color.NRGBA{A: 255}
	red   = color.NRGBA{R: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

func TestRemoveBackground_BlackBorderRedInterior(t *testing.T) {
	src := borderedImage(10, 10, black, red)
	out := RemoveBackground(src, BackgroundTolerance)
	require.NotNil(t, out)

	border, interior := 0, 0
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			px := out.NRGBAAt(x, y)
			if x == 0 || y == 0 || x == 9 || y == 9 {
				border++
				assert.Equal(t, uint8(0), px.A, "border pixel (%d,%d) should be transparent", x, y)
			} else {
				interior++
				assert.Equal(t, red, px, "interior pixel (%d,%d) should be unchanged", x, y)
			}
		}
	}
	assert.Equal(t, 36, border)
	assert.Equal(t, 64, interior)

	// source is not touched
	assert.Equal(t, black, src.NRGBAAt(0, 0))
}

func TestRemoveBackground_Tolerance(t *testing.T) {
	near := color.NRGBA{R: 29, G: 29, B: 29, A: 255}
	far := color.NRGBA{R: 30, G: 0, B: 0, A: 255}
	src := borderedImage(5, 5, black, near)
	src.SetNRGBA(2, 2, far)

	out := RemoveBackground(src, BackgroundTolerance)
	assert.Equal(t, uint8(0), out.NRGBAAt(1, 1).A, "within tolerance")
	assert.Equal(t, uint8(255), out.NRGBAAt(2, 2).A, "distance equal to tolerance is kept")
}

func TestRemoveBackground_Degenerate(t *testing.T) {
	assert.Nil(t, RemoveBackground(image.NewNRGBA(image.Rect(0, 0, 0, 5)), BackgroundTolerance))
	assert.Nil(t, EdgeSamples(image.NewNRGBA(image.Rect(0, 0, 5, 0))))
}

func TestEdgeSamples_Order(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.SetNRGBA(0, 0, red)
	img.SetNRGBA(0, 2, blue)
	img.SetNRGBA(3, 1, black)

	s := EdgeSamples(img)
	require.Len(t, s, 2*4+2*3)
	assert.Equal(t, red, s[0], "top of first column")
	assert.Equal(t, blue, s[1], "bottom of first column")
	assert.Equal(t, black, s[2*4+2*1+1], "right end of the middle row")
}

func TestEdgeSamples_OffsetBounds(t *testing.T) {
	img := borderedImage(6, 6, black, red)
	sub := img.SubImage(image.Rect(1, 1, 5, 5))
	for _, c := range EdgeSamples(sub) {
		assert.Equal(t, red, c)
	}
}

func TestEstimateBackgroundColor(t *testing.T) {
	a := color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	b := color.NRGBA{R: 10, G: 20, B: 30, A: 255}

	tests := []struct {
		name    string
		samples []color.NRGBA
		want    RGB
	}{
		{"empty is white", nil, RGB{255, 255, 255}},
		{"majority wins", []color.NRGBA{a, b, b}, RGB{10, 20, 30}},
		{"quantized", []color.NRGBA{{R: 9, G: 19, B: 255, A: 255}}, RGB{0, 10, 250}},
		{"near duplicates share a bucket", []color.NRGBA{a, {R: 205, G: 209, B: 201, A: 255}, b}, RGB{200, 200, 200}},
		{"tie goes to first seen", []color.NRGBA{a, b}, RGB{200, 200, 200}},
		{"tie goes to first to reach max", []color.NRGBA{a, b, b, a}, RGB{10, 20, 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateBackgroundColor(tt.samples))
		})
	}
}

func TestResolveBackground(t *testing.T) {
	t.Run("transparent", func(t *testing.T) {
		c, err := NewCanvas(100, 100, 1)
		require.NoError(t, err)
		ResolveBackground(c, StyleConfig{BackgroundMode: BackgroundTransparent, BackgroundColor: RGB{R: 255}})
		assert.Equal(t, color.NRGBA{}, c.Image().NRGBAAt(50, 50))
	})

	t.Run("color", func(t *testing.T) {
		c, err := NewCanvas(100, 100, 1)
		require.NoError(t, err)
		ResolveBackground(c, StyleConfig{BackgroundMode: BackgroundColor, BackgroundColor: RGB{R: 255}})
		assert.Equal(t, red, c.Image().NRGBAAt(0, 0))
		assert.Equal(t, red, c.Image().NRGBAAt(99, 99))
	})

	t.Run("image is stretched", func(t *testing.T) {
		c, err := NewCanvas(100, 100, 1)
		require.NoError(t, err)
		ResolveBackground(c, StyleConfig{BackgroundMode: BackgroundImage, BackgroundImage: solidImage(10, 40, blue)})
		for _, p := range []image.Point{{0, 0}, {99, 0}, {0, 99}, {99, 99}, {50, 50}} {
			px := c.Image().NRGBAAt(p.X, p.Y)
			assert.Equal(t, uint8(255), px.A, "pixel %v", p)
			assert.InDelta(t, 255, int(px.B), 1, "pixel %v", p)
		}
	})

	t.Run("missing image stays transparent", func(t *testing.T) {
		c, err := NewCanvas(100, 100, 1)
		require.NoError(t, err)
		ResolveBackground(c, StyleConfig{BackgroundMode: BackgroundImage})
		assert.Equal(t, color.NRGBA{}, c.Image().NRGBAAt(50, 50))
	})
}
