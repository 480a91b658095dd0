package imagepkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrokeBorder(t *testing.T) {
	c, err := NewCanvas(100, 100, 1)
	require.NoError(t, err)
	StrokeBorder(c, Rect{X: 20, Y: 20, W: 60, H: 60}, 10, RGB{255, 255, 255})

	img := c.Image()
	opaqueWhite := func(x, y int, msg string) {
		px := img.NRGBAAt(x, y)
		assert.GreaterOrEqual(t, px.A, uint8(250), msg)
		assert.GreaterOrEqual(t, px.R, uint8(250), msg)
	}
	opaqueWhite(15, 50, "left edge of the ring")
	opaqueWhite(10, 50, "outer boundary")
	opaqueWhite(85, 50, "right edge of the ring")
	opaqueWhite(50, 12, "top edge of the ring")
	opaqueWhite(12, 12, "square corner")
	assert.Equal(t, uint8(0), img.NRGBAAt(9, 50).A, "outside")
	assert.Equal(t, uint8(0), img.NRGBAAt(25, 50).A, "inside the foreground")
	assert.Equal(t, uint8(0), img.NRGBAAt(50, 50).A, "center")
}

func TestStrokeBorder_ZeroWidth(t *testing.T) {
	c, err := NewCanvas(100, 100, 1)
	require.NoError(t, err)
	StrokeBorder(c, Rect{X: 20, Y: 20, W: 60, H: 60}, 0, RGB{255, 255, 255})
	for _, v := range c.Image().Pix {
		require.Zero(t, v)
	}
}

func TestStrokeBorder_Scaled(t *testing.T) {
	c, err := NewCanvas(100, 100, 2)
	require.NoError(t, err)
	StrokeBorder(c, Rect{X: 20, Y: 20, W: 60, H: 60}, 10, RGB{R: 255})
	assert.GreaterOrEqual(t, c.Image().NRGBAAt(30, 100).A, uint8(250), "ring in device pixels")
	assert.Equal(t, uint8(0), c.Image().NRGBAAt(41, 100).A)
}

func TestFadeEdges(t *testing.T) {
	c, err := NewCanvas(100, 100, 1)
	require.NoError(t, err)
	FadeEdges(c, Rect{X: 20, Y: 0, W: 60, H: 100}, 10)

	img := c.Image()
	top := img.NRGBAAt(50, 0)
	assert.Equal(t, uint8(27), top.A, "0.11 alpha near the top edge")
	assert.Equal(t, uint8(0), top.R)
	assert.Equal(t, top, img.NRGBAAt(50, 99), "bottom mirrors top")
	assert.Less(t, img.NRGBAAt(50, 5).A, top.A, "fades inward")
	assert.Equal(t, uint8(0), img.NRGBAAt(50, 50).A, "middle untouched")
	assert.Equal(t, uint8(0), img.NRGBAAt(10, 0).A, "outside the foreground horizontally")
}

func TestGradientAlpha(t *testing.T) {
	assert.InDelta(t, 0.11, gradientAlpha(0, 10), 1e-9)
	assert.InDelta(t, 0.055, gradientAlpha(5, 10), 1e-9)
	assert.Zero(t, gradientAlpha(10, 10))
	assert.Zero(t, gradientAlpha(-1, 10))
}
