package imagepkg

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// fadeAlpha is the darkest alpha of the edge fades.
const fadeAlpha = 0.11

// StrokeBorder strokes a line of the given width centered on fg inflated by
// width/2, so the stroke hugs the outside of fg. Corners are square.
func StrokeBorder(c *Canvas, fg Rect, width float64, col RGB) {
	if width <= 0 {
		return
	}
	outer := fg.Inflate(width)
	s := float32(c.scale)
	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over

	// Outer clockwise, inner counter-clockwise: the inner rect is a hole.
	z.MoveTo(float32(outer.X)*s, float32(outer.Y)*s)
	z.LineTo(float32(outer.X+outer.W)*s, float32(outer.Y)*s)
	z.LineTo(float32(outer.X+outer.W)*s, float32(outer.Y+outer.H)*s)
	z.LineTo(float32(outer.X)*s, float32(outer.Y+outer.H)*s)
	z.ClosePath()
	z.MoveTo(float32(fg.X)*s, float32(fg.Y)*s)
	z.LineTo(float32(fg.X)*s, float32(fg.Y+fg.H)*s)
	z.LineTo(float32(fg.X+fg.W)*s, float32(fg.Y+fg.H)*s)
	z.LineTo(float32(fg.X+fg.W)*s, float32(fg.Y)*s)
	z.ClosePath()

	z.Draw(c.img, b, image.NewUniform(col.NRGBA(1)), image.Point{})
}

// FadeEdges darkens the top and bottom fadeWidth band of fg with a linear
// gradient from rgba(0,0,0,0.11) at the edge to transparent.
func FadeEdges(c *Canvas, fg Rect, fadeWidth float64) {
	if fadeWidth <= 0 {
		return
	}
	dr := c.DeviceRect(fg).Intersect(c.img.Bounds())
	if dr.Empty() {
		return
	}
	band := c.Device(fadeWidth)
	top := c.Device(fg.Y)
	bottom := c.Device(fg.Y + fg.H)
	for y := dr.Min.Y; y < dr.Max.Y; y++ {
		center := float64(y) + 0.5
		row := image.Rect(dr.Min.X, y, dr.Max.X, y+1)
		for _, a := range [2]float64{gradientAlpha(center-top, band), gradientAlpha(bottom-center, band)} {
			if a <= 0 {
				continue
			}
			shade := color.NRGBA{A: uint8(math.Round(a * 255))}
			draw.Draw(c.img, row, image.NewUniform(shade), image.Point{}, draw.Over)
		}
	}
}

// gradientAlpha is the fade alpha at distance d from the edge.
func gradientAlpha(d, band float64) float64 {
	if d < 0 || d >= band {
		return 0
	}
	return fadeAlpha * (1 - d/band)
}
