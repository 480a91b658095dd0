package imagepkg

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
)

// MaxDeviceScale caps the device pixel ratio.
const MaxDeviceScale = 2.0

// Option configures Composite and Watermark.
type Option func(*options)

type options struct {
	scale float64
}

// WithDeviceScale renders at scale device pixels per logical unit.
func WithDeviceScale(scale float64) Option {
	return func(o *options) { o.scale = scale }
}

func buildOptions(opts []Option) options {
	o := options{scale: 1}
	for _, fn := range opts {
		fn(&o)
	}
	o.scale = normalizeScale(o.scale)
	return o
}

func normalizeScale(s float64) float64 {
	if s <= 0 || math.IsNaN(s) {
		return 1
	}
	return math.Min(s, MaxDeviceScale)
}

// Canvas is the working raster of one run. Geometry passed to its methods is
// in logical units; the device scale is applied only when rasterizing.
type Canvas struct {
	img    *image.NRGBA
	width  int
	height int
	scale  float64
}

// NewCanvas allocates a cleared canvas of width x height logical units.
func NewCanvas(width, height int, scale float64) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, invalidDimensions("output %dx%d", width, height)
	}
	scale = normalizeScale(scale)
	dw := int(math.Round(float64(width) * scale))
	dh := int(math.Round(float64(height) * scale))
	return &Canvas{
		img:    imaging.New(dw, dh, color.NRGBA{}),
		width:  width,
		height: height,
		scale:  scale,
	}, nil
}

// wrapCanvas treats an existing raster as a canvas at the given scale.
func wrapCanvas(img *image.NRGBA, scale float64) *Canvas {
	b := img.Bounds()
	return &Canvas{
		img:    img,
		width:  int(math.Round(float64(b.Dx()) / scale)),
		height: int(math.Round(float64(b.Dy()) / scale)),
		scale:  scale,
	}
}

// Image returns the device raster.
func (c *Canvas) Image() *image.NRGBA { return c.img }

// Width is the logical width.
func (c *Canvas) Width() int { return c.width }

// Height is the logical height.
func (c *Canvas) Height() int { return c.height }

// Scale is the number of device pixels per logical unit.
func (c *Canvas) Scale() float64 { return c.scale }

// Device converts a logical length to device pixels.
func (c *Canvas) Device(v float64) float64 { return v * c.scale }

// DeviceRect rounds a logical rect to device pixels. The result is never
// empty for a non-empty rect.
func (c *Canvas) DeviceRect(r Rect) image.Rectangle {
	x0 := int(math.Round(r.X * c.scale))
	y0 := int(math.Round(r.Y * c.scale))
	w := int(math.Round(r.W * c.scale))
	h := int(math.Round(r.H * c.scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return image.Rect(x0, y0, x0+w, y0+h)
}

// Fill paints the whole canvas with c, replacing what is there.
func (c *Canvas) Fill(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// Tint blends col over the whole canvas.
func (c *Canvas) Tint(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Over)
}

// Stretch draws src resized to exactly the canvas size, ignoring aspect.
func (c *Canvas) Stretch(src image.Image) {
	b := c.img.Bounds()
	layer := imaging.Resize(src, b.Dx(), b.Dy(), imaging.Lanczos)
	c.img = imaging.Overlay(c.img, layer, image.Point{}, 1.0)
}

// DrawImage resamples src into the logical rect r, applies filter to the
// resampled pixels and composites the result over the canvas. The filter
// affects this draw only.
//
// Only the part of r that can reach the canvas is rasterized: the canvas
// grown by three blur sigmas. A cover rect many times the canvas size
// costs no more than the canvas itself.
func (c *Canvas) DrawImage(src image.Image, r Rect, filter Filter) {
	dr := c.DeviceRect(r)
	pad := int(math.Ceil(3 * filter.blurSigma(c.scale)))
	win := dr.Intersect(c.img.Bounds().Inset(-pad))
	if win.Empty() {
		return
	}
	if win != dr {
		src, dr = cropWindow(src, dr, win)
	}
	layer := imaging.Resize(src, dr.Dx(), dr.Dy(), imaging.Lanczos)
	out := filter.apply(layer, c.scale)
	c.img = imaging.Overlay(c.img, out, dr.Min, 1.0)
}

// lanczosSupport is the kernel radius of imaging.Lanczos, in source pixels
// when upscaling and output pixels when downscaling.
const lanczosSupport = 3

// cropWindow narrows a draw of src into the device rect dr down to the part
// covering win. It returns the cropped source and the device rect it maps
// to, which contains win and lies within dr.
func cropWindow(src image.Image, dr, win image.Rectangle) (image.Image, image.Rectangle) {
	sb := src.Bounds()
	kx := float64(dr.Dx()) / float64(sb.Dx())
	ky := float64(dr.Dy()) / float64(sb.Dy())
	x0, x1 := sourceSpan(win.Min.X-dr.Min.X, win.Max.X-dr.Min.X, kx, sb.Dx())
	y0, y1 := sourceSpan(win.Min.Y-dr.Min.Y, win.Max.Y-dr.Min.Y, ky, sb.Dy())

	crop := imaging.Crop(src, image.Rect(x0, y0, x1, y1).Add(sb.Min))
	out := image.Rect(
		dr.Min.X+int(math.Round(float64(x0)*kx)),
		dr.Min.Y+int(math.Round(float64(y0)*ky)),
		dr.Min.X+int(math.Round(float64(x1)*kx)),
		dr.Min.Y+int(math.Round(float64(y1)*ky)),
	)
	return crop, out
}

// sourceSpan maps the device span [d0, d1) back to source pixels at k device
// pixels per source pixel, widened by the resampling kernel so the kept
// pixels resample as they would in the full image.
func sourceSpan(d0, d1 int, k float64, n int) (int, int) {
	m := int(math.Ceil(lanczosSupport / math.Min(k, 1)))
	lo := int(math.Floor(float64(d0)/k)) - m
	hi := int(math.Ceil(float64(d1)/k)) + m
	return max(lo, 0), min(hi, n)
}
