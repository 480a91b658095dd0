package imagepkg

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

const (
	// WatermarkPadding is the distance of anchored text from the canvas edges.
	WatermarkPadding = 30
	// watermarkStroke is the outline width in logical pixels.
	watermarkStroke = 2
)

type textAlign int

const (
	alignLeft textAlign = iota
	alignCenter
	alignRight
)

// Watermark stamps cfg's watermark text onto dst in place. dst is treated as
// a canvas rendered at the device scale given by opts. Blank text leaves dst
// untouched.
func Watermark(dst *image.NRGBA, cfg StyleConfig, opts ...Option) error {
	if strings.TrimSpace(cfg.WatermarkText) == "" {
		return nil
	}
	o := buildOptions(opts)
	return drawWatermark(wrapCanvas(dst, o.scale), cfg)
}

// WatermarkImage returns a copy of src with the watermark stamped at scale 1.
func WatermarkImage(src image.Image, cfg StyleConfig) (*image.NRGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, invalidDimensions("watermark source is empty")
	}
	dst := imaging.Clone(src)
	if err := Watermark(dst, cfg); err != nil {
		return nil, err
	}
	return dst, nil
}

func drawWatermark(c *Canvas, cfg StyleConfig) error {
	text := strings.TrimSpace(cfg.WatermarkText)
	if text == "" {
		return nil
	}
	face, err := NewFace(cfg.WatermarkFont, c.Device(cfg.WatermarkSize))
	if err != nil {
		return err
	}
	defer face.Close()

	radius := int(math.Max(1, math.Round(c.Device(watermarkStroke)/2)))
	stamp := newTextStamp(face, text, radius)
	fill := cfg.WatermarkColor.NRGBA(cfg.WatermarkOpacity)
	stroke := RGB{}.NRGBA(cfg.WatermarkOpacity * 0.5)

	w, h := float64(c.width), float64(c.height)
	if cfg.WatermarkPosition != PositionRepeat {
		x, y, align := anchor(cfg.WatermarkPosition, w, h, cfg.WatermarkSize)
		stamp.draw(c.img, c.Device(x)-stamp.alignOffset(align), c.Device(y), fill, stroke)
		return nil
	}

	anchors := RepeatAnchors(w, h, cfg.RepeatSpacing, cfg.WatermarkSize)
	rotation := math.Mod(cfg.RepeatRotation, 360)
	if rotation == 0 {
		for _, p := range anchors {
			stamp.draw(c.img, c.Device(p.X), c.Device(p.Y), fill, stroke)
		}
		return nil
	}

	// Tiles go into an unrotated layer in the rotated frame's coordinates,
	// which is then mapped onto the canvas by a rotation about its center.
	var frame image.Rectangle
	for _, p := range anchors {
		frame = frame.Union(stamp.bounds(c.Device(p.X), c.Device(p.Y)))
	}
	layer := image.NewNRGBA(frame)
	for _, p := range anchors {
		stamp.draw(layer, c.Device(p.X), c.Device(p.Y), fill, stroke)
	}
	b := c.img.Bounds()
	cx, cy := float64(b.Dx())/2, float64(b.Dy())/2
	xdraw.BiLinear.Transform(c.img, rotateAbout(rotation, cx, cy), layer, layer.Bounds(), xdraw.Over, nil)
	return nil
}

// anchor returns the pen position and alignment for a fixed position.
// Top anchors push the baseline down by the text size.
func anchor(pos Position, w, h, size float64) (float64, float64, textAlign) {
	const pad = WatermarkPadding
	switch pos {
	case PositionBottomRight:
		return w - pad, h - pad, alignRight
	case PositionBottomLeft:
		return pad, h - pad, alignLeft
	case PositionTopCenter:
		return w / 2, pad + size, alignCenter
	case PositionTopRight:
		return w - pad, pad + size, alignRight
	case PositionTopLeft:
		return pad, pad + size, alignLeft
	case PositionCenter:
		return w / 2, h / 2, alignCenter
	default:
		return w / 2, h - pad, alignCenter
	}
}

// RepeatGrid returns the number of columns and rows of the repeat tiling,
// including one cell of overscan on each side.
func RepeatGrid(width, height, spacing float64) (cols, rows int) {
	return int(math.Ceil(width/spacing)) + 2, int(math.Ceil(height/spacing)) + 2
}

// RepeatAnchors returns the unrotated pen positions of the repeat tiling,
// starting one cell before the origin.
func RepeatAnchors(width, height, spacing, size float64) []Point {
	cols, rows := RepeatGrid(width, height, spacing)
	out := make([]Point, 0, cols*rows)
	for row := -1; row < rows-1; row++ {
		for col := -1; col < cols-1; col++ {
			out = append(out, Point{X: float64(col) * spacing, Y: float64(row)*spacing + size})
		}
	}
	return out
}

// rotateAbout maps source coordinates to a rotation by deg degrees about
// (cx, cy).
func rotateAbout(deg, cx, cy float64) f64.Aff3 {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return f64.Aff3{
		cos, -sin, cx - (cos*cx - sin*cy),
		sin, cos, cy - (sin*cx + cos*cy),
	}
}

// textStamp is a pre-rendered line of text with its outline.
type textStamp struct {
	fill    *image.Alpha
	stroke  *image.Alpha
	offset  image.Point // mask origin relative to the pen position
	advance float64
}

func newTextStamp(face font.Face, text string, radius int) *textStamp {
	bounds, advance := font.BoundString(face, text)
	pad := radius + 1
	minX := bounds.Min.X.Floor() - pad
	minY := bounds.Min.Y.Floor() - pad
	maxX := bounds.Max.X.Ceil() + pad
	maxY := bounds.Max.Y.Ceil() + pad

	fill := image.NewAlpha(image.Rect(0, 0, maxX-minX, maxY-minY))
	d := &font.Drawer{
		Dst:  fill,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(-minX, -minY),
	}
	d.DrawString(text)

	return &textStamp{
		fill:    fill,
		stroke:  dilate(fill, radius),
		offset:  image.Pt(minX, minY),
		advance: float64(advance) / 64,
	}
}

func (s *textStamp) alignOffset(a textAlign) float64 {
	switch a {
	case alignCenter:
		return s.advance / 2
	case alignRight:
		return s.advance
	}
	return 0
}

func (s *textStamp) bounds(x, y float64) image.Rectangle {
	pen := image.Pt(int(math.Round(x)), int(math.Round(y)))
	return s.fill.Bounds().Add(pen.Add(s.offset))
}

// draw paints the outline and then the text with the pen at (x, y).
func (s *textStamp) draw(dst draw.Image, x, y float64, fill, stroke color.Color) {
	r := s.bounds(x, y)
	draw.DrawMask(dst, r, image.NewUniform(stroke), image.Point{}, s.stroke, image.Point{}, draw.Over)
	draw.DrawMask(dst, r, image.NewUniform(fill), image.Point{}, s.fill, image.Point{}, draw.Over)
}

// dilate grows the coverage of src by a disc of the given radius.
func dilate(src *image.Alpha, radius int) *image.Alpha {
	b := src.Bounds()
	out := image.NewAlpha(b)
	limit := radius*radius + radius
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var m uint8
			for dy := -radius; dy <= radius; dy++ {
				yy := y + dy
				if yy < b.Min.Y || yy >= b.Max.Y {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					xx := x + dx
					if xx < b.Min.X || xx >= b.Max.X || dx*dx+dy*dy > limit {
						continue
					}
					if v := src.Pix[src.PixOffset(xx, yy)]; v > m {
						m = v
					}
				}
			}
			out.Pix[out.PixOffset(x, y)] = m
		}
	}
	return out
}
