package imagepkg

import (
	"image"
)

// Composite renders src onto a new cfg.OutputWidth x cfg.OutputHeight
// canvas: base background, then either the cut-out foreground (when
// cfg.RemoveBackground is set) or the blurred backdrop, tint, foreground,
// border and fades, and finally the watermark.
//
// cfg must already be valid (see StyleConfig.Clamp). A zero-area source
// still yields a canvas with background and watermark.
func Composite(src image.Image, cfg StyleConfig, opts ...Option) (*image.NRGBA, error) {
	if src == nil {
		return nil, invalidDimensions("nil source image")
	}
	o := buildOptions(opts)
	c, err := NewCanvas(cfg.OutputWidth, cfg.OutputHeight, o.scale)
	if err != nil {
		return nil, err
	}

	ResolveBackground(c, cfg)

	sb := src.Bounds()
	if cfg.RemoveBackground && !sb.Empty() {
		drawCutout(c, src, cfg)
	} else {
		drawLayered(c, src, cfg)
	}

	if err := drawWatermark(c, cfg); err != nil {
		return nil, err
	}
	return c.Image(), nil
}

// drawCutout places the background-removed source, contained without margin.
func drawCutout(c *Canvas, src image.Image, cfg StyleConfig) {
	sb := src.Bounds()
	cut := RemoveBackground(src, BackgroundTolerance)
	fg := FitRect(aspectOf(sb.Dx(), sb.Dy()), float64(c.width), float64(c.height), FitContain, 0)
	c.DrawImage(cut, fg, PlainFilter(cfg))
}

// drawLayered is the normal path: soft cover backdrop, overlay tint, crisp
// contained foreground inset by the border, then border and fades.
func drawLayered(c *Canvas, src image.Image, cfg StyleConfig) {
	sb := src.Bounds()
	w, h := float64(c.width), float64(c.height)
	if sb.Empty() {
		if cfg.OverlayOpacity > 0 {
			c.Tint(cfg.OverlayColor.NRGBA(cfg.OverlayOpacity))
		}
		return
	}
	aspect := aspectOf(sb.Dx(), sb.Dy())

	if cfg.BlurRadius > 0 {
		c.DrawImage(src, FitRect(aspect, w, h, FitCover, 0), SoftFilter(cfg))
	}
	if cfg.OverlayOpacity > 0 {
		c.Tint(cfg.OverlayColor.NRGBA(cfg.OverlayOpacity))
	}

	fg := FitRect(aspect, w, h, FitContain, cfg.BorderWidth)
	c.DrawImage(src, fg, CrispFilter(cfg))
	StrokeBorder(c, fg, cfg.BorderWidth, cfg.BorderColor)
	FadeEdges(c, fg, cfg.FadeWidth)
}
