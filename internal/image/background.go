package imagepkg

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// BackgroundTolerance is the per-channel distance under which a pixel is
// considered part of the background.
const BackgroundTolerance = 30

// quantStep coarsens each channel into 26 buckets when voting.
const quantStep = 10

// EdgeSamples returns the colors on the 1-pixel border of img: for every
// column the top then bottom pixel, then for every row the left then right
// pixel. Corners appear twice.
func EdgeSamples(img image.Image) []color.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}
	at := func(x, y int) color.NRGBA {
		return color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
	}
	samples := make([]color.NRGBA, 0, 2*w+2*h)
	for x := 0; x < w; x++ {
		samples = append(samples, at(x, 0), at(x, h-1))
	}
	for y := 0; y < h; y++ {
		samples = append(samples, at(0, y), at(w-1, y))
	}
	return samples
}

// EstimateBackgroundColor votes on quantized sample colors and returns the
// winning bucket scaled back to 0-255. Ties go to the bucket that reached
// the winning count first in sample order. No samples yields white.
func EstimateBackgroundColor(samples []color.NRGBA) RGB {
	type bucket struct{ r, g, b uint8 }
	counts := make(map[bucket]int)
	var best bucket
	maxCount := 0
	for _, s := range samples {
		k := bucket{s.R / quantStep, s.G / quantStep, s.B / quantStep}
		counts[k]++
		if counts[k] > maxCount {
			maxCount = counts[k]
			best = k
		}
	}
	if maxCount == 0 {
		return RGB{255, 255, 255}
	}
	return RGB{R: best.r * quantStep, G: best.g * quantStep, B: best.b * quantStep}
}

// RemoveBackground returns a copy of img in which every pixel whose color
// lies within tolerance of the estimated edge color is fully transparent.
// The cut is a hard per-pixel threshold. Degenerate images return nil.
func RemoveBackground(img image.Image, tolerance int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil
	}
	bg := EstimateBackgroundColor(EdgeSamples(img))
	out := imaging.Clone(img)
	tr, tg, tb := int(bg.R), int(bg.G), int(bg.B)
	pix := out.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		if absInt(int(pix[i])-tr) < tolerance &&
			absInt(int(pix[i+1])-tg) < tolerance &&
			absInt(int(pix[i+2])-tb) < tolerance {
			pix[i+3] = 0
		}
	}
	return out
}

// ResolveBackground paints the base layer selected by cfg.BackgroundMode.
func ResolveBackground(c *Canvas, cfg StyleConfig) {
	switch cfg.BackgroundMode {
	case BackgroundColor:
		c.Fill(cfg.BackgroundColor.NRGBA(1))
	case BackgroundImage:
		if cfg.BackgroundImage != nil && !cfg.BackgroundImage.Bounds().Empty() {
			c.Stretch(cfg.BackgroundImage)
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
