package imagepkg

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/gift"
)

const (
	// CrispContrastBoost is added to the contrast of the foreground draw to
	// offset the softening of the scale-to-fit resample.
	CrispContrastBoost = 5
	// CrispContrastFinish is a second contrast pass on the foreground draw.
	CrispContrastFinish = 110
)

// FilterKind identifies one filter function.
type FilterKind int

const (
	FilterBlur FilterKind = iota
	FilterBrightness
	FilterContrast
	FilterSaturate
)

// FilterFunc is one step of a Filter. Amount is in pixels for blur and in
// percent for the color functions.
type FilterFunc struct {
	Kind   FilterKind
	Amount float64
}

func (f FilterFunc) String() string {
	switch f.Kind {
	case FilterBlur:
		return fmt.Sprintf("blur(%gpx)", f.Amount)
	case FilterBrightness:
		return fmt.Sprintf("brightness(%g%%)", f.Amount)
	case FilterContrast:
		return fmt.Sprintf("contrast(%g%%)", f.Amount)
	case FilterSaturate:
		return fmt.Sprintf("saturate(%g%%)", f.Amount)
	}
	return ""
}

// Filter is an ordered list of filter functions applied to a single draw.
// The zero value is the identity.
type Filter []FilterFunc

func (f Filter) String() string {
	if len(f) == 0 {
		return "none"
	}
	parts := make([]string, len(f))
	for i, fn := range f {
		parts[i] = fn.String()
	}
	return strings.Join(parts, " ")
}

// SoftFilter is used for the blurred cover backdrop.
func SoftFilter(cfg StyleConfig) Filter {
	return Filter{
		{FilterBlur, cfg.BlurRadius},
		{FilterBrightness, cfg.Brightness},
		{FilterContrast, cfg.Contrast},
		{FilterSaturate, cfg.Saturation},
	}
}

// CrispFilter is used for the foreground on the normal path.
func CrispFilter(cfg StyleConfig) Filter {
	return Filter{
		{FilterBrightness, cfg.Brightness},
		{FilterContrast, cfg.Contrast + CrispContrastBoost},
		{FilterSaturate, cfg.Saturation},
		{FilterContrast, CrispContrastFinish},
	}
}

// PlainFilter is used for the foreground cut out by background removal.
func PlainFilter(cfg StyleConfig) Filter {
	return Filter{
		{FilterBrightness, cfg.Brightness},
		{FilterContrast, cfg.Contrast},
		{FilterSaturate, cfg.Saturation},
	}
}

// apply runs the filter over src. Blur radii are logical and get scaled.
func (f Filter) apply(src *image.NRGBA, scale float64) *image.NRGBA {
	var filters []gift.Filter
	var colorFns Filter
	for _, fn := range f {
		switch fn.Kind {
		case FilterBlur:
			if fn.Amount > 0 {
				filters = append(filters, gift.GaussianBlur(float32(fn.Amount*scale)))
			}
		default:
			if !fn.identity() {
				colorFns = append(colorFns, fn)
			}
		}
	}
	if len(colorFns) > 0 {
		filters = append(filters, gift.ColorFunc(func(r0, g0, b0, a0 float32) (float32, float32, float32, float32) {
			r, g, b := colorFns.transform(r0, g0, b0)
			return r, g, b, a0
		}))
	}
	if len(filters) == 0 {
		return src
	}
	g := gift.New(filters...)
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

// blurSigma is the total Gaussian sigma of f in device pixels.
func (f Filter) blurSigma(scale float64) float64 {
	var sigma float64
	for _, fn := range f {
		if fn.Kind == FilterBlur && fn.Amount > 0 {
			sigma += fn.Amount * scale
		}
	}
	return sigma
}

func (f FilterFunc) identity() bool {
	if f.Kind == FilterBlur {
		return f.Amount <= 0
	}
	return f.Amount == 100
}

// transform applies the color functions in order on unpremultiplied
// channels in [0,1], clamping after each step.
func (f Filter) transform(r, g, b float32) (float32, float32, float32) {
	for _, fn := range f {
		a := float32(fn.Amount / 100)
		switch fn.Kind {
		case FilterBrightness:
			r, g, b = r*a, g*a, b*a
		case FilterContrast:
			r = (r-0.5)*a + 0.5
			g = (g-0.5)*a + 0.5
			b = (b-0.5)*a + 0.5
		case FilterSaturate:
			r, g, b =
				(0.213+0.787*a)*r+(0.715-0.715*a)*g+(0.072-0.072*a)*b,
				(0.213-0.213*a)*r+(0.715+0.285*a)*g+(0.072-0.072*a)*b,
				(0.213-0.213*a)*r+(0.715-0.715*a)*g+(0.072+0.928*a)*b
		default:
			continue
		}
		r, g, b = unit(r), unit(g), unit(b)
	}
	return r, g, b
}

func unit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
