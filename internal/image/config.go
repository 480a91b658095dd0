package imagepkg

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// BackgroundMode selects what is painted under the foreground.
type BackgroundMode string

const (
	BackgroundTransparent BackgroundMode = "transparent"
	BackgroundColor       BackgroundMode = "color"
	BackgroundImage       BackgroundMode = "image"
)

// OutputFormat is the file format the caller encodes the raster to.
type OutputFormat string

const (
	FormatPNG  OutputFormat = "png"
	FormatJPEG OutputFormat = "jpeg"
	FormatWebP OutputFormat = "webp"
)

// Position is a watermark anchor.
type Position string

const (
	PositionBottomCenter Position = "bottom-center"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomLeft   Position = "bottom-left"
	PositionTopCenter    Position = "top-center"
	PositionTopRight     Position = "top-right"
	PositionTopLeft      Position = "top-left"
	PositionCenter       Position = "center"
	PositionRepeat       Position = "repeat"
)

// Limits for StyleConfig values.
const (
	MinOutputSize = 100
	MaxOutputSize = 5000
	MinFilterPct  = 50
	MaxFilterPct  = 150
	MaxSaturation = 200
)

// RGB is an opaque color. It marshals to and from "#rrggbb".
type RGB struct {
	R, G, B uint8
}

// NRGBA returns the color with the given opacity in [0,1].
func (c RGB) NRGBA(opacity float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(clampFloat(opacity, 0, 1) * 255))}
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseRGB parses "#rrggbb", "rrggbb" or the short "#rgb" form.
func ParseRGB(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func (c RGB) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *RGB) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseRGB(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// StyleConfig holds every styling option of one compositing run.
// It is passed by value and never modified by the pipeline.
type StyleConfig struct {
	OutputWidth      int            `json:"outputWidth"`
	OutputHeight     int            `json:"outputHeight"`
	RemoveBackground bool           `json:"removeBackground"`
	BackgroundMode   BackgroundMode `json:"backgroundMode"`
	BackgroundColor  RGB            `json:"backgroundColor"`
	// BackgroundImage is drawn stretched when BackgroundMode is "image".
	BackgroundImage image.Image `json:"-"`

	BlurRadius     float64 `json:"blurRadius"`
	FadeWidth      float64 `json:"fadeWidth"`
	OverlayOpacity float64 `json:"overlayOpacity"`
	OverlayColor   RGB     `json:"overlayColor"`

	OutputFormat OutputFormat `json:"outputFormat"`
	Quality      int          `json:"quality"`

	WatermarkText     string   `json:"watermarkText"`
	WatermarkPosition Position `json:"watermarkPosition"`
	WatermarkSize     float64  `json:"watermarkSize"`
	WatermarkOpacity  float64  `json:"watermarkOpacity"`
	WatermarkColor    RGB      `json:"watermarkColor"`
	WatermarkFont     string   `json:"watermarkFont"`
	RepeatSpacing     float64  `json:"repeatSpacing"`
	RepeatRotation    float64  `json:"repeatRotation"`

	BorderWidth float64 `json:"borderWidth"`
	BorderColor RGB     `json:"borderColor"`

	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
}

// DefaultStyleConfig returns the settings a fresh session starts with.
func DefaultStyleConfig() StyleConfig {
	white := RGB{255, 255, 255}
	return StyleConfig{
		OutputWidth:       832,
		OutputHeight:      832,
		BackgroundMode:    BackgroundTransparent,
		BackgroundColor:   white,
		BlurRadius:        26,
		FadeWidth:         60,
		OverlayOpacity:    0.08,
		OutputFormat:      FormatPNG,
		Quality:           95,
		WatermarkPosition: PositionBottomCenter,
		WatermarkSize:     24,
		WatermarkOpacity:  0.6,
		WatermarkColor:    white,
		WatermarkFont:     "Arial",
		RepeatSpacing:     150,
		RepeatRotation:    -45,
		BorderColor:       white,
		Brightness:        100,
		Contrast:          100,
		Saturation:        100,
	}
}

// Clamp returns a copy with every value forced into its valid range.
// Unknown enum values fall back to their defaults.
func (c StyleConfig) Clamp() StyleConfig {
	c.OutputWidth = clampInt(c.OutputWidth, MinOutputSize, MaxOutputSize)
	c.OutputHeight = clampInt(c.OutputHeight, MinOutputSize, MaxOutputSize)
	c.Quality = clampInt(c.Quality, 1, 100)
	c.OverlayOpacity = clampFloat(c.OverlayOpacity, 0, 1)
	c.WatermarkOpacity = clampFloat(c.WatermarkOpacity, 0, 1)
	c.Brightness = clampFloat(c.Brightness, MinFilterPct, MaxFilterPct)
	c.Contrast = clampFloat(c.Contrast, MinFilterPct, MaxFilterPct)
	c.Saturation = clampFloat(c.Saturation, 0, MaxSaturation)
	c.BlurRadius = math.Max(c.BlurRadius, 0)
	c.FadeWidth = math.Max(c.FadeWidth, 0)
	c.BorderWidth = clampFloat(c.BorderWidth, 0, float64(min(c.OutputWidth, c.OutputHeight))/4)
	c.WatermarkSize = math.Max(c.WatermarkSize, 1)
	c.RepeatSpacing = math.Max(c.RepeatSpacing, 1)

	switch c.BackgroundMode {
	case BackgroundTransparent, BackgroundColor, BackgroundImage:
	default:
		c.BackgroundMode = BackgroundTransparent
	}
	switch c.OutputFormat {
	case FormatPNG, FormatJPEG, FormatWebP:
	case "jpg":
		c.OutputFormat = FormatJPEG
	default:
		c.OutputFormat = FormatPNG
	}
	if !c.WatermarkPosition.valid() {
		c.WatermarkPosition = PositionBottomCenter
	}
	return c
}

// Validate reports the first value outside its documented range.
func (c StyleConfig) Validate() error {
	switch {
	case c.OutputWidth < MinOutputSize || c.OutputWidth > MaxOutputSize:
		return fmt.Errorf("outputWidth %d out of range [%d, %d]", c.OutputWidth, MinOutputSize, MaxOutputSize)
	case c.OutputHeight < MinOutputSize || c.OutputHeight > MaxOutputSize:
		return fmt.Errorf("outputHeight %d out of range [%d, %d]", c.OutputHeight, MinOutputSize, MaxOutputSize)
	case c.Quality < 1 || c.Quality > 100:
		return fmt.Errorf("quality %d out of range [1, 100]", c.Quality)
	case c.OverlayOpacity < 0 || c.OverlayOpacity > 1:
		return fmt.Errorf("overlayOpacity %v out of range [0, 1]", c.OverlayOpacity)
	case c.WatermarkOpacity < 0 || c.WatermarkOpacity > 1:
		return fmt.Errorf("watermarkOpacity %v out of range [0, 1]", c.WatermarkOpacity)
	case c.Brightness < MinFilterPct || c.Brightness > MaxFilterPct:
		return fmt.Errorf("brightness %v out of range [%d, %d]", c.Brightness, MinFilterPct, MaxFilterPct)
	case c.Contrast < MinFilterPct || c.Contrast > MaxFilterPct:
		return fmt.Errorf("contrast %v out of range [%d, %d]", c.Contrast, MinFilterPct, MaxFilterPct)
	case c.Saturation < 0 || c.Saturation > MaxSaturation:
		return fmt.Errorf("saturation %v out of range [0, %d]", c.Saturation, MaxSaturation)
	case c.BlurRadius < 0 || c.FadeWidth < 0 || c.BorderWidth < 0:
		return fmt.Errorf("blurRadius, fadeWidth and borderWidth must be non-negative")
	case c.WatermarkPosition == PositionRepeat && c.RepeatSpacing <= 0:
		return fmt.Errorf("repeatSpacing must be positive")
	}
	return nil
}

// PreviewConfig returns the square canvas used for live previews,
// sized to the larger output dimension.
func PreviewConfig(c StyleConfig) StyleConfig {
	side := c.OutputWidth
	if c.OutputHeight > side {
		side = c.OutputHeight
	}
	c.OutputWidth, c.OutputHeight = side, side
	c.OutputFormat = FormatPNG
	return c
}

func (p Position) valid() bool {
	switch p {
	case PositionBottomCenter, PositionBottomRight, PositionBottomLeft,
		PositionTopCenter, PositionTopRight, PositionTopLeft,
		PositionCenter, PositionRepeat:
		return true
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
