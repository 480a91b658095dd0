package imagepkg

// Rect is an axis-aligned rectangle in logical canvas units.
type Rect struct {
	X, Y, W, H float64
}

// Inflate grows the rect by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// FitMode selects how FitRect scales the source into its bounds.
type FitMode int

const (
	// FitCover fills the bounds and lets the longer side overflow.
	FitCover FitMode = iota
	// FitContain fits inside the bounds minus a margin on every side.
	FitContain
)

// FitRect computes an aspect-preserving rect centered in a
// boundsWidth x boundsHeight area. margin only applies to FitContain.
// Cover rects may have negative X or Y.
func FitRect(sourceAspect, boundsWidth, boundsHeight float64, mode FitMode, margin float64) Rect {
	var w, h float64
	switch mode {
	case FitContain:
		iw, ih := boundsWidth-2*margin, boundsHeight-2*margin
		if sourceAspect > iw/ih {
			w = iw
			h = w / sourceAspect
		} else {
			h = ih
			w = h * sourceAspect
		}
	default:
		if sourceAspect > boundsWidth/boundsHeight {
			h = boundsHeight
			w = h * sourceAspect
		} else {
			w = boundsWidth
			h = w / sourceAspect
		}
	}
	return Rect{
		X: (boundsWidth - w) / 2,
		Y: (boundsHeight - h) / 2,
		W: w,
		H: h,
	}
}

func aspectOf(width, height int) float64 {
	return float64(width) / float64(height)
}

// Point is a position in logical canvas units.
type Point struct {
	X, Y float64
}
