package treemap

import "math"

// Rect is an axis-aligned rectangle in frame coordinates. The origin is the
// top-left corner; Y grows downward as in SVG.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns Width * Height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// CenterX returns the horizontal center point.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the vertical center point.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// ShortSide returns the smaller of Width and Height.
func (r Rect) ShortSide() float64 { return min(r.Width, r.Height) }

// AspectRatio returns the ratio of the long side to the short side (1 is a
// square). Degenerate rectangles report +Inf.
func (r Rect) AspectRatio() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return math.Inf(1)
	}
	return max(r.Width/r.Height, r.Height/r.Width)
}

// Inset shrinks r by p on every side. Dimensions are clamped at zero, so an
// inset larger than half a side yields a zero-width or zero-height rectangle
// rather than an inverted one.
func (r Rect) Inset(p float64) Rect {
	return Rect{
		X:      r.X + p,
		Y:      r.Y + p,
		Width:  max(0, r.Width-2*p),
		Height: max(0, r.Height-2*p),
	}
}

// Contains reports whether o lies inside r, allowing eps of slack on each edge.
func (r Rect) Contains(o Rect, eps float64) bool {
	return o.X >= r.X-eps &&
		o.Y >= r.Y-eps &&
		o.Right() <= r.Right()+eps &&
		o.Bottom() <= r.Bottom()+eps
}

// Overlap returns the area of the intersection of r and o.
func (r Rect) Overlap(o Rect) float64 {
	w := min(r.Right(), o.Right()) - max(r.X, o.X)
	h := min(r.Bottom(), o.Bottom()) - max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Degenerate reports whether r has no usable area.
func (r Rect) Degenerate() bool {
	return !(r.Width > 0 && r.Height > 0)
}
