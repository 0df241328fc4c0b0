package types

import (
	"fmt"
	"math"
)

// Point is a position in one of the pipeline's coordinate spaces
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Scale returns the point multiplied by a uniform factor
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Distance returns the Euclidean distance to another point
func (p Point) Distance(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Size is a width/height pair in a given coordinate space
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle described by two corner points
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Width returns the horizontal extent of the rectangle
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent of the rectangle
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Pad returns the rectangle grown by d on every side
func (r Rect) Pad(d float64) Rect {
	return Rect{
		Min: Point{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: Point{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// Contains reports whether the point lies inside the rectangle (inclusive)
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Extent holds the natural pixel dimensions of a source image.
// It is fixed once an editing session starts.
type Extent struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewExtent validates caller-supplied dimensions and returns an Extent.
// Non-finite or non-positive values are rejected with ErrInvalidExtent.
func NewExtent(width, height float64) (Extent, error) {
	if math.IsNaN(width) || math.IsInf(width, 0) || math.IsNaN(height) || math.IsInf(height, 0) {
		return Extent{}, fmt.Errorf("%w: dimensions must be finite, got %vx%v", ErrInvalidExtent, width, height)
	}
	e := Extent{Width: int(width), Height: int(height)}
	if err := e.Validate(); err != nil {
		return Extent{}, err
	}
	return e, nil
}

// Validate checks that both dimensions are positive
func (e Extent) Validate() error {
	if e.Width <= 0 || e.Height <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrInvalidExtent, e.Width, e.Height)
	}
	return nil
}

// MaxDim returns the larger of the two dimensions
func (e Extent) MaxDim() int {
	if e.Width > e.Height {
		return e.Width
	}
	return e.Height
}

// MinDim returns the smaller of the two dimensions
func (e Extent) MinDim() int {
	if e.Width < e.Height {
		return e.Width
	}
	return e.Height
}

// Label classifies a click prompt as foreground or background
type Label int

const (
	LabelBackground Label = 0
	LabelForeground Label = 1
)

// String returns a human-readable label name
func (l Label) String() string {
	switch l {
	case LabelBackground:
		return "background"
	case LabelForeground:
		return "foreground"
	default:
		return "unknown"
	}
}

// Click is a single refinement prompt in model-input space
type Click struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label Label   `json:"label"`
}

// Point returns the click position without its label
func (c Click) Point() Point {
	return Point{X: c.X, Y: c.Y}
}

// ScaleProfile holds the derived scale factors that relate the four
// coordinate spaces of one editing session. UploadScale maps original to
// model-input space, PreviewScale maps original to mask-grid space,
// OnnxScale maps model-input to mask-grid space, and CanvasScale maps
// original to on-screen canvas space. All factors are uniform per space.
type ScaleProfile struct {
	UploadScale  float64 `json:"upload_scale"`
	PreviewScale float64 `json:"preview_scale"`
	OnnxScale    float64 `json:"onnx_scale"`
	CanvasScale  float64 `json:"canvas_scale"`
	Extent       Extent  `json:"extent"`
}

// Validate checks that every scale factor is finite and positive
func (p ScaleProfile) Validate() error {
	scales := map[string]float64{
		"upload_scale":  p.UploadScale,
		"preview_scale": p.PreviewScale,
		"onnx_scale":    p.OnnxScale,
		"canvas_scale":  p.CanvasScale,
	}
	for name, s := range scales {
		if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
			return fmt.Errorf("invalid scale profile: %s must be finite and positive, got %v", name, s)
		}
	}
	return p.Extent.Validate()
}

// GridExtent returns the mask-grid dimensions implied by the preview scale
func (p ScaleProfile) GridExtent() Extent {
	return Extent{
		Width:  int(math.Round(float64(p.Extent.Width) * p.PreviewScale)),
		Height: int(math.Round(float64(p.Extent.Height) * p.PreviewScale)),
	}
}
