// Package vectorpath composes extracted contours into a single renderable
// path placed in a target coordinate space.
package vectorpath

import (
	"fmt"
	"math"
	"strings"

	"github.com/menta2k/maskvec/pkg/types"
)

// FillRule selects how self-intersecting or nested subpaths are filled
type FillRule int

const (
	// FillRuleNonZero fills where the winding number is non-zero. With the
	// extractor's winding convention holes cancel outer loops.
	FillRuleNonZero FillRule = iota
	// FillRuleEvenOdd fills where a ray crosses an odd number of edges
	FillRuleEvenOdd
)

// String returns the fill rule's SVG name
func (r FillRule) String() string {
	switch r {
	case FillRuleNonZero:
		return "nonzero"
	case FillRuleEvenOdd:
		return "evenodd"
	default:
		return "unknown"
	}
}

// ParseFillRule converts an SVG fill-rule name into a FillRule
func ParseFillRule(s string) (FillRule, error) {
	switch s {
	case "nonzero":
		return FillRuleNonZero, nil
	case "evenodd":
		return FillRuleEvenOdd, nil
	default:
		return FillRuleNonZero, fmt.Errorf("unknown fill rule %q", s)
	}
}

// Intent tells the rendering collaborator how a path will be composited.
// The path itself is intent-agnostic; this flag never changes its geometry.
type Intent int

const (
	// IntentOverlay composites a translucent fill over the source image
	IntentOverlay Intent = iota
	// IntentCutout erases everything outside the selection
	IntentCutout
)

// String returns a human-readable intent name
func (i Intent) String() string {
	switch i {
	case IntentOverlay:
		return "overlay"
	case IntentCutout:
		return "cutout"
	default:
		return "unknown"
	}
}

// Subpath is one closed loop of the path, outer boundary or hole
type Subpath struct {
	Points []types.Point
	Hole   bool
}

// Path is the renderable form of one mask: every contour of the mask
// transformed into a single target space, winding preserved, with the fill
// rule that makes holes render correctly.
type Path struct {
	Subpaths []Subpath
	FillRule FillRule
}

// IsEmpty reports whether the path has no subpaths
func (p *Path) IsEmpty() bool {
	return p == nil || len(p.Subpaths) == 0
}

// BoundingBox returns the axis-aligned bounds over all subpaths
func (p *Path) BoundingBox() types.Rect {
	if p.IsEmpty() {
		return types.Rect{}
	}

	min := types.Point{X: math.Inf(1), Y: math.Inf(1)}
	max := types.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, sp := range p.Subpaths {
		for _, pt := range sp.Points {
			if pt.X < min.X {
				min.X = pt.X
			}
			if pt.Y < min.Y {
				min.Y = pt.Y
			}
			if pt.X > max.X {
				max.X = pt.X
			}
			if pt.Y > max.Y {
				max.Y = pt.Y
			}
		}
	}
	return types.Rect{Min: min, Max: max}
}

// SVGPathData renders the path as SVG path data, one M/L/Z run per subpath.
// Coordinates keep at most three decimal places.
func (p *Path) SVGPathData() string {
	if p.IsEmpty() {
		return ""
	}

	var b strings.Builder
	for _, sp := range p.Subpaths {
		if len(sp.Points) == 0 {
			continue
		}
		for i, pt := range sp.Points {
			if i == 0 {
				fmt.Fprintf(&b, "M%s %s", formatCoord(pt.X), formatCoord(pt.Y))
			} else {
				fmt.Fprintf(&b, "L%s %s", formatCoord(pt.X), formatCoord(pt.Y))
			}
		}
		b.WriteString("Z")
	}
	return b.String()
}

func formatCoord(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
