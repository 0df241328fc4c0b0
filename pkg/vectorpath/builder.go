package vectorpath

import (
	"github.com/menta2k/maskvec/pkg/contour"
	"github.com/menta2k/maskvec/pkg/transform"
	"github.com/menta2k/maskvec/pkg/types"
)

// Builder turns contour sets into paths in a target space
type Builder struct {
	fillRule FillRule
}

// NewBuilder creates a builder using the non-zero fill rule
func NewBuilder() *Builder {
	return NewBuilderWithFillRule(FillRuleNonZero)
}

// NewBuilderWithFillRule creates a builder with an explicit fill rule
func NewBuilderWithFillRule(rule FillRule) *Builder {
	return &Builder{fillRule: rule}
}

// Build transforms every contour point from one space to another and groups
// the results into a single path. Contour grouping and winding survive the
// transform because it is a positive uniform scale. An empty contour set
// yields a nil path, the cleared-selection value.
func (b *Builder) Build(contours []contour.Contour, profile types.ScaleProfile, from, to transform.Space) *Path {
	if len(contours) == 0 {
		return nil
	}

	factor := transform.Factor(profile, from, to)
	subpaths := make([]Subpath, 0, len(contours))
	for _, c := range contours {
		pts := make([]types.Point, len(c.Points))
		for i, pt := range c.Points {
			pts[i] = pt.Scale(factor)
		}
		subpaths = append(subpaths, Subpath{Points: pts, Hole: c.Hole})
	}

	return &Path{
		Subpaths: subpaths,
		FillRule: b.fillRule,
	}
}
