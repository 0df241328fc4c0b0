// Package render is the reference rendering collaborator: it rasterizes
// vector paths with their fill rule and composites them over the source
// image in either overlay or cutout intent. Output is hard-edged pixel
// coverage; anti-aliased compositing is a concern of real renderers.
package render

import (
	"image"
	"math"
	"sort"

	"github.com/menta2k/maskvec/pkg/vectorpath"
)

// crossing is one intersection of a scanline with a path edge. dir is +1
// for edges going down in image coordinates and -1 for edges going up,
// which is what the non-zero winding rule accumulates.
type crossing struct {
	x   float64
	dir int
}

// Rasterize fills the path into an alpha mask of the given size. A pixel is
// covered when its center is inside the path under the path's fill rule.
// With the extractor's winding convention both rules shade regions and
// leave their holes empty.
func Rasterize(p *vectorpath.Path, width, height int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	if p.IsEmpty() || width <= 0 || height <= 0 {
		return mask
	}

	crossings := make([]crossing, 0, 16)
	for y := 0; y < height; y++ {
		cy := float64(y) + 0.5
		crossings = crossings[:0]

		for _, sp := range p.Subpaths {
			n := len(sp.Points)
			for i := 0; i < n; i++ {
				a := sp.Points[i]
				b := sp.Points[(i+1)%n]
				if a.Y == b.Y {
					continue
				}
				// Half-open rule: an edge covers [min(y), max(y)) so a
				// vertex touched by two edges counts exactly once.
				if (a.Y <= cy) == (b.Y <= cy) {
					continue
				}
				t := (cy - a.Y) / (b.Y - a.Y)
				dir := 1
				if b.Y < a.Y {
					dir = -1
				}
				crossings = append(crossings, crossing{x: a.X + t*(b.X-a.X), dir: dir})
			}
		}
		if len(crossings) == 0 {
			continue
		}

		sort.Slice(crossings, func(i, j int) bool { return crossings[i].x < crossings[j].x })
		fillScanline(mask, y, width, crossings, p.FillRule)
	}

	return mask
}

// fillScanline walks one row's sorted crossings and sets the pixels whose
// centers fall in an inside span.
func fillScanline(mask *image.Alpha, y, width int, crossings []crossing, rule vectorpath.FillRule) {
	winding := 0
	inside := false
	var spanStart float64

	for _, c := range crossings {
		was := inside
		if rule == vectorpath.FillRuleEvenOdd {
			winding ^= 1
			inside = winding == 1
		} else {
			winding += c.dir
			inside = winding != 0
		}

		if !was && inside {
			spanStart = c.x
		} else if was && !inside {
			setSpan(mask, y, width, spanStart, c.x)
		}
	}
}

// setSpan covers the pixels of row y whose centers lie in [x0, x1)
func setSpan(mask *image.Alpha, y, width int, x0, x1 float64) {
	start := int(math.Ceil(x0 - 0.5))
	end := int(math.Ceil(x1 - 0.5))
	if start < 0 {
		start = 0
	}
	if end > width {
		end = width
	}
	for x := start; x < end; x++ {
		mask.SetAlpha(x, y, alphaOpaque)
	}
}
