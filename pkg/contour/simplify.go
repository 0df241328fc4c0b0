package contour

import (
	"math"

	"github.com/menta2k/maskvec/pkg/types"
)

// simplifyClosed reduces a closed ring with Douglas-Peucker. The ring is cut
// at its first vertex, simplified as an open path with both endpoints
// pinned, and re-closed.
func simplifyClosed(pts []types.Point, tolerance float64) []types.Point {
	if len(pts) < 4 {
		return pts
	}

	open := make([]types.Point, 0, len(pts)+1)
	open = append(open, pts...)
	open = append(open, pts[0])

	reduced := simplifyPath(open, tolerance)

	// Drop the duplicated closing vertex again.
	if len(reduced) >= 2 {
		last := reduced[len(reduced)-1]
		if last.X == reduced[0].X && last.Y == reduced[0].Y {
			reduced = reduced[:len(reduced)-1]
		}
	}
	return reduced
}

// simplifyPath applies the Douglas-Peucker algorithm to an open path,
// keeping the first and last points.
func simplifyPath(points []types.Point, tolerance float64) []types.Point {
	if len(points) <= 2 {
		return points
	}

	maxDist := 0.0
	maxIdx := 0
	for i := 1; i < len(points)-1; i++ {
		d := perpendicularDistance(points[i], points[0], points[len(points)-1])
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= tolerance {
		return []types.Point{points[0], points[len(points)-1]}
	}

	left := simplifyPath(points[:maxIdx+1], tolerance)
	right := simplifyPath(points[maxIdx:], tolerance)
	return append(left[:len(left)-1], right...)
}

// perpendicularDistance returns the distance from p to the line through a
// and b. Coincident endpoints degenerate to the point distance.
func perpendicularDistance(p, a, b types.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return p.Distance(a)
	}

	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / length
}
