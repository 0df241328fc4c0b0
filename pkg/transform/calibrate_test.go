package transform

import (
	"math"
	"testing"

	"github.com/menta2k/maskvec/pkg/types"
)

func TestFitCanvasMapping(t *testing.T) {
	src := []types.Point{
		{X: 0, Y: 0},
		{X: 1920, Y: 0},
		{X: 0, Y: 1080},
		{X: 1920, Y: 1080},
		{X: 960, Y: 540},
	}

	wantScale := 0.35
	wantOffset := types.Point{X: 12, Y: -7}

	dst := make([]types.Point, len(src))
	for i, p := range src {
		dst[i] = types.Point{
			X: p.X*wantScale + wantOffset.X,
			Y: p.Y*wantScale + wantOffset.Y,
		}
	}

	scale, offset, err := FitCanvasMapping(src, dst)
	if err != nil {
		t.Fatalf("FitCanvasMapping failed: %v", err)
	}

	if math.Abs(scale-wantScale) > 1e-9 {
		t.Errorf("Expected scale %v, got %v", wantScale, scale)
	}
	if math.Abs(offset.X-wantOffset.X) > 1e-9 || math.Abs(offset.Y-wantOffset.Y) > 1e-9 {
		t.Errorf("Expected offset (%v,%v), got (%v,%v)", wantOffset.X, wantOffset.Y, offset.X, offset.Y)
	}
}

func TestFitCanvasMappingNoisy(t *testing.T) {
	// Small, asymmetric perturbations; the least-squares fit should land
	// close to the underlying mapping.
	src := []types.Point{
		{X: 0, Y: 0},
		{X: 100, Y: 0},
		{X: 100, Y: 100},
		{X: 0, Y: 100},
	}
	noise := []types.Point{
		{X: 0.2, Y: -0.1},
		{X: -0.15, Y: 0.25},
		{X: 0.1, Y: 0.1},
		{X: -0.2, Y: -0.05},
	}

	dst := make([]types.Point, len(src))
	for i, p := range src {
		dst[i] = types.Point{
			X: p.X*2 + 5 + noise[i].X,
			Y: p.Y*2 + 9 + noise[i].Y,
		}
	}

	scale, offset, err := FitCanvasMapping(src, dst)
	if err != nil {
		t.Fatalf("FitCanvasMapping failed: %v", err)
	}
	if math.Abs(scale-2) > 0.01 {
		t.Errorf("Expected scale near 2, got %v", scale)
	}
	if math.Abs(offset.X-5) > 0.5 || math.Abs(offset.Y-9) > 0.5 {
		t.Errorf("Expected offset near (5,9), got (%v,%v)", offset.X, offset.Y)
	}
}

func TestFitCanvasMappingErrors(t *testing.T) {
	a := []types.Point{{X: 1, Y: 1}}
	b := []types.Point{{X: 2, Y: 2}, {X: 3, Y: 3}}

	if _, _, err := FitCanvasMapping(a, b); err == nil {
		t.Error("Expected error for mismatched point counts")
	}
	if _, _, err := FitCanvasMapping(a, b[:1]); err == nil {
		t.Error("Expected error for too few points")
	}

	// Identical source points pin down no scale.
	samePoint := []types.Point{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}}
	target := []types.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	if _, _, err := FitCanvasMapping(samePoint, target); err == nil {
		t.Error("Expected error for degenerate configuration")
	}
}
