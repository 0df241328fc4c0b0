package transform

import (
	"errors"
	"math"
	"testing"

	"github.com/menta2k/maskvec/pkg/types"
)

const tolerance = 1e-6

func testProfile(t *testing.T, w, h int, canvasScale float64) types.ScaleProfile {
	t.Helper()
	extent := types.Extent{Width: w, Height: h}
	profile, err := ComputeScaleProfile(extent, canvasScale, DefaultScaleConfig())
	if err != nil {
		t.Fatalf("ComputeScaleProfile failed: %v", err)
	}
	return profile
}

func TestComputeScaleProfile(t *testing.T) {
	profile := testProfile(t, 2048, 1536, 0.4)

	if got := profile.UploadScale; got != 1024.0/2048.0 {
		t.Errorf("Expected upload scale 0.5, got %v", got)
	}
	// 800/1536 would put the long edge at 2048*0.5208 = 1066 <= 1333, so the
	// short-edge rule stands.
	want := 800.0 / 1536.0
	if got := profile.PreviewScale; got != want {
		t.Errorf("Expected preview scale %v, got %v", want, got)
	}
	if got := profile.OnnxScale; got != profile.PreviewScale/profile.UploadScale {
		t.Errorf("Expected onnx scale derived from stored scales, got %v", got)
	}
	if profile.CanvasScale != 0.4 {
		t.Errorf("Expected canvas scale 0.4, got %v", profile.CanvasScale)
	}
	if err := profile.Validate(); err != nil {
		t.Errorf("Expected valid profile, got %v", err)
	}
}

func TestPreviewScaleCeiling(t *testing.T) {
	// 800/500 = 1.6 would put the long edge at 6400, far past the cap, so
	// the scale must be recomputed from the cap.
	profile := testProfile(t, 4000, 500, 1)

	got := float64(4000) * profile.PreviewScale
	if math.Abs(got-1333) > tolerance {
		t.Errorf("Expected long edge exactly 1333 under ceiling rule, got %v", got)
	}

	// Without the extreme ratio the short-edge rule applies untouched.
	regular := testProfile(t, 1000, 800, 1)
	if regular.PreviewScale != 1.0 {
		t.Errorf("Expected preview scale 1.0 for 1000x800, got %v", regular.PreviewScale)
	}
}

func TestComputeScaleProfileInvalid(t *testing.T) {
	cfg := DefaultScaleConfig()

	if _, err := ComputeScaleProfile(types.Extent{Width: 0, Height: 100}, 1, cfg); !errors.Is(err, types.ErrInvalidExtent) {
		t.Errorf("Expected ErrInvalidExtent, got %v", err)
	}
	if _, err := ComputeScaleProfile(types.Extent{Width: 100, Height: -5}, 1, cfg); !errors.Is(err, types.ErrInvalidExtent) {
		t.Errorf("Expected ErrInvalidExtent, got %v", err)
	}
	if _, err := ComputeScaleProfile(types.Extent{Width: 100, Height: 100}, math.NaN(), cfg); err == nil {
		t.Error("Expected error for NaN canvas scale")
	}
	if _, err := ComputeScaleProfile(types.Extent{Width: 100, Height: 100}, 0, cfg); err == nil {
		t.Error("Expected error for zero canvas scale")
	}

	bad := cfg
	bad.PreviewMaxDim = 0
	if _, err := ComputeScaleProfile(types.Extent{Width: 100, Height: 100}, 1, bad); err == nil {
		t.Error("Expected error for zero preview max dimension")
	}
}

func TestMapRoundTrip(t *testing.T) {
	profile := testProfile(t, 3071, 977, 0.37)

	spaces := []Space{SpaceOriginal, SpaceModelInput, SpaceMaskGrid, SpaceCanvas}
	points := []types.Point{
		{X: 0, Y: 0},
		{X: 100.5, Y: 220.25},
		{X: 3070, Y: 976},
		{X: -50, Y: 12},      // out of bounds passes through
		{X: 9999.75, Y: -33}, // far out of bounds
	}

	for _, from := range spaces {
		for _, to := range spaces {
			for _, p := range points {
				mapped := Map(profile, p, from, to)
				back := Map(profile, mapped, to, from)
				if math.Abs(back.X-p.X) > tolerance || math.Abs(back.Y-p.Y) > tolerance {
					t.Errorf("Round trip %v->%v->%v moved (%v,%v) to (%v,%v)",
						from, to, from, p.X, p.Y, back.X, back.Y)
				}
			}
		}
	}
}

func TestMapComposition(t *testing.T) {
	profile := testProfile(t, 2500, 1100, 0.8)
	p := types.Point{X: 417.5, Y: 902.125}

	direct := Map(profile, p, SpaceOriginal, SpaceMaskGrid)
	viaModel := Map(profile, Map(profile, p, SpaceOriginal, SpaceModelInput), SpaceModelInput, SpaceMaskGrid)

	if math.Abs(direct.X-viaModel.X) > tolerance || math.Abs(direct.Y-viaModel.Y) > tolerance {
		t.Errorf("Composition mismatch: direct (%v,%v) vs via model input (%v,%v)",
			direct.X, direct.Y, viaModel.X, viaModel.Y)
	}

	// Model input to mask grid must agree with the stored onnx scale.
	fromModel := Map(profile, p, SpaceModelInput, SpaceMaskGrid)
	expected := p.Scale(profile.OnnxScale)
	if math.Abs(fromModel.X-expected.X) > tolerance || math.Abs(fromModel.Y-expected.Y) > tolerance {
		t.Errorf("Expected onnx-scale mapping (%v,%v), got (%v,%v)",
			expected.X, expected.Y, fromModel.X, fromModel.Y)
	}
}

func TestMapNoClamping(t *testing.T) {
	profile := testProfile(t, 1000, 1000, 2)

	p := types.Point{X: -400, Y: 5000}
	mapped := Map(profile, p, SpaceOriginal, SpaceCanvas)
	if mapped.X != -800 || mapped.Y != 10000 {
		t.Errorf("Expected unclamped (-800,10000), got (%v,%v)", mapped.X, mapped.Y)
	}
}

func TestFactorIdentity(t *testing.T) {
	profile := testProfile(t, 640, 480, 1.5)
	for _, s := range []Space{SpaceOriginal, SpaceModelInput, SpaceMaskGrid, SpaceCanvas} {
		if f := Factor(profile, s, s); f != 1 {
			t.Errorf("Expected identity factor for %v, got %v", s, f)
		}
	}
}

func TestMapSize(t *testing.T) {
	profile := testProfile(t, 2048, 1024, 1)

	sz := MapSize(profile, types.Size{Width: 2048, Height: 1024}, SpaceOriginal, SpaceModelInput)
	if math.Abs(sz.Width-1024) > tolerance || math.Abs(sz.Height-512) > tolerance {
		t.Errorf("Expected model input size 1024x512, got %vx%v", sz.Width, sz.Height)
	}
}

func TestSpaceString(t *testing.T) {
	tests := []struct {
		space Space
		want  string
	}{
		{SpaceOriginal, "original"},
		{SpaceModelInput, "model-input"},
		{SpaceMaskGrid, "mask-grid"},
		{SpaceCanvas, "canvas"},
		{Space(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.space.String(); got != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, got)
		}
	}
}

func BenchmarkMap(b *testing.B) {
	profile, err := ComputeScaleProfile(types.Extent{Width: 4096, Height: 2160}, 0.5, DefaultScaleConfig())
	if err != nil {
		b.Fatalf("ComputeScaleProfile failed: %v", err)
	}
	p := types.Point{X: 1234.5, Y: 678.9}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p = Map(profile, p, SpaceCanvas, SpaceMaskGrid)
		p = Map(profile, p, SpaceMaskGrid, SpaceCanvas)
	}
}
