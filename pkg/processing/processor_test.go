package processing

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/maskvec/pkg/transform"
	"github.com/menta2k/maskvec/pkg/types"
)

func testProfile(t *testing.T) types.ScaleProfile {
	t.Helper()
	profile, err := transform.ComputeScaleProfile(
		types.Extent{Width: 2048, Height: 1536}, 0.25, transform.DefaultScaleConfig())
	if err != nil {
		t.Fatalf("ComputeScaleProfile failed: %v", err)
	}
	return profile
}

func createTestImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func TestPrepareImageForModel(t *testing.T) {
	p := NewProcessor()
	profile := testProfile(t)

	encoded, err := p.PrepareImageForModel(createTestImage(2048, 1536), profile, "png", 90)
	if err != nil {
		t.Fatalf("PrepareImageForModel failed: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("Expected valid base64, got %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Expected decodable payload, got %v", err)
	}
	if format != "png" {
		t.Errorf("Expected png payload, got %s", format)
	}
	// Upload scale 0.5 puts the long edge at the model-input target.
	if cfg.Width != 1024 || cfg.Height != 768 {
		t.Errorf("Expected 1024x768 model input, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestPrepareImageForModelInvalidProfile(t *testing.T) {
	p := NewProcessor()

	_, err := p.PrepareImageForModel(createTestImage(10, 10), types.ScaleProfile{}, "png", 90)
	if err == nil {
		t.Fatal("Expected error for invalid profile")
	}
}

func TestGridImageRoundTrip(t *testing.T) {
	p := NewProcessor()

	grid, err := types.NewGrid([]float64{
		-4, -2, 0.5,
		3, -0.5, 2,
	}, 3, 2)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}

	img, err := p.GridToImage(grid)
	if err != nil {
		t.Fatalf("GridToImage failed: %v", err)
	}

	// Zero logit must land at mid-gray so a 0.0 threshold survives the
	// image round trip as the 127/128 boundary.
	if v := img.GrayAt(2, 0).Y; v < 128 {
		t.Errorf("Expected positive logit above mid-gray, got %d", v)
	}
	if v := img.GrayAt(0, 0).Y; v >= 128 {
		t.Errorf("Expected negative logit below mid-gray, got %d", v)
	}

	back := p.GridFromImage(img)
	if back.Width != 3 || back.Height != 2 {
		t.Fatalf("Expected 3x2 grid, got %dx%d", back.Width, back.Height)
	}
	for i, want := range grid.Data {
		got := back.Data[i]
		if (want >= 0) != (got >= 0) {
			t.Errorf("Value %d changed sign through round trip: %v -> %v", i, want, got)
		}
	}
}

func TestGridToImageInvalid(t *testing.T) {
	p := NewProcessor()

	bad := &types.Grid{Data: []float64{1, 2, 3}, Width: 2, Height: 2}
	if _, err := p.GridToImage(bad); err == nil {
		t.Fatal("Expected error for malformed grid")
	}
}

func TestDrawClickMarkers(t *testing.T) {
	p := NewProcessor()
	profile := testProfile(t)

	clicks := []types.Click{
		{X: 512, Y: 384, Label: types.LabelForeground},
		{X: 100, Y: 100, Label: types.LabelBackground},
	}

	// Draw on the model-input image itself, identity mapping for clicks.
	img := createTestImage(1024, 768)
	marked := p.DrawClickMarkers(img, clicks, profile, transform.SpaceModelInput)

	if got := marked.NRGBAAt(512, 384); got.G != 255 || got.R != 0 {
		t.Errorf("Expected green marker at the foreground click, got %+v", got)
	}
	if got := marked.NRGBAAt(100, 100); got.R != 255 || got.G != 0 {
		t.Errorf("Expected red marker at the background click, got %+v", got)
	}
}
