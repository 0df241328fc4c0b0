package imagesource

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Fill with a gradient pattern
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			b := uint8(128)
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}

	return img
}

func TestNew(t *testing.T) {
	source := New()
	if source == nil {
		t.Fatal("New() returned nil")
	}

	if source.config.DefaultQuality != 85 {
		t.Errorf("Expected default quality 85, got %d", source.config.DefaultQuality)
	}
}

func TestNewWithConfig(t *testing.T) {
	cfg := Config{
		DefaultQuality:   95,
		SupportedFormats: []string{"png"},
		MinImageSize:     200,
	}

	source := NewWithConfig(cfg)
	if source.config.DefaultQuality != 95 {
		t.Errorf("Expected quality 95, got %d", source.config.DefaultQuality)
	}
	if source.config.MinImageSize != 200 {
		t.Errorf("Expected min size 200, got %d", source.config.MinImageSize)
	}
}

func TestSaveAndLoad(t *testing.T) {
	source := New()
	dir := t.TempDir()

	for _, ext := range []string{"png", "jpg", "webp"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "test."+ext)
			if err := source.Save(createTestImage(64, 48), path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			img, err := source.Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
				t.Errorf("Expected 64x48, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
			}
		})
	}
}

func TestSaveUnsupportedFormat(t *testing.T) {
	source := New()
	path := filepath.Join(t.TempDir(), "test.bmp")

	if err := source.Save(createTestImage(32, 32), path); err == nil {
		t.Error("Expected error for unsupported output format")
	}
}

func TestDecodeExtent(t *testing.T) {
	source := New()
	path := filepath.Join(t.TempDir(), "extent.png")

	if err := source.Save(createTestImage(320, 240), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	extent, err := source.DecodeExtent(path)
	if err != nil {
		t.Fatalf("DecodeExtent failed: %v", err)
	}
	if extent.Width != 320 || extent.Height != 240 {
		t.Errorf("Expected 320x240, got %dx%d", extent.Width, extent.Height)
	}
}

func TestDecodeExtentMissingFile(t *testing.T) {
	source := New()

	if _, err := source.DecodeExtent(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestInfo(t *testing.T) {
	source := New()
	img := createTestImage(400, 300)

	info := source.Info(img)

	if info.Width != 400 {
		t.Errorf("Expected width 400, got %d", info.Width)
	}
	if info.Height != 300 {
		t.Errorf("Expected height 300, got %d", info.Height)
	}

	expectedRatio := float64(400) / float64(300)
	if info.AspectRatio != expectedRatio {
		t.Errorf("Expected aspect ratio %f, got %f", expectedRatio, info.AspectRatio)
	}
	if info.Area != 120000 {
		t.Errorf("Expected area 120000, got %d", info.Area)
	}
}

func TestValidate(t *testing.T) {
	source := New()

	// Valid image
	validImg := createTestImage(200, 200)
	if err := source.Validate(validImg); err != nil {
		t.Errorf("Valid image should pass validation: %v", err)
	}

	// Invalid image (too small)
	invalidImg := createTestImage(8, 8)
	if err := source.Validate(invalidImg); err == nil {
		t.Error("Small image should fail validation")
	}
}

func TestIsFormatSupported(t *testing.T) {
	source := New()

	supportedFormats := []string{"jpg", "jpeg", "png", "webp", "JPG", "PNG"}
	for _, format := range supportedFormats {
		if !source.isFormatSupported(format) {
			t.Errorf("Format %s should be supported", format)
		}
	}

	unsupportedFormats := []string{"gif", "bmp", "tiff"}
	for _, format := range unsupportedFormats {
		if source.isFormatSupported(format) {
			t.Errorf("Format %s should not be supported", format)
		}
	}
}

func TestResize(t *testing.T) {
	source := New()

	resized := source.Resize(createTestImage(100, 80), 50, 40)
	if resized.Bounds().Dx() != 50 || resized.Bounds().Dy() != 40 {
		t.Errorf("Expected 50x40, got %dx%d", resized.Bounds().Dx(), resized.Bounds().Dy())
	}
}

func BenchmarkInfo(b *testing.B) {
	source := New()
	img := createTestImage(1920, 1080)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		source.Info(img)
	}
}
