package scoring

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var (
	leafGreen = color.RGBA{R: 40, G: 170, B: 60, A: 255}
	asphalt   = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

func TestVegetation_AllGreenCoversFully(t *testing.T) {
	report, _, err := Vegetation(solidImage(32, 32, leafGreen), DefaultVegetationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Coverage < 0.999 {
		t.Errorf("all-green image should cover ~1.0, got %v", report.Coverage)
	}
	if report.GreenPixels != report.TotalPixels {
		t.Errorf("expected %d green pixels, got %d", report.TotalPixels, report.GreenPixels)
	}
}

func TestVegetation_GrayCoversNothing(t *testing.T) {
	report, _, err := Vegetation(solidImage(16, 16, asphalt), DefaultVegetationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Coverage != 0 {
		t.Errorf("gray image should cover 0, got %v", report.Coverage)
	}
}

func TestVegetation_Idempotent(t *testing.T) {
	img := solidImage(24, 24, leafGreen)
	for x := 0; x < 24; x += 3 {
		img.SetRGBA(x, 12, asphalt)
	}
	cfg := DefaultVegetationConfig()

	first, _, err := Vegetation(img, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _, err := Vegetation(img, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("coverage changed across runs: %+v vs %+v", again, first)
		}
	}
	if first.Coverage < 0 || first.Coverage > 1 {
		t.Errorf("coverage out of [0,1]: %v", first.Coverage)
	}
}

func TestVegetation_OpeningRemovesSpeckle(t *testing.T) {
	// One lone green pixel in a gray field is sensor noise, not a park.
	img := solidImage(21, 21, asphalt)
	img.SetRGBA(10, 10, leafGreen)

	report, _, err := Vegetation(img, DefaultVegetationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.GreenPixels != 0 {
		t.Errorf("single-pixel speckle should be opened away, got %d green pixels", report.GreenPixels)
	}

	// With the opening disabled the speckle survives.
	cfg := DefaultVegetationConfig()
	cfg.OpeningRadius = 0
	report, _, err = Vegetation(img, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.GreenPixels != 1 {
		t.Errorf("expected 1 green pixel without opening, got %d", report.GreenPixels)
	}
}

func TestVegetation_MaskMatchesCount(t *testing.T) {
	img := solidImage(16, 16, asphalt)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, leafGreen)
		}
	}

	report, mask, err := Vegetation(img, DefaultVegetationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set := 0
	for _, p := range mask.Pix {
		if p == 255 {
			set++
		}
	}
	if set != report.GreenPixels {
		t.Errorf("mask has %d set pixels, report says %d", set, report.GreenPixels)
	}
}

func TestVegetation_NilImage(t *testing.T) {
	if _, _, err := Vegetation(nil, DefaultVegetationConfig()); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage for nil image, got %v", err)
	}
}

func TestVegetation_ZeroArea(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, _, err := Vegetation(img, DefaultVegetationConfig()); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage for zero-area image, got %v", err)
	}
}

func TestDecodeImage(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(4, 4, leafGreen)); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"valid png", buf.Bytes(), false},
		{"empty", nil, true},
		{"garbage", []byte("not an image"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeImage(tt.data)
			if tt.wantErr && !errors.Is(err, ErrInvalidImage) {
				t.Errorf("expected ErrInvalidImage, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		hue     float64
		sat     float64
		val     float64
	}{
		{"pure red", 1, 0, 0, 0, 1, 1},
		{"pure green", 0, 1, 0, 120, 1, 1},
		{"pure blue", 0, 0, 1, 240, 1, 1},
		{"white", 1, 1, 1, 0, 0, 1},
		{"black", 0, 0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, v := rgbToHSV(tt.r, tt.g, tt.b)
			if h != tt.hue || s != tt.sat || v != tt.val {
				t.Errorf("rgbToHSV(%v,%v,%v) = (%v,%v,%v), want (%v,%v,%v)",
					tt.r, tt.g, tt.b, h, s, v, tt.hue, tt.sat, tt.val)
			}
		})
	}
}
