package scoring

import (
	"bytes"
	"fmt"
	"image"
	"math"

	// Registered for image.Decode: map tiles arrive as PNG, property photos
	// as JPEG.
	_ "image/jpeg"
	_ "image/png"

	"github.com/geoinsight/geoinsight/pkg/models"
)

// VegetationConfig tunes the pixel classifier. A pixel counts as vegetation
// when its hue falls inside [HueMinDeg, HueMaxDeg] and both saturation and
// value clear their minimums, which excludes washed-out and shadowed pixels.
// Thresholds are per imagery source, not constants.
type VegetationConfig struct {
	HueMinDeg     float64
	HueMaxDeg     float64
	SatMin        float64
	ValMin        float64
	OpeningRadius int
}

// DefaultVegetationConfig suits rendered OSM map tiles.
func DefaultVegetationConfig() VegetationConfig {
	return VegetationConfig{
		HueMinDeg:     60,
		HueMaxDeg:     180,
		SatMin:        0.10,
		ValMin:        0.20,
		OpeningRadius: 1,
	}
}

// DecodeImage decodes raster bytes into an image, mapping empty or
// undecodable input to ErrInvalidImage.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidImage)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// Vegetation estimates the fraction of img covered by vegetation, returning
// the coverage report and the binary mask (255 = vegetation). A morphological
// opening removes isolated single-pixel matches before counting. Idempotent
// for a fixed image and config.
func Vegetation(img image.Image, cfg VegetationConfig) (models.VegetationReport, *image.Gray, error) {
	if img == nil {
		return models.VegetationReport{}, nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return models.VegetationReport{}, nil, fmt.Errorf("%w: zero area (%dx%d)", ErrInvalidImage, w, h)
	}

	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			hue, sat, val := rgbToHSV(float64(r)/65535, float64(g)/65535, float64(b)/65535)
			if hue >= cfg.HueMinDeg && hue <= cfg.HueMaxDeg && sat >= cfg.SatMin && val >= cfg.ValMin {
				mask[y*w+x] = true
			}
		}
	}

	if cfg.OpeningRadius > 0 {
		mask = dilate(erode(mask, w, h, cfg.OpeningRadius), w, h, cfg.OpeningRadius)
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	green := 0
	for i, set := range mask {
		if set {
			green++
			out.Pix[i] = 255
		}
	}

	return models.VegetationReport{
		Coverage:    float64(green) / float64(w*h),
		GreenPixels: green,
		TotalPixels: w * h,
	}, out, nil
}

// rgbToHSV converts [0,1] RGB to hue in degrees and saturation/value in
// [0,1].
func rgbToHSV(r, g, b float64) (hue, sat, val float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	val = max
	delta := max - min

	if max > 0 {
		sat = delta / max
	}
	if delta == 0 {
		return 0, sat, val
	}

	switch max {
	case r:
		hue = 60 * math.Mod((g-b)/delta, 6)
	case g:
		hue = 60 * ((b-r)/delta + 2)
	default:
		hue = 60 * ((r-g)/delta + 4)
	}
	if hue < 0 {
		hue += 360
	}
	return hue, sat, val
}

// erode keeps a pixel only if every pixel under the (2r+1)² structuring
// element is set. Out-of-bounds samples replicate the border so a fully
// covered image survives intact.
func erode(mask []bool, w, h, r int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = windowAll(mask, w, h, x, y, r, true)
		}
	}
	return out
}

// dilate sets a pixel if any pixel under the structuring element is set.
func dilate(mask []bool, w, h, r int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = !windowAll(mask, w, h, x, y, r, false)
		}
	}
	return out
}

// windowAll reports whether every sample in the window equals want, clamping
// coordinates at the border.
func windowAll(mask []bool, w, h, x, y, r int, want bool) bool {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			sx, sy := clamp(x+dx, w-1), clamp(y+dy, h-1)
			if mask[sy*w+sx] != want {
				return false
			}
		}
	}
	return true
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
