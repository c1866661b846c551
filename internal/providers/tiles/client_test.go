package tiles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fixedGeocoder struct {
	lat, lon float64
	err      error
}

func (g fixedGeocoder) Geocode(context.Context, string) (float64, float64, error) {
	return g.lat, g.lon, g.err
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.SetRGBA(0, 0, color.RGBA{0, 128, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFetchImage_ReturnsTile(t *testing.T) {
	want := pngBytes(t)
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write(want)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL, 16, fixedGeocoder{lat: 51.5237, lon: -0.1585}, 5*time.Second)
	got, err := c.FetchImage(context.Background(), "221B Baker Street", 1000)
	if err != nil {
		t.Fatalf("FetchImage: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("tile bytes differ from server response")
	}

	// zoom 16 tile containing central London
	x, y := tileXY(51.5237, -0.1585, 16)
	wantPath := fmt.Sprintf("/16/%d/%d.png", x, y)
	if gotPath != wantPath {
		t.Errorf("path = %q, want %q", gotPath, wantPath)
	}
}

func TestFetchImage_GeocodeFailurePropagates(t *testing.T) {
	geoErr := errors.New("address not found")
	c := NewClient("http://unused", 16, fixedGeocoder{err: geoErr}, time.Second)

	_, err := c.FetchImage(context.Background(), "qqqq", 500)
	if !errors.Is(err, geoErr) {
		t.Errorf("err = %v, want geocode error", err)
	}
}

func TestFetchImage_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL, 16, fixedGeocoder{lat: 51.5, lon: -0.15}, time.Second)
	_, err := c.FetchImage(context.Background(), "somewhere", 500)
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("err = %v, want ErrBadResponse", err)
	}
}

func TestTileXY_KnownPoints(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		zoom     int
		x, y     int
	}{
		{"origin at zoom 0", 0, 0, 0, 0, 0},
		{"origin at zoom 1", 0.0001, 0.0001, 1, 1, 0},
		{"london zoom 10", 51.5074, -0.1278, 10, 511, 340},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tileXY(tt.lat, tt.lon, tt.zoom)
			if x != tt.x || y != tt.y {
				t.Errorf("tileXY = (%d, %d), want (%d, %d)", x, y, tt.x, tt.y)
			}
		})
	}
}
