package tiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/geoinsight/geoinsight/pkg/models"
)

// Sentinel errors for tile server failures.
var (
	ErrUnreachable = errors.New("tile server unreachable")
	ErrBadResponse = errors.New("tile server bad response")
	ErrTimeout     = errors.New("tile server timeout")
)

// maxTileBytes bounds a single tile download.
const maxTileBytes = 8 << 20

// Geocoder resolves an address to WGS84 coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lon float64, err error)
}

// Client fetches satellite/map tiles for an address from an XYZ tile
// server. It implements models.ImageProvider.
type Client struct {
	baseURL  string
	zoom     int
	geocoder Geocoder
	client   *http.Client
}

var _ models.ImageProvider = (*Client)(nil)

// NewClient creates a new tile client.
func NewClient(baseURL string, zoom int, geocoder Geocoder, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		zoom:     zoom,
		geocoder: geocoder,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchImage(ctx context.Context, address string, radiusM float64) ([]byte, error) {
	lat, lon, err := c.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	x, y := tileXY(lat, lon, c.zoom)
	u := fmt.Sprintf("%s/%d/%d/%d.png", c.baseURL, c.zoom, x, y)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "geoinsight/1.0")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return nil, fmt.Errorf("reading tile body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty tile", ErrBadResponse)
	}
	return data, nil
}

// tileXY converts coordinates to XYZ tile indices (Web Mercator).
func tileXY(lat, lon float64, zoom int) (x, y int) {
	n := math.Exp2(float64(zoom))
	x = int((lon + 180) / 360 * n)
	latRad := lat * math.Pi / 180
	y = int((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n)
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
