package clip

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geoinsight/geoinsight/internal/scoring"
)

func embedServer(t *testing.T, vector []float32) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/embed" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if len(body) == 0 {
			t.Error("empty request body")
		}
		json.NewEncoder(w).Encode(map[string]any{"embedding": vector})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestEmbed_ReturnsVector(t *testing.T) {
	ts := embedServer(t, []float32{0.1, 0.2, 0.3, 0.4})
	c := NewClient(ts.URL, 4, 5*time.Second)

	got, err := c.Embed(context.Background(), []byte("image-bytes"))
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 4 || got[1] != 0.2 {
		t.Errorf("vector = %v, want [0.1 0.2 0.3 0.4]", got)
	}
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	ts := embedServer(t, []float32{0.1, 0.2})
	c := NewClient(ts.URL, 512, 5*time.Second)

	_, err := c.Embed(context.Background(), []byte("image-bytes"))
	var mismatch *scoring.DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want DimensionMismatchError", err)
	}
	if mismatch.Got != 2 || mismatch.Want != 512 {
		t.Errorf("mismatch = %+v, want Got=2 Want=512", mismatch)
	}
}

func TestEmbed_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL, 4, time.Second)
	_, err := c.Embed(context.Background(), []byte("image-bytes"))
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("err = %v, want ErrBadResponse", err)
	}
}

func TestEmbed_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 4, 500*time.Millisecond)
	_, err := c.Embed(context.Background(), []byte("image-bytes"))
	if !errors.Is(err, ErrUnreachable) && !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrUnreachable or ErrTimeout", err)
	}
}
