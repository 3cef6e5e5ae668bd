package fetch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrorKind distinguishes fetch failure causes. All kinds surface to the
// caller as a plain message, but the kind is preserved for logging.
type ErrorKind int

const (
	ErrNetwork ErrorKind = iota
	ErrStatus
	ErrRead
	ErrOpen
	ErrDecode
)

// String returns a short label for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrNetwork:
		return "network"
	case ErrStatus:
		return "status"
	case ErrRead:
		return "read"
	case ErrOpen:
		return "open"
	case ErrDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is a fetch failure for a single source.
type Error struct {
	Kind   ErrorKind
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Image is a decoded image together with its original encoded bytes, which
// exporters prefer over re-encoding.
type Image struct {
	Decoded image.Image
	Data    []byte
	Format  string // decoder-reported format name, e.g. "jpeg"
}

// Config holds settings for the HTTP fetcher.
type Config struct {
	Timeout  time.Duration // per-request timeout
	MinDelay time.Duration // minimum delay between requests across workers
	MaxBytes int64         // response body size cap
}

// DefaultConfig returns the default fetcher settings.
func DefaultConfig() Config {
	return Config{
		Timeout:  10 * time.Second,
		MinDelay: 500 * time.Millisecond,
		MaxBytes: 50 * 1024 * 1024,
	}
}

// Client fetches and decodes images from URLs. Requests are paced by a shared
// rate limiter so parallel workers do not overwhelm remote hosts.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	maxBytes   int64
}

// NewClient creates a fetch client from the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultConfig().MaxBytes
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.MinDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.MinDelay), 1)
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		maxBytes:   cfg.MaxBytes,
	}
}

// FetchURL issues a GET for the URL and decodes the response body as an image.
// Non-2xx responses and decode failures are reported as distinct error kinds.
func (c *Client) FetchURL(ctx context.Context, url string) (*Image, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: ErrNetwork, Source: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: ErrNetwork, Source: url, Err: err}
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL is caller-supplied by design
	if err != nil {
		return nil, &Error{Kind: ErrNetwork, Source: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: ErrStatus, Source: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, &Error{Kind: ErrRead, Source: url, Err: err}
	}

	return decode(url, data)
}

// FetchPath opens and decodes the image file at the given path.
func FetchPath(path string) (*Image, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: reading user-provided image path is expected
	if err != nil {
		return nil, &Error{Kind: ErrOpen, Source: path, Err: err}
	}
	return decode(path, data)
}

func decode(source string, data []byte) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Kind: ErrDecode, Source: source, Err: err}
	}
	return &Image{Decoded: img, Data: data, Format: format}, nil
}
