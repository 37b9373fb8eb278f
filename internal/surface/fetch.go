package surface

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/example/pixmark/internal/logging"
)

// Fetcher loads and decodes the image at src.
type Fetcher interface {
	Fetch(ctx context.Context, src string) (image.Image, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, src string) (image.Image, error)

func (f FetcherFunc) Fetch(ctx context.Context, src string) (image.Image, error) { return f(ctx, src) }

// DefaultMaxBytes caps downloaded image bodies.
const DefaultMaxBytes = 32 << 20

// HTTPFetcher downloads images over HTTP(S).
type HTTPFetcher struct {
	Client   *http.Client
	Timeout  time.Duration
	MaxBytes int64
}

var ErrTooLarge = errors.New("image exceeds size limit")

func (f *HTTPFetcher) Fetch(ctx context.Context, src string) (image.Image, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	hc := f.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Logger().Warn("surface: close body", "err", cerr)
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	lr := &io.LimitedReader{R: resp.Body, N: limit + 1}
	img, _, err := image.Decode(bufio.NewReader(lr))
	if lr.N <= 0 {
		return nil, ErrTooLarge
	}
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// FileFetcher reads images from the local filesystem. Both bare paths and
// file:// URLs are accepted.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(localPath(src))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Logger().Warn("surface: close file", "err", cerr)
		}
	}()
	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// SourceFetcher picks the HTTP or file fetcher by the scheme of src.
type SourceFetcher struct {
	HTTP Fetcher
	File Fetcher
}

// NewSourceFetcher returns a fetcher for both remote and local sources.
func NewSourceFetcher(timeout time.Duration) *SourceFetcher {
	return &SourceFetcher{
		HTTP: &HTTPFetcher{Timeout: timeout},
		File: FileFetcher{},
	}
}

func (f *SourceFetcher) Fetch(ctx context.Context, src string) (image.Image, error) {
	if IsRemote(src) {
		return f.HTTP.Fetch(ctx, src)
	}
	return f.File.Fetch(ctx, src)
}

// IsRemote reports whether src is an http or https URL.
func IsRemote(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func localPath(src string) string {
	if strings.HasPrefix(src, "file://") {
		if u, err := url.Parse(src); err == nil {
			return u.Path
		}
	}
	return src
}

// LocalSize reads the dimensions of a local image without decoding it.
func LocalSize(src string) (w, h int, err error) {
	f, err := os.Open(localPath(src))
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Logger().Warn("surface: close file", "err", cerr)
		}
	}()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("size of %s: %w", src, err)
	}
	return cfg.Width, cfg.Height, nil
}
