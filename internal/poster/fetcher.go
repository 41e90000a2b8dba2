package poster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Normalized poster canvas.
const (
	Width  = 120
	Height = 180
)

const defaultConcurrency = 8

// Pair couples a cache filename with the remote poster URL.
type Pair struct {
	Filename string
	URL      string
}

// Fetcher downloads, normalizes, and caches poster artwork.
type Fetcher struct {
	store       *Store
	httpClient  *http.Client
	concurrency int
	inflight    singleflight.Group
	log         *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithConcurrency bounds the number of simultaneous downloads in a batch.
func WithConcurrency(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient = hc
	}
}

// NewFetcher creates a poster fetcher over the given store.
func NewFetcher(store *Store, log *slog.Logger, opts ...FetcherOption) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	f := &Fetcher{
		store:       store,
		concurrency: defaultConcurrency,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DownloadBatch fetches and caches every pair that is not already cached
// and has a URL. Downloads run concurrently on a bounded pool; concurrent
// requests for the same filename are coalesced into one fetch. A failed or
// undecodable item is logged and skipped, never aborting its siblings.
// The call returns once every item has settled.
func (f *Fetcher) DownloadBatch(ctx context.Context, pairs []Pair) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, p := range pairs {
		if p.URL == "" || p.Filename == "" {
			continue
		}
		pair := p
		g.Go(func() error {
			if err := f.download(ctx, pair); err != nil {
				f.log.Warn("poster download failed", "filename", pair.Filename, "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}

func (f *Fetcher) download(ctx context.Context, p Pair) error {
	cached, err := f.store.Lookup(ctx, p.Filename)
	if err != nil {
		return err
	}
	if cached {
		return nil
	}

	_, err, _ = f.inflight.Do(p.Filename, func() (any, error) {
		raw, err := f.fetch(ctx, p.URL)
		if err != nil {
			return nil, err
		}

		normalized, err := normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("normalize: %w", err)
		}

		return nil, f.store.Push(ctx, p.Filename, normalized)
	})
	return err
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// normalize decodes poster bytes, scales them to the fixed canvas, and
// re-encodes in the detected format (png when undetectable).
func normalize(data []byte) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90})
	case "gif":
		err = gif.Encode(&buf, dst, nil)
	default:
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
