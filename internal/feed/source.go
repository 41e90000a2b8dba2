package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// notFoundMarker appears in the feed body Letterboxd serves for unknown users.
const notFoundMarker = "<title>Letterboxd - Not Found</title>"

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_10_1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/39.0.2171.95 Safari/537.36"

// Source fetches per-user activity feeds from Letterboxd.
type Source struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithUserAgent sets the User-Agent header sent with feed requests.
func WithUserAgent(ua string) SourceOption {
	return func(s *Source) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithSourceHTTPClient sets a custom HTTP client.
func WithSourceHTTPClient(hc *http.Client) SourceOption {
	return func(s *Source) {
		s.httpClient = hc
	}
}

// NewSource creates a feed source against the given base URL.
func NewSource(baseURL string, opts ...SourceOption) *Source {
	s := &Source{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: defaultUserAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns the raw feed bytes for a username. The body is returned
// even for unknown users; check NotFound on the result.
func (s *Source) Fetch(ctx context.Context, username string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/rss/", s.baseURL, username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return body, nil
}

// NotFound reports whether raw is the "Not Found" page served for
// usernames with no feed.
func NotFound(raw []byte) bool {
	return strings.Contains(string(raw), notFoundMarker)
}

// Exists reports whether the username has a feed.
func (s *Source) Exists(ctx context.Context, username string) (bool, error) {
	raw, err := s.Fetch(ctx, username)
	if err != nil {
		return false, err
	}
	return !NotFound(raw), nil
}
