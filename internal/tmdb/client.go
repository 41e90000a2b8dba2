package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.themoviedb.org"
const defaultImageBaseURL = "https://image.tmdb.org/t/p"
const defaultPosterSize = "w342"
const defaultCacheTTL = 24 * time.Hour

// ErrNotFound is returned when an id doesn't exist in TMDB.
var ErrNotFound = errors.New("tmdb: not found")

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	baseURL    string
	imageBase  string
	posterSize string
	httpClient *http.Client
	cache      *cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithPosterSize sets the image size segment used in poster URLs.
func WithPosterSize(size string) Option {
	return func(c *Client) {
		if size != "" {
			c.posterSize = size
		}
	}
}

// WithCacheTTL sets the cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newCache(ttl)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		imageBase:  defaultImageBaseURL,
		posterSize: defaultPosterSize,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: newCache(defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetDetails fetches movie or TV metadata by TMDB ID (cached).
func (c *Client) GetDetails(ctx context.Context, id int64, media MediaType) (*Details, error) {
	key := fmt.Sprintf("%s:%d:details", media, id)
	if v, ok := c.cache.get(key); ok {
		return v.(*Details), nil
	}

	url := fmt.Sprintf("%s/3/%s/%d?api_key=%s", c.baseURL, media, id, c.apiKey)
	var details Details
	if err := c.getJSON(ctx, url, &details); err != nil {
		return nil, err
	}

	c.cache.set(key, &details)
	return &details, nil
}

// GetCredits fetches the crew listing by TMDB ID (cached).
func (c *Client) GetCredits(ctx context.Context, id int64, media MediaType) (*Credits, error) {
	key := fmt.Sprintf("%s:%d:credits", media, id)
	if v, ok := c.cache.get(key); ok {
		return v.(*Credits), nil
	}

	url := fmt.Sprintf("%s/3/%s/%d/credits?api_key=%s", c.baseURL, media, id, c.apiKey)
	var credits Credits
	if err := c.getJSON(ctx, url, &credits); err != nil {
		return nil, err
	}

	c.cache.set(key, &credits)
	return &credits, nil
}

// Director returns the director's name for an id, or "" when uncredited.
func (c *Client) Director(ctx context.Context, id int64, media MediaType) (string, error) {
	credits, err := c.GetCredits(ctx, id, media)
	if err != nil {
		return "", err
	}
	return credits.Director(), nil
}

// PosterURL returns the full poster image URL for an id, or "" when the
// entry has no poster.
func (c *Client) PosterURL(ctx context.Context, id int64, media MediaType) (string, error) {
	details, err := c.GetDetails(ctx, id, media)
	if err != nil {
		return "", err
	}
	if details.PosterPath == "" {
		return "", nil
	}
	return c.imageBase + "/" + c.posterSize + details.PosterPath, nil
}
