// Package client talks to the CineLens analysis backend: the multipart
// upload whose response body carries the event stream, the catalog title
// lookup, and the image proxy used to sidestep cross-origin limits on the
// third-party image host.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cinelens/cinelens/internal/utils"
)

const (
	defaultBaseURL = "http://localhost:8000"

	// imageHost is the third-party host whose images must be routed through
	// the backend proxy before they can be embedded anywhere.
	imageHost = "image.tmdb.org"

	analyzePath    = "/api/analyze"
	movieInfoPath  = "/api/movie-info"
	imageProxyPath = "/api/image-proxy"
)

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("cinelens: server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("cinelens: server returned %d", e.StatusCode)
}

// Client holds HTTP configuration for backend calls. Zero retry logic by
// design: a failed call surfaces immediately.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option is a functional option for New.
type Option func(*Client)

// WithBaseURL overrides the backend endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default http.Client. The default carries no
// timeout because the analysis stream stays open for the whole pipeline run.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client. Falls back to the CINELENS_SERVER env var, then the
// local default, when no base URL is configured.
func New(opts ...Option) *Client {
	base := os.Getenv("CINELENS_SERVER")
	if base == "" {
		base = defaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload submits the video as a multipart form and returns the raw response
// body: the backend's chunked event stream. The caller owns closing it;
// abandoning it is also the only cancellation surface for a running analysis.
func (c *Client) Upload(ctx context.Context, path, title string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cinelens: open video: %w", err)
	}

	// Stream the form body straight from disk; clips can be large.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer f.Close()
		part, err := mw.CreateFormFile("video", filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.WriteField("title", title)
		}
		if err == nil {
			err = mw.WriteField("content_type", "video")
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analyzePath, pr)
	if err != nil {
		return nil, fmt.Errorf("cinelens: create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "text/event-stream")
	if ref, err := utils.Fingerprint(path); err == nil {
		// Lets the backend recognize a re-submitted clip.
		req.Header.Set("X-Client-Ref", ref)
	}

	c.log.Debug("uploading video", "path", path, "title", title, "url", c.baseURL+analyzePath)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cinelens: upload: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return resp.Body, nil
}

// TitleMatch is one external-catalog lookup result.
type TitleMatch struct {
	Title     string
	Year      string
	Overview  string
	PosterURL string
	Rating    float64
}

// LookupTitle asks the backend for the catalog entry best matching title.
func (c *Client) LookupTitle(ctx context.Context, title string) (*TitleMatch, error) {
	u := c.baseURL + movieInfoPath + "?title=" + url.QueryEscape(title)
	raw, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}

	m := &TitleMatch{}
	if v, ok := raw["title"].(string); ok {
		m.Title = v
	}
	if v, ok := raw["year"].(string); ok {
		m.Year = v
	}
	if v, ok := raw["overview"].(string); ok {
		m.Overview = v
	}
	if v, ok := raw["poster_url"].(string); ok {
		m.PosterURL = c.RewriteImageURL(v)
	}
	if v, ok := raw["rating"].(float64); ok {
		m.Rating = v
	}
	return m, nil
}

// RewriteImageURL routes third-party image-host URLs through the backend
// proxy, with the original URL percent-encoded as a query parameter. URLs on
// any other host pass through unchanged.
func (c *Client) RewriteImageURL(raw string) string {
	if !strings.Contains(raw, imageHost) {
		return raw
	}
	return c.baseURL + imageProxyPath + "?url=" + url.QueryEscape(raw)
}

// FetchImage downloads an image for embedding. Any failure returns nil; image
// loading never blocks report generation.
func (c *Client) FetchImage(ctx context.Context, rawURL string) []byte {
	if rawURL == "" {
		return nil
	}
	if strings.HasPrefix(rawURL, "/") {
		rawURL = c.baseURL + rawURL
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("image fetch failed", "url", rawURL, "err", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Debug("image fetch failed", "url", rawURL, "status", resp.StatusCode)
		return nil
	}
	img, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil
	}
	return img
}

func (c *Client) getJSON(ctx context.Context, u string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("cinelens: create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cinelens: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cinelens: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("cinelens: unmarshal response: %w", err)
	}
	return raw, nil
}
