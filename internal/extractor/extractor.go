// Package extractor derives listing data from arbitrary real-estate pages.
//
// Listing sites share no schema, so every field is found by an ordered chain
// of pattern functions with a fixed fallback at the end. Only transport-level
// problems fail a call; a page that matches nothing still yields usable data.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"listing-reel-backend/internal/models"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultMaxBytes  = 5 << 20
)

var ErrInvalidURL = errors.New("invalid listing url")

// FetchError reports a failed page fetch. Status is 0 when no response was received.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to fetch listing: status %d", e.Status)
	}
	return fmt.Sprintf("failed to fetch listing: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Extractor struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	log       zerolog.Logger
}

type Option func(*Extractor)

// WithHTTPClient replaces the default client (15s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) {
		e.client = c
	}
}

// WithMaxBytes caps how much of a page body is read.
func WithMaxBytes(n int64) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxBytes = n
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(e *Extractor) {
		if strings.TrimSpace(ua) != "" {
			e.userAgent = ua
		}
	}
}

func New(log zerolog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		client:    NewPublicClient(15 * time.Second),
		userAgent: browserUserAgent,
		maxBytes:  defaultMaxBytes,
		log:       log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches rawURL and returns the listing found on it.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*models.ListingData, error) {
	pageURL, err := ParseListingURL(rawURL)
	if err != nil {
		return nil, err
	}

	if pageURL.String() == DemoListingURL {
		e.log.Debug().Str("url", rawURL).Msg("serving demo listing")
		demo := DemoListing()
		return &demo, nil
	}

	body, err := e.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	data, fallbacks := Parse(body, pageURL)
	e.log.Debug().
		Str("url", rawURL).
		Int("html_bytes", len(body)).
		Int("images", len(data.Images)).
		Strs("fallback_fields", fallbacks).
		Msg("listing extracted")
	return &data, nil
}

// ParseListingURL accepts only absolute http(s) URLs with a host.
func ParseListingURL(rawURL string) (*url.URL, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	return u, nil
}

func (e *Extractor) fetch(ctx context.Context, pageURL *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return "", &FetchError{Err: err}
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", &FetchError{Status: resp.StatusCode}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return "", &FetchError{Status: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	return string(b), nil
}
