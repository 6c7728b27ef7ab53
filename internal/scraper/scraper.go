// Package scraper fetches listing pages and extracts raw event fields with
// CSS selectors. It is thin I/O: everything it returns is text for the
// normalization pipeline to interpret.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	UserAgent = "eventline/1.0 (github.com/cityevents/eventline)"
	Timeout   = 30 * time.Second
)

// ResponseError reports a non-200 response from a listing page.
type ResponseError struct {
	URL        string
	StatusCode int
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("response from %q is %d, not 200", e.URL, e.StatusCode)
}

// Scraper fetches and parses listing pages of one site.
type Scraper struct {
	client  *http.Client
	rootURL string
}

// New creates a Scraper. Relative URLs passed to Fetch are resolved against
// rootURL.
func New(rootURL string) *Scraper {
	return &Scraper{
		client:  &http.Client{Timeout: Timeout},
		rootURL: strings.TrimSuffix(rootURL, "/"),
	}
}

// AddRoot prefixes site-relative URLs with the configured root. Absolute
// URLs pass through untouched; empty input stays empty.
func (s *Scraper) AddRoot(url string) string {
	if url == "" {
		return ""
	}
	if strings.Contains(url, "://") {
		return url
	}
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return s.rootURL + url
}

// Fetch retrieves a page and parses it into a goquery document. A non-200
// status yields a *ResponseError.
func (s *Scraper) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	url = s.AddRoot(url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ResponseError{URL: url, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// EachPage fetches numbered pages by substituting {page} in urlTemplate,
// starting at startPage, and passes each document to fn. Iteration stops
// when until returns false for the current page, or on the first error.
func (s *Scraper) EachPage(ctx context.Context, urlTemplate string, startPage int,
	until func(*goquery.Document) bool, fn func(*goquery.Document) error) error {
	for page := startPage; ; page++ {
		url := strings.ReplaceAll(urlTemplate, "{page}", fmt.Sprintf("%d", page))
		doc, err := s.Fetch(ctx, url)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		if !until(doc) {
			return nil
		}
	}
}
