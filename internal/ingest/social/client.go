package social

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// BaseURL for sports fan chatter searches
	BaseURL = "https://www.google.com/search"

	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval to prevent rate limiting
	MinRequestInterval = 2 * time.Second
)

// Client scrapes public chatter about a player with rate limiting. The
// search result pages are static HTML, so a plain HTTP client is enough.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu          sync.Mutex
	lastRequest time.Time
	interval    time.Duration
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    BaseURL,
		interval:   MinRequestInterval,
	}
}

// fetchWithRateLimit fetches a parsed result page, spacing requests at
// least the configured interval apart.
func (c *Client) fetchWithRateLimit(ctx context.Context, query string) (*goquery.Document, error) {
	c.mu.Lock()
	if !c.lastRequest.IsZero() {
		elapsed := time.Since(c.lastRequest)
		if elapsed < c.interval {
			waitTime := c.interval - elapsed
			log.Printf("[social] rate limiting: waiting %v before next request", waitTime)
			c.mu.Unlock()
			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			c.mu.Lock()
		}
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	return c.fetch(ctx, query)
}

func (c *Client) fetch(ctx context.Context, query string) (*goquery.Document, error) {
	requestURL := fmt.Sprintf("%s?q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching search results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
