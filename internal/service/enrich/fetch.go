package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const (
	// maxBodyBytes bounds memory use against oversized pages; longer bodies
	// are truncated, not rejected.
	maxBodyBytes = 3 << 20

	crawlerUserAgent = "Mozilla/5.0 (compatible; LeadsCRM/1.0; +https://github.com/akilov-labs/leads-crm-api)"
	acceptHeader     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Fetcher retrieves page content under the caller's context deadline.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a fetcher. The client carries no timeout of its own so a
// single shared deadline can govern a whole crawl batch; pass nil for a
// default client capped at three redirects.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		}
	}
	return &Fetcher{client: client}
}

// Fetch returns the page body, or "" when the page cannot be retrieved.
// Non-2xx statuses, network errors and deadline expiry all read as "no
// content"; callers treat that as a normal outcome.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", crawlerUserAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ""
	}
	return string(body)
}
