package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const defaultHunterBaseURL = "https://api.hunter.io"

// HunterClient queries the Hunter domain-search API for candidate emails.
// It implements DomainLookup.
type HunterClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHunterClient builds a lookup client. Pass an empty baseURL for the
// public API endpoint.
func NewHunterClient(client *http.Client, baseURL, apiKey string) *HunterClient {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultHunterBaseURL
	}
	return &HunterClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// SearchDomain returns candidate emails for the domain, highest provider
// confidence first.
func (c *HunterClient) SearchDomain(ctx context.Context, domain string) ([]string, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, fmt.Errorf("domain must not be empty")
	}

	params := url.Values{}
	params.Set("domain", domain)
	params.Set("limit", "10")
	params.Set("api_key", c.apiKey)

	endpoint := c.baseURL + "/v2/domain-search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create domain search request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("domain search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("domain search returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Emails []struct {
				Value      string  `json:"value"`
				Confidence float64 `json:"confidence"`
			} `json:"emails"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode domain search response: %w", err)
	}

	candidates := payload.Data.Emails
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	emails := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate.Value); value != "" {
			emails = append(emails, value)
		}
	}
	return emails, nil
}

var _ DomainLookup = (*HunterClient)(nil)
