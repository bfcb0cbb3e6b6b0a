package enrich

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidURL rejects enrichment input before any fetch is attempted.
var ErrInvalidURL = errors.New("invalid enrichment url")

const (
	defaultTimeout       = 8 * time.Second
	defaultLookupTimeout = 3 * time.Second
)

// DomainLookup is an optional secondary email-lookup capability queried by
// bare domain when the locally crawled candidates look weak.
type DomainLookup interface {
	SearchDomain(ctx context.Context, domain string) ([]string, error)
}

// Result is the transient output of one enrichment run.
type Result struct {
	Source       string
	ContactPage  string
	BestEmail    string
	EmailsRanked []RankedEmail
	EmailsAll    []string
	Socials      map[string]string
}

// Service composes the collector, ranker and optional domain lookup into a
// single request/response cycle. Every invocation is independent; the
// service holds no mutable state and is safe for concurrent use.
type Service struct {
	collector     *Collector
	lookup        DomainLookup
	timeout       time.Duration
	lookupTimeout time.Duration
}

// Option configures optional service behavior.
type Option func(*Service)

// WithDomainLookup injects the secondary lookup capability.
func WithDomainLookup(lookup DomainLookup) Option {
	return func(s *Service) {
		s.lookup = lookup
	}
}

// WithTimeout overrides the shared crawl deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// NewService builds the enrichment orchestrator over the given fetcher.
func NewService(fetcher *Fetcher, opts ...Option) *Service {
	s := &Service{
		collector:     NewCollector(fetcher),
		timeout:       defaultTimeout,
		lookupTimeout: defaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enrich crawls the site, ranks every candidate and reports the best email.
// A timeout mid-crawl degrades to partial results; only malformed input is
// an error.
func (s *Service) Enrich(ctx context.Context, rawURL string) (*Result, error) {
	target, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !target.IsAbs() || target.Host == "" {
		return nil, ErrInvalidURL
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, ErrInvalidURL
	}

	crawlCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	harvest := s.collector.Collect(crawlCtx, target.String())
	candidates := harvest.Emails
	ranked := Rank(candidates, harvest.Markup, target.String())

	if s.lookup != nil && isWeakBest(ranked) {
		candidates, ranked = s.withLookup(ctx, target, harvest, candidates, ranked)
	}

	result := &Result{
		Source:       target.String(),
		ContactPage:  harvest.ContactPage,
		EmailsRanked: ranked,
		EmailsAll:    append([]string(nil), candidates...),
		Socials:      harvest.Socials,
	}
	if len(ranked) > 0 {
		result.BestEmail = ranked[0].Email
	}
	return result, nil
}

// isWeakBest reports whether the local winner is worth a secondary lookup:
// no candidate at all, or a top local part with neither a buyer-intent
// keyword nor a personal name pattern.
func isWeakBest(ranked []RankedEmail) bool {
	if len(ranked) == 0 {
		return true
	}
	local, _, _ := strings.Cut(strings.ToLower(ranked[0].Email), "@")
	if containsAny(local, procurementKeywords) {
		return false
	}
	return !strings.Contains(local, ".")
}

// withLookup queries the secondary service and adopts the combined ranking
// only when its top candidate strictly beats the local one. Any lookup
// failure leaves the local result untouched.
func (s *Service) withLookup(ctx context.Context, target *url.URL, harvest Harvest, candidates []string, ranked []RankedEmail) ([]string, []RankedEmail) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	extras, err := s.lookup.SearchDomain(lookupCtx, siteDomain(target.String()))
	if err != nil || len(extras) == 0 {
		return candidates, ranked
	}

	seen := make(map[string]bool, len(candidates))
	for _, email := range candidates {
		seen[strings.ToLower(email)] = true
	}

	combined := append([]string(nil), candidates...)
	for _, email := range extras {
		key := strings.ToLower(strings.TrimSpace(email))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		combined = append(combined, strings.TrimSpace(email))
	}
	if len(combined) == len(candidates) {
		return candidates, ranked
	}

	rankedCombined := Rank(combined, harvest.Markup, target.String())
	if len(rankedCombined) == 0 {
		return candidates, ranked
	}
	if len(ranked) > 0 && rankedCombined[0].Score <= ranked[0].Score {
		return candidates, ranked
	}
	return combined, rankedCombined
}
