package enrich

import (
	"context"
	"net/url"
	"strings"
)

// probePaths are well-known page slugs probed in addition to the home page
// and any discovered contact link. They catch sites whose contact page is
// not reachable through an extractable anchor.
var probePaths = []string{"contact", "contacts", "about", "team", "impressum", "legal", "wholesale"}

// maxEmailCandidates caps collection on pathological pages.
const maxEmailCandidates = 20

// Harvest accumulates everything extracted across one site crawl.
type Harvest struct {
	Emails      []string
	Socials     map[string]string
	ContactPage string
	Markup      string
}

// Collector drives the fetcher across a site's likely contact pages and
// merges what the extractor finds.
type Collector struct {
	fetcher *Fetcher
}

// NewCollector wires a collector over the given fetcher.
func NewCollector(fetcher *Fetcher) *Collector {
	return &Collector{fetcher: fetcher}
}

// Collect crawls the site under the context deadline and returns whatever it
// accumulated, even when every page failed. Fetches run sequentially; once
// the shared deadline elapses no further pages are attempted.
func (c *Collector) Collect(ctx context.Context, siteURL string) Harvest {
	harvest := Harvest{Socials: map[string]string{}}

	base, err := url.Parse(siteURL)
	if err != nil || base.Host == "" {
		return harvest
	}

	var (
		markup    strings.Builder
		seenURLs  = map[string]bool{}
		seenMails = map[string]bool{}
	)

	visit := func(pageURL string) string {
		key := normalizePageURL(pageURL)
		if key == "" || seenURLs[key] {
			return ""
		}
		seenURLs[key] = true

		if ctx.Err() != nil {
			return ""
		}
		body := c.fetcher.Fetch(ctx, pageURL)
		if body == "" {
			return ""
		}

		markup.WriteString(body)
		markup.WriteString("\n")

		for _, email := range ExtractEmails(body) {
			if len(harvest.Emails) >= maxEmailCandidates {
				break
			}
			key := strings.ToLower(email)
			if seenMails[key] {
				continue
			}
			seenMails[key] = true
			harvest.Emails = append(harvest.Emails, email)
		}

		mergeSocials(harvest.Socials, ExtractSocialLinks(body, pageURL))
		return body
	}

	home := visit(siteURL)
	if home != "" {
		if link, ok := FindContactPageLink(home, siteURL); ok {
			harvest.ContactPage = link
			if len(harvest.Emails) < maxEmailCandidates {
				visit(link)
			}
		}
	}

	for _, slug := range probePaths {
		if ctx.Err() != nil || len(harvest.Emails) >= maxEmailCandidates {
			break
		}
		target, err := base.Parse("/" + slug)
		if err != nil {
			continue
		}
		visit(target.String())
	}

	harvest.Markup = markup.String()
	return harvest
}

// mergeSocials fills gaps only: a later page may supply a platform an
// earlier page left empty, never overwrite one.
func mergeSocials(dst, src map[string]string) {
	for platform, link := range src {
		if link == "" {
			continue
		}
		if dst[platform] == "" {
			dst[platform] = link
		}
	}
}

func normalizePageURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/")
}
