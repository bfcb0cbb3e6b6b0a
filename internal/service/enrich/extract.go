package enrich

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	mailtoPattern = regexp.MustCompile(`(?i)mailto:([a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,})`)

	// Asset paths like sprite@2x.png satisfy the email pattern; reject them.
	imageSuffixPattern = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|svg)$`)
)

// socialPlatform pairs a platform key with the pattern locating its profile links.
type socialPlatform struct {
	Key     string
	Pattern *regexp.Regexp
}

// SocialPlatforms lists the supported networks in merge priority order.
var SocialPlatforms = []socialPlatform{
	{"linkedin", regexp.MustCompile(`(?i)https?://(www\.)?linkedin\.com/[^\s"'<>]+`)},
	{"instagram", regexp.MustCompile(`(?i)https?://(www\.)?instagram\.com/[^\s"'<>]+`)},
	{"facebook", regexp.MustCompile(`(?i)https?://(www\.)?facebook\.com/[^\s"'<>]+`)},
	{"tiktok", regexp.MustCompile(`(?i)https?://(www\.)?tiktok\.com/[^\s"'<>]+`)},
	{"pinterest", regexp.MustCompile(`(?i)https?://(www\.)?pinterest\.[a-z.]+/[^\s"'<>]+`)},
}

// contactKeywords flag anchors pointing at a contact-like page. English terms
// plus the Hebrew labels common on the source markets' sites.
var contactKeywords = []string{
	"contact",
	"about",
	"team",
	"support",
	"wholesale",
	"impressum",
	"צור קשר",
	"יצירת קשר",
	"אודות",
	"צוות",
	"תמיכה",
}

// ExtractEmails returns every email-like candidate found in the markup, both
// mailto: targets and bare occurrences, deduplicated case-insensitively with
// the first-seen casing preserved. Total over arbitrary input.
func ExtractEmails(markup string) []string {
	if markup == "" {
		return nil
	}

	var (
		emails []string
		seen   = map[string]bool{}
	)
	add := func(candidate string) {
		if imageSuffixPattern.MatchString(candidate) {
			return
		}
		key := strings.ToLower(candidate)
		if seen[key] {
			return
		}
		seen[key] = true
		emails = append(emails, candidate)
	}

	for _, m := range mailtoPattern.FindAllStringSubmatch(markup, -1) {
		add(m[1])
	}
	for _, m := range emailPattern.FindAllString(markup, -1) {
		add(m)
	}

	return emails
}

// ExtractSocialLinks locates the first profile link per platform and resolves
// it to an absolute URL against base. Unresolvable matches are dropped.
func ExtractSocialLinks(markup, base string) map[string]string {
	socials := map[string]string{}
	if markup == "" {
		return socials
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		baseURL = nil
	}

	for _, platform := range SocialPlatforms {
		match := platform.Pattern.FindString(markup)
		if match == "" {
			continue
		}
		if resolved, ok := resolveLink(baseURL, match); ok {
			socials[platform.Key] = resolved
		}
	}

	return socials
}

// FindContactPageLink scans anchors for a contact-like target or label and
// returns the first match resolved against base.
func FindContactPageLink(markup, base string) (string, bool) {
	if markup == "" {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", false
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		baseURL = nil
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "javascript:") {
			return true
		}

		haystack := strings.ToLower(href) + " " + strings.ToLower(sel.Text())
		for _, keyword := range contactKeywords {
			if !strings.Contains(haystack, keyword) {
				continue
			}
			if resolved, ok := resolveLink(baseURL, href); ok {
				found = resolved
				return false
			}
		}
		return true
	})

	return found, found != ""
}

func resolveLink(base *url.URL, raw string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if !ref.IsAbs() || ref.Host == "" {
		return "", false
	}
	return ref.String(), true
}
