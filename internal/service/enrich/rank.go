package enrich

import (
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

// Tier and bonus magnitudes are tuning knobs; only their relative order is
// load-bearing (procurement > marketing > name pattern > generic > baseline,
// context bonuses stack, off-domain free mail subtracts).
const (
	scoreBaseline     = 2
	scoreGenericInbox = 10
	scoreNamePattern  = 20
	scoreMarketing    = 40
	scoreProcurement  = 60

	bonusProcurementContext = 25
	bonusMarketingContext   = 10

	penaltyFreeMail = 15

	// contextWindow is the number of bytes inspected on each side of an
	// email's first occurrence for proximity signals.
	contextWindow = 160
)

var procurementKeywords = []string{
	"procure", "purchas", "buyer", "sourcing", "category",
	"wholesale", "b2b", "partnership", "bizdev", "distributor",
}

var marketingKeywords = []string{"marketing", "brand", "growth", "press", "media"}

// genericInboxKeywords match by equality or prefix only; a local part merely
// containing "info" is not a shared inbox.
var genericInboxKeywords = []string{"info", "support", "office", "hello", "contact", "sales"}

// freeMailProviders holds the first domain label of well-known consumer
// mailbox services, matched against any TLD.
var freeMailProviders = map[string]bool{
	"gmail":   true,
	"yahoo":   true,
	"outlook": true,
	"hotmail": true,
	"aol":     true,
	"icloud":  true,
	"walla":   true,
}

// RankedEmail is one scored candidate with a human-readable explanation.
type RankedEmail struct {
	Email  string
	Score  int
	Reason string
}

// Rank scores every candidate against keyword tiers, the surrounding markup
// context, and domain affinity with the site, then orders them by descending
// score. The sort is stable: ties keep discovery order, so the same input
// always produces the same "best" email.
func Rank(emails []string, markup, siteURL string) []RankedEmail {
	ranked := make([]RankedEmail, 0, len(emails))
	loweredMarkup := strings.ToLower(markup)
	site := siteDomain(siteURL)

	for _, email := range emails {
		score, reasons := scoreEmail(email, loweredMarkup, site)
		ranked = append(ranked, RankedEmail{
			Email:  email,
			Score:  score,
			Reason: strings.Join(reasons, ", "),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func scoreEmail(email, loweredMarkup, site string) (int, []string) {
	lowered := strings.ToLower(email)
	local, domain, _ := strings.Cut(lowered, "@")

	var (
		score   int
		reasons []string
	)

	switch {
	case containsAny(local, procurementKeywords):
		score += scoreProcurement
		reasons = append(reasons, "buyer-intent local part")
	case isMarketingLocal(local):
		score += scoreMarketing
		reasons = append(reasons, "marketing local part")
	case isGenericInbox(local):
		score += scoreGenericInbox
		reasons = append(reasons, "generic inbox")
	case strings.Contains(local, "."):
		score += scoreNamePattern
		reasons = append(reasons, "personal name pattern")
	default:
		score += scoreBaseline
		reasons = append(reasons, "baseline")
	}

	if window := contextAround(loweredMarkup, lowered); window != "" {
		switch {
		case containsAny(window, procurementKeywords):
			score += bonusProcurementContext
			reasons = append(reasons, "procurement context")
		case containsAny(window, marketingKeywords):
			score += bonusMarketingContext
			reasons = append(reasons, "marketing context")
		}
	}

	if isOffDomainFreeMail(domain, site) {
		score -= penaltyFreeMail
		reasons = append(reasons, "free mail provider")
	}

	return score, reasons
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func isMarketingLocal(local string) bool {
	// "pr" is matched exactly: as a substring it would swallow locals like
	// "support" or "april".
	return local == "pr" || containsAny(local, marketingKeywords)
}

func isGenericInbox(local string) bool {
	for _, keyword := range genericInboxKeywords {
		if local == keyword || strings.HasPrefix(local, keyword) {
			return true
		}
	}
	return false
}

// contextAround returns the text window surrounding the email's first
// occurrence in the combined markup, or "" when it never appears.
func contextAround(loweredMarkup, loweredEmail string) string {
	idx := strings.Index(loweredMarkup, loweredEmail)
	if idx < 0 {
		return ""
	}
	start := idx - contextWindow
	if start < 0 {
		start = 0
	}
	end := idx + len(loweredEmail) + contextWindow
	if end > len(loweredMarkup) {
		end = len(loweredMarkup)
	}
	return loweredMarkup[start:end]
}

// isOffDomainFreeMail reports whether the email lives at a consumer mailbox
// provider that is neither the site's own domain nor one of its subdomains.
func isOffDomainFreeMail(domain, site string) bool {
	domain = normalizeDomain(domain)
	if domain == "" {
		return false
	}
	if site != "" && (domain == site || strings.HasSuffix(domain, "."+site)) {
		return false
	}
	label, _, _ := strings.Cut(domain, ".")
	return freeMailProviders[label]
}

func siteDomain(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return normalizeDomain(host)
}

func normalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}
	if ascii, err := idna.Lookup.ToASCII(domain); err == nil {
		return ascii
	}
	return domain
}
