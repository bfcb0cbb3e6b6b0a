package dto

// RankedEmail is one scored contact candidate.
type RankedEmail struct {
	Email  string `json:"email"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// EnrichResponse is the payload returned by GET /enrich.
type EnrichResponse struct {
	Source       string            `json:"source"`
	ContactPage  string            `json:"contact_page,omitempty"`
	BestEmail    string            `json:"best_email"`
	EmailsRanked []RankedEmail     `json:"emails_ranked"`
	EmailsAll    []string          `json:"emails_all"`
	Socials      map[string]string `json:"socials"`
}
