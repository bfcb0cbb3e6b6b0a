package dto

// Op names accepted by the CRM dispatch endpoint.
const (
	OpAddOrUpdateLead = "add_or_update_lead"
	OpSetStage        = "set_stage"
	OpAddNote         = "add_note"
	OpDeleteLead      = "delete_lead"
	OpSetWorking      = "set_working"
)

// LeadInput carries the writable fields of a lead upsert.
type LeadInput struct {
	PlaceID       string            `json:"place_id"`
	Name          string            `json:"name"`
	Address       string            `json:"address"`
	Website       string            `json:"website"`
	Phone         string            `json:"phone"`
	Rating        *float64          `json:"rating"`
	Reviews       *int              `json:"reviews"`
	Categories    string            `json:"categories"`
	Email         string            `json:"email"`
	EnrichEmails  []RankedEmail     `json:"enrich_emails"`
	EnrichSocials map[string]string `json:"enrich_socials"`
}

// CRMOpRequest is the POST /crm payload dispatched on the op string.
type CRMOpRequest struct {
	Op      string     `json:"op"`
	Lead    *LeadInput `json:"lead,omitempty"`
	LeadID  string     `json:"lead_id,omitempty"`
	Stage   string     `json:"stage,omitempty"`
	Note    string     `json:"note,omitempty"`
	PlaceID string     `json:"place_id,omitempty"`
	Value   *bool      `json:"value,omitempty"`
	Name    string     `json:"name,omitempty"`
	Address string     `json:"address,omitempty"`
	Country string     `json:"country,omitempty"`
	Lat     *float64   `json:"lat,omitempty"`
	Lng     *float64   `json:"lng,omitempty"`
}
