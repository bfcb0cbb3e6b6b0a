package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Lead represents a business tracked through the sales pipeline.
type Lead struct {
	ID            uuid.UUID       `json:"id"`
	PlaceID       string          `json:"place_id"`
	Name          *string         `json:"name,omitempty"`
	Address       *string         `json:"address,omitempty"`
	Website       *string         `json:"website,omitempty"`
	Phone         *string         `json:"phone,omitempty"`
	Rating        *float64        `json:"rating,omitempty"`
	Reviews       *int            `json:"reviews,omitempty"`
	Categories    *string         `json:"categories,omitempty"`
	Email         *string         `json:"email,omitempty"`
	EnrichEmails  json.RawMessage `json:"enrich_emails,omitempty"`
	EnrichSocials json.RawMessage `json:"enrich_socials,omitempty"`
	Stage         *string         `json:"stage,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LeadAction is an audit entry recorded alongside pipeline mutations.
type LeadAction struct {
	ID         int64           `json:"id"`
	LeadID     uuid.UUID       `json:"lead_id"`
	ActionType string          `json:"action_type"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}
