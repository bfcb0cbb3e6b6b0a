package entity

import "time"

// Place is a business discovered through the upstream places API.
type Place struct {
	PlaceID        string    `json:"place_id"`
	Name           *string   `json:"name,omitempty"`
	Address        *string   `json:"address,omitempty"`
	City           *string   `json:"city,omitempty"`
	State          *string   `json:"state,omitempty"`
	Country        *string   `json:"country,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	Website        *string   `json:"website,omitempty"`
	Rating         *float64  `json:"rating,omitempty"`
	Reviews        *int      `json:"reviews,omitempty"`
	Categories     *string   `json:"categories,omitempty"`
	BusinessStatus *string   `json:"business_status,omitempty"`
	Lat            *float64  `json:"lat,omitempty"`
	Lng            *float64  `json:"lng,omitempty"`
	LastSeenAt     time.Time `json:"last_seen_at"`
}

// PlaceQuery identifies a stored search the place was discovered under.
type PlaceQuery struct {
	Category string `json:"category"`
	Country  string `json:"country"`
	Scope    string `json:"scope"`
}
