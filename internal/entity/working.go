package entity

import "time"

// WorkingEntry marks a place an operator is actively working.
type WorkingEntry struct {
	PlaceID   string    `json:"place_id"`
	IsWorking bool      `json:"is_working"`
	Name      *string   `json:"name,omitempty"`
	Address   *string   `json:"address,omitempty"`
	Country   *string   `json:"country,omitempty"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
