package dto

// PlaceInput is one upstream search result submitted for persistence.
type PlaceInput struct {
	PlaceID        string   `json:"place_id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Country        string   `json:"country"`
	Phone          string   `json:"phone"`
	Website        string   `json:"website"`
	Rating         *float64 `json:"rating"`
	Reviews        *int     `json:"reviews"`
	Categories     string   `json:"categories"`
	BusinessStatus string   `json:"business_status"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
}

// SearchQuery identifies the stored query a batch of places belongs to.
type SearchQuery struct {
	Category string `json:"category"`
	Country  string `json:"country"`
	Scope    string `json:"scope"`
}

// UpsertManyRequest is the POST /search payload.
type UpsertManyRequest struct {
	Op    string       `json:"op"`
	Query *SearchQuery `json:"query"`
	Items []PlaceInput `json:"items"`
}

// LiveSearchRequest asks the API to run an upstream places search.
type LiveSearchRequest struct {
	Query   string `json:"query"`
	Region  string `json:"region"`
	Persist bool   `json:"persist"`
	SearchQuery
}
