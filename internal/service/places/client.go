package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/time/rate"

	"github.com/akilov-labs/leads-crm-api/internal/dto"
)

// ErrMissingAPIKey is returned when no Google Maps key is configured.
var ErrMissingAPIKey = errors.New("google maps api key is not configured")

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api"

	// Details calls are the expensive part of a search; only the first
	// page worth of results is expanded.
	maxDetailFetches = 20
)

var detailFields = strings.Join([]string{
	"place_id",
	"name",
	"formatted_address",
	"address_components",
	"geometry/location",
	"rating",
	"user_ratings_total",
	"url",
	"website",
	"international_phone_number",
}, ",")

// Client talks to the Google Places web API.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// NewClient builds a Places client. A nil http.Client gets a sensible timeout;
// baseURL is overridable for tests.
func NewClient(client *http.Client, baseURL, apiKey string) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(120*time.Millisecond), 1),
	}
}

type textSearchResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID string `json:"place_id"`
	} `json:"results"`
}

type detailsResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
	Result       placeDetails `json:"result"`
}

type addressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

type placeDetails struct {
	PlaceID           string             `json:"place_id"`
	Name              string             `json:"name"`
	FormattedAddress  string             `json:"formatted_address"`
	AddressComponents []addressComponent `json:"address_components"`
	Geometry          struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Rating                   float64 `json:"rating"`
	UserRatingsTotal         int     `json:"user_ratings_total"`
	Website                  string  `json:"website"`
	InternationalPhoneNumber string  `json:"international_phone_number"`
}

// Search runs a text search and expands the leading results with place
// details, paced through the rate limiter.
func (c *Client) Search(ctx context.Context, query, region string) ([]dto.PlaceInput, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	results, err := c.textSearch(ctx, query, region)
	if err != nil {
		return nil, err
	}

	places := make([]dto.PlaceInput, 0, len(results))
	for i, placeID := range results {
		if i >= maxDetailFetches {
			break
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return places, err
		}
		details, err := c.placeDetails(ctx, placeID)
		if err != nil {
			log.Printf("place_id=%s place details skipped: %v", placeID, err)
			continue
		}
		places = append(places, toPlaceInput(details))
	}

	return places, nil
}

func (c *Client) textSearch(ctx context.Context, query, region string) ([]string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	switch region {
	case "IL":
		params.Set("region", "il")
	case "US":
		params.Set("region", "us")
	}

	var decoded textSearchResponse
	if err := c.getJSON(ctx, "/place/textsearch/json", params, &decoded); err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	if decoded.Status != "OK" && decoded.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("text search status %s: %s", decoded.Status, decoded.ErrorMessage)
	}

	ids := make([]string, 0, len(decoded.Results))
	for _, result := range decoded.Results {
		ids = append(ids, result.PlaceID)
	}
	return ids, nil
}

func (c *Client) placeDetails(ctx context.Context, placeID string) (placeDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailFields)
	params.Set("key", c.apiKey)

	var decoded detailsResponse
	if err := c.getJSON(ctx, "/place/details/json", params, &decoded); err != nil {
		return placeDetails{}, fmt.Errorf("place details: %w", err)
	}
	if decoded.Status != "OK" {
		return placeDetails{}, fmt.Errorf("place details status %s: %s", decoded.Status, decoded.ErrorMessage)
	}
	return decoded.Result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func toPlaceInput(d placeDetails) dto.PlaceInput {
	city, state, country := parseAddress(d.AddressComponents)

	input := dto.PlaceInput{
		PlaceID: d.PlaceID,
		Name:    d.Name,
		Address: d.FormattedAddress,
		City:    city,
		State:   state,
		Country: country,
		Phone:   normalizePhone(d.InternationalPhoneNumber),
		Website: d.Website,
	}
	if d.Rating > 0 {
		rating := d.Rating
		input.Rating = &rating
	}
	reviews := d.UserRatingsTotal
	input.Reviews = &reviews
	if d.Geometry.Location.Lat != 0 || d.Geometry.Location.Lng != 0 {
		lat := d.Geometry.Location.Lat
		lng := d.Geometry.Location.Lng
		input.Lat = &lat
		input.Lng = &lng
	}
	return input
}

func parseAddress(components []addressComponent) (city, state, country string) {
	byType := map[string]string{}
	for _, component := range components {
		for _, t := range component.Types {
			byType[t] = component.LongName
		}
	}

	city = byType["locality"]
	if city == "" {
		city = byType["postal_town"]
	}
	if city == "" {
		city = byType["administrative_area_level_2"]
	}
	state = byType["administrative_area_level_1"]
	country = byType["country"]
	return city, state, country
}

// normalizePhone formats an international phone number as E.164; numbers
// that do not parse are passed through untouched.
func normalizePhone(phone string) string {
	if strings.TrimSpace(phone) == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(phone, "ZZ")
	if err != nil {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
