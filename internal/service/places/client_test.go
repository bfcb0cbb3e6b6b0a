package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type googleStub struct {
	mu          sync.Mutex
	searchBody  string
	detailCalls int
	details     map[string]string
}

func newGoogleServer(stub *googleStub) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/place/textsearch/json":
			fmt.Fprint(w, stub.searchBody)
		case "/place/details/json":
			stub.mu.Lock()
			stub.detailCalls++
			body, ok := stub.details[r.URL.Query().Get("place_id")]
			stub.mu.Unlock()
			if !ok {
				fmt.Fprint(w, `{"status":"NOT_FOUND"}`)
				return
			}
			fmt.Fprint(w, body)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func searchResponse(ids ...string) string {
	results := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		results = append(results, map[string]string{"place_id": id})
	}
	raw, _ := json.Marshal(map[string]any{"status": "OK", "results": results})
	return string(raw)
}

func TestClient_SearchMissingKey(t *testing.T) {
	client := NewClient(nil, "", "")
	if _, err := client.Search(context.Background(), "bakery tel aviv", "IL"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestClient_SearchZeroResults(t *testing.T) {
	stub := &googleStub{searchBody: `{"status":"ZERO_RESULTS","results":[]}`}
	srv := newGoogleServer(stub)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "test-key")
	places, err := client.Search(context.Background(), "bakery atlantis", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 0 {
		t.Fatalf("expected empty result, got %v", places)
	}
	if stub.detailCalls != 0 {
		t.Fatalf("no details should be fetched, got %d calls", stub.detailCalls)
	}
}

func TestClient_SearchErrorStatus(t *testing.T) {
	stub := &googleStub{searchBody: `{"status":"REQUEST_DENIED","error_message":"key expired"}`}
	srv := newGoogleServer(stub)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "test-key")
	if _, err := client.Search(context.Background(), "bakery", ""); err == nil {
		t.Fatalf("expected error for denied request")
	}
}

func TestClient_SearchExpandsDetails(t *testing.T) {
	stub := &googleStub{
		searchBody: searchResponse("p1", "p2"),
		details: map[string]string{
			"p1": `{"status":"OK","result":{
				"place_id":"p1",
				"name":"Tel Aviv Bakery",
				"formatted_address":"Dizengoff 1, Tel Aviv-Yafo, Israel",
				"address_components":[
					{"long_name":"Tel Aviv-Yafo","types":["locality","political"]},
					{"long_name":"Tel Aviv District","types":["administrative_area_level_1"]},
					{"long_name":"Israel","types":["country","political"]}
				],
				"geometry":{"location":{"lat":32.08,"lng":34.78}},
				"rating":4.6,
				"user_ratings_total":212,
				"website":"https://bakery.example",
				"international_phone_number":"+972 3-555-0100"
			}}`,
			"p2": `{"status":"OK","result":{"place_id":"p2","name":"Nameless"}}`,
		},
	}
	srv := newGoogleServer(stub)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "test-key")
	places, err := client.Search(context.Background(), "bakery tel aviv", "IL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(places))
	}

	got := places[0]
	if got.PlaceID != "p1" || got.Name != "Tel Aviv Bakery" {
		t.Fatalf("unexpected place: %+v", got)
	}
	if got.City != "Tel Aviv-Yafo" || got.State != "Tel Aviv District" || got.Country != "Israel" {
		t.Fatalf("address components not parsed: %+v", got)
	}
	if got.Phone != "+97235550100" {
		t.Fatalf("phone not E.164 normalized: %q", got.Phone)
	}
	if got.Rating == nil || *got.Rating != 4.6 || got.Reviews == nil || *got.Reviews != 212 {
		t.Fatalf("rating/reviews not mapped: %+v", got)
	}
	if got.Lat == nil || *got.Lat != 32.08 {
		t.Fatalf("geometry not mapped: %+v", got)
	}
}

func TestClient_SearchSkipsFailedDetails(t *testing.T) {
	stub := &googleStub{
		searchBody: searchResponse("good", "bad"),
		details: map[string]string{
			"good": `{"status":"OK","result":{"place_id":"good","name":"Good"}}`,
		},
	}
	srv := newGoogleServer(stub)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "test-key")
	places, err := client.Search(context.Background(), "bakery", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 1 || places[0].PlaceID != "good" {
		t.Fatalf("expected the failing detail skipped, got %v", places)
	}
}

func TestClient_SearchCapsDetailFetches(t *testing.T) {
	ids := make([]string, 0, 25)
	details := map[string]string{}
	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("p%02d", i)
		ids = append(ids, id)
		details[id] = fmt.Sprintf(`{"status":"OK","result":{"place_id":%q,"name":"Place"}}`, id)
	}
	stub := &googleStub{searchBody: searchResponse(ids...), details: details}
	srv := newGoogleServer(stub)
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "test-key")
	places, err := client.Search(context.Background(), "bakery", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != maxDetailFetches {
		t.Fatalf("expected %d places, got %d", maxDetailFetches, len(places))
	}
	if stub.detailCalls != maxDetailFetches {
		t.Fatalf("expected %d detail calls, got %d", maxDetailFetches, stub.detailCalls)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"+972 3-555-0100", "+97235550100"},
		{"+1 212-555-0147", "+12125550147"},
		{"", ""},
		{"call the office", "call the office"},
	}
	for _, tc := range cases {
		if got := normalizePhone(tc.input); got != tc.want {
			t.Fatalf("normalizePhone(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
