package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/akilov-labs/leads-crm-api/internal/service/enrich"
)

type stubEnricher struct {
	result *enrich.Result
	err    error
	rawURL string
}

func (s *stubEnricher) Enrich(ctx context.Context, rawURL string) (*enrich.Result, error) {
	s.rawURL = rawURL
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newEnrichContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestEnrichHandler_MissingURL(t *testing.T) {
	handler := NewEnrichHandler(&stubEnricher{})
	c, rec := newEnrichContext(t, "/enrich")

	_ = handler.Enrich(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEnrichHandler_InvalidURL(t *testing.T) {
	handler := NewEnrichHandler(&stubEnricher{err: enrich.ErrInvalidURL})
	c, rec := newEnrichContext(t, "/enrich?url=not-a-url")

	_ = handler.Enrich(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEnrichHandler_Success(t *testing.T) {
	enricher := &stubEnricher{result: &enrich.Result{
		Source:      "https://acme.example",
		ContactPage: "https://acme.example/contact",
		BestEmail:   "procurement@acme.com",
		EmailsRanked: []enrich.RankedEmail{
			{Email: "procurement@acme.com", Score: 85, Reason: "buyer-intent local part, procurement context"},
			{Email: "info@acme.com", Score: 10, Reason: "generic inbox"},
		},
		EmailsAll: []string{"procurement@acme.com", "info@acme.com"},
		Socials:   map[string]string{"linkedin": "https://linkedin.com/company/acme"},
	}}
	handler := NewEnrichHandler(enricher)
	c, rec := newEnrichContext(t, "/enrich?url=https%3A%2F%2Facme.example")

	if err := handler.Enrich(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if enricher.rawURL != "https://acme.example" {
		t.Fatalf("url not forwarded: %q", enricher.rawURL)
	}

	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	data, ok := payload.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data: %+v", payload.Data)
	}
	if data["best_email"] != "procurement@acme.com" {
		t.Fatalf("unexpected best_email: %v", data["best_email"])
	}
	ranked, ok := data["emails_ranked"].([]any)
	if !ok || len(ranked) != 2 {
		t.Fatalf("unexpected emails_ranked: %v", data["emails_ranked"])
	}
}

func TestEnrichHandler_EmptyResultKeepsSuccessFraming(t *testing.T) {
	handler := NewEnrichHandler(&stubEnricher{result: &enrich.Result{Source: "https://ghost.example"}})
	c, rec := newEnrichContext(t, "/enrich?url=https%3A%2F%2Fghost.example")

	if err := handler.Enrich(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `"emails_all":[]`) || !strings.Contains(body, `"socials":{}`) {
		t.Fatalf("empty collections must serialize as empty, got %s", body)
	}
}

func TestEnrichHandler_InternalFailure(t *testing.T) {
	handler := NewEnrichHandler(&stubEnricher{err: context.DeadlineExceeded})
	c, rec := newEnrichContext(t, "/enrich?url=https%3A%2F%2Facme.example")

	_ = handler.Enrich(c)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
