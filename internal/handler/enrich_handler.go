package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/akilov-labs/leads-crm-api/internal/dto"
	"github.com/akilov-labs/leads-crm-api/internal/service/enrich"
)

// Enricher runs one website enrichment cycle.
type Enricher interface {
	Enrich(ctx context.Context, rawURL string) (*enrich.Result, error)
}

// EnrichHandler exposes the contact-enrichment endpoint.
type EnrichHandler struct {
	enricher Enricher
}

// NewEnrichHandler creates a new handler instance.
func NewEnrichHandler(enricher Enricher) *EnrichHandler {
	return &EnrichHandler{enricher: enricher}
}

// Enrich handles GET /enrich requests. Partial or empty crawl results still
// produce a success envelope; only malformed input is rejected.
func (h *EnrichHandler) Enrich(c echo.Context) error {
	rawURL := strings.TrimSpace(c.QueryParam("url"))
	if rawURL == "" {
		return Error(c, http.StatusBadRequest, "missing url")
	}

	result, err := h.enricher.Enrich(c.Request().Context(), rawURL)
	if err != nil {
		if errors.Is(err, enrich.ErrInvalidURL) {
			return Error(c, http.StatusBadRequest, "invalid url")
		}
		return Error(c, http.StatusInternalServerError, "enrichment failed")
	}

	return Success(c, http.StatusOK, "enrichment completed", toEnrichResponse(result))
}

func toEnrichResponse(result *enrich.Result) dto.EnrichResponse {
	resp := dto.EnrichResponse{
		Source:       result.Source,
		ContactPage:  result.ContactPage,
		BestEmail:    result.BestEmail,
		EmailsRanked: make([]dto.RankedEmail, 0, len(result.EmailsRanked)),
		EmailsAll:    result.EmailsAll,
		Socials:      result.Socials,
	}
	for _, ranked := range result.EmailsRanked {
		resp.EmailsRanked = append(resp.EmailsRanked, dto.RankedEmail(ranked))
	}
	if resp.EmailsAll == nil {
		resp.EmailsAll = []string{}
	}
	if resp.Socials == nil {
		resp.Socials = map[string]string{}
	}
	return resp
}
