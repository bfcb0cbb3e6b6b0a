package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/akilov-labs/leads-crm-api/internal/dto"
	"github.com/akilov-labs/leads-crm-api/internal/service"
	"github.com/akilov-labs/leads-crm-api/internal/service/places"
)

// PlaceSearcher runs an upstream places text search.
type PlaceSearcher interface {
	Search(ctx context.Context, query, region string) ([]dto.PlaceInput, error)
}

// SearchHandler exposes the places catalogue endpoints.
type SearchHandler struct {
	service  *service.PlacesService
	searcher PlaceSearcher
}

// NewSearchHandler creates a new handler instance. The searcher may be nil
// when no upstream API key is configured.
func NewSearchHandler(service *service.PlacesService, searcher PlaceSearcher) *SearchHandler {
	return &SearchHandler{service: service, searcher: searcher}
}

// List handles GET /search requests.
func (h *SearchHandler) List(c echo.Context) error {
	if !c.QueryParams().Has("scope") {
		return Error(c, http.StatusBadRequest, "missing params")
	}

	query := dto.SearchQuery{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Country:  strings.TrimSpace(c.QueryParam("country")),
		Scope:    strings.TrimSpace(c.QueryParam("scope")),
	}

	results, err := h.service.ListByQuery(c.Request().Context(), query)
	if err != nil {
		var valErr service.ValidationError
		if errors.As(err, &valErr) {
			return Error(c, http.StatusBadRequest, valErr.Message)
		}
		return Error(c, http.StatusInternalServerError, "failed to list places")
	}

	return Success(c, http.StatusOK, "places retrieved", results)
}

// UpsertMany handles POST /search requests.
func (h *SearchHandler) UpsertMany(c echo.Context) error {
	var req dto.UpsertManyRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request body")
	}

	summary, err := h.service.UpsertMany(c.Request().Context(), req)
	if err != nil {
		var valErr service.ValidationError
		if errors.As(err, &valErr) {
			return Error(c, http.StatusBadRequest, valErr.Message)
		}
		return Error(c, http.StatusInternalServerError, "failed to upsert places")
	}

	return Success(c, http.StatusOK, "places upserted", summary)
}

// Live handles POST /places/search requests: an upstream text search with
// optional persistence under the given query tuple.
func (h *SearchHandler) Live(c echo.Context) error {
	var req dto.LiveSearchRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return Error(c, http.StatusBadRequest, "missing query")
	}
	if h.searcher == nil {
		return Error(c, http.StatusServiceUnavailable, "places search is not configured")
	}

	ctx := c.Request().Context()

	items, err := h.searcher.Search(ctx, req.Query, req.Region)
	if err != nil {
		if errors.Is(err, places.ErrMissingAPIKey) {
			return Error(c, http.StatusServiceUnavailable, "places search is not configured")
		}
		return Error(c, http.StatusBadGateway, "upstream places search failed")
	}

	data := map[string]any{"places": items}

	if req.Persist {
		summary, err := h.service.UpsertMany(ctx, dto.UpsertManyRequest{
			Op:    service.OpUpsertMany,
			Query: &req.SearchQuery,
			Items: items,
		})
		if err != nil {
			var valErr service.ValidationError
			if errors.As(err, &valErr) {
				return Error(c, http.StatusBadRequest, valErr.Message)
			}
			return Error(c, http.StatusInternalServerError, "failed to persist places")
		}
		data["persisted"] = summary
	}

	return Success(c, http.StatusOK, "places search completed", data)
}
