package service

import (
	"context"
	"strings"

	"github.com/akilov-labs/leads-crm-api/internal/dto"
	"github.com/akilov-labs/leads-crm-api/internal/entity"
	"github.com/akilov-labs/leads-crm-api/internal/repository"
)

// OpUpsertMany is the only op accepted by the search write endpoint.
const OpUpsertMany = "upsert_many"

// UpsertSummary reports how many places were inserted or updated.
type UpsertSummary struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Total    int `json:"total"`
}

// PlacesService exposes read/write operations for the places catalogue.
type PlacesService struct {
	repo repository.PlacesRepository
}

// NewPlacesService creates a new instance of PlacesService.
func NewPlacesService(repo repository.PlacesRepository) *PlacesService {
	return &PlacesService{repo: repo}
}

// ListByQuery returns the places linked to a stored search query.
func (s *PlacesService) ListByQuery(ctx context.Context, query dto.SearchQuery) ([]entity.Place, error) {
	if strings.TrimSpace(query.Category) == "" || strings.TrimSpace(query.Country) == "" {
		return nil, ValidationError{Message: "missing params"}
	}

	places, err := s.repo.ListByQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if places == nil {
		places = []entity.Place{}
	}
	return places, nil
}

// UpsertMany persists a batch of places under a search query.
func (s *PlacesService) UpsertMany(ctx context.Context, req dto.UpsertManyRequest) (UpsertSummary, error) {
	if req.Op != OpUpsertMany {
		return UpsertSummary{}, ValidationError{Message: "bad op"}
	}
	if req.Query == nil || req.Items == nil {
		return UpsertSummary{}, ValidationError{Message: "bad payload"}
	}
	for _, item := range req.Items {
		if strings.TrimSpace(item.PlaceID) == "" {
			return UpsertSummary{}, ValidationError{Message: "item missing place_id"}
		}
	}

	stored, err := s.repo.UpsertMany(ctx, *req.Query, req.Items)
	if err != nil {
		return UpsertSummary{}, err
	}
	return UpsertSummary(stored), nil
}
