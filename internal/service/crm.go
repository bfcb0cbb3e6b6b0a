package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/akilov-labs/leads-crm-api/internal/dto"
	"github.com/akilov-labs/leads-crm-api/internal/entity"
	"github.com/akilov-labs/leads-crm-api/internal/repository"
)

const (
	maxNotesLen     = 30000
	noteStampLayout = "2006-01-02 15:04:05"
)

// ValidationError indicates that a request payload is invalid.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

// Snapshot bundles the pipeline state returned by GET /crm.
type Snapshot struct {
	Leads   []entity.Lead         `json:"leads"`
	Working []entity.WorkingEntry `json:"working"`
}

// LeadsService exposes the sales-pipeline operations.
type LeadsService struct {
	repo repository.LeadsRepository
	now  func() time.Time
}

// NewLeadsService creates a new instance of LeadsService.
func NewLeadsService(repo repository.LeadsRepository) *LeadsService {
	return &LeadsService{repo: repo, now: time.Now}
}

// GetSnapshot returns the recent leads and the working set.
func (s *LeadsService) GetSnapshot(ctx context.Context) (Snapshot, error) {
	leads, err := s.repo.ListLeads(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	working, err := s.repo.ListWorking(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if leads == nil {
		leads = []entity.Lead{}
	}
	if working == nil {
		working = []entity.WorkingEntry{}
	}
	return Snapshot{Leads: leads, Working: working}, nil
}

// UpsertLead inserts or updates a lead keyed by place_id and records an audit entry.
func (s *LeadsService) UpsertLead(ctx context.Context, input *dto.LeadInput) (*entity.Lead, error) {
	if input == nil || strings.TrimSpace(input.PlaceID) == "" {
		return nil, ValidationError{Message: "missing lead/place_id"}
	}

	record := repository.LeadUpsertInput{
		PlaceID:    strings.TrimSpace(input.PlaceID),
		Name:       normalizeString(input.Name),
		Address:    normalizeString(input.Address),
		Website:    normalizeString(input.Website),
		Phone:      normalizeString(input.Phone),
		Rating:     input.Rating,
		Reviews:    input.Reviews,
		Categories: normalizeString(input.Categories),
		Email:      normalizeString(input.Email),
	}
	if len(input.EnrichEmails) > 0 {
		raw, err := json.Marshal(input.EnrichEmails)
		if err != nil {
			return nil, fmt.Errorf("marshal enrich emails: %w", err)
		}
		record.EnrichEmails = raw
	}
	if len(input.EnrichSocials) > 0 {
		raw, err := json.Marshal(input.EnrichSocials)
		if err != nil {
			return nil, fmt.Errorf("marshal enrich socials: %w", err)
		}
		record.EnrichSocials = raw
	}

	lead, err := s.repo.Upsert(ctx, &record)
	if err != nil {
		return nil, err
	}

	s.recordAction(ctx, lead.ID, "upsert", input)
	return lead, nil
}

// SetStage moves a lead to a new pipeline stage and records an audit entry.
func (s *LeadsService) SetStage(ctx context.Context, leadID, stage string) (*entity.Lead, error) {
	id, err := parseLeadID(leadID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(stage) == "" {
		return nil, ValidationError{Message: "missing lead_id/stage"}
	}

	lead, err := s.repo.SetStage(ctx, id, stage)
	if err != nil {
		return nil, err
	}

	s.recordAction(ctx, id, "stage", map[string]string{"stage": stage})
	return lead, nil
}

// AddNote appends a timestamped line to the lead's notes, capped in length.
func (s *LeadsService) AddNote(ctx context.Context, leadID, note string) (*entity.Lead, error) {
	id, err := parseLeadID(leadID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(note) == "" {
		return nil, ValidationError{Message: "missing lead_id/note"}
	}

	notes, err := s.repo.GetNotes(ctx, id)
	if err != nil {
		return nil, err
	}

	stamp := s.now().UTC().Format(noteStampLayout)
	if notes != "" {
		notes += "\n"
	}
	notes += "[" + stamp + "] " + note
	notes = truncateNotes(notes)

	lead, err := s.repo.SetNotes(ctx, id, notes)
	if err != nil {
		return nil, err
	}

	s.recordAction(ctx, id, "note", map[string]string{"note": note})
	return lead, nil
}

// DeleteLead removes a lead by identifier.
func (s *LeadsService) DeleteLead(ctx context.Context, leadID string) error {
	id, err := parseLeadID(leadID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SetWorking marks a place as actively worked (or releases it).
func (s *LeadsService) SetWorking(ctx context.Context, req dto.CRMOpRequest) (*entity.WorkingEntry, error) {
	if strings.TrimSpace(req.PlaceID) == "" || req.Value == nil {
		return nil, ValidationError{Message: "missing place_id/value"}
	}

	entry := entity.WorkingEntry{
		PlaceID:   strings.TrimSpace(req.PlaceID),
		IsWorking: *req.Value,
		Name:      normalizeString(req.Name),
		Address:   normalizeString(req.Address),
		Country:   normalizeString(req.Country),
		Lat:       req.Lat,
		Lng:       req.Lng,
	}
	return s.repo.SetWorking(ctx, &entry)
}

// recordAction best-effort persists an audit row; failures are logged, never surfaced.
func (s *LeadsService) recordAction(ctx context.Context, leadID uuid.UUID, actionType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("lead_id=%s action=%s marshal audit payload failed: %v", leadID, actionType, err)
		return
	}
	if err := s.repo.InsertAction(ctx, leadID, actionType, raw); err != nil {
		log.Printf("lead_id=%s action=%s record audit failed: %v", leadID, actionType, err)
	}
}

func parseLeadID(leadID string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(leadID))
	if err != nil {
		return uuid.Nil, ValidationError{Message: "invalid lead_id"}
	}
	return id, nil
}

func truncateNotes(notes string) string {
	if len(notes) <= maxNotesLen {
		return notes
	}
	cut := maxNotesLen
	for cut > 0 && !utf8.RuneStart(notes[cut]) {
		cut--
	}
	return notes[:cut]
}

func normalizeString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
