package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/akilov-labs/leads-crm-api/internal/dto"
	"github.com/akilov-labs/leads-crm-api/internal/entity"
	"github.com/akilov-labs/leads-crm-api/internal/repository"
)

type stubLeadsRepo struct {
	lead      *entity.Lead
	leads     []entity.Lead
	working   []entity.WorkingEntry
	notes     string
	setNotes  string
	upserted  *repository.LeadUpsertInput
	actions   []string
	actionErr error
	deleted   []uuid.UUID
}

func (r *stubLeadsRepo) ListLeads(ctx context.Context) ([]entity.Lead, error) {
	return r.leads, nil
}

func (r *stubLeadsRepo) ListWorking(ctx context.Context) ([]entity.WorkingEntry, error) {
	return r.working, nil
}

func (r *stubLeadsRepo) Upsert(ctx context.Context, input *repository.LeadUpsertInput) (*entity.Lead, error) {
	r.upserted = input
	return r.lead, nil
}

func (r *stubLeadsRepo) SetStage(ctx context.Context, id uuid.UUID, stage string) (*entity.Lead, error) {
	return r.lead, nil
}

func (r *stubLeadsRepo) GetNotes(ctx context.Context, id uuid.UUID) (string, error) {
	return r.notes, nil
}

func (r *stubLeadsRepo) SetNotes(ctx context.Context, id uuid.UUID, notes string) (*entity.Lead, error) {
	r.setNotes = notes
	return r.lead, nil
}

func (r *stubLeadsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubLeadsRepo) SetWorking(ctx context.Context, entry *entity.WorkingEntry) (*entity.WorkingEntry, error) {
	return entry, nil
}

func (r *stubLeadsRepo) InsertAction(ctx context.Context, leadID uuid.UUID, actionType string, payload json.RawMessage) error {
	r.actions = append(r.actions, actionType)
	return r.actionErr
}

func newStubLead() *entity.Lead {
	return &entity.Lead{ID: uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"), PlaceID: "place-123"}
}

func TestLeadsService_UpsertLeadValidation(t *testing.T) {
	svc := NewLeadsService(&stubLeadsRepo{})

	var valErr ValidationError
	if _, err := svc.UpsertLead(context.Background(), nil); !errors.As(err, &valErr) {
		t.Fatalf("expected validation error for nil input, got %v", err)
	}
	if _, err := svc.UpsertLead(context.Background(), &dto.LeadInput{PlaceID: "  "}); !errors.As(err, &valErr) {
		t.Fatalf("expected validation error for blank place_id, got %v", err)
	}
}

func TestLeadsService_UpsertLeadNormalizesAndAudits(t *testing.T) {
	repo := &stubLeadsRepo{lead: newStubLead()}
	svc := NewLeadsService(repo)

	rating := 4.2
	input := &dto.LeadInput{
		PlaceID: " place-123 ",
		Name:    "Acme Wholesale",
		Website: "",
		Rating:  &rating,
		EnrichSocials: map[string]string{
			"linkedin": "https://linkedin.com/company/acme",
		},
	}

	if _, err := svc.UpsertLead(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.upserted.PlaceID != "place-123" {
		t.Fatalf("place_id not trimmed: %q", repo.upserted.PlaceID)
	}
	if repo.upserted.Website != nil {
		t.Fatalf("empty website should map to nil, got %q", *repo.upserted.Website)
	}
	if repo.upserted.Name == nil || *repo.upserted.Name != "Acme Wholesale" {
		t.Fatalf("unexpected name: %+v", repo.upserted.Name)
	}
	if len(repo.upserted.EnrichSocials) == 0 {
		t.Fatalf("expected socials marshalled")
	}
	if len(repo.actions) != 1 || repo.actions[0] != "upsert" {
		t.Fatalf("expected one upsert audit entry, got %v", repo.actions)
	}
}

func TestLeadsService_UpsertLeadAuditFailureSwallowed(t *testing.T) {
	repo := &stubLeadsRepo{lead: newStubLead(), actionErr: errors.New("audit table gone")}
	svc := NewLeadsService(repo)

	if _, err := svc.UpsertLead(context.Background(), &dto.LeadInput{PlaceID: "place-123"}); err != nil {
		t.Fatalf("audit failure must not surface: %v", err)
	}
}

func TestLeadsService_SetStageValidation(t *testing.T) {
	svc := NewLeadsService(&stubLeadsRepo{lead: newStubLead()})

	var valErr ValidationError
	if _, err := svc.SetStage(context.Background(), "not-a-uuid", "contacted"); !errors.As(err, &valErr) {
		t.Fatalf("expected validation error for bad id, got %v", err)
	}
	if _, err := svc.SetStage(context.Background(), uuid.NewString(), "  "); !errors.As(err, &valErr) {
		t.Fatalf("expected validation error for blank stage, got %v", err)
	}
}

func TestLeadsService_AddNoteAppendsStampedLine(t *testing.T) {
	repo := &stubLeadsRepo{lead: newStubLead(), notes: "[2026-01-01 10:00:00] first call"}
	svc := NewLeadsService(repo)
	svc.now = func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}

	if _, err := svc.AddNote(context.Background(), repo.lead.ID.String(), "sent catalogue"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "[2026-01-01 10:00:00] first call\n[2026-01-02 03:04:05] sent catalogue"
	if repo.setNotes != want {
		t.Fatalf("notes = %q, want %q", repo.setNotes, want)
	}
	if len(repo.actions) != 1 || repo.actions[0] != "note" {
		t.Fatalf("expected note audit entry, got %v", repo.actions)
	}
}

func TestLeadsService_AddNoteFirstLineHasNoLeadingNewline(t *testing.T) {
	repo := &stubLeadsRepo{lead: newStubLead()}
	svc := NewLeadsService(repo)
	svc.now = func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}

	if _, err := svc.AddNote(context.Background(), repo.lead.ID.String(), "intro"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.setNotes != "[2026-01-02 03:04:05] intro" {
		t.Fatalf("unexpected notes: %q", repo.setNotes)
	}
}

func TestLeadsService_AddNoteCapsLength(t *testing.T) {
	repo := &stubLeadsRepo{lead: newStubLead(), notes: strings.Repeat("x", maxNotesLen-10)}
	svc := NewLeadsService(repo)

	if _, err := svc.AddNote(context.Background(), repo.lead.ID.String(), strings.Repeat("שלום", 50)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.setNotes) > maxNotesLen {
		t.Fatalf("notes exceed cap: %d", len(repo.setNotes))
	}
	if !utf8.ValidString(repo.setNotes) {
		t.Fatalf("cap split a rune")
	}
}

func TestLeadsService_DeleteLeadValidation(t *testing.T) {
	svc := NewLeadsService(&stubLeadsRepo{})

	var valErr ValidationError
	if err := svc.DeleteLead(context.Background(), "42"); !errors.As(err, &valErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLeadsService_SetWorkingValidation(t *testing.T) {
	svc := NewLeadsService(&stubLeadsRepo{})

	var valErr ValidationError
	if _, err := svc.SetWorking(context.Background(), dto.CRMOpRequest{PlaceID: "place-123"}); !errors.As(err, &valErr) {
		t.Fatalf("expected validation error for missing value, got %v", err)
	}

	val := true
	if _, err := svc.SetWorking(context.Background(), dto.CRMOpRequest{PlaceID: "", Value: &val}); !errors.As(err, &valErr) {
		t.Fatalf("expected validation error for missing place_id, got %v", err)
	}
}

func TestLeadsService_SnapshotEmptySlices(t *testing.T) {
	svc := NewLeadsService(&stubLeadsRepo{})

	snapshot, err := svc.GetSnapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Leads == nil || snapshot.Working == nil {
		t.Fatalf("snapshot slices must not be nil: %+v", snapshot)
	}
}
