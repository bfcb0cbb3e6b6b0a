package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akilov-labs/leads-crm-api/internal/entity"
)

// ErrLeadNotFound is returned when no lead matches the lookup criteria.
var ErrLeadNotFound = errors.New("lead not found")

// LeadUpsertInput carries the writable columns of a lead upsert.
type LeadUpsertInput struct {
	PlaceID       string
	Name          *string
	Address       *string
	Website       *string
	Phone         *string
	Rating        *float64
	Reviews       *int
	Categories    *string
	Email         *string
	EnrichEmails  json.RawMessage
	EnrichSocials json.RawMessage
}

// LeadsRepository describes persistence operations for the sales pipeline.
type LeadsRepository interface {
	ListLeads(ctx context.Context) ([]entity.Lead, error)
	ListWorking(ctx context.Context) ([]entity.WorkingEntry, error)
	Upsert(ctx context.Context, input *LeadUpsertInput) (*entity.Lead, error)
	SetStage(ctx context.Context, id uuid.UUID, stage string) (*entity.Lead, error)
	GetNotes(ctx context.Context, id uuid.UUID) (string, error)
	SetNotes(ctx context.Context, id uuid.UUID, notes string) (*entity.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetWorking(ctx context.Context, entry *entity.WorkingEntry) (*entity.WorkingEntry, error)
	InsertAction(ctx context.Context, leadID uuid.UUID, actionType string, payload json.RawMessage) error
}

// PGXLeadsRepository implements LeadsRepository using pgx.
type PGXLeadsRepository struct {
	pool pgxPool
}

// NewPGXLeadsRepository wires a pgx backed repository.
func NewPGXLeadsRepository(pool *pgxpool.Pool) *PGXLeadsRepository {
	return &PGXLeadsRepository{pool: pool}
}

const leadColumns = `
		id,
		place_id,
		name,
		address,
		website,
		phone,
		rating,
		reviews,
		categories,
		email,
		enrich_emails,
		enrich_socials,
		stage,
		notes,
		created_at,
		updated_at`

// ListLeads returns the newest slice of the pipeline, most recently touched first.
func (r *PGXLeadsRepository) ListLeads(ctx context.Context) ([]entity.Lead, error) {
	rows, err := r.pool.Query(ctx, `SELECT`+leadColumns+` FROM leads ORDER BY updated_at DESC LIMIT 2000`)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

// ListWorking returns the working set, most recently touched first.
func (r *PGXLeadsRepository) ListWorking(ctx context.Context) ([]entity.WorkingEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT place_id, is_working, name, address, country, lat, lng, updated_at
		FROM working
		ORDER BY updated_at DESC
		LIMIT 5000`)
	if err != nil {
		return nil, fmt.Errorf("list working: %w", err)
	}
	defer rows.Close()

	return scanWorking(rows)
}

// Upsert inserts or updates a lead keyed by place_id and returns the stored row.
func (r *PGXLeadsRepository) Upsert(ctx context.Context, input *LeadUpsertInput) (*entity.Lead, error) {
	if input == nil {
		return nil, fmt.Errorf("lead payload is nil")
	}

	query := `
		INSERT INTO leads (
			place_id,
			name,
			address,
			website,
			phone,
			rating,
			reviews,
			categories,
			email,
			enrich_emails,
			enrich_socials,
			updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10::jsonb,$11::jsonb,NOW())
		ON CONFLICT (place_id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			website = EXCLUDED.website,
			phone = EXCLUDED.phone,
			rating = EXCLUDED.rating,
			reviews = EXCLUDED.reviews,
			categories = EXCLUDED.categories,
			email = EXCLUDED.email,
			enrich_emails = EXCLUDED.enrich_emails,
			enrich_socials = EXCLUDED.enrich_socials,
			updated_at = NOW()
		RETURNING` + leadColumns + `;
	`

	row := r.pool.QueryRow(ctx, query,
		input.PlaceID,
		stringOrNil(input.Name),
		stringOrNil(input.Address),
		stringOrNil(input.Website),
		stringOrNil(input.Phone),
		floatOrNil(input.Rating),
		intOrNil(input.Reviews),
		stringOrNil(input.Categories),
		stringOrNil(input.Email),
		rawOrNil(input.EnrichEmails),
		rawOrNil(input.EnrichSocials),
	)

	lead, err := scanLead(row)
	if err != nil {
		return nil, fmt.Errorf("upsert lead: %w", err)
	}
	return lead, nil
}

// SetStage moves a lead to a new pipeline stage.
func (r *PGXLeadsRepository) SetStage(ctx context.Context, id uuid.UUID, stage string) (*entity.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET stage = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING`+leadColumns, id, stage)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("set stage: %w", err)
	}
	return lead, nil
}

// GetNotes fetches the current notes text, empty when unset.
func (r *PGXLeadsRepository) GetNotes(ctx context.Context, id uuid.UUID) (string, error) {
	var notes sql.NullString
	err := r.pool.QueryRow(ctx, `SELECT notes FROM leads WHERE id = $1`, id).Scan(&notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrLeadNotFound
		}
		return "", fmt.Errorf("fetch notes: %w", err)
	}
	if !notes.Valid {
		return "", nil
	}
	return notes.String, nil
}

// SetNotes replaces the notes text wholesale.
func (r *PGXLeadsRepository) SetNotes(ctx context.Context, id uuid.UUID, notes string) (*entity.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET notes = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING`+leadColumns, id, notes)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("set notes: %w", err)
	}
	return lead, nil
}

// Delete removes a lead by identifier.
func (r *PGXLeadsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// SetWorking inserts or updates a working entry keyed by place_id.
func (r *PGXLeadsRepository) SetWorking(ctx context.Context, entry *entity.WorkingEntry) (*entity.WorkingEntry, error) {
	if entry == nil {
		return nil, fmt.Errorf("working payload is nil")
	}

	query := `
		INSERT INTO working (place_id, is_working, name, address, country, lat, lng, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		ON CONFLICT (place_id) DO UPDATE SET
			is_working = EXCLUDED.is_working,
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			country = EXCLUDED.country,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			updated_at = NOW()
		RETURNING place_id, is_working, name, address, country, lat, lng, updated_at;
	`

	row := r.pool.QueryRow(ctx, query,
		entry.PlaceID,
		entry.IsWorking,
		stringOrNil(entry.Name),
		stringOrNil(entry.Address),
		stringOrNil(entry.Country),
		floatOrNil(entry.Lat),
		floatOrNil(entry.Lng),
	)

	stored, err := scanWorkingRow(row)
	if err != nil {
		return nil, fmt.Errorf("set working: %w", err)
	}
	return stored, nil
}

// InsertAction records an audit entry for a pipeline mutation.
func (r *PGXLeadsRepository) InsertAction(ctx context.Context, leadID uuid.UUID, actionType string, payload json.RawMessage) error {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_actions (lead_id, action_type, payload, created_at)
		VALUES ($1, $2, $3::jsonb, NOW())`,
		leadID, actionType, string(payload))
	if err != nil {
		return fmt.Errorf("insert lead action: %w", err)
	}
	return nil
}

func rawOrNil(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func scanLead(row pgx.Row) (*entity.Lead, error) {
	var (
		lead          entity.Lead
		name          sql.NullString
		address       sql.NullString
		website       sql.NullString
		phone         sql.NullString
		rating        sql.NullFloat64
		reviews       sql.NullInt64
		categories    sql.NullString
		email         sql.NullString
		enrichEmails  []byte
		enrichSocials []byte
		stage         sql.NullString
		notes         sql.NullString
	)

	err := row.Scan(
		&lead.ID,
		&lead.PlaceID,
		&name,
		&address,
		&website,
		&phone,
		&rating,
		&reviews,
		&categories,
		&email,
		&enrichEmails,
		&enrichSocials,
		&stage,
		&notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Name = nullStringToPtr(name)
	lead.Address = nullStringToPtr(address)
	lead.Website = nullStringToPtr(website)
	lead.Phone = nullStringToPtr(phone)
	lead.Rating = nullFloatToPtr(rating)
	lead.Reviews = nullIntToPtr(reviews)
	lead.Categories = nullStringToPtr(categories)
	lead.Email = nullStringToPtr(email)
	lead.Stage = nullStringToPtr(stage)
	lead.Notes = nullStringToPtr(notes)
	if len(enrichEmails) > 0 {
		lead.EnrichEmails = json.RawMessage(enrichEmails)
	}
	if len(enrichSocials) > 0 {
		lead.EnrichSocials = json.RawMessage(enrichSocials)
	}

	return &lead, nil
}

func scanLeads(rows pgx.Rows) ([]entity.Lead, error) {
	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

func scanWorkingRow(row pgx.Row) (*entity.WorkingEntry, error) {
	var (
		entry   entity.WorkingEntry
		name    sql.NullString
		address sql.NullString
		country sql.NullString
		lat     sql.NullFloat64
		lng     sql.NullFloat64
	)

	err := row.Scan(
		&entry.PlaceID,
		&entry.IsWorking,
		&name,
		&address,
		&country,
		&lat,
		&lng,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Name = nullStringToPtr(name)
	entry.Address = nullStringToPtr(address)
	entry.Country = nullStringToPtr(country)
	entry.Lat = nullFloatToPtr(lat)
	entry.Lng = nullFloatToPtr(lng)

	return &entry, nil
}

func scanWorking(rows pgx.Rows) ([]entity.WorkingEntry, error) {
	var entries []entity.WorkingEntry
	for rows.Next() {
		entry, err := scanWorkingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan working entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate working entries: %w", err)
	}
	return entries, nil
}
