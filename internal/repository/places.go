package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akilov-labs/leads-crm-api/internal/dto"
	"github.com/akilov-labs/leads-crm-api/internal/entity"
)

// PlacesRepository describes persistence operations for the places catalogue.
type PlacesRepository interface {
	UpsertMany(ctx context.Context, query dto.SearchQuery, items []dto.PlaceInput) (UpsertSummary, error)
	ListByQuery(ctx context.Context, query dto.SearchQuery) ([]entity.Place, error)
}

// UpsertSummary summarises the number of rows inserted or updated.
type UpsertSummary struct {
	Inserted int
	Updated  int
	Total    int
}

// PGXPlacesRepository implements PlacesRepository using pgx.
type PGXPlacesRepository struct {
	pool pgxPool
}

// NewPGXPlacesRepository wires a pgx backed repository.
func NewPGXPlacesRepository(pool *pgxpool.Pool) *PGXPlacesRepository {
	return &PGXPlacesRepository{pool: pool}
}

const placeUpsertSQL = `
		INSERT INTO places (
			place_id, name, address, city, state, country, phone, website,
			rating, reviews, categories, business_status, lat, lng, last_seen_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,NOW())
		ON CONFLICT (place_id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			city = COALESCE(EXCLUDED.city, places.city),
			state = COALESCE(EXCLUDED.state, places.state),
			country = EXCLUDED.country,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			rating = EXCLUDED.rating,
			reviews = EXCLUDED.reviews,
			categories = EXCLUDED.categories,
			business_status = EXCLUDED.business_status,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			last_seen_at = NOW()
		RETURNING xmax = 0;
	`

const queryLinkSQL = `
		INSERT INTO query_places (category, country, scope, place_id)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (category, country, scope, place_id) DO NOTHING;
	`

// UpsertMany persists a batch of places and links each to the search query,
// all inside one transaction.
func (r *PGXPlacesRepository) UpsertMany(ctx context.Context, query dto.SearchQuery, items []dto.PlaceInput) (UpsertSummary, error) {
	var summary UpsertSummary
	if len(items) == 0 {
		return summary, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return summary, fmt.Errorf("start places upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		if item.PlaceID == "" {
			return summary, fmt.Errorf("upsert place %q: missing place_id", item.Name)
		}

		rows, err := tx.Query(ctx, placeUpsertSQL,
			item.PlaceID,
			emptyToNil(item.Name),
			emptyToNil(item.Address),
			emptyToNil(item.City),
			emptyToNil(item.State),
			emptyToNil(item.Country),
			emptyToNil(item.Phone),
			emptyToNil(item.Website),
			floatOrNil(item.Rating),
			intOrNil(item.Reviews),
			emptyToNil(item.Categories),
			emptyToNil(item.BusinessStatus),
			floatOrNil(item.Lat),
			floatOrNil(item.Lng),
		)
		if err != nil {
			return summary, fmt.Errorf("upsert place %q: %w", item.PlaceID, err)
		}

		var inserted bool
		if rows.Next() {
			if scanErr := rows.Scan(&inserted); scanErr != nil {
				rows.Close()
				return summary, fmt.Errorf("scan place upsert result: %w", scanErr)
			}
		} else {
			err := rows.Err()
			rows.Close()
			if err != nil {
				return summary, fmt.Errorf("upsert place %q: %w", item.PlaceID, err)
			}
			return summary, fmt.Errorf("upsert place %q: no result returned", item.PlaceID)
		}
		rows.Close()

		if _, err := tx.Exec(ctx, queryLinkSQL, query.Category, query.Country, query.Scope, item.PlaceID); err != nil {
			return summary, fmt.Errorf("link place %q to query: %w", item.PlaceID, err)
		}

		if inserted {
			summary.Inserted++
		} else {
			summary.Updated++
		}
		summary.Total++
	}

	if err := tx.Commit(ctx); err != nil {
		return summary, fmt.Errorf("commit places upsert tx: %w", err)
	}

	return summary, nil
}

// ListByQuery returns every place linked to the query, newest seen first.
func (r *PGXPlacesRepository) ListByQuery(ctx context.Context, query dto.SearchQuery) ([]entity.Place, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			p.place_id,
			p.name,
			p.address,
			p.city,
			p.state,
			p.country,
			p.phone,
			p.website,
			p.rating,
			p.reviews,
			p.categories,
			p.business_status,
			p.lat,
			p.lng,
			p.last_seen_at
		FROM query_places qp
		JOIN places p ON p.place_id = qp.place_id
		WHERE qp.category = $1 AND qp.country = $2 AND qp.scope = $3
		ORDER BY p.last_seen_at DESC
		LIMIT 2000`,
		query.Category, query.Country, query.Scope)
	if err != nil {
		return nil, fmt.Errorf("list places by query: %w", err)
	}
	defer rows.Close()

	return scanPlaces(rows)
}

func emptyToNil(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func scanPlaces(rows pgx.Rows) ([]entity.Place, error) {
	var places []entity.Place
	for rows.Next() {
		var (
			p              entity.Place
			name           sql.NullString
			address        sql.NullString
			city           sql.NullString
			state          sql.NullString
			country        sql.NullString
			phone          sql.NullString
			website        sql.NullString
			rating         sql.NullFloat64
			reviews        sql.NullInt64
			categories     sql.NullString
			businessStatus sql.NullString
			lat            sql.NullFloat64
			lng            sql.NullFloat64
		)

		err := rows.Scan(
			&p.PlaceID,
			&name,
			&address,
			&city,
			&state,
			&country,
			&phone,
			&website,
			&rating,
			&reviews,
			&categories,
			&businessStatus,
			&lat,
			&lng,
			&p.LastSeenAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}

		p.Name = nullStringToPtr(name)
		p.Address = nullStringToPtr(address)
		p.City = nullStringToPtr(city)
		p.State = nullStringToPtr(state)
		p.Country = nullStringToPtr(country)
		p.Phone = nullStringToPtr(phone)
		p.Website = nullStringToPtr(website)
		p.Rating = nullFloatToPtr(rating)
		p.Reviews = nullIntToPtr(reviews)
		p.Categories = nullStringToPtr(categories)
		p.BusinessStatus = nullStringToPtr(businessStatus)
		p.Lat = nullFloatToPtr(lat)
		p.Lng = nullFloatToPtr(lng)

		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate places: %w", err)
	}
	return places, nil
}
