package repository

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxPool is the subset of pgxpool.Pool the repositories depend on.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

func stringOrNil(value *string) any {
	if value == nil {
		return nil
	}
	if *value == "" {
		return nil
	}
	return *value
}

func floatOrNil(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func intOrNil(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullStringToPtr(value sql.NullString) *string {
	if value.Valid {
		val := value.String
		return &val
	}
	return nil
}

func nullFloatToPtr(value sql.NullFloat64) *float64 {
	if value.Valid {
		val := value.Float64
		return &val
	}
	return nil
}

func nullIntToPtr(value sql.NullInt64) *int {
	if value.Valid {
		cast := int(value.Int64)
		return &cast
	}
	return nil
}
