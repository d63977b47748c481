package storage

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	dialectPostgres = "postgres"
	kvTable         = "kv_store"
	colKey          = "key"
	colValue        = "value"
	colUpdatedAt    = "updated_at"
)

// Postgres stores values in the kv_store table created by db/migrations.
type Postgres struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgres(db *pgxpool.Pool, timeout time.Duration) *Postgres {
	return &Postgres{db: db, timeout: timeout}
}

func (r *Postgres) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Postgres) Read(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args, err := goqu.Dialect(dialectPostgres).
		From(kvTable).
		Select(colValue).
		Where(goqu.C(colKey).Eq(key)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", false, err
	}

	var value string
	err = r.db.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *Postgres) Write(ctx context.Context, key, value string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args, err := goqu.Dialect(dialectPostgres).
		Insert(kvTable).
		Rows(goqu.Record{
			colKey:       key,
			colValue:     value,
			colUpdatedAt: goqu.L("now()"),
		}).
		OnConflict(goqu.DoUpdate(colKey, goqu.Record{
			colValue:     goqu.L("EXCLUDED." + colValue),
			colUpdatedAt: goqu.L("now()"),
		})).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Ping(ctx)
}

func (r *Postgres) Close() error {
	r.db.Close()
	return nil
}
