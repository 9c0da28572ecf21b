package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"askgreg/internal/preference"
	"askgreg/internal/services"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS preferences (
    id BIGSERIAL PRIMARY KEY,
    recorded_at TEXT NOT NULL,
    session_id TEXT NOT NULL DEFAULT '',
    question TEXT NOT NULL,
    category TEXT NOT NULL,
    chosen_variant TEXT NOT NULL,
    chosen_text TEXT NOT NULL,
    provider TEXT NOT NULL
)`

// Postgres stores entries in a shared PostgreSQL database.
type Postgres struct {
	sqlStore
}

// OpenPostgres connects to dsn, verifies the connection and ensures the
// preferences table exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(dsn) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "sink", "open postgres", "database_url is empty", nil)
	}
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "sink", "open postgres", "parse database_url", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", describePQ(err))
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure preferences table: %w", describePQ(err))
	}
	return &Postgres{sqlStore: sqlStore{
		db:          db,
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		retry: func(_ context.Context, op func() error) error {
			return describePQ(op())
		},
	}}, nil
}

func (p *Postgres) Append(ctx context.Context, entry preference.Entry) error {
	return p.insert(ensureContext(ctx), entry)
}

func (p *Postgres) List(ctx context.Context, limit int) ([]preference.Entry, error) {
	return p.list(ensureContext(ctx), limit)
}

func (p *Postgres) Stats(ctx context.Context) ([]Stat, error) {
	return p.stats(ensureContext(ctx))
}

func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// describePQ adds the SQLSTATE class to server errors so logs say more than
// "pq: ...".
func describePQ(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s (%s): %w", pqErr.Code.Name(), pqErr.Code, err)
	}
	return err
}
