package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"askgreg/internal/preference"
)

// sqlStore holds the queries shared by the SQLite and Postgres sinks. The
// two drivers differ only in placeholder syntax and how they retry.
type sqlStore struct {
	db          *sql.DB
	placeholder func(n int) string
	retry       func(ctx context.Context, op func() error) error
}

func (s *sqlStore) insert(ctx context.Context, entry preference.Entry) error {
	entry = stamp(entry)
	query := fmt.Sprintf(`INSERT INTO preferences
		(recorded_at, session_id, question, category, chosen_variant, chosen_text, provider)
		VALUES (%s, %s, %s, %s, %s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4),
		s.placeholder(5), s.placeholder(6), s.placeholder(7))
	return s.retry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query,
			entry.RecordedAt.Format(time.RFC3339Nano),
			entry.SessionID,
			entry.Question,
			entry.Category,
			entry.ChosenVariant,
			entry.ChosenText,
			entry.Provider,
		)
		return err
	})
}

func (s *sqlStore) list(ctx context.Context, limit int) ([]preference.Entry, error) {
	query := `SELECT recorded_at, session_id, question, category, chosen_variant, chosen_text, provider
		FROM preferences ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT " + s.placeholder(1)
		args = append(args, limit)
	}

	var entries []preference.Entry
	err := s.retry(ctx, func() error {
		entries = entries[:0]
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				e        preference.Entry
				recorded string
			)
			if err := rows.Scan(&recorded, &e.SessionID, &e.Question, &e.Category, &e.ChosenVariant, &e.ChosenText, &e.Provider); err != nil {
				return err
			}
			if ts, perr := time.Parse(time.RFC3339Nano, recorded); perr == nil {
				e.RecordedAt = ts
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return entries, nil
}

func (s *sqlStore) stats(ctx context.Context) ([]Stat, error) {
	const query = `SELECT category, chosen_variant, COUNT(*)
		FROM preferences GROUP BY category, chosen_variant
		ORDER BY category, COUNT(*) DESC, chosen_variant`

	var stats []Stat
	err := s.retry(ctx, func() error {
		stats = stats[:0]
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var st Stat
			if err := rows.Scan(&st.Category, &st.Variant, &st.Picks); err != nil {
				return err
			}
			stats = append(stats, st)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("preference stats: %w", err)
	}
	return stats, nil
}
