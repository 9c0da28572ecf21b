package sink

import (
	"context"
	"fmt"
	"time"

	"askgreg/internal/config"
	"askgreg/internal/preference"
	"askgreg/internal/services"
)

// Sink receives preference entries.
type Sink interface {
	Append(ctx context.Context, entry preference.Entry) error
	Close() error
}

// Stat is the number of times a variant was chosen within a category.
type Stat struct {
	Category string `json:"category"`
	Variant  string `json:"variant"`
	Picks    int    `json:"picks"`
}

// Querier is implemented by sinks that can read their entries back.
type Querier interface {
	// List returns the most recent entries, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]preference.Entry, error)
	Stats(ctx context.Context) ([]Stat, error)
}

// Open builds the sink selected by cfg.Preferences.Sink.
func Open(ctx context.Context, cfg *config.Config) (Sink, error) {
	if cfg == nil {
		return Discard{}, nil
	}
	switch cfg.Preferences.Sink {
	case config.SinkNone, "":
		return Discard{}, nil
	case config.SinkCSV:
		return NewCSV(cfg.PreferencePath()), nil
	case config.SinkJSONL:
		return NewJSONL(cfg.PreferencePath()), nil
	case config.SinkSQLite:
		return OpenSQLite(ctx, cfg.PreferencePath())
	case config.SinkPostgres:
		return OpenPostgres(ctx, cfg.Preferences.DatabaseURL)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "sink", "open",
			fmt.Sprintf("unsupported preference sink %q", cfg.Preferences.Sink), nil)
	}
}

// Discard drops every entry.
type Discard struct{}

func (Discard) Append(context.Context, preference.Entry) error { return nil }

func (Discard) Close() error { return nil }

func stamp(entry preference.Entry) preference.Entry {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	entry.RecordedAt = entry.RecordedAt.UTC()
	return entry
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
