package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"askgreg/internal/preference"
)

var csvHeader = []string{"timestamp", "session_id", "question", "category", "chosen_variant", "chosen_text", "provider"}

// CSV appends entries as rows of a CSV file. The header is written only when
// the file is new or empty.
type CSV struct {
	path string
}

func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

func (s *CSV) Path() string { return s.path }

func (s *CSV) Append(ctx context.Context, entry preference.Entry) error {
	entry = stamp(entry)
	return appendLocked(ctx, s.path, func(f *os.File, size int64) error {
		w := csv.NewWriter(f)
		if size == 0 {
			if err := w.Write(csvHeader); err != nil {
				return fmt.Errorf("write csv header: %w", err)
			}
		}
		row := []string{
			entry.RecordedAt.Format(time.RFC3339Nano),
			entry.SessionID,
			entry.Question,
			entry.Category,
			entry.ChosenVariant,
			entry.ChosenText,
			entry.Provider,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("flush csv: %w", err)
		}
		return nil
	})
}

func (s *CSV) Close() error { return nil }
