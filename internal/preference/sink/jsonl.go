package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"askgreg/internal/preference"
)

// JSONL appends one JSON object per line.
type JSONL struct {
	path string
}

func NewJSONL(path string) *JSONL {
	return &JSONL{path: path}
}

func (s *JSONL) Path() string { return s.path }

func (s *JSONL) Append(ctx context.Context, entry preference.Entry) error {
	entry = stamp(entry)
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	line = append(line, '\n')
	return appendLocked(ctx, s.path, func(f *os.File, _ int64) error {
		if _, err := f.Write(line); err != nil {
			return fmt.Errorf("write jsonl: %w", err)
		}
		return nil
	})
}

func (s *JSONL) Close() error { return nil }
