// Package preference keeps the append-only record of human choices between
// two generated replies.
package preference

import (
	"slices"
	"sync"
	"time"
)

// Record is one human selection.
type Record struct {
	Question      string `json:"question"`
	Category      string `json:"category"`
	ChosenVariant string `json:"chosen_variant"`
	ChosenText    string `json:"chosen_text"`
	Provider      string `json:"provider"`
}

// Entry is a Record stamped for durable storage.
type Entry struct {
	Record
	SessionID  string    `json:"session_id,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Log is an in-memory, append-only preference history. Safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	records []Record
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a record at the end of the history.
func (l *Log) Append(r Record) {
	l.mu.Lock()
	l.records = append(l.records, r)
	l.mu.Unlock()
}

// History returns a copy of every record in insertion order.
func (l *Log) History() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.records)
}

// Len reports the number of records.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Clear discards the in-memory history. Durable sinks are not touched.
func (l *Log) Clear() {
	l.mu.Lock()
	l.records = nil
	l.mu.Unlock()
}
