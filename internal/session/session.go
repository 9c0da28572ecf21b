package session

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"askgreg/internal/intent"
	"askgreg/internal/preference"
)

// State is a session's position in the ask-compare-choose loop.
type State string

const (
	StateIdle               State = "idle"
	StateAwaitingGeneration State = "awaiting_generation"
	StateAwaitingChoice     State = "awaiting_choice"
)

// Side identifies one of the two presented replies.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// ParseSide accepts "left"/"right" (any case) and the shorthands "l"/"r", "1"/"2".
func ParseSide(value string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left", "l", "1":
		return SideLeft, nil
	case "right", "r", "2":
		return SideRight, nil
	default:
		return "", ErrInvalidSide
	}
}

// Question is one user submission.
type Question struct {
	Input string `json:"input"`
	// Category may be empty when a classifier is configured.
	Category string `json:"category,omitempty"`
	// Provider may be empty to use the controller's default.
	Provider string `json:"provider,omitempty"`
}

// Pending is the two-candidate selection awaiting a human decision. A side
// whose generation failed has empty text and a non-empty error.
type Pending struct {
	UserInput      string         `json:"user_input"`
	Category       string         `json:"category"`
	Provider       string         `json:"provider"`
	FirstVariant   string         `json:"first_variant"`
	SecondVariant  string         `json:"second_variant"`
	FirstText      string         `json:"first_text"`
	SecondText     string         `json:"second_text"`
	FirstError     string         `json:"first_error,omitempty"`
	SecondError    string         `json:"second_error,omitempty"`
	Classification *intent.Result `json:"classification,omitempty"`
}

// Message is one transcript line.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID          string    `json:"id"`
	State       State     `json:"state"`
	Transcript  []Message `json:"transcript"`
	Pending     *Pending  `json:"pending,omitempty"`
	Preferences int       `json:"preferences"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session is one user's conversation state.
type Session struct {
	id        string
	createdAt time.Time
	// lastSeen holds the unix nanoseconds of the latest lookup.
	lastSeen atomic.Int64

	mu         sync.Mutex
	state      State
	transcript []Message
	pending    *Pending
	log        *preference.Log
	// epoch changes on every reset so in-flight generations can tell they
	// were discarded.
	epoch uint64
}

func newSession(id string, now time.Time) *Session {
	s := &Session{id: id, createdAt: now, state: StateIdle, log: preference.NewLog()}
	s.lastSeen.Store(now.UnixNano())
	return s
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *Session) idleSince(cutoff time.Time) bool {
	return s.lastSeen.Load() < cutoff.UnixNano()
}

func (s *Session) generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAwaitingGeneration
}

func (s *Session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:          s.id,
		State:       s.state,
		Transcript:  slices.Clone(s.transcript),
		Preferences: s.log.Len(),
		CreatedAt:   s.createdAt,
	}
	if snap.Transcript == nil {
		snap.Transcript = []Message{}
	}
	if s.pending != nil {
		p := *s.pending
		snap.Pending = &p
	}
	return snap
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
	s.pending = nil
	s.state = StateIdle
	s.log.Clear()
	s.epoch++
}
