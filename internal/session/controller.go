package session

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"askgreg/internal/catalog"
	"askgreg/internal/generator"
	"askgreg/internal/intent"
	"askgreg/internal/logging"
	"askgreg/internal/preference"
	"askgreg/internal/preference/sink"
	"askgreg/internal/selector"
)

// Options wires a Controller to its collaborators.
type Options struct {
	Catalog   *catalog.Catalog
	Generator *generator.Generator
	// Classifier may be nil; questions must then name a category.
	Classifier intent.Classifier
	// Sink may be nil to keep preferences in memory only.
	Sink            sink.Sink
	DefaultProvider string
	// Source overrides the random source. When nil, Seed is used; Seed 0
	// seeds from the clock.
	Source selector.Source
	Seed   uint64
	Logger *slog.Logger
	Now    func() time.Time
}

// Controller owns sessions and orchestrates selection, generation and
// preference recording.
type Controller struct {
	catalog         *catalog.Catalog
	generator       *generator.Generator
	classifier      intent.Classifier
	sink            sink.Sink
	defaultProvider string
	logger          *slog.Logger
	now             func() time.Time

	rngMu sync.Mutex
	rng   selector.Source

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewController builds a controller.
func NewController(opts Options) *Controller {
	source := opts.Source
	if source == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		source = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	snk := opts.Sink
	if snk == nil {
		snk = sink.Discard{}
	}
	return &Controller{
		catalog:         opts.Catalog,
		generator:       opts.Generator,
		classifier:      opts.Classifier,
		sink:            snk,
		defaultProvider: opts.DefaultProvider,
		logger:          logging.NewComponentLogger(opts.Logger, "session"),
		now:             now,
		rng:             source,
		sessions:        make(map[string]*Session),
	}
}

// Catalog exposes the prompt catalog served by this controller.
func (c *Controller) Catalog() *catalog.Catalog { return c.catalog }

// DefaultProvider reports the provider used when a question names none.
func (c *Controller) DefaultProvider() string { return c.defaultProvider }

// Open starts a new session and returns its id.
func (c *Controller) Open() string {
	id := uuid.NewString()
	c.mu.Lock()
	c.sessions[id] = newSession(id, c.now())
	c.mu.Unlock()
	c.logger.Debug("session opened", logging.String(logging.FieldSessionID, id))
	return id
}

// Close forgets a session. Its preference records stay in the durable sink.
func (c *Controller) Close(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[id]; !ok {
		return ErrUnknownSession
	}
	delete(c.sessions, id)
	return nil
}

// Len reports the number of open sessions.
func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

func (c *Controller) session(id string) (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	s.touch(c.now())
	return s, nil
}

// Sweep forgets sessions that have not been used for longer than maxIdle and
// returns how many were dropped. Sessions with a generation in flight stay.
func (c *Controller) Sweep(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := c.now().Add(-maxIdle)

	c.mu.RLock()
	var stale []*Session
	for _, s := range c.sessions {
		if s.idleSince(cutoff) {
			stale = append(stale, s)
		}
	}
	c.mu.RUnlock()

	dropped := 0
	for _, s := range stale {
		if s.generating() {
			continue
		}
		c.mu.Lock()
		if current, ok := c.sessions[s.id]; ok && current == s && s.idleSince(cutoff) {
			delete(c.sessions, s.id)
			dropped++
		}
		c.mu.Unlock()
	}
	if dropped > 0 {
		c.logger.Info("idle sessions dropped",
			logging.Int("dropped", dropped),
			logging.Duration("max_idle", maxIdle),
		)
	}
	return dropped
}

// RunJanitor sweeps idle sessions every interval until ctx ends.
func (c *Controller) RunJanitor(ctx context.Context, maxIdle, interval time.Duration) {
	if maxIdle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep(maxIdle)
		}
	}
}

// Snapshot returns the session's current state for presentation.
func (c *Controller) Snapshot(id string) (Snapshot, error) {
	s, err := c.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// History returns the session's in-memory preference records.
func (c *Controller) History(id string) ([]preference.Record, error) {
	s, err := c.session(id)
	if err != nil {
		return nil, err
	}
	return s.log.History(), nil
}

// Stats returns per-variant pick counts for the session's history within the
// category.
func (c *Controller) Stats(id, categoryID string) (map[string]int, error) {
	s, err := c.session(id)
	if err != nil {
		return nil, err
	}
	cat, err := c.catalog.Category(categoryID)
	if err != nil {
		return nil, err
	}
	return selector.Counts(cat, s.log.History()), nil
}

// Reset clears the transcript, the in-memory preference log and any pending
// selection. Valid in every state.
func (c *Controller) Reset(id string) error {
	s, err := c.session(id)
	if err != nil {
		return err
	}
	s.reset()
	c.logger.Info("session reset", logging.String(logging.FieldSessionID, id))
	return nil
}

// ClearPreferences empties the session's in-memory preference log only.
func (c *Controller) ClearPreferences(id string) error {
	s, err := c.session(id)
	if err != nil {
		return err
	}
	s.log.Clear()
	return nil
}

func (c *Controller) selectPair(cat catalog.Category, history []preference.Record) (selector.Pair, error) {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return selector.SelectPair(cat, history, c.rng)
}

// Providers lists the providers questions may name.
func (c *Controller) Providers() []string { return c.generator.Providers() }
