package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// State is the load state of a Store.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s State) terminal() bool {
	return s == StateReady || s == StateDegraded
}

// FallbackWarning is shown to visitors when the demonstration set is in use.
const FallbackWarning = "Projects could not be loaded right now, showing sample projects instead."

// Snapshot is a copy of the store's state at one point in time.
type Snapshot struct {
	State     State     `json:"state"`
	SourceURL string    `json:"source_url,omitempty"`
	Projects  []Project `json:"projects"`
	Err       error     `json:"-"`
	Warning   string    `json:"warning,omitempty"`
	FromCache bool      `json:"from_cache"`
	LoadedAt  time.Time `json:"loaded_at,omitzero"`
}

func (s Snapshot) copy() Snapshot {
	if s.Projects != nil {
		s.Projects = cloneAll(s.Projects)
	}
	return s
}

// Store owns the catalog for one source URL at a time.
//
// Load moves Idle → Loading → Ready or Degraded. A terminal state is kept
// until the source URL changes or Reload is called. When loads overlap,
// only the most recently started one may publish its result.
type Store struct {
	fetcher Fetcher
	cache   Cache
	logger  *slog.Logger
	now     func() time.Time

	group singleflight.Group

	mu     sync.Mutex
	gen    uint64
	bypass bool
	snap   Snapshot
}

// Option configures a Store.
type Option func(*Store)

// WithCache enables the catalog cache.
func WithCache(c Cache) Option {
	return func(s *Store) { s.cache = c }
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now for LoadedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an idle store.
func NewStore(fetcher Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state without triggering a load.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.copy()
}

// Load returns the catalog for sourceURL, loading it if this URL has not
// reached a terminal state yet. It never fails: errors turn into the
// Degraded state with the fallback projects.
func (s *Store) Load(ctx context.Context, sourceURL string) Snapshot {
	s.mu.Lock()
	if s.snap.SourceURL == sourceURL && s.snap.State.terminal() {
		snap := s.snap.copy()
		s.mu.Unlock()
		return snap
	}
	gen := s.gen
	if s.snap.SourceURL != sourceURL || s.snap.State != StateLoading {
		gen = s.begin(sourceURL, false)
	}
	s.mu.Unlock()

	return s.run(ctx, gen, sourceURL)
}

// Reload restarts the state machine for the current source URL. With
// bypassCache the sheet is fetched even if a fresh cache entry exists.
func (s *Store) Reload(ctx context.Context, bypassCache bool) Snapshot {
	s.mu.Lock()
	sourceURL := s.snap.SourceURL
	if sourceURL == "" {
		snap := s.snap.copy()
		s.mu.Unlock()
		return snap
	}
	gen := s.begin(sourceURL, bypassCache)
	s.mu.Unlock()

	return s.run(ctx, gen, sourceURL)
}

// Refresh reloads the catalog every interval until ctx is done. Fresh
// cache entries are honoured, so the sheet is fetched at most once per
// FreshnessWindow.
func (s *Store) Refresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := s.Reload(ctx, false)
			s.logger.Debug("catalog refreshed", "state", snap.State, "projects", len(snap.Projects), "from_cache", snap.FromCache)
		}
	}
}

// begin starts a new generation. Caller holds s.mu.
func (s *Store) begin(sourceURL string, bypassCache bool) uint64 {
	s.gen++
	s.bypass = bypassCache
	s.snap = Snapshot{State: StateLoading, SourceURL: sourceURL}
	return s.gen
}

// run performs or joins the load for gen. When a newer generation
// overtakes it, run follows that generation until one publishes.
func (s *Store) run(ctx context.Context, gen uint64, sourceURL string) Snapshot {
	// The load outlives the request that triggered it; other callers may
	// be waiting on the same flight.
	loadCtx := context.WithoutCancel(ctx)
	for {
		key := fmt.Sprintf("%d|%s", gen, sourceURL)
		v, _, _ := s.group.Do(key, func() (any, error) {
			bypassCache, current := s.pending(gen)
			if !current {
				return s.Snapshot(), nil
			}
			return s.publish(gen, s.resolve(loadCtx, sourceURL, bypassCache)), nil
		})
		if snap := v.(Snapshot); snap.State != StateLoading {
			return snap.copy()
		}

		s.mu.Lock()
		if s.snap.State != StateLoading {
			snap := s.snap.copy()
			s.mu.Unlock()
			return snap
		}
		gen, sourceURL = s.gen, s.snap.SourceURL
		s.mu.Unlock()
		s.logger.Debug("joining newer catalog load", "url", sourceURL, "generation", gen)
	}
}

// pending reports whether gen is still the current generation and, if so,
// whether its load skips the cache.
func (s *Store) pending(gen uint64) (bypassCache, current bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bypass, gen == s.gen
}

// publish stores result unless a newer generation has started, and
// returns the state callers should see.
func (s *Store) publish(gen uint64, result Snapshot) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("discarding superseded catalog load", "url", result.SourceURL, "generation", gen, "current", s.gen)
		return s.snap.copy()
	}
	s.snap = result
	return s.snap.copy()
}

func (s *Store) resolve(ctx context.Context, sourceURL string, bypassCache bool) Snapshot {
	key := CacheKey(sourceURL)
	if s.cache != nil && !bypassCache {
		projects, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("catalog cache read failed", "url", sourceURL, "error", err)
		case ok && len(projects) > 0:
			return Snapshot{
				State:     StateReady,
				SourceURL: sourceURL,
				Projects:  projects,
				FromCache: true,
				LoadedAt:  s.now(),
			}
		}
	}

	projects, err := s.fetchProjects(ctx, sourceURL)
	if err != nil {
		s.logger.Warn("catalog load failed, using fallback projects", "url", sourceURL, "error", err)
		return Snapshot{
			State:     StateDegraded,
			SourceURL: sourceURL,
			Projects:  Fallback(),
			Err:       err,
			Warning:   FallbackWarning,
			LoadedAt:  s.now(),
		}
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, projects); err != nil {
			s.logger.Warn("catalog cache write failed", "url", sourceURL, "error", err)
		}
	}
	s.logger.Info("catalog loaded", "url", sourceURL, "projects", len(projects))
	return Snapshot{
		State:     StateReady,
		SourceURL: sourceURL,
		Projects:  projects,
		LoadedAt:  s.now(),
	}
}

func (s *Store) fetchProjects(ctx context.Context, sourceURL string) ([]Project, error) {
	raw, err := s.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		if !errors.Is(err, ErrSourceUnreachable) {
			err = fmt.Errorf("%w: %w", ErrSourceUnreachable, err)
		}
		return nil, err
	}
	return FromCSV(raw)
}

// FromCSV parses and normalizes raw CSV text.
func FromCSV(raw string) ([]Project, error) {
	rows, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	projects := Normalize(rows[0], rows[1:])
	if len(projects) == 0 {
		return nil, ErrMalformedSource
	}
	return projects, nil
}
