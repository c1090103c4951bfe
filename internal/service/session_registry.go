package service

import (
	"context"
	"sync"
	"time"

	"github.com/innerlight/circles-backend/internal/eventbus"
	"github.com/innerlight/circles-backend/internal/store"
	"github.com/rs/zerolog"
)

// SessionRegistry keeps one Session per signed-in user and evicts idle ones
type SessionRegistry struct {
	entries map[string]*registryEntry
	base    SessionDeps
	now     func() time.Time
	idleTTL time.Duration
	mu      sync.Mutex
}

type registryEntry struct {
	lastSeen time.Time
	session  *Session
}

// RegistryOptions shared collaborators for every session
type RegistryOptions struct {
	Rewards RewardGranter
	Circles *store.CircleStore
	Events  *store.EventStore
	Archive MessageArchiver
	Writer  EventWriter
	Bus     *eventbus.Bus
	Now     func() time.Time
	Logger  zerolog.Logger
	Policy  RewardPolicy
	IdleTTL time.Duration
}

// NewSessionRegistry creates a registry
func NewSessionRegistry(opts RegistryOptions) *SessionRegistry {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.IdleTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionRegistry{
		entries: make(map[string]*registryEntry),
		base: SessionDeps{
			Rewards: opts.Rewards,
			Circles: opts.Circles,
			Events:  opts.Events,
			Archive: opts.Archive,
			Writer:  opts.Writer,
			Bus:     opts.Bus,
			Now:     now,
			Logger:  opts.Logger,
			Policy:  opts.Policy,
		},
		now:     now,
		idleTTL: ttl,
	}
}

// Get returns the user's session, creating it on first use
func (r *SessionRegistry) Get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[userID]; ok {
		e.lastSeen = r.now()
		return e.session
	}

	deps := r.base
	deps.Actor = StaticActor(userID)
	deps.Energy = NewMutableEnergy(DefaultEnergy)
	deps.Logger = r.base.Logger.With().Str("user_id", userID).Logger()

	s := NewSession(deps)
	r.entries[userID] = &registryEntry{session: s, lastSeen: r.now()}
	return s
}

// Len number of live sessions
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops sessions idle for longer than the TTL and returns how many went
func (r *SessionRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	removed := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.base.Logger.Debug().Int("evicted", n).Int("live", r.Len()).Msg("idle sessions swept")
			}
		}
	}
}
