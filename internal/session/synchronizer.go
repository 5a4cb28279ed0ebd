package session

import (
	"context"
	"sync"
	"time"

	"github.com/stratahr/strata-client/internal/backend"
	"github.com/stratahr/strata-client/internal/logging"
	"github.com/stratahr/strata-client/internal/roles"
)

// State tags the synchronizer's position in the cache-then-reconcile cycle.
type State string

const (
	// StateUnauthenticated: no session, current user is nil.
	StateUnauthenticated State = "unauthenticated"
	// StateProvisional: current user published from cache or default while
	// the authoritative resolution is in flight.
	StateProvisional State = "provisional"
	// StateSettled: current user carries resolver-confirmed roles.
	StateSettled State = "settled"
)

// Resolver yields the authoritative role set and organization for a user.
// Both calls are total; see the roles package.
type Resolver interface {
	Resolve(ctx context.Context, userID string) []string
	OrganizationID(ctx context.Context, userID string) string
}

const settleTimeout = 15 * time.Second

// Synchronizer reconciles the in-memory current user with the backend's
// session lifecycle.
//
// Every provisional transition increments a generation counter; a settlement
// carrying a stale generation is discarded, so later transitions (another
// session event, a sign-out) are never clobbered by a slow resolution.
type Synchronizer struct {
	backend  backend.Client
	resolver Resolver
	cache    *Cache
	log      logging.Logger

	mu    sync.Mutex
	user  *User
	state State
	gen   uint64
}

func New(b backend.Client, r Resolver, c *Cache, log logging.Logger) *Synchronizer {
	return &Synchronizer{backend: b, resolver: r, cache: c, log: log, state: StateUnauthenticated}
}

// Subscribe registers the synchronizer for backend auth-state events and
// returns the unsubscribe func.
func (s *Synchronizer) Subscribe() func() {
	return s.backend.OnAuthStateChange(s.HandleAuthEvent)
}

// Start performs the startup session check: publish a provisional user from
// cache when a session exists, then settle asynchronously. A failing session
// check is treated as unauthenticated and triggers a defensive sign-out.
func (s *Synchronizer) Start(ctx context.Context) {
	cached := s.cache.Read(ctx)

	sess, err := s.backend.GetSession(ctx)
	if err != nil {
		s.log.Warn(ctx, "session check failed, treating as signed out", "error", err)
		if serr := s.backend.SignOut(ctx); serr != nil {
			s.log.Warn(ctx, "defensive sign-out failed", "error", serr)
		}
		s.cache.Clear(ctx)
		s.Reset()
		return
	}
	if sess == nil {
		s.cache.Clear(ctx)
		s.Reset()
		return
	}

	s.adopt(ctx, sess, cached)
}

// HandleAuthEvent reacts to one backend auth-state event. Sign-out wins over
// everything else carried by the event; token refreshes change nothing.
func (s *Synchronizer) HandleAuthEvent(event backend.AuthEvent, sess *backend.Session) {
	ctx := context.Background()

	switch {
	case event == backend.EventSignedOut:
		s.cache.Clear(ctx)
		s.Reset()
	case event == backend.EventTokenRefreshed:
		// same session, nothing to update
	case sess != nil:
		s.adopt(ctx, sess, s.cache.Read(ctx))
	default:
		s.cache.Clear(ctx)
		s.Reset()
	}
}

// adopt publishes the provisional user for sess and kicks off settlement.
// Cached roles stand in until then; a user with no cache starts as the
// default role so the view is never role-less.
func (s *Synchronizer) adopt(ctx context.Context, sess *backend.Session, cached *User) {
	u := &User{
		ID:    sess.User.ID,
		Email: sess.User.Email,
		Roles: []string{roles.RoleEmployee},
	}
	if cached != nil {
		u.Roles = cached.Roles
		u.OrganizationID = cached.OrganizationID
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.user = u
	s.state = StateProvisional
	s.mu.Unlock()

	s.log.Debug(ctx, "provisional user published", "user_id", u.ID, "roles", u.Roles)
	go s.settle(gen, sess.User)
}

// settle fetches the authoritative roles and organization and replaces both
// on the current user, unless a newer generation has superseded this attempt.
// An empty organization replaces a cached one too; the resolver is the source
// of truth.
func (s *Synchronizer) settle(gen uint64, su backend.SessionUser) {
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			s.log.Error(ctx, "settlement panicked", "user_id", su.ID, "panic", p)
		}
	}()

	resolved := s.resolver.Resolve(ctx, su.ID)
	org := s.resolver.OrganizationID(ctx, su.ID)

	s.mu.Lock()
	if gen != s.gen || s.user == nil {
		s.mu.Unlock()
		s.log.Debug(ctx, "stale settlement discarded", "user_id", su.ID)
		return
	}
	s.user.Roles = resolved
	s.user.OrganizationID = org
	snapshot := *s.user
	s.state = StateSettled
	s.mu.Unlock()

	s.cache.Write(ctx, &snapshot)
	s.log.Info(ctx, "session settled", "user_id", su.ID, "roles", resolved)
}

// Reset drops the current user and invalidates any in-flight settlement.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	s.gen++
	s.user = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()
}

// CurrentUser returns a copy of the current user, or nil when
// unauthenticated.
func (s *Synchronizer) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	u.Roles = append([]string(nil), s.user.Roles...)
	return &u
}

// State returns the synchronizer's current state tag.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
