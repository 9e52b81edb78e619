package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"studymate/internal/logging"
	"studymate/internal/service"
)

const (
	// SessionCookie carries the browser session id.
	SessionCookie = "studymate_session"
	// loginCookie binds a started browser login to the browser that started it.
	loginCookie    = "studymate_login"
	callerLocalKey = "caller"
)

// Caller is the per-browser state a request acts on: its own identity session and
// the study service whose API client authenticates through it.
type Caller struct {
	Session SessionManager
	Study   service.StudyService
}

// CallerFactory builds a signed-out Caller for a new browser session.
type CallerFactory func() (*Caller, error)

// SessionConfig configures browser sessions.
type SessionConfig struct {
	// IdleTimeout ends sessions not used for this long.
	IdleTimeout time.Duration
	// SecureCookie marks cookies Secure; enable behind HTTPS.
	SecureCookie bool
}

type sessionEntry struct {
	caller   *Caller
	lastSeen time.Time
}

// SessionStore maps session cookies to callers. It is safe for concurrent use.
type SessionStore struct {
	factory CallerFactory
	cfg     SessionConfig
	log     *logging.Logger

	mu    sync.Mutex
	items map[string]*sessionEntry
	now   func() time.Time
}

// NewSessionStore creates an empty store. IdleTimeout defaults to one hour.
func NewSessionStore(factory CallerFactory, cfg SessionConfig, log *logging.Logger) *SessionStore {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = time.Hour
	}
	if log == nil {
		log = logging.Default()
	}
	return &SessionStore{
		factory: factory,
		cfg:     cfg,
		log:     log.With("sessions"),
		items:   make(map[string]*sessionEntry),
		now:     time.Now,
	}
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *SessionStore) create() (string, *Caller, error) {
	caller, err := s.factory()
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()

	s.mu.Lock()
	s.items[id] = &sessionEntry{caller: caller, lastSeen: s.now()}
	expired := s.sweepLocked()
	s.mu.Unlock()

	s.closeAll(expired)
	return id, caller, nil
}

// lookup returns the live caller for id and marks it used.
func (s *SessionStore) lookup(id string) (*Caller, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	expired := s.sweepLocked()
	e, ok := s.items[id]
	if ok {
		e.lastSeen = s.now()
	}
	s.mu.Unlock()

	s.closeAll(expired)
	if !ok {
		return nil, false
	}
	return e.caller, true
}

// drop removes the session without closing its caller.
func (s *SessionStore) drop(id string) *Caller {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return nil
	}
	delete(s.items, id)
	return e.caller
}

func (s *SessionStore) sweepLocked() []*Caller {
	var expired []*Caller
	cutoff := s.now().Add(-s.cfg.IdleTimeout)
	for id, e := range s.items {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.caller)
			delete(s.items, id)
		}
	}
	return expired
}

func (s *SessionStore) closeAll(callers []*Caller) {
	for _, c := range callers {
		if err := closeCaller(context.Background(), c); err != nil {
			s.log.Error("session_close_failed", err, nil)
		}
	}
}

// closeCaller signs the caller out and releases its clips.
func closeCaller(ctx context.Context, c *Caller) error {
	return errors.Join(c.Session.SignOut(ctx), c.Study.Close(ctx))
}

// Close ends every session.
func (s *SessionStore) Close(ctx context.Context) error {
	s.mu.Lock()
	callers := make([]*Caller, 0, len(s.items))
	for id, e := range s.items {
		callers = append(callers, e.caller)
		delete(s.items, id)
	}
	s.mu.Unlock()

	var errs []error
	for _, c := range callers {
		errs = append(errs, closeCaller(ctx, c))
	}
	return errors.Join(errs...)
}

func (s *SessionStore) setCookie(c *fiber.Ctx, name, value, path string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		Secure:   s.cfg.SecureCookie,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *SessionStore) clearCookie(c *fiber.Ctx, name, path string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   s.cfg.SecureCookie,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// begin replaces the browser's session with a fresh caller. The old session, if any, is closed.
// commit issues the cookie once sign-in succeeded; otherwise discard closes the new caller.
func (s *SessionStore) begin(c *fiber.Ctx) (caller *Caller, commit func(), discard func(), err error) {
	id, caller, err := s.create()
	if err != nil {
		return nil, nil, nil, err
	}
	commit = func() {
		if old := c.Cookies(SessionCookie); old != "" && old != id {
			if prev := s.drop(old); prev != nil {
				s.closeAll([]*Caller{prev})
			}
		}
		s.setCookie(c, SessionCookie, id, "/", 0)
	}
	discard = func() {
		if dropped := s.drop(id); dropped != nil {
			s.closeAll([]*Caller{dropped})
		}
	}
	return caller, commit, discard, nil
}

// RequireCaller resolves the caller from the session cookie. Requests without a live
// session are rejected before any handler runs.
func (s *SessionStore) RequireCaller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := s.lookup(c.Cookies(SessionCookie))
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "sign in required")
		}
		c.Locals(callerLocalKey, caller)
		return c.Next()
	}
}

func callerOf(c *fiber.Ctx) *Caller {
	caller, _ := c.Locals(callerLocalKey).(*Caller)
	return caller
}

// forCaller serves h with the study service of the request's caller.
func forCaller(h func(service.StudyService) fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := callerOf(c)
		if caller == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "sign in required")
		}
		return h(caller.Study)(c)
	}
}
