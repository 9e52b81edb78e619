package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"

	"studymate/internal/identity"
)

// SessionManager is the identity session the server signs in and out.
type SessionManager interface {
	CurrentPrincipal() *identity.Principal
	SignIn(ctx context.Context) (*identity.Principal, error)
	SignOut(ctx context.Context) error
	Establish(ctx context.Context, src oauth2.TokenSource) (*identity.Principal, error)
}

// LoginFlow is a browser sign-in: Begin redirects the user, Complete handles the callback.
type LoginFlow interface {
	Begin() identity.Login
	Complete(ctx context.Context, l identity.Login, code string) (oauth2.TokenSource, error)
}

const loginTTL = 10 * time.Minute

// pendingLogins holds started logins until their callback arrives.
type pendingLogins struct {
	mu    sync.Mutex
	items map[string]pendingLogin
	now   func() time.Time
}

type pendingLogin struct {
	login   identity.Login
	expires time.Time
}

func newPendingLogins() *pendingLogins {
	return &pendingLogins{items: make(map[string]pendingLogin), now: time.Now}
}

func (p *pendingLogins) put(l identity.Login) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for state, it := range p.items {
		if now.After(it.expires) {
			delete(p.items, state)
		}
	}
	p.items[l.State] = pendingLogin{login: l, expires: now.Add(loginTTL)}
}

// take removes and returns the login for state; each state is usable once.
func (p *pendingLogins) take(state string) (identity.Login, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	it, ok := p.items[state]
	if !ok {
		return identity.Login{}, false
	}
	delete(p.items, state)
	if p.now().After(it.expires) {
		return identity.Login{}, false
	}
	return it.login, true
}

type sessionResponse struct {
	SignedIn  bool                `json:"signed_in"`
	Principal *identity.Principal `json:"principal,omitempty"`
}

// SessionStatus reports the principal signed in on this browser.
//
// @Summary  Current session
// @Tags     auth
// @Produce  json
// @Success  200 {object} sessionResponse
// @Router   /auth/session [get]
func SessionStatus(store *SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := store.lookup(c.Cookies(SessionCookie))
		if !ok {
			return c.JSON(sessionResponse{})
		}
		p := caller.Session.CurrentPrincipal()
		return c.JSON(sessionResponse{SignedIn: p != nil, Principal: p})
	}
}

// BeginLogin redirects to the identity provider. The login state is also set as a
// cookie so only the browser that started the login can complete it.
//
// @Summary  Start browser sign-in
// @Tags     auth
// @Success  302
// @Failure  501 {object} errorPayload
// @Router   /auth/login [get]
func BeginLogin(store *SessionStore, flow LoginFlow, pending *pendingLogins) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if flow == nil {
			return writeError(c, fiber.StatusNotImplemented, "LOGIN_UNAVAILABLE", "browser sign-in is not configured")
		}
		l := flow.Begin()
		pending.put(l)
		store.setCookie(c, loginCookie, l.State, "/auth", int(loginTTL/time.Second))
		return c.Redirect(l.URL, fiber.StatusFound)
	}
}

// LoginCallback completes a browser sign-in and issues the session cookie.
//
// @Summary  Sign-in callback
// @Tags     auth
// @Produce  json
// @Param    state  query string true "Login state"
// @Param    code   query string true "Authorization code"
// @Success  200 {object} sessionResponse
// @Failure  400 {object} errorPayload
// @Failure  502 {object} errorPayload
// @Router   /auth/callback [get]
func LoginCallback(store *SessionStore, flow LoginFlow, pending *pendingLogins) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if flow == nil {
			return writeError(c, fiber.StatusNotImplemented, "LOGIN_UNAVAILABLE", "browser sign-in is not configured")
		}
		if msg := c.Query("error"); msg != "" {
			return writeError(c, fiber.StatusBadRequest, "LOGIN_DENIED", msg)
		}
		state := c.Query("state")
		if state == "" || c.Cookies(loginCookie) != state {
			return writeError(c, fiber.StatusBadRequest, "INVALID_STATE", "login was not started by this browser")
		}
		l, ok := pending.take(state)
		store.clearCookie(c, loginCookie, "/auth")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_STATE", "unknown or expired login state")
		}
		src, err := flow.Complete(c.UserContext(), l, c.Query("code"))
		if err != nil {
			return writeServiceError(c, &identity.ProviderError{Op: "callback", Err: err})
		}

		caller, commit, discard, err := store.begin(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		p, err := caller.Session.Establish(c.UserContext(), src)
		if err != nil {
			discard()
			return writeServiceError(c, err)
		}
		commit()
		return c.JSON(sessionResponse{SignedIn: true, Principal: p})
	}
}

// SignIn runs the configured non-interactive authenticator for a new browser session.
//
// @Summary  Sign in
// @Tags     auth
// @Produce  json
// @Success  200 {object} sessionResponse
// @Failure  502 {object} errorPayload
// @Router   /auth/signin [post]
func SignIn(store *SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, commit, discard, err := store.begin(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		p, err := caller.Session.SignIn(c.UserContext())
		if err != nil {
			discard()
			if errors.Is(err, identity.ErrNoAuthenticator) {
				return writeError(c, fiber.StatusNotImplemented, "LOGIN_UNAVAILABLE", "no authenticator configured")
			}
			return writeServiceError(c, err)
		}
		commit()
		return c.JSON(sessionResponse{SignedIn: true, Principal: p})
	}
}

// SignOut ends this browser's session and releases its audio clips.
//
// @Summary  Sign out
// @Tags     auth
// @Success  204
// @Failure  401 {object} errorPayload
// @Failure  502 {object} errorPayload
// @Router   /auth/signout [post]
func SignOut(store *SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := store.drop(c.Cookies(SessionCookie))
		if caller == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "sign in required")
		}
		store.clearCookie(c, SessionCookie, "/")
		if err := closeCaller(c.UserContext(), caller); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
