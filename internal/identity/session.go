// Package identity bridges the client to an external OAuth2/OIDC identity provider.
//
// A Session holds the signed-in principal and the token source that yields bearer
// credentials for it. Sessions are passed explicitly to the API client; there is no
// process-wide current user.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

var (
	// ErrUnauthenticated is returned when a credential is requested while nobody is signed in.
	ErrUnauthenticated = errors.New("unauthenticated: no signed-in principal")
	// ErrNoAuthenticator is returned by SignIn when the session has no interactive flow configured.
	ErrNoAuthenticator = errors.New("no authenticator configured")
)

// ProviderError reports a failure inside the identity provider flow.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Authenticator runs an interactive sign-in flow and returns a token source for the new principal.
type Authenticator interface {
	Authenticate(ctx context.Context) (oauth2.TokenSource, error)
}

// Revoker is implemented by authenticators that can invalidate tokens on sign-out.
type Revoker interface {
	Revoke(ctx context.Context, tok *oauth2.Token) error
}

// Session is the injectable session context. It is safe for concurrent use.
type Session struct {
	auth Authenticator

	mu        sync.RWMutex
	principal *Principal
	source    oauth2.TokenSource
	subs      map[int]func(*Principal)
	nextSub   int
}

// NewSession returns a signed-out session using auth for interactive sign-in. auth may be nil
// when sessions are only established through Establish.
func NewSession(auth Authenticator) *Session {
	return &Session{auth: auth, subs: make(map[int]func(*Principal))}
}

// CurrentPrincipal returns the signed-in principal or nil.
func (s *Session) CurrentPrincipal() *Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return nil
	}
	p := *s.principal
	return &p
}

// RequestCredential returns a bearer token for the signed-in principal.
// The token source refreshes transparently and never hands out an expired token.
func (s *Session) RequestCredential(ctx context.Context) (string, error) {
	s.mu.RLock()
	src := s.source
	s.mu.RUnlock()
	if src == nil {
		return "", ErrUnauthenticated
	}

	tok, err := src.Token()
	if err != nil {
		return "", &ProviderError{Op: "token", Err: err}
	}
	cred := credentialOf(tok)
	if cred == "" {
		return "", &ProviderError{Op: "token", Err: errors.New("provider returned an empty token")}
	}
	return cred, nil
}

// SignIn runs the configured authenticator and establishes the resulting session.
func (s *Session) SignIn(ctx context.Context) (*Principal, error) {
	if s.auth == nil {
		return nil, &ProviderError{Op: "sign_in", Err: ErrNoAuthenticator}
	}
	src, err := s.auth.Authenticate(ctx)
	if err != nil {
		return nil, &ProviderError{Op: "sign_in", Err: err}
	}
	return s.Establish(ctx, src)
}

// Establish installs src as the session's token source, derives the principal from its
// first token and notifies subscribers.
func (s *Session) Establish(_ context.Context, src oauth2.TokenSource) (*Principal, error) {
	if src == nil {
		return nil, &ProviderError{Op: "sign_in", Err: errors.New("nil token source")}
	}
	src = oauth2.ReuseTokenSource(nil, src)

	tok, err := src.Token()
	if err != nil {
		return nil, &ProviderError{Op: "sign_in", Err: err}
	}
	if credentialOf(tok) == "" {
		return nil, &ProviderError{Op: "sign_in", Err: errors.New("provider returned an empty token")}
	}
	p := principalFromToken(tok)

	s.mu.Lock()
	s.principal = p
	s.source = src
	s.mu.Unlock()

	s.notify(p)
	out := *p
	return &out, nil
}

// SignOut clears the session and notifies subscribers. If the authenticator supports
// revocation and it fails, the session is still cleared and a ProviderError is returned.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	src := s.source
	wasSignedIn := s.principal != nil
	s.principal = nil
	s.source = nil
	s.mu.Unlock()

	if wasSignedIn {
		s.notify(nil)
	}

	rev, ok := s.auth.(Revoker)
	if !ok || src == nil {
		return nil
	}
	tok, err := src.Token()
	if err != nil {
		return &ProviderError{Op: "sign_out", Err: err}
	}
	if err := rev.Revoke(ctx, tok); err != nil {
		return &ProviderError{Op: "sign_out", Err: err}
	}
	return nil
}

// Subscribe registers fn for principal changes. fn receives nil on sign-out.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(*Principal)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) notify(p *Principal) {
	s.mu.RLock()
	fns := make([]func(*Principal), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		if p == nil {
			fn(nil)
			continue
		}
		c := *p
		fn(&c)
	}
}

// credentialOf prefers the OIDC ID token, which is what the backend verifies, and
// falls back to the access token for plain OAuth2 providers.
func credentialOf(tok *oauth2.Token) string {
	if tok == nil {
		return ""
	}
	if id, ok := tok.Extra("id_token").(string); ok && id != "" {
		return id
	}
	return tok.AccessToken
}
