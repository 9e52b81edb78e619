package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"studymate/internal/config"
)

// CodePrompt presents authURL to the user and returns the authorization code they obtained.
type CodePrompt func(ctx context.Context, authURL string) (string, error)

// Login is a started authorization-code sign-in awaiting its callback.
type Login struct {
	State    string
	Verifier string
	URL      string
}

// revocation posts tokens to an RFC 7009 revocation endpoint. A zero value does nothing.
type revocation struct {
	url    string
	client *http.Client
}

func (r revocation) Revoke(ctx context.Context, tok *oauth2.Token) error {
	if r.url == "" || tok == nil {
		return nil
	}
	value := tok.RefreshToken
	if value == "" {
		value = tok.AccessToken
	}
	form := url.Values{"token": {value}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := r.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("revoke token: unexpected status %s", resp.Status)
	}
	return nil
}

// CodeFlow is the OAuth2 authorization-code flow with PKCE.
type CodeFlow struct {
	revocation
	cfg    *oauth2.Config
	prompt CodePrompt
}

// NewCodeFlow creates a CodeFlow. prompt is only needed for Authenticate; servers that
// receive the code on a callback use Begin and Complete instead.
func NewCodeFlow(cfg *oauth2.Config, prompt CodePrompt, revokeURL string) *CodeFlow {
	return &CodeFlow{revocation: revocation{url: revokeURL}, cfg: cfg, prompt: prompt}
}

// Config returns the OAuth2 config.
func (f *CodeFlow) Config() *oauth2.Config {
	return f.cfg
}

// Begin starts a sign-in and returns the URL the user must visit.
func (f *CodeFlow) Begin() Login {
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	return Login{
		State:    state,
		Verifier: verifier,
		URL: f.cfg.AuthCodeURL(state,
			oauth2.AccessTypeOffline,
			oauth2.ApprovalForce,
			oauth2.S256ChallengeOption(verifier),
		),
	}
}

// Complete exchanges the authorization code of a started login for a refreshing token source.
func (f *CodeFlow) Complete(ctx context.Context, l Login, code string) (oauth2.TokenSource, error) {
	if code == "" {
		return nil, errors.New("authorization code is empty")
	}
	tok, err := f.cfg.Exchange(ctx, code, oauth2.VerifierOption(l.Verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	// refreshes happen long after the sign-in request is gone
	return f.cfg.TokenSource(context.WithoutCancel(ctx), tok), nil
}

// Authenticate runs the whole flow through the configured prompt.
func (f *CodeFlow) Authenticate(ctx context.Context) (oauth2.TokenSource, error) {
	if f.prompt == nil {
		return nil, errors.New("code flow has no prompt")
	}
	l := f.Begin()
	code, err := f.prompt(ctx, l.URL)
	if err != nil {
		return nil, fmt.Errorf("obtain authorization code: %w", err)
	}
	return f.Complete(ctx, l, strings.TrimSpace(code))
}

// RefreshFlow signs in with a refresh token issued earlier, e.g. to a CLI.
type RefreshFlow struct {
	revocation
	cfg          *oauth2.Config
	refreshToken string
}

// NewRefreshFlow creates a RefreshFlow.
func NewRefreshFlow(cfg *oauth2.Config, refreshToken, revokeURL string) *RefreshFlow {
	return &RefreshFlow{revocation: revocation{url: revokeURL}, cfg: cfg, refreshToken: refreshToken}
}

// Authenticate returns a token source whose first Token call forces a refresh.
func (f *RefreshFlow) Authenticate(ctx context.Context) (oauth2.TokenSource, error) {
	if f.refreshToken == "" {
		return nil, errors.New("refresh token is not configured")
	}
	tok := &oauth2.Token{
		RefreshToken: f.refreshToken,
		Expiry:       time.Now().Add(-1 * time.Hour), // Force refresh
	}
	return f.cfg.TokenSource(context.WithoutCancel(ctx), tok), nil
}

// StaticFlow signs in with a fixed bearer token. Intended for development and tests.
type StaticFlow struct {
	token string
}

// NewStaticFlow creates a StaticFlow.
func NewStaticFlow(token string) *StaticFlow {
	return &StaticFlow{token: token}
}

// Authenticate returns a token source that always yields the configured token.
func (f *StaticFlow) Authenticate(context.Context) (oauth2.TokenSource, error) {
	if f.token == "" {
		return nil, errors.New("static token is not configured")
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: f.token, TokenType: "Bearer"}), nil
}

// NewAuthenticator builds the authenticator selected by cfg.Mode.
func NewAuthenticator(cfg config.IdentityConfig, prompt CodePrompt) (Authenticator, error) {
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
	}

	switch cfg.Mode {
	case "code":
		if cfg.ClientID == "" {
			return nil, errors.New("identity client id is required for code flow")
		}
		return NewCodeFlow(oc, prompt, cfg.RevokeURL), nil
	case "refresh":
		if cfg.ClientID == "" {
			return nil, errors.New("identity client id is required for refresh flow")
		}
		return NewRefreshFlow(oc, cfg.RefreshToken, cfg.RevokeURL), nil
	case "static":
		return NewStaticFlow(cfg.StaticToken), nil
	default:
		return nil, fmt.Errorf("unsupported identity mode: %s", cfg.Mode)
	}
}
