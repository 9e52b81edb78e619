package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func idToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return s
}

type fakeAuth struct {
	src       oauth2.TokenSource
	err       error
	revokeErr error
	revoked   []string
}

func (f *fakeAuth) Authenticate(context.Context) (oauth2.TokenSource, error) {
	return f.src, f.err
}

func (f *fakeAuth) Revoke(_ context.Context, tok *oauth2.Token) error {
	f.revoked = append(f.revoked, tok.AccessToken)
	return f.revokeErr
}

type tokenFunc func() (*oauth2.Token, error)

func (f tokenFunc) Token() (*oauth2.Token, error) { return f() }

func TestSession_SignedOut(t *testing.T) {
	s := NewSession(nil)

	assert.Nil(t, s.CurrentPrincipal())

	_, err := s.RequestCredential(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSession_SignIn(t *testing.T) {
	tok := idToken(t, jwt.MapClaims{"user_id": "uid-1", "email": "ada@example.com", "name": "Ada"})
	s := NewSession(&fakeAuth{src: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok})})

	p, err := s.SignIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Principal{UID: "uid-1", Email: "ada@example.com", DisplayName: "Ada"}, p)
	assert.Equal(t, p, s.CurrentPrincipal())

	cred, err := s.RequestCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tok, cred)
}

func TestSession_SignIn_SubjectFallbackAndOpaqueToken(t *testing.T) {
	t.Run("sub claim", func(t *testing.T) {
		tok := idToken(t, jwt.MapClaims{"sub": "subject-9"})
		s := NewSession(&fakeAuth{src: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok})})

		p, err := s.SignIn(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "subject-9", p.UID)
		assert.Equal(t, "subject-9", p.Label())
	})

	t.Run("opaque token", func(t *testing.T) {
		s := NewSession(&fakeAuth{src: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "opaque"})})

		p, err := s.SignIn(context.Background())
		require.NoError(t, err)
		assert.Equal(t, &Principal{}, p)
		assert.NotNil(t, s.CurrentPrincipal())
	})
}

func TestSession_SignIn_Errors(t *testing.T) {
	t.Run("no authenticator", func(t *testing.T) {
		_, err := NewSession(nil).SignIn(context.Background())
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "sign_in", perr.Op)
		assert.ErrorIs(t, err, ErrNoAuthenticator)
	})

	t.Run("flow failure", func(t *testing.T) {
		s := NewSession(&fakeAuth{err: errors.New("popup blocked")})

		_, err := s.SignIn(context.Background())
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, err.Error(), "popup blocked")
		assert.Nil(t, s.CurrentPrincipal())
	})

	t.Run("first token fails", func(t *testing.T) {
		s := NewSession(&fakeAuth{src: tokenFunc(func() (*oauth2.Token, error) {
			return nil, errors.New("network down")
		})})

		_, err := s.SignIn(context.Background())
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Nil(t, s.CurrentPrincipal())
	})

	t.Run("empty token", func(t *testing.T) {
		s := NewSession(&fakeAuth{src: oauth2.StaticTokenSource(&oauth2.Token{})})

		_, err := s.SignIn(context.Background())
		assert.Error(t, err)
		assert.Nil(t, s.CurrentPrincipal())
	})
}

func TestSession_RequestCredential_RefreshesExpiredTokens(t *testing.T) {
	var n int32
	src := tokenFunc(func() (*oauth2.Token, error) {
		i := atomic.AddInt32(&n, 1)
		// inside the refresh window, so never reusable
		return &oauth2.Token{AccessToken: fmt.Sprintf("t%d", i), Expiry: time.Now().Add(time.Second)}, nil
	})
	s := NewSession(nil)
	_, err := s.Establish(context.Background(), src)
	require.NoError(t, err)

	first, err := s.RequestCredential(context.Background())
	require.NoError(t, err)
	second, err := s.RequestCredential(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "t2", first)
	assert.Equal(t, "t3", second)
}

func TestSession_RequestCredential_ReusesValidToken(t *testing.T) {
	var n int32
	src := tokenFunc(func() (*oauth2.Token, error) {
		i := atomic.AddInt32(&n, 1)
		return &oauth2.Token{AccessToken: fmt.Sprintf("t%d", i), Expiry: time.Now().Add(time.Hour)}, nil
	})
	s := NewSession(nil)
	_, err := s.Establish(context.Background(), src)
	require.NoError(t, err)

	cred, err := s.RequestCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t1", cred)
	assert.Equal(t, int32(1), atomic.LoadInt32(&n))
}

func TestSession_RequestCredential_ProviderFailure(t *testing.T) {
	var calls int32
	src := tokenFunc(func() (*oauth2.Token, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return &oauth2.Token{AccessToken: "t1", Expiry: time.Now().Add(time.Second)}, nil
		}
		return nil, errors.New("refresh rejected")
	})
	s := NewSession(nil)
	_, err := s.Establish(context.Background(), src)
	require.NoError(t, err)

	_, err = s.RequestCredential(context.Background())
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "token", perr.Op)
}

func TestSession_RequestCredential_Concurrent(t *testing.T) {
	tok := idToken(t, jwt.MapClaims{"user_id": "uid-1"})
	s := NewSession(&fakeAuth{src: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok})})
	_, err := s.SignIn(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = s.RequestCredential(context.Background())
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, tok, r)
	}
}

func TestSession_Subscribe(t *testing.T) {
	tok := idToken(t, jwt.MapClaims{"user_id": "uid-1"})
	auth := &fakeAuth{src: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok})}
	s := NewSession(auth)

	var seen []*Principal
	unsubscribe := s.Subscribe(func(p *Principal) { seen = append(seen, p) })

	_, err := s.SignIn(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.SignOut(context.Background()))

	require.Len(t, seen, 2)
	assert.Equal(t, "uid-1", seen[0].UID)
	assert.Nil(t, seen[1])

	unsubscribe()
	unsubscribe()
	_, err = s.SignIn(context.Background())
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestSession_SignOut(t *testing.T) {
	t.Run("revokes token", func(t *testing.T) {
		auth := &fakeAuth{src: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})}
		s := NewSession(auth)
		_, err := s.SignIn(context.Background())
		require.NoError(t, err)

		require.NoError(t, s.SignOut(context.Background()))
		assert.Equal(t, []string{"tok"}, auth.revoked)
		assert.Nil(t, s.CurrentPrincipal())

		_, err = s.RequestCredential(context.Background())
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("revocation failure still clears session", func(t *testing.T) {
		auth := &fakeAuth{
			src:       oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}),
			revokeErr: errors.New("revocation endpoint down"),
		}
		s := NewSession(auth)
		_, err := s.SignIn(context.Background())
		require.NoError(t, err)

		err = s.SignOut(context.Background())
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "sign_out", perr.Op)
		assert.Nil(t, s.CurrentPrincipal())
	})

	t.Run("signed out session", func(t *testing.T) {
		auth := &fakeAuth{}
		s := NewSession(auth)

		assert.NoError(t, s.SignOut(context.Background()))
		assert.Empty(t, auth.revoked)
	})
}
