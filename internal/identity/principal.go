package identity

import (
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Principal is the signed-in user as known to the identity provider.
type Principal struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Label returns the best human-readable name for the principal.
func (p *Principal) Label() string {
	switch {
	case p.DisplayName != "":
		return p.DisplayName
	case p.Email != "":
		return p.Email
	default:
		return p.UID
	}
}

// principalFromToken reads identity claims from the credential. Signatures are not
// checked here; the backend verifies every token it receives.
func principalFromToken(tok *oauth2.Token) *Principal {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credentialOf(tok), claims); err != nil {
		return &Principal{}
	}

	p := &Principal{
		UID:         stringClaim(claims, "user_id"),
		Email:       stringClaim(claims, "email"),
		DisplayName: stringClaim(claims, "name"),
	}
	if p.UID == "" {
		p.UID, _ = claims.GetSubject()
	}
	return p
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
