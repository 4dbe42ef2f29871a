package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeeyuni/clone-junglebook/internal/model"
)

// Claims carries the authenticated identity inside the session token. The
// identity key is the provider-stable reference; the display name is only a
// snapshot for rendering.
type Claims struct {
	IdentityKey string `json:"idk"`
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

// Issue creates a signed session token for identity.
func Issue(secret []byte, identity model.Identity, ttl time.Duration) (string, error) {
	claims := Claims{
		IdentityKey: identity.Key,
		DisplayName: identity.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   identity.Key,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Parse validates a session token and returns the identity it carries.
func Parse(secret []byte, token string) (*model.Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &model.Identity{Key: claims.IdentityKey, DisplayName: claims.DisplayName}, nil
}
