package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const cookieIssuer = "emconsole"

var ErrInvalidCookie = errors.New("invalid session cookie")

// CookieCodec signs browser ids into HS256 tokens for the session cookie.
type CookieCodec struct {
	secret []byte
	now    func() time.Time
}

type cookieClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

func NewCookieCodec(secret string) (*CookieCodec, error) {
	if len(secret) < 16 {
		return nil, errors.New("session secret must be at least 16 characters")
	}
	return &CookieCodec{secret: []byte(secret), now: time.Now}, nil
}

func (c *CookieCodec) Encode(browserID string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := cookieClaims{
		SID: browserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cookieIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode returns the browser id from a cookie value. Expired, tampered, or
// foreign tokens all fail with ErrInvalidCookie.
func (c *CookieCodec) Decode(value string) (string, error) {
	var claims cookieClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cookieIssuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}
	if claims.SID == "" {
		return "", fmt.Errorf("%w: missing sid", ErrInvalidCookie)
	}
	return claims.SID, nil
}
