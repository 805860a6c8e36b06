package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is what a signed-in user carries between requests.
type Session struct {
	UserID       string
	Name         string
	Email        string
	Image        string
	AccessToken  string
	RefreshToken string
	// TokenExpiry is when the Yandex access token expires, zero if unknown.
	TokenExpiry time.Time
	// ExpiresAt is when the session itself expires. Set on parsed sessions only.
	ExpiresAt time.Time
}

// Claims defines the JWT claims we embed in the session token.
type Claims struct {
	Name         string           `json:"name,omitempty"`
	Email        string           `json:"email,omitempty"`
	Image        string           `json:"picture,omitempty"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token,omitempty"`
	TokenExpiry  *jwt.NumericDate `json:"token_exp,omitempty"`
	jwt.RegisteredClaims
}

// Session converts the claims back into a Session.
func (c *Claims) Session() Session {
	s := Session{
		UserID:       c.Subject,
		Name:         c.Name,
		Email:        c.Email,
		Image:        c.Image,
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
	}
	if c.TokenExpiry != nil {
		s.TokenExpiry = c.TokenExpiry.Time
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

// JWTManager manages session token creation and validation.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTManager creates a new JWT manager.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL returns the session lifetime.
func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}

// GenerateSessionToken creates a signed JWT for the given session and
// returns it with its expiry.
func (m *JWTManager) GenerateSessionToken(s Session) (string, time.Time, error) {
	if s.AccessToken == "" {
		return "", time.Time{}, errors.New("session has no access token")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(m.ttl)

	claims := &Claims{
		Name:         s.Name,
		Email:        s.Email,
		Image:        s.Image,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if !s.TokenExpiry.IsZero() {
		claims.TokenExpiry = jwt.NewNumericDate(s.TokenExpiry)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign jwt: %w", err)
	}

	return signed, expiresAt, nil
}

// ParseAndValidate validates a JWT and returns the parsed claims.
func (m *JWTManager) ParseAndValidate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Ensure token is signed using HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %T", t.Method)
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse jwt: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid jwt token")
	}
	if claims.AccessToken == "" {
		return nil, errors.New("jwt carries no access token")
	}

	return claims, nil
}
