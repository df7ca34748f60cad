package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSecret = errors.New("auth: AUTH_JWT_SECRET not set")

type claims struct {
	jwt.RegisteredClaims
	UID   string   `json:"uid,omitempty"`
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

func (m *Middleware) validateToken(raw string) (User, error) {
	if len(m.secret) == 0 {
		return User{}, ErrNoSecret
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(m.leeway),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	var c claims
	tok, err := jwt.NewParser(opts...).ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		return User{}, errors.New("invalid token")
	}

	username := c.UID
	if username == "" {
		username = c.Subject
	}
	if username == "" {
		return User{}, errors.New("missing subject")
	}
	role := c.Role
	if role == "" && len(c.Roles) > 0 {
		role = c.Roles[0]
	}
	return User{
		Username:             username,
		AuthenticationSource: AuthenticationSource{Provider: ProviderBearer},
		Role:                 Role{Name: role},
	}, nil
}

// Sign issues an HS256 token for u that the middleware accepts.
func (m *Middleware) Sign(u User, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: u.Role.Name,
	}
	if m.audience != "" {
		c.Audience = jwt.ClaimStrings{m.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}
