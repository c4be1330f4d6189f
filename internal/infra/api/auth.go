package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/adapter"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var _ adapter.TokenIssuer = (*AuthManager)(nil)

type AuthConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// AuthManager signs and verifies the HS256 bearer tokens of the API.
// Access and refresh tokens use different secrets and carry their type, so
// one can never stand in for the other.
type AuthManager struct {
	cfg AuthConfig
	now func() time.Time
}

func NewAuthManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *AuthManager {
	return &AuthManager{
		cfg: AuthConfig{
			AccessSecret:  []byte(accessSecret),
			RefreshSecret: []byte(refreshSecret),
			AccessTTL:     accessTTL,
			RefreshTTL:    refreshTTL,
			Issuer:        "cledumemoire",
		},
		now: time.Now,
	}
}

type UserClaims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

func (a *AuthManager) Issue(u *model.User) (*adapter.TokenPair, error) {
	if u.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := a.now()
	access, accessExp, err := a.mint(u, tokenTypeAccess, a.cfg.AccessSecret, a.cfg.AccessTTL, now)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := a.mint(u, tokenTypeRefresh, a.cfg.RefreshSecret, a.cfg.RefreshTTL, now)
	if err != nil {
		return nil, err
	}
	return &adapter.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (a *AuthManager) mint(u *model.User, typ string, secret []byte, ttl time.Duration, now time.Time) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := UserClaims{
		Role: string(u.Role),
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.cfg.Issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	if typ == tokenTypeAccess {
		claims.Email = u.Email
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, exp, nil
}

// ParseRefresh returns the user id of a valid refresh token.
func (a *AuthManager) ParseRefresh(token string) (string, error) {
	c, err := a.parse(token, tokenTypeRefresh, a.cfg.RefreshSecret)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

// VerifyAccess returns the caller encoded in a valid access token.
func (a *AuthManager) VerifyAccess(token string) (string, model.Role, error) {
	c, err := a.parse(token, tokenTypeAccess, a.cfg.AccessSecret)
	if err != nil {
		return "", "", err
	}
	role, err := model.ParseRole(c.Role)
	if err != nil {
		return "", "", domain.ErrUnauthorized
	}
	return c.Subject, role, nil
}

func (a *AuthManager) parse(tok, typ string, secret []byte) (*UserClaims, error) {
	if tok == "" {
		return nil, domain.ErrUnauthorized
	}
	claims := &UserClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.cfg.Issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !tkn.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token expired: %w", domain.ErrUnauthorized)
		}
		return nil, domain.ErrUnauthorized
	}
	if claims.Type != typ || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
