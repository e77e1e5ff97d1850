// internal/auth/jwt.go
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baharkarakas/asso-backend/internal/models"
)

type TokenManager struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(issuer, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		issuer:        issuer,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	Type   string `json:"typ"` // "access" | "refresh"
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (tm *TokenManager) claims(userID string, role models.Role, typ string, now time.Time, ttl time.Duration) Claims {
	return Claims{
		UserID: userID,
		Role:   string(role),
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// GeneratePair issues an access token and a refresh token for the same identity.
func (tm *TokenManager) GeneratePair(userID string, role models.Role) (TokenPair, error) {
	now := time.Now()
	acc := tm.claims(userID, role, "access", now, tm.accessTTL)
	ref := tm.claims(userID, role, "refresh", now, tm.refreshTTL)

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, acc).SignedString(tm.accessSecret)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, ref).SignedString(tm.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: acc.ExpiresAt.Time}, nil
}

func (tm *TokenManager) parse(tokenStr string, secret []byte, typ string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
	)
	if err != nil || claims.Type != typ || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (tm *TokenManager) ParseAccess(tokenStr string) (Identity, error) {
	c, err := tm.parse(tokenStr, tm.accessSecret, "access")
	if err != nil {
		return Identity{}, err
	}
	return Identity{ID: c.UserID, Role: models.Role(c.Role)}, nil
}

func (tm *TokenManager) ParseRefresh(tokenStr string) (Identity, error) {
	c, err := tm.parse(tokenStr, tm.refreshSecret, "refresh")
	if err != nil {
		return Identity{}, err
	}
	return Identity{ID: c.UserID, Role: models.Role(c.Role)}, nil
}
