// Package session issues and revokes bearer tokens for authenticated accounts.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/snapedit/backend/internal/ledger"
	"github.com/snapedit/backend/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevoked      = errors.New("token has been revoked")
)

// Claims carried by a session token
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
	log    zerolog.Logger
	now    func() time.Time
}

type Option func(*Manager)

// WithClock replaces time.Now for issuing, validating and revoking tokens.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a token manager. A nil redis client disables revocation.
func NewManager(secret string, ttl time.Duration, redisClient *redis.Client, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		redis:  redisClient,
		log:    log.With().Str("component", "session").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if redisClient == nil {
		m.log.Warn().Msg("redis unavailable, token revocation disabled")
	}
	return m
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}

// Issue signs a token for the account.
func (m *Manager) Issue(snap models.AccountSnapshot) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		Role: string(snap.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   snap.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

func (m *Manager) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// Parse validates the signature and expiry and returns the caller.
// The role is informational; the ledger re-reads it from the store.
func (m *Manager) Parse(tokenString string) (ledger.Principal, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return ledger.Principal{}, err
	}
	return ledger.Principal{Username: claims.Subject, Role: models.Role(claims.Role)}, nil
}

// Authenticate parses the token and rejects revoked ones. When the blacklist
// cannot be read the token is accepted, the same way LoginGuard fails open.
func (m *Manager) Authenticate(ctx context.Context, tokenString string) (ledger.Principal, error) {
	principal, err := m.Parse(tokenString)
	if err != nil {
		return ledger.Principal{}, err
	}
	revoked, err := m.IsRevoked(ctx, tokenString)
	if err != nil {
		m.log.Warn().Err(err).Str("username", principal.Username).Msg("blacklist unavailable, accepting token")
		return principal, nil
	}
	if revoked {
		return ledger.Principal{}, ErrRevoked
	}
	return principal, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (m *Manager) Revoke(ctx context.Context, tokenString string) error {
	claims, err := m.parse(tokenString)
	if err != nil {
		return err
	}
	if m.redis == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	if err := m.redis.Set(ctx, blacklistKey(tokenString), "1", ttl).Err(); err != nil {
		m.log.Error().Err(err).Str("username", claims.Subject).Msg("failed to blacklist token")
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (m *Manager) IsRevoked(ctx context.Context, tokenString string) (bool, error) {
	if m.redis == nil {
		return false, nil
	}
	n, err := m.redis.Exists(ctx, blacklistKey(tokenString)).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return n > 0, nil
}
