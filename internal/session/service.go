package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/clock"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/utilities"
)

// DefaultTTL is how long an issued session token stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvalidToken covers missing, malformed, tampered and expired tokens.
var ErrInvalidToken = errors.New("invalid or expired session token")

// Claims is the payload of a session token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AccountID parses the subject claim.
func (c *Claims) AccountID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Service signs and verifies HS256 session tokens. Verification is a pure
// computation; nothing is stored server side.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clock.Clock
}

func NewService(cfg Config, clk clock.Clock) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Service{secret: cfg.Secret, issuer: cfg.Issuer, ttl: cfg.TTL, clock: clk}, nil
}

// Issue creates a token binding accountID and username.
func (s *Service) Issue(accountID int64, username string) (string, time.Time, error) {
	now := s.clock.Now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        utilities.NewSnowflakeID(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the
// claims. Every failure is reported as ErrInvalidToken.
func (s *Service) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.AccountID(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
