// Package admin authenticates back-office users.
package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/requestcontext"
)

const (
	DefaultTokenTTL     = 12 * time.Hour
	defaultFailureDelay = 500 * time.Millisecond
	audience            = "immersion-facile-admin"
)

// Claims is the admin session token body.
type Claims struct {
	jwt.RegisteredClaims
}

// Service checks admin credentials and issues admin tokens.
type Service struct {
	user         string
	passwordHash []byte
	signingKey   []byte
	tokenTTL     time.Duration
	failureDelay time.Duration
	logger       *slog.Logger
}

type Option func(*Service)

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func WithFailureDelay(d time.Duration) Option {
	return func(s *Service) {
		s.failureDelay = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(user, passwordHash, signingKey string, opts ...Option) *Service {
	s := &Service{
		user:         user,
		passwordHash: []byte(passwordHash),
		signingKey:   []byte(signingKey),
		tokenTTL:     DefaultTokenTTL,
		failureDelay: defaultFailureDelay,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HashPassword returns the bcrypt hash stored in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login returns a signed admin token. Failures wait failureDelay before
// answering so both wrong user and wrong password take the same time.
func (s *Service) Login(ctx context.Context, user, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.user)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil || s.user == "" {
		s.logger.WarnContext(ctx, "admin login failed",
			"request_id", requestcontext.RequestID(ctx),
			"client_ip", requestcontext.ClientIP(ctx),
		)
		select {
		case <-time.After(s.failureDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "wrong credentials")
	}

	now := requestcontext.Now(ctx)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.user,
			Audience:  []string{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign admin token")
	}
	s.logger.InfoContext(ctx, "admin logged in", "admin", s.user)
	return signed, nil
}

// ValidateToken returns the admin user named by a valid token.
func (s *Service) ValidateToken(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(func() time.Time { return requestcontext.Now(ctx) }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "admin token has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid admin token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid admin token")
	}
	return claims.Subject, nil
}
