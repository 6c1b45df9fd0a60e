// Package magiclink mints and verifies the signed links that let convention
// actors act without an account.
package magiclink

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"immersionfacile/internal/convention/models"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/requestcontext"
)

// Front-end routes targeted by magic links.
const (
	RouteConventionEdit     = "demande-immersion"
	RouteConventionSign     = "demande-immersion/verifier-et-signer"
	RouteConventionValidate = "demande-immersion/validation"
	RouteAssessment         = "bilan-immersion"
	RouteEstablishmentEdit  = "edition-etablissement"
)

// DefaultTTL is the lifetime of a freshly minted link.
const DefaultTTL = 31 * 24 * time.Hour

// Claims is the magic link token body.
type Claims struct {
	ApplicationID string      `json:"applicationId"`
	Role          models.Role `json:"role"`
	EmailHash     string      `json:"emailHash"`
	jwt.RegisteredClaims
}

// EstablishmentClaims lets an establishment contact edit its form.
type EstablishmentClaims struct {
	Siret string `json:"siret"`
	jwt.RegisteredClaims
}

// Service signs magic link tokens with HS256.
type Service struct {
	signingKey   []byte
	frontBaseURL string
	ttl          time.Duration
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func New(signingKey, frontBaseURL string, opts ...Option) *Service {
	s := &Service{
		signingKey:   []byte(signingKey),
		frontBaseURL: strings.TrimSuffix(frontBaseURL, "/"),
		ttl:          DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FrontBaseURL is the origin links are built on.
func (s *Service) FrontBaseURL() string {
	return s.frontBaseURL
}

// EmailHash identifies the recipient of a link without storing the address.
func EmailHash(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// GenerateToken signs a token for the actor. iat comes from the request clock.
func (s *Service) GenerateToken(ctx context.Context, id models.ID, role models.Role, email string) (string, error) {
	now := requestcontext.Now(ctx)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ApplicationID: id,
		Role:          role,
		EmailHash:     EmailHash(email),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign magic link: %w", err)
	}
	return signed, nil
}

// GenerateMagicLink returns <frontBaseURL>/<targetRoute>?jwt=<token>.
func (s *Service) GenerateMagicLink(ctx context.Context, id models.ID, role models.Role, targetRoute, email string) (string, error) {
	token, err := s.GenerateToken(ctx, id, role, email)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s?jwt=%s", s.frontBaseURL, strings.TrimPrefix(targetRoute, "/"), url.QueryEscape(token)), nil
}

// Validate checks signature and expiry against the request clock.
func (s *Service) Validate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.parse(token, jwt.WithTimeFunc(func() time.Time { return requestcontext.Now(ctx) }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "magic link has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid magic link")
	}
	return claims, nil
}

// ParseExpired checks the signature only. Used to renew expired links.
func (s *Service) ParseExpired(_ context.Context, token string) (*Claims, error) {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid magic link")
	}
	return claims, nil
}

func (s *Service) parse(token string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.ApplicationID == "" || !claims.Role.IsValid() {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// Authenticate validates token and returns the actor it identifies.
func (s *Service) Authenticate(ctx context.Context, token string) (requestcontext.Actor, error) {
	claims, err := s.Validate(ctx, token)
	if err != nil {
		return requestcontext.Actor{}, err
	}
	return requestcontext.Actor{
		ConventionID: claims.ApplicationID,
		Role:         string(claims.Role),
		EmailHash:    claims.EmailHash,
	}, nil
}

// GenerateEstablishmentEditLink returns <frontBaseURL>/edition-etablissement?jwt=<token>
// for the form of siret.
func (s *Service) GenerateEstablishmentEditLink(ctx context.Context, siret string) (string, error) {
	now := requestcontext.Now(ctx)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, EstablishmentClaims{
		Siret: siret,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign establishment link: %w", err)
	}
	return fmt.Sprintf("%s/%s?jwt=%s", s.frontBaseURL, RouteEstablishmentEdit, url.QueryEscape(signed)), nil
}

// AuthenticateEstablishment validates an establishment token and returns
// the siret it grants access to. Convention tokens are rejected.
func (s *Service) AuthenticateEstablishment(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &EstablishmentClaims{}, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return requestcontext.Now(ctx) }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "magic link has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid magic link")
	}
	claims, ok := parsed.Claims.(*EstablishmentClaims)
	if !ok || !parsed.Valid || claims.Siret == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid magic link")
	}
	return claims.Siret, nil
}
