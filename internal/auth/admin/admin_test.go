package admin

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/requestcontext"
)

type AdminSuite struct {
	suite.Suite
	ctx     context.Context
	service *Service
}

func TestAdminSuite(t *testing.T) {
	suite.Run(t, new(AdminSuite))
}

func (s *AdminSuite) SetupSuite() {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	s.Require().NoError(err)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s.service = New("admin", string(hash), "signing-key",
		WithFailureDelay(time.Millisecond),
		WithTokenTTL(time.Hour),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *AdminSuite) TestLoginThenValidate() {
	token, err := s.service.Login(s.ctx, "admin", "correct horse")
	s.Require().NoError(err)

	user, err := s.service.ValidateToken(s.ctx, token)
	s.Require().NoError(err)
	s.Equal("admin", user)
}

func (s *AdminSuite) TestWrongCredentials() {
	_, err := s.service.Login(s.ctx, "admin", "battery staple")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.service.Login(s.ctx, "root", "correct horse")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *AdminSuite) TestExpiredToken() {
	token, err := s.service.Login(s.ctx, "admin", "correct horse")
	s.Require().NoError(err)

	later := requestcontext.WithTime(context.Background(), time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))
	_, err = s.service.ValidateToken(later, token)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *AdminSuite) TestHashPasswordRoundTrip() {
	hash, err := HashPassword("s3cret")
	s.Require().NoError(err)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}
