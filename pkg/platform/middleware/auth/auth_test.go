package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"immersionfacile/pkg/requestcontext"
)

type stubValidator struct {
	tokens map[string]requestcontext.Actor
}

func (v stubValidator) Authenticate(_ context.Context, token string) (requestcontext.Actor, error) {
	actor, ok := v.tokens[token]
	if !ok {
		return requestcontext.Actor{}, errors.New("invalid magic link")
	}
	return actor, nil
}

type MagicLinkSuite struct {
	suite.Suite
	handler http.Handler
	actor   requestcontext.Actor
	reached bool
}

func TestMagicLinkSuite(t *testing.T) {
	suite.Run(t, new(MagicLinkSuite))
}

func (s *MagicLinkSuite) SetupTest() {
	s.reached = false
	s.actor = requestcontext.Actor{}
	validator := stubValidator{tokens: map[string]requestcontext.Actor{
		"good": {ConventionID: "conv-1", Role: "beneficiary", EmailHash: "h"},
	}}
	s.handler = RequireMagicLink(validator, slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.reached = true
			s.actor, _ = requestcontext.ConventionActor(r.Context())
		}))
}

func (s *MagicLinkSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *MagicLinkSuite) TestQueryToken() {
	rr := s.serve(httptest.NewRequest(http.MethodGet, "/auth/demandes-immersion/conv-1?jwt=good", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.True(s.reached)
	s.Equal("conv-1", s.actor.ConventionID)
	s.Equal("beneficiary", s.actor.Role)
}

func (s *MagicLinkSuite) TestAuthorizationHeader() {
	for _, header := range []string{"good", "Bearer good"} {
		s.SetupTest()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		s.Equal(http.StatusOK, s.serve(req).Code, header)
		s.True(s.reached)
	}
}

func (s *MagicLinkSuite) TestRejected() {
	rr := s.serve(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.JSONEq(`{"error":"unauthorized","error_description":"Missing magic link token"}`, rr.Body.String())

	rr = s.serve(httptest.NewRequest(http.MethodGet, "/?jwt=forged", nil))
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.False(s.reached)
}
