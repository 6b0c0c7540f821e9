package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"shareregistry/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (v stubValidator) ValidateToken(string) (*JWTClaims, error) { return v.claims, v.err }

type stubRevocation struct {
	revoked bool
	err     error
}

func (s stubRevocation) IsTokenRevoked(context.Context, string) (bool, error) {
	return s.revoked, s.err
}

type AuthMiddlewareSuite struct {
	suite.Suite
	logger *slog.Logger
	claims *JWTClaims
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.claims = &JWTClaims{
		UserID:    uuid.NewString(),
		Username:  "ops1",
		Role:      "employee",
		JTI:       "jti-1",
		ProfileID: "",
	}
}

func (s *AuthMiddlewareSuite) serve(mw func(http.Handler) http.Handler, header string) (*httptest.ResponseRecorder, *requestcontext.Principal) {
	var got *requestcontext.Principal
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := requestcontext.PrincipalFrom(r.Context())
		if ok {
			got = &p
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	r := httptest.NewRequest(http.MethodGet, "/profiles", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	return rr, got
}

func (s *AuthMiddlewareSuite) TestRequireAuth() {
	s.Run("missing header is unauthorized", func() {
		rr, _ := s.serve(RequireAuth(stubValidator{claims: s.claims}, nil, s.logger), "")
		s.Equal(http.StatusUnauthorized, rr.Code)
	})

	s.Run("invalid token is unauthorized", func() {
		rr, _ := s.serve(RequireAuth(stubValidator{err: errors.New("bad sig")}, nil, s.logger), "Bearer x")
		s.Equal(http.StatusUnauthorized, rr.Code)
	})

	s.Run("revoked token is unauthorized", func() {
		rr, _ := s.serve(RequireAuth(stubValidator{claims: s.claims}, stubRevocation{revoked: true}, s.logger), "Bearer x")
		s.Equal(http.StatusUnauthorized, rr.Code)
		s.Contains(rr.Body.String(), "revoked")
	})

	s.Run("revocation store failure is unavailable", func() {
		rr, _ := s.serve(RequireAuth(stubValidator{claims: s.claims}, stubRevocation{err: errors.New("redis down")}, s.logger), "Bearer x")
		s.Equal(http.StatusServiceUnavailable, rr.Code)
	})

	s.Run("valid token sets principal", func() {
		profileID := uuid.NewString()
		claims := *s.claims
		claims.Role = "client"
		claims.ProfileID = profileID

		rr, p := s.serve(RequireAuth(stubValidator{claims: &claims}, stubRevocation{}, s.logger), "Bearer x")
		s.Equal(http.StatusNoContent, rr.Code)
		s.Require().NotNil(p)
		s.Equal("ops1", p.Username)
		s.Equal("client", p.Role)
		s.Require().NotNil(p.ProfileID)
		s.Equal(profileID, p.ProfileID.String())
	})
}

func (s *AuthMiddlewareSuite) TestRequireRole() {
	chain := func(role string) *httptest.ResponseRecorder {
		claims := *s.claims
		claims.Role = role
		auth := RequireAuth(stubValidator{claims: &claims}, nil, s.logger)
		guard := RequireRole(s.logger, "admin", "employee")
		rr, _ := s.serve(func(h http.Handler) http.Handler { return auth(guard(h)) }, "Bearer x")
		return rr
	}

	s.Equal(http.StatusNoContent, chain("admin").Code)
	s.Equal(http.StatusNoContent, chain("employee").Code)
	s.Equal(http.StatusForbidden, chain("client").Code)
}
