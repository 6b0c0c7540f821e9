package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"shareregistry/internal/auth/models"
	"shareregistry/internal/platform/config"
	profilemodels "shareregistry/internal/profile/models"
	"shareregistry/pkg/testutil"
)

// AppSuite drives the in-memory wiring end to end. Metrics register on the
// default registry, so the app is built once for the whole suite.
type AppSuite struct {
	suite.Suite
	app    *App
	router http.Handler
	token  string
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func (s *AppSuite) SetupSuite() {
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSigningKey: "test-key",
			JWTIssuer:     "share-registry",
			TokenTTL:      time.Hour,
			BcryptCost:    4,
		},
		SMTP:  config.SMTPConfig{LoginURL: "http://localhost/login"},
		Kafka: config.KafkaConfig{AuditTopic: "registry.audit"},
		Admin: config.AdminBootstrap{Username: "admin", Password: "Admin-pass-1", Email: "admin@example.com"},
		DeactivateAccountOnProfileDelete: true,
	}
	ctx := context.Background()
	a, err := New(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Require().NoError(err)
	s.Require().NoError(a.BootstrapAdmin(ctx))
	s.Require().NoError(a.BootstrapAdmin(ctx), "bootstrap is idempotent")
	s.app = a
	s.router = a.Router()

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login", map[string]string{
		"username": "admin", "password": "Admin-pass-1",
	})
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.token = testutil.UnmarshalResponse[models.LoginResult](s.T(), rr).Token
}

func (s *AppSuite) TearDownSuite() {
	s.NoError(s.app.Close(context.Background()))
}

func (s *AppSuite) do(req *http.Request) *http.Response {
	rr := testutil.DoRequest(s.router, testutil.WithBearer(req, s.token))
	return rr.Result()
}

func (s *AppSuite) TestOperationalEndpoints() {
	for _, path := range []string{"/health", "/ready"} {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
		s.Equal(http.StatusOK, rr.Code, path)
	}
	s.Nil(s.app.DB())
}

func (s *AppSuite) TestProfileLifecycleProvisionsAndRetiresClientLogin() {
	body := map[string]any{
		"clientId":        "C-900",
		"shareholderName": map[string]any{"name1": "Meera Iyer"},
		"panNumber":       "AAAPI1234C",
		"emailId":         "meera@example.com",
		"companies": []map[string]any{
			{"companyName": "Wipro", "isinNumber": "INE075A01022", "quantity": 40},
		},
	}
	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/profiles", body), s.token)
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	profile := testutil.UnmarshalResponse[profilemodels.ClientProfile](s.T(), rr)

	client := s.clientFor(profile.ID.String())
	s.Require().NotNil(client, "client login provisioned on create")
	s.True(client.MustChangePassword)
	s.Equal(models.StatusActive, client.Status)

	s.Eventually(func() bool {
		rr := testutil.DoRequest(s.router, testutil.WithBearer(
			testutil.NewRequest(s.T(), http.MethodGet, "/profiles/"+profile.ID.String()+"/audit"), s.token))
		if rr.Code != http.StatusOK {
			return false
		}
		h := testutil.UnmarshalResponse[struct {
			Data []struct {
				Action string `json:"action"`
			} `json:"data"`
		}](s.T(), rr)
		return len(h.Data) > 0 && h.Data[0].Action == "profile_created"
	}, 2*time.Second, 20*time.Millisecond)

	resp := s.do(testutil.NewRequest(s.T(), http.MethodDelete, "/profiles/"+profile.ID.String()))
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	client = s.clientFor(profile.ID.String())
	s.Require().NotNil(client, "login is kept after profile delete")
	s.Equal(models.StatusInactive, client.Status)
}

func (s *AppSuite) clientFor(profileID string) *models.UserView {
	rr := testutil.DoRequest(s.router, testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodGet, "/users"), s.token))
	s.Require().Equal(http.StatusOK, rr.Code)
	list := testutil.UnmarshalResponse[struct {
		Data []models.UserView `json:"data"`
	}](s.T(), rr)
	for _, u := range list.Data {
		if u.ProfileID != nil && u.ProfileID.String() == profileID {
			return &u
		}
	}
	return nil
}
