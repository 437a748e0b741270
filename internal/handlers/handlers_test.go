package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"queridodiario/internal/database"
	"queridodiario/internal/models"
	"queridodiario/internal/repository"
	"queridodiario/internal/security"
	"queridodiario/internal/service"
)

type testServer struct {
	db      *database.DB
	auth    *service.AuthService
	diaries *service.DiaryService
	handler http.Handler
	startup *StartupStatus
}

type serverOption func(*serverConfig)

type serverConfig struct {
	loginLimiter   *security.RateLimiter
	panelLimiter   *security.RateLimiter
	providers      map[string]OAuthProvider
	trustedProxies []string
}

func withLoginLimiter(rl *security.RateLimiter) serverOption {
	return func(c *serverConfig) { c.loginLimiter = rl }
}

func withPanelLimiter(rl *security.RateLimiter) serverOption {
	return func(c *serverConfig) { c.panelLimiter = rl }
}

// withTrustedProxies trusts the peer address httptest requests come from
func withTrustedProxies(proxies ...string) serverOption {
	return func(c *serverConfig) { c.trustedProxies = proxies }
}

func withProviders(p map[string]OAuthProvider) serverOption {
	return func(c *serverConfig) { c.providers = p }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := serverConfig{
		loginLimiter: security.PerMinute(1000),
		panelLimiter: security.PerMinute(1000),
		providers:    map[string]OAuthProvider{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "qd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(context.Background()))

	logger := zap.NewNop()
	sessions := security.NewSessionManager("test-secret", time.Hour)
	csrf := security.NewCSRFGenerator("test-secret")

	authService := service.NewAuthService(repository.NewTenantRepository(db), sessions, logger)
	diaryService := service.NewDiaryService(db, logger)
	panelService := service.NewPanelService(db, time.UTC, logger)
	emailService, err := service.NewEmailService(context.Background(), "us-east-1", "", "", "http://qd.test", logger)
	require.NoError(t, err)

	startup := NewStartupStatus(StepDatabase, StepMigrations, StepServices, StepReady)
	clientIP, err := security.NewClientIPResolver(cfg.trustedProxies)
	require.NoError(t, err)
	mw := NewMiddleware(authService, panelService, csrf, cfg.loginLimiter, cfg.panelLimiter, logger).TrustProxies(clientIP)

	return &testServer{
		db:      db,
		auth:    authService,
		diaries: diaryService,
		startup: startup,
		handler: NewRouter(Server{
			Middleware: mw,
			Auth:       NewAuthHandler(authService, csrf, cfg.providers, "http://qd.test", logger),
			Admin:      NewAdminHandler(diaryService, emailService, logger),
			Panel:      NewPanelHandler(panelService, logger),
			Startup:    startup,
			DB:         db,
			Logger:     logger,
		}),
	}
}

type request struct {
	method  string
	path    string
	body    any
	headers map[string]string
	cookies []*http.Cookie
}

func (s *testServer) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch b := req.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(req.method, req.path, body)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// admin is a signed-in tenant with its session cookie and CSRF token
type admin struct {
	tenant *models.Tenant
	cookie *http.Cookie
	csrf   string
}

func (s *testServer) signIn(t *testing.T, email string) admin {
	t.Helper()
	tenant, err := s.auth.CreateTenant(context.Background(), email, "password123", "Tenant", "")
	require.NoError(t, err)

	rec := s.do(t, request{method: http.MethodPost, path: "/api/admin/login", body: loginRequest{Email: email, Password: "password123"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookie := findCookie(rec, security.SessionCookieName)
	require.NotNil(t, cookie)
	view := decode[SessionView](t, rec)
	return admin{tenant: tenant, cookie: cookie, csrf: view.CSRFToken}
}

func (a admin) request(method, path string, body any) request {
	return request{
		method:  method,
		path:    path,
		body:    body,
		headers: map[string]string{security.CSRFHeader: a.csrf},
		cookies: []*http.Cookie{a.cookie},
	}
}

// fakeOAuthServer plays the token and userinfo endpoints of an OAuth provider
func fakeOAuthServer(t *testing.T, email string, verified bool) OAuthProvider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             "g-1",
			"email":          email,
			"name":           "Ana",
			"verified_email": verified,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return OAuthProvider{
		Name:  "google",
		Label: "Google",
		Config: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:   srv.URL + "/auth",
				TokenURL:  srv.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{"openid", "email", "profile"},
		},
		UserInfoURL: srv.URL + "/userinfo",
	}
}
