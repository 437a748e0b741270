package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"queridodiario/internal/metrics"
	"queridodiario/internal/models"
	"queridodiario/internal/security"
	"queridodiario/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	TenantContextKey  ContextKey = "tenant"
	SessionContextKey ContextKey = "session"
	DiaryContextKey   ContextKey = "diary"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService  *service.AuthService
	panelService *service.PanelService
	csrf         *security.CSRFGenerator
	loginLimiter *security.RateLimiter
	panelLimiter *security.RateLimiter
	clientIP     *security.ClientIPResolver
	logger       *zap.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, panelService *service.PanelService, csrf *security.CSRFGenerator, loginLimiter, panelLimiter *security.RateLimiter, logger *zap.Logger) *Middleware {
	return &Middleware{
		authService:  authService,
		panelService: panelService,
		csrf:         csrf,
		loginLimiter: loginLimiter,
		panelLimiter: panelLimiter,
		logger:       logger,
	}
}

// TrustProxies makes the rate limiters key on the forwarded client address for
// requests arriving through one of the resolver's proxies
func (m *Middleware) TrustProxies(resolver *security.ClientIPResolver) *Middleware {
	m.clientIP = resolver
	return m
}

// RequireAuth is middleware that requires a valid admin session cookie
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.SessionCookieName)
		if err != nil || cookie.Value == "" {
			respondJSON(w, http.StatusUnauthorized, errorBody{Error: ErrUnauthorized})
			return
		}

		tenant, claims, err := m.authService.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			// Clear invalid cookie
			http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
			respondServiceError(w, m.logger, err)
			return
		}

		ctx := context.WithValue(r.Context(), TenantContextKey, tenant)
		ctx = context.WithValue(ctx, SessionContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// CSRFProtect requires the session-bound CSRF token on state-changing requests.
// It must run inside RequireAuth.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next(w, r)
			return
		}

		claims := GetSessionFromContext(r.Context())
		if claims == nil || !m.csrf.ValidateToken(claims.ID, r.Header.Get(security.CSRFHeader)) {
			respondJSON(w, http.StatusForbidden, errorBody{Error: ErrInvalidCSRF})
			return
		}
		next(w, r)
	}
}

// RequireAccessToken resolves the diary from the X-Access-Token header
func (m *Middleware) RequireAccessToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(AccessTokenHeader)
		if token == "" {
			respondJSON(w, http.StatusUnauthorized, errorBody{Error: ErrMissingToken})
			return
		}

		diary, err := m.panelService.DiaryForToken(r.Context(), token)
		if err != nil {
			if isUnauthorized(err) {
				respondJSON(w, http.StatusUnauthorized, errorBody{Error: ErrInvalidToken})
				return
			}
			respondServiceError(w, m.logger, err)
			return
		}

		ctx := context.WithValue(r.Context(), DiaryContextKey, diary)
		next(w, r.WithContext(ctx))
	}
}

// RateLimitLogin limits sign-in attempts per client IP
func (m *Middleware) RateLimitLogin(next http.HandlerFunc) http.HandlerFunc {
	return m.rateLimit("login", m.loginLimiter, next)
}

// RateLimitPanel limits panel API calls per client IP
func (m *Middleware) RateLimitPanel(next http.HandlerFunc) http.HandlerFunc {
	return m.rateLimit("panel", m.panelLimiter, next)
}

func (m *Middleware) rateLimit(name string, limiter *security.RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter != nil && !limiter.Allow(m.clientIP.ClientIP(r)) {
			metrics.RateLimitedTotal.WithLabelValues(name).Inc()
			w.Header().Set("Retry-After", retryAfterSeconds(limiter.RetryAfter()))
			respondJSON(w, http.StatusTooManyRequests, errorBody{Error: ErrTooManyRequests})
			return
		}
		next(w, r)
	}
}

// retryAfterSeconds rounds d up to whole seconds, at least one
func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Logging middleware logs HTTP requests and records request metrics. The route
// label is the matched mux pattern, which keeps metric cardinality bounded.
func Logging(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed))
	})
}

// GetTenantFromContext retrieves the signed-in tenant from the request context
func GetTenantFromContext(ctx context.Context) *models.Tenant {
	tenant, ok := ctx.Value(TenantContextKey).(*models.Tenant)
	if !ok {
		return nil
	}
	return tenant
}

// GetSessionFromContext retrieves the session claims from the request context
func GetSessionFromContext(ctx context.Context) *security.SessionClaims {
	claims, ok := ctx.Value(SessionContextKey).(*security.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetDiaryFromContext retrieves the token-resolved diary from the request context
func GetDiaryFromContext(ctx context.Context) *models.Diary {
	diary, ok := ctx.Value(DiaryContextKey).(*models.Diary)
	if !ok {
		return nil
	}
	return diary
}
