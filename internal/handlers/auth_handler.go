package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"queridodiario/internal/metrics"
	"queridodiario/internal/security"
	"queridodiario/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	csrf                 *security.CSRFGenerator
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	logger               *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, csrf *security.CSRFGenerator, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		csrf:                 csrf,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		logger:               logger,
	}
}

// Login handles email and password sign-in
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("password", "failure").Inc()
		respondServiceError(w, h.logger, err)
		return
	}
	metrics.LoginsTotal.WithLabelValues("password", "success").Inc()

	h.startSession(w, r, session)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, session *service.Session) {
	csrfToken, err := h.csrf.GenerateToken(session.ID)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, ErrInternalServerError, "Failed to generate CSRF token", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, session.Token, session.ExpiresAt))
	respondJSON(w, http.StatusOK, SessionView{
		Tenant:    NewTenantView(session.Tenant),
		CSRFToken: csrfToken,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout clears the session cookie. Sessions are stateless, so nothing is stored server side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in tenant and a CSRF token for the current session
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	tenant := GetTenantFromContext(r.Context())
	claims := GetSessionFromContext(r.Context())

	csrfToken, err := h.csrf.GenerateToken(claims.ID)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, ErrInternalServerError, "Failed to generate CSRF token", err)
		return
	}

	respondJSON(w, http.StatusOK, SessionView{
		Tenant:    NewTenantView(tenant),
		CSRFToken: csrfToken,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}
