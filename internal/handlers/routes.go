package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server bundles the handlers mounted by NewRouter
type Server struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Admin      *AdminHandler
	Panel      *PanelHandler
	Startup    *StartupStatus
	DB         Pinger
	Logger     *zap.Logger
}

// NewRouter registers every route and wraps the mux with request logging
func NewRouter(s Server) http.Handler {
	mw := s.Middleware
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", Health(s.DB))
	mux.HandleFunc("GET /readyz", s.Startup.Readiness)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Panel API, authorized by the diary access token
	panel := func(h http.HandlerFunc) http.HandlerFunc {
		return mw.RateLimitPanel(mw.RequireAccessToken(h))
	}
	mux.HandleFunc("GET /api/painel", panel(s.Panel.GetSnapshot))
	mux.HandleFunc("POST /api/painel/complete", panel(s.Panel.Complete))
	mux.HandleFunc("POST /api/painel/notes", panel(s.Panel.SaveNote))
	mux.HandleFunc("POST /api/painel/extra-activity", panel(s.Panel.CreateExtraActivity))

	// Sign-in
	mux.HandleFunc("POST /api/admin/login", mw.RateLimitLogin(s.Auth.Login))
	mux.HandleFunc("POST /api/admin/logout", s.Auth.Logout)
	mux.HandleFunc("GET /api/admin/providers", s.Auth.ListProviders)
	mux.HandleFunc("GET /auth/{provider}/start", mw.RateLimitLogin(s.Auth.StartOAuth))
	mux.HandleFunc("GET /auth/{provider}/callback", s.Auth.OAuthCallback)

	// Admin API
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return mw.RequireAuth(mw.CSRFProtect(h))
	}
	mux.HandleFunc("GET /api/admin/me", admin(s.Auth.Me))

	mux.HandleFunc("GET /api/admin/diaries", admin(s.Admin.ListDiaries))
	mux.HandleFunc("POST /api/admin/diaries", admin(s.Admin.CreateDiary))
	mux.HandleFunc("GET /api/admin/diaries/{diaryID}", admin(s.Admin.GetDiary))
	mux.HandleFunc("PUT /api/admin/diaries/{diaryID}", admin(s.Admin.UpdateDiary))
	mux.HandleFunc("DELETE /api/admin/diaries/{diaryID}", admin(s.Admin.DeleteDiary))
	mux.HandleFunc("POST /api/admin/diaries/{diaryID}/token", admin(s.Admin.RegenerateToken))
	mux.HandleFunc("POST /api/admin/diaries/{diaryID}/share", admin(s.Admin.ShareDiary))

	mux.HandleFunc("GET /api/admin/diaries/{diaryID}/routines", admin(s.Admin.ListRoutines))
	mux.HandleFunc("POST /api/admin/diaries/{diaryID}/routines", admin(s.Admin.CreateRoutine))
	mux.HandleFunc("PUT /api/admin/diaries/{diaryID}/routines/{routineID}", admin(s.Admin.UpdateRoutine))
	mux.HandleFunc("DELETE /api/admin/diaries/{diaryID}/routines/{routineID}", admin(s.Admin.DeleteRoutine))
	mux.HandleFunc("POST /api/admin/diaries/{diaryID}/routines/{routineID}/move", admin(s.Admin.MoveRoutine))

	mux.HandleFunc("GET /api/admin/diaries/{diaryID}/routines/{routineID}/activities", admin(s.Admin.ListActivities))
	mux.HandleFunc("POST /api/admin/diaries/{diaryID}/routines/{routineID}/activities", admin(s.Admin.CreateActivity))
	mux.HandleFunc("PUT /api/admin/diaries/{diaryID}/routines/{routineID}/activities/{activityID}", admin(s.Admin.UpdateActivity))
	mux.HandleFunc("DELETE /api/admin/diaries/{diaryID}/routines/{routineID}/activities/{activityID}", admin(s.Admin.DeleteActivity))

	mux.HandleFunc("GET /api/admin/diaries/{diaryID}/routines/{routineID}/board", admin(s.Admin.GetBoard))
	mux.HandleFunc("PUT /api/admin/diaries/{diaryID}/routines/{routineID}/board/{day}", admin(s.Admin.ReorderWeekday))
	mux.HandleFunc("POST /api/admin/diaries/{diaryID}/routines/{routineID}/board/move", admin(s.Admin.MoveActivity))

	return Logging(s.Logger, mux)
}
