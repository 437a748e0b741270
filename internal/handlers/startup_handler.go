package handlers

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Startup step names, in the order the server completes them
const (
	StepDatabase   = "Database connection"
	StepMigrations = "Running migrations"
	StepServices   = "Initializing services"
	StepReady      = "Server ready"
)

// StartupStatus tracks the initialization progress
type StartupStatus struct {
	mu       sync.RWMutex
	ready    bool
	current  string
	progress int
	steps    []StartupStep
}

type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// NewStartupStatus creates a tracker for the given steps
func NewStartupStatus(steps ...string) *StartupStatus {
	s := &StartupStatus{current: "Initializing..."}
	for _, name := range steps {
		s.steps = append(s.steps, StartupStep{Name: name})
	}
	return s
}

// SetCurrentStep updates the current initialization step
func (s *StartupStatus) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed and updates progress
func (s *StartupStatus) CompleteStep(stepName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.steps {
		if s.steps[i].Name == stepName {
			s.steps[i].Completed = true
			break
		}
	}

	completed := 0
	for _, step := range s.steps {
		if step.Completed {
			completed++
		}
	}
	if len(s.steps) > 0 {
		s.progress = (completed * 100) / len(s.steps)
	}
}

// MarkReady marks the server as fully initialized
func (s *StartupStatus) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.current = StepReady
	s.progress = 100
}

// IsReady returns whether the server is fully initialized
func (s *StartupStatus) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

type startupView struct {
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

// Readiness reports the startup progress, with 503 until the server is ready
func (s *StartupStatus) Readiness(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	view := startupView{
		Ready:    s.ready,
		Current:  s.current,
		Progress: s.progress,
		Steps:    append([]StartupStep(nil), s.steps...),
	}
	s.mu.RUnlock()

	status := http.StatusOK
	if !view.Ready {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, view)
}

// startupRetryAfter is what clients are told to wait while the server boots
const startupRetryAfter = 5 * time.Second

// Gate serves readiness while the server initializes and hands every request
// to the application once it is opened
type Gate struct {
	status *StartupStatus
	app    atomic.Pointer[http.Handler]
}

// NewGate creates a closed gate reporting the given startup progress
func NewGate(status *StartupStatus) *Gate {
	return &Gate{status: status}
}

// Open routes all further requests to app and marks the server ready
func (g *Gate) Open(app http.Handler) {
	g.app.Store(&app)
	g.status.MarkReady()
}

func (g *Gate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if app := g.app.Load(); app != nil {
		(*app).ServeHTTP(w, r)
		return
	}
	if r.URL.Path == "/readyz" {
		g.status.Readiness(w, r)
		return
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(startupRetryAfter.Seconds())))
	respondJSON(w, http.StatusServiceUnavailable, errorBody{Error: ErrStartingUp})
}

// Pinger is satisfied by *database.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports liveness, including a database ping
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
