package handlers

import (
	"net/http"
	"sync"
)

// Startup step names, in the order the server completes them
const (
	StepDatabase   = "Database connection"
	StepMigrations = "Running migrations"
	StepContent    = "Loading content"
	StepServices   = "Initializing services"
	StepReady      = "Server ready"
)

// Startup tracks initialization progress
type Startup struct {
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

// StartupStatus is a snapshot of the tracker
type StartupStatus struct {
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

// NewStartup creates a tracker with every step pending
func NewStartup() *Startup {
	s := &Startup{current: "Initializing..."}
	for _, name := range []string{StepDatabase, StepMigrations, StepContent, StepServices, StepReady} {
		s.steps = append(s.steps, StartupStep{Name: name})
	}
	return s
}

// SetCurrentStep updates the current initialization step
func (s *Startup) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed and updates progress
func (s *Startup) CompleteStep(stepName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := 0
	for i := range s.steps {
		if s.steps[i].Name == stepName {
			s.steps[i].Completed = true
		}
		if s.steps[i].Completed {
			completed++
		}
	}
	s.progress = (completed * 100) / len(s.steps)
}

// MarkReady marks the server as fully initialized
func (s *Startup) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.steps {
		s.steps[i].Completed = true
	}
	s.ready = true
	s.current = StepReady
	s.progress = 100
}

// IsReady returns whether the server is fully initialized
func (s *Startup) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Status returns a copy of the current progress
func (s *Startup) Status() StartupStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	steps := make([]StartupStep, len(s.steps))
	copy(steps, s.steps)
	return StartupStatus{Ready: s.ready, Current: s.current, Progress: s.progress, Steps: steps}
}

// Health reports startup progress. It answers 503 until the server is ready.
func (s *Startup) Health(w http.ResponseWriter, r *http.Request) {
	status := s.Status()
	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}

// RequireReady rejects requests until initialization has finished
func (s *Startup) RequireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.IsReady() {
			w.Header().Set("Retry-After", "2")
			respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: ErrNotReady})
			return
		}
		next.ServeHTTP(w, r)
	})
}
