// Package api exposes the tracker over JSON HTTP. Every request runs under
// the session lock, so HTTP clients and other front-ends see one consistent
// manager.
package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/steveyegge/projctl/internal/logging"
	"github.com/steveyegge/projctl/internal/session"
)

// Options tunes the HTTP surface
type Options struct {
	// Rate is the sustained requests per second; Burst the bucket size.
	// Rate <= 0 disables limiting.
	Rate  float64
	Burst int

	// MaxInFlight bounds concurrent requests. Default: 64
	MaxInFlight int64

	// AllowedOrigins for CORS. Empty disables CORS headers.
	AllowedOrigins []string
}

// Server holds the HTTP handlers
type Server struct {
	sess *session.Session
	log  *logging.Logger
	opts Options
}

// New creates a server over sess
func New(sess *session.Session, logger *logging.Logger, opts Options) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 64
	}
	return &Server{sess: sess, log: logger, opts: opts}
}

// Handler builds the router with its middleware chain
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware(s.log))
	if s.opts.Rate > 0 {
		burst := s.opts.Burst
		if burst < 1 {
			burst = 1
		}
		r.Use(RateLimitMiddleware(rate.NewLimiter(rate.Limit(s.opts.Rate), burst)))
	}
	r.Use(InFlightMiddleware(semaphore.NewWeighted(s.opts.MaxInFlight)))

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorBody(w, http.StatusNotFound, "ROUTE_NOT_FOUND", "no such route")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorBody(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.stats).Methods(http.MethodGet)
	r.HandleFunc("/commands", s.runCommand).Methods(http.MethodPost)
	r.HandleFunc("/snapshot", s.getSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/snapshot", s.saveSnapshot).Methods(http.MethodPost)

	users := r.PathPrefix("/users").Subrouter()
	users.HandleFunc("", s.listUsers).Methods(http.MethodGet)
	users.HandleFunc("", s.createUser).Methods(http.MethodPost)
	users.HandleFunc("/{user}", s.removeUser).Methods(http.MethodDelete)

	projects := r.PathPrefix("/projects").Subrouter()
	projects.HandleFunc("", s.listProjects).Methods(http.MethodGet)
	projects.HandleFunc("", s.createProject).Methods(http.MethodPost)
	projects.HandleFunc("/{project}", s.getProject).Methods(http.MethodGet)
	projects.HandleFunc("/{project}", s.renameProject).Methods(http.MethodPatch)
	projects.HandleFunc("/{project}", s.removeProject).Methods(http.MethodDelete)

	tasks := projects.PathPrefix("/{project}/tasks").Subrouter()
	tasks.HandleFunc("", s.listTasks).Methods(http.MethodGet)
	tasks.HandleFunc("", s.createTask).Methods(http.MethodPost)
	tasks.HandleFunc("/lines", s.taskLines).Methods(http.MethodGet)
	tasks.HandleFunc("/{task}", s.removeTask).Methods(http.MethodDelete)
	tasks.HandleFunc("/{task}/status", s.changeTaskStatus).Methods(http.MethodPut)
	tasks.HandleFunc("/{task}/executors/{user}", s.assignTask).Methods(http.MethodPut)
	tasks.HandleFunc("/{task}/executors/{user}", s.unassignTask).Methods(http.MethodDelete)

	subtasks := tasks.PathPrefix("/{task}/subtasks").Subrouter()
	subtasks.HandleFunc("", s.listSubtasks).Methods(http.MethodGet)
	subtasks.HandleFunc("", s.createSubtask).Methods(http.MethodPost)
	subtasks.HandleFunc("/lines", s.subtaskLines).Methods(http.MethodGet)
	subtasks.HandleFunc("/{subtask}", s.removeSubtask).Methods(http.MethodDelete)
	subtasks.HandleFunc("/{subtask}/status", s.changeSubtaskStatus).Methods(http.MethodPut)
	subtasks.HandleFunc("/{subtask}/executors/{user}", s.assignSubtask).Methods(http.MethodPut)
	subtasks.HandleFunc("/{subtask}/executors/{user}", s.unassignSubtask).Methods(http.MethodDelete)

	var h http.Handler = r
	if len(s.opts.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.opts.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
		)(h)
	}
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.log}),
		handlers.PrintRecoveryStack(false),
	)(h)
}
