package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docpager/internal/config"
	"github.com/dgallion1/docpager/internal/viewer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for docpager.
type Server struct {
	router  chi.Router
	service *viewer.Service
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *viewer.Service, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		service: svc,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	// Reader-facing pages.
	r.Group(func(r chi.Router) {
		r.Use(ReaderMiddleware(s.log))

		r.Get("/", s.handleIndex)
		r.Get("/docs/*", s.handleDocument)
		r.Post("/mode/toggle/*", s.handleToggleForm)
		r.Post("/page/{action}/*", s.handlePageForm)
	})

	// JSON API.
	r.Route("/api", func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}
		r.Use(ReaderMiddleware(s.log))

		r.Get("/documents", s.handleListDocuments)
		r.Get("/state/*", s.handleState)
		r.Get("/outline/*", s.handleOutline)
		r.Post("/mode/toggle/*", s.handleToggle)
		r.Post("/page/{action}/*", s.handlePage)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
