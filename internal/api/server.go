package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/qcrop/internal/config"
	"github.com/dgallion1/qcrop/internal/cropper"
	"github.com/dgallion1/qcrop/internal/ocr"
	"github.com/dgallion1/qcrop/internal/question"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes a built question index over HTTP.
type Server struct {
	router    chi.Router
	index     *question.Index
	report    *question.Report
	extractor *cropper.Extractor
	stats     *ocr.Stats
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(idx *question.Index, report *question.Report, extractor *cropper.Extractor, stats *ocr.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		index:     idx,
		report:    report,
		extractor: extractor,
		stats:     stats,
		log:       log,
		cfg:       cfg,
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

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/index", s.handleIndex)
		r.Get("/api/report", s.handleReport)
		r.Get("/api/pages/{page}/questions/{qnum}/crop", s.handleCrop)
		r.Get("/api/stats/ocr", s.handleOCRStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
