package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/deewanshi/carcenter/internal/http/handlers"
	httpmiddleware "github.com/deewanshi/carcenter/internal/http/middleware"
	"github.com/deewanshi/carcenter/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Assistant          *handlers.Assistant
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// WebAssets serves the embedded browser front end at /. Optional;
	// the API works headless without it.
	WebAssets fs.FS

	// RateLimit is requests per second per IP on the dialogue
	// endpoints. Zero disables limiting.
	RateLimit      float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.Assistant.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(assistant chi.Router) {
		if cfg.RateLimit > 0 {
			assistant.Use(httpmiddleware.RateLimit(cfg.RateLimit, cfg.RateLimitBurst))
		}
		assistant.Post("/start", cfg.Assistant.Start)
		assistant.Post("/listen", cfg.Assistant.Listen)
		assistant.Post("/transcribe", cfg.Assistant.Transcribe)
	})

	r.Get("/admin/database", cfg.Assistant.AdminDatabase)

	if cfg.WebAssets != nil {
		r.Handle("/*", http.FileServer(http.FS(cfg.WebAssets)))
	}

	return r
}
