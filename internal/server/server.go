// Package server serves the site over HTTP: pages rendered from the live
// content snapshot, the form posts, effect posters, health and metrics.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/config"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/effect"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/metrics"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/site"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/submit"
)

const requestTimeout = 30 * time.Second

// Options wires a Server. Stage may be nil, in which case effect posters
// are not served.
type Options struct {
	Config    config.Config
	Site      *site.Site
	Submitter submit.Submitter
	Stage     *effect.Stage
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

type Server struct {
	cfg     config.Config
	site    *site.Site
	submit  submit.Submitter
	stage   *effect.Stage
	metrics *metrics.Metrics
	log     *zap.Logger
	router  chi.Router
}

func New(opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Server{
		cfg:     opts.Config,
		site:    opts.Site,
		submit:  opts.Submitter,
		stage:   opts.Stage,
		metrics: opts.Metrics,
		log:     opts.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(requestTimeout))

	for _, p := range site.Pages {
		switch p.Path {
		case "/publications":
			r.Get(p.Path, s.handlePublications(p))
		case "/volunteer":
			r.Get(p.Path, s.handleVolunteer(p))
			r.Post(p.Path, s.handleVolunteerPost(p))
		case "/auth":
			r.Get(p.Path, s.handleAuth(p))
			r.Post(p.Path, s.handleAuthPost(p))
		default:
			r.Get(p.Path, s.handlePage(p))
		}
	}
	r.Get("/auth/google", s.handleGoogle)
	r.Post("/subscribe", s.handleSubscribe)
	r.Get("/effects/{name}.svg", s.handleEffect)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Handle("/static/*", noCache(http.StripPrefix("/static/", http.FileServer(http.FS(s.site.Sources().Static)))))
	r.NotFound(s.handleNotFound)
	return r
}

// noCache keeps browsers from holding on to assets while content is being
// edited under serve.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", middleware.GetReqID(r.Context())),
			)
		})
	}
}
