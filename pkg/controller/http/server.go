package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cyffff/riskai/pkg/usecase"
	"github.com/cyffff/riskai/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

type Options func(*Server)

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/features", func(r chi.Router) {
			r.Post("/", s.createFeature)
			r.Get("/", s.listFeatures)
			r.Post("/importance/sync", s.syncImportance)
			r.Route("/{featureID}", func(r chi.Router) {
				r.Get("/", s.getFeature)
				r.Patch("/", s.updateFeature)
				r.Delete("/", s.deactivateFeature)
				r.Post("/values", s.setFeatureValue)
				r.Get("/values", s.listFeatureValues)
				r.Post("/validate", s.validateFeatureValue)
				r.Get("/metrics", s.featureMetrics)
			})
		})

		r.Route("/risk-factors", func(r chi.Router) {
			r.Post("/", s.createRiskFactor)
			r.Get("/", s.listRiskFactors)
			r.Route("/{factorID}", func(r chi.Router) {
				r.Get("/", s.getRiskFactor)
				r.Patch("/", s.updateRiskFactor)
			})
		})

		r.Post("/assess", s.assess)
		r.Route("/assessments", func(r chi.Router) {
			r.Get("/stats", s.assessmentStats)
			r.Get("/{customerID}", s.assessmentHistory)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
