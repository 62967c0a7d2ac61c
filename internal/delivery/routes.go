package delivery

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Vovarama1992/voice_convert/internal/metrics"
)

type RouterDeps struct {
	Convert     *ConvertHandler
	CORSOrigins []string
	Gatherer    prometheus.Gatherer
	Metrics     *metrics.Collector
	Log         *zap.Logger
}

func NewRouter(d RouterDeps) chi.Router {
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	}))
	r.Use(RequestID)

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r chi.Router, d RouterDeps) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r.Group(func(pr chi.Router) {
		// AccessLog снаружи, чтобы запрос с паникой тоже попал в лог и метрики
		pr.Use(
			AccessLog(log, d.Metrics),
			httputil.RecoverMiddleware,
		)

		// --- конвертация ---
		pr.Post("/api/convert", d.Convert.Convert)
	})

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
}
