package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/hairizuanbinnoorazman/agent-backend/logger"
	"github.com/hairizuanbinnoorazman/agent-backend/storage"
	"github.com/hairizuanbinnoorazman/agent-backend/testrun"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route served by agentctl serve. Request counters are
// registered on reg, which is also what /metrics exposes.
func NewRouter(store testrun.Store, blobs storage.BlobStorage, reg *prometheus.Registry, info BuildInfo, log logger.Logger) *mux.Router {
	requests := promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentctl_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	router := mux.NewRouter()
	router.Use(countRequests(requests))

	router.HandleFunc("/health", HealthHandler(info)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	runHandler := NewRunHandler(store, blobs, log)
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/runs", runHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/runs/{run_id}", runHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/runs/{run_id}/agents/{agent}/{stream}", runHandler.Artifact).Methods(http.MethodGet)

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func countRequests(counter *prometheus.CounterVec) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			counter.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		})
	}
}
