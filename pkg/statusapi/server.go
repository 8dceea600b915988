// Package statusapi serves the dashboard's own state over HTTP: health,
// Prometheus metrics, the current store snapshot and a few operator actions.
package statusapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"optimus-dashboard/pkg/store"
	"optimus-dashboard/pkg/streamstats"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Controller is the part of the stream client operators may drive.
type Controller interface {
	Reconnect()
	Disconnect()
}

type Server struct {
	store    *store.Store
	ctrl     Controller
	stats    streamstats.Reader
	registry *prometheus.Registry
	logger   *log.Logger
	router   *mux.Router

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New builds the router and registers HTTP and store metrics on reg. stats may
// be nil.
func New(st *store.Store, ctrl Controller, stats streamstats.Reader, reg *prometheus.Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		store:    st,
		ctrl:     ctrl,
		stats:    stats,
		registry: reg,
		logger:   logger,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dash_http_requests_total",
			Help: "Status API requests.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dash_http_request_duration_seconds",
			Help:    "Status API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(s.requests, s.duration)
	registerStoreMetrics(reg, st)

	r := mux.NewRouter()
	r.Use(s.metricsMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/alerts", s.handleAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts/{name}", s.handleAckAlert).Methods(http.MethodDelete)
	api.HandleFunc("/history/clear", s.handleClearHistory).Methods(http.MethodPost)
	api.HandleFunc("/reconnect", s.handleReconnect).Methods(http.MethodPost)
	api.HandleFunc("/disconnect", s.handleDisconnect).Methods(http.MethodPost)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Handler:      s.router,
		Addr:         addr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("status API listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func registerStoreMetrics(reg prometheus.Registerer, st *store.Store) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "dash_store_history_samples",
			Help: "Samples currently held in the history window.",
		}, func() float64 { return float64(len(st.Snapshot().History)) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "dash_store_active_alerts",
			Help: "Active alerts in the alert log.",
		}, func() float64 { return float64(len(st.Snapshot().ActiveAlerts())) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "dash_store_fps",
			Help: "Instantaneous sample rate.",
		}, func() float64 { return st.Snapshot().Connection.FPS }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "dash_store_frames_total",
			Help: "Samples applied to the store.",
		}, func() float64 { return float64(st.Snapshot().Connection.FrameCount) }),
	)
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		s.requests.WithLabelValues(r.Method, route, http.StatusText(rw.status)).Inc()
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("ERROR: encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
