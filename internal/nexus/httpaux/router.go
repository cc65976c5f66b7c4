package httpaux

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/routerd/routerd/internal/logger"
	"github.com/routerd/routerd/internal/mds"
)

// mdsNode is one row of the /debug/mds tree dump.
type mdsNode struct {
	Path     string `json:"path"`
	Category string `json:"category"`
	Worker   string `json:"worker,omitempty"`
}

// NewRouter builds the auxiliary mux: /metrics, /healthz, /debug/mds. tree is
// read-only here; the mux never registers handlers against it.
func NewRouter(reg *prometheus.Registry, tree *mds.Tree) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/debug/mds", func(w http.ResponseWriter, _ *http.Request) {
		var nodes []mdsNode
		tree.Walk(func(path string, handler *mds.Handler) {
			n := mdsNode{Path: path}
			if handler.Category == mds.Proxy {
				n.Category = "proxy"
				n.Worker = handler.Worker
			} else {
				n.Category = "local"
			}
			nodes = append(nodes, n)
		})

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(nodes)
	})

	return r
}

// requestLogger logs every auxiliary-surface request at debug level; this
// mux has no request volume worth INFO-level noise on its own.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Debug("httpaux request",
			"request_id", middleware.GetReqID(r.Context()),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			"status", ww.Status(),
			logger.DurationMs(float64(time.Since(start).Microseconds())/1000),
		)
	})
}
