package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gustycube/repuhub/internal/health"
)

var (
	QueriesTotal    = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "repuhub_queries_total", Help: "indicator queries processed"}, []string{"kind"})
	ProviderLookups = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "repuhub_provider_lookups_total", Help: "provider lookups by outcome"}, []string{"provider", "status"})
	CacheOps        = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "repuhub_cache_ops_total", Help: "verdict cache lookups"}, []string{"result"})
	FilteredTotal   = prometheus.NewCounter(prometheus.CounterOpts{Name: "repuhub_filtered_total", Help: "private/internal indicators filtered"})
)

func init() {
	prometheus.MustRegister(QueriesTotal, ProviderLookups, CacheOps, FilteredTotal)
}

func ServeWithHealth(addr string, healthHandler *health.Handler, log *zap.SugaredLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler.HealthHandler)
	mux.HandleFunc("/ready", healthHandler.ReadinessHandler)
	mux.HandleFunc("/live", healthHandler.LivenessHandler)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warnw("metrics server stopped", "err", err)
	}
}
