package prometheus

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/carewatch-api/pkg/metrics"
)

// Handler owns the registry served on /metrics.
type Handler struct {
	registry *prometheus.Registry
}

// New registers the application collectors plus the Go runtime and process collectors.
func New(m *metrics.Metrics) (*Handler, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := m.Register(registry); err != nil {
		return nil, err
	}
	return &Handler{registry: registry}, nil
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
}
