package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder é o contrato de métricas que o serviço de inventário usa.
type Recorder interface {
	// AdjustmentCompleted registra um ajuste finalizado; outcome é "success" ou o motivo da falha.
	AdjustmentCompleted(direction, outcome string, elapsed time.Duration)
	// AdjustmentRetried registra uma nova tentativa após PersistenceFailure.
	AdjustmentRetried(direction string)
	// QueryCompleted registra uma consulta ad-hoc (by_column, by_price_range, resolve).
	QueryCompleted(query, outcome string, results int)
}

// PrometheusRecorder implementa Recorder com client_golang num registry próprio,
// evitando colisão com o registry global em testes.
type PrometheusRecorder struct {
	registry       *prometheus.Registry
	adjustments    *prometheus.CounterVec
	adjustDuration *prometheus.HistogramVec
	retries        *prometheus.CounterVec
	queries        *prometheus.CounterVec
	queryResults   *prometheus.HistogramVec
}

// NewPrometheusRecorder cria e registra as métricas sob o namespace informado.
func NewPrometheusRecorder(namespace string) *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "inventory", Name: "adjustments_total",
			Help: "Ajustes de estoque por direção e resultado.",
		}, []string{"direction", "outcome"}),
		adjustDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "inventory", Name: "adjustment_duration_seconds",
			Help:    "Duração dos ajustes de estoque, incluindo re-tentativas.",
			Buckets: prometheus.DefBuckets,
		}, []string{"direction"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "inventory", Name: "adjustment_retries_total",
			Help: "Re-tentativas de ajuste após falha de persistência.",
		}, []string{"direction"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "inventory", Name: "queries_total",
			Help: "Consultas de inventário por tipo e resultado.",
		}, []string{"query", "outcome"}),
		queryResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "inventory", Name: "query_result_rows",
			Help:    "Quantidade de linhas retornadas pelas consultas.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}, []string{"query"}),
	}

	r.registry.MustRegister(
		r.adjustments, r.adjustDuration, r.retries, r.queries, r.queryResults,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *PrometheusRecorder) AdjustmentCompleted(direction, outcome string, elapsed time.Duration) {
	r.adjustments.WithLabelValues(direction, outcome).Inc()
	r.adjustDuration.WithLabelValues(direction).Observe(elapsed.Seconds())
}

func (r *PrometheusRecorder) AdjustmentRetried(direction string) {
	r.retries.WithLabelValues(direction).Inc()
}

func (r *PrometheusRecorder) QueryCompleted(query, outcome string, results int) {
	r.queries.WithLabelValues(query, outcome).Inc()
	if outcome == "success" {
		r.queryResults.WithLabelValues(query).Observe(float64(results))
	}
}

// Registry expõe o registry para testes (testutil) e composição.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serve o endpoint /metrics.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Nop descarta as métricas.
type Nop struct{}

func (Nop) AdjustmentCompleted(string, string, time.Duration) {}
func (Nop) AdjustmentRetried(string)                          {}
func (Nop) QueryCompleted(string, string, int)                {}
