// Package metrics expone las métricas Prometheus del portal.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once
	rerr error

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	gateDecisionsTotal *prometheus.CounterVec
	logoutsTotal       *prometheus.CounterVec
)

// Register inicializa y registra las métricas. Devuelve el handler de /metrics.
// Idempotente: registrar dos veces no falla.
func Register(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	once.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		gateDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gate_decisions_total",
			Help: "Decisiones de los route gates por resultado",
		}, []string{"gate", "decision"}) // decision: allow|unauthenticated|unauthorized|check_failed

		logoutsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logouts_total",
			Help: "Logouts procesados por resultado del sign-out remoto",
		}, []string{"signout"}) // signout: ok|failed|skipped

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, gateDecisionsTotal, logoutsTotal,
		} {
			if err := register(reg, c); err != nil {
				rerr = err
				return
			}
		}
	})

	if rerr != nil {
		return nil, rerr
	}
	return promhttp.Handler(), nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// ObserveRequest registra método/path/status y latencia de un request.
func ObserveRequest(method, path string, status int, seconds float64) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// GateDecision registra la decisión de un gate.
func GateDecision(gate, decision string) {
	if gateDecisionsTotal == nil {
		return
	}
	gateDecisionsTotal.WithLabelValues(gate, decision).Inc()
}

// Logout registra un logout; signout es el resultado del sign-out remoto.
func Logout(signout string) {
	if logoutsTotal == nil {
		return
	}
	logoutsTotal.WithLabelValues(signout).Inc()
}

