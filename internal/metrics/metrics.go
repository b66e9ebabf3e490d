// Package metrics exposes hierarchy maintenance counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "scenegraph"

// Metrics holds every collector, registered on its own registry so tests
// and multiple scenes do not collide on the default one.
type Metrics struct {
	Registry *prometheus.Registry

	// MaintainDuration measures one Maintain call.
	MaintainDuration prometheus.Histogram
	// Changes counts entities handled per maintenance step.
	// Labels: kind (inserted, reparented, removed, modified)
	Changes *prometheus.CounterVec
	// Tracked is the length of the sorted sequence after the last pass.
	Tracked prometheus.Gauge
	// LogRetained is the number of uncompacted entries per change log.
	// Labels: log (hierarchy, parents)
	LogRetained *prometheus.GaugeVec
	// ScriptErrors counts failed on_tick calls.
	ScriptErrors prometheus.Counter
	// Ticks counts completed ticks.
	Ticks prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		MaintainDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "hierarchy",
			Name:      "maintain_duration_seconds",
			Help:      "Time spent in one hierarchy maintenance pass",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		Changes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hierarchy",
			Name:      "changes_total",
			Help:      "Entities handled by hierarchy maintenance, by kind",
		}, []string{"kind"}),
		Tracked: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hierarchy",
			Name:      "tracked_entities",
			Help:      "Entities in the sorted hierarchy",
		}),
		LogRetained: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "retained",
			Help:      "Change log entries not yet compacted",
		}, []string{"log"}),
		ScriptErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "script",
			Name:      "errors_total",
			Help:      "Failed on_tick calls",
		}),
		Ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Completed simulation ticks",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
