package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/force"
)

// Registry holds the process counters. All methods accept a nil receiver
// so callers can run without metrics.
type Registry struct {
	registry *prometheus.Registry

	Ticks          prometheus.Counter
	Alpha          prometheus.Gauge
	Nodes          prometheus.Gauge
	Energy         prometheus.Gauge
	TickDuration   prometheus.Histogram
	ModeSwitches   *prometheus.CounterVec
	RecordsDropped *prometheus.CounterVec
	NumericFaults  prometheus.Counter
	HoverEvents    *prometheus.CounterVec
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Registry{
		registry: reg,
		Ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "bubbles_ticks_total",
			Help: "Simulation ticks that moved the layout",
		}),
		Alpha: f.NewGauge(prometheus.GaugeOpts{
			Name: "bubbles_alpha",
			Help: "Current simulation temperature",
		}),
		Nodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "bubbles_nodes",
			Help: "Number of nodes in the layout",
		}),
		Energy: f.NewGauge(prometheus.GaugeOpts{
			Name: "bubbles_kinetic_energy",
			Help: "Kinetic energy reported by the latest tick",
		}),
		TickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bubbles_tick_duration_seconds",
			Help:    "Wall time spent in one simulation tick",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		ModeSwitches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bubbles_mode_switches_total",
			Help: "Layout mode switches by resolved mode",
		}, []string{"mode"}),
		RecordsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bubbles_records_dropped_total",
			Help: "Input records skipped during node building",
		}, []string{"reason"}),
		NumericFaults: f.NewCounter(prometheus.CounterOpts{
			Name: "bubbles_numeric_faults_total",
			Help: "Per-node numeric faults recovered during ticks",
		}),
		HoverEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bubbles_hover_events_total",
			Help: "Pointer hover transitions",
		}, []string{"kind"}),
	}
}

func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Registry) ObserveTick(rep force.TickReport, took time.Duration, nodes int) {
	if r == nil {
		return
	}
	r.Alpha.Set(rep.Alpha)
	r.Nodes.Set(float64(nodes))
	r.Ticks.Inc()
	r.Energy.Set(rep.Energy)
	r.TickDuration.Observe(took.Seconds())
	r.NumericFaults.Add(float64(len(rep.Faults)))
}

func (r *Registry) ModeSwitched(mode string) {
	if r == nil {
		return
	}
	r.ModeSwitches.WithLabelValues(mode).Inc()
}

func (r *Registry) Dropped(errs []error) {
	if r == nil {
		return
	}
	for _, err := range errs {
		r.RecordsDropped.WithLabelValues(dropReason(err)).Inc()
	}
}

func (r *Registry) Hover(kind string) {
	if r == nil {
		return
	}
	r.HoverEvents.WithLabelValues(kind).Inc()
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, bubble.ErrMissingID):
		return "missing_id"
	case errors.Is(err, bubble.ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, bubble.ErrParse):
		return "parse"
	}
	return "other"
}
