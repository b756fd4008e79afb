// Package metrics exposes Prometheus instruments for the server and the
// background monitor.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every instrument on its own registry. All methods are
// safe on a nil *Collector, which records nothing.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	dosesLogged   prometheus.Counter
	dosesRejected *prometheus.CounterVec

	ticks         prometheus.Counter
	warnings      *prometheus.CounterVec
	concentration *prometheus.GaugeVec
	synergy       prometheus.Gauge
	toleranceRisk prometheus.Gauge
	circadian     prometheus.Gauge
}

// NewCollector creates and registers all instruments under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		dosesLogged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "doses_logged_total",
			Help:      "Doses accepted into the ledger",
		}),
		dosesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "doses_rejected_total",
			Help:      "Doses refused, by reason",
		}, []string{"reason"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monitor_ticks_total",
			Help:      "Completed threshold monitor evaluations",
		}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_raised_total",
			Help:      "Newly raised warnings, by compound and kind",
		}, []string{"compound", "kind"}),
		concentration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "concentration_mg",
			Help:      "Active concentration at the last monitor tick",
		}, []string{"compound"}),
		synergy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "synergy_score",
			Help:      "Active synergistic compound pairs",
		}),
		toleranceRisk: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tolerance_risk",
			Help:      "Compounds above 80% of their daily maximum",
		}),
		circadian: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circadian_alignment",
			Help:      "Circadian alignment of the current hour (0, 0.5 or 1)",
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests, c.httpDuration,
		c.dosesLogged, c.dosesRejected,
		c.ticks, c.warnings, c.concentration,
		c.synergy, c.toleranceRisk, c.circadian,
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordHTTP records one served request.
func (c *Collector) RecordHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// DoseLogged counts an accepted dose.
func (c *Collector) DoseLogged() {
	if c == nil {
		return
	}
	c.dosesLogged.Inc()
}

// DoseRejected counts a refused dose.
func (c *Collector) DoseRejected(reason string) {
	if c == nil {
		return
	}
	c.dosesRejected.WithLabelValues(reason).Inc()
}

// WarningRaised counts a warning that was not active on the previous tick.
func (c *Collector) WarningRaised(compound, kind string) {
	if c == nil {
		return
	}
	c.warnings.WithLabelValues(compound, kind).Inc()
}

// ObserveTick records the levels and scores of one monitor tick.
func (c *Collector) ObserveTick(levels map[string]float64, synergy, toleranceRisk int, circadian float64) {
	if c == nil {
		return
	}
	c.ticks.Inc()
	for id, mg := range levels {
		c.concentration.WithLabelValues(id).Set(mg)
	}
	c.synergy.Set(float64(synergy))
	c.toleranceRisk.Set(float64(toleranceRisk))
	c.circadian.Set(circadian)
}
