// Package metrics exposes register counters in Prometheus format. It listens
// to the same events as the WebSocket hub.
package metrics

import (
	"net/http"

	"burgerpos/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "burgerpos"

type Recorder struct {
	registry *prometheus.Registry

	salesCommitted   *prometheus.CounterVec
	salesRevenue     prometheus.Counter
	salesVoided      prometheus.Counter
	checkoutRejected *prometheus.CounterVec
	shiftsOpened     prometheus.Counter
	snapshotWrites   *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		salesCommitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_committed_total",
			Help:      "Sales committed, by payment method.",
		}, []string{"method"}),
		salesRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_revenue_total",
			Help:      "Sum of committed sale totals.",
		}),
		salesVoided: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_voided_total",
			Help:      "Sales removed by an administrator.",
		}),
		checkoutRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_rejected_total",
			Help:      "Checkouts rejected, by error kind.",
		}, []string{"kind"}),
		shiftsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shifts_opened_total",
			Help:      "Shifts opened.",
		}),
		snapshotWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_writes_total",
			Help:      "Snapshot write attempts, by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route and status class.",
		}, []string{"route", "status"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.salesCommitted, r.salesRevenue, r.salesVoided, r.checkoutRejected,
		r.shiftsOpened, r.snapshotWrites, r.httpRequests,
	)
	return r
}

// Changed implements service.ChangeSink.
func (r *Recorder) Changed(ev model.Event) {
	switch ev.Type {
	case model.EventSaleCommitted:
		if sale, ok := ev.Data.(model.Sale); ok {
			r.salesCommitted.WithLabelValues(sale.PaymentMethod).Inc()
			r.salesRevenue.Add(sale.Total.InexactFloat64())
		}
	case model.EventSaleVoided:
		r.salesVoided.Inc()
	case model.EventShiftOpened:
		r.shiftsOpened.Inc()
	case model.EventCheckoutRejected:
		kind := "unknown"
		if m, ok := ev.Data.(map[string]any); ok {
			if k, ok := m["kind"].(string); ok && k != "" {
				kind = k
			}
		}
		r.checkoutRejected.WithLabelValues(kind).Inc()
	}
}

// SnapshotFlushed counts a snapshot write attempt.
func (r *Recorder) SnapshotFlushed(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.snapshotWrites.WithLabelValues(result).Inc()
}

// ObserveRequest counts one HTTP request. status is grouped as 2xx, 4xx…
func (r *Recorder) ObserveRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(route, statusClass(status)).Inc()
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Handler serves the registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
