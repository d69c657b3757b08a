// Package metrics exposes the API's Prometheus collectors.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	LeadsCaptured    prometheus.Counter
	LeadsAssigned    *prometheus.CounterVec
	LeadsUnassigned  *prometheus.CounterVec
	StatusChanges    *prometheus.CounterVec
	EventsDelivered  *prometheus.CounterVec
	RealtimeClients  prometheus.Gauge
	NotificationsOut prometheus.Counter
}

// New registers every collector on a private registry, so several
// instances can coexist in one process (tests).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		LeadsCaptured: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leadflow",
			Name:      "leads_captured_total",
			Help:      "Leads submitted through the public capture endpoint.",
		}),
		LeadsAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Name:      "leads_assigned_total",
			Help:      "Leads assigned to a provider, by algorithm.",
		}, []string{"algorithm"}),
		LeadsUnassigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Name:      "leads_unassigned_total",
			Help:      "Captured leads left without a provider, by algorithm.",
		}, []string{"algorithm"}),
		StatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Name:      "lead_status_changes_total",
			Help:      "Lead status transitions, by target status.",
		}, []string{"status"}),
		EventsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Name:      "realtime_events_delivered_total",
			Help:      "Realtime frames written to subscribed sockets, by event.",
		}, []string{"event"}),
		RealtimeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "leadflow",
			Name:      "realtime_clients",
			Help:      "Currently connected websocket clients.",
		}),
		NotificationsOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leadflow",
			Name:      "notifications_created_total",
			Help:      "Notifications persisted for dashboard users.",
		}),
	}

	reg.MustRegister(
		m.LeadsCaptured,
		m.LeadsAssigned,
		m.LeadsUnassigned,
		m.StatusChanges,
		m.EventsDelivered,
		m.RealtimeClients,
		m.NotificationsOut,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the text exposition format on a fiber route.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
