package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CounterUpdateFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "social_counter_update_failures_total",
		Help: "Activity counter updates that failed and were skipped.",
	}, []string{"table"})

	NotificationsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "social_notifications_emitted_total",
		Help: "Notifications persisted, by type.",
	}, []string{"type"})

	ChatDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "social_chat_deliveries_total",
		Help: "Chat payloads handed to a session, by route.",
	}, []string{"route"})

	ChatSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "social_chat_sessions",
		Help: "Chat sessions registered on this instance.",
	})
)

func init() {
	prometheus.MustRegister(CounterUpdateFailures, NotificationsEmitted, ChatDeliveries, ChatSessions)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
