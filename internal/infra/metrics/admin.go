package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(adminActionsTotal) }

var adminActionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "admin_actions_total",
		Help: "Administrative subscription actions by outcome.",
	},
	[]string{"action", "status"}, // status: 'ok', 'error'
)

func IncAdminAction(action string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	adminActionsTotal.WithLabelValues(norm(action), status).Inc()
}
