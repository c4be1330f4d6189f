package metrics

import (
	"cledumemoire/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		subscriptionsDeactivatedTotal,
		subscriptionsTotal,
	)
}

var (
	subscriptionsDeactivatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_deactivated_total",
			Help: "Total number of subscriptions superseded by a newer one.",
		},
	)

	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Current number of subscriptions by status.",
		},
		[]string{"status"},
	)
)

func AddSubscriptionsDeactivated(count int64) {
	if count > 0 {
		subscriptionsDeactivatedTotal.Add(float64(count))
	}
}

// SetSubscriptionsTotal sets every known status, zeroing those absent from counts.
func SetSubscriptionsTotal(counts map[model.SubscriptionStatus]int) {
	for _, status := range model.AllSubscriptionStatuses {
		subscriptionsTotal.WithLabelValues(norm(string(status))).Set(float64(counts[status]))
	}
}
