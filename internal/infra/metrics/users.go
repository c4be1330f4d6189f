package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		usersRegisteredTotal,
		loginsTotal,
	)
}

var (
	usersRegisteredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total number of new users registered, by role.",
		},
		[]string{"role"},
	)

	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Login attempts by result.",
		},
		[]string{"result"}, // 'ok', 'bad_credentials', 'inactive', 'throttled'
	)
)

func IncUsersRegistered(role string) {
	usersRegisteredTotal.WithLabelValues(norm(role)).Inc()
}

func IncLogin(result string) {
	loginsTotal.WithLabelValues(norm(result)).Inc()
}
