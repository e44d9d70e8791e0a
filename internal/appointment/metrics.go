package appointment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "appointments_booked_total",
		Help: "Appointments created in the pending state",
	})

	decidedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appointment_transitions_total",
			Help: "Appointments moved out of pending, by resulting status",
		},
		[]string{"status"},
	)
)
