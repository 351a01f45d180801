package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	orderingShifts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "groodo",
		Subsystem: "ordering",
		Name:      "shifts_total",
		Help:      "Total number of bulk order_index shifts broken down by operation.",
	}, []string{"op"})

	hierarchyRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "groodo",
		Subsystem: "hierarchy",
		Name:      "rejections_total",
		Help:      "Total number of rejected parent assignments broken down by entity and reason.",
	}, []string{"entity", "reason"})
)

func recordShift(op string) {
	orderingShifts.WithLabelValues(op).Inc()
}

func recordRejection(entity, reason string) {
	hierarchyRejections.WithLabelValues(entity, reason).Inc()
}
