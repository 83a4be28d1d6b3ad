package datasync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "botdesk_sync_operations_total",
		Help: "Mutations applied per collection and operation.",
	}, []string{"collection", "op"})

	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "botdesk_sync_loads_total",
		Help: "Collection loads by data source.",
	}, []string{"collection", "source"})

	remoteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "botdesk_remote_errors_total",
		Help: "Remote store failures by classified kind.",
	}, []string{"kind"})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "botdesk_sync_queue_depth",
		Help: "Operations waiting in the write queue.",
	})
)
