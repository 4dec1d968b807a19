package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики выполнения workflows. Экспортируются runner-ом на /metrics.
var (
	// ExecutionsStarted — количество начатых executions.
	ExecutionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowgrid_executions_started_total",
		Help: "Total number of workflow executions started",
	})

	// ExecutionsCompleted — количество завершённых executions по статусу.
	ExecutionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowgrid_executions_completed_total",
		Help: "Total number of workflow executions completed, by status",
	}, []string{"status"})

	// NodeDuration — длительность выполнения узлов по типу.
	NodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flowgrid_node_duration_seconds",
		Help:    "Node execution duration in seconds, by node type",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	// NodeErrors — количество ошибок узлов по типу.
	NodeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowgrid_node_errors_total",
		Help: "Total number of node execution errors, by node type",
	}, []string{"type"})
)
