package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

type Metrics struct {
	pagesRegistered *prometheus.CounterVec
	unroutablePaths prometheus.Counter
	tasksProcessed  *prometheus.CounterVec
	pageRequests    *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		pagesRegistered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_registered_total",
			Help:      "Pages published by registration passes",
		}, []string{"template"}),

		unroutablePaths: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unroutable_paths_total",
			Help:      "Static paths skipped because they match no route",
		}),

		tasksProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_processed_total",
			Help:      "Registration tasks consumed by workers",
		}, []string{"task_type", "result"}),

		pageRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_requests_total",
			Help:      "Page resolutions served",
		}, []string{"template", "status"}),
	}
}

func (m *Metrics) PageRegistered(template string) {
	m.pagesRegistered.WithLabelValues(template).Inc()
}

func (m *Metrics) UnroutablePaths(n int) {
	m.unroutablePaths.Add(float64(n))
}

func (m *Metrics) TaskProcessed(taskType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.tasksProcessed.WithLabelValues(taskType, result).Inc()
}

func (m *Metrics) PageServed(template string, status int) {
	m.pageRequests.WithLabelValues(template, strconv.Itoa(status)).Inc()
}
