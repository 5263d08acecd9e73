package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-metrics handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}

// Application metrics. Cycle and task counters are incremented by the
// scheduler; generation counters by the generation service.
var (
	SchedulerCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_scheduler_cycles_total",
		Help: "Number of scheduler cycle invocations by kind and outcome.",
	}, []string{"kind", "outcome"})

	SchedulerTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_scheduler_tasks_total",
		Help: "Number of fanned-out scheduler tasks by kind and outcome.",
	}, []string{"kind", "outcome"})

	GenerationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_generation_requests_total",
		Help: "Number of persona-service generation calls by intent and outcome.",
	}, []string{"intent", "outcome"})

	GenerationFragments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "murmur_generation_fragments_total",
		Help: "Number of streamed text fragments consumed from the persona service.",
	})

	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_redis_errors_total",
		Help: "Number of Redis command errors by command.",
	}, []string{"command"})

	CounterCorrections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "murmur_counter_corrections_total",
		Help: "Number of posts whose comment_count was corrected by the reconciliation pass.",
	})
)
