package reconcile

import "github.com/prometheus/client_golang/prometheus"

// Outcomes of a single allocation during a fan-out.
const (
	OutcomeCreated         = "created"
	OutcomeRateUnavailable = "rate_unavailable"
	OutcomeNotPositive     = "not_positive"
	OutcomeGoalArchived    = "goal_archived"
)

var contributionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconcile_contributions_total",
		Help: "How many allocations were processed by the fan-out, partitioned by outcome.",
	},
	[]string{"outcome"},
)

var runsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconcile_runs_total",
		Help: "How many deposits and reconciliations were processed, partitioned by result.",
	},
	[]string{"result"},
)

// Collectors returns all metrics of the package for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		contributionsTotal,
		runsTotal,
	}
}
