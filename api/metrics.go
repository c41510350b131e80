package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wricardo/mcp-training/astar/pathfind/service"
)

var (
	solveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astar_solve_total",
			Help: "Solve requests by outcome (found, no_path, error)",
		},
		[]string{"status"},
	)

	solveExpandedCells = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "astar_solve_expanded_cells",
			Help:    "Cells expanded per search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	solvePathLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "astar_solve_path_length",
			Help:    "Path length of successful searches",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		},
	)

	solveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "astar_solve_duration_seconds",
			Help:    "Grid build plus search time",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)
)

const statusError = "error"

func recordResult(result *service.SolveResult) {
	solveTotal.WithLabelValues(result.Status).Inc()
	solveExpandedCells.Observe(float64(result.Expanded))
	solveDuration.Observe(result.Duration.Seconds())
	if result.Found {
		solvePathLength.Observe(float64(result.PathLength))
	}
}

func recordFailure(err error) {
	if err == nil {
		return
	}
	solveTotal.WithLabelValues(statusError).Inc()
}
