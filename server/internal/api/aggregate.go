package api

import "github.com/datapipeline/pipelinemanager/pkg/types"

// avgExecutionTime is reported as-is by the dashboard; it is not derived
// from pipeline data.
const avgExecutionTime = "2m 15s"

// summary holds the counts shared by the dashboard and metrics endpoints.
type summary struct {
	total       int
	active      int
	failed      int
	pending     int
	successRate float64 // mean of Pipeline.SuccessRate, 0 when there are no pipelines
}

func summarize(ps []types.Pipeline) summary {
	s := summary{total: len(ps)}
	if len(ps) == 0 {
		return s
	}

	var totalRate float64
	for _, p := range ps {
		totalRate += p.SuccessRate
		switch p.Status {
		case types.StatusActive:
			s.active++
		case types.StatusFailed:
			s.failed++
		case types.StatusDraft:
			s.pending++
		}
	}
	s.successRate = totalRate / float64(len(ps))
	return s
}

func buildDashboardStats(ps []types.Pipeline) types.DashboardStats {
	s := summarize(ps)
	return types.DashboardStats{
		TotalPipelines:   s.total,
		ActivePipelines:  s.active,
		FailedPipelines:  s.failed,
		PendingPipelines: s.pending,
		SuccessRate:      s.successRate,
		AvgExecutionTime: avgExecutionTime,
	}
}

func buildPipelineMetrics(ps []types.Pipeline) types.PipelineMetrics {
	s := summarize(ps)
	return types.PipelineMetrics{
		ExecutionsTotal: s.total,
		SuccessRate:     s.successRate,
		ActivePipelines: s.active,
		FailedPipelines: s.failed,
	}
}
