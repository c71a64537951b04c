package simulate

import (
	"time"

	"github.com/datapipeline/pipelinemanager/pkg/types"
)

// Range is an inclusive integer interval.
type Range struct{ Min, Max int }

// Ranges for simulated system metrics.
var (
	CPUUsageRange          = Range{20, 80}
	MemoryUsageRange       = Range{40, 90}
	DiskUsageRange         = Range{10, 50}
	NetworkThroughputRange = Range{100, 200}
	ActiveConnectionsRange = Range{50, 300}
	ResponseTimeRange      = Range{100, 500}
	ThroughputRange        = Range{1000, 2000}

	// ErrorRateMax bounds the continuous error-rate draw, [0, ErrorRateMax].
	ErrorRateMax = 2.0
)

// Ranges for simulated quality trends and executions.
var (
	CompletenessRange     = Range{90, 100}
	AccuracyRange         = Range{85, 95}
	ConsistencyRange      = Range{88, 98}
	RecordsProcessedRange = Range{1000, 100000}
)

// TrendDays is the number of entries QualityTrends returns.
const TrendDays = 7

func (r Range) draw(src Source) int { return src.Int(r.Min, r.Max) }

// Contains reports whether v lies in r.
func (r Range) Contains(v int) bool { return v >= r.Min && v <= r.Max }

// SystemMetrics draws one resource-usage snapshot.
func SystemMetrics(src Source) types.SystemMetrics {
	return types.SystemMetrics{
		CPUUsage:          CPUUsageRange.draw(src),
		MemoryUsage:       MemoryUsageRange.draw(src),
		DiskUsage:         DiskUsageRange.draw(src),
		NetworkThroughput: NetworkThroughputRange.draw(src),
		ActiveConnections: ActiveConnectionsRange.draw(src),
		ErrorRate:         src.Float(0, ErrorRateMax),
		ResponseTime:      ResponseTimeRange.draw(src),
		Throughput:        ThroughputRange.draw(src),
	}
}

// QualityTrends returns TrendDays entries, today first, each one calendar
// day before the previous.
func QualityTrends(src Source, now time.Time) []types.QualityTrend {
	today := types.NewDate(now)
	out := make([]types.QualityTrend, 0, TrendDays)
	for i := 0; i < TrendDays; i++ {
		out = append(out, types.QualityTrend{
			Date:         today.AddDays(-i),
			Completeness: CompletenessRange.draw(src),
			Accuracy:     AccuracyRange.draw(src),
			Consistency:  ConsistencyRange.draw(src),
		})
	}
	return out
}

// ExecutionDuration is the fixed run length used for derived end times.
const ExecutionDuration = 2 * time.Minute

// Executions derives one execution record per pipeline that has run.
// Pipelines with a nil LastRun are skipped.
func Executions(src Source, pipelines []types.Pipeline) []types.Execution {
	out := make([]types.Execution, 0, len(pipelines))
	for _, p := range pipelines {
		if p.LastRun == nil {
			continue
		}
		out = append(out, types.Execution{
			ID:               p.ID,
			PipelineName:     p.Name,
			Status:           p.Status,
			StartTime:        *p.LastRun,
			EndTime:          p.LastRun.Add(ExecutionDuration),
			Duration:         p.AvgDuration,
			RecordsProcessed: RecordsProcessedRange.draw(src),
		})
	}
	return out
}
