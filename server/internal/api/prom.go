package api

import (
	"log/slog"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/datapipeline/pipelinemanager/pkg/types"
)

// Prometheus metric names. The first four mirror the JSON fields of
// GET /api/metrics/pipeline.
const (
	metricExecutionsTotal = "pipeline_executions_total"
	metricSuccessRate     = "pipeline_success_rate"
	metricActive          = "active_pipelines"
	metricFailed          = "failed_pipelines"
	metricByStatus        = "pipelines"
	metricAlertsActive    = "pipeline_alerts_active"
)

var allStatuses = []types.PipelineStatus{
	types.StatusActive, types.StatusPaused, types.StatusDraft, types.StatusFailed,
}

// prometheus returns GET /metrics in the exposition format negotiated from
// the Accept header (text by default).
func (h *Handler) prometheus(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	format := expfmt.Negotiate(r.Header)
	w.Header().Set("Content-Type", string(format))
	w.WriteHeader(http.StatusOK)

	enc := expfmt.NewEncoder(w, format)
	for _, mf := range h.metricFamilies() {
		if err := enc.Encode(mf); err != nil {
			slog.Warn("api: encode metric family failed", "family", mf.GetName(), "err", err)
			return
		}
	}
	if c, ok := enc.(expfmt.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Warn("api: close metrics encoder failed", "err", err)
		}
	}
}

// metricFamilies snapshots the catalog as Prometheus metric families.
func (h *Handler) metricFamilies() []*dto.MetricFamily {
	ps := h.repo.Pipelines()
	s := summarize(ps)

	byStatus := make(map[types.PipelineStatus]int, len(allStatuses))
	for _, p := range ps {
		byStatus[p.Status]++
	}
	statusMetrics := make([]*dto.Metric, 0, len(allStatuses))
	for _, st := range allStatuses {
		statusMetrics = append(statusMetrics, &dto.Metric{
			Label: []*dto.LabelPair{{Name: proto.String("status"), Value: proto.String(string(st))}},
			Gauge: &dto.Gauge{Value: proto.Float64(float64(byStatus[st]))},
		})
	}

	var activeAlerts int
	for _, a := range h.repo.Alerts() {
		if a.Status == "active" {
			activeAlerts++
		}
	}

	return []*dto.MetricFamily{
		{
			Name:   proto.String(metricExecutionsTotal),
			Help:   proto.String("Number of pipelines registered."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(float64(s.total))}}},
		},
		gauge(metricSuccessRate, "Mean success rate across all pipelines (0-100).", s.successRate),
		gauge(metricActive, "Pipelines with status active.", float64(s.active)),
		gauge(metricFailed, "Pipelines with status failed.", float64(s.failed)),
		{
			Name:   proto.String(metricByStatus),
			Help:   proto.String("Pipelines by status."),
			Type:   dto.MetricType_GAUGE.Enum(),
			Metric: statusMetrics,
		},
		gauge(metricAlertsActive, "Alerts currently active.", float64(activeAlerts)),
	}
}

func gauge(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(v)}}},
	}
}
