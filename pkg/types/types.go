package types

// PipelineStatus is the lifecycle state of a pipeline.
type PipelineStatus string

const (
	StatusActive PipelineStatus = "active"
	StatusPaused PipelineStatus = "paused"
	StatusDraft  PipelineStatus = "draft"
	StatusFailed PipelineStatus = "failed"
)

// Schedule is how often a pipeline is meant to run.
type Schedule string

const (
	ScheduleHourly Schedule = "hourly"
	ScheduleDaily  Schedule = "daily"
	ScheduleManual Schedule = "manual"
)

// Pipeline is one entry in GET /api/pipelines.
type Pipeline struct {
	ID          int            `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Status      PipelineStatus `json:"status" yaml:"status"`
	LastRun     *Timestamp     `json:"lastRun" yaml:"last_run"`
	NextRun     *Timestamp     `json:"nextRun" yaml:"next_run"`
	SuccessRate float64        `json:"successRate" yaml:"success_rate"`
	AvgDuration string         `json:"avgDuration" yaml:"avg_duration"`
	Schedule    Schedule       `json:"schedule" yaml:"schedule"`
	Owner       string         `json:"owner" yaml:"owner"`
	CreatedAt   Date           `json:"createdAt" yaml:"created_at"`
}

// PipelineDraft is the body of POST /api/pipelines. Nil fields were absent
// from the request and take their defaults.
type PipelineDraft struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// PipelineStatusView is the payload for GET /api/pipelines/{id}/status.
type PipelineStatusView struct {
	ID     int            `json:"id"`
	Status PipelineStatus `json:"status"`
}

// Schema is a versioned data-shape descriptor.
type Schema struct {
	ID          int       `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Version     string    `json:"version" yaml:"version"`
	Description string    `json:"description" yaml:"description"`
	Status      string    `json:"status" yaml:"status"`
	Fields      int       `json:"fields" yaml:"fields"`
	LastUpdated Timestamp `json:"lastUpdated" yaml:"last_updated"`
	Owner       string    `json:"owner" yaml:"owner"`
}

// QualityCheck is a data-quality assertion with a threshold and current score.
type QualityCheck struct {
	ID           int       `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Description  string    `json:"description" yaml:"description"`
	Type         string    `json:"type" yaml:"type"`
	Status       string    `json:"status" yaml:"status"`
	Threshold    float64   `json:"threshold" yaml:"threshold"`
	CurrentScore float64   `json:"currentScore" yaml:"current_score"`
	LastRun      Timestamp `json:"lastRun" yaml:"last_run"`
	Owner        string    `json:"owner" yaml:"owner"`
}

// Alert is one entry in GET /api/alerts.
type Alert struct {
	ID        int       `json:"id" yaml:"id"`
	Severity  string    `json:"severity" yaml:"severity"` // warning | info | error
	Message   string    `json:"message" yaml:"message"`
	Timestamp Timestamp `json:"timestamp" yaml:"timestamp"`
	Status    string    `json:"status" yaml:"status"` // active | resolved
}

// Execution is a run record derived from a pipeline's lastRun.
type Execution struct {
	ID               int            `json:"id"`
	PipelineName     string         `json:"pipelineName"`
	Status           PipelineStatus `json:"status"`
	StartTime        Timestamp      `json:"startTime"`
	EndTime          Timestamp      `json:"endTime"`
	Duration         string         `json:"duration"`
	RecordsProcessed int            `json:"recordsProcessed"`
}

// QualityTrend is one day of simulated quality scores.
type QualityTrend struct {
	Date         Date `json:"date"`
	Completeness int  `json:"completeness"`
	Accuracy     int  `json:"accuracy"`
	Consistency  int  `json:"consistency"`
}

// SystemMetrics is the payload for GET /api/system/metrics.
type SystemMetrics struct {
	CPUUsage          int     `json:"cpuUsage"`
	MemoryUsage       int     `json:"memoryUsage"`
	DiskUsage         int     `json:"diskUsage"`
	NetworkThroughput int     `json:"networkThroughput"`
	ActiveConnections int     `json:"activeConnections"`
	ErrorRate         float64 `json:"errorRate"`
	ResponseTime      int     `json:"responseTime"`
	Throughput        int     `json:"throughput"`
}

// DashboardStats is the payload for GET /api/dashboard/stats.
type DashboardStats struct {
	TotalPipelines   int     `json:"totalPipelines"`
	ActivePipelines  int     `json:"activePipelines"`
	FailedPipelines  int     `json:"failedPipelines"`
	PendingPipelines int     `json:"pendingPipelines"`
	SuccessRate      float64 `json:"successRate"`
	AvgExecutionTime string  `json:"avgExecutionTime"`
}

// PipelineMetrics is the payload for GET /api/metrics/pipeline. Field names
// follow Prometheus naming rather than the camelCase used elsewhere.
type PipelineMetrics struct {
	ExecutionsTotal int     `json:"pipeline_executions_total"`
	SuccessRate     float64 `json:"pipeline_success_rate"`
	ActivePipelines int     `json:"active_pipelines"`
	FailedPipelines int     `json:"failed_pipelines"`
}

// ComponentHealth is the status of one health sub-component.
type ComponentHealth struct {
	Status string `json:"status"`
}

// HealthComponents lists the sub-components reported by the health endpoint.
type HealthComponents struct {
	Database  ComponentHealth `json:"database"`
	Redis     ComponentHealth `json:"redis"`
	DiskSpace ComponentHealth `json:"diskSpace"`
}

// Health is the payload for GET /api/actuator/health.
type Health struct {
	Status     string           `json:"status"`
	Components HealthComponents `json:"components"`
}

// APIIndex is the payload for GET /.
type APIIndex struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

// DashboardSnapshot is the payload pushed to WebSocket clients.
type DashboardSnapshot struct {
	Stats       DashboardStats `json:"stats"`
	System      SystemMetrics  `json:"system"`
	GeneratedAt Timestamp      `json:"generatedAt"`
}

// ErrorResponse is the generic JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
