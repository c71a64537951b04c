package api

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/datapipeline/pipelinemanager/pkg/types"
	"github.com/datapipeline/pipelinemanager/server/internal/simulate"
	"github.com/datapipeline/pipelinemanager/server/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Version is reported by GET /.
const Version = "1.0.0"

// maxBodyBytes caps the size of a create request body.
const maxBodyBytes = 1 << 20

const (
	errPipelineNotFound = "Pipeline not found"
	errInvalidJSON      = "invalid JSON body"
)

// Handler is the HTTP handler for the / and /api/* endpoints.
// It reads the catalog from the repository and draws simulated figures from
// the metric source.
type Handler struct {
	repo store.Repository
	src  simulate.Source
	now  func() time.Time
	mux  *http.ServeMux
}

// Option customises a Handler.
type Option func(*Handler)

// WithClock replaces time.Now for trend dates and creation dates of
// dashboard snapshots.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// New creates a Handler wired to the given repository and metric source and
// registers all routes.
func New(repo store.Repository, src simulate.Source, opts ...Option) *Handler {
	h := &Handler{repo: repo, src: src, now: time.Now, mux: http.NewServeMux()}
	for _, o := range opts {
		o(h)
	}

	h.mux.HandleFunc("/", h.index)
	h.mux.HandleFunc("/api/actuator/health", h.health)
	h.mux.HandleFunc("/api/pipelines", h.pipelines)
	h.mux.HandleFunc("/api/pipelines/", h.pipelineByID) // subtree: {id} and {id}/status
	h.mux.HandleFunc("/api/schemas", h.schemas)
	h.mux.HandleFunc("/api/quality-checks", h.qualityChecks)
	h.mux.HandleFunc("/api/metrics/pipeline", h.pipelineMetrics)
	h.mux.HandleFunc("/api/dashboard/stats", h.dashboardStats)
	h.mux.HandleFunc("/api/executions/recent", h.recentExecutions)
	h.mux.HandleFunc("/api/quality/trends", h.qualityTrends)
	h.mux.HandleFunc("/api/system/metrics", h.systemMetrics)
	h.mux.HandleFunc("/api/alerts", h.alerts)
	h.mux.HandleFunc("/metrics", h.prometheus)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Dashboard builds the payload streamed to WebSocket clients.
func (h *Handler) Dashboard() types.DashboardSnapshot {
	return types.DashboardSnapshot{
		Stats:       buildDashboardStats(h.repo.Pipelines()),
		System:      simulate.SystemMetrics(h.src),
		GeneratedAt: types.NewTimestamp(h.now()),
	}
}

// --- route handlers ---------------------------------------------------------

// index returns GET /: API metadata and the route list.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}
	if !allowGet(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, types.APIIndex{
		Message: "Data Pipeline Management System API",
		Version: Version,
		Status:  "running",
		Endpoints: map[string]string{
			"health":         "/api/actuator/health",
			"pipelines":      "/api/pipelines",
			"schemas":        "/api/schemas",
			"quality-checks": "/api/quality-checks",
			"metrics":        "/api/metrics/pipeline",
			"dashboard":      "/api/dashboard/stats",
			"executions":     "/api/executions/recent",
			"quality-trends": "/api/quality/trends",
			"system-metrics": "/api/system/metrics",
			"alerts":         "/api/alerts",
			"prometheus":     "/metrics",
		},
	})
}

// health returns GET /api/actuator/health. Always UP; no dependencies are checked.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	up := types.ComponentHealth{Status: "UP"}
	jsonResp(w, http.StatusOK, types.Health{
		Status: "UP",
		Components: types.HealthComponents{
			Database:  up,
			Redis:     up,
			DiskSpace: up,
		},
	})
}

// pipelines serves GET and POST /api/pipelines.
func (h *Handler) pipelines(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		jsonResp(w, http.StatusOK, h.repo.Pipelines())
	case http.MethodPost:
		h.createPipeline(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// createPipeline handles POST /api/pipelines. Absent fields are defaulted;
// an empty body is accepted, malformed JSON is not.
func (h *Handler) createPipeline(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonErr(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		jsonErr(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var draft types.PipelineDraft
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &draft); err != nil {
			slog.Debug("api: rejected create body", "err", err)
			jsonErr(w, http.StatusBadRequest, errInvalidJSON)
			return
		}
	}

	p := h.repo.CreatePipeline(draft)
	slog.Info("api: pipeline created", "id", p.ID, "name", p.Name)
	jsonResp(w, http.StatusCreated, p)
}

// pipelineByID serves GET /api/pipelines/{id} and GET /api/pipelines/{id}/status.
func (h *Handler) pipelineByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/pipelines/")
	if rest == "" {
		// Bare /api/pipelines/ behaves like the collection.
		h.pipelines(w, r)
		return
	}
	if !allowGet(w, r) {
		return
	}

	idPart, sub, hasSub := strings.Cut(rest, "/")
	if sub != "" && sub != "status" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}

	// "{id}/" is not a route; only {id} and {id}/status are.
	id, ok := parseID(idPart)
	if !ok || hasSub && sub == "" {
		jsonErr(w, http.StatusNotFound, errPipelineNotFound)
		return
	}
	p, ok := h.repo.Pipeline(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, errPipelineNotFound)
		return
	}

	if sub == "status" {
		jsonResp(w, http.StatusOK, types.PipelineStatusView{ID: p.ID, Status: p.Status})
		return
	}
	jsonResp(w, http.StatusOK, p)
}

// schemas returns GET /api/schemas.
func (h *Handler) schemas(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, h.repo.Schemas())
}

// qualityChecks returns GET /api/quality-checks.
func (h *Handler) qualityChecks(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, h.repo.QualityChecks())
}

// pipelineMetrics returns GET /api/metrics/pipeline.
func (h *Handler) pipelineMetrics(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, buildPipelineMetrics(h.repo.Pipelines()))
}

// dashboardStats returns GET /api/dashboard/stats.
func (h *Handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, buildDashboardStats(h.repo.Pipelines()))
}

// recentExecutions returns GET /api/executions/recent.
func (h *Handler) recentExecutions(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, simulate.Executions(h.src, h.repo.Pipelines()))
}

// qualityTrends returns GET /api/quality/trends.
func (h *Handler) qualityTrends(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, simulate.QualityTrends(h.src, h.now()))
}

// systemMetrics returns GET /api/system/metrics.
func (h *Handler) systemMetrics(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, simulate.SystemMetrics(h.src))
}

// alerts returns GET /api/alerts.
func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, h.repo.Alerts())
}

// --- helpers ----------------------------------------------------------------

// parseID accepts only canonical decimal ids: digits, no sign, no leading zero.
func parseID(s string) (int, bool) {
	if s == "" || len(s) > 1 && s[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		// overflow
		return 0, false
	}
	return id, true
}

// allowGet writes a 405 and returns false unless r is a GET or HEAD.
func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, types.ErrorResponse{Error: msg})
}
