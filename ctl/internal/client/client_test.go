package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datapipeline/pipelinemanager/pkg/types"
)

const pipelinesBody = `[
  {"id":1,"name":"Customer Data ETL","description":"d","status":"active","lastRun":"2024-01-15 10:30:00",
   "nextRun":"2024-01-15 11:30:00","successRate":95,"avgDuration":"2m 15s","schedule":"hourly","owner":"data-team","createdAt":"2024-01-01"},
  {"id":3,"name":"New Pipeline","description":"","status":"draft","lastRun":null,
   "nextRun":null,"successRate":0,"avgDuration":"0s","schedule":"manual","owner":"admin","createdAt":"2024-03-02"}
]`

const metricsBody = `# HELP pipeline_executions_total Number of pipelines registered.
# TYPE pipeline_executions_total counter
pipeline_executions_total 2
# HELP pipelines Pipelines by status.
# TYPE pipelines gauge
pipelines{status="active"} 1
pipelines{status="paused"} 1
pipelines{status="draft"} 0
# HELP pipeline_success_rate Mean success rate across all pipelines (0-100).
# TYPE pipeline_success_rate gauge
pipeline_success_rate 91.5
`

// recorded is the last request seen by fakeServer.
type recorded struct {
	mu     sync.Mutex
	method string
	header http.Header
	body   string
}

func (rec *recorded) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.method, rec.header, rec.body = r.Method, r.Header.Clone(), string(body)
}

func (rec *recorded) get() (method string, header http.Header, body string) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.method, rec.header, rec.body
}

// fakeServer answers the routes the client uses and records the last request.
func fakeServer(t *testing.T) (*Client, *recorded) {
	t.Helper()
	last := &recorded{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pipelines", func(w http.ResponseWriter, r *http.Request) {
		last.record(r)
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":3,"name":"X","status":"draft","lastRun":null,"nextRun":null,"createdAt":"2024-03-02"}`)
			return
		}
		_, _ = io.WriteString(w, pipelinesBody)
	})
	mux.HandleFunc("/api/pipelines/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Pipeline not found"}`)
	})
	mux.HandleFunc("/api/dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"totalPipelines":2,"activePipelines":1,"failedPipelines":0,"pendingPipelines":0,"successRate":91.5,"avgExecutionTime":"2m 15s"}`)
	})
	mux.HandleFunc("/api/actuator/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"UP","components":{"database":{"status":"UP"},"redis":{"status":"UP"},"diskSpace":{"status":"UP"}}}`)
	})
	mux.HandleFunc("/api/executions/recent", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"pipelineName":"Customer Data ETL","status":"active","startTime":"2024-01-15 10:30:00","endTime":"2024-01-15 10:32:00","duration":"2m 15s","recordsProcessed":5000}]`)
	})
	mux.HandleFunc("/api/alerts", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"severity":"warning","message":"m","timestamp":"2024-01-15 10:25:00","status":"active"}]`)
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		last.record(r)
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = io.WriteString(w, metricsBody)
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", time.Second)
	require.NoError(t, err)
	return c, last
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, u := range []string{"localhost:8080", "ftp://host", "://bad"} {
		_, err := New(u, 0)
		assert.Error(t, err, u)
	}
}

func TestNew_DefaultTimeout(t *testing.T) {
	c, err := New("http://localhost:8080", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}

func TestPipelines(t *testing.T) {
	c, _ := fakeServer(t)
	ps, err := c.Pipelines(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)

	assert.Equal(t, "Customer Data ETL", ps[0].Name)
	require.NotNil(t, ps[0].LastRun)
	assert.Equal(t, "2024-01-15 10:30:00", ps[0].LastRun.String())
	assert.Nil(t, ps[1].LastRun)
	assert.Equal(t, types.StatusDraft, ps[1].Status)
}

func TestPipeline_NotFound(t *testing.T) {
	c, _ := fakeServer(t)
	_, err := c.Pipeline(context.Background(), 999)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Pipeline not found", apiErr.Message)
}

func TestCreatePipeline(t *testing.T) {
	c, last := fakeServer(t)
	name := "X"
	p, err := c.CreatePipeline(context.Background(), types.PipelineDraft{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, 3, p.ID)
	method, header, body := last.get()
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "application/json", header.Get("Content-Type"))
	assert.JSONEq(t, `{"name":"X"}`, body)
}

func TestOtherEndpoints(t *testing.T) {
	c, _ := fakeServer(t)
	ctx := context.Background()

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "UP", h.Status)
	assert.Equal(t, "UP", h.Components.DiskSpace.Status)

	s, err := c.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalPipelines)
	assert.InDelta(t, 91.5, s.SuccessRate, 1e-9)

	ex, err := c.RecentExecutions(ctx)
	require.NoError(t, err)
	require.Len(t, ex, 1)
	assert.Equal(t, "2024-01-15 10:32:00", ex[0].EndTime.String())

	as, err := c.Alerts(ctx)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, "warning", as[0].Severity)
}

func TestSend_NonJSONError(t *testing.T) {
	c, _ := fakeServer(t)
	err := c.get(context.Background(), "/boom", new(interface{}))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.Contains(t, err.Error(), "502")
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, time.Second)
	require.NoError(t, err)
	_, err = c.Pipelines(context.Background())
	assert.Error(t, err)
}

func TestFetchMetrics(t *testing.T) {
	c, last := fakeServer(t)
	mfs, err := c.FetchMetrics(context.Background())
	require.NoError(t, err)

	_, header, _ := last.get()
	assert.True(t, strings.HasPrefix(header.Get("Accept"), "text/plain"))
	assert.Equal(t, 2.0, SumFamily(mfs["pipeline_executions_total"]))
	assert.Equal(t, 2.0, SumFamily(mfs["pipelines"]))
	assert.Equal(t, 91.5, SumFamily(mfs["pipeline_success_rate"]))
	assert.Zero(t, SumFamily(mfs["missing"]))
}

func TestFlatten(t *testing.T) {
	mfs, err := parseMetrics(strings.NewReader(metricsBody))
	require.NoError(t, err)

	samples := Flatten(mfs)
	require.Len(t, samples, 5)
	assert.Equal(t, "pipeline_executions_total", samples[0].Name)
	assert.Nil(t, samples[0].Labels)
	assert.Equal(t, "pipeline_success_rate", samples[1].Name)
	assert.Equal(t, "pipelines", samples[2].Name)
	assert.Equal(t, map[string]string{"status": "active"}, samples[2].Labels)
	assert.Equal(t, 1.0, samples[2].Value)
}

func TestParseMetrics_Garbage(t *testing.T) {
	for name, body := range map[string]string{
		"not prometheus":      "this is { not prometheus",
		"good then bad":       "pipeline_executions_total 2\nactive_pipelines one\n",
		"unterminated labels": "pipelines{status=\"active\" 1\n",
	} {
		mfs, err := parseMetrics(strings.NewReader(body))
		assert.Error(t, err, name)
		assert.Nil(t, mfs, name)
	}
}

func TestFetchMetrics_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>this is { not prometheus</html>")
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)
	_, err = c.FetchMetrics(context.Background())
	assert.ErrorContains(t, err, "parse prometheus text")
}
