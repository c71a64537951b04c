package store

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datapipeline/pipelinemanager/pkg/types"
)

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func strPtr(s string) *string { return &s }

func TestNew_DefaultSeed(t *testing.T) {
	st := New(DefaultSeed())

	ps := st.Pipelines()
	require.Len(t, ps, 2)
	assert.Equal(t, "Customer Data ETL", ps[0].Name)
	assert.Equal(t, "Sales Analytics", ps[1].Name)
	assert.Len(t, st.Schemas(), 1)
	assert.Len(t, st.QualityChecks(), 1)
	assert.Len(t, st.Alerts(), 2)
}

func TestPipeline_Lookup(t *testing.T) {
	st := New(DefaultSeed())

	p, ok := st.Pipeline(1)
	require.True(t, ok)
	assert.Equal(t, "Customer Data ETL", p.Name)

	_, ok = st.Pipeline(999)
	assert.False(t, ok)
}

func TestCreatePipeline_Defaults(t *testing.T) {
	st := New(DefaultSeed())
	st.now = fixedClock(time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC))

	p := st.CreatePipeline(types.PipelineDraft{})

	assert.Equal(t, 3, p.ID)
	assert.Equal(t, DefaultPipelineName, p.Name)
	assert.Equal(t, "", p.Description)
	assert.Equal(t, types.StatusDraft, p.Status)
	assert.Nil(t, p.LastRun)
	assert.Nil(t, p.NextRun)
	assert.Zero(t, p.SuccessRate)
	assert.Equal(t, "0s", p.AvgDuration)
	assert.Equal(t, types.ScheduleManual, p.Schedule)
	assert.Equal(t, "admin", p.Owner)
	assert.Equal(t, "2025-06-30", p.CreatedAt.String())
}

func TestCreatePipeline_KeepsExplicitEmptyName(t *testing.T) {
	st := New(DefaultSeed())
	p := st.CreatePipeline(types.PipelineDraft{Name: strPtr(""), Description: strPtr("d")})
	assert.Equal(t, "", p.Name)
	assert.Equal(t, "d", p.Description)
}

func TestCreatePipeline_AppendsInOrder(t *testing.T) {
	st := New(DefaultSeed())
	st.CreatePipeline(types.PipelineDraft{Name: strPtr("X")})
	st.CreatePipeline(types.PipelineDraft{Name: strPtr("Y")})

	ps := st.Pipelines()
	require.Len(t, ps, 4)
	assert.Equal(t, "X", ps[2].Name)
	assert.Equal(t, 3, ps[2].ID)
	assert.Equal(t, "Y", ps[3].Name)
	assert.Equal(t, 4, ps[3].ID)
}

func TestCreatePipeline_IDIndependentOfLength(t *testing.T) {
	// A gap in seeded ids must not lead to a collision.
	st := New(Seed{Pipelines: []types.Pipeline{{ID: 1}, {ID: 5}}})
	p := st.CreatePipeline(types.PipelineDraft{})
	assert.Equal(t, 6, p.ID)
}

func TestCreatePipeline_EmptySeed(t *testing.T) {
	st := New(Seed{})
	assert.Equal(t, 1, st.CreatePipeline(types.PipelineDraft{}).ID)
}

func TestPipelines_ReturnsCopy(t *testing.T) {
	st := New(DefaultSeed())
	ps := st.Pipelines()
	ps[0].Name = "mutated"

	p, _ := st.Pipeline(1)
	assert.Equal(t, "Customer Data ETL", p.Name)
}

func TestEmptyCollections_NotNil(t *testing.T) {
	st := New(Seed{})
	assert.NotNil(t, st.Pipelines())
	assert.NotNil(t, st.Schemas())
	assert.NotNil(t, st.QualityChecks())
	assert.NotNil(t, st.Alerts())
}

func TestConcurrentCreates_UniqueIDs(t *testing.T) {
	st := New(DefaultSeed())
	const n = 100

	var wg sync.WaitGroup
	ids := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- st.CreatePipeline(types.PipelineDraft{}).ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, st.Pipelines(), n+2)
}

func TestConcurrentMixedOps(t *testing.T) {
	st := New(DefaultSeed())
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			st.CreatePipeline(types.PipelineDraft{})
		}()
		go func() {
			defer wg.Done()
			st.Pipelines()
		}()
	}
	wg.Wait()
}

// --- seed file --------------------------------------------------------------

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadSeed_Full(t *testing.T) {
	p := writeSeed(t, `pipelines:
  - id: 10
    name: Inventory Sync
    description: Nightly inventory reconciliation
    status: failed
    last_run: "2024-02-01 02:00:00"
    next_run: null
    success_rate: 41.5
    avg_duration: 12m 3s
    schedule: daily
    owner: ops
    created_at: "2024-01-20"
schemas:
  - id: 1
    name: Inventory Schema
    version: 2.1.0
    fields: 8
    last_updated: "2024-01-21 09:00:00"
alerts:
  - id: 1
    severity: error
    message: Inventory Sync failed
    timestamp: "2024-02-01 02:04:00"
    status: active
`)
	seed, err := LoadSeed(p)
	require.NoError(t, err)

	require.Len(t, seed.Pipelines, 1)
	pl := seed.Pipelines[0]
	assert.Equal(t, 10, pl.ID)
	assert.Equal(t, types.StatusFailed, pl.Status)
	require.NotNil(t, pl.LastRun)
	assert.Equal(t, "2024-02-01 02:00:00", pl.LastRun.String())
	assert.Nil(t, pl.NextRun)
	assert.Equal(t, 41.5, pl.SuccessRate)
	assert.Equal(t, "2024-01-20", pl.CreatedAt.String())

	require.Len(t, seed.Schemas, 1)
	assert.Equal(t, 8, seed.Schemas[0].Fields)
	assert.Empty(t, seed.QualityChecks)
	require.Len(t, seed.Alerts, 1)
	assert.Equal(t, "error", seed.Alerts[0].Severity)

	st := New(seed)
	assert.Equal(t, 11, st.CreatePipeline(types.PipelineDraft{}).ID)
}

func TestLoadSeed_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"duplicate id", "pipelines:\n  - {id: 1, status: active, schedule: daily}\n  - {id: 1, status: active, schedule: daily}\n"},
		{"zero id", "pipelines:\n  - {id: 0, status: active, schedule: daily}\n"},
		{"bad status", "pipelines:\n  - {id: 1, status: running, schedule: daily}\n"},
		{"bad schedule", "pipelines:\n  - {id: 1, status: active, schedule: weekly}\n"},
		{"bad rate", "pipelines:\n  - {id: 1, status: active, schedule: daily, success_rate: 120}\n"},
		{"bad timestamp", "pipelines:\n  - {id: 1, status: active, schedule: daily, last_run: yesterday}\n"},
		{"bad yaml", "pipelines: [\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadSeed(writeSeed(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := LoadSeed("/nonexistent/seed.yaml")
	assert.Error(t, err)
}
