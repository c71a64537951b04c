package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datapipeline/pipelinemanager/pkg/types"
	wsHub "github.com/datapipeline/pipelinemanager/server/internal/ws"
)

const testInterval = 20 * time.Millisecond

// --- helpers ----------------------------------------------------------------

// fakeSource reports a pipeline count that tests can change between ticks.
type fakeSource struct {
	total atomic.Int64
}

func (f *fakeSource) Dashboard() types.DashboardSnapshot {
	return types.DashboardSnapshot{
		Stats:       types.DashboardStats{TotalPipelines: int(f.total.Load()), AvgExecutionTime: "2m 15s"},
		System:      types.SystemMetrics{CPUUsage: 42},
		GeneratedAt: types.NewTimestamp(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)),
	}
}

func newSource(total int) *fakeSource {
	f := &fakeSource{}
	f.total.Store(int64(total))
	return f
}

// startHub starts a test HTTP server with the hub as its handler and runs
// the hub with a cancellable context.
func startHub(t *testing.T, src wsHub.Source, opts ...wsHub.Option) (wsURL string, hub *wsHub.Hub, cancel func()) {
	t.Helper()

	hub = wsHub.New(src, testInterval, opts...)
	ctx, cancelFn := context.WithCancel(context.Background())

	srv := httptest.NewServer(hub)
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancelFn()
		srv.Close()
	})

	wsURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	return wsURL, hub, cancelFn
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "dial %s", wsURL)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessage reads one dashboard message from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) wsHub.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var m wsHub.Message
	require.NoError(t, json.Unmarshal(raw, &m), "body: %s", raw)
	return m
}

// --- tests ------------------------------------------------------------------

func TestHub_Connect_ReceivesImmediateSnapshot(t *testing.T) {
	wsURL, _, _ := startHub(t, newSource(2))

	conn := dial(t, wsURL)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "dashboard", m["event"])
	data, ok := m["data"].(map[string]interface{})
	require.True(t, ok, "data: missing or wrong type")
	assert.Equal(t, "2024-01-15 10:30:00", data["generatedAt"])
	stats := data["stats"].(map[string]interface{})
	assert.EqualValues(t, 2, stats["totalPipelines"])
	system := data["system"].(map[string]interface{})
	assert.EqualValues(t, 42, system["cpuUsage"])
}

func TestHub_CountClients(t *testing.T) {
	wsURL, hub, _ := startHub(t, newSource(0))

	for i := 0; i < 3; i++ {
		conn := dial(t, wsURL)
		readMessage(t, conn) // consume initial message
	}

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 3, hub.Count())
}

func TestHub_CountClients_DecreasesOnDisconnect(t *testing.T) {
	wsURL, hub, _ := startHub(t, newSource(0))

	conn := dial(t, wsURL)
	readMessage(t, conn)
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, 1, hub.Count())

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ReceivesBroadcastOnTick(t *testing.T) {
	src := newSource(2)
	wsURL, _, _ := startHub(t, src)

	conn := dial(t, wsURL)
	require.Equal(t, 2, readMessage(t, conn).Data.Stats.TotalPipelines)

	src.total.Store(3)

	// A tick may already have been queued before the change; wait for the new value.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if readMessage(t, conn).Data.Stats.TotalPipelines == 3 {
			return
		}
	}
	t.Fatal("no broadcast carried the updated count")
}

func TestHub_AllClientsReceiveBroadcast(t *testing.T) {
	wsURL, _, _ := startHub(t, newSource(1))

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = dial(t, wsURL)
	}
	for i, conn := range conns {
		assert.Equal(t, wsHub.EventDashboard, readMessage(t, conn).Event, "client %d", i)
		assert.Equal(t, wsHub.EventDashboard, readMessage(t, conn).Event, "client %d tick", i)
	}
}

func TestHub_CancelContextClosesConnections(t *testing.T) {
	wsURL, hub, cancel := startHub(t, newSource(0))

	conn := dial(t, wsURL)
	readMessage(t, conn)
	time.Sleep(10 * time.Millisecond)

	cancel()

	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_CheckOrigin(t *testing.T) {
	wsURL, _, _ := startHub(t, newSource(0), wsHub.WithCheckOrigin(func(r *http.Request) bool {
		return r.Header.Get("Origin") == "https://dash.example.com"
	}))

	header := http.Header{"Origin": []string{"https://evil.example.org"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "https://dash.example.com")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, wsHub.EventDashboard, readMessage(t, conn).Event)
}

func TestHub_NonWebSocketRequest_Returns400(t *testing.T) {
	hub := wsHub.New(newSource(0), testInterval)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
