package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	applog "github.com/vovakirdan/wirechat-relay/internal/log"
)

func startTestServer(t *testing.T) (*httptest.Server, *core.Hub) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := core.NewHub(core.Options{PrefixSender: false}, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run(ctx)
	}()

	cfg := config.Default()
	cfg.AdminAddr = ":0"
	server := NewServer(hub, cfg, applog.Nop())

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.CloseClientConnections()
		ts.Close()
		cancel()
		<-done
	})

	return ts, hub
}

func waitPeers(t *testing.T, hub *core.Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		peers, err := hub.Peers(context.Background())
		return err == nil && len(peers) == n
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "relay_peers_connected")
}

func TestWebSocketRelayAndPeers(t *testing.T) {
	ts, hub := startTestServer(t)

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer connA.Close(websocket.StatusNormalClosure, "done")
	waitPeers(t, hub, 1)

	connB, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer connB.Close(websocket.StatusNormalClosure, "done")
	waitPeers(t, hub, 2)

	// A learns that B joined.
	typ, data, err := connA.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageBinary, typ)
	assert.True(t, strings.HasPrefix(string(data), "Client Connected @ "), "got %q", data)

	require.NoError(t, connA.Write(ctx, websocket.MessageBinary, []byte("hi there")))

	_, data, err = connB.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hi there", string(data))

	resp, err := ts.Client().Get(ts.URL + "/peers")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var peers PeersResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&peers))
	assert.Equal(t, 2, peers.Count)
	assert.Len(t, peers.Peers, 2)

	require.NoError(t, connB.Close(websocket.StatusNormalClosure, "bye"))
	waitPeers(t, hub, 1)

	_, data, err = connA.Read(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Client Disconnected @ "), "got %q", data)
}

type stoppedRelay struct{}

func (stoppedRelay) Publish(context.Context, core.Event) error { return core.ErrHubStopped }

func (stoppedRelay) Peers(context.Context) ([]core.PeerInfo, error) { return nil, core.ErrHubStopped }

func TestPeersUnavailable(t *testing.T) {
	cfg := config.Default()
	server := NewServer(stoppedRelay{}, cfg, applog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/peers", nil)
	server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWebSocketRouteReachesUpgrader(t *testing.T) {
	server := NewServer(stoppedRelay{}, config.Default(), applog.Nop())

	// A plain GET must be answered by the upgrader, not the router's 404.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUpgradeRequired, rec.Code)
}
