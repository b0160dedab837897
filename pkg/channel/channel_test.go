package channel

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophiie/orbit/errors"
)

var upgrader = websocket.Upgrader{}

// testServer is a minimal WebSocket endpoint that records connections and
// echoes a greeting to each client.
type testServer struct {
	srv      *httptest.Server
	mu       sync.Mutex
	conns    []*websocket.Conn
	dials    int32
	greeting []byte
}

func newTestServer(t *testing.T, greeting string) *testServer {
	t.Helper()
	ts := &testServer{greeting: []byte(greeting)}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		atomic.AddInt32(&ts.dials, 1)
		ts.mu.Lock()
		ts.conns = append(ts.conns, conn)
		ts.mu.Unlock()
		if len(ts.greeting) > 0 {
			conn.WriteMessage(websocket.TextMessage, ts.greeting)
		}
		// Keep the connection open until the server or client closes it
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) url() string {
	return "ws" + strings.TrimPrefix(ts.srv.URL, "http")
}

func (ts *testServer) dropAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, conn := range ts.conns {
		conn.Close()
	}
	ts.conns = nil
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestChannelConnectAndReceive(t *testing.T) {
	ts := newTestServer(t, `{"type":"connected"}`)

	var received atomic.Value
	ch := New(Config{
		Name: "test",
		URL:  func() string { return ts.url() },
		OnMessage: func(data []byte) {
			received.Store(string(data))
		},
	})
	defer ch.Close()

	ch.Connect()

	waitFor(t, 2*time.Second, func() bool {
		v, _ := received.Load().(string)
		return v == `{"type":"connected"}`
	})
	assert.Equal(t, StatusConnected, ch.Status())
}

func TestChannelSingleFlightConnect(t *testing.T) {
	ts := newTestServer(t, "")

	ch := New(Config{
		Name: "test",
		URL:  func() string { return ts.url() },
	})
	defer ch.Close()

	for i := 0; i < 5; i++ {
		ch.Connect()
	}

	waitFor(t, 2*time.Second, func() bool {
		return ch.Status() == StatusConnected
	})

	// Repeated Connect calls while open must not dial again
	ch.Connect()
	ch.Connect()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&ts.dials))
}

func TestChannelSendWhenClosed(t *testing.T) {
	ch := New(Config{
		Name: "test",
		URL:  func() string { return "" },
	})
	defer ch.Close()

	err := ch.Send([]byte(`{"type":"ping"}`))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeChannelClosed, errors.GetCode(err))
}

func TestChannelSend(t *testing.T) {
	ts := newTestServer(t, "")

	ch := New(Config{
		Name: "test",
		URL:  func() string { return ts.url() },
	})
	defer ch.Close()

	ch.Connect()
	waitFor(t, 2*time.Second, func() bool {
		return ch.Status() == StatusConnected
	})

	err := ch.Send([]byte(`{"type":"sync_request"}`))
	assert.NoError(t, err)
}

func TestChannelReconnectAfterLoss(t *testing.T) {
	ts := newTestServer(t, "")

	var statuses []Status
	var statusMu sync.Mutex
	ch := New(Config{
		Name:           "test",
		URL:            func() string { return ts.url() },
		ReconnectDelay: 50 * time.Millisecond,
		OnStatus: func(s Status) {
			statusMu.Lock()
			statuses = append(statuses, s)
			statusMu.Unlock()
		},
	})
	defer ch.Close()

	ch.Connect()
	waitFor(t, 2*time.Second, func() bool {
		return ch.Status() == StatusConnected
	})

	ts.dropAll()

	// The channel should notice the loss and dial again on its own
	waitFor(t, 2*time.Second, func() bool {
		return atomic.LoadInt32(&ts.dials) >= 2 && ch.Status() == StatusConnected
	})

	statusMu.Lock()
	defer statusMu.Unlock()
	assert.Contains(t, statuses, StatusDisconnected)
	assert.Equal(t, StatusConnected, statuses[len(statuses)-1])
}

func TestChannelDialFailureReportsError(t *testing.T) {
	var sawError atomic.Bool
	ch := New(Config{
		Name:           "test",
		URL:            func() string { return "ws://127.0.0.1:1/nothing" },
		ReconnectDelay: time.Hour,
		OnStatus: func(s Status) {
			if s == StatusError {
				sawError.Store(true)
			}
		},
	})
	defer ch.Close()

	ch.Connect()
	waitFor(t, 2*time.Second, func() bool {
		return sawError.Load()
	})
	assert.Equal(t, StatusError, ch.Status())
}

func TestChannelCloseStopsReconnect(t *testing.T) {
	ts := newTestServer(t, "")

	ch := New(Config{
		Name:           "test",
		URL:            func() string { return ts.url() },
		ReconnectDelay: 30 * time.Millisecond,
	})

	ch.Connect()
	waitFor(t, 2*time.Second, func() bool {
		return ch.Status() == StatusConnected
	})

	ch.Close()
	ch.Close() // idempotent

	dialsAtClose := atomic.LoadInt32(&ts.dials)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, dialsAtClose, atomic.LoadInt32(&ts.dials))
	assert.Equal(t, StatusDisconnected, ch.Status())
}

func TestChannelDeferredConnectWithoutURL(t *testing.T) {
	ts := newTestServer(t, "")

	var url atomic.Value
	url.Store("")
	ch := New(Config{
		Name:           "test",
		URL:            func() string { return url.Load().(string) },
		ReconnectDelay: 30 * time.Millisecond,
	})
	defer ch.Close()

	ch.Connect()
	time.Sleep(60 * time.Millisecond)
	assert.NotEqual(t, StatusConnected, ch.Status())

	// Once the URL becomes available the retry loop should pick it up
	url.Store(ts.url())
	waitFor(t, 2*time.Second, func() bool {
		return ch.Status() == StatusConnected
	})
}

func TestChannelPing(t *testing.T) {
	ts := newTestServer(t, "")

	var pings int32
	ts.srv.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		atomic.AddInt32(&ts.dials, 1)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if strings.Contains(string(data), "ping") {
				atomic.AddInt32(&pings, 1)
			}
		}
	})

	ch := New(Config{
		Name:         "test",
		URL:          func() string { return ts.url() },
		PingMessage:  []byte(`{"type":"ping"}`),
		PingInterval: 25 * time.Millisecond,
	})
	defer ch.Close()

	ch.Connect()
	waitFor(t, 2*time.Second, func() bool {
		return atomic.LoadInt32(&pings) >= 2
	})
}
