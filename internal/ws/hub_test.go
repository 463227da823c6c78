package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-replay/internal/camera"
	diag "github.com/coreman2200/funtimes-replay/internal/diagnostics"
	"github.com/coreman2200/funtimes-replay/internal/render"
)

type stubEngine struct {
	mu   sync.Mutex
	cmds []render.Command
	err  error
}

func (e *stubEngine) Submit(c render.Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cmds = append(e.cmds, c)
	return e.err
}

func (e *stubEngine) Scene() *render.Scene { return &render.Scene{FrameID: 7} }
func (e *stubEngine) Stats() render.Stats  { return render.Stats{Ticks: 3} }

func newTestServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/ws/diag", h.HandleDiagWS)
	mux.HandleFunc("/ws/control", h.HandleControlWS)
	mux.HandleFunc("/health", h.HandleHealth)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m Message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func waitClients(t *testing.T, h *Hub, frames, diags int) {
	t.Helper()
	require.Eventually(t, func() bool {
		hl := h.Health()
		return hl.Clients == frames && hl.DiagClients == diags
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFramesHelloAndScene(t *testing.T) {
	h := NewHub(1000, zerolog.Nop())
	h.Bind(&stubEngine{}, []camera.Info{{ID: camera.BehindQB, Name: "Behind QB"}})
	srv := newTestServer(t, h)

	conn := dial(t, srv, "/ws")
	hello := read(t, conn)
	assert.Equal(t, "hello", hello.Type)
	assert.NotEmpty(t, hello.ClientID)
	require.Len(t, hello.Presets, 1)
	require.NotNil(t, hello.Scene)
	assert.Equal(t, uint64(7), hello.Scene.FrameID)
	waitClients(t, h, 1, 0)

	require.NoError(t, h.Write(&render.Scene{FrameID: 8, Playing: true}))
	m := read(t, conn)
	assert.Equal(t, "scene", m.Type)
	assert.Equal(t, uint64(8), m.Scene.FrameID)

	h.PushEvent(render.Event{Kind: render.EventComplete, Frame: 3})
	m = read(t, conn)
	assert.Equal(t, "event", m.Type)
	assert.Equal(t, render.EventComplete, m.Event.Kind)
}

func TestWriteThrottle(t *testing.T) {
	h := NewHub(0.001, zerolog.Nop())
	s := &render.Scene{Playing: true}
	require.NoError(t, h.Write(s)) // state change
	require.NoError(t, h.Write(s)) // burst token
	require.NoError(t, h.Write(s)) // throttled
	require.NoError(t, h.Write(&render.Scene{Playing: true, FrameIndex: 1}))

	hl := h.Health()
	assert.Equal(t, uint64(3), hl.Sent)
	assert.Equal(t, uint64(1), hl.Dropped)
}

func TestDiagSocket(t *testing.T) {
	h := NewHub(10, zerolog.Nop())
	srv := newTestServer(t, h)
	conn := dial(t, srv, "/ws/diag")
	waitClients(t, h, 0, 1)

	h.PushDiag(diag.Diagnostic{Severity: diag.Warn, Code: diag.CommandRejected, Summary: "Command rejected"})
	m := read(t, conn)
	assert.Equal(t, "diag", m.Type)
	require.NotNil(t, m.Diag)
	assert.Equal(t, diag.CommandRejected, m.Diag.Code)
}

func TestControlSocket(t *testing.T) {
	h := NewHub(10, zerolog.Nop())
	srv := newTestServer(t, h)

	t.Run("not bound", func(t *testing.T) {
		conn := dial(t, srv, "/ws/control")
		require.NoError(t, conn.WriteJSON(render.Command{Kind: render.CmdPlay}))
		m := read(t, conn)
		require.NotNil(t, m.OK)
		assert.False(t, *m.OK)
		assert.Equal(t, errNotReady.Error(), m.Error)
	})

	eng := &stubEngine{}
	h.Bind(eng, nil)

	t.Run("submit", func(t *testing.T) {
		conn := dial(t, srv, "/ws/control")
		require.NoError(t, conn.WriteJSON(render.Command{Kind: render.CmdSeek, Time: 1.5}))
		m := read(t, conn)
		assert.Equal(t, "ack", m.Type)
		require.NotNil(t, m.OK)
		assert.True(t, *m.OK)
		require.NotNil(t, m.Command)
		assert.Equal(t, render.CmdSeek, *m.Command)

		eng.mu.Lock()
		defer eng.mu.Unlock()
		require.Len(t, eng.cmds, 1)
		assert.Equal(t, 1.5, eng.cmds[0].Time)
	})

	t.Run("bad json", func(t *testing.T) {
		conn := dial(t, srv, "/ws/control")
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
		m := read(t, conn)
		assert.False(t, *m.OK)
		assert.NotEmpty(t, m.Error)
	})
}

func TestHealthEndpoint(t *testing.T) {
	h := NewHub(10, zerolog.Nop())
	h.Bind(&stubEngine{}, nil)
	srv := newTestServer(t, h)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	hl := h.Health()
	assert.Equal(t, uint64(7), hl.FrameID)
	assert.Equal(t, uint64(3), hl.Engine.Ticks)
}

func TestTimeEventsThrottled(t *testing.T) {
	h := NewHub(0.001, zerolog.Nop())
	srv := newTestServer(t, h)
	conn := dial(t, srv, "/ws")
	assert.Equal(t, "hello", read(t, conn).Type)
	waitClients(t, h, 1, 0)

	h.PushEvent(render.Event{Kind: render.EventTime, Time: 0.1})
	h.PushEvent(render.Event{Kind: render.EventTime, Time: 0.2}) // over the rate
	h.PushEvent(render.Event{Kind: render.EventFrame, Frame: 0})

	m := read(t, conn)
	require.NotNil(t, m.Event)
	assert.Equal(t, render.EventTime, m.Event.Kind)
	assert.Equal(t, 0.1, m.Event.Time)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"frame":0`)
	assert.Contains(t, string(raw), `"kind":"frame"`)
}
