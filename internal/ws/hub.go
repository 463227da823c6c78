package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/coreman2200/funtimes-replay/internal/camera"
	diag "github.com/coreman2200/funtimes-replay/internal/diagnostics"
	"github.com/coreman2200/funtimes-replay/internal/render"
)

const writeWait = 200 * time.Millisecond

var errNotReady = errors.New("engine not ready")

// Engine is the part of render.Engine the hub drives.
type Engine interface {
	Submit(render.Command) error
	Scene() *render.Scene
	Stats() render.Stats
}

// Message is the envelope for everything sent to websocket clients.
type Message struct {
	Type     string              `json:"type"` // hello | scene | event | diag | ack
	ClientID string              `json:"client_id,omitempty"`
	Scene    *render.Scene       `json:"scene,omitempty"`
	Event    *render.Event       `json:"event,omitempty"`
	Diag     *diag.Diagnostic    `json:"diag,omitempty"`
	Presets  []camera.Info       `json:"presets,omitempty"`
	OK       *bool               `json:"ok,omitempty"`
	Error    string              `json:"error,omitempty"`
	Command  *render.CommandKind `json:"command,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex // gorilla allows one concurrent writer
}

func (c *client) send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub fans scenes, events and diagnostics out to websocket clients and feeds
// control messages back into the engine. It is a render.Driver.
type Hub struct {
	mu          sync.RWMutex
	eng         Engine
	presets     []camera.Info
	clients     map[*websocket.Conn]*client
	diagClients map[*websocket.Conn]*client

	limiter     *rate.Limiter
	timeLimiter *rate.Limiter
	lastKey     sceneKey
	sent        uint64
	dropped     uint64
	started     time.Time
	upgrader    websocket.Upgrader
	log         zerolog.Logger
}

// sceneKey captures the state changes that bypass the broadcast throttle.
type sceneKey struct {
	playing bool
	atEnd   bool
	phase   camera.Phase
	index   int
}

// NewHub returns a hub that broadcasts at most hz scenes per second.
func NewHub(hz float64, log zerolog.Logger) *Hub {
	if hz <= 0 {
		hz = 20
	}
	return &Hub{
		clients:     map[*websocket.Conn]*client{},
		diagClients: map[*websocket.Conn]*client{},
		limiter:     rate.NewLimiter(rate.Limit(hz), 1),
		timeLimiter: rate.NewLimiter(rate.Limit(hz), 1),
		started:     time.Now(),
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:         log.With().Str("component", "ws").Logger(),
	}
}

// Bind attaches the engine once it exists.
func (h *Hub) Bind(eng Engine, presets []camera.Info) {
	h.mu.Lock()
	h.eng = eng
	h.presets = presets
	h.mu.Unlock()
}

// Write broadcasts s, throttled unless playback or camera state changed.
func (h *Hub) Write(s *render.Scene) error {
	key := sceneKey{playing: s.Playing, atEnd: s.AtEnd, phase: s.Camera.Phase, index: s.FrameIndex}
	h.mu.Lock()
	changed := key != h.lastKey
	h.lastKey = key
	if !changed && !h.limiter.Allow() {
		h.dropped++
		h.mu.Unlock()
		return nil
	}
	h.sent++
	h.mu.Unlock()

	b, err := json.Marshal(Message{Type: "scene", Scene: s})
	if err != nil {
		return err
	}
	h.broadcast(h.snapshot(false), b)
	return nil
}

// PushEvent sends an engine notification to scene clients immediately.
// Time events fire every tick and share the scene broadcast rate.
func (h *Hub) PushEvent(ev render.Event) {
	if ev.Kind == render.EventTime && !h.timeLimiter.Allow() {
		return
	}
	b, err := json.Marshal(Message{Type: "event", Event: &ev})
	if err != nil {
		return
	}
	h.broadcast(h.snapshot(false), b)
}

// PushDiag sends a diagnostic to diag clients.
func (h *Hub) PushDiag(d diag.Diagnostic) {
	b, err := json.Marshal(Message{Type: "diag", Diag: &d})
	if err != nil {
		return
	}
	h.broadcast(h.snapshot(true), b)
}

func (h *Hub) snapshot(diagOnly bool) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	src := h.clients
	if diagOnly {
		src = h.diagClients
	}
	out := make([]*client, 0, len(src))
	for _, c := range src {
		out = append(out, c)
	}
	return out
}

func (h *Hub) broadcast(cs []*client, b []byte) {
	for _, c := range cs {
		if err := c.send(b); err != nil {
			h.log.Debug().Err(err).Str("client", c.id).Msg("write")
		}
	}
}

func (h *Hub) register(set map[*websocket.Conn]*client, conn *websocket.Conn) *client {
	c := &client{id: uuid.NewString(), conn: conn}
	h.mu.Lock()
	set[conn] = c
	h.mu.Unlock()
	return c
}

// drain reads until the peer goes away, then unregisters conn.
func (h *Hub) drain(set map[*websocket.Conn]*client, c *client) {
	defer func() {
		h.mu.Lock()
		delete(set, c.conn)
		h.mu.Unlock()
		c.conn.Close()
		h.log.Debug().Str("client", c.id).Msg("disconnected")
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// HandleFramesWS streams scenes and events. New clients get a hello with
// their id and the preset list, followed by the latest scene.
func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := h.register(h.clients, conn)
	h.log.Debug().Str("client", c.id).Msg("frames connected")

	h.mu.RLock()
	hello := Message{Type: "hello", ClientID: c.id, Presets: h.presets}
	eng := h.eng
	h.mu.RUnlock()
	if eng != nil {
		hello.Scene = eng.Scene()
	}
	if b, err := json.Marshal(hello); err == nil {
		_ = c.send(b)
	}
	go h.drain(h.clients, c)
}

func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := h.register(h.diagClients, conn)
	h.log.Debug().Str("client", c.id).Msg("diag connected")
	go h.drain(h.diagClients, c)
}

// HandleControlWS reads render.Command messages and acks each one.
func (h *Hub) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	c := &client{id: uuid.NewString(), conn: conn}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd render.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.ack(c, nil, err)
			continue
		}
		h.mu.RLock()
		eng := h.eng
		h.mu.RUnlock()
		if eng == nil {
			h.ack(c, &cmd.Kind, errNotReady)
			continue
		}
		h.ack(c, &cmd.Kind, eng.Submit(cmd))
	}
}

func (h *Hub) ack(c *client, kind *render.CommandKind, err error) {
	ok := err == nil
	m := Message{Type: "ack", ClientID: c.id, OK: &ok, Command: kind}
	if err != nil {
		m.Error = err.Error()
	}
	if b, mErr := json.Marshal(m); mErr == nil {
		_ = c.send(b)
	}
}

// Health reports hub and engine counters.
type Health struct {
	UptimeS     float64      `json:"uptime_s"`
	Clients     int          `json:"clients"`
	DiagClients int          `json:"diag_clients"`
	Sent        uint64       `json:"scenes_sent"`
	Dropped     uint64       `json:"scenes_throttled"`
	FrameID     uint64       `json:"frame_id"`
	Engine      render.Stats `json:"engine"`
}

func (h *Hub) Health() Health {
	h.mu.RLock()
	hl := Health{
		UptimeS:     time.Since(h.started).Seconds(),
		Clients:     len(h.clients),
		DiagClients: len(h.diagClients),
		Sent:        h.sent,
		Dropped:     h.dropped,
	}
	eng := h.eng
	h.mu.RUnlock()
	if eng != nil {
		if s := eng.Scene(); s != nil {
			hl.FrameID = s.FrameID
		}
		hl.Engine = eng.Stats()
	}
	return hl
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.Health())
}
