package render

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-replay/internal/camera"
	diag "github.com/coreman2200/funtimes-replay/internal/diagnostics"
	"github.com/coreman2200/funtimes-replay/internal/field"
	"github.com/coreman2200/funtimes-replay/internal/geom"
	"github.com/coreman2200/funtimes-replay/internal/play"
	"github.com/coreman2200/funtimes-replay/internal/sequence"
	"github.com/coreman2200/funtimes-replay/internal/timeline"
)

// Options configure an Engine. Zero values take the defaults noted.
type Options struct {
	Presets       []camera.Preset // DefaultPresets(true)
	DefaultPreset string          // camera.BehindQB
	Tuning        camera.Tuning   // DefaultTuning()
	Offense       camera.AnchorRule
	Defense       camera.AnchorRule

	NearBallRadius float64 // 2
	HighlightIDs   []int   // players flagged near the ball; empty means all
	Dark           bool

	OnEvent func(Event)
	Diag    diag.Sink
	Now     func() time.Time // time.Now
}

// Engine advances the clock, interpolates, moves the camera and builds one
// Scene per tick, then writes it to every driver.
type Engine struct {
	Seq      *play.Sequence
	Clock    *sequence.Clock
	Timeline *timeline.Controller
	Camera   *camera.Orchestrator
	Drv      []Driver

	opts      Options
	log       zerolog.Logger
	diag      diag.Sink
	presetIDs map[string]bool
	tracks    map[int][]geom.Vec3
	highlight map[int]bool

	// tick goroutine only
	overlays Overlays
	selected map[int]bool
	desc     string
	frameID  uint64

	qmu   sync.Mutex
	queue []Command

	smu   sync.RWMutex
	last  *Scene
	stats Stats
}

// NewEngine wires the clock, timeline and camera for seq.
func NewEngine(seq *play.Sequence, opts Options, log zerolog.Logger, drivers ...Driver) (*Engine, error) {
	if seq == nil {
		return nil, fmt.Errorf("nil sequence")
	}
	if opts.Presets == nil {
		opts.Presets = camera.DefaultPresets(true)
	}
	if opts.DefaultPreset == "" {
		opts.DefaultPreset = camera.BehindQB
	}
	if opts.Tuning == (camera.Tuning{}) {
		opts.Tuning = camera.DefaultTuning()
	}
	if opts.Offense == (camera.AnchorRule{}) || opts.Defense == (camera.AnchorRule{}) {
		off, def := camera.DefaultAnchorRules()
		if opts.Offense == (camera.AnchorRule{}) {
			opts.Offense = off
		}
		if opts.Defense == (camera.AnchorRule{}) {
			opts.Defense = def
		}
	}
	if opts.NearBallRadius <= 0 {
		opts.NearBallRadius = 2
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	e := &Engine{
		Seq:       seq,
		Drv:       drivers,
		opts:      opts,
		log:       log.With().Str("component", "engine").Logger(),
		diag:      opts.Diag,
		presetIDs: map[string]bool{},
		tracks:    map[int][]geom.Vec3{},
		highlight: map[int]bool{},
		selected:  map[int]bool{},
		desc:      seq.Description(0),
	}
	for _, p := range opts.Presets {
		e.presetIDs[p.ID] = true
	}
	for _, id := range opts.HighlightIDs {
		e.highlight[id] = true
	}
	for _, p := range seq.Players {
		pts := seq.Track(p.ID)
		w := make([]geom.Vec3, len(pts))
		for i, pt := range pts {
			w[i] = field.ToWorld(pt, field.TrackHeight)
		}
		e.tracks[p.ID] = w
	}

	e.Clock = sequence.NewClock(seq, sequence.Hooks{
		OnFrameChange: func(i int) {
			e.emit(Event{Kind: EventFrame, Frame: i})
		},
		OnTimeChange: func(t float64) {
			e.emit(Event{Kind: EventTime, Frame: e.Clock.State().Index, Time: t})
		},
		OnDescriptionChange: func(text string) {
			e.desc = text
			e.emit(Event{Kind: EventDescription, Frame: e.Clock.State().Index, Text: text})
		},
		OnPlaybackComplete: func() {
			e.emit(Event{Kind: EventComplete, Frame: seq.LastIndex()})
			e.diag.Push(diag.Diagnostic{Severity: diag.Info, Code: diag.PlaybackComplete, Summary: "Playback complete"})
		},
	})
	e.Timeline = timeline.New(e.Clock)

	snap := sequence.Interpolate(seq, e.Clock.State())
	anchors := camera.ResolveAnchors(seq, snap.Positions, opts.Offense, opts.Defense)
	cam, err := camera.New(opts.Presets, opts.DefaultPreset, opts.Tuning, anchors, camera.Hooks{
		OnTransitionComplete: func(id string) {
			e.emit(Event{Kind: EventTransition, Frame: e.Clock.State().Index, Preset: id})
		},
	})
	if err != nil {
		return nil, err
	}
	e.Camera = cam

	e.publish(e.build(e.Clock.State(), snap), Stats{})
	return e, nil
}

// AddDriver attaches another scene sink. Call before Run.
func (e *Engine) AddDriver(d Driver) { e.Drv = append(e.Drv, d) }

// Submit validates c and queues it for the next tick. Safe for concurrent use.
func (e *Engine) Submit(c Command) error {
	if err := e.validate(c); err != nil {
		e.log.Warn().Err(err).Str("kind", string(c.Kind)).Msg("command rejected")
		e.diag.Push(diag.Diagnostic{
			Severity: diag.Warn,
			Code:     diag.CommandRejected,
			Summary:  "Command rejected",
			Detail:   err.Error(),
			Evidence: map[string]any{"kind": c.Kind},
		})
		return err
	}
	e.qmu.Lock()
	e.queue = append(e.queue, c)
	e.qmu.Unlock()
	return nil
}

// Tick runs one frame: queued commands, clock, interpolation, camera, scene,
// drivers. Not safe for concurrent use; Run calls it from one goroutine.
func (e *Engine) Tick(dt float64) error {
	start := time.Now()

	e.qmu.Lock()
	cmds := e.queue
	e.queue = nil
	e.qmu.Unlock()
	for _, c := range cmds {
		e.apply(c)
	}

	e.Clock.Advance(dt)
	st := e.Clock.State()
	snap := sequence.Interpolate(e.Seq, st)
	anchors := camera.ResolveAnchors(e.Seq, snap.Positions, e.opts.Offense, e.opts.Defense)
	e.Camera.Tick(e.opts.Now(), anchors)

	s := e.build(st, snap)
	buildMS := float64(time.Since(start).Microseconds()) / 1000.0

	writeStart := time.Now()
	var firstErr error
	for _, d := range e.Drv {
		if err := d.Write(s); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	stats := Stats{
		BuildMS: buildMS,
		WriteMS: float64(time.Since(writeStart).Microseconds()) / 1000.0,
		TotalMS: float64(time.Since(start).Microseconds()) / 1000.0,
	}
	e.publish(s, stats)

	if firstErr != nil {
		e.diag.Push(diag.Diagnostic{Severity: diag.Err, Code: diag.DriverWrite, Summary: "Driver write failed", Detail: firstErr.Error()})
		return fmt.Errorf("driver write: %w", firstErr)
	}
	return nil
}

// Run ticks at fps until ctx is cancelled.
func (e *Engine) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	dt := time.Second / time.Duration(fps)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()
	e.log.Info().Int("fps", fps).Int("frames", len(e.Seq.Frames)).Msg("engine running")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := e.Tick(dt.Seconds()); err != nil {
				e.log.Warn().Err(err).Msg("tick")
			}
		}
	}
}

// Scene returns the last built scene. Callers must not modify it.
func (e *Engine) Scene() *Scene {
	e.smu.RLock()
	defer e.smu.RUnlock()
	return e.last
}

// Stats returns timings of the last tick.
func (e *Engine) Stats() Stats {
	e.smu.RLock()
	defer e.smu.RUnlock()
	return e.stats
}

func (e *Engine) publish(s *Scene, st Stats) {
	e.smu.Lock()
	st.Ticks = e.stats.Ticks
	if e.last != nil {
		st.Ticks++
	}
	e.last = s
	e.stats = st
	e.smu.Unlock()
}

func (e *Engine) emit(ev Event) {
	lvl := zerolog.DebugLevel
	if ev.Kind == EventTime {
		lvl = zerolog.TraceLevel
	}
	e.log.WithLevel(lvl).Str("event", string(ev.Kind)).Int("frame", ev.Frame).Str("preset", ev.Preset).Msg("event")
	if e.opts.OnEvent != nil {
		e.opts.OnEvent(ev)
	}
}

func (e *Engine) build(st sequence.State, snap sequence.Snapshot) *Scene {
	e.frameID++
	cam := e.Camera.State()
	frame := e.Seq.Frames[st.Index]

	s := &Scene{
		FrameID:     e.frameID,
		Time:        st.Elapsed,
		FrameIndex:  st.Index,
		Fraction:    st.Fraction,
		Progress:    e.Timeline.ProgressPercent(),
		Playing:     st.IsPlaying,
		AtEnd:       st.IsAtEnd,
		ShowReplay:  e.Timeline.ShowReplay(),
		Description: e.desc,
		Note:        frame.Note,
		Summary:     frame.Summary,
		Ball: BallView{
			Ground: snap.Ball,
			World:  field.ToWorld(snap.Ball, field.BallHeight),
		},
		Players: make([]PlayerView, 0, len(snap.Positions)),
		Camera:  cam,
		Overlays: Overlays{
			OpenSpace: e.overlays.OpenSpace,
			Tracks:    e.overlays.Tracks,
			Selected:  e.selectedIDs(),
		},
		Markers: e.Timeline.Markers(),
		Field:   field.Surface(),
		Dark:    e.opts.Dark,
	}

	for _, p := range e.Seq.Players {
		pos, ok := snap.Positions[p.ID]
		if !ok {
			continue
		}
		world := field.ToWorld(pos, 0)
		v := PlayerView{
			ID:        p.ID,
			Team:      p.Team,
			Name:      p.Name,
			Position:  p.Position,
			Side:      e.Seq.SideOf(p.ID),
			Ground:    pos,
			World:     world,
			Billboard: geom.BillboardAngle(cam.Pose.Position, world),
		}
		if len(e.highlight) == 0 || e.highlight[p.ID] {
			v.NearBall = pos.Distance(snap.Ball) < e.opts.NearBallRadius
		}
		// served from the active keyframe, not the interpolated positions
		if d, ok := e.Seq.OpenSpace(st.Index, p.ID); ok {
			ov := StyleOpenSpace(d)
			v.OpenSpace = &ov
		}
		s.Players = append(s.Players, v)
	}

	for _, p := range e.Seq.Players {
		if !e.overlays.Tracks && !e.selected[p.ID] {
			continue
		}
		if pts := e.tracks[p.ID]; len(pts) > 1 {
			s.Tracks = append(s.Tracks, Track{PlayerID: p.ID, Points: pts})
		}
	}
	return s
}

func (e *Engine) selectedIDs() []int {
	if len(e.selected) == 0 {
		return nil
	}
	ids := make([]int, 0, len(e.selected))
	for id := range e.selected {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func diagOrbitRejected(err error) diag.Diagnostic {
	return diag.Diagnostic{
		Severity:     diag.Info,
		Code:         diag.OrbitRejected,
		Summary:      "Orbit ignored while the camera is moving",
		Detail:       err.Error(),
		LikelyCauses: []string{"orbit sent during a preset transition"},
	}
}
