package render

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-replay/internal/camera"
	diag "github.com/coreman2200/funtimes-replay/internal/diagnostics"
	"github.com/coreman2200/funtimes-replay/internal/geom"
	"github.com/coreman2200/funtimes-replay/internal/play"
)

// fakeDriver captures the last scene written.
type fakeDriver struct {
	last  *Scene
	count int
	err   error
}

func (d *fakeDriver) Write(s *Scene) error {
	d.last = s
	d.count++
	return d.err
}

// fakeClock is a settable wall clock for camera transitions.
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(1000, 0)} }

func (c *fakeClock) Now() time.Time      { return c.t }
func (c *fakeClock) Add(d time.Duration) { c.t = c.t.Add(d) }

func testSequence(t *testing.T) *play.Sequence {
	t.Helper()
	s, err := play.New(
		[]play.Team{{ID: "A", Side: play.Offense}, {ID: "B", Side: play.Defense}},
		[]play.Player{
			{ID: 1, Team: "A", Name: "Passer", Position: "QB"},
			{ID: 2, Team: "B", Name: "Backer", Position: "LB"},
		},
		"summary",
		[]play.Frame{
			{Time: 0, Ball: geom.Vec2{}, Positions: map[int]geom.Vec2{1: {X: 0, Z: 0}, 2: {X: 3, Z: 4}}},
			{Time: 1, Ball: geom.Vec2{Z: 10}, Positions: map[int]geom.Vec2{1: {X: 10, Z: 0}, 2: {X: 6, Z: 8}}, Note: "end"},
		},
	)
	require.NoError(t, err)
	return s
}

func newTestEngine(t *testing.T, opts Options) (*Engine, *fakeDriver, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	opts.Now = clk.Now
	drv := &fakeDriver{}
	e, err := NewEngine(testSequence(t), opts, zerolog.Nop(), drv)
	require.NoError(t, err)
	return e, drv, clk
}

func TestEngineTick(t *testing.T) {
	e, drv, _ := newTestEngine(t, Options{})
	require.NotNil(t, e.Scene(), "initial scene published at construction")
	assert.Equal(t, "summary", e.Scene().Description)

	require.NoError(t, e.Submit(Command{Kind: CmdPlay}))
	require.NoError(t, e.Tick(0.5))

	s := drv.last
	require.NotNil(t, s)
	assert.Same(t, s, e.Scene())
	assert.Equal(t, 0.5, s.Time)
	assert.True(t, s.Playing)
	assert.InDelta(t, 50, s.Progress, 1e-9)
	require.Len(t, s.Players, 2)
	assert.Equal(t, geom.Vec2{X: 5, Z: 0}, s.Players[0].Ground)
	assert.Equal(t, geom.Vec3{X: 0, Y: 0, Z: 5}, s.Players[0].World)
	assert.Equal(t, geom.Vec2{X: 0, Z: 5}, s.Ball.Ground)
	assert.Equal(t, play.Defense, s.Players[1].Side)
	assert.Equal(t, uint64(1), e.Stats().Ticks)
}

func TestSubmitRejects(t *testing.T) {
	var diags []diag.Diagnostic
	e, _, _ := newTestEngine(t, Options{Diag: func(d diag.Diagnostic) { diags = append(diags, d) }})

	tests := []struct {
		name string
		cmd  Command
		want error
	}{
		{"unknown kind", Command{Kind: "rewind"}, ErrUnknownCommand},
		{"unknown overlay", Command{Kind: CmdOverlay, Overlay: "heatmap"}, ErrUnknownOverlay},
		{"unknown preset", Command{Kind: CmdPreset, Preset: "blimp"}, camera.ErrUnknownPreset},
		{"unknown player", Command{Kind: CmdTrack, PlayerID: 99}, ErrUnknownPlayer},
		{"orbit without pose", Command{Kind: CmdOrbit}, ErrMissingPose},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Submit(tt.cmd)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
	assert.Len(t, diags, len(tests))
	assert.Equal(t, diag.CommandRejected, diags[0].Code)
}

func TestPlaybackCompleteOnce(t *testing.T) {
	var events []Event
	e, drv, _ := newTestEngine(t, Options{OnEvent: func(ev Event) { events = append(events, ev) }})

	require.NoError(t, e.Submit(Command{Kind: CmdPlay}))
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Tick(0.5))
	}
	complete := 0
	for _, ev := range events {
		if ev.Kind == EventComplete {
			complete++
		}
	}
	assert.Equal(t, 1, complete)
	assert.True(t, drv.last.AtEnd)
	assert.False(t, drv.last.ShowReplay)
	assert.Equal(t, "end", drv.last.Note)
	assert.Equal(t, geom.Vec2{X: 10, Z: 0}, drv.last.Players[0].Ground)

	// play from the end rewinds
	require.NoError(t, e.Submit(Command{Kind: CmdPlay}))
	require.NoError(t, e.Tick(0.25))
	assert.Equal(t, 0.25, drv.last.Time)
}

func TestSeekPauseReset(t *testing.T) {
	e, drv, _ := newTestEngine(t, Options{})
	require.NoError(t, e.Submit(Command{Kind: CmdSeek, Time: 0.75}))
	require.NoError(t, e.Tick(0.1))
	assert.Equal(t, 0.75, drv.last.Time, "paused clock ignores dt")
	assert.True(t, drv.last.ShowReplay)

	require.NoError(t, e.Submit(Command{Kind: CmdToggle}))
	require.NoError(t, e.Tick(0.1))
	assert.True(t, drv.last.Playing)

	require.NoError(t, e.Submit(Command{Kind: CmdPause}))
	require.NoError(t, e.Submit(Command{Kind: CmdReset}))
	require.NoError(t, e.Tick(0.1))
	assert.Equal(t, 0.0, drv.last.Time)
	assert.False(t, drv.last.Playing)
}

func TestPresetTransitionThroughEngine(t *testing.T) {
	var events []Event
	e, drv, clk := newTestEngine(t, Options{OnEvent: func(ev Event) { events = append(events, ev) }})

	require.NoError(t, e.Submit(Command{Kind: CmdPreset, Preset: camera.BirdsEye}))
	require.NoError(t, e.Tick(0))
	assert.Equal(t, camera.Transitioning, drv.last.Camera.Phase)
	assert.False(t, drv.last.Camera.Controls.Enabled)

	// orbit is dropped while the camera is moving
	pose := camera.Pose{Position: geom.Vec3{X: 1, Y: 1, Z: 1}}
	require.NoError(t, e.Submit(Command{Kind: CmdOrbit, Pose: &pose}))

	clk.Add(2 * time.Second)
	require.NoError(t, e.Tick(0))
	assert.Equal(t, camera.Idle, drv.last.Camera.Phase)
	assert.Equal(t, camera.BirdsEye, drv.last.Camera.Current)
	assert.Contains(t, events, Event{Kind: EventTransition, Preset: camera.BirdsEye})

	// QB at ground (0,0) lifts to world (0,1,0)
	assert.Equal(t, geom.Vec3{X: 0, Y: 50, Z: 15}, drv.last.Camera.Pose.Position)

	require.NoError(t, e.Submit(Command{Kind: CmdOrbit, Pose: &pose}))
	require.NoError(t, e.Tick(0))
	assert.Equal(t, pose, drv.last.Camera.Pose)
}

func TestOverlaysAndTracks(t *testing.T) {
	e, drv, _ := newTestEngine(t, Options{})
	require.NoError(t, e.Submit(Command{Kind: CmdOverlay, Overlay: OverlayOpenSpace}))
	require.NoError(t, e.Submit(Command{Kind: CmdTrack, PlayerID: 2}))
	require.NoError(t, e.Tick(0))

	s := drv.last
	assert.True(t, s.Overlays.OpenSpace)
	assert.False(t, s.Overlays.Tracks)
	assert.Equal(t, []int{2}, s.Overlays.Selected)
	require.Len(t, s.Tracks, 1)
	assert.Equal(t, 2, s.Tracks[0].PlayerID)
	assert.Equal(t, []geom.Vec3{{X: 4, Y: 0.1, Z: 3}, {X: 8, Y: 0.1, Z: 6}}, s.Tracks[0].Points)

	require.NoError(t, e.Submit(Command{Kind: CmdOverlay, Overlay: OverlayTracks}))
	require.NoError(t, e.Submit(Command{Kind: CmdTrack, PlayerID: 2}))
	require.NoError(t, e.Tick(0))
	assert.Len(t, drv.last.Tracks, 2)
	assert.Empty(t, drv.last.Overlays.Selected)
}

func TestOpenSpaceFromActiveKeyframe(t *testing.T) {
	e, drv, _ := newTestEngine(t, Options{})
	require.NoError(t, e.Submit(Command{Kind: CmdSeek, Time: 0.5}))
	require.NoError(t, e.Tick(0))

	qb := drv.last.Players[0]
	require.NotNil(t, qb.OpenSpace)
	// keyframe 0 distance, not the interpolated one
	assert.Equal(t, 5.0, qb.OpenSpace.Meters)
	assert.Equal(t, BandModerate, qb.OpenSpace.Band)
}

func TestNearBall(t *testing.T) {
	e, drv, _ := newTestEngine(t, Options{})
	require.NoError(t, e.Tick(0))
	assert.True(t, drv.last.Players[0].NearBall)
	assert.False(t, drv.last.Players[1].NearBall)

	e2, drv2, _ := newTestEngine(t, Options{HighlightIDs: []int{2}})
	require.NoError(t, e2.Tick(0))
	assert.False(t, drv2.last.Players[0].NearBall, "only highlighted players are flagged")
}

func TestDriverError(t *testing.T) {
	var diags []diag.Diagnostic
	e, drv, _ := newTestEngine(t, Options{Diag: func(d diag.Diagnostic) { diags = append(diags, d) }})
	drv.err = errors.New("socket gone")
	err := e.Tick(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "socket gone")
	require.Len(t, diags, 1)
	assert.Equal(t, diag.DriverWrite, diags[0].Code)
	assert.NotNil(t, e.Scene(), "scene still published")
}

func TestTimeEventsPerTickAndSeek(t *testing.T) {
	var times []Event
	e, _, _ := newTestEngine(t, Options{OnEvent: func(ev Event) {
		if ev.Kind == EventTime {
			times = append(times, ev)
		}
	}})

	for _, at := range []float64{0.5, 1, 0} {
		require.NoError(t, e.Submit(Command{Kind: CmdSeek, Time: at}))
		require.NoError(t, e.Tick(0))
	}
	require.Len(t, times, 3, "one per seek")
	assert.Equal(t, 0.5, times[0].Time)
	assert.Equal(t, 1, times[1].Frame)
	assert.Equal(t, 0.0, times[2].Time)

	// paused ticks push nothing
	require.NoError(t, e.Tick(0.25))
	assert.Len(t, times, 3)

	require.NoError(t, e.Submit(Command{Kind: CmdPlay}))
	require.NoError(t, e.Tick(0.25))
	require.NoError(t, e.Tick(0.25))
	require.Len(t, times, 5, "one per playing tick")
	assert.Equal(t, 0.25, times[3].Time)
	assert.Equal(t, 0.5, times[4].Time)
}

func TestFrameEventKeepsIndexZero(t *testing.T) {
	var frames []Event
	e, _, _ := newTestEngine(t, Options{OnEvent: func(ev Event) {
		if ev.Kind == EventFrame {
			frames = append(frames, ev)
		}
	}})

	for _, at := range []float64{0.5, 1, 0} {
		require.NoError(t, e.Submit(Command{Kind: CmdSeek, Time: at}))
		require.NoError(t, e.Tick(0))
	}
	require.Len(t, frames, 2)

	b, err := json.Marshal(frames[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"frame","frame":1}`, string(b))

	b, err = json.Marshal(frames[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"frame","frame":0}`, string(b))
}
