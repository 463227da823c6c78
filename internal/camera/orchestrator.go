package camera

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreman2200/funtimes-replay/internal/geom"
)

// degenerate controls targets fall back to the offense anchor
const minTargetLength = 0.01

// New returns an Orchestrator resting Idle on defaultID's nominal pose.
func New(presets []Preset, defaultID string, t Tuning, a Anchors, h Hooks) (*Orchestrator, error) {
	if len(presets) == 0 {
		return nil, errors.New("no camera presets")
	}
	if t.LinearDuration <= 0 || t.SwingDuration <= 0 {
		return nil, fmt.Errorf("transition durations must be positive (linear %v, swing %v)", t.LinearDuration, t.SwingDuration)
	}
	byID := make(map[string]int, len(presets))
	for i, p := range presets {
		if p.Position == nil || p.Target == nil {
			return nil, fmt.Errorf("preset %q has no pose functions", p.ID)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate preset %q", p.ID)
		}
		byID[p.ID] = i
	}
	i, ok := byID[defaultID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, defaultID)
	}
	p := presets[i]
	pose := p.Pose(a)
	return &Orchestrator{
		presets: presets,
		byID:    byID,
		tuning:  t,
		hooks:   h,
		phase:   Idle,
		current: defaultID,
		pose:    pose,
		controls: Controls{
			Enabled: true,
			Target:  pose.Target,
			Polar:   p.Polar,
		},
	}, nil
}

// Request asks for a move to preset id. It takes effect on the next Tick.
// A later request before that Tick replaces an earlier one.
func (o *Orchestrator) Request(id string) error {
	if _, ok := o.byID[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, id)
	}
	o.pending = id
	return nil
}

// Orbit applies a user-driven pose. Only allowed while Idle.
func (o *Orchestrator) Orbit(p Pose) error {
	if o.phase != Idle || !o.controls.Enabled {
		return ErrControlsDisabled
	}
	o.pose = p
	o.controls.Target = p.Target
	return nil
}

// Tick applies a pending request and advances any transition to now.
func (o *Orchestrator) Tick(now time.Time, a Anchors) {
	if o.pending != "" {
		id := o.pending
		o.pending = ""
		o.begin(now, id, a)
	}
	if o.tr != nil {
		o.step(now, a)
	}
}

func (o *Orchestrator) begin(now time.Time, id string, a Anchors) {
	if o.phase == Idle && id == o.current {
		return
	}
	from := o.pose
	if from.Target.Length() <= minTargetLength {
		from.Target = a.Offense
	}
	to := o.presets[o.byID[id]]
	swing := o.needsSwing(from.Position, to, a)
	d := o.tuning.LinearDuration
	if swing {
		d = o.tuning.SwingDuration
	}
	o.tr = &Transition{Start: now, From: from, To: id, Swing: swing, Duration: d}
	o.current = id
	o.phase = Transitioning
	o.controls.Enabled = false
	o.progress = 0
}

func (o *Orchestrator) step(now time.Time, a Anchors) {
	tr := o.tr
	to := o.presets[o.byID[tr.To]]
	nominal := to.Pose(a)

	raw := now.Sub(tr.Start).Seconds() / tr.Duration
	if raw >= 1 {
		o.complete(to, nominal)
		return
	}
	raw = geom.Clamp01(raw)
	p := geom.EaseInOutCubic(raw)

	var pos geom.Vec3
	if tr.Swing {
		avgY := (tr.From.Position.Y + nominal.Position.Y) / 2
		c1 := geom.Vec3{X: tr.From.Position.X * o.tuning.SwingPull, Y: avgY, Z: o.tuning.SwingDepth}
		c2 := geom.Vec3{X: nominal.Position.X * o.tuning.SwingPull, Y: avgY, Z: o.tuning.SwingDepth}
		pos = geom.Bezier3(tr.From.Position, c1, c2, nominal.Position, p)
	} else {
		pos = geom.Lerp3(tr.From.Position, nominal.Position, p)
	}
	o.pose = Pose{Position: pos, Target: geom.Lerp3(tr.From.Target, nominal.Target, p)}
	o.progress = raw
}

func (o *Orchestrator) complete(to Preset, nominal Pose) {
	o.pose = nominal
	o.controls = Controls{Enabled: true, Target: nominal.Target, Polar: to.Polar}
	o.phase = Idle
	o.tr = nil
	o.progress = 1
	if o.hooks.OnTransitionComplete != nil {
		o.hooks.OnTransitionComplete(to.ID)
	}
}

// needsSwing reports whether a move from fromPos to preset to should curve
// around the scene: the move crosses the centre line outside the dead band,
// or it swaps the two behind-a-side presets.
func (o *Orchestrator) needsSwing(fromPos geom.Vec3, to Preset, a Anchors) bool {
	toPos := to.Position(a)
	m := o.tuning.SwingMargin
	if (fromPos.X < -m && toPos.X > m) || (fromPos.X > m && toPos.X < -m) {
		return true
	}
	if !to.BehindSide {
		return false
	}
	from, ok := o.match(fromPos, a)
	return ok && from.BehindSide && from.ID != to.ID
}

// match finds the first preset whose live position is within MatchRadius of pos.
func (o *Orchestrator) match(pos geom.Vec3, a Anchors) (Preset, bool) {
	for _, p := range o.presets {
		if p.Position(a).DistanceTo(pos) < o.tuning.MatchRadius {
			return p, true
		}
	}
	return Preset{}, false
}

// State is a serializable snapshot of the orchestrator.
type State struct {
	Phase    Phase    `json:"phase"`
	Current  string   `json:"current"`
	Pose     Pose     `json:"pose"`
	Controls Controls `json:"controls"`
	Progress float64  `json:"progress"`
	Swing    bool     `json:"swing"`
}

func (o *Orchestrator) State() State {
	st := State{
		Phase:    o.phase,
		Current:  o.current,
		Pose:     o.pose,
		Controls: o.controls,
		Progress: o.progress,
	}
	if o.tr != nil {
		st.Swing = o.tr.Swing
	}
	return st
}

func (o *Orchestrator) Pose() Pose         { return o.pose }
func (o *Orchestrator) Controls() Controls { return o.controls }
func (o *Orchestrator) Phase() Phase       { return o.phase }
func (o *Orchestrator) Current() string    { return o.current }

// Transition returns a copy of the in-flight transition, if any.
func (o *Orchestrator) Transition() (Transition, bool) {
	if o.tr == nil {
		return Transition{}, false
	}
	return *o.tr, true
}

// Presets lists the configured presets in order.
func (o *Orchestrator) Presets() []Info {
	out := make([]Info, 0, len(o.presets))
	for _, p := range o.presets {
		out = append(out, Info{ID: p.ID, Name: p.Name, BehindSide: p.BehindSide, Polar: p.Polar})
	}
	return out
}
