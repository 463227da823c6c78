package camera

import (
	"errors"
	"time"

	"github.com/coreman2200/funtimes-replay/internal/geom"
)

var (
	ErrUnknownPreset    = errors.New("unknown camera preset")
	ErrControlsDisabled = errors.New("camera controls disabled during transition")
)

// Pose is a camera position looking at a target.
type Pose struct {
	Position geom.Vec3 `json:"position"`
	Target   geom.Vec3 `json:"target"`
}

// PolarLimits bound the orbit controls' polar angle, in radians.
type PolarLimits struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Controls is the state of the user orbit controls.
type Controls struct {
	Enabled bool        `json:"enabled"`
	Target  geom.Vec3   `json:"target"`
	Polar   PolarLimits `json:"polar"`
}

// Anchors are the live world positions presets are built from.
type Anchors struct {
	Offense geom.Vec3 `json:"offense"`
	Defense geom.Vec3 `json:"defense"`
}

// Preset is a named viewpoint expressed as a function of live anchors.
type Preset struct {
	ID   string
	Name string
	// BehindSide marks the presets that sit behind one of the two sides.
	// Swapping between them always takes the swing path.
	BehindSide bool
	Polar      PolarLimits
	Position   func(a Anchors) geom.Vec3
	Target     func(a Anchors) geom.Vec3
}

// Pose evaluates the preset's nominal pose for a.
func (p Preset) Pose(a Anchors) Pose {
	return Pose{Position: p.Position(a), Target: p.Target(a)}
}

// Info is the serializable description of a preset.
type Info struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	BehindSide bool        `json:"behind_side"`
	Polar      PolarLimits `json:"polar"`
}

// Phase enumerates orchestrator states.
type Phase string

const (
	Idle          Phase = "idle"
	Transitioning Phase = "transitioning"
)

// Tuning holds the transition parameters.
type Tuning struct {
	LinearDuration float64 `yaml:"linear_duration" json:"linear_duration"` // seconds
	SwingDuration  float64 `yaml:"swing_duration" json:"swing_duration"`   // seconds
	SwingMargin    float64 `yaml:"swing_margin" json:"swing_margin"`       // dead band around X=0
	SwingDepth     float64 `yaml:"swing_depth" json:"swing_depth"`         // control point Z
	SwingPull      float64 `yaml:"swing_pull" json:"swing_pull"`           // control point X scale
	MatchRadius    float64 `yaml:"match_radius" json:"match_radius"`       // pose to preset match
}

func DefaultTuning() Tuning {
	return Tuning{
		LinearDuration: 1.2,
		SwingDuration:  1.8,
		SwingMargin:    5,
		SwingDepth:     25,
		SwingPull:      0.7,
		MatchRadius:    1,
	}
}

// Hooks are callbacks fired by the orchestrator.
type Hooks struct {
	OnTransitionComplete func(presetID string)
}

// Transition is an in-flight camera move. Discarded on completion or restart.
type Transition struct {
	Start    time.Time `json:"start"`
	From     Pose      `json:"from"`
	To       string    `json:"to"`
	Swing    bool      `json:"swing"`
	Duration float64   `json:"duration"`
}

// Orchestrator moves the camera between presets. Not safe for concurrent
// use; the render loop owns it.
type Orchestrator struct {
	presets []Preset
	byID    map[string]int
	tuning  Tuning
	hooks   Hooks

	phase    Phase
	current  string
	pose     Pose
	controls Controls
	pending  string
	tr       *Transition
	progress float64
}
