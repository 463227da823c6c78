package diagnostics

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes raised by the engine and its hosts.
const (
	SequenceLoaded   = "SEQ.LOADED"
	CommandRejected  = "CMD.REJECTED"
	OrbitRejected    = "CAMERA.ORBIT_REJECTED"
	DriverWrite      = "DRIVER.WRITE_FAILED"
	PlaybackComplete = "PLAYBACK.COMPLETE"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Sink receives diagnostics. A nil Sink discards them.
type Sink func(Diagnostic)

func (s Sink) Push(d Diagnostic) {
	if s != nil {
		s(d)
	}
}
