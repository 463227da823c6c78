package play

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/coreman2200/funtimes-replay/internal/geom"
	"gopkg.in/yaml.v3"
)

//go:embed samples/*.json
var samples embed.FS

// DefaultSample is the embedded sequence served when no file is configured.
const DefaultSample = "dejean_int"

// Format selects the codec used by Decode.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// rawSequence mirrors the on-disk layout. Positions are keyed by player id
// as a string and hold [x, z].
type rawSequence struct {
	Teams   []Team     `json:"teams" yaml:"teams"`
	Summary string     `json:"summary_of_play" yaml:"summary_of_play"`
	Players []Player   `json:"players" yaml:"players"`
	Plays   []rawFrame `json:"plays" yaml:"plays"`
}

type rawFrame struct {
	Time        float64               `json:"time" yaml:"time"`
	Description string                `json:"description" yaml:"description"`
	Summary     map[string]string     `json:"summary,omitempty" yaml:"summary,omitempty"`
	Note        string                `json:"note,omitempty" yaml:"note,omitempty"`
	Ball        geom.Vec2             `json:"ball" yaml:"ball"`
	Positions   map[string][2]float64 `json:"positions" yaml:"positions"`
}

// FormatFor picks a format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads and validates a sequence.
func Decode(r io.Reader, f Format) (*Sequence, error) {
	var raw rawSequence
	switch f {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	return raw.build()
}

func (raw rawSequence) build() (*Sequence, error) {
	frames := make([]Frame, 0, len(raw.Plays))
	var bad []string
	for i, rf := range raw.Plays {
		pos := make(map[int]geom.Vec2, len(rf.Positions))
		for k, xz := range rf.Positions {
			id, err := strconv.Atoi(k)
			if err != nil {
				bad = append(bad, fmt.Sprintf("frame %d has non-numeric player key %q", i, k))
				continue
			}
			pos[id] = geom.Vec2{X: xz[0], Z: xz[1]}
		}
		frames = append(frames, Frame{
			Time:        rf.Time,
			Ball:        rf.Ball,
			Positions:   pos,
			Description: rf.Description,
			Summary:     rf.Summary,
			Note:        rf.Note,
		})
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return nil, &ValidationError{Problems: bad}
	}
	return New(raw.Teams, raw.Players, raw.Summary, frames)
}

// Load reads a sequence file, choosing the codec by extension.
func Load(path string) (*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Decode(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadSample decodes one of the embedded sample sequences by name.
func LoadSample(name string) (*Sequence, error) {
	f, err := samples.Open("samples/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("sample %q: %w", name, err)
	}
	defer f.Close()
	return Decode(f, FormatJSON)
}

// Samples lists the embedded sample names.
func Samples() []string {
	entries, _ := samples.ReadDir("samples")
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	return out
}
