package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coreman2200/funtimes-replay/internal/camera"
	"github.com/coreman2200/funtimes-replay/internal/play"
	"github.com/coreman2200/funtimes-replay/internal/render"
	"github.com/coreman2200/funtimes-replay/internal/ws"
)

const maxCommandBytes = 64 << 10

type Handler struct {
	eng     ws.Engine
	seq     *play.Sequence
	presets []camera.Info
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     "funtimes replay",
		"status":   "running",
		"frames":   len(h.seq.Frames),
		"duration": h.seq.Duration(),
		"sockets":  []string{"/ws", "/ws/diag", "/ws/control"},
	})
}

type sequenceBody struct {
	*play.Sequence
	Duration float64 `json:"duration"`
}

func (h *Handler) GetSequence(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sequenceBody{Sequence: h.seq, Duration: h.seq.Duration()})
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	s := h.eng.Scene()
	if s == nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "no scene rendered yet")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) GetPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.presets)
}

func (h *Handler) GetSamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, play.Samples())
}

// PostCommand queues a render.Command for the next tick.
func (h *Handler) PostCommand(w http.ResponseWriter, r *http.Request) {
	var c render.Command
	dec := json.NewDecoder(io.LimitReader(r.Body, maxCommandBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := h.eng.Submit(c); err != nil {
		writeError(w, commandStatus(err), "command_rejected", err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"queued": true, "kind": c.Kind})
}

func commandStatus(err error) int {
	switch {
	case errors.Is(err, camera.ErrUnknownPreset),
		errors.Is(err, render.ErrUnknownPlayer):
		return http.StatusNotFound
	case errors.Is(err, render.ErrUnknownCommand),
		errors.Is(err, render.ErrUnknownOverlay),
		errors.Is(err, render.ErrMissingPose):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// OpenSpaceRow is one player's open space at a keyframe.
type OpenSpaceRow struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Team     string `json:"team"`
	render.OpenSpaceView
}

type OpenSpaceFrame struct {
	Frame   int            `json:"frame"`
	Time    float64        `json:"time"`
	Players []OpenSpaceRow `json:"players"`
}

// OpenSpaceAt builds the styled open-space rows of keyframe i, ordered by
// player id.
func OpenSpaceAt(seq *play.Sequence, i int) OpenSpaceFrame {
	f := seq.Frames[i]
	out := OpenSpaceFrame{Frame: i, Time: f.Time, Players: []OpenSpaceRow{}}
	for id, d := range f.OpenSpace {
		p, _ := seq.Player(id)
		out.Players = append(out.Players, OpenSpaceRow{
			PlayerID:      id,
			Name:          p.Name,
			Position:      p.Position,
			Team:          p.Team,
			OpenSpaceView: render.StyleOpenSpace(d),
		})
	}
	sort.Slice(out.Players, func(a, b int) bool { return out.Players[a].PlayerID < out.Players[b].PlayerID })
	return out
}

func (h *Handler) GetOpenSpace(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "frame"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "frame must be an integer")
		return
	}
	if i < 0 || i > h.seq.LastIndex() {
		writeError(w, http.StatusNotFound, "not_found", "frame "+strconv.Itoa(i)+" out of range")
		return
	}
	writeJSON(w, http.StatusOK, OpenSpaceAt(h.seq, i))
}

func (h *Handler) GetOpenSpaceTable(w http.ResponseWriter, r *http.Request) {
	out := make([]OpenSpaceFrame, len(h.seq.Frames))
	for i := range h.seq.Frames {
		out[i] = OpenSpaceAt(h.seq, i)
	}
	writeJSON(w, http.StatusOK, out)
}
