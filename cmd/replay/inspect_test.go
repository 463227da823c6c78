package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-replay/internal/api"
	"github.com/coreman2200/funtimes-replay/internal/play"
)

func TestPrintSequence(t *testing.T) {
	seq, err := play.LoadSample(play.DefaultSample)
	require.NoError(t, err)

	var buf bytes.Buffer
	printSequence(&buf, seq)
	out := buf.String()
	assert.Contains(t, out, "11 frames, 4.70s")
	assert.Contains(t, out, "Patrick Mahomes")
	assert.Contains(t, out, "offense")
}

func TestPrintOpenSpace(t *testing.T) {
	seq, err := play.LoadSample(play.DefaultSample)
	require.NoError(t, err)

	var buf bytes.Buffer
	printOpenSpace(&buf, api.OpenSpaceAt(seq, 0))
	out := buf.String()
	assert.Contains(t, out, "frame 0  t=0.00s")
	assert.Contains(t, out, "METERS")
	assert.Contains(t, out, "QB")
}

func TestOpenSpaceCommandRange(t *testing.T) {
	rf := &rootFlags{}
	cmd := openSpaceCmd(rf)
	cmd.SetArgs([]string{"--frame", "99"})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
