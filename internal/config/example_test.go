package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExampleFileMatchesDefaults(t *testing.T) {
	c, err := Load("../../config.example.yaml")
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, Default(), c)
}
