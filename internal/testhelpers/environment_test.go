package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvironment_RequiresRegistry(t *testing.T) {
	t.Setenv(EnvTestRegistry, "")
	t.Setenv(EnvTestTag, "dev")

	_, err := NewEnvironment()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvTestRegistry)
}

func TestNewEnvironment_RequiresTag(t *testing.T) {
	t.Setenv(EnvTestRegistry, "ghcr.io/runmesh")
	t.Setenv(EnvTestTag, "")

	_, err := NewEnvironment()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvTestTag)
}

func TestNewEnvironment_BothSet(t *testing.T) {
	t.Setenv(EnvTestRegistry, "ghcr.io/runmesh")
	t.Setenv(EnvTestTag, "dev")

	env, err := NewEnvironment()
	require.NoError(t, err)
	assert.NotNil(t, env)
}

func TestEnvironment_StopUnknownApp(t *testing.T) {
	t.Setenv(EnvTestRegistry, "ghcr.io/runmesh")
	t.Setenv(EnvTestTag, "dev")

	env, err := NewEnvironment()
	require.NoError(t, err)

	err = env.Stop(t.Context(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}
