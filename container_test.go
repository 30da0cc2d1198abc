package sidekick_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sidekick "github.com/runmesh/sidekick"
	"github.com/runmesh/sidekick/internal/testhelpers"
)

// TestContainerizedSidecar runs the client against a real daprd in
// Docker. Requires a Docker daemon; skipped in short mode.
func TestContainerizedSidecar(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}

	sc := testhelpers.StartSidecarContainer(t)

	client, err := sidekick.Connect()
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	addr := sidekick.WithAddress(sc.Address)
	require.NoError(t, testhelpers.WaitUntilReady(ctx, func(ctx context.Context) error {
		return client.Healthz(ctx, addr)
	}))

	// daprd's default standalone config ships an in-memory state store
	// named "statestore" only when components are mounted; without
	// components, state calls surface normalized sidecar errors. Either
	// way the taxonomy holds: we never see a raw transport error.
	err = client.SaveState(ctx, "statestore", []sidekick.StateRecord{
		{Key: "o1", Value: json.RawMessage(`{"qty":2}`)},
	}, addr)
	if err != nil {
		st, ok := sidekick.AsStatus(err)
		require.True(t, ok, "expected a normalized Status, got %v", err)
		assert.Equal(t, sidekick.KindSidecarError, st.Kind)
		assert.NotEmpty(t, st.ErrorCode)
		assert.NotZero(t, st.StatusCode)
	}
}
