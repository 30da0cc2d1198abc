package testhelpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SidecarImage is the daprd image integration tests run against.
const SidecarImage = "daprio/daprd:1.13.5"

// sidecarHTTPPort is the HTTP port daprd is told to listen on inside
// the container.
const sidecarHTTPPort = "3500"

// SidecarContainer is a daprd process running in Docker, reachable from
// the host at Address.
type SidecarContainer struct {
	// Address is the base URL for a client, e.g. "http://localhost:49154".
	Address string

	// Container is the running daprd container.
	Container testcontainers.Container
}

// StartSidecarContainer starts a standalone daprd container for
// integration tests. The container is terminated via t.Cleanup.
//
// Requirements: a running Docker daemon and the SidecarImage pullable.
// Gate callers with testing.Short:
//
//	if testing.Short() {
//	    t.Skip("skipping container-based test in short mode")
//	}
func StartSidecarContainer(t *testing.T) *SidecarContainer {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        SidecarImage,
		ExposedPorts: []string{sidecarHTTPPort + "/tcp"},
		Cmd: []string{
			"./daprd",
			"--app-id", "sidekick-test",
			"--dapr-http-port", sidecarHTTPPort,
			"--enable-app-health-check=false",
		},
		WaitingFor: wait.ForHTTP("/v1.0/healthz").
			WithPort(sidecarHTTPPort + "/tcp").
			WithStatusCodeMatcher(func(status int) bool { return status >= 200 && status < 300 }).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start sidecar container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate sidecar container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get sidecar host: %v", err)
	}
	port, err := container.MappedPort(ctx, sidecarHTTPPort)
	if err != nil {
		t.Fatalf("Failed to get sidecar port: %v", err)
	}

	sc := &SidecarContainer{
		Address:   fmt.Sprintf("http://%s:%d", host, port.Int()),
		Container: container,
	}
	t.Logf("sidecar container ready at %s", sc.Address)
	return sc
}

// WaitUntilReady polls probe until it succeeds or ctx expires. The
// client itself never retries; readiness polling is a harness concern.
func WaitUntilReady(ctx context.Context, probe func(context.Context) error) error {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := probe(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("sidecar did not become ready: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
