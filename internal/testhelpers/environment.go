package testhelpers

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Required environment variables for the end-to-end lifecycle
// environment. The registry holds the test application images; the tag
// pins the build under test.
const (
	EnvTestRegistry = "SIDEKICK_TEST_REGISTRY"
	EnvTestTag      = "SIDEKICK_TEST_TAG"
)

// RunningApp is one sidecar-backed test application instance.
type RunningApp struct {
	// Name is the registry name the app was started from.
	Name string

	// SidecarAddress is the base URL of the app's sidecar, for a
	// client driving the scenario from the host.
	SidecarAddress string

	app     testcontainers.Container
	sidecar testcontainers.Container
	network *testcontainers.DockerNetwork
}

// Environment provisions and tears down sidecar-backed application
// instances for end-to-end scenarios. Each Start launches the named
// application image plus a daprd sidecar sharing a Docker network.
type Environment struct {
	registry string
	tag      string

	mu   sync.Mutex
	apps map[string]*RunningApp
}

// NewEnvironment constructs the lifecycle environment from the two
// required environment variables, failing immediately if either is
// unset.
func NewEnvironment() (*Environment, error) {
	registry := os.Getenv(EnvTestRegistry)
	if registry == "" {
		return nil, fmt.Errorf("%s environment variable not set; it must name the registry holding test application images", EnvTestRegistry)
	}
	tag := os.Getenv(EnvTestTag)
	if tag == "" {
		return nil, fmt.Errorf("%s environment variable not set; it must name the image tag under test", EnvTestTag)
	}
	return &Environment{
		registry: registry,
		tag:      tag,
		apps:     make(map[string]*RunningApp),
	}, nil
}

// Setup prepares the environment. Networks are created per app in
// Start, so Setup only verifies Docker is reachable.
func (e *Environment) Setup(ctx context.Context) error {
	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		return fmt.Errorf("docker is not available: %w", err)
	}
	defer provider.Close()
	if _, err := provider.DaemonHost(ctx); err != nil {
		return fmt.Errorf("docker daemon is not reachable: %w", err)
	}
	return nil
}

// TearDown stops every application still running.
func (e *Environment) TearDown(ctx context.Context) error {
	e.mu.Lock()
	names := make([]string, 0, len(e.apps))
	for name := range e.apps {
		names = append(names, name)
	}
	e.mu.Unlock()

	var firstErr error
	for _, name := range names {
		if err := e.Stop(ctx, name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Start launches <registry>/<app>:<tag> together with a daprd sidecar
// on a dedicated network and waits for the sidecar to become healthy.
func (e *Environment) Start(ctx context.Context, app string) (*RunningApp, error) {
	e.mu.Lock()
	if _, exists := e.apps[app]; exists {
		e.mu.Unlock()
		return nil, fmt.Errorf("application %q is already running", app)
	}
	e.mu.Unlock()

	network, err := testcontainers.GenericNetwork(ctx, testcontainers.GenericNetworkRequest{
		NetworkRequest: testcontainers.NetworkRequest{
			Name:           fmt.Sprintf("sidekick-%s-%d", app, time.Now().UnixNano()),
			CheckDuplicate: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create network for %s: %w", app, err)
	}
	dockerNetwork := network.(*testcontainers.DockerNetwork)

	appContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:    fmt.Sprintf("%s/%s:%s", e.registry, app, e.tag),
			Networks: []string{dockerNetwork.Name},
			NetworkAliases: map[string][]string{
				dockerNetwork.Name: {app},
			},
		},
		Started: true,
	})
	if err != nil {
		_ = dockerNetwork.Remove(context.Background())
		return nil, fmt.Errorf("failed to start application %s: %w", app, err)
	}

	sidecarContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        SidecarImage,
			ExposedPorts: []string{sidecarHTTPPort + "/tcp"},
			Networks:     []string{dockerNetwork.Name},
			Cmd: []string{
				"./daprd",
				"--app-id", app,
				"--app-channel-address", app,
				"--dapr-http-port", sidecarHTTPPort,
			},
			WaitingFor: wait.ForHTTP("/v1.0/healthz").
				WithPort(sidecarHTTPPort + "/tcp").
				WithStatusCodeMatcher(func(status int) bool { return status >= 200 && status < 300 }).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		_ = appContainer.Terminate(context.Background())
		_ = dockerNetwork.Remove(context.Background())
		return nil, fmt.Errorf("failed to start sidecar for %s: %w", app, err)
	}

	host, err := sidecarContainer.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sidecar host for %s: %w", app, err)
	}
	port, err := sidecarContainer.MappedPort(ctx, sidecarHTTPPort)
	if err != nil {
		return nil, fmt.Errorf("failed to get sidecar port for %s: %w", app, err)
	}

	running := &RunningApp{
		Name:           app,
		SidecarAddress: fmt.Sprintf("http://%s:%d", host, port.Int()),
		app:            appContainer,
		sidecar:        sidecarContainer,
		network:        dockerNetwork,
	}

	e.mu.Lock()
	e.apps[app] = running
	e.mu.Unlock()
	return running, nil
}

// Stop terminates the named application and its sidecar.
func (e *Environment) Stop(ctx context.Context, app string) error {
	e.mu.Lock()
	running, ok := e.apps[app]
	delete(e.apps, app)
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("application %q is not running", app)
	}

	var firstErr error
	if err := running.sidecar.Terminate(ctx); err != nil {
		firstErr = err
	}
	if err := running.app.Terminate(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := running.network.Remove(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
