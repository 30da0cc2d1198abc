package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Defaults(t *testing.T) {
	t.Setenv(EnvHTTPPort, "")
	t.Setenv(EnvAPIToken, "")
	t.Setenv(EnvRequestTimeout, "")

	cfg, err := Resolve(FileConfig{})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3500", cfg.Address)
	assert.Empty(t, cfg.APIToken)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultMaxIdleConns, cfg.MaxIdleConns)
	assert.Equal(t, DefaultMaxIdleConnsPerHost, cfg.MaxIdleConnsPerHost)
	assert.Equal(t, DefaultIdleConnTimeout, cfg.IdleConnTimeout)
}

func TestResolve_PortFromEnv(t *testing.T) {
	tests := []struct {
		name string
		port string
		want string
	}{
		{"valid port", "3501", "http://localhost:3501"},
		{"unset", "", "http://localhost:3500"},
		{"unparseable", "not-a-port", "http://localhost:3500"},
		{"negative", "-1", "http://localhost:3500"},
		{"zero", "0", "http://localhost:3500"},
		{"surrounding whitespace", " 3502 ", "http://localhost:3502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvHTTPPort, tt.port)

			cfg, err := Resolve(FileConfig{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Address)
		})
	}
}

func TestResolve_ExplicitAddressWinsOverPort(t *testing.T) {
	t.Setenv(EnvHTTPPort, "3501")

	cfg, err := Resolve(FileConfig{
		Sidecar: SidecarSection{Address: "http://localhost:9999"},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", cfg.Address)
}

func TestResolve_TrailingSlashStripped(t *testing.T) {
	cfg, err := Resolve(FileConfig{
		Sidecar: SidecarSection{Address: "http://localhost:3500/"},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3500", cfg.Address)
}

func TestResolve_FilePortUsedWhenNoAddress(t *testing.T) {
	t.Setenv(EnvHTTPPort, "")

	cfg, err := Resolve(FileConfig{
		Sidecar: SidecarSection{HTTPPort: 4000},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000", cfg.Address)
}

func TestResolve_APITokenFromEnv(t *testing.T) {
	t.Setenv(EnvAPIToken, "s3cr3t")

	cfg, err := Resolve(FileConfig{})
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", cfg.APIToken)
}

func TestResolve_EnvTokenWinsOverFile(t *testing.T) {
	t.Setenv(EnvAPIToken, "from-env")

	cfg, err := Resolve(FileConfig{
		Sidecar: SidecarSection{APIToken: "from-file"},
	})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIToken)
}

func TestResolve_RequestTimeout(t *testing.T) {
	t.Setenv(EnvRequestTimeout, "")

	cfg, err := Resolve(FileConfig{
		Sidecar: SidecarSection{RequestTimeout: "5s"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestResolve_InvalidFileTimeoutFails(t *testing.T) {
	_, err := Resolve(FileConfig{
		Sidecar: SidecarSection{RequestTimeout: "soon"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request_timeout")
}

func TestResolve_InvalidEnvTimeoutFailsFast(t *testing.T) {
	t.Setenv(EnvRequestTimeout, "whenever")

	_, err := Resolve(FileConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvRequestTimeout)
}

func TestResolve_HTTPSection(t *testing.T) {
	cfg, err := Resolve(FileConfig{
		HTTP: HTTPSection{
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     "30s",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxIdleConns)
	assert.Equal(t, 5, cfg.MaxIdleConnsPerHost)
	assert.Equal(t, 30*time.Second, cfg.IdleConnTimeout)
}
