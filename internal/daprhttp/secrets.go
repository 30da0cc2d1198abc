package daprhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/runmesh/sidekick/internal/ports"
)

// GetSecret fetches one secret from the named secret store. Metadata
// entries become metadata.<key>=<value> query parameters for stores
// that take lookup hints (e.g. a vault version). The whole response
// body is parsed as the secret document.
func (c *Client) GetSecret(ctx context.Context, store, key string, metadata map[string]string, opts ...ports.CallOption) (map[string]string, error) {
	if strings.TrimSpace(store) == "" {
		return nil, ports.InvalidArgument("secret store name is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, ports.InvalidArgument("secret key is required")
	}

	u := fmt.Sprintf("%s/v1.0/secrets/%s/%s", c.resolveAddress(opts), url.PathEscape(store), url.PathEscape(key))
	if len(metadata) > 0 {
		q := url.Values{}
		for k, v := range metadata {
			q.Set("metadata."+k, v)
		}
		u += "?" + q.Encode()
	}

	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ports.RequestFailed(err)
	}

	var secret map[string]string
	if err := json.Unmarshal(body, &secret); err != nil {
		return nil, &ports.Status{
			Kind:       ports.KindSidecarError,
			StatusCode: resp.StatusCode,
			ErrorCode:  ports.CodeUnknown,
			Message:    "returned secret payload is not valid JSON",
			Cause:      err,
		}
	}
	return secret, nil
}

// Healthz probes the sidecar's health endpoint. Success means the
// sidecar is up and serving its API.
func (c *Client) Healthz(ctx context.Context, opts ...ports.CallOption) error {
	u := c.resolveAddress(opts) + "/v1.0/healthz"
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.doDiscard(req)
}
