package daprhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/runmesh/sidekick/internal/ports"
)

// InvokeMethod calls a method exposed by another sidecar-enabled app.
// A nil body sends no payload; anything else goes through the JSON
// codec. The method name is joined into the path as-is so nested routes
// ("orders/123/cancel") keep working.
func (c *Client) InvokeMethod(ctx context.Context, appID, method, verb string, body any, opts ...ports.CallOption) error {
	if strings.TrimSpace(appID) == "" {
		return ports.InvalidArgument("app id is required")
	}
	if strings.TrimSpace(method) == "" {
		return ports.InvalidArgument("method name is required")
	}
	if strings.TrimSpace(verb) == "" {
		return ports.InvalidArgument("http verb is required")
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return ports.InvalidArgument(fmt.Sprintf("method body is not serializable: %v", err))
		}
		reader = bytes.NewReader(data)
	}

	u := fmt.Sprintf("%s/v1.0/invoke/%s/method/%s", c.resolveAddress(opts), url.PathEscape(appID), method)
	req, err := c.newRequest(ctx, strings.ToUpper(verb), u, reader)
	if err != nil {
		return err
	}
	return c.doDiscard(req)
}
