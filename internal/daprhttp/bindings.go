package daprhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/runmesh/sidekick/internal/ports"
)

// InvokeBinding sends a message to the named output binding. The whole
// message serializes as the POST body except Name, which only selects
// the URL path segment.
func (c *Client) InvokeBinding(ctx context.Context, msg ports.BindingMessage, opts ...ports.CallOption) error {
	if strings.TrimSpace(msg.Name) == "" {
		return ports.InvalidArgument("binding name is required")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return ports.InvalidArgument(fmt.Sprintf("binding message is not serializable: %v", err))
	}

	u := fmt.Sprintf("%s/v1.0/bindings/%s", c.resolveAddress(opts), url.PathEscape(msg.Name))
	req, err := c.newRequest(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return c.doDiscard(req)
}
