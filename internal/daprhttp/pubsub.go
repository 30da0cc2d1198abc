package daprhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/runmesh/sidekick/internal/ports"
)

// PublishEvent publishes payload to a topic on the named pub/sub
// component. The payload's raw JSON text is the request body,
// byte-for-byte; it is never decoded and re-encoded. A nil payload
// publishes an empty event.
func (c *Client) PublishEvent(ctx context.Context, pubsub, topic string, payload json.RawMessage, opts ...ports.CallOption) error {
	if strings.TrimSpace(pubsub) == "" {
		return ports.InvalidArgument("pubsub name is required")
	}
	if strings.TrimSpace(topic) == "" {
		return ports.InvalidArgument("topic name is required")
	}

	var reader io.Reader
	if len(payload) > 0 {
		reader = bytes.NewReader(payload)
	}

	u := fmt.Sprintf("%s/v1.0/publish/%s/%s", c.resolveAddress(opts), url.PathEscape(pubsub), url.PathEscape(topic))
	req, err := c.newRequest(ctx, http.MethodPost, u, reader)
	if err != nil {
		return err
	}
	return c.doDiscard(req)
}
