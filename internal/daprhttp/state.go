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

// SaveState writes records to the named state store. Records carrying
// an ETag request an optimistic-concurrency check in the sidecar;
// records without one overwrite unconditionally.
func (c *Client) SaveState(ctx context.Context, store string, records []ports.StateRecord, opts ...ports.CallOption) error {
	if strings.TrimSpace(store) == "" {
		return ports.InvalidArgument("state store name is required")
	}
	if records == nil {
		records = []ports.StateRecord{}
	}

	body, err := json.Marshal(records)
	if err != nil {
		return ports.InvalidArgument(fmt.Sprintf("state records are not serializable: %v", err))
	}

	u := fmt.Sprintf("%s/v1.0/state/%s", c.resolveAddress(opts), url.PathEscape(store))
	req, err := c.newRequest(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return c.doDiscard(req)
}

// GetState reads one record. The payload bytes pass through untouched;
// the record's ETag comes from the response header and stays empty when
// the sidecar reported none.
func (c *Client) GetState(ctx context.Context, store, key string, opts ...ports.CallOption) (ports.StateRecord, error) {
	if strings.TrimSpace(store) == "" {
		return ports.StateRecord{}, ports.InvalidArgument("state store name is required")
	}
	if strings.TrimSpace(key) == "" {
		return ports.StateRecord{}, ports.InvalidArgument("state key is required")
	}

	u := fmt.Sprintf("%s/v1.0/state/%s/%s", c.resolveAddress(opts), url.PathEscape(store), url.PathEscape(key))
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ports.StateRecord{}, err
	}

	resp, err := c.do(req)
	if err != nil {
		return ports.StateRecord{}, err
	}
	defer resp.Body.Close()

	value, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.StateRecord{}, ports.RequestFailed(err)
	}

	record := ports.StateRecord{
		Key:  key,
		ETag: resp.Header.Get("ETag"),
	}
	if len(value) > 0 {
		record.Value = value
	}
	return record, nil
}

// DeleteState removes one record. A non-empty etag becomes an If-Match
// precondition; the sidecar rejects the delete when versions diverge.
func (c *Client) DeleteState(ctx context.Context, store, key, etag string, opts ...ports.CallOption) error {
	if strings.TrimSpace(store) == "" {
		return ports.InvalidArgument("state store name is required")
	}
	if strings.TrimSpace(key) == "" {
		return ports.InvalidArgument("state key is required")
	}

	u := fmt.Sprintf("%s/v1.0/state/%s/%s", c.resolveAddress(opts), url.PathEscape(store), url.PathEscape(key))
	req, err := c.newRequest(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	if etag != "" {
		req.Header.Set("If-Match", etag)
	}
	return c.doDiscard(req)
}
