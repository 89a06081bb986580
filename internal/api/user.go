package api

import (
	"context"
	"encoding/json"
	"fmt"

	errs "raindrip/internal/errors"
	"raindrip/internal/toon"
)

// GetUser fetches the authenticated user. The payload is returned as an
// ordered value so pass-through output keeps the API's field order.
func (c *Client) GetUser(ctx context.Context) (toon.Object, error) {
	body, err := c.request(ctx, "GET", "/user", nil)
	if err != nil {
		return nil, err
	}
	return objectField(body, "user")
}

// Stat is one entry of the account statistics list.
type Stat struct {
	ID    int64 `json:"_id"`
	Count int64 `json:"count"`
}

// GetStats fetches account statistics (counts per system collection).
func (c *Client) GetStats(ctx context.Context) ([]Stat, error) {
	body, err := c.request(ctx, "GET", "/user/stats", nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Items []Stat `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errs.NewInternalError(fmt.Errorf("parsing stats: %w", err))
	}
	return resp.Items, nil
}

// objectField extracts a named object member from a response body,
// preserving member order.
func objectField(body []byte, key string) (toon.Object, error) {
	v, err := toon.ParseJSON(body)
	if err != nil {
		return nil, errs.NewInternalError(fmt.Errorf("parsing response: %w", err))
	}
	obj, ok := v.(toon.Object)
	if !ok {
		return nil, errs.NewInternalError(fmt.Errorf("response is not an object"))
	}
	field, ok := obj.Get(key)
	if !ok {
		return toon.Object{}, nil
	}
	fieldObj, ok := field.(toon.Object)
	if !ok {
		return nil, errs.NewInternalError(fmt.Errorf("response field %q is not an object", key))
	}
	return fieldObj, nil
}
