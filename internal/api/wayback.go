package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
)

// CheckWayback asks the Wayback Machine for the closest snapshot of url.
// It returns the snapshot URL, or "" when none exists. Availability is a
// best-effort lookup against a third party, so failures degrade to "no
// snapshot" instead of failing the command.
func (c *Client) CheckWayback(ctx context.Context, target string) string {
	u := c.waybackURL + "?" + url.Values{"url": {target}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ""
	}
	resp, err := c.plain.Do(req)
	if err != nil {
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return ""
	}

	var parsed struct {
		ArchivedSnapshots struct {
			Closest struct {
				URL string `json:"url"`
			} `json:"closest"`
		} `json:"archived_snapshots"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ""
	}
	return parsed.ArchivedSnapshots.Closest.URL
}
