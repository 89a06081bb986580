package api

import (
	"context"
	"encoding/json"
	"fmt"

	errs "raindrip/internal/errors"
)

// ListTags fetches all tag names in use.
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	body, err := c.request(ctx, "GET", "/tags", nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Items []struct {
			ID string `json:"_id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errs.NewInternalError(fmt.Errorf("parsing tags: %w", err))
	}
	tags := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		tags = append(tags, item.ID)
	}
	return tags, nil
}

// DeleteTags removes tags from every bookmark in the collection.
// Collection 0 means the whole account.
func (c *Client) DeleteTags(ctx context.Context, tags []string, collectionID int64) (bool, error) {
	body, err := c.request(ctx, "DELETE", fmt.Sprintf("/tags/%d", collectionID), map[string]any{"tags": tags})
	if err != nil {
		return false, err
	}
	return parseResult(body, false)
}

// RenameTag renames a tag, merging with an existing tag of the new name.
func (c *Client) RenameTag(ctx context.Context, oldName, newName string, collectionID int64) (bool, error) {
	payload := map[string]any{"replace": newName, "tags": []string{oldName}}
	body, err := c.request(ctx, "PUT", fmt.Sprintf("/tags/%d", collectionID), payload)
	if err != nil {
		return false, err
	}
	return parseResult(body, false)
}
