package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	errs "raindrip/internal/errors"
	"raindrip/internal/models"
	"raindrip/internal/toon"
)

func parseRaindrop(body []byte) (*models.Raindrop, error) {
	var resp struct {
		Item models.Raindrop `json:"item"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errs.NewInternalError(fmt.Errorf("parsing raindrop: %w", err))
	}
	return &resp.Item, nil
}

// Search pages through raindrops in a collection matching query.
// Collection 0 means the whole account. Pages are fetched sequentially
// until a short page signals the end.
func (c *Client) Search(ctx context.Context, query string, collectionID int64) ([]models.Raindrop, error) {
	var all []models.Raindrop

	for page := 0; ; page++ {
		params := url.Values{}
		params.Set("search", query)
		params.Set("page", fmt.Sprintf("%d", page))
		params.Set("perpage", fmt.Sprintf("%d", c.pageSize))

		path := fmt.Sprintf("/raindrops/%d?%s", collectionID, params.Encode())
		body, err := c.request(ctx, "GET", path, nil)
		if err != nil {
			return nil, err
		}

		var resp struct {
			Items []models.Raindrop `json:"items"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, errs.NewInternalError(fmt.Errorf("parsing search results: %w", err))
		}

		if len(resp.Items) == 0 {
			break
		}
		all = append(all, resp.Items...)
		if len(resp.Items) < c.pageSize {
			break
		}
	}

	return all, nil
}

// GetRaindrop fetches a single bookmark by ID.
func (c *Client) GetRaindrop(ctx context.Context, id int64) (*models.Raindrop, error) {
	body, err := c.request(ctx, "GET", fmt.Sprintf("/raindrop/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return parseRaindrop(body)
}

// CreateRaindrop adds a new bookmark.
func (c *Client) CreateRaindrop(ctx context.Context, create models.RaindropCreate) (*models.Raindrop, error) {
	body, err := c.request(ctx, "POST", "/raindrop", create)
	if err != nil {
		return nil, err
	}
	return parseRaindrop(body)
}

// UpdateRaindrop applies a partial update to a bookmark.
func (c *Client) UpdateRaindrop(ctx context.Context, id int64, update models.RaindropUpdate) (*models.Raindrop, error) {
	body, err := c.request(ctx, "PUT", fmt.Sprintf("/raindrop/%d", id), update)
	if err != nil {
		return nil, err
	}
	return parseRaindrop(body)
}

// DeleteRaindrop removes a bookmark (moves it to trash, or erases it
// permanently when it is already there).
func (c *Client) DeleteRaindrop(ctx context.Context, id int64) (bool, error) {
	body, err := c.request(ctx, "DELETE", fmt.Sprintf("/raindrop/%d", id), nil)
	if err != nil {
		return false, err
	}
	return parseResult(body, false)
}

// BatchUpdateRaindrops applies one update to several bookmarks in a
// collection.
func (c *Client) BatchUpdateRaindrops(ctx context.Context, collectionID int64, ids []int64, update models.RaindropUpdate) (bool, error) {
	// The batch endpoint takes the update fields and the ID list in one
	// flat object.
	data, err := json.Marshal(update)
	if err != nil {
		return false, errs.NewInternalError(err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return false, errs.NewInternalError(err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["ids"] = ids

	body, err := c.request(ctx, "PUT", fmt.Sprintf("/raindrops/%d", collectionID), payload)
	if err != nil {
		return false, err
	}
	return parseResult(body, false)
}

// BatchDeleteRaindrops removes several bookmarks from a collection.
// Collection -99 makes the delete permanent.
func (c *Client) BatchDeleteRaindrops(ctx context.Context, collectionID int64, ids []int64) (bool, error) {
	body, err := c.request(ctx, "DELETE", fmt.Sprintf("/raindrops/%d", collectionID), map[string]any{"ids": ids})
	if err != nil {
		return false, err
	}
	return parseResult(body, false)
}

// GetSuggestions fetches tag and collection suggestions for a bookmark.
// The shape varies, so the payload passes through as an ordered value.
func (c *Client) GetSuggestions(ctx context.Context, id int64) (toon.Object, error) {
	body, err := c.request(ctx, "GET", fmt.Sprintf("/raindrop/%d/suggest", id), nil)
	if err != nil {
		return nil, err
	}
	return objectField(body, "item")
}
