package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	errs "raindrip/internal/errors"
	"raindrip/internal/models"
)

func parseCollections(body []byte) ([]models.Collection, error) {
	var resp struct {
		Items []models.Collection `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errs.NewInternalError(fmt.Errorf("parsing collections: %w", err))
	}
	return resp.Items, nil
}

func parseCollection(body []byte) (*models.Collection, error) {
	var resp struct {
		Item models.Collection `json:"item"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errs.NewInternalError(fmt.Errorf("parsing collection: %w", err))
	}
	return &resp.Item, nil
}

// ListCollections fetches every collection, root and nested.
func (c *Client) ListCollections(ctx context.Context) ([]models.Collection, error) {
	body, err := c.request(ctx, "GET", "/collections/all", nil)
	if err != nil {
		return nil, err
	}
	return parseCollections(body)
}

// ListRootCollections fetches top-level collections only.
func (c *Client) ListRootCollections(ctx context.Context) ([]models.Collection, error) {
	body, err := c.request(ctx, "GET", "/collections", nil)
	if err != nil {
		return nil, err
	}
	return parseCollections(body)
}

// ListChildCollections fetches nested collections only.
func (c *Client) ListChildCollections(ctx context.Context) ([]models.Collection, error) {
	body, err := c.request(ctx, "GET", "/collections/childrens", nil)
	if err != nil {
		return nil, err
	}
	return parseCollections(body)
}

// GetCollection fetches a single collection by ID.
func (c *Client) GetCollection(ctx context.Context, id int64) (*models.Collection, error) {
	body, err := c.request(ctx, "GET", fmt.Sprintf("/collection/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return parseCollection(body)
}

// CreateCollection creates a new collection.
func (c *Client) CreateCollection(ctx context.Context, create models.CollectionCreate) (*models.Collection, error) {
	body, err := c.request(ctx, "POST", "/collection", create)
	if err != nil {
		return nil, err
	}
	return parseCollection(body)
}

// UpdateCollection applies a partial update to a collection.
func (c *Client) UpdateCollection(ctx context.Context, id int64, update models.CollectionUpdate) (*models.Collection, error) {
	body, err := c.request(ctx, "PUT", fmt.Sprintf("/collection/%d", id), update)
	if err != nil {
		return nil, err
	}
	return parseCollection(body)
}

// DeleteCollection removes a collection. Its raindrops move to trash.
func (c *Client) DeleteCollection(ctx context.Context, id int64) (bool, error) {
	body, err := c.request(ctx, "DELETE", fmt.Sprintf("/collection/%d", id), nil)
	if err != nil {
		return false, err
	}
	return parseResult(body, false)
}

// DeleteCollections removes several collections in one call. The API
// sometimes answers this endpoint with an empty body on success.
func (c *Client) DeleteCollections(ctx context.Context, ids []int64) (bool, error) {
	body, err := c.request(ctx, "DELETE", "/collections", map[string]any{"ids": ids})
	if err != nil {
		return false, err
	}
	return parseResult(body, true)
}

// ReorderCollections sorts all collections by the given order
// (title, -title or -count).
func (c *Client) ReorderCollections(ctx context.Context, sort string) (bool, error) {
	body, err := c.request(ctx, "PUT", "/collections", map[string]any{"sort": sort})
	if err != nil {
		return false, err
	}
	return parseResult(body, false)
}

// ExpandAllCollections expands or collapses every collection.
func (c *Client) ExpandAllCollections(ctx context.Context, expanded bool) (bool, error) {
	body, err := c.request(ctx, "PUT", "/collections", map[string]any{"expanded": expanded})
	if err != nil {
		return false, err
	}
	return parseResult(body, false)
}

// MergeCollections merges the given collections into target.
func (c *Client) MergeCollections(ctx context.Context, ids []int64, target int64) (bool, error) {
	body, err := c.request(ctx, "PUT", "/collections/merge", map[string]any{"ids": ids, "to": target})
	if err != nil {
		return false, err
	}
	return parseResult(body, true)
}

// CleanEmptyCollections removes all empty collections and returns how
// many were removed.
func (c *Client) CleanEmptyCollections(ctx context.Context) (int, error) {
	body, err := c.request(ctx, "PUT", "/collections/clean", nil)
	if err != nil {
		return 0, err
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, errs.NewInternalError(fmt.Errorf("parsing response: %w", err))
	}
	return resp.Count, nil
}

// EmptyTrash permanently deletes everything in the trash collection.
func (c *Client) EmptyTrash(ctx context.Context) (bool, error) {
	body, err := c.request(ctx, "DELETE", "/collection/-99", nil)
	if err != nil {
		return false, err
	}
	return parseResult(body, false)
}

// SearchCovers searches Raindrop's icon library and returns the PNG URLs
// flattened out of the grouped response.
func (c *Client) SearchCovers(ctx context.Context, query string) ([]string, error) {
	body, err := c.request(ctx, "GET", "/collections/covers/"+query, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Items []struct {
			Icons []map[string]string `json:"icons"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errs.NewInternalError(fmt.Errorf("parsing covers: %w", err))
	}
	var urls []string
	for _, group := range resp.Items {
		for _, icon := range group.Icons {
			if png, ok := icon["png"]; ok {
				urls = append(urls, png)
			}
		}
	}
	return urls, nil
}

// UploadCover uploads a cover image for a collection as a multipart
// request. Under dry-run the upload is skipped and a placeholder
// collection comes back.
func (c *Client) UploadCover(ctx context.Context, id int64, filename string, image io.Reader) (*models.Collection, error) {
	path := fmt.Sprintf("/collection/%d/cover", id)
	if c.dryRun {
		c.logger.Info("[DRY RUN] skipping write request", map[string]interface{}{
			"method": "PUT",
			"path":   path,
			"file":   filename,
		})
		return &models.Collection{ID: id, Title: "Dry Run Icon"}, nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("cover", filepath.Base(filename))
	if err != nil {
		return nil, errs.NewInternalError(err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, errs.NewInternalError(err)
	}
	if err := mw.Close(); err != nil {
		return nil, errs.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, &buf)
	if err != nil {
		return nil, errs.NewInternalError(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.NewNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errs.NewNetworkError(err)
	}
	if resp.StatusCode >= 400 {
		return nil, apiError(resp.StatusCode, data)
	}
	return parseCollection(data)
}

// DownloadIcon fetches an icon image from an arbitrary URL.
func (c *Client) DownloadIcon(ctx context.Context, url string) ([]byte, error) {
	return c.download(ctx, url)
}
