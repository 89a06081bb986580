// Package models defines the Raindrop.io API payload types and the input
// validation helpers commands use before issuing requests.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CollectionRef references another collection, wired as {"$id": N}.
type CollectionRef struct {
	ID int64 `json:"$id"`
}

// Collection is a collection as returned by the API.
type Collection struct {
	ID            int64          `json:"_id"`
	Title         string         `json:"title"`
	Count         int64          `json:"count,omitempty"`
	Parent        *CollectionRef `json:"parent,omitempty"`
	View          string         `json:"view,omitempty"`
	Public        *bool          `json:"public,omitempty"`
	Expanded      *bool          `json:"expanded,omitempty"`
	Sort          int64          `json:"sort,omitempty"`
	Cover         []string       `json:"cover,omitempty"`
	Created       string         `json:"created,omitempty"`
	LastUpdate    string         `json:"lastUpdate,omitempty"`
	Color         string         `json:"color,omitempty"`
	Access        map[string]any `json:"access,omitempty"`
	Collaborators map[string]any `json:"collaborators,omitempty"`
	User          map[string]any `json:"user,omitempty"`
}

// CollectionCreate is the POST /collection payload.
type CollectionCreate struct {
	Title  string         `json:"title"`
	View   string         `json:"view,omitempty"`
	Public *bool          `json:"public,omitempty"`
	Parent *CollectionRef `json:"parent,omitempty"`
}

// CollectionUpdate is the PUT /collection/{id} payload. Pointer fields
// keep unset values out of the request, so an update touches only what
// the caller provided.
type CollectionUpdate struct {
	Title    *string        `json:"title,omitempty"`
	View     *string        `json:"view,omitempty"`
	Public   *bool          `json:"public,omitempty"`
	Parent   *CollectionRef `json:"parent,omitempty"`
	Expanded *bool          `json:"expanded,omitempty"`
}

// Media is one entry of a raindrop's media list.
type Media struct {
	Link string `json:"link,omitempty"`
	Type string `json:"type,omitempty"`
}

// Raindrop is a bookmark as returned by the API.
type Raindrop struct {
	ID           int64    `json:"_id"`
	Link         string   `json:"link"`
	Title        string   `json:"title,omitempty"`
	Excerpt      string   `json:"excerpt,omitempty"`
	Note         string   `json:"note,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Cover        string   `json:"cover,omitempty"`
	Created      string   `json:"created,omitempty"`
	LastUpdate   string   `json:"lastUpdate,omitempty"`
	Type         string   `json:"type,omitempty"`
	Important    bool     `json:"important,omitempty"`
	CollectionID int64    `json:"collectionId,omitempty"`
	Domain       string   `json:"domain,omitempty"`
	Media        []Media  `json:"media,omitempty"`
	Broken       bool     `json:"broken,omitempty"`
}

// RaindropCreate is the POST /raindrop payload.
type RaindropCreate struct {
	Link         string   `json:"link"`
	Title        string   `json:"title,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	CollectionID int64    `json:"collectionId,omitempty"`
}

// RaindropUpdate is the PUT /raindrop/{id} payload and the field set
// accepted by batch updates. Pointers distinguish "clear this field" from
// "leave it alone".
type RaindropUpdate struct {
	Link         *string        `json:"link,omitempty"`
	Title        *string        `json:"title,omitempty"`
	Excerpt      *string        `json:"excerpt,omitempty"`
	Note         *string        `json:"note,omitempty"`
	Tags         *[]string      `json:"tags,omitempty"`
	CollectionID *int64         `json:"collectionId,omitempty"`
	Collection   *CollectionRef `json:"collection,omitempty"`
}

// DecodeStrict unmarshals user-supplied JSON into v, rejecting unknown
// fields and trailing content. Commands use it to validate payloads
// before anything reaches the network.
func DecodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected content after JSON value")
	}
	return nil
}

// ParseIDList splits a comma-separated ID list into integers. Blank
// entries are skipped; anything non-numeric fails the whole list.
func ParseIDList(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ID %q", p)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no IDs given")
	}
	return ids, nil
}

// SplitTags splits a comma-separated tag list, trimming whitespace and
// dropping empties.
func SplitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
