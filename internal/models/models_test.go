package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestRaindropFromAPI(t *testing.T) {
	raw := `{
		"_id": 1001,
		"link": "https://example.com/post",
		"title": "A Post",
		"excerpt": "Short summary",
		"tags": ["go", "cli"],
		"type": "article",
		"collectionId": 42,
		"created": "2024-01-15T10:00:00.000Z",
		"media": [{"link": "https://img.example.com/1.png", "type": "image"}],
		"important": true
	}`

	var r Raindrop
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if r.ID != 1001 {
		t.Errorf("ID = %d, want 1001", r.ID)
	}
	if r.Link != "https://example.com/post" {
		t.Errorf("Link = %q", r.Link)
	}
	if !reflect.DeepEqual(r.Tags, []string{"go", "cli"}) {
		t.Errorf("Tags = %v", r.Tags)
	}
	if r.CollectionID != 42 {
		t.Errorf("CollectionID = %d, want 42", r.CollectionID)
	}
	if len(r.Media) != 1 || r.Media[0].Type != "image" {
		t.Errorf("Media = %v", r.Media)
	}
	if !r.Important {
		t.Error("Important = false, want true")
	}
}

func TestCollectionParentRef(t *testing.T) {
	raw := `{"_id": 7, "title": "Sub", "parent": {"$id": 3}, "count": 5}`

	var c Collection
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if c.Parent == nil || c.Parent.ID != 3 {
		t.Errorf("Parent = %v, want $id 3", c.Parent)
	}

	// and back out
	out, err := json.Marshal(CollectionCreate{Title: "Sub", Parent: &CollectionRef{ID: 3}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), `"parent":{"$id":3}`) {
		t.Errorf("Marshal() = %s, want embedded $id ref", out)
	}
}

func TestRaindropUpdateOnlySetFields(t *testing.T) {
	title := "New Title"
	upd := RaindropUpdate{Title: &title}

	out, err := json.Marshal(upd)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"title":"New Title"}`
	if string(out) != want {
		t.Errorf("Marshal() = %s, want %s", out, want)
	}

	// clearing tags sends an empty list rather than dropping the key
	empty := []string{}
	upd = RaindropUpdate{Tags: &empty}
	out, err = json.Marshal(upd)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"tags":[]}` {
		t.Errorf("Marshal() = %s, want {\"tags\":[]}", out)
	}
}

func TestDecodeStrict(t *testing.T) {
	t.Run("valid update", func(t *testing.T) {
		var upd RaindropUpdate
		err := DecodeStrict([]byte(`{"title":"x","collectionId":5}`), &upd)
		if err != nil {
			t.Fatalf("DecodeStrict() error = %v", err)
		}
		if upd.Title == nil || *upd.Title != "x" {
			t.Errorf("Title = %v, want x", upd.Title)
		}
		if upd.CollectionID == nil || *upd.CollectionID != 5 {
			t.Errorf("CollectionID = %v, want 5", upd.CollectionID)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		var upd RaindropUpdate
		if err := DecodeStrict([]byte(`{"titel":"typo"}`), &upd); err == nil {
			t.Error("DecodeStrict() should reject unknown fields")
		}
	})

	t.Run("trailing content rejected", func(t *testing.T) {
		var upd CollectionUpdate
		if err := DecodeStrict([]byte(`{"title":"a"} {"title":"b"}`), &upd); err == nil {
			t.Error("DecodeStrict() should reject trailing JSON")
		}
	})

	t.Run("malformed JSON rejected", func(t *testing.T) {
		var upd RaindropUpdate
		if err := DecodeStrict([]byte(`{"title":`), &upd); err == nil {
			t.Error("DecodeStrict() should reject malformed JSON")
		}
	})
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int64
		wantErr bool
	}{
		{name: "single", input: "42", want: []int64{42}},
		{name: "multiple", input: "1,2,3", want: []int64{1, 2, 3}},
		{name: "spaces tolerated", input: " 1 , 2 ", want: []int64{1, 2}},
		{name: "trailing comma", input: "1,2,", want: []int64{1, 2}},
		{name: "not a number", input: "1,abc", wantErr: true},
		{name: "float rejected", input: "1.5", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "only commas", input: ",,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDList(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseIDList(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIDList(%q) error = %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseIDList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitTags(t *testing.T) {
	got := SplitTags(" go , cli ,,web ")
	if !reflect.DeepEqual(got, []string{"go", "cli", "web"}) {
		t.Errorf("SplitTags() = %v", got)
	}
	if got := SplitTags(""); len(got) != 0 {
		t.Errorf("SplitTags(\"\") = %v, want empty", got)
	}
}
