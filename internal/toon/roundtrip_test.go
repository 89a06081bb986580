package toon

import (
	"reflect"
	"testing"
)

// TestRoundTrip feeds values through Encode then Decode and requires the
// exact original back.
func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{name: "null", value: nil},
		{name: "bool", value: true},
		{name: "number", value: 42.5},
		{name: "large number", value: float64(1 << 50)},
		{name: "tiny fraction", value: 0.0000001},
		{name: "bare string", value: "plain words here"},
		{name: "numeric string", value: "42"},
		{name: "leading zero string", value: "007"},
		{name: "literal string", value: "null"},
		{name: "tricky string", value: " spaced, and: \"quoted\" [deep]\nnewline "},
		{name: "empty object", value: Object{}},
		{name: "empty array", value: []any{}},
		{
			name: "flat object",
			value: Object{
				{Key: "title", Value: "My Bookmarks"},
				{Key: "count", Value: float64(12)},
				{Key: "public", Value: false},
				{Key: "note", Value: nil},
			},
		},
		{
			name: "reversed member order survives",
			value: Object{
				{Key: "count", Value: float64(12)},
				{Key: "title", Value: "My Bookmarks"},
			},
		},
		{
			name: "nested objects",
			value: Object{
				{Key: "user", Value: Object{
					{Key: "name", Value: "Ann"},
					{Key: "prefs", Value: Object{{Key: "theme", Value: "dark"}}},
				}},
				{Key: "empty", Value: Object{}},
			},
		},
		{
			name: "tabular array",
			value: Object{{Key: "collections", Value: []any{
				Object{{Key: "id", Value: float64(1)}, {Key: "name", Value: "Work"}},
				Object{{Key: "id", Value: float64(2)}, {Key: "name", Value: "Research"}},
			}}},
		},
		{
			name: "tabular with awkward cells",
			value: Object{{Key: "rows", Value: []any{
				Object{{Key: "a", Value: "x,y"}, {Key: "b", Value: ""}, {Key: "c", Value: nil}},
				Object{{Key: "a", Value: "true"}, {Key: "b", Value: "007"}, {Key: "c", Value: float64(-1)}},
			}}},
		},
		{
			name:  "inline scalars",
			value: Object{{Key: "tags", Value: []any{"go", "cli", float64(3), nil, true, "with space"}}},
		},
		{
			name: "list array with mixed shapes",
			value: Object{{Key: "items", Value: []any{
				Object{{Key: "id", Value: float64(1)}, {Key: "deep", Value: Object{{Key: "x", Value: float64(2)}}}},
				"just a string",
				float64(9),
				Object{},
				[]any{float64(1), float64(2)},
			}}},
		},
		{
			name:  "root array of scalars",
			value: []any{"a", "b", "c"},
		},
		{
			name: "root array of objects",
			value: []any{
				Object{{Key: "id", Value: float64(1)}, {Key: "name", Value: "Work"}},
				Object{{Key: "id", Value: float64(2)}, {Key: "name", Value: "Research"}},
			},
		},
		{
			name: "deep mix",
			value: Object{
				{Key: "result", Value: true},
				{Key: "items", Value: []any{
					Object{
						{Key: "id", Value: float64(101)},
						{Key: "link", Value: "https://example.com/a?q=1"},
						{Key: "tags", Value: []any{"read-later", "go"}},
						{Key: "media", Value: []any{
							Object{{Key: "type", Value: "image"}, {Key: "href", Value: "https://img.example.com/1.png"}},
						}},
					},
				}},
				{Key: "count", Value: float64(1)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.value)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode() error = %v\nencoded:\n%s", err, encoded)
			}
			if !reflect.DeepEqual(decoded, tt.value) {
				t.Errorf("round trip mismatch:\nencoded:\n%s\ngot:  %#v\nwant: %#v", encoded, decoded, tt.value)
			}
		})
	}
}

func TestRoundTripDelimiters(t *testing.T) {
	value := Object{{Key: "rows", Value: []any{
		Object{{Key: "a", Value: "x|y"}, {Key: "b", Value: "p,q"}},
		Object{{Key: "a", Value: "m"}, {Key: "b", Value: "n\tz"}},
	}}}

	for _, delim := range []string{",", "|", "\t"} {
		encoded, err := EncodeWithOptions(value, EncodeOptions{Delimiter: delim})
		if err != nil {
			t.Fatalf("EncodeWithOptions(%q) error = %v", delim, err)
		}
		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode() with delimiter %q error = %v\nencoded:\n%s", delim, err, encoded)
		}
		if !reflect.DeepEqual(decoded, value) {
			t.Errorf("round trip with delimiter %q mismatch:\nencoded:\n%s\ngot: %#v", delim, encoded, decoded)
		}
	}
}

// TestCollectionsTabularShape pins the canonical example: a uniform array
// of flat objects must render as a two-row table under an id,name header
// and decode back exactly.
func TestCollectionsTabularShape(t *testing.T) {
	value := []any{
		Object{{Key: "id", Value: float64(1)}, {Key: "name", Value: "Work"}},
		Object{{Key: "id", Value: float64(2)}, {Key: "name", Value: "Research"}},
	}

	encoded, err := Encode(value)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := "[2]{id,name}:\n  1,Work\n  2,Research"
	if encoded != want {
		t.Errorf("Encode() = %q, want %q", encoded, want)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !reflect.DeepEqual(decoded, value) {
		t.Errorf("Decode() = %#v, want %#v", decoded, value)
	}
}

func TestRoundTripThroughJSON(t *testing.T) {
	// API responses enter as JSON; their key order must survive the whole
	// JSON -> value -> TOON -> value trip.
	raw := `{"result":true,"items":[{"_id":7,"title":"A","tags":["x","y"]},{"_id":8,"title":"B","tags":[]}],"count":2}`

	v, err := ParseJSON([]byte(raw))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	encoded, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error = %v\nencoded:\n%s", err, encoded)
	}
	if !reflect.DeepEqual(decoded, v) {
		t.Errorf("round trip mismatch:\nencoded:\n%s\ngot:  %#v\nwant: %#v", encoded, decoded, v)
	}

	obj, ok := decoded.(Object)
	if !ok {
		t.Fatalf("decoded type = %T, want Object", decoded)
	}
	wantKeys := []string{"result", "items", "count"}
	if !reflect.DeepEqual(obj.Keys(), wantKeys) {
		t.Errorf("key order = %v, want %v", obj.Keys(), wantKeys)
	}
}
