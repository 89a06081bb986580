package toon

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecodeScalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{name: "null", input: "null", want: nil},
		{name: "true", input: "true", want: true},
		{name: "false", input: "false", want: false},
		{name: "integer", input: "42", want: float64(42)},
		{name: "negative", input: "-7", want: float64(-7)},
		{name: "fraction", input: "2.5", want: 2.5},
		{name: "exponent", input: "1e3", want: float64(1000)},
		{name: "bare string", input: "hello", want: "hello"},
		{name: "quoted string", input: `"hello"`, want: "hello"},
		{name: "quoted number stays string", input: `"42"`, want: "42"},
		{name: "leading zero stays string", input: "007", want: "007"},
		{name: "negative leading zero stays string", input: "-007", want: "-007"},
		{name: "version string", input: "1.2.3", want: "1.2.3"},
		{name: "escapes", input: `"a\nb\tc\"d\\e"`, want: "a\nb\tc\"d\\e"},
		{name: "unicode escape", input: `"\u0041"`, want: "A"},
		{name: "empty input is empty object", input: "", want: Object{}},
		{name: "blank lines only", input: "\n\n", want: Object{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeObjects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{
			name:  "flat object",
			input: "name: Ann\nage: 30",
			want:  Object{{Key: "name", Value: "Ann"}, {Key: "age", Value: float64(30)}},
		},
		{
			name:  "insertion order kept",
			input: "z: 1\na: 2",
			want:  Object{{Key: "z", Value: float64(1)}, {Key: "a", Value: float64(2)}},
		},
		{
			name:  "nested object",
			input: "user:\n  name: Ann\nactive: true",
			want: Object{
				{Key: "user", Value: Object{{Key: "name", Value: "Ann"}}},
				{Key: "active", Value: true},
			},
		},
		{
			name:  "empty nested object",
			input: "meta:\nnext: 1",
			want:  Object{{Key: "meta", Value: Object{}}, {Key: "next", Value: float64(1)}},
		},
		{
			name:  "quoted key",
			input: `"my key": 1`,
			want:  Object{{Key: "my key", Value: float64(1)}},
		},
		{
			name:  "quoted value with colon",
			input: `link: "https://x.io/a:1"`,
			want:  Object{{Key: "link", Value: "https://x.io/a:1"}},
		},
		{
			name:  "four space indent unit",
			input: "a:\n    b: 1",
			want:  Object{{Key: "a", Value: Object{{Key: "b", Value: float64(1)}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeArrays(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{
			name:  "empty array",
			input: "tags[0]:",
			want:  Object{{Key: "tags", Value: []any{}}},
		},
		{
			name:  "inline scalars",
			input: "tags[3]: go,cli,web",
			want:  Object{{Key: "tags", Value: []any{"go", "cli", "web"}}},
		},
		{
			name:  "inline mixed scalars",
			input: "vals[3]: 1,null,true",
			want:  Object{{Key: "vals", Value: []any{float64(1), nil, true}}},
		},
		{
			name:  "quoted cell containing delimiter",
			input: "names[2]: \"Smith, John\",Jones",
			want:  Object{{Key: "names", Value: []any{"Smith, John", "Jones"}}},
		},
		{
			name:  "tabular",
			input: "items[2]{id,name}:\n  1,Work\n  2,Research",
			want: Object{{Key: "items", Value: []any{
				Object{{Key: "id", Value: float64(1)}, {Key: "name", Value: "Work"}},
				Object{{Key: "id", Value: float64(2)}, {Key: "name", Value: "Research"}},
			}}},
		},
		{
			name:  "tabular quoted cell",
			input: "rows[1]{a,b}:\n  \"1,5\",2",
			want: Object{{Key: "rows", Value: []any{
				Object{{Key: "a", Value: "1,5"}, {Key: "b", Value: float64(2)}},
			}}},
		},
		{
			name:  "pipe delimiter",
			input: "arr[3|]: 1|2|3",
			want:  Object{{Key: "arr", Value: []any{float64(1), float64(2), float64(3)}}},
		},
		{
			name:  "tab delimiter tabular",
			input: "rows[1\t]{a\tb}:\n  x\ty",
			want: Object{{Key: "rows", Value: []any{
				Object{{Key: "a", Value: "x"}, {Key: "b", Value: "y"}},
			}}},
		},
		{
			name:  "list of objects aligned style",
			input: "items[2]:\n  - id: 1\n    name: a\n  - id: 2\n    name: b",
			want: Object{{Key: "items", Value: []any{
				Object{{Key: "id", Value: float64(1)}, {Key: "name", Value: "a"}},
				Object{{Key: "id", Value: float64(2)}, {Key: "name", Value: "b"}},
			}}},
		},
		{
			name:  "list continuation at hyphen level",
			input: "items[1]:\n  - id: 1\n  name: a",
			want: Object{{Key: "items", Value: []any{
				Object{{Key: "id", Value: float64(1)}, {Key: "name", Value: "a"}},
			}}},
		},
		{
			name:  "list item with nested object",
			input: "items[1]:\n  - id: 1\n    meta:\n      x: 9",
			want: Object{{Key: "items", Value: []any{
				Object{
					{Key: "id", Value: float64(1)},
					{Key: "meta", Value: Object{{Key: "x", Value: float64(9)}}},
				},
			}}},
		},
		{
			name:  "list of scalars",
			input: "items[2]:\n  - alpha beta\n  - gamma",
			want:  Object{{Key: "items", Value: []any{"alpha beta", "gamma"}}},
		},
		{
			name:  "list of empty objects",
			input: "items[2]:\n  -\n  -",
			want:  Object{{Key: "items", Value: []any{Object{}, Object{}}}},
		},
		{
			name:  "root inline array",
			input: "[3]: 1,2,3",
			want:  []any{float64(1), float64(2), float64(3)},
		},
		{
			name:  "root tabular array",
			input: "[2]{a}:\n  1\n  2",
			want: []any{
				Object{{Key: "a", Value: float64(1)}},
				Object{{Key: "a", Value: float64(2)}},
			},
		},
		{
			name:  "array of arrays",
			input: "grid[2]:\n  - [2]: 1,2\n  - [1]: 3",
			want: Object{{Key: "grid", Value: []any{
				[]any{float64(1), float64(2)},
				[]any{float64(3)},
			}}},
		},
		{
			name:  "list item starting with array member",
			input: "items[1]:\n  - tags[2]: a,b\n    id: 7",
			want: Object{{Key: "items", Value: []any{
				Object{
					{Key: "tags", Value: []any{"a", "b"}},
					{Key: "id", Value: float64(7)},
				},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{name: "row count short", input: "items[3]{id}:\n  1\n  2", wantLine: 1},
		{name: "row count long", input: "items[1]{id}:\n  1\n  2", wantLine: 1},
		{name: "inline count mismatch", input: "tags[3]: a,b", wantLine: 1},
		{name: "list count mismatch", input: "items[2]:\n  - a", wantLine: 1},
		{name: "cell count mismatch", input: "items[1]{id,name}:\n  1", wantLine: 2},
		{name: "tab indentation", input: "a:\n\tb: 1", wantLine: 2},
		{name: "indent not a multiple", input: "a:\n  b:\n     c: 1", wantLine: 3},
		{name: "unexpected deep indent", input: "a: 1\n    b: 2", wantLine: 2},
		{name: "first line indented", input: "  a: 1", wantLine: 1},
		{name: "duplicate key", input: "a: 1\na: 2", wantLine: 2},
		{name: "duplicate field", input: "r[1]{a,a}:\n  1,2", wantLine: 1},
		{name: "missing colon", input: "a: 1\nno colon here", wantLine: 2},
		{name: "unterminated quote", input: `a: "open`, wantLine: 1},
		{name: "junk after quote", input: `a: "x" y`, wantLine: 1},
		{name: "header missing bracket", input: "a[:", wantLine: 1},
		{name: "header missing colon", input: "a[2]", wantLine: 1},
		{name: "content after root array", input: "[1]: 1\nextra: 2", wantLine: 2},
		{name: "bad unicode escape", input: `a: "\uZZZZ"`, wantLine: 1},
		{name: "non item in list", input: "items[1]:\n  notanitem", wantLine: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			if err == nil {
				t.Fatalf("Decode(%q) expected error", tt.input)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error type = %T, want *ParseError (%v)", err, err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("ParseError.Line = %d, want %d (%v)", pe.Line, tt.wantLine, err)
			}
		})
	}
}

func TestDecodeLineNumbersSkipBlanks(t *testing.T) {
	// The blank line must not shift reported line numbers.
	input := "a: 1\n\nb: \"oops"
	_, err := Decode(input)
	if err == nil {
		t.Fatal("Decode() expected error")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if pe.Line != 3 {
		t.Errorf("ParseError.Line = %d, want 3", pe.Line)
	}
}
