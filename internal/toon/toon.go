// Package toon implements TOON (Token-Oriented Object Notation), a compact
// line-oriented serialization of the JSON data model aimed at LLM token
// efficiency. Uniform arrays of flat objects collapse into a tabular form
// with a single header row; nesting is expressed with indentation instead
// of brackets.
//
// The codec round-trips: for any value v in the model,
// Decode(Encode(v)) == v. Objects keep insertion order end to end.
package toon

import "fmt"

// EncodeOptions controls Encode output.
type EncodeOptions struct {
	// Indent is the number of spaces per nesting level. Default 2.
	Indent int
	// Delimiter separates tabular cells and inline array values. Must be
	// ",", "|" or "\t". Default ",".
	Delimiter string
}

// EncodeError reports a value the codec cannot represent.
type EncodeError struct {
	Msg string
}

func (e *EncodeError) Error() string {
	return "toon: " + e.Msg
}

// ParseError reports invalid TOON input with a 1-based line number.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("toon: line %d: %s", e.Line, e.Msg)
}

func parseErrorf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Encode serializes v with default options.
func Encode(v any) (string, error) {
	return EncodeWithOptions(v, EncodeOptions{})
}

// EncodeWithOptions serializes v to TOON. Input is normalized first: maps
// encode with sorted keys, Objects keep their member order, structs follow
// their JSON field order. Output is deterministic: equal values produce
// byte-identical text.
func EncodeWithOptions(v any, opts EncodeOptions) (string, error) {
	if opts.Indent <= 0 {
		opts.Indent = 2
	}
	if opts.Delimiter == "" {
		opts.Delimiter = ","
	}
	switch opts.Delimiter {
	case ",", "|", "\t":
	default:
		return "", &EncodeError{Msg: fmt.Sprintf("unsupported delimiter %q", opts.Delimiter)}
	}

	normalized, err := normalize(v)
	if err != nil {
		return "", err
	}

	e := &encoder{indent: opts.Indent, delimiter: opts.Delimiter}
	return e.encodeDocument(normalized)
}

// Decode parses TOON text into the value model: Object (ordered), []any,
// float64, string, bool and nil. Validation is strict: declared array
// lengths must match, tabular rows must have exactly the header's field
// count, and inconsistent indentation is rejected. Errors carry the
// offending line number.
func Decode(data string) (any, error) {
	p, err := newParser(data)
	if err != nil {
		return nil, err
	}
	return p.parseDocument()
}
