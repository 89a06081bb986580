package toon

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

type encoder struct {
	indent    int
	delimiter string
	b         strings.Builder
	started   bool
}

var (
	// numberPattern is the strict scalar number grammar. Bare cells matching
	// it decode as numbers; anything else stays a string. Leading-zero forms
	// like 007 deliberately do not match.
	numberPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

	// looseNumberPattern catches number-shaped strings the strict grammar
	// rejects, such as 007 or 1.5.2's prefix forms. Strings matching either
	// pattern must be quoted so they survive a round trip.
	looseNumberPattern = regexp.MustCompile(`^[+-]?[0-9][0-9_.eE+-]*$`)

	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
)

func (e *encoder) encodeDocument(v any) (string, error) {
	switch val := v.(type) {
	case Object:
		if err := e.writeObject(val, 0); err != nil {
			return "", err
		}
	case []any:
		if err := e.writeArray(val, 0, ""); err != nil {
			return "", err
		}
	default:
		s, err := e.scalar(v)
		if err != nil {
			return "", err
		}
		e.line(0)
		e.b.WriteString(s)
	}
	return e.b.String(), nil
}

// line starts a new output line at the given depth. The first line of the
// document gets no leading newline so output never starts or ends blank.
func (e *encoder) line(depth int) {
	if e.started {
		e.b.WriteByte('\n')
	}
	e.started = true
	for i := 0; i < depth*e.indent; i++ {
		e.b.WriteByte(' ')
	}
}

func (e *encoder) writeObject(obj Object, depth int) error {
	for _, m := range obj {
		if err := e.writeMember(m.Key, m.Value, depth); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeMember(key string, v any, depth int) error {
	switch val := v.(type) {
	case Object:
		e.line(depth)
		e.b.WriteString(e.encodeKey(key))
		e.b.WriteByte(':')
		return e.writeObject(val, depth+1)
	case []any:
		return e.writeArray(val, depth, key)
	default:
		s, err := e.scalar(v)
		if err != nil {
			return err
		}
		e.line(depth)
		e.b.WriteString(e.encodeKey(key))
		e.b.WriteString(": ")
		e.b.WriteString(s)
		return nil
	}
}

// writeArray emits an array under the given key ("" for root arrays),
// starting a fresh line for the header.
func (e *encoder) writeArray(arr []any, depth int, key string) error {
	e.line(depth)
	if key != "" {
		e.b.WriteString(e.encodeKey(key))
	}
	e.b.WriteByte('[')
	e.b.WriteString(strconv.Itoa(len(arr)))
	if e.delimiter != "," {
		e.b.WriteString(e.delimiter)
	}
	e.b.WriteByte(']')

	if len(arr) == 0 {
		e.b.WriteByte(':')
		return nil
	}

	if fields, ok := tabularFields(arr); ok {
		return e.writeTabular(arr, fields, depth)
	}
	if allScalars(arr) {
		return e.writeInline(arr)
	}
	return e.writeList(arr, depth)
}

// tabularFields reports whether every element is an Object with the same
// ordered, non-empty key sequence and only scalar values. The shared key
// order becomes the header.
func tabularFields(arr []any) ([]string, bool) {
	first, ok := arr[0].(Object)
	if !ok || len(first) == 0 {
		return nil, false
	}
	fields := first.Keys()
	for _, item := range arr {
		obj, ok := item.(Object)
		if !ok || len(obj) != len(fields) {
			return nil, false
		}
		for i, m := range obj {
			if m.Key != fields[i] || !isScalar(m.Value) {
				return nil, false
			}
		}
	}
	return fields, true
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, bool, float64, string:
		return true
	}
	return false
}

func allScalars(arr []any) bool {
	for _, item := range arr {
		if !isScalar(item) {
			return false
		}
	}
	return true
}

func (e *encoder) writeTabular(arr []any, fields []string, depth int) error {
	e.b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			e.b.WriteString(e.delimiter)
		}
		e.b.WriteString(e.encodeKey(f))
	}
	e.b.WriteString("}:")

	for _, item := range arr {
		obj := item.(Object)
		e.line(depth + 1)
		for i, m := range obj {
			if i > 0 {
				e.b.WriteString(e.delimiter)
			}
			s, err := e.scalar(m.Value)
			if err != nil {
				return err
			}
			e.b.WriteString(s)
		}
	}
	return nil
}

func (e *encoder) writeInline(arr []any) error {
	e.b.WriteString(": ")
	for i, item := range arr {
		if i > 0 {
			e.b.WriteString(e.delimiter)
		}
		s, err := e.scalar(item)
		if err != nil {
			return err
		}
		e.b.WriteString(s)
	}
	return nil
}

// writeList emits the hyphen form. Object items put their first member on
// the hyphen line; remaining members sit one level below the hyphen, their
// nested values one level below that.
func (e *encoder) writeList(arr []any, depth int) error {
	e.b.WriteByte(':')
	itemDepth := depth + 1

	for _, item := range arr {
		switch val := item.(type) {
		case Object:
			if len(val) == 0 {
				e.line(itemDepth)
				e.b.WriteByte('-')
				continue
			}
			e.line(itemDepth)
			e.b.WriteString("- ")
			if err := e.writeItemMember(val[0].Key, val[0].Value, itemDepth+1); err != nil {
				return err
			}
			for _, m := range val[1:] {
				if err := e.writeMember(m.Key, m.Value, itemDepth+1); err != nil {
					return err
				}
			}
		case []any:
			e.line(itemDepth)
			e.b.WriteString("- ")
			if err := e.writeArrayInline(val, itemDepth, ""); err != nil {
				return err
			}
		default:
			s, err := e.scalar(item)
			if err != nil {
				return err
			}
			e.line(itemDepth)
			e.b.WriteString("- ")
			e.b.WriteString(s)
		}
	}
	return nil
}

// writeItemMember writes a member whose key sits mid-line after "- ".
// Nested content still indents relative to bodyDepth.
func (e *encoder) writeItemMember(key string, v any, bodyDepth int) error {
	switch val := v.(type) {
	case Object:
		e.b.WriteString(e.encodeKey(key))
		e.b.WriteByte(':')
		return e.writeObject(val, bodyDepth+1)
	case []any:
		return e.writeArrayInline(val, bodyDepth, key)
	default:
		s, err := e.scalar(v)
		if err != nil {
			return err
		}
		e.b.WriteString(e.encodeKey(key))
		e.b.WriteString(": ")
		e.b.WriteString(s)
		return nil
	}
}

// writeArrayInline continues the current line with an array header; any
// rows or items go one level below bodyDepth.
func (e *encoder) writeArrayInline(arr []any, bodyDepth int, key string) error {
	if key != "" {
		e.b.WriteString(e.encodeKey(key))
	}
	e.b.WriteByte('[')
	e.b.WriteString(strconv.Itoa(len(arr)))
	if e.delimiter != "," {
		e.b.WriteString(e.delimiter)
	}
	e.b.WriteByte(']')

	if len(arr) == 0 {
		e.b.WriteByte(':')
		return nil
	}
	if fields, ok := tabularFields(arr); ok {
		return e.writeTabular(arr, fields, bodyDepth)
	}
	if allScalars(arr) {
		return e.writeInline(arr)
	}
	return e.writeList(arr, bodyDepth)
}

func (e *encoder) scalar(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return formatNumber(val), nil
	case string:
		return e.encodeString(val), nil
	default:
		return "", &EncodeError{Msg: fmt.Sprintf("unsupported type %T", v)}
	}
}

// formatNumber renders the shortest decimal form that parses back to the
// same float64. NaN and infinities have no TOON form and become null.
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (e *encoder) encodeString(s string) string {
	if needsQuoting(s) {
		return quoteString(s)
	}
	return s
}

func (e *encoder) encodeKey(key string) string {
	if identifierPattern.MatchString(key) {
		return key
	}
	return quoteString(key)
}

// needsQuoting reports whether a bare rendering of s would decode as
// something other than the string s.
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	switch s {
	case "true", "false", "null":
		return true
	}
	if s[0] == ' ' || s[len(s)-1] == ' ' || s[0] == '-' || s[0] == '#' {
		return true
	}
	for _, c := range s {
		switch c {
		case ':', '"', '\\', '\n', '\r', '\t', '[', ']', '{', '}', ',', '|':
			return true
		}
		if c < 0x20 {
			return true
		}
	}
	if numberPattern.MatchString(s) || looseNumberPattern.MatchString(s) {
		return true
	}
	return false
}

func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, c)
			} else {
				b.WriteRune(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
