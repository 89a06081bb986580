package toon

import (
	"strconv"
	"strings"
)

// srcLine is one non-blank input line with its original position. depth is
// the nesting level derived from leading spaces and the detected indent
// unit.
type srcLine struct {
	num   int
	depth int
	text  string
}

type parser struct {
	lines []srcLine
	pos   int
}

// newParser scans the input into lines, rejecting tab indentation and any
// indent that is not a whole multiple of the document's indent unit. The
// unit is taken from the first indented line.
func newParser(data string) (*parser, error) {
	raw := strings.Split(data, "\n")

	type scanned struct {
		num    int
		spaces int
		text   string
	}
	var kept []scanned
	unit := 0
	for i, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		spaces := 0
		for spaces < len(l) && l[spaces] == ' ' {
			spaces++
		}
		if spaces < len(l) && l[spaces] == '\t' {
			return nil, parseErrorf(i+1, "tab indentation is not allowed")
		}
		text := strings.TrimRight(l[spaces:], " ")
		if text == "" {
			continue
		}
		if unit == 0 && spaces > 0 {
			unit = spaces
		}
		kept = append(kept, scanned{num: i + 1, spaces: spaces, text: text})
	}

	p := &parser{lines: make([]srcLine, 0, len(kept))}
	for _, s := range kept {
		depth := 0
		if s.spaces > 0 {
			if s.spaces%unit != 0 {
				return nil, parseErrorf(s.num, "indent of %d spaces is not a multiple of the %d-space unit", s.spaces, unit)
			}
			depth = s.spaces / unit
		}
		p.lines = append(p.lines, srcLine{num: s.num, depth: depth, text: s.text})
	}
	return p, nil
}

func (p *parser) more() bool {
	return p.pos < len(p.lines)
}

func (p *parser) cur() srcLine {
	return p.lines[p.pos]
}

func (p *parser) next() {
	p.pos++
}

func (p *parser) parseDocument() (any, error) {
	if !p.more() {
		return Object{}, nil
	}

	first := p.cur()
	if first.depth != 0 {
		return nil, parseErrorf(first.num, "unexpected indentation")
	}

	h, err := parseHeader(first.text, first.num)
	if err != nil {
		return nil, err
	}
	if h != nil && h.key == "" {
		p.next()
		arr, err := p.parseArrayBody(h, 0)
		if err != nil {
			return nil, err
		}
		if p.more() {
			return nil, parseErrorf(p.cur().num, "unexpected content after array")
		}
		return arr, nil
	}

	if len(p.lines) == 1 && h == nil && !hasKeyValueShape(first.text) {
		return parseScalarText(first.text, first.num)
	}

	obj, err := p.parseObjectBody(0)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// parseObjectBody consumes consecutive members at exactly depth. Lines
// deeper than depth at member position are orphaned and rejected.
func (p *parser) parseObjectBody(depth int) (Object, error) {
	obj := Object{}
	seen := make(map[string]bool)

	for p.more() {
		ln := p.cur()
		if ln.depth < depth {
			break
		}
		if ln.depth > depth {
			return nil, parseErrorf(ln.num, "unexpected indentation")
		}
		key, val, err := p.parseMember(depth)
		if err != nil {
			return nil, err
		}
		if seen[key] {
			return nil, parseErrorf(ln.num, "duplicate key %q", key)
		}
		seen[key] = true
		obj = append(obj, Member{Key: key, Value: val})
	}
	return obj, nil
}

// parseMember consumes one member line plus any nested content it owns.
func (p *parser) parseMember(depth int) (string, any, error) {
	ln := p.cur()

	h, err := parseHeader(ln.text, ln.num)
	if err != nil {
		return "", nil, err
	}
	if h != nil {
		if h.key == "" {
			return "", nil, parseErrorf(ln.num, "array header needs a key here")
		}
		p.next()
		val, err := p.parseArrayBody(h, depth)
		return h.key, val, err
	}

	key, rest, err := splitKeyValue(ln.text, ln.num)
	if err != nil {
		return "", nil, err
	}
	p.next()

	if rest == "" {
		if p.more() && p.cur().depth == depth+1 {
			val, err := p.parseObjectBody(depth + 1)
			return key, val, err
		}
		return key, Object{}, nil
	}

	val, err := parseScalarText(rest, ln.num)
	return key, val, err
}

// parseArrayBody reads an array's content after its header line has been
// consumed. ownerDepth is the level the header sits at; rows and list
// items live one level deeper.
func (p *parser) parseArrayBody(h *header, ownerDepth int) (any, error) {
	if h.fields != nil {
		if h.inline != "" {
			return nil, parseErrorf(h.line, "unexpected content after tabular header")
		}
		return p.parseTabularRows(h, ownerDepth+1)
	}
	if h.inline != "" {
		cells, err := splitCells(h.inline, h.delim, h.line)
		if err != nil {
			return nil, err
		}
		arr := make([]any, 0, len(cells))
		for _, c := range cells {
			arr = append(arr, c.scalar())
		}
		if len(arr) != h.count {
			return nil, parseErrorf(h.line, "array declares %d values, found %d", h.count, len(arr))
		}
		return arr, nil
	}
	if h.count == 0 {
		return []any{}, nil
	}
	return p.parseListItems(h, ownerDepth+1)
}

func (p *parser) parseTabularRows(h *header, rowDepth int) (any, error) {
	arr := []any{}
	for p.more() {
		ln := p.cur()
		if ln.depth < rowDepth {
			break
		}
		if ln.depth > rowDepth {
			return nil, parseErrorf(ln.num, "unexpected indentation")
		}
		cells, err := splitCells(ln.text, h.delim, ln.num)
		if err != nil {
			return nil, err
		}
		if len(cells) != len(h.fields) {
			return nil, parseErrorf(ln.num, "row has %d cells, header lists %d fields", len(cells), len(h.fields))
		}
		row := make(Object, 0, len(h.fields))
		for i, f := range h.fields {
			row = append(row, Member{Key: f, Value: cells[i].scalar()})
		}
		arr = append(arr, row)
		p.next()
	}
	if len(arr) != h.count {
		return nil, parseErrorf(h.line, "array declares %d rows, found %d", h.count, len(arr))
	}
	return arr, nil
}

func (p *parser) parseListItems(h *header, itemDepth int) (any, error) {
	arr := []any{}
	for p.more() {
		ln := p.cur()
		if ln.depth < itemDepth {
			break
		}
		if ln.depth > itemDepth {
			return nil, parseErrorf(ln.num, "unexpected indentation")
		}
		if ln.text == "-" {
			arr = append(arr, Object{})
			p.next()
			continue
		}
		if !strings.HasPrefix(ln.text, "- ") {
			return nil, parseErrorf(ln.num, "expected list item")
		}
		item, err := p.parseListItem(itemDepth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, item)
	}
	if len(arr) != h.count {
		return nil, parseErrorf(h.line, "array declares %d items, found %d", h.count, len(arr))
	}
	return arr, nil
}

// parseListItem reads one "- " item and whatever nested lines belong to
// it. Object items carry their first member on the hyphen line; further
// members sit one level below the hyphen (or, tolerated, at the hyphen's
// own level without a hyphen prefix).
func (p *parser) parseListItem(itemDepth int) (any, error) {
	ln := p.cur()
	content := strings.TrimLeft(ln.text[2:], " ")
	p.next()

	h, err := parseHeader(content, ln.num)
	if err != nil {
		return nil, err
	}
	if h != nil && h.key == "" {
		// item is itself an array
		return p.parseArrayBody(h, itemDepth)
	}

	if h == nil && !hasKeyValueShape(content) {
		return parseScalarText(content, ln.num)
	}

	// object item
	obj := Object{}
	seen := make(map[string]bool)
	bodyDepth := itemDepth + 1

	var firstKey string
	var firstVal any
	if h != nil {
		firstKey = h.key
		firstVal, err = p.parseArrayBody(h, bodyDepth)
		if err != nil {
			return nil, err
		}
	} else {
		key, rest, err := splitKeyValue(content, ln.num)
		if err != nil {
			return nil, err
		}
		firstKey = key
		if rest == "" {
			if p.more() && p.cur().depth == bodyDepth+1 {
				firstVal, err = p.parseObjectBody(bodyDepth + 1)
				if err != nil {
					return nil, err
				}
			} else {
				firstVal = Object{}
			}
		} else {
			firstVal, err = parseScalarText(rest, ln.num)
			if err != nil {
				return nil, err
			}
		}
	}
	obj = append(obj, Member{Key: firstKey, Value: firstVal})
	seen[firstKey] = true

	for p.more() {
		cont := p.cur()
		var memberDepth int
		switch {
		case cont.depth == bodyDepth:
			memberDepth = bodyDepth
		case cont.depth == itemDepth && !strings.HasPrefix(cont.text, "-") && looksLikeMember(cont.text):
			memberDepth = itemDepth
		default:
			return obj, nil
		}
		key, val, err := p.parseMember(memberDepth)
		if err != nil {
			return nil, err
		}
		if seen[key] {
			return nil, parseErrorf(cont.num, "duplicate key %q", key)
		}
		seen[key] = true
		obj = append(obj, Member{Key: key, Value: val})
	}
	return obj, nil
}

func looksLikeMember(text string) bool {
	if hasKeyValueShape(text) {
		return true
	}
	h, err := parseHeader(text, 0)
	return err == nil && h != nil && h.key != ""
}

// header is a parsed array header line such as tags[3]: or rows[2|]{a|b}:.
type header struct {
	key    string
	count  int
	delim  byte
	fields []string
	inline string
	line   int
}

// parseHeader returns nil when text is not an array header at all, and an
// error when it starts like one but is malformed.
func parseHeader(text string, lineNum int) (*header, error) {
	key := ""
	rest := text

	if strings.HasPrefix(text, `"`) {
		val, next, err := scanQuoted(text, 0, lineNum)
		if err != nil || next >= len(text) || text[next] != '[' {
			return nil, nil
		}
		key = val
		rest = text[next:]
	} else {
		bracket := strings.IndexByte(text, '[')
		if bracket < 0 {
			return nil, nil
		}
		colon := strings.IndexByte(text, ':')
		if colon >= 0 && colon < bracket {
			return nil, nil
		}
		quote := strings.IndexByte(text, '"')
		if quote >= 0 && quote < bracket {
			return nil, nil
		}
		key = strings.TrimSpace(text[:bracket])
		rest = text[bracket:]
	}

	i := 1 // past '['
	start := i
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == start {
		return nil, parseErrorf(lineNum, "array header is missing its length")
	}
	count, err := strconv.Atoi(rest[start:i])
	if err != nil {
		return nil, parseErrorf(lineNum, "bad array length %q", rest[start:i])
	}

	delim := byte(',')
	if i < len(rest) && (rest[i] == ',' || rest[i] == '|' || rest[i] == '\t') {
		delim = rest[i]
		i++
	}
	if i >= len(rest) || rest[i] != ']' {
		return nil, parseErrorf(lineNum, "array header is missing ']'")
	}
	i++

	var fields []string
	if i < len(rest) && rest[i] == '{' {
		end := strings.IndexByte(rest[i:], '}')
		if end < 0 {
			return nil, parseErrorf(lineNum, "array header is missing '}'")
		}
		fieldText := rest[i+1 : i+end]
		if strings.TrimSpace(fieldText) == "" {
			return nil, parseErrorf(lineNum, "array header has an empty field list")
		}
		cells, err := splitCells(fieldText, delim, lineNum)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool, len(cells))
		for _, c := range cells {
			if seen[c.text] {
				return nil, parseErrorf(lineNum, "duplicate field %q in header", c.text)
			}
			seen[c.text] = true
			fields = append(fields, c.text)
		}
		i += end + 1
	}

	if i >= len(rest) || rest[i] != ':' {
		return nil, parseErrorf(lineNum, "array header is missing ':'")
	}
	inline := strings.TrimSpace(rest[i+1:])

	return &header{key: key, count: count, delim: delim, fields: fields, inline: inline, line: lineNum}, nil
}

// hasKeyValueShape reports whether text looks like "key: ..." with the
// colon outside any quoted key.
func hasKeyValueShape(text string) bool {
	if strings.HasPrefix(text, `"`) {
		_, next, err := scanQuoted(text, 0, 0)
		if err != nil {
			return false
		}
		for next < len(text) && text[next] == ' ' {
			next++
		}
		return next < len(text) && text[next] == ':'
	}
	return strings.IndexByte(text, ':') >= 0
}

// splitKeyValue splits "key: value" into the unescaped key and the raw
// value text, which is empty for nested-object members.
func splitKeyValue(text string, lineNum int) (string, string, error) {
	if strings.HasPrefix(text, `"`) {
		key, next, err := scanQuoted(text, 0, lineNum)
		if err != nil {
			return "", "", err
		}
		for next < len(text) && text[next] == ' ' {
			next++
		}
		if next >= len(text) || text[next] != ':' {
			return "", "", parseErrorf(lineNum, "expected ':' after quoted key")
		}
		return key, strings.TrimSpace(text[next+1:]), nil
	}

	colon := strings.IndexByte(text, ':')
	if colon < 0 {
		return "", "", parseErrorf(lineNum, "expected 'key: value'")
	}
	key := strings.TrimSpace(text[:colon])
	if key == "" {
		return "", "", parseErrorf(lineNum, "empty key")
	}
	return key, strings.TrimSpace(text[colon+1:]), nil
}

// parseScalarText parses a complete scalar: quoted string, null, boolean,
// number, or bare string. Bare text becomes a number only under the strict
// grammar, so forms like 007 stay strings.
func parseScalarText(text string, lineNum int) (any, error) {
	if strings.HasPrefix(text, `"`) {
		val, next, err := scanQuoted(text, 0, lineNum)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(text[next:]) != "" {
			return nil, parseErrorf(lineNum, "unexpected text after closing quote")
		}
		return val, nil
	}
	return bareScalar(text), nil
}

func bareScalar(text string) any {
	switch text {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if numberPattern.MatchString(text) {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	}
	return text
}

// scanQuoted reads a quoted string starting at text[start] and returns the
// unescaped value plus the index just past the closing quote.
func scanQuoted(text string, start, lineNum int) (string, int, error) {
	var b strings.Builder
	i := start + 1 // past opening quote
	for i < len(text) {
		c := text[i]
		if c == '"' {
			return b.String(), i + 1, nil
		}
		if c == '\\' {
			if i+1 >= len(text) {
				break
			}
			switch text[i+1] {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				if i+5 >= len(text) {
					return "", 0, parseErrorf(lineNum, "truncated \\u escape")
				}
				code, err := strconv.ParseUint(text[i+2:i+6], 16, 32)
				if err != nil {
					return "", 0, parseErrorf(lineNum, "bad \\u escape %q", text[i+2:i+6])
				}
				b.WriteRune(rune(code))
				i += 6
				continue
			default:
				return "", 0, parseErrorf(lineNum, "unknown escape \\%c", text[i+1])
			}
			i += 2
			continue
		}
		b.WriteByte(c)
		i++
	}
	return "", 0, parseErrorf(lineNum, "unterminated quoted string")
}

// cell is one delimiter-separated piece of a row or inline array.
type cell struct {
	text   string
	quoted bool
}

func (c cell) scalar() any {
	if c.quoted {
		return c.text
	}
	return bareScalar(c.text)
}

// splitCells splits on delim while honoring quotes, so a quoted cell may
// contain the delimiter itself.
func splitCells(text string, delim byte, lineNum int) ([]cell, error) {
	var cells []cell
	i := 0
	for {
		for i < len(text) && text[i] == ' ' {
			i++
		}
		if i < len(text) && text[i] == '"' {
			val, next, err := scanQuoted(text, i, lineNum)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell{text: val, quoted: true})
			i = next
			for i < len(text) && text[i] == ' ' {
				i++
			}
			if i >= len(text) {
				return cells, nil
			}
			if text[i] != delim {
				return nil, parseErrorf(lineNum, "unexpected character after quoted cell")
			}
			i++
			continue
		}
		end := i
		for end < len(text) && text[end] != delim {
			end++
		}
		cells = append(cells, cell{text: strings.TrimSpace(text[i:end])})
		if end >= len(text) {
			return cells, nil
		}
		i = end + 1
	}
}
