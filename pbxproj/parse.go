package pbxproj

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soapywu/applinkpatch/pbxobj"
)

// Parse decodes the old-style plist text of a project descriptor into the
// ordered object model. Annotation comments survive the trip: a comment
// trailing a key or value is stored under the <key>_comment sibling, array
// elements with comments become {value, comment} objects, and the per-isa
// groups inside "objects" are keyed by their Begin/End section markers.
// Quoted strings are kept verbatim, quotes included.
func Parse(data []byte) (pbxobj.Object, error) {
	src := string(data)
	head := ""
	startLine := 1
	if strings.HasPrefix(src, "//") {
		line := src
		if nl := strings.IndexByte(src, '\n'); nl >= 0 {
			line = src[:nl]
			src = src[nl+1:]
			startLine = 2
		} else {
			src = ""
		}
		head = strings.TrimSpace(strings.TrimPrefix(line, "//"))
	}

	p := &parser{lex: &lexer{src: src, line: startLine}}
	tok, err := p.next()
	if err != nil {
		return pbxobj.Object{}, err
	}
	if tok.kind != tokenPunct || tok.text != "{" {
		return pbxobj.Object{}, fmt.Errorf("line %d: expected { at top level, got %q", tok.line, tok.text)
	}
	project, err := p.parseObject()
	if err != nil {
		return pbxobj.Object{}, err
	}
	if tok, err = p.next(); err != nil {
		return pbxobj.Object{}, err
	} else if tok.kind != tokenEOF {
		return pbxobj.Object{}, fmt.Errorf("line %d: trailing content %q", tok.line, tok.text)
	}

	root := pbxobj.New()
	if head != "" {
		root.Set("headComment", head)
	}
	root.Set("project", project)
	return root, nil
}

type tokenKind int8

const (
	tokenEOF tokenKind = iota
	tokenPunct
	tokenWord
	tokenString
	tokenComment
)

type token struct {
	kind tokenKind
	text string
	line int
}

type lexer struct {
	src  string
	pos  int
	line int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '\n':
			l.line++
			l.pos++
		case strings.IndexByte("{}()=;,", c) >= 0:
			l.pos++
			return token{kind: tokenPunct, text: string(c), line: l.line}, nil
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				return token{}, fmt.Errorf("line %d: unterminated comment", l.line)
			}
			body := l.src[l.pos+2 : l.pos+2+end]
			line := l.line
			l.line += strings.Count(body, "\n")
			l.pos += end + 4
			return token{kind: tokenComment, text: strings.TrimSpace(body), line: line}, nil
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			if nl := strings.IndexByte(l.src[l.pos:], '\n'); nl < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += nl
			}
		case c == '"':
			return l.lexString()
		default:
			return l.lexWord()
		}
	}
	return token{kind: tokenEOF, line: l.line}, nil
}

func (l *lexer) lexString() (token, error) {
	start := l.pos
	line := l.line
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
		case '"':
			l.pos++
			return token{kind: tokenString, text: l.src[start:l.pos], line: line}, nil
		case '\n':
			l.line++
			l.pos++
		default:
			l.pos++
		}
	}
	return token{}, fmt.Errorf("line %d: unterminated string", line)
}

func (l *lexer) lexWord() (token, error) {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '"' || strings.IndexByte("{}()=;,", c) >= 0 {
			break
		}
		if c == '/' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == '*' || l.src[l.pos+1] == '/') {
			break
		}
		l.pos++
	}
	if l.pos == start {
		return token{}, fmt.Errorf("line %d: unexpected character %q", l.line, l.src[l.pos])
	}
	return token{kind: tokenWord, text: l.src[start:l.pos], line: l.line}, nil
}

type parser struct {
	lex    *lexer
	peeked *token
}

func (p *parser) next() (token, error) {
	if p.peeked != nil {
		tok := *p.peeked
		p.peeked = nil
		return tok, nil
	}
	return p.lex.next()
}

func (p *parser) peek() (token, error) {
	if p.peeked == nil {
		tok, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.peeked = &tok
	}
	return *p.peeked, nil
}

// parseObject consumes entries up to and including the closing brace.
func (p *parser) parseObject() (pbxobj.Object, error) {
	obj := pbxobj.New()
	for {
		tok, err := p.next()
		if err != nil {
			return obj, err
		}
		switch {
		case tok.kind == tokenPunct && tok.text == "}":
			return obj, nil
		case tok.kind == tokenComment:
			name, ok := sectionBegin(tok.text)
			if !ok {
				continue // stray comment
			}
			section, err := p.parseSection(name)
			if err != nil {
				return obj, err
			}
			obj.Set(name, section)
		case tok.kind == tokenWord || tok.kind == tokenString:
			if err := p.parseEntry(obj, tok.text); err != nil {
				return obj, err
			}
		case tok.kind == tokenEOF:
			return obj, fmt.Errorf("line %d: unterminated object", tok.line)
		default:
			return obj, fmt.Errorf("line %d: unexpected token %q in object", tok.line, tok.text)
		}
	}
}

// parseSection consumes entries up to the matching End marker.
func (p *parser) parseSection(name string) (pbxobj.Object, error) {
	section := pbxobj.New()
	for {
		tok, err := p.next()
		if err != nil {
			return section, err
		}
		switch {
		case tok.kind == tokenComment:
			if end, ok := sectionEnd(tok.text); ok && end == name {
				return section, nil
			}
		case tok.kind == tokenWord || tok.kind == tokenString:
			if err := p.parseEntry(section, tok.text); err != nil {
				return section, err
			}
		case tok.kind == tokenEOF:
			return section, fmt.Errorf("line %d: unterminated %s section", tok.line, name)
		default:
			return section, fmt.Errorf("line %d: unexpected token %q in %s section", tok.line, tok.text, name)
		}
	}
}

func (p *parser) parseEntry(obj pbxobj.Object, key string) error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok.kind == tokenComment {
		obj.Set(ToCommentKey(key), tok.text)
		if tok, err = p.next(); err != nil {
			return err
		}
	}
	if tok.kind != tokenPunct || tok.text != "=" {
		return fmt.Errorf("line %d: expected = after %q", tok.line, key)
	}
	val, err := p.parseValue()
	if err != nil {
		return err
	}
	obj.Set(key, val)
	if tok, err = p.next(); err != nil {
		return err
	}
	if tok.kind == tokenComment {
		obj.Set(ToCommentKey(key), tok.text)
		if tok, err = p.next(); err != nil {
			return err
		}
	}
	if tok.kind != tokenPunct || tok.text != ";" {
		return fmt.Errorf("line %d: expected ; after value of %q", tok.line, key)
	}
	return nil
}

func (p *parser) parseValue() (interface{}, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch {
	case tok.kind == tokenPunct && tok.text == "{":
		return p.parseObject()
	case tok.kind == tokenPunct && tok.text == "(":
		return p.parseArray()
	case tok.kind == tokenString:
		return tok.text, nil
	case tok.kind == tokenWord:
		return wordValue(tok.text), nil
	}
	return nil, fmt.Errorf("line %d: unexpected token %q as value", tok.line, tok.text)
}

func (p *parser) parseArray() ([]interface{}, error) {
	arr := make([]interface{}, 0)
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenPunct && tok.text == ")" {
			return arr, nil
		}

		var val interface{}
		switch {
		case tok.kind == tokenPunct && tok.text == "{":
			if val, err = p.parseObject(); err != nil {
				return nil, err
			}
		case tok.kind == tokenString:
			val = tok.text
		case tok.kind == tokenWord:
			val = wordValue(tok.text)
		default:
			return nil, fmt.Errorf("line %d: unexpected token %q in array", tok.line, tok.text)
		}

		next, err := p.peek()
		if err != nil {
			return nil, err
		}
		if next.kind == tokenComment {
			if _, err = p.next(); err != nil {
				return nil, err
			}
			val = pbxobj.NewWithItems(
				pbxobj.Item{Key: "value", Value: fmt.Sprintf("%v", val)},
				pbxobj.Item{Key: "comment", Value: next.text},
			)
			if next, err = p.peek(); err != nil {
				return nil, err
			}
		}
		arr = append(arr, val)

		if next.kind == tokenPunct && next.text == "," {
			if _, err = p.next(); err != nil {
				return nil, err
			}
		}
	}
}

// wordValue keeps numeric tokens numeric so the writer emits them bare.
// Anything with a leading zero, a dot or a sign stays a string verbatim.
func wordValue(text string) interface{} {
	if !isInteger(text) {
		return text
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return text // out of range, e.g. an all-digit identifier
	}
	return n
}

func isInteger(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func sectionBegin(comment string) (string, bool) {
	return sectionMarker(comment, "Begin ")
}

func sectionEnd(comment string) (string, bool) {
	return sectionMarker(comment, "End ")
}

func sectionMarker(comment, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(comment, prefix)
	if !ok {
		return "", false
	}
	name, ok := strings.CutSuffix(rest, " section")
	if !ok {
		return "", false
	}
	return name, true
}
